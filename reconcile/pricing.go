package reconcile

import (
	"github.com/CantarellH/distribuidora-api-sub001/models"
	"github.com/CantarellH/distribuidora-api-sub001/utils"
)

// Subtotal converts net weight and price per kilogram into money, rounded
// half-up at two decimals. Monotonic in both arguments.
func Subtotal(netWeight, pricePerKg float64) float64 {
	return utils.Round2(netWeight * pricePerKg)
}

// RemissionTotal is the canonical total of a remission: the sum of its
// stored per-detail subtotals. Every paid-status decision uses this one
// path.
func RemissionTotal(details []models.RemissionDetail) float64 {
	var total float64
	for _, d := range details {
		total += d.Subtotal
	}
	return utils.Round2(total)
}

// PaidTotal sums the payment amounts currently allocated to a remission.
func PaidTotal(payments []models.Payment) float64 {
	var total float64
	for _, p := range payments {
		total += p.Amount
	}
	return utils.Round2(total)
}

// covers reports whether a paid sum settles a total. Both sides are already
// rounded to cents; the epsilon only absorbs float noise below half a cent.
func covers(paid, total float64) bool {
	return paid+0.005 >= total
}

// ApplyTotals recomputes the stored projections (TotalCost, IsPaid) of a
// remission from its current detail and payment sets.
func ApplyTotals(rem *models.Remission) {
	rem.TotalCost = RemissionTotal(rem.Details)
	rem.IsPaid = covers(PaidTotal(rem.Payments), rem.TotalCost)
}
