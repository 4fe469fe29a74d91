package reconcile

import (
	"github.com/CantarellH/distribuidora-api-sub001/models"
)

// Store interfaces are deliberately narrow so the allocator can run against
// the GORM-backed stores in production and in-memory fakes in tests. Lookup
// methods return (nil, nil) when the record does not exist; the allocator
// owns the not-found classification.

type ClientStore interface {
	ClientByID(id uint) (*models.Client, error)
}

type RemissionStore interface {
	// RemissionByID loads a remission with its Details and Payments.
	RemissionByID(id uint) (*models.Remission, error)
	// SaveTotals persists the remission's TotalCost/IsPaid projections.
	SaveTotals(rem *models.Remission) error
	AttachPayment(remissionID uint, payment *models.Payment) error
	DetachPayment(remissionID, paymentID uint) error
}

type PaymentStore interface {
	SavePayment(p *models.Payment) error
	DeletePayment(p *models.Payment) error
	// RemissionIDsForPayment lists the remissions a payment is allocated to.
	RemissionIDsForPayment(paymentID uint) ([]uint, error)
}

// Allocator associates payments with remissions and keeps each remission's
// paid status a projection of its current payment set.
type Allocator struct {
	clients    ClientStore
	remissions RemissionStore
	payments   PaymentStore
}

func NewAllocator(clients ClientStore, remissions RemissionStore, payments PaymentStore) *Allocator {
	return &Allocator{clients: clients, remissions: remissions, payments: payments}
}

// Allocate persists the payment and attaches it to every remission in
// remissionIDs, recomputing each remission's total and paid status. All
// lookups are validated before the first write, so a missing remission or a
// client mismatch leaves every store untouched; the caller's transaction
// guarantees the writes themselves are atomic.
func (a *Allocator) Allocate(payment *models.Payment, remissionIDs []uint) ([]models.Remission, error) {
	if payment.Amount <= 0 {
		return nil, Validationf("payment amount must be positive, got %.2f", payment.Amount)
	}
	if payment.Method == "" {
		return nil, Validationf("payment method is required")
	}
	if len(remissionIDs) == 0 {
		return nil, Validationf("payment must reference at least one remission")
	}

	client, err := a.clients.ClientByID(payment.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, NotFoundf("client %d not found", payment.ClientID)
	}

	seen := make(map[uint]bool, len(remissionIDs))
	targets := make([]*models.Remission, 0, len(remissionIDs))
	for _, id := range remissionIDs {
		if seen[id] {
			return nil, Validationf("remission %d listed more than once", id)
		}
		seen[id] = true

		rem, err := a.remissions.RemissionByID(id)
		if err != nil {
			return nil, err
		}
		if rem == nil {
			return nil, NotFoundf("remission %d not found", id)
		}
		if rem.ClientID != payment.ClientID {
			return nil, Consistencyf("remission %d belongs to client %d, not client %d", id, rem.ClientID, payment.ClientID)
		}
		targets = append(targets, rem)
	}

	if err := a.payments.SavePayment(payment); err != nil {
		return nil, err
	}

	updated := make([]models.Remission, 0, len(targets))
	for _, rem := range targets {
		if err := a.remissions.AttachPayment(rem.ID, payment); err != nil {
			return nil, err
		}
		rem.Payments = append(rem.Payments, *payment)
		ApplyTotals(rem)
		if err := a.remissions.SaveTotals(rem); err != nil {
			return nil, err
		}
		updated = append(updated, *rem)
	}
	return updated, nil
}

// Deallocate detaches the payment from every remission it covers,
// recomputes each remission's paid status from the remaining payments, and
// deletes the payment. Only this payment is removed; other allocations on
// the same remissions survive.
func (a *Allocator) Deallocate(payment *models.Payment) error {
	ids, err := a.payments.RemissionIDsForPayment(payment.ID)
	if err != nil {
		return err
	}

	for _, id := range ids {
		rem, err := a.remissions.RemissionByID(id)
		if err != nil {
			return err
		}
		if rem == nil {
			return Consistencyf("payment %d references missing remission %d", payment.ID, id)
		}
		if err := a.remissions.DetachPayment(id, payment.ID); err != nil {
			return err
		}
		kept := rem.Payments[:0]
		for _, p := range rem.Payments {
			if p.ID != payment.ID {
				kept = append(kept, p)
			}
		}
		rem.Payments = kept
		ApplyTotals(rem)
		if err := a.remissions.SaveTotals(rem); err != nil {
			return err
		}
	}

	return a.payments.DeletePayment(payment)
}

// Recompute refreshes a remission's TotalCost and IsPaid from its current
// detail and payment sets. Used after payment corrections, detail mutations
// and by the periodic recompute job.
func (a *Allocator) Recompute(remissionID uint) (*models.Remission, error) {
	rem, err := a.remissions.RemissionByID(remissionID)
	if err != nil {
		return nil, err
	}
	if rem == nil {
		return nil, NotFoundf("remission %d not found", remissionID)
	}
	ApplyTotals(rem)
	if err := a.remissions.SaveTotals(rem); err != nil {
		return nil, err
	}
	return rem, nil
}
