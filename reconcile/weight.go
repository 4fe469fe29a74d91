package reconcile

import (
	"github.com/CantarellH/distribuidora-api-sub001/utils"
)

// TarePerBox is the fixed box weight in kilograms deducted from every
// weighed box to obtain net product weight.
const TarePerBox = 2.0

// WeightInput carries the weighing data of one remission detail.
type WeightInput struct {
	IsByBox               bool
	BoxCount              int
	EstimatedWeightPerBox float64
	// Gross per-box weights; only read in by-box mode.
	BoxWeights []float64
}

// WeightResult is the reconciled weight breakdown. NetWeight is always
// WeightTotal - TaraTotal.
type WeightResult struct {
	WeightTotal float64
	TaraTotal   float64
	NetWeight   float64
	// Per-box net weights, tare already deducted. Persisted once at write
	// time so tare is never deducted again on read. Empty in estimated mode.
	BoxNets []float64
}

// ReconcileWeight computes the weight breakdown for a detail. By-box mode
// requires exactly BoxCount gross weights and deducts the tare per box.
// Estimated mode multiplies the per-box estimate by the box count and models
// no tare, since nothing was physically weighed.
//
// A gross weight at or below the tare yields a zero or negative net
// contribution. That signals a data-entry error but is not clamped here;
// plausibility checks belong to the caller.
func ReconcileWeight(in WeightInput) (WeightResult, error) {
	if in.BoxCount < 1 {
		return WeightResult{}, Validationf("box count must be at least 1, got %d", in.BoxCount)
	}

	if !in.IsByBox {
		if in.EstimatedWeightPerBox <= 0 {
			return WeightResult{}, Validationf("estimated weight per box must be positive, got %.2f", in.EstimatedWeightPerBox)
		}
		total := utils.Round2(in.EstimatedWeightPerBox * float64(in.BoxCount))
		return WeightResult{
			WeightTotal: total,
			TaraTotal:   0,
			NetWeight:   total,
		}, nil
	}

	if len(in.BoxWeights) != in.BoxCount {
		return WeightResult{}, Validationf("expected %d box weights, got %d", in.BoxCount, len(in.BoxWeights))
	}

	var grossTotal, netTotal float64
	nets := make([]float64, 0, len(in.BoxWeights))
	for _, gross := range in.BoxWeights {
		net := utils.Round2(gross - TarePerBox)
		grossTotal += gross
		netTotal += net
		nets = append(nets, net)
	}

	return WeightResult{
		WeightTotal: utils.Round2(grossTotal),
		TaraTotal:   utils.Round2(TarePerBox * float64(in.BoxCount)),
		NetWeight:   utils.Round2(netTotal),
		BoxNets:     nets,
	}, nil
}
