package reconcile

import (
	"testing"

	"github.com/CantarellH/distribuidora-api-sub001/models"
)

func TestSubtotal(t *testing.T) {
	cases := []struct {
		net, price, want float64
	}{
		{29.7, 3.5, 103.95},
		{196.0, 2.0, 392.0},
		{10.0, 1.0, 10.0},
		{0.333, 3.0, 1.0}, // 0.999 rounds half-up to 1.00
		{0, 5.0, 0},
	}
	for _, c := range cases {
		if got := Subtotal(c.net, c.price); !approx(got, c.want) {
			t.Errorf("Subtotal(%v, %v) = %v, want %v", c.net, c.price, got, c.want)
		}
	}
}

func TestSubtotal_Monotonic(t *testing.T) {
	base := Subtotal(10.0, 2.0)
	if Subtotal(11.0, 2.0) <= base {
		t.Error("Subtotal not monotonic in net weight")
	}
	if Subtotal(10.0, 2.5) <= base {
		t.Error("Subtotal not monotonic in price")
	}
}

func TestRemissionTotal(t *testing.T) {
	details := []models.RemissionDetail{
		{Subtotal: 100.00},
		{Subtotal: 50.00},
	}
	if got := RemissionTotal(details); !approx(got, 150.00) {
		t.Errorf("RemissionTotal = %v, want 150.00", got)
	}
	if got := RemissionTotal(nil); got != 0 {
		t.Errorf("RemissionTotal(nil) = %v, want 0", got)
	}
}

func TestApplyTotals_PaidBoundary(t *testing.T) {
	rem := models.Remission{
		Details: []models.RemissionDetail{
			{Subtotal: 100.00},
			{Subtotal: 50.00},
		},
	}

	rem.Payments = []models.Payment{{Amount: 149.99}}
	ApplyTotals(&rem)
	if rem.IsPaid {
		t.Error("IsPaid = true for 149.99 against 150.00")
	}
	if !approx(rem.TotalCost, 150.00) {
		t.Errorf("TotalCost = %v, want 150.00", rem.TotalCost)
	}

	rem.Payments = []models.Payment{{Amount: 150.00}}
	ApplyTotals(&rem)
	if !rem.IsPaid {
		t.Error("IsPaid = false for 150.00 against 150.00")
	}

	rem.Payments = []models.Payment{{Amount: 100.00}, {Amount: 50.00}}
	ApplyTotals(&rem)
	if !rem.IsPaid {
		t.Error("IsPaid = false for two payments summing to the total")
	}
}
