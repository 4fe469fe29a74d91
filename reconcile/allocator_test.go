package reconcile

import (
	"testing"

	"github.com/CantarellH/distribuidora-api-sub001/models"
)

// fakeStore implements ClientStore, RemissionStore and PaymentStore in
// memory. writes counts every mutating call so atomicity tests can assert
// nothing was touched.
type fakeStore struct {
	clients    map[uint]*models.Client
	remissions map[uint]*models.Remission
	payments   map[uint]*models.Payment
	links      map[uint][]uint // payment id -> remission ids
	nextID     uint
	writes     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		clients:    make(map[uint]*models.Client),
		remissions: make(map[uint]*models.Remission),
		payments:   make(map[uint]*models.Payment),
		links:      make(map[uint][]uint),
	}
}

func (f *fakeStore) ClientByID(id uint) (*models.Client, error) {
	return f.clients[id], nil
}

func (f *fakeStore) RemissionByID(id uint) (*models.Remission, error) {
	return f.remissions[id], nil
}

func (f *fakeStore) SaveTotals(rem *models.Remission) error {
	f.writes++
	f.remissions[rem.ID] = rem
	return nil
}

func (f *fakeStore) AttachPayment(remissionID uint, payment *models.Payment) error {
	f.writes++
	f.links[payment.ID] = append(f.links[payment.ID], remissionID)
	return nil
}

func (f *fakeStore) DetachPayment(remissionID, paymentID uint) error {
	f.writes++
	kept := f.links[paymentID][:0]
	for _, id := range f.links[paymentID] {
		if id != remissionID {
			kept = append(kept, id)
		}
	}
	f.links[paymentID] = kept
	return nil
}

func (f *fakeStore) SavePayment(p *models.Payment) error {
	f.writes++
	if p.ID == 0 {
		f.nextID++
		p.ID = f.nextID
	}
	f.payments[p.ID] = p
	return nil
}

func (f *fakeStore) DeletePayment(p *models.Payment) error {
	f.writes++
	delete(f.payments, p.ID)
	delete(f.links, p.ID)
	return nil
}

func (f *fakeStore) RemissionIDsForPayment(paymentID uint) ([]uint, error) {
	return f.links[paymentID], nil
}

func (f *fakeStore) addRemission(id, clientID uint, subtotals ...float64) *models.Remission {
	details := make([]models.RemissionDetail, 0, len(subtotals))
	for _, s := range subtotals {
		details = append(details, models.RemissionDetail{Subtotal: s})
	}
	rem := &models.Remission{ID: id, ClientID: clientID, Details: details}
	f.remissions[id] = rem
	return rem
}

func TestAllocator_Allocate_MarksPaid(t *testing.T) {
	fs := newFakeStore()
	fs.clients[1] = &models.Client{Id: 1, Status: true}
	fs.addRemission(10, 1, 100.00, 50.00)

	a := NewAllocator(fs, fs, fs)
	payment := &models.Payment{ClientID: 1, Amount: 150.00, Method: models.PaymentMethodCash}
	updated, err := a.Allocate(payment, []uint{10})
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if len(updated) != 1 {
		t.Fatalf("updated len = %d, want 1", len(updated))
	}
	if !updated[0].IsPaid {
		t.Error("IsPaid = false after full payment")
	}
	if !approx(updated[0].TotalCost, 150.00) {
		t.Errorf("TotalCost = %v, want 150.00", updated[0].TotalCost)
	}
	if payment.ID == 0 {
		t.Error("payment was not persisted")
	}
}

func TestAllocator_Allocate_UnderpaymentStaysUnpaid(t *testing.T) {
	fs := newFakeStore()
	fs.clients[1] = &models.Client{Id: 1, Status: true}
	fs.addRemission(10, 1, 100.00, 50.00)

	a := NewAllocator(fs, fs, fs)
	payment := &models.Payment{ClientID: 1, Amount: 149.99, Method: models.PaymentMethodCash}
	updated, err := a.Allocate(payment, []uint{10})
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if updated[0].IsPaid {
		t.Error("IsPaid = true for 149.99 against 150.00")
	}
}

func TestAllocator_Allocate_AcrossRemissions(t *testing.T) {
	fs := newFakeStore()
	fs.clients[1] = &models.Client{Id: 1, Status: true}
	fs.addRemission(10, 1, 60.00)
	fs.addRemission(11, 1, 40.00)

	a := NewAllocator(fs, fs, fs)
	payment := &models.Payment{ClientID: 1, Amount: 100.00, Method: models.PaymentMethodTransfer}
	updated, err := a.Allocate(payment, []uint{10, 11})
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	for _, rem := range updated {
		if !rem.IsPaid {
			t.Errorf("remission %d IsPaid = false, want true", rem.ID)
		}
	}
	ids, _ := fs.RemissionIDsForPayment(payment.ID)
	if len(ids) != 2 {
		t.Errorf("payment linked to %d remissions, want 2", len(ids))
	}
}

func TestAllocator_Allocate_MissingRemissionIsAtomic(t *testing.T) {
	fs := newFakeStore()
	fs.clients[1] = &models.Client{Id: 1, Status: true}
	fs.addRemission(10, 1, 100.00)

	a := NewAllocator(fs, fs, fs)
	payment := &models.Payment{ClientID: 1, Amount: 100.00, Method: models.PaymentMethodCash}
	_, err := a.Allocate(payment, []uint{10, 99})
	if err == nil {
		t.Fatal("expected error for missing remission")
	}
	if KindOf(err) != KindNotFound {
		t.Errorf("KindOf = %v, want KindNotFound", KindOf(err))
	}
	if fs.writes != 0 {
		t.Errorf("store saw %d writes, want 0 (no partial allocation)", fs.writes)
	}
	if len(fs.remissions[10].Payments) != 0 {
		t.Error("remission 10 payment set changed despite failed allocation")
	}
}

func TestAllocator_Allocate_ClientMismatch(t *testing.T) {
	fs := newFakeStore()
	fs.clients[1] = &models.Client{Id: 1, Status: true}
	fs.clients[2] = &models.Client{Id: 2, Status: true}
	fs.addRemission(10, 2, 100.00)

	a := NewAllocator(fs, fs, fs)
	payment := &models.Payment{ClientID: 1, Amount: 100.00, Method: models.PaymentMethodCash}
	_, err := a.Allocate(payment, []uint{10})
	if err == nil {
		t.Fatal("expected error for client mismatch")
	}
	if KindOf(err) != KindConsistency {
		t.Errorf("KindOf = %v, want KindConsistency", KindOf(err))
	}
	if fs.writes != 0 {
		t.Errorf("store saw %d writes, want 0", fs.writes)
	}
}

func TestAllocator_Allocate_Validation(t *testing.T) {
	fs := newFakeStore()
	fs.clients[1] = &models.Client{Id: 1, Status: true}
	fs.addRemission(10, 1, 100.00)
	a := NewAllocator(fs, fs, fs)

	cases := []struct {
		name    string
		payment models.Payment
		ids     []uint
	}{
		{"zero amount", models.Payment{ClientID: 1, Method: "cash"}, []uint{10}},
		{"negative amount", models.Payment{ClientID: 1, Amount: -5, Method: "cash"}, []uint{10}},
		{"no method", models.Payment{ClientID: 1, Amount: 10}, []uint{10}},
		{"no remissions", models.Payment{ClientID: 1, Amount: 10, Method: "cash"}, nil},
		{"duplicate remission", models.Payment{ClientID: 1, Amount: 10, Method: "cash"}, []uint{10, 10}},
	}
	for _, c := range cases {
		p := c.payment
		_, err := a.Allocate(&p, c.ids)
		if err == nil {
			t.Errorf("%s: expected error", c.name)
			continue
		}
		if KindOf(err) != KindValidation {
			t.Errorf("%s: KindOf = %v, want KindValidation", c.name, KindOf(err))
		}
	}
}

func TestAllocator_Allocate_MissingClient(t *testing.T) {
	fs := newFakeStore()
	fs.addRemission(10, 1, 100.00)
	a := NewAllocator(fs, fs, fs)

	payment := &models.Payment{ClientID: 1, Amount: 10, Method: "cash"}
	_, err := a.Allocate(payment, []uint{10})
	if err == nil {
		t.Fatal("expected error for missing client")
	}
	if KindOf(err) != KindNotFound {
		t.Errorf("KindOf = %v, want KindNotFound", KindOf(err))
	}
}

func TestAllocator_Deallocate_RemovesOnlyThatPayment(t *testing.T) {
	fs := newFakeStore()
	fs.clients[1] = &models.Client{Id: 1, Status: true}
	fs.addRemission(10, 1, 150.00)

	a := NewAllocator(fs, fs, fs)
	p1 := &models.Payment{ClientID: 1, Amount: 100.00, Method: "cash"}
	if _, err := a.Allocate(p1, []uint{10}); err != nil {
		t.Fatalf("Allocate p1: %v", err)
	}
	p2 := &models.Payment{ClientID: 1, Amount: 50.00, Method: "cash"}
	if _, err := a.Allocate(p2, []uint{10}); err != nil {
		t.Fatalf("Allocate p2: %v", err)
	}
	if !fs.remissions[10].IsPaid {
		t.Fatal("remission should be paid after both payments")
	}

	// Deleting one of two payments keeps the other attached and recomputes
	// paid status from what remains.
	if err := a.Deallocate(p1); err != nil {
		t.Fatalf("Deallocate: %v", err)
	}
	rem := fs.remissions[10]
	if len(rem.Payments) != 1 {
		t.Fatalf("payment set len = %d, want 1", len(rem.Payments))
	}
	if rem.Payments[0].ID != p2.ID {
		t.Errorf("surviving payment = %d, want %d", rem.Payments[0].ID, p2.ID)
	}
	if rem.IsPaid {
		t.Error("IsPaid = true after removing the 100.00 payment")
	}
	if _, ok := fs.payments[p1.ID]; ok {
		t.Error("deallocated payment still stored")
	}
}

func TestAllocator_Recompute(t *testing.T) {
	fs := newFakeStore()
	fs.clients[1] = &models.Client{Id: 1, Status: true}
	rem := fs.addRemission(10, 1, 80.00)
	rem.Payments = []models.Payment{{ID: 5, Amount: 80.00}}
	rem.IsPaid = false // stale projection
	rem.TotalCost = 0

	a := NewAllocator(fs, fs, fs)
	got, err := a.Recompute(10)
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if !got.IsPaid {
		t.Error("IsPaid = false after recompute with covering payment")
	}
	if !approx(got.TotalCost, 80.00) {
		t.Errorf("TotalCost = %v, want 80.00", got.TotalCost)
	}

	if _, err := a.Recompute(99); KindOf(err) != KindNotFound {
		t.Errorf("Recompute(99) kind = %v, want KindNotFound", KindOf(err))
	}
}
