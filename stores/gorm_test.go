package stores

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/CantarellH/distribuidora-api-sub001/models"
	"github.com/CantarellH/distribuidora-api-sub001/reconcile"
)

func storeTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Client{},
		&models.Supplier{},
		&models.EggType{},
		&models.InventoryEntry{},
		&models.Remission{},
		&models.RemissionDetail{},
		&models.BoxWeight{},
		&models.Payment{},
		&models.RemissionAudit{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func seedRemission(t *testing.T, db *gorm.DB) *models.Remission {
	t.Helper()
	client := models.Client{Name: "Abarrotes Lupita", Status: true}
	supplier := models.Supplier{CompanyName: "Granja San Pedro"}
	eggType := models.EggType{Name: "white large"}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("create client: %v", err)
	}
	if err := db.Create(&supplier).Error; err != nil {
		t.Fatalf("create supplier: %v", err)
	}
	if err := db.Create(&eggType).Error; err != nil {
		t.Fatalf("create egg type: %v", err)
	}

	rem := models.Remission{
		ClientID: client.Id,
		Details: []models.RemissionDetail{
			{
				EggTypeID:   eggType.Id,
				SupplierID:  supplier.Id,
				BoxCount:    3,
				IsByBox:     true,
				WeightTotal: 35.7,
				TaraTotal:   6.0,
				NetWeight:   29.7,
				PricePerKg:  2.0,
				Subtotal:    59.4,
				BoxWeights: []models.BoxWeight{
					{Gross: 12.0, Net: 10.0},
					{Gross: 11.5, Net: 9.5},
					{Gross: 12.2, Net: 10.2},
				},
			},
		},
		TotalCost: 59.4,
	}
	if err := db.Create(&rem).Error; err != nil {
		t.Fatalf("create remission: %v", err)
	}
	return &rem
}

func TestGorm_RemissionByID_Preloads(t *testing.T) {
	db := storeTestDB(t)
	rem := seedRemission(t, db)

	s := NewGorm(db)
	got, err := s.RemissionByID(rem.ID)
	if err != nil {
		t.Fatalf("RemissionByID: %v", err)
	}
	if got == nil {
		t.Fatal("RemissionByID returned nil for existing remission")
	}
	if len(got.Details) != 1 {
		t.Fatalf("Details len = %d, want 1", len(got.Details))
	}
	if len(got.Details[0].BoxWeights) != 3 {
		t.Errorf("BoxWeights len = %d, want 3", len(got.Details[0].BoxWeights))
	}

	missing, err := s.RemissionByID(9999)
	if err != nil {
		t.Fatalf("RemissionByID missing: %v", err)
	}
	if missing != nil {
		t.Error("RemissionByID should return nil for missing id")
	}
}

func TestGorm_DeleteDetails_RemovesBoxWeights(t *testing.T) {
	db := storeTestDB(t)
	rem := seedRemission(t, db)

	s := NewGorm(db)
	if err := s.DeleteDetails(rem.ID); err != nil {
		t.Fatalf("DeleteDetails: %v", err)
	}

	var detailCount, boxCount int64
	db.Model(&models.RemissionDetail{}).Where("remission_id = ?", rem.ID).Count(&detailCount)
	db.Model(&models.BoxWeight{}).Count(&boxCount)
	if detailCount != 0 {
		t.Errorf("details remaining = %d, want 0", detailCount)
	}
	if boxCount != 0 {
		t.Errorf("box weights remaining = %d, want 0 (mode switch must not orphan rows)", boxCount)
	}
}

func TestGorm_DeleteRemission_Cascades(t *testing.T) {
	db := storeTestDB(t)
	rem := seedRemission(t, db)
	s := NewGorm(db)

	payment := models.Payment{ClientID: rem.ClientID, Amount: 59.4, Method: models.PaymentMethodCash}
	if err := s.SavePayment(&payment); err != nil {
		t.Fatalf("SavePayment: %v", err)
	}
	if err := s.AttachPayment(rem.ID, &payment); err != nil {
		t.Fatalf("AttachPayment: %v", err)
	}
	if err := s.AppendAudit(rem); err != nil {
		t.Fatalf("AppendAudit: %v", err)
	}

	if err := s.DeleteRemission(rem.ID); err != nil {
		t.Fatalf("DeleteRemission: %v", err)
	}

	var rems, details, boxes, audits, links int64
	db.Model(&models.Remission{}).Count(&rems)
	db.Model(&models.RemissionDetail{}).Count(&details)
	db.Model(&models.BoxWeight{}).Count(&boxes)
	db.Model(&models.RemissionAudit{}).Count(&audits)
	db.Table("remission_payments").Count(&links)
	if rems != 0 || details != 0 || boxes != 0 || audits != 0 || links != 0 {
		t.Errorf("cascade incomplete: remissions=%d details=%d boxes=%d audits=%d links=%d",
			rems, details, boxes, audits, links)
	}

	// The payment itself survives; only its association is gone.
	var payments int64
	db.Model(&models.Payment{}).Count(&payments)
	if payments != 1 {
		t.Errorf("payments = %d, want 1", payments)
	}
}

func TestGorm_AttachDetachPayment(t *testing.T) {
	db := storeTestDB(t)
	rem := seedRemission(t, db)
	s := NewGorm(db)

	payment := models.Payment{ClientID: rem.ClientID, Amount: 30.0, Method: models.PaymentMethodTransfer}
	if err := s.SavePayment(&payment); err != nil {
		t.Fatalf("SavePayment: %v", err)
	}
	if err := s.AttachPayment(rem.ID, &payment); err != nil {
		t.Fatalf("AttachPayment: %v", err)
	}

	ids, err := s.RemissionIDsForPayment(payment.ID)
	if err != nil {
		t.Fatalf("RemissionIDsForPayment: %v", err)
	}
	if len(ids) != 1 || ids[0] != rem.ID {
		t.Fatalf("RemissionIDsForPayment = %v, want [%d]", ids, rem.ID)
	}

	if err := s.DetachPayment(rem.ID, payment.ID); err != nil {
		t.Fatalf("DetachPayment: %v", err)
	}
	ids, err = s.RemissionIDsForPayment(payment.ID)
	if err != nil {
		t.Fatalf("RemissionIDsForPayment after detach: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("RemissionIDsForPayment after detach = %v, want empty", ids)
	}

	if err := s.DeletePayment(&payment); err != nil {
		t.Fatalf("DeletePayment: %v", err)
	}
	got, err := s.PaymentByID(payment.ID)
	if err != nil {
		t.Fatalf("PaymentByID: %v", err)
	}
	if got != nil {
		t.Error("payment still present after DeletePayment")
	}
}

func TestGorm_AppendAudit_Versions(t *testing.T) {
	db := storeTestDB(t)
	rem := seedRemission(t, db)
	s := NewGorm(db)

	if err := s.AppendAudit(rem); err != nil {
		t.Fatalf("AppendAudit v1: %v", err)
	}
	if err := s.AppendAudit(rem); err != nil {
		t.Fatalf("AppendAudit v2: %v", err)
	}

	var audits []models.RemissionAudit
	if err := db.Where("remission_id = ?", rem.ID).Order("version_no").Find(&audits).Error; err != nil {
		t.Fatalf("load audits: %v", err)
	}
	if len(audits) != 2 {
		t.Fatalf("audits len = %d, want 2", len(audits))
	}
	if audits[0].VersionNo != 1 || audits[1].VersionNo != 2 {
		t.Errorf("versions = %d,%d, want 1,2", audits[0].VersionNo, audits[1].VersionNo)
	}
	if len(audits[0].Snapshot) == 0 {
		t.Error("snapshot is empty")
	}
}

// End-to-end over sqlite: the allocator driven by the GORM stores.
func TestGorm_AllocatorIntegration(t *testing.T) {
	db := storeTestDB(t)
	rem := seedRemission(t, db)
	s := NewGorm(db)
	allocator := reconcile.NewAllocator(s, s, s)

	under := models.Payment{ClientID: rem.ClientID, Amount: 59.39, Method: models.PaymentMethodCash}
	updated, err := allocator.Allocate(&under, []uint{rem.ID})
	if err != nil {
		t.Fatalf("Allocate underpayment: %v", err)
	}
	if updated[0].IsPaid {
		t.Error("IsPaid = true for 59.39 against 59.40")
	}

	rest := models.Payment{ClientID: rem.ClientID, Amount: 0.01, Method: models.PaymentMethodCash}
	updated, err = allocator.Allocate(&rest, []uint{rem.ID})
	if err != nil {
		t.Fatalf("Allocate rest: %v", err)
	}
	if !updated[0].IsPaid {
		t.Error("IsPaid = false after payments cover the total")
	}

	var stored models.Remission
	if err := db.First(&stored, "id = ?", rem.ID).Error; err != nil {
		t.Fatalf("reload remission: %v", err)
	}
	if !stored.IsPaid {
		t.Error("stored IsPaid = false, SaveTotals did not persist")
	}

	// Deleting the second payment unpays the remission again.
	if err := allocator.Deallocate(&rest); err != nil {
		t.Fatalf("Deallocate: %v", err)
	}
	if err := db.First(&stored, "id = ?", rem.ID).Error; err != nil {
		t.Fatalf("reload remission: %v", err)
	}
	if stored.IsPaid {
		t.Error("stored IsPaid = true after removing a covering payment")
	}
	var links int64
	db.Table("remission_payments").Count(&links)
	if links != 1 {
		t.Errorf("join rows = %d, want 1 (only the first payment remains)", links)
	}
}
