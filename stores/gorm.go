package stores

import (
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/CantarellH/distribuidora-api-sub001/models"
)

// Gorm implements the reconcile store interfaces on top of a *gorm.DB.
// Handlers construct it from the per-request transaction, so every store
// call in one request shares one commit/rollback boundary.
type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm { return &Gorm{db: db} }

func (s *Gorm) ClientByID(id uint) (*models.Client, error) {
	var client models.Client
	if err := s.db.First(&client, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &client, nil
}

func (s *Gorm) RemissionByID(id uint) (*models.Remission, error) {
	var rem models.Remission
	err := s.db.
		Preload("Details").
		Preload("Details.BoxWeights").
		Preload("Payments").
		First(&rem, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rem, nil
}

func (s *Gorm) SaveTotals(rem *models.Remission) error {
	return s.db.Model(&models.Remission{}).
		Where("id = ?", rem.ID).
		Updates(map[string]any{
			"total_cost": rem.TotalCost,
			"is_paid":    rem.IsPaid,
		}).Error
}

func (s *Gorm) AttachPayment(remissionID uint, payment *models.Payment) error {
	rem := models.Remission{ID: remissionID}
	return s.db.Model(&rem).Association("Payments").Append(payment)
}

func (s *Gorm) DetachPayment(remissionID, paymentID uint) error {
	rem := models.Remission{ID: remissionID}
	return s.db.Model(&rem).Association("Payments").Delete(&models.Payment{ID: paymentID})
}

func (s *Gorm) SavePayment(p *models.Payment) error {
	if p.ID == 0 {
		return s.db.Create(p).Error
	}
	return s.db.Save(p).Error
}

func (s *Gorm) DeletePayment(p *models.Payment) error {
	if err := s.db.Model(p).Association("Remissions").Clear(); err != nil {
		return err
	}
	return s.db.Delete(p).Error
}

func (s *Gorm) RemissionIDsForPayment(paymentID uint) ([]uint, error) {
	var ids []uint
	err := s.db.Table("remission_payments").
		Where("payment_id = ?", paymentID).
		Pluck("remission_id", &ids).Error
	return ids, err
}

func (s *Gorm) PaymentByID(id uint) (*models.Payment, error) {
	var p models.Payment
	if err := s.db.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// DeleteDetails removes a remission's details together with their box
// weights. Used both by full detail replacement on update and by remission
// deletion; a mode switch must never leave stale box-weight rows behind.
func (s *Gorm) DeleteDetails(remissionID uint) error {
	var detailIDs []uint
	if err := s.db.Model(&models.RemissionDetail{}).
		Where("remission_id = ?", remissionID).
		Pluck("id", &detailIDs).Error; err != nil {
		return err
	}
	if len(detailIDs) > 0 {
		if err := s.db.Where("detail_id IN ?", detailIDs).Delete(&models.BoxWeight{}).Error; err != nil {
			return err
		}
		if err := s.db.Where("id IN ?", detailIDs).Delete(&models.RemissionDetail{}).Error; err != nil {
			return err
		}
	}
	return nil
}

// DeleteRemission removes the whole aggregate: box weights, details,
// payment associations, audit rows, then the remission itself. Payments
// themselves survive; only their link to this remission is dropped.
func (s *Gorm) DeleteRemission(remissionID uint) error {
	if err := s.DeleteDetails(remissionID); err != nil {
		return err
	}
	rem := models.Remission{ID: remissionID}
	if err := s.db.Model(&rem).Association("Payments").Clear(); err != nil {
		return err
	}
	if err := s.db.Where("remission_id = ?", remissionID).Delete(&models.RemissionAudit{}).Error; err != nil {
		return err
	}
	return s.db.Delete(&rem).Error
}

// AppendAudit writes an immutable snapshot of the remission with the next
// version number for that remission.
func (s *Gorm) AppendAudit(rem *models.Remission) error {
	var maxVersion int
	err := s.db.Model(&models.RemissionAudit{}).
		Where("remission_id = ?", rem.ID).
		Select("COALESCE(MAX(version_no), 0)").
		Scan(&maxVersion).Error
	if err != nil {
		return err
	}

	snapshot, err := json.Marshal(rem)
	if err != nil {
		return err
	}

	audit := models.RemissionAudit{
		RemissionID: rem.ID,
		VersionNo:   maxVersion + 1,
		Snapshot:    snapshot,
		CreatedAt:   time.Now().UTC(),
	}
	return s.db.Create(&audit).Error
}
