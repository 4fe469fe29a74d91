package controllers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/CantarellH/distribuidora-api-sub001/database"
	"github.com/CantarellH/distribuidora-api-sub001/middlewares"
	"github.com/CantarellH/distribuidora-api-sub001/models"
	"github.com/CantarellH/distribuidora-api-sub001/reconcile"
	"github.com/CantarellH/distribuidora-api-sub001/stores"
)

type RemissionDetailDTO struct {
	EggTypeID             uint      `json:"egg_type_id" validate:"required,min=1"`
	SupplierID            uint      `json:"supplier_id" validate:"required,min=1"`
	BoxCount              int       `json:"box_count" validate:"required,min=1"`
	IsByBox               bool      `json:"is_by_box"`
	EstimatedWeightPerBox float64   `json:"estimated_weight_per_box"`
	PricePerKg            float64   `json:"price_per_kg" validate:"required,gt=0"`
	BoxWeights            []float64 `json:"box_weights"`
}

type RemissionCreateDTO struct {
	ClientID    uint                 `json:"client_id" validate:"required,min=1"`
	DeliveredAt *time.Time           `json:"delivered_at"`
	Details     []RemissionDetailDTO `json:"details" validate:"required,min=1,dive"`
}

// buildDetails validates foreign keys and runs the weight and pricing
// computations for every detail of a create/update request.
func buildDetails(db *gorm.DB, inputs []RemissionDetailDTO) ([]models.RemissionDetail, error) {
	details := make([]models.RemissionDetail, 0, len(inputs))
	for _, in := range inputs {
		if err := db.First(&models.EggType{}, "id = ?", in.EggTypeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, reconcile.NotFoundf("egg type %d not found", in.EggTypeID)
			}
			return nil, err
		}
		if err := db.First(&models.Supplier{}, "id = ?", in.SupplierID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, reconcile.NotFoundf("supplier %d not found", in.SupplierID)
			}
			return nil, err
		}

		weights, err := reconcile.ReconcileWeight(reconcile.WeightInput{
			IsByBox:               in.IsByBox,
			BoxCount:              in.BoxCount,
			EstimatedWeightPerBox: in.EstimatedWeightPerBox,
			BoxWeights:            in.BoxWeights,
		})
		if err != nil {
			return nil, err
		}

		boxWeights := make([]models.BoxWeight, 0, len(weights.BoxNets))
		for i, net := range weights.BoxNets {
			boxWeights = append(boxWeights, models.BoxWeight{
				Gross: in.BoxWeights[i],
				Net:   net,
			})
		}

		estimated := in.EstimatedWeightPerBox
		if in.IsByBox {
			// Only one weight mode is active per detail.
			estimated = 0
		}

		details = append(details, models.RemissionDetail{
			EggTypeID:             in.EggTypeID,
			SupplierID:            in.SupplierID,
			BoxCount:              in.BoxCount,
			IsByBox:               in.IsByBox,
			EstimatedWeightPerBox: estimated,
			BoxWeights:            boxWeights,
			WeightTotal:           weights.WeightTotal,
			TaraTotal:             weights.TaraTotal,
			NetWeight:             weights.NetWeight,
			PricePerKg:            in.PricePerKg,
			Subtotal:              reconcile.Subtotal(weights.NetWeight, in.PricePerKg),
		})
	}
	return details, nil
}

// POST /api/remission
func CreateRemission(c *fiber.Ctx) error {
	var in RemissionCreateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}
	gs := stores.NewGorm(db)

	client, err := gs.ClientByID(in.ClientID)
	if err != nil {
		return err
	}
	if client == nil {
		return reconcile.NotFoundf("client %d not found", in.ClientID)
	}
	if !client.Status {
		return reconcile.Consistencyf("client %d is inactive", in.ClientID)
	}

	details, err := buildDetails(db, in.Details)
	if err != nil {
		return err
	}

	deliveredAt := time.Now().UTC()
	if in.DeliveredAt != nil {
		deliveredAt = *in.DeliveredAt
	}

	rem := models.Remission{
		ClientID:    in.ClientID,
		Details:     details,
		DeliveredAt: deliveredAt,
	}
	reconcile.ApplyTotals(&rem)

	if err := db.Create(&rem).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create remission")
	}
	if err := gs.AppendAudit(&rem); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(rem)
}

// GET /api/remissions?client_id=&from=&to=&paid=
func GetRemissions(c *fiber.Ctx) error {
	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	q := db.Model(&models.Remission{}).
		Preload("Details").
		Preload("Details.BoxWeights").
		Preload("Payments")

	if id := c.QueryInt("client_id"); id > 0 {
		q = q.Where("client_id = ?", id)
	}
	if from := strings.TrimSpace(c.Query("from")); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid from date, want YYYY-MM-DD")
		}
		q = q.Where("delivered_at >= ?", t)
	}
	if to := strings.TrimSpace(c.Query("to")); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid to date, want YYYY-MM-DD")
		}
		q = q.Where("delivered_at < ?", t.AddDate(0, 0, 1))
	}
	if s := strings.TrimSpace(c.Query("paid")); s != "" {
		paid, err := strconv.ParseBool(s)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid paid filter")
		}
		q = q.Where("is_paid = ?", paid)
	}

	var rems []models.Remission
	if err := q.Order("delivered_at desc").Find(&rems).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(fiber.Map{"remissions": rems})
}

// GET /api/remission/:id
//
// Totals in the response are projected from the current detail and payment
// sets, not read back from the stored columns.
func GetRemission(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid remission id")
	}

	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	rem, err := stores.NewGorm(db).RemissionByID(uint(id))
	if err != nil {
		return err
	}
	if rem == nil {
		return reconcile.NotFoundf("remission %d not found", id)
	}
	reconcile.ApplyTotals(rem)
	return c.JSON(rem)
}

// PUT /api/remission/:id
//
// Full detail replacement: the old details and their box weights are
// discarded and the new set is reconciled from scratch, so a mode switch
// can never leave stale box-weight rows behind.
func UpdateRemission(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid remission id")
	}

	var in RemissionCreateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}
	gs := stores.NewGorm(db)

	existing, err := gs.RemissionByID(uint(id))
	if err != nil {
		return err
	}
	if existing == nil {
		return reconcile.NotFoundf("remission %d not found", id)
	}
	if in.ClientID != existing.ClientID {
		return reconcile.Consistencyf("remission %d belongs to client %d", id, existing.ClientID)
	}

	details, err := buildDetails(db, in.Details)
	if err != nil {
		return err
	}

	if err := gs.DeleteDetails(uint(id)); err != nil {
		return err
	}
	for i := range details {
		details[i].RemissionID = uint(id)
	}
	if err := db.Create(&details).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not replace remission details")
	}

	if in.DeliveredAt != nil {
		if err := db.Model(&models.Remission{}).Where("id = ?", id).
			Update("delivered_at", *in.DeliveredAt).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "could not update remission")
		}
	}

	rem, err := gs.RemissionByID(uint(id))
	if err != nil {
		return err
	}
	reconcile.ApplyTotals(rem)
	if err := gs.SaveTotals(rem); err != nil {
		return err
	}
	if err := gs.AppendAudit(rem); err != nil {
		return err
	}
	return c.JSON(rem)
}

// DELETE /api/remission/:id
func DeleteRemission(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid remission id")
	}

	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}
	gs := stores.NewGorm(db)

	existing, err := gs.RemissionByID(uint(id))
	if err != nil {
		return err
	}
	if existing == nil {
		return reconcile.NotFoundf("remission %d not found", id)
	}

	if err := gs.DeleteRemission(uint(id)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "remission deleted"})
}

// GET /api/remission/:id/audits
func GetRemissionAudits(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid remission id")
	}

	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	var audits []models.RemissionAudit
	if err := db.Where("remission_id = ?", id).Order("version_no").Find(&audits).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(fiber.Map{"audits": audits})
}
