package controllers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/CantarellH/distribuidora-api-sub001/database"
	"github.com/CantarellH/distribuidora-api-sub001/middlewares"
	"github.com/CantarellH/distribuidora-api-sub001/models"
	"github.com/CantarellH/distribuidora-api-sub001/reconcile"
	"github.com/CantarellH/distribuidora-api-sub001/stores"
	"github.com/CantarellH/distribuidora-api-sub001/utils"
)

type PaymentCreateDTO struct {
	ClientID     uint       `json:"client_id" validate:"required,min=1"`
	Amount       float64    `json:"amount" validate:"required,gt=0"`
	Method       string     `json:"method" validate:"required,oneof=cash transfer check card"`
	Reference    string     `json:"reference" validate:"omitempty"`
	PaidAt       *time.Time `json:"paid_at"`
	RemissionIDs []uint     `json:"remission_ids" validate:"required,min=1"`
}

type PaymentUpdateDTO struct {
	Amount    *float64 `json:"amount" validate:"omitempty,gt=0"`
	Method    *string  `json:"method" validate:"omitempty,oneof=cash transfer check card"`
	Reference *string  `json:"reference" validate:"omitempty"`
}

// POST /api/payment
//
// Creates the payment and allocates it against the listed remissions in one
// transaction. A missing remission or a client mismatch rolls the whole
// request back.
func CreatePayment(c *fiber.Ctx) error {
	var in PaymentCreateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizeDTO(&in)

	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}
	gs := stores.NewGorm(db)

	paidAt := time.Now().UTC()
	if in.PaidAt != nil {
		paidAt = *in.PaidAt
	}

	payment := models.Payment{
		ClientID:  in.ClientID,
		Amount:    in.Amount,
		Method:    in.Method,
		Reference: in.Reference,
		PaidAt:    paidAt,
	}

	allocator := reconcile.NewAllocator(gs, gs, gs)
	updated, err := allocator.Allocate(&payment, in.RemissionIDs)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"payment":    payment,
		"remissions": updated,
	})
}

// GET /api/payments?client_id=&method=&from=&to=&min_amount=&max_amount=&limit=
//
// Read-only projection over stored payments; carries no reconciliation
// logic.
func GetPayments(c *fiber.Ctx) error {
	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	q := db.Model(&models.Payment{})

	if id := c.QueryInt("client_id"); id > 0 {
		q = q.Where("client_id = ?", id)
	}
	if m := strings.TrimSpace(c.Query("method")); m != "" {
		q = q.Where("method = ?", m)
	}
	if from := strings.TrimSpace(c.Query("from")); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid from date, want YYYY-MM-DD")
		}
		q = q.Where("paid_at >= ?", t)
	}
	if to := strings.TrimSpace(c.Query("to")); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid to date, want YYYY-MM-DD")
		}
		q = q.Where("paid_at < ?", t.AddDate(0, 0, 1))
	}
	if min := c.QueryFloat("min_amount"); min > 0 {
		q = q.Where("amount >= ?", min)
	}
	if max := c.QueryFloat("max_amount"); max > 0 {
		q = q.Where("amount <= ?", max)
	}

	limit := utils.ParseIntDefault(c.Query("limit"), 100)

	var payments []models.Payment
	if err := q.Order("paid_at desc").Limit(limit).Find(&payments).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(fiber.Map{"payments": payments})
}

// GET /api/payment/:id
func GetPayment(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payment id")
	}

	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}
	gs := stores.NewGorm(db)

	payment, err := gs.PaymentByID(uint(id))
	if err != nil {
		return err
	}
	if payment == nil {
		return reconcile.NotFoundf("payment %d not found", id)
	}

	remissionIDs, err := gs.RemissionIDsForPayment(payment.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"payment":       payment,
		"remission_ids": remissionIDs,
	})
}

// PUT /api/payment/:id
//
// Amount/method/reference correction. Every remission the payment covers is
// recomputed in the same transaction, so paid status always reflects the
// corrected amount.
func UpdatePayment(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payment id")
	}

	var in PaymentUpdateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&in)

	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}
	gs := stores.NewGorm(db)

	payment, err := gs.PaymentByID(uint(id))
	if err != nil {
		return err
	}
	if payment == nil {
		return reconcile.NotFoundf("payment %d not found", id)
	}

	updates := utils.UpdatesFromPtrDTO(&in, nil)
	if len(updates) > 0 {
		if err := db.Model(&models.Payment{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "could not update payment")
		}
	}

	allocator := reconcile.NewAllocator(gs, gs, gs)
	remissionIDs, err := gs.RemissionIDsForPayment(payment.ID)
	if err != nil {
		return err
	}
	for _, rid := range remissionIDs {
		if _, err := allocator.Recompute(rid); err != nil {
			return err
		}
	}

	out, err := gs.PaymentByID(uint(id))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// DELETE /api/payment/:id
//
// Detaches only this payment from the remissions it covered and recomputes
// their paid status from the remaining payments.
func DeletePayment(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payment id")
	}

	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}
	gs := stores.NewGorm(db)

	payment, err := gs.PaymentByID(uint(id))
	if err != nil {
		return err
	}
	if payment == nil {
		return reconcile.NotFoundf("payment %d not found", id)
	}

	allocator := reconcile.NewAllocator(gs, gs, gs)
	if err := allocator.Deallocate(payment); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "payment deleted"})
}
