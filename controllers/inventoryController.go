package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/CantarellH/distribuidora-api-sub001/database"
	"github.com/CantarellH/distribuidora-api-sub001/middlewares"
	"github.com/CantarellH/distribuidora-api-sub001/models"
	"github.com/CantarellH/distribuidora-api-sub001/reconcile"
	"github.com/CantarellH/distribuidora-api-sub001/utils"
)

type InventoryCreateDTO struct {
	SupplierID uint       `json:"supplier_id" validate:"required,min=1"`
	EggTypeID  uint       `json:"egg_type_id" validate:"required,min=1"`
	BoxCount   int        `json:"box_count" validate:"required,min=1"`
	NetWeight  float64    `json:"net_weight" validate:"required,gt=0"`
	EntryDate  *time.Time `json:"entry_date"`
}

type InventoryUpdateDTO struct {
	BoxCount  *int     `json:"box_count" validate:"omitempty,min=1"`
	NetWeight *float64 `json:"net_weight" validate:"omitempty,gt=0"`
}

// POST /api/inventory
func CreateInventory(c *fiber.Ctx) error {
	var in InventoryCreateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizeDTO(&in)

	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	if err := db.First(&models.Supplier{}, "id = ?", in.SupplierID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return reconcile.NotFoundf("supplier %d not found", in.SupplierID)
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	if err := db.First(&models.EggType{}, "id = ?", in.EggTypeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return reconcile.NotFoundf("egg type %d not found", in.EggTypeID)
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}

	entryDate := time.Now().UTC()
	if in.EntryDate != nil {
		entryDate = *in.EntryDate
	}

	entry := models.InventoryEntry{
		SupplierID: in.SupplierID,
		EggTypeID:  in.EggTypeID,
		BoxCount:   in.BoxCount,
		NetWeight:  utils.Round2(in.NetWeight),
		EntryDate:  entryDate,
	}
	if err := db.Create(&entry).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create inventory entry")
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

// GET /api/inventories?supplier_id=&egg_type_id=&from=&to=
func GetInventories(c *fiber.Ctx) error {
	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	q := db.Model(&models.InventoryEntry{}).Preload("Supplier").Preload("EggType")

	if s := c.QueryInt("supplier_id"); s > 0 {
		q = q.Where("supplier_id = ?", s)
	}
	if e := c.QueryInt("egg_type_id"); e > 0 {
		q = q.Where("egg_type_id = ?", e)
	}
	if from := strings.TrimSpace(c.Query("from")); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid from date, want YYYY-MM-DD")
		}
		q = q.Where("entry_date >= ?", t)
	}
	if to := strings.TrimSpace(c.Query("to")); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid to date, want YYYY-MM-DD")
		}
		q = q.Where("entry_date < ?", t.AddDate(0, 0, 1))
	}

	var entries []models.InventoryEntry
	if err := q.Order("entry_date desc").Find(&entries).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(fiber.Map{"inventories": entries})
}

// GET /api/inventory/:id
func GetInventory(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid inventory id")
	}

	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	var entry models.InventoryEntry
	if err := db.Preload("Supplier").Preload("EggType").First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "inventory entry not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(entry)
}

// PUT /api/inventory/:id
func UpdateInventory(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid inventory id")
	}

	var in InventoryUpdateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&in)

	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	var existing models.InventoryEntry
	if err := db.First(&existing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "inventory entry not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}

	updates := utils.UpdatesFromPtrDTO(&in, nil)
	if len(updates) > 0 {
		if err := db.Model(&models.InventoryEntry{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "could not update inventory entry")
		}
	}

	var out models.InventoryEntry
	if err := db.Preload("Supplier").Preload("EggType").First(&out, "id = ?", id).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to reload inventory entry")
	}
	return c.JSON(out)
}

// DELETE /api/inventory/:id
func DeleteInventory(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid inventory id")
	}

	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	var entry models.InventoryEntry
	if err := db.First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "inventory entry not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}

	if err := db.Delete(&entry).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not delete inventory entry")
	}
	return c.JSON(fiber.Map{"message": "inventory entry deleted"})
}
