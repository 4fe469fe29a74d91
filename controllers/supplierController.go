package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/CantarellH/distribuidora-api-sub001/database"
	"github.com/CantarellH/distribuidora-api-sub001/middlewares"
	"github.com/CantarellH/distribuidora-api-sub001/models"
	"github.com/CantarellH/distribuidora-api-sub001/reconcile"
	"github.com/CantarellH/distribuidora-api-sub001/utils"
)

type SupplierCreateDTO struct {
	CompanyName  string `json:"company_name" validate:"required,min=1"`
	ContactName  string `json:"contact_name" validate:"omitempty"`
	Address      string `json:"address" validate:"omitempty"`
	City         string `json:"city" validate:"omitempty"`
	Email        string `json:"email" validate:"omitempty,email"`
	PhoneNumber  string `json:"phone_number" validate:"omitempty"`
	MobileNumber string `json:"mobile_number" validate:"omitempty"`
}

type SupplierUpdateDTO struct {
	CompanyName  *string `json:"company_name" validate:"omitempty,min=1"`
	ContactName  *string `json:"contact_name" validate:"omitempty"`
	Address      *string `json:"address" validate:"omitempty"`
	City         *string `json:"city" validate:"omitempty"`
	Email        *string `json:"email" validate:"omitempty,email"`
	PhoneNumber  *string `json:"phone_number" validate:"omitempty"`
	MobileNumber *string `json:"mobile_number" validate:"omitempty"`
}

// POST /api/supplier
func CreateSupplier(c *fiber.Ctx) error {
	var in SupplierCreateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizeDTO(&in)

	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	supplier := models.Supplier{
		CompanyName:  in.CompanyName,
		ContactName:  in.ContactName,
		Address:      in.Address,
		City:         in.City,
		Email:        in.Email,
		PhoneNumber:  in.PhoneNumber,
		MobileNumber: in.MobileNumber,
	}
	if err := db.Create(&supplier).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create supplier")
	}
	return c.Status(fiber.StatusCreated).JSON(supplier)
}

// GET /api/suppliers
func GetSuppliers(c *fiber.Ctx) error {
	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	var suppliers []models.Supplier
	if err := db.Order("id").Find(&suppliers).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(fiber.Map{"suppliers": suppliers})
}

// GET /api/supplier/:id
func GetSupplier(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid supplier id")
	}

	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	var supplier models.Supplier
	if err := db.First(&supplier, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "supplier not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(supplier)
}

// PUT /api/supplier/:id
func UpdateSupplier(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid supplier id")
	}

	var in SupplierUpdateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&in)

	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	var existing models.Supplier
	if err := db.First(&existing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "supplier not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}

	updates := utils.UpdatesFromPtrDTO(&in, nil)
	if len(updates) > 0 {
		if err := db.Model(&models.Supplier{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "could not update supplier")
		}
	}

	var out models.Supplier
	if err := db.First(&out, "id = ?", id).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to reload supplier")
	}
	return c.JSON(out)
}

// DELETE /api/supplier/:id
func DeleteSupplier(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid supplier id")
	}

	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	var supplier models.Supplier
	if err := db.First(&supplier, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "supplier not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}

	var refs int64
	if err := db.Model(&models.RemissionDetail{}).Where("supplier_id = ?", id).Count(&refs).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	if refs > 0 {
		return reconcile.Consistencyf("supplier %d is referenced by %d remission details", id, refs)
	}

	if err := db.Delete(&supplier).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not delete supplier")
	}
	return c.JSON(fiber.Map{"message": "supplier deleted"})
}
