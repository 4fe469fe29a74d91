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

type EggTypeCreateDTO struct {
	Name        string `json:"name" validate:"required,min=1"`
	Description string `json:"description" validate:"omitempty"`
}

type EggTypeUpdateDTO struct {
	Name        *string `json:"name" validate:"omitempty,min=1"`
	Description *string `json:"description" validate:"omitempty"`
}

// POST /api/egg-type
func CreateEggType(c *fiber.Ctx) error {
	var in EggTypeCreateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizeDTO(&in)

	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	eggType := models.EggType{Name: in.Name, Description: in.Description}
	if err := db.Create(&eggType).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create egg type")
	}
	return c.Status(fiber.StatusCreated).JSON(eggType)
}

// GET /api/egg-types
func GetEggTypes(c *fiber.Ctx) error {
	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	var eggTypes []models.EggType
	if err := db.Order("id").Find(&eggTypes).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(fiber.Map{"egg_types": eggTypes})
}

// GET /api/egg-type/:id
func GetEggType(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid egg type id")
	}

	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	var eggType models.EggType
	if err := db.First(&eggType, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "egg type not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(eggType)
}

// PUT /api/egg-type/:id
func UpdateEggType(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid egg type id")
	}

	var in EggTypeUpdateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&in)

	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	var existing models.EggType
	if err := db.First(&existing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "egg type not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}

	updates := utils.UpdatesFromPtrDTO(&in, nil)
	if len(updates) > 0 {
		if err := db.Model(&models.EggType{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "could not update egg type")
		}
	}

	var out models.EggType
	if err := db.First(&out, "id = ?", id).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to reload egg type")
	}
	return c.JSON(out)
}

// DELETE /api/egg-type/:id
func DeleteEggType(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid egg type id")
	}

	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	var eggType models.EggType
	if err := db.First(&eggType, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "egg type not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}

	var refs int64
	if err := db.Model(&models.RemissionDetail{}).Where("egg_type_id = ?", id).Count(&refs).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	if refs > 0 {
		return reconcile.Consistencyf("egg type %d is referenced by %d remission details", id, refs)
	}

	if err := db.Delete(&eggType).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not delete egg type")
	}
	return c.JSON(fiber.Map{"message": "egg type deleted"})
}
