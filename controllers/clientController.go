package controllers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/CantarellH/distribuidora-api-sub001/database"
	"github.com/CantarellH/distribuidora-api-sub001/middlewares"
	"github.com/CantarellH/distribuidora-api-sub001/models"
	"github.com/CantarellH/distribuidora-api-sub001/utils"
)

type ClientCreateDTO struct {
	Name        string `json:"name" validate:"required,min=1"`
	ContactName string `json:"contact_name" validate:"omitempty"`
	PhoneNumber string `json:"phone_number" validate:"omitempty"`
	Email       string `json:"email" validate:"omitempty,email"`
	Address     string `json:"address" validate:"omitempty"`
	City        string `json:"city" validate:"omitempty"`
}

type ClientUpdateDTO struct {
	Name        *string `json:"name" validate:"omitempty,min=1"`
	ContactName *string `json:"contact_name" validate:"omitempty"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Address     *string `json:"address" validate:"omitempty"`
	City        *string `json:"city" validate:"omitempty"`
}

// POST /api/client
func CreateClient(c *fiber.Ctx) error {
	var in ClientCreateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizeDTO(&in)

	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	client := models.Client{
		Name:        in.Name,
		ContactName: in.ContactName,
		PhoneNumber: in.PhoneNumber,
		Email:       in.Email,
		Address:     in.Address,
		City:        in.City,
		Status:      true,
	}
	if err := db.Create(&client).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create client")
	}
	return c.Status(fiber.StatusCreated).JSON(client)
}

// GET /api/clients?status=
func GetClients(c *fiber.Ctx) error {
	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	q := db.Model(&models.Client{})
	if s := strings.TrimSpace(c.Query("status")); s != "" {
		status, err := strconv.ParseBool(s)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid status filter")
		}
		q = q.Where("status = ?", status)
	}

	var clients []models.Client
	if err := q.Order("id").Find(&clients).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(fiber.Map{"clients": clients})
}

// GET /api/client/:id
func GetClient(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid client id")
	}

	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	var client models.Client
	if err := db.First(&client, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "client not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(client)
}

// PUT /api/client/:id
func UpdateClient(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid client id")
	}

	var in ClientUpdateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&in)

	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	var existing models.Client
	if err := db.First(&existing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "client not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}

	updates := utils.UpdatesFromPtrDTO(&in, nil)
	if len(updates) > 0 {
		if err := db.Model(&models.Client{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "could not update client")
		}
	}

	var out models.Client
	if err := db.First(&out, "id = ?", id).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to reload client")
	}
	return c.JSON(out)
}

// DELETE /api/client/:id (soft delete: flips the status flag)
func DeleteClient(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid client id")
	}

	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db unavailable")
	}

	var client models.Client
	if err := db.First(&client, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "client not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}

	if err := db.Model(&client).Update("status", false).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not deactivate client")
	}
	return c.JSON(fiber.Map{"message": "client deactivated"})
}
