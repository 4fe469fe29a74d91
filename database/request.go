package database

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetRequestDB returns the *gorm.DB bound to the current request. Mutating
// requests run inside the transaction opened by middlewares.RequestTx; reads
// outside a transaction fall back to the shared connection.
func GetRequestDB(c *fiber.Ctx) (*gorm.DB, error) {
	if v := c.Locals("tx"); v != nil {
		if tx, ok := v.(*gorm.DB); ok && tx != nil {
			return tx, nil
		}
	}
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	return DB, nil
}
