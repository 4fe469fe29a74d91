package middlewares

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/CantarellH/distribuidora-api-sub001/database"
)

// RequestTx opens one DB transaction per mutating request and exposes it via
// c.Locals("tx"). The handler chain runs inside it: an error or panic rolls
// back every write of the request, so multi-entity operations (remission +
// details + box weights, payment + allocations) commit or fail as one unit.
func RequestTx() fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		switch c.Method() {
		case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch, fiber.MethodDelete:
		default:
			return c.Next()
		}

		tx := database.DB.Begin()
		if tx.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to begin transaction")
		}

		defer func() {
			if r := recover(); r != nil {
				_ = tx.Rollback()
				panic(r) // re-panic after rollback so Fiber's handler can catch
			}
			if err != nil {
				_ = tx.Rollback()
				return
			}
			if e := tx.Commit().Error; e != nil {
				zap.L().Error("tx commit failed", zap.Error(e))
				err = fiber.NewError(fiber.StatusInternalServerError, "transaction commit failed")
			}
		}()

		c.Locals("tx", tx)

		err = c.Next()
		return err
	}
}
