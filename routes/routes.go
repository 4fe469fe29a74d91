package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/CantarellH/distribuidora-api-sub001/controllers"
	"github.com/CantarellH/distribuidora-api-sub001/middlewares"
)

// Register wires all HTTP routes.
func Register(app *fiber.App) {
	api := app.Group("/api")

	// Public auth endpoints
	api.Post("/registration", controllers.Register)
	api.Post("/login", controllers.Login)
	api.Post("/logout", controllers.Logout)

	// Protected endpoints (JWT auth)
	protected := api.Group("")
	protected.Use(middlewares.IsAuthenticated())

	// Per-request transaction for mutating requests
	protected.Use(middlewares.RequestTx())

	// Clients (soft-deleted via status flag)
	protected.Post("/client", controllers.CreateClient)
	protected.Get("/clients", controllers.GetClients)
	protected.Get("/client/:id", controllers.GetClient)
	protected.Put("/client/:id", controllers.UpdateClient)
	protected.Delete("/client/:id", controllers.DeleteClient)

	// Suppliers
	protected.Post("/supplier", controllers.CreateSupplier)
	protected.Get("/suppliers", controllers.GetSuppliers)
	protected.Get("/supplier/:id", controllers.GetSupplier)
	protected.Put("/supplier/:id", controllers.UpdateSupplier)
	protected.Delete("/supplier/:id", controllers.DeleteSupplier)

	// Egg types
	protected.Post("/egg-type", controllers.CreateEggType)
	protected.Get("/egg-types", controllers.GetEggTypes)
	protected.Get("/egg-type/:id", controllers.GetEggType)
	protected.Put("/egg-type/:id", controllers.UpdateEggType)
	protected.Delete("/egg-type/:id", controllers.DeleteEggType)

	// Inventory intake
	protected.Post("/inventory", controllers.CreateInventory)
	protected.Get("/inventories", controllers.GetInventories)
	protected.Get("/inventory/:id", controllers.GetInventory)
	protected.Put("/inventory/:id", controllers.UpdateInventory)
	protected.Delete("/inventory/:id", controllers.DeleteInventory)

	// Remissions (weight-reconciled deliveries)
	protected.Post("/remission", controllers.CreateRemission)
	protected.Get("/remissions", controllers.GetRemissions)
	protected.Get("/remission/:id", controllers.GetRemission)
	protected.Put("/remission/:id", controllers.UpdateRemission)
	protected.Delete("/remission/:id", controllers.DeleteRemission)
	protected.Get("/remission/:id/audits", controllers.GetRemissionAudits)

	// Payments (allocated across remissions)
	protected.Post("/payment", controllers.CreatePayment)
	protected.Get("/payments", controllers.GetPayments)
	protected.Get("/payment/:id", controllers.GetPayment)
	protected.Put("/payment/:id", controllers.UpdatePayment)
	protected.Delete("/payment/:id", controllers.DeletePayment)
}
