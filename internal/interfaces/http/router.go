package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bapperida/siperjadin/internal/application/auth"
	"github.com/bapperida/siperjadin/internal/application/usecase"
)

// RouterDeps dependencies for the router.
type RouterDeps struct {
	AuthUC        *auth.AuthUseCase
	TravelOrderUC *usecase.TravelOrderUseCase
	DocumentPDFUC *usecase.DocumentPDFUseCase
	JWTSecret     string
}

// Router registers the API routes.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (public)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Protected routes (require Bearer token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Travel documents (protected)
	orders := protected.Group("/travel-orders")
	orderHandler := NewTravelOrderHandler(deps.TravelOrderUC, deps.DocumentPDFUC)
	orders.Post("/", orderHandler.Create)
	orders.Get("/", orderHandler.List)
	orders.Get("/stats", orderHandler.Stats)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Put("/:id", orderHandler.Update)
	orders.Delete("/:id", orderHandler.Delete)
	orders.Get("/:id/pdf", orderHandler.DownloadPDF)
}
