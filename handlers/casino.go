// handlers/casino.go
package handlers

import (
	"bonus-listing-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupCasinoRoutes(api fiber.Router, admin fiber.Router, casinoService *services.CasinoService) {
	api.Get("/casinos/:slug", casinoService.GetCasinoPage)

	admin.Get("/casinos", casinoService.GetAllCasinos)
	admin.Post("/casinos", casinoService.CreateCasino)
	admin.Put("/casinos", casinoService.UpdateCasino)
	admin.Post("/casinos/migrate", casinoService.MigrateCasinos)
}
