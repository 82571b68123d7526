// handlers/bonus.go
package handlers

import (
	"bonus-listing-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupBonusRoutes(api fiber.Router, admin fiber.Router, bonusService *services.BonusService) {
	// 🔓 Public
	api.Get("/bonuses", bonusService.GetPublicBonuses)

	// 🔐 Admin
	admin.Get("/bonuses", bonusService.GetAllBonuses)
	admin.Post("/bonuses", bonusService.CreateBonus)
	admin.Put("/bonuses", bonusService.UpdateBonus)
	admin.Delete("/bonuses", bonusService.DeleteBonus)
	admin.Post("/bonuses/reorder", bonusService.ReorderBonuses)
}
