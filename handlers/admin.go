// handlers/admin.go
package handlers

import (
	"bonus-listing-system/middleware"
	"bonus-listing-system/services"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminRoutes mounts the ungated login endpoints and returns the gated
// admin group the other route sets hang off.
func SetupAdminRoutes(api fiber.Router, auth *services.AuthService, uploads *services.UploadService) fiber.Router {
	api.Post("/admin/auth", auth.Login)
	api.Post("/admin/logout", auth.Logout)
	api.Get("/admin/session", auth.Session)

	admin := api.Group("/admin", middleware.AdminAuthMiddleware(auth, services.AdminCookie))
	if uploads != nil {
		admin.Post("/uploads", uploads.UploadImage)
	}
	return admin
}

func SetupHealthRoutes(app *fiber.App, health *services.HealthService) {
	app.Get("/healthz", health.Live)
	app.Get("/readyz", health.Ready)
}
