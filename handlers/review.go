// handlers/review.go
package handlers

import (
	"bonus-listing-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupReviewRoutes(api fiber.Router, admin fiber.Router, reviewService *services.ReviewService) {
	api.Get("/reviews", reviewService.GetPublicReviews)

	admin.Get("/reviews", reviewService.GetAllReviews)
	admin.Post("/reviews", reviewService.CreateReview)
	admin.Put("/reviews", reviewService.UpdateReview)
	admin.Delete("/reviews", reviewService.DeleteReview)
}
