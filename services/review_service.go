// services/review_service.go
package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"bonus-listing-system/logging"
	"bonus-listing-system/models"
	"bonus-listing-system/store"
	"bonus-listing-system/utils"

	"github.com/gofiber/fiber/v2"
)

type ReviewService struct {
	Store store.ReviewStore
	now   func() time.Time
}

func NewReviewService(s store.ReviewStore) *ReviewService {
	return &ReviewService{Store: s, now: time.Now}
}

// PublicReview is a review as the casino page renders it.
type PublicReview struct {
	models.Review
	TimeAgo string `json:"timeAgo"`
}

// newestFirst sorts by creation time descending, then id.
func newestFirst(reviews []models.Review) {
	sort.SliceStable(reviews, func(i, j int) bool {
		if !reviews[i].CreatedAt.Equal(reviews[j].CreatedAt) {
			return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
		}
		return reviews[i].ID < reviews[j].ID
	})
}

// ForCasino lists a casino's reviews newest first with relative ages.
func (s *ReviewService) ForCasino(ctx context.Context, casinoID string) ([]PublicReview, error) {
	reviews, err := s.Store.FindReviewsByCasino(ctx, casinoID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reviews: %w", err)
	}
	newestFirst(reviews)

	now := s.now()
	out := make([]PublicReview, len(reviews))
	for i, r := range reviews {
		if r.Seed == "" {
			r.Seed = defaultSeed(r.Name)
		}
		out[i] = PublicReview{Review: r, TimeAgo: utils.TimeAgo(r.CreatedAt, now)}
	}
	return out, nil
}

// ===== HTTP =====

func (s *ReviewService) GetPublicReviews(c *fiber.Ctx) error {
	casinoID := c.Query("casinoId")
	if casinoID == "" {
		return respondError(c, fieldError("casinoId", "cannot be blank"))
	}
	reviews, err := s.ForCasino(c.UserContext(), casinoID)
	if err != nil {
		logging.Ctx(c.UserContext()).Error().Err(err).Str("casino_id", casinoID).Msg("❌ public review list unavailable")
		return c.JSON(fiber.Map{"reviews": []PublicReview{}})
	}
	return c.JSON(fiber.Map{"reviews": reviews})
}

func (s *ReviewService) GetAllReviews(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var (
		reviews []models.Review
		err     error
	)
	if casinoID := c.Query("casinoId"); casinoID != "" {
		reviews, err = s.Store.FindReviewsByCasino(ctx, casinoID)
	} else {
		reviews, err = s.Store.ListReviews(ctx)
	}
	if err != nil {
		return respondError(c, fmt.Errorf("failed to fetch reviews: %w", err))
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	newestFirst(reviews)
	return c.JSON(fiber.Map{"reviews": reviews})
}

func (s *ReviewService) CreateReview(c *fiber.Ctx) error {
	var req ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := req.ValidateCreate(); err != nil {
		return respondError(c, err)
	}

	review := req.NewReview()
	review.CreatedAt = s.now()
	id, err := s.Store.CreateReview(c.UserContext(), review)
	if err != nil {
		return respondError(c, fmt.Errorf("failed to create review: %w", err))
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"id":      id,
		"message": "Review created successfully",
	})
}

func (s *ReviewService) UpdateReview(c *fiber.Ctx) error {
	var req ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := req.ValidateUpdate(); err != nil {
		return respondError(c, err)
	}
	if err := s.Store.UpdateReview(c.UserContext(), req.ID, req.Update()); err != nil {
		return respondError(c, fmt.Errorf("review %s: %w", req.ID, err))
	}
	return c.JSON(fiber.Map{"success": true, "message": "Review updated successfully"})
}

func (s *ReviewService) DeleteReview(c *fiber.Ctx) error {
	id := c.Query("id")
	if id == "" {
		return respondError(c, fieldError("id", "cannot be blank"))
	}
	if err := s.Store.DeleteReview(c.UserContext(), id); err != nil {
		return respondError(c, fmt.Errorf("review %s: %w", id, err))
	}
	return c.JSON(fiber.Map{"success": true, "message": "Review deleted successfully"})
}
