// services/bonus_service.go
package services

import (
	"fmt"

	"bonus-listing-system/logging"
	"bonus-listing-system/models"
	"bonus-listing-system/store"

	"github.com/gofiber/fiber/v2"
)

type BonusService struct {
	Store      store.BonusStore
	Aggregator *Aggregator
	Sequencer  *Sequencer
}

func NewBonusService(s store.BonusStore, agg *Aggregator, seq *Sequencer) *BonusService {
	return &BonusService{Store: s, Aggregator: agg, Sequencer: seq}
}

// GetPublicBonuses serves the render list. Failures degrade to an empty list.
func (s *BonusService) GetPublicBonuses(c *fiber.Ctx) error {
	bonuses, err := s.Aggregator.List(c.UserContext())
	if err != nil {
		logging.Ctx(c.UserContext()).Error().Err(err).Msg("❌ public bonus list unavailable")
		return c.JSON(fiber.Map{"bonuses": []models.ResolvedBonus{}})
	}
	return c.JSON(fiber.Map{"bonuses": bonuses})
}

// GetAllBonuses is the admin list; failures are reported.
func (s *BonusService) GetAllBonuses(c *fiber.Ctx) error {
	bonuses, err := s.Aggregator.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"bonuses": bonuses})
}

// CreateBonus stores a new bonus at the end of the order.
func (s *BonusService) CreateBonus(c *fiber.Ctx) error {
	var req BonusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := req.ValidateCreate(); err != nil {
		return respondError(c, err)
	}

	ctx := c.UserContext()
	bonus := req.NewBonus()
	if req.Order != nil {
		bonus.OrderKey = req.Order
	} else {
		key, err := s.Sequencer.AppendKey(ctx)
		if err != nil {
			return respondError(c, err)
		}
		bonus.OrderKey = &key
	}

	id, err := s.Store.CreateBonus(ctx, bonus)
	if err != nil {
		return respondError(c, fmt.Errorf("failed to create bonus: %w", err))
	}

	logging.Ctx(ctx).Info().Str("bonus_id", id).Int("order", *bonus.OrderKey).Msg("✅ bonus created")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Bonus created successfully",
		"id":      id,
	})
}

// UpdateBonus applies a partial edit. No re-sequencing happens here.
func (s *BonusService) UpdateBonus(c *fiber.Ctx) error {
	var req BonusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := req.ValidateUpdate(); err != nil {
		return respondError(c, err)
	}

	ctx := c.UserContext()
	if err := s.Store.UpdateBonus(ctx, req.ID, req.Update()); err != nil {
		return respondError(c, fmt.Errorf("bonus %s: %w", req.ID, err))
	}
	return c.JSON(fiber.Map{"success": true, "message": "Bonus updated successfully"})
}

// DeleteBonus removes a bonus and re-sequences the rest.
func (s *BonusService) DeleteBonus(c *fiber.Ctx) error {
	id := c.Query("id")
	if id == "" {
		return respondError(c, fieldError("id", "cannot be blank"))
	}

	ctx := c.UserContext()
	if err := s.Store.DeleteBonus(ctx, id); err != nil {
		return respondError(c, fmt.Errorf("bonus %s: %w", id, err))
	}

	resp := fiber.Map{"success": true, "message": "Bonus deleted successfully"}
	report, err := s.Sequencer.SequenceAll(ctx)
	if err != nil {
		// the delete stands; the next re-sequence heals the gap
		logging.Ctx(ctx).Error().Err(err).Str("bonus_id", id).Msg("re-sequence after delete failed")
		resp["resequenceError"] = err.Error()
	} else {
		resp["resequenced"] = report
	}
	return c.JSON(resp)
}

// ReorderBonuses handles pairwise key assignment, swaps and full re-sequencing.
func (s *BonusService) ReorderBonuses(c *fiber.Ctx) error {
	var req ReorderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := req.Validate(); err != nil {
		return respondError(c, err)
	}

	ctx := c.UserContext()
	if req.ReorderAll {
		report, err := s.Sequencer.SequenceAll(ctx)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{
			"success": report.Failed == 0,
			"message": fmt.Sprintf("Reordered %d bonuses sequentially", report.Total),
			"report":  report,
		})
	}

	var err error
	if req.Order1 == nil {
		err = s.Sequencer.Swap(ctx, req.BonusID1, req.BonusID2)
	} else {
		err = s.Sequencer.Assign(ctx,
			Assignment{BonusID: req.BonusID1, Key: *req.Order1},
			Assignment{BonusID: req.BonusID2, Key: *req.Order2},
		)
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Bonuses reordered successfully"})
}
