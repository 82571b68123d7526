// services/casino_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"bonus-listing-system/logging"
	"bonus-listing-system/models"
	"bonus-listing-system/store"
	"bonus-listing-system/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type CasinoService struct {
	Store      store.CasinoStore
	Aggregator *Aggregator
	Migrator   *Migrator
	Images     utils.ImageNormalizer
}

func NewCasinoService(s store.CasinoStore, agg *Aggregator, mig *Migrator, images utils.ImageNormalizer) *CasinoService {
	return &CasinoService{Store: s, Aggregator: agg, Migrator: mig, Images: images}
}

// present fills the derived slug and normalizes the logo for output.
func (s *CasinoService) present(c models.Casino) models.Casino {
	c.Slug = CasinoSlug(c)
	if c.Slug == "" {
		c.Slug = c.ID
	}
	if c.LogoURL != "" {
		c.LogoURL = s.Images.Normalize(c.LogoURL)
	}
	if c.Name == "" {
		c.Name = DefaultBonusTitle
	}
	return c
}

// ListCasinos returns every casino sorted by name.
func (s *CasinoService) ListCasinos(ctx context.Context) ([]models.Casino, error) {
	casinos, err := s.Store.ListCasinos(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch casinos: %w", err)
	}
	out := make([]models.Casino, len(casinos))
	for i, c := range casinos {
		out[i] = s.present(c)
	}
	col := collate.New(language.English, collate.IgnoreCase)
	sort.SliceStable(out, func(i, j int) bool {
		if c := col.CompareString(out[i].Name, out[j].Name); c != 0 {
			return c < 0
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// CasinoBySlug queries the slug field and falls back to derived slugs.
func (s *CasinoService) CasinoBySlug(ctx context.Context, slug string) (models.Casino, error) {
	found, err := s.Store.FindCasinos(ctx, models.CasinoFieldSlug, slug)
	if err != nil {
		return models.Casino{}, err
	}
	if len(found) > 0 {
		return s.present(found[0]), nil
	}

	all, err := s.ListCasinos(ctx)
	if err != nil {
		return models.Casino{}, err
	}
	for _, c := range all {
		if c.Slug == slug {
			return c, nil
		}
	}
	return models.Casino{}, fmt.Errorf("casino %q: %w", slug, store.ErrNotFound)
}

// CasinoPage is a casino with the bonuses attributed to it.
type CasinoPage struct {
	Casino  *models.Casino         `json:"casino"`
	Name    string                 `json:"name"`
	Bonuses []models.ResolvedBonus `json:"bonuses"`
}

// Page assembles the public casino page. Bonuses match by resolved casino
// id, else by brand name, else by brand slug. Without a casino record the
// first bonus whose brand slug (or id) matches seeds the page.
func (s *CasinoService) Page(ctx context.Context, slug string) (CasinoPage, error) {
	var casino *models.Casino
	if c, err := s.CasinoBySlug(ctx, slug); err == nil {
		casino = &c
	} else if !errors.Is(err, store.ErrNotFound) {
		logging.Warn().Err(err).Str("slug", slug).Msg("casino lookup failed")
	}

	all, err := s.Aggregator.List(ctx)
	if err != nil {
		logging.Warn().Err(err).Str("slug", slug).Msg("bonus list unavailable for casino page")
		all = nil
	}

	page := CasinoPage{Casino: casino, Bonuses: []models.ResolvedBonus{}}
	if casino != nil {
		for _, b := range all {
			if matchesCasino(b, *casino, slug) {
				page.Bonuses = append(page.Bonuses, b)
			}
		}
	} else {
		seed, ok := firstBySlug(all, slug)
		if !ok {
			return CasinoPage{}, fmt.Errorf("casino %q: %w", slug, store.ErrNotFound)
		}
		if seed.CasinoID != "" {
			if c, err := s.Store.GetCasino(ctx, seed.CasinoID); err == nil {
				c = s.present(c)
				page.Casino = &c
			}
		}
		for _, b := range all {
			if b.ID == seed.ID || matchesSeed(b, seed, page.Casino) {
				page.Bonuses = append(page.Bonuses, b)
			}
		}
	}

	switch {
	case page.Casino != nil:
		page.Name = page.Casino.Name
	case len(page.Bonuses) > 0 && page.Bonuses[0].BrandName != "":
		page.Name = page.Bonuses[0].BrandName
	case len(page.Bonuses) > 0:
		page.Name = page.Bonuses[0].Title
	default:
		page.Name = DefaultBonusTitle
	}
	return page, nil
}

func matchesCasino(b models.ResolvedBonus, c models.Casino, slug string) bool {
	if b.CasinoID != "" {
		return b.CasinoID == c.ID
	}
	if b.BrandName == "" {
		return false
	}
	return nameKey(b.BrandName) == nameKey(c.Name) || utils.DeriveSlug(b.BrandName) == slug
}

func firstBySlug(list []models.ResolvedBonus, slug string) (models.ResolvedBonus, bool) {
	for _, b := range list {
		if utils.DeriveSlug(displayName(b)) == slug || b.ID == slug {
			return b, true
		}
	}
	return models.ResolvedBonus{}, false
}

func matchesSeed(b, seed models.ResolvedBonus, casino *models.Casino) bool {
	if casino != nil && b.CasinoID != "" {
		return b.CasinoID == casino.ID
	}
	return seed.BrandName != "" && nameKey(b.BrandName) == nameKey(seed.BrandName)
}

// ===== HTTP =====

func (s *CasinoService) GetCasinoPage(c *fiber.Ctx) error {
	page, err := s.Page(c.UserContext(), c.Params("slug"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

func (s *CasinoService) GetAllCasinos(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if id := c.Query("id"); id != "" {
		casino, err := s.Store.GetCasino(ctx, id)
		if err != nil {
			return respondError(c, fmt.Errorf("casino %s: %w", id, err))
		}
		return c.JSON(fiber.Map{"casino": s.present(casino)})
	}
	casinos, err := s.ListCasinos(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"casinos": casinos})
}

func (s *CasinoService) CreateCasino(c *fiber.Ctx) error {
	var req CasinoRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := req.ValidateCreate(); err != nil {
		return respondError(c, err)
	}

	casino := req.NewCasino()
	id, err := s.Store.CreateCasino(c.UserContext(), casino)
	if err != nil {
		return respondError(c, fmt.Errorf("failed to create casino: %w", err))
	}
	logging.Ctx(c.UserContext()).Info().Str("casino_id", id).Str("slug", casino.Slug).Msg("✅ casino created")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"id":      id,
		"slug":    casino.Slug,
		"message": "Casino created successfully",
	})
}

func (s *CasinoService) UpdateCasino(c *fiber.Ctx) error {
	var req CasinoRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := req.ValidateUpdate(); err != nil {
		return respondError(c, err)
	}
	if err := s.Store.UpdateCasino(c.UserContext(), req.ID, req.Update()); err != nil {
		return respondError(c, fmt.Errorf("casino %s: %w", req.ID, err))
	}
	return c.JSON(fiber.Map{"success": true, "message": "Casino updated successfully"})
}

// MigrateCasinos runs the migration and returns counts plus the first ten
// entries of each list.
func (s *CasinoService) MigrateCasinos(c *fiber.Ctx) error {
	report, err := s.Migrator.Run(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to migrate casinos",
			"details": err.Error(),
		})
	}
	sample := report.Truncated(10)
	return c.JSON(fiber.Map{
		"success":        true,
		"message":        "Migration completed",
		"stats":          report.Stats(),
		"casinosCreated": sample.CasinosCreated,
		"bonusesUpdated": sample.BonusesUpdated,
		"errors":         sample.Errors,
	})
}
