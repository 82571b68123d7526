// services/migrator.go
package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"bonus-listing-system/logging"
	"bonus-listing-system/metrics"
	"bonus-listing-system/models"
	"bonus-listing-system/utils"

	"golang.org/x/sync/errgroup"
)

// MigrationReport lists what one migration run did. Errors holds one
// message per brand group that failed.
type MigrationReport struct {
	CasinosCreated []string `json:"casinosCreated"`
	BonusesUpdated []string `json:"bonusesUpdated"`
	Errors         []string `json:"errors"`
}

type MigrationStats struct {
	CasinosCreated int `json:"casinosCreated"`
	BonusesUpdated int `json:"bonusesUpdated"`
	Errors         int `json:"errors"`
}

func (r MigrationReport) Stats() MigrationStats {
	return MigrationStats{
		CasinosCreated: len(r.CasinosCreated),
		BonusesUpdated: len(r.BonusesUpdated),
		Errors:         len(r.Errors),
	}
}

// Truncated keeps the first n entries of each list.
func (r MigrationReport) Truncated(n int) MigrationReport {
	head := func(s []string) []string {
		if len(s) > n {
			s = s[:n]
		}
		return append([]string{}, s...)
	}
	return MigrationReport{
		CasinosCreated: head(r.CasinosCreated),
		BonusesUpdated: head(r.BonusesUpdated),
		Errors:         head(r.Errors),
	}
}

// Migrator materializes the casinos implied by brand names on bonuses that
// have no id link, and links those bonuses to them. Running it again is
// safe: linked bonuses are skipped and casinos are found by slug.
type Migrator struct {
	store       CatalogStore
	images      utils.ImageNormalizer
	concurrency int
}

func NewMigrator(s CatalogStore, images utils.ImageNormalizer, concurrency int) *Migrator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Migrator{store: s, images: images, concurrency: concurrency}
}

// Run processes brand groups one at a time in name order so that groups
// sharing a slug reuse the casino the first one created. A failing group is
// recorded and skipped; only the initial bonus fetch aborts the run.
func (m *Migrator) Run(ctx context.Context) (MigrationReport, error) {
	metrics.MigrationRuns.Inc()
	report := MigrationReport{
		CasinosCreated: []string{},
		BonusesUpdated: []string{},
		Errors:         []string{},
	}

	bonuses, err := m.store.ListBonuses(ctx)
	if err != nil {
		metrics.StoreErrors.WithLabelValues("list_bonuses").Inc()
		return report, fmt.Errorf("failed to fetch bonuses: %w", err)
	}

	groups := make(map[string][]models.Bonus)
	for _, b := range bonuses {
		if b.HasIDLink() {
			continue
		}
		brand := fallbackBrand(b)
		if brand == "" {
			continue
		}
		groups[brand] = append(groups[brand], b)
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("Error processing %s: %v", name, err))
			metrics.MigrationItems.WithLabelValues("group_error").Inc()
			continue
		}
		created, updated, err := m.migrateGroup(ctx, name, groups[name])
		if created {
			report.CasinosCreated = append(report.CasinosCreated, name)
			metrics.MigrationItems.WithLabelValues("casino_created").Inc()
		}
		report.BonusesUpdated = append(report.BonusesUpdated, updated...)
		metrics.MigrationItems.WithLabelValues("bonus_updated").Add(float64(len(updated)))
		if err != nil {
			msg := fmt.Sprintf("Error processing %s: %v", name, err)
			logging.Error().Err(err).Str("brand", name).Msg("❌ casino migration group failed")
			report.Errors = append(report.Errors, msg)
			metrics.MigrationItems.WithLabelValues("group_error").Inc()
		}
	}

	stats := report.Stats()
	logging.Info().
		Int("groups", len(names)).
		Int("casinos_created", stats.CasinosCreated).
		Int("bonuses_updated", stats.BonusesUpdated).
		Int("errors", stats.Errors).
		Msg("✅ casino migration completed")
	return report, nil
}

func (m *Migrator) migrateGroup(ctx context.Context, name string, group []models.Bonus) (bool, []string, error) {
	slug := utils.DeriveSlug(name)
	if slug == "" {
		return false, nil, errors.New("brand name has no slug")
	}

	existing, err := m.store.FindCasinos(ctx, models.CasinoFieldSlug, slug)
	if err != nil {
		return false, nil, fmt.Errorf("lookup casino %q: %w", slug, err)
	}

	created := false
	var casinoID string
	if len(existing) > 0 {
		casinoID = existing[0].ID
	} else {
		casinoID, err = m.store.CreateCasino(ctx, m.seedCasino(name, slug, group[0]))
		if err != nil {
			return false, nil, fmt.Errorf("create casino %q: %w", slug, err)
		}
		created = true
		logging.Info().Str("casino_id", casinoID).Str("slug", slug).Msg("🎰 casino created from bonus brand")
	}

	updated, err := m.link(ctx, casinoID, group)
	return created, updated, err
}

// seedCasino builds a casino from one representative bonus of the group.
func (m *Migrator) seedCasino(name, slug string, rep models.Bonus) models.Casino {
	logo := m.images.Normalize(rep.ImageURL)
	if strings.TrimSpace(rep.ImageURL) == "" {
		logo = ""
	}
	website := utils.NormalizeTrackingLink(rep.TrackingLink)
	if website == utils.DefaultTrackingLink {
		website = ""
	}
	rating := 0.0
	if rep.Rating != nil {
		rating = *rep.Rating
	}
	return models.Casino{
		Name:        name,
		Slug:        slug,
		LogoURL:     logo,
		Description: rep.Description,
		Rating:      &rating,
		Website:     website,
	}
}

// link writes the casino id and reference onto every bonus of the group
// concurrently. It returns the ids written and the joined failures.
func (m *Migrator) link(ctx context.Context, casinoID string, group []models.Bonus) ([]string, error) {
	ref := models.CasinoRef(casinoID)
	update := models.BonusUpdate{CasinoID: &casinoID, CasinoLink: &ref}

	var (
		mu      sync.Mutex
		updated []string
		errs    []error
		g       errgroup.Group
	)
	g.SetLimit(m.concurrency)
	for _, b := range group {
		g.Go(func() error {
			err := m.store.UpdateBonus(ctx, b.ID, update)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("bonus %s: %w", b.ID, err))
				return nil
			}
			updated = append(updated, b.ID)
			return nil
		})
	}
	_ = g.Wait()

	sort.Strings(updated)
	return updated, errors.Join(errs...)
}
