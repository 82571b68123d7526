// services/aggregator.go
package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"bonus-listing-system/logging"
	"bonus-listing-system/metrics"
	"bonus-listing-system/models"
	"bonus-listing-system/store"
	"bonus-listing-system/utils"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	DefaultBonusTitle = "Unknown Casino"
	DefaultTerms      = "18+. T&Cs apply."
	DefaultRating     = 5.0
)

// CatalogStore is the part of the store the read and ordering paths need.
type CatalogStore interface {
	store.BonusStore
	store.CasinoStore
}

// Aggregator produces the render-ready, ordered bonus list.
type Aggregator struct {
	store       CatalogStore
	images      utils.ImageNormalizer
	concurrency int
}

func NewAggregator(s CatalogStore, images utils.ImageNormalizer, concurrency int) *Aggregator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Aggregator{store: s, images: images, concurrency: concurrency}
}

// List resolves every bonus and sorts by order key (absent last), then
// display name, then id. Output is identical across calls for an unchanged
// store. Only a failure to list bonuses is returned as an error.
func (a *Aggregator) List(ctx context.Context) ([]models.ResolvedBonus, error) {
	start := time.Now()
	defer metrics.ObserveAggregation(start)

	bonuses, err := a.store.ListBonuses(ctx)
	if err != nil {
		metrics.StoreErrors.WithLabelValues("list_bonuses").Inc()
		return nil, fmt.Errorf("failed to fetch bonuses: %w", err)
	}

	casinos, err := a.store.ListCasinos(ctx)
	if err != nil {
		metrics.StoreErrors.WithLabelValues("list_casinos").Inc()
		logging.Warn().Err(err).Msg("casino lookup unavailable, resolving by reference only")
		casinos = nil
	}
	resolver := NewResolver(a.store, NewCasinoIndex(casinos))

	out := make([]models.ResolvedBonus, len(bonuses))
	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i := range bonuses {
		g.Go(func() error {
			out[i] = a.resolveOne(ctx, resolver, bonuses[i])
			return nil
		})
	}
	_ = g.Wait()

	SortResolved(out)

	logging.Debug().Int("count", len(out)).Int("casinos", len(casinos)).Msg("aggregated bonuses")
	return out, nil
}

func (a *Aggregator) resolveOne(ctx context.Context, r *Resolver, b models.Bonus) models.ResolvedBonus {
	res := r.Resolve(ctx, b)

	title := strings.TrimSpace(b.Title)
	if title == "" {
		title = res.BrandName
	}
	if title == "" {
		title = DefaultBonusTitle
	}

	terms := b.TermsText
	if strings.TrimSpace(terms) == "" {
		terms = DefaultTerms
	}

	rating := DefaultRating
	if b.Rating != nil {
		rating = *b.Rating
	}

	var order *int
	if b.OrderKey != nil {
		k := *b.OrderKey
		order = &k
	}

	return models.ResolvedBonus{
		ID:          b.ID,
		Title:       title,
		Description: b.Description,
		Code:        b.Code,
		Link:        utils.NormalizeTrackingLink(b.TrackingLink),
		Image:       a.images.Normalize(b.ImageURL),
		Tags:        utils.ParseTags(b.Tags),
		Rating:      rating,
		Exclusive:   b.Exclusive,
		Terms:       terms,
		Wagering:    b.Wagering,
		MinDeposit:  b.MinDeposit,
		MaxBonus:    b.MaxBonus,
		BrandName:   res.BrandName,
		CasinoID:    res.CasinoID,
		Order:       order,
	}
}

// SortResolved orders bonuses by key (absent last), then display name under
// English collation, then id.
func SortResolved(list []models.ResolvedBonus) {
	col := collate.New(language.English, collate.IgnoreCase)
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		switch {
		case a.Order != nil && b.Order == nil:
			return true
		case a.Order == nil && b.Order != nil:
			return false
		case a.Order != nil && b.Order != nil && *a.Order != *b.Order:
			return *a.Order < *b.Order
		}
		if c := col.CompareString(displayName(a), displayName(b)); c != 0 {
			return c < 0
		}
		return a.ID < b.ID
	})
}

func displayName(r models.ResolvedBonus) string {
	if r.BrandName != "" {
		return r.BrandName
	}
	return r.Title
}
