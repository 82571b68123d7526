// services/resolver.go
package services

import (
	"context"
	"errors"
	"sort"
	"strings"

	"bonus-listing-system/logging"
	"bonus-listing-system/metrics"
	"bonus-listing-system/models"
	"bonus-listing-system/store"
	"bonus-listing-system/utils"
)

// ResolutionStep names the rule that produced a Resolution.
type ResolutionStep string

const (
	StepCasinoID   ResolutionStep = "casino_id"
	StepRef        ResolutionStep = "ref"
	StepLegacyName ResolutionStep = "legacy_name"
	StepSlug       ResolutionStep = "slug"
	StepUnlinked   ResolutionStep = "unlinked"
)

// Resolution is the casino identity of one bonus. An empty CasinoID is a
// valid outcome for bonuses nothing links to.
type Resolution struct {
	CasinoID  string
	BrandName string
	Step      ResolutionStep
}

// CasinoLookup answers the in-memory matching rules of the resolver.
type CasinoLookup interface {
	ByID(id string) (models.Casino, bool)
	ByName(name string) (models.Casino, bool) // trimmed, case-insensitive
	BySlug(slug string) (models.Casino, bool)
}

// CasinoIndex is a CasinoLookup over one snapshot of the casinos collection.
// When several casinos share a name or slug, the first by (name, id) wins.
type CasinoIndex struct {
	byID   map[string]models.Casino
	byName map[string]models.Casino
	bySlug map[string]models.Casino
}

func NewCasinoIndex(casinos []models.Casino) *CasinoIndex {
	sorted := append([]models.Casino(nil), casinos...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Name != sorted[j].Name {
			return sorted[i].Name < sorted[j].Name
		}
		return sorted[i].ID < sorted[j].ID
	})

	idx := &CasinoIndex{
		byID:   make(map[string]models.Casino, len(sorted)),
		byName: make(map[string]models.Casino, len(sorted)),
		bySlug: make(map[string]models.Casino, len(sorted)),
	}
	for _, c := range sorted {
		if _, ok := idx.byID[c.ID]; !ok {
			idx.byID[c.ID] = c
		}
		if key := nameKey(c.Name); key != "" {
			if _, ok := idx.byName[key]; !ok {
				idx.byName[key] = c
			}
		}
		if slug := CasinoSlug(c); slug != "" {
			if _, ok := idx.bySlug[slug]; !ok {
				idx.bySlug[slug] = c
			}
		}
	}
	return idx
}

func (i *CasinoIndex) ByID(id string) (models.Casino, bool) {
	c, ok := i.byID[id]
	return c, ok
}

func (i *CasinoIndex) ByName(name string) (models.Casino, bool) {
	c, ok := i.byName[nameKey(name)]
	return c, ok
}

func (i *CasinoIndex) BySlug(slug string) (models.Casino, bool) {
	if slug == "" {
		return models.Casino{}, false
	}
	c, ok := i.bySlug[slug]
	return c, ok
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// CasinoSlug is the stored slug, or one derived from the name when none was saved.
func CasinoSlug(c models.Casino) string {
	if s := strings.TrimSpace(c.Slug); s != "" {
		return s
	}
	return utils.DeriveSlug(c.Name)
}

// fallbackBrand is the best free text a bonus carries: legacy link name,
// then the brand column, then the title.
func fallbackBrand(b models.Bonus) string {
	if s := b.BrandText(); s != "" {
		return s
	}
	return strings.TrimSpace(b.Title)
}

// Resolver links bonuses to casinos. First match wins: explicit id, native
// reference, legacy name, slug.
type Resolver struct {
	refs   store.CasinoStore
	lookup CasinoLookup
}

func NewResolver(refs store.CasinoStore, lookup CasinoLookup) *Resolver {
	if lookup == nil {
		lookup = NewCasinoIndex(nil)
	}
	return &Resolver{refs: refs, lookup: lookup}
}

// Resolve never fails; lookup and dereference errors degrade to the next rule.
func (r *Resolver) Resolve(ctx context.Context, b models.Bonus) Resolution {
	res := r.resolve(ctx, b)
	metrics.ResolutionOutcomes.WithLabelValues(string(res.Step)).Inc()
	return res
}

func (r *Resolver) resolve(ctx context.Context, b models.Bonus) Resolution {
	// 1. explicit id
	if id := strings.TrimSpace(b.CasinoID); id != "" {
		name := ""
		if c, ok := r.dereference(ctx, b); ok {
			name = c.Name
		}
		if name == "" {
			name = b.BrandText()
		}
		if name == "" {
			if c, ok := r.lookup.ByID(id); ok {
				name = c.Name
			}
		}
		if name == "" {
			name = strings.TrimSpace(b.Title)
		}
		return Resolution{CasinoID: id, BrandName: name, Step: StepCasinoID}
	}

	// 2. native reference
	if c, ok := r.dereference(ctx, b); ok {
		name := c.Name
		if name == "" {
			name = fallbackBrand(b)
		}
		return Resolution{CasinoID: c.ID, BrandName: name, Step: StepRef}
	}

	// 3. legacy free-text name
	if legacy, ok := b.CasinoLink.LegacyName(); ok {
		if c, found := r.lookup.ByName(legacy); found {
			return Resolution{CasinoID: c.ID, BrandName: c.Name, Step: StepLegacyName}
		}
	}

	// 4. slug of the brand text
	brand := fallbackBrand(b)
	if c, ok := r.lookup.BySlug(utils.DeriveSlug(brand)); ok {
		return Resolution{CasinoID: c.ID, BrandName: c.Name, Step: StepSlug}
	}

	// 5. unlinked
	return Resolution{BrandName: brand, Step: StepUnlinked}
}

func (r *Resolver) dereference(ctx context.Context, b models.Bonus) (models.Casino, bool) {
	if _, ok := b.CasinoLink.RefID(); !ok || r.refs == nil {
		return models.Casino{}, false
	}
	c, err := r.refs.Dereference(ctx, b.CasinoLink)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logging.Debug().Str("bonus_id", b.ID).Str("casino_ref", b.CasinoLink.Value).Msg("casino reference points at a missing document")
		} else {
			logging.Warn().Err(err).Str("bonus_id", b.ID).Msg("failed to resolve casino reference")
		}
		return models.Casino{}, false
	}
	return c, true
}
