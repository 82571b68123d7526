package services

import (
	"context"
	"testing"

	"bonus-listing-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregatorOrdering(t *testing.T) {
	ctx := context.Background()
	s := newFlakyStore()
	addCasino(t, s, models.Casino{ID: "c1", Name: "Acme", Slug: "acme"})

	addBonus(t, s, models.Bonus{ID: "b1", Title: "Z offer", Brand: "Zeta", OrderKey: intPtr(1)})
	addBonus(t, s, models.Bonus{ID: "b2", Title: "Acme offer", CasinoID: "c1", OrderKey: intPtr(0)})
	addBonus(t, s, models.Bonus{ID: "b3", Title: "Beta offer", Brand: "beta"})
	addBonus(t, s, models.Bonus{ID: "b4", Title: "Alpha offer", Brand: "Alpha"})
	addBonus(t, s, models.Bonus{ID: "b6", Title: "tie", Brand: "Same", OrderKey: intPtr(2)})
	addBonus(t, s, models.Bonus{ID: "b5", Title: "tie", Brand: "Same", OrderKey: intPtr(2)})

	agg := newTestAggregator(s)
	first, err := agg.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b2", "b1", "b5", "b6", "b4", "b3"}, ids(first))

	second, err := agg.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second, "aggregation is deterministic")

	assert.Equal(t, "c1", first[0].CasinoID)
	assert.Equal(t, "Acme", first[0].BrandName)
}

func TestAggregatorDefaults(t *testing.T) {
	ctx := context.Background()
	s := newFlakyStore()
	addBonus(t, s, models.Bonus{ID: "a", Brand: "Gamma", Tags: "vip, , new,vip"})
	addBonus(t, s, models.Bonus{ID: "b", TrackingLink: "example.com/go", Rating: floatPtr(3.5), TermsText: "Custom"})

	list, err := newTestAggregator(s).List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	byID := map[string]models.ResolvedBonus{}
	for _, b := range list {
		byID[b.ID] = b
	}

	a := byID["a"]
	assert.Equal(t, "Gamma", a.Title)
	assert.Equal(t, DefaultTerms, a.Terms)
	assert.Equal(t, DefaultRating, a.Rating)
	assert.Equal(t, "#", a.Link)
	assert.Equal(t, "/placeholder.png", a.Image)
	assert.Equal(t, []string{"vip", "new"}, a.Tags)
	assert.Nil(t, a.Order)

	b := byID["b"]
	assert.Equal(t, DefaultBonusTitle, b.Title)
	assert.Equal(t, "Custom", b.Terms)
	assert.Equal(t, 3.5, b.Rating)
	assert.Equal(t, "https://example.com/go", b.Link)
	assert.Empty(t, b.CasinoID)
}

func TestAggregatorCasinoListFailureDegrades(t *testing.T) {
	ctx := context.Background()
	s := newFlakyStore()
	addCasino(t, s, models.Casino{ID: "c1", Name: "Acme", Slug: "acme"})
	addBonus(t, s, models.Bonus{ID: "ref", CasinoLink: models.CasinoRef("c1")})
	addBonus(t, s, models.Bonus{ID: "legacy", CasinoLink: models.LegacyCasinoName("Acme")})
	s.failListCasinos = true

	list, err := newTestAggregator(s).List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	for _, b := range list {
		switch b.ID {
		case "ref":
			assert.Equal(t, "c1", b.CasinoID, "references still dereference")
		case "legacy":
			assert.Empty(t, b.CasinoID, "name matching needs the casino list")
			assert.Equal(t, "Acme", b.BrandName)
		}
	}
}

func TestAggregatorBonusListFailureAborts(t *testing.T) {
	s := newFlakyStore()
	s.failListBonuses = true

	_, err := newTestAggregator(s).List(context.Background())
	assert.ErrorIs(t, err, errBoom)
}

func TestSortResolvedCollation(t *testing.T) {
	list := []models.ResolvedBonus{
		{ID: "1", BrandName: "beta"},
		{ID: "2", BrandName: "Alpha"},
		{ID: "3", Title: "alpha2"},
		{ID: "4", BrandName: "Zed", Order: intPtr(9)},
	}
	SortResolved(list)
	assert.Equal(t, []string{"4", "2", "3", "1"}, ids(list))
}
