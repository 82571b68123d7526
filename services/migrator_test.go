package services

import (
	"context"
	"testing"

	"bonus-listing-system/models"
	"bonus-listing-system/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMigrator(s CatalogStore) *Migrator {
	return NewMigrator(s, utils.ImageNormalizer{}, 4)
}

func TestMigrationGroupsBySlug(t *testing.T) {
	ctx := context.Background()
	s := newFlakyStore()
	addBonus(t, s, models.Bonus{ID: "1", Brand: "Acme", ImageURL: "https://img/acme.png", TrackingLink: "acme.com", Rating: floatPtr(4)})
	addBonus(t, s, models.Bonus{ID: "2", CasinoLink: models.LegacyCasinoName("acme")})
	addBonus(t, s, models.Bonus{ID: "3", Title: "Beta"})
	addBonus(t, s, models.Bonus{ID: "4", CasinoID: "already", Brand: "Acme"})

	report, err := newTestMigrator(s).Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, MigrationStats{CasinosCreated: 2, BonusesUpdated: 3}, report.Stats())
	assert.Equal(t, []string{"Acme", "Beta"}, report.CasinosCreated)
	assert.ElementsMatch(t, []string{"1", "2", "3"}, report.BonusesUpdated)
	assert.Empty(t, report.Errors)

	casinos, err := s.ListCasinos(ctx)
	require.NoError(t, err)
	require.Len(t, casinos, 2)

	acme, err := s.FindCasinos(ctx, models.CasinoFieldSlug, "acme")
	require.NoError(t, err)
	require.Len(t, acme, 1)
	assert.Equal(t, "Acme", acme[0].Name)
	assert.Equal(t, "https://img/acme.png", acme[0].LogoURL)
	assert.Equal(t, "https://acme.com", acme[0].Website)
	require.NotNil(t, acme[0].Rating)
	assert.Equal(t, 4.0, *acme[0].Rating)

	for _, id := range []string{"1", "2"} {
		b, err := s.GetBonus(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, acme[0].ID, b.CasinoID)
		ref, ok := b.CasinoLink.RefID()
		assert.True(t, ok)
		assert.Equal(t, acme[0].ID, ref)
	}

	untouched, _ := s.GetBonus(ctx, "4")
	assert.Equal(t, "already", untouched.CasinoID)
}

func TestMigrationIsRerunnable(t *testing.T) {
	ctx := context.Background()
	s := newFlakyStore()
	addCasino(t, s, models.Casino{ID: "existing", Name: "Acme", Slug: "acme"})
	addBonus(t, s, models.Bonus{ID: "1", Brand: "ACME"})

	m := newTestMigrator(s)
	report, err := m.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, report.CasinosCreated, "existing casino is reused")
	assert.Equal(t, []string{"1"}, report.BonusesUpdated)

	b, _ := s.GetBonus(ctx, "1")
	assert.Equal(t, "existing", b.CasinoID)

	again, err := m.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, MigrationStats{}, again.Stats())
}

func TestMigrationIsolatesGroupErrors(t *testing.T) {
	ctx := context.Background()
	s := newFlakyStore()
	addBonus(t, s, models.Bonus{ID: "1", Brand: "Acme"})
	addBonus(t, s, models.Bonus{ID: "2", Brand: "Beta"})
	addBonus(t, s, models.Bonus{ID: "3", Brand: "!!!"})
	s.failCreate["acme"] = true

	report, err := newTestMigrator(s).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Beta"}, report.CasinosCreated)
	assert.Equal(t, []string{"2"}, report.BonusesUpdated)
	require.Len(t, report.Errors, 2)
	assert.Contains(t, report.Errors[0], "Error processing !!!")
	assert.Contains(t, report.Errors[1], "Error processing Acme")
}

func TestMigrationSeedDefaults(t *testing.T) {
	ctx := context.Background()
	s := newFlakyStore()
	addBonus(t, s, models.Bonus{ID: "1", Brand: "Gamma"})

	_, err := newTestMigrator(s).Run(ctx)
	require.NoError(t, err)

	found, err := s.FindCasinos(ctx, models.CasinoFieldSlug, "gamma")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Empty(t, found[0].LogoURL)
	assert.Empty(t, found[0].Website)
	require.NotNil(t, found[0].Rating)
	assert.Zero(t, *found[0].Rating)
}

func TestMigrationFetchFailure(t *testing.T) {
	s := newFlakyStore()
	s.failListBonuses = true
	_, err := newTestMigrator(s).Run(context.Background())
	assert.ErrorIs(t, err, errBoom)
}

func TestMigrationReportTruncated(t *testing.T) {
	r := MigrationReport{
		CasinosCreated: []string{"a", "b", "c"},
		BonusesUpdated: []string{"1"},
		Errors:         nil,
	}
	got := r.Truncated(2)
	assert.Equal(t, []string{"a", "b"}, got.CasinosCreated)
	assert.Equal(t, []string{"1"}, got.BonusesUpdated)
	assert.NotNil(t, got.Errors)
	assert.Empty(t, got.Errors)
}
