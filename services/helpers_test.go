package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"bonus-listing-system/models"
	"bonus-listing-system/store"
	"bonus-listing-system/utils"

	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func strPtr(v string) *string { return &v }

// flakyStore wraps a MemoryStore with injectable failures and counts writes.
type flakyStore struct {
	*store.MemoryStore

	mu              sync.Mutex
	failListBonuses bool
	failListCasinos bool
	failUpdate      map[string]bool
	failCreate      map[string]bool // by casino slug
	failDereference bool
	updates         int
}

func newFlakyStore() *flakyStore {
	return &flakyStore{
		MemoryStore: store.NewMemoryStore(),
		failUpdate:  map[string]bool{},
		failCreate:  map[string]bool{},
	}
}

func (f *flakyStore) ListBonuses(ctx context.Context) ([]models.Bonus, error) {
	if f.failListBonuses {
		return nil, errBoom
	}
	return f.MemoryStore.ListBonuses(ctx)
}

func (f *flakyStore) ListCasinos(ctx context.Context) ([]models.Casino, error) {
	if f.failListCasinos {
		return nil, errBoom
	}
	return f.MemoryStore.ListCasinos(ctx)
}

func (f *flakyStore) UpdateBonus(ctx context.Context, id string, u models.BonusUpdate) error {
	f.mu.Lock()
	f.updates++
	fail := f.failUpdate[id]
	f.mu.Unlock()
	if fail {
		return errBoom
	}
	return f.MemoryStore.UpdateBonus(ctx, id, u)
}

func (f *flakyStore) CreateCasino(ctx context.Context, c models.Casino) (string, error) {
	if f.failCreate[c.Slug] {
		return "", errBoom
	}
	return f.MemoryStore.CreateCasino(ctx, c)
}

func (f *flakyStore) Dereference(ctx context.Context, link models.CasinoLink) (models.Casino, error) {
	if f.failDereference {
		return models.Casino{}, errBoom
	}
	return f.MemoryStore.Dereference(ctx, link)
}

func (f *flakyStore) writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updates
}

func (f *flakyStore) resetWrites() {
	f.mu.Lock()
	f.updates = 0
	f.mu.Unlock()
}

func addBonus(t *testing.T, s store.BonusStore, b models.Bonus) string {
	t.Helper()
	id, err := s.CreateBonus(context.Background(), b)
	require.NoError(t, err)
	return id
}

func addCasino(t *testing.T, s store.CasinoStore, c models.Casino) string {
	t.Helper()
	id, err := s.CreateCasino(context.Background(), c)
	require.NoError(t, err)
	return id
}

func orderOf(t *testing.T, s store.BonusStore, id string) *int {
	t.Helper()
	b, err := s.GetBonus(context.Background(), id)
	require.NoError(t, err)
	return b.OrderKey
}

func ids(list []models.ResolvedBonus) []string {
	out := make([]string, len(list))
	for i, b := range list {
		out[i] = b.ID
	}
	return out
}

func newTestAggregator(s CatalogStore) *Aggregator {
	return NewAggregator(s, utils.ImageNormalizer{Placeholder: utils.DefaultImagePlaceholder}, 4)
}
