// store/memory.go
package store

import (
	"context"
	"sync"
	"time"

	"bonus-listing-system/models"
)

// MemoryStore keeps every collection in process memory. It backs local
// development and the service tests. Documents are copied on the way in and
// out so callers never alias stored state.
type MemoryStore struct {
	mu sync.RWMutex

	bonuses   map[string]models.Bonus
	casinos   map[string]models.Casino
	reviews   map[string]models.Review
	bonusIDs  []string
	casinoIDs []string
	reviewIDs []string

	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bonuses: make(map[string]models.Bonus),
		casinos: make(map[string]models.Casino),
		reviews: make(map[string]models.Review),
		now:     time.Now,
	}
}

// ===== Bonuses =====

func (m *MemoryStore) ListBonuses(_ context.Context) ([]models.Bonus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Bonus, 0, len(m.bonusIDs))
	for _, id := range m.bonusIDs {
		out = append(out, m.bonuses[id].Clone())
	}
	return out, nil
}

func (m *MemoryStore) GetBonus(_ context.Context, id string) (models.Bonus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.bonuses[id]
	if !ok {
		return models.Bonus{}, ErrNotFound
	}
	return b.Clone(), nil
}

func (m *MemoryStore) CreateBonus(_ context.Context, bonus models.Bonus) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b := bonus.Clone()
	b.ID = newID(b.ID)
	stamp(&b.CreatedAt, &b.UpdatedAt, m.now())
	if _, exists := m.bonuses[b.ID]; !exists {
		m.bonusIDs = append(m.bonusIDs, b.ID)
	}
	m.bonuses[b.ID] = b
	return b.ID, nil
}

func (m *MemoryStore) UpdateBonus(_ context.Context, id string, update models.BonusUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bonuses[id]
	if !ok {
		return ErrNotFound
	}
	update.Apply(&b)
	b.UpdatedAt = m.now()
	m.bonuses[id] = b
	return nil
}

func (m *MemoryStore) DeleteBonus(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.bonuses[id]; !ok {
		return ErrNotFound
	}
	delete(m.bonuses, id)
	m.bonusIDs = removeID(m.bonusIDs, id)
	return nil
}

// ===== Casinos =====

func (m *MemoryStore) ListCasinos(_ context.Context) ([]models.Casino, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Casino, 0, len(m.casinoIDs))
	for _, id := range m.casinoIDs {
		out = append(out, m.casinos[id].Clone())
	}
	return out, nil
}

func (m *MemoryStore) GetCasino(_ context.Context, id string) (models.Casino, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.casinos[id]
	if !ok {
		return models.Casino{}, ErrNotFound
	}
	return c.Clone(), nil
}

func (m *MemoryStore) FindCasinos(_ context.Context, field, value string) ([]models.Casino, error) {
	if !validCasinoField(field) {
		return nil, ErrUnsupportedField
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Casino
	for _, id := range m.casinoIDs {
		c := m.casinos[id]
		if casinoFieldValue(c, field) == value {
			out = append(out, c.Clone())
		}
	}
	return out, nil
}

func (m *MemoryStore) CreateCasino(_ context.Context, casino models.Casino) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := casino.Clone()
	c.ID = newID(c.ID)
	stamp(&c.CreatedAt, &c.UpdatedAt, m.now())
	if _, exists := m.casinos[c.ID]; !exists {
		m.casinoIDs = append(m.casinoIDs, c.ID)
	}
	m.casinos[c.ID] = c
	return c.ID, nil
}

func (m *MemoryStore) UpdateCasino(_ context.Context, id string, update models.CasinoUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.casinos[id]
	if !ok {
		return ErrNotFound
	}
	update.Apply(&c)
	c.UpdatedAt = m.now()
	m.casinos[id] = c
	return nil
}

func (m *MemoryStore) Dereference(ctx context.Context, link models.CasinoLink) (models.Casino, error) {
	id, ok := link.RefID()
	if !ok {
		return models.Casino{}, ErrNotFound
	}
	return m.GetCasino(ctx, id)
}

// ===== Reviews =====

func (m *MemoryStore) ListReviews(_ context.Context) ([]models.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Review, 0, len(m.reviewIDs))
	for _, id := range m.reviewIDs {
		out = append(out, m.reviews[id])
	}
	return out, nil
}

func (m *MemoryStore) FindReviewsByCasino(_ context.Context, casinoID string) ([]models.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Review
	for _, id := range m.reviewIDs {
		if r := m.reviews[id]; r.CasinoID == casinoID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MemoryStore) GetReview(_ context.Context, id string) (models.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.reviews[id]
	if !ok {
		return models.Review{}, ErrNotFound
	}
	return r, nil
}

func (m *MemoryStore) CreateReview(_ context.Context, review models.Review) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	review.ID = newID(review.ID)
	if review.CreatedAt.IsZero() {
		review.CreatedAt = m.now()
	}
	if _, exists := m.reviews[review.ID]; !exists {
		m.reviewIDs = append(m.reviewIDs, review.ID)
	}
	m.reviews[review.ID] = review
	return review.ID, nil
}

func (m *MemoryStore) UpdateReview(_ context.Context, id string, update models.ReviewUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.reviews[id]
	if !ok {
		return ErrNotFound
	}
	update.Apply(&r)
	m.reviews[id] = r
	return nil
}

func (m *MemoryStore) DeleteReview(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.reviews[id]; !ok {
		return ErrNotFound
	}
	delete(m.reviews, id)
	m.reviewIDs = removeID(m.reviewIDs, id)
	return nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

var _ Store = (*MemoryStore)(nil)
