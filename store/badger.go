// store/badger.go
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bonus-listing-system/models"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// Key prefixes for BadgerDB storage
const (
	bonusKeyPrefix  = "bonus:"
	casinoKeyPrefix = "casino:"
	reviewKeyPrefix = "review:"
)

// BadgerStore keeps every collection as JSON documents in an embedded
// BadgerDB. Each document lives under "<collection>:<id>".
type BadgerStore struct {
	db  *badger.DB
	now func() time.Time
}

// OpenBadger opens (or creates) a database at path. An empty path opens an
// in-memory database.
func OpenBadger(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return NewBadgerStore(db), nil
}

func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db, now: time.Now}
}

func getDoc[T any](db *badger.DB, key string) (T, error) {
	var doc T
	err := db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get %s: %w", key, err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &doc)
		})
	})
	return doc, err
}

func listDocs[T any](db *badger.DB, prefix string, keep func(T) bool) ([]T, error) {
	var docs []T
	err := db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			var doc T
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &doc)
			})
			if err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			if keep == nil || keep(doc) {
				docs = append(docs, doc)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func putDoc(db *badger.DB, key string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// maxPatchAttempts bounds the retries of a read-modify-write that lost a
// conflict to a concurrent writer.
const maxPatchAttempts = 100

// patchDoc applies fn to the stored document inside a read-write transaction.
// A transaction that conflicts with a concurrent writer is rerun against the
// fresh document, so the last committed write wins.
func patchDoc[T any](ctx context.Context, db *badger.DB, key string, fn func(*T)) error {
	var err error
	for attempt := 0; attempt < maxPatchAttempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = db.Update(func(txn *badger.Txn) error {
			item, err := txn.Get([]byte(key))
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			if err != nil {
				return fmt.Errorf("get %s: %w", key, err)
			}
			var doc T
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &doc)
			}); err != nil {
				return err
			}
			fn(&doc)
			data, err := json.Marshal(doc)
			if err != nil {
				return fmt.Errorf("marshal %s: %w", key, err)
			}
			return txn.Set([]byte(key), data)
		})
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return fmt.Errorf("patch %s: %w", key, err)
}

func deleteDoc(db *badger.DB, key string) error {
	return db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(key)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return txn.Delete([]byte(key))
	})
}

// ===== Bonuses =====

func (s *BadgerStore) ListBonuses(_ context.Context) ([]models.Bonus, error) {
	return listDocs[models.Bonus](s.db, bonusKeyPrefix, nil)
}

func (s *BadgerStore) GetBonus(_ context.Context, id string) (models.Bonus, error) {
	return getDoc[models.Bonus](s.db, bonusKeyPrefix+id)
}

func (s *BadgerStore) CreateBonus(_ context.Context, bonus models.Bonus) (string, error) {
	bonus.ID = newID(bonus.ID)
	stamp(&bonus.CreatedAt, &bonus.UpdatedAt, s.now())
	if err := putDoc(s.db, bonusKeyPrefix+bonus.ID, bonus); err != nil {
		return "", err
	}
	return bonus.ID, nil
}

func (s *BadgerStore) UpdateBonus(ctx context.Context, id string, update models.BonusUpdate) error {
	now := s.now()
	return patchDoc(ctx, s.db, bonusKeyPrefix+id, func(b *models.Bonus) {
		update.Apply(b)
		b.UpdatedAt = now
	})
}

func (s *BadgerStore) DeleteBonus(_ context.Context, id string) error {
	return deleteDoc(s.db, bonusKeyPrefix+id)
}

// ===== Casinos =====

func (s *BadgerStore) ListCasinos(_ context.Context) ([]models.Casino, error) {
	return listDocs[models.Casino](s.db, casinoKeyPrefix, nil)
}

func (s *BadgerStore) GetCasino(_ context.Context, id string) (models.Casino, error) {
	return getDoc[models.Casino](s.db, casinoKeyPrefix+id)
}

// FindCasinos scans the casino prefix; there is no secondary index.
func (s *BadgerStore) FindCasinos(_ context.Context, field, value string) ([]models.Casino, error) {
	if !validCasinoField(field) {
		return nil, ErrUnsupportedField
	}
	return listDocs(s.db, casinoKeyPrefix, func(c models.Casino) bool {
		return casinoFieldValue(c, field) == value
	})
}

func (s *BadgerStore) CreateCasino(_ context.Context, casino models.Casino) (string, error) {
	casino.ID = newID(casino.ID)
	stamp(&casino.CreatedAt, &casino.UpdatedAt, s.now())
	if err := putDoc(s.db, casinoKeyPrefix+casino.ID, casino); err != nil {
		return "", err
	}
	return casino.ID, nil
}

func (s *BadgerStore) UpdateCasino(ctx context.Context, id string, update models.CasinoUpdate) error {
	now := s.now()
	return patchDoc(ctx, s.db, casinoKeyPrefix+id, func(c *models.Casino) {
		update.Apply(c)
		c.UpdatedAt = now
	})
}

func (s *BadgerStore) Dereference(ctx context.Context, link models.CasinoLink) (models.Casino, error) {
	id, ok := link.RefID()
	if !ok {
		return models.Casino{}, ErrNotFound
	}
	return s.GetCasino(ctx, id)
}

// ===== Reviews =====

func (s *BadgerStore) ListReviews(_ context.Context) ([]models.Review, error) {
	return listDocs[models.Review](s.db, reviewKeyPrefix, nil)
}

func (s *BadgerStore) FindReviewsByCasino(_ context.Context, casinoID string) ([]models.Review, error) {
	return listDocs(s.db, reviewKeyPrefix, func(r models.Review) bool {
		return r.CasinoID == casinoID
	})
}

func (s *BadgerStore) GetReview(_ context.Context, id string) (models.Review, error) {
	return getDoc[models.Review](s.db, reviewKeyPrefix+id)
}

func (s *BadgerStore) CreateReview(_ context.Context, review models.Review) (string, error) {
	review.ID = newID(review.ID)
	if review.CreatedAt.IsZero() {
		review.CreatedAt = s.now()
	}
	if err := putDoc(s.db, reviewKeyPrefix+review.ID, review); err != nil {
		return "", err
	}
	return review.ID, nil
}

func (s *BadgerStore) UpdateReview(ctx context.Context, id string, update models.ReviewUpdate) error {
	return patchDoc(ctx, s.db, reviewKeyPrefix+id, func(r *models.Review) {
		update.Apply(r)
	})
}

func (s *BadgerStore) DeleteReview(_ context.Context, id string) error {
	return deleteDoc(s.db, reviewKeyPrefix+id)
}

func (s *BadgerStore) Ping(context.Context) error {
	if s.db.IsClosed() {
		return errors.New("badger: database closed")
	}
	return nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

var _ Store = (*BadgerStore)(nil)
