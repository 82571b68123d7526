// store/store.go
//
// Package store is the document-store collaborator behind the bonuses,
// casinos and reviews collections. Every write is a single-document write;
// there are no multi-document transactions, and concurrent writers resolve
// by last-write-wins at the document level.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"bonus-listing-system/models"

	"github.com/google/uuid"
)

// ErrNotFound is returned when the addressed document does not exist.
var ErrNotFound = errors.New("store: document not found")

// ErrUnsupportedField is returned by FindCasinos for fields that cannot be queried.
var ErrUnsupportedField = errors.New("store: unsupported query field")

type BonusStore interface {
	ListBonuses(ctx context.Context) ([]models.Bonus, error)
	GetBonus(ctx context.Context, id string) (models.Bonus, error)
	CreateBonus(ctx context.Context, bonus models.Bonus) (string, error)
	UpdateBonus(ctx context.Context, id string, update models.BonusUpdate) error
	DeleteBonus(ctx context.Context, id string) error
}

type CasinoStore interface {
	ListCasinos(ctx context.Context) ([]models.Casino, error)
	GetCasino(ctx context.Context, id string) (models.Casino, error)
	// FindCasinos is an equality query on models.CasinoFieldSlug or models.CasinoFieldName.
	FindCasinos(ctx context.Context, field, value string) ([]models.Casino, error)
	CreateCasino(ctx context.Context, casino models.Casino) (string, error)
	UpdateCasino(ctx context.Context, id string, update models.CasinoUpdate) error
	// Dereference follows a native casino reference. Links that are not
	// references, and references to missing documents, yield ErrNotFound.
	Dereference(ctx context.Context, link models.CasinoLink) (models.Casino, error)
}

type ReviewStore interface {
	ListReviews(ctx context.Context) ([]models.Review, error)
	FindReviewsByCasino(ctx context.Context, casinoID string) ([]models.Review, error)
	GetReview(ctx context.Context, id string) (models.Review, error)
	CreateReview(ctx context.Context, review models.Review) (string, error)
	UpdateReview(ctx context.Context, id string, update models.ReviewUpdate) error
	DeleteReview(ctx context.Context, id string) error
}

// Store is the full collaborator the composition root hands to services.
type Store interface {
	BonusStore
	CasinoStore
	ReviewStore
	Ping(ctx context.Context) error
	Close() error
}

func newID(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return uuid.NewString()
}

func validCasinoField(field string) bool {
	return field == models.CasinoFieldSlug || field == models.CasinoFieldName
}

func casinoFieldValue(c models.Casino, field string) string {
	if field == models.CasinoFieldName {
		return c.Name
	}
	return c.Slug
}

func stamp(created *time.Time, updated *time.Time, now time.Time) {
	if created.IsZero() {
		*created = now
	}
	*updated = now
}
