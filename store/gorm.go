// store/gorm.go
package store

import (
	"context"
	"errors"
	"fmt"

	"bonus-listing-system/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormStore persists the collections as Postgres tables through gorm.
type GormStore struct {
	DB *gorm.DB
}

// OpenPostgres connects to dsn and migrates the schema.
func OpenPostgres(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	s := NewGormStore(db)
	if err := s.Migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) Migrate() error {
	if err := s.DB.AutoMigrate(
		&models.Casino{},
		&models.Bonus{},
		&models.Review{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// ===== Bonuses =====

func (s *GormStore) ListBonuses(ctx context.Context) ([]models.Bonus, error) {
	var bonuses []models.Bonus
	if err := s.DB.WithContext(ctx).Order("created_at, id").Find(&bonuses).Error; err != nil {
		return nil, err
	}
	return bonuses, nil
}

func (s *GormStore) GetBonus(ctx context.Context, id string) (models.Bonus, error) {
	var b models.Bonus
	if err := s.DB.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return models.Bonus{}, notFound(err)
	}
	return b, nil
}

func (s *GormStore) CreateBonus(ctx context.Context, bonus models.Bonus) (string, error) {
	bonus.ID = newID(bonus.ID)
	if err := s.DB.WithContext(ctx).Create(&bonus).Error; err != nil {
		return "", err
	}
	return bonus.ID, nil
}

func (s *GormStore) UpdateBonus(ctx context.Context, id string, update models.BonusUpdate) error {
	cols := update.Columns()
	if len(cols) == 0 {
		_, err := s.GetBonus(ctx, id)
		return err
	}
	res := s.DB.WithContext(ctx).Model(&models.Bonus{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) DeleteBonus(ctx context.Context, id string) error {
	res := s.DB.WithContext(ctx).Delete(&models.Bonus{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ===== Casinos =====

func (s *GormStore) ListCasinos(ctx context.Context) ([]models.Casino, error) {
	var casinos []models.Casino
	if err := s.DB.WithContext(ctx).Order("name, id").Find(&casinos).Error; err != nil {
		return nil, err
	}
	return casinos, nil
}

func (s *GormStore) GetCasino(ctx context.Context, id string) (models.Casino, error) {
	var c models.Casino
	if err := s.DB.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return models.Casino{}, notFound(err)
	}
	return c, nil
}

func (s *GormStore) FindCasinos(ctx context.Context, field, value string) ([]models.Casino, error) {
	if !validCasinoField(field) {
		return nil, ErrUnsupportedField
	}
	var casinos []models.Casino
	err := s.DB.WithContext(ctx).
		Where(map[string]any{field: value}).
		Order("id").
		Find(&casinos).Error
	if err != nil {
		return nil, err
	}
	return casinos, nil
}

func (s *GormStore) CreateCasino(ctx context.Context, casino models.Casino) (string, error) {
	casino.ID = newID(casino.ID)
	if err := s.DB.WithContext(ctx).Create(&casino).Error; err != nil {
		return "", err
	}
	return casino.ID, nil
}

// UpdateCasino reads, patches and saves the whole row; the list columns go
// through the json serializer, which a column map would bypass.
func (s *GormStore) UpdateCasino(ctx context.Context, id string, update models.CasinoUpdate) error {
	c, err := s.GetCasino(ctx, id)
	if err != nil {
		return err
	}
	update.Apply(&c)
	return s.DB.WithContext(ctx).Save(&c).Error
}

func (s *GormStore) Dereference(ctx context.Context, link models.CasinoLink) (models.Casino, error) {
	id, ok := link.RefID()
	if !ok {
		return models.Casino{}, ErrNotFound
	}
	return s.GetCasino(ctx, id)
}

// ===== Reviews =====

func (s *GormStore) ListReviews(ctx context.Context) ([]models.Review, error) {
	var reviews []models.Review
	if err := s.DB.WithContext(ctx).Order("created_at desc, id").Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

func (s *GormStore) FindReviewsByCasino(ctx context.Context, casinoID string) ([]models.Review, error) {
	var reviews []models.Review
	err := s.DB.WithContext(ctx).
		Where("casino_id = ?", casinoID).
		Order("created_at desc, id").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

func (s *GormStore) GetReview(ctx context.Context, id string) (models.Review, error) {
	var r models.Review
	if err := s.DB.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		return models.Review{}, notFound(err)
	}
	return r, nil
}

func (s *GormStore) CreateReview(ctx context.Context, review models.Review) (string, error) {
	review.ID = newID(review.ID)
	if err := s.DB.WithContext(ctx).Create(&review).Error; err != nil {
		return "", err
	}
	return review.ID, nil
}

func (s *GormStore) UpdateReview(ctx context.Context, id string, update models.ReviewUpdate) error {
	r, err := s.GetReview(ctx, id)
	if err != nil {
		return err
	}
	update.Apply(&r)
	return s.DB.WithContext(ctx).Save(&r).Error
}

func (s *GormStore) DeleteReview(ctx context.Context, id string) error {
	res := s.DB.WithContext(ctx).Delete(&models.Review{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var _ Store = (*GormStore)(nil)
