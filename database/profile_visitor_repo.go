package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/linkme-io/linkme-backend/models"
)

var groupableVisitorColumns = map[string]bool{
	ViewColumnSource:  true,
	ViewColumnDevice:  true,
	ViewColumnCountry: true,
}

type ProfileVisitorRepository interface {
	Add(ctx context.Context, visitor *models.ProfileVisitor) error
	FindByProfile(ctx context.Context, profileID uuid.UUID, page Page) ([]models.ProfileVisitor, int64, error)
	FindByUser(ctx context.Context, userID uuid.UUID, page Page) ([]models.ProfileVisitor, int64, error)
	CountBy(ctx context.Context, profileID uuid.UUID, column string) ([]LabelCount, error)
	Count(ctx context.Context, profileID uuid.UUID) (int64, error)
}

type ProfileVisitorRepo struct {
	db *gorm.DB
}

func NewProfileVisitorRepo(db *gorm.DB) *ProfileVisitorRepo {
	return &ProfileVisitorRepo{db}
}

// Add stores a contact capture
func (r *ProfileVisitorRepo) Add(ctx context.Context, visitor *models.ProfileVisitor) error {
	return r.db.WithContext(ctx).Omit("Profile", "User").Create(visitor).Error
}

func (r *ProfileVisitorRepo) page(q *gorm.DB, page Page) ([]models.ProfileVisitor, int64, error) {
	page = page.normalized(50, 200)
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var visitors []models.ProfileVisitor
	err := q.Session(&gorm.Session{}).
		Preload("Profile", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "slug", "profile_type")
		}).
		Order("submitted_at DESC").Limit(page.Limit).Offset(page.Offset).
		Find(&visitors).Error
	return visitors, total, err
}

// FindByProfile lists the contacts captured on one profile
func (r *ProfileVisitorRepo) FindByProfile(ctx context.Context, profileID uuid.UUID, page Page) ([]models.ProfileVisitor, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.ProfileVisitor{}).Where("profile_id = ?", profileID)
	return r.page(q, page)
}

// FindByUser lists every contact of the user, including those whose profile was deleted
func (r *ProfileVisitorRepo) FindByUser(ctx context.Context, userID uuid.UUID, page Page) ([]models.ProfileVisitor, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.ProfileVisitor{}).Where("user_id = ?", userID)
	return r.page(q, page)
}

func (r *ProfileVisitorRepo) Count(ctx context.Context, profileID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.ProfileVisitor{}).Where("profile_id = ?", profileID).Count(&n).Error
	return n, err
}

func (r *ProfileVisitorRepo) CountBy(ctx context.Context, profileID uuid.UUID, column string) ([]LabelCount, error) {
	if !groupableVisitorColumns[column] {
		return nil, fmt.Errorf("column %q cannot be grouped", column)
	}
	var rows []LabelCount
	err := r.db.WithContext(ctx).Model(&models.ProfileVisitor{}).
		Select(column+" AS label, COUNT(*) AS count").
		Where("profile_id = ? AND "+column+" IS NOT NULL", profileID).
		Group(column).Order("count DESC").Order("label ASC").
		Scan(&rows).Error
	return rows, err
}
