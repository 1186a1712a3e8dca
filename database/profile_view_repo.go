package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/linkme-io/linkme-backend/models"
)

// Columns that may be grouped on. Anything else is rejected before it reaches SQL.
const (
	ViewColumnSource  = "view_source"
	ViewColumnDevice  = "device_type"
	ViewColumnBrowser = "browser"
	ViewColumnCountry = "viewer_country"
)

var groupableViewColumns = map[string]bool{
	ViewColumnSource:  true,
	ViewColumnDevice:  true,
	ViewColumnBrowser: true,
	ViewColumnCountry: true,
}

// ViewFilter scopes view queries to a set of profiles and an optional window start.
type ViewFilter struct {
	ProfileIDs []uuid.UUID // nil means every profile
	Since      time.Time
}

type ProfileViewRepository interface {
	Add(ctx context.Context, view *models.ProfileView) error
	Count(ctx context.Context, f ViewFilter) (int64, error)
	CountBy(ctx context.Context, f ViewFilter, column string, limit int) ([]LabelCount, error)
	CountByCity(ctx context.Context, f ViewFilter, limit int) ([]CityCount, error)
	Timestamps(ctx context.Context, f ViewFilter) ([]time.Time, error)
	Recent(ctx context.Context, f ViewFilter, page Page) ([]models.ProfileView, int64, error)
	Latest(ctx context.Context, limit int) ([]models.ProfileView, error)
	DeleteOlderThan(ctx context.Context, profileID uuid.UUID, cutoff time.Time) (int64, error)
}

type ProfileViewRepo struct {
	db *gorm.DB
}

func NewProfileViewRepo(db *gorm.DB) *ProfileViewRepo {
	return &ProfileViewRepo{db}
}

func (r *ProfileViewRepo) scoped(ctx context.Context, f ViewFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.ProfileView{})
	if f.ProfileIDs != nil {
		q = q.Where("profile_id IN ?", nonEmpty(f.ProfileIDs))
	}
	if !f.Since.IsZero() {
		q = q.Where("viewed_at >= ?", f.Since.UTC())
	}
	return q
}

// nonEmpty keeps "IN ?" valid for an empty id list while matching nothing.
func nonEmpty(ids []uuid.UUID) []uuid.UUID {
	if len(ids) == 0 {
		return []uuid.UUID{uuid.Nil}
	}
	return ids
}

// Add appends a view event
func (r *ProfileViewRepo) Add(ctx context.Context, view *models.ProfileView) error {
	return r.db.WithContext(ctx).Omit("Profile").Create(view).Error
}

func (r *ProfileViewRepo) Count(ctx context.Context, f ViewFilter) (int64, error) {
	var n int64
	err := r.scoped(ctx, f).Count(&n).Error
	return n, err
}

// CountBy groups views on one column, most frequent first. limit <= 0 returns every group.
func (r *ProfileViewRepo) CountBy(ctx context.Context, f ViewFilter, column string, limit int) ([]LabelCount, error) {
	if !groupableViewColumns[column] {
		return nil, fmt.Errorf("column %q cannot be grouped", column)
	}
	q := r.scoped(ctx, f).
		Select(column + " AS label, COUNT(*) AS count").
		Where(column + " IS NOT NULL").
		Group(column).
		Order("count DESC").Order("label ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []LabelCount
	err := q.Scan(&rows).Error
	return rows, err
}

// CountByCity groups views on (country, city)
func (r *ProfileViewRepo) CountByCity(ctx context.Context, f ViewFilter, limit int) ([]CityCount, error) {
	q := r.scoped(ctx, f).
		Select("COALESCE(viewer_country, '') AS country, viewer_city AS city, COUNT(*) AS count").
		Where("viewer_city IS NOT NULL").
		Group("viewer_country, viewer_city").
		Order("count DESC").Order("city ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []CityCount
	err := q.Scan(&rows).Error
	return rows, err
}

// Timestamps returns viewed_at for every matching view, oldest first
func (r *ProfileViewRepo) Timestamps(ctx context.Context, f ViewFilter) ([]time.Time, error) {
	var times []time.Time
	err := r.scoped(ctx, f).Order("viewed_at ASC").Pluck("viewed_at", &times).Error
	return times, err
}

// Recent returns the newest views and the total number matching the filter
func (r *ProfileViewRepo) Recent(ctx context.Context, f ViewFilter, page Page) ([]models.ProfileView, int64, error) {
	page = page.normalized(20, 100)
	var total int64
	if err := r.scoped(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var views []models.ProfileView
	err := r.scoped(ctx, f).Order("viewed_at DESC").Limit(page.Limit).Offset(page.Offset).Find(&views).Error
	return views, total, err
}

// Latest returns the newest views platform-wide with their profiles
func (r *ProfileViewRepo) Latest(ctx context.Context, limit int) ([]models.ProfileView, error) {
	var views []models.ProfileView
	err := r.db.WithContext(ctx).Preload("Profile").Order("viewed_at DESC").Limit(limit).Find(&views).Error
	return views, err
}

// DeleteOlderThan purges a profile's views recorded before cutoff
func (r *ProfileViewRepo) DeleteOlderThan(ctx context.Context, profileID uuid.UUID, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("profile_id = ? AND viewed_at < ?", profileID, cutoff.UTC()).
		Delete(&models.ProfileView{})
	return res.RowsAffected, res.Error
}
