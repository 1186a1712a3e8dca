package database

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/linkme-io/linkme-backend/models"
)

type ProfileRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	FindOwned(ctx context.Context, id, userID uuid.UUID) (*models.Profile, error)
	FindByOwner(ctx context.Context, userID uuid.UUID) ([]models.Profile, error)
	FindActiveBySlug(ctx context.Context, slug string) (*models.Profile, error)
	ExistsForType(ctx context.Context, userID uuid.UUID, profileType models.ProfileType) (bool, error)
	SlugsLike(ctx context.Context, base string, exclude *uuid.UUID) ([]string, error)
	Add(ctx context.Context, profile *models.Profile) error
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	IncrementViewCount(ctx context.Context, id uuid.UUID) (int64, error)
	Count(ctx context.Context, filter ProfileFilter) (int64, error)
	SumViewCount(ctx context.Context, filter ProfileFilter) (int64, error)
	CountByType(ctx context.Context) ([]LabelCount, error)
	TopByViews(ctx context.Context, limit int) ([]models.Profile, error)
	RecentlyUpdated(ctx context.Context, userID uuid.UUID, limit int) ([]models.Profile, error)
	Newest(ctx context.Context, limit int) ([]models.Profile, error)
}

// ProfileFilter narrows aggregate profile queries. Zero values mean "any".
type ProfileFilter struct {
	UserID       *uuid.UUID
	ActiveOnly   bool
	CreatedSince *TimeBound
}

type ProfileRepo struct {
	db *gorm.DB
}

func NewProfileRepo(db *gorm.DB) *ProfileRepo {
	return &ProfileRepo{db}
}

func orderedLinks(db *gorm.DB) *gorm.DB {
	return db.Order("display_order ASC").Order("created_at ASC")
}

func visibleLinks(db *gorm.DB) *gorm.DB {
	return orderedLinks(db.Where("is_visible = ?", true))
}

// FindByID returns a profile by its ID with all of its links
func (r *ProfileRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).Preload("SocialLinks", orderedLinks).Where("id = ?", id).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindOwned returns the profile only if userID owns it
func (r *ProfileRepo) FindOwned(ctx context.Context, id, userID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).Preload("SocialLinks", orderedLinks).
		Where("id = ? AND user_id = ?", id, userID).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindByOwner returns every profile of a user, newest first
func (r *ProfileRepo) FindByOwner(ctx context.Context, userID uuid.UUID) ([]models.Profile, error) {
	var profiles []models.Profile
	err := r.db.WithContext(ctx).Preload("SocialLinks", orderedLinks).
		Where("user_id = ?", userID).Order("created_at DESC").Find(&profiles).Error
	return profiles, err
}

// FindActiveBySlug returns an active profile with only its visible links
func (r *ProfileRepo) FindActiveBySlug(ctx context.Context, slug string) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).Preload("SocialLinks", visibleLinks).
		Where("slug = ? AND is_active = ?", slug, true).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepo) ExistsForType(ctx context.Context, userID uuid.UUID, profileType models.ProfileType) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Profile{}).
		Where("user_id = ? AND profile_type = ?", userID, profileType).Count(&n).Error
	return n > 0, err
}

// SlugsLike returns slugs equal to base or of the form base-<suffix>
func (r *ProfileRepo) SlugsLike(ctx context.Context, base string, exclude *uuid.UUID) ([]string, error) {
	q := r.db.WithContext(ctx).Model(&models.Profile{}).
		Where("slug = ? OR slug LIKE ?", base, base+"-%")
	if exclude != nil {
		q = q.Where("id <> ?", *exclude)
	}
	var slugs []string
	err := q.Pluck("slug", &slugs).Error
	return slugs, err
}

// Add inserts the profile row only; links are stored through SocialLinkRepo
func (r *ProfileRepo) Add(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Omit("SocialLinks", "User").Create(profile).Error
}

// UpdateFields applies a column->value patch to one profile
func (r *ProfileRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a profile; links and views go with it through FK cascades
func (r *ProfileRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Profile{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IncrementViewCount bumps view_count in a single statement and returns the new value.
// Callers that need the returned value to be exact must run it inside a transaction.
func (r *ProfileRepo) IncrementViewCount(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Select("view_count").Scan(&count).Error
	return count, err
}

func (r *ProfileRepo) filtered(ctx context.Context, f ProfileFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Profile{})
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	if f.CreatedSince != nil {
		q = q.Where("created_at >= ?", f.CreatedSince.From.UTC())
	}
	return q
}

func (r *ProfileRepo) Count(ctx context.Context, f ProfileFilter) (int64, error) {
	var n int64
	err := r.filtered(ctx, f).Count(&n).Error
	return n, err
}

// SumViewCount adds up the denormalized all-time counters
func (r *ProfileRepo) SumViewCount(ctx context.Context, f ProfileFilter) (int64, error) {
	var total int64
	err := r.filtered(ctx, f).Select("COALESCE(SUM(view_count), 0)").Scan(&total).Error
	return total, err
}

func (r *ProfileRepo) CountByType(ctx context.Context) ([]LabelCount, error) {
	var rows []LabelCount
	err := r.db.WithContext(ctx).Model(&models.Profile{}).
		Select("profile_type AS label, COUNT(*) AS count").
		Group("profile_type").Order("count DESC").Order("label ASC").
		Scan(&rows).Error
	return rows, err
}

// TopByViews returns the most viewed profiles across all users
func (r *ProfileRepo) TopByViews(ctx context.Context, limit int) ([]models.Profile, error) {
	var profiles []models.Profile
	err := r.db.WithContext(ctx).Order("view_count DESC").Order("created_at ASC").Limit(limit).Find(&profiles).Error
	return profiles, err
}

// RecentlyUpdated returns a user's profiles, last edited first
func (r *ProfileRepo) RecentlyUpdated(ctx context.Context, userID uuid.UUID, limit int) ([]models.Profile, error) {
	var profiles []models.Profile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("updated_at DESC").Limit(limit).Find(&profiles).Error
	return profiles, err
}

// Newest returns the latest profiles across all users with their owners
func (r *ProfileRepo) Newest(ctx context.Context, limit int) ([]models.Profile, error) {
	var profiles []models.Profile
	err := r.db.WithContext(ctx).Preload("User").Order("created_at DESC").Limit(limit).Find(&profiles).Error
	return profiles, err
}
