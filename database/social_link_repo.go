package database

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/linkme-io/linkme-backend/models"
)

type SocialLinkRepository interface {
	FindByProfile(ctx context.Context, profileID uuid.UUID, includeHidden bool) ([]models.SocialLink, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.SocialLink, error)
	FindOwned(ctx context.Context, id, userID uuid.UUID) (*models.SocialLink, error)
	Platforms(ctx context.Context, profileID uuid.UUID) ([]models.Platform, error)
	MaxOrder(ctx context.Context, profileID uuid.UUID) (int, error)
	Add(ctx context.Context, link *models.SocialLink) error
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	SetOrder(ctx context.Context, profileID, id uuid.UUID, order int) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteOwned(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error)
	IncrementClicks(ctx context.Context, id uuid.UUID) (int64, error)
	SumClicks(ctx context.Context, profileIDs []uuid.UUID) (int64, error)
}

type SocialLinkRepo struct {
	db *gorm.DB
}

func NewSocialLinkRepo(db *gorm.DB) *SocialLinkRepo {
	return &SocialLinkRepo{db}
}

// FindByProfile returns a profile's links in display order
func (r *SocialLinkRepo) FindByProfile(ctx context.Context, profileID uuid.UUID, includeHidden bool) ([]models.SocialLink, error) {
	q := r.db.WithContext(ctx).Where("profile_id = ?", profileID)
	if !includeHidden {
		q = q.Where("is_visible = ?", true)
	}
	var links []models.SocialLink
	err := orderedLinks(q).Find(&links).Error
	return links, err
}

// FindByID returns a link with its parent profile loaded
func (r *SocialLinkRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.SocialLink, error) {
	var link models.SocialLink
	if err := r.db.WithContext(ctx).Preload("Profile").Where("id = ?", id).First(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

// FindOwned returns the link only if its profile belongs to userID
func (r *SocialLinkRepo) FindOwned(ctx context.Context, id, userID uuid.UUID) (*models.SocialLink, error) {
	var link models.SocialLink
	err := r.db.WithContext(ctx).
		Where("id = ? AND profile_id IN (?)", id, r.ownedProfiles(userID)).
		First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *SocialLinkRepo) ownedProfiles(userID uuid.UUID) *gorm.DB {
	return r.db.Model(&models.Profile{}).Select("id").Where("user_id = ?", userID)
}

func (r *SocialLinkRepo) Platforms(ctx context.Context, profileID uuid.UUID) ([]models.Platform, error) {
	var platforms []models.Platform
	err := r.db.WithContext(ctx).Model(&models.SocialLink{}).
		Where("profile_id = ?", profileID).Pluck("platform", &platforms).Error
	return platforms, err
}

// MaxOrder returns the highest display order on the profile, 0 when it has no links
func (r *SocialLinkRepo) MaxOrder(ctx context.Context, profileID uuid.UUID) (int, error) {
	var max int
	err := r.db.WithContext(ctx).Model(&models.SocialLink{}).
		Where("profile_id = ?", profileID).
		Select("COALESCE(MAX(display_order), 0)").Scan(&max).Error
	return max, err
}

// Add inserts a link without touching its profile
func (r *SocialLinkRepo) Add(ctx context.Context, link *models.SocialLink) error {
	return r.db.WithContext(ctx).Select("*").Omit("Profile").Create(link).Error
}

func (r *SocialLinkRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&models.SocialLink{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetOrder moves one link; it reports false when the link is not on the profile
func (r *SocialLinkRepo) SetOrder(ctx context.Context, profileID, id uuid.UUID, order int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.SocialLink{}).
		Where("id = ? AND profile_id = ?", id, profileID).
		Update("display_order", order)
	return res.RowsAffected > 0, res.Error
}

func (r *SocialLinkRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.SocialLink{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteOwned removes the given links that belong to userID's profiles
func (r *SocialLinkRepo) DeleteOwned(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Where("id IN ? AND profile_id IN (?)", ids, r.ownedProfiles(userID)).
		Delete(&models.SocialLink{})
	return res.RowsAffected, res.Error
}

// IncrementClicks bumps click_count in one statement and returns the new value
func (r *SocialLinkRepo) IncrementClicks(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.SocialLink{}).Where("id = ?", id).
		UpdateColumn("click_count", gorm.Expr("click_count + ?", 1))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&models.SocialLink{}).Where("id = ?", id).Select("click_count").Scan(&count).Error
	return count, err
}

func (r *SocialLinkRepo) SumClicks(ctx context.Context, profileIDs []uuid.UUID) (int64, error) {
	q := r.db.WithContext(ctx).Model(&models.SocialLink{})
	if profileIDs != nil {
		if len(profileIDs) == 0 {
			return 0, nil
		}
		q = q.Where("profile_id IN ?", profileIDs)
	}
	var total int64
	err := q.Select("COALESCE(SUM(click_count), 0)").Scan(&total).Error
	return total, err
}
