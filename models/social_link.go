package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SocialLink belongs to one profile; (profile, platform) is unique.
type SocialLink struct {
	ID         uuid.UUID `json:"id" db:"id" gorm:"column:id;type:uuid;primaryKey"`
	ProfileID  uuid.UUID `json:"profileId" db:"profile_id" gorm:"column:profile_id;type:uuid;not null;uniqueIndex:idx_social_links_profile_platform,priority:1"`
	Platform   Platform  `json:"platform" db:"platform" gorm:"column:platform;type:varchar(20);not null;uniqueIndex:idx_social_links_profile_platform,priority:2"`
	URL        string    `json:"url" db:"url" gorm:"column:url;type:text;not null"`
	Label      *string   `json:"label" db:"label" gorm:"column:label;type:varchar(100)"`
	IsVisible  bool      `json:"isVisible" db:"is_visible" gorm:"column:is_visible;not null"`
	Order      int       `json:"order" db:"display_order" gorm:"column:display_order;not null;default:1"`
	ClickCount int64     `json:"clickCount" db:"click_count" gorm:"column:click_count;not null;default:0"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at" gorm:"column:created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at" gorm:"column:updated_at"`
	Profile    *Profile  `json:"-" gorm:"foreignKey:ProfileID;references:ID;constraint:OnDelete:CASCADE"`

	// DisplayLabel is derived on load and create, never stored.
	DisplayLabel string `json:"displayLabel" gorm:"-"`
}

func (l *SocialLink) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	l.DisplayLabel = l.ResolvedLabel()
	return nil
}

func (l *SocialLink) AfterFind(*gorm.DB) error {
	l.DisplayLabel = l.ResolvedLabel()
	return nil
}

// ResolvedLabel is the label shown on the card, defaulting to the
// capitalized platform name.
func (l *SocialLink) ResolvedLabel() string {
	if l.Label != nil && *l.Label != "" {
		return *l.Label
	}
	p := string(l.Platform)
	if p == "" {
		return ""
	}
	return strings.ToUpper(p[:1]) + p[1:]
}
