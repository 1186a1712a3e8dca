package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultColor    = "#0066FF"
	DefaultTemplate = "modern"
)

// Profile is one smart card. Slug and ProfileURL move together and the QR
// asset always encodes ProfileURL.
type Profile struct {
	ID              uuid.UUID    `json:"id" db:"id" gorm:"column:id;type:uuid;primaryKey"`
	UserID          uuid.UUID    `json:"userId" db:"user_id" gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_profiles_user_type,priority:1"`
	ProfileType     ProfileType  `json:"profileType" db:"profile_type" gorm:"column:profile_type;type:varchar(20);not null;uniqueIndex:idx_profiles_user_type,priority:2"`
	Name            string       `json:"name" db:"name" gorm:"column:name;type:varchar(100);not null"`
	Title           *string      `json:"title" db:"title" gorm:"column:title;type:varchar(150)"`
	Bio             *string      `json:"bio" db:"bio" gorm:"column:bio;type:text"`
	AvatarURL       *string      `json:"avatarUrl" db:"avatar_url" gorm:"column:avatar_url;type:text"`
	Color           string       `json:"color" db:"color" gorm:"column:color;type:varchar(7);not null;default:'#0066FF'"`
	DesignMode      DesignMode   `json:"designMode" db:"design_mode" gorm:"column:design_mode;type:varchar(20);not null;default:manual"`
	AIBackgroundURL *string      `json:"aiBackground" db:"ai_background_url" gorm:"column:ai_background_url;type:text"`
	AIPrompt        *string      `json:"aiPrompt" db:"ai_prompt" gorm:"column:ai_prompt;type:text"`
	CustomDesignURL *string      `json:"customDesignUrl" db:"custom_design_url" gorm:"column:custom_design_url;type:text"`
	Template        string       `json:"template" db:"template" gorm:"column:template;type:varchar(50);not null;default:modern"`
	Slug            string       `json:"slug" db:"slug" gorm:"column:slug;type:varchar(120);not null;uniqueIndex:idx_profiles_slug"`
	ProfileURL      string       `json:"profileUrl" db:"profile_url" gorm:"column:profile_url;type:text;not null"`
	QRCodeURL       *string      `json:"qrCodeUrl" db:"qr_code_url" gorm:"column:qr_code_url;type:text"`
	IsActive        bool         `json:"isActive" db:"is_active" gorm:"column:is_active;not null"`
	ViewCount       int64        `json:"viewCount" db:"view_count" gorm:"column:view_count;not null;default:0"`
	CreatedAt       time.Time    `json:"createdAt" db:"created_at" gorm:"column:created_at;index"`
	UpdatedAt       time.Time    `json:"updatedAt" db:"updated_at" gorm:"column:updated_at"`
	User            *User        `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	SocialLinks     []SocialLink `json:"socialLinks" gorm:"foreignKey:ProfileID;references:ID;constraint:OnDelete:CASCADE"`
}

func (p *Profile) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// AssetURLs returns every stored asset the profile references.
func (p *Profile) AssetURLs() []*string {
	var urls []*string
	for _, u := range []*string{p.AvatarURL, p.QRCodeURL, p.AIBackgroundURL, p.CustomDesignURL} {
		if u != nil && *u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}
