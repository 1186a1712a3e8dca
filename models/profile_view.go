package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProfileView is one anonymous visit. Rows are append-only and removed only by
// retention cleanup.
type ProfileView struct {
	ID            uuid.UUID  `json:"id" db:"id" gorm:"column:id;type:uuid;primaryKey"`
	ProfileID     uuid.UUID  `json:"profileId" db:"profile_id" gorm:"column:profile_id;type:uuid;not null;index:idx_profile_views_profile_time,priority:1"`
	ViewerIP      *string    `json:"viewerIp" db:"viewer_ip" gorm:"column:viewer_ip;type:varchar(45)"`
	ViewerCountry *string    `json:"viewerCountry" db:"viewer_country" gorm:"column:viewer_country;type:varchar(100)"`
	ViewerCity    *string    `json:"viewerCity" db:"viewer_city" gorm:"column:viewer_city;type:varchar(100)"`
	UserAgent     *string    `json:"userAgent" db:"user_agent" gorm:"column:user_agent;type:text"`
	DeviceType    string     `json:"deviceType" db:"device_type" gorm:"column:device_type;type:varchar(20);not null;default:Unknown"`
	Browser       string     `json:"browser" db:"browser" gorm:"column:browser;type:varchar(100);not null;default:Unknown"`
	Referrer      *string    `json:"referrer" db:"referrer" gorm:"column:referrer;type:text"`
	ViewSource    ViewSource `json:"viewSource" db:"view_source" gorm:"column:view_source;type:varchar(10);not null;default:direct"`
	ViewedAt      time.Time  `json:"viewedAt" db:"viewed_at" gorm:"column:viewed_at;not null;index:idx_profile_views_profile_time,priority:2"`
	Profile       *Profile   `json:"-" gorm:"foreignKey:ProfileID;references:ID;constraint:OnDelete:CASCADE"`
}

func (v *ProfileView) BeforeCreate(*gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
