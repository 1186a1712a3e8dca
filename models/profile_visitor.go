package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProfileVisitor is a contact capture. The profile reference is nulled when the
// profile is deleted; UserID keeps the row attached to its owner.
type ProfileVisitor struct {
	ID            uuid.UUID  `json:"id" db:"id" gorm:"column:id;type:uuid;primaryKey"`
	ProfileID     *uuid.UUID `json:"profileId" db:"profile_id" gorm:"column:profile_id;type:uuid;index"`
	UserID        uuid.UUID  `json:"userId" db:"user_id" gorm:"column:user_id;type:uuid;not null;index"`
	Email         string     `json:"email" db:"email" gorm:"column:email;type:varchar(255);not null"`
	Phone         string     `json:"phone" db:"phone" gorm:"column:phone;type:varchar(20);not null"`
	ViewerIP      *string    `json:"viewerIp" db:"viewer_ip" gorm:"column:viewer_ip;type:varchar(45)"`
	ViewerCountry *string    `json:"viewerCountry" db:"viewer_country" gorm:"column:viewer_country;type:varchar(100)"`
	ViewerCity    *string    `json:"viewerCity" db:"viewer_city" gorm:"column:viewer_city;type:varchar(100)"`
	UserAgent     *string    `json:"userAgent" db:"user_agent" gorm:"column:user_agent;type:text"`
	DeviceType    string     `json:"deviceType" db:"device_type" gorm:"column:device_type;type:varchar(20);not null;default:Unknown"`
	Browser       string     `json:"browser" db:"browser" gorm:"column:browser;type:varchar(100);not null;default:Unknown"`
	ViewSource    ViewSource `json:"viewSource" db:"view_source" gorm:"column:view_source;type:varchar(10);not null;default:direct"`
	SubmittedAt   time.Time  `json:"submittedAt" db:"submitted_at" gorm:"column:submitted_at;not null;index"`
	Profile       *Profile   `json:"profile,omitempty" gorm:"foreignKey:ProfileID;references:ID;constraint:OnDelete:SET NULL"`
	User          *User      `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

func (v *ProfileVisitor) BeforeCreate(*gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
