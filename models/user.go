package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User mirrors the account owned by the external identity provider.
type User struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"column:id;type:uuid;primaryKey"`
	Email     string    `json:"email" db:"email" gorm:"column:email;type:varchar(255);not null;uniqueIndex"`
	FirstName string    `json:"firstName" db:"first_name" gorm:"column:first_name;type:varchar(100)"`
	LastName  string    `json:"lastName" db:"last_name" gorm:"column:last_name;type:varchar(100)"`
	Role      Role      `json:"role" db:"role" gorm:"column:role;type:varchar(20);not null;default:user"`
	CreatedAt time.Time `json:"createdAt" db:"created_at" gorm:"column:created_at;index"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at" gorm:"column:updated_at"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
