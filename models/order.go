package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultShippingCountry = "Jordan"

// Order is a physical card purchase. The card design columns are a copy of the
// profile taken when the order was placed and are never refreshed.
type Order struct {
	ID                uuid.UUID     `json:"id" db:"id" gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber       string        `json:"orderNumber" db:"order_number" gorm:"column:order_number;type:varchar(40);not null;uniqueIndex"`
	UserID            uuid.UUID     `json:"userId" db:"user_id" gorm:"column:user_id;type:uuid;not null;index"`
	ProfileID         *uuid.UUID    `json:"profileId" db:"profile_id" gorm:"column:profile_id;type:uuid;index"`
	CustomerFirstName string        `json:"customerFirstName" db:"customer_first_name" gorm:"column:customer_first_name;type:varchar(100);not null"`
	CustomerLastName  string        `json:"customerLastName" db:"customer_last_name" gorm:"column:customer_last_name;type:varchar(100);not null"`
	CustomerEmail     string        `json:"customerEmail" db:"customer_email" gorm:"column:customer_email;type:varchar(255);not null"`
	CustomerPhone     string        `json:"customerPhone" db:"customer_phone" gorm:"column:customer_phone;type:varchar(20);not null"`
	ShippingAddress   string        `json:"shippingAddress" db:"shipping_address" gorm:"column:shipping_address;type:text;not null"`
	ShippingCity      string        `json:"shippingCity" db:"shipping_city" gorm:"column:shipping_city;type:varchar(100);not null"`
	ShippingCountry   string        `json:"shippingCountry" db:"shipping_country" gorm:"column:shipping_country;type:varchar(100);not null;default:Jordan"`
	ShippingNotes     *string       `json:"shippingNotes" db:"shipping_notes" gorm:"column:shipping_notes;type:text"`
	CardType          ProfileType   `json:"cardType" db:"card_type" gorm:"column:card_type;type:varchar(20);not null"`
	CardColor         string        `json:"cardColor" db:"card_color" gorm:"column:card_color;type:varchar(7);not null"`
	CardTemplate      string        `json:"cardTemplate" db:"card_template" gorm:"column:card_template;type:varchar(50);not null"`
	CardDesignMode    DesignMode    `json:"cardDesignMode" db:"card_design_mode" gorm:"column:card_design_mode;type:varchar(20);not null"`
	CardAIBackground  *string       `json:"cardAiBackground" db:"card_ai_background" gorm:"column:card_ai_background;type:text"`
	CustomDesignURL   *string       `json:"customDesignUrl" db:"custom_design_url" gorm:"column:custom_design_url;type:text"`
	PaymentMethod     PaymentMethod `json:"paymentMethod" db:"payment_method" gorm:"column:payment_method;type:varchar(20);not null"`
	TotalAmount       float64       `json:"totalAmount" db:"total_amount" gorm:"column:total_amount;type:numeric(10,2);not null"`
	Status            OrderStatus   `json:"status" db:"status" gorm:"column:status;type:varchar(20);not null;default:pending;index"`
	AdminNotes        *string       `json:"adminNotes" db:"admin_notes" gorm:"column:admin_notes;type:text"`
	ShippedAt         *time.Time    `json:"shippedAt" db:"shipped_at" gorm:"column:shipped_at"`
	DeliveredAt       *time.Time    `json:"deliveredAt" db:"delivered_at" gorm:"column:delivered_at"`
	CreatedAt         time.Time     `json:"createdAt" db:"created_at" gorm:"column:created_at;index"`
	UpdatedAt         time.Time     `json:"updatedAt" db:"updated_at" gorm:"column:updated_at"`
	Profile           *Profile      `json:"profile,omitempty" gorm:"foreignKey:ProfileID;references:ID;constraint:OnDelete:SET NULL"`
	User              *User         `json:"user,omitempty" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
