package models

// ProfileType is the kind of card a profile represents. A user owns at most
// one profile per type.
type ProfileType string

const (
	ProfileTypePersonal ProfileType = "personal"
	ProfileTypeBusiness ProfileType = "business"
)

func (t ProfileType) Valid() bool {
	return t == ProfileTypePersonal || t == ProfileTypeBusiness
}

type DesignMode string

const (
	DesignModeManual   DesignMode = "manual"
	DesignModeAI       DesignMode = "ai"
	DesignModeCustom   DesignMode = "custom"
	DesignModeTemplate DesignMode = "template"
)

func (m DesignMode) Valid() bool {
	switch m {
	case DesignModeManual, DesignModeAI, DesignModeCustom, DesignModeTemplate:
		return true
	}
	return false
}

type Platform string

const (
	PlatformWebsite   Platform = "website"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformInstagram Platform = "instagram"
	PlatformTwitter   Platform = "twitter"
	PlatformGithub    Platform = "github"
	PlatformWhatsApp  Platform = "whatsapp"
	PlatformEmail     Platform = "email"
	PlatformPhone     Platform = "phone"
)

// Platforms lists every supported social platform.
var Platforms = []Platform{
	PlatformWebsite, PlatformLinkedIn, PlatformInstagram, PlatformTwitter,
	PlatformGithub, PlatformWhatsApp, PlatformEmail, PlatformPhone,
}

func (p Platform) Valid() bool {
	for _, known := range Platforms {
		if p == known {
			return true
		}
	}
	return false
}

type ViewSource string

const (
	ViewSourceNFC    ViewSource = "nfc"
	ViewSourceQR     ViewSource = "qr"
	ViewSourceLink   ViewSource = "link"
	ViewSourceDirect ViewSource = "direct"
)

func (s ViewSource) Valid() bool {
	switch s {
	case ViewSourceNFC, ViewSourceQR, ViewSourceLink, ViewSourceDirect:
		return true
	}
	return false
}

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var OrderStatuses = []OrderStatus{
	OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
	OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentOnline         PaymentMethod = "online"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCashOnDelivery || m == PaymentOnline
}

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Device classes produced by the user-agent parser.
const (
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
	DeviceBot     = "bot"
	Unknown       = "Unknown"
)
