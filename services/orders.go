package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/linkme-io/linkme-backend/database"
	"github.com/linkme-io/linkme-backend/errs"
	"github.com/linkme-io/linkme-backend/models"
)

const recentOrdersLimit = 10

// OrderInput is a card purchase. Card design fields, when present, override
// the values copied from the profile.
type OrderInput struct {
	ProfileID         uuid.UUID            `json:"profileId" validate:"required"`
	CustomerFirstName string               `json:"customerFirstName" validate:"required,max=100"`
	CustomerLastName  string               `json:"customerLastName" validate:"required,max=100"`
	CustomerEmail     string               `json:"customerEmail" validate:"required,email,max=255"`
	CustomerPhone     string               `json:"customerPhone" validate:"required,max=20,phonechars"`
	ShippingAddress   string               `json:"shippingAddress" validate:"required"`
	ShippingCity      string               `json:"shippingCity" validate:"required,max=100"`
	ShippingCountry   string               `json:"shippingCountry" validate:"omitempty,max=100"`
	ShippingNotes     *string              `json:"shippingNotes"`
	CardColor         *string              `json:"cardColor" validate:"omitempty,cardcolor"`
	CardTemplate      *string              `json:"cardTemplate" validate:"omitempty,max=50"`
	CardDesignMode    *models.DesignMode   `json:"cardDesignMode" validate:"omitempty,oneof=manual ai custom template"`
	CardAIBackground  *string              `json:"cardAiBackground"`
	CustomDesignURL   *string              `json:"customDesignUrl"`
	PaymentMethod     models.PaymentMethod `json:"paymentMethod" validate:"required,oneof=cash_on_delivery online"`
	TotalAmount       *float64             `json:"totalAmount" validate:"required,gte=0"`
}

// StatusUpdate moves an order to another status.
type StatusUpdate struct {
	Status     models.OrderStatus `json:"status" validate:"required"`
	AdminNotes *string            `json:"adminNotes"`
}

// OrderPage is one page of the admin order list.
type OrderPage struct {
	Orders []models.Order `json:"orders"`
	Total  int64          `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// OrderStatistics summarizes all orders for the admin dashboard.
type OrderStatistics struct {
	TotalOrders     int64                 `json:"totalOrders"`
	OrdersByStatus  []database.LabelCount `json:"ordersByStatus"`
	TotalRevenue    float64               `json:"totalRevenue"`
	OrdersThisMonth int64                 `json:"ordersThisMonth"`
	RecentOrders    []models.Order        `json:"recentOrders"`
}

// Orders binds card purchases to a frozen copy of the profile design.
type Orders struct {
	db     database.Database
	logger zerolog.Logger
	now    func() time.Time
}

func NewOrders(db database.Database) *Orders {
	return &Orders{
		db:     db,
		logger: log.With().Str("service", "orders").Logger(),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (o *Orders) orderNumber() string {
	return fmt.Sprintf("ORD-%d-%d", o.now().UnixMilli(), rand.IntN(1000))
}

func coalesce[T any](override, fallback *T) *T {
	if override != nil {
		return override
	}
	return fallback
}

// Create places an order for a profile the caller owns. The profile's design
// is copied onto the order and later profile edits do not reach it.
func (o *Orders) Create(ctx context.Context, userID uuid.UUID, in OrderInput) (*models.Order, error) {
	in.CustomerFirstName = strings.TrimSpace(in.CustomerFirstName)
	in.CustomerLastName = strings.TrimSpace(in.CustomerLastName)
	in.CustomerEmail = strings.ToLower(strings.TrimSpace(in.CustomerEmail))
	in.CustomerPhone = strings.TrimSpace(in.CustomerPhone)
	in.ShippingAddress = strings.TrimSpace(in.ShippingAddress)
	in.ShippingCity = strings.TrimSpace(in.ShippingCity)
	in.ShippingCountry = strings.TrimSpace(in.ShippingCountry)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	profile, err := o.db.ProfileRepo().FindOwned(ctx, in.ProfileID, userID)
	if err != nil {
		return nil, notFoundOr(err, "profile", "find")
	}

	country := in.ShippingCountry
	if country == "" {
		country = models.DefaultShippingCountry
	}
	profileID := profile.ID
	order := &models.Order{
		UserID:            userID,
		ProfileID:         &profileID,
		CustomerFirstName: in.CustomerFirstName,
		CustomerLastName:  in.CustomerLastName,
		CustomerEmail:     in.CustomerEmail,
		CustomerPhone:     in.CustomerPhone,
		ShippingAddress:   in.ShippingAddress,
		ShippingCity:      in.ShippingCity,
		ShippingCountry:   country,
		ShippingNotes:     trimmedOrNil(in.ShippingNotes),
		CardType:          profile.ProfileType,
		CardColor:         *coalesce(in.CardColor, &profile.Color),
		CardTemplate:      *coalesce(in.CardTemplate, &profile.Template),
		CardDesignMode:    *coalesce(in.CardDesignMode, &profile.DesignMode),
		CardAIBackground:  coalesce(in.CardAIBackground, profile.AIBackgroundURL),
		CustomDesignURL:   coalesce(in.CustomDesignURL, profile.CustomDesignURL),
		PaymentMethod:     in.PaymentMethod,
		TotalAmount:       *in.TotalAmount,
		Status:            models.OrderStatusPending,
	}

	for attempt := 0; attempt < 2; attempt++ {
		order.ID = uuid.New()
		order.OrderNumber = o.orderNumber()
		err = o.db.OrderRepo().Add(ctx, order)
		if err == nil || !errs.IsUniqueViolation(err, "order_number") {
			break
		}
	}
	if err != nil {
		return nil, errs.NewDatabaseError("create", "order", err)
	}

	o.logger.Info().Str("orderNumber", order.OrderNumber).Str("profileId", profileID.String()).Msg("order created")
	return o.db.OrderRepo().FindByID(ctx, order.ID)
}

// UpdateStatus sets a new status. Any transition is allowed; shipped and
// delivered stamp their timestamps.
func (o *Orders) UpdateStatus(ctx context.Context, id uuid.UUID, in StatusUpdate) (*models.Order, error) {
	status := models.OrderStatus(strings.ToLower(strings.TrimSpace(string(in.Status))))
	if status == "" {
		return nil, errs.NewMissingRequiredFieldError("status")
	}
	if !status.Valid() {
		return nil, errs.NewInvalidFieldError("status", "must be one of [pending confirmed processing shipped delivered cancelled]")
	}

	fields := map[string]any{"status": string(status)}
	switch status {
	case models.OrderStatusShipped:
		fields["shipped_at"] = o.now()
	case models.OrderStatusDelivered:
		fields["delivered_at"] = o.now()
	}
	if in.AdminNotes != nil {
		fields["admin_notes"] = *in.AdminNotes
	}

	if err := o.db.OrderRepo().UpdateFields(ctx, id, fields); err != nil {
		return nil, notFoundOr(err, "order", "update")
	}
	o.logger.Info().Str("orderId", id.String()).Str("status", string(status)).Msg("order status updated")
	return o.db.OrderRepo().FindByID(ctx, id)
}

func (o *Orders) ListMine(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	orders, err := o.db.OrderRepo().FindByUser(ctx, userID)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "orders", err)
	}
	return emptyIfNil(orders), nil
}

// GetMine returns an order only to the user who placed it.
func (o *Orders) GetMine(ctx context.Context, userID, id uuid.UUID) (*models.Order, error) {
	order, err := o.db.OrderRepo().FindOwned(ctx, id, userID)
	if err != nil {
		return nil, notFoundOr(err, "order", "find")
	}
	return order, nil
}

// ListAll pages through every order, optionally filtered by status.
func (o *Orders) ListAll(ctx context.Context, status string, page database.Page) (*OrderPage, error) {
	var filter *models.OrderStatus
	if status = strings.ToLower(strings.TrimSpace(status)); status != "" {
		s := models.OrderStatus(status)
		if !s.Valid() {
			return nil, errs.NewInvalidFieldError("status", "must be one of [pending confirmed processing shipped delivered cancelled]")
		}
		filter = &s
	}
	orders, total, err := o.db.OrderRepo().FindAll(ctx, filter, page)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "orders", err)
	}
	limit := page.Limit
	if limit <= 0 {
		limit = 50
	}
	return &OrderPage{Orders: emptyIfNil(orders), Total: total, Limit: min(limit, 200), Offset: max(page.Offset, 0)}, nil
}

func (o *Orders) Delete(ctx context.Context, id uuid.UUID) error {
	if err := o.db.OrderRepo().Delete(ctx, id); err != nil {
		return notFoundOr(err, "order", "delete")
	}
	o.logger.Info().Str("orderId", id.String()).Msg("order deleted")
	return nil
}

// Statistics reports order volume and delivered revenue.
func (o *Orders) Statistics(ctx context.Context) (*OrderStatistics, error) {
	now := o.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	repo := o.db.OrderRepo()

	stats := &OrderStatistics{}
	var err error
	if stats.TotalOrders, err = repo.Count(ctx); err != nil {
		return nil, errs.NewDatabaseError("count", "orders", err)
	}
	if stats.OrdersByStatus, err = repo.CountByStatus(ctx); err != nil {
		return nil, errs.NewDatabaseError("count", "orders", err)
	}
	if stats.TotalRevenue, err = repo.SumAmount(ctx, models.OrderStatusDelivered); err != nil {
		return nil, errs.NewDatabaseError("sum", "orders", err)
	}
	if stats.OrdersThisMonth, err = repo.CountSince(ctx, monthStart); err != nil {
		return nil, errs.NewDatabaseError("count", "orders", err)
	}
	if stats.RecentOrders, err = repo.Recent(ctx, recentOrdersLimit); err != nil {
		return nil, errs.NewDatabaseError("find", "orders", err)
	}
	stats.OrdersByStatus = emptyIfNil(stats.OrdersByStatus)
	stats.RecentOrders = emptyIfNil(stats.RecentOrders)
	return stats, nil
}
