package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/linkme-io/linkme-backend/models"
)

type OrderRepository interface {
	Add(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindOwned(ctx context.Context, id, userID uuid.UUID) (*models.Order, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	FindAll(ctx context.Context, status *models.OrderStatus, page Page) ([]models.Order, int64, error)
	CountByProfile(ctx context.Context, profileID uuid.UUID) (int64, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) ([]LabelCount, error)
	SumAmount(ctx context.Context, status models.OrderStatus) (float64, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
	Recent(ctx context.Context, limit int) ([]models.Order, error)
}

type OrderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) *OrderRepo {
	return &OrderRepo{db}
}

func withOrderProfile(db *gorm.DB) *gorm.DB {
	return db.Preload("Profile", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "name", "slug", "profile_type")
	})
}

// Add inserts a new order
func (r *OrderRepo) Add(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Omit("Profile", "User").Create(order).Error
}

// FindByID returns an order with its profile and customer account
func (r *OrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := withOrderProfile(r.db.WithContext(ctx)).Preload("User").Where("id = ?", id).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindOwned returns an order only if it belongs to userID
func (r *OrderRepo) FindOwned(ctx context.Context, id, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := withOrderProfile(r.db.WithContext(ctx)).Where("id = ? AND user_id = ?", id, userID).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByUser returns a user's orders, newest first
func (r *OrderRepo) FindByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := withOrderProfile(r.db.WithContext(ctx)).Where("user_id = ?", userID).Order("created_at DESC").Find(&orders).Error
	return orders, err
}

// FindAll pages through every order, optionally filtered by status
func (r *OrderRepo) FindAll(ctx context.Context, status *models.OrderStatus, page Page) ([]models.Order, int64, error) {
	page = page.normalized(50, 200)
	q := r.db.WithContext(ctx).Model(&models.Order{})
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var orders []models.Order
	err := withOrderProfile(q.Session(&gorm.Session{})).Preload("User").
		Order("created_at DESC").Limit(page.Limit).Offset(page.Offset).
		Find(&orders).Error
	return orders, total, err
}

func (r *OrderRepo) CountByProfile(ctx context.Context, profileID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).Where("profile_id = ?", profileID).Count(&n).Error
	return n, err
}

func (r *OrderRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes an order by id
func (r *OrderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Order{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *OrderRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).Count(&n).Error
	return n, err
}

func (r *OrderRepo) CountByStatus(ctx context.Context) ([]LabelCount, error) {
	var rows []LabelCount
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Select("status AS label, COUNT(*) AS count").
		Group("status").Order("count DESC").Order("label ASC").
		Scan(&rows).Error
	return rows, err
}

// SumAmount totals total_amount over orders in the given status
func (r *OrderRepo) SumAmount(ctx context.Context, status models.OrderStatus) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("status = ?", status).
		Select("COALESCE(SUM(total_amount), 0)").Scan(&total).Error
	return total, err
}

func (r *OrderRepo) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).Where("created_at >= ?", since.UTC()).Count(&n).Error
	return n, err
}

// Recent returns the newest orders with their customer account
func (r *OrderRepo) Recent(ctx context.Context, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := withOrderProfile(r.db.WithContext(ctx)).Preload("User").Order("created_at DESC").Limit(limit).Find(&orders).Error
	return orders, err
}
