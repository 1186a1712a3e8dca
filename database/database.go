package database

import (
	"context"

	"gorm.io/gorm"
)

type Database struct {
	db                 *gorm.DB
	userRepo           *UserRepo
	profileRepo        *ProfileRepo
	socialLinkRepo     *SocialLinkRepo
	profileViewRepo    *ProfileViewRepo
	profileVisitorRepo *ProfileVisitorRepo
	orderRepo          *OrderRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		db:                 db,
		userRepo:           NewUserRepo(db),
		profileRepo:        NewProfileRepo(db),
		socialLinkRepo:     NewSocialLinkRepo(db),
		profileViewRepo:    NewProfileViewRepo(db),
		profileVisitorRepo: NewProfileVisitorRepo(db),
		orderRepo:          NewOrderRepo(db),
	}
}

// Transaction runs fn with repositories bound to a single transaction. The
// transaction is rolled back when fn returns an error.
func (d Database) Transaction(ctx context.Context, fn func(tx Database) error) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

// GetDB returns the underlying connection
func (d Database) GetDB() *gorm.DB {
	return d.db
}

// Accessor methods for each repository

func (d Database) UserRepo() UserRepository {
	return d.userRepo
}

func (d Database) ProfileRepo() ProfileRepository {
	return d.profileRepo
}

func (d Database) SocialLinkRepo() SocialLinkRepository {
	return d.socialLinkRepo
}

func (d Database) ProfileViewRepo() ProfileViewRepository {
	return d.profileViewRepo
}

func (d Database) ProfileVisitorRepo() ProfileVisitorRepository {
	return d.profileVisitorRepo
}

func (d Database) OrderRepo() OrderRepository {
	return d.orderRepo
}
