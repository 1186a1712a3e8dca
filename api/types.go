package api

import (
	"github.com/google/uuid"

	"github.com/linkme-io/linkme-backend/models"
	"github.com/linkme-io/linkme-backend/services"
)

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	healthHandler     healthHandler
	profileHandler    profileHandler
	visitorHandler    visitorHandler
	socialLinkHandler socialLinkHandler
	analyticsHandler  analyticsHandler
	orderHandler      orderHandler
	adminHandler      adminHandler
}

// ErrorResponse represents an error response from the API
// @Description Error response structure
type ErrorResponse struct {
	Success bool   `json:"success" example:"false"`
	Error   string `json:"error" example:"validation failed"`
	Message string `json:"message" example:"name must be between 2 and 100 characters"`
	Field   string `json:"field,omitempty" example:"name"`
	Details string `json:"details,omitempty" example:"Additional error details"`
}

// TrackViewRequest is the optional body of a view beacon
type TrackViewRequest struct {
	Source models.ViewSource `json:"source" example:"qr"`
}

// BulkLinksRequest creates several links on one profile
type BulkLinksRequest struct {
	ProfileID uuid.UUID            `json:"profileId"`
	Links     []services.LinkInput `json:"links"`
}

// ReorderRequest assigns new positions to a profile's links
type ReorderRequest struct {
	Links []services.LinkOrder `json:"links"`
}

// BulkDeleteRequest lists links to remove
type BulkDeleteRequest struct {
	LinkIDs []uuid.UUID `json:"linkIds"`
}

// CleanupRequest sets how many days of views to keep
type CleanupRequest struct {
	DaysToKeep *int `json:"daysToKeep" example:"90"`
}

// HealthResponse reports liveness and database reachability
type HealthResponse struct {
	Status   string `json:"status" example:"ok"`
	Database string `json:"database" example:"ok"`
	Uptime   string `json:"uptime" example:"1h2m3s"`
}
