package api

import (
	"time"

	"github.com/linkme-io/linkme-backend/config"
	"github.com/linkme-io/linkme-backend/database"
	"github.com/linkme-io/linkme-backend/services"
)

// initializeHandlers builds the services once and hands them to each handler
func initializeHandlers(db database.Database, deps Deps, rc responderConfig, startupTime time.Time) *routeHandlers {
	slugs := services.NewSlugAllocator(config.GetString(deps.Config, "PROFILE_BASE_URL", "https://linkme.io"))
	registry := services.NewProfileRegistry(db, slugs, deps.Assets)
	links := services.NewLinkService(db)
	tracker := services.NewTracker(db, deps.Geo)
	analytics := services.NewAnalytics(db)
	orders := services.NewOrders(db)

	return &routeHandlers{
		healthHandler:     newHealthHandler(db, rc, startupTime),
		profileHandler:    newProfileHandler(registry, rc),
		visitorHandler:    newVisitorHandler(tracker, rc),
		socialLinkHandler: newSocialLinkHandler(links, tracker, rc),
		analyticsHandler:  newAnalyticsHandler(analytics, tracker, rc),
		orderHandler:      newOrderHandler(orders, rc),
		adminHandler:      newAdminHandler(analytics, rc),
	}
}
