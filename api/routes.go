package api

import (
	"github.com/go-chi/chi/v5"
)

// setupPublicRoutes registers the unauthenticated endpoints: public profile
// pages and the tracking beacons
func setupPublicRoutes(r chi.Router, handlers *routeHandlers) {
	r.Get("/health", handlers.healthHandler.health())

	r.Get("/profiles/public/{slug}", handlers.profileHandler.getPublicProfile())
	r.Post("/profiles/public/{slug}/visitor-contact", handlers.visitorHandler.saveVisitorContact())
	r.Post("/analytics/track-view/{slug}", handlers.analyticsHandler.trackView())
	r.Post("/social-links/{id}/click", handlers.socialLinkHandler.trackClick())
}

// setupAuthenticatedRoutes registers everything that acts on the caller's own data
func setupAuthenticatedRoutes(r chi.Router, handlers *routeHandlers, auth authMiddleware) {
	r.Group(func(r chi.Router) {
		r.Use(auth.authenticate)

		// Profiles
		r.Post("/profiles", handlers.profileHandler.createProfile())
		r.Get("/profiles", handlers.profileHandler.listProfiles())
		r.Get("/profiles/dashboard/summary", handlers.profileHandler.dashboardSummary())
		r.Get("/profiles/dashboard/recent-activity", handlers.profileHandler.recentActivity())
		r.Get("/profiles/all-visitors", handlers.visitorHandler.allVisitors())
		r.Get("/profiles/{id}", handlers.profileHandler.getProfile())
		r.Put("/profiles/{id}", handlers.profileHandler.updateProfile())
		r.Delete("/profiles/{id}", handlers.profileHandler.deleteProfile())
		r.Patch("/profiles/{id}/toggle-status", handlers.profileHandler.toggleStatus())
		r.Post("/profiles/{id}/regenerate-qr", handlers.profileHandler.regenerateQR())
		r.Post("/profiles/{id}/avatar", handlers.profileHandler.uploadAvatar())
		r.Post("/profiles/{id}/custom-design", handlers.profileHandler.uploadCustomDesign())
		r.Delete("/profiles/{id}/custom-design", handlers.profileHandler.removeCustomDesign())
		r.Get("/profiles/{id}/visitors", handlers.visitorHandler.profileVisitors())
		r.Get("/profiles/{id}/visitors/stats", handlers.visitorHandler.visitorStats())

		// Social links
		r.Post("/social-links", handlers.socialLinkHandler.createLink())
		r.Post("/social-links/bulk", handlers.socialLinkHandler.bulkCreate())
		r.Delete("/social-links/bulk", handlers.socialLinkHandler.bulkDelete())
		r.Get("/social-links/profile/{profileId}", handlers.socialLinkHandler.listLinks())
		r.Get("/social-links/profile/{profileId}/statistics", handlers.socialLinkHandler.statistics())
		r.Put("/social-links/profile/{profileId}/reorder", handlers.socialLinkHandler.reorder())
		r.Get("/social-links/{id}", handlers.socialLinkHandler.getLink())
		r.Put("/social-links/{id}", handlers.socialLinkHandler.updateLink())
		r.Delete("/social-links/{id}", handlers.socialLinkHandler.deleteLink())
		r.Patch("/social-links/{id}/toggle-visibility", handlers.socialLinkHandler.toggleVisibility())

		// Analytics
		r.Get("/analytics/user", handlers.analyticsHandler.userAnalytics())
		r.Get("/analytics/profile/{profileId}", handlers.analyticsHandler.profileAnalytics())
		r.Get("/analytics/profile/{profileId}/views-by-source", handlers.analyticsHandler.viewsBySource())
		r.Get("/analytics/profile/{profileId}/views-by-location", handlers.analyticsHandler.viewsByLocation())
		r.Get("/analytics/profile/{profileId}/views-by-device", handlers.analyticsHandler.viewsByDevice())
		r.Get("/analytics/profile/{profileId}/views-over-time", handlers.analyticsHandler.viewsOverTime())
		r.Get("/analytics/profile/{profileId}/recent-views", handlers.analyticsHandler.recentViews())
		r.Delete("/analytics/profile/{profileId}/cleanup", handlers.analyticsHandler.cleanup())

		// Orders
		r.Post("/orders", handlers.orderHandler.createOrder())
		r.Get("/orders/my-orders", handlers.orderHandler.myOrders())
		r.Get("/orders/{orderId}", handlers.orderHandler.getOrder())
	})
}

// setupAdminRoutes registers endpoints restricted to the admin role
func setupAdminRoutes(r chi.Router, handlers *routeHandlers, auth authMiddleware) {
	r.Group(func(r chi.Router) {
		r.Use(auth.authenticate)
		r.Use(auth.requireAdmin)

		r.Get("/orders/admin/all", handlers.orderHandler.listAllOrders())
		r.Get("/orders/admin/statistics", handlers.orderHandler.statistics())
		r.Patch("/orders/admin/{orderId}/status", handlers.orderHandler.updateStatus())
		r.Delete("/orders/admin/{orderId}", handlers.orderHandler.deleteOrder())

		r.Get("/admin/dashboard/stats", handlers.adminHandler.dashboardStats())
		r.Get("/admin/dashboard/recent-activity", handlers.adminHandler.recentActivity())
	})
}
