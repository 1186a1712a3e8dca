package api

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/linkme-io/linkme-backend/services"
)

type adminHandler struct {
	responder Responder
	logger    zerolog.Logger
	analytics *services.Analytics
}

func newAdminHandler(analytics *services.Analytics, rc responderConfig) adminHandler {
	logger := log.With().Str("handlerName", "adminHandler").Logger()
	return adminHandler{
		responder: NewResponder(logger, rc),
		logger:    logger,
		analytics: analytics,
	}
}

// dashboardStats returns platform-wide user, profile and traffic totals
// @Summary Admin dashboard
// @Tags Admin
// @Produce json
// @Success 200 {object} services.AdminDashboard
// @Failure 403 {object} ErrorResponse
// @Router /admin/dashboard/stats [get]
func (h adminHandler) dashboardStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := h.analytics.AdminDashboard(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteData(w, http.StatusOK, stats)
	}
}

// recentActivity returns the newest views, signups and profiles
// @Summary Admin activity feed
// @Tags Admin
// @Produce json
// @Param limit query int false "Entries per list (default 10, max 50)"
// @Success 200 {object} services.AdminActivity
// @Failure 403 {object} ErrorResponse
// @Router /admin/dashboard/recent-activity [get]
func (h adminHandler) recentActivity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := queryInt(r, "limit")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		feed, err := h.analytics.AdminRecentActivity(r.Context(), limit)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteData(w, http.StatusOK, feed)
	}
}
