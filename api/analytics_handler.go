package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/linkme-io/linkme-backend/errs"
	"github.com/linkme-io/linkme-backend/services"
)

type analyticsHandler struct {
	responder Responder
	logger    zerolog.Logger
	analytics *services.Analytics
	tracker   *services.Tracker
}

func newAnalyticsHandler(analytics *services.Analytics, tracker *services.Tracker, rc responderConfig) analyticsHandler {
	logger := log.With().Str("handlerName", "analyticsHandler").Logger()
	return analyticsHandler{
		responder: NewResponder(logger, rc),
		logger:    logger,
		analytics: analytics,
		tracker:   tracker,
	}
}

// profileQuery resolves the caller, the profileId path parameter and the days window.
func (h analyticsHandler) profileQuery(w http.ResponseWriter, r *http.Request) (userID, profileID uuid.UUID, days int, ok bool) {
	userID, err := ctxGetUserID(r.Context())
	if err != nil {
		h.responder.WriteError(w, errs.Unauthorized)
		return
	}
	if profileID, err = urlUUID(r, "profileId"); err != nil {
		h.responder.WriteError(w, err)
		return
	}
	if days, err = queryInt(r, "days"); err != nil {
		h.responder.WriteError(w, err)
		return
	}
	return userID, profileID, days, true
}

// trackView records one visit to a public profile
// @Summary Track profile view
// @Tags Public
// @Accept json
// @Produce json
// @Param slug path string true "Profile slug"
// @Param body body TrackViewRequest false "View source"
// @Success 201 {object} services.TrackedView
// @Failure 400 {object} ErrorResponse "Unknown source"
// @Failure 404 {object} ErrorResponse
// @Router /analytics/track-view/{slug} [post]
func (h analyticsHandler) trackView() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TrackViewRequest
		if err := decodeJSON(w, r, &req, true); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		view, err := h.tracker.TrackView(r.Context(), chi.URLParam(r, "slug"), req.Source, services.RequestMetaFrom(r))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteMessage(w, http.StatusCreated, "View tracked successfully", view)
	}
}

// @Summary Analytics across all my profiles
// @Tags Analytics
// @Produce json
// @Param days query int false "Window in days" default(30)
// @Success 200 {object} services.UserAnalytics
// @Router /analytics/user [get]
func (h analyticsHandler) userAnalytics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := ctxGetUserID(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}
		days, err := queryInt(r, "days")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		out, err := h.analytics.UserAnalytics(r.Context(), userID, days)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteData(w, http.StatusOK, out)
	}
}

// @Summary Full analytics for one profile
// @Tags Analytics
// @Produce json
// @Param profileId path string true "Profile ID" format(uuid)
// @Param days query int false "Window in days" default(30)
// @Success 200 {object} services.ProfileAnalytics
// @Router /analytics/profile/{profileId} [get]
func (h analyticsHandler) profileAnalytics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, profileID, days, ok := h.profileQuery(w, r)
		if !ok {
			return
		}
		out, err := h.analytics.ProfileSummary(r.Context(), userID, profileID, days)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteData(w, http.StatusOK, out)
	}
}

// @Summary Views by source
// @Tags Analytics
// @Produce json
// @Param profileId path string true "Profile ID" format(uuid)
// @Param days query int false "Window in days" default(30)
// @Success 200 {object} services.SourceBreakdown
// @Router /analytics/profile/{profileId}/views-by-source [get]
func (h analyticsHandler) viewsBySource() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, profileID, days, ok := h.profileQuery(w, r)
		if !ok {
			return
		}
		out, err := h.analytics.ViewsBySource(r.Context(), userID, profileID, days)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteData(w, http.StatusOK, out)
	}
}

// @Summary Views by location
// @Tags Analytics
// @Produce json
// @Param profileId path string true "Profile ID" format(uuid)
// @Param days query int false "Window in days" default(30)
// @Param limit query int false "Rows per list" default(10)
// @Success 200 {object} services.LocationBreakdown
// @Router /analytics/profile/{profileId}/views-by-location [get]
func (h analyticsHandler) viewsByLocation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, profileID, days, ok := h.profileQuery(w, r)
		if !ok {
			return
		}
		limit, err := queryInt(r, "limit")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		out, err := h.analytics.ViewsByLocation(r.Context(), userID, profileID, days, limit)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteData(w, http.StatusOK, out)
	}
}

// @Summary Views by device
// @Tags Analytics
// @Produce json
// @Param profileId path string true "Profile ID" format(uuid)
// @Param days query int false "Window in days" default(30)
// @Success 200 {object} services.DeviceBreakdown
// @Router /analytics/profile/{profileId}/views-by-device [get]
func (h analyticsHandler) viewsByDevice() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, profileID, days, ok := h.profileQuery(w, r)
		if !ok {
			return
		}
		out, err := h.analytics.ViewsByDevice(r.Context(), userID, profileID, days)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteData(w, http.StatusOK, out)
	}
}

// @Summary Daily views
// @Tags Analytics
// @Produce json
// @Param profileId path string true "Profile ID" format(uuid)
// @Param days query int false "Window in days" default(30)
// @Success 200 {object} services.ViewSeries
// @Router /analytics/profile/{profileId}/views-over-time [get]
func (h analyticsHandler) viewsOverTime() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, profileID, days, ok := h.profileQuery(w, r)
		if !ok {
			return
		}
		out, err := h.analytics.ViewsOverTime(r.Context(), userID, profileID, days)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteData(w, http.StatusOK, out)
	}
}

// @Summary Recent views
// @Tags Analytics
// @Produce json
// @Param profileId path string true "Profile ID" format(uuid)
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset"
// @Success 200 {object} services.RecentViews
// @Router /analytics/profile/{profileId}/recent-views [get]
func (h analyticsHandler) recentViews() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := ctxGetUserID(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}
		profileID, err := urlUUID(r, "profileId")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		page, err := queryPage(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		out, err := h.analytics.RecentViews(r.Context(), userID, profileID, page)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteData(w, http.StatusOK, out)
	}
}

// cleanup purges old view rows of a profile
// @Summary Delete old views
// @Tags Analytics
// @Accept json
// @Produce json
// @Param profileId path string true "Profile ID" format(uuid)
// @Param body body CleanupRequest false "Retention"
// @Success 200 {object} envelope
// @Router /analytics/profile/{profileId}/cleanup [delete]
func (h analyticsHandler) cleanup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := ctxGetUserID(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}
		profileID, err := urlUUID(r, "profileId")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		var req CleanupRequest
		if err := decodeJSON(w, r, &req, true); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		n, err := h.tracker.PurgeViewsOlderThan(r.Context(), userID, profileID, req.DaysToKeep)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteMessage(w, http.StatusOK, "Old views deleted", map[string]int64{"deletedCount": n})
	}
}
