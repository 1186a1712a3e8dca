package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/linkme-io/linkme-backend/errs"
	"github.com/linkme-io/linkme-backend/services"
)

type visitorHandler struct {
	responder Responder
	logger    zerolog.Logger
	tracker   *services.Tracker
}

func newVisitorHandler(tracker *services.Tracker, rc responderConfig) visitorHandler {
	logger := log.With().Str("handlerName", "visitorHandler").Logger()
	return visitorHandler{
		responder: NewResponder(logger, rc),
		logger:    logger,
		tracker:   tracker,
	}
}

// saveVisitorContact stores the email and phone a visitor leaves on a public profile
// @Summary Leave contact details
// @Tags Public
// @Accept json
// @Produce json
// @Param slug path string true "Profile slug"
// @Param contact body services.ContactInput true "Visitor contact"
// @Success 201 {object} services.SavedContact
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /profiles/public/{slug}/visitor-contact [post]
func (h visitorHandler) saveVisitorContact() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in services.ContactInput
		if err := decodeJSON(w, r, &in, false); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		saved, err := h.tracker.SaveVisitorContact(r.Context(), chi.URLParam(r, "slug"), in, services.RequestMetaFrom(r))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteMessage(w, http.StatusCreated, "Contact information saved", saved)
	}
}

// @Summary List visitors of a profile
// @Tags Visitors
// @Produce json
// @Param id path string true "Profile ID" format(uuid)
// @Param limit query int false "Page size" default(50)
// @Param offset query int false "Offset"
// @Success 200 {object} services.VisitorPage
// @Router /profiles/{id}/visitors [get]
func (h visitorHandler) profileVisitors() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := ctxGetUserID(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}
		id, err := urlUUID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		page, err := queryPage(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		visitors, err := h.tracker.ProfileVisitors(r.Context(), userID, id, page)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteData(w, http.StatusOK, visitors)
	}
}

// @Summary Visitor statistics of a profile
// @Tags Visitors
// @Produce json
// @Param id path string true "Profile ID" format(uuid)
// @Success 200 {object} services.VisitorStats
// @Router /profiles/{id}/visitors/stats [get]
func (h visitorHandler) visitorStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := ctxGetUserID(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}
		id, err := urlUUID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		stats, err := h.tracker.VisitorStats(r.Context(), userID, id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteData(w, http.StatusOK, stats)
	}
}

// allVisitors lists every contact captured across the caller's profiles
// @Summary List all my visitors
// @Tags Visitors
// @Produce json
// @Param limit query int false "Page size" default(50)
// @Param offset query int false "Offset"
// @Success 200 {object} services.VisitorPage
// @Router /profiles/all-visitors [get]
func (h visitorHandler) allVisitors() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := ctxGetUserID(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}
		page, err := queryPage(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		visitors, err := h.tracker.AllVisitors(r.Context(), userID, page)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteData(w, http.StatusOK, visitors)
	}
}
