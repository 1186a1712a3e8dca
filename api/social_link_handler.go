package api

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/linkme-io/linkme-backend/errs"
	"github.com/linkme-io/linkme-backend/services"
)

type socialLinkHandler struct {
	responder Responder
	logger    zerolog.Logger
	links     *services.LinkService
	tracker   *services.Tracker
}

func newSocialLinkHandler(links *services.LinkService, tracker *services.Tracker, rc responderConfig) socialLinkHandler {
	logger := log.With().Str("handlerName", "socialLinkHandler").Logger()
	return socialLinkHandler{
		responder: NewResponder(logger, rc),
		logger:    logger,
		links:     links,
		tracker:   tracker,
	}
}

// callerAnd resolves the caller and one UUID path parameter.
func (h socialLinkHandler) callerAnd(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, uuid.UUID, bool) {
	userID, err := ctxGetUserID(r.Context())
	if err != nil {
		h.responder.WriteError(w, errs.Unauthorized)
		return uuid.Nil, uuid.Nil, false
	}
	id, err := urlUUID(r, param)
	if err != nil {
		h.responder.WriteError(w, err)
		return uuid.Nil, uuid.Nil, false
	}
	return userID, id, true
}

// @Summary Create social link
// @Tags Social Links
// @Accept json
// @Produce json
// @Param link body services.NewLinkInput true "Link"
// @Success 201 {object} models.SocialLink
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Platform already linked"
// @Router /social-links [post]
func (h socialLinkHandler) createLink() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := ctxGetUserID(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}
		var in services.NewLinkInput
		if err := decodeJSON(w, r, &in, false); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		link, err := h.links.Create(r.Context(), userID, in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteMessage(w, http.StatusCreated, "Social link created successfully", link)
	}
}

// @Summary Create several social links
// @Tags Social Links
// @Accept json
// @Produce json
// @Param links body BulkLinksRequest true "Links"
// @Success 201 {object} services.BulkCreateResult
// @Failure 409 {object} ErrorResponse "Every platform already exists"
// @Router /social-links/bulk [post]
func (h socialLinkHandler) bulkCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := ctxGetUserID(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}
		var req BulkLinksRequest
		if err := decodeJSON(w, r, &req, false); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		result, err := h.links.BulkCreate(r.Context(), userID, req.ProfileID, req.Links)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteMessage(w, http.StatusCreated, strconv.Itoa(len(result.Created))+" social links created", result)
	}
}

// @Summary List links of a profile
// @Tags Social Links
// @Produce json
// @Param profileId path string true "Profile ID" format(uuid)
// @Param includeHidden query bool false "Include hidden links" default(true)
// @Success 200 {array} models.SocialLink
// @Router /social-links/profile/{profileId} [get]
func (h socialLinkHandler) listLinks() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, profileID, ok := h.callerAnd(w, r, "profileId")
		if !ok {
			return
		}
		includeHidden := r.URL.Query().Get("includeHidden") != "false"
		links, err := h.links.List(r.Context(), userID, profileID, includeHidden)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteData(w, http.StatusOK, links)
	}
}

// @Summary Link statistics of a profile
// @Tags Social Links
// @Produce json
// @Param profileId path string true "Profile ID" format(uuid)
// @Success 200 {object} services.LinkStatistics
// @Router /social-links/profile/{profileId}/statistics [get]
func (h socialLinkHandler) statistics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, profileID, ok := h.callerAnd(w, r, "profileId")
		if !ok {
			return
		}
		stats, err := h.links.Statistics(r.Context(), userID, profileID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteData(w, http.StatusOK, stats)
	}
}

// @Summary Reorder links
// @Tags Social Links
// @Accept json
// @Produce json
// @Param profileId path string true "Profile ID" format(uuid)
// @Param order body ReorderRequest true "New positions"
// @Success 200 {array} models.SocialLink
// @Router /social-links/profile/{profileId}/reorder [put]
func (h socialLinkHandler) reorder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, profileID, ok := h.callerAnd(w, r, "profileId")
		if !ok {
			return
		}
		var req ReorderRequest
		if err := decodeJSON(w, r, &req, false); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		links, err := h.links.Reorder(r.Context(), userID, profileID, req.Links)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteMessage(w, http.StatusOK, "Social links reordered successfully", links)
	}
}

// @Summary Delete several links
// @Tags Social Links
// @Accept json
// @Produce json
// @Param ids body BulkDeleteRequest true "Link IDs"
// @Success 200 {object} envelope
// @Router /social-links/bulk [delete]
func (h socialLinkHandler) bulkDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := ctxGetUserID(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}
		var req BulkDeleteRequest
		if err := decodeJSON(w, r, &req, false); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		n, err := h.links.BulkDelete(r.Context(), userID, req.LinkIDs)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteMessage(w, http.StatusOK, strconv.FormatInt(n, 10)+" social links deleted", map[string]int64{"deletedCount": n})
	}
}

// @Summary Get social link
// @Tags Social Links
// @Produce json
// @Param id path string true "Link ID" format(uuid)
// @Success 200 {object} models.SocialLink
// @Failure 404 {object} ErrorResponse
// @Router /social-links/{id} [get]
func (h socialLinkHandler) getLink() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, id, ok := h.callerAnd(w, r, "id")
		if !ok {
			return
		}
		link, err := h.links.Get(r.Context(), userID, id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteData(w, http.StatusOK, link)
	}
}

// @Summary Update social link
// @Tags Social Links
// @Accept json
// @Produce json
// @Param id path string true "Link ID" format(uuid)
// @Param link body services.LinkPatch true "Fields to change"
// @Success 200 {object} models.SocialLink
// @Router /social-links/{id} [put]
func (h socialLinkHandler) updateLink() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, id, ok := h.callerAnd(w, r, "id")
		if !ok {
			return
		}
		var patch services.LinkPatch
		if err := decodeJSON(w, r, &patch, false); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		link, err := h.links.Update(r.Context(), userID, id, patch)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteMessage(w, http.StatusOK, "Social link updated successfully", link)
	}
}

// @Summary Delete social link
// @Tags Social Links
// @Produce json
// @Param id path string true "Link ID" format(uuid)
// @Success 200 {object} envelope
// @Router /social-links/{id} [delete]
func (h socialLinkHandler) deleteLink() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, id, ok := h.callerAnd(w, r, "id")
		if !ok {
			return
		}
		if err := h.links.Delete(r.Context(), userID, id); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteMessage(w, http.StatusOK, "Social link deleted successfully", nil)
	}
}

// @Summary Toggle link visibility
// @Tags Social Links
// @Produce json
// @Param id path string true "Link ID" format(uuid)
// @Success 200 {object} models.SocialLink
// @Router /social-links/{id}/toggle-visibility [patch]
func (h socialLinkHandler) toggleVisibility() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, id, ok := h.callerAnd(w, r, "id")
		if !ok {
			return
		}
		link, err := h.links.ToggleVisibility(r.Context(), userID, id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		msg := "Social link hidden"
		if link.IsVisible {
			msg = "Social link shown"
		}
		h.responder.WriteMessage(w, http.StatusOK, msg, link)
	}
}

// trackClick counts a click from a public profile and returns the redirect target
// @Summary Track link click
// @Tags Public
// @Produce json
// @Param id path string true "Link ID" format(uuid)
// @Success 200 {object} services.TrackedClick
// @Failure 404 {object} ErrorResponse
// @Router /social-links/{id}/click [post]
func (h socialLinkHandler) trackClick() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlUUID(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		click, err := h.tracker.TrackClick(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteData(w, http.StatusOK, click)
	}
}
