package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/linkme-io/linkme-backend/errs"
	"github.com/linkme-io/linkme-backend/services"
)

type profileHandler struct {
	responder Responder
	logger    zerolog.Logger
	registry  *services.ProfileRegistry
}

func newProfileHandler(registry *services.ProfileRegistry, rc responderConfig) profileHandler {
	logger := log.With().Str("handlerName", "profileHandler").Logger()
	return profileHandler{
		responder: NewResponder(logger, rc),
		logger:    logger,
		registry:  registry,
	}
}

// createProfile creates a profile together with its initial links
// @Summary Create profile
// @Description Creates a personal or business profile. Each user may own one profile per type.
// @Tags Profiles
// @Accept json
// @Produce json
// @Param profile body services.ProfileInput true "Profile data"
// @Success 201 {object} models.Profile
// @Failure 400 {object} ErrorResponse "Validation error"
// @Failure 409 {object} ErrorResponse "Profile type already exists"
// @Router /profiles [post]
func (h profileHandler) createProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := ctxGetUserID(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		var in services.ProfileInput
		if err := decodeJSON(w, r, &in, false); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		profile, err := h.registry.Create(r.Context(), userID, in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteMessage(w, http.StatusCreated, "Profile created successfully", profile)
	}
}

// listProfiles returns the caller's profiles with all links
// @Summary List my profiles
// @Tags Profiles
// @Produce json
// @Success 200 {array} models.Profile
// @Router /profiles [get]
func (h profileHandler) listProfiles() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := ctxGetUserID(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}
		profiles, err := h.registry.GetByOwner(r.Context(), userID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteData(w, http.StatusOK, profiles)
	}
}

// @Summary Dashboard summary
// @Tags Profiles
// @Produce json
// @Success 200 {object} services.DashboardSummary
// @Router /profiles/dashboard/summary [get]
func (h profileHandler) dashboardSummary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := ctxGetUserID(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}
		summary, err := h.registry.Summary(r.Context(), userID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteData(w, http.StatusOK, summary)
	}
}

// @Summary Recently edited profiles
// @Tags Profiles
// @Produce json
// @Param limit query int false "Entries to return (default 10, max 50)"
// @Success 200 {object} services.RecentActivity
// @Router /profiles/dashboard/recent-activity [get]
func (h profileHandler) recentActivity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := ctxGetUserID(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}
		limit, err := queryInt(r, "limit")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		feed, err := h.registry.RecentActivity(r.Context(), userID, limit)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteData(w, http.StatusOK, feed)
	}
}

// @Summary Get my profile
// @Tags Profiles
// @Produce json
// @Param id path string true "Profile ID" format(uuid)
// @Success 200 {object} models.Profile
// @Failure 404 {object} ErrorResponse
// @Router /profiles/{id} [get]
func (h profileHandler) getProfile() http.HandlerFunc {
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
		profile, err := h.registry.GetOwned(r.Context(), id, userID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteData(w, http.StatusOK, profile)
	}
}

// updateProfile applies a partial update; renaming issues a new slug and QR code
// @Summary Update profile
// @Tags Profiles
// @Accept json
// @Produce json
// @Param id path string true "Profile ID" format(uuid)
// @Param profile body services.ProfilePatch true "Fields to change"
// @Success 200 {object} models.Profile
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /profiles/{id} [put]
func (h profileHandler) updateProfile() http.HandlerFunc {
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
		var patch services.ProfilePatch
		if err := decodeJSON(w, r, &patch, false); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		profile, err := h.registry.Update(r.Context(), id, userID, patch)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteMessage(w, http.StatusOK, "Profile updated successfully", profile)
	}
}

// deleteProfile removes a profile that has never been ordered
// @Summary Delete profile
// @Tags Profiles
// @Produce json
// @Param id path string true "Profile ID" format(uuid)
// @Success 200 {object} envelope
// @Failure 400 {object} ErrorResponse "Profile has orders"
// @Failure 404 {object} ErrorResponse
// @Router /profiles/{id} [delete]
func (h profileHandler) deleteProfile() http.HandlerFunc {
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
		if err := h.registry.Delete(r.Context(), id, userID); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteMessage(w, http.StatusOK, "Profile deleted successfully", nil)
	}
}

// @Summary Toggle profile status
// @Tags Profiles
// @Produce json
// @Param id path string true "Profile ID" format(uuid)
// @Success 200 {object} models.Profile
// @Router /profiles/{id}/toggle-status [patch]
func (h profileHandler) toggleStatus() http.HandlerFunc {
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
		profile, err := h.registry.ToggleActive(r.Context(), id, userID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		msg := "Profile deactivated"
		if profile.IsActive {
			msg = "Profile activated"
		}
		h.responder.WriteMessage(w, http.StatusOK, msg, profile)
	}
}

// @Summary Regenerate QR code
// @Tags Profiles
// @Produce json
// @Param id path string true "Profile ID" format(uuid)
// @Success 200 {object} models.Profile
// @Failure 500 {object} ErrorResponse "Asset storage failed"
// @Router /profiles/{id}/regenerate-qr [post]
func (h profileHandler) regenerateQR() http.HandlerFunc {
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
		profile, err := h.registry.RegenerateQR(r.Context(), id, userID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteMessage(w, http.StatusOK, "QR code regenerated", profile)
	}
}

// @Summary Upload avatar
// @Tags Profiles
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Profile ID" format(uuid)
// @Param avatar formData file true "Image"
// @Success 200 {object} models.Profile
// @Router /profiles/{id}/avatar [post]
func (h profileHandler) uploadAvatar() http.HandlerFunc {
	return h.upload(h.registry.UploadAvatar, "Avatar uploaded")
}

// @Summary Upload custom card design
// @Tags Profiles
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Profile ID" format(uuid)
// @Param customDesign formData file true "Image"
// @Success 200 {object} models.Profile
// @Router /profiles/{id}/custom-design [post]
func (h profileHandler) uploadCustomDesign() http.HandlerFunc {
	return h.upload(h.registry.UploadCustomDesign, "Custom design uploaded")
}

func (h profileHandler) upload(store uploadFunc, message string) http.HandlerFunc {
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
		upload, err := readUpload(w, r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		profile, err := store(r.Context(), id, userID, upload)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteMessage(w, http.StatusOK, message, profile)
	}
}

// @Summary Remove custom card design
// @Tags Profiles
// @Produce json
// @Param id path string true "Profile ID" format(uuid)
// @Success 200 {object} models.Profile
// @Router /profiles/{id}/custom-design [delete]
func (h profileHandler) removeCustomDesign() http.HandlerFunc {
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
		profile, err := h.registry.RemoveCustomDesign(r.Context(), id, userID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteMessage(w, http.StatusOK, "Custom design removed", profile)
	}
}

// getPublicProfile is the page behind a card's NFC tag or QR code
// @Summary Public profile
// @Description Returns an active profile by slug with only its visible links. No authentication.
// @Tags Public
// @Produce json
// @Param slug path string true "Profile slug"
// @Success 200 {object} models.Profile
// @Failure 404 {object} ErrorResponse
// @Router /profiles/public/{slug} [get]
func (h profileHandler) getPublicProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := h.registry.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteData(w, http.StatusOK, profile)
	}
}
