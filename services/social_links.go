package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/linkme-io/linkme-backend/database"
	"github.com/linkme-io/linkme-backend/errs"
	"github.com/linkme-io/linkme-backend/models"
)

// NewLinkInput creates a single link on a profile.
type NewLinkInput struct {
	ProfileID uuid.UUID       `json:"profileId"`
	Platform  models.Platform `json:"platform"`
	URL       string          `json:"url"`
	Label     *string         `json:"label"`
	IsVisible *bool           `json:"isVisible"`
}

// LinkPatch is a partial link update.
type LinkPatch struct {
	URL       Optional[string] `json:"url"`
	Label     Optional[string] `json:"label"`
	IsVisible Optional[bool]   `json:"isVisible"`
	Order     Optional[int]    `json:"order"`
}

// LinkOrder assigns a display position to one link.
type LinkOrder struct {
	ID    uuid.UUID `json:"id"`
	Order int       `json:"order"`
}

// BulkCreateResult reports what a bulk insert did.
type BulkCreateResult struct {
	Created []models.SocialLink `json:"created"`
	Skipped int                 `json:"skipped"`
}

// LinkStatistics summarizes the links of one profile.
type LinkStatistics struct {
	TotalLinks      int                `json:"totalLinks"`
	VisibleLinks    int                `json:"visibleLinks"`
	HiddenLinks     int                `json:"hiddenLinks"`
	TotalClicks     int64              `json:"totalClicks"`
	MostClickedLink *models.SocialLink `json:"mostClickedLink"`
}

// LinkService manages the social links of a user's profiles. Every operation
// checks ownership through the parent profile.
type LinkService struct {
	db     database.Database
	logger zerolog.Logger
}

func NewLinkService(db database.Database) *LinkService {
	return &LinkService{
		db:     db,
		logger: log.With().Str("service", "links").Logger(),
	}
}

func (s *LinkService) ownedProfile(ctx context.Context, profileID, userID uuid.UUID) (*models.Profile, error) {
	profile, err := s.db.ProfileRepo().FindOwned(ctx, profileID, userID)
	if err != nil {
		return nil, notFoundOr(err, "profile", "find")
	}
	return profile, nil
}

func (s *LinkService) ownedLink(ctx context.Context, id, userID uuid.UUID) (*models.SocialLink, error) {
	link, err := s.db.SocialLinkRepo().FindOwned(ctx, id, userID)
	if err != nil {
		return nil, notFoundOr(err, "social link", "find")
	}
	return link, nil
}

func normalizePlatform(p models.Platform) models.Platform {
	return models.Platform(strings.ToLower(strings.TrimSpace(string(p))))
}

func duplicatePlatformError(p models.Platform) error {
	return errs.NewDuplicateError(fmt.Sprintf("A %s link already exists for this profile. Update the existing link instead.", p))
}

// Create adds one link at the end of the profile's list.
func (s *LinkService) Create(ctx context.Context, userID uuid.UUID, in NewLinkInput) (*models.SocialLink, error) {
	if in.ProfileID == uuid.Nil {
		return nil, errs.NewMissingRequiredFieldError("profileId")
	}
	platform := normalizePlatform(in.Platform)
	if platform == "" {
		return nil, errs.NewMissingRequiredFieldError("platform")
	}
	if strings.TrimSpace(in.URL) == "" {
		return nil, errs.NewMissingRequiredFieldError("url")
	}
	url, err := ValidateLink(platform, in.URL)
	if err != nil {
		return nil, err
	}
	label, err := ValidateLabel(in.Label)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedProfile(ctx, in.ProfileID, userID); err != nil {
		return nil, err
	}

	visible := true
	if in.IsVisible != nil {
		visible = *in.IsVisible
	}
	link := &models.SocialLink{
		ProfileID: in.ProfileID,
		Platform:  platform,
		URL:       url,
		Label:     label,
		IsVisible: visible,
	}

	err = s.db.Transaction(ctx, func(tx database.Database) error {
		platforms, err := tx.SocialLinkRepo().Platforms(ctx, in.ProfileID)
		if err != nil {
			return err
		}
		for _, p := range platforms {
			if p == platform {
				return duplicatePlatformError(platform)
			}
		}
		maxOrder, err := tx.SocialLinkRepo().MaxOrder(ctx, in.ProfileID)
		if err != nil {
			return err
		}
		link.Order = maxOrder + 1
		return tx.SocialLinkRepo().Add(ctx, link)
	})
	if err != nil {
		if errs.IsUniqueViolation(err, "platform") {
			return nil, duplicatePlatformError(platform)
		}
		return nil, errs.NewDatabaseError("create", "social link", err)
	}
	return link, nil
}

// BulkCreate adds links in request order. Entries without a platform or url
// are dropped, and platforms already on the profile or repeated within the
// batch are skipped. Any invalid URL rejects the whole batch.
func (s *LinkService) BulkCreate(ctx context.Context, userID, profileID uuid.UUID, inputs []LinkInput) (*BulkCreateResult, error) {
	if profileID == uuid.Nil {
		return nil, errs.NewMissingRequiredFieldError("profileId")
	}
	if len(inputs) == 0 {
		return nil, errs.NewValidationError("socialLinks must be a non-empty array")
	}
	if _, err := s.ownedProfile(ctx, profileID, userID); err != nil {
		return nil, err
	}

	type candidate struct {
		platform models.Platform
		url      string
		label    *string
		visible  bool
	}
	candidates := make([]candidate, 0, len(inputs))
	for _, in := range inputs {
		platform := normalizePlatform(in.Platform)
		if platform == "" || strings.TrimSpace(in.URL) == "" {
			continue
		}
		url, err := ValidateLink(platform, in.URL)
		if err != nil {
			return nil, err
		}
		label, err := ValidateLabel(in.Label)
		if err != nil {
			return nil, err
		}
		visible := true
		if in.IsVisible != nil {
			visible = *in.IsVisible
		}
		candidates = append(candidates, candidate{platform, url, label, visible})
	}
	if len(candidates) == 0 {
		return nil, errs.NewValidationError("No valid social links provided")
	}

	result := &BulkCreateResult{Created: []models.SocialLink{}}
	err := s.db.Transaction(ctx, func(tx database.Database) error {
		existing, err := tx.SocialLinkRepo().Platforms(ctx, profileID)
		if err != nil {
			return err
		}
		taken := make(map[models.Platform]bool, len(existing)+len(candidates))
		for _, p := range existing {
			taken[p] = true
		}
		order, err := tx.SocialLinkRepo().MaxOrder(ctx, profileID)
		if err != nil {
			return err
		}
		for _, c := range candidates {
			if taken[c.platform] {
				result.Skipped++
				continue
			}
			taken[c.platform] = true
			order++
			link := models.SocialLink{
				ProfileID: profileID,
				Platform:  c.platform,
				URL:       c.url,
				Label:     c.label,
				IsVisible: c.visible,
				Order:     order,
			}
			if err := tx.SocialLinkRepo().Add(ctx, &link); err != nil {
				return err
			}
			result.Created = append(result.Created, link)
		}
		return nil
	})
	if err != nil {
		return nil, errs.NewDatabaseError("create", "social links", err)
	}
	if len(result.Created) == 0 && result.Skipped > 0 {
		return nil, errs.NewConflictError("All platforms already exist for this profile")
	}
	return result, nil
}

// List returns a profile's links in display order.
func (s *LinkService) List(ctx context.Context, userID, profileID uuid.UUID, includeHidden bool) ([]models.SocialLink, error) {
	if _, err := s.ownedProfile(ctx, profileID, userID); err != nil {
		return nil, err
	}
	links, err := s.db.SocialLinkRepo().FindByProfile(ctx, profileID, includeHidden)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "social links", err)
	}
	if links == nil {
		links = []models.SocialLink{}
	}
	return links, nil
}

func (s *LinkService) Get(ctx context.Context, userID, id uuid.UUID) (*models.SocialLink, error) {
	return s.ownedLink(ctx, id, userID)
}

// Update changes url, label, visibility or order. A new url is validated
// against the link's platform.
func (s *LinkService) Update(ctx context.Context, userID, id uuid.UUID, patch LinkPatch) (*models.SocialLink, error) {
	link, err := s.ownedLink(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]any)
	if patch.URL.Set {
		if patch.URL.Value == nil || strings.TrimSpace(*patch.URL.Value) == "" {
			return nil, errs.NewMissingRequiredFieldError("url")
		}
		url, err := ValidateLink(link.Platform, *patch.URL.Value)
		if err != nil {
			return nil, err
		}
		fields["url"] = url
		link.URL = url
	}
	if patch.Label.Set {
		label, err := ValidateLabel(patch.Label.Value)
		if err != nil {
			return nil, err
		}
		if label == nil {
			fields["label"] = nil
		} else {
			fields["label"] = *label
		}
		link.Label = label
		link.DisplayLabel = link.ResolvedLabel()
	}
	if patch.IsVisible.Set {
		if patch.IsVisible.Value == nil {
			return nil, errs.NewInvalidFieldError("isVisible", "must be true or false")
		}
		fields["is_visible"] = *patch.IsVisible.Value
		link.IsVisible = *patch.IsVisible.Value
	}
	if patch.Order.Set {
		if patch.Order.Value == nil || *patch.Order.Value < 1 {
			return nil, errs.NewInvalidFieldError("order", "must be at least 1")
		}
		fields["display_order"] = *patch.Order.Value
		link.Order = *patch.Order.Value
	}
	if len(fields) == 0 {
		return link, nil
	}

	if err := s.db.SocialLinkRepo().UpdateFields(ctx, id, fields); err != nil {
		return nil, notFoundOr(err, "social link", "update")
	}
	return link, nil
}

func (s *LinkService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.ownedLink(ctx, id, userID); err != nil {
		return err
	}
	if err := s.db.SocialLinkRepo().Delete(ctx, id); err != nil {
		return notFoundOr(err, "social link", "delete")
	}
	return nil
}

// ToggleVisibility flips is_visible and returns the updated link.
func (s *LinkService) ToggleVisibility(ctx context.Context, userID, id uuid.UUID) (*models.SocialLink, error) {
	link, err := s.ownedLink(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	link.IsVisible = !link.IsVisible
	if err := s.db.SocialLinkRepo().UpdateFields(ctx, id, map[string]any{"is_visible": link.IsVisible}); err != nil {
		return nil, notFoundOr(err, "social link", "update")
	}
	return link, nil
}

// Reorder applies every position in one transaction. Orders need not be
// contiguous but must be at least 1, and every id must belong to the profile.
func (s *LinkService) Reorder(ctx context.Context, userID, profileID uuid.UUID, orders []LinkOrder) ([]models.SocialLink, error) {
	if len(orders) == 0 {
		return nil, errs.NewValidationError("linkOrders must be a non-empty array")
	}
	for _, o := range orders {
		if o.ID == uuid.Nil {
			return nil, errs.NewMissingRequiredFieldError("id")
		}
		if o.Order < 1 {
			return nil, errs.NewInvalidFieldError("order", "must be at least 1")
		}
	}
	if _, err := s.ownedProfile(ctx, profileID, userID); err != nil {
		return nil, err
	}

	err := s.db.Transaction(ctx, func(tx database.Database) error {
		for _, o := range orders {
			ok, err := tx.SocialLinkRepo().SetOrder(ctx, profileID, o.ID, o.Order)
			if err != nil {
				return err
			}
			if !ok {
				return errs.NewNotFoundError(fmt.Sprintf("Social link %s not found on this profile", o.ID))
			}
		}
		return nil
	})
	if err != nil {
		return nil, errs.NewDatabaseError("reorder", "social links", err)
	}
	return s.List(ctx, userID, profileID, true)
}

// Statistics summarizes clicks and visibility for a profile's links.
func (s *LinkService) Statistics(ctx context.Context, userID, profileID uuid.UUID) (*LinkStatistics, error) {
	links, err := s.List(ctx, userID, profileID, true)
	if err != nil {
		return nil, err
	}
	stats := &LinkStatistics{TotalLinks: len(links)}
	for i := range links {
		l := &links[i]
		if l.IsVisible {
			stats.VisibleLinks++
		}
		stats.TotalClicks += l.ClickCount
		if stats.MostClickedLink == nil || l.ClickCount > stats.MostClickedLink.ClickCount {
			stats.MostClickedLink = l
		}
	}
	stats.HiddenLinks = stats.TotalLinks - stats.VisibleLinks
	return stats, nil
}

// BulkDelete removes the listed links the user owns and reports how many went.
func (s *LinkService) BulkDelete(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, errs.NewValidationError("linkIds must be a non-empty array")
	}
	n, err := s.db.SocialLinkRepo().DeleteOwned(ctx, userID, ids)
	if err != nil {
		return 0, errs.NewDatabaseError("delete", "social links", err)
	}
	s.logger.Info().Str("userId", userID.String()).Int64("deleted", n).Msg("bulk deleted social links")
	return n, nil
}
