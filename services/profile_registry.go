package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/linkme-io/linkme-backend/database"
	"github.com/linkme-io/linkme-backend/errs"
	"github.com/linkme-io/linkme-backend/models"
)

// LinkInput is one social link in a create request.
type LinkInput struct {
	Platform  models.Platform `json:"platform"`
	URL       string          `json:"url"`
	Label     *string         `json:"label"`
	IsVisible *bool           `json:"isVisible"`
}

// ProfileInput is the payload for creating a profile.
type ProfileInput struct {
	ProfileType     models.ProfileType `json:"profileType" validate:"required,oneof=personal business"`
	Name            string             `json:"name" validate:"required,min=2,max=100"`
	Title           *string            `json:"title" validate:"omitempty,max=150"`
	Bio             *string            `json:"bio" validate:"omitempty,max=500"`
	AvatarURL       *string            `json:"avatarUrl"`
	Color           string             `json:"color" validate:"omitempty,cardcolor"`
	DesignMode      models.DesignMode  `json:"designMode" validate:"omitempty,oneof=manual ai custom template"`
	AIBackgroundURL *string            `json:"aiBackground"`
	AIPrompt        *string            `json:"aiPrompt" validate:"omitempty,max=500"`
	CustomDesignURL *string            `json:"customDesignUrl"`
	Template        string             `json:"template" validate:"omitempty,max=50"`
	SocialLinks     []LinkInput        `json:"socialLinks"`
}

// ProfilePatch is a partial update. Absent fields keep their value; nullable
// fields are cleared by an explicit null or empty string.
type ProfilePatch struct {
	Name            Optional[string]            `json:"name"`
	Title           Optional[string]            `json:"title"`
	Bio             Optional[string]            `json:"bio"`
	AvatarURL       Optional[string]            `json:"avatarUrl"`
	Color           Optional[string]            `json:"color"`
	DesignMode      Optional[models.DesignMode] `json:"designMode"`
	AIBackgroundURL Optional[string]            `json:"aiBackground"`
	AIPrompt        Optional[string]            `json:"aiPrompt"`
	CustomDesignURL Optional[string]            `json:"customDesignUrl"`
	Template        Optional[string]            `json:"template"`
}

// Upload is an image received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// DashboardSummary is the per-user overview card.
type DashboardSummary struct {
	TotalProfiles  int64 `json:"totalProfiles"`
	TotalViews     int64 `json:"totalViews"`
	TotalClicks    int64 `json:"totalClicks"`
	ActiveProfiles int64 `json:"activeProfiles"`
}

// RecentUpdate is one entry of a user's activity feed.
type RecentUpdate struct {
	ID          uuid.UUID          `json:"id"`
	Name        string             `json:"name"`
	ProfileType models.ProfileType `json:"profileType"`
	UpdatedAt   time.Time          `json:"updatedAt"`
	ViewCount   int64              `json:"viewCount"`
	IsActive    bool               `json:"isActive"`
}

type RecentActivity struct {
	RecentUpdates []RecentUpdate `json:"recentUpdates"`
}

// ProfileRegistry owns the profile lifecycle.
type ProfileRegistry struct {
	db     database.Database
	slugs  SlugAllocator
	assets AssetStore
	logger zerolog.Logger
	now    func() time.Time
}

// NewProfileRegistry wires the registry. assets may be nil, in which case no QR
// codes are produced and uploads are rejected.
func NewProfileRegistry(db database.Database, slugs SlugAllocator, assets AssetStore) *ProfileRegistry {
	return &ProfileRegistry{
		db:     db,
		slugs:  slugs,
		assets: assets,
		logger: log.With().Str("service", "profileRegistry").Logger(),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (in *ProfileInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.ProfileType = models.ProfileType(strings.ToLower(strings.TrimSpace(string(in.ProfileType))))
	in.Title = trimmedOrNil(in.Title)
	in.Bio = trimmedOrNil(in.Bio)
	in.AvatarURL = trimmedOrNil(in.AvatarURL)
	in.AIBackgroundURL = trimmedOrNil(in.AIBackgroundURL)
	in.AIPrompt = trimmedOrNil(in.AIPrompt)
	in.CustomDesignURL = trimmedOrNil(in.CustomDesignURL)
	if in.Color == "" {
		in.Color = models.DefaultColor
	}
	if in.DesignMode == "" {
		in.DesignMode = models.DesignModeManual
	}
	if in.Template = strings.TrimSpace(in.Template); in.Template == "" {
		in.Template = models.DefaultTemplate
	}
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

// prepareLinks validates a create batch before anything is persisted. Entries
// without a platform or URL are dropped; a repeated platform is a conflict.
func prepareLinks(inputs []LinkInput) ([]models.SocialLink, error) {
	links := make([]models.SocialLink, 0, len(inputs))
	seen := make(map[models.Platform]bool, len(inputs))
	for _, in := range inputs {
		platform := models.Platform(strings.ToLower(strings.TrimSpace(string(in.Platform))))
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
		if seen[platform] {
			return nil, errs.NewDuplicateError(fmt.Sprintf("A %s link already exists for this profile", platform))
		}
		seen[platform] = true

		visible := true
		if in.IsVisible != nil {
			visible = *in.IsVisible
		}
		links = append(links, models.SocialLink{
			Platform:  platform,
			URL:       url,
			Label:     label,
			IsVisible: visible,
			Order:     len(links) + 1,
		})
	}
	return links, nil
}

// Create stores a new profile and its links atomically.
func (s *ProfileRegistry) Create(ctx context.Context, userID uuid.UUID, in ProfileInput) (*models.Profile, error) {
	in.normalize()
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	links, err := prepareLinks(in.SocialLinks)
	if err != nil {
		return nil, err
	}

	exists, err := s.db.ProfileRepo().ExistsForType(ctx, userID, in.ProfileType)
	if err != nil {
		return nil, errs.NewDatabaseError("check", "profile", err)
	}
	if exists {
		return nil, duplicateTypeError(in.ProfileType)
	}

	var profile *models.Profile
	for attempt := 0; attempt < 2; attempt++ {
		profile, err = s.createOnce(ctx, userID, in, links)
		if err == nil || !errs.IsUniqueViolation(err, "slug") {
			break
		}
		s.logger.Warn().Str("name", in.Name).Int("attempt", attempt+1).Msg("slug taken at insert time, reallocating")
	}
	if err != nil {
		switch {
		case errs.IsUniqueViolation(err, "profile_type") || errs.IsUniqueViolation(err, "user_type"):
			return nil, duplicateTypeError(in.ProfileType)
		case errs.IsUniqueViolation(err, "platform"):
			return nil, errs.NewDuplicateError("Each platform may only be added once per profile")
		}
		return nil, errs.NewDatabaseError("create", "profile", err)
	}

	s.logger.Info().Str("profileId", profile.ID.String()).Str("slug", profile.Slug).Msg("profile created")
	return s.db.ProfileRepo().FindByID(ctx, profile.ID)
}

func duplicateTypeError(t models.ProfileType) error {
	return errs.NewConflictError(fmt.Sprintf("You already have a %s profile. Each user can only have one %s profile.", t, t))
}

func (s *ProfileRegistry) createOnce(ctx context.Context, userID uuid.UUID, in ProfileInput, links []models.SocialLink) (*models.Profile, error) {
	slug, err := s.slugs.Allocate(ctx, s.db.ProfileRepo(), in.Name, nil)
	if err != nil {
		return nil, err
	}
	profileURL := s.slugs.ProfileURL(slug)

	qrURL, err := s.storeQR(ctx, userID, profileURL)
	if err != nil {
		return nil, err
	}

	profile := &models.Profile{
		ID:              uuid.New(),
		UserID:          userID,
		ProfileType:     in.ProfileType,
		Name:            in.Name,
		Title:           in.Title,
		Bio:             in.Bio,
		AvatarURL:       in.AvatarURL,
		Color:           in.Color,
		DesignMode:      in.DesignMode,
		AIBackgroundURL: in.AIBackgroundURL,
		AIPrompt:        in.AIPrompt,
		CustomDesignURL: in.CustomDesignURL,
		Template:        in.Template,
		Slug:            slug,
		ProfileURL:      profileURL,
		QRCodeURL:       qrURL,
		IsActive:        true,
	}

	err = s.db.Transaction(ctx, func(tx database.Database) error {
		if err := tx.ProfileRepo().Add(ctx, profile); err != nil {
			return err
		}
		for i := range links {
			link := links[i]
			link.ID = uuid.Nil
			link.ProfileID = profile.ID
			if err := tx.SocialLinkRepo().Add(ctx, &link); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.discardAssets(ctx, qrURL)
		return nil, err
	}
	return profile, nil
}

// storeQR renders and uploads a QR code for url. Without an asset store it returns nil.
func (s *ProfileRegistry) storeQR(ctx context.Context, userID uuid.UUID, url string) (*string, error) {
	if s.assets == nil {
		return nil, nil
	}
	png, err := RenderQRCode(url)
	if err != nil {
		return nil, errs.NewInternalErrorWithCause("failed to generate QR code", err)
	}
	key := fmt.Sprintf("linkme/qrcodes/qr_%s_%d.png", userID, s.now().UnixMilli())
	stored, err := s.assets.Put(ctx, key, "image/png", png)
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// discardAssets deletes assets concurrently. Failures are logged, never returned.
func (s *ProfileRegistry) discardAssets(ctx context.Context, urls ...*string) {
	if s.assets == nil {
		return
	}
	var g errgroup.Group
	for _, u := range urls {
		if u == nil || *u == "" {
			continue
		}
		url := *u
		g.Go(func() error {
			if err := s.assets.Delete(context.WithoutCancel(ctx), url); err != nil {
				s.logger.Warn().Err(err).Str("url", url).Msg("failed to delete asset")
			}
			return nil
		})
	}
	_ = g.Wait()
}

// GetOwned returns a profile with all links if userID owns it.
func (s *ProfileRegistry) GetOwned(ctx context.Context, id, userID uuid.UUID) (*models.Profile, error) {
	profile, err := s.db.ProfileRepo().FindOwned(ctx, id, userID)
	if err != nil {
		return nil, notFoundOr(err, "profile", "find")
	}
	return profile, nil
}

// GetByOwner lists the user's profiles with their links.
func (s *ProfileRegistry) GetByOwner(ctx context.Context, userID uuid.UUID) ([]models.Profile, error) {
	profiles, err := s.db.ProfileRepo().FindByOwner(ctx, userID)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "profiles", err)
	}
	if profiles == nil {
		profiles = []models.Profile{}
	}
	return profiles, nil
}

// GetBySlug is the public lookup: active profiles only, visible links only.
func (s *ProfileRegistry) GetBySlug(ctx context.Context, slug string) (*models.Profile, error) {
	profile, err := s.db.ProfileRepo().FindActiveBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		return nil, notFoundOr(err, "profile", "find")
	}
	return profile, nil
}

// Update applies a partial update. Renaming reallocates the slug and reissues the QR code.
func (s *ProfileRegistry) Update(ctx context.Context, id, userID uuid.UUID, patch ProfilePatch) (*models.Profile, error) {
	current, err := s.GetOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	fields, err := patch.fields()
	if err != nil {
		return nil, err
	}

	renamed := patch.Name.Set && *patch.Name.Value != current.Name
	var newQR *string
	for attempt := 0; attempt < 2; attempt++ {
		newQR = nil
		for _, k := range []string{"slug", "profile_url", "qr_code_url"} {
			delete(fields, k)
		}
		if renamed {
			slug, err := s.slugs.Allocate(ctx, s.db.ProfileRepo(), *patch.Name.Value, &current.ID)
			if err != nil {
				return nil, err
			}
			if slug != current.Slug {
				url := s.slugs.ProfileURL(slug)
				fields["slug"] = slug
				fields["profile_url"] = url
				if newQR, err = s.storeQR(ctx, userID, url); err != nil {
					return nil, err
				}
				if newQR != nil {
					fields["qr_code_url"] = *newQR
				}
			}
		}
		if len(fields) == 0 {
			return current, nil
		}

		err = s.db.ProfileRepo().UpdateFields(ctx, current.ID, fields)
		if err == nil {
			break
		}
		s.discardAssets(ctx, newQR)
		if !errs.IsUniqueViolation(err, "slug") || attempt == 1 {
			return nil, errs.NewDatabaseError("update", "profile", err)
		}
	}

	s.discardAssets(ctx, supersededAssets(current, fields)...)
	return s.db.ProfileRepo().FindByID(ctx, current.ID)
}

// supersededAssets lists asset URLs on old that fields replaces or clears.
func supersededAssets(old *models.Profile, fields map[string]any) []*string {
	var out []*string
	check := func(column string, prev *string) {
		next, ok := fields[column]
		if !ok || prev == nil {
			return
		}
		if s, isStr := next.(string); isStr && s == *prev {
			return
		}
		out = append(out, prev)
	}
	check("qr_code_url", old.QRCodeURL)
	check("avatar_url", old.AvatarURL)
	check("custom_design_url", old.CustomDesignURL)
	check("ai_background_url", old.AIBackgroundURL)
	return out
}

func (p ProfilePatch) fields() (map[string]any, error) {
	fields := make(map[string]any)

	if p.Name.Set {
		if p.Name.Value == nil {
			return nil, errs.NewMissingRequiredFieldError("name")
		}
		name := strings.TrimSpace(*p.Name.Value)
		if n := len([]rune(name)); n < 2 || n > 100 {
			return nil, errs.NewInvalidFieldError("name", "must be between 2 and 100 characters")
		}
		*p.Name.Value = name
		fields["name"] = name
	}

	nullable := []struct {
		column string
		field  string
		value  Optional[string]
		max    int
	}{
		{"title", "title", p.Title, 150},
		{"bio", "bio", p.Bio, 500},
		{"avatar_url", "avatarUrl", p.AvatarURL, 0},
		{"ai_background_url", "aiBackground", p.AIBackgroundURL, 0},
		{"ai_prompt", "aiPrompt", p.AIPrompt, 500},
		{"custom_design_url", "customDesignUrl", p.CustomDesignURL, 0},
	}
	for _, f := range nullable {
		if !f.value.Set {
			continue
		}
		v := trimmedOrNil(f.value.Value)
		if v != nil && f.max > 0 && len([]rune(*v)) > f.max {
			return nil, errs.NewInvalidFieldError(f.field, fmt.Sprintf("must be at most %d characters", f.max))
		}
		if v == nil {
			fields[f.column] = nil
		} else {
			fields[f.column] = *v
		}
	}

	if p.Color.Set {
		if p.Color.Value == nil || !colorPattern.MatchString(*p.Color.Value) {
			return nil, errs.NewInvalidFieldError("color", "must be a hex color such as #0066FF")
		}
		fields["color"] = *p.Color.Value
	}
	if p.DesignMode.Set {
		if p.DesignMode.Value == nil || !p.DesignMode.Value.Valid() {
			return nil, errs.NewInvalidFieldError("designMode", "must be one of [manual ai custom template]")
		}
		fields["design_mode"] = string(*p.DesignMode.Value)
	}
	if p.Template.Set {
		if p.Template.Value == nil || strings.TrimSpace(*p.Template.Value) == "" {
			return nil, errs.NewInvalidFieldError("template", "must not be empty")
		}
		fields["template"] = strings.TrimSpace(*p.Template.Value)
	}
	return fields, nil
}

// ToggleActive flips the active flag and returns the updated profile.
func (s *ProfileRegistry) ToggleActive(ctx context.Context, id, userID uuid.UUID) (*models.Profile, error) {
	current, err := s.GetOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := s.db.ProfileRepo().UpdateFields(ctx, id, map[string]any{"is_active": !current.IsActive}); err != nil {
		return nil, errs.NewDatabaseError("update", "profile", err)
	}
	current.IsActive = !current.IsActive
	return current, nil
}

// RegenerateQR reissues the QR code for the profile's current URL.
func (s *ProfileRegistry) RegenerateQR(ctx context.Context, id, userID uuid.UUID) (*models.Profile, error) {
	current, err := s.GetOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if s.assets == nil {
		return nil, errs.NewUpstreamError("asset storage", errors.New("asset storage is not configured"))
	}
	qr, err := s.storeQR(ctx, userID, current.ProfileURL)
	if err != nil {
		return nil, err
	}
	return s.replaceAsset(ctx, current, map[string]any{"qr_code_url": *qr}, qr)
}

// UploadAvatar stores a new avatar and drops the previous one.
func (s *ProfileRegistry) UploadAvatar(ctx context.Context, id, userID uuid.UUID, upload Upload) (*models.Profile, error) {
	return s.uploadImage(ctx, id, userID, upload, "avatars", func(url string) map[string]any {
		return map[string]any{"avatar_url": url}
	})
}

// UploadCustomDesign stores a card design and switches the profile to custom mode.
func (s *ProfileRegistry) UploadCustomDesign(ctx context.Context, id, userID uuid.UUID, upload Upload) (*models.Profile, error) {
	return s.uploadImage(ctx, id, userID, upload, "custom-designs", func(url string) map[string]any {
		return map[string]any{"custom_design_url": url, "design_mode": string(models.DesignModeCustom)}
	})
}

func (s *ProfileRegistry) uploadImage(ctx context.Context, id, userID uuid.UUID, upload Upload, folder string, fields func(url string) map[string]any) (*models.Profile, error) {
	current, err := s.GetOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(upload.ContentType, "image/") {
		return nil, errs.NewUnsupportedMediaTypeError(upload.ContentType, []string{"image/png", "image/jpeg", "image/webp"})
	}
	if len(upload.Data) == 0 {
		return nil, errs.NewMissingRequiredFieldError("file")
	}
	if s.assets == nil {
		return nil, errs.NewUpstreamError("asset storage", errors.New("asset storage is not configured"))
	}

	key := fmt.Sprintf("linkme/%s/%s_%d%s", folder, current.ID, s.now().UnixMilli(), imageExtension(upload))
	url, err := s.assets.Put(ctx, key, upload.ContentType, upload.Data)
	if err != nil {
		return nil, err
	}
	return s.replaceAsset(ctx, current, fields(url), &url)
}

// replaceAsset commits fields and only then deletes whatever they superseded.
// If the commit fails the freshly stored asset is removed instead.
func (s *ProfileRegistry) replaceAsset(ctx context.Context, current *models.Profile, fields map[string]any, fresh *string) (*models.Profile, error) {
	if err := s.db.ProfileRepo().UpdateFields(ctx, current.ID, fields); err != nil {
		s.discardAssets(ctx, fresh)
		return nil, errs.NewDatabaseError("update", "profile", err)
	}
	s.discardAssets(ctx, supersededAssets(current, fields)...)
	return s.db.ProfileRepo().FindByID(ctx, current.ID)
}

// RemoveCustomDesign clears the custom design and returns the profile to manual mode.
func (s *ProfileRegistry) RemoveCustomDesign(ctx context.Context, id, userID uuid.UUID) (*models.Profile, error) {
	current, err := s.GetOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	fields := map[string]any{
		"custom_design_url": nil,
		"design_mode":       string(models.DesignModeManual),
	}
	if err := s.db.ProfileRepo().UpdateFields(ctx, id, fields); err != nil {
		return nil, errs.NewDatabaseError("update", "profile", err)
	}
	s.discardAssets(ctx, current.CustomDesignURL)
	return s.db.ProfileRepo().FindByID(ctx, id)
}

func imageExtension(u Upload) string {
	switch u.ContentType {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	}
	if i := strings.LastIndex(u.Filename, "."); i >= 0 && len(u.Filename)-i <= 5 {
		return strings.ToLower(u.Filename[i:])
	}
	return ""
}

// Delete removes a profile that has never been ordered. Profiles with orders
// must be deactivated instead.
func (s *ProfileRegistry) Delete(ctx context.Context, id, userID uuid.UUID) error {
	current, err := s.GetOwned(ctx, id, userID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(ctx, func(tx database.Database) error {
		orderCount, err := tx.OrderRepo().CountByProfile(ctx, id)
		if err != nil {
			return err
		}
		if orderCount > 0 {
			return errs.NewBusinessRuleError("Cannot delete profile with existing orders. Cards have already been distributed; deactivate the profile instead.").
				WithExtra("hasOrders", true).
				WithExtra("orderCount", orderCount)
		}
		return tx.ProfileRepo().Delete(ctx, id)
	})
	if err != nil {
		return notFoundOr(err, "profile", "delete")
	}

	s.discardAssets(ctx, current.AssetURLs()...)
	s.logger.Info().Str("profileId", id.String()).Msg("profile deleted")
	return nil
}

// Summary totals the user's profiles for the dashboard.
func (s *ProfileRegistry) Summary(ctx context.Context, userID uuid.UUID) (*DashboardSummary, error) {
	profiles, err := s.db.ProfileRepo().FindByOwner(ctx, userID)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "profiles", err)
	}
	summary := &DashboardSummary{TotalProfiles: int64(len(profiles))}
	for _, p := range profiles {
		summary.TotalViews += p.ViewCount
		if p.IsActive {
			summary.ActiveProfiles++
		}
		for _, l := range p.SocialLinks {
			summary.TotalClicks += l.ClickCount
		}
	}
	return summary, nil
}

// RecentActivity lists the user's profiles, last edited first.
func (s *ProfileRegistry) RecentActivity(ctx context.Context, userID uuid.UUID, limit int) (*RecentActivity, error) {
	profiles, err := s.db.ProfileRepo().RecentlyUpdated(ctx, userID, activityLimit(limit))
	if err != nil {
		return nil, errs.NewDatabaseError("find", "profiles", err)
	}
	out := &RecentActivity{RecentUpdates: make([]RecentUpdate, 0, len(profiles))}
	for _, p := range profiles {
		out.RecentUpdates = append(out.RecentUpdates, RecentUpdate{
			ID:          p.ID,
			Name:        p.Name,
			ProfileType: p.ProfileType,
			UpdatedAt:   p.UpdatedAt,
			ViewCount:   p.ViewCount,
			IsActive:    p.IsActive,
		})
	}
	return out, nil
}

// notFoundOr maps gorm.ErrRecordNotFound to a 404 and anything else to a database error.
func notFoundOr(err error, entity, operation string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NewNotFound(entity)
	}
	return errs.NewDatabaseError(operation, entity, err)
}
