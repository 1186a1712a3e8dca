package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/linkme-io/linkme-backend/database"
	"github.com/linkme-io/linkme-backend/errs"
	"github.com/linkme-io/linkme-backend/models"
)

const defaultRetentionDays = 90

// TrackedView is returned by TrackView.
type TrackedView struct {
	ViewID    uuid.UUID `json:"viewId"`
	ProfileID uuid.UUID `json:"profileId"`
	ViewCount int64     `json:"viewCount"`
}

// TrackedClick is returned by TrackClick.
type TrackedClick struct {
	ClickCount  int64  `json:"clickCount"`
	RedirectURL string `json:"redirectUrl"`
}

// SavedContact is returned by SaveVisitorContact.
type SavedContact struct {
	VisitorID uuid.UUID `json:"visitorId"`
	ProfileID uuid.UUID `json:"profileId"`
}

// ContactInput is what an anonymous visitor leaves on a public profile.
type ContactInput struct {
	Email  string            `json:"email" validate:"required,max=255"`
	Phone  string            `json:"phone" validate:"required,min=7,max=20,phonechars"`
	Source models.ViewSource `json:"source"`
}

// VisitorStats breaks down the contacts captured on one profile.
type VisitorStats struct {
	TotalVisitors int64                 `json:"totalVisitors"`
	BySource      []database.LabelCount `json:"bySource"`
	ByDevice      []database.LabelCount `json:"byDevice"`
	ByCountry     []database.LabelCount `json:"byCountry"`
}

// VisitorPage is one page of captured contacts.
type VisitorPage struct {
	Visitors []models.ProfileVisitor `json:"visitors"`
	Total    int64                   `json:"total"`
	Limit    int                     `json:"limit"`
	Offset   int                     `json:"offset"`
}

// Tracker records anonymous profile traffic: views, link clicks and
// contact captures.
type Tracker struct {
	db     database.Database
	geo    GeoResolver
	logger zerolog.Logger
	now    func() time.Time
}

// NewTracker wires the tracker. geo may be nil, in which case locations are left empty.
func NewTracker(db database.Database, geo GeoResolver) *Tracker {
	return &Tracker{
		db:     db,
		geo:    geo,
		logger: log.With().Str("service", "tracker").Logger(),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// parseSource maps an empty source to direct and rejects anything unknown.
func parseSource(raw models.ViewSource) (models.ViewSource, error) {
	source := models.ViewSource(strings.ToLower(strings.TrimSpace(string(raw))))
	if source == "" {
		return models.ViewSourceDirect, nil
	}
	if !source.Valid() {
		return "", errs.NewInvalidFieldError("source", "must be one of [nfc qr link direct]")
	}
	return source, nil
}

func (t *Tracker) activeProfile(ctx context.Context, slug string) (*models.Profile, error) {
	profile, err := t.db.ProfileRepo().FindActiveBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		return nil, notFoundOr(err, "profile", "find")
	}
	return profile, nil
}

// TrackView appends a view and bumps the profile's counter in one transaction.
func (t *Tracker) TrackView(ctx context.Context, slug string, source models.ViewSource, meta RequestMeta) (*TrackedView, error) {
	src, err := parseSource(source)
	if err != nil {
		return nil, err
	}
	profile, err := t.activeProfile(ctx, slug)
	if err != nil {
		return nil, err
	}

	client := DescribeClient(meta, t.geo, t.logger)
	view := &models.ProfileView{
		ProfileID:     profile.ID,
		ViewerIP:      client.IP,
		ViewerCountry: client.Country,
		ViewerCity:    client.City,
		UserAgent:     client.UserAgent,
		DeviceType:    client.Device,
		Browser:       client.Browser,
		Referrer:      client.Referrer,
		ViewSource:    src,
		ViewedAt:      t.now(),
	}

	var count int64
	err = t.db.Transaction(ctx, func(tx database.Database) error {
		if err := tx.ProfileViewRepo().Add(ctx, view); err != nil {
			return err
		}
		count, err = tx.ProfileRepo().IncrementViewCount(ctx, profile.ID)
		return err
	})
	if err != nil {
		return nil, notFoundOr(err, "profile", "track view")
	}

	t.logger.Debug().Str("profileId", profile.ID.String()).Str("source", string(src)).Str("device", client.Device).Msg("view tracked")
	return &TrackedView{ViewID: view.ID, ProfileID: profile.ID, ViewCount: count}, nil
}

// SaveVisitorContact stores a contact left on an active public profile.
func (t *Tracker) SaveVisitorContact(ctx context.Context, slug string, in ContactInput, meta RequestMeta) (*SavedContact, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if !emailPattern.MatchString(in.Email) {
		return nil, errs.NewInvalidFieldError("email", "must be a valid email address")
	}
	src, err := parseSource(in.Source)
	if err != nil {
		return nil, err
	}
	profile, err := t.activeProfile(ctx, slug)
	if err != nil {
		return nil, err
	}

	client := DescribeClient(meta, t.geo, t.logger)
	profileID := profile.ID
	visitor := &models.ProfileVisitor{
		ProfileID:     &profileID,
		UserID:        profile.UserID,
		Email:         strings.ToLower(in.Email),
		Phone:         in.Phone,
		ViewerIP:      client.IP,
		ViewerCountry: client.Country,
		ViewerCity:    client.City,
		UserAgent:     client.UserAgent,
		DeviceType:    client.Device,
		Browser:       client.Browser,
		ViewSource:    src,
		SubmittedAt:   t.now(),
	}
	if err := t.db.ProfileVisitorRepo().Add(ctx, visitor); err != nil {
		return nil, errs.NewDatabaseError("create", "visitor contact", err)
	}

	t.logger.Info().Str("profileId", profile.ID.String()).Msg("visitor contact saved")
	return &SavedContact{VisitorID: visitor.ID, ProfileID: profile.ID}, nil
}

// TrackClick counts a click on a link of an active profile and returns where
// the browser should go. Hidden links still count.
func (t *Tracker) TrackClick(ctx context.Context, linkID uuid.UUID) (*TrackedClick, error) {
	link, err := t.db.SocialLinkRepo().FindByID(ctx, linkID)
	if err != nil {
		return nil, notFoundOr(err, "social link", "find")
	}
	if link.Profile == nil || !link.Profile.IsActive {
		return nil, errs.NewNotFound("social link")
	}

	// increment and read-back share a transaction
	var count int64
	err = t.db.Transaction(ctx, func(tx database.Database) error {
		var err error
		count, err = tx.SocialLinkRepo().IncrementClicks(ctx, link.ID)
		return err
	})
	if err != nil {
		return nil, notFoundOr(err, "social link", "track click")
	}
	return &TrackedClick{
		ClickCount:  count,
		RedirectURL: FormatRedirectURL(link.Platform, link.URL),
	}, nil
}

// PurgeViewsOlderThan deletes the profile's view rows older than daysToKeep.
// Visitor contacts and the all-time view counter are untouched. A nil
// daysToKeep keeps 90 days.
func (t *Tracker) PurgeViewsOlderThan(ctx context.Context, userID, profileID uuid.UUID, daysToKeep *int) (int64, error) {
	days := defaultRetentionDays
	if daysToKeep != nil {
		days = *daysToKeep
	}
	if days < 1 {
		return 0, errs.NewInvalidFieldError("daysToKeep", "must be at least 1")
	}
	if _, err := t.db.ProfileRepo().FindOwned(ctx, profileID, userID); err != nil {
		return 0, notFoundOr(err, "profile", "find")
	}

	cutoff := t.now().AddDate(0, 0, -days)
	n, err := t.db.ProfileViewRepo().DeleteOlderThan(ctx, profileID, cutoff)
	if err != nil {
		return 0, errs.NewDatabaseError("delete", "profile views", err)
	}
	t.logger.Info().Str("profileId", profileID.String()).Int("daysToKeep", days).Int64("deleted", n).Msg("old views purged")
	return n, nil
}

// ProfileVisitors pages through the contacts captured on one owned profile.
func (t *Tracker) ProfileVisitors(ctx context.Context, userID, profileID uuid.UUID, page database.Page) (*VisitorPage, error) {
	if _, err := t.db.ProfileRepo().FindOwned(ctx, profileID, userID); err != nil {
		return nil, notFoundOr(err, "profile", "find")
	}
	visitors, total, err := t.db.ProfileVisitorRepo().FindByProfile(ctx, profileID, page)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "visitors", err)
	}
	return newVisitorPage(visitors, total, page, 50, 200), nil
}

// AllVisitors lists every contact captured for the user, including those whose
// profile has since been deleted.
func (t *Tracker) AllVisitors(ctx context.Context, userID uuid.UUID, page database.Page) (*VisitorPage, error) {
	visitors, total, err := t.db.ProfileVisitorRepo().FindByUser(ctx, userID, page)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "visitors", err)
	}
	return newVisitorPage(visitors, total, page, 50, 200), nil
}

func newVisitorPage(visitors []models.ProfileVisitor, total int64, page database.Page, def, max int) *VisitorPage {
	if visitors == nil {
		visitors = []models.ProfileVisitor{}
	}
	limit := page.Limit
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	offset := page.Offset
	if offset < 0 {
		offset = 0
	}
	return &VisitorPage{Visitors: visitors, Total: total, Limit: limit, Offset: offset}
}

// VisitorStats aggregates the contacts captured on one owned profile.
func (t *Tracker) VisitorStats(ctx context.Context, userID, profileID uuid.UUID) (*VisitorStats, error) {
	if _, err := t.db.ProfileRepo().FindOwned(ctx, profileID, userID); err != nil {
		return nil, notFoundOr(err, "profile", "find")
	}
	repo := t.db.ProfileVisitorRepo()
	stats := &VisitorStats{}
	var err error
	if stats.TotalVisitors, err = repo.Count(ctx, profileID); err != nil {
		return nil, errs.NewDatabaseError("count", "visitors", err)
	}
	if stats.BySource, err = repo.CountBy(ctx, profileID, database.ViewColumnSource); err != nil {
		return nil, errs.NewDatabaseError("count", "visitors", err)
	}
	if stats.ByDevice, err = repo.CountBy(ctx, profileID, database.ViewColumnDevice); err != nil {
		return nil, errs.NewDatabaseError("count", "visitors", err)
	}
	if stats.ByCountry, err = repo.CountBy(ctx, profileID, database.ViewColumnCountry); err != nil {
		return nil, errs.NewDatabaseError("count", "visitors", err)
	}
	return stats, nil
}
