package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/linkme-io/linkme-backend/database"
	"github.com/linkme-io/linkme-backend/errs"
	"github.com/linkme-io/linkme-backend/models"
)

const (
	defaultAnalyticsDays = 30
	maxAnalyticsDays     = 365
	topGroupLimit        = 10
	recentViewsLimit     = 20
	growthWindowDays     = 30
	defaultActivityLimit = 10
	maxActivityLimit     = 50
	dayLayout            = "2006-01-02"
)

// activityLimit clamps a requested feed length; zero or less means the default.
func activityLimit(n int) int {
	switch {
	case n <= 0:
		return defaultActivityLimit
	case n > maxActivityLimit:
		return maxActivityLimit
	}
	return n
}

// SourceShare is one row of a views-by-source breakdown.
type SourceShare struct {
	Source     string  `json:"source"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

// DeviceShare is one row of a views-by-device breakdown.
type DeviceShare struct {
	Device     string  `json:"device"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

// DayCount is one bucket of a daily series.
type DayCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type SourceBreakdown struct {
	Total     int64         `json:"total"`
	Breakdown []SourceShare `json:"breakdown"`
}

type LocationBreakdown struct {
	Countries []database.LabelCount `json:"countries"`
	Cities    []database.CityCount  `json:"cities"`
}

type DeviceBreakdown struct {
	TotalViews int64                 `json:"totalViews"`
	Devices    []DeviceShare         `json:"devices"`
	Browsers   []database.LabelCount `json:"browsers"`
}

type ViewSeries struct {
	Period string     `json:"period"`
	Views  []DayCount `json:"views"`
}

type RecentViews struct {
	Views  []models.ProfileView `json:"views"`
	Total  int64                `json:"total"`
	Limit  int                  `json:"limit"`
	Offset int                  `json:"offset"`
}

// ProfileAnalytics is the full analytics view of one profile.
type ProfileAnalytics struct {
	ProfileID      uuid.UUID             `json:"profileId"`
	Period         string                `json:"period"`
	TotalViews     int64                 `json:"totalViews"`
	ViewsBySource  []database.LabelCount `json:"viewsBySource"`
	ViewsByDevice  []database.LabelCount `json:"viewsByDevice"`
	ViewsByBrowser []database.LabelCount `json:"viewsByBrowser"`
	ViewsByCountry []database.LabelCount `json:"viewsByCountry"`
	ViewsByCity    []database.CityCount  `json:"viewsByCity"`
	ViewsOverTime  []DayCount            `json:"viewsOverTime"`
	RecentViews    []models.ProfileView  `json:"recentViews"`
	SocialLinks    []models.SocialLink   `json:"socialLinks"`
	TotalClicks    int64                 `json:"totalClicks"`
}

// ProfileRollup is one profile's line in the user rollup.
type ProfileRollup struct {
	ID            uuid.UUID          `json:"id"`
	Name          string             `json:"name"`
	Slug          string             `json:"slug"`
	ProfileType   models.ProfileType `json:"profileType"`
	IsActive      bool               `json:"isActive"`
	ViewCount     int64              `json:"viewCount"`
	ViewsInPeriod int64              `json:"viewsInPeriod"`
	ClickCount    int64              `json:"clickCount"`
}

// UserAnalytics aggregates every profile a user owns.
type UserAnalytics struct {
	Period        string                `json:"period"`
	TotalProfiles int                   `json:"totalProfiles"`
	TotalViews    int64                 `json:"totalViews"`
	ViewsInPeriod int64                 `json:"viewsInPeriod"`
	TotalClicks   int64                 `json:"totalClicks"`
	ViewsBySource []database.LabelCount `json:"viewsBySource"`
	Profiles      []ProfileRollup       `json:"profiles"`
}

// TopProfile is a compact profile entry on the admin dashboard.
type TopProfile struct {
	ID          uuid.UUID          `json:"id"`
	Name        string             `json:"name"`
	Slug        string             `json:"slug"`
	ProfileType models.ProfileType `json:"profileType"`
	ViewCount   int64              `json:"viewCount"`
}

// AdminDashboard holds platform-wide totals.
type AdminDashboard struct {
	TotalUsers        int64                 `json:"totalUsers"`
	NewUsersToday     int64                 `json:"newUsersToday"`
	UserGrowth        float64               `json:"userGrowth"`
	TotalProfiles     int64                 `json:"totalProfiles"`
	ActiveProfiles    int64                 `json:"activeProfiles"`
	ProfilesByType    []database.LabelCount `json:"profilesByType"`
	TotalViews        int64                 `json:"totalViews"`
	ViewsToday        int64                 `json:"viewsToday"`
	ViewsLast7Days    []DayCount            `json:"viewsLast7Days"`
	ViewsBySourceWeek []database.LabelCount `json:"viewsBySourceLast7Days"`
	TotalClicks       int64                 `json:"totalClicks"`
	TopProfiles       []TopProfile          `json:"topProfiles"`
}

type RecentView struct {
	ID            uuid.UUID         `json:"id"`
	ViewedAt      time.Time         `json:"viewedAt"`
	ViewerCountry *string           `json:"viewerCountry"`
	ViewerCity    *string           `json:"viewerCity"`
	ViewSource    models.ViewSource `json:"viewSource"`
	DeviceType    string            `json:"deviceType"`
	ProfileName   string            `json:"profileName"`
	ProfileSlug   string            `json:"profileSlug"`
}

type RecentUser struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type RecentProfile struct {
	ID          uuid.UUID          `json:"id"`
	Name        string             `json:"name"`
	ProfileType models.ProfileType `json:"profileType"`
	CreatedAt   time.Time          `json:"createdAt"`
	OwnerName   string             `json:"ownerName"`
	OwnerEmail  string             `json:"ownerEmail"`
}

// AdminActivity is the platform-wide activity feed.
type AdminActivity struct {
	RecentViews    []RecentView    `json:"recentViews"`
	RecentUsers    []RecentUser    `json:"recentUsers"`
	RecentProfiles []RecentProfile `json:"recentProfiles"`
}

// Analytics computes read-side statistics on demand from view and link rows.
type Analytics struct {
	db     database.Database
	logger zerolog.Logger
	now    func() time.Time
}

func NewAnalytics(db database.Database) *Analytics {
	return &Analytics{
		db:     db,
		logger: log.With().Str("service", "analytics").Logger(),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Window is the trailing range [now-Days, now]. Counts and breakdowns use
// Since; the daily series uses whole UTC days ending today, starting at
// SeriesStart.
type Window struct {
	Days        int
	Since       time.Time
	SeriesStart time.Time
}

// window resolves a days parameter. Zero means the default of 30; anything
// outside 1..365 is rejected.
func (a *Analytics) window(days int) (Window, error) {
	if days == 0 {
		days = defaultAnalyticsDays
	}
	if days < 1 || days > maxAnalyticsDays {
		return Window{}, errs.NewInvalidFieldError("days", "must be between 1 and 365")
	}
	now := a.now()
	return Window{
		Days:        days,
		Since:       now.AddDate(0, 0, -days),
		SeriesStart: startOfDay(now).AddDate(0, 0, -(days - 1)),
	}, nil
}

func (w Window) period() string {
	return periodLabel(w.Days)
}

func periodLabel(days int) string {
	if days == 1 {
		return "Last 1 day"
	}
	return fmt.Sprintf("Last %d days", days)
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// dailySeries buckets timestamps into days consecutive UTC days starting at
// start. Days without views are present with a zero count.
func dailySeries(start time.Time, days int, stamps []time.Time) []DayCount {
	series := make([]DayCount, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		d := start.AddDate(0, 0, i).Format(dayLayout)
		series[i] = DayCount{Date: d}
		index[d] = i
	}
	for _, ts := range stamps {
		if i, ok := index[ts.UTC().Format(dayLayout)]; ok {
			series[i].Count++
		}
	}
	return series
}

func percentage(count, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*100*100) / 100
}

// growth is the percent change from previous to current, 0 when previous is 0.
func growth(current, previous int64) float64 {
	if previous == 0 {
		return 0
	}
	return math.Round(float64(current-previous)/float64(previous)*100*100) / 100
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (a *Analytics) ownedProfile(ctx context.Context, userID, profileID uuid.UUID) (*models.Profile, error) {
	profile, err := a.db.ProfileRepo().FindOwned(ctx, profileID, userID)
	if err != nil {
		return nil, notFoundOr(err, "profile", "find")
	}
	return profile, nil
}

// ProfileSummary runs every breakdown for one owned profile concurrently.
func (a *Analytics) ProfileSummary(ctx context.Context, userID, profileID uuid.UUID, days int) (*ProfileAnalytics, error) {
	w, err := a.window(days)
	if err != nil {
		return nil, err
	}
	profile, err := a.ownedProfile(ctx, userID, profileID)
	if err != nil {
		return nil, err
	}

	views := a.db.ProfileViewRepo()
	f := database.ViewFilter{ProfileIDs: []uuid.UUID{profileID}, Since: w.Since}
	out := &ProfileAnalytics{ProfileID: profileID, Period: w.period()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.TotalViews, err = views.Count(gctx, f)
		return err
	})
	g.Go(func() (err error) {
		out.ViewsBySource, err = views.CountBy(gctx, f, database.ViewColumnSource, 0)
		return err
	})
	g.Go(func() (err error) {
		out.ViewsByDevice, err = views.CountBy(gctx, f, database.ViewColumnDevice, 0)
		return err
	})
	g.Go(func() (err error) {
		out.ViewsByBrowser, err = views.CountBy(gctx, f, database.ViewColumnBrowser, topGroupLimit)
		return err
	})
	g.Go(func() (err error) {
		out.ViewsByCountry, err = views.CountBy(gctx, f, database.ViewColumnCountry, topGroupLimit)
		return err
	})
	g.Go(func() (err error) {
		out.ViewsByCity, err = views.CountByCity(gctx, f, topGroupLimit)
		return err
	})
	g.Go(func() error {
		stamps, err := views.Timestamps(gctx, f)
		if err != nil {
			return err
		}
		out.ViewsOverTime = dailySeries(w.SeriesStart, w.Days, stamps)
		return nil
	})
	g.Go(func() (err error) {
		out.RecentViews, _, err = views.Recent(gctx, database.ViewFilter{ProfileIDs: f.ProfileIDs}, database.Page{Limit: recentViewsLimit})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, errs.NewDatabaseError("aggregate", "profile analytics", err)
	}

	links := append([]models.SocialLink(nil), profile.SocialLinks...)
	sort.SliceStable(links, func(i, j int) bool { return links[i].ClickCount > links[j].ClickCount })
	for _, l := range links {
		out.TotalClicks += l.ClickCount
	}
	out.SocialLinks = emptyIfNil(links)
	out.ViewsBySource = emptyIfNil(out.ViewsBySource)
	out.ViewsByDevice = emptyIfNil(out.ViewsByDevice)
	out.ViewsByBrowser = emptyIfNil(out.ViewsByBrowser)
	out.ViewsByCountry = emptyIfNil(out.ViewsByCountry)
	out.ViewsByCity = emptyIfNil(out.ViewsByCity)
	out.RecentViews = emptyIfNil(out.RecentViews)
	return out, nil
}

// ViewsBySource counts views per source in the window with their share of the total.
func (a *Analytics) ViewsBySource(ctx context.Context, userID, profileID uuid.UUID, days int) (*SourceBreakdown, error) {
	w, err := a.window(days)
	if err != nil {
		return nil, err
	}
	if _, err := a.ownedProfile(ctx, userID, profileID); err != nil {
		return nil, err
	}
	rows, err := a.db.ProfileViewRepo().CountBy(ctx, database.ViewFilter{ProfileIDs: []uuid.UUID{profileID}, Since: w.Since}, database.ViewColumnSource, 0)
	if err != nil {
		return nil, errs.NewDatabaseError("aggregate", "profile views", err)
	}

	out := &SourceBreakdown{Breakdown: make([]SourceShare, 0, len(rows))}
	for _, r := range rows {
		out.Total += r.Count
	}
	for _, r := range rows {
		out.Breakdown = append(out.Breakdown, SourceShare{Source: r.Label, Count: r.Count, Percentage: percentage(r.Count, out.Total)})
	}
	return out, nil
}

// ViewsByLocation returns the top countries and (country, city) pairs.
func (a *Analytics) ViewsByLocation(ctx context.Context, userID, profileID uuid.UUID, days, limit int) (*LocationBreakdown, error) {
	w, err := a.window(days)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = topGroupLimit
	}
	if _, err := a.ownedProfile(ctx, userID, profileID); err != nil {
		return nil, err
	}

	f := database.ViewFilter{ProfileIDs: []uuid.UUID{profileID}, Since: w.Since}
	out := &LocationBreakdown{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Countries, err = a.db.ProfileViewRepo().CountBy(gctx, f, database.ViewColumnCountry, limit)
		return err
	})
	g.Go(func() (err error) {
		out.Cities, err = a.db.ProfileViewRepo().CountByCity(gctx, f, limit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, errs.NewDatabaseError("aggregate", "profile views", err)
	}
	out.Countries = emptyIfNil(out.Countries)
	out.Cities = emptyIfNil(out.Cities)
	return out, nil
}

// ViewsByDevice returns device shares and the top browsers.
func (a *Analytics) ViewsByDevice(ctx context.Context, userID, profileID uuid.UUID, days int) (*DeviceBreakdown, error) {
	w, err := a.window(days)
	if err != nil {
		return nil, err
	}
	if _, err := a.ownedProfile(ctx, userID, profileID); err != nil {
		return nil, err
	}

	f := database.ViewFilter{ProfileIDs: []uuid.UUID{profileID}, Since: w.Since}
	var devices []database.LabelCount
	out := &DeviceBreakdown{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		devices, err = a.db.ProfileViewRepo().CountBy(gctx, f, database.ViewColumnDevice, 0)
		return err
	})
	g.Go(func() (err error) {
		out.Browsers, err = a.db.ProfileViewRepo().CountBy(gctx, f, database.ViewColumnBrowser, topGroupLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, errs.NewDatabaseError("aggregate", "profile views", err)
	}

	for _, d := range devices {
		out.TotalViews += d.Count
	}
	out.Devices = make([]DeviceShare, 0, len(devices))
	for _, d := range devices {
		out.Devices = append(out.Devices, DeviceShare{Device: d.Label, Count: d.Count, Percentage: percentage(d.Count, out.TotalViews)})
	}
	out.Browsers = emptyIfNil(out.Browsers)
	return out, nil
}

// ViewsOverTime returns one entry per UTC day in the window, oldest first.
func (a *Analytics) ViewsOverTime(ctx context.Context, userID, profileID uuid.UUID, days int) (*ViewSeries, error) {
	w, err := a.window(days)
	if err != nil {
		return nil, err
	}
	if _, err := a.ownedProfile(ctx, userID, profileID); err != nil {
		return nil, err
	}
	stamps, err := a.db.ProfileViewRepo().Timestamps(ctx, database.ViewFilter{ProfileIDs: []uuid.UUID{profileID}, Since: w.Since})
	if err != nil {
		return nil, errs.NewDatabaseError("aggregate", "profile views", err)
	}
	return &ViewSeries{Period: w.period(), Views: dailySeries(w.SeriesStart, w.Days, stamps)}, nil
}

// RecentViews pages through a profile's views, newest first.
func (a *Analytics) RecentViews(ctx context.Context, userID, profileID uuid.UUID, page database.Page) (*RecentViews, error) {
	if _, err := a.ownedProfile(ctx, userID, profileID); err != nil {
		return nil, err
	}
	views, total, err := a.db.ProfileViewRepo().Recent(ctx, database.ViewFilter{ProfileIDs: []uuid.UUID{profileID}}, page)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "profile views", err)
	}
	limit := page.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return &RecentViews{Views: emptyIfNil(views), Total: total, Limit: limit, Offset: max(page.Offset, 0)}, nil
}

// UserAnalytics rolls up every profile the user owns. Per-profile window
// counts run concurrently.
func (a *Analytics) UserAnalytics(ctx context.Context, userID uuid.UUID, days int) (*UserAnalytics, error) {
	w, err := a.window(days)
	if err != nil {
		return nil, err
	}
	profiles, err := a.db.ProfileRepo().FindByOwner(ctx, userID)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "profiles", err)
	}

	ids := make([]uuid.UUID, len(profiles))
	rollups := make([]ProfileRollup, len(profiles))
	out := &UserAnalytics{Period: w.period(), TotalProfiles: len(profiles)}
	for i, p := range profiles {
		ids[i] = p.ID
		rollups[i] = ProfileRollup{
			ID:          p.ID,
			Name:        p.Name,
			Slug:        p.Slug,
			ProfileType: p.ProfileType,
			IsActive:    p.IsActive,
			ViewCount:   p.ViewCount,
		}
		for _, l := range p.SocialLinks {
			rollups[i].ClickCount += l.ClickCount
		}
		out.TotalViews += p.ViewCount
		out.TotalClicks += rollups[i].ClickCount
	}

	views := a.db.ProfileViewRepo()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	g.Go(func() (err error) {
		out.ViewsInPeriod, err = views.Count(gctx, database.ViewFilter{ProfileIDs: ids, Since: w.Since})
		return err
	})
	g.Go(func() (err error) {
		out.ViewsBySource, err = views.CountBy(gctx, database.ViewFilter{ProfileIDs: ids, Since: w.Since}, database.ViewColumnSource, 0)
		return err
	})
	for i := range rollups {
		g.Go(func() (err error) {
			rollups[i].ViewsInPeriod, err = views.Count(gctx, database.ViewFilter{ProfileIDs: []uuid.UUID{rollups[i].ID}, Since: w.Since})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errs.NewDatabaseError("aggregate", "user analytics", err)
	}

	out.ViewsBySource = emptyIfNil(out.ViewsBySource)
	out.Profiles = rollups
	return out, nil
}

// AdminDashboard computes platform-wide statistics.
func (a *Analytics) AdminDashboard(ctx context.Context) (*AdminDashboard, error) {
	now := a.now()
	today := startOfDay(now)
	weekStart := today.AddDate(0, 0, -6)
	growthStart := now.AddDate(0, 0, -growthWindowDays)
	previousStart := now.AddDate(0, 0, -2*growthWindowDays)

	users := a.db.UserRepo()
	profiles := a.db.ProfileRepo()
	views := a.db.ProfileViewRepo()
	out := &AdminDashboard{}
	var currentSignups, previousSignups int64
	var top []models.Profile

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	g.Go(func() (err error) {
		out.TotalUsers, err = users.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.NewUsersToday, err = users.CountCreatedBetween(gctx, today, now)
		return err
	})
	g.Go(func() (err error) {
		currentSignups, err = users.CountCreatedBetween(gctx, growthStart, now)
		return err
	})
	g.Go(func() (err error) {
		previousSignups, err = users.CountCreatedBetween(gctx, previousStart, growthStart)
		return err
	})
	g.Go(func() (err error) {
		out.TotalProfiles, err = profiles.Count(gctx, database.ProfileFilter{})
		return err
	})
	g.Go(func() (err error) {
		out.ActiveProfiles, err = profiles.Count(gctx, database.ProfileFilter{ActiveOnly: true})
		return err
	})
	g.Go(func() (err error) {
		out.ProfilesByType, err = profiles.CountByType(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.TotalViews, err = profiles.SumViewCount(gctx, database.ProfileFilter{})
		return err
	})
	g.Go(func() (err error) {
		out.ViewsToday, err = views.Count(gctx, database.ViewFilter{Since: today})
		return err
	})
	g.Go(func() error {
		stamps, err := views.Timestamps(gctx, database.ViewFilter{Since: weekStart})
		if err != nil {
			return err
		}
		out.ViewsLast7Days = dailySeries(weekStart, 7, stamps)
		return nil
	})
	g.Go(func() (err error) {
		out.ViewsBySourceWeek, err = views.CountBy(gctx, database.ViewFilter{Since: now.AddDate(0, 0, -7)}, database.ViewColumnSource, 0)
		return err
	})
	g.Go(func() (err error) {
		out.TotalClicks, err = a.db.SocialLinkRepo().SumClicks(gctx, nil)
		return err
	})
	g.Go(func() (err error) {
		top, err = profiles.TopByViews(gctx, 5)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, errs.NewDatabaseError("aggregate", "dashboard", err)
	}

	out.UserGrowth = growth(currentSignups, previousSignups)
	out.ProfilesByType = emptyIfNil(out.ProfilesByType)
	out.ViewsBySourceWeek = emptyIfNil(out.ViewsBySourceWeek)
	out.TopProfiles = make([]TopProfile, 0, len(top))
	for _, p := range top {
		out.TopProfiles = append(out.TopProfiles, TopProfile{ID: p.ID, Name: p.Name, Slug: p.Slug, ProfileType: p.ProfileType, ViewCount: p.ViewCount})
	}
	return out, nil
}

// AdminRecentActivity lists the newest views, signups and profiles, up to
// limit of each.
func (a *Analytics) AdminRecentActivity(ctx context.Context, limit int) (*AdminActivity, error) {
	limit = activityLimit(limit)
	var (
		views    []models.ProfileView
		users    []models.User
		profiles []models.Profile
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		views, err = a.db.ProfileViewRepo().Latest(gctx, limit)
		return err
	})
	g.Go(func() (err error) {
		users, err = a.db.UserRepo().Newest(gctx, limit)
		return err
	})
	g.Go(func() (err error) {
		profiles, err = a.db.ProfileRepo().Newest(gctx, limit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, errs.NewDatabaseError("find", "recent activity", err)
	}

	out := &AdminActivity{
		RecentViews:    make([]RecentView, 0, len(views)),
		RecentUsers:    make([]RecentUser, 0, len(users)),
		RecentProfiles: make([]RecentProfile, 0, len(profiles)),
	}
	for _, v := range views {
		rv := RecentView{
			ID:            v.ID,
			ViewedAt:      v.ViewedAt,
			ViewerCountry: v.ViewerCountry,
			ViewerCity:    v.ViewerCity,
			ViewSource:    v.ViewSource,
			DeviceType:    v.DeviceType,
		}
		if v.Profile != nil {
			rv.ProfileName, rv.ProfileSlug = v.Profile.Name, v.Profile.Slug
		}
		out.RecentViews = append(out.RecentViews, rv)
	}
	for _, u := range users {
		out.RecentUsers = append(out.RecentUsers, RecentUser{
			ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email, CreatedAt: u.CreatedAt,
		})
	}
	for _, p := range profiles {
		rp := RecentProfile{ID: p.ID, Name: p.Name, ProfileType: p.ProfileType, CreatedAt: p.CreatedAt}
		if p.User != nil {
			rp.OwnerName = strings.TrimSpace(p.User.FirstName + " " + p.User.LastName)
			rp.OwnerEmail = p.User.Email
		}
		out.RecentProfiles = append(out.RecentProfiles, rp)
	}
	return out, nil
}
