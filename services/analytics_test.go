package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/linkme-io/linkme-backend/database"
	"github.com/linkme-io/linkme-backend/models"
)

// seedViews records one view per (source, age in days) pair.
func seedViews(t *testing.T, tracker *Tracker, slug string, now time.Time, views map[models.ViewSource][]int) {
	t.Helper()
	defer func() { tracker.now = func() time.Time { return now } }()
	for source, ages := range views {
		for _, age := range ages {
			tracker.now = func() time.Time { return now.AddDate(0, 0, -age) }
			if _, err := tracker.TrackView(context.Background(), slug, source, RequestMeta{UserAgent: iphoneUA}); err != nil {
				t.Fatalf("seed view: %v", err)
			}
		}
	}
}

func TestViewsBySource(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	profile := f.createProfile(t, f.user.ID, models.ProfileTypePersonal, "Jane Doe")
	now := time.Now().UTC()
	seedViews(t, NewTracker(f.db, nil), profile.Slug, now, map[models.ViewSource][]int{
		models.ViewSourceQR:     {0, 0, 1},
		models.ViewSourceDirect: {0, 2},
		models.ViewSourceNFC:    {45},
	})

	analytics := NewAnalytics(f.db)
	got, err := analytics.ViewsBySource(ctx, f.user.ID, profile.ID, 30)
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, "total", got.Total, int64(5))
	if len(got.Breakdown) != 2 {
		t.Fatalf("breakdown = %+v", got.Breakdown)
	}
	mustEqual(t, "first", got.Breakdown[0], SourceShare{Source: "qr", Count: 3, Percentage: 60})
	mustEqual(t, "second", got.Breakdown[1], SourceShare{Source: "direct", Count: 2, Percentage: 40})

	wide, err := analytics.ViewsBySource(ctx, f.user.ID, profile.ID, 60)
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, "total over 60 days", wide.Total, int64(6))

	_, err = analytics.ViewsBySource(ctx, f.otherUser(t).ID, profile.ID, 30)
	wantStatus(t, err, http.StatusNotFound)
}

func TestViewsOverTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	profile := f.createProfile(t, f.user.ID, models.ProfileTypePersonal, "Jane Doe")
	now := time.Now().UTC()
	seedViews(t, NewTracker(f.db, nil), profile.Slug, now, map[models.ViewSource][]int{
		models.ViewSourceLink: {0, 0, 3, 6, 7, 20},
	})

	analytics := NewAnalytics(f.db)
	analytics.now = func() time.Time { return now }
	series, err := analytics.ViewsOverTime(ctx, f.user.ID, profile.ID, 7)
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, "period", series.Period, "Last 7 days")
	mustEqual(t, "entries", len(series.Views), 7)

	first := startOfDay(now).AddDate(0, 0, -6).Format(dayLayout)
	mustEqual(t, "first day", series.Views[0].Date, first)
	mustEqual(t, "last day", series.Views[6].Date, now.Format(dayLayout))
	var total int64
	for i, d := range series.Views {
		if i > 0 && d.Date <= series.Views[i-1].Date {
			t.Fatalf("dates not ascending at %d: %s after %s", i, d.Date, series.Views[i-1].Date)
		}
		total += d.Count
	}
	mustEqual(t, "views in window", total, int64(4))
	mustEqual(t, "today", series.Views[6].Count, int64(2))
	mustEqual(t, "six days ago", series.Views[0].Count, int64(1))

	one, err := analytics.ViewsOverTime(ctx, f.user.ID, profile.ID, 1)
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, "one day period", one.Period, "Last 1 day")
	mustEqual(t, "one day entries", len(one.Views), 1)

	for _, days := range []int{-1, 366} {
		_, err := analytics.ViewsOverTime(ctx, f.user.ID, profile.ID, days)
		wantStatus(t, err, http.StatusBadRequest)
	}
}

func TestWindowIsTrailingDays(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	analytics := &Analytics{now: func() time.Time { return now }}

	w, err := analytics.window(7)
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, "since", w.Since, time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC))
	mustEqual(t, "series start", w.SeriesStart, time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC))

	def, err := analytics.window(0)
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, "default days", def.Days, 30)
	mustEqual(t, "default since", def.Since, now.AddDate(0, 0, -30))
}

func TestWindowCountsViewsNearTheBoundary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	profile := f.createProfile(t, f.user.ID, models.ProfileTypePersonal, "Jane Doe")
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tracker := NewTracker(f.db, nil)
	for _, age := range []time.Duration{
		6*24*time.Hour + 20*time.Hour, // inside, before the first whole day of the series
		7*24*time.Hour + time.Hour,    // outside
	} {
		at := now.Add(-age)
		tracker.now = func() time.Time { return at }
		if _, err := tracker.TrackView(ctx, profile.Slug, models.ViewSourceQR, RequestMeta{}); err != nil {
			t.Fatal(err)
		}
	}

	analytics := NewAnalytics(f.db)
	analytics.now = func() time.Time { return now }

	bySource, err := analytics.ViewsBySource(ctx, f.user.ID, profile.ID, 7)
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, "by source total", bySource.Total, int64(1))

	summary, err := analytics.ProfileSummary(ctx, f.user.ID, profile.ID, 7)
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, "summary views", summary.TotalViews, int64(1))
	mustEqual(t, "summary series", len(summary.ViewsOverTime), 7)

	user, err := analytics.UserAnalytics(ctx, f.user.ID, 7)
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, "user views in period", user.ViewsInPeriod, int64(1))
}

func TestDailySeriesZeroFills(t *testing.T) {
	start := time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)
	stamps := []time.Time{
		time.Date(2026, 2, 27, 23, 59, 0, 0, time.UTC),
		time.Date(2026, 3, 1, 0, 0, 1, 0, time.UTC),
		time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
	}
	got := dailySeries(start, 3, stamps)
	want := []DayCount{{"2026-02-27", 1}, {"2026-02-28", 0}, {"2026-03-01", 2}}
	if len(got) != len(want) {
		t.Fatalf("got %d entries", len(got))
	}
	for i := range want {
		mustEqual(t, want[i].Date, got[i], want[i])
	}
}

func TestGrowthAndPercentage(t *testing.T) {
	mustEqual(t, "growth from zero", growth(5, 0), 0.0)
	mustEqual(t, "growth doubled", growth(10, 5), 100.0)
	mustEqual(t, "growth shrink", growth(2, 3), -33.33)
	mustEqual(t, "percentage of zero", percentage(1, 0), 0.0)
	mustEqual(t, "percentage third", percentage(1, 3), 33.33)
}

func TestProfileSummaryAndDevices(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	profile := f.createProfile(t, f.user.ID, models.ProfileTypePersonal, "Jane Doe",
		link(models.PlatformGithub, "https://github.com/jane"),
		link(models.PlatformWebsite, "https://jane.example"),
	)
	now := time.Now().UTC()
	tracker := NewTracker(f.db, staticGeo{country: "JO", city: "Amman"})
	for i := 0; i < 2; i++ {
		if _, err := tracker.TrackView(ctx, profile.Slug, models.ViewSourceQR, RequestMeta{ClientIP: "8.8.8.8", UserAgent: iphoneUA}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := tracker.TrackView(ctx, profile.Slug, models.ViewSourceNFC, RequestMeta{
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := tracker.TrackClick(ctx, profile.SocialLinks[1].ID); err != nil {
		t.Fatal(err)
	}

	analytics := NewAnalytics(f.db)
	analytics.now = func() time.Time { return now }

	summary, err := analytics.ProfileSummary(ctx, f.user.ID, profile.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, "period", summary.Period, "Last 30 days")
	mustEqual(t, "views", summary.TotalViews, int64(3))
	mustEqual(t, "series length", len(summary.ViewsOverTime), 30)
	mustEqual(t, "recent", len(summary.RecentViews), 3)
	mustEqual(t, "clicks", summary.TotalClicks, int64(1))
	mustEqual(t, "most clicked first", summary.SocialLinks[0].Platform, models.PlatformWebsite)
	if len(summary.ViewsByCountry) != 1 || summary.ViewsByCountry[0] != (database.LabelCount{Label: "JO", Count: 2}) {
		t.Fatalf("countries = %+v", summary.ViewsByCountry)
	}
	if len(summary.ViewsByCity) != 1 || summary.ViewsByCity[0].City != "Amman" {
		t.Fatalf("cities = %+v", summary.ViewsByCity)
	}

	devices, err := analytics.ViewsByDevice(ctx, f.user.ID, profile.ID, 7)
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, "device total", devices.TotalViews, int64(3))
	mustEqual(t, "top device", devices.Devices[0], DeviceShare{Device: models.DeviceMobile, Count: 2, Percentage: 66.67})

	location, err := analytics.ViewsByLocation(ctx, f.user.ID, profile.ID, 7, 5)
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, "location countries", len(location.Countries), 1)

	recent, err := analytics.RecentViews(ctx, f.user.ID, profile.ID, database.Page{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, "recent total", recent.Total, int64(3))
	mustEqual(t, "recent page", len(recent.Views), 2)
	mustEqual(t, "recent offset", recent.Offset, 1)
}

func TestUserAnalyticsAndAdminDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	personal := f.createProfile(t, f.user.ID, models.ProfileTypePersonal, "Jane Doe",
		link(models.PlatformGithub, "https://github.com/jane"))
	business := f.createProfile(t, f.user.ID, models.ProfileTypeBusiness, "Jane Co")
	now := time.Now().UTC()
	tracker := NewTracker(f.db, nil)
	seedViews(t, tracker, personal.Slug, now, map[models.ViewSource][]int{
		models.ViewSourceQR: {0, 1, 40},
	})
	seedViews(t, tracker, business.Slug, now, map[models.ViewSource][]int{
		models.ViewSourceNFC: {0},
	})
	if _, err := tracker.TrackClick(ctx, personal.SocialLinks[0].ID); err != nil {
		t.Fatal(err)
	}

	analytics := NewAnalytics(f.db)
	analytics.now = func() time.Time { return now }

	user, err := analytics.UserAnalytics(ctx, f.user.ID, 30)
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, "profiles", user.TotalProfiles, 2)
	mustEqual(t, "all-time views", user.TotalViews, int64(4))
	mustEqual(t, "views in period", user.ViewsInPeriod, int64(3))
	mustEqual(t, "clicks", user.TotalClicks, int64(1))
	var personalRollup ProfileRollup
	for _, r := range user.Profiles {
		if r.ID == personal.ID {
			personalRollup = r
		}
	}
	mustEqual(t, "personal in period", personalRollup.ViewsInPeriod, int64(2))
	mustEqual(t, "personal all time", personalRollup.ViewCount, int64(3))

	empty, err := analytics.UserAnalytics(ctx, f.otherUser(t).ID, 30)
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, "empty profiles", len(empty.Profiles), 0)
	mustEqual(t, "empty views", empty.ViewsInPeriod, int64(0))

	dash, err := analytics.AdminDashboard(ctx)
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, "users", dash.TotalUsers, int64(2))
	mustEqual(t, "profiles", dash.TotalProfiles, int64(2))
	mustEqual(t, "active", dash.ActiveProfiles, int64(2))
	mustEqual(t, "views", dash.TotalViews, int64(4))
	mustEqual(t, "views today", dash.ViewsToday, int64(2))
	mustEqual(t, "week series", len(dash.ViewsLast7Days), 7)
	mustEqual(t, "clicks", dash.TotalClicks, int64(1))
	mustEqual(t, "growth without history", dash.UserGrowth, 0.0)
	mustEqual(t, "top profile", dash.TopProfiles[0].ID, personal.ID)
}

func TestAdminRecentActivity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	personal := f.createProfile(t, f.user.ID, models.ProfileTypePersonal, "Jane Doe")
	other := f.otherUser(t)
	f.createProfile(t, other.ID, models.ProfileTypeBusiness, "Acme Corp")
	now := time.Now().UTC()
	tracker := NewTracker(f.db, nil)
	seedViews(t, tracker, personal.Slug, now, map[models.ViewSource][]int{
		models.ViewSourceQR:     {3},
		models.ViewSourceDirect: {0},
	})

	analytics := NewAnalytics(f.db)
	feed, err := analytics.AdminRecentActivity(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, "views", len(feed.RecentViews), 2)
	mustEqual(t, "newest view source", feed.RecentViews[0].ViewSource, models.ViewSourceDirect)
	mustEqual(t, "view profile slug", feed.RecentViews[0].ProfileSlug, "jane-doe")
	mustEqual(t, "view profile name", feed.RecentViews[0].ProfileName, "Jane Doe")
	mustEqual(t, "users", len(feed.RecentUsers), 2)
	mustEqual(t, "profiles", len(feed.RecentProfiles), 2)

	owners := map[string]string{}
	for _, p := range feed.RecentProfiles {
		owners[p.Name] = p.OwnerEmail
	}
	mustEqual(t, "personal owner", owners["Jane Doe"], f.user.Email)
	mustEqual(t, "business owner", owners["Acme Corp"], other.Email)

	capped, err := analytics.AdminRecentActivity(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, "capped views", len(capped.RecentViews), 1)
	mustEqual(t, "capped users", len(capped.RecentUsers), 1)
	mustEqual(t, "capped profiles", len(capped.RecentProfiles), 1)
	mustEqual(t, "capped view source", capped.RecentViews[0].ViewSource, models.ViewSourceDirect)
}

func TestActivityLimit(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, defaultActivityLimit},
		{-3, defaultActivityLimit},
		{5, 5},
		{maxActivityLimit + 1, maxActivityLimit},
	}
	for _, tt := range tests {
		if got := activityLimit(tt.in); got != tt.want {
			t.Errorf("activityLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
