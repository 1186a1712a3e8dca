package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/linkme-io/linkme-backend/models"
)

func TestLinkCreateAppendsAndRejectsDuplicatePlatform(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	profile := f.createProfile(t, f.user.ID, models.ProfileTypePersonal, "Jane Doe",
		link(models.PlatformGithub, "https://github.com/jane"))
	links := NewLinkService(f.db)

	created, err := links.Create(ctx, f.user.ID, NewLinkInput{
		ProfileID: profile.ID,
		Platform:  "WhatsApp",
		URL:       "+962790000000",
		IsVisible: ptr(false),
	})
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, "platform", created.Platform, models.PlatformWhatsApp)
	mustEqual(t, "order", created.Order, 2)
	mustEqual(t, "url", created.URL, "https://wa.me/962790000000")

	stored, err := links.Get(ctx, f.user.ID, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, "stored hidden", stored.IsVisible, false)

	_, err = links.Create(ctx, f.user.ID, NewLinkInput{ProfileID: profile.ID, Platform: models.PlatformGithub, URL: "https://github.com/other"})
	wantStatus(t, err, http.StatusConflict)

	_, err = links.Create(ctx, f.otherUser(t).ID, NewLinkInput{ProfileID: profile.ID, Platform: models.PlatformEmail, URL: "a@b.co"})
	wantStatus(t, err, http.StatusNotFound)

	_, err = links.Create(ctx, f.user.ID, NewLinkInput{ProfileID: profile.ID, Platform: models.PlatformEmail})
	wantStatus(t, err, http.StatusBadRequest)
}

func TestLinkListHidesInvisibleOnPublicProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	profile := f.createProfile(t, f.user.ID, models.ProfileTypePersonal, "Jane Doe",
		link(models.PlatformGithub, "https://github.com/jane"),
		LinkInput{Platform: models.PlatformTwitter, URL: "https://x.com/jane", IsVisible: ptr(false)},
	)
	links := NewLinkService(f.db)

	all, err := links.List(ctx, f.user.ID, profile.ID, true)
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, "all links", len(all), 2)
	visible, err := links.List(ctx, f.user.ID, profile.ID, false)
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, "visible links", len(visible), 1)

	public, err := f.registry.GetBySlug(ctx, profile.Slug)
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, "public links", len(public.SocialLinks), 1)
	mustEqual(t, "public platform", public.SocialLinks[0].Platform, models.PlatformGithub)
}

func TestLinkReorder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	profile := f.createProfile(t, f.user.ID, models.ProfileTypePersonal, "Jane Doe",
		link(models.PlatformWebsite, "https://jane.example"),
		link(models.PlatformGithub, "https://github.com/jane"),
		link(models.PlatformEmail, "jane@example.com"),
	)
	a, b, c := profile.SocialLinks[0], profile.SocialLinks[1], profile.SocialLinks[2]
	links := NewLinkService(f.db)

	reordered, err := links.Reorder(ctx, f.user.ID, profile.ID, []LinkOrder{
		{ID: c.ID, Order: 1},
		{ID: a.ID, Order: 2},
		{ID: b.ID, Order: 3},
	})
	if err != nil {
		t.Fatal(err)
	}
	got := []uuid.UUID{reordered[0].ID, reordered[1].ID, reordered[2].ID}
	want := []uuid.UUID{c.ID, a.ID, b.ID}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d = %s, want %s", i, got[i], want[i])
		}
	}

	// a foreign link aborts the whole batch
	other := f.createProfile(t, f.otherUser(t).ID, models.ProfileTypePersonal, "Someone Else",
		link(models.PlatformGithub, "https://github.com/else"))
	_, err = links.Reorder(ctx, f.user.ID, profile.ID, []LinkOrder{
		{ID: b.ID, Order: 1},
		{ID: other.SocialLinks[0].ID, Order: 2},
	})
	wantStatus(t, err, http.StatusNotFound)

	after, err := links.List(ctx, f.user.ID, profile.ID, true)
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, "first after rollback", after[0].ID, c.ID)

	_, err = links.Reorder(ctx, f.user.ID, profile.ID, []LinkOrder{{ID: a.ID, Order: 0}})
	wantStatus(t, err, http.StatusBadRequest)
	_, err = links.Reorder(ctx, f.user.ID, profile.ID, nil)
	wantStatus(t, err, http.StatusBadRequest)
}

func TestLinkBulkCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	profile := f.createProfile(t, f.user.ID, models.ProfileTypeBusiness, "Acme Corp",
		link(models.PlatformWebsite, "https://acme.example"))
	links := NewLinkService(f.db)

	result, err := links.BulkCreate(ctx, f.user.ID, profile.ID, []LinkInput{
		link(models.PlatformWebsite, "https://acme.example/again"),
		link(models.PlatformLinkedIn, "https://linkedin.com/company/acme"),
		link(models.PlatformLinkedIn, "https://linkedin.com/company/acme2"),
		link(models.PlatformPhone, "+962 6 555 0000"),
	})
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, "created", len(result.Created), 2)
	mustEqual(t, "skipped", result.Skipped, 2)
	mustEqual(t, "first new order", result.Created[0].Order, 2)
	mustEqual(t, "second new order", result.Created[1].Order, 3)

	_, err = links.BulkCreate(ctx, f.user.ID, profile.ID, []LinkInput{
		link(models.PlatformWebsite, "https://acme.example/x"),
	})
	wantStatus(t, err, http.StatusConflict)

	_, err = links.BulkCreate(ctx, f.user.ID, profile.ID, []LinkInput{
		link(models.PlatformGithub, "https://github.com/acme"),
		link(models.PlatformEmail, "broken"),
	})
	wantStatus(t, err, http.StatusBadRequest)
	all, err := links.List(ctx, f.user.ID, profile.ID, true)
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, "links after rejected batch", len(all), 3)
}

func TestLinkBulkCreateDropsIncompleteEntries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	profile := f.createProfile(t, f.user.ID, models.ProfileTypePersonal, "Jane Doe")
	links := NewLinkService(f.db)

	result, err := links.BulkCreate(ctx, f.user.ID, profile.ID, []LinkInput{
		{Platform: models.PlatformGithub},
		{URL: "https://jane.example"},
		link(models.PlatformEmail, "jane@example.com"),
		{Platform: models.PlatformPhone, URL: "   "},
	})
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, "created", len(result.Created), 1)
	mustEqual(t, "skipped", result.Skipped, 0)
	mustEqual(t, "created platform", result.Created[0].Platform, models.PlatformEmail)

	_, err = links.BulkCreate(ctx, f.user.ID, profile.ID, []LinkInput{
		{Platform: models.PlatformGithub},
		{URL: "https://jane.example"},
	})
	wantStatus(t, err, http.StatusBadRequest)
}

func TestLinkUpdateToggleStatisticsAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	profile := f.createProfile(t, f.user.ID, models.ProfileTypePersonal, "Jane Doe",
		link(models.PlatformEmail, "jane@example.com"),
		link(models.PlatformGithub, "https://github.com/jane"),
	)
	email, gh := profile.SocialLinks[0], profile.SocialLinks[1]
	links := NewLinkService(f.db)

	_, err := links.Update(ctx, f.user.ID, email.ID, LinkPatch{URL: Some("https://not-an-email")})
	wantStatus(t, err, http.StatusBadRequest)

	updated, err := links.Update(ctx, f.user.ID, email.ID, LinkPatch{
		URL:   Some("jane@work.example"),
		Label: Some("Work"),
		Order: Some(5),
	})
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, "url", updated.URL, "jane@work.example")
	mustEqual(t, "order", updated.Order, 5)

	cleared, err := links.Update(ctx, f.user.ID, email.ID, LinkPatch{Label: Null[string]()})
	if err != nil {
		t.Fatal(err)
	}
	if cleared.Label != nil {
		t.Fatalf("label = %q, want cleared", *cleared.Label)
	}

	hidden, err := links.ToggleVisibility(ctx, f.user.ID, gh.ID)
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, "visible", hidden.IsVisible, false)

	tracker := NewTracker(f.db, nil)
	for i := 0; i < 3; i++ {
		if _, err := tracker.TrackClick(ctx, email.ID); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := links.Statistics(ctx, f.user.ID, profile.ID)
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, "total", stats.TotalLinks, 2)
	mustEqual(t, "visible", stats.VisibleLinks, 1)
	mustEqual(t, "hidden", stats.HiddenLinks, 1)
	mustEqual(t, "clicks", stats.TotalClicks, int64(3))
	mustEqual(t, "most clicked", stats.MostClickedLink.ID, email.ID)

	stranger := f.otherUser(t)
	wantStatus(t, links.Delete(ctx, stranger.ID, gh.ID), http.StatusNotFound)
	n, err := links.BulkDelete(ctx, stranger.ID, []uuid.UUID{email.ID, gh.ID})
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, "deleted by stranger", n, int64(0))

	if err := links.Delete(ctx, f.user.ID, gh.ID); err != nil {
		t.Fatal(err)
	}
	n, err = links.BulkDelete(ctx, f.user.ID, []uuid.UUID{email.ID, gh.ID})
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, "bulk deleted", n, int64(1))
}
