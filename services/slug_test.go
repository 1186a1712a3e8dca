package services

import (
	"context"
	"testing"

	"github.com/linkme-io/linkme-backend/models"
)

func TestNormalizeSlug(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"spaces become hyphens", "Jane Doe", "jane-doe"},
		{"runs of spaces collapse", "  Jane   Doe  ", "jane-doe"},
		{"punctuation dropped", "Jane Doe!", "jane-doe"},
		{"existing hyphens kept", "Jane-Doe", "jane-doe"},
		{"digits kept", "Studio 54", "studio-54"},
		{"leading and trailing hyphens trimmed", "-Jane-", "jane"},
		{"non latin letters dropped", "Café Zürich", "caf-zrich"},
		{"symbols dropped not spelled out", "Jürgen & Co", "jrgen-co"},
		{"nothing survives", "!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeSlug(tt.in); got != tt.want {
				t.Errorf("NormalizeSlug(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNextFreeSlug(t *testing.T) {
	tests := []struct {
		name  string
		taken []string
		want  string
	}{
		{"unused", nil, "jane-doe"},
		{"base taken", []string{"jane-doe"}, "jane-doe-1"},
		{"fills the first gap", []string{"jane-doe", "jane-doe-1", "jane-doe-3"}, "jane-doe-2"},
		{"ignores unrelated suffixes", []string{"jane-doe", "jane-doe-smith"}, "jane-doe-1"},
		{"suffix alone does not block base", []string{"jane-doe-1"}, "jane-doe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nextFreeSlug("jane-doe", tt.taken); got != tt.want {
				t.Errorf("nextFreeSlug = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSlugAllocatorAgainstStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.createProfile(t, f.user.ID, models.ProfileTypePersonal, "Jane Doe")
	mustEqual(t, "first slug", first.Slug, "jane-doe")
	mustEqual(t, "profile url", first.ProfileURL, "https://linkme.test/jane-doe")

	second := f.createProfile(t, f.otherUser(t).ID, models.ProfileTypePersonal, "Jane Doe")
	mustEqual(t, "second slug", second.Slug, "jane-doe-1")

	// a profile keeps its own slug when re-allocated for the same name
	slug, err := f.registry.slugs.Allocate(ctx, f.db.ProfileRepo(), "Jane Doe", &first.ID)
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, "self allocation", slug, "jane-doe")

	if _, err := f.registry.slugs.Allocate(ctx, f.db.ProfileRepo(), "???", nil); err == nil {
		t.Fatal("expected error for a name without letters or digits")
	}
}
