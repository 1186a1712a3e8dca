package services

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/linkme-io/linkme-backend/models"
)

func TestValidateLink(t *testing.T) {
	tests := []struct {
		name     string
		platform models.Platform
		in       string
		want     string
		wantErr  bool
	}{
		{"whatsapp number becomes wa.me", models.PlatformWhatsApp, "+962790000000", "https://wa.me/962790000000", false},
		{"whatsapp url kept", models.PlatformWhatsApp, "https://wa.me/962790000000", "https://wa.me/962790000000", false},
		{"whatsapp api url kept", models.PlatformWhatsApp, "https://api.whatsapp.com/962790000000", "https://api.whatsapp.com/962790000000", false},
		{"whatsapp too short", models.PlatformWhatsApp, "12345", "", true},
		{"email ok", models.PlatformEmail, " jane@example.com ", "jane@example.com", false},
		{"email rejected", models.PlatformEmail, "not-an-email", "", true},
		{"phone stored as typed", models.PlatformPhone, "+962 (79) 000-0000", "+962 (79) 000-0000", false},
		{"phone with letters", models.PlatformPhone, "call me", "", true},
		{"phone without digits", models.PlatformPhone, "+ - ()", "", true},
		{"website needs scheme", models.PlatformWebsite, "example.com", "", true},
		{"website ok", models.PlatformWebsite, "https://example.com", "https://example.com", false},
		{"linkedin http ok", models.PlatformLinkedIn, "http://linkedin.com/in/jane", "http://linkedin.com/in/jane", false},
		{"unknown platform", models.Platform("myspace"), "https://myspace.com", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateLink(tt.platform, tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				if statusOf(err) != http.StatusBadRequest {
					t.Fatalf("status = %d, want 400", statusOf(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateLabel(t *testing.T) {
	if got, err := ValidateLabel(nil); got != nil || err != nil {
		t.Fatalf("nil label = %v, %v", got, err)
	}
	if got, err := ValidateLabel(ptr("   ")); got != nil || err != nil {
		t.Fatalf("blank label = %v, %v", got, err)
	}
	got, err := ValidateLabel(ptr("  My site "))
	if err != nil || got == nil || *got != "My site" {
		t.Fatalf("trimmed label = %v, %v", got, err)
	}
	if _, err := ValidateLabel(ptr(strings.Repeat("a", 101))); err == nil {
		t.Fatal("expected error for a 101 character label")
	}
}

func TestFormatRedirectURL(t *testing.T) {
	tests := []struct {
		platform models.Platform
		stored   string
		want     string
	}{
		{models.PlatformPhone, "+962 (79) 000-0000", "tel:+962790000000"},
		{models.PlatformEmail, "jane@example.com", "mailto:jane@example.com"},
		{models.PlatformEmail, "mailto:jane@example.com", "mailto:jane@example.com"},
		{models.PlatformWhatsApp, "https://wa.me/962790000000", "https://wa.me/962790000000"},
		{models.PlatformWebsite, "https://example.com", "https://example.com"},
	}
	for _, tt := range tests {
		if got := FormatRedirectURL(tt.platform, tt.stored); got != tt.want {
			t.Errorf("FormatRedirectURL(%s, %q) = %q, want %q", tt.platform, tt.stored, got, tt.want)
		}
	}
}

func TestDisplayLabelInPayloads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createProfile(t, f.user.ID, models.ProfileTypePersonal, "Jane Doe",
		link(models.PlatformGithub, "https://github.com/jane"),
		LinkInput{Platform: models.PlatformWebsite, URL: "https://jane.example", Label: ptr("Blog")},
	)

	public, err := f.registry.GetBySlug(ctx, "jane-doe")
	if err != nil {
		t.Fatal(err)
	}
	labels := map[models.Platform]string{}
	for _, l := range public.SocialLinks {
		labels[l.Platform] = l.DisplayLabel
	}
	mustEqual(t, "github label", labels[models.PlatformGithub], "Github")
	mustEqual(t, "website label", labels[models.PlatformWebsite], "Blog")

	links := NewLinkService(f.db)
	var github models.SocialLink
	for _, l := range public.SocialLinks {
		if l.Platform == models.PlatformGithub {
			github = l
		}
	}
	updated, err := links.Update(ctx, f.user.ID, github.ID, LinkPatch{Label: Some("Code")})
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, "relabelled", updated.DisplayLabel, "Code")

	updated, err = links.Update(ctx, f.user.ID, github.ID, LinkPatch{Label: Null[string]()})
	if err != nil {
		t.Fatal(err)
	}
	mustEqual(t, "cleared label", updated.DisplayLabel, "Github")

	body, err := json.Marshal(updated)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), `"displayLabel":"Github"`) {
		t.Fatalf("displayLabel missing from %s", body)
	}
}
