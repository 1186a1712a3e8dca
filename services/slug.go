package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/linkme-io/linkme-backend/database"
	"github.com/linkme-io/linkme-backend/errs"
)

const maxSlugBaseLength = 100

// NormalizeSlug turns a display name into a URL-safe slug base.
// Parameters:
//   - name: The profile display name (e.g., "Jane  Doe!")
//
// Returns:
//   - The lowercase slug (e.g., "jane-doe"), or "" when nothing survives normalization
func NormalizeSlug(name string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsSpace(r):
			pendingHyphen = b.Len() > 0
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-':
			if pendingHyphen {
				b.WriteByte('-')
				pendingHyphen = false
			}
			b.WriteRune(r)
		}
	}
	slug := strings.Trim(b.String(), "-")
	if len(slug) > maxSlugBaseLength {
		slug = strings.TrimRight(slug[:maxSlugBaseLength], "-")
	}
	return slug
}

// SlugAllocator hands out unused slugs using a sequential numeric suffix:
// "jane-doe", then "jane-doe-1", "jane-doe-2" and so on.
type SlugAllocator struct {
	baseURL string
}

func NewSlugAllocator(baseURL string) SlugAllocator {
	return SlugAllocator{baseURL: strings.TrimSuffix(baseURL, "/")}
}

// Allocate returns a slug for name that no other profile holds. exclude is the
// profile being renamed, whose own slug does not count as taken.
// The check is not atomic with the insert; the unique index on profiles.slug is
// the final authority and callers retry once on a collision.
func (a SlugAllocator) Allocate(ctx context.Context, repo database.ProfileRepository, name string, exclude *uuid.UUID) (string, error) {
	base := NormalizeSlug(name)
	if base == "" {
		return "", errs.NewInvalidFieldError("name", "must contain at least one letter or digit")
	}

	taken, err := repo.SlugsLike(ctx, base, exclude)
	if err != nil {
		return "", errs.NewDatabaseError("check", "slug", err)
	}
	return nextFreeSlug(base, taken), nil
}

// nextFreeSlug picks base if unused, else the smallest base-N with N >= 1.
func nextFreeSlug(base string, taken []string) string {
	used := make(map[int]bool, len(taken))
	baseTaken := false
	prefix := base + "-"
	for _, s := range taken {
		if s == base {
			baseTaken = true
			continue
		}
		if n, err := strconv.Atoi(strings.TrimPrefix(s, prefix)); err == nil && strings.HasPrefix(s, prefix) && n > 0 {
			used[n] = true
		}
	}
	if !baseTaken {
		return base
	}
	for n := 1; ; n++ {
		if !used[n] {
			return fmt.Sprintf("%s-%d", base, n)
		}
	}
}

// ProfileURL is the canonical public address for slug.
func (a SlugAllocator) ProfileURL(slug string) string {
	return a.baseURL + "/" + slug
}
