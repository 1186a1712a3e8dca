package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/linkme-io/linkme-backend/database"
	"github.com/linkme-io/linkme-backend/database/dbtest"
	"github.com/linkme-io/linkme-backend/errs"
	"github.com/linkme-io/linkme-backend/models"
)

// memoryAssets is an AssetStore that keeps objects in a map.
type memoryAssets struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	failPut bool
	// onPut runs before each upload is stored
	onPut func()
}

func newMemoryAssets() *memoryAssets {
	return &memoryAssets{objects: make(map[string][]byte)}
}

func (m *memoryAssets) Put(_ context.Context, key, _ string, body []byte) (string, error) {
	if m.onPut != nil {
		m.onPut()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPut {
		return "", errs.NewUpstreamError("asset storage", errors.New("put failed"))
	}
	url := "https://assets.test/" + key
	m.objects[url] = body
	return url, nil
}

func (m *memoryAssets) Delete(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, url)
	m.deleted = append(m.deleted, url)
	return nil
}

func (m *memoryAssets) has(url string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[url]
	return ok
}

func (m *memoryAssets) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// statusOf returns the HTTP status carried by err, or 0 for non-API errors.
func statusOf(err error) int {
	var apiErr *errs.ApiErr
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

type fixture struct {
	db       database.Database
	assets   *memoryAssets
	registry *ProfileRegistry
	user     *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb := dbtest.Open(t)
	db := database.New(gdb)
	assets := newMemoryAssets()
	registry := NewProfileRegistry(db, NewSlugAllocator("https://linkme.test"), assets)
	registry.now = steppingClock()
	return &fixture{
		db:       db,
		assets:   assets,
		registry: registry,
		user:     dbtest.CreateUser(t, gdb, models.RoleUser),
	}
}

// steppingClock advances one second per call so generated asset keys never collide.
func steppingClock() func() time.Time {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var ticks atomic.Int64
	return func() time.Time {
		return base.Add(time.Duration(ticks.Add(1)) * time.Second)
	}
}

func (f *fixture) createProfile(t *testing.T, userID uuid.UUID, profileType models.ProfileType, name string, links ...LinkInput) *models.Profile {
	t.Helper()
	profile, err := f.registry.Create(context.Background(), userID, ProfileInput{
		ProfileType: profileType,
		Name:        name,
		SocialLinks: links,
	})
	if err != nil {
		t.Fatalf("create profile %q: %v", name, err)
	}
	return profile
}

func (f *fixture) otherUser(t *testing.T) *models.User {
	t.Helper()
	return dbtest.CreateUser(t, f.db.GetDB(), models.RoleUser)
}

func link(platform models.Platform, url string) LinkInput {
	return LinkInput{Platform: platform, URL: url}
}

func ptr[T any](v T) *T { return &v }

func mustEqual[T comparable](t *testing.T, what string, got, want T) {
	t.Helper()
	if got != want {
		t.Fatalf("%s = %v, want %v", what, got, want)
	}
}

func wantStatus(t *testing.T, err error, want int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with status %d, got nil", want)
	}
	if got := statusOf(err); got != want {
		t.Fatalf("status = %d, want %d (%v)", got, want, fmt.Sprint(err))
	}
}
