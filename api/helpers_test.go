package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/linkme-io/linkme-backend/database"
	"github.com/linkme-io/linkme-backend/database/dbtest"
	"github.com/linkme-io/linkme-backend/models"
)

const testSecret = "test-secret"

type testAPI struct {
	db      *gorm.DB
	handler http.Handler
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	db := dbtest.Open(t)
	deps := Deps{Config: map[string]string{
		"JWT_SECRET":       testSecret,
		"PROFILE_BASE_URL": "https://cards.test",
	}}
	return &testAPI{db: db, handler: newRouter(database.New(db), deps, withStartupTime(time.Now()))}
}

func signToken(t *testing.T, sub uuid.UUID, role models.Role, ttl time.Duration) string {
	t.Helper()
	claims := tokenClaims{
		Email:     "Owner." + sub.String() + "@Example.com",
		FirstName: "Card",
		LastName:  "Owner",
		Role:      string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}
	return signed
}

// do sends body as JSON and decodes the response into a generic map.
func (a *testAPI) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("%s %s: decode body %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec.Code, out
}

func expectStatus(t *testing.T, label string, got, want int, body map[string]any) {
	t.Helper()
	if got != want {
		t.Fatalf("%s: status = %d, want %d (body %v)", label, got, want, body)
	}
}

func dataMap(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	if body["success"] != true {
		t.Fatalf("success = %v, want true (body %v)", body["success"], body)
	}
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("data is %T, want object", body["data"])
	}
	return data
}
