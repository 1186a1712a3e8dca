package errs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"gorm.io/gorm"
)

func TestNewDatabaseError(t *testing.T) {
	tests := []struct {
		name       string
		cause      error
		wantStatus int
		wantIs     error
	}{
		{name: "record not found", cause: gorm.ErrRecordNotFound, wantStatus: http.StatusNotFound, wantIs: ErrNotFound},
		{name: "postgres unique", cause: errors.New(`ERROR: duplicate key value violates unique constraint "idx_profiles_slug" (SQLSTATE 23505)`), wantStatus: http.StatusConflict, wantIs: ErrUniqueConstraintViolation},
		{name: "sqlite unique", cause: errors.New("UNIQUE constraint failed: profiles.slug"), wantStatus: http.StatusConflict, wantIs: ErrConflict},
		{name: "foreign key", cause: errors.New("FOREIGN KEY constraint failed"), wantStatus: http.StatusBadRequest, wantIs: ErrForeignKeyConstraint},
		{name: "connection", cause: errors.New("dial tcp: connection refused"), wantStatus: http.StatusServiceUnavailable, wantIs: ErrDatabaseConnection},
		{name: "other", cause: errors.New("syntax error"), wantStatus: http.StatusInternalServerError, wantIs: ErrDatabaseQuery},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewDatabaseError("find", "profile", tt.cause)
			if err.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", err.StatusCode, tt.wantStatus)
			}
			if !errors.Is(err, tt.wantIs) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.wantIs)
			}
		})
	}
}

func TestNewDatabaseErrorPassesApiErrThrough(t *testing.T) {
	inner := NewValidationError("name is required")
	wrapped := fmt.Errorf("tx: %w", inner)
	if got := NewDatabaseError("create", "profile", wrapped); got != inner {
		t.Fatalf("got %v, want the original ApiErr", got)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	err := errors.New("UNIQUE constraint failed: social_links.profile_id, social_links.platform")
	if !IsUniqueViolation(err, "platform") {
		t.Error("expected a platform violation")
	}
	if IsUniqueViolation(err, "slug") {
		t.Error("slug should not match")
	}
	if IsUniqueViolation(nil, "") {
		t.Error("nil is not a violation")
	}
	if !IsUniqueViolation(fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), "") {
		t.Error("gorm.ErrDuplicatedKey should match")
	}
}

func TestCheckers(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{name: "not found", err: NewNotFound("profile"), check: IsNotFound, want: true},
		{name: "duplicate is a conflict", err: NewDuplicateError("link exists"), check: IsConflict, want: true},
		{name: "duplicate", err: NewDuplicateError("link exists"), check: IsDuplicate, want: true},
		{name: "plain conflict is not a duplicate", err: NewConflictError("busy"), check: IsDuplicate, want: false},
		{name: "business rule is a conflict", err: NewBusinessRuleError("has orders"), check: IsConflict, want: true},
		{name: "invalid field is validation", err: NewInvalidFieldError("url", "bad"), check: IsValidation, want: true},
		{name: "missing field is validation", err: NewMissingRequiredFieldError("name"), check: IsValidation, want: true},
		{name: "not found is not validation", err: NewNotFound("order"), check: IsValidation, want: false},
		{name: "asset timeout is upstream", err: NewAssetTimeoutError("put", time.Second), check: IsUpstream, want: true},
		{name: "asset timeout", err: NewAssetTimeoutError("put", time.Second), check: IsTimeoutError, want: true},
		{name: "upstream is not a timeout", err: NewUpstreamError("asset storage", context.Canceled), check: IsTimeoutError, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.check(tt.err); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApiErrMessages(t *testing.T) {
	err := NewUpstreamError("asset storage", NewConfigError("S3_BUCKET", errors.New("empty")))
	if got := err.UserMessage(); got != "asset storage is unavailable" {
		t.Errorf("UserMessage = %q", got)
	}
	want := "upstream service failed: call to asset storage failed -> configuration invalid: Invalid configuration: S3_BUCKET -> empty"
	if got := err.GetFullError(); got != want {
		t.Errorf("GetFullError = %q, want %q", got, want)
	}

	withExtra := NewBusinessRuleError("has orders").WithExtra("orderCount", 2)
	if withExtra.Extra["orderCount"] != 2 {
		t.Errorf("extra = %v", withExtra.Extra)
	}
	if got := NewInvalidFieldError("url", "must start with http").UserMessage(); got != "Invalid field url: must start with http" {
		t.Errorf("UserMessage fallback = %q", got)
	}
}
