package api

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/linkme-io/linkme-backend/models"
)

type keyType string

const (
	userIDKey keyType = "userID"
	roleKey   keyType = "role"
)

// ctxWithUser adds the authenticated caller to the context
func ctxWithUser(ctx context.Context, userID uuid.UUID, role models.Role) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, roleKey, role)
}

// ctxGetUserID retrieves the caller's user ID from the context
func ctxGetUserID(ctx context.Context) (uuid.UUID, error) {
	if ctxValue := ctx.Value(userIDKey); ctxValue == nil {
		return uuid.Nil, errors.New("key not found in context")
	} else if userID, ok := ctxValue.(uuid.UUID); !ok {
		return uuid.Nil, errors.New("value is not of type `uuid.UUID`")
	} else {
		return userID, nil
	}
}

func ctxGetRole(ctx context.Context) models.Role {
	role, _ := ctx.Value(roleKey).(models.Role)
	return role
}
