// Package identity wraps the Firebase Auth operations the admin service
// needs, behind a small interface so services can be tested without a live
// Auth backend.
package identity

import (
	"context"
	"errors"
	"fmt"

	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
)

// ErrUserNotFound is returned when no Auth user matches the lookup.
var ErrUserNotFound = errors.New("auth user not found")

// Service exposes the identity operations used by account management.
type Service interface {
	// UIDByEmail resolves an email address to the Auth user's UID.
	UIDByEmail(ctx context.Context, email string) (string, error)
	// DeleteUser removes the Auth user with the given UID.
	DeleteUser(ctx context.Context, uid string) error
	// IsAdmin reports whether the UID carries the admin custom claim.
	IsAdmin(ctx context.Context, uid string) (bool, error)
}

type firebaseIdentity struct {
	client *auth.Client
	logger *zap.Logger
}

// NewFirebaseIdentity creates an identity service backed by Firebase Auth.
func NewFirebaseIdentity(client *auth.Client, logger *zap.Logger) Service {
	return &firebaseIdentity{client: client, logger: logger}
}

func (s *firebaseIdentity) UIDByEmail(ctx context.Context, email string) (string, error) {
	user, err := s.client.GetUserByEmail(ctx, email)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return "", fmt.Errorf("email '%s': %w", email, ErrUserNotFound)
		}
		return "", fmt.Errorf("failed to look up auth user by email: %w", err)
	}
	return user.UID, nil
}

func (s *firebaseIdentity) DeleteUser(ctx context.Context, uid string) error {
	if err := s.client.DeleteUser(ctx, uid); err != nil {
		if auth.IsUserNotFound(err) {
			return fmt.Errorf("uid '%s': %w", uid, ErrUserNotFound)
		}
		return fmt.Errorf("failed to delete auth user '%s': %w", uid, err)
	}
	return nil
}

func (s *firebaseIdentity) IsAdmin(ctx context.Context, uid string) (bool, error) {
	user, err := s.client.GetUser(ctx, uid)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return false, fmt.Errorf("uid '%s': %w", uid, ErrUserNotFound)
		}
		return false, fmt.Errorf("failed to load auth user '%s': %w", uid, err)
	}
	admin, _ := user.CustomClaims["admin"].(bool)
	return admin, nil
}
