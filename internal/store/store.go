package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a directory entry does not exist.
var ErrNotFound = errors.New("not found")

// User is a directory entry mapping an authenticated identity to a
// push-notification delivery address. IDs come from the platform identity
// provider and are opaque here.
type User struct {
	ID          string
	DisplayName string
	DeviceToken *string // nil until the user's client registers one
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Store is the user directory. This service only ever reads delivery
// addresses during call notification; writes happen through device
// registration.
type Store interface {
	// GetUserByID returns the directory entry for the given user,
	// or ErrNotFound.
	GetUserByID(ctx context.Context, id string) (*User, error)

	// UpsertDeviceToken registers a delivery address for the user,
	// creating the directory entry if needed.
	UpsertDeviceToken(ctx context.Context, userID, displayName, deviceToken string) error

	// ClearDeviceToken removes the user's delivery address.
	// Returns ErrNotFound if the user has no directory entry.
	ClearDeviceToken(ctx context.Context, userID string) error

	Close() error
}
