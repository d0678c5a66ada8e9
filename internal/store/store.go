// Package store defines storage interfaces for the ledger's users and orders
// and provides in-memory and SQLite-backed implementations.
package store

import (
	"context"

	"fxledger/internal/domain"
)

// UserStore persists and retrieves registered users.
type UserStore interface {
	// AddUser inserts the user, replacing any existing entry with the same ID.
	AddUser(ctx context.Context, user domain.User) error

	// GetUser returns the user with the given ID, or nil if there is none.
	GetUser(ctx context.Context, userID string) (*domain.User, error)

	// ListUsers returns a snapshot of all users keyed by ID.
	ListUsers(ctx context.Context) (map[string]domain.User, error)

	// UserExists reports whether a user with the given ID is registered.
	UserExists(ctx context.Context, userID string) (bool, error)
}

// OrderStore persists and retrieves submitted orders.
type OrderStore interface {
	// AddOrder appends an order.
	AddOrder(ctx context.Context, order domain.Order) error

	// OrdersByUser returns the user's orders in insertion order. A user with
	// no orders yields an empty slice.
	OrdersByUser(ctx context.Context, userID string) ([]domain.Order, error)
}
