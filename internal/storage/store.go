// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/divvyhq/divvy/internal/models"
)

// ErrNotFound is returned when a group, member or transaction does not
// exist, or is scoped to a different group than the caller's token.
var ErrNotFound = errors.New("not found")

// Store defines the persistence operations the service layer depends on.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the service layer.
//
// All operations that take a groupID are scoped to that group: a matching
// row owned by another group behaves exactly like a missing row.
type Store interface {
	// CreateGroup persists a new group together with its initial members.
	// IDs and CreatedAt fields are populated by the store.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group with its ordered member list.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// DeleteGroup removes a group and everything it owns.
	DeleteGroup(ctx context.Context, groupID string) error

	// AddMember appends a member to a group. ID and CreatedAt are
	// populated by the store.
	AddMember(ctx context.Context, member *models.Member) error

	// GetMember retrieves one member of the given group.
	GetMember(ctx context.Context, groupID, memberID string) (*models.Member, error)

	// RemoveMember deletes a member from the given group.
	RemoveMember(ctx context.Context, groupID, memberID string) error

	// UpdateMemberPayment sets a member's payment identifiers.
	UpdateMemberPayment(ctx context.Context, groupID, memberID, paypalEmail, iban string) error

	// ListMembers returns the group's members in creation order.
	ListMembers(ctx context.Context, groupID string) ([]models.Member, error)

	// CreateTransaction persists a new transaction with its split set.
	// ID and CreatedAt are populated by the store.
	CreateTransaction(ctx context.Context, tx *models.Transaction) error

	// GetTransaction retrieves one transaction of the given group.
	GetTransaction(ctx context.Context, groupID, txID string) (*models.Transaction, error)

	// UpdateTransaction replaces a transaction's fields and split set.
	UpdateTransaction(ctx context.Context, tx *models.Transaction) error

	// DeleteTransaction removes a transaction and its split set.
	DeleteTransaction(ctx context.Context, groupID, txID string) error

	// ListTransactions returns the group's transactions, newest first.
	ListTransactions(ctx context.Context, groupID string) ([]models.Transaction, error)

	// Close releases any resources held by the store.
	Close() error
}
