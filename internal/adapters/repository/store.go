// Package repository executes read-only statements against the analytics store.
package repository

import (
	"context"

	"github.com/okian/courtside/internal/domain/query"
	"github.com/okian/courtside/internal/domain/types"
)

// Store runs built statements and returns their rows.
type Store interface {
	// Query executes st and returns its result table. A statement that
	// matches nothing returns an empty table, not an error.
	Query(ctx context.Context, st query.Statement) (*types.Table, error)

	// Close releases the underlying connection.
	Close() error
}
