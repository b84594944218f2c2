package account

import (
	"context"

	"github.com/adreporthq/adconnect/platform"
)

// Store persists connection records keyed by (platform, account id).
// Implementations must support concurrent reads and last-writer-wins
// concurrent writes per key; no cross-record transactions are required.
type Store interface {
	// Put creates or overwrites the connection for (p, accountID) and
	// returns the stored record. Stamps UpdatedAt; CreatedAt and ID are
	// set once on first insert.
	Put(ctx context.Context, p platform.Platform, accountID, clientRef string, creds CredentialSet, name string) (*Connection, error)

	// Get returns the connection for (p, accountID), or an error of kind
	// platform.KindAccountNotFound.
	Get(ctx context.Context, p platform.Platform, accountID string) (*Connection, error)

	// FindAny returns an arbitrary existing connection for the platform.
	// Used as the availability fallback when an exact lookup misses in a
	// single-account deployment; an error of kind KindAccountNotFound
	// means the platform has no connections at all.
	FindAny(ctx context.Context, p platform.Platform) (*Connection, error)

	// ListByPlatform returns all connections for the platform.
	ListByPlatform(ctx context.Context, p platform.Platform) ([]*Connection, error)

	// Rename rewrites the account id and display name of the connection
	// currently stored under (p, oldAccountID). Used for identifier
	// migration once a provisional id resolves to a canonical one.
	Rename(ctx context.Context, p platform.Platform, oldAccountID, newAccountID, newName string) error

	// Remove deletes the connection with the given record id. Idempotent:
	// removing an absent record is not an error.
	Remove(ctx context.Context, connectionID string) error
}
