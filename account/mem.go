package account

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/adreporthq/adconnect/platform"
)

var _ Store = &MemStore{}

// MemStore is an in-memory Store for tests and local development.
// Writes are last-writer-wins per (platform, account id) key, matching
// the concurrency contract of the Mongo implementation.
type MemStore struct {
	mu    sync.RWMutex
	conns map[string]*Connection // keyed by platform + "/" + accountID
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{conns: map[string]*Connection{}}
}

func memKey(p platform.Platform, accountID string) string {
	return string(p) + "/" + accountID
}

func copyConn(c *Connection) *Connection {
	dup := *c
	return &dup
}

// Put creates or overwrites the connection for (p, accountID).
func (s *MemStore) Put(_ context.Context, p platform.Platform, accountID, clientRef string, creds CredentialSet, name string) (*Connection, error) {
	if p == "" || accountID == "" {
		return nil, errors.New("platform and account id are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	key := memKey(p, accountID)
	conn, ok := s.conns[key]
	if !ok {
		conn = &Connection{
			ID:        uuid.New().String(),
			Platform:  p,
			AccountID: accountID,
			CreatedAt: now,
		}
		s.conns[key] = conn
	}
	conn.ClientRef = clientRef
	conn.Credentials = creds
	conn.Name = name
	conn.UpdatedAt = now
	return copyConn(conn), nil
}

// Get returns the connection for (p, accountID).
func (s *MemStore) Get(_ context.Context, p platform.Platform, accountID string) (*Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conn, ok := s.conns[memKey(p, accountID)]
	if !ok {
		return nil, platform.E(platform.KindAccountNotFound, "no "+string(p)+" connection for account "+accountID)
	}
	return copyConn(conn), nil
}

// FindAny returns an arbitrary connection for the platform.
func (s *MemStore) FindAny(_ context.Context, p platform.Platform) (*Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, conn := range s.conns {
		if conn.Platform == p {
			return copyConn(conn), nil
		}
	}
	return nil, platform.E(platform.KindAccountNotFound, "no "+string(p)+" connections")
}

// ListByPlatform returns all connections for the platform.
func (s *MemStore) ListByPlatform(_ context.Context, p platform.Platform) ([]*Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Connection
	for _, conn := range s.conns {
		if conn.Platform == p {
			out = append(out, copyConn(conn))
		}
	}
	return out, nil
}

// Rename rewrites account id and display name in place.
func (s *MemStore) Rename(_ context.Context, p platform.Platform, oldAccountID, newAccountID, newName string) error {
	if newAccountID == "" {
		return errors.New("new account id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	conn, ok := s.conns[memKey(p, oldAccountID)]
	if !ok {
		return platform.E(platform.KindAccountNotFound, "no "+string(p)+" connection for account "+oldAccountID)
	}
	delete(s.conns, memKey(p, oldAccountID))
	conn.AccountID = newAccountID
	conn.Name = newName
	conn.UpdatedAt = time.Now().UTC()
	s.conns[memKey(p, newAccountID)] = conn
	return nil
}

// Remove deletes by record id; absent records are ignored.
func (s *MemStore) Remove(_ context.Context, connectionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, conn := range s.conns {
		if conn.ID == connectionID {
			delete(s.conns, key)
			return nil
		}
	}
	return nil
}
