// Package googleads implements the one fully supported advertising
// provider: Google OAuth credential exchange and refresh, account
// identifier resolution, and campaign metrics retrieval.
package googleads

import (
	"context"
	"log/slog"

	"github.com/adreporthq/adconnect/account"
	"github.com/adreporthq/adconnect/platform"
)

// Service ties the authenticator, the ads API and the credential store
// together. Credentials are loaded from the store per call and passed
// explicitly; the service itself holds no per-connection state.
type Service struct {
	auth  Authenticator
	api   AdsAPI
	store account.Store

	// fallbackCustomerID is the operator-supplied known-good customer id
	// used to migrate provisional identifiers. Empty means migration
	// fails loudly rather than guessing.
	fallbackCustomerID string
}

// NewService builds a Service.
func NewService(auth Authenticator, api AdsAPI, store account.Store, fallbackCustomerID string) *Service {
	return &Service{
		auth:               auth,
		api:                api,
		store:              store,
		fallbackCustomerID: fallbackCustomerID,
	}
}

// AuthURL returns the Google consent URL for the given state parameter.
func (s *Service) AuthURL(state string) string {
	return s.auth.AuthURL(state)
}

// Connect exchanges an authorization code, resolves the provider account
// id and persists the connection for clientRef. The resolved id may be
// provisional (see resolver.go); it is migrated on first metrics fetch.
func (s *Service) Connect(ctx context.Context, code, clientRef string) (*account.Connection, error) {
	creds, err := s.auth.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	accountID, name := s.resolveAccount(ctx, creds)
	conn, err := s.store.Put(ctx, platform.Google, accountID, clientRef, creds, name)
	if err != nil {
		return nil, err
	}
	slog.Info("google ads connection stored",
		"account_id", conn.AccountID, "client", clientRef, "provisional", IsProvisional(conn.AccountID))
	return conn, nil
}

// RefreshIfStale returns creds unchanged while they are still valid and
// otherwise exchanges the refresh token for a fresh access token. Safe to
// call concurrently: refresh is idempotent in effect and the store keeps
// whichever result lands last.
func (s *Service) RefreshIfStale(ctx context.Context, creds account.CredentialSet) (account.CredentialSet, error) {
	if !creds.Stale() {
		return creds, nil
	}
	return s.auth.Refresh(ctx, creds)
}

// loadConnection finds the connection for accountID, falling back to any
// stored Google connection on an exact miss. The fallback favors
// availability in the common one-account-per-platform deployment; it
// deliberately trades strict multi-tenant isolation for that.
func (s *Service) loadConnection(ctx context.Context, accountID string) (*account.Connection, error) {
	conn, err := s.store.Get(ctx, platform.Google, accountID)
	if err == nil {
		return conn, nil
	}
	if !platform.IsKind(err, platform.KindAccountNotFound) {
		return nil, err
	}
	slog.Warn("no exact google ads connection, trying any", "account_id", accountID)
	return s.store.FindAny(ctx, platform.Google)
}

// freshCredentials refreshes the connection's credentials if stale and
// persists the result. Staleness is checked immediately before each use
// rather than cached across requests.
func (s *Service) freshCredentials(ctx context.Context, conn *account.Connection) (account.CredentialSet, error) {
	if !conn.Credentials.Stale() {
		return conn.Credentials, nil
	}
	creds, err := s.auth.Refresh(ctx, conn.Credentials)
	if err != nil {
		return account.CredentialSet{}, err
	}
	if _, err := s.store.Put(ctx, conn.Platform, conn.AccountID, conn.ClientRef, creds, conn.Name); err != nil {
		return account.CredentialSet{}, err
	}
	conn.Credentials = creds
	return creds, nil
}
