// Package adconnect connects client organizations to third-party
// advertising platforms, managing the OAuth credential lifecycle and
// normalizing platform metrics into a common reporting shape. The route
// layer, session auth and generic CRUD live outside this module; it
// exposes the connection manager only.
package adconnect

import (
	"context"
	"errors"
	"fmt"

	redis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/adreporthq/adconnect/account"
	"github.com/adreporthq/adconnect/googleads"
	"github.com/adreporthq/adconnect/oauthstate"
	"github.com/adreporthq/adconnect/platform"
)

// ErrNotImplemented is returned for datasources that are declared but
// have no provider implementation yet (facebook-ads, tiktok-ads).
var ErrNotImplemented = errors.New("adconnect: datasource not implemented")

// ErrUnknownDatasource is returned for datasource ids that are not
// declared in the registry at all.
var ErrUnknownDatasource = errors.New("adconnect: unknown datasource")

// Manager is the core-exposed surface consumed by the route layer. Every
// operation returns either a result or a classified *platform.Error;
// raw transport errors never escape.
type Manager struct {
	store  account.Store
	google *googleads.Service
	states *oauthstate.Store
}

// NewManager wires a Manager from its collaborators. states may be nil
// when the caller manages the OAuth state parameter itself.
func NewManager(store account.Store, google *googleads.Service, states *oauthstate.Store) *Manager {
	return &Manager{
		store:  store,
		google: google,
		states: states,
	}
}

// FromConfig builds the full dependency graph: credential cipher, Mongo
// store (with its unique account index), Google authenticator, ads API
// client and state store. rdb may be nil to skip state replay protection.
func FromConfig(ctx context.Context, cfg Config, db *mongo.Database, rdb redis.Cmdable) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var cipher *account.Cipher
	if len(cfg.CredentialKey) > 0 {
		var err error
		cipher, err = account.NewCipher(cfg.CredentialKey)
		if err != nil {
			return nil, err
		}
	}
	store := account.NewMongoStore(db, cipher)
	if err := store.EnsureIndexes(ctx); err != nil {
		return nil, err
	}
	auth := googleads.NewGoogleAuthenticator(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	api := googleads.NewRESTClient(cfg.DeveloperToken)
	google := googleads.NewService(auth, api, store, cfg.FallbackCustomerID)

	var states *oauthstate.Store
	if len(cfg.StateSecret) > 0 {
		states = oauthstate.NewStore(rdb, cfg.StateSecret, cfg.StateTTL)
	}
	return NewManager(store, google, states), nil
}

// AuthURL starts a connection flow for a datasource, returning the
// provider consent URL with a signed state parameter attached.
func (m *Manager) AuthURL(ctx context.Context, datasourceID, clientRef, userID string) (string, error) {
	ds, ok := platform.DatasourceByID(datasourceID)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownDatasource, datasourceID)
	}
	if !ds.Implemented {
		return "", ErrNotImplemented
	}
	state := ""
	if m.states != nil {
		issued, err := m.states.Issue(ctx, oauthstate.Payload{
			Datasource: datasourceID,
			ClientRef:  clientRef,
			UserID:     userID,
		})
		if err != nil {
			return "", err
		}
		state = issued
	}
	return m.google.AuthURL(state), nil
}

// RedeemState validates a returning state parameter and recovers the
// connection context it carried.
func (m *Manager) RedeemState(ctx context.Context, state string) (*oauthstate.Payload, error) {
	if m.states == nil {
		return nil, errors.New("adconnect: no state store configured")
	}
	return m.states.Redeem(ctx, state)
}

// Connect exchanges an authorization code for the datasource and
// persists the resulting connection for clientRef.
func (m *Manager) Connect(ctx context.Context, datasourceID, code, clientRef string) (*account.Connection, error) {
	ds, ok := platform.DatasourceByID(datasourceID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDatasource, datasourceID)
	}
	if !ds.Implemented {
		return nil, ErrNotImplemented
	}
	return m.google.Connect(ctx, code, clientRef)
}

// RefreshIfStale refreshes a credential set if its access token has
// expired, preserving the refresh token unless the provider rotates it.
func (m *Manager) RefreshIfStale(ctx context.Context, creds account.CredentialSet) (account.CredentialSet, error) {
	return m.google.RefreshIfStale(ctx, creds)
}

// GetCampaigns returns normalized campaign metrics for the trailing 30
// days for the given provider account id.
func (m *Manager) GetCampaigns(ctx context.Context, accountID string) ([]googleads.Campaign, error) {
	return m.google.GetCampaigns(ctx, accountID)
}

// CampaignSummary returns account-wide metric totals.
func (m *Manager) CampaignSummary(ctx context.Context, accountID string) (googleads.Summary, error) {
	return m.google.CampaignSummary(ctx, accountID)
}

// Disconnect removes a stored connection by record id. Idempotent.
func (m *Manager) Disconnect(ctx context.Context, connectionID string) error {
	return m.store.Remove(ctx, connectionID)
}

// MigrateNonCanonical sweeps stored Google connections whose identifier
// is not a canonical customer id and migrates them to the configured
// fallback. Maintenance operation, independent of the live OAuth flow.
func (m *Manager) MigrateNonCanonical(ctx context.Context) (int, error) {
	return m.google.MigrateNonCanonical(ctx)
}

// ConnectionStatus derives the per-datasource connection state from the
// credential store. Pure read projection; holds no state of its own.
func (m *Manager) ConnectionStatus(ctx context.Context) ([]platform.DatasourceStatus, platform.StatusSummary, error) {
	var statuses []platform.DatasourceStatus
	var summary platform.StatusSummary
	for _, ds := range platform.Datasources() {
		status := platform.DatasourceStatus{
			Datasource: ds,
			Status:     "disconnected",
			Capabilities: platform.Capabilities{
				CanConnect: true,
			},
		}
		conns, err := m.store.ListByPlatform(ctx, ds.Platform)
		if err != nil {
			return nil, platform.StatusSummary{}, err
		}
		if len(conns) > 0 {
			conn := conns[0]
			status.Status = "connected"
			status.Capabilities.CanDisconnect = true
			status.Capabilities.CanRefresh = true
			status.ConnectedAccount = &platform.ConnectedAccount{
				ConnectionID: conn.ID,
				AccountID:    conn.AccountID,
				Name:         conn.Name,
				ClientRef:    conn.ClientRef,
				LastUpdated:  conn.UpdatedAt.Unix(),
			}
			summary.Connected++
		} else {
			summary.Disconnected++
		}
		summary.Total++
		statuses = append(statuses, status)
	}
	return statuses, summary, nil
}
