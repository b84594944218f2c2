package adconnect

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adreporthq/adconnect/account"
	"github.com/adreporthq/adconnect/googleads"
	"github.com/adreporthq/adconnect/oauthstate"
	"github.com/adreporthq/adconnect/platform"
)

type stubAuth struct{}

func (stubAuth) AuthURL(state string) string { return "https://accounts.example.com/auth?state=" + state }

func (stubAuth) Exchange(ctx context.Context, code string) (account.CredentialSet, error) {
	return account.CredentialSet{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour),
	}, nil
}

func (stubAuth) Refresh(ctx context.Context, creds account.CredentialSet) (account.CredentialSet, error) {
	creds.AccessToken = "refreshed"
	creds.Expiry = time.Now().Add(time.Hour)
	return creds, nil
}

func (stubAuth) Profile(ctx context.Context, accessToken string) (googleads.Profile, error) {
	return googleads.Profile{ID: "abc123", Email: "owner@example.com"}, nil
}

type stubAPI struct{}

func (stubAPI) ListAccessibleCustomers(ctx context.Context, accessToken string) ([]string, error) {
	return []string{"customers/1234567890"}, nil
}

func (stubAPI) Search(ctx context.Context, customerID, accessToken, query string) ([]googleads.Row, error) {
	return nil, nil
}

func newTestManager() (*Manager, *account.MemStore) {
	store := account.NewMemStore()
	google := googleads.NewService(stubAuth{}, stubAPI{}, store, "1234567890")
	states := oauthstate.NewStore(nil, []byte("state-secret"), 15*time.Minute)
	return NewManager(store, google, states), store
}

func TestConnectThenStatus(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager()

	conn, err := m.Connect(ctx, "google-ads", "valid-code", "client-1")
	require.NoError(t, err)
	assert.Equal(t, "1234567890", conn.AccountID)

	conns, err := store.ListByPlatform(ctx, platform.Google)
	require.NoError(t, err)
	require.Len(t, conns, 1)

	statuses, summary, err := m.ConnectionStatus(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 3)
	assert.Equal(t, platform.StatusSummary{Total: 3, Connected: 1, Disconnected: 2}, summary)

	byID := map[string]platform.DatasourceStatus{}
	for _, s := range statuses {
		byID[s.ID] = s
	}
	google := byID["google-ads"]
	assert.Equal(t, "connected", google.Status)
	require.NotNil(t, google.ConnectedAccount)
	assert.Equal(t, conn.ID, google.ConnectedAccount.ConnectionID)
	assert.Equal(t, platform.Capabilities{CanConnect: true, CanDisconnect: true, CanRefresh: true}, google.Capabilities)

	facebook := byID["facebook-ads"]
	assert.Equal(t, "disconnected", facebook.Status)
	assert.Nil(t, facebook.ConnectedAccount)
	assert.Equal(t, platform.Capabilities{CanConnect: true}, facebook.Capabilities)
}

func TestDisconnectIdempotent(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager()

	conn, err := m.Connect(ctx, "google-ads", "valid-code", "client-1")
	require.NoError(t, err)

	require.NoError(t, m.Disconnect(ctx, conn.ID))
	require.NoError(t, m.Disconnect(ctx, conn.ID))

	_, summary, err := m.ConnectionStatus(ctx)
	require.NoError(t, err)
	assert.Zero(t, summary.Connected)
}

func TestUnimplementedDatasources(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager()

	_, err := m.Connect(ctx, "facebook-ads", "code", "client-1")
	assert.ErrorIs(t, err, ErrNotImplemented)

	_, err = m.AuthURL(ctx, "tiktok-ads", "client-1", "user-1")
	assert.ErrorIs(t, err, ErrNotImplemented)

	_, err = m.Connect(ctx, "linkedin-ads", "code", "client-1")
	assert.ErrorIs(t, err, ErrUnknownDatasource)
	assert.NotErrorIs(t, err, ErrNotImplemented)

	_, err = m.AuthURL(ctx, "linkedin-ads", "client-1", "user-1")
	assert.ErrorIs(t, err, ErrUnknownDatasource)
}

func TestAuthURLCarriesRedeemableState(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager()

	url, err := m.AuthURL(ctx, "google-ads", "client-1", "user-9")
	require.NoError(t, err)

	_, state, found := strings.Cut(url, "state=")
	require.True(t, found)

	p, err := m.RedeemState(ctx, state)
	require.NoError(t, err)
	assert.Equal(t, "google-ads", p.Datasource)
	assert.Equal(t, "client-1", p.ClientRef)
	assert.Equal(t, "user-9", p.UserID)
}

func TestMigrateNonCanonicalThroughManager(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager()
	_, err := store.Put(ctx, platform.Google, "account-1700000000000", "client-1",
		account.CredentialSet{AccessToken: "a", RefreshToken: "r", Expiry: time.Now().Add(time.Hour)}, "")
	require.NoError(t, err)

	migrated, err := m.MigrateNonCanonical(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, migrated)

	campaigns, err := m.GetCampaigns(ctx, "1234567890")
	require.NoError(t, err)
	assert.Empty(t, campaigns)
}
