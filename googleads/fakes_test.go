package googleads

import (
	"context"
	"time"

	"github.com/adreporthq/adconnect/account"
)

// fakeAuth provides customizable hooks for Authenticator behavior.
type fakeAuth struct {
	ExchangeFunc func(ctx context.Context, code string) (account.CredentialSet, error)
	RefreshFunc  func(ctx context.Context, creds account.CredentialSet) (account.CredentialSet, error)
	ProfileFunc  func(ctx context.Context, accessToken string) (Profile, error)

	refreshCalls int
}

var _ Authenticator = &fakeAuth{}

func (f *fakeAuth) AuthURL(state string) string {
	return "https://accounts.example.com/auth?state=" + state
}

func (f *fakeAuth) Exchange(ctx context.Context, code string) (account.CredentialSet, error) {
	if f.ExchangeFunc != nil {
		return f.ExchangeFunc(ctx, code)
	}
	return validCreds(), nil
}

func (f *fakeAuth) Refresh(ctx context.Context, creds account.CredentialSet) (account.CredentialSet, error) {
	f.refreshCalls++
	if f.RefreshFunc != nil {
		return f.RefreshFunc(ctx, creds)
	}
	refreshed := creds
	refreshed.AccessToken = "refreshed-access"
	refreshed.Expiry = time.Now().Add(time.Hour)
	return refreshed, nil
}

func (f *fakeAuth) Profile(ctx context.Context, accessToken string) (Profile, error) {
	if f.ProfileFunc != nil {
		return f.ProfileFunc(ctx, accessToken)
	}
	return Profile{ID: "abc123", Email: "owner@example.com"}, nil
}

// fakeAPI provides customizable hooks for AdsAPI behavior and records
// the customer ids it was queried with.
type fakeAPI struct {
	ListFunc   func(ctx context.Context, accessToken string) ([]string, error)
	SearchFunc func(ctx context.Context, customerID, accessToken, query string) ([]Row, error)

	searchedCustomers []string
	searchedTokens    []string
}

var _ AdsAPI = &fakeAPI{}

func (f *fakeAPI) ListAccessibleCustomers(ctx context.Context, accessToken string) ([]string, error) {
	if f.ListFunc != nil {
		return f.ListFunc(ctx, accessToken)
	}
	return []string{"customers/1234567890"}, nil
}

func (f *fakeAPI) Search(ctx context.Context, customerID, accessToken, query string) ([]Row, error) {
	f.searchedCustomers = append(f.searchedCustomers, customerID)
	f.searchedTokens = append(f.searchedTokens, accessToken)
	if f.SearchFunc != nil {
		return f.SearchFunc(ctx, customerID, accessToken, query)
	}
	return nil, nil
}

func validCreds() account.CredentialSet {
	return account.CredentialSet{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour),
	}
}

func staleCreds() account.CredentialSet {
	return account.CredentialSet{
		AccessToken:  "stale-access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(-time.Hour),
	}
}

func campaignRow(id, name, status string, impressions, clicks, costMicros string, conversions float64) Row {
	var row Row
	row.Campaign.ID = id
	row.Campaign.Name = name
	row.Campaign.Status = status
	row.Metrics.Impressions = impressions
	row.Metrics.Clicks = clicks
	row.Metrics.CostMicros = costMicros
	row.Metrics.Conversions = conversions
	return row
}
