package googleads

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/adreporthq/adconnect/account"
	"github.com/adreporthq/adconnect/platform"
)

// AdWordsScope is the OAuth scope required for Google Ads API access.
const AdWordsScope = "https://www.googleapis.com/auth/adwords"

const userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// Profile is the identity provider's basic profile, used as the second
// resolver fallback when account discovery fails.
type Profile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Authenticator covers the identity-provider side of a connection: the
// consent URL, the one-time code exchange, token refresh and profile
// lookup. Credentials are passed explicitly on every call; nothing is
// kept on the implementation, so concurrent calls for different
// connections cannot clobber each other.
type Authenticator interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (account.CredentialSet, error)
	Refresh(ctx context.Context, creds account.CredentialSet) (account.CredentialSet, error)
	Profile(ctx context.Context, accessToken string) (Profile, error)
}

var _ Authenticator = &GoogleAuthenticator{}

// GoogleAuthenticator implements Authenticator against Google's OAuth2
// endpoints.
type GoogleAuthenticator struct {
	cfg        *oauth2.Config
	httpClient *http.Client
}

// NewGoogleAuthenticator builds an authenticator for the given OAuth
// client. Requests offline access so a refresh token is issued.
func NewGoogleAuthenticator(clientID, clientSecret, redirectURL string) *GoogleAuthenticator {
	return &GoogleAuthenticator{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{AdWordsScope},
			Endpoint:     google.Endpoint,
		},
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// AuthURL returns the consent URL. Forces the consent prompt so Google
// re-issues a refresh token even when the user already granted access.
func (g *GoogleAuthenticator) AuthURL(state string) string {
	return g.cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// Exchange performs the one-time authorization-code exchange. A rejected
// code (invalid, expired or already consumed) is classified as an auth
// exchange error; callers must not retry with the same code.
func (g *GoogleAuthenticator) Exchange(ctx context.Context, code string) (account.CredentialSet, error) {
	tok, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		return account.CredentialSet{}, platform.Wrap(platform.KindAuthExchange,
			"authorization code was rejected; restart the connection flow", err)
	}
	return credentialsFromToken(tok, ""), nil
}

// Refresh exchanges the refresh token for a new access token. The
// original refresh token is preserved unless Google rotates it. A revoked
// refresh token is terminal and surfaces as an auth refresh error.
func (g *GoogleAuthenticator) Refresh(ctx context.Context, creds account.CredentialSet) (account.CredentialSet, error) {
	if creds.RefreshToken == "" {
		return account.CredentialSet{}, platform.E(platform.KindAuthRefresh,
			"no refresh token stored; reconnect the account")
	}
	src := g.cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: creds.RefreshToken})
	tok, err := src.Token()
	if err != nil {
		return account.CredentialSet{}, platform.Wrap(platform.KindAuthRefresh,
			"refresh token was rejected; reconnect the account", err)
	}
	return credentialsFromToken(tok, creds.RefreshToken), nil
}

// Profile fetches the authenticated user's basic profile.
func (g *GoogleAuthenticator) Profile(ctx context.Context, accessToken string) (Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, userInfoURL, http.NoBody)
	if err != nil {
		return Profile{}, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return Profile{}, fmt.Errorf("fetch user profile: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return Profile{}, fmt.Errorf("user profile request failed with status %d", resp.StatusCode)
	}

	var p Profile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return Profile{}, fmt.Errorf("decode user profile: %w", err)
	}
	return p, nil
}

func credentialsFromToken(tok *oauth2.Token, fallbackRefresh string) account.CredentialSet {
	creds := account.CredentialSet{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
	}
	if creds.RefreshToken == "" {
		creds.RefreshToken = fallbackRefresh
	}
	return creds
}
