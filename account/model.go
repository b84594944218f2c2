package account

import (
	"time"

	"github.com/adreporthq/adconnect/platform"
)

// CredentialSet is the opaque OAuth bundle stored with a connection.
// It is usable for API calls only while now < Expiry; past that it is
// stale and must be refreshed (carrying the refresh token forward),
// not discarded.
type CredentialSet struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"` // may be absent on re-consent
	TokenType    string    `json:"token_type,omitempty"`
	Expiry       time.Time `json:"expiry"`
}

// Stale reports whether the access token has passed its expiry.
func (c CredentialSet) Stale() bool {
	return c.StaleAt(time.Now())
}

// StaleAt reports staleness against an explicit clock.
func (c CredentialSet) StaleAt(now time.Time) bool {
	return !now.Before(c.Expiry)
}

// Connection associates one client with one advertising-platform account,
// including its credentials. Uniquely identified by (Platform, AccountID);
// ID is the stable record id used for disconnects.
type Connection struct {
	ID          string            `json:"id"`
	Platform    platform.Platform `json:"platform"`
	AccountID   string            `json:"account_id"`
	ClientRef   string            `json:"client"`
	Name        string            `json:"name"`
	Credentials CredentialSet     `json:"-"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}
