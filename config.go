package adconnect

import (
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config carries everything FromConfig needs to assemble a Manager.
type Config struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	// DeveloperToken is the Google Ads API developer token sent with
	// every ads API call.
	DeveloperToken string

	// FallbackCustomerID is the operator-supplied customer id used to
	// migrate provisional account identifiers. Optional at load time;
	// migration fails with a classified error when it is needed and
	// unset. Never silently defaulted.
	FallbackCustomerID string

	// CredentialKey, when set, must be 32 bytes; stored credentials are
	// then encrypted at rest.
	CredentialKey []byte

	// StateSecret signs OAuth state parameters. Optional; without it the
	// manager issues no states.
	StateSecret []byte
	StateTTL    time.Duration
}

// LoadConfig reads configuration from the environment, using the same
// variable names the deployment already provisions.
func LoadConfig() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	for key, env := range map[string]string{
		"google_client_id":        "GOOGLE_CLIENT_ID",
		"google_client_secret":    "GOOGLE_CLIENT_SECRET",
		"google_redirect_uri":     "GOOGLE_REDIRECT_URI",
		"ads_developer_token":     "GOOGLE_ADS_DEVELOPER_TOKEN",
		"ads_fallback_customer":   "GOOGLE_ADS_CUSTOMER_ID",
		"credential_key_hex":      "ADCONNECT_CREDENTIAL_KEY",
		"oauth_state_secret":      "ADCONNECT_STATE_SECRET",
		"oauth_state_ttl_minutes": "ADCONNECT_STATE_TTL_MINUTES",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, err
		}
	}
	v.SetDefault("oauth_state_ttl_minutes", 15)

	cfg := Config{
		GoogleClientID:     v.GetString("google_client_id"),
		GoogleClientSecret: v.GetString("google_client_secret"),
		GoogleRedirectURL:  v.GetString("google_redirect_uri"),
		DeveloperToken:     v.GetString("ads_developer_token"),
		FallbackCustomerID: v.GetString("ads_fallback_customer"),
		StateTTL:           time.Duration(v.GetInt("oauth_state_ttl_minutes")) * time.Minute,
	}
	if secret := v.GetString("oauth_state_secret"); secret != "" {
		cfg.StateSecret = []byte(secret)
	}
	if keyHex := v.GetString("credential_key_hex"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil {
			return Config{}, fmt.Errorf("ADCONNECT_CREDENTIAL_KEY is not valid hex: %w", err)
		}
		cfg.CredentialKey = key
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations that cannot complete an OAuth flow.
// Fails loudly up front rather than at the first provider call.
func (c Config) Validate() error {
	if c.GoogleClientID == "" || c.GoogleClientSecret == "" {
		return errors.New("adconnect: GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are required")
	}
	if c.GoogleRedirectURL == "" {
		return errors.New("adconnect: GOOGLE_REDIRECT_URI is required")
	}
	if c.DeveloperToken == "" {
		return errors.New("adconnect: GOOGLE_ADS_DEVELOPER_TOKEN is required")
	}
	if len(c.CredentialKey) > 0 && len(c.CredentialKey) != 32 {
		return fmt.Errorf("adconnect: credential key must be 32 bytes, got %d", len(c.CredentialKey))
	}
	return nil
}
