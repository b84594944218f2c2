// Package oauthstate issues and redeems the OAuth state parameter that
// carries connection context (datasource, client, user) through the
// provider's consent redirect. States are HMAC-signed and single-use:
// a redis-backed nonce is consumed on redeem.
package oauthstate

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

const noncePrefix = "oauthstate-"

var (
	ErrInvalidState = errors.New("oauthstate: invalid or tampered state")
	ErrStateExpired = errors.New("oauthstate: state expired or already used")
)

// Payload is the connection context embedded in the state parameter.
type Payload struct {
	Datasource string `json:"type"`
	ClientRef  string `json:"client_id"`
	UserID     string `json:"user_id"`
	Nonce      string `json:"nonce,omitempty"`
}

// Store issues signed state parameters and tracks their nonces.
type Store struct {
	redis  redis.Cmdable
	secret []byte
	ttl    time.Duration

	newNonce func() string
}

// NewStore constructs a Store. redis may be nil, in which case replay
// protection is skipped and states are validated by signature alone.
func NewStore(cmdable redis.Cmdable, secret []byte, ttl time.Duration) *Store {
	return &Store{
		redis:    cmdable,
		secret:   secret,
		ttl:      ttl,
		newNonce: func() string { return uuid.New().String() },
	}
}

// Issue signs a state parameter for p and records its nonce.
func (s *Store) Issue(ctx context.Context, p Payload) (string, error) {
	p.Nonce = s.newNonce()
	state, err := Encode(p, s.secret)
	if err != nil {
		return "", err
	}
	if s.redis != nil {
		if err := s.redis.Set(ctx, noncePrefix+p.Nonce, "1", s.ttl).Err(); err != nil {
			return "", err
		}
	}
	return state, nil
}

// Redeem verifies a state parameter and consumes its nonce. A state can
// be redeemed at most once within the configured TTL.
func (s *Store) Redeem(ctx context.Context, state string) (*Payload, error) {
	p, err := Decode(state, s.secret)
	if err != nil {
		return nil, err
	}
	if s.redis != nil {
		n, err := s.redis.Del(ctx, noncePrefix+p.Nonce).Result()
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, ErrStateExpired
		}
	}
	return p, nil
}

// Encode serializes and signs a payload: base64(json)|signature.
func Encode(p Payload, secret []byte) (string, error) {
	jsonData, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	value := base64.URLEncoding.EncodeToString(jsonData)
	return fmt.Sprintf("%s|%s", value, computeHMAC(value, secret)), nil
}

// Decode verifies the signature and deserializes the payload.
func Decode(state string, secret []byte) (*Payload, error) {
	value, sig, ok := strings.Cut(state, "|")
	if !ok || !validateHMAC(value, sig, secret) {
		return nil, ErrInvalidState
	}
	jsonData, err := base64.URLEncoding.DecodeString(value)
	if err != nil {
		return nil, ErrInvalidState
	}
	var p Payload
	if err := json.Unmarshal(jsonData, &p); err != nil {
		return nil, ErrInvalidState
	}
	return &p, nil
}

// Compute HMAC-SHA256 signature of a message using secret
func computeHMAC(message string, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(message))
	return base64.URLEncoding.EncodeToString(mac.Sum(nil))
}

// Validate HMAC signature
func validateHMAC(message, sig string, secret []byte) bool {
	expected := computeHMAC(message, secret)
	return hmac.Equal([]byte(sig), []byte(expected))
}
