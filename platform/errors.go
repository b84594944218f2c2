package platform

import "errors"

// ErrorKind classifies a failure surfaced by the connection manager.
// Every external-call failure is re-classified into one of these before
// leaving the component; raw transport errors never escape.
type ErrorKind string

const (
	// KindAuthExchange covers a rejected authorization code (bad, expired
	// or already consumed). Retrying with the same code will not succeed.
	KindAuthExchange ErrorKind = "auth_exchange_error"

	// KindAuthRefresh covers a revoked refresh token. Terminal: the user
	// must re-authorize the connection.
	KindAuthRefresh ErrorKind = "auth_refresh_error"

	// KindResolutionExhausted means every account resolution fallback
	// failed and no configured customer id is available.
	KindResolutionExhausted ErrorKind = "account_resolution_exhausted"

	// KindDeveloperTokenNotApproved means the ads API developer token has
	// not been approved for production use.
	KindDeveloperTokenNotApproved ErrorKind = "developer_token_not_approved"

	// KindAuthenticationError means the provider rejected the credentials
	// on an API call; the account should be reconnected.
	KindAuthenticationError ErrorKind = "authentication_error"

	// KindPermissionDenied means the authenticated user lacks access to
	// the requested ads account.
	KindPermissionDenied ErrorKind = "permission_denied"

	// KindAccountNotFound is a store miss with no fallback available.
	KindAccountNotFound ErrorKind = "account_not_found"

	// KindUnknown preserves an unclassified provider message for
	// diagnostics.
	KindUnknown ErrorKind = "unknown"
)

// Error carries a classified failure with a human-actionable message and,
// optionally, the raw provider payload that produced it.
type Error struct {
	Kind    ErrorKind
	Message string
	Detail  string // raw provider message, preserved verbatim
	cause   error
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Message + ": " + e.Detail
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// E builds a classified error.
func E(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds a classified error around an underlying cause.
func Wrap(kind ErrorKind, message string, cause error) *Error {
	e := &Error{Kind: kind, Message: message, cause: cause}
	if cause != nil {
		e.Detail = cause.Error()
	}
	return e
}

// KindOf extracts the classification from err, or KindUnknown for errors
// that did not originate in this module.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given classification.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
