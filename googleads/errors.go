package googleads

import (
	"errors"
	"strings"

	"google.golang.org/api/googleapi"

	"github.com/adreporthq/adconnect/platform"
)

// classifications maps provider error payloads to the error taxonomy.
// Evaluated in order, first match wins; keep this table as the single
// place the ads API's failure strings are interpreted.
var classifications = []struct {
	pattern string
	kind    platform.ErrorKind
	message string
}{
	{
		pattern: "DEVELOPER_TOKEN_NOT_APPROVED",
		kind:    platform.KindDeveloperTokenNotApproved,
		message: "developer token is not approved yet; apply for approval in the Google Ads API Center",
	},
	{
		pattern: "AUTHENTICATION_ERROR",
		kind:    platform.KindAuthenticationError,
		message: "authentication failed; reconnect the Google Ads account",
	},
	{
		pattern: "PERMISSION_DENIED",
		kind:    platform.KindPermissionDenied,
		message: "permission denied; check access to the Google Ads account",
	},
}

// classify turns a raw provider error payload into a classified error,
// preserving the payload verbatim for diagnostics.
func classify(raw string) *platform.Error {
	for _, c := range classifications {
		if strings.Contains(raw, c.pattern) {
			return &platform.Error{Kind: c.kind, Message: c.message, Detail: raw}
		}
	}
	return &platform.Error{
		Kind:    platform.KindUnknown,
		Message: "google ads request failed",
		Detail:  raw,
	}
}

// classifyErr classifies an error returned by the transport layer.
// googleapi errors carry the response body, which holds the ads API's
// error codes; anything else is classified on its message.
func classifyErr(err error) *platform.Error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		raw := gerr.Body
		if raw == "" {
			raw = gerr.Message
		}
		if raw == "" {
			raw = gerr.Error()
		}
		return classify(raw)
	}
	return classify(err.Error())
}
