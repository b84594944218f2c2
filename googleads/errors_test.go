package googleads

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"

	"github.com/adreporthq/adconnect/platform"
)

func TestClassifyKnownPatterns(t *testing.T) {
	cases := []struct {
		raw  string
		kind platform.ErrorKind
	}{
		{`{"errorCode":"DEVELOPER_TOKEN_NOT_APPROVED"}`, platform.KindDeveloperTokenNotApproved},
		{"rpc error: AUTHENTICATION_ERROR: oauth token invalid", platform.KindAuthenticationError},
		{"PERMISSION_DENIED: caller lacks access", platform.KindPermissionDenied},
		{"something else entirely", platform.KindUnknown},
	}
	for _, tc := range cases {
		err := classify(tc.raw)
		assert.Equal(t, tc.kind, err.Kind, "payload %q", tc.raw)
		assert.Equal(t, tc.raw, err.Detail, "raw payload must be preserved")
	}
}

func TestClassifyOrderFirstMatchWins(t *testing.T) {
	// a payload carrying multiple codes classifies on the first table entry
	raw := "AUTHENTICATION_ERROR after DEVELOPER_TOKEN_NOT_APPROVED"
	assert.Equal(t, platform.KindDeveloperTokenNotApproved, classify(raw).Kind)
}

func TestClassifyErrGoogleAPIBody(t *testing.T) {
	gerr := &googleapi.Error{
		Code: http.StatusForbidden,
		Body: `{"error":{"status":"PERMISSION_DENIED"}}`,
	}
	err := classifyErr(gerr)
	assert.Equal(t, platform.KindPermissionDenied, err.Kind)
	assert.Contains(t, err.Detail, "PERMISSION_DENIED")
}

func TestClassifyErrPlainError(t *testing.T) {
	err := classifyErr(assertableError("dial tcp: connection refused"))
	assert.Equal(t, platform.KindUnknown, err.Kind)
	assert.Equal(t, "dial tcp: connection refused", err.Detail)
}

type assertableError string

func (e assertableError) Error() string { return string(e) }
