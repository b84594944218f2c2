package googleads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"google.golang.org/api/googleapi"
)

const defaultEndpoint = "https://googleads.googleapis.com/v17"

// Row is one raw result from a campaign-level ads query. The REST API
// renders int64 metrics as decimal strings.
type Row struct {
	Campaign struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Status string `json:"status"`
	} `json:"campaign"`
	Metrics struct {
		Impressions string  `json:"impressions"`
		Clicks      string  `json:"clicks"`
		CostMicros  string  `json:"costMicros"`
		Conversions float64 `json:"conversions"`
	} `json:"metrics"`
}

// AdsAPI covers the advertising-platform side of a connection. The
// accessible-customers listing is known to be unreliable (it can 404 or
// demand unapproved elevated access); callers must be prepared to fall
// back when it fails.
type AdsAPI interface {
	ListAccessibleCustomers(ctx context.Context, accessToken string) ([]string, error)
	Search(ctx context.Context, customerID, accessToken, query string) ([]Row, error)
}

var _ AdsAPI = &RESTClient{}

// RESTClient talks to the Google Ads REST endpoints directly. There is no
// official Go client for the Ads API, so requests are built by hand with
// the developer token header the API requires.
type RESTClient struct {
	httpClient     *http.Client
	endpoint       string
	developerToken string
}

// NewRESTClient builds an ads API client using the given developer token.
func NewRESTClient(developerToken string) *RESTClient {
	return &RESTClient{
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		endpoint:       defaultEndpoint,
		developerToken: developerToken,
	}
}

// SetEndpoint overrides the API base URL, for tests.
func (c *RESTClient) SetEndpoint(endpoint string) { c.endpoint = endpoint }

func (c *RESTClient) do(ctx context.Context, method, url, accessToken string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("developer-token", c.developerToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if err := googleapi.CheckResponse(resp); err != nil {
		return err
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// ListAccessibleCustomers lists the customer resource names reachable
// with the access token, e.g. "customers/1234567890".
func (c *RESTClient) ListAccessibleCustomers(ctx context.Context, accessToken string) ([]string, error) {
	var out struct {
		ResourceNames []string `json:"resourceNames"`
	}
	url := c.endpoint + "/customers:listAccessibleCustomers"
	if err := c.do(ctx, http.MethodGet, url, accessToken, nil, &out); err != nil {
		return nil, classifyErr(err)
	}
	return out.ResourceNames, nil
}

// Search runs a GAQL query against one customer, following page tokens
// until the result set is exhausted.
func (c *RESTClient) Search(ctx context.Context, customerID, accessToken, query string) ([]Row, error) {
	url := fmt.Sprintf("%s/customers/%s/googleAds:search", c.endpoint, customerID)

	var rows []Row
	pageToken := ""
	for {
		body := map[string]string{"query": query}
		if pageToken != "" {
			body["pageToken"] = pageToken
		}
		var out struct {
			Results       []Row  `json:"results"`
			NextPageToken string `json:"nextPageToken"`
		}
		if err := c.do(ctx, http.MethodPost, url, accessToken, body, &out); err != nil {
			return nil, classifyErr(err)
		}
		rows = append(rows, out.Results...)
		if out.NextPageToken == "" {
			return rows, nil
		}
		pageToken = out.NextPageToken
	}
}

func parseInt64(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
