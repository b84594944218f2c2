package platform

// Platform identifies an advertising platform as stored on a connection record.
type Platform string

const (
	Google   Platform = "google"
	Facebook Platform = "facebook"
	TikTok   Platform = "tiktok"
)

// Datasource describes one connectable advertising datasource as presented
// to callers. Platforms may be declared here without being implemented;
// Implemented gates whether a connect attempt is accepted at all.
type Datasource struct {
	ID          string   `json:"id"` // e.g. "google-ads"
	Name        string   `json:"name"`
	Platform    Platform `json:"platform"`
	AuthType    string   `json:"auth_type"`
	Scopes      []string `json:"scopes"`
	Implemented bool     `json:"-"`
}

var datasources = []Datasource{
	{
		ID:          "google-ads",
		Name:        "Google Ads",
		Platform:    Google,
		AuthType:    "oauth2",
		Scopes:      []string{"https://www.googleapis.com/auth/adwords"},
		Implemented: true,
	},
	{
		ID:       "facebook-ads",
		Name:     "Facebook Ads",
		Platform: Facebook,
		AuthType: "oauth2",
		Scopes:   []string{"ads_read", "ads_management"},
	},
	{
		ID:       "tiktok-ads",
		Name:     "TikTok Ads",
		Platform: TikTok,
		AuthType: "oauth2",
		Scopes:   []string{"advertiser.read", "campaign.read"},
	},
}

// Datasources returns the declared datasource types in presentation order.
func Datasources() []Datasource {
	out := make([]Datasource, len(datasources))
	copy(out, datasources)
	return out
}

// DatasourceByID looks up a datasource by its public id ("google-ads").
func DatasourceByID(id string) (Datasource, bool) {
	for _, ds := range datasources {
		if ds.ID == id {
			return ds, true
		}
	}
	return Datasource{}, false
}

// ConnectedAccount is the non-credential projection of a stored connection
// embedded in a DatasourceStatus.
type ConnectedAccount struct {
	ConnectionID string `json:"id"`
	AccountID    string `json:"account_id"`
	Name         string `json:"name"`
	ClientRef    string `json:"client,omitempty"`
	LastUpdated  int64  `json:"last_updated"`
}

// Capabilities reports which actions are available for a datasource in its
// current connection state.
type Capabilities struct {
	CanConnect    bool `json:"canConnect"`
	CanDisconnect bool `json:"canDisconnect"`
	CanRefresh    bool `json:"canRefresh"`
}

// DatasourceStatus is the per-datasource projection returned by the
// connection state tracker.
type DatasourceStatus struct {
	Datasource
	Status           string            `json:"status"` // "connected" or "disconnected"
	ConnectedAccount *ConnectedAccount `json:"connected_account,omitempty"`
	Capabilities     Capabilities      `json:"capabilities"`
}

// StatusSummary counts datasources by connection state.
type StatusSummary struct {
	Total        int `json:"total"`
	Connected    int `json:"connected"`
	Disconnected int `json:"disconnected"`
}
