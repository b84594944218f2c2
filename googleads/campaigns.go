package googleads

import (
	"context"
	"log/slog"
	"math"
)

// campaignQuery is the fixed reporting window: campaign-level metrics for
// the trailing 30 days, busiest campaigns first.
const campaignQuery = `
SELECT
  campaign.id,
  campaign.name,
  campaign.status,
  metrics.impressions,
  metrics.clicks,
  metrics.cost_micros,
  metrics.conversions
FROM campaign
WHERE segments.date DURING LAST_30_DAYS
ORDER BY metrics.impressions DESC`

// Campaign is the canonical metric record: raw counters plus derived
// rates. Derived fields are recomputed from the raw counters at
// normalization time and never persisted, so they cannot drift.
type Campaign struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Status      string  `json:"status"` // ENABLED, PAUSED or REMOVED
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Cost        float64 `json:"cost"` // account currency units
	Conversions float64 `json:"conversions"`
	CTR         float64 `json:"ctr"` // percentage
	CPC         float64 `json:"cpc"`
}

// Summary aggregates campaign metrics account-wide.
type Summary struct {
	TotalImpressions int64   `json:"total_impressions"`
	TotalClicks      int64   `json:"total_clicks"`
	TotalCost        float64 `json:"total_cost"`
	TotalConversions float64 `json:"total_conversions"`
	OverallCTR       float64 `json:"overall_ctr"`
	OverallCPC       float64 `json:"overall_cpc"`
	ConversionRate   float64 `json:"conversion_rate"`
}

// GetCampaigns loads the connection for accountID, migrates a
// provisional identifier if needed, refreshes stale credentials and
// returns the normalized campaign metrics for the trailing 30 days. An
// empty provider result is an empty slice, not an error.
func (s *Service) GetCampaigns(ctx context.Context, accountID string) ([]Campaign, error) {
	conn, err := s.loadConnection(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if IsProvisional(conn.AccountID) {
		conn, err = s.migrate(ctx, conn)
		if err != nil {
			return nil, err
		}
	}
	creds, err := s.freshCredentials(ctx, conn)
	if err != nil {
		return nil, err
	}
	rows, err := s.api.Search(ctx, conn.AccountID, creds.AccessToken, campaignQuery)
	if err != nil {
		return nil, err
	}
	slog.Info("fetched google ads campaigns", "account_id", conn.AccountID, "rows", len(rows))

	campaigns := make([]Campaign, 0, len(rows))
	for _, row := range rows {
		campaigns = append(campaigns, normalize(row))
	}
	return campaigns, nil
}

// CampaignSummary fetches campaigns and reduces them to account totals.
func (s *Service) CampaignSummary(ctx context.Context, accountID string) (Summary, error) {
	campaigns, err := s.GetCampaigns(ctx, accountID)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(campaigns), nil
}

// normalize maps a raw provider row to the canonical record. Cost comes
// back in micro-currency units; CTR and CPC are derived from the raw
// counters here rather than trusted from the provider.
func normalize(row Row) Campaign {
	c := Campaign{
		ID:          row.Campaign.ID,
		Name:        row.Campaign.Name,
		Status:      row.Campaign.Status,
		Impressions: parseInt64(row.Metrics.Impressions),
		Clicks:      parseInt64(row.Metrics.Clicks),
		Conversions: row.Metrics.Conversions,
	}
	c.Cost = float64(parseInt64(row.Metrics.CostMicros)) / 1e6
	if c.Impressions > 0 {
		c.CTR = round2(float64(c.Clicks) / float64(c.Impressions) * 100)
	}
	if c.Clicks > 0 {
		c.CPC = round2(c.Cost / float64(c.Clicks))
	}
	return c
}

// Summarize reduces campaigns to account-wide totals with overall rates
// derived from the summed counters.
func Summarize(campaigns []Campaign) Summary {
	var sum Summary
	for _, c := range campaigns {
		sum.TotalImpressions += c.Impressions
		sum.TotalClicks += c.Clicks
		sum.TotalCost += c.Cost
		sum.TotalConversions += c.Conversions
	}
	if sum.TotalImpressions > 0 {
		sum.OverallCTR = round2(float64(sum.TotalClicks) / float64(sum.TotalImpressions) * 100)
	}
	if sum.TotalClicks > 0 {
		sum.OverallCPC = round2(sum.TotalCost / float64(sum.TotalClicks))
		sum.ConversionRate = round2(sum.TotalConversions / float64(sum.TotalClicks) * 100)
	}
	return sum
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
