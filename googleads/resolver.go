package googleads

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/adreporthq/adconnect/account"
	"github.com/adreporthq/adconnect/platform"
)

const customerResourcePrefix = "customers/"

// canonicalID matches Google's stable numeric customer identifiers.
var canonicalID = regexp.MustCompile(`^[0-9]{10}$`)

// IsCanonical reports whether id looks like a real customer id rather
// than a locally synthesized placeholder.
func IsCanonical(id string) bool {
	return canonicalID.MatchString(id)
}

// IsProvisional reports whether id was synthesized by a resolver
// fallback and still needs migration to a canonical customer id.
func IsProvisional(id string) bool {
	return strings.HasPrefix(id, "user-") || strings.HasPrefix(id, "account-")
}

// resolveAccount determines the provider account identifier for freshly
// exchanged credentials. The OAuth flow authenticates a person, not an
// ads account, and the accessible-accounts listing intermittently fails,
// so resolution walks a strict fallback chain; first success wins:
//
//  1. accessible-accounts discovery; take the first result
//  2. identity profile; synthesize "user-<profile id>"
//  3. current time; synthesize "account-<unix millis>"
//
// Steps 2 and 3 yield provisional identifiers that are migrated later.
// This never fails outright: step 3 always produces an id.
func (s *Service) resolveAccount(ctx context.Context, creds account.CredentialSet) (accountID, name string) {
	ids, err := s.api.ListAccessibleCustomers(ctx, creds.AccessToken)
	if err == nil && len(ids) > 0 {
		accountID = strings.TrimPrefix(ids[0], customerResourcePrefix)
		return accountID, "Google Ads Account " + accountID
	}
	slog.Warn("account discovery failed, falling back to user profile", "err", err)

	profile, perr := s.auth.Profile(ctx, creds.AccessToken)
	if perr == nil && profile.ID != "" {
		return "user-" + profile.ID, "Google Ads - " + profile.Email
	}
	slog.Warn("profile lookup failed, using timestamp identifier", "err", perr)

	return fmt.Sprintf("account-%d", time.Now().UnixMilli()), "Google Ads Account (Connected)"
}

// migrate rewrites a connection holding a provisional or otherwise
// non-canonical identifier to the operator-configured customer id. The
// rewrite is atomic for a single caller; concurrent migrations are
// last-writer-wins, which is fine because the target is deterministic.
func (s *Service) migrate(ctx context.Context, conn *account.Connection) (*account.Connection, error) {
	if s.fallbackCustomerID == "" {
		return nil, platform.E(platform.KindResolutionExhausted,
			"account id "+conn.AccountID+" is unresolved and no fallback customer id is configured; supply one manually")
	}
	newID := s.fallbackCustomerID
	newName := "Google Ads Account " + newID
	if err := s.store.Rename(ctx, conn.Platform, conn.AccountID, newID, newName); err != nil {
		return nil, err
	}
	slog.Info("migrated google ads account id", "from", conn.AccountID, "to", newID)
	conn.AccountID = newID
	conn.Name = newName
	return conn, nil
}

// MigrateNonCanonical is the maintenance operation that sweeps stored
// connections whose identifier fails the canonical check and migrates
// them, independent of any live OAuth flow. Returns the number migrated.
func (s *Service) MigrateNonCanonical(ctx context.Context) (int, error) {
	conns, err := s.store.ListByPlatform(ctx, platform.Google)
	if err != nil {
		return 0, err
	}
	migrated := 0
	for _, conn := range conns {
		if IsCanonical(conn.AccountID) || conn.AccountID == s.fallbackCustomerID {
			continue
		}
		if _, err := s.migrate(ctx, conn); err != nil {
			return migrated, err
		}
		migrated++
	}
	return migrated, nil
}
