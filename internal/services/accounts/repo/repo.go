// Package repo provides the accounts repository implementation.
package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"warden/internal/modkit/repokit"
	perr "warden/internal/platform/errors"
	"warden/internal/services/accounts/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage is the full accounts persistence surface
type Storage interface {
	domain.EntitlementPort
	domain.AdminPort
}

// GetTier implements domain.EntitlementPort
// unknown owners are free tier, not an error
func (s *pg) GetTier(ctx context.Context, ownerID string) (domain.Tier, error) {
	var tier string
	err := s.q.QueryRow(ctx,
		`SELECT tier FROM accounts WHERE owner_id = $1`, ownerID,
	).Scan(&tier)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.TierFree, nil
	}
	if err != nil {
		return "", perr.FromPostgres(err, "get tier")
	}
	t := domain.Tier(tier)
	if !t.Valid() {
		return "", perr.Internalf("account %s has unknown tier %q", ownerID, tier)
	}
	return t, nil
}

// GetMonthlyCap implements domain.EntitlementPort
func (s *pg) GetMonthlyCap(ctx context.Context, ownerID string) (int64, error) {
	var cap int64
	err := s.q.QueryRow(ctx,
		`SELECT monthly_cap FROM accounts WHERE owner_id = $1`, ownerID,
	).Scan(&cap)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, perr.FromPostgres(err, "get monthly cap")
	}
	return cap, nil
}

// GetWallet implements domain.EntitlementPort
func (s *pg) GetWallet(ctx context.Context, ownerID string) (string, error) {
	var wallet string
	err := s.q.QueryRow(ctx,
		`SELECT COALESCE(wallet, '') FROM accounts WHERE owner_id = $1`, ownerID,
	).Scan(&wallet)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", perr.FromPostgres(err, "get wallet")
	}
	return wallet, nil
}

// UpsertAccount implements domain.AdminPort
func (s *pg) UpsertAccount(ctx context.Context, a domain.Account) error {
	if !a.Tier.Valid() {
		return perr.InvalidArgf("unknown tier %q", a.Tier)
	}
	_, err := s.q.Exec(ctx, `
		INSERT INTO accounts (owner_id, tier, wallet, monthly_cap)
		VALUES ($1, $2, NULLIF($3,''), $4)
		ON CONFLICT (owner_id) DO UPDATE
		SET tier = EXCLUDED.tier, wallet = EXCLUDED.wallet, monthly_cap = EXCLUDED.monthly_cap`,
		a.OwnerID, string(a.Tier), a.Wallet, a.MonthlyCap,
	)
	if err != nil {
		return perr.FromPostgres(err, "upsert account")
	}
	return nil
}
