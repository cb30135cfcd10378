// Package service implements write-time validation for rules
package service

import (
	"context"

	"github.com/go-playground/validator/v10"

	"warden/internal/core/match"
	perr "warden/internal/platform/errors"
	"warden/internal/services/rules/domain"
)

// WalletPort resolves an owner's bound wallet address
// transfer alert rules require one at creation time
type WalletPort interface {
	GetWallet(ctx context.Context, ownerID string) (string, error)
}

// Validator implements domain.ValidatorPort
type Validator struct {
	v       *validator.Validate
	wallets WalletPort
}

// NewValidator constructs a Validator
func NewValidator(wallets WalletPort) *Validator {
	return &Validator{
		v:       validator.New(validator.WithRequiredStructEnabled()),
		wallets: wallets,
	}
}

var alertKinds = map[match.AlertKind]bool{
	match.AlertExpiry:   true,
	match.AlertSale:     true,
	match.AlertTransfer: true,
	match.AlertPrice:    true,
	match.AlertAuction:  true,
}

var actionKinds = map[match.ActionKind]bool{
	match.ActionRenew: true,
	match.ActionBuy:   true,
	match.ActionBid:   true,
}

// ValidateAlertRule implements domain.ValidatorPort
func (s *Validator) ValidateAlertRule(ctx context.Context, r domain.AlertRule) error {
	if r.OwnerID == "" {
		return perr.Validationf("owner id is required")
	}
	if !alertKinds[r.Kind] {
		return perr.Validationf("unknown alert kind %q", r.Kind)
	}
	if r.Platform == "" {
		return perr.Validationf("platform is required")
	}

	// exactly one of domain / pattern
	if (r.Domain == "") == (r.DomainPattern == "") {
		return perr.Validationf("exactly one of domain or domain_pattern must be set")
	}
	if r.DomainPattern != "" {
		if _, err := match.CompilePattern(r.DomainPattern); err != nil {
			return perr.Wrapf(err, perr.ErrorCodeValidation, "malformed domain pattern %q", r.DomainPattern)
		}
	}

	if err := s.v.StructCtx(ctx, r.Conditions); err != nil {
		return perr.Wrap(err, perr.ErrorCodeValidation, "invalid conditions")
	}
	if err := checkBounds(r.Conditions.MinPrice, r.Conditions.MaxPrice); err != nil {
		return err
	}

	// transfer rules are matched against the owner's wallet, so the binding
	// must exist before the rule does
	if r.Kind == match.AlertTransfer {
		wallet, err := s.wallets.GetWallet(ctx, r.OwnerID)
		if err != nil {
			return err
		}
		if wallet == "" {
			return perr.Validationf("transfer rules require a bound wallet address")
		}
	}
	return nil
}

// ValidateAutoActionRule implements domain.ValidatorPort
func (s *Validator) ValidateAutoActionRule(ctx context.Context, r domain.AutoActionRule) error {
	if r.OwnerID == "" {
		return perr.Validationf("owner id is required")
	}
	if !actionKinds[r.Kind] {
		return perr.Validationf("unknown action kind %q", r.Kind)
	}
	if r.MaxAmount <= 0 {
		return perr.Validationf("max amount must be positive")
	}

	if err := s.v.StructCtx(ctx, r.Conditions); err != nil {
		return perr.Wrap(err, perr.ErrorCodeValidation, "invalid conditions")
	}
	for _, p := range r.Conditions.DomainPatterns {
		if _, err := match.CompilePattern(p); err != nil {
			return perr.Wrapf(err, perr.ErrorCodeValidation, "malformed domain pattern %q", p)
		}
	}
	if r.Kind == match.ActionBid && r.Conditions.StopPrice > 0 && r.Conditions.BidStep <= 0 {
		return perr.Validationf("bid rules with a stop price need a positive bid step")
	}
	return nil
}

func checkBounds(min, max *int64) error {
	if min != nil && *min < 0 {
		return perr.Validationf("min price must not be negative")
	}
	if max != nil && *max < 0 {
		return perr.Validationf("max price must not be negative")
	}
	if min != nil && max != nil && *min > *max {
		return perr.Validationf("min price exceeds max price")
	}
	return nil
}
