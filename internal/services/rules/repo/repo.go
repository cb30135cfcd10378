// Package repo provides the rules repository implementation.
package repo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"warden/internal/core/match"
	"warden/internal/modkit/repokit"
	perr "warden/internal/platform/errors"
	"warden/internal/services/rules/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage is the full rules persistence surface
type Storage interface {
	domain.ReaderPort
	domain.WriterPort
	domain.AdminPort
}

const alertRuleCols = `
	id::text, owner_id, kind, COALESCE(domain, ''), COALESCE(domain_pattern, ''),
	conditions, platform, active, trigger_count, last_triggered_at, created_at`

// FindAlertRulesByDomain implements domain.ReaderPort
func (s *pg) FindAlertRulesByDomain(
	ctx context.Context,
	dom string,
	kind match.AlertKind,
) ([]domain.AlertRule, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+alertRuleCols+`
		FROM alert_rules
		WHERE active AND kind = $1 AND domain = $2
		ORDER BY created_at`,
		string(kind), dom,
	)
	if err != nil {
		return nil, perr.FromPostgres(err, "find alert rules by domain")
	}
	defer rows.Close()
	return scanAlertRules(rows)
}

// FindAlertRulesByPattern implements domain.ReaderPort
func (s *pg) FindAlertRulesByPattern(ctx context.Context, kind match.AlertKind) ([]domain.AlertRule, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+alertRuleCols+`
		FROM alert_rules
		WHERE active AND kind = $1 AND domain_pattern IS NOT NULL AND domain_pattern <> ''
		ORDER BY created_at`,
		string(kind),
	)
	if err != nil {
		return nil, perr.FromPostgres(err, "find alert rules by pattern")
	}
	defer rows.Close()
	return scanAlertRules(rows)
}

// FindConcreteExpiryRules implements domain.ReaderPort
func (s *pg) FindConcreteExpiryRules(ctx context.Context) ([]domain.AlertRule, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+alertRuleCols+`
		FROM alert_rules
		WHERE active AND kind = $1 AND domain IS NOT NULL AND domain <> ''
		ORDER BY created_at`,
		string(match.AlertExpiry),
	)
	if err != nil {
		return nil, perr.FromPostgres(err, "find concrete expiry rules")
	}
	defer rows.Close()
	return scanAlertRules(rows)
}

// FindAutoActionRules implements domain.ReaderPort
func (s *pg) FindAutoActionRules(ctx context.Context, kind match.ActionKind) ([]domain.AutoActionRule, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id::text, owner_id, kind, conditions, max_amount, active,
			execution_count, last_executed_at, created_at
		FROM auto_action_rules
		WHERE active AND kind = $1
		ORDER BY created_at`,
		string(kind),
	)
	if err != nil {
		return nil, perr.FromPostgres(err, "find auto action rules")
	}
	defer rows.Close()

	var out []domain.AutoActionRule
	for rows.Next() {
		var (
			r     domain.AutoActionRule
			kindS string
			raw   []byte
		)
		if err := rows.Scan(
			&r.ID, &r.OwnerID, &kindS, &raw, &r.MaxAmount, &r.Active,
			&r.ExecutionCount, &r.LastExecuted, &r.CreatedAt,
		); err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeDB, "scan auto action rule")
		}
		r.Kind = match.ActionKind(kindS)
		if err := json.Unmarshal(raw, &r.Conditions); err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeDB, "decode conditions for rule %s", r.ID)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// IncrementAlertTrigger implements domain.WriterPort
func (s *pg) IncrementAlertTrigger(ctx context.Context, ruleID string) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE alert_rules
		SET trigger_count = trigger_count + 1, last_triggered_at = now()
		WHERE id = $1`,
		ruleID,
	)
	if err != nil {
		return perr.FromPostgres(err, "increment alert trigger")
	}
	if tag.RowsAffected() == 0 {
		return perr.NotFoundf("alert rule %s", ruleID)
	}
	return nil
}

// IncrementActionExecution implements domain.WriterPort
func (s *pg) IncrementActionExecution(ctx context.Context, ruleID string) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE auto_action_rules
		SET execution_count = execution_count + 1, last_executed_at = now()
		WHERE id = $1`,
		ruleID,
	)
	if err != nil {
		return perr.FromPostgres(err, "increment action execution")
	}
	if tag.RowsAffected() == 0 {
		return perr.NotFoundf("auto action rule %s", ruleID)
	}
	return nil
}

// AppendActionLog implements domain.WriterPort
func (s *pg) AppendActionLog(ctx context.Context, rec domain.ActionRecord) error {
	id := rec.ID
	if id == "" {
		id = uuid.NewString()
	}
	at := rec.CreatedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	_, err := s.q.Exec(ctx, `
		INSERT INTO action_log
			(id, rule_id, owner_id, domain, amount, tx_hash, status, error, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		id, rec.RuleID, rec.OwnerID, rec.Domain, rec.Amount,
		rec.TxHash, string(rec.Status), rec.Error, at,
	)
	if err != nil {
		return perr.FromPostgres(err, "append action log")
	}
	return nil
}

// CreateAlertRule implements domain.AdminPort
func (s *pg) CreateAlertRule(ctx context.Context, r domain.AlertRule) (domain.AlertRule, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	raw, err := json.Marshal(r.Conditions)
	if err != nil {
		return domain.AlertRule{}, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "encode conditions")
	}
	err = s.q.QueryRow(ctx, `
		INSERT INTO alert_rules
			(id, owner_id, kind, domain, domain_pattern, conditions, platform, active)
		VALUES ($1,$2,$3,NULLIF($4,''),NULLIF($5,''),$6,$7,$8)
		RETURNING created_at`,
		r.ID, r.OwnerID, string(r.Kind), r.Domain, r.DomainPattern, raw, r.Platform, r.Active,
	).Scan(&r.CreatedAt)
	if err != nil {
		return domain.AlertRule{}, perr.FromPostgres(err, "create alert rule")
	}
	return r, nil
}

// CreateAutoActionRule implements domain.AdminPort
func (s *pg) CreateAutoActionRule(ctx context.Context, r domain.AutoActionRule) (domain.AutoActionRule, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	raw, err := json.Marshal(r.Conditions)
	if err != nil {
		return domain.AutoActionRule{}, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "encode conditions")
	}
	err = s.q.QueryRow(ctx, `
		INSERT INTO auto_action_rules
			(id, owner_id, kind, conditions, max_amount, active)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at`,
		r.ID, r.OwnerID, string(r.Kind), raw, r.MaxAmount, r.Active,
	).Scan(&r.CreatedAt)
	if err != nil {
		return domain.AutoActionRule{}, perr.FromPostgres(err, "create auto action rule")
	}
	return r, nil
}

// DeactivateAlertRule implements domain.AdminPort
func (s *pg) DeactivateAlertRule(ctx context.Context, ruleID string) error {
	tag, err := s.q.Exec(ctx, `UPDATE alert_rules SET active = false WHERE id = $1`, ruleID)
	if err != nil {
		return perr.FromPostgres(err, "deactivate alert rule")
	}
	if tag.RowsAffected() == 0 {
		return perr.NotFoundf("alert rule %s", ruleID)
	}
	return nil
}

// DeactivateAutoActionRule implements domain.AdminPort
func (s *pg) DeactivateAutoActionRule(ctx context.Context, ruleID string) error {
	tag, err := s.q.Exec(ctx, `UPDATE auto_action_rules SET active = false WHERE id = $1`, ruleID)
	if err != nil {
		return perr.FromPostgres(err, "deactivate auto action rule")
	}
	if tag.RowsAffected() == 0 {
		return perr.NotFoundf("auto action rule %s", ruleID)
	}
	return nil
}

func scanAlertRules(rows repokit.Rows) ([]domain.AlertRule, error) {
	var out []domain.AlertRule
	for rows.Next() {
		var (
			r     domain.AlertRule
			kindS string
			raw   []byte
		)
		if err := rows.Scan(
			&r.ID, &r.OwnerID, &kindS, &r.Domain, &r.DomainPattern,
			&raw, &r.Platform, &r.Active, &r.TriggerCount, &r.LastTriggered, &r.CreatedAt,
		); err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeDB, "scan alert rule")
		}
		r.Kind = match.AlertKind(kindS)
		if err := json.Unmarshal(raw, &r.Conditions); err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeDB, "decode conditions for rule %s", r.ID)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
