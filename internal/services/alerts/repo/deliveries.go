// Package repo provides the delivery log repository implementation.
package repo

import (
	"context"

	perr "warden/internal/platform/errors"
	"warden/internal/platform/store"
	"warden/internal/services/alerts/domain"
)

// deliveryCols is the insert column order for alert_deliveries
var deliveryCols = []string{
	"rule_id", "owner_id", "domain", "kind", "platform", "status", "message", "created_at",
}

// CH appends delivery outcomes to ClickHouse
type CH struct {
	db store.Clickhouse
}

// NewCH constructs the columnar delivery log
func NewCH(db store.Clickhouse) *CH { return &CH{db: db} }

// Append implements domain.DeliveryLogPort
func (c *CH) Append(ctx context.Context, rec domain.DeliveryRecord) error {
	rows := [][]any{{
		rec.RuleID, rec.OwnerID, rec.Domain, rec.Kind,
		rec.Platform, string(rec.Status), rec.Message, rec.At,
	}}
	if err := c.db.Insert(ctx, "alert_deliveries", deliveryCols, rows); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "append delivery log")
	}
	return nil
}
