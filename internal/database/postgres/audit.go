package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spinworks/draw10/internal/audit"
	"github.com/spinworks/draw10/internal/domain"
)

type auditRepository struct {
	db *pgxpool.Pool
}

// NewAuditRepository creates a new PostgreSQL audit trail repository
func NewAuditRepository(db *pgxpool.Pool) audit.Repository {
	return &auditRepository{db: db}
}

func (r *auditRepository) LogEvent(ctx context.Context, eventType string, period *domain.PeriodID, payload json.RawMessage) error {
	query := `
		INSERT INTO audit_events (event_type, period_id, payload)
		VALUES ($1, $2, $3)
	`

	var rawPeriod *int64
	if period != nil {
		v := int64(*period)
		rawPeriod = &v
	}

	_, err := r.db.Exec(ctx, query, eventType, rawPeriod, payload)
	return err
}

func (r *auditRepository) GetEvents(ctx context.Context, filter audit.Filter) ([]audit.Entry, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT id, event_type, period_id, payload, created_at
		FROM audit_events
		WHERE 1=1`)

	args := []interface{}{}
	argNum := 1

	if filter.PeriodID != nil {
		fmt.Fprintf(&queryBuilder, " AND period_id = $%d", argNum)
		args = append(args, int64(*filter.PeriodID))
		argNum++
	}

	if filter.EventType != nil {
		fmt.Fprintf(&queryBuilder, " AND event_type = $%d", argNum)
		args = append(args, *filter.EventType)
		argNum++
	}

	if filter.Since != nil {
		fmt.Fprintf(&queryBuilder, " AND created_at >= $%d", argNum)
		args = append(args, *filter.Since)
		argNum++
	}

	queryBuilder.WriteString(" ORDER BY created_at DESC")

	if filter.Limit > 0 {
		fmt.Fprintf(&queryBuilder, " LIMIT $%d", argNum)
		args = append(args, filter.Limit)
	}

	rows, err := r.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var entry audit.Entry
		var rawPeriod *int64

		if err := rows.Scan(&entry.ID, &entry.EventType, &rawPeriod, &entry.Payload, &entry.CreatedAt); err != nil {
			return nil, err
		}
		if rawPeriod != nil {
			id := domain.PeriodID(*rawPeriod)
			entry.PeriodID = &id
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *auditRepository) CleanupOldEvents(ctx context.Context, retentionDays int) (int64, error) {
	query := `
		DELETE FROM audit_events
		WHERE created_at < NOW() - INTERVAL '1 day' * $1
	`

	result, err := r.db.Exec(ctx, query, retentionDays)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
