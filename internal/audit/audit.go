// Package audit persists a durable trail of engine events. Every draw,
// settlement, failure, and compensation action lands in the audit_events
// table, so the "who settled what, when, and why" question is answerable
// after the in-memory bus is gone.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/spinworks/draw10/internal/domain"
	"github.com/spinworks/draw10/internal/event"
	"github.com/spinworks/draw10/internal/logger"
)

// Entry is one persisted audit record.
type Entry struct {
	ID        int64            `json:"id"`
	EventType string           `json:"event_type"`
	PeriodID  *domain.PeriodID `json:"period_id,omitempty"`
	Payload   json.RawMessage  `json:"payload"`
	CreatedAt time.Time        `json:"created_at"`
}

// Filter narrows audit queries.
type Filter struct {
	PeriodID  *domain.PeriodID
	EventType *string
	Since     *time.Time
	Limit     int
}

// Repository defines the interface for audit trail storage.
type Repository interface {
	// LogEvent stores one audit record.
	LogEvent(ctx context.Context, eventType string, period *domain.PeriodID, payload json.RawMessage) error

	// GetEvents retrieves audit records matching the filter, newest first.
	GetEvents(ctx context.Context, filter Filter) ([]Entry, error)

	// CleanupOldEvents removes records older than the retention period and
	// returns the number deleted.
	CleanupOldEvents(ctx context.Context, retentionDays int) (int64, error)
}

// Service records engine events into the audit trail.
type Service interface {
	// Subscribe registers the audit recorder on every engine event type.
	Subscribe(bus event.Bus)

	// CleanupOldEvents removes records older than the retention period.
	CleanupOldEvents(ctx context.Context, retentionDays int) (int64, error)
}

type service struct {
	repo Repository
}

// NewService creates a new audit service
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Subscribe(bus event.Bus) {
	for _, eventType := range []event.Type{
		event.DrawPublished,
		event.PeriodSettled,
		event.SettlementFailed,
		event.CompensationExhausted,
	} {
		bus.Subscribe(eventType, s.handleEvent)
	}
}

func (s *service) handleEvent(ctx context.Context, evt event.Event) error {
	log := logger.FromContext(ctx)

	payload, err := json.Marshal(evt.Payload)
	if err != nil {
		log.Error(LogMsgFailedToEncodePayload, "type", evt.Type, "error", err)
		return err
	}

	period := periodOf(evt.Payload)
	if err := s.repo.LogEvent(ctx, string(evt.Type), period, payload); err != nil {
		log.Error(LogMsgFailedToLogEvent, "type", evt.Type, "error", err)
		return err
	}

	log.Debug(LogMsgEventLogged, "type", evt.Type, "period", period)
	return nil
}

func (s *service) CleanupOldEvents(ctx context.Context, retentionDays int) (int64, error) {
	return s.repo.CleanupOldEvents(ctx, retentionDays)
}

// periodOf extracts the period from any of the engine's typed payloads so
// audit rows can be queried per period.
func periodOf(payload interface{}) *domain.PeriodID {
	switch p := payload.(type) {
	case event.DrawPublishedPayloadV1:
		return &p.PeriodID
	case event.PeriodSettledPayloadV1:
		return &p.PeriodID
	case event.SettlementFailedPayloadV1:
		return &p.PeriodID
	default:
		return nil
	}
}
