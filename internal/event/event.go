package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spinworks/draw10/internal/domain"
)

// Type represents the type of an event
type Type string

// Engine event types
const (
	// DrawPublished carries a period's draw result to downstream consumers
	// (display, reporting). Published before or concurrently with settlement.
	DrawPublished Type = "draw.published"

	// PeriodSettled signals that a period's settlement log has been written.
	PeriodSettled Type = "period.settled"

	// SettlementFailed signals a settlement attempt that was handed to the
	// compensation supervisor.
	SettlementFailed Type = "settlement.failed"

	// CompensationExhausted signals a period whose retry budget ran out and
	// now requires operator intervention.
	CompensationExhausted Type = "compensation.exhausted"
)

// Event represents a generic event in the system
type Event struct {
	Version string      `json:"version"` // Event schema version (e.g., "1.0")
	Type    Type        `json:"type"`
	Payload interface{} `json:"payload"`
}

// DrawPublishedPayloadV1 is the typed payload for draw broadcast events
type DrawPublishedPayloadV1 struct {
	PeriodID  domain.PeriodID `json:"period_id"`
	Result    string          `json:"result"`
	Official  bool            `json:"official"`
	Timestamp int64           `json:"timestamp"`
}

// PeriodSettledPayloadV1 is the typed payload for settlement completion events
type PeriodSettledPayloadV1 struct {
	PeriodID     domain.PeriodID `json:"period_id"`
	SettledCount int             `json:"settled_count"`
	WinCount     int             `json:"win_count"`
	TotalPayout  int64           `json:"total_payout"`
	TotalRebate  int64           `json:"total_rebate"`
	Timestamp    int64           `json:"timestamp"`
}

// SettlementFailedPayloadV1 is the typed payload for settlement failure events
type SettlementFailedPayloadV1 struct {
	PeriodID  domain.PeriodID `json:"period_id"`
	Attempts  int             `json:"attempts"`
	Error     string          `json:"error"`
	Terminal  bool            `json:"terminal"`
	Timestamp int64           `json:"timestamp"`
}

// NewDrawPublishedEvent builds the draw broadcast event for a period.
func NewDrawPublishedEvent(period domain.PeriodID, result domain.DrawResult, official bool) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    DrawPublished,
		Payload: DrawPublishedPayloadV1{
			PeriodID:  period,
			Result:    result.String(),
			Official:  official,
			Timestamp: time.Now().Unix(),
		},
	}
}

// NewPeriodSettledEvent builds the settlement completion event.
func NewPeriodSettledEvent(summary domain.SettlementSummary) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    PeriodSettled,
		Payload: PeriodSettledPayloadV1{
			PeriodID:     summary.PeriodID,
			SettledCount: summary.SettledCount,
			WinCount:     summary.WinCount,
			TotalPayout:  summary.TotalPayout,
			TotalRebate:  summary.TotalRebate,
			Timestamp:    time.Now().Unix(),
		},
	}
}

// NewSettlementFailedEvent builds the failure event handed to operators and
// the audit log.
func NewSettlementFailedEvent(period domain.PeriodID, attempts int, failure error, terminal bool) Event {
	eventType := SettlementFailed
	if terminal {
		eventType = CompensationExhausted
	}
	msg := ""
	if failure != nil {
		msg = failure.Error()
	}
	return Event{
		Version: EventSchemaVersion,
		Type:    eventType,
		Payload: SettlementFailedPayloadV1{
			PeriodID:  period,
			Attempts:  attempts,
			Error:     msg,
			Terminal:  terminal,
			Timestamp: time.Now().Unix(),
		},
	}
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// MemoryBus is an in-memory implementation of the Event Bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish publishes an event to all subscribers synchronously.
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers, ok := b.handlers[event.Type]
	b.mu.RUnlock()

	if !ok {
		return nil
	}

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf(LogMsgHandlerErrorFormat, len(errs), event.Type, errs)
	}

	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}
