package event

import (
	"context"
	"time"

	"github.com/spinworks/draw10/internal/logger"
	"github.com/spinworks/draw10/internal/metrics"
)

// ResilientConfig configures the ResilientPublisher
type ResilientConfig struct {
	MaxRetries int
	RetryDelay time.Duration
	DeadLetter *DeadLetterWriter
}

// ResilientPublisher wraps an event Bus to add retry logic and dead-letter
// queuing. The draw broadcast must reach downstream consumers even across a
// consumer hiccup; the publisher absorbs the failure so settlement never
// stalls on it.
type ResilientPublisher struct {
	inner  Bus
	config ResilientConfig
}

// NewResilientPublisher creates a new ResilientPublisher
func NewResilientPublisher(inner Bus, config ResilientConfig) *ResilientPublisher {
	if config.MaxRetries <= 0 {
		config.MaxRetries = RetryMaxAttempts
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = RetryInitialDelaySeconds * time.Second
	}
	return &ResilientPublisher{
		inner:  inner,
		config: config,
	}
}

// Publish attempts to publish an event. On failure it starts a background
// retry loop and returns nil: the caller is decoupled from the retry
// mechanism entirely.
func (p *ResilientPublisher) Publish(ctx context.Context, event Event) error {
	metrics.EventsPublished.WithLabelValues(string(event.Type)).Inc()

	err := p.inner.Publish(ctx, event)
	if err == nil {
		return nil
	}

	metrics.EventHandlerErrors.WithLabelValues(string(event.Type)).Inc()
	logger.Warn(LogMsgEventPublishFailed,
		"event_type", event.Type,
		"error", err,
		"retries", p.config.MaxRetries)

	go p.retryLoop(event, err)

	return nil
}

// Subscribe delegates to the wrapped bus.
func (p *ResilientPublisher) Subscribe(eventType Type, handler Handler) {
	p.inner.Subscribe(eventType, handler)
}

func (p *ResilientPublisher) retryLoop(event Event, lastErr error) {
	// Detached context: the original request context may already be cancelled
	ctx := context.Background()

	for attempt := 1; attempt <= p.config.MaxRetries; attempt++ {
		time.Sleep(CalculateRetryDelay(p.config.RetryDelay, attempt))

		err := p.inner.Publish(ctx, event)
		if err == nil {
			logger.Info(LogMsgEventRetrySucceeded,
				"event_type", event.Type,
				"attempt", attempt)
			return
		}
		lastErr = err

		logger.Warn("Retry failed",
			"event_type", event.Type,
			"attempt", attempt,
			"error", err)
	}

	logger.Error(LogMsgEventRetryExhausted, "event_type", event.Type)
	if p.config.DeadLetter != nil {
		if err := p.config.DeadLetter.Write(event, p.config.MaxRetries, lastErr); err != nil {
			logger.Error(LogMsgDeadLetterWriteFailed, "error", err)
		}
	}
}
