package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spinworks/draw10/internal/domain"
)

func TestMemoryBus_PublishSubscribe(t *testing.T) {
	bus := NewMemoryBus()
	received := make([]Event, 0, 1)

	bus.Subscribe(DrawPublished, func(ctx context.Context, event Event) error {
		received = append(received, event)
		return nil
	})

	result := domain.DrawResult{2, 4, 7, 5, 3, 9, 10, 1, 8, 6}
	err := bus.Publish(context.Background(), NewDrawPublishedEvent(20260830001, result, false))
	require.NoError(t, err)

	require.Len(t, received, 1)
	payload, ok := received[0].Payload.(DrawPublishedPayloadV1)
	require.True(t, ok)
	assert.Equal(t, domain.PeriodID(20260830001), payload.PeriodID)
	assert.Equal(t, "2,4,7,5,3,9,10,1,8,6", payload.Result)
}

func TestMemoryBus_PublishMultipleHandlers(t *testing.T) {
	bus := NewMemoryBus()
	calls := 0

	for i := 0; i < 3; i++ {
		bus.Subscribe(PeriodSettled, func(ctx context.Context, event Event) error {
			calls++
			return nil
		})
	}

	err := bus.Publish(context.Background(), NewPeriodSettledEvent(domain.SettlementSummary{PeriodID: 20260830001}))
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestMemoryBus_PublishError(t *testing.T) {
	bus := NewMemoryBus()
	bus.Subscribe(SettlementFailed, func(ctx context.Context, event Event) error {
		return errors.New("handler broke")
	})

	evt := NewSettlementFailedEvent(20260830001, 2, errors.New("db down"), false)
	err := bus.Publish(context.Background(), evt)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "handler broke")
}

func TestMemoryBus_NoSubscribers(t *testing.T) {
	bus := NewMemoryBus()
	err := bus.Publish(context.Background(), Event{Type: "nobody.listens"})
	assert.NoError(t, err)
}

func TestNewSettlementFailedEvent_TerminalType(t *testing.T) {
	evt := NewSettlementFailedEvent(20260830001, 5, errors.New("gone"), true)
	assert.Equal(t, CompensationExhausted, evt.Type)

	evt = NewSettlementFailedEvent(20260830001, 1, errors.New("gone"), false)
	assert.Equal(t, SettlementFailed, evt.Type)
}
