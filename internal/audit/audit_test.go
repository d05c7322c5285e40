package audit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spinworks/draw10/internal/domain"
	"github.com/spinworks/draw10/internal/event"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) LogEvent(ctx context.Context, eventType string, period *domain.PeriodID, payload json.RawMessage) error {
	args := m.Called(ctx, eventType, period, payload)
	return args.Error(0)
}

func (m *mockRepository) GetEvents(ctx context.Context, filter Filter) ([]Entry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Entry), args.Error(1)
}

func (m *mockRepository) CleanupOldEvents(ctx context.Context, retentionDays int) (int64, error) {
	args := m.Called(ctx, retentionDays)
	return args.Get(0).(int64), args.Error(1)
}

func TestAuditRecordsDrawEvents(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(repo)
	bus := event.NewMemoryBus()
	svc.Subscribe(bus)

	period := domain.PeriodID(20250101042)
	result := domain.DrawResult{2, 4, 7, 5, 3, 9, 10, 1, 8, 6}

	repo.On("LogEvent", mock.Anything, string(event.DrawPublished), mock.MatchedBy(func(p *domain.PeriodID) bool {
		return p != nil && *p == period
	}), mock.Anything).Return(nil)

	err := bus.Publish(context.Background(), event.NewDrawPublishedEvent(period, result, false))
	require.NoError(t, err)

	repo.AssertExpectations(t)
}

func TestAuditRecordsSettlementLifecycle(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(repo)
	bus := event.NewMemoryBus()
	svc.Subscribe(bus)

	period := domain.PeriodID(20250101042)
	repo.On("LogEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	ctx := context.Background()
	require.NoError(t, bus.Publish(ctx, event.NewPeriodSettledEvent(domain.SettlementSummary{PeriodID: period})))
	require.NoError(t, bus.Publish(ctx, event.NewSettlementFailedEvent(period, 2, errors.New("store down"), false)))
	require.NoError(t, bus.Publish(ctx, event.NewSettlementFailedEvent(period, 5, errors.New("store down"), true)))

	repo.AssertNumberOfCalls(t, "LogEvent", 3)
}

func TestAuditPayloadRoundTrips(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(repo)
	bus := event.NewMemoryBus()
	svc.Subscribe(bus)

	period := domain.PeriodID(20250101042)
	var recorded json.RawMessage
	repo.On("LogEvent", mock.Anything, string(event.PeriodSettled), mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			recorded = args.Get(3).(json.RawMessage)
		}).Return(nil)

	summary := domain.SettlementSummary{PeriodID: period, SettledCount: 12, WinCount: 3, TotalPayout: 98900}
	require.NoError(t, bus.Publish(context.Background(), event.NewPeriodSettledEvent(summary)))

	var payload event.PeriodSettledPayloadV1
	require.NoError(t, json.Unmarshal(recorded, &payload))
	assert.Equal(t, period, payload.PeriodID)
	assert.Equal(t, 12, payload.SettledCount)
	assert.Equal(t, int64(98900), payload.TotalPayout)
}

func TestAuditRepoErrorPropagates(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(repo)
	bus := event.NewMemoryBus()
	svc.Subscribe(bus)

	repo.On("LogEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("insert failed"))

	err := bus.Publish(context.Background(), event.NewDrawPublishedEvent(domain.PeriodID(20250101042), domain.DrawResult{2, 4, 7, 5, 3, 9, 10, 1, 8, 6}, false))
	require.Error(t, err)
}

func TestCleanupJobProcess(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(repo)

	repo.On("CleanupOldEvents", mock.Anything, 90).Return(int64(17), nil)

	job := NewCleanupJob(svc, 90)
	require.NoError(t, job.Process(context.Background()))
	repo.AssertExpectations(t)
}

func TestCleanupJobPropagatesError(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(repo)

	repo.On("CleanupOldEvents", mock.Anything, 90).Return(int64(0), errors.New("delete failed"))

	job := NewCleanupJob(svc, 90)
	require.Error(t, job.Process(context.Background()))
}
