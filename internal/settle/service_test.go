package settle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spinworks/draw10/internal/domain"
	"github.com/spinworks/draw10/internal/event"
	"github.com/spinworks/draw10/internal/repository"
)

type mockSettlementRepo struct {
	mock.Mock
}

func (m *mockSettlementRepo) GetSettlementLog(ctx context.Context, period domain.PeriodID) (*domain.SettlementLog, error) {
	args := m.Called(ctx, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SettlementLog), args.Error(1)
}

func (m *mockSettlementRepo) WriteSettlementLog(ctx context.Context, log *domain.SettlementLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *mockSettlementRepo) AcquireRun(ctx context.Context, period domain.PeriodID) (bool, error) {
	args := m.Called(ctx, period)
	return args.Bool(0), args.Error(1)
}

func (m *mockSettlementRepo) ReleaseRun(ctx context.Context, period domain.PeriodID) error {
	args := m.Called(ctx, period)
	return args.Error(0)
}

func (m *mockSettlementRepo) ClearStaleRuns(ctx context.Context, olderThan time.Duration) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockSettlementRepo) GetUnsettledWagers(ctx context.Context, period domain.PeriodID) ([]domain.Wager, error) {
	args := m.Called(ctx, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Wager), args.Error(1)
}

func (m *mockSettlementRepo) GetPeriodTotals(ctx context.Context, period domain.PeriodID) (*domain.SettlementTotals, error) {
	args := m.Called(ctx, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SettlementTotals), args.Error(1)
}

func (m *mockSettlementRepo) ListIncompletePeriods(ctx context.Context, before domain.PeriodID, limit int) ([]domain.PeriodID, error) {
	args := m.Called(ctx, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PeriodID), args.Error(1)
}

func (m *mockSettlementRepo) GetFailedSettlement(ctx context.Context, period domain.PeriodID) (*domain.FailedSettlement, error) {
	args := m.Called(ctx, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FailedSettlement), args.Error(1)
}

func (m *mockSettlementRepo) RecordFailedAttempt(ctx context.Context, period domain.PeriodID, lastError string) (*domain.FailedSettlement, error) {
	args := m.Called(ctx, period, lastError)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FailedSettlement), args.Error(1)
}

func (m *mockSettlementRepo) MarkTerminal(ctx context.Context, period domain.PeriodID) error {
	args := m.Called(ctx, period)
	return args.Error(0)
}

func (m *mockSettlementRepo) ClearFailedSettlement(ctx context.Context, period domain.PeriodID) error {
	args := m.Called(ctx, period)
	return args.Error(0)
}

func (m *mockSettlementRepo) BeginSettleTx(ctx context.Context) (repository.SettleTx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(repository.SettleTx), args.Error(1)
}

type mockPeriodRepo struct {
	mock.Mock
}

func (m *mockPeriodRepo) CreatePeriod(ctx context.Context, period *domain.Period) error {
	args := m.Called(ctx, period)
	return args.Error(0)
}

func (m *mockPeriodRepo) GetPeriod(ctx context.Context, id domain.PeriodID) (*domain.Period, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Period), args.Error(1)
}

func (m *mockPeriodRepo) GetLatestPeriod(ctx context.Context) (*domain.Period, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Period), args.Error(1)
}

func (m *mockPeriodRepo) SetResult(ctx context.Context, id domain.PeriodID, result domain.DrawResult, official bool) error {
	args := m.Called(ctx, id, result, official)
	return args.Error(0)
}

func (m *mockPeriodRepo) GetExposure(ctx context.Context, id domain.PeriodID) (*domain.ExposureSummary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExposureSummary), args.Error(1)
}

func (m *mockPeriodRepo) GetOpenWagersByMember(ctx context.Context, id domain.PeriodID, memberID uuid.UUID) ([]domain.Wager, error) {
	args := m.Called(ctx, id, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Wager), args.Error(1)
}

func (m *mockPeriodRepo) ListUndrawnPeriods(ctx context.Context, before domain.PeriodID, limit int) ([]domain.Period, error) {
	args := m.Called(ctx, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Period), args.Error(1)
}

type mockRebateService struct {
	mock.Mock
}

func (m *mockRebateService) Distribute(ctx context.Context, tx repository.SettleTx, wager *domain.Wager) (int64, error) {
	args := m.Called(ctx, tx, wager)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRebateService) InvalidateChain(memberID string) {
	m.Called(memberID)
}

type mockBus struct {
	mock.Mock
}

func (m *mockBus) Publish(ctx context.Context, e event.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *mockBus) Subscribe(eventType event.Type, handler event.Handler) {
	m.Called(eventType, handler)
}

type mockFailureSink struct {
	mock.Mock
}

func (m *mockFailureSink) Enqueue(period domain.PeriodID, cause error) {
	m.Called(period, cause)
}

type mockTx struct {
	mock.Mock
}

func (m *mockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockTx) MarkWagerSettled(ctx context.Context, id uuid.UUID, outcome domain.Outcome, payout int64) (int64, error) {
	args := m.Called(ctx, id, outcome, payout)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTx) GetMemberBalanceForUpdate(ctx context.Context, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTx) GetAgentBalanceForUpdate(ctx context.Context, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTx) SetMemberBalance(ctx context.Context, id uuid.UUID, balance int64) error {
	args := m.Called(ctx, id, balance)
	return args.Error(0)
}

func (m *mockTx) SetAgentBalance(ctx context.Context, id uuid.UUID, balance int64) error {
	args := m.Called(ctx, id, balance)
	return args.Error(0)
}

func (m *mockTx) InsertPosting(ctx context.Context, posting *domain.Posting) error {
	args := m.Called(ctx, posting)
	return args.Error(0)
}

func (m *mockTx) HasPosting(ctx context.Context, period domain.PeriodID, wagerID *uuid.UUID, accountID uuid.UUID, postingType domain.PostingType) (bool, error) {
	args := m.Called(ctx, period, wagerID, accountID, postingType)
	return args.Bool(0), args.Error(1)
}

const settleTestPeriod = domain.PeriodID(20260115001)

var settleTestResult = domain.DrawResult{2, 4, 7, 5, 3, 9, 10, 1, 8, 6}

type settleFixture struct {
	repo     *mockSettlementRepo
	periods  *mockPeriodRepo
	rebates  *mockRebateService
	bus      *mockBus
	failures *mockFailureSink
	svc      Service
}

func newSettleFixture(t *testing.T, maxOdds int64) *settleFixture {
	t.Helper()
	f := &settleFixture{
		repo:     new(mockSettlementRepo),
		periods:  new(mockPeriodRepo),
		rebates:  new(mockRebateService),
		bus:      new(mockBus),
		failures: new(mockFailureSink),
	}
	f.svc = NewService(f.repo, f.periods, f.rebates, f.bus, f.failures, 2, maxOdds)
	return f
}

func closedPeriod() *domain.Period {
	result := settleTestResult
	now := time.Now().UTC()
	return &domain.Period{
		ID:      settleTestPeriod,
		OpenAt:  now.Add(-3 * time.Minute),
		CloseAt: now.Add(-time.Minute),
		Result:  &result,
		DrawnAt: &now,
	}
}

func exactWager(number, position int) domain.Wager {
	return domain.Wager{
		ID:       uuid.New(),
		PeriodID: settleTestPeriod,
		MemberID: uuid.New(),
		Kind:     domain.BetKindExact,
		Number:   number,
		Position: position,
		Stake:    10000,
		Odds:     9890,
		State:    domain.WagerStateUnsettled,
	}
}

func TestSettle_ExistingLogIsNoOp(t *testing.T) {
	f := newSettleFixture(t, 0)
	f.repo.On("GetSettlementLog", mock.Anything, settleTestPeriod).Return(&domain.SettlementLog{
		PeriodID:     settleTestPeriod,
		Result:       settleTestResult,
		SettledCount: 42,
		WinCount:     10,
		TotalPayout:  989000,
		TotalRebate:  4620,
	}, nil)

	summary, err := f.svc.Settle(context.Background(), settleTestPeriod)
	require.NoError(t, err)

	assert.True(t, summary.AlreadyDone)
	assert.Equal(t, 42, summary.SettledCount)
	assert.Equal(t, 10, summary.WinCount)
	assert.Equal(t, int64(989000), summary.TotalPayout)
	assert.Equal(t, int64(4620), summary.TotalRebate)
	f.repo.AssertNotCalled(t, "AcquireRun", mock.Anything, mock.Anything)
	f.failures.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
}

func TestSettle_RunHeldElsewhere(t *testing.T) {
	f := newSettleFixture(t, 0)
	f.repo.On("GetSettlementLog", mock.Anything, settleTestPeriod).Return(nil, nil)
	f.repo.On("AcquireRun", mock.Anything, settleTestPeriod).Return(false, nil)

	_, err := f.svc.Settle(context.Background(), settleTestPeriod)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSettlementInProgress)

	// Contention is not a failure; the supervisor must not be involved
	f.failures.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
	f.repo.AssertNotCalled(t, "ReleaseRun", mock.Anything, mock.Anything)
}

func TestSettle_PeriodWithoutResult(t *testing.T) {
	f := newSettleFixture(t, 0)
	f.repo.On("GetSettlementLog", mock.Anything, settleTestPeriod).Return(nil, nil)
	f.repo.On("AcquireRun", mock.Anything, settleTestPeriod).Return(true, nil)
	f.repo.On("ReleaseRun", mock.Anything, settleTestPeriod).Return(nil)
	f.periods.On("GetPeriod", mock.Anything, settleTestPeriod).Return(&domain.Period{ID: settleTestPeriod}, nil)
	f.failures.On("Enqueue", settleTestPeriod, mock.Anything).Return()

	_, err := f.svc.Settle(context.Background(), settleTestPeriod)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPeriodNotClosed)

	f.failures.AssertCalled(t, "Enqueue", settleTestPeriod, mock.Anything)
	f.repo.AssertCalled(t, "ReleaseRun", mock.Anything, settleTestPeriod)
}

func TestSettle_UnknownPeriod(t *testing.T) {
	f := newSettleFixture(t, 0)
	f.repo.On("GetSettlementLog", mock.Anything, settleTestPeriod).Return(nil, nil)
	f.repo.On("AcquireRun", mock.Anything, settleTestPeriod).Return(true, nil)
	f.repo.On("ReleaseRun", mock.Anything, settleTestPeriod).Return(nil)
	f.periods.On("GetPeriod", mock.Anything, settleTestPeriod).Return(nil, nil)
	f.failures.On("Enqueue", settleTestPeriod, mock.Anything).Return()

	_, err := f.svc.Settle(context.Background(), settleTestPeriod)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPeriodNotFound)
}

func TestSettle_FullRun(t *testing.T) {
	f := newSettleFixture(t, 0)

	winner := exactWager(2, 1) // position 1 drew 2
	loser := exactWager(5, 1)

	f.repo.On("GetSettlementLog", mock.Anything, settleTestPeriod).Return(nil, nil)
	f.repo.On("AcquireRun", mock.Anything, settleTestPeriod).Return(true, nil)
	f.repo.On("ReleaseRun", mock.Anything, settleTestPeriod).Return(nil)
	f.periods.On("GetPeriod", mock.Anything, settleTestPeriod).Return(closedPeriod(), nil)
	f.repo.On("GetUnsettledWagers", mock.Anything, settleTestPeriod).Return([]domain.Wager{winner, loser}, nil)

	tx := new(mockTx)
	tx.On("Rollback", mock.Anything).Return(errors.New(domain.ErrMsgTxClosed))
	tx.On("Commit", mock.Anything).Return(nil)
	f.repo.On("BeginSettleTx", mock.Anything).Return(tx, nil)

	// Winner: 100.00 at 9.89x returns 989.00
	tx.On("MarkWagerSettled", mock.Anything, winner.ID, domain.OutcomeWon, int64(98900)).Return(int64(1), nil)
	tx.On("GetMemberBalanceForUpdate", mock.Anything, winner.MemberID).Return(int64(0), nil)
	tx.On("InsertPosting", mock.Anything, mock.MatchedBy(func(p *domain.Posting) bool {
		return p.AccountID == winner.MemberID && p.Type == domain.PostingPayout && p.Amount == 98900
	})).Return(nil)
	tx.On("SetMemberBalance", mock.Anything, winner.MemberID, int64(98900)).Return(nil)

	tx.On("MarkWagerSettled", mock.Anything, loser.ID, domain.OutcomeLost, int64(0)).Return(int64(1), nil)

	f.rebates.On("Distribute", mock.Anything, tx, mock.AnythingOfType("*domain.Wager")).Return(int64(110), nil)

	f.repo.On("GetPeriodTotals", mock.Anything, settleTestPeriod).Return(&domain.SettlementTotals{
		SettledCount: 2,
		WinCount:     1,
		TotalPayout:  98900,
		TotalRebate:  220,
	}, nil)
	f.repo.On("WriteSettlementLog", mock.Anything, mock.MatchedBy(func(log *domain.SettlementLog) bool {
		return log.PeriodID == settleTestPeriod &&
			log.Result == settleTestResult &&
			log.SettledCount == 2 &&
			log.WinCount == 1 &&
			log.TotalPayout == 98900 &&
			log.TotalRebate == 220
	})).Return(nil)
	f.repo.On("ClearFailedSettlement", mock.Anything, settleTestPeriod).Return(nil)
	f.bus.On("Publish", mock.Anything, mock.MatchedBy(func(e event.Event) bool {
		return e.Type == event.PeriodSettled
	})).Return(nil)

	summary, err := f.svc.Settle(context.Background(), settleTestPeriod)
	require.NoError(t, err)

	assert.False(t, summary.AlreadyDone)
	assert.Equal(t, 2, summary.SettledCount)
	assert.Equal(t, 1, summary.WinCount)
	assert.Equal(t, int64(98900), summary.TotalPayout)
	assert.Equal(t, int64(220), summary.TotalRebate)

	f.repo.AssertExpectations(t)
	tx.AssertExpectations(t)
	f.failures.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
}

func TestSettle_PartialFailureGoesToSupervisor(t *testing.T) {
	f := newSettleFixture(t, 0)

	wager := exactWager(2, 1)
	boom := errors.New("connection refused")

	f.repo.On("GetSettlementLog", mock.Anything, settleTestPeriod).Return(nil, nil)
	f.repo.On("AcquireRun", mock.Anything, settleTestPeriod).Return(true, nil)
	f.repo.On("ReleaseRun", mock.Anything, settleTestPeriod).Return(nil)
	f.periods.On("GetPeriod", mock.Anything, settleTestPeriod).Return(closedPeriod(), nil)
	f.repo.On("GetUnsettledWagers", mock.Anything, settleTestPeriod).Return([]domain.Wager{wager}, nil)
	f.repo.On("BeginSettleTx", mock.Anything).Return(nil, boom)
	f.failures.On("Enqueue", settleTestPeriod, mock.Anything).Return()

	_, err := f.svc.Settle(context.Background(), settleTestPeriod)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrContextPartialSettlement)

	// The log barrier must not be crossed for an incomplete period
	f.repo.AssertNotCalled(t, "WriteSettlementLog", mock.Anything, mock.Anything)
	f.failures.AssertCalled(t, "Enqueue", settleTestPeriod, mock.Anything)
}

func TestSettle_AlreadySettledWagerIsSkipped(t *testing.T) {
	f := newSettleFixture(t, 0)

	wager := exactWager(2, 1)

	f.repo.On("GetSettlementLog", mock.Anything, settleTestPeriod).Return(nil, nil)
	f.repo.On("AcquireRun", mock.Anything, settleTestPeriod).Return(true, nil)
	f.repo.On("ReleaseRun", mock.Anything, settleTestPeriod).Return(nil)
	f.periods.On("GetPeriod", mock.Anything, settleTestPeriod).Return(closedPeriod(), nil)
	f.repo.On("GetUnsettledWagers", mock.Anything, settleTestPeriod).Return([]domain.Wager{wager}, nil)

	tx := new(mockTx)
	tx.On("Rollback", mock.Anything).Return(nil)
	f.repo.On("BeginSettleTx", mock.Anything).Return(tx, nil)

	// A concurrent settler won the compare-and-set
	tx.On("MarkWagerSettled", mock.Anything, wager.ID, domain.OutcomeWon, int64(98900)).Return(int64(0), nil)

	f.repo.On("GetPeriodTotals", mock.Anything, settleTestPeriod).Return(&domain.SettlementTotals{
		SettledCount: 1,
		WinCount:     1,
		TotalPayout:  98900,
		TotalRebate:  110,
	}, nil)
	f.repo.On("WriteSettlementLog", mock.Anything, mock.AnythingOfType("*domain.SettlementLog")).Return(nil)
	f.repo.On("ClearFailedSettlement", mock.Anything, settleTestPeriod).Return(nil)
	f.bus.On("Publish", mock.Anything, mock.Anything).Return(nil)

	summary, err := f.svc.Settle(context.Background(), settleTestPeriod)
	require.NoError(t, err)

	// Totals still reflect the whole period's state from the store
	assert.Equal(t, 1, summary.SettledCount)
	f.rebates.AssertNotCalled(t, "Distribute", mock.Anything, mock.Anything, mock.Anything)
	tx.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestSettle_OddsAboveCeilingAreClamped(t *testing.T) {
	f := newSettleFixture(t, 20000)

	wager := exactWager(2, 1)
	wager.Odds = 50000 // corrupt directory entry, ceiling is 20x

	f.repo.On("GetSettlementLog", mock.Anything, settleTestPeriod).Return(nil, nil)
	f.repo.On("AcquireRun", mock.Anything, settleTestPeriod).Return(true, nil)
	f.repo.On("ReleaseRun", mock.Anything, settleTestPeriod).Return(nil)
	f.periods.On("GetPeriod", mock.Anything, settleTestPeriod).Return(closedPeriod(), nil)
	f.repo.On("GetUnsettledWagers", mock.Anything, settleTestPeriod).Return([]domain.Wager{wager}, nil)

	tx := new(mockTx)
	tx.On("Rollback", mock.Anything).Return(errors.New(domain.ErrMsgTxClosed))
	tx.On("Commit", mock.Anything).Return(nil)
	f.repo.On("BeginSettleTx", mock.Anything).Return(tx, nil)

	// Payout computed at the ceiling: 100.00 * 20x, not * 50x
	tx.On("MarkWagerSettled", mock.Anything, wager.ID, domain.OutcomeWon, int64(200000)).Return(int64(1), nil)
	tx.On("GetMemberBalanceForUpdate", mock.Anything, wager.MemberID).Return(int64(0), nil)
	tx.On("InsertPosting", mock.Anything, mock.AnythingOfType("*domain.Posting")).Return(nil)
	tx.On("SetMemberBalance", mock.Anything, wager.MemberID, int64(200000)).Return(nil)
	f.rebates.On("Distribute", mock.Anything, tx, mock.AnythingOfType("*domain.Wager")).Return(int64(110), nil)

	f.repo.On("GetPeriodTotals", mock.Anything, settleTestPeriod).Return(&domain.SettlementTotals{
		SettledCount: 1,
		WinCount:     1,
		TotalPayout:  200000,
		TotalRebate:  110,
	}, nil)
	f.repo.On("WriteSettlementLog", mock.Anything, mock.AnythingOfType("*domain.SettlementLog")).Return(nil)
	f.repo.On("ClearFailedSettlement", mock.Anything, settleTestPeriod).Return(nil)
	f.bus.On("Publish", mock.Anything, mock.Anything).Return(nil)

	summary, err := f.svc.Settle(context.Background(), settleTestPeriod)
	require.NoError(t, err)
	assert.Equal(t, int64(200000), summary.TotalPayout)
	tx.AssertExpectations(t)
}

func TestSettle_EmptyPeriodStillWritesLog(t *testing.T) {
	f := newSettleFixture(t, 0)

	f.repo.On("GetSettlementLog", mock.Anything, settleTestPeriod).Return(nil, nil)
	f.repo.On("AcquireRun", mock.Anything, settleTestPeriod).Return(true, nil)
	f.repo.On("ReleaseRun", mock.Anything, settleTestPeriod).Return(nil)
	f.periods.On("GetPeriod", mock.Anything, settleTestPeriod).Return(closedPeriod(), nil)
	f.repo.On("GetUnsettledWagers", mock.Anything, settleTestPeriod).Return([]domain.Wager{}, nil)
	f.repo.On("GetPeriodTotals", mock.Anything, settleTestPeriod).Return(&domain.SettlementTotals{}, nil)
	f.repo.On("WriteSettlementLog", mock.Anything, mock.MatchedBy(func(log *domain.SettlementLog) bool {
		return log.PeriodID == settleTestPeriod && log.SettledCount == 0
	})).Return(nil)
	f.repo.On("ClearFailedSettlement", mock.Anything, settleTestPeriod).Return(nil)
	f.bus.On("Publish", mock.Anything, mock.Anything).Return(nil)

	summary, err := f.svc.Settle(context.Background(), settleTestPeriod)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.SettledCount)
	f.repo.AssertExpectations(t)
}
