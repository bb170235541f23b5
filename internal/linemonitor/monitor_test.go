package linemonitor

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/matchup-engine/internal/models"
)

type mockOdds struct{ mock.Mock }

func (m *mockOdds) FetchConsensus(ctx context.Context, sport string) ([]models.GameOdds, error) {
	args := m.Called(ctx, sport)
	odds, _ := args.Get(0).([]models.GameOdds)
	return odds, args.Error(1)
}

type mockPredictions struct{ mock.Mock }

func (m *mockPredictions) ListTrackedPredictions(ctx context.Context, sport string, from, to time.Time) ([]models.TrackedPrediction, error) {
	args := m.Called(ctx, sport, from, to)
	preds, _ := args.Get(0).([]models.TrackedPrediction)
	return preds, args.Error(1)
}

type mockHistory struct{ mock.Mock }

func (m *mockHistory) GetRepredictionHistory(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.RepredictionHistory, error) {
	args := m.Called(ctx, ids)
	h, _ := args.Get(0).(map[uuid.UUID]models.RepredictionHistory)
	return h, args.Error(1)
}

type mockRepredictor struct{ mock.Mock }

func (m *mockRepredictor) Repredict(ctx context.Context, mv LineMovement) error {
	return m.Called(ctx, mv).Error(0)
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestMonitorOddsMovementSweep(t *testing.T) {
	moved := tracked(3 * time.Hour)
	steady := tracked(5 * time.Hour)
	steady.ID = uuid.New()
	steady.GameID = "evt-2"
	steady.HomeTeam, steady.AwayTeam = "Denver Nuggets", "Utah Jazz"
	validated := tracked(6 * time.Hour)
	validated.ID = uuid.New()
	validated.Validated = true

	movedOdds := oddsFor(moved)
	movedOdds.Spread = f(-6)
	steadyOdds := oddsFor(steady)
	steadyOdds.GameID = "other-feed-id"

	preds := &mockPredictions{}
	preds.On("ListTrackedPredictions", mock.Anything, "basketball_nba", now.Add(30*time.Minute), now.Add(24*time.Hour)).
		Return([]models.TrackedPrediction{moved, steady, validated}, nil)
	preds.On("ListTrackedPredictions", mock.Anything, "basketball_ncaab", mock.Anything, mock.Anything).
		Return([]models.TrackedPrediction{tracked(2 * time.Hour)}, nil)

	odds := &mockOdds{}
	odds.On("FetchConsensus", mock.Anything, "basketball_nba").Return([]models.GameOdds{movedOdds, steadyOdds}, nil).Once()
	odds.On("FetchConsensus", mock.Anything, "basketball_ncaab").Return(nil, errors.New("stream unavailable")).Once()

	history := &mockHistory{}
	history.On("GetRepredictionHistory", mock.Anything, []uuid.UUID{moved.ID, steady.ID}).
		Return(map[uuid.UUID]models.RepredictionHistory{moved.ID: {PredictionID: moved.ID, Count: 1}}, nil)

	repredictor := &mockRepredictor{}
	repredictor.On("Repredict", mock.Anything, mock.MatchedBy(func(mv LineMovement) bool {
		return mv.PredictionID == moved.ID && mv.ShouldRepredict
	})).Return(nil).Once()

	m := NewMonitor(odds, preds, history, quietLogger(), WithRepredictor(repredictor), WithClock(func() time.Time { return now }))
	result, err := m.MonitorOddsMovement(context.Background(), []string{"basketball_nba", "basketball_ncaab"}, Thresholds{SpreadThreshold: 2.5}.WithDefaults())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Checked)
	assert.Equal(t, 1, result.SignificantMoves)
	assert.Equal(t, 1, result.Repredicted)
	require.Len(t, result.Movements, 2)
	byID := map[uuid.UUID]LineMovement{}
	for _, mv := range result.Movements {
		byID[mv.PredictionID] = mv
	}
	assert.Equal(t, StateRepredicted, byID[moved.ID].State)
	quiet := byID[steady.ID]
	assert.Equal(t, StateNoMove, quiet.State)
	assert.False(t, quiet.SignificantMove)
	require.NotEmpty(t, quiet.Reasons)
	assert.Contains(t, quiet.Reasons[0], "No significant movement")
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "basketball_ncaab", result.Errors[0].Sport)
	assert.Equal(t, "fetch_odds", result.Errors[0].Stage)

	odds.AssertExpectations(t)
	history.AssertExpectations(t)
	repredictor.AssertExpectations(t)
}

func TestMonitorSkipsFetchWithoutCandidates(t *testing.T) {
	preds := &mockPredictions{}
	preds.On("ListTrackedPredictions", mock.Anything, "basketball_wnba", mock.Anything, mock.Anything).Return(nil, nil)
	odds := &mockOdds{}

	m := NewMonitor(odds, preds, &mockHistory{}, quietLogger(), WithClock(func() time.Time { return now }))
	result, err := m.MonitorOddsMovement(context.Background(), []string{"basketball_wnba"}, DefaultThresholds())
	require.NoError(t, err)

	assert.Zero(t, result.Checked)
	assert.Empty(t, result.Errors)
	odds.AssertNotCalled(t, "FetchConsensus", mock.Anything, mock.Anything)
}

func TestMonitorRecordsRepredictFailure(t *testing.T) {
	p := tracked(3 * time.Hour)
	current := oddsFor(p)
	current.Total = f(228)

	preds := &mockPredictions{}
	preds.On("ListTrackedPredictions", mock.Anything, "basketball_nba", mock.Anything, mock.Anything).Return([]models.TrackedPrediction{p}, nil)
	odds := &mockOdds{}
	odds.On("FetchConsensus", mock.Anything, "basketball_nba").Return([]models.GameOdds{current}, nil)
	history := &mockHistory{}
	history.On("GetRepredictionHistory", mock.Anything, mock.Anything).Return(nil, nil)
	repredictor := &mockRepredictor{}
	repredictor.On("Repredict", mock.Anything, mock.Anything).Return(errors.New("stats provider down"))

	m := NewMonitor(odds, preds, history, quietLogger(), WithRepredictor(repredictor), WithClock(func() time.Time { return now }))
	result, err := m.MonitorOddsMovement(context.Background(), []string{"basketball_nba"}, DefaultThresholds())
	require.NoError(t, err)

	require.Len(t, result.Movements, 1)
	assert.Equal(t, StateEligible, result.Movements[0].State)
	assert.Zero(t, result.Repredicted)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "repredict", result.Errors[0].Stage)
}

func TestMonitorSkipsLockedSport(t *testing.T) {
	locker := NewMemoryLocker()
	release, err := locker.Acquire(context.Background(), "basketball_nba", time.Minute)
	require.NoError(t, err)

	preds := &mockPredictions{}
	m := NewMonitor(&mockOdds{}, preds, &mockHistory{}, quietLogger(), WithLocker(locker, time.Minute))
	result, err := m.MonitorOddsMovement(context.Background(), []string{"basketball_nba"}, DefaultThresholds())
	require.NoError(t, err)

	assert.Equal(t, []string{"basketball_nba"}, result.SkippedSports)
	preds.AssertNotCalled(t, "ListTrackedPredictions", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	require.NoError(t, release(context.Background()))
}

func TestMatchOddsFallsBackToTeamNames(t *testing.T) {
	p := tracked(time.Hour)
	p.GameID = ""
	odds := []models.GameOdds{
		{GameID: "a", HomeTeam: "Miami Heat", AwayTeam: "Boston Celtics"},
		{GameID: "b", HomeTeam: "Boston Celtics", AwayTeam: "Miami Heat"},
	}

	got, ok := matchOdds(p, odds)
	require.True(t, ok)
	assert.Equal(t, "b", got.GameID)

	_, ok = matchOdds(tracked(time.Hour), []models.GameOdds{{GameID: "z", HomeTeam: "Utah Jazz", AwayTeam: "Denver Nuggets"}})
	assert.False(t, ok)
}

func TestMemoryLocker(t *testing.T) {
	locker := NewMemoryLocker()
	clock := now
	locker.now = func() time.Time { return clock }
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "nba", time.Minute)
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, "nba", time.Minute)
	assert.ErrorIs(t, err, ErrSweepInProgress)

	_, err = locker.Acquire(ctx, "ncaab", time.Minute)
	assert.NoError(t, err)

	require.NoError(t, release(ctx))
	_, err = locker.Acquire(ctx, "nba", time.Minute)
	assert.NoError(t, err)

	clock = clock.Add(2 * time.Minute)
	_, err = locker.Acquire(ctx, "nba", time.Minute)
	assert.NoError(t, err, "expired lease is reclaimable")
}

func TestRedisLocker(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	ctx := context.Background()

	first := NewRedisLocker(client, "test:")
	second := NewRedisLocker(client, "test:")

	release, err := first.Acquire(ctx, "basketball_nba", time.Minute)
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:basketball_nba"))

	_, err = second.Acquire(ctx, "basketball_nba", time.Minute)
	assert.ErrorIs(t, err, ErrSweepInProgress)

	require.NoError(t, release(ctx))
	assert.False(t, mr.Exists("test:basketball_nba"))

	release, err = second.Acquire(ctx, "basketball_nba", time.Minute)
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)
	_, err = first.Acquire(ctx, "basketball_nba", time.Minute)
	require.NoError(t, err)
	// a stale holder must not delete the new lease
	require.NoError(t, release(ctx))
	assert.True(t, mr.Exists("test:basketball_nba"))
}
