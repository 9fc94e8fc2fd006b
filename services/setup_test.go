package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Dosada05/poker-league/db"
	"github.com/Dosada05/poker-league/db/dbtest"
	"github.com/Dosada05/poker-league/models"
	"github.com/Dosada05/poker-league/storage"
)

var testNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	db        *db.DB
	league    *League
	clock     *FakeClock
	rules     Rules
	publisher *fakePublisher
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	database := dbtest.Open(t)
	clock := NewFakeClock(testNow)
	rules := DefaultRules()
	publisher := &fakePublisher{}
	league := NewLeague(database, LeagueOptions{
		Rules:     rules,
		Clock:     clock,
		Publisher: publisher,
		Logger:    discardLogger(),
	})
	return &testEnv{db: database, league: league, clock: clock, rules: rules, publisher: publisher}
}

func (e *testEnv) tournament(t *testing.T, name string, topPlayers int) *models.Tournament {
	t.Helper()
	tournament, err := e.league.Tournaments.CreateTournament(context.Background(), CreateTournamentInput{
		Name:            name,
		TopPlayersCount: &topPlayers,
	})
	require.NoError(t, err)
	return tournament
}

// game schedules a game startsIn from the fake clock's now.
func (e *testEnv) game(t *testing.T, tournamentID int64, startsIn time.Duration, maxPlayers int) *models.Game {
	t.Helper()
	game, err := e.league.Games.CreateGame(context.Background(), tournamentID, CreateGameInput{
		ScheduledAt: e.clock.Now().Add(startsIn),
		MaxPlayers:  maxPlayers,
		BuyIn:       2000,
	})
	require.NoError(t, err)
	return game
}

func (e *testEnv) standing(t *testing.T, tournamentID, userID int64) *models.TournamentStanding {
	t.Helper()
	details, err := e.league.Standings.UserStanding(context.Background(), tournamentID, userID)
	require.NoError(t, err)
	return details.Standing
}

type fakePublisher struct {
	mu        sync.Mutex
	published []int64
	err       error
}

func (p *fakePublisher) Publish(_ context.Context, tournamentID int64, _ any) (*storage.UploadResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	p.published = append(p.published, tournamentID)
	return &storage.UploadResult{Key: "standings/latest.json"}, nil
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published)
}
