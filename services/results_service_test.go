package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/poker-league/models"
)

func TestSeasonScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	const (
		userA int64 = 101
		userB int64 = 102
		userC int64 = 103
		userD int64 = 104
	)
	tournament := env.tournament(t, "Season", 20)
	game := env.game(t, tournament.ID, 5*time.Hour, 2)

	_, err := env.league.Registrations.Register(ctx, game.ID, userA)
	require.NoError(t, err)
	_, err = env.league.Registrations.Register(ctx, game.ID, userB)
	require.NoError(t, err)
	_, err = env.league.Registrations.Register(ctx, game.ID, userC)
	assert.ErrorIs(t, err, ErrConflict)

	outcome, err := env.league.Registrations.Cancel(ctx, game.ID, userA)
	require.NoError(t, err)
	assert.True(t, outcome.PenaltyApplied)

	details, err := env.league.Standings.UserStanding(ctx, tournament.ID, userA)
	require.NoError(t, err)
	assert.Zero(t, details.Standing.TotalPoints)
	require.Len(t, details.Penalties, 1)
	assert.Equal(t, models.PenaltyLateCancellation, details.Penalties[0].Reason)

	_, err = env.league.Registrations.Register(ctx, game.ID, userD)
	require.NoError(t, err)
	_, err = env.league.Registrations.MarkPaid(ctx, game.ID, userD, true)
	require.NoError(t, err)

	recorded, err := env.league.Results.RecordResults(ctx, game.ID, []models.Placement{{UserID: userB, Place: 1}})
	require.NoError(t, err)
	assert.Equal(t, models.GameStatusFinished, recorded.Game.Status)
	require.Len(t, recorded.NoShowPenalties, 1)
	assert.Equal(t, userD, recorded.NoShowPenalties[0].UserID)
	assert.Equal(t, models.PenaltyNoShow, recorded.NoShowPenalties[0].Reason)

	b := env.standing(t, tournament.ID, userB)
	assert.Equal(t, 300, b.TotalPoints)
	assert.Equal(t, 1, b.GamesPlayed)
	assert.Equal(t, 1, b.BestPlace)
	assert.Equal(t, 1, b.Position)

	d, err := env.league.Standings.UserStanding(ctx, tournament.ID, userD)
	require.NoError(t, err)
	assert.Zero(t, d.Standing.TotalPoints)
	require.Len(t, d.Penalties, 1)
	assert.Equal(t, env.rules.NoShowPenaltyPoints, d.Penalties[0].Points)

	assert.Zero(t, env.standing(t, tournament.ID, userA).TotalPoints)

	stored, err := env.league.Games.GetGame(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GameStatusFinished, stored.Status)
}

func TestRecordResultsReplacesPreviousSet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tournament := env.tournament(t, "Season", 20)
	game := env.game(t, tournament.ID, time.Hour, 9)

	_, err := env.league.Results.RecordResults(ctx, game.ID, []models.Placement{
		{UserID: 1, Place: 1},
		{UserID: 2, Place: 2},
		{UserID: 3, Place: 3},
	})
	require.NoError(t, err)

	_, err = env.league.Results.RecordResults(ctx, game.ID, []models.Placement{
		{UserID: 2, Place: 1},
		{UserID: 1, Place: 7},
	})
	require.NoError(t, err)

	results, err := env.league.Results.ListResults(ctx, game.ID)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, int64(2), results[0].UserID)
	assert.Equal(t, 300, results[0].PointsEarned)
	assert.Equal(t, 90, results[1].PointsEarned)

	assert.Equal(t, 90, env.standing(t, tournament.ID, 1).TotalPoints)
	assert.Equal(t, 300, env.standing(t, tournament.ID, 2).TotalPoints)

	// Игрок 3 выпал из результатов: строка остаётся, но обнулена.
	third := env.standing(t, tournament.ID, 3)
	assert.Zero(t, third.TotalPoints)
	assert.Zero(t, third.GamesPlayed)
}

func TestRecordResultsAccumulatesAcrossGames(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tournament := env.tournament(t, "Season", 20)
	first := env.game(t, tournament.ID, time.Hour, 9)
	second := env.game(t, tournament.ID, 25*time.Hour, 9)

	_, err := env.league.Results.RecordResults(ctx, first.ID, []models.Placement{{UserID: 1, Place: 1}, {UserID: 2, Place: 4}})
	require.NoError(t, err)
	_, err = env.league.Results.RecordResults(ctx, second.ID, []models.Placement{{UserID: 1, Place: 15}, {UserID: 2, Place: 2}})
	require.NoError(t, err)

	one := env.standing(t, tournament.ID, 1)
	assert.Equal(t, 330, one.TotalPoints)
	assert.Equal(t, 2, one.GamesPlayed)
	assert.Equal(t, 1, one.BestPlace)
	assert.InDelta(t, 8.0, one.AveragePlace, 1e-9)

	two := env.standing(t, tournament.ID, 2)
	assert.Equal(t, 390, two.TotalPoints)
	assert.InDelta(t, 3.0, two.AveragePlace, 1e-9)
	assert.Equal(t, 1, two.Position)
}

func TestRecordResultsNoShowPenaltyIsNotRepeated(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tournament := env.tournament(t, "Season", 20)
	game := env.game(t, tournament.ID, time.Hour, 9)

	for _, userID := range []int64{1, 2} {
		_, err := env.league.Registrations.Register(ctx, game.ID, userID)
		require.NoError(t, err)
	}

	first, err := env.league.Results.RecordResults(ctx, game.ID, []models.Placement{{UserID: 1, Place: 1}})
	require.NoError(t, err)
	assert.Len(t, first.NoShowPenalties, 1)

	second, err := env.league.Results.RecordResults(ctx, game.ID, []models.Placement{{UserID: 1, Place: 2}})
	require.NoError(t, err)
	assert.Empty(t, second.NoShowPenalties)

	penalties, err := env.league.Standings.ListPenalties(ctx, tournament.ID, nil)
	require.NoError(t, err)
	assert.Len(t, penalties, 1)
	assert.Equal(t, 240, env.standing(t, tournament.ID, 1).TotalPoints)
}

func TestRecordResultsCorrectionLiftsNoShow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tournament := env.tournament(t, "Season", 20)
	earlier := env.game(t, tournament.ID, time.Hour, 9)
	game := env.game(t, tournament.ID, 25*time.Hour, 9)

	_, err := env.league.Results.RecordResults(ctx, earlier.ID, []models.Placement{{UserID: 2, Place: 4}})
	require.NoError(t, err)

	for _, userID := range []int64{1, 2} {
		_, err = env.league.Registrations.Register(ctx, game.ID, userID)
		require.NoError(t, err)
	}
	first, err := env.league.Results.RecordResults(ctx, game.ID, []models.Placement{{UserID: 1, Place: 1}})
	require.NoError(t, err)
	require.Len(t, first.NoShowPenalties, 1)
	assert.Equal(t, 50, env.standing(t, tournament.ID, 2).TotalPoints)

	// Игрок 2 на самом деле сыграл и победил.
	_, err = env.league.Results.RecordResults(ctx, game.ID, []models.Placement{
		{UserID: 1, Place: 2},
		{UserID: 2, Place: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, 150+300, env.standing(t, tournament.ID, 2).TotalPoints)
	assert.Equal(t, 240, env.standing(t, tournament.ID, 1).TotalPoints)

	// Запись о неявке остаётся в журнале.
	penalties, err := env.league.Standings.ListPenalties(ctx, tournament.ID, nil)
	require.NoError(t, err)
	assert.Len(t, penalties, 1)

	require.NoError(t, env.league.Standings.RebuildStandings(ctx, tournament.ID))
	assert.Equal(t, 450, env.standing(t, tournament.ID, 2).TotalPoints)
}

func TestRecordResultsCorrectionFromAbsentToWinner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tournament := env.tournament(t, "Season", 20)
	game := env.game(t, tournament.ID, time.Hour, 9)

	for _, userID := range []int64{1, 2} {
		_, err := env.league.Registrations.Register(ctx, game.ID, userID)
		require.NoError(t, err)
	}
	_, err := env.league.Results.RecordResults(ctx, game.ID, []models.Placement{{UserID: 1, Place: 1}})
	require.NoError(t, err)
	_, err = env.league.Results.RecordResults(ctx, game.ID, []models.Placement{
		{UserID: 1, Place: 2},
		{UserID: 2, Place: 1},
	})
	require.NoError(t, err)

	leaderboard, err := env.league.Standings.Leaderboard(ctx, tournament.ID)
	require.NoError(t, err)
	require.Len(t, leaderboard.Standings, 2)
	assert.Equal(t, int64(2), leaderboard.Standings[0].UserID)
	assert.Equal(t, 300, leaderboard.Standings[0].TotalPoints)
	assert.Equal(t, 240, leaderboard.Standings[1].TotalPoints)
}

func TestRecordResultsPenalizesUnpaidNoShow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tournament := env.tournament(t, "Season", 20)
	game := env.game(t, tournament.ID, time.Hour, 9)

	for _, userID := range []int64{1, 2, 3} {
		_, err := env.league.Registrations.Register(ctx, game.ID, userID)
		require.NoError(t, err)
	}
	_, err := env.league.Registrations.MarkPaid(ctx, game.ID, 2, true)
	require.NoError(t, err)

	recorded, err := env.league.Results.RecordResults(ctx, game.ID, []models.Placement{{UserID: 1, Place: 1}})
	require.NoError(t, err)

	// Неявка штрафуется независимо от оплаты: и оплативший 2, и не оплативший 3.
	penalized := make([]int64, 0, len(recorded.NoShowPenalties))
	for _, p := range recorded.NoShowPenalties {
		assert.Equal(t, models.PenaltyNoShow, p.Reason)
		assert.Equal(t, env.rules.NoShowPenaltyPoints, p.Points)
		penalized = append(penalized, p.UserID)
	}
	assert.ElementsMatch(t, []int64{2, 3}, penalized)

	unpaid, err := env.league.Standings.UserStanding(ctx, tournament.ID, 3)
	require.NoError(t, err)
	assert.Zero(t, unpaid.Standing.TotalPoints)
	require.Len(t, unpaid.Penalties, 1)
}

func TestRecordResultsValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tournament := env.tournament(t, "Season", 20)
	game := env.game(t, tournament.ID, time.Hour, 9)

	tests := []struct {
		name       string
		placements []models.Placement
	}{
		{"empty", nil},
		{"zero place", []models.Placement{{UserID: 1, Place: 0}}},
		{"negative place", []models.Placement{{UserID: 1, Place: -2}}},
		{"duplicate user", []models.Placement{{UserID: 1, Place: 1}, {UserID: 1, Place: 2}}},
		{"duplicate place", []models.Placement{{UserID: 1, Place: 1}, {UserID: 2, Place: 1}}},
		{"missing user", []models.Placement{{Place: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.league.Results.RecordResults(ctx, game.ID, tt.placements)
			assert.ErrorIs(t, err, ErrInvalidPlacements)
			assert.ErrorIs(t, err, ErrValidationFailed)
		})
	}

	_, err := env.league.Results.RecordResults(ctx, 999, []models.Placement{{UserID: 1, Place: 1}})
	assert.ErrorIs(t, err, ErrGameNotFound)

	stored, err := env.league.Games.GetGame(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GameStatusUpcoming, stored.Status)
}

func TestRecordResultsFinishesInProgressGameAndPublishes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tournament := env.tournament(t, "Season", 20)
	game := env.game(t, tournament.ID, -3*time.Hour, 9)

	started, err := env.league.Sweeper.SweepOnce(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, started)

	recorded, err := env.league.Results.RecordResults(ctx, game.ID, []models.Placement{{UserID: 1, Place: 1}})
	require.NoError(t, err)
	assert.Equal(t, models.GameStatusFinished, recorded.Game.Status)
	assert.Equal(t, 1, env.publisher.count())
}
