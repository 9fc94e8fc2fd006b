package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/poker-league/models"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tournament := env.tournament(t, "Season", 20)
	game := env.game(t, tournament.ID, 24*time.Hour, 9)

	reg, err := env.league.Registrations.Register(ctx, game.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationRegistered, reg.Status)
	assert.True(t, testNow.Equal(reg.RegisteredAt))

	_, err = env.league.Registrations.Register(ctx, game.ID, 1)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = env.league.Registrations.Register(ctx, 999, 1)
	assert.ErrorIs(t, err, ErrGameNotFound)

	got, err := env.league.Games.GetGame(ctx, game.ID)
	require.NoError(t, err)
	require.NotNil(t, got.RegisteredCount)
	assert.Equal(t, 1, *got.RegisteredCount)
}

func TestRegisterClosedAfterDeadline(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tournament := env.tournament(t, "Season", 20)
	game := env.game(t, tournament.ID, time.Hour, 9)

	// Дедлайн = начало + 2 часа; ровно в момент дедлайна запись уже закрыта.
	env.clock.Set(game.RegistrationDeadline)
	_, err := env.league.Registrations.Register(ctx, game.ID, 1)
	assert.ErrorIs(t, err, ErrRegistrationClosed)

	env.clock.Set(game.RegistrationDeadline.Add(-time.Second))
	_, err = env.league.Registrations.Register(ctx, game.ID, 1)
	assert.NoError(t, err)
}

func TestRegisterClosedWhenGameNotUpcoming(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tournament := env.tournament(t, "Season", 20)
	game := env.game(t, tournament.ID, 24*time.Hour, 9)

	status := models.GameStatusInProgress
	_, err := env.league.Games.UpdateGame(ctx, game.ID, models.GameUpdate{Status: &status})
	require.NoError(t, err)

	_, err = env.league.Registrations.Register(ctx, game.ID, 1)
	assert.ErrorIs(t, err, ErrRegistrationClosed)
}

func TestRegisterGameFull(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tournament := env.tournament(t, "Season", 20)
	game := env.game(t, tournament.ID, 24*time.Hour, 2)

	_, err := env.league.Registrations.Register(ctx, game.ID, 1)
	require.NoError(t, err)
	_, err = env.league.Registrations.Register(ctx, game.ID, 2)
	require.NoError(t, err)

	_, err = env.league.Registrations.Register(ctx, game.ID, 3)
	assert.ErrorIs(t, err, ErrGameFull)

	// Отмена освобождает место.
	_, err = env.league.Registrations.Cancel(ctx, game.ID, 1)
	require.NoError(t, err)
	_, err = env.league.Registrations.Register(ctx, game.ID, 3)
	assert.NoError(t, err)
}

func TestRegisterNeverExceedsCapacityUnderConcurrency(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tournament := env.tournament(t, "Season", 20)
	const maxPlayers = 5
	game := env.game(t, tournament.ID, 24*time.Hour, maxPlayers)

	const attempts = 25
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		full      int
	)
	for i := 1; i <= attempts; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			_, err := env.league.Registrations.Register(ctx, game.ID, userID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case assert.ErrorIs(t, err, ErrGameFull):
				full++
			}
		}(int64(i))
	}
	wg.Wait()

	assert.Equal(t, maxPlayers, succeeded)
	assert.Equal(t, attempts-maxPlayers, full)

	active, err := env.league.Registrations.ListRegistrations(ctx, game.ID, false)
	require.NoError(t, err)
	assert.Len(t, active, maxPlayers)
}

func TestCancelPenaltyWindow(t *testing.T) {
	tests := []struct {
		name        string
		startsIn    time.Duration
		wantPenalty bool
		wantStatus  models.RegistrationStatus
	}{
		{"well ahead", 48 * time.Hour, false, models.RegistrationCancelled},
		{"exactly at window", 12 * time.Hour, false, models.RegistrationCancelled},
		{"just inside window", 12*time.Hour - time.Second, true, models.RegistrationCancelledWithPenalty},
		{"after start", -time.Hour, true, models.RegistrationCancelledWithPenalty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()
			tournament := env.tournament(t, "Season", 20)
			game := env.game(t, tournament.ID, 72*time.Hour, 9)

			_, err := env.league.Registrations.Register(ctx, game.ID, 1)
			require.NoError(t, err)

			env.clock.Set(game.ScheduledAt.Add(-tt.startsIn))
			outcome, err := env.league.Registrations.Cancel(ctx, game.ID, 1)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPenalty, outcome.PenaltyApplied)
			assert.Equal(t, tt.wantStatus, outcome.Registration.Status)

			penalties, err := env.league.Standings.ListPenalties(ctx, tournament.ID, nil)
			require.NoError(t, err)
			if tt.wantPenalty {
				require.Len(t, penalties, 1)
				assert.Equal(t, models.PenaltyLateCancellation, penalties[0].Reason)
				assert.Equal(t, env.rules.LateCancellationPenaltyPoints, penalties[0].Points)
				assert.Equal(t, env.rules.LateCancellationPenaltyPoints, outcome.PenaltyPoints)
			} else {
				assert.Empty(t, penalties)
				assert.Zero(t, outcome.PenaltyPoints)
			}
		})
	}
}

func TestLateCancelDeductsFromExistingTotal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tournament := env.tournament(t, "Season", 20)

	first := env.game(t, tournament.ID, time.Hour, 9)
	_, err := env.league.Results.RecordResults(ctx, first.ID, []models.Placement{{UserID: 1, Place: 2}})
	require.NoError(t, err)
	assert.Equal(t, 240, env.standing(t, tournament.ID, 1).TotalPoints)

	second := env.game(t, tournament.ID, 5*time.Hour, 9)
	_, err = env.league.Registrations.Register(ctx, second.ID, 1)
	require.NoError(t, err)
	outcome, err := env.league.Registrations.Cancel(ctx, second.ID, 1)
	require.NoError(t, err)
	require.True(t, outcome.PenaltyApplied)
	assert.Equal(t, 140, env.standing(t, tournament.ID, 1).TotalPoints)

	third := env.game(t, tournament.ID, 5*time.Hour, 9)
	_, err = env.league.Registrations.Register(ctx, third.ID, 1)
	require.NoError(t, err)
	_, err = env.league.Registrations.Cancel(ctx, third.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 40, env.standing(t, tournament.ID, 1).TotalPoints)

	fourth := env.game(t, tournament.ID, 5*time.Hour, 9)
	_, err = env.league.Registrations.Register(ctx, fourth.ID, 1)
	require.NoError(t, err)
	_, err = env.league.Registrations.Cancel(ctx, fourth.ID, 1)
	require.NoError(t, err)
	assert.Zero(t, env.standing(t, tournament.ID, 1).TotalPoints, "total is clamped at zero")
}

func TestCancelErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tournament := env.tournament(t, "Season", 20)
	game := env.game(t, tournament.ID, 48*time.Hour, 9)

	_, err := env.league.Registrations.Cancel(ctx, 999, 1)
	assert.ErrorIs(t, err, ErrGameNotFound)

	_, err = env.league.Registrations.Cancel(ctx, game.ID, 1)
	assert.ErrorIs(t, err, ErrRegistrationNotFound)

	_, err = env.league.Registrations.Register(ctx, game.ID, 1)
	require.NoError(t, err)
	_, err = env.league.Registrations.Cancel(ctx, game.ID, 1)
	require.NoError(t, err)
	_, err = env.league.Registrations.Cancel(ctx, game.ID, 1)
	assert.ErrorIs(t, err, ErrRegistrationNotFound)
}

func TestCancelRejectedAfterResults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tournament := env.tournament(t, "Season", 20)
	game := env.game(t, tournament.ID, 5*time.Hour, 9)

	for _, userID := range []int64{1, 2} {
		_, err := env.league.Registrations.Register(ctx, game.ID, userID)
		require.NoError(t, err)
	}
	_, err := env.league.Results.RecordResults(ctx, game.ID, []models.Placement{{UserID: 1, Place: 1}})
	require.NoError(t, err)

	// Игрок 1 сыграл, игрок 2 уже получил штраф за неявку.
	for _, userID := range []int64{1, 2} {
		_, err = env.league.Registrations.Cancel(ctx, game.ID, userID)
		assert.ErrorIs(t, err, ErrRegistrationClosed)
		assert.ErrorIs(t, err, ErrConflict)
	}

	penalties, err := env.league.Standings.ListPenalties(ctx, tournament.ID, nil)
	require.NoError(t, err)
	require.Len(t, penalties, 1)
	assert.Equal(t, models.PenaltyNoShow, penalties[0].Reason)
	assert.Equal(t, 300, env.standing(t, tournament.ID, 1).TotalPoints)

	active, err := env.league.Registrations.ListRegistrations(ctx, game.ID, false)
	require.NoError(t, err)
	assert.Len(t, active, 2)
}

func TestMarkPaid(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tournament := env.tournament(t, "Season", 20)
	game := env.game(t, tournament.ID, 48*time.Hour, 9)

	_, err := env.league.Registrations.MarkPaid(ctx, game.ID, 1, true)
	assert.ErrorIs(t, err, ErrRegistrationNotFound)

	_, err = env.league.Registrations.Register(ctx, game.ID, 1)
	require.NoError(t, err)

	env.clock.Advance(time.Minute)
	reg, err := env.league.Registrations.MarkPaid(ctx, game.ID, 1, true)
	require.NoError(t, err)
	assert.True(t, reg.Paid)
	require.NotNil(t, reg.PaidAt)
	assert.True(t, testNow.Add(time.Minute).Equal(*reg.PaidAt))

	reg, err = env.league.Registrations.MarkPaid(ctx, game.ID, 1, false)
	require.NoError(t, err)
	assert.False(t, reg.Paid)
	assert.Nil(t, reg.PaidAt)

	all, err := env.league.Registrations.ListRegistrations(ctx, game.ID, true)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.False(t, all[0].Paid)
}
