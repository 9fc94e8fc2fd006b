package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/poker-league/metrics"
	"github.com/Dosada05/poker-league/models"
	"github.com/Dosada05/poker-league/repositories"
)

// RegistrationService ведёт записи игроков на игры: вместимость, отмены и оплату.
type RegistrationService struct {
	tx            TxRunner
	registrations repositories.RegistrationRepository
	games         repositories.GameRepository
	penalties     *PenaltyService
	locks         *Locks
	rules         Rules
	clock         Clock
	metrics       *metrics.Metrics
	logger        *slog.Logger
}

func NewRegistrationService(
	tx TxRunner,
	registrations repositories.RegistrationRepository,
	games repositories.GameRepository,
	penalties *PenaltyService,
	locks *Locks,
	rules Rules,
	clock Clock,
	m *metrics.Metrics,
	logger *slog.Logger,
) *RegistrationService {
	return &RegistrationService{
		tx:            tx,
		registrations: registrations,
		games:         games,
		penalties:     penalties,
		locks:         locks,
		rules:         rules,
		clock:         clock,
		metrics:       m,
		logger:        logger,
	}
}

// Register reserves a seat. The capacity check and the insert run under the
// game lock inside one transaction, so maxPlayers is never exceeded.
func (s *RegistrationService) Register(ctx context.Context, gameID, userID int64) (*models.Registration, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: user id is required", ErrValidationFailed)
	}

	unlock := s.locks.Game(gameID)
	defer unlock()

	now := s.clock.Now()
	var registration *models.Registration
	err := s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		game, err := loadGame(ctx, s.games, tx, gameID, true)
		if err != nil {
			return err
		}
		if game.Status != models.GameStatusUpcoming || !now.Before(game.RegistrationDeadline) {
			return ErrRegistrationClosed
		}

		_, err = s.registrations.FindActive(ctx, tx, gameID, userID)
		switch {
		case err == nil:
			return ErrAlreadyRegistered
		case !errors.Is(err, repositories.ErrRegistrationNotFound):
			return storageError("find registration", err)
		}

		active, err := s.registrations.CountActive(ctx, tx, gameID)
		if err != nil {
			return storageError("count registrations", err)
		}
		if active >= game.MaxPlayers {
			return ErrGameFull
		}

		registration = &models.Registration{
			GameID:       gameID,
			UserID:       userID,
			Status:       models.RegistrationRegistered,
			RegisteredAt: now,
		}
		if err := s.registrations.Create(ctx, tx, registration); err != nil {
			if errors.Is(err, repositories.ErrRegistrationConflict) {
				return ErrAlreadyRegistered
			}
			return storageError("create registration", err)
		}
		return nil
	})
	s.metrics.Registration(registrationOutcome(err))
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Player registered", slog.Int64("game_id", gameID), slog.Int64("user_id", userID))
	return registration, nil
}

func registrationOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrGameFull):
		return "game_full"
	case errors.Is(err, ErrAlreadyRegistered):
		return "already_registered"
	case errors.Is(err, ErrRegistrationClosed):
		return "closed"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

// Cancel releases the seat. Cancelling less than the penalty window before the
// scheduled start costs a late-cancellation penalty; exactly at the window it does not.
// A finished game no longer accepts cancellations.
func (s *RegistrationService) Cancel(ctx context.Context, gameID, userID int64) (*models.CancelOutcome, error) {
	game, err := loadGame(ctx, s.games, nil, gameID, false)
	if err != nil {
		return nil, err
	}

	unlockGame := s.locks.Game(gameID)
	defer unlockGame()
	unlockTournament := s.locks.Tournament(game.TournamentID)
	defer unlockTournament()

	now := s.clock.Now()
	outcome := &models.CancelOutcome{}
	var penalty *PenaltyOutcome
	penaltyInput := PenaltyInput{
		UserID:       userID,
		GameID:       &gameID,
		TournamentID: game.TournamentID,
		Reason:       models.PenaltyLateCancellation,
		Points:       s.rules.LateCancellationPenaltyPoints,
	}

	err = s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		game, err := loadGame(ctx, s.games, tx, gameID, true)
		if err != nil {
			return err
		}
		registration, err := s.registrations.FindActive(ctx, tx, gameID, userID)
		if err != nil {
			if errors.Is(err, repositories.ErrRegistrationNotFound) {
				return ErrRegistrationNotFound
			}
			return storageError("find registration", err)
		}
		// После итогов отмена уже ничего не значит: неявку учитывает RecordResults.
		if game.Status == models.GameStatusFinished {
			return ErrRegistrationClosed
		}

		timeUntilGame := game.ScheduledAt.Sub(now)
		late := timeUntilGame < s.rules.CancellationPenaltyWindow

		status := models.RegistrationCancelled
		if late {
			status = models.RegistrationCancelledWithPenalty
		}
		if err := s.registrations.Cancel(ctx, tx, registration.ID, status, now); err != nil {
			if errors.Is(err, repositories.ErrRegistrationNotFound) {
				return ErrRegistrationNotFound
			}
			return storageError("cancel registration", err)
		}
		registration.Status = status
		registration.CancelledAt = &now
		outcome.Registration = registration

		if late {
			penalty, err = s.penalties.applyInTx(ctx, tx, penaltyInput, now)
			if err != nil {
				return err
			}
			outcome.PenaltyApplied = penalty.Applied
			outcome.PenaltyPoints = penaltyInput.Points
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Cancellation(outcome.PenaltyApplied)
	s.penalties.record(ctx, penaltyInput, penalty)
	s.logger.InfoContext(ctx, "Registration cancelled",
		slog.Int64("game_id", gameID),
		slog.Int64("user_id", userID),
		slog.Bool("penalty_applied", outcome.PenaltyApplied))
	return outcome, nil
}

// MarkPaid sets or clears the payment flag on the active registration.
func (s *RegistrationService) MarkPaid(ctx context.Context, gameID, userID int64, paid bool) (*models.Registration, error) {
	unlock := s.locks.Game(gameID)
	defer unlock()

	var registration *models.Registration
	err := s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := loadGame(ctx, s.games, tx, gameID, false); err != nil {
			return err
		}
		var err error
		registration, err = s.registrations.FindActive(ctx, tx, gameID, userID)
		if err != nil {
			if errors.Is(err, repositories.ErrRegistrationNotFound) {
				return ErrRegistrationNotFound
			}
			return storageError("find registration", err)
		}

		registration.Paid = paid
		registration.PaidAt = nil
		if paid {
			now := s.clock.Now()
			registration.PaidAt = &now
		}
		if err := s.registrations.UpdatePayment(ctx, tx, registration.ID, registration.Paid, registration.PaidAt); err != nil {
			return storageError("update payment", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return registration, nil
}

func (s *RegistrationService) ListRegistrations(ctx context.Context, gameID int64, includeCancelled bool) ([]*models.Registration, error) {
	if _, err := loadGame(ctx, s.games, nil, gameID, false); err != nil {
		return nil, err
	}
	registrations, err := s.registrations.ListByGame(ctx, nil, gameID, includeCancelled)
	if err != nil {
		return nil, storageError("list registrations", err)
	}
	return registrations, nil
}
