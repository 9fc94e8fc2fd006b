package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/poker-league/metrics"
	"github.com/Dosada05/poker-league/models"
	"github.com/Dosada05/poker-league/repositories"
)

// PenaltyInput describes a deduction. EpisodeKey, when set, makes the call
// idempotent: a second penalty for the same episode is not recorded.
type PenaltyInput struct {
	UserID       int64                `json:"user_id"`
	GameID       *int64               `json:"game_id,omitempty"`
	TournamentID int64                `json:"tournament_id"`
	Reason       models.PenaltyReason `json:"reason"`
	Points       int                  `json:"points"`
	EpisodeKey   string               `json:"-"`
}

type PenaltyOutcome struct {
	Applied  bool                       `json:"applied"`
	Penalty  *models.Penalty            `json:"penalty,omitempty"`
	Standing *models.TournamentStanding `json:"standing,omitempty"`
}

// PenaltyService пишет штрафы в журнал и вычитает их из таблицы сезона.
type PenaltyService struct {
	tx          TxRunner
	penalties   repositories.PenaltyRepository
	standings   repositories.TournamentStandingRepository
	tournaments repositories.TournamentRepository
	games       repositories.GameRepository
	locks       *Locks
	clock       Clock
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

func NewPenaltyService(
	tx TxRunner,
	penalties repositories.PenaltyRepository,
	standings repositories.TournamentStandingRepository,
	tournaments repositories.TournamentRepository,
	games repositories.GameRepository,
	locks *Locks,
	clock Clock,
	m *metrics.Metrics,
	logger *slog.Logger,
) *PenaltyService {
	return &PenaltyService{
		tx:          tx,
		penalties:   penalties,
		standings:   standings,
		tournaments: tournaments,
		games:       games,
		locks:       locks,
		clock:       clock,
		metrics:     m,
		logger:      logger,
	}
}

// ApplyPenalty records the penalty and lowers the player's total, never below zero.
// A missing standing row is created at zero first.
func (s *PenaltyService) ApplyPenalty(ctx context.Context, input PenaltyInput) (*PenaltyOutcome, error) {
	if err := validatePenalty(input); err != nil {
		return nil, err
	}

	unlock := s.locks.Tournament(input.TournamentID)
	defer unlock()

	var outcome *PenaltyOutcome
	err := s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		outcome, err = s.applyInTx(ctx, tx, input, s.clock.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, input, outcome)
	return outcome, nil
}

func validatePenalty(input PenaltyInput) error {
	if input.Points <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidPenaltyPoints, input.Points)
	}
	if strings.TrimSpace(string(input.Reason)) == "" {
		return ErrInvalidPenaltyReason
	}
	if input.UserID <= 0 {
		return fmt.Errorf("%w: user id is required", ErrValidationFailed)
	}
	return nil
}

// applyInTx requires the caller to hold the tournament lock.
func (s *PenaltyService) applyInTx(ctx context.Context, tx *sql.Tx, input PenaltyInput, now time.Time) (*PenaltyOutcome, error) {
	if err := validatePenalty(input); err != nil {
		return nil, err
	}
	if _, err := loadTournament(ctx, s.tournaments, tx, input.TournamentID); err != nil {
		return nil, err
	}
	if input.GameID != nil {
		game, err := loadGame(ctx, s.games, tx, *input.GameID, false)
		if err != nil {
			return nil, err
		}
		if game.TournamentID != input.TournamentID {
			return nil, ErrGameTournamentMismatch
		}
	}

	penalty := &models.Penalty{
		UserID:       input.UserID,
		GameID:       input.GameID,
		TournamentID: input.TournamentID,
		Reason:       input.Reason,
		Points:       input.Points,
		CreatedAt:    now,
	}
	if input.EpisodeKey != "" {
		exists, err := s.penalties.ExistsEpisode(ctx, tx, input.EpisodeKey)
		if err != nil {
			return nil, storageError("check penalty episode", err)
		}
		if exists {
			return &PenaltyOutcome{Applied: false}, nil
		}
		key := input.EpisodeKey
		penalty.EpisodeKey = &key
	}

	standing, err := s.standings.GetOrCreate(ctx, tx, input.TournamentID, input.UserID, now)
	if err != nil {
		return nil, storageError("get standing", err)
	}
	// Пол в ноль: в журнал пишем только то, что реально снято,
	// чтобы пересчёт таблицы не списал остаток с будущих очков.
	penalty.Deducted = min(input.Points, standing.TotalPoints)

	if err := s.penalties.Create(ctx, tx, penalty); err != nil {
		if errors.Is(err, repositories.ErrPenaltyEpisodeExists) {
			return &PenaltyOutcome{Applied: false}, nil
		}
		return nil, storageError("create penalty", err)
	}

	standing.TotalPoints -= penalty.Deducted
	standing.UpdatedAt = now
	if err := s.standings.Upsert(ctx, tx, standing); err != nil {
		return nil, storageError("update standing", err)
	}

	return &PenaltyOutcome{Applied: true, Penalty: penalty, Standing: standing}, nil
}

// record runs after commit.
func (s *PenaltyService) record(ctx context.Context, input PenaltyInput, outcome *PenaltyOutcome) {
	if outcome == nil || !outcome.Applied {
		return
	}
	s.metrics.Penalty(string(input.Reason), input.Points)
	s.logger.InfoContext(ctx, "Penalty applied",
		slog.Int64("tournament_id", input.TournamentID),
		slog.Int64("user_id", input.UserID),
		slog.String("reason", string(input.Reason)),
		slog.Int("points", input.Points),
		slog.Int("total_points", outcome.Standing.TotalPoints))
}
