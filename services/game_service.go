package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/poker-league/models"
	"github.com/Dosada05/poker-league/repositories"
)

type CreateGameInput struct {
	SequenceNumber       int        `json:"sequence_number"`
	ScheduledAt          time.Time  `json:"scheduled_at"`
	MinPlayers           int        `json:"min_players"`
	MaxPlayers           int        `json:"max_players"`
	BuyIn                int64      `json:"buy_in"`
	RegistrationDeadline *time.Time `json:"registration_deadline,omitempty"`
}

// GameService управляет расписанием игр сезона.
type GameService struct {
	tx            TxRunner
	games         repositories.GameRepository
	tournaments   repositories.TournamentRepository
	registrations repositories.RegistrationRepository
	locks         *Locks
	rules         Rules
	clock         Clock
	logger        *slog.Logger
}

func NewGameService(
	tx TxRunner,
	games repositories.GameRepository,
	tournaments repositories.TournamentRepository,
	registrations repositories.RegistrationRepository,
	locks *Locks,
	rules Rules,
	clock Clock,
	logger *slog.Logger,
) *GameService {
	return &GameService{
		tx:            tx,
		games:         games,
		tournaments:   tournaments,
		registrations: registrations,
		locks:         locks,
		rules:         rules,
		clock:         clock,
		logger:        logger,
	}
}

func validateGameLimits(minPlayers, maxPlayers int, buyIn int64) error {
	if maxPlayers <= 0 || minPlayers < 0 || minPlayers > maxPlayers {
		return fmt.Errorf("%w: min=%d max=%d", ErrGameInvalidCapacity, minPlayers, maxPlayers)
	}
	if buyIn < 0 {
		return ErrGameInvalidBuyIn
	}
	return nil
}

// CreateGame schedules a game. Without an explicit deadline registration stays
// open until the default window after the scheduled start. A zero sequence
// number takes the next free one.
func (s *GameService) CreateGame(ctx context.Context, tournamentID int64, input CreateGameInput) (*models.Game, error) {
	if input.ScheduledAt.IsZero() || input.SequenceNumber < 0 {
		return nil, ErrGameInvalidSchedule
	}
	if err := validateGameLimits(input.MinPlayers, input.MaxPlayers, input.BuyIn); err != nil {
		return nil, err
	}
	if _, err := loadTournament(ctx, s.tournaments, nil, tournamentID); err != nil {
		return nil, err
	}

	deadline := input.ScheduledAt.Add(s.rules.DefaultRegistrationWindow)
	if input.RegistrationDeadline != nil {
		deadline = *input.RegistrationDeadline
	}

	sequence := input.SequenceNumber
	if sequence == 0 {
		existing, err := s.games.ListByTournament(ctx, tournamentID)
		if err != nil {
			return nil, storageError("list games", err)
		}
		for _, g := range existing {
			if g.SequenceNumber >= sequence {
				sequence = g.SequenceNumber
			}
		}
		sequence++
	}

	game := &models.Game{
		TournamentID:         tournamentID,
		SequenceNumber:       sequence,
		ScheduledAt:          input.ScheduledAt.UTC(),
		MinPlayers:           input.MinPlayers,
		MaxPlayers:           input.MaxPlayers,
		BuyIn:                input.BuyIn,
		RegistrationDeadline: deadline.UTC(),
		Status:               models.GameStatusUpcoming,
		CreatedAt:            s.clock.Now(),
	}
	if err := s.games.Create(ctx, game); err != nil {
		switch {
		case errors.Is(err, repositories.ErrGameSequenceConflict):
			return nil, ErrGameSequenceConflict
		case errors.Is(err, repositories.ErrGameTournamentInvalid):
			return nil, ErrTournamentNotFound
		default:
			return nil, storageError("create game", err)
		}
	}

	s.logger.InfoContext(ctx, "Game scheduled",
		slog.Int64("game_id", game.ID),
		slog.Int64("tournament_id", tournamentID),
		slog.Int("sequence_number", game.SequenceNumber),
		slog.Time("registration_deadline", game.RegistrationDeadline))
	return game, nil
}

// GetGame returns the game with the number of active registrations.
func (s *GameService) GetGame(ctx context.Context, gameID int64) (*models.Game, error) {
	game, err := loadGame(ctx, s.games, nil, gameID, false)
	if err != nil {
		return nil, err
	}
	count, err := s.registrations.CountActive(ctx, nil, gameID)
	if err != nil {
		return nil, storageError("count registrations", err)
	}
	game.RegisteredCount = &count
	return game, nil
}

func (s *GameService) ListGames(ctx context.Context, tournamentID int64) ([]*models.Game, error) {
	if _, err := loadTournament(ctx, s.tournaments, nil, tournamentID); err != nil {
		return nil, err
	}
	games, err := s.games.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, storageError("list games", err)
	}
	return games, nil
}

// UpdateGame applies a partial update. Status changes follow the same state
// machine as the sweeper and results recording.
func (s *GameService) UpdateGame(ctx context.Context, gameID int64, update models.GameUpdate) (*models.Game, error) {
	if update.Empty() {
		return nil, ErrGameUpdateEmpty
	}
	if update.Status != nil && !update.Status.Valid() {
		return nil, ErrGameInvalidStatus
	}

	unlock := s.locks.Game(gameID)
	defer unlock()

	var game *models.Game
	err := s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		game, err = loadGame(ctx, s.games, tx, gameID, true)
		if err != nil {
			return err
		}

		if update.ScheduledAt != nil {
			if update.ScheduledAt.IsZero() {
				return ErrGameInvalidSchedule
			}
			// Дедлайн сдвигается вместе с началом игры, если не задан явно.
			shift := update.ScheduledAt.Sub(game.ScheduledAt)
			game.ScheduledAt = update.ScheduledAt.UTC()
			game.RegistrationDeadline = game.RegistrationDeadline.Add(shift)
		}
		if update.RegistrationDeadline != nil {
			game.RegistrationDeadline = update.RegistrationDeadline.UTC()
		}
		if update.MinPlayers != nil {
			game.MinPlayers = *update.MinPlayers
		}
		if update.MaxPlayers != nil {
			game.MaxPlayers = *update.MaxPlayers
		}
		if update.BuyIn != nil {
			game.BuyIn = *update.BuyIn
		}
		if err := validateGameLimits(game.MinPlayers, game.MaxPlayers, game.BuyIn); err != nil {
			return err
		}
		if update.MaxPlayers != nil {
			active, err := s.registrations.CountActive(ctx, tx, gameID)
			if err != nil {
				return storageError("count registrations", err)
			}
			if active > game.MaxPlayers {
				return fmt.Errorf("%w: %d players already registered", ErrGameInvalidCapacity, active)
			}
		}
		if update.Status != nil {
			if !isValidStatusTransition(game.Status, *update.Status) {
				return fmt.Errorf("%w: from '%s' to '%s'", ErrInvalidStatusTransition, game.Status, *update.Status)
			}
			game.Status = *update.Status
		}

		if err := s.games.Update(ctx, tx, game); err != nil {
			if errors.Is(err, repositories.ErrGameNotFound) {
				return ErrGameNotFound
			}
			return storageError("update game", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Game updated", slog.Int64("game_id", game.ID), slog.String("status", string(game.Status)))
	return game, nil
}
