package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Dosada05/poker-league/metrics"
	"github.com/Dosada05/poker-league/models"
	"github.com/Dosada05/poker-league/repositories"
)

type RecordResultsOutcome struct {
	Game            *models.Game         `json:"game"`
	Results         []*models.GameResult `json:"results"`
	NoShowPenalties []*models.Penalty    `json:"no_show_penalties"`
}

// ResultsService фиксирует итоги игры и запускает пересчёт таблицы.
type ResultsService struct {
	tx            TxRunner
	games         repositories.GameRepository
	results       repositories.GameResultRepository
	registrations repositories.RegistrationRepository
	standings     *StandingsService
	penalties     *PenaltyService
	locks         *Locks
	rules         Rules
	clock         Clock
	metrics       *metrics.Metrics
	logger        *slog.Logger
}

func NewResultsService(
	tx TxRunner,
	games repositories.GameRepository,
	results repositories.GameResultRepository,
	registrations repositories.RegistrationRepository,
	standings *StandingsService,
	penalties *PenaltyService,
	locks *Locks,
	rules Rules,
	clock Clock,
	m *metrics.Metrics,
	logger *slog.Logger,
) *ResultsService {
	return &ResultsService{
		tx:            tx,
		games:         games,
		results:       results,
		registrations: registrations,
		standings:     standings,
		penalties:     penalties,
		locks:         locks,
		rules:         rules,
		clock:         clock,
		metrics:       m,
		logger:        logger,
	}
}

func validatePlacements(placements []models.Placement) error {
	if len(placements) == 0 {
		return fmt.Errorf("%w: at least one placement is required", ErrInvalidPlacements)
	}
	users := make(map[int64]struct{}, len(placements))
	places := make(map[int]struct{}, len(placements))
	for _, p := range placements {
		if p.UserID <= 0 {
			return fmt.Errorf("%w: user id must be positive", ErrInvalidPlacements)
		}
		if p.Place <= 0 {
			return fmt.Errorf("%w: place must be positive (user %d)", ErrInvalidPlacements, p.UserID)
		}
		if _, dup := users[p.UserID]; dup {
			return fmt.Errorf("%w: user %d listed twice", ErrInvalidPlacements, p.UserID)
		}
		if _, dup := places[p.Place]; dup {
			return fmt.Errorf("%w: place %d assigned twice", ErrInvalidPlacements, p.Place)
		}
		users[p.UserID] = struct{}{}
		places[p.Place] = struct{}{}
	}
	return nil
}

// RecordResults replaces the game's results, rebuilds the tournament standings,
// penalizes registered players missing from the placements and finishes the game.
// Penalties are written after the rebuild. Absences already penalized for this
// game are skipped, so re-recording is safe.
func (s *ResultsService) RecordResults(ctx context.Context, gameID int64, placements []models.Placement) (*RecordResultsOutcome, error) {
	if err := validatePlacements(placements); err != nil {
		return nil, err
	}

	game, err := loadGame(ctx, s.games, nil, gameID, false)
	if err != nil {
		return nil, err
	}

	unlockGame := s.locks.Game(gameID)
	defer unlockGame()
	unlockTournament := s.locks.Tournament(game.TournamentID)

	now := s.clock.Now()
	outcome := &RecordResultsOutcome{NoShowPenalties: make([]*models.Penalty, 0)}
	var applied []PenaltyInput
	var appliedOutcomes []*PenaltyOutcome

	err = s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		game, err := loadGame(ctx, s.games, tx, gameID, true)
		if err != nil {
			return err
		}
		if !isValidStatusTransition(game.Status, models.GameStatusFinished) {
			return fmt.Errorf("%w: from '%s' to '%s'", ErrInvalidStatusTransition, game.Status, models.GameStatusFinished)
		}

		results := make([]*models.GameResult, 0, len(placements))
		placed := make(map[int64]struct{}, len(placements))
		for _, p := range placements {
			points, err := s.rules.PointsTable.Points(p.Place)
			if err != nil {
				// validatePlacements уже отсёк неположительные места
				return fmt.Errorf("%w: %w", ErrInvalidPlacements, err)
			}
			results = append(results, &models.GameResult{
				GameID:       gameID,
				UserID:       p.UserID,
				Place:        p.Place,
				PointsEarned: points,
				RecordedAt:   now,
			})
			placed[p.UserID] = struct{}{}
		}
		if err := s.results.ReplaceForGame(ctx, tx, gameID, results); err != nil {
			return storageError("replace results", err)
		}

		if err := s.standings.rebuildInTx(ctx, tx, game.TournamentID, now); err != nil {
			return err
		}

		active, err := s.registrations.ListByGame(ctx, tx, gameID, false)
		if err != nil {
			return storageError("list registrations", err)
		}
		for _, reg := range active {
			if _, ok := placed[reg.UserID]; ok {
				continue
			}
			input := PenaltyInput{
				UserID:       reg.UserID,
				GameID:       &gameID,
				TournamentID: game.TournamentID,
				Reason:       models.PenaltyNoShow,
				Points:       s.rules.NoShowPenaltyPoints,
				EpisodeKey:   models.NoShowEpisodeKey(gameID, reg.UserID),
			}
			penalty, err := s.penalties.applyInTx(ctx, tx, input, now)
			if err != nil {
				return err
			}
			if penalty.Applied {
				outcome.NoShowPenalties = append(outcome.NoShowPenalties, penalty.Penalty)
				applied = append(applied, input)
				appliedOutcomes = append(appliedOutcomes, penalty)
			}
		}

		if game.Status != models.GameStatusFinished {
			if _, err := s.games.TransitionStatus(ctx, tx, gameID, game.Status, models.GameStatusFinished); err != nil {
				return storageError("finish game", err)
			}
			game.Status = models.GameStatusFinished
		}

		outcome.Game = game
		outcome.Results = results
		return nil
	})
	unlockTournament()
	if err != nil {
		return nil, err
	}

	for i := range applied {
		s.penalties.record(ctx, applied[i], appliedOutcomes[i])
	}
	s.metrics.ResultsRecorded()
	s.logger.InfoContext(ctx, "Game results recorded",
		slog.Int64("game_id", gameID),
		slog.Int64("tournament_id", game.TournamentID),
		slog.Int("placements", len(placements)),
		slog.Int("no_show_penalties", len(outcome.NoShowPenalties)))

	s.standings.publishSnapshot(ctx, game.TournamentID)
	return outcome, nil
}

func (s *ResultsService) ListResults(ctx context.Context, gameID int64) ([]*models.GameResult, error) {
	if _, err := loadGame(ctx, s.games, nil, gameID, false); err != nil {
		return nil, err
	}
	results, err := s.results.ListByGame(ctx, nil, gameID)
	if err != nil {
		return nil, storageError("list results", err)
	}
	return results, nil
}
