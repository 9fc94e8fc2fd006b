package services

import (
	"cmp"
	"context"
	"database/sql"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/poker-league/metrics"
	"github.com/Dosada05/poker-league/models"
	"github.com/Dosada05/poker-league/repositories"
	"github.com/Dosada05/poker-league/storage"
)

// SnapshotPublisher receives the leaderboard after every rebuild.
type SnapshotPublisher interface {
	Publish(ctx context.Context, tournamentID int64, payload any) (*storage.UploadResult, error)
}

// StandingsService пересчитывает и отдаёт таблицу сезона.
type StandingsService struct {
	tx          TxRunner
	standings   repositories.TournamentStandingRepository
	results     repositories.GameResultRepository
	penalties   repositories.PenaltyRepository
	tournaments repositories.TournamentRepository
	locks       *Locks
	clock       Clock
	publisher   SnapshotPublisher
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// NewStandingsService wires the aggregator. publisher may be nil.
func NewStandingsService(
	tx TxRunner,
	standings repositories.TournamentStandingRepository,
	results repositories.GameResultRepository,
	penalties repositories.PenaltyRepository,
	tournaments repositories.TournamentRepository,
	locks *Locks,
	clock Clock,
	publisher SnapshotPublisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) *StandingsService {
	return &StandingsService{
		tx:          tx,
		standings:   standings,
		results:     results,
		penalties:   penalties,
		tournaments: tournaments,
		locks:       locks,
		clock:       clock,
		publisher:   publisher,
		metrics:     m,
		logger:      logger,
	}
}

// RebuildStandings recomputes every standing of the tournament from stored
// results and the penalty ledger.
func (s *StandingsService) RebuildStandings(ctx context.Context, tournamentID int64) error {
	unlock := s.locks.Tournament(tournamentID)
	err := s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := loadTournament(ctx, s.tournaments, tx, tournamentID); err != nil {
			return err
		}
		return s.rebuildInTx(ctx, tx, tournamentID, s.clock.Now())
	})
	unlock()
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Standings rebuilt", slog.Int64("tournament_id", tournamentID))
	s.publishSnapshot(ctx, tournamentID)
	return nil
}

// rebuildInTx requires the caller to hold the tournament lock.
//
// totalPoints = max(0, Σ pointsEarned − Σ deducted). A penalty absorbed by the
// zero floor stays absorbed, and a no-show is ignored once the player has a
// result in that game. Rows of players who no longer have results drop back to zero.
func (s *StandingsService) rebuildInTx(ctx context.Context, tx *sql.Tx, tournamentID int64, now time.Time) error {
	started := time.Now()

	aggregates, err := s.results.AggregateByTournament(ctx, tx, tournamentID)
	if err != nil {
		return storageError("aggregate results", err)
	}
	deducted, err := s.penalties.DeductedByTournament(ctx, tx, tournamentID)
	if err != nil {
		return storageError("sum penalties", err)
	}
	existing, err := s.standings.ListByTournament(ctx, tx, tournamentID, false)
	if err != nil {
		return storageError("list standings", err)
	}

	seen := make(map[int64]struct{}, len(aggregates))
	for _, agg := range aggregates {
		seen[agg.UserID] = struct{}{}
		standing := &models.TournamentStanding{
			TournamentID: tournamentID,
			UserID:       agg.UserID,
			TotalPoints:  max(0, agg.TotalPoints-deducted[agg.UserID]),
			GamesPlayed:  agg.GamesPlayed,
			AveragePlace: agg.AveragePlace,
			BestPlace:    agg.BestPlace,
			UpdatedAt:    now,
		}
		if err := s.standings.Upsert(ctx, tx, standing); err != nil {
			return storageError("upsert standing", err)
		}
	}

	for _, stale := range existing {
		if _, ok := seen[stale.UserID]; ok {
			continue
		}
		reset := &models.TournamentStanding{
			TournamentID: tournamentID,
			UserID:       stale.UserID,
			UpdatedAt:    now,
		}
		if err := s.standings.Upsert(ctx, tx, reset); err != nil {
			return storageError("reset standing", err)
		}
	}

	s.metrics.ObserveRebuild(time.Since(started))
	return nil
}

// rankStandings sorts by totalPoints DESC, gamesPlayed ASC, userID ASC and numbers positions from 1.
func rankStandings(standings []*models.TournamentStanding, topPlayersCount int) {
	slices.SortFunc(standings, func(a, b *models.TournamentStanding) int {
		if c := cmp.Compare(b.TotalPoints, a.TotalPoints); c != 0 {
			return c
		}
		if c := cmp.Compare(a.GamesPlayed, b.GamesPlayed); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})
	for i, standing := range standings {
		standing.Position = i + 1
		standing.InGrandFinal = standing.Position <= topPlayersCount
	}
}

func (s *StandingsService) Leaderboard(ctx context.Context, tournamentID int64) (*models.Leaderboard, error) {
	var (
		tournament *models.Tournament
		standings  []*models.TournamentStanding
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tournament, err = loadTournament(gctx, s.tournaments, nil, tournamentID)
		return err
	})
	g.Go(func() error {
		var err error
		standings, err = s.standings.ListByTournament(gctx, nil, tournamentID, true)
		if err != nil {
			return storageError("list standings", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rankStandings(standings, tournament.TopPlayersCount)
	return &models.Leaderboard{Tournament: tournament, Standings: standings}, nil
}

// UserStanding returns one player's ranked row and the penalties recorded against them.
func (s *StandingsService) UserStanding(ctx context.Context, tournamentID, userID int64) (*models.UserStandingDetails, error) {
	leaderboard, err := s.Leaderboard(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	idx := slices.IndexFunc(leaderboard.Standings, func(st *models.TournamentStanding) bool {
		return st.UserID == userID
	})
	if idx < 0 {
		return nil, ErrStandingNotFound
	}

	penalties, err := s.penalties.ListByTournament(ctx, nil, tournamentID, &userID)
	if err != nil {
		return nil, storageError("list penalties", err)
	}
	return &models.UserStandingDetails{Standing: leaderboard.Standings[idx], Penalties: penalties}, nil
}

// ListPenalties returns the tournament's penalty ledger, optionally for one player.
func (s *StandingsService) ListPenalties(ctx context.Context, tournamentID int64, userID *int64) ([]*models.Penalty, error) {
	if _, err := loadTournament(ctx, s.tournaments, nil, tournamentID); err != nil {
		return nil, err
	}
	penalties, err := s.penalties.ListByTournament(ctx, nil, tournamentID, userID)
	if err != nil {
		return nil, storageError("list penalties", err)
	}
	return penalties, nil
}

func (s *StandingsService) publishSnapshot(ctx context.Context, tournamentID int64) {
	if s.publisher == nil {
		return
	}
	leaderboard, err := s.Leaderboard(ctx, tournamentID)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to load leaderboard for snapshot", slog.Int64("tournament_id", tournamentID), slog.Any("error", err))
		return
	}
	result, err := s.publisher.Publish(ctx, tournamentID, leaderboard)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to publish standings snapshot", slog.Int64("tournament_id", tournamentID), slog.Any("error", err))
		return
	}
	s.logger.DebugContext(ctx, "Standings snapshot published", slog.Int64("tournament_id", tournamentID), slog.String("key", result.Key))
}
