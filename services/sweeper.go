package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Dosada05/poker-league/metrics"
	"github.com/Dosada05/poker-league/models"
	"github.com/Dosada05/poker-league/repositories"
)

const DefaultSweepInterval = 60 * time.Second

// Sweeper переводит игры из upcoming в in_progress, когда истёк дедлайн регистрации.
type Sweeper struct {
	games    repositories.GameRepository
	locks    *Locks
	clock    Clock
	interval time.Duration
	metrics  *metrics.Metrics
	logger   *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewSweeper(
	games repositories.GameRepository,
	locks *Locks,
	clock Clock,
	interval time.Duration,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{
		games:    games,
		locks:    locks,
		clock:    clock,
		interval: interval,
		metrics:  m,
		logger:   logger,
	}
}

// Start runs a sweep immediately and then every interval until Stop or ctx is done.
// Calling Start on a running sweeper is a no-op.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		s.logger.Info("Lifecycle sweeper started", slog.Duration("interval", s.interval))

		// Run once immediately at startup, then on ticker
		s.sweep(ctx)
		for {
			select {
			case <-ctx.Done():
				s.logger.Info("Lifecycle sweeper stopped")
				return
			case <-ticker.C:
				s.sweep(ctx)
			}
		}
	}(s.done)
}

// Stop cancels the loop and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Sweeper) sweep(ctx context.Context) {
	if _, err := s.SweepOnce(ctx); err != nil && ctx.Err() == nil {
		s.logger.Error("Sweeper: run failed", slog.Any("error", err))
	}
}

// SweepOnce starts every upcoming game whose registration deadline has passed.
// Each transition is conditional on the game still being upcoming, so repeated
// or concurrent sweeps change nothing. A failing game is logged and skipped.
func (s *Sweeper) SweepOnce(ctx context.Context) (started int, err error) {
	now := s.clock.Now()
	due, err := s.games.ListDueForStart(ctx, now)
	if err != nil {
		s.metrics.SweeperRun(0, 0)
		return 0, storageError("list due games", err)
	}

	failed := 0
	for _, game := range due {
		if ctx.Err() != nil {
			break
		}
		changed, err := s.startGame(ctx, game.ID, now)
		if err != nil {
			failed++
			s.logger.ErrorContext(ctx, "Sweeper: failed to start game",
				slog.Int64("game_id", game.ID),
				slog.Any("error", err))
			continue
		}
		if changed {
			started++
			s.logger.InfoContext(ctx, "Game started by sweeper",
				slog.Int64("game_id", game.ID),
				slog.Int64("tournament_id", game.TournamentID),
				slog.Time("registration_deadline", game.RegistrationDeadline))
		}
	}

	s.metrics.SweeperRun(started, failed)
	return started, nil
}

// startGame re-reads the game under its lock: the deadline may have moved since the listing.
func (s *Sweeper) startGame(ctx context.Context, gameID int64, now time.Time) (bool, error) {
	unlock := s.locks.Game(gameID)
	defer unlock()

	game, err := loadGame(ctx, s.games, nil, gameID, false)
	if err != nil {
		return false, err
	}
	if game.Status != models.GameStatusUpcoming || !game.RegistrationDeadline.Before(now) {
		return false, nil
	}
	changed, err := s.games.TransitionStatus(ctx, nil, gameID, models.GameStatusUpcoming, models.GameStatusInProgress)
	if err != nil {
		return false, storageError("start game", err)
	}
	return changed, nil
}
