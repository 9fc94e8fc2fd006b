package services

import (
	"log/slog"
	"time"

	"github.com/Dosada05/poker-league/db"
	"github.com/Dosada05/poker-league/metrics"
	"github.com/Dosada05/poker-league/repositories"
)

// League bundles the services that share one database, one lock registry and one clock.
type League struct {
	Tournaments   *TournamentService
	Games         *GameService
	Registrations *RegistrationService
	Results       *ResultsService
	Penalties     *PenaltyService
	Standings     *StandingsService
	Dashboard     DashboardService
	Sweeper       *Sweeper
}

type LeagueOptions struct {
	Rules         Rules
	Clock         Clock
	SweepInterval time.Duration
	Publisher     SnapshotPublisher // nil отключает публикацию снимков
	Metrics       *metrics.Metrics
	Logger        *slog.Logger
}

func NewLeague(database *db.DB, opts LeagueOptions) *League {
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	tournamentRepo := repositories.NewTournamentRepository(database)
	gameRepo := repositories.NewGameRepository(database)
	registrationRepo := repositories.NewRegistrationRepository(database)
	resultRepo := repositories.NewGameResultRepository(database)
	penaltyRepo := repositories.NewPenaltyRepository(database)
	standingRepo := repositories.NewTournamentStandingRepository(database)

	locks := NewLocks()
	penalties := NewPenaltyService(database, penaltyRepo, standingRepo, tournamentRepo, gameRepo,
		locks, opts.Clock, opts.Metrics, opts.Logger)
	standings := NewStandingsService(database, standingRepo, resultRepo, penaltyRepo, tournamentRepo,
		locks, opts.Clock, opts.Publisher, opts.Metrics, opts.Logger)

	return &League{
		Tournaments: NewTournamentService(tournamentRepo, opts.Rules, opts.Clock, opts.Logger),
		Games: NewGameService(database, gameRepo, tournamentRepo, registrationRepo,
			locks, opts.Rules, opts.Clock, opts.Logger),
		Registrations: NewRegistrationService(database, registrationRepo, gameRepo, penalties,
			locks, opts.Rules, opts.Clock, opts.Metrics, opts.Logger),
		Results: NewResultsService(database, gameRepo, resultRepo, registrationRepo, standings, penalties,
			locks, opts.Rules, opts.Clock, opts.Metrics, opts.Logger),
		Penalties: penalties,
		Standings: standings,
		Dashboard: NewDashboardService(tournamentRepo, gameRepo, registrationRepo, penaltyRepo),
		Sweeper:   NewSweeper(gameRepo, locks, opts.Clock, opts.SweepInterval, opts.Metrics, opts.Logger),
	}
}
