package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/poker-league/models"
	"github.com/Dosada05/poker-league/repositories"
)

type DashboardService interface {
	GetStats(ctx context.Context) (models.DashboardStats, error)
}

type dashboardService struct {
	tournamentRepo   repositories.TournamentRepository
	gameRepo         repositories.GameRepository
	registrationRepo repositories.RegistrationRepository
	penaltyRepo      repositories.PenaltyRepository
}

func NewDashboardService(
	tournamentRepo repositories.TournamentRepository,
	gameRepo repositories.GameRepository,
	registrationRepo repositories.RegistrationRepository,
	penaltyRepo repositories.PenaltyRepository,
) DashboardService {
	return &dashboardService{
		tournamentRepo:   tournamentRepo,
		gameRepo:         gameRepo,
		registrationRepo: registrationRepo,
		penaltyRepo:      penaltyRepo,
	}
}

func (s *dashboardService) GetStats(ctx context.Context) (models.DashboardStats, error) {
	var (
		stats       models.DashboardStats
		gamesByStat map[models.GameStatus]int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats.TournamentsTotal, err = s.tournamentRepo.Count(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		gamesByStat, err = s.gameRepo.CountByStatus(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		stats.ActiveRegistrations, err = s.registrationRepo.CountActiveTotal(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		stats.PenaltiesTotal, stats.PenaltyPointsTotal, err = s.penaltyRepo.Totals(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.DashboardStats{}, storageError("collect stats", err)
	}

	stats.GamesByStatus = map[string]int{
		string(models.GameStatusUpcoming):   0,
		string(models.GameStatusInProgress): 0,
		string(models.GameStatusFinished):   0,
	}
	for status, count := range gamesByStat {
		stats.GamesByStatus[string(status)] = count
	}
	return stats, nil
}
