package services

import (
	"context"
	"errors"

	"github.com/Dosada05/poker-league/models"
	"github.com/Dosada05/poker-league/repositories"
)

func isValidStatusTransition(current, next models.GameStatus) bool {
	if current == next {
		return true
	}
	allowedTransitions := map[models.GameStatus][]models.GameStatus{
		models.GameStatusUpcoming:   {models.GameStatusInProgress, models.GameStatusFinished},
		models.GameStatusInProgress: {models.GameStatusFinished},
		models.GameStatusFinished:   {},
	}
	for _, allowedNextStatus := range allowedTransitions[current] {
		if next == allowedNextStatus {
			return true
		}
	}
	return false
}

func loadGame(ctx context.Context, repo repositories.GameRepository, exec repositories.SQLExecutor, gameID int64, forUpdate bool) (*models.Game, error) {
	var (
		game *models.Game
		err  error
	)
	if forUpdate {
		game, err = repo.GetByIDForUpdate(ctx, exec, gameID)
	} else {
		game, err = repo.GetByID(ctx, exec, gameID)
	}
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, storageError("get game", err)
	}
	return game, nil
}

func loadTournament(ctx context.Context, repo repositories.TournamentRepository, exec repositories.SQLExecutor, tournamentID int64) (*models.Tournament, error) {
	tournament, err := repo.GetByID(ctx, exec, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, storageError("get tournament", err)
	}
	return tournament, nil
}
