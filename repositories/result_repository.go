package repositories

import (
	"context"
	"fmt"

	"github.com/Dosada05/poker-league/db"
	"github.com/Dosada05/poker-league/models"
)

type GameResultRepository interface {
	// ReplaceForGame удаляет прежние результаты игры и записывает новый набор.
	// Вызывать внутри транзакции.
	ReplaceForGame(ctx context.Context, exec SQLExecutor, gameID int64, results []*models.GameResult) error
	ListByGame(ctx context.Context, exec SQLExecutor, gameID int64) ([]*models.GameResult, error)
	AggregateByTournament(ctx context.Context, exec SQLExecutor, tournamentID int64) ([]models.ResultAggregate, error)
}

type sqlGameResultRepository struct {
	db *db.DB
}

func NewGameResultRepository(database *db.DB) GameResultRepository {
	return &sqlGameResultRepository{db: database}
}

func (r *sqlGameResultRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *sqlGameResultRepository) ReplaceForGame(ctx context.Context, exec SQLExecutor, gameID int64, results []*models.GameResult) error {
	executor := r.getExecutor(exec)
	if _, err := executor.ExecContext(ctx, r.db.Rebind(`DELETE FROM game_results WHERE game_id = ?`), gameID); err != nil {
		return fmt.Errorf("failed to clear results for game %d: %w", gameID, err)
	}

	query := r.db.Rebind(`
		INSERT INTO game_results (game_id, user_id, place, points_earned, recorded_at)
		VALUES (?, ?, ?, ?, ?)`)
	for _, res := range results {
		_, err := executor.ExecContext(ctx, query,
			gameID, res.UserID, res.Place, res.PointsEarned, toMillis(res.RecordedAt))
		if err != nil {
			return fmt.Errorf("failed to insert result for user %d: %w", res.UserID, err)
		}
	}
	return nil
}

func (r *sqlGameResultRepository) ListByGame(ctx context.Context, exec SQLExecutor, gameID int64) ([]*models.GameResult, error) {
	query := r.db.Rebind(`
		SELECT game_id, user_id, place, points_earned, recorded_at
		FROM game_results
		WHERE game_id = ?
		ORDER BY place ASC, user_id ASC`)
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]*models.GameResult, 0)
	for rows.Next() {
		var (
			res        models.GameResult
			recordedAt int64
		)
		if err := rows.Scan(&res.GameID, &res.UserID, &res.Place, &res.PointsEarned, &recordedAt); err != nil {
			return nil, err
		}
		res.RecordedAt = fromMillis(recordedAt)
		results = append(results, &res)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *sqlGameResultRepository) AggregateByTournament(ctx context.Context, exec SQLExecutor, tournamentID int64) ([]models.ResultAggregate, error) {
	query := r.db.Rebind(`
		SELECT gr.user_id,
		       SUM(gr.points_earned),
		       COUNT(*),
		       AVG(CAST(gr.place AS DOUBLE PRECISION)),
		       MIN(gr.place)
		FROM game_results gr
		JOIN games g ON g.id = gr.game_id
		WHERE g.tournament_id = ?
		GROUP BY gr.user_id
		ORDER BY gr.user_id ASC`)
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	aggregates := make([]models.ResultAggregate, 0)
	for rows.Next() {
		var a models.ResultAggregate
		if err := rows.Scan(&a.UserID, &a.TotalPoints, &a.GamesPlayed, &a.AveragePlace, &a.BestPlace); err != nil {
			return nil, err
		}
		aggregates = append(aggregates, a)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return aggregates, nil
}
