package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/poker-league/db"
	"github.com/Dosada05/poker-league/models"
)

var (
	ErrTournamentStandingNotFound = errors.New("tournament standing not found")
	ErrStandingTournamentInvalid  = errors.New("standing tournament conflict or invalid")
)

type TournamentStandingRepository interface {
	GetByTournamentAndUser(ctx context.Context, exec SQLExecutor, tournamentID, userID int64) (*models.TournamentStanding, error)
	// GetOrCreate возвращает строку игрока, создавая её с нулевыми значениями при отсутствии.
	GetOrCreate(ctx context.Context, exec SQLExecutor, tournamentID, userID int64, now time.Time) (*models.TournamentStanding, error)
	Upsert(ctx context.Context, exec SQLExecutor, standing *models.TournamentStanding) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int64, sortByRank bool) ([]*models.TournamentStanding, error)
}

type sqlTournamentStandingRepository struct {
	db *db.DB // Main DB connection, can be used if exec is nil
}

func NewTournamentStandingRepository(database *db.DB) TournamentStandingRepository {
	return &sqlTournamentStandingRepository{db: database}
}

func (r *sqlTournamentStandingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const standingColumns = `tournament_id, user_id, total_points, games_played, average_place, best_place, updated_at`

func (r *sqlTournamentStandingRepository) scanStanding(scanner rowScanner) (*models.TournamentStanding, error) {
	var (
		s         models.TournamentStanding
		updatedAt int64
	)
	err := scanner.Scan(
		&s.TournamentID, &s.UserID, &s.TotalPoints, &s.GamesPlayed,
		&s.AveragePlace, &s.BestPlace, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentStandingNotFound
		}
		return nil, err
	}
	s.UpdatedAt = fromMillis(updatedAt)
	return &s, nil
}

func (r *sqlTournamentStandingRepository) GetByTournamentAndUser(ctx context.Context, exec SQLExecutor, tournamentID, userID int64) (*models.TournamentStanding, error) {
	query := r.db.Rebind(`
		SELECT ` + standingColumns + `
		FROM tournament_standings
		WHERE tournament_id = ? AND user_id = ?`)
	row := r.getExecutor(exec).QueryRowContext(ctx, query, tournamentID, userID)
	return r.scanStanding(row)
}

func (r *sqlTournamentStandingRepository) Upsert(ctx context.Context, exec SQLExecutor, s *models.TournamentStanding) error {
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now()
	}
	query := r.db.Rebind(`
		INSERT INTO tournament_standings
		    (tournament_id, user_id, total_points, games_played, average_place, best_place, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (tournament_id, user_id) DO UPDATE SET
			total_points = excluded.total_points,
			games_played = excluded.games_played,
			average_place = excluded.average_place,
			best_place = excluded.best_place,
			updated_at = excluded.updated_at`)
	_, err := r.getExecutor(exec).ExecContext(ctx, query,
		s.TournamentID, s.UserID, s.TotalPoints, s.GamesPlayed,
		s.AveragePlace, s.BestPlace, toMillis(s.UpdatedAt),
	)
	if err != nil && db.IsForeignKeyViolation(err) {
		return ErrStandingTournamentInvalid
	}
	return err
}

func (r *sqlTournamentStandingRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int64, sortByRank bool) ([]*models.TournamentStanding, error) {
	queryBuilder := strings.Builder{}
	queryBuilder.WriteString(`
		SELECT ` + standingColumns + `
		FROM tournament_standings
		WHERE tournament_id = ?`)

	if sortByRank {
		// Порядок совпадает с idx_tournament_standings_ranking
		queryBuilder.WriteString(" ORDER BY total_points DESC, games_played ASC, user_id ASC")
	} else {
		queryBuilder.WriteString(" ORDER BY user_id ASC")
	}

	rows, err := r.getExecutor(exec).QueryContext(ctx, r.db.Rebind(queryBuilder.String()), tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	standings := make([]*models.TournamentStanding, 0)
	for rows.Next() {
		s, errScan := r.scanStanding(rows)
		if errScan != nil {
			return nil, errScan
		}
		standings = append(standings, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return standings, nil
}

func (r *sqlTournamentStandingRepository) GetOrCreate(ctx context.Context, exec SQLExecutor, tournamentID, userID int64, now time.Time) (*models.TournamentStanding, error) {
	executor := r.getExecutor(exec)
	standing, err := r.GetByTournamentAndUser(ctx, executor, tournamentID, userID)
	if err != nil {
		if errors.Is(err, ErrTournamentStandingNotFound) {
			newStanding := &models.TournamentStanding{
				TournamentID: tournamentID,
				UserID:       userID,
				UpdatedAt:    now,
			}
			if createErr := r.Upsert(ctx, executor, newStanding); createErr != nil {
				return nil, fmt.Errorf("failed to create standing for t:%d u:%d: %w", tournamentID, userID, createErr)
			}
			return newStanding, nil
		}
		return nil, fmt.Errorf("failed to get standing for t:%d u:%d: %w", tournamentID, userID, err)
	}
	return standing, nil
}
