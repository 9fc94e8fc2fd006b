package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/poker-league/db"
	"github.com/Dosada05/poker-league/models"
)

var (
	ErrPenaltyEpisodeExists    = errors.New("penalty for this episode already recorded")
	ErrPenaltyReferenceInvalid = errors.New("invalid tournament or game reference")
)

type PenaltyRepository interface {
	Create(ctx context.Context, exec SQLExecutor, penalty *models.Penalty) error
	ExistsEpisode(ctx context.Context, exec SQLExecutor, episodeKey string) (bool, error)
	// ListByTournament возвращает штрафы сезона; userID == nil: по всем игрокам.
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int64, userID *int64) ([]*models.Penalty, error)
	// DeductedByTournament суммирует фактически снятые очки по игрокам. Неявка
	// не учитывается, если у игрока теперь есть результат в этой игре.
	DeductedByTournament(ctx context.Context, exec SQLExecutor, tournamentID int64) (map[int64]int, error)
	Totals(ctx context.Context) (count int, points int, err error)
}

type sqlPenaltyRepository struct {
	db *db.DB
}

func NewPenaltyRepository(database *db.DB) PenaltyRepository {
	return &sqlPenaltyRepository{db: database}
}

func (r *sqlPenaltyRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *sqlPenaltyRepository) Create(ctx context.Context, exec SQLExecutor, p *models.Penalty) error {
	query := r.db.Rebind(`
		INSERT INTO penalties (user_id, game_id, tournament_id, reason, points, deducted, episode_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)

	var gameID, episodeKey interface{}
	if p.GameID != nil {
		gameID = *p.GameID
	}
	if p.EpisodeKey != nil {
		episodeKey = *p.EpisodeKey
	}

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		p.UserID, gameID, p.TournamentID, string(p.Reason), p.Points, p.Deducted, episodeKey, toMillis(p.CreatedAt),
	).Scan(&p.ID)
	switch {
	case err == nil:
		return nil
	case db.IsUniqueViolation(err):
		return ErrPenaltyEpisodeExists
	case db.IsForeignKeyViolation(err):
		return ErrPenaltyReferenceInvalid
	default:
		return err
	}
}

func (r *sqlPenaltyRepository) ExistsEpisode(ctx context.Context, exec SQLExecutor, episodeKey string) (bool, error) {
	var found int
	query := r.db.Rebind(`SELECT 1 FROM penalties WHERE episode_key = ?`)
	err := r.getExecutor(exec).QueryRowContext(ctx, query, episodeKey).Scan(&found)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *sqlPenaltyRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int64, userID *int64) ([]*models.Penalty, error) {
	query := `
		SELECT id, user_id, game_id, tournament_id, reason, points, deducted, episode_key, created_at
		FROM penalties
		WHERE tournament_id = ?`
	args := []interface{}{tournamentID}
	if userID != nil {
		query += ` AND user_id = ?`
		args = append(args, *userID)
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := r.getExecutor(exec).QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	penalties := make([]*models.Penalty, 0)
	for rows.Next() {
		var (
			p          models.Penalty
			gameID     sql.NullInt64
			episodeKey sql.NullString
			createdAt  int64
		)
		if err := rows.Scan(&p.ID, &p.UserID, &gameID, &p.TournamentID, &p.Reason, &p.Points, &p.Deducted, &episodeKey, &createdAt); err != nil {
			return nil, err
		}
		if gameID.Valid {
			p.GameID = &gameID.Int64
		}
		if episodeKey.Valid {
			p.EpisodeKey = &episodeKey.String
		}
		p.CreatedAt = fromMillis(createdAt)
		penalties = append(penalties, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return penalties, nil
}

func (r *sqlPenaltyRepository) DeductedByTournament(ctx context.Context, exec SQLExecutor, tournamentID int64) (map[int64]int, error) {
	query := r.db.Rebind(`
		SELECT p.user_id, SUM(p.deducted)
		FROM penalties p
		WHERE p.tournament_id = ?
		  AND NOT (p.reason = ? AND p.game_id IS NOT NULL AND EXISTS (
		      SELECT 1 FROM game_results r
		      WHERE r.game_id = p.game_id AND r.user_id = p.user_id))
		GROUP BY p.user_id`)
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, tournamentID, string(models.PenaltyNoShow))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sums := make(map[int64]int)
	for rows.Next() {
		var (
			userID int64
			total  int
		)
		if err := rows.Scan(&userID, &total); err != nil {
			return nil, err
		}
		sums[userID] = total
	}
	return sums, rows.Err()
}

func (r *sqlPenaltyRepository) Totals(ctx context.Context) (count int, points int, err error) {
	err = r.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(points), 0) FROM penalties`).Scan(&count, &points)
	return count, points, err
}
