package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Dosada05/poker-league/db"
	"github.com/Dosada05/poker-league/models"
)

var (
	ErrGameNotFound          = errors.New("game not found")
	ErrGameSequenceConflict  = errors.New("game sequence number already used in this tournament")
	ErrGameTournamentInvalid = errors.New("invalid tournament reference")
)

type GameRepository interface {
	Create(ctx context.Context, game *models.Game) error
	GetByID(ctx context.Context, exec SQLExecutor, id int64) (*models.Game, error)
	// GetByIDForUpdate читает игру, блокируя строку до конца транзакции (PostgreSQL).
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int64) (*models.Game, error)
	ListByTournament(ctx context.Context, tournamentID int64) ([]*models.Game, error)
	Update(ctx context.Context, exec SQLExecutor, game *models.Game) error
	// TransitionStatus меняет статус только если текущий равен from.
	TransitionStatus(ctx context.Context, exec SQLExecutor, id int64, from, to models.GameStatus) (bool, error)
	ListDueForStart(ctx context.Context, now time.Time) ([]*models.Game, error)
	CountByStatus(ctx context.Context) (map[models.GameStatus]int, error)
}

type sqlGameRepository struct {
	db *db.DB
}

func NewGameRepository(database *db.DB) GameRepository {
	return &sqlGameRepository{db: database}
}

func (r *sqlGameRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const gameColumns = `id, tournament_id, sequence_number, scheduled_at, min_players, max_players,
	buy_in, registration_deadline, status, created_at`

func scanGame(scanner rowScanner) (*models.Game, error) {
	var (
		g                                models.Game
		scheduledAt, deadline, createdAt int64
	)
	err := scanner.Scan(
		&g.ID, &g.TournamentID, &g.SequenceNumber, &scheduledAt, &g.MinPlayers, &g.MaxPlayers,
		&g.BuyIn, &deadline, &g.Status, &createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	g.ScheduledAt = fromMillis(scheduledAt)
	g.RegistrationDeadline = fromMillis(deadline)
	g.CreatedAt = fromMillis(createdAt)
	return &g, nil
}

func (r *sqlGameRepository) Create(ctx context.Context, g *models.Game) error {
	query := r.db.Rebind(`
		INSERT INTO games (
			tournament_id, sequence_number, scheduled_at, min_players, max_players,
			buy_in, registration_deadline, status, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)

	err := r.db.QueryRowContext(ctx, query,
		g.TournamentID, g.SequenceNumber, toMillis(g.ScheduledAt), g.MinPlayers, g.MaxPlayers,
		g.BuyIn, toMillis(g.RegistrationDeadline), string(g.Status), toMillis(g.CreatedAt),
	).Scan(&g.ID)
	return r.handleGameError(err)
}

func (r *sqlGameRepository) handleGameError(err error) error {
	switch {
	case err == nil:
		return nil
	case db.IsUniqueViolation(err):
		return ErrGameSequenceConflict
	case db.IsForeignKeyViolation(err):
		return ErrGameTournamentInvalid
	default:
		return err
	}
}

func (r *sqlGameRepository) GetByID(ctx context.Context, exec SQLExecutor, id int64) (*models.Game, error) {
	query := r.db.Rebind(`SELECT ` + gameColumns + ` FROM games WHERE id = ?`)
	return scanGame(r.getExecutor(exec).QueryRowContext(ctx, query, id))
}

func (r *sqlGameRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int64) (*models.Game, error) {
	query := r.db.Rebind(`SELECT `+gameColumns+` FROM games WHERE id = ?`) + r.db.Dialect.ForUpdate()
	return scanGame(r.getExecutor(exec).QueryRowContext(ctx, query, id))
}

func (r *sqlGameRepository) ListByTournament(ctx context.Context, tournamentID int64) ([]*models.Game, error) {
	query := r.db.Rebind(`SELECT ` + gameColumns + ` FROM games WHERE tournament_id = ? ORDER BY sequence_number ASC`)
	return r.queryGames(ctx, query, tournamentID)
}

func (r *sqlGameRepository) queryGames(ctx context.Context, query string, args ...interface{}) ([]*models.Game, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	games := make([]*models.Game, 0)
	for rows.Next() {
		g, errScan := scanGame(rows)
		if errScan != nil {
			return nil, errScan
		}
		games = append(games, g)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return games, nil
}

func (r *sqlGameRepository) Update(ctx context.Context, exec SQLExecutor, g *models.Game) error {
	query := r.db.Rebind(`
		UPDATE games SET
			scheduled_at = ?, min_players = ?, max_players = ?, buy_in = ?,
			registration_deadline = ?, status = ?
		WHERE id = ?`)
	result, err := r.getExecutor(exec).ExecContext(ctx, query,
		toMillis(g.ScheduledAt), g.MinPlayers, g.MaxPlayers, g.BuyIn,
		toMillis(g.RegistrationDeadline), string(g.Status), g.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrGameNotFound)
}

func (r *sqlGameRepository) TransitionStatus(ctx context.Context, exec SQLExecutor, id int64, from, to models.GameStatus) (bool, error) {
	query := r.db.Rebind(`UPDATE games SET status = ? WHERE id = ? AND status = ?`)
	result, err := r.getExecutor(exec).ExecContext(ctx, query, string(to), id, string(from))
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *sqlGameRepository) ListDueForStart(ctx context.Context, now time.Time) ([]*models.Game, error) {
	query := r.db.Rebind(`
		SELECT ` + gameColumns + `
		FROM games
		WHERE status = ? AND registration_deadline < ?
		ORDER BY registration_deadline ASC, id ASC`)
	return r.queryGames(ctx, query, string(models.GameStatusUpcoming), toMillis(now))
}

func (r *sqlGameRepository) CountByStatus(ctx context.Context) (map[models.GameStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM games GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.GameStatus]int)
	for rows.Next() {
		var (
			status models.GameStatus
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
