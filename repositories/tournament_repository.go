package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/poker-league/db"
	"github.com/Dosada05/poker-league/models"
)

var (
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament name conflict")
)

type ListTournamentsFilter struct {
	Limit  int
	Offset int
}

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, exec SQLExecutor, id int64) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]*models.Tournament, error)
	Count(ctx context.Context) (int, error)
}

type sqlTournamentRepository struct {
	db *db.DB
}

func NewTournamentRepository(database *db.DB) TournamentRepository {
	return &sqlTournamentRepository{db: database}
}

func (r *sqlTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *sqlTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := r.db.Rebind(`
		INSERT INTO tournaments (name, top_players_count, starts_at, ends_at, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`)

	err := r.db.QueryRowContext(ctx, query,
		t.Name, t.TopPlayersCount, toNullMillis(t.StartsAt), toNullMillis(t.EndsAt), toMillis(t.CreatedAt),
	).Scan(&t.ID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrTournamentNameConflict
		}
		return err
	}
	return nil
}

func scanTournament(scanner rowScanner) (*models.Tournament, error) {
	var (
		t                models.Tournament
		startsAt, endsAt sql.NullInt64
		createdAt        int64
	)
	if err := scanner.Scan(&t.ID, &t.Name, &t.TopPlayersCount, &startsAt, &endsAt, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	t.StartsAt = fromNullMillis(startsAt)
	t.EndsAt = fromNullMillis(endsAt)
	t.CreatedAt = fromMillis(createdAt)
	return &t, nil
}

const tournamentColumns = `id, name, top_players_count, starts_at, ends_at, created_at`

func (r *sqlTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id int64) (*models.Tournament, error) {
	query := r.db.Rebind(`SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = ?`)
	return scanTournament(r.getExecutor(exec).QueryRowContext(ctx, query, id))
}

func (r *sqlTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments ORDER BY id DESC`
	args := make([]interface{}, 0, 2)
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		t, errScan := scanTournament(rows)
		if errScan != nil {
			return nil, errScan
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tournaments, nil
}

func (r *sqlTournamentRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tournaments`).Scan(&count)
	return count, err
}
