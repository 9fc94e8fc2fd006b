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
	ErrRegistrationNotFound    = errors.New("registration not found")
	ErrRegistrationConflict    = errors.New("user already has an active registration for this game")
	ErrRegistrationGameInvalid = errors.New("invalid game reference")
)

type RegistrationRepository interface {
	Create(ctx context.Context, exec SQLExecutor, registration *models.Registration) error
	FindActive(ctx context.Context, exec SQLExecutor, gameID, userID int64) (*models.Registration, error)
	CountActive(ctx context.Context, exec SQLExecutor, gameID int64) (int, error)
	ListByGame(ctx context.Context, exec SQLExecutor, gameID int64, includeCancelled bool) ([]*models.Registration, error)
	// Cancel переводит активную регистрацию в status; уже отменённые строки не трогаются.
	Cancel(ctx context.Context, exec SQLExecutor, id int64, status models.RegistrationStatus, at time.Time) error
	UpdatePayment(ctx context.Context, exec SQLExecutor, id int64, paid bool, paidAt *time.Time) error
	CountActiveTotal(ctx context.Context) (int, error)
}

type sqlRegistrationRepository struct {
	db *db.DB
}

func NewRegistrationRepository(database *db.DB) RegistrationRepository {
	return &sqlRegistrationRepository{db: database}
}

func (r *sqlRegistrationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const registrationColumns = `id, game_id, user_id, status, registered_at, paid, paid_at, cancelled_at`

func scanRegistration(scanner rowScanner) (*models.Registration, error) {
	var (
		reg                 models.Registration
		registeredAt        int64
		paidAt, cancelledAt sql.NullInt64
	)
	err := scanner.Scan(&reg.ID, &reg.GameID, &reg.UserID, &reg.Status, &registeredAt, &reg.Paid, &paidAt, &cancelledAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	reg.RegisteredAt = fromMillis(registeredAt)
	reg.PaidAt = fromNullMillis(paidAt)
	reg.CancelledAt = fromNullMillis(cancelledAt)
	return &reg, nil
}

func (r *sqlRegistrationRepository) Create(ctx context.Context, exec SQLExecutor, reg *models.Registration) error {
	query := r.db.Rebind(`
		INSERT INTO registrations (game_id, user_id, status, registered_at, paid, paid_at, cancelled_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		reg.GameID, reg.UserID, string(reg.Status), toMillis(reg.RegisteredAt),
		reg.Paid, toNullMillis(reg.PaidAt), toNullMillis(reg.CancelledAt),
	).Scan(&reg.ID)
	switch {
	case err == nil:
		return nil
	case db.IsUniqueViolation(err):
		return ErrRegistrationConflict
	case db.IsForeignKeyViolation(err):
		return ErrRegistrationGameInvalid
	default:
		return err
	}
}

func (r *sqlRegistrationRepository) FindActive(ctx context.Context, exec SQLExecutor, gameID, userID int64) (*models.Registration, error) {
	query := r.db.Rebind(`
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE game_id = ? AND user_id = ? AND status = ?`)
	row := r.getExecutor(exec).QueryRowContext(ctx, query, gameID, userID, string(models.RegistrationRegistered))
	return scanRegistration(row)
}

func (r *sqlRegistrationRepository) CountActive(ctx context.Context, exec SQLExecutor, gameID int64) (int, error) {
	var count int
	query := r.db.Rebind(`SELECT COUNT(*) FROM registrations WHERE game_id = ? AND status = ?`)
	err := r.getExecutor(exec).QueryRowContext(ctx, query, gameID, string(models.RegistrationRegistered)).Scan(&count)
	return count, err
}

func (r *sqlRegistrationRepository) ListByGame(ctx context.Context, exec SQLExecutor, gameID int64, includeCancelled bool) ([]*models.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE game_id = ?`
	args := []interface{}{gameID}
	if !includeCancelled {
		query += ` AND status = ?`
		args = append(args, string(models.RegistrationRegistered))
	}
	query += ` ORDER BY registered_at ASC, id ASC`

	rows, err := r.getExecutor(exec).QueryContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	registrations := make([]*models.Registration, 0)
	for rows.Next() {
		reg, errScan := scanRegistration(rows)
		if errScan != nil {
			return nil, errScan
		}
		registrations = append(registrations, reg)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return registrations, nil
}

func (r *sqlRegistrationRepository) Cancel(ctx context.Context, exec SQLExecutor, id int64, status models.RegistrationStatus, at time.Time) error {
	query := r.db.Rebind(`
		UPDATE registrations SET status = ?, cancelled_at = ?
		WHERE id = ? AND status = ?`)
	result, err := r.getExecutor(exec).ExecContext(ctx, query,
		string(status), toMillis(at), id, string(models.RegistrationRegistered))
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *sqlRegistrationRepository) UpdatePayment(ctx context.Context, exec SQLExecutor, id int64, paid bool, paidAt *time.Time) error {
	query := r.db.Rebind(`UPDATE registrations SET paid = ?, paid_at = ? WHERE id = ?`)
	result, err := r.getExecutor(exec).ExecContext(ctx, query, paid, toNullMillis(paidAt), id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *sqlRegistrationRepository) CountActiveTotal(ctx context.Context) (int, error) {
	var count int
	query := r.db.Rebind(`SELECT COUNT(*) FROM registrations WHERE status = ?`)
	err := r.db.QueryRowContext(ctx, query, string(models.RegistrationRegistered)).Scan(&count)
	return count, err
}
