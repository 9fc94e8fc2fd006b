package models

import "time"

type RegistrationStatus string

const (
	RegistrationRegistered           RegistrationStatus = "registered"
	RegistrationCancelled            RegistrationStatus = "cancelled"
	RegistrationCancelledWithPenalty RegistrationStatus = "cancelled_with_penalty"
)

// Registration: запись игрока на игру. Строки никогда не удаляются,
// отмена только меняет статус.
type Registration struct {
	ID           int64              `json:"id" db:"id"`
	GameID       int64              `json:"game_id" db:"game_id"`
	UserID       int64              `json:"user_id" db:"user_id"`
	Status       RegistrationStatus `json:"status" db:"status"`
	RegisteredAt time.Time          `json:"registered_at" db:"registered_at"`
	Paid         bool               `json:"paid" db:"paid"`
	PaidAt       *time.Time         `json:"paid_at,omitempty" db:"paid_at"`
	CancelledAt  *time.Time         `json:"cancelled_at,omitempty" db:"cancelled_at"`
}

// Active reports whether the registration still holds a seat.
func (r *Registration) Active() bool {
	return r.Status == RegistrationRegistered
}

// CancelOutcome is returned by a cancellation.
type CancelOutcome struct {
	Registration   *Registration `json:"registration"`
	PenaltyApplied bool          `json:"penalty_applied"`
	PenaltyPoints  int           `json:"penalty_points,omitempty"`
}
