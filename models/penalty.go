package models

import (
	"fmt"
	"time"
)

type PenaltyReason string

const (
	PenaltyNoShow           PenaltyReason = "no_show"
	PenaltyLateCancellation PenaltyReason = "late_cancellation"
	PenaltyManual           PenaltyReason = "manual"
)

// Penalty: неизменяемая запись журнала штрафов.
type Penalty struct {
	ID           int64         `json:"id" db:"id"`
	UserID       int64         `json:"user_id" db:"user_id"`
	GameID       *int64        `json:"game_id,omitempty" db:"game_id"`
	TournamentID int64         `json:"tournament_id" db:"tournament_id"`
	Reason       PenaltyReason `json:"reason" db:"reason"`
	Points       int           `json:"points" db:"points"`
	// Deducted: сколько очков реально снято при начислении, не больше Points.
	Deducted     int           `json:"deducted" db:"deducted"`
	EpisodeKey   *string       `json:"-" db:"episode_key"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
}

// NoShowEpisodeKey identifies the single no-show penalty a user may receive for a game.
func NoShowEpisodeKey(gameID, userID int64) string {
	return fmt.Sprintf("%s:%d:%d", PenaltyNoShow, gameID, userID)
}
