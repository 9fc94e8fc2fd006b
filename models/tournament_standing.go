package models

import "time"

type TournamentStanding struct {
	TournamentID int64     `json:"tournament_id" db:"tournament_id"`
	UserID       int64     `json:"user_id" db:"user_id"`
	TotalPoints  int       `json:"total_points" db:"total_points"`
	GamesPlayed  int       `json:"games_played" db:"games_played"`
	AveragePlace float64   `json:"average_place" db:"average_place"`
	BestPlace    int       `json:"best_place" db:"best_place"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`

	// Вычисляются при чтении, в БД не хранятся
	Position     int  `json:"position,omitempty" db:"-"`
	InGrandFinal bool `json:"in_grand_final" db:"-"`
}

// Leaderboard: упорядоченная таблица сезона.
type Leaderboard struct {
	Tournament *Tournament           `json:"tournament"`
	Standings  []*TournamentStanding `json:"standings"`
}

// UserStandingDetails is a single player's standing together with the penalties behind it.
type UserStandingDetails struct {
	Standing  *TournamentStanding `json:"standing"`
	Penalties []*Penalty          `json:"penalties"`
}
