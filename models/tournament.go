package models

import "time"

// Tournament представляет сезон (большой турнир), объединяющий серию игр.
type Tournament struct {
	ID              int64      `json:"id" db:"id"`
	Name            string     `json:"name" db:"name"`
	TopPlayersCount int        `json:"top_players_count" db:"top_players_count"`
	StartsAt        *time.Time `json:"starts_at,omitempty" db:"starts_at"`
	EndsAt          *time.Time `json:"ends_at,omitempty" db:"ends_at"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}
