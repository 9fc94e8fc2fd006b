package models

import "time"

// Placement: место игрока в завершённой игре, как его присылает организатор.
type Placement struct {
	UserID int64 `json:"user_id"`
	Place  int   `json:"place"`
}

type GameResult struct {
	GameID       int64     `json:"game_id" db:"game_id"`
	UserID       int64     `json:"user_id" db:"user_id"`
	Place        int       `json:"place" db:"place"`
	PointsEarned int       `json:"points_earned" db:"points_earned"`
	RecordedAt   time.Time `json:"recorded_at" db:"recorded_at"`
}

// ResultAggregate is the per-user roll-up of results within one tournament.
type ResultAggregate struct {
	UserID       int64
	TotalPoints  int
	GamesPlayed  int
	AveragePlace float64
	BestPlace    int
}
