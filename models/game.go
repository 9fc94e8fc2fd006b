package models

import "time"

// GameStatus представляет статусы отдельной игры сезона.
type GameStatus string

const (
	GameStatusUpcoming   GameStatus = "upcoming"
	GameStatusInProgress GameStatus = "in_progress"
	GameStatusFinished   GameStatus = "finished"
)

// Valid reports whether s is one of the known statuses.
func (s GameStatus) Valid() bool {
	switch s {
	case GameStatusUpcoming, GameStatusInProgress, GameStatusFinished:
		return true
	}
	return false
}

// Game: одна игра сезона с ограничениями по числу игроков и дедлайном регистрации.
type Game struct {
	ID                   int64      `json:"id" db:"id"`
	TournamentID         int64      `json:"tournament_id" db:"tournament_id"`
	SequenceNumber       int        `json:"sequence_number" db:"sequence_number"`
	ScheduledAt          time.Time  `json:"scheduled_at" db:"scheduled_at"`
	MinPlayers           int        `json:"min_players" db:"min_players"`
	MaxPlayers           int        `json:"max_players" db:"max_players"`
	BuyIn                int64      `json:"buy_in" db:"buy_in"`
	RegistrationDeadline time.Time  `json:"registration_deadline" db:"registration_deadline"`
	Status               GameStatus `json:"status" db:"status"`
	CreatedAt            time.Time  `json:"created_at" db:"created_at"`

	RegisteredCount *int `json:"registered_count,omitempty" db:"-"`
}

// GameUpdate описывает частичное обновление игры: nil означает "не менять".
type GameUpdate struct {
	ScheduledAt          *time.Time  `json:"scheduled_at,omitempty"`
	MinPlayers           *int        `json:"min_players,omitempty"`
	MaxPlayers           *int        `json:"max_players,omitempty"`
	BuyIn                *int64      `json:"buy_in,omitempty"`
	RegistrationDeadline *time.Time  `json:"registration_deadline,omitempty"`
	Status               *GameStatus `json:"status,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u GameUpdate) Empty() bool {
	return u.ScheduledAt == nil && u.MinPlayers == nil && u.MaxPlayers == nil &&
		u.BuyIn == nil && u.RegistrationDeadline == nil && u.Status == nil
}
