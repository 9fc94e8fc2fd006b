package services

import (
	"time"

	"github.com/Dosada05/poker-league/scoring"
)

// Rules: настраиваемые правила лиги.
type Rules struct {
	CancellationPenaltyWindow     time.Duration
	LateCancellationPenaltyPoints int
	NoShowPenaltyPoints           int
	DefaultRegistrationWindow     time.Duration
	DefaultTopPlayersCount        int
	PointsTable                   scoring.Table
}

// DefaultRules returns the stock league configuration.
func DefaultRules() Rules {
	return Rules{
		CancellationPenaltyWindow:     12 * time.Hour,
		LateCancellationPenaltyPoints: 100,
		NoShowPenaltyPoints:           100,
		DefaultRegistrationWindow:     2 * time.Hour,
		DefaultTopPlayersCount:        20,
		PointsTable:                   scoring.DefaultTable(),
	}
}
