package services

import (
	"errors"
	"fmt"
)

// Виды ошибок, по которым HTTP-слой выбирает код ответа.
var (
	ErrNotFound         = errors.New("requested resource not found")
	ErrConflict         = errors.New("conflict with current state")
	ErrValidationFailed = errors.New("validation failed")
	ErrStorageFailure   = errors.New("storage failure")
)

// kindError: конкретная ошибка, которая через errors.Is совпадает и с собой, и со своим видом.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func newKindError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

var (
	// NotFound
	ErrTournamentNotFound   = newKindError(ErrNotFound, "tournament not found")
	ErrGameNotFound         = newKindError(ErrNotFound, "game not found")
	ErrRegistrationNotFound = newKindError(ErrNotFound, "registration not found")
	ErrStandingNotFound     = newKindError(ErrNotFound, "standing not found")

	// Conflict
	ErrRegistrationClosed      = newKindError(ErrConflict, "registration for this game is closed")
	ErrAlreadyRegistered       = newKindError(ErrConflict, "user is already registered for this game")
	ErrGameFull                = newKindError(ErrConflict, "game has reached its player limit")
	ErrInvalidStatusTransition = newKindError(ErrConflict, "invalid game status transition")
	ErrTournamentNameConflict  = newKindError(ErrConflict, "tournament name already exists")
	ErrGameSequenceConflict    = newKindError(ErrConflict, "game sequence number already used in this tournament")

	// Validation
	ErrInvalidPlacements       = newKindError(ErrValidationFailed, "invalid placements")
	ErrInvalidPenaltyPoints    = newKindError(ErrValidationFailed, "penalty points must be positive")
	ErrInvalidPenaltyReason    = newKindError(ErrValidationFailed, "penalty reason is required")
	ErrGameInvalidCapacity     = newKindError(ErrValidationFailed, "invalid game player limits")
	ErrGameInvalidSchedule     = newKindError(ErrValidationFailed, "invalid game schedule")
	ErrGameInvalidBuyIn        = newKindError(ErrValidationFailed, "buy-in cannot be negative")
	ErrGameTournamentMismatch  = newKindError(ErrValidationFailed, "game does not belong to this tournament")
	ErrTournamentNameRequired  = newKindError(ErrValidationFailed, "tournament name is required")
	ErrTournamentInvalidTopCut = newKindError(ErrValidationFailed, "top players count must be positive")
	ErrTournamentInvalidDates  = newKindError(ErrValidationFailed, "tournament end must be after start")
	ErrGameUpdateEmpty         = newKindError(ErrValidationFailed, "no fields to update")
	ErrGameInvalidStatus       = newKindError(ErrValidationFailed, "invalid game status provided")
)

// storageError помечает ошибку репозитория/драйвера как StorageFailure.
func storageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorageFailure, op, err)
}
