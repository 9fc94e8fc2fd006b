package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/poker-league/models"
	"github.com/Dosada05/poker-league/repositories"
)

type CreateTournamentInput struct {
	Name            string     `json:"name"`
	TopPlayersCount *int       `json:"top_players_count,omitempty"`
	StartsAt        *time.Time `json:"starts_at,omitempty"`
	EndsAt          *time.Time `json:"ends_at,omitempty"`
}

type TournamentService struct {
	repo   repositories.TournamentRepository
	rules  Rules
	clock  Clock
	logger *slog.Logger
}

func NewTournamentService(repo repositories.TournamentRepository, rules Rules, clock Clock, logger *slog.Logger) *TournamentService {
	return &TournamentService{repo: repo, rules: rules, clock: clock, logger: logger}
}

func (s *TournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}
	topPlayers := s.rules.DefaultTopPlayersCount
	if input.TopPlayersCount != nil {
		topPlayers = *input.TopPlayersCount
	}
	if topPlayers <= 0 {
		return nil, ErrTournamentInvalidTopCut
	}
	if input.StartsAt != nil && input.EndsAt != nil && !input.StartsAt.Before(*input.EndsAt) {
		return nil, ErrTournamentInvalidDates
	}

	tournament := &models.Tournament{
		Name:            name,
		TopPlayersCount: topPlayers,
		StartsAt:        input.StartsAt,
		EndsAt:          input.EndsAt,
		CreatedAt:       s.clock.Now(),
	}
	if err := s.repo.Create(ctx, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, ErrTournamentNameConflict
		}
		return nil, storageError("create tournament", err)
	}

	s.logger.InfoContext(ctx, "Tournament created", slog.Int64("tournament_id", tournament.ID), slog.String("name", tournament.Name))
	return tournament, nil
}

func (s *TournamentService) GetTournamentByID(ctx context.Context, id int64) (*models.Tournament, error) {
	tournament, err := s.repo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, storageError("get tournament", err)
	}
	return tournament, nil
}

func (s *TournamentService) ListTournaments(ctx context.Context, limit, offset int) ([]*models.Tournament, error) {
	if limit < 0 || offset < 0 {
		return nil, ErrValidationFailed
	}
	tournaments, err := s.repo.List(ctx, repositories.ListTournamentsFilter{Limit: limit, Offset: offset})
	if err != nil {
		return nil, storageError("list tournaments", err)
	}
	return tournaments, nil
}
