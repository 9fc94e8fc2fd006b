package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/Dosada05/poker-league/models"
	"github.com/Dosada05/poker-league/reports"
	"github.com/Dosada05/poker-league/services"
)

type TournamentHandler struct {
	tournaments *services.TournamentService
	standings   *services.StandingsService
	penalties   *services.PenaltyService
}

func NewTournamentHandler(ts *services.TournamentService, ss *services.StandingsService, ps *services.PenaltyService) *TournamentHandler {
	return &TournamentHandler{
		tournaments: ts,
		standings:   ss,
		penalties:   ps,
	}
}

// CreateHandler обрабатывает POST /tournaments
func (h *TournamentHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournaments.CreateTournament(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler обрабатывает GET /tournaments/{tournamentID}
func (h *TournamentHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournaments.GetTournamentByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler обрабатывает GET /tournaments?limit=&offset=
func (h *TournamentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 20)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournaments, err := h.tournaments.ListTournaments(r.Context(), limit, offset)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// StandingsHandler обрабатывает GET /tournaments/{tournamentID}/standings
func (h *TournamentHandler) StandingsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	leaderboard, err := h.standings.Leaderboard(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, leaderboard, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// StandingsXLSXHandler отдаёт таблицу сезона файлом Excel.
func (h *TournamentHandler) StandingsXLSXHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	leaderboard, err := h.standings.Leaderboard(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := reports.WriteLeaderboardXLSX(&buf, leaderboard); err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", reports.LeaderboardFilename(leaderboard.Tournament)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// UserStandingHandler обрабатывает GET /tournaments/{tournamentID}/standings/{userID}
func (h *TournamentHandler) UserStandingHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	userID, err := getIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	details, err := h.standings.UserStanding(r.Context(), tournamentID, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, details, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// PenaltiesHandler обрабатывает GET /tournaments/{tournamentID}/penalties?user_id=
func (h *TournamentHandler) PenaltiesHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var userID *int64
	if r.URL.Query().Has("user_id") {
		id, err := queryInt(r, "user_id", 0)
		if err != nil || id == 0 {
			badRequestResponse(w, r, fmt.Errorf("invalid user_id query parameter"))
			return
		}
		v := int64(id)
		userID = &v
	}

	penalties, err := h.standings.ListPenalties(r.Context(), tournamentID, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"penalties": penalties}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type applyPenaltyRequest struct {
	UserID int64  `json:"user_id"`
	GameID *int64 `json:"game_id,omitempty"`
	Points int    `json:"points"`
}

// ApplyPenaltyHandler обрабатывает POST /tournaments/{tournamentID}/penalties (ручной штраф).
func (h *TournamentHandler) ApplyPenaltyHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input applyPenaltyRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	outcome, err := h.penalties.ApplyPenalty(r.Context(), services.PenaltyInput{
		UserID:       input.UserID,
		GameID:       input.GameID,
		TournamentID: tournamentID,
		Reason:       models.PenaltyManual,
		Points:       input.Points,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"penalty": outcome.Penalty, "standing": outcome.Standing}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RebuildHandler обрабатывает POST /tournaments/{tournamentID}/standings/rebuild
func (h *TournamentHandler) RebuildHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.standings.RebuildStandings(r.Context(), tournamentID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"rebuilt": true}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
