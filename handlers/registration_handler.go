package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/poker-league/middleware"
	"github.com/Dosada05/poker-league/services"
)

type RegistrationHandler struct {
	registrations *services.RegistrationService
}

func NewRegistrationHandler(rs *services.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrations: rs}
}

// actingUserID возвращает игрока из токена. Админ может действовать за другого
// игрока через ?user_id=.
func actingUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return 0, false
	}
	if !r.URL.Query().Has("user_id") {
		return currentUserID, true
	}
	if !middleware.IsAdmin(r.Context()) {
		forbiddenResponse(w, r, "only admins may act on behalf of another player")
		return 0, false
	}
	userID, err := queryInt(r, "user_id", 0)
	if err != nil || userID == 0 {
		badRequestResponse(w, r, errors.New("invalid user_id query parameter"))
		return 0, false
	}
	return int64(userID), true
}

// RegisterHandler обрабатывает POST /games/{gameID}/register
func (h *RegistrationHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	userID, ok := actingUserID(w, r)
	if !ok {
		return
	}

	registration, err := h.registrations.Register(r.Context(), gameID, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"registration": registration}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CancelHandler обрабатывает POST /games/{gameID}/cancel
func (h *RegistrationHandler) CancelHandler(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	userID, ok := actingUserID(w, r)
	if !ok {
		return
	}

	outcome, err := h.registrations.Cancel(r.Context(), gameID, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, outcome, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler обрабатывает GET /games/{gameID}/registrations?include_cancelled=
func (h *RegistrationHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	includeCancelled, err := queryBool(r, "include_cancelled")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	registrations, err := h.registrations.ListRegistrations(r.Context(), gameID, includeCancelled)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"registrations": registrations}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type markPaidRequest struct {
	Paid bool `json:"paid"`
}

// MarkPaidHandler обрабатывает PUT /games/{gameID}/registrations/{userID}/paid
func (h *RegistrationHandler) MarkPaidHandler(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	userID, err := getIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input markPaidRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	registration, err := h.registrations.MarkPaid(r.Context(), gameID, userID, input.Paid)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"registration": registration}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
