package duel

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quizduel/engine/internal/duel/queue"
	httperrors "github.com/quizduel/engine/pkg/http/errors"
)

// HTTPHandlers provides REST endpoints for duel operations.
type HTTPHandlers struct {
	service *Service
	queue   *queue.Manager
	logger  zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for duel endpoints. queueMgr may be
// nil when matchmaking is disabled.
func NewHTTPHandlers(service *Service, queueMgr *queue.Manager, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		service: service,
		queue:   queueMgr,
		logger:  logger.With().Str("component", "duel_http").Logger(),
	}
}

// CreateGameRequest is the payload for POST /v1/duels.
type CreateGameRequest struct {
	ConfigID string `json:"config_id"`
	PlayerA  string `json:"player_a"`
	PlayerB  string `json:"player_b"`
}

// SubmitAnswerRequest is the payload for POST /v1/duels/{id}/answers.
type SubmitAnswerRequest struct {
	PlayerID      string `json:"player_id"`
	QuestionIndex int    `json:"question_index"`
	Answer        string `json:"answer"`
}

// EnqueueRequest is the payload for POST /v1/queue.
type EnqueueRequest struct {
	ConfigID string `json:"config_id"`
	PlayerID string `json:"player_id"`
}

// CreateGame handles POST /v1/duels
func (h *HTTPHandlers) CreateGame(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	playerA, err := uuid.Parse(req.PlayerA)
	if err != nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "player_a must be a UUID", "player_a")
		return
	}
	playerB, err := uuid.Parse(req.PlayerB)
	if err != nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "player_b must be a UUID", "player_b")
		return
	}
	if req.ConfigID == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "config_id is required", "config_id")
		return
	}

	session, err := h.service.CreateGame(r.Context(), req.ConfigID, playerA, playerB)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, sessionResponse(session))
}

// GetSession handles GET /v1/duels/{id}
func (h *HTTPHandlers) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "duel id must be a UUID", "id")
		return
	}
	session, err := h.service.GetSession(r.Context(), sessionID)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, sessionResponse(session))
}

// SubmitAnswer handles POST /v1/duels/{id}/answers
func (h *HTTPHandlers) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "duel id must be a UUID", "id")
		return
	}
	var req SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	playerID, err := uuid.Parse(req.PlayerID)
	if err != nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "player_id must be a UUID", "player_id")
		return
	}

	result, err := h.service.SubmitAnswer(r.Context(), sessionID, playerID, req.QuestionIndex, req.Answer)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

// ListSessions handles GET /v1/players/{id}/duels?status=active|finished
func (h *HTTPHandlers) ListSessions(w http.ResponseWriter, r *http.Request) {
	playerID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "player id must be a UUID", "id")
		return
	}

	var sessions []*GameSession
	switch status := r.URL.Query().Get("status"); status {
	case "", "active":
		sessions, err = h.service.ListActiveSessions(r.Context(), playerID)
	case "finished":
		sessions, err = h.service.ListFinishedSessions(r.Context(), playerID)
	default:
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "status must be active or finished", "status")
		return
	}
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	views := make([]map[string]interface{}, len(sessions))
	for i, session := range sessions {
		views[i] = sessionResponse(session)
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"duels": views})
}

// Enqueue handles POST /v1/queue
func (h *HTTPHandlers) Enqueue(w http.ResponseWriter, r *http.Request) {
	if h.queue == nil {
		httperrors.RespondError(w, http.StatusNotImplemented, httperrors.ErrCodeEnqueueFailed, "Matchmaking is disabled")
		return
	}
	var req EnqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	playerID, err := uuid.Parse(req.PlayerID)
	if err != nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "player_id must be a UUID", "player_id")
		return
	}

	token, pair, err := h.queue.Enqueue(r.Context(), req.ConfigID, playerID)
	if err != nil {
		httperrors.RespondInternalError(w, err.Error())
		return
	}
	if pair == nil {
		h.respondJSON(w, http.StatusAccepted, map[string]interface{}{
			"queue_token": token.String(),
			"matched":     false,
		})
		return
	}

	session, err := h.service.CreateGame(r.Context(), pair.ConfigID, pair.PlayerA, pair.PlayerB)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"matched": true,
		"duel":    sessionResponse(session),
	})
}

// DequeueWaiting handles DELETE /v1/queue/{token}
func (h *HTTPHandlers) DequeueWaiting(w http.ResponseWriter, r *http.Request) {
	if h.queue == nil {
		httperrors.RespondError(w, http.StatusNotImplemented, httperrors.ErrCodeEnqueueFailed, "Matchmaking is disabled")
		return
	}
	token, err := uuid.Parse(r.PathValue("token"))
	if err != nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "queue token must be a UUID", "token")
		return
	}
	if err := h.queue.Dequeue(r.Context(), token); err != nil {
		httperrors.RespondNotFound(w, httperrors.ErrCodeQueueTokenNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func sessionResponse(session *GameSession) map[string]interface{} {
	var winner *string
	if session.WinnerID != nil {
		w := session.WinnerID.String()
		winner = &w
	}
	return map[string]interface{}{
		"session_id": session.ID.String(),
		"config_id":  session.ConfigID,
		"player_a":   session.PlayerA.String(),
		"player_b":   session.PlayerB.String(),
		"questions":  session.Questions,
		"answered_a": session.AnsweredA,
		"answered_b": session.AnsweredB,
		"status":     session.Status,
		"winner_id":  winner,
		"created_at": session.CreatedAt.Format(time.RFC3339),
		"updated_at": session.UpdatedAt.Format(time.RFC3339),
	}
}

// respondDomainError maps the engine's error taxonomy onto HTTP statuses:
// rejected submissions are 4xx, game-setup failures are 5xx.
func (h *HTTPHandlers) respondDomainError(w http.ResponseWriter, err error) {
	var countMismatch *CountMismatchError
	if errors.As(err, &countMismatch) {
		// A logic bug, not a user-triggerable state. Surface it loudly.
		h.logger.Error().Err(err).Msg("allocation invariant violated")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeCountMismatch, err.Error())
		return
	}

	switch {
	case errors.Is(err, ErrNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeNotFound, err.Error())
	case errors.Is(err, ErrNotParticipant):
		httperrors.RespondError(w, http.StatusForbidden, httperrors.ErrCodeNotParticipant, err.Error())
	case errors.Is(err, ErrInvalidIndex):
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidIndex, err.Error())
	case errors.Is(err, ErrAlreadyAnswered):
		httperrors.RespondError(w, http.StatusConflict, httperrors.ErrCodeAlreadyAnswered, err.Error())
	case errors.Is(err, ErrGameFinished):
		httperrors.RespondError(w, http.StatusConflict, httperrors.ErrCodeGameFinished, err.Error())
	case errors.Is(err, ErrSamePlayer):
		httperrors.RespondBadRequest(w, httperrors.ErrCodeValidationFailed, err.Error())
	default:
		var (
			cfgErr *ConfigurationError
			insErr *InsufficientQuestionsError
			dupErr *DuplicateExhaustionError
		)
		switch {
		case errors.As(err, &cfgErr):
			httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeBadConfiguration, err.Error())
		case errors.As(err, &insErr):
			httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeInsufficientQuestions, err.Error())
		case errors.As(err, &dupErr):
			httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeDuplicateExhaustion, err.Error())
		default:
			h.logger.Error().Err(err).Msg("duel request failed")
			httperrors.RespondInternalError(w, "internal error")
		}
	}
}

func (h *HTTPHandlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
