package highscore

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	httperrors "github.com/quizduel/engine/pkg/http/errors"
)

// HTTPHandler exposes read-only highscore queries.
type HTTPHandler struct {
	service *Service
	logger  zerolog.Logger
}

func NewHTTPHandler(service *Service, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		service: service,
		logger:  logger.With().Str("component", "highscore_http").Logger(),
	}
}

// Top handles GET /v1/highscores/{config}?limit=N
func (h *HTTPHandler) Top(w http.ResponseWriter, r *http.Request) {
	configID := r.PathValue("config")
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "limit must be a positive integer", "limit")
			return
		}
		limit = parsed
	}

	records, err := h.service.Top(r.Context(), configID, limit)
	if err != nil {
		h.logger.Error().Err(err).Str("config_id", configID).Msg("failed to fetch highscores")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeHighscoreFetchFailed, "could not fetch highscores")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"config_id": configID,
		"records":   records,
	})
}

// PlayerRecord handles GET /v1/highscores/{config}/players/{id}
func (h *HTTPHandler) PlayerRecord(w http.ResponseWriter, r *http.Request) {
	configID := r.PathValue("config")
	playerID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "player id must be a UUID", "id")
		return
	}

	record, err := h.service.Get(r.Context(), configID, playerID)
	if err != nil {
		h.logger.Error().Err(err).Str("config_id", configID).Msg("failed to fetch highscore record")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeHighscoreFetchFailed, "could not fetch highscore record")
		return
	}
	h.respondJSON(w, http.StatusOK, record)
}

func (h *HTTPHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
