package duel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizduel/engine/internal/duel/queue"
)

func newTestRouter(t *testing.T, f *fixture) http.Handler {
	t.Helper()
	handlers := NewHTTPHandlers(f.service, queue.NewManager(zerolog.Nop()), zerolog.Nop())

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/duels", handlers.CreateGame)
	mux.HandleFunc("GET /v1/duels/{id}", handlers.GetSession)
	mux.HandleFunc("POST /v1/duels/{id}/answers", handlers.SubmitAnswer)
	mux.HandleFunc("GET /v1/players/{id}/duels", handlers.ListSessions)
	mux.HandleFunc("POST /v1/queue", handlers.Enqueue)
	mux.HandleFunc("DELETE /v1/queue/{token}", handlers.DequeueWaiting)
	return mux
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHTTPCreateGame(t *testing.T) {
	f := newFixture(t, 3, 10)
	router := newTestRouter(t, f)

	body := fmt.Sprintf(`{"config_id":"classic","player_a":%q,"player_b":%q}`, f.playerA, f.playerB)
	rec := doJSON(t, router, http.MethodPost, "/v1/duels", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, StatusAwaitingBoth, resp["status"])
	assert.Len(t, resp["questions"], 3)
}

func TestHTTPCreateGameValidation(t *testing.T) {
	f := newFixture(t, 3, 10)
	router := newTestRouter(t, f)

	rec := doJSON(t, router, http.MethodPost, "/v1/duels", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/v1/duels",
		fmt.Sprintf(`{"config_id":"classic","player_a":"nope","player_b":%q}`, f.playerB))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Same player on both seats is a rejected request, not a server fault.
	rec = doJSON(t, router, http.MethodPost, "/v1/duels",
		fmt.Sprintf(`{"config_id":"classic","player_a":%q,"player_b":%q}`, f.playerA, f.playerA))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHTTPSubmitAnswerErrorMapping(t *testing.T) {
	f := newFixture(t, 2, 10)
	session := f.createGame(t)
	router := newTestRouter(t, f)
	path := "/v1/duels/" + session.ID.String() + "/answers"

	// Outsider gets 403.
	rec := doJSON(t, router, http.MethodPost, path,
		fmt.Sprintf(`{"player_id":%q,"question_index":0,"answer":"right"}`, uuid.New()))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Out-of-range index gets 400.
	rec = doJSON(t, router, http.MethodPost, path,
		fmt.Sprintf(`{"player_id":%q,"question_index":9,"answer":"right"}`, f.playerA))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Valid answer, then a resubmission conflict.
	rec = doJSON(t, router, http.MethodPost, path,
		fmt.Sprintf(`{"player_id":%q,"question_index":0,"answer":"right"}`, f.playerA))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, path,
		fmt.Sprintf(`{"player_id":%q,"question_index":0,"answer":"right"}`, f.playerA))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHTTPGetSession(t *testing.T) {
	f := newFixture(t, 2, 10)
	session := f.createGame(t)
	router := newTestRouter(t, f)

	rec := doJSON(t, router, http.MethodGet, "/v1/duels/"+session.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/v1/duels/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/v1/duels/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHTTPListSessions(t *testing.T) {
	f := newFixture(t, 1, 10)
	session := f.createGame(t)
	router := newTestRouter(t, f)
	ctx := context.Background()

	_, err := f.service.SubmitAnswer(ctx, session.ID, f.playerA, 0, "right")
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodGet, "/v1/players/"+f.playerA.String()+"/duels?status=active", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/v1/players/"+f.playerA.String()+"/duels?status=bogus", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHTTPQueuePairing(t *testing.T) {
	f := newFixture(t, 2, 10)
	router := newTestRouter(t, f)

	rec := doJSON(t, router, http.MethodPost, "/v1/queue",
		fmt.Sprintf(`{"config_id":"classic","player_id":%q}`, f.playerA))
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var waiting map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &waiting))
	token, ok := waiting["queue_token"].(string)
	require.True(t, ok)

	rec = doJSON(t, router, http.MethodPost, "/v1/queue",
		fmt.Sprintf(`{"config_id":"classic","player_id":%q}`, f.playerB))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var paired map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &paired))
	assert.Equal(t, true, paired["matched"])
	duelView, ok := paired["duel"].(map[string]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, duelView["session_id"])

	// The first player's token was consumed by the pairing.
	rec = doJSON(t, router, http.MethodDelete, "/v1/queue/"+token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
