package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookline-ai/booking-engine/internal/model"
	"github.com/bookline-ai/booking-engine/internal/service"
	"github.com/bookline-ai/booking-engine/pkg/logger"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	agents := service.NewAgentCatalog()
	agents.Register(service.DemoAgent())
	log, err := logger.New("error")
	require.NoError(t, err)

	svc := service.NewSessionService(agents, nil, nil, service.ModelSettings{}, log)

	sessionHandler := NewSessionHandler(svc, log)
	messageHandler := NewMessageHandler(svc, log)

	r := chi.NewRouter()
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", sessionHandler.Start)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", sessionHandler.Get)
			r.Post("/reset", sessionHandler.Reset)
			r.Delete("/", sessionHandler.Close)
			r.Get("/messages", messageHandler.List)
			r.Post("/messages", messageHandler.Send)
		})
	})
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func startSession(t *testing.T, router http.Handler) string {
	t.Helper()
	rr := doJSON(t, router, http.MethodPost, "/sessions", model.StartSessionRequest{AgentID: "demo"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp model.StartSessionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Conversation.SessionID)
	return resp.Conversation.SessionID
}

func TestStartSessionEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rr := doJSON(t, router, http.MethodPost, "/sessions", model.StartSessionRequest{AgentID: "demo"})
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp model.StartSessionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, model.RoleAssistant, resp.Greeting.Role)
	assert.NotEmpty(t, resp.Greeting.Content)
}

func TestStartSessionUnknownAgent(t *testing.T) {
	router := newTestRouter(t)

	rr := doJSON(t, router, http.MethodPost, "/sessions", model.StartSessionRequest{AgentID: "ghost"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestStartSessionMissingAgentID(t *testing.T) {
	router := newTestRouter(t)

	rr := doJSON(t, router, http.MethodPost, "/sessions", model.StartSessionRequest{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSendMessageEndpoint(t *testing.T) {
	router := newTestRouter(t)
	sessionID := startSession(t, router)

	rr := doJSON(t, router, http.MethodPost, "/sessions/"+sessionID+"/messages", model.SendMessageRequest{
		Content: "4 people for Mystery Mansion tomorrow at 2:30 PM",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp model.SendMessageResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "act_mystery_mansion", resp.Slots.ActivityID)
	assert.Equal(t, 4, resp.Slots.PartySize)
	assert.False(t, resp.CheckoutReady)
	assert.NotEmpty(t, resp.AssistantMessage.Content)
}

func TestSendMessageEmptyContent(t *testing.T) {
	router := newTestRouter(t)
	sessionID := startSession(t, router)

	rr := doJSON(t, router, http.MethodPost, "/sessions/"+sessionID+"/messages", model.SendMessageRequest{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSendMessageUnknownSession(t *testing.T) {
	router := newTestRouter(t)

	rr := doJSON(t, router, http.MethodPost, "/sessions/0195e7a0-0000-7000-8000-00000000dead/messages", model.SendMessageRequest{
		Content: "hello",
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSendMessageInvalidSessionID(t *testing.T) {
	router := newTestRouter(t)

	rr := doJSON(t, router, http.MethodPost, "/sessions/not-a-uuid/messages", model.SendMessageRequest{
		Content: "hello",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSessionLifecycleEndpoints(t *testing.T) {
	router := newTestRouter(t)
	sessionID := startSession(t, router)

	rr := doJSON(t, router, http.MethodGet, "/sessions/"+sessionID, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var status model.SessionStatusResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	assert.Equal(t, model.StateAwaitingInput, status.State)

	rr = doJSON(t, router, http.MethodGet, "/sessions/"+sessionID+"/messages", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var history model.ListMessagesResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &history))
	assert.Len(t, history.Messages, 1)

	rr = doJSON(t, router, http.MethodPost, "/sessions/"+sessionID+"/reset", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, router, http.MethodDelete, "/sessions/"+sessionID, nil)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = doJSON(t, router, http.MethodGet, "/sessions/"+sessionID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
