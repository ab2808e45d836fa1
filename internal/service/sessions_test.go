package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookline-ai/booking-engine/internal/model"
	"github.com/bookline-ai/booking-engine/pkg/logger"
)

func newTestService(t *testing.T) *SessionService {
	t.Helper()
	agents := NewAgentCatalog()
	agents.Register(DemoAgent())
	log, err := logger.New("error")
	require.NoError(t, err)
	// nil stream manager and nil gateway: in-memory history, fallback replies.
	return NewSessionService(agents, nil, nil, ModelSettings{}, log)
}

func TestStartAndSend(t *testing.T) {
	svc := newTestService(t)

	started, err := svc.Start(context.Background(), &model.StartSessionRequest{AgentID: "demo"})
	require.NoError(t, err)
	require.NotNil(t, started.Greeting)
	assert.Equal(t, model.RoleAssistant, started.Greeting.Role)
	assert.Equal(t, "demo", started.Conversation.AgentID)
	assert.Equal(t, model.ChannelWidget, started.Conversation.Channel)

	sessionID := started.Conversation.SessionID

	resp, err := svc.Send(context.Background(), sessionID, &model.SendMessageRequest{
		Content: "I want to book Mystery Mansion",
	})
	require.NoError(t, err)
	assert.Equal(t, "act_mystery_mansion", resp.Slots.ActivityID)
	assert.NotEmpty(t, resp.AssistantMessage.Content)

	status, err := svc.Status(sessionID)
	require.NoError(t, err)
	assert.Equal(t, model.StateAwaitingInput, status.State)
	assert.Equal(t, "act_mystery_mansion", status.Slots.ActivityID)
}

func TestStartUnknownAgent(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Start(context.Background(), &model.StartSessionRequest{AgentID: "nope"})
	assert.ErrorIs(t, err, ErrAgentNotFound)
}

func TestSendUnknownSession(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Send(context.Background(), "missing", &model.SendMessageRequest{Content: "hi"})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestResetAndHistory(t *testing.T) {
	svc := newTestService(t)

	started, err := svc.Start(context.Background(), &model.StartSessionRequest{AgentID: "demo"})
	require.NoError(t, err)
	sessionID := started.Conversation.SessionID

	_, err = svc.Send(context.Background(), sessionID, &model.SendMessageRequest{Content: "Mystery Mansion"})
	require.NoError(t, err)

	history, err := svc.History(context.Background(), sessionID, 0, 50)
	require.NoError(t, err)
	assert.Len(t, history.Messages, 3)

	reset, err := svc.Reset(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, sessionID, reset.Conversation.SessionID)

	history, err = svc.History(context.Background(), sessionID, 0, 50)
	require.NoError(t, err)
	assert.Len(t, history.Messages, 1)
}

func TestCloseRemovesSession(t *testing.T) {
	svc := newTestService(t)

	started, err := svc.Start(context.Background(), &model.StartSessionRequest{AgentID: "demo"})
	require.NoError(t, err)
	sessionID := started.Conversation.SessionID

	require.NoError(t, svc.Close(sessionID))
	assert.ErrorIs(t, svc.Close(sessionID), ErrSessionNotFound)

	_, err = svc.Status(sessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestAgentCatalogLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agents.json")
	data := `[{
		"id": "escape-east",
		"organization_id": "org-east",
		"name": "East Side Rooms",
		"greeting": "Hello!",
		"activities": [{"id": "act_1", "name": "The Vault", "price": 30}],
		"time_slots": ["1:00 PM"]
	}]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	catalog := NewAgentCatalog()
	require.NoError(t, catalog.LoadFile(path))

	agent, ok := catalog.Get("escape-east")
	require.True(t, ok)
	assert.Equal(t, "East Side Rooms", agent.Name)
	require.Len(t, agent.Activities, 1)
	assert.Equal(t, "The Vault", agent.Activities[0].Name)
}

func TestAgentCatalogLoadFileRejectsMissingID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agents.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name": "no id"}]`), 0o600))

	catalog := NewAgentCatalog()
	assert.Error(t, catalog.LoadFile(path))
}
