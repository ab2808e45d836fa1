package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bookline-ai/booking-engine/internal/engine"
	"github.com/bookline-ai/booking-engine/internal/llm"
	"github.com/bookline-ai/booking-engine/internal/model"
	natsclient "github.com/bookline-ai/booking-engine/internal/nats"
	"github.com/bookline-ai/booking-engine/pkg/logger"
)

// ErrSessionNotFound is returned for unknown session identifiers.
var ErrSessionNotFound = errors.New("session not found")

// ErrAgentNotFound is returned for unknown agent identifiers.
var ErrAgentNotFound = errors.New("agent not found")

// SessionService owns the live conversation sessions. Durable copies live in
// the JetStream log; the in-memory session is authoritative for live turns.
type SessionService struct {
	agents   *AgentCatalog
	streams  *natsclient.StreamManager
	gateway  llm.Client
	logger   *logger.Logger
	modelCfg ModelSettings

	mu       sync.RWMutex
	sessions map[string]*engine.Session
}

// ModelSettings carries the gateway tunables applied to every session.
type ModelSettings struct {
	Model          string
	Temperature    float64
	MaxTokens      int
	GatewayTimeout time.Duration
}

// NewSessionService creates a new session service. gateway may be nil, in
// which case every session answers through the fallback responder.
func NewSessionService(
	agents *AgentCatalog,
	streams *natsclient.StreamManager,
	gateway llm.Client,
	modelCfg ModelSettings,
	log *logger.Logger,
) *SessionService {
	return &SessionService{
		agents:   agents,
		streams:  streams,
		gateway:  gateway,
		logger:   log,
		modelCfg: modelCfg,
		sessions: make(map[string]*engine.Session),
	}
}

// Start creates a new session for the given agent and seeds its greeting.
func (s *SessionService) Start(ctx context.Context, req *model.StartSessionRequest) (*model.StartSessionResponse, error) {
	agent, ok := s.agents.Get(req.AgentID)
	if !ok {
		return nil, ErrAgentNotFound
	}

	channel := req.Channel
	if channel == "" {
		channel = model.ChannelWidget
	}

	conv := &model.Conversation{
		SessionID:      uuid.Must(uuid.NewV7()).String(),
		AgentID:        agent.ID,
		OrganizationID: agent.OrganizationID,
		Channel:        channel,
		StartedAt:      time.Now(),
	}

	var recorder engine.Recorder = engine.NopRecorder{}
	if s.streams != nil {
		recorder = natsclient.NewRecorder(s.streams, agent.OrganizationID, s.logger)
	}

	log := s.logger.WithSession(conv.SessionID, agent.ID)
	sess := engine.NewSession(conv, engine.Config{
		Agent:    agent,
		Gateway:  s.gateway,
		Recorder: recorder,
		Logger:   s.logger,
		OnBookingReady: func(slots model.BookingSlots) {
			log.Info("booking ready",
				zap.String("activity_id", slots.ActivityID),
				zap.String("date", slots.Date),
				zap.String("time", slots.Time),
				zap.Int("party_size", slots.PartySize),
			)
		},
		Model:          s.modelCfg.Model,
		Temperature:    s.modelCfg.Temperature,
		MaxTokens:      s.modelCfg.MaxTokens,
		GatewayTimeout: s.modelCfg.GatewayTimeout,
	})

	s.mu.Lock()
	s.sessions[conv.SessionID] = sess
	s.mu.Unlock()

	log.Info("session started", zap.String("channel", string(channel)))

	return &model.StartSessionResponse{
		Conversation: conv,
		Greeting:     sess.Greeting(),
	}, nil
}

// Get returns the live session with the given id.
func (s *SessionService) Get(sessionID string) (*engine.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Send processes one user turn on the identified session.
func (s *SessionService) Send(ctx context.Context, sessionID string, req *model.SendMessageRequest) (*model.SendMessageResponse, error) {
	sess, err := s.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.SendMessage(ctx, req.Content)
}

// Reset restarts the identified session under the same identifier.
func (s *SessionService) Reset(ctx context.Context, sessionID string) (*model.StartSessionResponse, error) {
	sess, err := s.Get(sessionID)
	if err != nil {
		return nil, err
	}

	greeting, err := sess.Reset(ctx)
	if err != nil {
		return nil, err
	}

	return &model.StartSessionResponse{
		Conversation: sess.Conversation(),
		Greeting:     greeting,
	}, nil
}

// Status describes the identified session's state and slots.
func (s *SessionService) Status(sessionID string) (*model.SessionStatusResponse, error) {
	sess, err := s.Get(sessionID)
	if err != nil {
		return nil, err
	}

	return &model.SessionStatusResponse{
		Conversation: sess.Conversation(),
		State:        sess.State(),
		Slots:        sess.Slots(),
	}, nil
}

// History returns logged messages for a session from the durable store. When
// no stream manager is configured it falls back to the in-memory copy.
func (s *SessionService) History(ctx context.Context, sessionID string, afterSequence uint64, limit int) (*model.ListMessagesResponse, error) {
	sess, err := s.Get(sessionID)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	if s.streams == nil {
		msgs := sess.Messages()
		if len(msgs) > limit {
			msgs = msgs[len(msgs)-limit:]
		}
		return &model.ListMessagesResponse{Messages: msgs}, nil
	}

	orgID := sess.Conversation().OrganizationID
	messages, lastSeq, hasMore, err := s.streams.GetMessages(ctx, orgID, sessionID, afterSequence, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}

	return &model.ListMessagesResponse{
		Messages:     messages,
		HasMore:      hasMore,
		LastSequence: lastSeq,
	}, nil
}

// Close tears down the identified session and removes it from the registry.
func (s *SessionService) Close(sessionID string) error {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if ok {
		delete(s.sessions, sessionID)
	}
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	sess.Close()
	return nil
}
