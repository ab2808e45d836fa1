package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bookline-ai/booking-engine/internal/extract"
	"github.com/bookline-ai/booking-engine/internal/llm"
	"github.com/bookline-ai/booking-engine/internal/model"
	"github.com/bookline-ai/booking-engine/pkg/logger"
	"github.com/bookline-ai/booking-engine/pkg/metrics"
)

var (
	// ErrTurnInFlight is returned when a send arrives while a previous turn
	// is still processing. The caller's request is dropped, not queued.
	ErrTurnInFlight = errors.New("a turn is already in flight")

	// ErrSessionClosed is returned for operations on a closed session.
	ErrSessionClosed = errors.New("session is closed")

	// ErrEmptyMessage is returned for a blank user utterance.
	ErrEmptyMessage = errors.New("message content is empty")
)

const defaultGreeting = "Hi! I can help you book an activity. What would you like to do?"

// Recorder is the append-only persistence collaborator. Implementations must
// never fail into the turn path: errors are logged and swallowed.
type Recorder interface {
	RecordMessage(ctx context.Context, msg *model.ChatMessage)
	RecordEvent(ctx context.Context, event *model.ConversationEvent)
}

// NopRecorder discards everything. Useful for tests and embedded use.
type NopRecorder struct{}

func (NopRecorder) RecordMessage(context.Context, *model.ChatMessage)      {}
func (NopRecorder) RecordEvent(context.Context, *model.ConversationEvent) {}

// Config carries the collaborators and tunables for one session. Everything
// the session needs is passed in explicitly; there is no ambient state.
type Config struct {
	Agent    *model.AgentConfig
	Gateway  llm.Client // nil means fallback-only operation
	Recorder Recorder
	Logger   *logger.Logger

	// OnBookingReady fires once per turn whose assistant reply carries the
	// checkout marker, with the slot state at that moment.
	OnBookingReady func(model.BookingSlots)

	Model          string
	Temperature    float64
	MaxTokens      int
	GatewayTimeout time.Duration

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Session orchestrates one chat session: it owns the in-memory message list
// and slot state, sequences each turn, and recovers from gateway failures via
// the rule-based responder. All methods are safe for concurrent use, but at
// most one turn processes at a time; concurrent sends are rejected.
type Session struct {
	conv     *model.Conversation
	recorder Recorder
	gateway  llm.Client
	log      *logger.Logger
	onReady  func(model.BookingSlots)

	modelName      string
	temperature    float64
	maxTokens      int
	gatewayTimeout time.Duration
	now            func() time.Time

	mu        sync.Mutex
	agent     *model.AgentConfig
	extractor *extract.Extractor
	state     model.SessionState
	slots     model.BookingSlots
	messages  []model.ChatMessage

	// expected is the slot the latest assistant prompt asked for; it feeds
	// the extractor's bare-integer party-size rule.
	expected model.SlotName

	inFlight bool
	closed   bool

	// epoch is the liveness token: bumped on reset and close so a turn that
	// was suspended at the gateway call discards its result instead of
	// mutating state that no longer belongs to it.
	epoch uint64
}

// NewSession creates the conversation record, seeds the greeting as the sole
// assistant message, and leaves the session awaiting user input.
func NewSession(conv *model.Conversation, cfg Config) *Session {
	log := cfg.Logger
	if log == nil {
		log = logger.Global()
	}
	rec := cfg.Recorder
	if rec == nil {
		rec = NopRecorder{}
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	timeout := cfg.GatewayTimeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	ext := extract.New(cfg.Agent)
	ext.Now = now

	s := &Session{
		conv:           conv,
		recorder:       rec,
		gateway:        cfg.Gateway,
		log:            log.With(zap.String("session_id", conv.SessionID), zap.String("agent_id", conv.AgentID)),
		onReady:        cfg.OnBookingReady,
		modelName:      cfg.Model,
		temperature:    cfg.Temperature,
		maxTokens:      cfg.MaxTokens,
		gatewayTimeout: timeout,
		now:            now,
		agent:          cfg.Agent,
		extractor:      ext,
		state:          model.StateAwaitingInput,
		expected:       model.SlotActivity,
	}

	greeting := s.seedGreeting()
	s.recorder.RecordMessage(context.Background(), greeting)
	metrics.SessionsActive.Inc()

	return s
}

// seedGreeting appends the agent greeting; caller must not hold s.mu.
func (s *Session) seedGreeting() *model.ChatMessage {
	text := s.agent.Greeting
	if text == "" {
		text = defaultGreeting
	}
	msg := &model.ChatMessage{
		ID:        uuid.Must(uuid.NewV7()).String(),
		SessionID: s.conv.SessionID,
		Role:      model.RoleAssistant,
		Content:   text,
		CreatedAt: s.now(),
	}
	s.mu.Lock()
	s.messages = append(s.messages, *msg)
	s.mu.Unlock()
	return msg
}

// Greeting returns the seeded greeting message.
func (s *Session) Greeting() *model.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) == 0 {
		return nil
	}
	msg := s.messages[0]
	return &msg
}

// SendMessage processes one user turn: extract entities, merge slots, persist
// the user message, compose the prompt, call the model, and fall back to the
// rule-based responder on any gateway failure. A send arriving while another
// turn is in flight returns ErrTurnInFlight and mutates nothing.
func (s *Session) SendMessage(ctx context.Context, content string) (*model.SendMessageResponse, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyMessage
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	if s.inFlight {
		s.mu.Unlock()
		return nil, ErrTurnInFlight
	}
	s.inFlight = true
	s.state = model.StateProcessingTurn
	epoch := s.epoch

	patch := s.extractor.Extract(content, s.expected)
	s.slots = ApplySlots(s.slots, patch)
	slots := s.slots

	userMsg := model.ChatMessage{
		ID:        uuid.Must(uuid.NewV7()).String(),
		SessionID: s.conv.SessionID,
		Role:      model.RoleUser,
		Content:   content,
		CreatedAt: s.now(),
	}
	if !patch.IsEmpty() {
		entities := patch
		userMsg.Entities = &entities
	}
	s.messages = append(s.messages, userMsg)

	agent := s.agent
	prompt := ComposePrompt(agent, agent.Activities, slots)
	history := s.historyLocked(50)
	s.mu.Unlock()

	s.recorder.RecordMessage(ctx, &userMsg)

	reply, tokens, modelUsed, latency, usedFallback := s.answer(ctx, prompt, history, slots, agent)

	s.mu.Lock()
	if s.closed || s.epoch != epoch {
		// The session was reset or torn down while we awaited the gateway;
		// the late result must not touch state.
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}

	assistantMsg := model.ChatMessage{
		ID:        uuid.Must(uuid.NewV7()).String(),
		SessionID: s.conv.SessionID,
		Role:      model.RoleAssistant,
		Content:   reply,
		Fallback:  usedFallback,
		CreatedAt: s.now(),
	}
	if !usedFallback {
		assistantMsg.TokensUsed = &tokens
		assistantMsg.Model = &modelUsed
		assistantMsg.LatencyMs = &latency
	}
	s.messages = append(s.messages, assistantMsg)

	checkoutReady := strings.Contains(reply, CheckoutReadyMarker)
	if checkoutReady {
		s.state = model.StateCheckoutReady
	} else {
		s.state = model.StateAwaitingInput
	}
	if missing, ok := slots.FirstMissing(); ok {
		s.expected = missing
	} else {
		s.expected = ""
	}
	s.inFlight = false
	onReady := s.onReady
	s.mu.Unlock()

	s.recorder.RecordMessage(ctx, &assistantMsg)

	outcome := "model"
	if usedFallback {
		outcome = "fallback"
	}
	metrics.TurnsTotal.WithLabelValues(s.conv.AgentID, outcome).Inc()

	if checkoutReady {
		metrics.BookingsReadyTotal.WithLabelValues(s.conv.AgentID).Inc()
		s.recorder.RecordEvent(ctx, &model.ConversationEvent{
			ID:             uuid.Must(uuid.NewV7()).String(),
			SessionID:      s.conv.SessionID,
			OrganizationID: s.conv.OrganizationID,
			Type:           model.EventTypeBookingReady,
			Reason:         Summary(slots, agent),
			Slots:          slots,
			CreatedAt:      s.now(),
		})
		if onReady != nil {
			onReady(slots)
		}
	}

	return &model.SendMessageResponse{
		UserMessage:      &userMsg,
		AssistantMessage: &assistantMsg,
		Slots:            slots,
		CheckoutReady:    checkoutReady,
	}, nil
}

// answer produces the assistant reply, degrading to the rule-based responder
// when the gateway is absent or fails. This is the turn's only suspension
// point.
func (s *Session) answer(
	ctx context.Context,
	prompt string,
	history []llm.ChatMessage,
	slots model.BookingSlots,
	agent *model.AgentConfig,
) (reply string, tokens int, modelUsed string, latency int64, usedFallback bool) {
	if s.gateway == nil {
		metrics.FallbackRepliesTotal.WithLabelValues(s.conv.AgentID, "no_gateway").Inc()
		return Respond(slots, agent), 0, "", 0, true
	}

	callCtx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()

	start := s.now()
	resp, err := s.gateway.Complete(callCtx, &llm.CompletionRequest{
		SystemPrompt: prompt,
		Messages:     history,
		Model:        s.modelName,
		MaxTokens:    s.maxTokens,
		Temperature:  s.temperature,
	})
	if err != nil {
		// Gateway failures are recovered locally, never surfaced to the
		// user as errors.
		s.log.Warn("model gateway failed, using fallback responder", zap.Error(err))
		metrics.FallbackRepliesTotal.WithLabelValues(s.conv.AgentID, "gateway_error").Inc()
		metrics.RecordLLMRequest(s.gateway.Name(), "error", time.Since(start).Seconds(), 0)
		s.recorder.RecordEvent(ctx, &model.ConversationEvent{
			ID:             uuid.Must(uuid.NewV7()).String(),
			SessionID:      s.conv.SessionID,
			OrganizationID: s.conv.OrganizationID,
			Type:           model.EventTypeGatewayError,
			Reason:         err.Error(),
			CreatedAt:      s.now(),
		})
		return Respond(slots, agent), 0, "", 0, true
	}

	metrics.RecordLLMRequest(resp.Model, "success", time.Since(start).Seconds(), resp.TokensUsed)
	return resp.Content, resp.TokensUsed, resp.Model, resp.LatencyMs, false
}

// historyLocked converts the message list to gateway format, keeping the most
// recent limit entries. Caller must hold s.mu.
func (s *Session) historyLocked(limit int) []llm.ChatMessage {
	start := 0
	if len(s.messages) > limit {
		start = len(s.messages) - limit
	}
	out := make([]llm.ChatMessage, 0, len(s.messages)-start)
	for _, msg := range s.messages[start:] {
		out = append(out, llm.ChatMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}
	return out
}

// Reset clears slots and message history and re-seeds the greeting under the
// same session identifier. An in-flight model call's result is discarded via
// the epoch bump even though the network call itself cannot be aborted.
func (s *Session) Reset(ctx context.Context) (*model.ChatMessage, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	s.epoch++
	s.inFlight = false
	s.slots = model.BookingSlots{}
	s.messages = nil
	s.state = model.StateAwaitingInput
	s.expected = model.SlotActivity
	s.mu.Unlock()

	s.recorder.RecordEvent(ctx, &model.ConversationEvent{
		ID:             uuid.Must(uuid.NewV7()).String(),
		SessionID:      s.conv.SessionID,
		OrganizationID: s.conv.OrganizationID,
		Type:           model.EventTypeReset,
		CreatedAt:      s.now(),
	})

	greeting := s.seedGreeting()
	s.recorder.RecordMessage(ctx, greeting)
	return greeting, nil
}

// Close tears the session down. Any state write issued after a suspension
// point becomes a no-op.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.epoch++
	s.closed = true
	s.inFlight = false
	s.state = model.StateClosed
	s.mu.Unlock()
	metrics.SessionsActive.Dec()
}

// UpdateConfig swaps the agent configuration for subsequent turns. This is
// the explicit live-update hook; configuration is never re-read ambiently.
func (s *Session) UpdateConfig(agent *model.AgentConfig) {
	ext := extract.New(agent)
	ext.Now = s.now
	s.mu.Lock()
	s.agent = agent
	s.extractor = ext
	s.mu.Unlock()
}

// Conversation returns the immutable session envelope.
func (s *Session) Conversation() *model.Conversation {
	return s.conv
}

// Slots returns a copy of the current slot state.
func (s *Session) Slots() model.BookingSlots {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slots
}

// State returns the current state-machine state.
func (s *Session) State() model.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Messages returns a copy of the in-memory message list.
func (s *Session) Messages() []model.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}
