package nats

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/bookline-ai/booking-engine/internal/model"
	"github.com/bookline-ai/booking-engine/pkg/logger"
	"github.com/bookline-ai/booking-engine/pkg/metrics"
)

// Recorder adapts the stream manager to the engine's fire-and-forget
// persistence contract. Every failure is logged and counted; none ever
// propagates into the turn-processing path.
type Recorder struct {
	streams *StreamManager
	orgID   string
	log     *logger.Logger
	timeout time.Duration
}

// NewRecorder creates a recorder scoped to one organization.
func NewRecorder(streams *StreamManager, orgID string, log *logger.Logger) *Recorder {
	return &Recorder{
		streams: streams,
		orgID:   orgID,
		log:     log,
		timeout: 5 * time.Second,
	}
}

// RecordMessage appends a message to the durable log.
func (r *Recorder) RecordMessage(ctx context.Context, msg *model.ChatMessage) {
	// Detached from the turn's context so a cancelled turn still persists.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	if _, err := r.streams.PublishMessage(pubCtx, msg, r.orgID); err != nil {
		metrics.PersistenceErrorsTotal.WithLabelValues("message").Inc()
		r.log.Warn("failed to persist message",
			zap.String("session_id", msg.SessionID),
			zap.String("role", string(msg.Role)),
			zap.Error(err),
		)
	}
}

// RecordEvent appends an event to the durable log.
func (r *Recorder) RecordEvent(ctx context.Context, event *model.ConversationEvent) {
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	if _, err := r.streams.PublishEvent(pubCtx, event); err != nil {
		metrics.PersistenceErrorsTotal.WithLabelValues("event").Inc()
		r.log.Warn("failed to persist event",
			zap.String("session_id", event.SessionID),
			zap.String("type", string(event.Type)),
			zap.Error(err),
		)
	}
}
