package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bookline-ai/booking-engine/internal/engine"
	"github.com/bookline-ai/booking-engine/internal/middleware"
	"github.com/bookline-ai/booking-engine/internal/model"
	"github.com/bookline-ai/booking-engine/internal/service"
	"github.com/bookline-ai/booking-engine/pkg/logger"
)

// MessageHandler handles message endpoints.
type MessageHandler struct {
	service *service.SessionService
	logger  *logger.Logger
}

// NewMessageHandler creates a new message handler.
func NewMessageHandler(svc *service.SessionService, log *logger.Logger) *MessageHandler {
	return &MessageHandler{
		service: svc,
		logger:  log,
	}
}

// Send handles POST /api/v1/sessions/:id/messages
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	if err := middleware.ValidateSessionID(sessionID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req model.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateMessageContent(req.Content); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Send(r.Context(), sessionID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			writeError(w, http.StatusNotFound, "session not found")
		case errors.Is(err, engine.ErrTurnInFlight):
			// The engine dropped the re-entrant send; tell the caller so the
			// widget can disable its input while a turn is processing.
			writeError(w, http.StatusConflict, "a turn is already being processed")
		case errors.Is(err, engine.ErrSessionClosed):
			writeError(w, http.StatusGone, "session is closed")
		case errors.Is(err, engine.ErrEmptyMessage):
			writeError(w, http.StatusBadRequest, "content cannot be empty")
		default:
			h.logger.Error("failed to process turn")
			writeError(w, http.StatusInternalServerError, "failed to process message")
		}
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// List handles GET /api/v1/sessions/:id/messages
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	if err := middleware.ValidateSessionID(sessionID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	afterSequence := uint64(0)
	limit := 50

	if seq := r.URL.Query().Get("after_sequence"); seq != "" {
		if parsed, err := strconv.ParseUint(seq, 10, 64); err == nil {
			afterSequence = parsed
		}
	}

	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	resp, err := h.service.History(r.Context(), sessionID, afterSequence, limit)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		h.logger.Error("failed to get messages")
		writeError(w, http.StatusInternalServerError, "failed to get messages")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
