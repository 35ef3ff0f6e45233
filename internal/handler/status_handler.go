package handler

import (
	"net/http"

	"ordersvc/internal/model"
	"ordersvc/internal/service"

	"github.com/rs/zerolog"
)

// StatusHandler handles lifecycle and statistics HTTP requests.
type StatusHandler struct {
	service service.StatusService
	logger  zerolog.Logger
}

// NewStatusHandler creates a new status handler.
func NewStatusHandler(service service.StatusService, logger zerolog.Logger) *StatusHandler {
	return &StatusHandler{
		service: service,
		logger:  logger.With().Str("handler", "status").Logger(),
	}
}

// Transition handles PUT /api/orders/{id}/status requests.
func (h *StatusHandler) Transition(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	orderID, err := orderIDParam(r)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	var req model.TransitionRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, err, h.logger)
		return
	}

	result, err := h.service.Transition(r.Context(), p, orderID, &req)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Cancel handles POST /api/orders/{id}/cancel requests.
func (h *StatusHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	orderID, err := orderIDParam(r)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	var req model.CancelOrderRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, err, h.logger)
		return
	}

	order, err := h.service.Cancel(r.Context(), p, orderID, &req)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// History handles GET /api/orders/{id}/status-history requests.
func (h *StatusHandler) History(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	orderID, err := orderIDParam(r)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	entries, err := h.service.History(r.Context(), p, orderID)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// Stats handles GET /api/orders/stats requests.
func (h *StatusHandler) Stats(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	stats, err := h.service.Stats(r.Context(), p)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// StatusStats handles GET /api/orders/status-stats requests.
func (h *StatusHandler) StatusStats(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	stats, err := h.service.StatusStats(r.Context(), p)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
