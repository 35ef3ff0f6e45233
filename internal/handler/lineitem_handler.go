package handler

import (
	"net/http"

	"ordersvc/internal/model"
	"ordersvc/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// LineItemHandler handles line-item HTTP requests.
type LineItemHandler struct {
	service service.LineItemService
	logger  zerolog.Logger
}

// NewLineItemHandler creates a new line-item handler.
func NewLineItemHandler(service service.LineItemService, logger zerolog.Logger) *LineItemHandler {
	return &LineItemHandler{
		service: service,
		logger:  logger.With().Str("handler", "line_item").Logger(),
	}
}

func productIDParam(r *http.Request) (string, error) {
	productID := chi.URLParam(r, "productID")
	if productID == "" {
		return "", model.ValidationError("product ID is required")
	}
	return productID, nil
}

// List handles GET /api/orders/{id}/products requests.
func (h *LineItemHandler) List(w http.ResponseWriter, r *http.Request) {
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

	summary, err := h.service.List(r.Context(), p, orderID)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// Add handles POST /api/orders/{id}/products requests.
func (h *LineItemHandler) Add(w http.ResponseWriter, r *http.Request) {
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

	var req model.AddLineItemRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, err, h.logger)
		return
	}

	order, err := h.service.Add(r.Context(), p, orderID, &req)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Update handles PUT /api/orders/{id}/products/{productID} requests.
func (h *LineItemHandler) Update(w http.ResponseWriter, r *http.Request) {
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
	productID, err := productIDParam(r)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	var req model.UpdateLineItemRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, err, h.logger)
		return
	}

	order, err := h.service.Update(r.Context(), p, orderID, productID, &req)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Remove handles DELETE /api/orders/{id}/products/{productID} requests.
func (h *LineItemHandler) Remove(w http.ResponseWriter, r *http.Request) {
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
	productID, err := productIDParam(r)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	order, err := h.service.Remove(r.Context(), p, orderID, productID)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}
