package handler

import (
	"net/http"
	"strconv"
	"time"

	"ordersvc/internal/model"
	"ordersvc/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxPageSize caps the listing page size.
const maxPageSize = 100

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Create handles POST /api/orders requests.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	var req model.CreateOrderRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, err, h.logger)
		return
	}

	order, err := h.service.Create(r.Context(), p, &req)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// GetByID handles GET /api/orders/{id} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
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

	order, err := h.service.GetByID(r.Context(), p, orderID)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// parseListQuery parses the listing query string, applying defaults and the
// page-size cap.
func parseListQuery(r *http.Request) (model.ListOrdersQuery, error) {
	q := model.DefaultListOrdersQuery()
	values := r.URL.Query()

	if raw := values.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return q, model.ValidationError("page must be a positive integer")
		}
		q.Page = page
	}
	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return q, model.ValidationError("limit must be a positive integer")
		}
		if limit > maxPageSize {
			limit = maxPageSize
		}
		q.Limit = limit
	}
	if raw := values.Get("userId"); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			return q, model.ValidationError("userId must be a valid UUID")
		}
		q.UserID = &userID
	}
	if raw := values.Get("status"); raw != "" {
		status := model.OrderStatus(raw)
		if !status.IsValid() {
			return q, model.ValidationError("unknown status filter").
				WithDetails(map[string]any{"statuses": model.ValidStatuses})
		}
		q.Status = &status
	}
	if raw := values.Get("dateFrom"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return q, model.ValidationError("dateFrom must be an RFC 3339 timestamp")
		}
		q.DateFrom = &from
	}
	if raw := values.Get("dateTo"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return q, model.ValidationError("dateTo must be an RFC 3339 timestamp")
		}
		q.DateTo = &to
	}
	if raw := values.Get("sort"); raw != "" {
		switch raw {
		case model.SortByDate, model.SortByTotal, model.SortByStatus:
			q.Sort = raw
		default:
			return q, model.ValidationError("sort must be one of date, total, status")
		}
	}
	if raw := values.Get("order"); raw != "" {
		if raw != "asc" && raw != "desc" {
			return q, model.ValidationError("order must be asc or desc")
		}
		q.Order = raw
	}

	return q, nil
}

// List handles GET /api/orders requests.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	q, err := parseListQuery(r)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	page, err := h.service.List(r.Context(), p, q)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// Update handles PUT /api/orders/{id} requests.
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var req model.UpdateOrderRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, err, h.logger)
		return
	}

	order, err := h.service.Update(r.Context(), p, orderID, &req)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Delete handles DELETE /api/orders/{id} requests.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.service.Delete(r.Context(), p, orderID); err != nil {
		respondError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "order deleted"})
}
