package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/rl1809/order-lifecycle/internal/core/domain"
	"github.com/rl1809/order-lifecycle/internal/core/service"
)

const (
	idempotencyKeyHeader = "Idempotency-Key"
	replayedHeader       = "Idempotent-Replayed"
)

type HTTPHandler struct {
	orderService *service.OrderService
	maxBodyBytes int64
	logger       *zap.Logger
}

func NewHTTPHandler(orderService *service.OrderService, maxBodyBytes int64, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{
		orderService: orderService,
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}
}

// POST /api/v1/orders
func (h *HTTPHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	body := r.Body
	if h.maxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}
	payload := service.DecodePayload(body)

	order, replayed, err := h.orderService.CreateIdempotent(r.Context(), payload, r.Header.Get(idempotencyKeyHeader))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if replayed {
		w.Header().Set(replayedHeader, "true")
	}
	h.writeJSON(w, http.StatusCreated, newOrderResponse(order))
}

// GET /api/v1/orders/{order_id}
func (h *HTTPHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orderService.Get(r.Context(), chi.URLParam(r, "order_id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newOrderResponse(order))
}

// POST /api/v1/orders/{order_id}/confirm
func (h *HTTPHandler) ConfirmOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orderService.Confirm(r.Context(), chi.URLParam(r, "order_id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newOrderResponse(order))
}

// POST /api/v1/orders/{order_id}/cancel
func (h *HTTPHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orderService.Cancel(r.Context(), chi.URLParam(r, "order_id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newOrderResponse(order))
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *service.ValidationError
		nf   *service.NotFoundError
		te   *domain.TransitionError
	)

	switch {
	case errors.As(err, &verr):
		h.writeJSON(w, http.StatusUnprocessableEntity,
			newErrorResponse(codeValidation, verr.Error(), details(verr.Details)))
	case errors.As(err, &nf):
		h.writeJSON(w, http.StatusNotFound, newErrorResponse(codeNotFound, nf.Error(), details{
			{Field: "order_id", Message: nf.OrderID},
		}))
	case errors.As(err, &te):
		h.writeJSON(w, http.StatusConflict, newErrorResponse(codeInvalidTransition, te.Error(), details{
			{Field: "order_id", Message: te.OrderID},
			{Field: "current_status", Message: string(te.Current)},
			{Field: "requested_action", Message: string(te.Action)},
		}))
	default:
		h.logger.Error("request failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		h.writeJSON(w, http.StatusInternalServerError, newErrorResponse(codeInternal, "Internal server error", nil))
	}
}

func (h *HTTPHandler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", zap.Int("status", status), zap.Error(err))
	}
}
