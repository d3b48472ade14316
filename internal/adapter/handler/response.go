package handler

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/rl1809/order-lifecycle/internal/core/domain"
	"github.com/rl1809/order-lifecycle/internal/core/service"
)

const (
	codeValidation        = "VALIDATION_ERROR"
	codeNotFound          = "NOT_FOUND"
	codeInvalidTransition = "INVALID_STATE_TRANSITION"
	codeInternal          = "INTERNAL_ERROR"
)

// money encodes as a JSON number with exactly two fractional digits.
type money decimal.Decimal

func (m money) MarshalJSON() ([]byte, error) {
	return []byte(domain.FormatMoney(decimal.Decimal(m))), nil
}

type OrderItemResponse struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	UnitPrice money  `json:"unit_price"`
	Subtotal  money  `json:"subtotal"`
}

type OrderResponse struct {
	ID          string              `json:"id"`
	Status      string              `json:"status"`
	TotalAmount money               `json:"total_amount"`
	Items       []OrderItemResponse `json:"items"`
	CreatedAt   string              `json:"created_at"`
	UpdatedAt   string              `json:"updated_at"`
}

func newOrderResponse(o domain.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemResponse{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: money(domain.RoundMoney(item.UnitPrice)),
			Subtotal:  money(item.Subtotal),
		})
	}

	return OrderResponse{
		ID:          o.ID,
		Status:      string(o.Status),
		TotalAmount: money(o.TotalAmount),
		Items:       items,
		CreatedAt:   o.CreatedAtText(),
		UpdatedAt:   o.UpdatedAtText(),
	}
}

// details is an ordered field -> message object.
type details []service.FieldError

func (d details) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, fe := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(fe.Field)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(fe.Message)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type ErrorBody struct {
	Code    string  `json:"code"`
	Message string  `json:"message"`
	Details details `json:"details"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

func newErrorResponse(code, message string, d details) ErrorResponse {
	if d == nil {
		d = details{}
	}
	return ErrorResponse{Error: ErrorBody{Code: code, Message: message, Details: d}}
}
