package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

type Action string

const (
	ActionConfirm Action = "confirm"
	ActionCancel  Action = "cancel"
)

// target is the status an action moves a pending order into.
func (a Action) target() (OrderStatus, bool) {
	switch a {
	case ActionConfirm:
		return OrderStatusConfirmed, true
	case ActionCancel:
		return OrderStatusCancelled, true
	}
	return "", false
}

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderExists       = errors.New("order already exists")
	ErrInvalidTransition = errors.New("invalid state transition")
)

type TransitionError struct {
	OrderID string
	Current OrderStatus
	Action  Action
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("Cannot %s order in %s state", e.Action, e.Current)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

type OrderItem struct {
	ProductID string
	Quantity  int64
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

type Order struct {
	ID          string
	Status      OrderStatus
	Items       []OrderItem
	TotalAmount decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewOrderItem computes the rounded subtotal for a line.
func NewOrderItem(productID string, quantity int64, unitPrice decimal.Decimal) OrderItem {
	return OrderItem{
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Subtotal:  RoundMoney(unitPrice.Mul(decimal.NewFromInt(quantity))),
	}
}

// NewOrder assembles a pending order. The creation time is truncated to the
// second and shared by CreatedAt and UpdatedAt.
func NewOrder(id string, items []OrderItem, now time.Time) Order {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal)
	}

	created := now.UTC().Truncate(time.Second)
	return Order{
		ID:          id,
		Status:      OrderStatusPending,
		Items:       items,
		TotalAmount: RoundMoney(total),
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

// Apply performs a status transition in place. Only pending orders move.
func (o *Order) Apply(action Action, now time.Time) error {
	next, ok := action.target()
	if !ok || o.Status != OrderStatusPending {
		return &TransitionError{OrderID: o.ID, Current: o.Status, Action: action}
	}

	o.Status = next
	o.UpdatedAt = now.UTC().Truncate(time.Millisecond)
	return nil
}

// Clone returns a copy that shares no mutable state with o.
func (o Order) Clone() Order {
	items := make([]OrderItem, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	return o
}
