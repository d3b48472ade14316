package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundMoney_HalfAwayFromZero(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0.015", "0.02"},
		{"9.999", "10.00"},
		{"0.005", "0.01"},
		{"0.004", "0.00"},
		{"2.675", "2.68"},
		{"-0.015", "-0.02"},
		{"44.48", "44.48"},
		{"24.5", "24.50"},
	}

	for _, tc := range cases {
		got := FormatMoney(RoundMoney(decimal.RequireFromString(tc.in)))
		assert.Equal(t, tc.want, got, "round(%s)", tc.in)
	}
}

func TestNewOrderItem_Subtotal(t *testing.T) {
	item := NewOrderItem("P1", 3, decimal.RequireFromString("3.333"))
	assert.Equal(t, "10.00", FormatMoney(item.Subtotal))

	item = NewOrderItem("P2", 1, decimal.RequireFromString("0.015"))
	assert.Equal(t, "0.02", FormatMoney(item.Subtotal))
}

func TestNewOrder_Totals(t *testing.T) {
	now := time.Date(2025, 1, 31, 10, 0, 0, 123456789, time.UTC)
	items := []OrderItem{
		NewOrderItem("PROD-001", 2, decimal.RequireFromString("9.99")),
		NewOrderItem("PROD-002", 1, decimal.RequireFromString("24.50")),
	}

	order := NewOrder("id-1", items, now)

	assert.Equal(t, OrderStatusPending, order.Status)
	assert.Equal(t, "44.48", FormatMoney(order.TotalAmount))
	assert.Equal(t, "19.98", FormatMoney(order.Items[0].Subtotal))
	assert.Equal(t, "24.50", FormatMoney(order.Items[1].Subtotal))
	assert.Equal(t, "2025-01-31T10:00:00Z", order.CreatedAtText())
	assert.Equal(t, order.CreatedAtText(), order.UpdatedAtText())
}

func TestApply_Transitions(t *testing.T) {
	created := time.Date(2025, 1, 31, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		action Action
		want   OrderStatus
	}{
		{"confirm", ActionConfirm, OrderStatusConfirmed},
		{"cancel", ActionCancel, OrderStatusCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := NewOrder("id-1", []OrderItem{NewOrderItem("P", 1, decimal.NewFromInt(5))}, created)

			// same wall-clock second as creation
			err := order.Apply(tt.action, created.Add(400*time.Millisecond))
			require.NoError(t, err)

			assert.Equal(t, tt.want, order.Status)
			assert.Equal(t, "2025-01-31T10:00:00.400Z", order.UpdatedAtText())
			assert.NotEqual(t, order.CreatedAtText(), order.UpdatedAtText())
			assert.Equal(t, "5.00", FormatMoney(order.TotalAmount))
		})
	}
}

func TestApply_ExactSecondStillDiffers(t *testing.T) {
	created := time.Date(2025, 1, 31, 10, 0, 0, 0, time.UTC)
	order := NewOrder("id-1", []OrderItem{NewOrderItem("P", 1, decimal.NewFromInt(5))}, created)

	require.NoError(t, order.Apply(ActionConfirm, created))
	assert.Equal(t, "2025-01-31T10:00:00.000Z", order.UpdatedAtText())
	assert.NotEqual(t, order.CreatedAtText(), order.UpdatedAtText())
}

func TestApply_TerminalStatesReject(t *testing.T) {
	now := time.Now()

	for _, first := range []Action{ActionConfirm, ActionCancel} {
		for _, second := range []Action{ActionConfirm, ActionCancel} {
			order := NewOrder("id-1", []OrderItem{NewOrderItem("P", 1, decimal.NewFromInt(1))}, now)
			require.NoError(t, order.Apply(first, now))
			before := order.Clone()

			err := order.Apply(second, now.Add(time.Second))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidTransition))

			var te *TransitionError
			require.True(t, errors.As(err, &te))
			assert.Equal(t, "id-1", te.OrderID)
			assert.Equal(t, before.Status, te.Current)
			assert.Equal(t, second, te.Action)
			assert.Equal(t, before, order)
		}
	}
}

func TestTransitionError_Message(t *testing.T) {
	err := &TransitionError{OrderID: "x", Current: OrderStatusConfirmed, Action: ActionCancel}
	assert.Equal(t, "Cannot cancel order in CONFIRMED state", err.Error())
}

func TestClone_DoesNotShareItems(t *testing.T) {
	order := NewOrder("id-1", []OrderItem{NewOrderItem("P", 1, decimal.NewFromInt(1))}, time.Now())
	clone := order.Clone()
	clone.Items[0].ProductID = "changed"

	assert.Equal(t, "P", order.Items[0].ProductID)
}
