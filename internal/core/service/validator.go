package service

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	msgInvalidBody        = "Invalid JSON body"
	msgItemsRequired      = "Items are required"
	msgItemsNotArray      = "Items must be an array"
	msgItemsEmpty         = "At least one item is required"
	msgInvalidItem        = "Invalid item format"
	msgProductIDRequired  = "Product ID is required"
	msgProductIDNotString = "Product ID must be a string"
	msgProductIDEmpty     = "Product ID must be non-empty"
	msgQuantityRequired   = "Quantity is required"
	msgQuantityNotNumber  = "Quantity must be a number"
	msgQuantityTooSmall   = "Must be at least 1"
	msgPriceRequired      = "Unit price is required"
	msgPriceNotNumber     = "Unit price must be a number"
	msgPriceNegative      = "Must be greater than or equal to 0"
	msgPriceTooLarge      = "Must be less than 1000000000000000"
)

const (
	// maxQuantityDigits is the integer digit count of math.MaxInt64.
	maxQuantityDigits = 19

	// Unit prices must be below 10^maxPriceDigits.
	maxPriceDigits = 15

	// A unit price below 10^-negligiblePriceDigits times any valid quantity
	// still rounds to 0.00.
	negligiblePriceDigits = 22
)

var (
	maxQuantity         = decimal.NewFromInt(math.MaxInt64)
	msgQuantityTooLarge = fmt.Sprintf("Must be at most %d", int64(math.MaxInt64))
)

// ItemInput is a line item that passed validation.
type ItemInput struct {
	ProductID string
	Quantity  int64
	UnitPrice decimal.Decimal
}

// ValidateCreate checks a create-order payload and returns its items, or a
// *ValidationError listing every violation.
func ValidateCreate(p Payload) ([]ItemInput, error) {
	verr := &ValidationError{}

	body, ok := p.Value.(map[string]any)
	if p.Err != nil || !ok {
		verr.add("body", msgInvalidBody)
		return nil, verr
	}

	raw, present := body["items"]
	if !present || raw == nil {
		verr.add("items", msgItemsRequired)
		return nil, verr
	}
	list, ok := raw.([]any)
	if !ok {
		verr.add("items", msgItemsNotArray)
		return nil, verr
	}
	if len(list) == 0 {
		verr.add("items", msgItemsEmpty)
		return nil, verr
	}

	items := make([]ItemInput, 0, len(list))
	for i, entry := range list {
		prefix := fmt.Sprintf("items[%d]", i)

		fields, ok := entry.(map[string]any)
		if !ok {
			verr.add(prefix, msgInvalidItem)
			continue
		}

		var item ItemInput
		item.ProductID = validateProductID(verr, prefix, fields)
		item.Quantity = validateQuantity(verr, prefix, fields)
		item.UnitPrice = validateUnitPrice(verr, prefix, fields)
		items = append(items, item)
	}

	if len(verr.Details) > 0 {
		return nil, verr
	}
	return items, nil
}

func validateProductID(verr *ValidationError, prefix string, fields map[string]any) string {
	field := prefix + ".product_id"

	raw, present := fields["product_id"]
	if !present {
		verr.add(field, msgProductIDRequired)
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		verr.add(field, msgProductIDNotString)
		return ""
	}
	if strings.TrimSpace(s) == "" {
		verr.add(field, msgProductIDEmpty)
		return ""
	}
	return s
}

func validateQuantity(verr *ValidationError, prefix string, fields map[string]any) int64 {
	field := prefix + ".quantity"

	raw, present := fields["quantity"]
	if !present {
		verr.add(field, msgQuantityRequired)
		return 0
	}
	n, ok := toDecimal(raw)
	if !ok {
		verr.add(field, msgQuantityNotNumber)
		return 0
	}
	// Magnitude checks run before any comparison so an extreme exponent is
	// never rescaled.
	if n.Sign() <= 0 || intDigits(n) <= 0 {
		verr.add(field, msgQuantityTooSmall)
		return 0
	}
	if intDigits(n) > maxQuantityDigits {
		verr.add(field, msgQuantityTooLarge)
		return 0
	}
	if !n.IsInteger() || n.LessThan(decimal.NewFromInt(1)) {
		verr.add(field, msgQuantityTooSmall)
		return 0
	}
	if n.GreaterThan(maxQuantity) {
		verr.add(field, msgQuantityTooLarge)
		return 0
	}
	return n.IntPart()
}

func validateUnitPrice(verr *ValidationError, prefix string, fields map[string]any) decimal.Decimal {
	field := prefix + ".unit_price"

	raw, present := fields["unit_price"]
	if !present {
		verr.add(field, msgPriceRequired)
		return decimal.Zero
	}
	n, ok := toDecimal(raw)
	if !ok {
		verr.add(field, msgPriceNotNumber)
		return decimal.Zero
	}
	switch {
	case n.Sign() < 0:
		verr.add(field, msgPriceNegative)
		return decimal.Zero
	case n.Sign() == 0:
		return decimal.Zero
	case intDigits(n) > maxPriceDigits:
		verr.add(field, msgPriceTooLarge)
		return decimal.Zero
	case intDigits(n) < -negligiblePriceDigits:
		return decimal.Zero
	}
	return n
}

// intDigits is the position of the most significant digit of a non-zero d
// relative to the decimal point: 123.4 has 3, 0.05 has -1. It reads only the
// coefficient length and exponent.
func intDigits(d decimal.Decimal) int64 {
	return int64(d.NumDigits()) + int64(d.Exponent())
}

// toDecimal converts a decoded JSON number into an exact decimal. Booleans
// and strings are not numbers.
func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case float64:
		return decimal.NewFromFloat(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	}
	return decimal.Zero, false
}
