package form

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ValueKind enumerates the validator applied to a step's raw input.
type ValueKind string

const (
	KindText            ValueKind = "TEXT"             // non-blank free text
	KindDecimal         ValueKind = "DECIMAL"          // decimal >= 0
	KindPositiveDecimal ValueKind = "POSITIVE_DECIMAL" // decimal > 0
	KindInt             ValueKind = "INTEGER"          // integer >= 0
	KindPositiveInt     ValueKind = "POSITIVE_INTEGER" // integer > 0
	KindChoice          ValueKind = "CHOICE"           // id from a generated option set
)

// Option is one entry of a choice step's generated option set.
type Option struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

// Value is a parsed, validated step input. Exactly the fields relevant to
// Kind are populated; the struct round-trips through JSON for session
// persistence.
type Value struct {
	Kind        ValueKind       `json:"kind"`
	Text        string          `json:"text,omitempty"`
	Number      decimal.Decimal `json:"number"`
	Int         int64           `json:"int,omitempty"`
	ChoiceID    int64           `json:"choice_id,omitempty"`
	ChoiceLabel string          `json:"choice_label,omitempty"`
}

// ValidationError describes rejected user input. The session is left
// untouched and the same prompt is re-issued.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func invalid(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// parseValue runs the validator for kind against raw input. Numeric kinds
// accept both '.' and ',' as the decimal separator.
func parseValue(kind ValueKind, raw string, options []Option) (Value, error) {
	raw = strings.TrimSpace(raw)

	switch kind {
	case KindText:
		if raw == "" {
			return Value{}, invalid("value must not be empty")
		}
		return Value{Kind: kind, Text: raw}, nil

	case KindDecimal, KindPositiveDecimal:
		d, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
		if err != nil {
			return Value{}, invalid("%q is not a number", raw)
		}
		if d.IsNegative() {
			return Value{}, invalid("value must not be negative")
		}
		if kind == KindPositiveDecimal && d.IsZero() {
			return Value{}, invalid("value must be greater than zero")
		}
		return Value{Kind: kind, Number: d}, nil

	case KindInt, KindPositiveInt:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Value{}, invalid("%q is not a whole number", raw)
		}
		if n < 0 {
			return Value{}, invalid("value must not be negative")
		}
		if kind == KindPositiveInt && n == 0 {
			return Value{}, invalid("value must be greater than zero")
		}
		return Value{Kind: kind, Int: n}, nil

	case KindChoice:
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Value{}, invalid("%q is not a valid option", raw)
		}
		for _, opt := range options {
			if opt.ID == id {
				return Value{Kind: kind, ChoiceID: opt.ID, ChoiceLabel: opt.Label}, nil
			}
		}
		return Value{}, invalid("option %d is not in the list", id)

	default:
		return Value{}, fmt.Errorf("unsupported value kind %q", kind)
	}
}

// Values is the collected result map of a completed flow, keyed by step key.
type Values map[string]Value

// Text returns the text value stored under key, or "".
func (v Values) Text(key string) string { return v[key].Text }

// Decimal returns the decimal value stored under key, or zero.
func (v Values) Decimal(key string) decimal.Decimal {
	val, ok := v[key]
	if !ok {
		return decimal.Zero
	}
	return val.Number
}

// Int returns the integer value stored under key, or 0.
func (v Values) Int(key string) int64 { return v[key].Int }

// ChoiceID returns the selected option id stored under key, or 0.
func (v Values) ChoiceID(key string) int64 { return v[key].ChoiceID }

// Has reports whether a value was collected for key.
func (v Values) Has(key string) bool {
	_, ok := v[key]
	return ok
}
