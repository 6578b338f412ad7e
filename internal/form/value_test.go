package form

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseValue_DecimalSeparators(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"25.5", "25,5", " 25,5 "} {
		v, err := parseValue(KindDecimal, raw, nil)
		if err != nil {
			t.Fatalf("parse %q: unexpected error: %v", raw, err)
		}
		if !v.Number.Equal(decimal.RequireFromString("25.5")) {
			t.Errorf("parse %q: got %s, want 25.5", raw, v.Number)
		}
	}
}

func TestParseValue_RejectsNegativeAndZero(t *testing.T) {
	t.Parallel()

	cases := []struct {
		kind ValueKind
		raw  string
	}{
		{KindDecimal, "-1"},
		{KindPositiveDecimal, "0"},
		{KindPositiveDecimal, "-0,5"},
		{KindInt, "-3"},
		{KindPositiveInt, "0"},
	}

	for _, tc := range cases {
		if _, err := parseValue(tc.kind, tc.raw, nil); err == nil {
			t.Errorf("parse %s %q: expected validation error", tc.kind, tc.raw)
		}
	}
}

func TestParseValue_RejectsGarbage(t *testing.T) {
	t.Parallel()

	if _, err := parseValue(KindDecimal, "abc", nil); err == nil {
		t.Error("expected error for non-numeric decimal")
	}
	if _, err := parseValue(KindInt, "2.5", nil); err == nil {
		t.Error("expected error for fractional integer")
	}
	if _, err := parseValue(KindText, "   ", nil); err == nil {
		t.Error("expected error for whitespace-only text")
	}
}

func TestParseValue_ChoiceMustBeInSet(t *testing.T) {
	t.Parallel()

	options := []Option{{ID: 1, Label: "Ivanov"}, {ID: 2, Label: "Petrov"}}

	v, err := parseValue(KindChoice, "2", options)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.ChoiceID != 2 || v.ChoiceLabel != "Petrov" {
		t.Errorf("got choice %d (%s), want 2 (Petrov)", v.ChoiceID, v.ChoiceLabel)
	}

	if _, err := parseValue(KindChoice, "3", options); err == nil {
		t.Error("expected error for option outside the set")
	}
	if _, err := parseValue(KindChoice, "Petrov", options); err == nil {
		t.Error("expected error for non-numeric option")
	}
}
