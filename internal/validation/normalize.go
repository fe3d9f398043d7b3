package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"
)

func TrimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Escape neutralizes markup in free text before it is stored.
func Escape(s string) string {
	return html.EscapeString(s)
}

// RoundPrice keeps two fractional digits.
func RoundPrice(p float64) float64 {
	return math.Round(p*100) / 100
}

// FlexFloat decodes from a JSON number or a numeric string. Input that is not
// a number decodes to NaN so the "finite" rule can report it with the other
// field errors instead of failing the whole bind.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	v, ok := decodeNumber(b)
	if !ok {
		v = math.NaN()
	}
	*f = FlexFloat(v)
	return nil
}

func (f FlexFloat) Float() float64 { return float64(f) }

// FlexInt decodes from a JSON integer or an integer string. Fractions and
// non-numeric input decode to NaN and fail the "integer" rule.
type FlexInt float64

func (n *FlexInt) UnmarshalJSON(b []byte) error {
	v, ok := decodeNumber(b)
	if !ok || v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
		v = math.NaN()
	}
	*n = FlexInt(v)
	return nil
}

func (n FlexInt) Int() int { return int(n) }

func decodeNumber(b []byte) (float64, bool) {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return 0, false
		}
		v, err := ParseFloat(s)
		return v, err == nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return 0, false
	}
	return v, true
}

// IsFinite reports whether v holds a usable number.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func ParseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	return v, nil
}

func ParseInt(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	return v, nil
}
