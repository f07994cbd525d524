package metrics

import (
	"math"
	"strconv"
	"strings"
)

// State tells whether a metric produced a number or a sentinel
type State int

const (
	Defined State = iota
	Infinite
	Undefined
)

// Value is a metric result that may be a sentinel
type Value struct {
	Number float64 `json:"number"`
	State  State   `json:"state"`
}

// Of wraps a metric value. NaN becomes Undefined and infinities Infinite.
func Of(v float64) Value {
	if math.IsNaN(v) {
		return Value{Number: math.NaN(), State: Undefined}
	}
	if math.IsInf(v, 0) {
		return Value{Number: v, State: Infinite}
	}
	return Value{Number: v, State: Defined}
}

// Inf is the sentinel for path metrics on disconnected graphs
func Inf() Value {
	return Value{Number: math.Inf(1), State: Infinite}
}

// NaN is the sentinel for undefined correlations
func NaN() Value {
	return Value{Number: math.NaN(), State: Undefined}
}

// IsDefined reports whether v holds a finite number
func (v Value) IsDefined() bool {
	return v.State == Defined
}

// String renders the value the way the console report prints floats:
// shortest round-trip digits, integral values keep a trailing ".0", and
// very small or very large magnitudes switch to exponent form.
func (v Value) String() string {
	switch v.State {
	case Infinite:
		return "Inf"
	case Undefined:
		return "nan"
	}
	return formatFloat(v.Number)
}

// IntString renders the value as an integer, for count-like metrics
func (v Value) IntString() string {
	if v.State != Defined {
		return v.String()
	}
	return strconv.FormatInt(int64(v.Number), 10)
}

func formatFloat(f float64) string {
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".") {
		s += ".0"
	}
	return s
}
