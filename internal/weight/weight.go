// Package weight parses and formats the free-text loads stored on exercises
// ("135 lbs", "60 kg", "bodyweight", "bodyweight + 10 lbs").
package weight

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Unit is the unit token of a load.
type Unit string

const (
	None       Unit = ""
	Lbs        Unit = "lbs"
	Kg         Unit = "kg"
	Bodyweight Unit = "bodyweight"
)

// Weight is a parsed load. For Bodyweight, Magnitude is the added load in lbs.
type Weight struct {
	Magnitude float64
	Unit      Unit
}

var numberPattern = regexp.MustCompile(`\d+\.?\d*`)

// Parse reads s into a Weight. The magnitude is the first number in s and the
// unit is kg if s mentions kg, bodyweight if it mentions bodyweight, lbs
// otherwise. An empty string has no unit.
func Parse(s string) Weight {
	if strings.TrimSpace(s) == "" {
		return Weight{}
	}
	return Weight{Magnitude: ParseMagnitude(s), Unit: UnitOf(s)}
}

// ParseMagnitude returns the first integer or decimal found in s, or 0.
func ParseMagnitude(s string) float64 {
	m := numberPattern.FindString(s)
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return v
}

// UnitOf detects the unit token in s. Anything without kg or bodyweight is lbs.
func UnitOf(s string) Unit {
	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "kg"):
		return Kg
	case strings.Contains(lower, "bodyweight"):
		return Bodyweight
	default:
		return Lbs
	}
}

// IsBodyweight reports whether s mentions bodyweight, in any case.
func IsBodyweight(s string) bool {
	return strings.Contains(strings.ToLower(s), "bodyweight")
}

func (w Weight) String() string {
	switch w.Unit {
	case None:
		return ""
	case Bodyweight:
		if w.Magnitude > 0 {
			return "bodyweight + " + FormatNumber(w.Magnitude) + " lbs"
		}
		return "bodyweight"
	default:
		return FormatNumber(w.Magnitude) + " " + string(w.Unit)
	}
}

// FormatNumber prints v in its shortest form: 100, 67.5.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Adjust applies the in-workout stepper to s. The result never drops below
// zero and keeps the unit of s. Bodyweight loads become
// "bodyweight + <delta> lbs" on a positive step and plain "bodyweight"
// otherwise.
func Adjust(s string, delta float64) string {
	if s == "" {
		return FormatNumber(delta) + " lbs"
	}
	next := math.Max(0, ParseMagnitude(s)+delta)
	switch UnitOf(s) {
	case Kg:
		return FormatNumber(next) + " kg"
	case Bodyweight:
		if delta > 0 {
			return "bodyweight + " + FormatNumber(delta) + " lbs"
		}
		return "bodyweight"
	default:
		return FormatNumber(next) + " lbs"
	}
}

// Scale multiplies the magnitude of s by factor, rounded to two decimals.
// It reports false, leaving s alone, for empty, bodyweight and zero loads.
func Scale(s string, factor float64) (string, bool) {
	if s == "" || IsBodyweight(s) {
		return s, false
	}
	w := Parse(s)
	if w.Magnitude <= 0 {
		return s, false
	}
	w.Magnitude = math.Round(w.Magnitude*factor*100) / 100
	return w.String(), true
}
