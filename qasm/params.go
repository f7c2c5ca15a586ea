package qasm

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// anglePattern matches one angle literal: numbers, pi expressions, or combinations.
// Examples: "1.5707", "pi", "pi/2", "3*pi/4", "-pi", "-2*pi/3", "3.14e-2"
const anglePattern = `-?(?:\d*\.?\d*\*?pi(?:/\d+\.?\d*)?|\d+\.?\d*(?:[eE][+\-]?\d+)?)`

// piExprRegex matches expressions like: pi, 2pi, 2*pi, pi/2, 3pi/4, 3*pi/4, -pi, -pi/2, -3*pi/4
var piExprRegex = regexp.MustCompile(`^(-?)(\d*\.?\d*)\s*\*?\s*pi(?:\s*/\s*(\d+\.?\d*))?$`)

// ParseAngle parses a single angle expression, supporting plain numbers and pi expressions.
//
// Supported formats:
//   - Plain numbers: "1.5707", "3.14", "-0.5"
//   - Pi constant: "pi"
//   - Pi fractions: "pi/2", "pi/4", "pi/3"
//   - Coefficients: "2pi", "2*pi", "3pi/4", "3*pi/4"
//   - Negative: "-pi", "-pi/2", "-3*pi/4"
func ParseAngle(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if val, err := strconv.ParseFloat(s, 64); err == nil {
		return val, !math.IsInf(val, 0) && !math.IsNaN(val)
	}

	matches := piExprRegex.FindStringSubmatch(strings.ToLower(s))
	if matches == nil {
		return 0, false
	}

	coeff := 1.0
	if matches[2] != "" {
		var err error
		if coeff, err = strconv.ParseFloat(matches[2], 64); err != nil {
			return 0, false
		}
	}
	theta := coeff * math.Pi

	if matches[3] != "" {
		denom, err := strconv.ParseFloat(matches[3], 64)
		if err != nil || denom == 0 {
			return 0, false
		}
		theta /= denom
	}

	if matches[1] == "-" {
		theta = -theta
	}
	return theta, true
}

type piForm struct {
	value   float64
	display string
}

var piForms = []piForm{
	{2 * math.Pi, "2π"},
	{math.Pi, "π"},
	{math.Pi / 2, "π/2"},
	{math.Pi / 3, "π/3"},
	{math.Pi / 4, "π/4"},
	{math.Pi / 6, "π/6"},
	{math.Pi / 8, "π/8"},
	{3 * math.Pi / 4, "3π/4"},
	{3 * math.Pi / 2, "3π/2"},
	{2 * math.Pi / 3, "2π/3"},
}

// PrettyAngle renders an angle for humans, using pi notation for common
// fractions. It is lossy; Serialize never uses it.
func PrettyAngle(theta float64) string {
	if theta == 0 {
		return "0"
	}
	for _, pf := range piForms {
		if math.Abs(theta-pf.value) < 1e-10 {
			return pf.display
		}
		if math.Abs(theta+pf.value) < 1e-10 {
			return "-" + pf.display
		}
	}
	return strconv.FormatFloat(theta, 'g', 4, 64)
}
