package domain

import "fmt"

// VarianceMode selects the variance formula.
type VarianceMode string

const (
	// VarianceAbsolute computes a - b.
	VarianceAbsolute VarianceMode = "absolute"
	// VarianceRelativePercent computes (a - b) / a * 100.
	VarianceRelativePercent VarianceMode = "relative-percent"
)

// Valid reports whether m is a known mode.
func (m VarianceMode) Valid() bool {
	return m == VarianceAbsolute || m == VarianceRelativePercent
}

// ParseVarianceMode accepts the names used in configuration and flags.
func ParseVarianceMode(s string) (VarianceMode, error) {
	m := VarianceMode(s)
	if !m.Valid() {
		return "", fmt.Errorf("unknown variance mode %q", s)
	}
	return m, nil
}

// VariancePair names the two operand columns of one derived column.
// Numerator is the reference run (e.g. the latest).
type VariancePair struct {
	Numerator   string `json:"numerator" yaml:"numerator" validate:"required"`
	Denominator string `json:"denominator" yaml:"denominator" validate:"required"`
	Label       string `json:"label" yaml:"label" validate:"required"`
}

// VsLabel renders the conventional "A Vs B" label.
func VsLabel(a, b string) string {
	return a + " Vs " + b
}
