package domain

import "math"

// Radiated-energy coefficients for log10(E) = a + b*M, with E in joules.
const (
	DefaultEnergyA = 1.44
	DefaultEnergyB = 5.24
)

// EnergyParams configures the magnitude-to-energy conversion.
type EnergyParams struct {
	A         float64
	B         float64
	OutColumn string
}

// DefaultEnergyParams returns the standard coefficients writing to energy_J.
func DefaultEnergyParams() EnergyParams {
	return EnergyParams{A: DefaultEnergyA, B: DefaultEnergyB, OutColumn: ColEnergyJ}
}

// EnergyJoules computes 10^(a + b*m) joules for magnitude m.
func EnergyJoules(m float64, p EnergyParams) float64 {
	return math.Pow(10, p.A+p.B*m)
}

// ConvertEnergy returns a copy of e with the configured energy column set.
// A nil magnitude stores an explicit null so the column stays visible in
// exports. An empty OutColumn falls back to energy_J.
func ConvertEnergy(e Event, p EnergyParams) Event {
	col := p.OutColumn
	if col == "" {
		col = ColEnergyJ
	}
	if e.Magnitude == nil {
		return e.SetExtra(col, nil)
	}
	return e.SetExtra(col, EnergyJoules(*e.Magnitude, p))
}
