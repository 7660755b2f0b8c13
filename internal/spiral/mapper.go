// Package spiral detects spiral arms in a polar prime plot and extrapolates them.
package spiral

import (
	"fmt"
	"math"

	"github.com/verte-zerg/primespiral/internal/model"
)

// Scale converts a prime value into a plot radius.
const Scale = 0.01

const fullTurnDegrees = 360.0

// ValidateAngleDelta rejects non-positive and non-finite angle deltas.
func ValidateAngleDelta(angleDelta float64) error {
	if math.IsNaN(angleDelta) || math.IsInf(angleDelta, 0) || angleDelta <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidAngleDelta, angleDelta)
	}
	return nil
}

// DegreesToRadians converts an angle delta in degrees to radians.
func DegreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// MapPositions places each prime at index i on angle i*angleDelta (degrees)
// and radius Scale*prime. Angles accumulate without wrapping.
func MapPositions(primes []int, angleDelta float64) ([]model.PrimePosition, error) {
	if err := ValidateAngleDelta(angleDelta); err != nil {
		return nil, err
	}
	deltaRad := DegreesToRadians(angleDelta)
	positions := make([]model.PrimePosition, len(primes))
	for i, p := range primes {
		positions[i] = positionAt(i, float64(p), deltaRad)
		positions[i].Prime = p
	}
	return positions, nil
}

func positionAt(index int, value, deltaRad float64) model.PrimePosition {
	angle := float64(index) * deltaRad
	radius := Scale * value
	return model.PrimePosition{
		Index:  index,
		Angle:  angle,
		Radius: radius,
		X:      radius * math.Cos(angle),
		Y:      radius * math.Sin(angle),
	}
}

// StepsPerRotation returns round(360/angleDelta), never less than 1.
// In normalize mode the delta is first reduced modulo 360; a whole number of
// turns maps to a single step.
func StepsPerRotation(angleDelta float64, mode model.AngleMode) (int, error) {
	if err := ValidateAngleDelta(angleDelta); err != nil {
		return 0, err
	}
	delta := angleDelta
	switch mode {
	case model.AngleModeRaw, "":
	case model.AngleModeNormalize:
		delta = math.Mod(angleDelta, fullTurnDegrees)
		if delta == 0 {
			return 1, nil
		}
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAngleMode, mode)
	}
	steps := int(math.Round(fullTurnDegrees / delta))
	if steps < 1 {
		steps = 1
	}
	return steps, nil
}
