// Package spiral detects spiral arms in a polar prime plot and extrapolates them.
package spiral

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/verte-zerg/primespiral/internal/model"
)

// predictionWindow is how many trailing points feed the gap trend.
const predictionWindow = 5

// PredictArm extrapolates count points past the end of an arm. It projects
// the prime gap along the arm with a constant second difference taken from
// the last few points. Arms with fewer than two points yield nothing.
func PredictArm(points []model.PrimePosition, stepsPerRotation int, angleDeltaRad float64, count int) []model.PredictedPoint {
	if len(points) < 2 || count < 1 {
		return nil
	}
	window := points[len(points)-min(predictionWindow, len(points)):]
	gaps := make([]float64, len(window)-1)
	for i := 1; i < len(window); i++ {
		gaps[i-1] = float64(window[i].Prime - window[i-1].Prime)
	}
	avgGap := floats.Sum(gaps) / float64(len(gaps))
	acceleration := 0.0
	if len(gaps) >= 2 {
		acceleration = (gaps[len(gaps)-1] - gaps[0]) / float64(len(gaps)-1)
	}

	last := window[len(window)-1]
	currentGap := avgGap
	value := float64(last.Prime)
	out := make([]model.PredictedPoint, 0, count)
	for step := 1; step <= count; step++ {
		currentGap += acceleration
		value += currentGap
		index := last.Index + step*stepsPerRotation
		angle := float64(index) * angleDeltaRad
		radius := Scale * value
		out = append(out, model.PredictedPoint{
			StepAhead:           step,
			PredictedIndex:      index,
			X:                   radius * math.Cos(angle),
			Y:                   radius * math.Sin(angle),
			PredictedPrimeValue: value,
		})
	}
	return out
}
