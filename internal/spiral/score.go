// Package spiral detects spiral arms in a polar prime plot and extrapolates them.
package spiral

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/verte-zerg/primespiral/internal/model"
)

const (
	// MinScoredPrimes is the smallest input scored against ground truth.
	MinScoredPrimes = 10

	minHitDistance    = 0.3
	relativeHitRadius = 0.05
)

// Score compares every prediction in arms with the true prime at its index.
// Inputs below MinScoredPrimes produce a zero report whatever the angle
// delta; so do inputs without arms.
func Score(primes []int, angleDelta float64, arms []model.SpiralArm) (model.AccuracyReport, error) {
	if len(primes) < MinScoredPrimes {
		return model.AccuracyReport{}, nil
	}
	if err := ValidateAngleDelta(angleDelta); err != nil {
		return model.AccuracyReport{}, err
	}
	if len(arms) == 0 {
		return model.AccuracyReport{}, nil
	}
	maxIndex := -1
	for _, arm := range arms {
		for _, p := range arm.Predictions {
			maxIndex = max(maxIndex, p.PredictedIndex)
		}
	}
	if maxIndex < 0 {
		return model.AccuracyReport{}, nil
	}
	truth, err := Extend(primes, max(maxIndex+1, len(primes)))
	if err != nil {
		return model.AccuracyReport{}, err
	}

	deltaRad := DegreesToRadians(angleDelta)
	var report model.AccuracyReport
	var totalDistance float64
	for _, arm := range arms {
		for _, p := range arm.Predictions {
			if p.PredictedIndex < 0 || p.PredictedIndex >= len(truth) {
				continue
			}
			actual := positionAt(p.PredictedIndex, float64(truth[p.PredictedIndex]), deltaRad)
			distance := floats.Distance([]float64{p.X, p.Y}, []float64{actual.X, actual.Y}, 2)
			report.TotalPredictions++
			totalDistance += distance
			if isHit(distance, math.Hypot(p.X, p.Y), actual.Radius) {
				report.CorrectPredictions++
			}
		}
	}
	if report.TotalPredictions > 0 {
		report.AverageDistance = totalDistance / float64(report.TotalPredictions)
		report.AccuracyPercent = 100 * float64(report.CorrectPredictions) / float64(report.TotalPredictions)
	}
	return report, nil
}

// hitThreshold is the larger of a fixed floor and a fraction of the mean radius.
func hitThreshold(predictedRadius, actualRadius float64) float64 {
	meanRadius := (predictedRadius + actualRadius) / 2
	return math.Max(minHitDistance, meanRadius*relativeHitRadius)
}

func isHit(distance, predictedRadius, actualRadius float64) bool {
	return distance < hitThreshold(predictedRadius, actualRadius)
}
