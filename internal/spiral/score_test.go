package spiral

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/primespiral/internal/model"
)

func TestScoreTooFewPrimes(t *testing.T) {
	arms := []model.SpiralArm{{
		ArmIndex:    0,
		Points:      []model.PrimePosition{{Index: 0, Prime: 2}, {Index: 3, Prime: 7}},
		Predictions: []model.PredictedPoint{{StepAhead: 1, PredictedIndex: 6, X: 1, Y: 1, PredictedPrimeValue: 12}},
	}}
	report, err := Score([]int{2, 3, 5, 7, 11, 13, 17, 19, 23}, 120, arms)
	require.NoError(t, err)
	assert.Equal(t, model.AccuracyReport{}, report)
}

func TestScoreTooFewPrimesIgnoresAngleDelta(t *testing.T) {
	report, err := Score([]int{2, 3, 5, 7, 11, 13, 17, 19, 23}, -1, nil)
	require.NoError(t, err)
	assert.Equal(t, model.AccuracyReport{}, report)
}

func TestScoreNoArms(t *testing.T) {
	report, err := Score(firstFifteen, 36, nil)
	require.NoError(t, err)
	assert.Equal(t, model.AccuracyReport{}, report)
}

func TestScoreRejectsInvalidAngleDelta(t *testing.T) {
	_, err := Score(firstFifteen, -1, nil)
	assert.ErrorIs(t, err, ErrInvalidAngleDelta)
}

func TestScoreAgainstGroundTruth(t *testing.T) {
	primes := firstFifteen[:10]
	deltaRad := DegreesToRadians(36)

	// Index 10 holds 31 in the extended sequence.
	exact := positionAt(10, 31, deltaRad)
	miss := positionAt(20, 31, deltaRad)
	arms := []model.SpiralArm{{
		ArmIndex: 0,
		Points:   []model.PrimePosition{{Index: 0, Prime: 2}},
		Predictions: []model.PredictedPoint{
			{StepAhead: 1, PredictedIndex: 10, X: exact.X, Y: exact.Y, PredictedPrimeValue: 31},
			{StepAhead: 2, PredictedIndex: 10, X: exact.X + 1, Y: exact.Y, PredictedPrimeValue: 31},
		},
	}, {
		ArmIndex: 1,
		Points:   []model.PrimePosition{{Index: 1, Prime: 3}},
		Predictions: []model.PredictedPoint{
			{StepAhead: 1, PredictedIndex: 20, X: miss.X, Y: miss.Y, PredictedPrimeValue: 31},
		},
	}}

	report, err := Score(primes, 36, arms)
	require.NoError(t, err)

	// Index 20 holds 73, so the second arm is off by 0.42 along the ray.
	truth20 := positionAt(20, 73, deltaRad)
	missDistance := math.Hypot(miss.X-truth20.X, miss.Y-truth20.Y)
	assert.Equal(t, 3, report.TotalPredictions)
	assert.Equal(t, 1, report.CorrectPredictions)
	assert.InDelta(t, (0+1+missDistance)/3, report.AverageDistance, 1e-9)
	assert.InDelta(t, 100.0/3, report.AccuracyPercent, 1e-9)
}

func TestHitThresholdBoundary(t *testing.T) {
	threshold := hitThreshold(10, 10)
	assert.InDelta(t, 0.5, threshold, 1e-12)
	assert.False(t, isHit(threshold, 10, 10))
	assert.True(t, isHit(math.Nextafter(threshold, 0), 10, 10))

	floor := hitThreshold(1, 1)
	assert.Equal(t, 0.3, floor)
	assert.False(t, isHit(0.3, 1, 1))
	assert.True(t, isHit(0.29, 1, 1))
}

func TestScoreCountsBoundaryAsMiss(t *testing.T) {
	primes := firstFifteen[:10]
	actual := positionAt(0, 2, DegreesToRadians(36))
	require.Equal(t, 0.02, actual.Radius)

	// Predicted radius 0.32 and actual 0.02 keep the threshold at its 0.3 floor.
	arms := []model.SpiralArm{{
		Predictions: []model.PredictedPoint{{StepAhead: 1, PredictedIndex: 0, X: actual.X + 0.3, Y: 0}},
	}}
	report, err := Score(primes, 36, arms)
	require.NoError(t, err)
	assert.Equal(t, 1, report.TotalPredictions)
	assert.Equal(t, 0, report.CorrectPredictions)
	assert.Equal(t, 0.0, report.AccuracyPercent)
}
