package spiral

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/verte-zerg/primespiral/internal/model"
)

func TestAnalyzeResidue(t *testing.T) {
	primes := mustPrimes(t, 200)
	res, err := NewAnalyzer(zap.NewNop()).Analyze(primes, model.Params{AngleDelta: 36, PredictionCount: 5})
	require.NoError(t, err)

	assert.Equal(t, model.PolicyResidue, res.Policy)
	assert.Equal(t, model.AngleModeRaw, res.Params.AngleMode)
	assert.Equal(t, 10, res.StepsPerRotation)
	assert.Equal(t, 200, res.PrimeCount)
	assert.Len(t, res.Positions, 200)
	require.Len(t, res.Arms, 10)

	total := 0
	for _, arm := range res.Arms {
		require.Len(t, arm.Predictions, 5)
		for i, p := range arm.Predictions {
			assert.Equal(t, i+1, p.StepAhead)
			assert.Equal(t, arm.Points[len(arm.Points)-1].Index+(i+1)*10, p.PredictedIndex)
		}
		total += len(arm.Predictions)
	}
	assert.Equal(t, total, res.Report.TotalPredictions)
	assert.LessOrEqual(t, res.Report.CorrectPredictions, res.Report.TotalPredictions)
	assert.GreaterOrEqual(t, res.Report.AccuracyPercent, 0.0)
	assert.LessOrEqual(t, res.Report.AccuracyPercent, 100.0)
	assert.GreaterOrEqual(t, res.Report.AverageDistance, 0.0)
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	primes := mustPrimes(t, 300)
	for _, policy := range []model.Policy{model.PolicyResidue, model.PolicyAngular} {
		params := model.Params{AngleDelta: 137.5, PredictionCount: 7, Policy: policy}
		first, err := Analyze(primes, params)
		require.NoError(t, err)
		second, err := Analyze(primes, params)
		require.NoError(t, err)
		assert.Equal(t, first, second, "policy %s", policy)
	}
}

func TestAnalyzeAngular(t *testing.T) {
	primes := mustPrimes(t, 40)
	res, err := Analyze(primes, model.Params{AngleDelta: 100, PredictionCount: 2, Policy: model.PolicyAngular})
	require.NoError(t, err)
	assert.Equal(t, model.PolicyAngular, res.Policy)
	require.Len(t, res.Arms, 4)
	for _, arm := range res.Arms {
		assert.Len(t, arm.Points, 3)
		assert.Len(t, arm.Predictions, 2)
	}
}

func TestAnalyzeInsufficientPrimes(t *testing.T) {
	res, err := Analyze([]int{2, 3, 5, 7, 11}, model.Params{AngleDelta: 36, PredictionCount: 3})
	require.NoError(t, err)
	assert.Empty(t, res.Arms)
	assert.Equal(t, model.AccuracyReport{}, res.Report)
}

func TestAnalyzeRejectsInvalidParams(t *testing.T) {
	primes := mustPrimes(t, 50)
	cases := []struct {
		name   string
		params model.Params
		want   error
	}{
		{name: "zero angle", params: model.Params{AngleDelta: 0, PredictionCount: 3}, want: ErrInvalidAngleDelta},
		{name: "zero predictions", params: model.Params{AngleDelta: 10, PredictionCount: 0}, want: ErrPredictionCountOutOfRange},
		{name: "too many predictions", params: model.Params{AngleDelta: 10, PredictionCount: 21}, want: ErrPredictionCountOutOfRange},
		{name: "policy", params: model.Params{AngleDelta: 10, PredictionCount: 3, Policy: "ring"}, want: ErrUnknownPolicy},
		{name: "angle mode", params: model.Params{AngleDelta: 10, PredictionCount: 3, AngleMode: "wrap"}, want: ErrUnknownAngleMode},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Analyze(primes, tc.params)
			assert.ErrorIs(t, err, tc.want)
			assert.Empty(t, res.Arms)
		})
	}
}

func TestAnalyzeNormalizeMode(t *testing.T) {
	primes := mustPrimes(t, 60)
	raw, err := Analyze(primes, model.Params{AngleDelta: 400, PredictionCount: 1})
	require.NoError(t, err)
	norm, err := Analyze(primes, model.Params{AngleDelta: 400, PredictionCount: 1, AngleMode: model.AngleModeNormalize})
	require.NoError(t, err)

	assert.Equal(t, 1, raw.StepsPerRotation)
	assert.Len(t, raw.Arms, 1)
	assert.Equal(t, 9, norm.StepsPerRotation)
	assert.Len(t, norm.Arms, 9)
}
