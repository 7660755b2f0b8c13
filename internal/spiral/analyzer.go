// Package spiral detects spiral arms in a polar prime plot and extrapolates them.
package spiral

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/verte-zerg/primespiral/internal/model"
)

// Prediction count bounds accepted by Analyze.
const (
	MinPredictionCount = 1
	MaxPredictionCount = 20
)

// Result is the full output of one analysis.
type Result struct {
	Params           model.Params          `json:"params" yaml:"params"`
	StepsPerRotation int                   `json:"steps_per_rotation" yaml:"steps_per_rotation"`
	Policy           model.Policy          `json:"policy" yaml:"policy"`
	PrimeCount       int                   `json:"prime_count" yaml:"prime_count"`
	Positions        []model.PrimePosition `json:"-" yaml:"-"`
	Arms             []model.SpiralArm     `json:"arms" yaml:"arms"`
	Report           model.AccuracyReport  `json:"report" yaml:"report"`
}

// Analyzer runs the arm detection pipeline.
type Analyzer struct {
	logger *zap.Logger
}

// NewAnalyzer returns an Analyzer. A nil logger disables logging.
func NewAnalyzer(logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{logger: logger}
}

// Analyze runs the pipeline with a silent logger.
func Analyze(primes []int, params model.Params) (Result, error) {
	return NewAnalyzer(nil).Analyze(primes, params)
}

// NormalizeParams fills defaults and validates params.
func NormalizeParams(params model.Params) (model.Params, error) {
	if params.Policy == "" {
		params.Policy = model.PolicyResidue
	}
	if params.AngleMode == "" {
		params.AngleMode = model.AngleModeRaw
	}
	if err := ValidateAngleDelta(params.AngleDelta); err != nil {
		return model.Params{}, err
	}
	if params.PredictionCount < MinPredictionCount || params.PredictionCount > MaxPredictionCount {
		return model.Params{}, fmt.Errorf("%w: %d not in [%d, %d]",
			ErrPredictionCountOutOfRange, params.PredictionCount, MinPredictionCount, MaxPredictionCount)
	}
	switch params.Policy {
	case model.PolicyResidue, model.PolicyAngular:
	default:
		return model.Params{}, fmt.Errorf("%w: %q", ErrUnknownPolicy, params.Policy)
	}
	switch params.AngleMode {
	case model.AngleModeRaw, model.AngleModeNormalize:
	default:
		return model.Params{}, fmt.Errorf("%w: %q", ErrUnknownAngleMode, params.AngleMode)
	}
	return params, nil
}

// Analyze maps primes, groups them into arms, predicts each arm and scores
// the predictions. The result is freshly allocated and owned by the caller.
func (a *Analyzer) Analyze(primes []int, params model.Params) (Result, error) {
	params, err := NormalizeParams(params)
	if err != nil {
		return Result{}, err
	}
	positions, err := MapPositions(primes, params.AngleDelta)
	if err != nil {
		return Result{}, err
	}
	steps, err := StepsPerRotation(params.AngleDelta, params.AngleMode)
	if err != nil {
		return Result{}, err
	}
	grouper, err := NewGrouper(params.Policy, params.MinClusterSize)
	if err != nil {
		return Result{}, err
	}

	arms := grouper.Group(positions, steps)
	deltaRad := DegreesToRadians(params.AngleDelta)
	for i := range arms {
		arms[i].Predictions = PredictArm(arms[i].Points, steps, deltaRad, params.PredictionCount)
	}
	report, err := Score(primes, params.AngleDelta, arms)
	if err != nil {
		return Result{}, fmt.Errorf("score predictions: %w", err)
	}

	a.logger.Debug("spiral analyzed",
		zap.Int("primes", len(primes)),
		zap.Float64("angle_delta", params.AngleDelta),
		zap.Int("steps_per_rotation", steps),
		zap.String("policy", string(grouper.Policy())),
		zap.Int("arms", len(arms)),
		zap.Int("predictions", report.TotalPredictions),
		zap.Float64("accuracy", report.AccuracyPercent))

	return Result{
		Params:           params,
		StepsPerRotation: steps,
		Policy:           grouper.Policy(),
		PrimeCount:       len(primes),
		Positions:        positions,
		Arms:             arms,
		Report:           report,
	}, nil
}
