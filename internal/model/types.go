// Package model defines shared data structures.
package model

import "time"

// Policy names an arm-grouping strategy.
type Policy string

// Supported grouping policies.
const (
	PolicyResidue Policy = "residue"
	PolicyAngular Policy = "angular"
)

// AngleMode controls how angle deltas above a full turn are treated when
// computing steps per rotation.
type AngleMode string

// Supported angle modes.
const (
	AngleModeRaw       AngleMode = "raw"
	AngleModeNormalize AngleMode = "normalize"
)

// Params selects one analysis of a prime sequence.
type Params struct {
	AngleDelta      float64   `json:"angle_delta" yaml:"angle_delta"`
	PredictionCount int       `json:"prediction_count" yaml:"prediction_count"`
	Policy          Policy    `json:"policy" yaml:"policy"`
	AngleMode       AngleMode `json:"angle_mode" yaml:"angle_mode"`
	// MinClusterSize applies to angular clustering only; 0 means the default.
	MinClusterSize int `json:"min_cluster_size,omitempty" yaml:"min_cluster_size,omitempty"`
}

// PrimePosition is a prime placed on the polar plane.
type PrimePosition struct {
	Index  int     `json:"index" yaml:"index"`
	Prime  int     `json:"prime" yaml:"prime"`
	Angle  float64 `json:"angle" yaml:"angle"`
	Radius float64 `json:"radius" yaml:"radius"`
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
}

// PredictedPoint is one extrapolated point along an arm.
type PredictedPoint struct {
	StepAhead           int     `json:"step_ahead" yaml:"step_ahead"`
	PredictedIndex      int     `json:"predicted_index" yaml:"predicted_index"`
	X                   float64 `json:"x" yaml:"x"`
	Y                   float64 `json:"y" yaml:"y"`
	PredictedPrimeValue float64 `json:"predicted_prime_value" yaml:"predicted_prime_value"`
}

// SpiralArm groups positions recurring in one angular sector.
type SpiralArm struct {
	ArmIndex    int              `json:"arm_index" yaml:"arm_index"`
	Points      []PrimePosition  `json:"points" yaml:"points"`
	Predictions []PredictedPoint `json:"predictions" yaml:"predictions"`
}

// AccuracyReport summarizes predictions against ground truth.
type AccuracyReport struct {
	TotalPredictions   int     `json:"total_predictions" yaml:"total_predictions"`
	CorrectPredictions int     `json:"correct_predictions" yaml:"correct_predictions"`
	AverageDistance    float64 `json:"average_distance" yaml:"average_distance"`
	AccuracyPercent    float64 `json:"accuracy_percent" yaml:"accuracy_percent"`
}

// RunRecord is a stored analysis run.
type RunRecord struct {
	ID               string
	CreatedAt        time.Time
	Params           Params
	PrimeCount       int
	ArmCount         int
	StepsPerRotation int
	Report           AccuracyReport
}

// HistoryFilter defines filters for listing stored runs.
type HistoryFilter struct {
	Policy string
	Last   int
}

// SweepPoint is the outcome of one angle delta in a sweep.
type SweepPoint struct {
	AngleDelta       float64        `json:"angle_delta" yaml:"angle_delta"`
	StepsPerRotation int            `json:"steps_per_rotation" yaml:"steps_per_rotation"`
	ArmCount         int            `json:"arm_count" yaml:"arm_count"`
	Report           AccuracyReport `json:"report" yaml:"report"`
}
