// Package spiral detects spiral arms in a polar prime plot and extrapolates them.
package spiral

import (
	"fmt"
	"math"
	"sort"

	"github.com/verte-zerg/primespiral/internal/model"
)

const (
	// ResidueMinPoints is the smallest residue bucket kept as an arm.
	ResidueMinPoints = 2
	// DefaultAngularTolerance is the angular clustering radius in radians.
	DefaultAngularTolerance = 0.1
	// DefaultAngularMinPoints is the smallest angular cluster kept as an arm.
	DefaultAngularMinPoints = 3
)

// Grouper partitions mapped positions into spiral arms.
type Grouper interface {
	Policy() model.Policy
	Group(positions []model.PrimePosition, stepsPerRotation int) []model.SpiralArm
}

// NewGrouper returns the grouping strategy for a policy. minCluster only
// affects angular clustering; values <= 0 select the default.
func NewGrouper(policy model.Policy, minCluster int) (Grouper, error) {
	switch policy {
	case model.PolicyResidue, "":
		return ResidueGrouper{}, nil
	case model.PolicyAngular:
		if minCluster <= 0 {
			minCluster = DefaultAngularMinPoints
		}
		return AngularGrouper{Tolerance: DefaultAngularTolerance, MinPoints: minCluster}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, policy)
	}
}

// ResidueGrouper buckets positions by index mod stepsPerRotation.
type ResidueGrouper struct{}

// Policy implements Grouper.
func (ResidueGrouper) Policy() model.Policy {
	return model.PolicyResidue
}

// Group implements Grouper. Arms keep ascending index order and are sorted
// by arm index.
func (ResidueGrouper) Group(positions []model.PrimePosition, stepsPerRotation int) []model.SpiralArm {
	if stepsPerRotation < 1 || len(positions) == 0 {
		return nil
	}
	buckets := make([][]model.PrimePosition, stepsPerRotation)
	for _, pos := range positions {
		b := pos.Index % stepsPerRotation
		buckets[b] = append(buckets[b], pos)
	}
	var arms []model.SpiralArm
	for armIndex, points := range buckets {
		if len(points) < ResidueMinPoints {
			continue
		}
		arms = append(arms, model.SpiralArm{ArmIndex: armIndex, Points: points})
	}
	return arms
}

// AngularGrouper clusters positions whose reduced polar angles lie within
// Tolerance of a seed, scanning seeds in index order.
type AngularGrouper struct {
	Tolerance float64
	MinPoints int
}

// Policy implements Grouper.
func (AngularGrouper) Policy() model.Policy {
	return model.PolicyAngular
}

// Group implements Grouper. Points within an arm are sorted by radius and
// arms are numbered in seed order. stepsPerRotation is not used.
func (g AngularGrouper) Group(positions []model.PrimePosition, _ int) []model.SpiralArm {
	used := make([]bool, len(positions))
	var arms []model.SpiralArm
	for i, seed := range positions {
		if used[i] {
			continue
		}
		seedAngle := reduceAngle(seed.Angle)
		var group []model.PrimePosition
		for j := i; j < len(positions); j++ {
			if used[j] {
				continue
			}
			if arcDistance(seedAngle, reduceAngle(positions[j].Angle)) <= g.Tolerance {
				group = append(group, positions[j])
				used[j] = true
			}
		}
		if len(group) < g.MinPoints {
			continue
		}
		sort.SliceStable(group, func(a, b int) bool {
			return group[a].Radius < group[b].Radius
		})
		arms = append(arms, model.SpiralArm{ArmIndex: len(arms), Points: group})
	}
	return arms
}

func reduceAngle(angle float64) float64 {
	a := math.Mod(angle, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

func arcDistance(a, b float64) float64 {
	d := math.Abs(a - b)
	if d > math.Pi {
		d = 2*math.Pi - d
	}
	return d
}
