// Package spiral detects spiral arms in a polar prime plot and extrapolates them.
package spiral

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/primespiral/internal/model"
)

const maxSweepPoints = 10000

// SweepDeltas lists angle deltas from..to inclusive in increments of step.
func SweepDeltas(from, to, step float64) ([]float64, error) {
	if err := ValidateAngleDelta(from); err != nil {
		return nil, fmt.Errorf("sweep start: %w", err)
	}
	if math.IsNaN(step) || math.IsInf(step, 0) || step <= 0 {
		return nil, fmt.Errorf("sweep step must be > 0")
	}
	if math.IsNaN(to) || math.IsInf(to, 0) || to < from {
		return nil, fmt.Errorf("sweep end must be >= start")
	}
	count := int(math.Floor((to-from)/step+1e-9)) + 1
	if count > maxSweepPoints {
		return nil, fmt.Errorf("sweep has %d points (max %d)", count, maxSweepPoints)
	}
	deltas := make([]float64, count)
	for i := range deltas {
		deltas[i] = from + float64(i)*step
	}
	return deltas, nil
}

// Sweep analyzes primes once per angle delta, running up to limit analyses
// at a time. Points are returned in the order of deltas. The first failure
// cancels the remaining analyses.
func (a *Analyzer) Sweep(ctx context.Context, primes []int, base model.Params, deltas []float64, limit int) ([]model.SweepPoint, error) {
	points := make([]model.SweepPoint, len(deltas))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, delta := range deltas {
		i, delta := i, delta
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			params := base
			params.AngleDelta = delta
			res, err := a.Analyze(primes, params)
			if err != nil {
				return fmt.Errorf("angle %g: %w", delta, err)
			}
			points[i] = model.SweepPoint{
				AngleDelta:       delta,
				StepsPerRotation: res.StepsPerRotation,
				ArmCount:         len(res.Arms),
				Report:           res.Report,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	a.logger.Debug("sweep finished", zap.Int("points", len(points)))
	return points, nil
}
