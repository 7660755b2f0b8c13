// Package report renders analysis results as terminal text.
package report

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/primespiral/internal/model"
	"github.com/verte-zerg/primespiral/internal/spiral"
)

// SummaryRows returns the label/value pairs describing a result.
func SummaryRows(res spiral.Result) [][]string {
	maxPrime := 0
	if n := len(res.Positions); n > 0 {
		maxPrime = res.Positions[n-1].Prime
	}
	return [][]string{
		{"Primes", fmt.Sprintf("%s (max %s)", humanize.Comma(int64(res.PrimeCount)), humanize.Comma(int64(maxPrime)))},
		{"Angle delta", fmt.Sprintf("%.2f° (%d steps/rotation, %s)", res.Params.AngleDelta, res.StepsPerRotation, res.Params.AngleMode)},
		{"Policy", string(res.Policy)},
		{"Arms", humanize.Comma(int64(len(res.Arms)))},
		{"Predictions", fmt.Sprintf("%s (%s correct)",
			humanize.Comma(int64(res.Report.TotalPredictions)),
			humanize.Comma(int64(res.Report.CorrectPredictions)))},
		{"Accuracy", FormatPercent(res.Report.AccuracyPercent)},
		{"Avg distance", fmt.Sprintf("%.4f", res.Report.AverageDistance)},
	}
}

// FormatPercent formats an accuracy percentage.
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

// RenderSummary prints the accuracy summary for a result.
func RenderSummary(w io.Writer, res spiral.Result) error {
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	if res.PrimeCount < spiral.MinScoredPrimes {
		if _, err := fmt.Fprintf(w, "Fewer than %d primes; nothing to score.\n", spiral.MinScoredPrimes); err != nil {
			return err
		}
	}
	for _, line := range formatTable(nil, SummaryRows(res), nil) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// ArmRows returns one table row per arm.
func ArmRows(arms []model.SpiralArm) [][]string {
	rows := make([][]string, 0, len(arms))
	for _, arm := range arms {
		first, last := arm.Points[0], arm.Points[len(arm.Points)-1]
		next := "-"
		if len(arm.Predictions) > 0 {
			next = fmt.Sprintf("%.1f", arm.Predictions[0].PredictedPrimeValue)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", arm.ArmIndex),
			fmt.Sprintf("%d", len(arm.Points)),
			fmt.Sprintf("%d", first.Prime),
			fmt.Sprintf("%d", last.Prime),
			fmt.Sprintf("%d", last.Index),
			next,
		})
	}
	return rows
}

// ArmHeaders are the column titles for ArmRows.
var ArmHeaders = []string{"Arm", "Points", "First", "Last", "Last index", "Next predicted"}

// RenderArmTable prints one row per arm.
func RenderArmTable(w io.Writer, arms []model.SpiralArm) error {
	if len(arms) == 0 {
		_, err := fmt.Fprintln(w, "No arms found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Arms"); err != nil {
		return err
	}
	rightAlign := map[int]bool{0: true, 1: true, 2: true, 3: true, 4: true, 5: true}
	for _, line := range formatTable(ArmHeaders, ArmRows(arms), rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
