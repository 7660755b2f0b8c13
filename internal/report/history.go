// Package report renders analysis results as terminal text.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/primespiral/internal/model"
)

// RenderHistory prints stored runs and an accuracy trend.
func RenderHistory(w io.Writer, runs []model.RunRecord, window int) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs found.")
		return err
	}
	headers := []string{"When", "Angle", "Policy", "Primes", "Arms", "Predictions", "Accuracy", "Avg dist"}
	rows := make([][]string, 0, len(runs))
	accuracies := make([]float64, len(runs))
	for i, run := range runs {
		accuracies[i] = run.Report.AccuracyPercent
		rows = append(rows, []string{
			run.CreatedAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%.2f", run.Params.AngleDelta),
			string(run.Params.Policy),
			humanize.Comma(int64(run.PrimeCount)),
			fmt.Sprintf("%d", run.ArmCount),
			fmt.Sprintf("%d", run.Report.TotalPredictions),
			FormatPercent(run.Report.AccuracyPercent),
			fmt.Sprintf("%.4f", run.Report.AverageDistance),
		})
	}
	if _, err := fmt.Fprintf(w, "Runs (%d)\n", len(runs)); err != nil {
		return err
	}
	rightAlign := map[int]bool{1: true, 3: true, 4: true, 5: true, 6: true, 7: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	trend := MovingAverage(accuracies, window)
	lo, hi := minMax(trend)
	if _, err := fmt.Fprintf(w, "\nAccuracy trend (window %d): [%s] min=%.2f max=%.2f\n\n", max(window, 1), Sparkline(trend), lo, hi); err != nil {
		return err
	}
	return nil
}

// RankSweep orders sweep points by accuracy, then by smaller average
// distance, then by angle.
func RankSweep(points []model.SweepPoint) []model.SweepPoint {
	out := append([]model.SweepPoint(nil), points...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Report, out[j].Report
		if a.AccuracyPercent != b.AccuracyPercent {
			return a.AccuracyPercent > b.AccuracyPercent
		}
		if a.AverageDistance != b.AverageDistance {
			return a.AverageDistance < b.AverageDistance
		}
		return out[i].AngleDelta < out[j].AngleDelta
	})
	return out
}

// RenderSweep prints the top sweep points. top <= 0 prints all of them.
func RenderSweep(w io.Writer, points []model.SweepPoint, top int) error {
	if len(points) == 0 {
		_, err := fmt.Fprintln(w, "No sweep results.")
		return err
	}
	ranked := RankSweep(points)
	if top > 0 && top < len(ranked) {
		ranked = ranked[:top]
	}
	headers := []string{"Rank", "Angle", "Steps", "Arms", "Predictions", "Accuracy", "Avg dist"}
	rows := make([][]string, 0, len(ranked))
	for i, p := range ranked {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%.2f", p.AngleDelta),
			fmt.Sprintf("%d", p.StepsPerRotation),
			fmt.Sprintf("%d", p.ArmCount),
			fmt.Sprintf("%d", p.Report.TotalPredictions),
			FormatPercent(p.Report.AccuracyPercent),
			fmt.Sprintf("%.4f", p.Report.AverageDistance),
		})
	}
	if _, err := fmt.Fprintf(w, "Sweep (%d angles)\n", len(points)); err != nil {
		return err
	}
	rightAlign := map[int]bool{0: true, 1: true, 2: true, 3: true, 4: true, 5: true, 6: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
