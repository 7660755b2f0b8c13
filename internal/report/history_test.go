package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/primespiral/internal/model"
)

func TestRenderHistory(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local)
	runs := make([]model.RunRecord, 0, 3)
	for i, acc := range []float64{10, 20, 60} {
		runs = append(runs, model.RunRecord{
			ID:         "run",
			CreatedAt:  base.Add(time.Duration(i) * time.Hour),
			Params:     model.Params{AngleDelta: 36, PredictionCount: 5, Policy: model.PolicyResidue},
			PrimeCount: 12000,
			ArmCount:   10,
			Report:     model.AccuracyReport{TotalPredictions: 50, AccuracyPercent: acc, AverageDistance: 1.5},
		})
	}
	var buf bytes.Buffer
	if err := RenderHistory(&buf, runs, 1); err != nil {
		t.Fatalf("RenderHistory failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Runs (3)", "2026-03-01 14:00", "12,000", "60.00%", "Accuracy trend (window 1): [ :@] min=10.00 max=60.00"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in history:\n%s", want, out)
		}
	}
}

func TestRenderHistoryEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderHistory(&buf, nil, 5); err != nil {
		t.Fatalf("RenderHistory failed: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "No runs found." {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestRankSweep(t *testing.T) {
	points := []model.SweepPoint{
		{AngleDelta: 10, Report: model.AccuracyReport{AccuracyPercent: 20, AverageDistance: 1}},
		{AngleDelta: 20, Report: model.AccuracyReport{AccuracyPercent: 40, AverageDistance: 3}},
		{AngleDelta: 30, Report: model.AccuracyReport{AccuracyPercent: 40, AverageDistance: 2}},
		{AngleDelta: 5, Report: model.AccuracyReport{AccuracyPercent: 20, AverageDistance: 1}},
	}
	ranked := RankSweep(points)
	want := []float64{30, 20, 5, 10}
	for i, p := range ranked {
		if p.AngleDelta != want[i] {
			t.Fatalf("unexpected rank order: %+v", ranked)
		}
	}
	if points[0].AngleDelta != 10 {
		t.Fatalf("RankSweep must not reorder its input")
	}
}

func TestRenderSweepTop(t *testing.T) {
	points := []model.SweepPoint{
		{AngleDelta: 10, StepsPerRotation: 36, ArmCount: 36, Report: model.AccuracyReport{TotalPredictions: 100, AccuracyPercent: 12.5}},
		{AngleDelta: 20, StepsPerRotation: 18, ArmCount: 18, Report: model.AccuracyReport{TotalPredictions: 90, AccuracyPercent: 25}},
	}
	var buf bytes.Buffer
	if err := RenderSweep(&buf, points, 1); err != nil {
		t.Fatalf("RenderSweep failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Sweep (2 angles)") || !strings.Contains(out, "25.00%") {
		t.Fatalf("unexpected sweep output:\n%s", out)
	}
	if strings.Contains(out, "12.50%") {
		t.Fatalf("expected only the top point:\n%s", out)
	}
}
