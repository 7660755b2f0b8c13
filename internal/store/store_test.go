package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/primespiral/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "primespiral.db"), nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestInsertAndListRuns(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	policies := []model.Policy{model.PolicyResidue, model.PolicyAngular, model.PolicyResidue}
	var ids []string
	for i, policy := range policies {
		run := model.RunRecord{
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			Params: model.Params{
				AngleDelta:      36 + float64(i),
				PredictionCount: 5,
				Policy:          policy,
				AngleMode:       model.AngleModeRaw,
			},
			PrimeCount:       500,
			ArmCount:         10,
			StepsPerRotation: 10,
			Report: model.AccuracyReport{
				TotalPredictions:   50,
				CorrectPredictions: 10 + i,
				AverageDistance:    0.75,
				AccuracyPercent:    float64(20 + 2*i),
			},
		}
		id, err := st.InsertRun(ctx, run)
		if err != nil {
			t.Fatalf("insert run: %v", err)
		}
		if id == "" {
			t.Fatalf("expected generated id")
		}
		ids = append(ids, id)
	}

	runs, err := st.ListRuns(ctx, model.HistoryFilter{})
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	for i, run := range runs {
		if run.ID != ids[i] {
			t.Fatalf("unexpected order: %v", runs)
		}
	}
	if !runs[1].CreatedAt.Equal(base.Add(time.Minute)) {
		t.Fatalf("unexpected timestamp: %v", runs[1].CreatedAt)
	}
	if runs[2].Params.AngleDelta != 38 || runs[2].Report.CorrectPredictions != 12 {
		t.Fatalf("unexpected run contents: %+v", runs[2])
	}

	last, err := st.ListRuns(ctx, model.HistoryFilter{Last: 2})
	if err != nil {
		t.Fatalf("list last runs: %v", err)
	}
	if len(last) != 2 || last[0].ID != ids[1] || last[1].ID != ids[2] {
		t.Fatalf("unexpected last runs: %+v", last)
	}

	angular, err := st.ListRuns(ctx, model.HistoryFilter{Policy: string(model.PolicyAngular)})
	if err != nil {
		t.Fatalf("list angular runs: %v", err)
	}
	if len(angular) != 1 || angular[0].ID != ids[1] {
		t.Fatalf("unexpected angular runs: %+v", angular)
	}
}

func TestInsertRunKeepsExplicitID(t *testing.T) {
	st := openTestStore(t)
	id, err := st.InsertRun(context.Background(), model.RunRecord{ID: "fixed", Params: model.Params{Policy: model.PolicyResidue}})
	if err != nil {
		t.Fatalf("insert run: %v", err)
	}
	if id != "fixed" {
		t.Fatalf("expected fixed id, got %q", id)
	}
	if _, err := st.InsertRun(context.Background(), model.RunRecord{ID: "fixed"}); err == nil {
		t.Fatalf("expected duplicate id to fail")
	}
}

func TestListRunsEmpty(t *testing.T) {
	st := openTestStore(t)
	runs, err := st.ListRuns(context.Background(), model.HistoryFilter{Last: 5})
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("expected no runs, got %d", len(runs))
	}
}
