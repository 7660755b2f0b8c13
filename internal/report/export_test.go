package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/primespiral/internal/model"
)

func TestExportJSON(t *testing.T) {
	res := analyzeFirst(t, 30, model.Params{AngleDelta: 36, PredictionCount: 2})
	var buf bytes.Buffer
	if err := Export(&buf, res, FormatJSON); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	for _, key := range []string{"params", "steps_per_rotation", "policy", "arms", "report"} {
		if _, ok := decoded[key]; !ok {
			t.Fatalf("expected key %q in %s", key, buf.String())
		}
	}
	if _, ok := decoded["Positions"]; ok {
		t.Fatalf("positions should not be exported")
	}
}

func TestExportYAML(t *testing.T) {
	res := analyzeFirst(t, 30, model.Params{AngleDelta: 36, PredictionCount: 2})
	var buf bytes.Buffer
	if err := Export(&buf, res, "YAML"); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	var decoded struct {
		Policy string `yaml:"policy"`
		Report struct {
			Total int `yaml:"total_predictions"`
		} `yaml:"report"`
	}
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid yaml: %v", err)
	}
	if decoded.Policy != "residue" {
		t.Fatalf("unexpected policy %q", decoded.Policy)
	}
	if decoded.Report.Total != res.Report.TotalPredictions {
		t.Fatalf("expected %d predictions, got %d", res.Report.TotalPredictions, decoded.Report.Total)
	}
}

func TestExportUnknownFormat(t *testing.T) {
	if err := Export(&bytes.Buffer{}, struct{}{}, "xml"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
