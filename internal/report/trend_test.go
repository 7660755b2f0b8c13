package report

import "testing"

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	same := MovingAverage([]float64{1, 5}, 1)
	if same[0] != 1 || same[1] != 5 {
		t.Fatalf("window 1 should copy values, got %v", same)
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 50, 100}); got != " +@" {
		t.Fatalf("unexpected sparkline %q", got)
	}
	if got := Sparkline([]float64{3, 3}); got != "++" {
		t.Fatalf("unexpected flat sparkline %q", got)
	}
	if got := Sparkline(nil); got != "" {
		t.Fatalf("expected empty sparkline, got %q", got)
	}
}
