package metrics

import (
	"strings"
	"testing"
)

func TestRenderIncludesVideoMetrics(t *testing.T) {
	IncVideoSubmitted()
	IncVideoCompleted()
	AddCreditsRefunded(3)
	AddCreditsRefunded(-1)
	ObserveGenerationDurationMs(45000)

	out := Render()
	for _, want := range []string{
		"# TYPE video_submitted_total counter",
		"# TYPE video_generation_duration_ms histogram",
		`video_generation_duration_ms_bucket{le="60000"}`,
		`video_generation_duration_ms_bucket{le="+Inf"}`,
		"credits_refunded_total",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("render missing %q:\n%s", want, out)
		}
	}
}

func TestHistogramCumulativeBuckets(t *testing.T) {
	h := newHistogram([]float64{1, 5, 10})
	h.Observe(0.5)
	h.Observe(3)
	h.Observe(20)

	snap := h.Snapshot()
	if snap.count != 3 {
		t.Fatalf("expected count 3, got %d", snap.count)
	}
	if snap.counts[0] != 1 || snap.counts[1] != 2 || snap.counts[2] != 2 {
		t.Fatalf("unexpected bucket counts %v", snap.counts)
	}
}

func TestFormatFloat(t *testing.T) {
	if got := formatFloat(60000); got != "60000" {
		t.Fatalf("formatFloat(60000) = %q", got)
	}
	if got := formatFloat(0.25); got != "0.25" {
		t.Fatalf("formatFloat(0.25) = %q", got)
	}
}
