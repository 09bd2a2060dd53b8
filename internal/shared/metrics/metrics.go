package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	videoSubmittedTotal    atomic.Uint64
	videoSubmitFailedTotal atomic.Uint64
	videoCompletedTotal    atomic.Uint64
	videoFailedTotal       atomic.Uint64
	providerPollTotal      atomic.Uint64
	creditsRefundedTotal   atomic.Uint64
	httpPanicTotal         atomic.Uint64
	rateLimitedTotal       atomic.Uint64

	generationDuration = newHistogram([]float64{10000, 30000, 60000, 120000, 180000, 300000, 600000, 1200000})
)

// IncVideoSubmitted counts jobs accepted by a provider.
func IncVideoSubmitted() {
	videoSubmittedTotal.Add(1)
}

// IncVideoSubmitFailed counts submissions a provider rejected.
func IncVideoSubmitFailed() {
	videoSubmitFailedTotal.Add(1)
}

// IncVideoCompleted counts jobs that reached completed.
func IncVideoCompleted() {
	videoCompletedTotal.Add(1)
}

// IncVideoFailed counts jobs that reached failed after submission.
func IncVideoFailed() {
	videoFailedTotal.Add(1)
}

// IncProviderPoll counts status polls sent to a provider.
func IncProviderPoll() {
	providerPollTotal.Add(1)
}

// AddCreditsRefunded counts credits returned to users.
func AddCreditsRefunded(n int) {
	if n > 0 {
		creditsRefundedTotal.Add(uint64(n))
	}
}

// IncHTTPPanic counts handler panics turned into 500s.
func IncHTTPPanic() {
	httpPanicTotal.Add(1)
}

// IncRateLimited counts requests rejected with 429.
func IncRateLimited() {
	rateLimitedTotal.Add(1)
}

// ObserveGenerationDurationMs records submit-to-terminal time in milliseconds.
func ObserveGenerationDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	generationDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "video_submitted_total", "Total video jobs accepted by a provider", videoSubmittedTotal.Load())
	writeCounter(&buf, "video_submit_failed_total", "Total video submissions rejected by a provider", videoSubmitFailedTotal.Load())
	writeCounter(&buf, "video_completed_total", "Total video jobs completed", videoCompletedTotal.Load())
	writeCounter(&buf, "video_failed_total", "Total video jobs failed", videoFailedTotal.Load())
	writeCounter(&buf, "provider_poll_total", "Total provider status polls", providerPollTotal.Load())
	writeCounter(&buf, "credits_refunded_total", "Total credits refunded", creditsRefundedTotal.Load())
	writeCounter(&buf, "http_panic_total", "Total recovered handler panics", httpPanicTotal.Load())
	writeCounter(&buf, "http_rate_limited_total", "Total requests rejected by the rate limiter", rateLimitedTotal.Load())
	writeHistogram(&buf, "video_generation_duration_ms", "Submit to terminal state in milliseconds", generationDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	// Observe already counts each value into every bucket it fits.
	for i, bound := range snap.buckets {
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), snap.counts[i])
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
