package metrics

import (
	"sync/atomic"
	"time"
)

type Collector struct {
	totalRequests        uint64
	errorRequests        uint64
	rateLimited          uint64
	totalDurationMs      uint64
	loginFailures        uint64
	assignmentsGenerated uint64
	answersSaved         uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	if c == nil {
		return
	}
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

func (c *Collector) LoginFailed() {
	if c != nil {
		atomic.AddUint64(&c.loginFailures, 1)
	}
}

// AssignmentsGenerated counts rows actually inserted, not planned pairs.
func (c *Collector) AssignmentsGenerated(n int) {
	if c != nil && n > 0 {
		atomic.AddUint64(&c.assignmentsGenerated, uint64(n))
	}
}

func (c *Collector) AnswersSaved(n int) {
	if c != nil && n > 0 {
		atomic.AddUint64(&c.answersSaved, uint64(n))
	}
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":             total,
		"errorsTotal":               atomic.LoadUint64(&c.errorRequests),
		"rateLimitedTotal":          atomic.LoadUint64(&c.rateLimited),
		"avgDurationMs":             avg,
		"totalDurationMs":           totalMs,
		"loginFailuresTotal":        atomic.LoadUint64(&c.loginFailures),
		"assignmentsGeneratedTotal": atomic.LoadUint64(&c.assignmentsGenerated),
		"answersSavedTotal":         atomic.LoadUint64(&c.answersSaved),
	}
}
