package services

import (
	"time"
)

// batchPacer slices a recipient list into fixed-size batches and enforces a
// minimum wall-clock time per batch, so overall throughput never exceeds the
// configured messages-per-second ceiling. All sends inside a batch are issued
// concurrently, so pacing only applies between batches.
type batchPacer struct {
	batchSize int
	rate      float64 // messages per second

	now   func() time.Time
	sleep func(time.Duration)
}

func newBatchPacer(batchSize int, rate float64) *batchPacer {
	if batchSize < 1 {
		batchSize = 1
	}
	return &batchPacer{
		batchSize: batchSize,
		rate:      rate,
		now:       time.Now,
		sleep:     time.Sleep,
	}
}

// Batches splits recipients into successive slices of at most batchSize.
func (p *batchPacer) Batches(recipients []string) [][]string {
	var batches [][]string
	for i := 0; i < len(recipients); i += p.batchSize {
		end := i + p.batchSize
		if end > len(recipients) {
			end = len(recipients)
		}
		batches = append(batches, recipients[i:end])
	}
	return batches
}

// floor is the minimum wall-clock time one batch may consume.
func (p *batchPacer) floor() time.Duration {
	if p.rate <= 0 {
		return 0
	}
	return time.Duration(float64(p.batchSize) / p.rate * float64(time.Second))
}

// Pace suspends for the unspent remainder of the batch floor. A batch that
// took longer than the floor releases the next one immediately.
func (p *batchPacer) Pace(batchStarted time.Time) {
	if remaining := p.floor() - p.now().Sub(batchStarted); remaining > 0 {
		p.sleep(remaining)
	}
}
