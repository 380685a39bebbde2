package services

import (
	"context"
	"time"

	"github.com/braddown/kudosity-platform-sub004/pkg/smsgateway"
)

// SendResult is the settled outcome of one recipient send, including the
// final attempt count used for average-retries reporting.
type SendResult struct {
	MSISDN     string
	Success    bool
	MessageID  string
	MessageRef string
	Segments   int
	Cost       float64
	Attempts   int
	Error      string
}

// retrier wraps a single outbound send with a bounded retry ladder. Only
// throttling and transient server conditions are retried; everything else is
// terminal. Backoff is linear (delay x attempt number), not exponential.
type retrier struct {
	gateway     smsgateway.Gateway
	maxAttempts int
	backoff     time.Duration

	sleep func(time.Duration)
}

func newRetrier(gateway smsgateway.Gateway, maxAttempts int, backoff time.Duration) *retrier {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &retrier{
		gateway:     gateway,
		maxAttempts: maxAttempts,
		backoff:     backoff,
		sleep:       time.Sleep,
	}
}

// Send attempts one send, retrying retryable gateway failures until the
// attempt ceiling. The result always carries the final attempt count.
func (r *retrier) Send(ctx context.Context, msisdn, body, sender string) SendResult {
	var lastErr error

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		receipt, err := r.gateway.Send(ctx, msisdn, body, sender)
		if err == nil {
			return SendResult{
				MSISDN:     msisdn,
				Success:    true,
				MessageID:  receipt.MessageID,
				MessageRef: receipt.MessageRef,
				Segments:   receipt.Segments,
				Cost:       receipt.Cost,
				Attempts:   attempt,
			}
		}

		if !smsgateway.IsRetryable(err) {
			return SendResult{MSISDN: msisdn, Attempts: attempt, Error: err.Error()}
		}

		lastErr = err
		if attempt < r.maxAttempts {
			r.sleep(r.backoff * time.Duration(attempt))
		}
	}

	return SendResult{MSISDN: msisdn, Attempts: r.maxAttempts, Error: lastErr.Error()}
}
