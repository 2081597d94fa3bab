package vlm

import (
	"context"

	"golang.org/x/time/rate"
)

// ThrottledAnswerer paces calls to the underlying provider. Shared endpoints
// (a lab Ollama box, a metered API) often need a ceiling on question rate
// even though processing is strictly sequential.
type ThrottledAnswerer struct {
	delegate Answerer
	limiter  *rate.Limiter
}

// NewThrottledAnswerer wraps an answerer with a requests-per-second limit.
// A non-positive rate disables throttling and returns the delegate.
func NewThrottledAnswerer(delegate Answerer, requestsPerSecond float64, burst int) Answerer {
	if requestsPerSecond <= 0 {
		return delegate
	}
	if burst <= 0 {
		burst = 1
	}
	return &ThrottledAnswerer{
		delegate: delegate,
		limiter:  rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Name returns the delegate's name.
func (t *ThrottledAnswerer) Name() string {
	return t.delegate.Name()
}

// IsAvailable defers to the delegate without consuming rate budget.
func (t *ThrottledAnswerer) IsAvailable(ctx context.Context) bool {
	return t.delegate.IsAvailable(ctx)
}

// Answer waits for rate clearance, then delegates.
func (t *ThrottledAnswerer) Answer(ctx context.Context, req AnswerRequest) (string, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return t.delegate.Answer(ctx, req)
}
