package vlm

import (
	"context"
	"path/filepath"

	"github.com/ceipp/crystalverify/internal/cache"
)

// CachedAnswerer memoizes successful answers. Keys include the question
// text, so re-running with the same prompts skips the model entirely while a
// reworded prompt asks fresh. Failures are never cached.
type CachedAnswerer struct {
	delegate Answerer
	cache    cache.Cache
}

// NewCachedAnswerer wraps an answerer with an answer cache.
func NewCachedAnswerer(delegate Answerer, c cache.Cache) *CachedAnswerer {
	return &CachedAnswerer{
		delegate: delegate,
		cache:    c,
	}
}

// Name returns the delegate's name.
func (c *CachedAnswerer) Name() string {
	return c.delegate.Name()
}

// IsAvailable defers to the delegate.
func (c *CachedAnswerer) IsAvailable(ctx context.Context) bool {
	return c.delegate.IsAvailable(ctx)
}

// Answer returns the cached answer when present, otherwise asks the delegate
// and stores the result.
func (c *CachedAnswerer) Answer(ctx context.Context, req AnswerRequest) (string, error) {
	key := cache.AnswerKey(filepath.Base(req.ImagePath), "", req.Question)

	if data, found := c.cache.Get(key); found {
		return string(data), nil
	}

	answer, err := c.delegate.Answer(ctx, req)
	if err != nil {
		return "", err
	}

	_ = c.cache.Set(key, []byte(answer), 0)
	return answer, nil
}
