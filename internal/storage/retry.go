package storage

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/logger"
)

// Compile-time interface check.
var _ domain.SlotStore = (*RetryingStore)(nil)

const defaultRetryMaxElapsed = 10 * time.Second

// RetryingStore retries transient failures of a remote slot store with
// exponential backoff. ErrNotFound is final and returned immediately.
type RetryingStore struct {
	inner      domain.SlotStore
	maxElapsed time.Duration
	newBackOff func() backoff.BackOff
	log        *logger.Logger
}

// NewRetryingStore wraps inner. maxElapsed <= 0 uses the default budget.
func NewRetryingStore(inner domain.SlotStore, maxElapsed time.Duration, log *logger.Logger) *RetryingStore {
	if maxElapsed <= 0 {
		maxElapsed = defaultRetryMaxElapsed
	}
	s := &RetryingStore{inner: inner, maxElapsed: maxElapsed, log: log}
	s.newBackOff = s.exponential
	return s
}

// BackOff implementations are stateful; always hand out a fresh one.
func (s *RetryingStore) exponential() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = s.maxElapsed
	return bo
}

// Get reads through the wrapped store.
func (s *RetryingStore) Get(ctx context.Context, key string) ([]byte, error) {
	var out []byte
	err := s.retry(ctx, "get "+key, func() error {
		p, err := s.inner.Get(ctx, key)
		if err != nil {
			return err
		}
		out = p
		return nil
	})
	return out, err
}

// Set writes through the wrapped store.
func (s *RetryingStore) Set(ctx context.Context, key string, payload []byte) error {
	return s.retry(ctx, "set "+key, func() error {
		return s.inner.Set(ctx, key, payload)
	})
}

// Close closes the wrapped store.
func (s *RetryingStore) Close() error { return s.inner.Close() }

func (s *RetryingStore) retry(ctx context.Context, op string, fn func() error) error {
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		err := fn()
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrNotFound) || ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		s.log.Debug("%s failed (attempt %d): %v", op, attempt, err)
		return err
	}, backoff.WithContext(s.newBackOff(), ctx))
	if err != nil && attempt > 1 {
		s.log.Warn("%s gave up after %d attempts: %v", op, attempt, err)
	}
	return err
}
