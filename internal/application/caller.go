package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/repostctl/internal/domain"
	"github.com/bnema/repostctl/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Policy bounds one remote operation. Attempts below 1 count as 1; a zero
// Timeout leaves the attempt bounded only by the parent context.
type Policy struct {
	Timeout  time.Duration
	Attempts int
	Backoff  time.Duration
}

type CallerOptions struct {
	Concurrency int64
	RateLimit   float64
	Burst       int
}

func DefaultCallerOptions() CallerOptions {
	return CallerOptions{Concurrency: 2, RateLimit: 2, Burst: 4}
}

// Caller is the process-wide gate for remote calls: it caps how many run at
// once and paces how fast new ones start.
type Caller struct {
	sem     *semaphore.Weighted
	limiter *rate.Limiter
	logger  *zap.Logger
	metrics *metrics.Metrics
	sleep   func(ctx context.Context, d time.Duration) error
}

func NewCaller(opts CallerOptions, logger *zap.Logger, m *metrics.Metrics) *Caller {
	defaults := DefaultCallerOptions()
	if opts.Concurrency < 1 {
		opts.Concurrency = defaults.Concurrency
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaults.RateLimit
	}
	if opts.Burst < 1 {
		opts.Burst = defaults.Burst
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Caller{
		sem:     semaphore.NewWeighted(opts.Concurrency),
		limiter: rate.NewLimiter(rate.Limit(opts.RateLimit), opts.Burst),
		logger:  logger,
		metrics: m,
		sleep:   sleepContext,
	}
}

// Call runs fn under policy p. Each attempt gets its own timeout; an attempt
// that overruns is abandoned and reported as domain.ErrRemoteTimeout while
// fn keeps running in the background until it notices its context. Only
// errors in the domain.ErrTransientRemote family are retried.
func Call[T any](ctx context.Context, c *Caller, op string, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	started := time.Now()
	attempts := max(p.Attempts, 1)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			c.metrics.IncRemoteRetry(op)
			if err := c.sleep(ctx, p.Backoff); err != nil {
				lastErr = err
				break
			}
		}

		value, err := runAttempt(ctx, c, p.Timeout, fn)
		if err == nil {
			c.metrics.ObserveRemoteCall(op, metrics.OutcomeOK, started)
			return value, nil
		}
		lastErr = err

		if !IsRetryable(err) || ctx.Err() != nil {
			break
		}
		if attempt < attempts {
			c.logger.Debug("retrying remote call",
				zap.String("op", op),
				zap.Int("attempt", attempt),
				zap.Int("attempts", attempts),
				zap.Error(err),
			)
		}
	}

	outcome := metrics.OutcomeError
	if errors.Is(lastErr, domain.ErrRemoteTimeout) {
		outcome = metrics.OutcomeTimeout
	}
	c.metrics.ObserveRemoteCall(op, outcome, started)

	return zero, fmt.Errorf("%s: %w", op, lastErr)
}

type attemptResult[T any] struct {
	value T
	err   error
}

func runAttempt[T any](ctx context.Context, c *Caller, timeout time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if err := c.limiter.Wait(ctx); err != nil {
		return zero, err
	}
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return zero, err
	}

	var (
		attemptCtx context.Context
		cancel     context.CancelFunc
	)
	if timeout > 0 {
		attemptCtx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		attemptCtx, cancel = context.WithCancel(ctx)
	}

	done := make(chan attemptResult[T], 1)
	go func() {
		defer c.sem.Release(1)
		defer cancel()

		value, err := fn(attemptCtx)
		done <- attemptResult[T]{value: value, err: err}
	}()

	select {
	case result := <-done:
		return settle(ctx, timeout, result)
	case <-attemptCtx.Done():
		select {
		case result := <-done:
			return settle(ctx, timeout, result)
		default:
		}
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		return zero, fmt.Errorf("%w after %s", domain.ErrRemoteTimeout, timeout)
	}
}

func settle[T any](ctx context.Context, timeout time.Duration, result attemptResult[T]) (T, error) {
	var zero T
	switch {
	case result.err == nil:
		return result.value, nil
	case ctx.Err() != nil:
		return zero, ctx.Err()
	case errors.Is(result.err, context.DeadlineExceeded):
		return zero, fmt.Errorf("%w after %s", domain.ErrRemoteTimeout, timeout)
	default:
		return zero, ClassifyRemoteError(result.err)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
