package retry

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/apperror"
	"github.com/jackc/pgx/v5/pgconn"
)

// Policy bounds every call to an external collaborator: each attempt gets
// its own timeout and transient failures are retried MaxRetries times.
type Policy struct {
	Timeout    time.Duration
	Delay      time.Duration
	MaxRetries uint64
	OnRetry    func(err error, wait time.Duration)
}

func DefaultPolicy() Policy {
	return Policy{
		Timeout:    5 * time.Second,
		Delay:      100 * time.Millisecond,
		MaxRetries: 1,
	}
}

// Do runs op under p. Failures that are still transient after the last
// attempt are returned with apperror.KindTransient; anything else is
// returned unchanged after the first attempt.
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	var b backoff.BackOff = backoff.NewConstantBackOff(p.Delay)
	b = backoff.WithMaxRetries(b, p.MaxRetries)
	b = backoff.WithContext(b, ctx)

	attempt := func() error {
		attemptCtx := ctx
		if p.Timeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, p.Timeout)
			defer cancel()
		}

		err := op(attemptCtx)
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	err := backoff.RetryNotify(attempt, b, p.OnRetry)
	if err == nil {
		return nil
	}
	if IsTransient(err) && !apperror.Is(err, apperror.KindTransient) {
		return apperror.Wrap(apperror.KindTransient, err, "collaborator unavailable")
	}
	return err
}

// Value is Do for operations that produce a result.
func Value[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := Do(ctx, p, func(ctx context.Context) error {
		v, err := op(ctx)
		if err != nil {
			return err
		}
		result = v
		return nil
	})
	return result, err
}

// IsTransient reports whether err is worth one more attempt.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return appErr.Kind == apperror.KindTransient
	}

	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
