package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy() Policy {
	return Policy{Timeout: 50 * time.Millisecond, Delay: time.Millisecond, MaxRetries: 1}
}

var errFlaky = apperror.New(apperror.KindTransient, "connection reset")

func TestDo_SucceedsFirstTime(t *testing.T) {
	calls := 0
	err := Do(context.Background(), testPolicy(), func(ctx context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesTransientOnce(t *testing.T) {
	calls := 0
	err := Do(context.Background(), testPolicy(), func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return errFlaky
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDo_GivesUpAfterOneRetry(t *testing.T) {
	calls := 0
	err := Do(context.Background(), testPolicy(), func(ctx context.Context) error {
		calls++
		return errFlaky
	})

	require.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, apperror.KindTransient, apperror.KindOf(err))
}

func TestDo_DoesNotRetryDomainErrors(t *testing.T) {
	notFound := apperror.New(apperror.KindNotFound, "leave request not found")
	calls := 0
	err := Do(context.Background(), testPolicy(), func(ctx context.Context) error {
		calls++
		return notFound
	})

	assert.ErrorIs(t, err, notFound)
	assert.Equal(t, 1, calls)
}

func TestDo_AttemptTimeoutIsTransient(t *testing.T) {
	calls := 0
	err := Do(context.Background(), testPolicy(), func(ctx context.Context) error {
		calls++
		<-ctx.Done()
		return ctx.Err()
	})

	require.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, apperror.KindTransient, apperror.KindOf(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDo_NotifiesBeforeRetry(t *testing.T) {
	p := testPolicy()
	notified := 0
	p.OnRetry = func(err error, wait time.Duration) { notified++ }

	calls := 0
	_ = Do(context.Background(), p, func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return errFlaky
		}
		return nil
	})

	assert.Equal(t, 1, notified)
}

func TestValue(t *testing.T) {
	calls := 0
	got, err := Value(context.Background(), testPolicy(), func(ctx context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, errFlaky
		}
		return 7, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 7, got)
}

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(errors.New("syntax error")))
	assert.False(t, IsTransient(context.Canceled))
	assert.True(t, IsTransient(context.DeadlineExceeded))
	assert.True(t, IsTransient(errFlaky))
}
