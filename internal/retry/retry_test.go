package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSleeper struct {
	delays []time.Duration
}

func (r *recordingSleeper) sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

func TestDo_PermanentFailure(t *testing.T) {
	errBoom := errors.New("boom")

	for _, n := range []int{1, 2, 3, 5} {
		sleeper := &recordingSleeper{}
		calls := 0
		policy := Policy{MaxAttempts: n, BaseDelay: 100 * time.Millisecond, Sleep: sleeper.sleep}

		_, err := Do(context.Background(), policy, func(context.Context) (string, error) {
			calls++
			return "", errBoom
		})

		require.Error(t, err)
		assert.Same(t, errBoom, err, "final error must be returned unchanged")
		assert.Equal(t, n, calls)
		require.Len(t, sleeper.delays, n-1)
		for i, d := range sleeper.delays {
			// delay before attempt k (1-indexed, k>=2) is base * 2^(k-2)
			assert.Equal(t, 100*time.Millisecond*time.Duration(1<<i), d)
		}
	}
}

func TestDo_SucceedsAfterRetries(t *testing.T) {
	sleeper := &recordingSleeper{}
	calls := 0

	result, err := Do(context.Background(), Policy{Sleep: sleeper.sleep}, func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sleeper.delays)
}

func TestDo_FirstAttemptSuccessDoesNotSleep(t *testing.T) {
	sleeper := &recordingSleeper{}

	_, err := Do(context.Background(), Policy{Sleep: sleeper.sleep}, func(context.Context) (bool, error) {
		return true, nil
	})

	require.NoError(t, err)
	assert.Empty(t, sleeper.delays)
}

func TestDo_CancelledWhileWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	_, err := Do(ctx, Policy{MaxAttempts: 3, BaseDelay: time.Hour}, func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, errors.New("fail")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestPolicy_Delay(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, time.Second, p.Delay(0))
	assert.Equal(t, 2*time.Second, p.Delay(1))
	assert.Equal(t, 4*time.Second, p.Delay(2))
}
