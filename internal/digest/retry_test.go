package digest

import (
	"context"
	"errors"
	"io/fs"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryPolicy_TransientThenSuccess(t *testing.T) {
	p := RetryPolicy{MaxRetries: 3, InitialInterval: time.Millisecond}

	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("sharing violation")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryPolicy_PermanentNotRetried(t *testing.T) {
	p := RetryPolicy{MaxRetries: 5, InitialInterval: time.Millisecond}

	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		return fs.ErrNotExist
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Equal(t, 1, calls)

	calls = 0
	err = p.Do(context.Background(), func() error {
		calls++
		return fs.ErrPermission
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryPolicy_Exhausted(t *testing.T) {
	p := RetryPolicy{MaxRetries: 2, InitialInterval: time.Millisecond}

	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		return errors.New("still failing")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls) // initial attempt + 2 retries
}
