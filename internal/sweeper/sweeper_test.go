package sweeper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInterrupter struct {
	n      int
	err    error
	maxAge time.Duration
	calls  int
}

func (f *fakeInterrupter) InterruptStaleSessions(_ context.Context, maxAge time.Duration) (int, error) {
	f.calls++
	f.maxAge = maxAge
	return f.n, f.err
}

func TestNewRejectsBadSchedule(t *testing.T) {
	_, err := New("every five minutes", time.Hour, &fakeInterrupter{})
	require.Error(t, err)

	_, err = New("0 0 0 * * *", time.Hour, &fakeInterrupter{})
	require.Error(t, err, "seconds field is not accepted")
}

func TestNext(t *testing.T) {
	s, err := New(" */15 * * * * ", time.Hour, &fakeInterrupter{})
	require.NoError(t, err)

	at := time.Date(2025, 3, 4, 10, 7, 30, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 4, 10, 15, 0, 0, time.UTC), s.Next(at))
}

func TestRunOnce(t *testing.T) {
	target := &fakeInterrupter{n: 3}
	s, err := New("*/15 * * * *", 2*time.Hour, target)
	require.NoError(t, err)

	n, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 2*time.Hour, target.maxAge)

	target.err = errors.New("mongo down")
	_, err = s.RunOnce(context.Background())
	require.Error(t, err)
	assert.Equal(t, 2, target.calls)
}

func TestStartStopsOnCancel(t *testing.T) {
	target := &fakeInterrupter{}
	s, err := New("0 0 1 1 *", time.Hour, target)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, target.calls)
}
