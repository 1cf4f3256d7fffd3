package teleop

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedSource returns its keys in order, then reports timeouts
type scriptedSource struct {
	keys  []string
	err   error
	calls int
}

func (s *scriptedSource) ReadKey(timeout time.Duration) (string, error) {
	s.calls++
	if len(s.keys) > 0 {
		key := s.keys[0]
		s.keys = s.keys[1:]
		return key, nil
	}
	if s.err != nil {
		return "", s.err
	}
	time.Sleep(timeout)
	return "", nil
}

func TestPumpKeysForwardsNonEmptyKeys(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := &scriptedSource{keys: []string{"i", "", KeyUp, "", "q"}}
	out := make(chan string, 8)
	done := make(chan error, 1)
	go func() { done <- PumpKeys(ctx, src, time.Millisecond, out) }()

	var got []string
	for i := 0; i < 3; i++ {
		got = append(got, <-out)
	}
	cancel()

	require.NoError(t, <-done)
	assert.Equal(t, []string{"i", KeyUp, "q"}, got)

	_, open := <-out
	assert.False(t, open, "out is closed on return")
}

func TestPumpKeysReturnsReadError(t *testing.T) {
	readErr := errors.New("device gone")
	src := &scriptedSource{keys: []string{"i"}, err: readErr}
	out := make(chan string, 1)

	err := PumpKeys(context.Background(), src, time.Millisecond, out)

	assert.ErrorIs(t, err, readErr)
	assert.Contains(t, err.Error(), "read key")
	assert.Equal(t, "i", <-out)
}

func TestPumpKeysStopsWhenConsumerGone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := &scriptedSource{keys: []string{"i", "j"}}
	out := make(chan string)

	done := make(chan error, 1)
	go func() { done <- PumpKeys(ctx, src, time.Millisecond, out) }()

	// Nobody reads out; the pump must still honor cancellation
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("pump blocked on send after cancel")
	}
}

func TestPumpKeysAlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := &scriptedSource{}

	require.NoError(t, PumpKeys(ctx, src, time.Millisecond, make(chan string)))
	assert.Zero(t, src.calls)
}
