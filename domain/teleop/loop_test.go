package teleop

import (
	"context"
	"testing"
	"time"

	"github.com/open-teleop/keyteleop/pkg/msgs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loopHarness struct {
	loop     *Loop
	bus      *fakeBus
	reporter *fakeReporter
	keys     chan string
	ticks    chan time.Time
	done     chan error
}

// startLoop runs a loop driven by unbuffered key and tick channels, so every
// send returns only after the previous event was fully handled
func startLoop(t *testing.T, ctx context.Context) *loopHarness {
	t.Helper()
	h := &loopHarness{
		bus:      &fakeBus{},
		reporter: &fakeReporter{},
		keys:     make(chan string),
		ticks:    make(chan time.Time),
		done:     make(chan error, 1),
	}
	h.loop = NewLoop(fastConfig(), h.bus, h.reporter, testLogger())
	h.loop.ticks = h.ticks

	go func() { h.done <- h.loop.Run(ctx, h.keys) }()
	return h
}

func (h *loopHarness) tick() { h.ticks <- time.Now() }

func (h *loopHarness) wait(t *testing.T) error {
	t.Helper()
	select {
	case err := <-h.done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not return")
		return nil
	}
}

func TestLoopRepublishesUnchangedState(t *testing.T) {
	h := startLoop(t, context.Background())

	h.keys <- "i"
	h.tick()
	h.tick()
	h.keys <- KeyInterrupt
	require.NoError(t, h.wait(t))

	twists := h.bus.Twists()
	require.Len(t, twists, 2)
	want := msgs.TwistMsg{Linear: msgs.Vector3{X: 0.5}}
	assert.Equal(t, want, twists[0])
	assert.Equal(t, want, twists[1])

	panTilts := h.bus.PanTilts()
	require.Len(t, panTilts, 2)
	assert.Equal(t, msgs.PanTiltCmdDeg{Speed: 30}, panTilts[0])

	// Interrupt zeroed the intent before the loop returned
	assert.Equal(t, Intent{}, h.loop.State().Intent)
}

func TestLoopPublishesOnEveryTickWithoutKeys(t *testing.T) {
	h := startLoop(t, context.Background())

	for i := 0; i < 3; i++ {
		h.tick()
	}
	close(h.keys)
	require.NoError(t, h.wait(t))

	twists := h.bus.Twists()
	require.Len(t, twists, 3)
	for _, tw := range twists {
		assert.True(t, tw.IsZero())
	}
	assert.Len(t, h.bus.PanTilts(), 3)
}

func TestLoopQuitKeyReturnsWithoutFurtherTicks(t *testing.T) {
	h := startLoop(t, context.Background())

	h.keys <- "q"
	require.NoError(t, h.wait(t))

	assert.Empty(t, h.bus.Twists())
	assert.InDelta(t, 0.55, h.loop.State().Speed, 1e-9)
}

func TestLoopReportsEveryKey(t *testing.T) {
	h := startLoop(t, context.Background())

	h.keys <- KeyLeft
	h.keys <- "k"
	h.keys <- KeyQuit
	require.NoError(t, h.wait(t))

	require.Len(t, h.reporter.states, 3)
	assert.Equal(t, 2.0, h.reporter.states[0].Pan)
	assert.Equal(t, Intent{}, h.reporter.states[1].Intent)
}

func TestLoopPanTiltCommandFollowsState(t *testing.T) {
	h := startLoop(t, context.Background())

	h.keys <- KeyRight
	h.keys <- KeyUp
	h.tick()
	h.keys <- KeyReset
	h.tick()
	close(h.keys)
	require.NoError(t, h.wait(t))

	panTilts := h.bus.PanTilts()
	require.Len(t, panTilts, 2)
	assert.Equal(t, msgs.PanTiltCmdDeg{Speed: 30, Yaw: -2, Pitch: -2}, panTilts[0])
	assert.Equal(t, msgs.PanTiltCmdDeg{Speed: 30}, panTilts[1])
}

func TestLoopPublishErrorEndsRun(t *testing.T) {
	h := startLoop(t, context.Background())
	h.bus.mu.Lock()
	h.bus.twistErr = errBusDown
	h.bus.mu.Unlock()

	h.tick()
	err := h.wait(t)

	require.Error(t, err)
	assert.ErrorIs(t, err, errBusDown)
	assert.Contains(t, err.Error(), "publish twist")
}

func TestLoopContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := startLoop(t, ctx)

	h.keys <- "i"
	cancel()

	assert.ErrorIs(t, h.wait(t), context.Canceled)
}

func TestLoopStopPublishesOnce(t *testing.T) {
	h := startLoop(t, context.Background())
	h.keys <- "i"
	h.tick()
	close(h.keys)
	require.NoError(t, h.wait(t))

	require.NoError(t, h.loop.Stop())
	require.NoError(t, h.loop.Stop())

	twists := h.bus.Twists()
	require.Len(t, twists, 2)
	assert.False(t, twists[0].IsZero())
	assert.True(t, twists[1].IsZero())
	assert.Equal(t, Intent{}, h.loop.State().Intent)
}

func TestLoopStopReportsPublishFailure(t *testing.T) {
	bus := &fakeBus{twistErr: errBusDown}
	loop := NewLoop(fastConfig(), bus, nil, testLogger())

	err := loop.Stop()
	assert.ErrorIs(t, err, errBusDown)
	assert.NoError(t, loop.Stop(), "only the first stop publishes")
}
