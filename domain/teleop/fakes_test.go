package teleop

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/open-teleop/keyteleop/pkg/config"
	customlog "github.com/open-teleop/keyteleop/pkg/log"
	"github.com/open-teleop/keyteleop/pkg/msgs"
)

func testLogger() customlog.Logger {
	return customlog.NewWriterLogger("error", io.Discard)
}

type fakeBus struct {
	mu         sync.Mutex
	twists     []msgs.TwistMsg
	panTilts   []msgs.PanTiltCmdDeg
	twistErr   error
	panicOnPTU bool
}

func (b *fakeBus) PublishTwist(twist msgs.TwistMsg) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.twistErr != nil {
		return b.twistErr
	}
	b.twists = append(b.twists, twist)
	return nil
}

func (b *fakeBus) PublishPanTilt(cmd msgs.PanTiltCmdDeg) error {
	if b.panicOnPTU {
		panic("driver exploded")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.panTilts = append(b.panTilts, cmd)
	return nil
}

func (b *fakeBus) Twists() []msgs.TwistMsg {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]msgs.TwistMsg(nil), b.twists...)
}

func (b *fakeBus) PanTilts() []msgs.PanTiltCmdDeg {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]msgs.PanTiltCmdDeg(nil), b.panTilts...)
}

type fakeReporter struct {
	states []State
}

func (r *fakeReporter) Report(state State) {
	r.states = append(r.states, state)
}

// chanSource delivers keys pushed on a channel, or "" after timeout
type chanSource struct {
	keys chan string
	err  error
}

func newChanSource() *chanSource {
	return &chanSource{keys: make(chan string, 16)}
}

func (s *chanSource) ReadKey(timeout time.Duration) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	select {
	case key := <-s.keys:
		return key, nil
	case <-time.After(timeout):
		return "", nil
	}
}

var errBusDown = errors.New("bus down")

func fastConfig() *config.Config {
	cfg := config.Default()
	cfg.Teleop.PublishRateHz = 100
	cfg.Teleop.KeyTimeoutMs = 5
	return cfg
}
