package teleop

import (
	"context"
	"fmt"
	"time"

	"github.com/open-teleop/keyteleop/pkg/config"
	customlog "github.com/open-teleop/keyteleop/pkg/log"
	"github.com/open-teleop/keyteleop/pkg/msgs"
)

// Bus publishes the two outbound command streams
type Bus interface {
	PublishTwist(twist msgs.TwistMsg) error
	PublishPanTilt(cmd msgs.PanTiltCmdDeg) error
}

// Reporter is told about the state after every processed key
type Reporter interface {
	Report(state State)
}

// Loop owns the command state. Keys and publish ticks are handled on the
// goroutine running Run, so the state needs no lock.
type Loop struct {
	cfg      *config.Config
	bus      Bus
	reporter Reporter
	logger   customlog.Logger
	state    State
	stopped  bool

	// ticks replaces the publish ticker when set
	ticks <-chan time.Time
}

// NewLoop creates a loop starting from NewState(cfg)
func NewLoop(cfg *config.Config, bus Bus, reporter Reporter, logger customlog.Logger) *Loop {
	return &Loop{
		cfg:      cfg,
		bus:      bus,
		reporter: reporter,
		logger:   logger,
		state:    NewState(cfg),
	}
}

// State returns the current command state. Only call it from the goroutine
// running Run, or after Run returned.
func (l *Loop) State() State {
	return l.state
}

// Run applies keys as they arrive and publishes both commands on every tick,
// whether or not anything changed. It returns nil on a quit key or when keys
// is closed, ctx.Err() when ctx ends, and the error of a failed publish.
func (l *Loop) Run(ctx context.Context, keys <-chan string) error {
	ticks := l.ticks
	if ticks == nil {
		ticker := time.NewTicker(l.cfg.PublishPeriod())
		defer ticker.Stop()
		ticks = ticker.C
	}

	l.logger.Infof("Publish loop started (%.1f Hz)", l.cfg.Teleop.PublishRateHz)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case key, ok := <-keys:
			if !ok {
				return nil
			}
			if l.handleKey(key) {
				l.logger.Infof("Quit requested")
				return nil
			}

		case <-ticks:
			if err := l.publish(); err != nil {
				return err
			}
		}
	}
}

func (l *Loop) handleKey(key string) bool {
	next, quit := Apply(l.state, key, l.cfg.PTU)
	l.logger.Debugf("Key %q (%s) -> intent=%v speed=%.2f turn=%.2f pan=%.1f tilt=%.1f",
		key, Classify(key), next.Intent, next.Speed, next.Turn, next.Pan, next.Tilt)
	l.state = next

	if l.reporter != nil {
		l.reporter.Report(next)
	}
	return quit
}

func (l *Loop) publish() error {
	if err := l.bus.PublishTwist(l.state.Twist()); err != nil {
		return fmt.Errorf("publish twist: %w", err)
	}
	if err := l.bus.PublishPanTilt(l.state.PanTilt(l.cfg.PTU.CommandSpeed)); err != nil {
		return fmt.Errorf("publish pan-tilt: %w", err)
	}
	return nil
}

// Stop publishes a single zero velocity command. Later calls do nothing.
func (l *Loop) Stop() error {
	if l.stopped {
		return nil
	}
	l.stopped = true
	l.state.Intent = Intent{}

	l.logger.Infof("Stopping robot")
	if err := l.bus.PublishTwist(msgs.TwistMsg{}); err != nil {
		return fmt.Errorf("publish stop: %w", err)
	}
	return nil
}
