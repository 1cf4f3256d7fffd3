package teleop

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/open-teleop/keyteleop/pkg/config"
	customlog "github.com/open-teleop/keyteleop/pkg/log"
	"golang.org/x/sync/errgroup"
)

// Controller runs the key pump and the publish loop for one operator session
type Controller struct {
	cfg    *config.Config
	loop   *Loop
	logger customlog.Logger
}

// NewController wires a loop publishing on bus and reporting to reporter
func NewController(cfg *config.Config, bus Bus, reporter Reporter, logger customlog.Logger) *Controller {
	return &Controller{
		cfg:    cfg,
		loop:   NewLoop(cfg, bus, reporter, logger),
		logger: logger,
	}
}

// Loop exposes the underlying publish loop
func (c *Controller) Loop() *Loop {
	return c.loop
}

// Run reads keys from src and publishes until a quit key, ctx cancellation
// or a fault. Whatever ends the session, one zero velocity command is
// published before Run returns. Cancellation of ctx is a clean exit.
func (c *Controller) Run(ctx context.Context, src KeySource) (err error) {
	defer func() {
		if stopErr := c.loop.Stop(); stopErr != nil {
			c.logger.Errorf("Failed to stop robot: %v", stopErr)
			if err == nil {
				err = stopErr
			}
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	runCtx, cancel := context.WithCancel(gctx)
	defer cancel()

	keys := make(chan string)

	g.Go(func() (err error) {
		defer recoverFault("key pump", &err)
		return PumpKeys(runCtx, src, c.cfg.KeyTimeout(), keys)
	})
	g.Go(func() (err error) {
		// The pump stops as soon as the loop is done
		defer cancel()
		defer recoverFault("publish loop", &err)
		return c.loop.Run(runCtx, keys)
	})

	err = g.Wait()
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		c.logger.Infof("Shutdown requested")
		return nil
	}
	return err
}

// recoverFault turns a panic in a session goroutine into an error so the
// teardown path still runs
func recoverFault(name string, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%s panicked: %v\n%s", name, r, debug.Stack())
	}
}
