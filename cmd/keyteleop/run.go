package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/open-teleop/keyteleop/domain/status"
	"github.com/open-teleop/keyteleop/domain/teleop"
	"github.com/open-teleop/keyteleop/pkg/api"
	"github.com/open-teleop/keyteleop/pkg/config"
	customlog "github.com/open-teleop/keyteleop/pkg/log"
	"github.com/open-teleop/keyteleop/pkg/terminal"
	"github.com/open-teleop/keyteleop/pkg/zeromq"
)

// Process exit codes
const (
	exitOK      = 0
	exitFault   = 1
	exitStartup = 2
)

// run executes one operator session and returns the exit code.
//
// Teardown order: the controller publishes the stop command before Run
// returns, then the deferred calls restore the terminal and release the bus.
func run(cli CLI, stdin *os.File, stdout, stderr io.Writer) int {
	cfg, err := config.LoadConfig(cli.Config)
	if err != nil {
		fmt.Fprintf(stderr, "keyteleop: %v\n", err)
		return exitStartup
	}
	if cli.LogLevel != "" {
		cfg.Logging.Level = cli.LogLevel
	}
	if cli.Server {
		cfg.Server.Enabled = true
	}

	baseLogger, err := customlog.NewLogrusLogger(cfg.Logging.Level, cfg.Logging.LogPath)
	if err != nil {
		fmt.Fprintf(stderr, "keyteleop: failed to initialize logger: %v\n", err)
		return exitStartup
	}
	sessionID := uuid.NewString()
	logger := baseLogger.WithField("session", sessionID)
	logger.Infof("Starting keyteleop (namespace %q)", cfg.RobotNamespace)

	service, err := zeromq.NewZeroMQService(cfg, logger)
	if err != nil {
		logger.Errorf("Failed to initialize ZeroMQ service: %v", err)
		return exitStartup
	}
	defer service.Stop()
	if err := service.Start(); err != nil {
		logger.Errorf("Failed to start ZeroMQ service: %v", err)
		return exitStartup
	}

	tty, err := terminal.Open(stdin)
	if err != nil {
		logger.Errorf("Failed to open terminal: %v", err)
		return exitStartup
	}
	defer func() {
		if err := tty.Close(); err != nil {
			logger.Errorf("Failed to restore terminal: %v", err)
		}
	}()

	reporter := status.NewStatusService(sessionID, teleop.NewState(cfg), stdout, service.Registry(), logger)

	if cfg.Server.Enabled {
		server := api.NewServer(cfg, reporter, stderr, logger)
		server.Start()
		defer func() {
			if err := server.Shutdown(); err != nil {
				logger.Warnf("%v", err)
			}
		}()
	}

	publisher := zeromq.NewCommandPublisher(service, cfg, logger)
	controller := teleop.NewController(cfg, publisher, reporter, logger)

	fmt.Fprint(stdout, teleop.Instructions)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := exitOK
	if err := controller.Run(ctx, tty); err != nil {
		logger.Errorf("Session ended with error: %v", err)
		fmt.Fprintf(stdout, "\r\nError: %v", err)
		code = exitFault
	}
	fmt.Fprint(stdout, "\r\nStopping robot and shutting down.\r\n")

	return code
}
