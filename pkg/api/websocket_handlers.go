package api

import (
	"errors"
	"syscall"
	"time"

	"github.com/gofiber/contrib/websocket"
	customlog "github.com/open-teleop/keyteleop/pkg/log"
)

// jsonConn is the part of a WebSocket connection the status stream needs
type jsonConn interface {
	WriteJSON(v interface{}) error
	ReadMessage() (int, []byte, error)
}

// StatusWebSocketHandler pushes the status report every interval until the
// client goes away. Incoming messages are read and discarded.
func StatusWebSocketHandler(conn *websocket.Conn, source StatusSource, interval time.Duration, logger customlog.Logger) {
	logger.Infof("Status WebSocket connected: %s", conn.RemoteAddr())
	streamStatus(conn, source, interval, logger)
	logger.Infof("Status WebSocket disconnected: %s", conn.RemoteAddr())
}

func streamStatus(conn jsonConn, source StatusSource, interval time.Duration, logger customlog.Logger) {
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				logClose(err, logger)
				return
			}
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := conn.WriteJSON(source.Current()); err != nil {
			if !isClosedConn(err) {
				logger.Warnf("Status WS write error: %v", err)
			}
			return
		}

		select {
		case <-closed:
			return
		case <-ticker.C:
		}
	}
}

func logClose(err error, logger customlog.Logger) {
	if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
		logger.Errorf("Status WS read error: %v", err)
		return
	}
	logger.Debugf("Status WS connection closed: %v", err)
}

func isClosedConn(err error) bool {
	return errors.Is(err, websocket.ErrCloseSent) || errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET)
}
