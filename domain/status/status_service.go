package status

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/open-teleop/keyteleop/domain/teleop"
	customlog "github.com/open-teleop/keyteleop/pkg/log"
)

// LineFormat is the operator status line. The leading carriage return
// rewrites the line in place; the trailing spaces erase a longer previous line.
const LineFormat = "\rRobot Speed: %.2f | Robot Turn: %.2f | PTU Pan: %.1f° | PTU Tilt: %.1f°      "

// Snapshot is the latest command state seen by the reporter
type Snapshot struct {
	SessionID string       `json:"session_id"`
	State     teleop.State `json:"state"`
	KeyCount  int64        `json:"key_count"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Report is the snapshot plus bus statistics, as served over HTTP
type Report struct {
	Snapshot
	Topics map[string]map[string]interface{} `json:"topics"`
}

// TopicStats supplies per-topic publish statistics
type TopicStats interface {
	GetTopicStats() map[string]map[string]interface{}
}

// StatusService renders the status line and keeps the latest snapshot
type StatusService struct {
	mu       sync.RWMutex
	snapshot Snapshot
	out      io.Writer
	topics   TopicStats
	logger   customlog.Logger
}

// NewStatusService creates a reporter writing the status line to out.
// out and topics may be nil.
func NewStatusService(sessionID string, initial teleop.State, out io.Writer, topics TopicStats, logger customlog.Logger) *StatusService {
	return &StatusService{
		snapshot: Snapshot{
			SessionID: sessionID,
			State:     initial,
			UpdatedAt: time.Now(),
		},
		out:    out,
		topics: topics,
		logger: logger,
	}
}

// FormatLine renders state as the operator status line
func FormatLine(state teleop.State) string {
	return fmt.Sprintf(LineFormat, state.Speed, state.Turn, state.Pan, state.Tilt)
}

// Report records state and redraws the status line
func (s *StatusService) Report(state teleop.State) {
	s.mu.Lock()
	s.snapshot.State = state
	s.snapshot.KeyCount++
	s.snapshot.UpdatedAt = time.Now()
	s.mu.Unlock()

	if s.out == nil {
		return
	}
	if _, err := io.WriteString(s.out, FormatLine(state)); err != nil {
		s.logger.Warnf("Failed to write status line: %v", err)
	}
}

// GetSnapshot returns the latest snapshot
func (s *StatusService) GetSnapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshot
}

// Current returns the latest snapshot with topic statistics
func (s *StatusService) Current() Report {
	r := Report{Snapshot: s.GetSnapshot()}
	if s.topics != nil {
		r.Topics = s.topics.GetTopicStats()
	} else {
		r.Topics = map[string]map[string]interface{}{}
	}
	return r
}
