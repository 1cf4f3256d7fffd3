package zeromq

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"syscall"
	"time"

	"github.com/open-teleop/keyteleop/pkg/config"
	message "github.com/open-teleop/keyteleop/pkg/flatbuffers/open_teleop/message"
	customlog "github.com/open-teleop/keyteleop/pkg/log"
	"github.com/open-teleop/keyteleop/pkg/msgs"
	"github.com/pebbe/zmq4"
)

// Common errors
var (
	ErrServiceClosed   = errors.New("zeromq service is closed")
	ErrInvalidMessage  = errors.New("invalid message format")
	ErrUnknownTopic    = errors.New("unknown topic")
	ErrMessageDropped  = errors.New("message dropped")
	ErrDeliveryTimeout = errors.New("delivery timed out")
)

// MessageSender publishes the frames of one outbound topic on its own PUB socket
type MessageSender struct {
	socket   *zmq4.Socket
	topic    string
	address  string
	flags    zmq4.Flag
	reliable bool
	logger   customlog.Logger
	running  bool
	mu       sync.Mutex
}

// newMessageSender creates a PUB socket for topic and applies the binding's delivery mode.
//
// A plain PUB socket discards messages for a subscriber at its high water mark
// and still reports success, so both modes set ZMQ_XPUB_NODROP: a full queue
// then fails the send with EAGAIN. RELIABLE waits up to SendTimeoutMs for room
// and reports ErrDeliveryTimeout. BEST_EFFORT does not wait and drops.
func newMessageSender(ctx *zmq4.Context, topic string, binding config.TopicBinding, zcfg config.ZeroMQConfig, logger customlog.Logger) (*MessageSender, error) {
	socket, err := ctx.NewSocket(zmq4.PUB)
	if err != nil {
		return nil, fmt.Errorf("failed to create PUB socket for '%s': %w", topic, err)
	}

	// Options must be applied before bind to take effect
	if err := socket.SetLinger(time.Duration(zcfg.LingerMs) * time.Millisecond); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to set linger option: %w", err)
	}
	if err := socket.SetSndhwm(binding.Depth); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to set send high water mark: %w", err)
	}
	if err := socket.SetXpubNodrop(true); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to set no-drop option: %w", err)
	}

	reliable := binding.Reliability == config.ReliabilityReliable
	flags := zmq4.DONTWAIT
	if reliable {
		flags = 0
		if err := socket.SetSndtimeo(time.Duration(zcfg.SendTimeoutMs) * time.Millisecond); err != nil {
			socket.Close()
			return nil, fmt.Errorf("failed to set send timeout: %w", err)
		}
	}

	if err := socket.Bind(binding.BindAddress); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to bind to %s: %w", binding.BindAddress, err)
	}

	logger.Infof("MessageSender for '%s' initialized on %s (%s, depth %d)",
		topic, binding.BindAddress, binding.Reliability, binding.Depth)

	return &MessageSender{
		socket:   socket,
		topic:    topic,
		address:  binding.BindAddress,
		flags:    flags,
		reliable: reliable,
		logger:   logger,
		running:  true,
	}, nil
}

// PublishMessage sends the topic frame followed by the message frame
func (s *MessageSender) PublishMessage(message []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return ErrServiceClosed
	}

	if _, err := s.socket.Send(s.topic, s.flags|zmq4.SNDMORE); err != nil {
		if isAgain(err) {
			if s.reliable {
				return ErrDeliveryTimeout
			}
			return ErrMessageDropped
		}
		return fmt.Errorf("failed to send topic: %w", err)
	}

	// Once the first frame is queued the remaining frame is never refused
	if _, err := s.socket.SendBytes(message, s.flags); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// Close cleans up resources
func (s *MessageSender) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = false
	if s.socket != nil {
		s.socket.Close()
		s.socket = nil
	}
}

func isAgain(err error) bool {
	return zmq4.AsErrno(err) == zmq4.Errno(syscall.EAGAIN)
}

// ZeroMQService owns the ZeroMQ context and one sender per outbound topic
type ZeroMQService struct {
	ctx      *zmq4.Context
	senders  map[string]*MessageSender
	registry *TopicRegistry
	logger   customlog.Logger
	running  bool
	mu       sync.RWMutex
}

// NewZeroMQService creates the context and binds a PUB socket for each
// configured topic (twist and pan-tilt).
func NewZeroMQService(cfg *config.Config, logger customlog.Logger) (*ZeroMQService, error) {
	ctx, err := zmq4.NewContext()
	if err != nil {
		return nil, fmt.Errorf("failed to create ZMQ context: %w", err)
	}

	s := &ZeroMQService{
		ctx:      ctx,
		senders:  make(map[string]*MessageSender),
		registry: NewTopicRegistry(logger),
		logger:   logger,
	}

	outbound := []struct {
		topic       string
		binding     config.TopicBinding
		messageType string
	}{
		{cfg.TwistTopic(), cfg.Topics.Twist, msgs.TwistType},
		{cfg.PanTiltTopic(), cfg.Topics.PanTilt, msgs.PanTiltCmdDegType},
	}

	for _, o := range outbound {
		sender, err := newMessageSender(ctx, o.topic, o.binding, cfg.ZeroMQ, logger)
		if err != nil {
			s.closeSenders()
			ctx.Term()
			return nil, err
		}
		s.senders[o.topic] = sender
		s.registry.Register(TopicInfo{
			Topic:       o.topic,
			MessageType: o.messageType,
			Address:     o.binding.BindAddress,
			Reliability: o.binding.Reliability,
			Depth:       o.binding.Depth,
		})
	}

	return s, nil
}

// Start marks the service ready for publishing
func (s *ZeroMQService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if s.ctx == nil {
		return ErrServiceClosed
	}

	s.running = true
	s.logger.Infof("Starting ZeroMQ service (%d topics)", len(s.senders))
	return nil
}

// Stop closes every sender and terminates the context. Term waits up to the
// linger period so messages published during teardown still go out.
func (s *ZeroMQService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx == nil {
		return
	}

	s.logger.Infof("Stopping ZeroMQ service")
	s.running = false
	s.closeSenders()

	if err := s.ctx.Term(); err != nil {
		s.logger.Warnf("Error terminating ZMQ context: %v", err)
	}
	s.ctx = nil

	s.logger.Infof("ZeroMQ service stopped")
}

func (s *ZeroMQService) closeSenders() {
	for _, sender := range s.senders {
		sender.Close()
	}
}

// Registry returns the outbound topic registry
func (s *ZeroMQService) Registry() *TopicRegistry {
	return s.registry
}

// PublishMessage wraps payload in an OttMessage and sends it on topic.
// A best-effort drop is counted and logged but not returned as an error.
// A reliable topic that stays full for the send timeout is counted and
// returned as ErrDeliveryTimeout.
func (s *ZeroMQService) PublishMessage(topic string, contentType message.ContentType, payload []byte) error {
	s.mu.RLock()
	running := s.running
	sender, exists := s.senders[topic]
	s.mu.RUnlock()

	if !running {
		return ErrServiceClosed
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownTopic, topic)
	}

	timestamp := time.Now().UnixNano()
	envelope := EncodeEnvelope(topic, contentType, payload, timestamp)

	if err := sender.PublishMessage(envelope); err != nil {
		if errors.Is(err, ErrMessageDropped) {
			s.registry.RecordDrop(topic)
			s.logger.Debugf("Dropped message for topic '%s' (queue full)", topic)
			return nil
		}
		if errors.Is(err, ErrDeliveryTimeout) {
			s.registry.RecordDrop(topic)
		}
		return fmt.Errorf("publish to '%s': %w", topic, err)
	}

	s.registry.RecordPublish(topic, timestamp)
	return nil
}

// PublishJSON publishes a JSON-serializable command on topic
func (s *ZeroMQService) PublishJSON(topic string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal message for '%s': %w", topic, err)
	}

	return s.PublishMessage(topic, message.ContentTypeJSON_COMMAND, payload)
}
