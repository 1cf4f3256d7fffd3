package zeromq

import (
	"github.com/open-teleop/keyteleop/pkg/config"
	customlog "github.com/open-teleop/keyteleop/pkg/log"
	"github.com/open-teleop/keyteleop/pkg/msgs"
)

// JSONPublisher is the part of ZeroMQService the command publisher needs
type JSONPublisher interface {
	PublishJSON(topic string, data interface{}) error
}

// CommandPublisher publishes base velocity and pan-tilt commands on their configured topics
type CommandPublisher struct {
	service      JSONPublisher
	twistTopic   string
	panTiltTopic string
	logger       customlog.Logger
}

// NewCommandPublisher creates a publisher bound to the resolved topic names in cfg
func NewCommandPublisher(service JSONPublisher, cfg *config.Config, logger customlog.Logger) *CommandPublisher {
	p := &CommandPublisher{
		service:      service,
		twistTopic:   cfg.TwistTopic(),
		panTiltTopic: cfg.PanTiltTopic(),
		logger:       logger,
	}
	logger.Infof("Publishing Twist to: %s", p.twistTopic)
	logger.Infof("Publishing PTU commands to: %s", p.panTiltTopic)
	return p
}

// PublishTwist publishes a base velocity command
func (p *CommandPublisher) PublishTwist(twist msgs.TwistMsg) error {
	return p.service.PublishJSON(p.twistTopic, twist)
}

// PublishPanTilt publishes a pan-tilt angle command
func (p *CommandPublisher) PublishPanTilt(cmd msgs.PanTiltCmdDeg) error {
	return p.service.PublishJSON(p.panTiltTopic, cmd)
}
