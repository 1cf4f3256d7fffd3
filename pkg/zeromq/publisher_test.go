package zeromq

import (
	"errors"
	"testing"

	"github.com/open-teleop/keyteleop/pkg/config"
	"github.com/open-teleop/keyteleop/pkg/msgs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedPublish struct {
	topic string
	data  interface{}
}

type fakeJSONPublisher struct {
	published []recordedPublish
	err       error
}

func (f *fakeJSONPublisher) PublishJSON(topic string, data interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, recordedPublish{topic: topic, data: data})
	return nil
}

func TestCommandPublisherTopics(t *testing.T) {
	fake := &fakeJSONPublisher{}
	cfg := config.Default()
	p := NewCommandPublisher(fake, cfg, testLogger())

	twist := msgs.TwistMsg{Linear: msgs.Vector3{X: 0.5}}
	require.NoError(t, p.PublishTwist(twist))
	require.NoError(t, p.PublishPanTilt(msgs.PanTiltCmdDeg{Speed: 30, Yaw: 2}))

	require.Len(t, fake.published, 2)
	assert.Equal(t, "/j100_0667/cmd_vel", fake.published[0].topic)
	assert.Equal(t, twist, fake.published[0].data)
	assert.Equal(t, "/pan_tilt_cmd_deg", fake.published[1].topic)
}

func TestCommandPublisherPanTiltIgnoresNamespace(t *testing.T) {
	fake := &fakeJSONPublisher{}
	cfg := config.Default()
	cfg.RobotNamespace = "/other_robot"
	p := NewCommandPublisher(fake, cfg, testLogger())

	require.NoError(t, p.PublishTwist(msgs.TwistMsg{}))
	require.NoError(t, p.PublishPanTilt(msgs.PanTiltCmdDeg{}))

	assert.Equal(t, "/other_robot/cmd_vel", fake.published[0].topic)
	assert.Equal(t, "/pan_tilt_cmd_deg", fake.published[1].topic)
}

func TestCommandPublisherPropagatesErrors(t *testing.T) {
	boom := errors.New("bus down")
	p := NewCommandPublisher(&fakeJSONPublisher{err: boom}, config.Default(), testLogger())

	assert.ErrorIs(t, p.PublishTwist(msgs.TwistMsg{}), boom)
	assert.ErrorIs(t, p.PublishPanTilt(msgs.PanTiltCmdDeg{}), boom)
}
