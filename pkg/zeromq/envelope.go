package zeromq

import (
	"fmt"

	flatbuffers "github.com/google/flatbuffers/go"
	message "github.com/open-teleop/keyteleop/pkg/flatbuffers/open_teleop/message"
)

// EnvelopeVersion is written into every OttMessage
const EnvelopeVersion byte = 1

// EncodeEnvelope wraps a payload in an OttMessage FlatBuffer addressed to topic
func EncodeEnvelope(topic string, contentType message.ContentType, payload []byte, timestampNs int64) []byte {
	builder := flatbuffers.NewBuilder(len(payload) + len(topic) + 64)
	topicOffset := builder.CreateString(topic)
	payloadOffset := builder.CreateByteVector(payload)

	message.OttMessageStart(builder)
	message.OttMessageAddVersion(builder, EnvelopeVersion)
	message.OttMessageAddOtt(builder, topicOffset)
	message.OttMessageAddTimestampNs(builder, timestampNs)
	message.OttMessageAddContentType(builder, contentType)
	message.OttMessageAddPayload(builder, payloadOffset)
	ottMessageOffset := message.OttMessageEnd(builder)

	message.FinishOttMessageBuffer(builder, ottMessageOffset)
	return builder.FinishedBytes()
}

// DecodeEnvelope parses an OttMessage FlatBuffer. Truncated buffers are
// reported as ErrInvalidMessage instead of panicking.
func DecodeEnvelope(data []byte) (msg *message.OttMessage, err error) {
	if len(data) < flatbuffers.SizeUOffsetT {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidMessage, len(data))
	}

	defer func() {
		if r := recover(); r != nil {
			msg = nil
			err = fmt.Errorf("%w: %v", ErrInvalidMessage, r)
		}
	}()

	msg = message.GetRootAsOttMessage(data, 0)
	// Touch every field so out-of-range offsets surface here
	_ = msg.Version()
	_ = msg.ContentType()
	_ = msg.TimestampNs()
	if len(msg.Ott()) == 0 {
		return nil, fmt.Errorf("%w: missing topic", ErrInvalidMessage)
	}
	_ = msg.PayloadBytes()

	return msg, nil
}
