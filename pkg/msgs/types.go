// Package msgs holds the outbound wire messages. Field names and JSON keys
// follow the ROS message definitions the gateway converts them into.
package msgs

// Vector3 defines a standard 3D vector.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// TwistMsg represents a command velocity message, matching geometry_msgs/Twist.
type TwistMsg struct {
	Linear  Vector3 `json:"linear"`
	Angular Vector3 `json:"angular"`
}

// IsZero reports whether every component is zero (a stop command).
func (t TwistMsg) IsZero() bool {
	return t == TwistMsg{}
}

// PanTiltCmdDeg represents a pan-tilt command in degrees, matching
// pan_tilt_msgs/msg/PanTiltCmdDeg.
type PanTiltCmdDeg struct {
	Speed int     `json:"speed"`
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
}

// Message type names recorded in the topic registry
const (
	TwistType         = "geometry_msgs/msg/Twist"
	PanTiltCmdDegType = "pan_tilt_msgs/msg/PanTiltCmdDeg"
)
