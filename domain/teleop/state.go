package teleop

import (
	"github.com/open-teleop/keyteleop/pkg/config"
	"github.com/open-teleop/keyteleop/pkg/msgs"
)

// Intent is the velocity direction selected by a movement key.
// Each component is -1, 0 or 1.
type Intent struct {
	X  int `json:"x"`  // surge
	Y  int `json:"y"`  // strafe
	Z  int `json:"z"`  // heave
	Th int `json:"th"` // yaw rate sign
}

// State is the operator's current command: velocity intent, the linear
// (Speed) and angular (Turn) scale factors, and the pan-tilt angles in degrees.
type State struct {
	Intent Intent  `json:"intent"`
	Speed  float64 `json:"speed"`
	Turn   float64 `json:"turn"`
	Pan    float64 `json:"pan"`
	Tilt   float64 `json:"tilt"`
}

// NewState returns the initial command state: stopped, centered, default scales
func NewState(cfg *config.Config) State {
	return State{
		Speed: cfg.Teleop.InitialSpeed,
		Turn:  cfg.Teleop.InitialTurn,
	}
}

// Apply returns the state after key and whether key ends the session.
//
// Rules, in order:
//  1. a move key assigns the intent;
//  2. otherwise a speed key multiplies the scale factors;
//  3. otherwise, unless key is a PTU key or the reset key, the intent is zeroed.
//
// Then a PTU key steps pan/tilt (clamped to the limits) and the reset key
// centers them. A speed key never stops the base because rule 2 shadows rule 3.
// Quit is checked last, so "q" both scales and quits.
func Apply(s State, key string, ptu config.PTUConfig) (State, bool) {
	class := Classify(key)

	switch class {
	case ClassMove:
		s.Intent, _ = MoveBinding(key)
	case ClassSpeed:
		f, _ := SpeedBinding(key)
		s.Speed *= f.Linear
		s.Turn *= f.Angular
	default:
		if class != ClassPTU && class != ClassReset {
			s.Intent = Intent{}
		}
	}

	switch class {
	case ClassPTU:
		d, _ := PTUBinding(key)
		s.Pan = clamp(s.Pan+float64(d.Pan)*ptu.StepDeg, ptu.MinPan, ptu.MaxPan)
		s.Tilt = clamp(s.Tilt+float64(d.Tilt)*ptu.StepDeg, ptu.MinTilt, ptu.MaxTilt)
	case ClassReset:
		s.Pan = 0
		s.Tilt = 0
	}

	return s, IsQuit(key)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Twist scales the intent into a base velocity command
func (s State) Twist() msgs.TwistMsg {
	return msgs.TwistMsg{
		Linear: msgs.Vector3{
			X: float64(s.Intent.X) * s.Speed,
			Y: float64(s.Intent.Y) * s.Speed,
			Z: float64(s.Intent.Z) * s.Speed,
		},
		Angular: msgs.Vector3{
			Z: float64(s.Intent.Th) * s.Turn,
		},
	}
}

// PanTilt builds the pan-tilt command for the current angles
func (s State) PanTilt(speed int) msgs.PanTiltCmdDeg {
	return msgs.PanTiltCmdDeg{
		Speed: speed,
		Yaw:   s.Pan,
		Pitch: s.Tilt,
	}
}
