package teleop

// KeyClass is the classification of a decoded key, in precedence order
type KeyClass int

const (
	// ClassMove keys assign the velocity intent
	ClassMove KeyClass = iota
	// ClassSpeed keys scale the linear and angular factors
	ClassSpeed
	// ClassPTU keys step the pan-tilt angles
	ClassPTU
	// ClassReset centers the pan-tilt unit
	ClassReset
	// ClassOther is everything else; it stops the base
	ClassOther
)

func (c KeyClass) String() string {
	switch c {
	case ClassMove:
		return "move"
	case ClassSpeed:
		return "speed"
	case ClassPTU:
		return "ptu"
	case ClassReset:
		return "reset"
	default:
		return "other"
	}
}

// Keys with a fixed meaning outside the tables
const (
	KeyReset     = " "
	KeyQuit      = "q"
	KeyInterrupt = "\x03"
	KeyUp        = "\x1b[A"
	KeyDown      = "\x1b[B"
	KeyRight     = "\x1b[C"
	KeyLeft      = "\x1b[D"
)

// SpeedFactor multiplies the linear and angular scale factors
type SpeedFactor struct {
	Linear  float64
	Angular float64
}

// PTUDelta is the per-press direction for pan and tilt, in steps
type PTUDelta struct {
	Pan  int
	Tilt int
}

// moveBindings: lower case drives and turns, upper case strafes (holonomic), t/b heave
var moveBindings = map[string]Intent{
	"i": {1, 0, 0, 0},
	"o": {1, 0, 0, -1},
	"j": {0, 0, 0, 1},
	"l": {0, 0, 0, -1},
	"u": {1, 0, 0, 1},
	",": {-1, 0, 0, 0},
	".": {-1, 0, 0, 1},
	"m": {-1, 0, 0, -1},
	"O": {1, -1, 0, 0},
	"I": {1, 0, 0, 0},
	"J": {0, 1, 0, 0},
	"L": {0, -1, 0, 0},
	"U": {1, 1, 0, 0},
	"<": {-1, 0, 0, 0},
	">": {-1, -1, 0, 0},
	"M": {-1, 1, 0, 0},
	"t": {0, 0, 1, 0},
	"b": {0, 0, -1, 0},
}

var speedBindings = map[string]SpeedFactor{
	"q": {1.1, 1.1},
	"z": {0.9, 0.9},
	"w": {1.1, 1},
	"x": {0.9, 1},
	"e": {1, 1.1},
	"c": {1, 0.9},
}

// Up tilts down and right pans right (negative), matching the PTU driver's frame
var ptuBindings = map[string]PTUDelta{
	KeyUp:    {0, -1},
	KeyDown:  {0, 1},
	KeyLeft:  {1, 0},
	KeyRight: {-1, 0},
}

// MoveBinding looks up the intent for a movement key
func MoveBinding(key string) (Intent, bool) {
	intent, ok := moveBindings[key]
	return intent, ok
}

// SpeedBinding looks up the scale factors for a speed key
func SpeedBinding(key string) (SpeedFactor, bool) {
	f, ok := speedBindings[key]
	return f, ok
}

// PTUBinding looks up the pan-tilt direction for an arrow key
func PTUBinding(key string) (PTUDelta, bool) {
	d, ok := ptuBindings[key]
	return d, ok
}

// MoveKeys returns every movement key
func MoveKeys() []string {
	return keysOf(moveBindings)
}

// SpeedKeys returns every speed key
func SpeedKeys() []string {
	return keysOf(speedBindings)
}

// PTUKeys returns every pan-tilt key
func PTUKeys() []string {
	return keysOf(ptuBindings)
}

func keysOf[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// Classify returns the class of key. The move table wins over the speed
// table, which wins over the PTU table and the reset key.
func Classify(key string) KeyClass {
	if _, ok := moveBindings[key]; ok {
		return ClassMove
	}
	if _, ok := speedBindings[key]; ok {
		return ClassSpeed
	}
	if _, ok := ptuBindings[key]; ok {
		return ClassPTU
	}
	if key == KeyReset {
		return ClassReset
	}
	return ClassOther
}

// IsQuit reports whether key ends the session. It is independent of Classify:
// "q" is also a speed key.
func IsQuit(key string) bool {
	return key == KeyQuit || key == KeyInterrupt
}
