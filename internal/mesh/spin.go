package mesh

import "fmt"

// Spin identifies a carrier spin channel. SpinNone marks entries that are
// not spin resolved.
type Spin uint8

const (
	SpinNone Spin = iota
	SpinUp
	SpinDown
)

func (s Spin) String() string {
	switch s {
	case SpinNone:
		return ""
	case SpinUp:
		return "up"
	case SpinDown:
		return "down"
	default:
		return fmt.Sprintf("spin(%d)", uint8(s))
	}
}

// ParseSpin maps the textual spin token back to the enumeration.
func ParseSpin(token string) (Spin, error) {
	switch token {
	case "up":
		return SpinUp, nil
	case "down":
		return SpinDown, nil
	default:
		return SpinNone, fmt.Errorf("unknown spin channel %q", token)
	}
}
