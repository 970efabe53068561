package core

// State is a session lifecycle stage.
type State int

const (
	Locked State = iota
	Authenticating
	Rejected
	Bootstrapped
	Authenticated
	Unlocked
	Sealed
)

func (s State) String() string {
	switch s {
	case Locked:
		return "locked"
	case Authenticating:
		return "authenticating"
	case Rejected:
		return "rejected"
	case Bootstrapped:
		return "bootstrapped"
	case Authenticated:
		return "authenticated"
	case Unlocked:
		return "unlocked"
	case Sealed:
		return "sealed"
	default:
		return "unknown"
	}
}
