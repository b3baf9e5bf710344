package hashset

// State is the occupancy of a single slot in the table.
type State uint8

const (
	Empty     State = iota // never used
	Tombstone              // held a value that was discarded
	Occupied               // holds a live value
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Tombstone:
		return "tombstone"
	case Occupied:
		return "occupied"
	default:
		return "invalid"
	}
}

// Free returns true if a value can be stored in a slot with this state.
func (s State) Free() bool { return s != Occupied }

// slot is one entry of the table. val is only meaningful when occupied; it
// is reset to the zero value on discard so the set does not keep dead values
// reachable.
type slot[T any] struct {
	state State
	val   T
}
