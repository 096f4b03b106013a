package sim

import "fmt"

// Generation identifies one of the two server generations a function may be
// placed on. Its integer value doubles as the placement bit used by strategies.
type Generation int

const (
	Old Generation = 0
	New Generation = 1
)

// Generations lists both generations in placement-bit order.
var Generations = [2]Generation{Old, New}

func (g Generation) String() string {
	switch g {
	case Old:
		return "old"
	case New:
		return "new"
	default:
		return fmt.Sprintf("generation(%d)", int(g))
	}
}

// Other returns the opposite generation.
func (g Generation) Other() Generation {
	if g == Old {
		return New
	}
	return Old
}

// ServerPair names the old- and new-generation server profiles.
type ServerPair struct {
	Old string
	New string
}

// Server returns the server name backing generation g.
func (p ServerPair) Server(g Generation) string {
	if g == New {
		return p.New
	}
	return p.Old
}

// Function is an immutable description of a traced serverless function.
// ID is its position in the simulation's fixed enumeration order.
type Function struct {
	ID       int
	Name     string
	MemoryMB float64
}
