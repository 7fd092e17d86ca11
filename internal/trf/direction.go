package trf

// Direction is the caller's preference for which crossing to take.
// The Move variants reject a zero-length answer when the track already sits
// on the destination surface.
type Direction uint8

const (
	Nearest Direction = iota
	Forward
	Backward
	NearestMove
	ForwardMove
	BackwardMove
)

var directionNames = [...]string{"nearest", "forward", "backward", "nearest_move", "forward_move", "backward_move"}

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return "unknown"
}

// Reduce splits d into its base preference (Nearest, Forward or Backward)
// and the move flag.
func (d Direction) Reduce() (Direction, bool) {
	switch d {
	case NearestMove:
		return Nearest, true
	case ForwardMove:
		return Forward, true
	case BackwardMove:
		return Backward, true
	}
	return d, false
}

// WithMove returns the move variant of d's base preference.
func (d Direction) WithMove() Direction {
	base, _ := d.Reduce()
	return base + 3
}

// Accepts reports whether a signed path length satisfies d.
func (d Direction) Accepts(s float64) bool {
	base, move := d.Reduce()
	if move && s == 0 {
		return false
	}
	switch base {
	case Forward:
		return s >= 0
	case Backward:
		return s <= 0
	}
	return true
}
