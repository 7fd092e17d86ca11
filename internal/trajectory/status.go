package trajectory

// FitStatus grades the fit at one trajectory point. Values are declared in
// priority order: when several apply, the first one wins.
type FitStatus uint8

const (
	BadState        FitStatus = iota // state wholly invalid
	Invalid                          // fit not meaningful
	Optimal                          // optimal fit using all clusters
	OptimalBackward                  // optimal using preceding clusters only
	OptimalForward                   // optimal using following clusters only
	OptimalExcluded                  // optimal using every cluster except this one
	Complete                         // complete but not optimal
	Partial                          // partial fit
)

var fitStatusNames = [...]string{
	"bad_state", "invalid", "optimal", "optimal_backward",
	"optimal_forward", "optimal_excluded", "complete", "partial",
}

func (s FitStatus) String() string {
	if int(s) < len(fitStatusNames) {
		return fitStatusNames[s]
	}
	return "unknown"
}

// FitConditions records which grades apply to a state.
type FitConditions struct {
	BadState       bool
	NotMeaningful  bool
	AllClusters    bool
	PrecedingOnly  bool
	FollowingOnly  bool
	ExcludingThis  bool
	CompleteNonOpt bool
}

// ChooseFitStatus returns the highest-priority status that applies. With no
// condition set the fit is Partial.
func ChooseFitStatus(c FitConditions) FitStatus {
	switch {
	case c.BadState:
		return BadState
	case c.NotMeaningful:
		return Invalid
	case c.AllClusters:
		return Optimal
	case c.PrecedingOnly:
		return OptimalBackward
	case c.FollowingOnly:
		return OptimalForward
	case c.ExcludingThis:
		return OptimalExcluded
	case c.CompleteNonOpt:
		return Complete
	}
	return Partial
}
