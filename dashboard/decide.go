package dashboard

// Branch is one of the three things the view can show.
type Branch int

const (
	BranchLoading Branch = iota
	BranchError
	BranchDashboard
)

func (b Branch) String() string {
	switch b {
	case BranchLoading:
		return "loading"
	case BranchError:
		return "error"
	case BranchDashboard:
		return "dashboard"
	default:
		return "unknown"
	}
}

// Decision is the outcome of Decide: the branch plus what it needs to render.
type Decision struct {
	Branch  Branch
	Message string   // set for BranchError
	Data    Snapshot // effective data for BranchDashboard
}

// Decide maps a state to what the view shows. The spinner only appears while
// nothing has been loaded yet, and the error screen only when a failure left
// the view without any data. Once a snapshot exists the dashboard always wins.
func Decide(s State) Decision {
	switch {
	case s.Loading && s.Snapshot == nil:
		return Decision{Branch: BranchLoading}
	case s.Err != nil && s.Snapshot == nil:
		return Decision{Branch: BranchError, Message: *s.Err}
	}
	data := defaultSnapshot()
	if s.Snapshot != nil {
		data = *s.Snapshot.Clone()
	}
	return Decision{Branch: BranchDashboard, Data: data}
}
