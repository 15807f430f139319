package linker

// Outcome is what Link did to one target
type Outcome int

const (
	// OutcomeCreated means a new link was made where nothing existed
	OutcomeCreated Outcome = iota
	// OutcomeUnchanged means the target already pointed at its source
	OutcomeUnchanged
	// OutcomeReplaced means a stale link, or a forced file, was replaced
	OutcomeReplaced
	// OutcomeBackedUp means the old target was renamed aside and linked over
	OutcomeBackedUp
	// OutcomeSkipped means nothing was done and nothing failed
	OutcomeSkipped
	// OutcomeFailed means the target could not be linked
	OutcomeFailed
)

var outcomeNames = map[Outcome]string{
	OutcomeCreated:   "created",
	OutcomeUnchanged: "unchanged",
	OutcomeReplaced:  "replaced",
	OutcomeBackedUp:  "backed-up",
	OutcomeSkipped:   "skipped",
	OutcomeFailed:    "failed",
}

// Outcomes lists every outcome in report order
var Outcomes = []Outcome{
	OutcomeCreated, OutcomeUnchanged, OutcomeReplaced,
	OutcomeBackedUp, OutcomeSkipped, OutcomeFailed,
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return "unknown"
}

// MarshalText renders the outcome name in JSON and YAML output
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Changed reports whether the outcome modified the file system
func (o Outcome) Changed() bool {
	return o == OutcomeCreated || o == OutcomeReplaced || o == OutcomeBackedUp
}
