package status

import (
	"github.com/arthur-debert/dotfiles/pkg/filesystem"
	"github.com/arthur-debert/dotfiles/pkg/linker"
)

// State is the on-disk condition of one planned link
type State string

const (
	// StateLinked means the target is a symlink to its source
	StateLinked State = "linked"
	// StateMissing means nothing exists at the target yet
	StateMissing State = "missing"
	// StateStale means the target is a symlink to something else
	StateStale State = "stale"
	// StateConflict means a real file or directory occupies the target
	StateConflict State = "conflict"
	// StateError means the target could not be inspected
	StateError State = "error"
)

// States lists every state in display order
var States = []State{StateLinked, StateMissing, StateStale, StateConflict, StateError}

// Entry is the status of one planned link
type Entry struct {
	linker.LinkTarget `yaml:",inline"`

	State State `json:"state" yaml:"state"`
	// Destination is the current content of a stale link
	Destination string `json:"destination,omitempty" yaml:"destination,omitempty"`
	Message     string `json:"message,omitempty" yaml:"message,omitempty"`
}

// Report holds the status of every planned link plus the entries that
// could not be planned
type Report struct {
	Entries  []Entry
	Problems []linker.Result
}

// Counts returns the number of entries per state
func (r *Report) Counts() map[State]int {
	counts := make(map[State]int, len(States))
	for _, e := range r.Entries {
		counts[e.State]++
	}
	return counts
}

// Clean reports whether every planned link is in place and nothing failed
// to plan
func (r *Report) Clean() bool {
	for _, e := range r.Entries {
		if e.State != StateLinked {
			return false
		}
	}
	for _, p := range r.Problems {
		if p.Outcome == linker.OutcomeFailed {
			return false
		}
	}
	return true
}

// CheckTarget classifies a single planned link
func CheckTarget(fsys filesystem.FS, lt linker.LinkTarget) Entry {
	entry := Entry{LinkTarget: lt}

	state, dest, err := filesystem.Inspect(fsys, lt.Source, lt.Target)
	if err != nil {
		entry.State = StateError
		entry.Message = err.Error()
		return entry
	}

	switch state {
	case filesystem.TargetLinked:
		entry.State = StateLinked
	case filesystem.TargetMissing:
		entry.State = StateMissing
		entry.Message = "not linked yet"
	case filesystem.TargetStaleLink:
		entry.State = StateStale
		entry.Destination = dest
		if _, err := fsys.Stat(lt.Target); err != nil {
			entry.Message = "dangling link"
		} else {
			entry.Message = "links elsewhere"
		}
	default:
		entry.State = StateConflict
		entry.Message = "a " + state.String() + " is in the way"
	}
	return entry
}
