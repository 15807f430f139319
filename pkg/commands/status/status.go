package status

import (
	"github.com/arthur-debert/dotfiles/pkg/commands/internal"
	"github.com/arthur-debert/dotfiles/pkg/config"
	"github.com/arthur-debert/dotfiles/pkg/filesystem"
	"github.com/arthur-debert/dotfiles/pkg/linker"
	"github.com/arthur-debert/dotfiles/pkg/logging"
	linkstatus "github.com/arthur-debert/dotfiles/pkg/status"
)

// StatusOptions holds options for the status command
type StatusOptions struct {
	Session *internal.Session
	FS      filesystem.FS
	// Executable locates the self link source; nil means os.Executable
	Executable func() (string, error)
}

// Status classifies every link a full apply would create. The self link
// is included when it is installed as a symlink and no tree entry owns
// its path.
func Status(opts StatusOptions) (*linkstatus.Report, error) {
	logger := logging.GetLogger("commands.status")
	s := opts.Session

	fsys := opts.FS
	if fsys == nil {
		fsys = filesystem.NewOS()
	}

	l, err := linker.New(linker.Options{
		Paths:      s.Paths,
		Config:     s.Config,
		Machine:    s.Machine,
		DryRun:     true,
		FS:         fsys,
		Executable: opts.Executable,
	})
	if err != nil {
		return nil, err
	}

	plan, err := l.Plan(linker.ScopeAll)
	if err != nil {
		return nil, err
	}

	report := &linkstatus.Report{Problems: plan.Problems}
	for _, lt := range plan.Targets {
		report.Entries = append(report.Entries, linkstatus.CheckTarget(fsys, lt))
	}

	_, owned := plan.Claimed(l.SelfTarget())
	if s.Config.Self.Mode == config.SelfLink && !owned {
		if self, ok := selfTarget(l, opts.Executable); ok {
			report.Entries = append(report.Entries, linkstatus.CheckTarget(fsys, self))
		}
	}

	counts := report.Counts()
	logger.Debug().
		Int("linked", counts[linkstatus.StateLinked]).
		Int("missing", counts[linkstatus.StateMissing]).
		Int("stale", counts[linkstatus.StateStale]).
		Int("conflict", counts[linkstatus.StateConflict]).
		Int("problems", len(report.Problems)).
		Msg("Status computed")

	return report, nil
}
