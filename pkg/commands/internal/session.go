package internal

import (
	"github.com/arthur-debert/dotfiles/pkg/config"
	"github.com/arthur-debert/dotfiles/pkg/errors"
	"github.com/arthur-debert/dotfiles/pkg/linker"
	"github.com/arthur-debert/dotfiles/pkg/machine"
	"github.com/arthur-debert/dotfiles/pkg/paths"
)

// SessionOptions are the inputs shared by every command
type SessionOptions struct {
	// Root is the dotfiles root; empty means discover it
	Root string
	// Overrides are dotted config keys set from flags
	Overrides map[string]interface{}
	// Detect reads the machine identity; nil means machine.Detect
	Detect func() (machine.Machine, error)
}

// Session holds the resolved paths, configuration and machine of a run
type Session struct {
	Paths   *paths.Paths
	Config  *config.Config
	Machine machine.Machine
}

// NewSession resolves paths, loads configuration and detects the machine.
// Pinned hostname or OS values from the configuration win over detection.
func NewSession(opts SessionOptions) (*Session, error) {
	p, err := paths.New(opts.Root)
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadWithOverrides(p.Root(), opts.Overrides)
	if err != nil {
		return nil, err
	}

	detect := opts.Detect
	if detect == nil {
		detect = machine.Detect
	}
	m, err := detect()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to detect machine")
	}
	if cfg.Machine.Hostname != "" {
		m.Hostname = cfg.Machine.Hostname
	}
	if cfg.Machine.OS != "" {
		m.OS = cfg.Machine.OS
	}

	return &Session{Paths: p, Config: cfg, Machine: m}, nil
}

// LinkerOptions are the per-command linker settings
type LinkerOptions struct {
	Policy    linker.Policy
	DryRun    bool
	Confirmer linker.Confirmer
}

// Linker builds a linker for this session
func (s *Session) Linker(opts LinkerOptions) (*linker.Linker, error) {
	return linker.New(linker.Options{
		Paths:     s.Paths,
		Config:    s.Config,
		Machine:   s.Machine,
		Policy:    opts.Policy,
		DryRun:    opts.DryRun,
		Confirmer: opts.Confirmer,
	})
}
