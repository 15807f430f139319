package linker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/arthur-debert/dotfiles/pkg/config"
	"github.com/arthur-debert/dotfiles/pkg/errors"
	"github.com/arthur-debert/dotfiles/pkg/executor"
	"github.com/arthur-debert/dotfiles/pkg/filesystem"
	"github.com/arthur-debert/dotfiles/pkg/logging"
	"github.com/arthur-debert/dotfiles/pkg/machine"
	"github.com/arthur-debert/dotfiles/pkg/paths"
	"github.com/rs/zerolog"
)

// Options configures a Linker. Paths, Config and Machine are required.
type Options struct {
	Paths   *paths.Paths
	Config  *config.Config
	Machine machine.Machine
	// Policy overrides Config.Link.Conflict when set
	Policy Policy
	DryRun bool
	// FS is used to inspect targets; nil means the OS
	FS filesystem.FS
	// Confirmer answers PolicyPrompt questions; nil turns prompts into failures
	Confirmer Confirmer
	// Executable returns the path SelfLink installs; nil means os.Executable
	Executable func() (string, error)
}

// Linker plans and creates the links of one dotfiles tree
type Linker struct {
	paths      *paths.Paths
	cfg        *config.Config
	machine    machine.Machine
	policy     Policy
	dryRun     bool
	fs         filesystem.FS
	exec       *executor.Executor
	confirmer  Confirmer
	executable func() (string, error)
	logger     zerolog.Logger
}

// New validates opts and creates a Linker
func New(opts Options) (*Linker, error) {
	if opts.Paths == nil {
		return nil, errors.New(errors.ErrInvalidInput, "linker requires paths")
	}
	if opts.Config == nil {
		return nil, errors.New(errors.ErrInvalidInput, "linker requires a config")
	}

	policy := opts.Policy
	if policy == "" {
		p, err := ParseConflictPolicy(opts.Config.Link.Conflict)
		if err != nil {
			return nil, err
		}
		policy = p
	}

	fsys := opts.FS
	if fsys == nil {
		fsys = filesystem.NewOS()
	}

	executable := opts.Executable
	if executable == nil {
		executable = os.Executable
	}

	return &Linker{
		paths:      opts.Paths,
		cfg:        opts.Config,
		machine:    opts.Machine,
		policy:     policy,
		dryRun:     opts.DryRun,
		fs:         fsys,
		exec:       executor.New(executor.Options{DryRun: opts.DryRun, FS: fsys}),
		confirmer:  opts.Confirmer,
		executable: executable,
		logger:     logging.GetLogger("linker"),
	}, nil
}

// Policy returns the conflict policy in effect
func (l *Linker) Policy() Policy {
	return l.policy
}

// Link makes target a symlink to source. A missing target is created with
// its parents, a link already pointing at source is left alone, any other
// link is replaced and a real file or directory goes through the conflict
// policy. The returned error carries the code of a failed link.
func (l *Linker) Link(ctx context.Context, source, target string) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return OutcomeFailed, errors.Wrap(err, errors.ErrCancelled, "run cancelled")
	}

	if _, err := l.fs.Lstat(source); err != nil {
		if os.IsNotExist(err) {
			return OutcomeFailed, errors.Newf(errors.ErrSourceMissing, "source %s does not exist", source).
				WithDetail("source", source)
		}
		return OutcomeFailed, l.accessError(err, source)
	}

	state, dest, err := filesystem.Inspect(l.fs, source, target)
	if err != nil {
		return OutcomeFailed, l.accessError(err, target)
	}

	logger := l.logger.With().Str("source", source).Str("target", target).Logger()
	tx := l.exec.Begin(target)

	switch state {
	case filesystem.TargetLinked:
		logger.Debug().Msg("Already linked")
		return OutcomeUnchanged, nil

	case filesystem.TargetMissing:
		tx.EnsureDir(l.exec, filepath.Dir(target)).Symlink(source, target)
		if err := l.exec.Commit(ctx, tx); err != nil {
			return OutcomeFailed, err
		}
		logger.Info().Msg("Created link")
		return OutcomeCreated, nil

	case filesystem.TargetStaleLink:
		tx.Remove(target).Symlink(source, target)
		if err := l.exec.Commit(ctx, tx); err != nil {
			return OutcomeFailed, err
		}
		logger.Info().Str("previous", dest).Msg("Replaced stale link")
		return OutcomeReplaced, nil
	}

	// A real path that is the source itself, reached through a linked
	// parent directory, is already in place.
	if l.sameFile(source, target) {
		logger.Debug().Msg("Target reaches source through a linked parent")
		return OutcomeUnchanged, nil
	}

	return l.resolveConflict(ctx, state, target, func(tx *executor.Transaction) {
		tx.Symlink(source, target)
	})
}

// resolveConflict applies the policy to a real file or directory at target.
// install adds the steps that put the new entry in place.
func (l *Linker) resolveConflict(ctx context.Context, state filesystem.TargetState, target string, install func(*executor.Transaction)) (Outcome, error) {
	logger := l.logger.With().Str("target", target).Str("state", state.String()).Logger()
	conflict := func() error {
		return errors.Newf(errors.ErrLinkConflict, "%s exists and is a %s", target, state).
			WithDetail("target", target).
			WithDetail("policy", string(l.policy))
	}

	policy := l.policy
	if policy == PolicyPrompt {
		p, err := l.ask(ctx, state, target)
		if err != nil {
			return OutcomeFailed, err
		}
		policy = p
	}

	tx := l.exec.Begin(target)
	switch policy {
	case PolicySkip:
		logger.Warn().Msg("Skipping existing target")
		return OutcomeSkipped, nil

	case PolicyBackup:
		backup, err := l.backupPath(target)
		if err != nil {
			return OutcomeFailed, err
		}
		tx.Rename(l.exec, target, backup)
		install(tx)
		if err := l.exec.Commit(ctx, tx); err != nil {
			return OutcomeFailed, err
		}
		logger.Info().Str("backup", backup).Msg("Backed up existing target")
		return OutcomeBackedUp, nil

	case PolicyForce:
		if state == filesystem.TargetDir {
			return OutcomeFailed, conflict()
		}
		tx.Remove(target)
		install(tx)
		if err := l.exec.Commit(ctx, tx); err != nil {
			return OutcomeFailed, err
		}
		logger.Warn().Msg("Removed existing file")
		return OutcomeReplaced, nil
	}

	return OutcomeFailed, conflict()
}

// ask turns a prompt into backup or skip. Dry runs never ask.
func (l *Linker) ask(ctx context.Context, state filesystem.TargetState, target string) (Policy, error) {
	if l.dryRun {
		return PolicySkip, nil
	}
	if l.confirmer == nil {
		return PolicyFail, nil
	}

	ok, err := l.confirmer.Confirm(ctx, fmt.Sprintf("%s is a %s. Back it up and link?", target, state))
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrCancelled, "no answer for %s", target)
	}
	if ok {
		return PolicyBackup, nil
	}
	return PolicySkip, nil
}

// backupPath returns target plus the backup suffix, numbered when a
// previous backup already exists
func (l *Linker) backupPath(target string) (string, error) {
	base := target + l.cfg.Link.BackupSuffix
	candidate := base
	for i := 1; ; i++ {
		_, err := l.fs.Lstat(candidate)
		if os.IsNotExist(err) {
			return candidate, nil
		}
		if err != nil {
			return "", l.accessError(err, candidate)
		}
		candidate = fmt.Sprintf("%s.%d", base, i)
	}
}

func (l *Linker) sameFile(a, b string) bool {
	ai, err := l.fs.Stat(a)
	if err != nil {
		return false
	}
	bi, err := l.fs.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}

func (l *Linker) accessError(err error, path string) error {
	if os.IsPermission(err) {
		return errors.Wrapf(err, errors.ErrPermission, "permission denied on %s", path).
			WithDetail("path", path)
	}
	return errors.Wrapf(err, errors.ErrFileAccess, "failed to inspect %s", path).
		WithDetail("path", path)
}
