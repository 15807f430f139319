// Package executor applies file-system changes as small transactions.
//
// Every link is one transaction: its steps (create parent, move the old
// target away, create the symlink) run in order through a synthfs pipeline
// and the first failing step stops the rest.
package executor

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/arthur-debert/dotfiles/pkg/errors"
	dffs "github.com/arthur-debert/dotfiles/pkg/filesystem"
	"github.com/arthur-debert/dotfiles/pkg/logging"
	"github.com/arthur-debert/synthfs/pkg/synthfs"
	"github.com/arthur-debert/synthfs/pkg/synthfs/filesystem"
	"github.com/rs/zerolog"
)

// Executor runs transactions against the real file system
type Executor struct {
	logger     zerolog.Logger
	dryRun     bool
	fs         dffs.FS
	filesystem filesystem.FullFileSystem
	seq        int
}

// Options configures an Executor
type Options struct {
	DryRun bool
	// FS is used by steps synthfs has no primitive for; nil means the OS
	FS dffs.FS
}

// New creates an executor
func New(opts Options) *Executor {
	fsys := opts.FS
	if fsys == nil {
		fsys = dffs.NewOS()
	}

	osfs := filesystem.NewOSFileSystem("/")
	return &Executor{
		logger:     logging.GetLogger("executor"),
		dryRun:     opts.DryRun,
		fs:         fsys,
		filesystem: synthfs.NewPathAwareFileSystem(osfs, "/").WithAbsolutePaths(),
	}
}

// DryRun reports whether transactions are only logged
func (e *Executor) DryRun() bool {
	return e.dryRun
}

// Step is one planned change inside a transaction
type Step struct {
	Kind   string
	Path   string
	Source string
	run    func(ctx context.Context, fsys filesystem.FileSystem) error
}

func (s Step) String() string {
	if s.Source != "" {
		return fmt.Sprintf("%s %s -> %s", s.Kind, s.Path, s.Source)
	}
	return fmt.Sprintf("%s %s", s.Kind, s.Path)
}

// Transaction collects the steps of one logical change
type Transaction struct {
	name  string
	steps []Step
}

// Begin starts an empty transaction
func (e *Executor) Begin(name string) *Transaction {
	return &Transaction{name: name}
}

// Steps returns the planned steps in order
func (tx *Transaction) Steps() []Step {
	return tx.steps
}

// Empty reports whether nothing is planned
func (tx *Transaction) Empty() bool {
	return len(tx.steps) == 0
}

func (tx *Transaction) add(s Step) *Transaction {
	tx.steps = append(tx.steps, s)
	return tx
}

// EnsureDir creates path and its parents
func (tx *Transaction) EnsureDir(e *Executor, path string) *Transaction {
	return tx.add(Step{Kind: "mkdir", Path: path, run: func(_ context.Context, _ filesystem.FileSystem) error {
		return e.fs.MkdirAll(path, 0755)
	}})
}

// Remove deletes a file or symlink at path
func (tx *Transaction) Remove(path string) *Transaction {
	return tx.add(Step{Kind: "remove", Path: path, run: func(_ context.Context, fsys filesystem.FileSystem) error {
		return fsys.Remove(path)
	}})
}

// Rename moves path to dest
func (tx *Transaction) Rename(e *Executor, path, dest string) *Transaction {
	return tx.add(Step{Kind: "rename", Path: path, Source: dest, run: func(_ context.Context, _ filesystem.FileSystem) error {
		return e.fs.Rename(path, dest)
	}})
}

// Symlink creates link pointing at source
func (tx *Transaction) Symlink(source, link string) *Transaction {
	return tx.add(Step{Kind: "symlink", Path: link, Source: source, run: func(_ context.Context, fsys filesystem.FileSystem) error {
		return fsys.Symlink(source, link)
	}})
}

// CopyFile writes the content of source to dest with mode
func (tx *Transaction) CopyFile(e *Executor, source, dest string, mode fs.FileMode) *Transaction {
	return tx.add(Step{Kind: "copy", Path: dest, Source: source, run: func(_ context.Context, _ filesystem.FileSystem) error {
		data, err := e.fs.ReadFile(source)
		if err != nil {
			return err
		}
		return e.fs.WriteFile(dest, data, mode)
	}})
}

// Commit runs the transaction. In dry-run mode steps are logged only. The
// returned error is the failing step's own error wrapped with its context.
func (e *Executor) Commit(ctx context.Context, tx *Transaction) error {
	if tx.Empty() {
		return nil
	}

	if e.dryRun {
		for _, s := range tx.steps {
			e.logger.Info().Str("transaction", tx.name).Str("step", s.String()).Msg("Would run step")
		}
		return nil
	}

	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, errors.ErrCancelled, "run cancelled")
	}

	sfs := synthfs.New()
	var stepErr error
	var failed Step
	ops := make([]synthfs.Operation, 0, len(tx.steps))
	for _, s := range tx.steps {
		s := s
		e.seq++
		id := fmt.Sprintf("%s_%d_%s", s.Kind, e.seq, filepath.Base(s.Path))
		ops = append(ops, sfs.CustomOperationWithID(id, func(ctx context.Context, fsys filesystem.FileSystem) error {
			err := s.run(ctx, fsys)
			if err != nil && stepErr == nil {
				stepErr = err
				failed = s
			}
			return err
		}))
	}

	options := synthfs.DefaultPipelineOptions()
	options.RollbackOnError = true

	e.logger.Debug().
		Str("transaction", tx.name).
		Int("steps", len(ops)).
		Msg("Committing transaction")

	_, err := synthfs.RunWithOptions(ctx, e.filesystem, options, ops...)
	if stepErr != nil {
		return errors.Wrapf(stepErr, codeFor(stepErr), "%s failed", failed).
			WithDetail("transaction", tx.name)
	}
	if err != nil {
		return errors.Wrapf(err, errors.ErrInternal, "transaction %s failed", tx.name)
	}
	return nil
}

func codeFor(err error) errors.ErrorCode {
	switch {
	case errors.IsErrorCode(err, errors.ErrCancelled):
		return errors.ErrCancelled
	case isPermission(err):
		return errors.ErrPermission
	case isNotExist(err):
		return errors.ErrSourceMissing
	default:
		return errors.ErrSymlinkCreate
	}
}
