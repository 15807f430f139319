package linker

import (
	"bytes"
	"context"
	"path/filepath"

	"github.com/arthur-debert/dotfiles/pkg/config"
	"github.com/arthur-debert/dotfiles/pkg/errors"
	"github.com/arthur-debert/dotfiles/pkg/executor"
	"github.com/arthur-debert/dotfiles/pkg/filesystem"
)

// SelfTarget returns where the running executable is installed
func (l *Linker) SelfTarget() string {
	return l.paths.HomePath(filepath.Join(l.cfg.Layout.BinTarget, l.cfg.Self.Name))
}

// SelfLink installs the running executable into the bin target so the
// tool can be re-run from anywhere. Mode "link" symlinks it, "copy"
// copies it and "off" returns a nil result.
func (l *Linker) SelfLink(ctx context.Context) (*Result, error) {
	if l.cfg.Self.Mode == config.SelfOff {
		return nil, nil
	}

	target := l.SelfTarget()
	res := &Result{Target: LinkTarget{Target: target, RelPath: l.cfg.Self.Name, Kind: KindSelf}}

	exe, err := l.executable()
	if err == nil {
		exe, err = filepath.EvalSymlinks(exe)
	}
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Err = errors.Wrap(err, errors.ErrSourceMissing, "cannot locate the running executable")
		return res, nil
	}
	res.Target.Source = exe

	if l.cfg.Self.Mode == config.SelfCopy {
		res.Outcome, res.Err = l.copySelf(ctx, exe, target)
	} else {
		res.Outcome, res.Err = l.Link(ctx, exe, target)
	}
	if res.Outcome == OutcomeSkipped {
		res.Reason = "target exists"
	}
	if errors.IsErrorCode(res.Err, errors.ErrCancelled) {
		return res, res.Err
	}
	return res, nil
}

// copySelf keeps a copy of exe at target. An identical copy, or the
// executable itself, is left alone; a different file goes through the
// conflict policy.
func (l *Linker) copySelf(ctx context.Context, exe, target string) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return OutcomeFailed, errors.Wrap(err, errors.ErrCancelled, "run cancelled")
	}

	state, _, err := filesystem.Inspect(l.fs, exe, target)
	if err != nil {
		return OutcomeFailed, l.accessError(err, target)
	}

	info, err := l.fs.Stat(exe)
	if err != nil {
		return OutcomeFailed, l.accessError(err, exe)
	}
	mode := info.Mode().Perm()
	install := func(tx *executor.Transaction) {
		tx.CopyFile(l.exec, exe, target, mode)
	}

	tx := l.exec.Begin(target)
	switch state {
	case filesystem.TargetMissing:
		tx.EnsureDir(l.exec, filepath.Dir(target))
		install(tx)
		if err := l.exec.Commit(ctx, tx); err != nil {
			return OutcomeFailed, err
		}
		return OutcomeCreated, nil

	case filesystem.TargetLinked, filesystem.TargetStaleLink:
		tx.Remove(target)
		install(tx)
		if err := l.exec.Commit(ctx, tx); err != nil {
			return OutcomeFailed, err
		}
		return OutcomeReplaced, nil

	case filesystem.TargetFile:
		if l.sameFile(exe, target) || l.sameContent(exe, target) {
			return OutcomeUnchanged, nil
		}
	}

	return l.resolveConflict(ctx, state, target, install)
}

func (l *Linker) sameContent(a, b string) bool {
	ad, err := l.fs.ReadFile(a)
	if err != nil {
		return false
	}
	bd, err := l.fs.ReadFile(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ad, bd)
}
