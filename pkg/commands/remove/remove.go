package remove

import (
	"context"
	"os"
	"path/filepath"

	"github.com/arthur-debert/dotfiles/pkg/commands/internal"
	"github.com/arthur-debert/dotfiles/pkg/errors"
	"github.com/arthur-debert/dotfiles/pkg/executor"
	"github.com/arthur-debert/dotfiles/pkg/filesystem"
	"github.com/arthur-debert/dotfiles/pkg/linker"
	"github.com/arthur-debert/dotfiles/pkg/logging"
	"github.com/arthur-debert/dotfiles/pkg/paths"
)

// RemoveOptions holds options for the remove command
type RemoveOptions struct {
	Session *internal.Session
	// Path is either a managed link under $HOME or a file in the tree
	Path   string
	DryRun bool
	FS     filesystem.FS
}

// RemoveResult describes what was deleted
type RemoveResult struct {
	Source string `json:"source" yaml:"source"`
	// Link is empty when no link to Source existed
	Link   string `json:"link,omitempty" yaml:"link,omitempty"`
	DryRun bool   `json:"dry_run" yaml:"dry_run"`
}

// Remove deletes a file from the dotfiles tree together with the link to
// it. Given a link, its destination must be inside the tree. Given a tree
// file, its planned target is removed only if it links to that file.
func Remove(ctx context.Context, opts RemoveOptions) (*RemoveResult, error) {
	logger := logging.GetLogger("commands.remove")
	s := opts.Session

	fsys := opts.FS
	if fsys == nil {
		fsys = filesystem.NewOS()
	}

	if opts.Path == "" {
		return nil, errors.New(errors.ErrInvalidInput, "no file given")
	}
	path, err := filepath.Abs(paths.ExpandHome(opts.Path, s.Paths.Home()))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid path %s", opts.Path)
	}

	info, err := fsys.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrNotFound, "%s does not exist", path).WithDetail("path", path)
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to inspect %s", path)
	}
	if info.IsDir() {
		return nil, errors.Newf(errors.ErrInvalidInput, "%s is a directory", path).WithDetail("path", path)
	}

	var source, link string
	switch {
	case s.Paths.InRoot(path):
		source = path
		link, err = plannedLink(s, fsys, source)
		if err != nil {
			return nil, err
		}

	case info.Mode()&os.ModeSymlink != 0:
		dest, err := fsys.Readlink(path)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read link %s", path)
		}
		if !filepath.IsAbs(dest) {
			dest = filepath.Join(filepath.Dir(path), dest)
		}
		dest = filepath.Clean(dest)
		if !s.Paths.InRoot(dest) {
			return nil, errors.Newf(errors.ErrNotManaged, "%s does not link into the dotfiles tree", path).
				WithDetail("destination", dest)
		}
		source, link = dest, path

	default:
		return nil, errors.Newf(errors.ErrNotManaged, "%s is not managed by dotfiles", path).
			WithDetail("path", path)
	}

	exec := executor.New(executor.Options{DryRun: opts.DryRun, FS: fsys})
	tx := exec.Begin("remove " + source)
	if link != "" {
		tx.Remove(link)
	}
	if _, err := fsys.Lstat(source); err == nil {
		tx.Remove(source)
	}
	if err := exec.Commit(ctx, tx); err != nil {
		return nil, err
	}

	logger.Info().
		Str("source", source).
		Str("link", link).
		Bool("dry_run", opts.DryRun).
		Msg("File removed from dotfiles")

	return &RemoveResult{Source: source, Link: link, DryRun: opts.DryRun}, nil
}

// plannedLink finds the target a tree file would be linked to and returns
// it when it currently links to source
func plannedLink(s *internal.Session, fsys filesystem.FS, source string) (string, error) {
	l, err := s.Linker(internal.LinkerOptions{DryRun: true})
	if err != nil {
		return "", err
	}
	plan, err := l.Plan(linker.ScopeAll)
	if err != nil {
		return "", err
	}

	for _, lt := range plan.Targets {
		if lt.Source != source {
			continue
		}
		state, _, err := filesystem.Inspect(fsys, lt.Source, lt.Target)
		if err == nil && state == filesystem.TargetLinked {
			return lt.Target, nil
		}
		return "", nil
	}
	return "", nil
}
