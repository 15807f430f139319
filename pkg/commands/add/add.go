package add

import (
	"context"
	"os"
	"path/filepath"

	"github.com/arthur-debert/dotfiles/pkg/commands/internal"
	"github.com/arthur-debert/dotfiles/pkg/errors"
	"github.com/arthur-debert/dotfiles/pkg/executor"
	"github.com/arthur-debert/dotfiles/pkg/filesystem"
	"github.com/arthur-debert/dotfiles/pkg/logging"
	"github.com/arthur-debert/dotfiles/pkg/paths"
)

// AddOptions holds options for the add command
type AddOptions struct {
	Session *internal.Session
	// Path is the file under $HOME to take over; relative paths resolve
	// against the working directory
	Path   string
	DryRun bool
	// FS is used for inspection; nil means the OS
	FS filesystem.FS
}

// AddResult describes a file moved into the dotfiles tree
type AddResult struct {
	// Link is the original location, now a symlink
	Link string `json:"link" yaml:"link"`
	// Source is the new location inside the dotfiles tree
	Source string `json:"source" yaml:"source"`
	// AlreadyManaged is set when Link already pointed into the tree
	AlreadyManaged bool `json:"already_managed" yaml:"already_managed"`
	DryRun         bool `json:"dry_run" yaml:"dry_run"`
}

// Add moves a regular file under $HOME into the dotfiles tree at the path
// a later apply would link it from, then links it back
func Add(ctx context.Context, opts AddOptions) (*AddResult, error) {
	logger := logging.GetLogger("commands.add")
	s := opts.Session

	fsys := opts.FS
	if fsys == nil {
		fsys = filesystem.NewOS()
	}

	link, err := absPath(opts.Path, s.Paths.Home())
	if err != nil {
		return nil, err
	}

	if !s.Paths.InHome(link) {
		return nil, errors.Newf(errors.ErrInvalidInput, "%s is not under %s", link, s.Paths.Home()).
			WithDetail("path", link)
	}
	if s.Paths.InRoot(link) {
		return nil, errors.Newf(errors.ErrInvalidInput, "%s is already inside the dotfiles tree", link).
			WithDetail("path", link)
	}

	info, err := fsys.Lstat(link)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrNotFound, "%s does not exist", link).WithDetail("path", link)
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to inspect %s", link)
	}

	if info.Mode()&os.ModeSymlink != 0 {
		dest, err := fsys.Readlink(link)
		if err == nil {
			if !filepath.IsAbs(dest) {
				dest = filepath.Join(filepath.Dir(link), dest)
			}
			if s.Paths.InRoot(dest) {
				logger.Info().Str("link", link).Str("source", dest).Msg("File is already managed")
				return &AddResult{Link: link, Source: filepath.Clean(dest), AlreadyManaged: true, DryRun: opts.DryRun}, nil
			}
		}
		return nil, errors.Newf(errors.ErrInvalidInput, "%s is a symlink that is not managed here", link).
			WithDetail("path", link)
	}
	if !info.Mode().IsRegular() {
		return nil, errors.Newf(errors.ErrInvalidInput, "%s is not a regular file", link).
			WithDetail("path", link)
	}

	rel, err := filepath.Rel(s.Paths.Home(), link)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInternal, "failed to relate %s to home", link)
	}
	if s.Config.IsProtected(rel) {
		return nil, errors.Newf(errors.ErrInvalidInput, "%s is a protected path", rel).
			WithDetail("path", link)
	}

	source := s.Paths.RootPath(sourceRel(s, rel))
	if _, err := fsys.Lstat(source); err == nil {
		return nil, errors.Newf(errors.ErrLinkConflict, "%s already exists in the dotfiles tree", source).
			WithDetail("source", source)
	}

	// Copy then remove works across devices, and the file is in the tree
	// before the original goes away.
	exec := executor.New(executor.Options{DryRun: opts.DryRun, FS: fsys})
	tx := exec.Begin("add " + rel).
		EnsureDir(exec, filepath.Dir(source)).
		CopyFile(exec, link, source, info.Mode().Perm()).
		Remove(link).
		Symlink(source, link)
	if err := exec.Commit(ctx, tx); err != nil {
		return nil, err
	}

	logger.Info().
		Str("link", link).
		Str("source", source).
		Bool("dry_run", opts.DryRun).
		Msg("File added to dotfiles")

	return &AddResult{Link: link, Source: source, DryRun: opts.DryRun}, nil
}

// sourceRel maps a path relative to $HOME back to its place in the tree,
// undoing the bin flattening and the gitignore rename
func sourceRel(s *internal.Session, rel string) string {
	layout := s.Config.Layout
	if filepath.Dir(rel) == filepath.Clean(layout.BinTarget) && layout.BinDir != "" {
		return filepath.Join(layout.BinDir, filepath.Base(rel))
	}
	if layout.GitignoreSource != "" && filepath.Base(rel) == layout.GitignoreTarget {
		return filepath.Join(filepath.Dir(rel), layout.GitignoreSource)
	}
	return rel
}

func absPath(path, home string) (string, error) {
	if path == "" {
		return "", errors.New(errors.ErrInvalidInput, "no file given")
	}
	abs, err := filepath.Abs(paths.ExpandHome(path, home))
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInvalidInput, "invalid path %s", path)
	}
	return abs, nil
}
