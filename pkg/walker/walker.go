// Package walker discovers the entries of a dotfiles tree.
//
// Walks are lazy: entries are produced as the tree is read and a consumer
// that stops ranging stops the walk. Every call performs a fresh walk.
package walker

import (
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"slices"

	"github.com/arthur-debert/dotfiles/pkg/errors"
)

// Kind tells the linker how an entry maps into the home directory
type Kind int

const (
	// KindRegular entries mirror their relative path under $HOME
	KindRegular Kind = iota
	// KindBin entries are immediate children of the flatten directory
	KindBin
	// KindOverride entries live under the overrides directory
	KindOverride
)

// String returns the name used in logs and reports
func (k Kind) String() string {
	switch k {
	case KindRegular:
		return "regular"
	case KindBin:
		return "bin"
	case KindOverride:
		return "override"
	default:
		return "unknown"
	}
}

// Entry is one file-system path found in the dotfiles tree
type Entry struct {
	// RelPath is relative to the walked directory, slash separated by the OS
	RelPath string
	// AbsPath is the absolute source path
	AbsPath string
	IsDir   bool
	Kind    Kind
}

// Options control which root-level names are special
type Options struct {
	// Ignore lists root-level names that are never linked
	Ignore []string
	// BinDir is the root-level directory flattened into ~/.local/bin
	BinDir string
	// OverridesDir is the root-level directory holding machine variants.
	// It is skipped by Walk and read with WalkFiles.
	OverridesDir string
}

// Walk yields every linkable file below root followed by the immediate
// children of the bin directory. Directories are recursed into and not
// yielded themselves. Read errors are yielded with an empty Entry and the
// walk continues past the unreadable path.
func Walk(root string, opts Options) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		if !walkTree(root, KindRegular, func(rel string) bool {
			return isRootSpecial(rel, opts)
		}, yield) {
			return
		}
		if opts.BinDir != "" {
			walkFlat(filepath.Join(root, opts.BinDir), yield)
		}
	}
}

// WalkFiles yields every non-directory below dir with paths relative to
// dir. Files and directories whose base name is in ignore are skipped at
// any depth. A missing dir yields nothing.
func WalkFiles(dir string, kind Kind, ignore ...string) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return
		}
		walkTree(dir, kind, func(rel string) bool {
			return slices.Contains(ignore, filepath.Base(rel))
		}, yield)
	}
}

// walkTree returns false when the consumer stopped the iteration
func walkTree(root string, kind Kind, skip func(rel string) bool, yield func(Entry, error) bool) bool {
	stopped := false
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if !yield(Entry{}, errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", path)) {
				stopped = true
				return filepath.SkipAll
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if path == root {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}

		if skip(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		if !yield(Entry{RelPath: rel, AbsPath: path, IsDir: false, Kind: kind}, nil) {
			stopped = true
			return filepath.SkipAll
		}
		return nil
	})
	return !stopped
}

func walkFlat(dir string, yield func(Entry, error) bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			yield(Entry{}, errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", dir))
		}
		return
	}

	for _, e := range entries {
		entry := Entry{
			RelPath: e.Name(),
			AbsPath: filepath.Join(dir, e.Name()),
			IsDir:   e.IsDir(),
			Kind:    KindBin,
		}
		if !yield(entry, nil) {
			return
		}
	}
}

// isRootSpecial reports whether a root-level relative path is handled
// outside the regular mirror
func isRootSpecial(rel string, opts Options) bool {
	if filepath.Dir(rel) != "." {
		return false
	}
	if rel == opts.BinDir || rel == opts.OverridesDir {
		return true
	}
	return slices.Contains(opts.Ignore, rel)
}
