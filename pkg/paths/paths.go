package paths

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/dotfiles/pkg/errors"
)

// Environment variable names
const (
	// EnvDotfilesRoot is the primary environment variable for dotfiles location
	EnvDotfilesRoot = "DOTFILES_ROOT"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// DefaultDotfilesDir is the directory under $HOME tried before falling back to cwd
const DefaultDotfilesDir = "dotfiles"

// Paths holds the resolved roots of a run
type Paths struct {
	root         string
	home         string
	usedFallback bool
}

// New resolves the dotfiles root and the home directory. An empty root is
// discovered with FindDotfilesRoot. HOME must be set and the root must be
// an existing directory.
func New(root string) (*Paths, error) {
	home, err := HomeDir()
	if err != nil {
		return nil, err
	}

	p := &Paths{home: home}

	if root == "" {
		found, usedFallback, err := FindDotfilesRoot(home)
		if err != nil {
			return nil, err
		}
		root = found
		p.usedFallback = usedFallback
	}

	absRoot, err := filepath.Abs(ExpandHome(root, home))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for dotfiles root")
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrRootMissing, "dotfiles root %s is not readable", absRoot).
			WithDetail("root", absRoot)
	}
	if !info.IsDir() {
		return nil, errors.Newf(errors.ErrRootMissing, "dotfiles root %s is not a directory", absRoot).
			WithDetail("root", absRoot)
	}
	p.root = absRoot

	return p, nil
}

// Root returns the absolute dotfiles root
func (p *Paths) Root() string {
	return p.root
}

// Home returns the directory links are created under
func (p *Paths) Home() string {
	return p.home
}

// UsedFallback reports whether the current directory was used as root
func (p *Paths) UsedFallback() bool {
	return p.usedFallback
}

// HomePath joins rel onto the home directory
func (p *Paths) HomePath(rel string) string {
	return filepath.Join(p.home, rel)
}

// RootPath joins rel onto the dotfiles root
func (p *Paths) RootPath(rel string) string {
	return filepath.Join(p.root, rel)
}

// InRoot reports whether path lies inside the dotfiles root
func (p *Paths) InRoot(path string) bool {
	return ContainsPath(p.root, path)
}

// InHome reports whether path lies inside the home directory
func (p *Paths) InHome(path string) bool {
	return ContainsPath(p.home, path)
}

// HomeDir reads $HOME. Unlike os.UserHomeDir it does not consult the user
// database; links are always created under the HOME the user runs with.
func HomeDir() (string, error) {
	home := os.Getenv(EnvHome)
	if home == "" {
		return "", errors.New(errors.ErrHomeUnset, "HOME is not set")
	}
	return filepath.Clean(home), nil
}

// FindDotfilesRoot determines the dotfiles root using the following priority:
//  1. DOTFILES_ROOT environment variable
//  2. Git repository root of the current directory
//  3. ~/dotfiles, when it exists
//  4. Current working directory (fallback)
func FindDotfilesRoot(home string) (string, bool, error) {
	if root := os.Getenv(EnvDotfilesRoot); root != "" {
		return ExpandHome(root, home), false, nil
	}

	if gitRoot, err := findGitRoot(); err == nil {
		return gitRoot, false, nil
	}

	candidate := filepath.Join(home, DefaultDotfilesDir)
	if info, err := os.Stat(candidate); err == nil && info.IsDir() {
		return candidate, false, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", false, errors.Wrapf(err, errors.ErrFileAccess, "failed to get current directory")
	}
	return cwd, true, nil
}

// findGitRoot attempts to find the root of the current git repository
func findGitRoot() (string, error) {
	output, err := exec.Command("git", "rev-parse", "--show-toplevel").Output()
	if err != nil {
		return "", err
	}

	gitRoot := strings.TrimSpace(string(output))
	if gitRoot == "" {
		return "", errors.New(errors.ErrNotFound, "git root is empty")
	}
	return gitRoot, nil
}

// ExpandHome expands a leading ~ or ~/ to home
func ExpandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") || strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		return filepath.Join(home, path[2:])
	}
	return path
}

// ContainsPath checks if child is contained within parent.
// Both paths are cleaned before comparison.
func ContainsPath(parent, child string) bool {
	rel, err := filepath.Rel(filepath.Clean(parent), filepath.Clean(child))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
