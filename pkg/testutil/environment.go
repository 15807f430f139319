package testutil

import (
	"path/filepath"
	"testing"
)

// Environment is an isolated dotfiles root and home directory
type Environment struct {
	t    *testing.T
	root string
	home string
}

// FileTree describes files to create: keys are slash-separated relative
// paths, values are file contents
type FileTree map[string]string

// NewEnvironment creates <tmp>/dotfiles and <tmp>/home and points HOME,
// XDG_CONFIG_HOME and XDG_STATE_HOME into the temp dir. DOTFILES_ROOT is
// cleared so root discovery cannot escape the test.
func NewEnvironment(t *testing.T) *Environment {
	t.Helper()

	base := t.TempDir()
	env := &Environment{
		t:    t,
		root: CreateDir(t, base, "dotfiles"),
		home: CreateDir(t, base, "home"),
	}

	t.Setenv("HOME", env.home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(base, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(base, "state"))
	t.Setenv("DOTFILES_ROOT", "")
	return env
}

// Root returns the dotfiles root
func (env *Environment) Root() string {
	return env.root
}

// Home returns the home directory
func (env *Environment) Home() string {
	return env.home
}

// RootPath joins rel onto the dotfiles root
func (env *Environment) RootPath(rel string) string {
	return filepath.Join(env.root, filepath.FromSlash(rel))
}

// HomePath joins rel onto the home directory
func (env *Environment) HomePath(rel string) string {
	return filepath.Join(env.home, filepath.FromSlash(rel))
}

// WithDotfiles creates tree under the dotfiles root
func (env *Environment) WithDotfiles(tree FileTree) *Environment {
	env.t.Helper()
	for rel, content := range tree {
		CreateFile(env.t, env.root, filepath.FromSlash(rel), content)
	}
	return env
}

// WithHome creates tree under the home directory
func (env *Environment) WithHome(tree FileTree) *Environment {
	env.t.Helper()
	for rel, content := range tree {
		CreateFile(env.t, env.home, filepath.FromSlash(rel), content)
	}
	return env
}

// T returns the test the environment belongs to
func (env *Environment) T() *testing.T {
	return env.t
}
