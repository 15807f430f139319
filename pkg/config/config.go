package config

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/arthur-debert/dotfiles/pkg/errors"
)

// RootConfigFile is the per-repository configuration file name
const RootConfigFile = ".dotfiles.toml"

// Conflict policies
const (
	ConflictFail   = "fail"
	ConflictSkip   = "skip"
	ConflictBackup = "backup"
	ConflictForce  = "force"
	ConflictPrompt = "prompt"
)

// Self link modes
const (
	SelfLink = "link"
	SelfCopy = "copy"
	SelfOff  = "off"
)

// Config is the effective configuration of a run
type Config struct {
	Link    Link    `koanf:"link" toml:"link" json:"link" yaml:"link"`
	Layout  Layout  `koanf:"layout" toml:"layout" json:"layout" yaml:"layout"`
	Self    Self    `koanf:"self" toml:"self" json:"self" yaml:"self"`
	Machine Machine `koanf:"machine" toml:"machine" json:"machine" yaml:"machine"`
}

// Link holds conflict handling settings
type Link struct {
	Conflict       string   `koanf:"conflict" toml:"conflict" json:"conflict" yaml:"conflict"`
	BackupSuffix   string   `koanf:"backup_suffix" toml:"backup_suffix" json:"backup_suffix" yaml:"backup_suffix"`
	ProtectedPaths []string `koanf:"protected_paths" toml:"protected_paths" json:"protected_paths" yaml:"protected_paths"`
}

// Layout names the special parts of the dotfiles tree
type Layout struct {
	BinDir          string   `koanf:"bin_dir" toml:"bin_dir" json:"bin_dir" yaml:"bin_dir"`
	BinTarget       string   `koanf:"bin_target" toml:"bin_target" json:"bin_target" yaml:"bin_target"`
	OverridesDir    string   `koanf:"overrides_dir" toml:"overrides_dir" json:"overrides_dir" yaml:"overrides_dir"`
	GitignoreSource string   `koanf:"gitignore_source" toml:"gitignore_source" json:"gitignore_source" yaml:"gitignore_source"`
	GitignoreTarget string   `koanf:"gitignore_target" toml:"gitignore_target" json:"gitignore_target" yaml:"gitignore_target"`
	Ignore          []string `koanf:"ignore" toml:"ignore" json:"ignore" yaml:"ignore"`
}

// Self controls how the tool installs itself into the bin target
type Self struct {
	Mode string `koanf:"mode" toml:"mode" json:"mode" yaml:"mode"`
	Name string `koanf:"name" toml:"name" json:"name" yaml:"name"`
}

// Machine pins the values used for override matching. Empty means detect.
type Machine struct {
	Hostname string `koanf:"hostname" toml:"hostname" json:"hostname" yaml:"hostname"`
	OS       string `koanf:"os" toml:"os" json:"os" yaml:"os"`
}

var (
	conflictPolicies = []string{ConflictFail, ConflictSkip, ConflictBackup, ConflictForce, ConflictPrompt}
	selfModes        = []string{SelfLink, SelfCopy, SelfOff}
)

// Validate checks enumerated settings and required names
func (c *Config) Validate() error {
	if !slices.Contains(conflictPolicies, c.Link.Conflict) {
		return errors.Newf(errors.ErrConfigValid, "unknown conflict policy %q", c.Link.Conflict).
			WithDetail("allowed", conflictPolicies)
	}
	if !slices.Contains(selfModes, c.Self.Mode) {
		return errors.Newf(errors.ErrConfigValid, "unknown self mode %q", c.Self.Mode).
			WithDetail("allowed", selfModes)
	}
	if c.Link.Conflict == ConflictBackup && c.Link.BackupSuffix == "" {
		return errors.New(errors.ErrConfigValid, "backup conflict policy requires link.backup_suffix")
	}
	if c.Layout.BinTarget == "" {
		return errors.New(errors.ErrConfigValid, "layout.bin_target must not be empty")
	}
	if c.Self.Mode != SelfOff && c.Self.Name == "" {
		return errors.New(errors.ErrConfigValid, "self.name must not be empty")
	}
	return nil
}

// IsProtected reports whether rel (relative to $HOME) is, or lives under, a protected path
func (c *Config) IsProtected(rel string) bool {
	rel = filepath.ToSlash(filepath.Clean(rel))
	for _, p := range c.Link.ProtectedPaths {
		p = strings.TrimSuffix(filepath.ToSlash(p), "/")
		if rel == p || strings.HasPrefix(rel, p+"/") {
			return true
		}
	}
	return false
}
