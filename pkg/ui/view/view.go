// Package view converts command results into plain data shared by every
// renderer. Views hold strings only, so they encode as JSON or YAML as is.
package view

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/dotfiles/pkg/errors"
	"github.com/arthur-debert/dotfiles/pkg/linker"
	"github.com/arthur-debert/dotfiles/pkg/status"
)

// Error is the view of a failure
type Error struct {
	Code    string                 `json:"code,omitempty" yaml:"code,omitempty"`
	Message string                 `json:"message" yaml:"message"`
	Details map[string]interface{} `json:"details,omitempty" yaml:"details,omitempty"`
}

// NewError converts err; nil gives nil
func NewError(err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    string(errors.GetErrorCode(err)),
		Message: err.Error(),
		Details: errors.GetErrorDetails(err),
	}
}

// LinkResult is one line of a link report
type LinkResult struct {
	Outcome string `json:"outcome" yaml:"outcome"`
	Kind    string `json:"kind" yaml:"kind"`
	Source  string `json:"source,omitempty" yaml:"source,omitempty"`
	Target  string `json:"target,omitempty" yaml:"target,omitempty"`
	Reason  string `json:"reason,omitempty" yaml:"reason,omitempty"`
	Error   *Error `json:"error,omitempty" yaml:"error,omitempty"`
}

// LinkReport is the view of an apply run
type LinkReport struct {
	Scope   string         `json:"scope" yaml:"scope"`
	DryRun  bool           `json:"dry_run" yaml:"dry_run"`
	Success bool           `json:"success" yaml:"success"`
	Counts  map[string]int `json:"counts" yaml:"counts"`
	Results []LinkResult   `json:"results" yaml:"results"`
}

// FromLinkReport converts a linker report
func FromLinkReport(r *linker.Report) *LinkReport {
	v := &LinkReport{
		Scope:   string(r.Scope),
		DryRun:  r.DryRun,
		Success: !r.HasFailures(),
		Counts:  make(map[string]int),
		Results: make([]LinkResult, 0, len(r.Results)),
	}
	for outcome, n := range r.Counts() {
		v.Counts[outcome.String()] = n
	}
	for _, res := range r.Results {
		v.Results = append(v.Results, LinkResult{
			Outcome: res.Outcome.String(),
			Kind:    string(res.Target.Kind),
			Source:  res.Target.Source,
			Target:  res.Target.Target,
			Reason:  res.Reason,
			Error:   NewError(res.Err),
		})
	}
	return v
}

// StatusEntry is one line of a status report
type StatusEntry struct {
	State       string `json:"state" yaml:"state"`
	Kind        string `json:"kind" yaml:"kind"`
	Source      string `json:"source" yaml:"source"`
	Target      string `json:"target" yaml:"target"`
	Destination string `json:"destination,omitempty" yaml:"destination,omitempty"`
	Message     string `json:"message,omitempty" yaml:"message,omitempty"`
}

// StatusReport is the view of a status check
type StatusReport struct {
	Clean    bool           `json:"clean" yaml:"clean"`
	Counts   map[string]int `json:"counts" yaml:"counts"`
	Entries  []StatusEntry  `json:"entries" yaml:"entries"`
	Problems []LinkResult   `json:"problems,omitempty" yaml:"problems,omitempty"`
}

// FromStatusReport converts a status report
func FromStatusReport(r *status.Report) *StatusReport {
	v := &StatusReport{
		Clean:   r.Clean(),
		Counts:  make(map[string]int),
		Entries: make([]StatusEntry, 0, len(r.Entries)),
	}
	for state, n := range r.Counts() {
		v.Counts[string(state)] = n
	}
	for _, e := range r.Entries {
		v.Entries = append(v.Entries, StatusEntry{
			State:       string(e.State),
			Kind:        string(e.Kind),
			Source:      e.Source,
			Target:      e.Target,
			Destination: e.Destination,
			Message:     e.Message,
		})
	}
	for _, p := range r.Problems {
		v.Problems = append(v.Problems, LinkResult{
			Outcome: p.Outcome.String(),
			Kind:    string(p.Target.Kind),
			Source:  p.Target.Source,
			Target:  p.Target.Target,
			Reason:  p.Reason,
			Error:   NewError(p.Err),
		})
	}
	return v
}

// Message is a single line of output
type Message struct {
	Message string `json:"message" yaml:"message"`
}

// Convert maps known result types to their view; other values pass through
func Convert(result interface{}) interface{} {
	switch v := result.(type) {
	case *linker.Report:
		return FromLinkReport(v)
	case *status.Report:
		return FromStatusReport(v)
	case string:
		return Message{Message: v}
	default:
		return result
	}
}

// ShortPath replaces the home directory prefix with ~
func ShortPath(path string) string {
	home := os.Getenv("HOME")
	if home == "" || path == "" {
		return path
	}
	if path == home {
		return "~"
	}
	if strings.HasPrefix(path, home+string(filepath.Separator)) {
		return "~" + path[len(home):]
	}
	return path
}
