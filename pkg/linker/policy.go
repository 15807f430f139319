package linker

import (
	"context"
	"strings"

	"github.com/arthur-debert/dotfiles/pkg/config"
	"github.com/arthur-debert/dotfiles/pkg/errors"
)

// Policy decides what happens when a real file or directory occupies a
// link target
type Policy string

const (
	// PolicyFail reports a LINK_CONFLICT and leaves the target alone
	PolicyFail Policy = config.ConflictFail
	// PolicySkip leaves the target alone without failing
	PolicySkip Policy = config.ConflictSkip
	// PolicyBackup renames the target aside before linking
	PolicyBackup Policy = config.ConflictBackup
	// PolicyForce removes a regular file before linking. Directories are
	// never removed and still conflict.
	PolicyForce Policy = config.ConflictForce
	// PolicyPrompt asks; yes backs up, no skips
	PolicyPrompt Policy = config.ConflictPrompt
)

// Policies lists every accepted policy
var Policies = []Policy{PolicyFail, PolicySkip, PolicyBackup, PolicyForce, PolicyPrompt}

// ParseConflictPolicy parses a policy name, ignoring case
func ParseConflictPolicy(s string) (Policy, error) {
	p := Policy(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Policies {
		if p == known {
			return p, nil
		}
	}
	return "", errors.Newf(errors.ErrInvalidInput, "unknown conflict policy %q", s).
		WithDetail("allowed", Policies)
}

// Confirmer asks the user a yes/no question
type Confirmer interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// ConfirmerFunc adapts a function to Confirmer
type ConfirmerFunc func(ctx context.Context, question string) (bool, error)

// Confirm calls f
func (f ConfirmerFunc) Confirm(ctx context.Context, question string) (bool, error) {
	return f(ctx, question)
}
