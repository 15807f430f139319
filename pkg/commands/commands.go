package commands

import (
	"context"

	"github.com/arthur-debert/dotfiles/pkg/commands/add"
	"github.com/arthur-debert/dotfiles/pkg/commands/apply"
	"github.com/arthur-debert/dotfiles/pkg/commands/internal"
	"github.com/arthur-debert/dotfiles/pkg/commands/remove"
	"github.com/arthur-debert/dotfiles/pkg/commands/status"
	"github.com/arthur-debert/dotfiles/pkg/linker"
	linkstatus "github.com/arthur-debert/dotfiles/pkg/status"
)

// Session resolves paths, configuration and the machine once per invocation.
type Session = internal.Session

// SessionOptions configures NewSession.
type SessionOptions = internal.SessionOptions

// NewSession prepares the shared state of a command.
func NewSession(opts SessionOptions) (*Session, error) {
	return internal.NewSession(opts)
}

// ApplyOptions configures Apply.
type ApplyOptions = apply.ApplyOptions

// Apply links the dotfiles tree into $HOME.
func Apply(ctx context.Context, opts ApplyOptions) (*linker.Report, error) {
	return apply.Apply(ctx, opts)
}

// AddOptions configures Add.
type AddOptions = add.AddOptions

// AddResult is returned by Add.
type AddResult = add.AddResult

// Add moves a file from $HOME into the tree and links it back.
func Add(ctx context.Context, opts AddOptions) (*AddResult, error) {
	return add.Add(ctx, opts)
}

// RemoveOptions configures Remove.
type RemoveOptions = remove.RemoveOptions

// RemoveResult is returned by Remove.
type RemoveResult = remove.RemoveResult

// Remove deletes a managed file and its link.
func Remove(ctx context.Context, opts RemoveOptions) (*RemoveResult, error) {
	return remove.Remove(ctx, opts)
}

// StatusOptions configures Status.
type StatusOptions = status.StatusOptions

// Status reports the state of every planned link.
func Status(opts StatusOptions) (*linkstatus.Report, error) {
	return status.Status(opts)
}
