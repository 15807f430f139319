package apply

import (
	"context"

	"github.com/arthur-debert/dotfiles/pkg/commands/internal"
	"github.com/arthur-debert/dotfiles/pkg/linker"
	"github.com/arthur-debert/dotfiles/pkg/logging"
)

// ApplyOptions holds options for the apply command
type ApplyOptions struct {
	Session   *internal.Session
	Scope     linker.Scope
	Policy    linker.Policy
	DryRun    bool
	Confirmer linker.Confirmer
}

// Apply runs a link pass over the requested scope. Per-entry failures are
// in the report; the error is set for setup failures and cancellation.
func Apply(ctx context.Context, opts ApplyOptions) (*linker.Report, error) {
	logger := logging.GetLogger("commands.apply")

	scope := opts.Scope
	if scope == "" {
		scope = linker.ScopeAll
	}

	l, err := opts.Session.Linker(internal.LinkerOptions{
		Policy:    opts.Policy,
		DryRun:    opts.DryRun,
		Confirmer: opts.Confirmer,
	})
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("root", opts.Session.Paths.Root()).
		Str("scope", string(scope)).
		Str("policy", string(l.Policy())).
		Str("hostname", opts.Session.Machine.Hostname).
		Str("os", opts.Session.Machine.OS).
		Bool("dry_run", opts.DryRun).
		Msg("Applying dotfiles")

	return l.Run(ctx, scope)
}
