package dotfiles

import (
	"fmt"
	"io"

	"github.com/arthur-debert/dotfiles/internal/version"
	"github.com/arthur-debert/dotfiles/pkg/commands"
	"github.com/arthur-debert/dotfiles/pkg/config"
	"github.com/arthur-debert/dotfiles/pkg/errors"
	"github.com/arthur-debert/dotfiles/pkg/linker"
	"github.com/arthur-debert/dotfiles/pkg/logging"
	"github.com/arthur-debert/dotfiles/pkg/ui"
	"github.com/arthur-debert/dotfiles/pkg/ui/confirmations"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// globalOptions holds the values of the persistent flags
type globalOptions struct {
	verbosity int
	dryRun    bool
	conflict  string
	format    string
	root      string
	hostname  string
	os        string
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	initTemplateFormatting()

	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:       "dotfiles [all|regular|overrides]",
		Short:     MsgRootShort,
		Long:      MsgRootLong,
		Version:   version.Version,
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: scopeNames(),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(opts.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd, opts, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.CountVarP(&opts.verbosity, "verbose", "v", MsgFlagVerbose)
	flags.BoolVar(&opts.dryRun, "dry-run", false, MsgFlagDryRun)
	flags.StringVar(&opts.conflict, "conflict", "", MsgFlagConflict)
	flags.StringVar(&opts.format, "format", "auto", MsgFlagFormat)
	flags.StringVar(&opts.root, "root", "", MsgFlagRoot)
	flags.StringVar(&opts.hostname, "hostname", "", MsgFlagHostname)
	flags.StringVar(&opts.os, "os", "", MsgFlagOS)

	_ = rootCmd.RegisterFlagCompletionFunc("conflict", fixedCompletion(policyNames()))
	_ = rootCmd.RegisterFlagCompletionFunc("format", fixedCompletion([]string{"auto", "term", "text", "json", "yaml"}))

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "COMMANDS:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "misc",
		Title: "MISC:",
	})
	rootCmd.SetHelpCommandGroupID("misc")

	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newApplyCmd(opts))
	rootCmd.AddCommand(newStatusCmd(opts))
	rootCmd.AddCommand(newAddCmd(opts))
	rootCmd.AddCommand(newRemoveCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	if err := installTopics(rootCmd); err != nil {
		log.Warn().Err(err).Msg("Help topics unavailable")
	}

	return rootCmd
}

// PrintError renders err in the output format selected on cmd. Errors of
// a finished link run are not printed again since the report shows them.
func PrintError(cmd *cobra.Command, err error) {
	if errors.IsErrorCode(err, errors.ErrLinkFailed) {
		return
	}

	format := ui.FormatText
	if f := cmd.Flag("format"); f != nil {
		if parsed, err := ui.ParseFormat(f.Value.String()); err == nil {
			format = parsed
		}
	}

	r, rerr := ui.NewRenderer(format, cmd.ErrOrStderr())
	if rerr != nil {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return
	}
	_ = r.RenderError(err)
}

func newApplyCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "apply [all|regular|overrides]",
		Short:     MsgApplyShort,
		Long:      MsgApplyLong,
		Example:   MsgApplyExample,
		GroupID:   "core",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: scopeNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd, opts, args)
		},
	}
}

func runApply(cmd *cobra.Command, opts *globalOptions, args []string) error {
	var scopeArg string
	if len(args) > 0 {
		scopeArg = args[0]
	}
	scope, err := linker.ParseScope(scopeArg)
	if err != nil {
		return err
	}

	session, err := newSession(cmd, opts)
	if err != nil {
		return err
	}
	renderer, err := newRenderer(cmd, opts)
	if err != nil {
		return err
	}

	log.Info().
		Str("dotfiles_root", session.Paths.Root()).
		Str("scope", string(scope)).
		Bool("dry_run", opts.dryRun).
		Msg("Applying dotfiles")

	report, runErr := commands.Apply(cmd.Context(), commands.ApplyOptions{
		Session:   session,
		Scope:     scope,
		DryRun:    opts.dryRun,
		Confirmer: confirmations.NewConsole(cmd.InOrStdin(), cmd.ErrOrStderr()),
	})
	if report != nil {
		if err := renderer.RenderResult(report); err != nil {
			return err
		}
	}
	if runErr != nil {
		return runErr
	}

	if failed := len(report.Failed()); failed > 0 {
		return errors.Newf(errors.ErrLinkFailed, MsgErrEntriesFailed, failed, len(report.Results))
	}
	return nil
}

func newStatusCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Short:   MsgStatusShort,
		Long:    MsgStatusLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := newSession(cmd, opts)
			if err != nil {
				return err
			}
			renderer, err := newRenderer(cmd, opts)
			if err != nil {
				return err
			}

			report, err := commands.Status(commands.StatusOptions{Session: session})
			if err != nil {
				return err
			}
			return renderer.RenderResult(report)
		},
	}
}

func newAddCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "add <file>",
		Short:   MsgAddShort,
		Long:    MsgAddLong,
		Example: MsgAddExample,
		GroupID: "core",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := newSession(cmd, opts)
			if err != nil {
				return err
			}
			renderer, err := newRenderer(cmd, opts)
			if err != nil {
				return err
			}

			result, err := commands.Add(cmd.Context(), commands.AddOptions{
				Session: session,
				Path:    args[0],
				DryRun:  opts.dryRun,
			})
			if err != nil {
				return err
			}
			return renderer.RenderResult(result)
		},
	}
}

func newRemoveCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <file>",
		Aliases: []string{"rm"},
		Short:   MsgRemoveShort,
		Long:    MsgRemoveLong,
		Example: MsgRemoveExample,
		GroupID: "core",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := newSession(cmd, opts)
			if err != nil {
				return err
			}
			renderer, err := newRenderer(cmd, opts)
			if err != nil {
				return err
			}

			result, err := commands.Remove(cmd.Context(), commands.RemoveOptions{
				Session: session,
				Path:    args[0],
				DryRun:  opts.dryRun,
			})
			if err != nil {
				return err
			}
			return renderer.RenderResult(result)
		},
	}
}

func newConfigCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "config",
		Short:   MsgConfigShort,
		Long:    MsgConfigLong,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := newSession(cmd, opts)
			if err != nil {
				return err
			}
			renderer, err := newRenderer(cmd, opts)
			if err != nil {
				return err
			}
			return renderer.RenderResult(session.Config)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat, version.Version, version.Commit, version.Date)
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return GenCompletion(cmd.Root(), args[0], cmd.OutOrStdout())
		},
	}
}

// GenCompletion writes the completion script of shell for root
func GenCompletion(root *cobra.Command, shell string, w io.Writer) error {
	switch shell {
	case "bash":
		return root.GenBashCompletionV2(w, true)
	case "zsh":
		return root.GenZshCompletion(w)
	case "fish":
		return root.GenFishCompletion(w, true)
	case "powershell":
		return root.GenPowerShellCompletionWithDesc(w)
	default:
		return errors.Newf(errors.ErrInvalidInput, "unknown shell: %s", shell).
			WithDetail("allowed", []string{"bash", "zsh", "fish", "powershell"})
	}
}

// newSession resolves the dotfiles root, configuration and machine from the
// global flags
func newSession(cmd *cobra.Command, opts *globalOptions) (*commands.Session, error) {
	overrides := map[string]interface{}{}
	if opts.conflict != "" {
		policy, err := linker.ParseConflictPolicy(opts.conflict)
		if err != nil {
			return nil, err
		}
		overrides["link.conflict"] = string(policy)
	}
	if opts.hostname != "" {
		overrides["machine.hostname"] = opts.hostname
	}
	if opts.os != "" {
		overrides["machine.os"] = opts.os
	}

	session, err := commands.NewSession(commands.SessionOptions{
		Root:      opts.root,
		Overrides: overrides,
	})
	if err != nil {
		return nil, err
	}

	if session.Paths.UsedFallback() {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), MsgFallbackWarning+"\n", session.Paths.Root())
	}
	log.Debug().
		Str("root", session.Paths.Root()).
		Str("config", config.UserConfigPath()).
		Str("hostname", session.Machine.Hostname).
		Str("os", session.Machine.OS).
		Msg("Session ready")

	return session, nil
}

// newRenderer creates the renderer for the --format flag on the command's
// output
func newRenderer(cmd *cobra.Command, opts *globalOptions) (ui.Renderer, error) {
	format, err := ui.ParseFormat(opts.format)
	if err != nil {
		return nil, err
	}
	return ui.NewRenderer(format, cmd.OutOrStdout())
}

func fixedCompletion(values []string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}

func scopeNames() []string {
	return []string{string(linker.ScopeAll), string(linker.ScopeRegular), string(linker.ScopeOverrides)}
}

func policyNames() []string {
	names := make([]string, 0, len(linker.Policies))
	for _, p := range linker.Policies {
		names = append(names, string(p))
	}
	return names
}
