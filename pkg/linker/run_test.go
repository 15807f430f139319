package linker

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/dotfiles/pkg/config"
	"github.com/arthur-debert/dotfiles/pkg/errors"
	"github.com/arthur-debert/dotfiles/pkg/machine"
	"github.com/arthur-debert/dotfiles/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_MirrorsRegularEntries(t *testing.T) {
	env := testutil.NewEnvironment(t).WithDotfiles(testutil.FileTree{
		".vimrc":                   "vim",
		".config/git/config":       "git",
		".config/fish/config.fish": "fish",
		"README.md":                "docs",
		".git/HEAD":                "ref",
	})
	l := newTestLinker(t, env, func(o *Options) { o.Config.Self.Mode = config.SelfOff })

	report, err := l.Run(context.Background(), ScopeAll)
	require.NoError(t, err)
	assert.False(t, report.HasFailures())

	for _, rel := range []string{".vimrc", ".config/git/config", ".config/fish/config.fish"} {
		target := env.HomePath(rel)
		testutil.AssertSymlink(t, target, env.RootPath(rel))
		resolved, err := filepath.EvalSymlinks(target)
		require.NoError(t, err)
		expected, err := filepath.EvalSymlinks(env.RootPath(rel))
		require.NoError(t, err)
		assert.Equal(t, expected, resolved)
	}

	testutil.AssertNotExists(t, env.HomePath("README.md"))
	testutil.AssertNotExists(t, env.HomePath(".git"))
	assert.Len(t, report.Results, 3)
	assert.Equal(t, 3, report.Counts()[OutcomeCreated])
}

func TestRun_FlattensBin(t *testing.T) {
	env := testutil.NewEnvironment(t).WithDotfiles(testutil.FileTree{
		"bin/extract":      "#!/bin/sh",
		"bin/tools/helper": "#!/bin/sh",
	})
	l := newTestLinker(t, env, func(o *Options) { o.Config.Self.Mode = config.SelfOff })

	report, err := l.Run(context.Background(), ScopeRegular)
	require.NoError(t, err)
	assert.False(t, report.HasFailures())

	testutil.AssertSymlink(t, env.HomePath(".local/bin/extract"), env.RootPath("bin/extract"))
	testutil.AssertSymlink(t, env.HomePath(".local/bin/tools"), env.RootPath("bin/tools"))
	testutil.AssertNotExists(t, env.HomePath("bin"))
	assert.Equal(t, KindBin, resultFor(t, report, env.HomePath(".local/bin/extract")).Target.Kind)
}

func TestRun_GitignoreGlobal(t *testing.T) {
	env := testutil.NewEnvironment(t).WithDotfiles(testutil.FileTree{
		".gitignore_global":          "*.swp",
		".gitignore":                 "repo only",
		"projects/.gitignore_global": "*.o",
	})
	l := newTestLinker(t, env, func(o *Options) { o.Config.Self.Mode = config.SelfOff })

	_, err := l.Run(context.Background(), ScopeAll)
	require.NoError(t, err)

	testutil.AssertSymlink(t, env.HomePath(".gitignore"), env.RootPath(".gitignore_global"))
	testutil.AssertSymlink(t, env.HomePath("projects/.gitignore"), env.RootPath("projects/.gitignore_global"))
	testutil.AssertNotExists(t, env.HomePath(".gitignore_global"))
}

func TestRun_SecondRunIsNoOp(t *testing.T) {
	env := testutil.NewEnvironment(t).WithDotfiles(testutil.FileTree{
		".vimrc":             "",
		"bin/tool":           "",
		"overrides/.profile": "",
	})
	l := newTestLinker(t, env, nil)

	first, err := l.Run(context.Background(), ScopeAll)
	require.NoError(t, err)
	require.False(t, first.HasFailures())

	second, err := l.Run(context.Background(), ScopeAll)
	require.NoError(t, err)
	assert.Len(t, second.Results, len(first.Results))
	for _, r := range second.Results {
		assert.Equal(t, OutcomeUnchanged, r.Outcome, r.Target.Target)
	}
}

func TestRun_BinEntryOwnsSelfTarget(t *testing.T) {
	env := testutil.NewEnvironment(t).WithDotfiles(testutil.FileTree{"bin/dotfiles": "#!/bin/sh"})
	l := newTestLinker(t, env, nil)

	first, err := l.Run(context.Background(), ScopeAll)
	require.NoError(t, err)
	require.False(t, first.HasFailures())
	testutil.AssertSymlink(t, env.HomePath(".local/bin/dotfiles"), env.RootPath("bin/dotfiles"))

	self := first.Results[len(first.Results)-1]
	assert.Equal(t, KindSelf, self.Target.Kind)
	assert.Equal(t, OutcomeSkipped, self.Outcome)
	assert.Contains(t, self.Reason, "dotfiles")

	second, err := l.Run(context.Background(), ScopeAll)
	require.NoError(t, err)
	for _, r := range second.Results {
		assert.NotEqual(t, OutcomeReplaced, r.Outcome, r.Target.Target)
		assert.NotEqual(t, OutcomeCreated, r.Outcome, r.Target.Target)
	}
	testutil.AssertSymlink(t, env.HomePath(".local/bin/dotfiles"), env.RootPath("bin/dotfiles"))
}

func TestRun_DuplicateTargetsKeepFirstEntry(t *testing.T) {
	env := testutil.NewEnvironment(t).WithDotfiles(testutil.FileTree{
		".local/bin/x":               "mirrored",
		"bin/x":                      "flattened",
		"projects/.gitignore":        "repo",
		"projects/.gitignore_global": "global",
	})
	l := newTestLinker(t, env, func(o *Options) { o.Config.Self.Mode = config.SelfOff })

	report, err := l.Run(context.Background(), ScopeAll)
	require.NoError(t, err)
	assert.False(t, report.HasFailures())

	testutil.AssertSymlink(t, env.HomePath(".local/bin/x"), env.RootPath(".local/bin/x"))
	testutil.AssertSymlink(t, env.HomePath("projects/.gitignore"), env.RootPath("projects/.gitignore"))

	skipped := report.Skipped()
	require.Len(t, skipped, 2)
	losers := map[string]string{}
	for _, r := range skipped {
		losers[filepath.ToSlash(r.Target.RelPath)] = r.Reason
	}
	assert.Equal(t, "target already linked from "+filepath.Join(".local", "bin", "x"), losers["x"])
	assert.Equal(t, "target already linked from "+filepath.Join("projects", ".gitignore"), losers["projects/.gitignore_global"])

	second, err := l.Run(context.Background(), ScopeAll)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Counts()[OutcomeUnchanged])
	assert.Len(t, second.Skipped(), 2)
}

func TestRun_IgnoredNamesUnderOverrides(t *testing.T) {
	env := testutil.NewEnvironment(t).WithDotfiles(testutil.FileTree{
		"overrides/.DS_Store":       "",
		"overrides/os.linux@.xinit": "",
	})
	l := newTestLinker(t, env, func(o *Options) { o.Config.Self.Mode = config.SelfOff })

	report, err := l.Run(context.Background(), ScopeOverrides)
	require.NoError(t, err)
	assert.Len(t, report.Results, 1)
	testutil.AssertSymlink(t, env.HomePath(".xinit"), env.RootPath("overrides/os.linux@.xinit"))
	testutil.AssertNotExists(t, env.HomePath(".DS_Store"))
}

func TestRun_OverridePrecedence(t *testing.T) {
	variants := testutil.FileTree{
		"overrides/hostname.box@.vimrc": "host",
		"overrides/os.linux@.vimrc":     "os",
		"overrides/.vimrc":              "default",
	}

	tests := []struct {
		name    string
		machine machine.Machine
		want    string
	}{
		{name: "hostname wins", machine: machine.Machine{Hostname: "box", OS: "Linux"}, want: "overrides/hostname.box@.vimrc"},
		{name: "os when hostname differs", machine: machine.Machine{Hostname: "other", OS: "Linux"}, want: "overrides/os.linux@.vimrc"},
		{name: "default otherwise", machine: machine.Machine{Hostname: "other", OS: "Darwin"}, want: "overrides/.vimrc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := testutil.NewEnvironment(t).WithDotfiles(variants)
			l := newTestLinker(t, env, func(o *Options) {
				o.Machine = tt.machine
				o.Config.Self.Mode = config.SelfOff
			})

			report, err := l.Run(context.Background(), ScopeOverrides)
			require.NoError(t, err)
			require.Len(t, report.Results, 1)
			testutil.AssertSymlink(t, env.HomePath(".vimrc"), env.RootPath(tt.want))
		})
	}
}

func TestRun_OverrideWithoutMatchIsSkipped(t *testing.T) {
	env := testutil.NewEnvironment(t).WithDotfiles(testutil.FileTree{
		"overrides/hostname.elsewhere@.tmux.conf": "",
	})
	l := newTestLinker(t, env, func(o *Options) { o.Config.Self.Mode = config.SelfOff })

	report, err := l.Run(context.Background(), ScopeAll)
	require.NoError(t, err)
	assert.False(t, report.HasFailures())
	require.Len(t, report.Skipped(), 1)
	assert.Equal(t, "no variant for this machine", report.Skipped()[0].Reason)
	testutil.AssertNotExists(t, env.HomePath(".tmux.conf"))
}

func TestRun_AmbiguousOverrideLinksNothing(t *testing.T) {
	env := testutil.NewEnvironment(t).WithDotfiles(testutil.FileTree{
		"overrides/os.linux@.bashrc": "a",
		"overrides/os.wsl@.bashrc":   "b",
		".bashrc":                    "regular",
	})
	l := newTestLinker(t, env, func(o *Options) {
		o.Machine = machine.Machine{Hostname: "box", OS: "Linux", Release: "5.15.90.1-microsoft-standard-WSL2"}
		o.Config.Self.Mode = config.SelfOff
	})

	report, err := l.Run(context.Background(), ScopeAll)
	require.NoError(t, err)
	assert.True(t, report.HasFailures())
	require.Len(t, report.Failed(), 1)
	assert.True(t, errors.IsErrorCode(report.Failed()[0].Err, errors.ErrAmbiguousOverride))

	// the regular entry is still linked since nothing was selected for the name
	testutil.AssertSymlink(t, env.HomePath(".bashrc"), env.RootPath(".bashrc"))
}

func TestRun_OverrideShadowsRegularEntry(t *testing.T) {
	env := testutil.NewEnvironment(t).WithDotfiles(testutil.FileTree{
		".config/app.conf":                    "regular",
		"overrides/.config/os.linux@app.conf": "linux",
	})
	l := newTestLinker(t, env, func(o *Options) { o.Config.Self.Mode = config.SelfOff })

	report, err := l.Run(context.Background(), ScopeAll)
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	testutil.AssertSymlink(t, env.HomePath(".config/app.conf"), env.RootPath("overrides/.config/os.linux@app.conf"))

	// a regular-only pass must not flip the link back
	report, err = l.Run(context.Background(), ScopeRegular)
	require.NoError(t, err)
	assert.Empty(t, report.Results)
	testutil.AssertSymlink(t, env.HomePath(".config/app.conf"), env.RootPath("overrides/.config/os.linux@app.conf"))
}

func TestRun_InvalidOverrideFails(t *testing.T) {
	env := testutil.NewEnvironment(t).WithDotfiles(testutil.FileTree{
		"overrides/arch.x86@.inputrc": "",
	})
	l := newTestLinker(t, env, func(o *Options) { o.Config.Self.Mode = config.SelfOff })

	report, err := l.Run(context.Background(), ScopeOverrides)
	require.NoError(t, err)
	require.Len(t, report.Failed(), 1)
	failed := report.Failed()[0]
	assert.True(t, errors.IsErrorCode(failed.Err, errors.ErrInvalidOverride))
	assert.Equal(t, env.RootPath("overrides/arch.x86@.inputrc"), failed.Target.Source)
}

func TestRun_Scopes(t *testing.T) {
	tree := testutil.FileTree{
		".vimrc":             "",
		"overrides/.profile": "",
	}

	tests := []struct {
		scope   Scope
		linked  []string
		missing []string
	}{
		{scope: ScopeAll, linked: []string{".vimrc", ".profile", ".local/bin/dotfiles"}},
		{scope: ScopeRegular, linked: []string{".vimrc", ".local/bin/dotfiles"}, missing: []string{".profile"}},
		{scope: ScopeOverrides, linked: []string{".profile"}, missing: []string{".vimrc", ".local/bin/dotfiles"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.scope), func(t *testing.T) {
			env := testutil.NewEnvironment(t).WithDotfiles(tree)
			l := newTestLinker(t, env, nil)

			report, err := l.Run(context.Background(), tt.scope)
			require.NoError(t, err)
			assert.False(t, report.HasFailures())
			assert.Equal(t, tt.scope, report.Scope)

			for _, rel := range tt.linked {
				assert.True(t, testutil.IsSymlink(t, env.HomePath(rel)), rel)
			}
			for _, rel := range tt.missing {
				testutil.AssertNotExists(t, env.HomePath(rel))
			}
		})
	}
}

func TestRun_FailuresDoNotStopTheRun(t *testing.T) {
	env := testutil.NewEnvironment(t).
		WithDotfiles(testutil.FileTree{".a": "", ".b": "", ".c": ""}).
		WithHome(testutil.FileTree{".b": "mine"})
	l := newTestLinker(t, env, func(o *Options) { o.Config.Self.Mode = config.SelfOff })

	report, err := l.Run(context.Background(), ScopeAll)
	require.NoError(t, err)
	assert.True(t, report.HasFailures())

	counts := report.Counts()
	assert.Equal(t, 2, counts[OutcomeCreated])
	assert.Equal(t, 1, counts[OutcomeFailed])
	assert.True(t, errors.IsErrorCode(resultFor(t, report, env.HomePath(".b")).Err, errors.ErrLinkConflict))
	testutil.AssertFileContent(t, env.HomePath(".b"), "mine")
}

func TestRun_ProtectedPathsAreSkipped(t *testing.T) {
	env := testutil.NewEnvironment(t).WithDotfiles(testutil.FileTree{
		".ssh/id_rsa": "secret",
		".ssh/config": "Host *",
	})
	l := newTestLinker(t, env, func(o *Options) { o.Config.Self.Mode = config.SelfOff })

	report, err := l.Run(context.Background(), ScopeAll)
	require.NoError(t, err)

	skipped := resultFor(t, report, env.HomePath(".ssh/id_rsa"))
	assert.Equal(t, OutcomeSkipped, skipped.Outcome)
	assert.Equal(t, "protected path", skipped.Reason)
	testutil.AssertNotExists(t, env.HomePath(".ssh/id_rsa"))
	testutil.AssertSymlink(t, env.HomePath(".ssh/config"), env.RootPath(".ssh/config"))
}

func TestRun_DryRunMutatesNothing(t *testing.T) {
	env := testutil.NewEnvironment(t).
		WithDotfiles(testutil.FileTree{
			".vimrc":             "",
			".bashrc":            "",
			"bin/tool":           "",
			"overrides/.profile": "",
		}).
		WithHome(testutil.FileTree{".bashrc": "mine"})
	stale := env.HomePath(".vimrc")
	testutil.CreateSymlink(t, "/nowhere", stale)

	l := newTestLinker(t, env, func(o *Options) {
		o.DryRun = true
		o.Policy = PolicyBackup
	})

	report, err := l.Run(context.Background(), ScopeAll)
	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.Equal(t, OutcomeReplaced, resultFor(t, report, stale).Outcome)
	assert.Equal(t, OutcomeBackedUp, resultFor(t, report, env.HomePath(".bashrc")).Outcome)

	testutil.AssertSymlink(t, stale, "/nowhere")
	testutil.AssertFileContent(t, env.HomePath(".bashrc"), "mine")
	testutil.AssertNotExists(t, env.HomePath(".bashrc.dotfiles-bak"))
	testutil.AssertNotExists(t, env.HomePath(".local"))
	testutil.AssertNotExists(t, env.HomePath(".profile"))
}

func TestRun_Cancelled(t *testing.T) {
	env := testutil.NewEnvironment(t).WithDotfiles(testutil.FileTree{".a": "", ".b": ""})
	l := newTestLinker(t, env, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := l.Run(ctx, ScopeAll)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCancelled))
	assert.Empty(t, report.Results)
	testutil.AssertNotExists(t, env.HomePath(".a"))
}

func TestSelfLink_Modes(t *testing.T) {
	t.Run("link", func(t *testing.T) {
		env := testutil.NewEnvironment(t)
		exe := testutil.CreateFile(t, t.TempDir(), "dotfiles", "binary")
		l := newTestLinker(t, env, func(o *Options) {
			o.Executable = func() (string, error) { return exe, nil }
		})

		res, err := l.SelfLink(context.Background())
		require.NoError(t, err)
		require.NotNil(t, res)
		assert.Equal(t, OutcomeCreated, res.Outcome)
		assert.Equal(t, KindSelf, res.Target.Kind)

		resolved, err := filepath.EvalSymlinks(exe)
		require.NoError(t, err)
		testutil.AssertSymlink(t, env.HomePath(".local/bin/dotfiles"), resolved)

		res, err = l.SelfLink(context.Background())
		require.NoError(t, err)
		assert.Equal(t, OutcomeUnchanged, res.Outcome)
	})

	t.Run("copy", func(t *testing.T) {
		env := testutil.NewEnvironment(t)
		exe := testutil.CreateFile(t, t.TempDir(), "dotfiles", "binary")
		require.NoError(t, os.Chmod(exe, 0755))
		l := newTestLinker(t, env, func(o *Options) {
			o.Config.Self.Mode = config.SelfCopy
			o.Executable = func() (string, error) { return exe, nil }
		})

		res, err := l.SelfLink(context.Background())
		require.NoError(t, err)
		assert.Equal(t, OutcomeCreated, res.Outcome)
		testutil.AssertFileContent(t, env.HomePath(".local/bin/dotfiles"), "binary")

		res, err = l.SelfLink(context.Background())
		require.NoError(t, err)
		assert.Equal(t, OutcomeUnchanged, res.Outcome)

		require.NoError(t, os.WriteFile(exe, []byte("binary v2"), 0755))
		res, err = l.SelfLink(context.Background())
		require.NoError(t, err)
		assert.Equal(t, OutcomeFailed, res.Outcome)
		assert.True(t, errors.IsErrorCode(res.Err, errors.ErrLinkConflict))
	})

	t.Run("off", func(t *testing.T) {
		env := testutil.NewEnvironment(t)
		l := newTestLinker(t, env, func(o *Options) { o.Config.Self.Mode = config.SelfOff })

		res, err := l.SelfLink(context.Background())
		require.NoError(t, err)
		assert.Nil(t, res)
		testutil.AssertNotExists(t, env.HomePath(".local/bin/dotfiles"))
	})

	t.Run("executable unknown", func(t *testing.T) {
		env := testutil.NewEnvironment(t)
		l := newTestLinker(t, env, func(o *Options) {
			o.Executable = func() (string, error) { return "", os.ErrNotExist }
		})

		res, err := l.SelfLink(context.Background())
		require.NoError(t, err)
		assert.Equal(t, OutcomeFailed, res.Outcome)
		assert.True(t, errors.IsErrorCode(res.Err, errors.ErrSourceMissing))
	})
}

func TestParseScope(t *testing.T) {
	for in, want := range map[string]Scope{"": ScopeAll, "all": ScopeAll, "Regular": ScopeRegular, "overrides": ScopeOverrides} {
		got, err := ParseScope(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseScope("bin")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}
