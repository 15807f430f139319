package status

import (
	"context"
	"testing"

	"github.com/arthur-debert/dotfiles/pkg/commands/apply"
	"github.com/arthur-debert/dotfiles/pkg/commands/internal"
	"github.com/arthur-debert/dotfiles/pkg/linker"
	"github.com/arthur-debert/dotfiles/pkg/machine"
	linkstatus "github.com/arthur-debert/dotfiles/pkg/status"
	"github.com/arthur-debert/dotfiles/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T, env *testutil.Environment, overrides map[string]interface{}) *internal.Session {
	t.Helper()
	s, err := internal.NewSession(internal.SessionOptions{
		Root:      env.Root(),
		Overrides: overrides,
		Detect: func() (machine.Machine, error) {
			return machine.Machine{Hostname: "box", OS: "Linux"}, nil
		},
	})
	require.NoError(t, err)
	return s
}

func stateOf(t *testing.T, report *linkstatus.Report, target string) linkstatus.State {
	t.Helper()
	for _, e := range report.Entries {
		if e.Target == target {
			return e.State
		}
	}
	require.Failf(t, "no entry", "no status entry for %s", target)
	return ""
}

func TestStatus_ClassifiesPlannedLinks(t *testing.T) {
	env := testutil.NewEnvironment(t).
		WithDotfiles(testutil.FileTree{
			".linked":                       "",
			".missing":                      "",
			".stale":                        "",
			".conflict":                     "",
			"overrides/hostname.box@.host":  "",
			"overrides/hostname.other@.far": "",
		}).
		WithHome(testutil.FileTree{".conflict": "mine"})
	testutil.CreateSymlink(t, env.RootPath(".linked"), env.HomePath(".linked"))
	testutil.CreateSymlink(t, "/nowhere", env.HomePath(".stale"))

	s := newSession(t, env, map[string]interface{}{"self.mode": "off"})
	report, err := Status(StatusOptions{Session: s})
	require.NoError(t, err)

	assert.Equal(t, linkstatus.StateLinked, stateOf(t, report, env.HomePath(".linked")))
	assert.Equal(t, linkstatus.StateMissing, stateOf(t, report, env.HomePath(".missing")))
	assert.Equal(t, linkstatus.StateStale, stateOf(t, report, env.HomePath(".stale")))
	assert.Equal(t, linkstatus.StateConflict, stateOf(t, report, env.HomePath(".conflict")))
	assert.Equal(t, linkstatus.StateMissing, stateOf(t, report, env.HomePath(".host")))

	require.Len(t, report.Problems, 1)
	assert.Equal(t, linker.OutcomeSkipped, report.Problems[0].Outcome)
	assert.False(t, report.Clean())

	// status never changes anything
	testutil.AssertNotExists(t, env.HomePath(".missing"))
	testutil.AssertFileContent(t, env.HomePath(".conflict"), "mine")
}

func TestStatus_CleanAfterApply(t *testing.T) {
	env := testutil.NewEnvironment(t).WithDotfiles(testutil.FileTree{
		".vimrc":   "",
		"bin/tool": "",
	})
	exe := testutil.CreateFile(t, t.TempDir(), "dotfiles", "binary")
	s := newSession(t, env, nil)

	noSelf := newSession(t, env, map[string]interface{}{"self.mode": "off"})
	_, err := apply.Apply(context.Background(), apply.ApplyOptions{Session: noSelf})
	require.NoError(t, err)
	testutil.CreateSymlink(t, exe, env.HomePath(".local/bin/dotfiles"))

	report, err := Status(StatusOptions{
		Session:    s,
		Executable: func() (string, error) { return exe, nil },
	})
	require.NoError(t, err)
	assert.Len(t, report.Entries, 3)
	assert.True(t, report.Clean())
	assert.Equal(t, 3, report.Counts()[linkstatus.StateLinked])
}

func TestStatus_BinEntryOwnsSelfTarget(t *testing.T) {
	env := testutil.NewEnvironment(t).WithDotfiles(testutil.FileTree{"bin/dotfiles": ""})
	exe := testutil.CreateFile(t, t.TempDir(), "dotfiles", "binary")
	s := newSession(t, env, nil)

	_, err := apply.Apply(context.Background(), apply.ApplyOptions{Session: s})
	require.NoError(t, err)

	report, err := Status(StatusOptions{
		Session:    s,
		Executable: func() (string, error) { return exe, nil },
	})
	require.NoError(t, err)
	require.Len(t, report.Entries, 1)
	assert.Equal(t, linker.KindBin, report.Entries[0].Kind)
	assert.True(t, report.Clean())
}
