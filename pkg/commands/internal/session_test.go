package internal

import (
	"testing"

	"github.com/arthur-debert/dotfiles/pkg/errors"
	"github.com/arthur-debert/dotfiles/pkg/linker"
	"github.com/arthur-debert/dotfiles/pkg/machine"
	"github.com/arthur-debert/dotfiles/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedMachine() (machine.Machine, error) {
	return machine.Machine{Hostname: "detected", OS: "Linux"}, nil
}

func TestNewSession(t *testing.T) {
	env := testutil.NewEnvironment(t)

	s, err := NewSession(SessionOptions{Root: env.Root(), Detect: fixedMachine})
	require.NoError(t, err)
	assert.Equal(t, env.Root(), s.Paths.Root())
	assert.Equal(t, "detected", s.Machine.Hostname)
	assert.Equal(t, "fail", s.Config.Link.Conflict)
}

func TestNewSession_PinnedMachineWins(t *testing.T) {
	env := testutil.NewEnvironment(t).WithDotfiles(testutil.FileTree{
		".dotfiles.toml": "[machine]\nos = \"Darwin\"\n",
	})

	s, err := NewSession(SessionOptions{
		Root:      env.Root(),
		Overrides: map[string]interface{}{"machine.hostname": "laptop"},
		Detect:    fixedMachine,
	})
	require.NoError(t, err)
	assert.Equal(t, "laptop", s.Machine.Hostname)
	assert.Equal(t, "Darwin", s.Machine.OS)
}

func TestNewSession_MissingRoot(t *testing.T) {
	env := testutil.NewEnvironment(t)

	_, err := NewSession(SessionOptions{Root: env.RootPath("nope"), Detect: fixedMachine})
	assert.True(t, errors.IsErrorCode(err, errors.ErrRootMissing))
}

func TestSession_Linker(t *testing.T) {
	env := testutil.NewEnvironment(t)
	s, err := NewSession(SessionOptions{Root: env.Root(), Detect: fixedMachine})
	require.NoError(t, err)

	l, err := s.Linker(LinkerOptions{Policy: linker.PolicySkip})
	require.NoError(t, err)
	assert.Equal(t, linker.PolicySkip, l.Policy())
}
