package view

import (
	"testing"

	"github.com/arthur-debert/dotfiles/pkg/errors"
	"github.com/arthur-debert/dotfiles/pkg/linker"
	"github.com/arthur-debert/dotfiles/pkg/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromLinkReport(t *testing.T) {
	report := &linker.Report{
		Scope: linker.ScopeAll,
		Results: []linker.Result{
			{Target: linker.LinkTarget{Source: "/d/.vimrc", Target: "/h/.vimrc", Kind: linker.KindRegular}, Outcome: linker.OutcomeCreated},
			{
				Target:  linker.LinkTarget{Source: "/d/.bashrc", Target: "/h/.bashrc", Kind: linker.KindRegular},
				Outcome: linker.OutcomeFailed,
				Err:     errors.New(errors.ErrLinkConflict, "exists").WithDetail("target", "/h/.bashrc"),
			},
		},
	}

	v := FromLinkReport(report)
	assert.Equal(t, "all", v.Scope)
	assert.False(t, v.Success)
	assert.Equal(t, 1, v.Counts["created"])
	assert.Equal(t, 1, v.Counts["failed"])
	require.Len(t, v.Results, 2)
	assert.Nil(t, v.Results[0].Error)
	require.NotNil(t, v.Results[1].Error)
	assert.Equal(t, "LINK_CONFLICT", v.Results[1].Error.Code)
	assert.Equal(t, "/h/.bashrc", v.Results[1].Error.Details["target"])
}

func TestFromStatusReport(t *testing.T) {
	report := &status.Report{
		Entries: []status.Entry{
			{LinkTarget: linker.LinkTarget{Source: "/d/a", Target: "/h/a", Kind: linker.KindBin}, State: status.StateLinked},
			{LinkTarget: linker.LinkTarget{Source: "/d/b", Target: "/h/b"}, State: status.StateStale, Destination: "/x"},
		},
		Problems: []linker.Result{{Outcome: linker.OutcomeSkipped, Reason: "no variant for this machine"}},
	}

	v := FromStatusReport(report)
	assert.False(t, v.Clean)
	assert.Equal(t, 1, v.Counts["linked"])
	assert.Equal(t, "bin", v.Entries[0].Kind)
	assert.Equal(t, "/x", v.Entries[1].Destination)
	require.Len(t, v.Problems, 1)
	assert.Equal(t, "skipped", v.Problems[0].Outcome)
}

func TestConvert(t *testing.T) {
	assert.Equal(t, Message{Message: "hi"}, Convert("hi"))
	assert.IsType(t, &LinkReport{}, Convert(&linker.Report{}))
	assert.IsType(t, &StatusReport{}, Convert(&status.Report{}))
	assert.Equal(t, 42, Convert(42))
	assert.Nil(t, NewError(nil))
}

func TestShortPath(t *testing.T) {
	t.Setenv("HOME", "/home/me")
	assert.Equal(t, "~", ShortPath("/home/me"))
	assert.Equal(t, "~/.vimrc", ShortPath("/home/me/.vimrc"))
	assert.Equal(t, "/home/meme/x", ShortPath("/home/meme/x"))
	assert.Equal(t, "/etc/hosts", ShortPath("/etc/hosts"))
	assert.Equal(t, "", ShortPath(""))
}
