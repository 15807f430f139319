package json

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/arthur-debert/dotfiles/pkg/errors"
	"github.com/arthur-debert/dotfiles/pkg/linker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderResult(t *testing.T) {
	var buf bytes.Buffer
	r, err := New(&buf)
	require.NoError(t, err)

	report := &linker.Report{
		Scope: linker.ScopeAll,
		Results: []linker.Result{
			{Target: linker.LinkTarget{Source: "/d/.vimrc", Target: "/h/.vimrc", Kind: linker.KindRegular}, Outcome: linker.OutcomeCreated},
			{Target: linker.LinkTarget{Source: "/d/.zshrc", Target: "/h/.zshrc", Kind: linker.KindRegular}, Outcome: linker.OutcomeFailed, Err: errors.New(errors.ErrLinkConflict, "busy")},
		},
	}
	require.NoError(t, r.RenderResult(report))

	var got struct {
		Scope   string         `json:"scope"`
		Success bool           `json:"success"`
		Counts  map[string]int `json:"counts"`
		Results []struct {
			Outcome string `json:"outcome"`
			Target  string `json:"target"`
			Error   *struct {
				Code string `json:"code"`
			} `json:"error"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, "all", got.Scope)
	assert.False(t, got.Success)
	assert.Equal(t, 1, got.Counts["created"])
	require.Len(t, got.Results, 2)
	assert.Nil(t, got.Results[0].Error)
	require.NotNil(t, got.Results[1].Error)
	assert.Equal(t, "LINK_CONFLICT", got.Results[1].Error.Code)
}

func TestRenderErrorAndMessage(t *testing.T) {
	var buf bytes.Buffer
	r, err := New(&buf)
	require.NoError(t, err)

	require.NoError(t, r.RenderError(errors.New(errors.ErrHomeUnset, "HOME is not set")))
	assert.Contains(t, buf.String(), `"code": "HOME_UNSET"`)

	buf.Reset()
	require.NoError(t, r.RenderMessage("hello"))
	assert.JSONEq(t, `{"message": "hello"}`, buf.String())
}
