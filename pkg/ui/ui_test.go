package ui_test

import (
	"bytes"
	"testing"

	"github.com/arthur-debert/dotfiles/pkg/errors"
	"github.com/arthur-debert/dotfiles/pkg/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRenderer(t *testing.T) {
	tests := []struct {
		format ui.Format
		want   string
	}{
		{ui.FormatAuto, "hi\n"},
		{ui.FormatText, "hi\n"},
		{ui.FormatJSON, "{\n  \"message\": \"hi\"\n}\n"},
		{ui.FormatYAML, "message: hi\n"},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			var buf bytes.Buffer
			r, err := ui.NewRenderer(tt.format, &buf)
			require.NoError(t, err)
			require.NoError(t, r.RenderMessage("hi"))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestNewRenderer_Unsupported(t *testing.T) {
	_, err := ui.NewRenderer(ui.Format(42), &bytes.Buffer{})
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}
