// Package ui selects and drives the renderer for a command's output.
package ui

import (
	"io"
	"os"

	"github.com/arthur-debert/dotfiles/pkg/errors"
	"github.com/arthur-debert/dotfiles/pkg/ui/json"
	"github.com/arthur-debert/dotfiles/pkg/ui/terminal"
	"github.com/arthur-debert/dotfiles/pkg/ui/text"
	"github.com/arthur-debert/dotfiles/pkg/ui/yaml"
)

// Renderer is implemented by every output format
type Renderer interface {
	RenderResult(result interface{}) error
	RenderError(err error) error
	RenderMessage(msg string) error
}

// NewRenderer creates the renderer for format. FormatAuto detects the
// format when w is an *os.File and falls back to text otherwise.
func NewRenderer(format Format, w io.Writer) (Renderer, error) {
	if format == FormatAuto {
		format = FormatText
		if f, ok := w.(*os.File); ok {
			format = DetectFormat(f)
		}
	}

	switch format {
	case FormatTerminal:
		return terminal.New(w)
	case FormatText:
		return text.New(w)
	case FormatJSON:
		return json.New(w)
	case FormatYAML:
		return yaml.New(w)
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "unsupported format: %s", format)
	}
}
