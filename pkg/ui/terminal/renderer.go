// Package terminal renders results for an interactive terminal using the
// styles registry and pterm prefixes.
package terminal

import (
	"fmt"
	"io"

	"github.com/arthur-debert/dotfiles/pkg/errors"
	"github.com/arthur-debert/dotfiles/pkg/linker"
	"github.com/arthur-debert/dotfiles/pkg/ui/styles"
	"github.com/arthur-debert/dotfiles/pkg/ui/text"
	"github.com/pterm/pterm"
)

// Renderer shares the text layout and styles every word of it
type Renderer struct {
	output io.Writer
	text   *text.Renderer
}

// New creates a new terminal renderer
func New(output io.Writer) (*Renderer, error) {
	return &Renderer{
		output: output,
		text:   text.NewPainted(output, styles.Render),
	}, nil
}

// RenderResult renders a result with colors
func (r *Renderer) RenderResult(result interface{}) error {
	if err := r.text.RenderResult(result); err != nil {
		return err
	}
	if report, ok := result.(*linker.Report); ok && report.HasFailures() {
		_, err := fmt.Fprintln(r.output, pterm.Warning.Sprintf("%d entries failed, see above", len(report.Failed())))
		return err
	}
	return nil
}

// RenderError renders an error with the pterm error prefix
func (r *Renderer) RenderError(err error) error {
	line := pterm.Error.Sprint(err.Error())
	if details := errors.GetErrorDetails(err); len(details) > 0 {
		line += "\n" + styles.Render("Muted", fmt.Sprintf("  %v", details))
	}
	_, werr := fmt.Fprintln(r.output, line)
	return werr
}

// RenderMessage renders a message with the pterm info prefix
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, pterm.Info.Sprint(msg))
	return err
}
