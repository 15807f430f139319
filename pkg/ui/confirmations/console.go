// Package confirmations asks the user yes/no questions on the console
package confirmations

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/arthur-debert/dotfiles/pkg/linker"
	"github.com/arthur-debert/dotfiles/pkg/logging"
	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
)

// Console reads answers from in and writes questions to out
type Console struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

var _ linker.Confirmer = (*Console)(nil)

// NewConsole creates a confirmer on in and out. Questions are answered
// "no" without asking when in is not a terminal.
func NewConsole(in io.Reader, out io.Writer) *Console {
	interactive := true
	if f, ok := in.(*os.File); ok {
		interactive = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Console{in: bufio.NewReader(in), out: out, interactive: interactive}
}

// Confirm asks question and reports whether the answer was yes
func (c *Console) Confirm(ctx context.Context, question string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	logger := logging.GetLogger("ui.confirmations")
	if !c.interactive {
		logger.Debug().Str("question", question).Msg("Not a terminal, answering no")
		return false, nil
	}

	if _, err := fmt.Fprintf(c.out, "%s %s [y/N] ", pterm.Warning.Prefix.Text, question); err != nil {
		return false, err
	}

	line, err := c.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
