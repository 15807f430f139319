// Package text provides plain text output without any styling
package text

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/dotfiles/pkg/commands"
	"github.com/arthur-debert/dotfiles/pkg/config"
	"github.com/arthur-debert/dotfiles/pkg/linker"
	"github.com/arthur-debert/dotfiles/pkg/status"
	"github.com/arthur-debert/dotfiles/pkg/ui/view"
)

// Painter styles a piece of text by semantic name. The plain painter
// returns the text unchanged.
type Painter func(style, s string) string

// Plain is the Painter used for unstyled output
func Plain(_, s string) string { return s }

// Renderer provides plain text output without colors or styling
type Renderer struct {
	output io.Writer
	paint  Painter
}

// New creates a new text renderer
func New(output io.Writer) (*Renderer, error) {
	return NewPainted(output, Plain), nil
}

// NewPainted creates a text renderer whose words are styled by paint
func NewPainted(output io.Writer, paint Painter) *Renderer {
	return &Renderer{output: output, paint: paint}
}

// RenderResult renders known result types as lines of text
func (r *Renderer) RenderResult(result interface{}) error {
	switch v := result.(type) {
	case *linker.Report:
		return r.renderLinkReport(v)
	case *status.Report:
		return r.renderStatus(v)
	case *commands.AddResult:
		return r.renderAdd(v)
	case *commands.RemoveResult:
		return r.renderRemove(v)
	case *config.Config:
		out, err := v.ToTOML()
		if err != nil {
			return err
		}
		_, err = io.WriteString(r.output, out)
		return err
	case string:
		return r.RenderMessage(v)
	default:
		_, err := fmt.Fprintf(r.output, "%+v\n", result)
		return err
	}
}

// RenderError renders an error as plain text
func (r *Renderer) RenderError(err error) error {
	_, werr := fmt.Fprintf(r.output, "%s %s\n", r.paint("Error", "Error:"), err.Error())
	return werr
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, msg)
	return err
}

func (r *Renderer) renderLinkReport(report *linker.Report) error {
	var b strings.Builder
	for _, res := range report.Results {
		if res.Outcome == linker.OutcomeUnchanged {
			continue
		}
		b.WriteString(r.resultLine(res.Outcome.String(), res.Target, res.Reason, res.Err))
	}

	counts := report.Counts()
	parts := make([]string, 0, len(linker.Outcomes))
	for _, o := range linker.Outcomes {
		if n := counts[o]; n > 0 {
			parts = append(parts, r.paint(o.String(), fmt.Sprintf("%d %s", n, o)))
		}
	}
	if len(parts) == 0 {
		parts = append(parts, "nothing to link")
	}

	summary := "Summary: " + strings.Join(parts, ", ")
	if report.DryRun {
		summary += r.paint("Muted", " (dry run, nothing changed)")
	}
	b.WriteString(summary + "\n")

	_, err := io.WriteString(r.output, b.String())
	return err
}

func (r *Renderer) renderStatus(report *status.Report) error {
	var managed, unmanaged []status.Entry
	for _, e := range report.Entries {
		if e.State == status.StateLinked {
			managed = append(managed, e)
		} else {
			unmanaged = append(unmanaged, e)
		}
	}

	var b strings.Builder
	if len(managed) > 0 {
		b.WriteString(r.paint("Header", "Managed:") + "\n")
		for _, e := range managed {
			b.WriteString("  " + r.resultLine(string(e.State), e.LinkTarget, "", nil))
		}
	}
	if len(unmanaged) > 0 {
		b.WriteString(r.paint("Header", "Unmanaged:") + "\n")
		for _, e := range unmanaged {
			reason := e.Message
			if e.Destination != "" {
				reason = fmt.Sprintf("%s: %s", e.Message, e.Destination)
			}
			b.WriteString("  " + r.resultLine(string(e.State), e.LinkTarget, reason, nil))
		}
	}
	if len(report.Problems) > 0 {
		b.WriteString(r.paint("Header", "Not planned:") + "\n")
		for _, p := range report.Problems {
			b.WriteString("  " + r.resultLine(p.Outcome.String(), p.Target, p.Reason, p.Err))
		}
	}
	if len(report.Entries) == 0 && len(report.Problems) == 0 {
		b.WriteString("Nothing to link.\n")
	}

	_, err := io.WriteString(r.output, b.String())
	return err
}

func (r *Renderer) renderAdd(res *commands.AddResult) error {
	verb := "Added"
	switch {
	case res.AlreadyManaged:
		verb = "Already managed:"
	case res.DryRun:
		verb = "Would add"
	}
	_, err := fmt.Fprintf(r.output, "%s %s %s %s\n",
		verb,
		r.paint("Path", view.ShortPath(res.Link)),
		r.paint("Arrow", "->"),
		r.paint("Path", view.ShortPath(res.Source)))
	return err
}

func (r *Renderer) renderRemove(res *commands.RemoveResult) error {
	verb := "Removed"
	if res.DryRun {
		verb = "Would remove"
	}
	line := fmt.Sprintf("%s %s", verb, r.paint("Path", view.ShortPath(res.Source)))
	if res.Link != "" {
		line += fmt.Sprintf(" and its link %s", r.paint("Path", view.ShortPath(res.Link)))
	}
	return r.RenderMessage(line)
}

// resultLine renders "<word> <target> -> <source>[: reason]"
func (r *Renderer) resultLine(word string, lt linker.LinkTarget, reason string, err error) string {
	line := r.paint("Outcome", r.paint(word, fmt.Sprintf("%-10s", word)))

	switch {
	case lt.Target != "" && lt.Source != "":
		line += " " + r.paint("Path", view.ShortPath(lt.Target)) + " " + r.paint("Arrow", "->") + " " + view.ShortPath(lt.Source)
	case lt.Target != "":
		line += " " + r.paint("Path", view.ShortPath(lt.Target))
	case lt.Source != "":
		line += " " + view.ShortPath(lt.Source)
	case lt.RelPath != "":
		line += " " + lt.RelPath
	}

	if err != nil {
		line += ": " + r.paint("Error", err.Error())
	} else if reason != "" {
		line += r.paint("Muted", " ("+reason+")")
	}
	return line + "\n"
}
