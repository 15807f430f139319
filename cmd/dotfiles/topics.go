package dotfiles

import (
	"embed"
	"io/fs"

	"github.com/arthur-debert/dotfiles/pkg/cobrax/topics"
	"github.com/spf13/cobra"
)

//go:embed topics/*.md
var topicFiles embed.FS

// installTopics replaces the help command with one that also shows the
// embedded help topics
func installTopics(root *cobra.Command) error {
	sub, err := fs.Sub(topicFiles, "topics")
	if err != nil {
		return err
	}

	var renderer topics.Renderer = topics.PlainRenderer{}
	if stdoutIsTerminal() {
		renderer = topics.NewGlamourRenderer()
	}

	m, err := topics.Load(sub, topics.Options{Renderer: renderer})
	if err != nil {
		return err
	}
	m.Install(root)
	return nil
}
