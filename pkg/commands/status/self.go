package status

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/dotfiles/pkg/linker"
)

func selfTarget(l *linker.Linker, executable func() (string, error)) (linker.LinkTarget, bool) {
	if executable == nil {
		executable = os.Executable
	}
	exe, err := executable()
	if err != nil {
		return linker.LinkTarget{}, false
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return linker.LinkTarget{
		Source:  exe,
		Target:  l.SelfTarget(),
		RelPath: filepath.Base(l.SelfTarget()),
		Kind:    linker.KindSelf,
	}, true
}
