package filesystem

import (
	"io/fs"
	"os"
	"path/filepath"
)

// TargetState describes what currently occupies a link target path
type TargetState int

const (
	// TargetMissing means nothing exists at the path
	TargetMissing TargetState = iota
	// TargetLinked is a symlink resolving to the expected source
	TargetLinked
	// TargetStaleLink is a symlink pointing anywhere else, dangling included
	TargetStaleLink
	// TargetFile is a regular file or other non-directory, non-symlink entry
	TargetFile
	// TargetDir is a real directory
	TargetDir
)

func (s TargetState) String() string {
	switch s {
	case TargetMissing:
		return "missing"
	case TargetLinked:
		return "linked"
	case TargetStaleLink:
		return "stale"
	case TargetFile:
		return "file"
	case TargetDir:
		return "directory"
	default:
		return "unknown"
	}
}

// Inspect classifies target relative to the source it should link to.
// It never follows the target itself, only the symlink's destination.
func Inspect(fsys FS, source, target string) (TargetState, string, error) {
	info, err := fsys.Lstat(target)
	if err != nil {
		if os.IsNotExist(err) {
			return TargetMissing, "", nil
		}
		return TargetMissing, "", err
	}

	if info.Mode()&fs.ModeSymlink == 0 {
		if info.IsDir() {
			return TargetDir, "", nil
		}
		return TargetFile, "", nil
	}

	dest, err := fsys.Readlink(target)
	if err != nil {
		return TargetMissing, "", err
	}

	if SameLinkDestination(target, dest, source) {
		return TargetLinked, dest, nil
	}
	return TargetStaleLink, dest, nil
}

// SameLinkDestination reports whether a symlink at link whose content is
// dest points at source. Relative destinations resolve against the link's
// directory. Paths are compared cleaned and, failing that, fully resolved.
func SameLinkDestination(link, dest, source string) bool {
	if !filepath.IsAbs(dest) {
		dest = filepath.Join(filepath.Dir(link), dest)
	}
	if filepath.Clean(dest) == filepath.Clean(source) {
		return true
	}

	resolvedDest, err := filepath.EvalSymlinks(dest)
	if err != nil {
		return false
	}
	resolvedSource, err := filepath.EvalSymlinks(source)
	if err != nil {
		return false
	}
	return resolvedDest == resolvedSource
}
