package overrides

import (
	"path/filepath"
	"sort"

	"github.com/arthur-debert/dotfiles/pkg/errors"
	"github.com/arthur-debert/dotfiles/pkg/logging"
	"github.com/arthur-debert/dotfiles/pkg/machine"
	"github.com/arthur-debert/dotfiles/pkg/walker"
)

// Variant is one override file on disk
type Variant struct {
	Override Override
	// Source is the absolute path of the variant file
	Source string
}

// Selection is the variant chosen for one logical path
type Selection struct {
	Variant
	// RelPath is the logical path relative to the overrides directory
	RelPath string
}

// Problem is a logical path, or a single file, that could not be selected
type Problem struct {
	RelPath string
	Err     error
}

// Resolution is the outcome of resolving an overrides directory
type Resolution struct {
	Selected []Selection
	// Skipped holds NO_VARIANT, AMBIGUOUS_OVERRIDE and INVALID_OVERRIDE problems
	Skipped []Problem
}

// Select picks the best matching variant of one logical name. Hostname
// beats OS beats default. Two matching variants of the same rank are
// ambiguous; no matching variant is NO_VARIANT.
func Select(variants []Variant, m machine.Machine) (Variant, error) {
	best := -1
	var chosen []Variant
	for _, v := range variants {
		if !v.Override.Matches(m) {
			continue
		}
		rank := int(v.Override.Condition)
		switch {
		case rank > best:
			best = rank
			chosen = []Variant{v}
		case rank == best:
			chosen = append(chosen, v)
		}
	}

	switch len(chosen) {
	case 0:
		return Variant{}, errors.New(errors.ErrNoVariant, "no variant matches this machine")
	case 1:
		return chosen[0], nil
	default:
		files := make([]string, len(chosen))
		for i, v := range chosen {
			files[i] = filepath.Base(v.Source)
		}
		sort.Strings(files)
		return Variant{}, errors.Newf(errors.ErrAmbiguousOverride,
			"%d %s variants match this machine", len(chosen), Condition(best)).
			WithDetail("files", files)
	}
}

// Resolve walks dir and selects one variant per logical path for m. Names
// in ignore are never considered. Read errors while walking are fatal;
// per-name problems go to Skipped.
func Resolve(dir string, m machine.Machine, ignore ...string) (*Resolution, error) {
	logger := logging.GetLogger("overrides")
	groups := make(map[string][]Variant)
	res := &Resolution{}

	for entry, err := range walker.WalkFiles(dir, walker.KindOverride, ignore...) {
		if err != nil {
			return nil, err
		}

		ov, err := Parse(filepath.Base(entry.RelPath))
		if err != nil {
			res.Skipped = append(res.Skipped, Problem{RelPath: entry.RelPath, Err: err})
			continue
		}

		logical := filepath.Join(filepath.Dir(entry.RelPath), ov.Name)
		groups[logical] = append(groups[logical], Variant{Override: ov, Source: entry.AbsPath})
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		v, err := Select(groups[name], m)
		if err != nil {
			logger.Debug().Err(err).Str("name", name).Msg("Override not selected")
			res.Skipped = append(res.Skipped, Problem{RelPath: name, Err: err})
			continue
		}
		logger.Debug().
			Str("name", name).
			Str("variant", v.Override.String()).
			Msg("Override selected")
		res.Selected = append(res.Selected, Selection{Variant: v, RelPath: name})
	}

	return res, nil
}
