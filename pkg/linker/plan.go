package linker

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/dotfiles/pkg/errors"
	"github.com/arthur-debert/dotfiles/pkg/overrides"
	"github.com/arthur-debert/dotfiles/pkg/walker"
)

// Kind names where a link target came from
type Kind string

const (
	KindRegular  Kind = "regular"
	KindBin      Kind = "bin"
	KindOverride Kind = "override"
	KindSelf     Kind = "self"
)

// Scope selects which parts of the tree a run links
type Scope string

const (
	// ScopeAll links regular entries, bin, self and overrides
	ScopeAll Scope = "all"
	// ScopeRegular links regular entries, bin and self
	ScopeRegular Scope = "regular"
	// ScopeOverrides links selected override variants only
	ScopeOverrides Scope = "overrides"
)

// ParseScope parses a scope name; empty means ScopeAll
func ParseScope(s string) (Scope, error) {
	switch Scope(strings.ToLower(s)) {
	case "", ScopeAll:
		return ScopeAll, nil
	case ScopeRegular:
		return ScopeRegular, nil
	case ScopeOverrides:
		return ScopeOverrides, nil
	}
	return "", errors.Newf(errors.ErrInvalidInput, "unknown scope %q", s).
		WithDetail("allowed", []Scope{ScopeAll, ScopeRegular, ScopeOverrides})
}

func (s Scope) regular() bool   { return s == ScopeAll || s == ScopeRegular }
func (s Scope) overrides() bool { return s == ScopeAll || s == ScopeOverrides }

// LinkTarget is one planned symlink
type LinkTarget struct {
	// Source is the absolute path inside the dotfiles tree
	Source string `json:"source" yaml:"source"`
	// Target is the absolute path under $HOME
	Target string `json:"target" yaml:"target"`
	// RelPath is the entry's path relative to its walk root
	RelPath  string              `json:"rel_path" yaml:"rel_path"`
	Kind     Kind                `json:"kind" yaml:"kind"`
	Override *overrides.Override `json:"-" yaml:"-"`
}

// Plan is the ordered list of targets for a scope plus the entries that
// could not be planned
type Plan struct {
	Targets []LinkTarget
	// Problems are reported as skipped or failed results by Run
	Problems []Result
	// claimed maps every target owned by a tree entry, in or out of scope,
	// to the entry's source
	claimed map[string]LinkTarget
}

// Claimed returns the tree entry that owns target, if any. Entries out of
// the planned scope still own their targets.
func (p *Plan) Claimed(target string) (LinkTarget, bool) {
	lt, ok := p.claimed[target]
	return lt, ok
}

// Plan walks the tree and resolves overrides. A selected override
// replaces a regular entry with the same target. When two regular or bin
// entries map to one target the first one walked wins and the other is
// skipped, so every target path appears at most once. Targets are sorted
// by target path.
func (l *Linker) Plan(scope Scope) (*Plan, error) {
	plan := &Plan{claimed: make(map[string]LinkTarget)}
	byTarget := make(map[string]LinkTarget)

	for entry, err := range walker.Walk(l.paths.Root(), l.walkOptions()) {
		if err != nil {
			if scope.regular() {
				plan.Problems = append(plan.Problems, Result{Outcome: OutcomeFailed, Err: err})
			}
			continue
		}
		lt := l.targetFor(entry)
		if winner, taken := plan.claimed[lt.Target]; taken {
			if scope.regular() {
				plan.Problems = append(plan.Problems, Result{
					Target:  lt,
					Outcome: OutcomeSkipped,
					Reason:  "target already linked from " + winner.RelPath,
				})
			}
			continue
		}
		plan.claimed[lt.Target] = lt
		if !scope.regular() {
			continue
		}
		if l.cfg.IsProtected(l.homeRel(lt.Target)) {
			plan.Problems = append(plan.Problems, Result{
				Target:  lt,
				Outcome: OutcomeSkipped,
				Reason:  "protected path",
			})
			continue
		}
		byTarget[lt.Target] = lt
	}

	// Overrides are always resolved so that a regular-only run does not
	// link an entry an override shadows.
	res, err := overrides.Resolve(l.paths.RootPath(l.cfg.Layout.OverridesDir), l.machine, l.cfg.Layout.Ignore...)
	if err != nil {
		plan.Problems = append(plan.Problems, Result{Outcome: OutcomeFailed, Err: err})
		res = &overrides.Resolution{}
	}

	for _, sel := range res.Selected {
		lt := l.overrideTarget(sel)
		plan.claimed[lt.Target] = lt
		if _, shadowed := byTarget[lt.Target]; shadowed {
			l.logger.Debug().
				Str("target", lt.Target).
				Str("variant", sel.Override.String()).
				Msg("Override shadows regular entry")
			delete(byTarget, lt.Target)
		}
		if !scope.overrides() {
			continue
		}
		if l.cfg.IsProtected(l.homeRel(lt.Target)) {
			plan.Problems = append(plan.Problems, Result{Target: lt, Outcome: OutcomeSkipped, Reason: "protected path"})
			continue
		}
		byTarget[lt.Target] = lt
	}

	if scope.overrides() {
		for _, p := range res.Skipped {
			plan.Problems = append(plan.Problems, overrideProblem(l, p))
		}
	}

	plan.Targets = make([]LinkTarget, 0, len(byTarget))
	for _, lt := range byTarget {
		plan.Targets = append(plan.Targets, lt)
	}
	sort.Slice(plan.Targets, func(i, j int) bool {
		return plan.Targets[i].Target < plan.Targets[j].Target
	})

	return plan, nil
}

func (l *Linker) walkOptions() walker.Options {
	return walker.Options{
		Ignore:       l.cfg.Layout.Ignore,
		BinDir:       l.cfg.Layout.BinDir,
		OverridesDir: l.cfg.Layout.OverridesDir,
	}
}

func (l *Linker) targetFor(entry walker.Entry) LinkTarget {
	lt := LinkTarget{Source: entry.AbsPath, RelPath: entry.RelPath}
	switch entry.Kind {
	case walker.KindBin:
		lt.Kind = KindBin
		lt.Target = l.paths.HomePath(filepath.Join(l.cfg.Layout.BinTarget, filepath.Base(entry.RelPath)))
	default:
		lt.Kind = KindRegular
		lt.Target = l.paths.HomePath(l.mapGitignore(entry.RelPath))
	}
	return lt
}

func (l *Linker) overrideTarget(sel overrides.Selection) LinkTarget {
	ov := sel.Override
	return LinkTarget{
		Source:   sel.Source,
		Target:   l.paths.HomePath(l.mapGitignore(sel.RelPath)),
		RelPath:  sel.RelPath,
		Kind:     KindOverride,
		Override: &ov,
	}
}

// mapGitignore renames a global gitignore source to its target name,
// keeping the relative directory
func (l *Linker) mapGitignore(rel string) string {
	src, dst := l.cfg.Layout.GitignoreSource, l.cfg.Layout.GitignoreTarget
	if src == "" || dst == "" || filepath.Base(rel) != src {
		return rel
	}
	return filepath.Join(filepath.Dir(rel), dst)
}

func (l *Linker) homeRel(target string) string {
	rel, err := filepath.Rel(l.paths.Home(), target)
	if err != nil {
		return target
	}
	return rel
}

func overrideProblem(l *Linker, p overrides.Problem) Result {
	r := Result{
		Target: LinkTarget{
			RelPath: p.RelPath,
			Target:  l.paths.HomePath(l.mapGitignore(p.RelPath)),
			Kind:    KindOverride,
		},
		Err: p.Err,
	}
	if errors.IsErrorCode(p.Err, errors.ErrInvalidOverride) {
		r.Target.Source = filepath.Join(l.paths.RootPath(l.cfg.Layout.OverridesDir), p.RelPath)
		r.Target.Target = ""
	}
	if errors.IsErrorCode(p.Err, errors.ErrNoVariant) {
		r.Outcome = OutcomeSkipped
		r.Reason = "no variant for this machine"
		r.Err = nil
		return r
	}
	r.Outcome = OutcomeFailed
	return r
}
