package linker

import (
	"context"

	"github.com/arthur-debert/dotfiles/pkg/config"
	"github.com/arthur-debert/dotfiles/pkg/errors"
	"github.com/arthur-debert/dotfiles/pkg/logging"
)

// Result is what happened to one planned target
type Result struct {
	Target  LinkTarget
	Outcome Outcome
	// Reason explains a skip that is not an error
	Reason string
	Err    error
}

// Report collects the results of a run in the order they happened
type Report struct {
	Scope   Scope
	DryRun  bool
	Results []Result
}

// Counts returns the number of results per outcome
func (r *Report) Counts() map[Outcome]int {
	counts := make(map[Outcome]int, len(Outcomes))
	for _, res := range r.Results {
		counts[res.Outcome]++
	}
	return counts
}

// Failed returns the failed results
func (r *Report) Failed() []Result {
	return r.filter(OutcomeFailed)
}

// Skipped returns the skipped results
func (r *Report) Skipped() []Result {
	return r.filter(OutcomeSkipped)
}

// HasFailures reports whether any entry failed
func (r *Report) HasFailures() bool {
	for _, res := range r.Results {
		if res.Outcome == OutcomeFailed {
			return true
		}
	}
	return false
}

func (r *Report) filter(o Outcome) []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Outcome == o {
			out = append(out, res)
		}
	}
	return out
}

func (r *Report) add(res Result) {
	r.Results = append(r.Results, res)
}

// Run plans scope and links every target. Per-entry failures are recorded
// in the report and the run goes on. The returned error is only set when
// the run was cancelled; the report then holds everything done so far.
func (l *Linker) Run(ctx context.Context, scope Scope) (*Report, error) {
	done := logging.LogOperationStart(l.logger, "link run")
	defer done()

	report := &Report{Scope: scope, DryRun: l.dryRun}

	plan, err := l.Plan(scope)
	if err != nil {
		return report, err
	}
	for _, p := range plan.Problems {
		l.logProblem(p)
		report.add(p)
	}

	for _, lt := range plan.Targets {
		if err := ctx.Err(); err != nil {
			return report, errors.Wrap(err, errors.ErrCancelled, "run cancelled")
		}

		outcome, err := l.Link(ctx, lt.Source, lt.Target)
		if errors.IsErrorCode(err, errors.ErrCancelled) {
			return report, err
		}
		res := Result{Target: lt, Outcome: outcome, Err: err}
		if outcome == OutcomeSkipped {
			res.Reason = "target exists"
		}
		if err != nil {
			l.logProblem(res)
		}
		report.add(res)
	}

	if scope.regular() {
		if err := l.linkSelf(ctx, plan, report); err != nil {
			return report, err
		}
	}

	counts := report.Counts()
	l.logger.Info().
		Int("created", counts[OutcomeCreated]).
		Int("unchanged", counts[OutcomeUnchanged]).
		Int("replaced", counts[OutcomeReplaced]).
		Int("backed_up", counts[OutcomeBackedUp]).
		Int("skipped", counts[OutcomeSkipped]).
		Int("failed", counts[OutcomeFailed]).
		Bool("dry_run", l.dryRun).
		Msg("Link run finished")

	return report, nil
}

// linkSelf adds the self link result to report. A tree entry planned at
// the same path owns it and the executable is not installed.
func (l *Linker) linkSelf(ctx context.Context, plan *Plan, report *Report) error {
	if l.cfg.Self.Mode == config.SelfOff {
		return nil
	}
	if owner, taken := plan.Claimed(l.SelfTarget()); taken {
		res := Result{
			Target:  LinkTarget{Target: l.SelfTarget(), RelPath: l.cfg.Self.Name, Kind: KindSelf},
			Outcome: OutcomeSkipped,
			Reason:  "target already linked from " + owner.RelPath,
		}
		l.logProblem(res)
		report.add(res)
		return nil
	}

	res, err := l.SelfLink(ctx)
	if errors.IsErrorCode(err, errors.ErrCancelled) {
		return err
	}
	if res != nil {
		if res.Err != nil {
			l.logProblem(*res)
		}
		report.add(*res)
	}
	return nil
}

func (l *Linker) logProblem(res Result) {
	event := l.logger.Info()
	if res.Outcome == OutcomeFailed {
		event = l.logger.Error()
	}
	event.Err(res.Err).
		Str("source", res.Target.Source).
		Str("target", res.Target.Target).
		Str("outcome", res.Outcome.String()).
		Str("reason", res.Reason).
		Msg("Entry not linked")
}
