package validation

import (
	"fmt"
	"sort"

	"matvision-be/pkg/analysis/perception"
	"matvision-be/pkg/analysis/reasoning"
)

// crossValidate is the third gate pass: it replays the assessment against
// what perception actually saw, instead of trusting the assessment's own
// framing the way the invariant pass does.
func crossValidate(a *reasoning.ScoredAssessment, ctx Context) []Flag {
	var flags []Flag

	claimed := a.TotalClaimedScoringEvents()
	if claimed > 0 && claimed > inflationMultiplier*ctx.CriticalCount {
		flags = append(flags, Flag{
			Check:    CheckScoringInflation,
			Severity: SeverityWarning,
			Detail: fmt.Sprintf("%d scoring events claimed but only %d CRITICAL observation(s) on film",
				claimed, ctx.CriticalCount),
		})
	}

	if ctx.SubmittedFrames >= evidenceFloorFrameCount {
		counts := evidenceByPosition(a.FrameEvidence)
		for _, obs := range []struct {
			position perception.Position
			name     string
			text     string
		}{
			{perception.PositionStanding, "standing", a.PositionReasoning.Standing},
			{perception.PositionTop, "top", a.PositionReasoning.Top},
			{perception.PositionBottom, "bottom", a.PositionReasoning.Bottom},
		} {
			observed := ctx.PositionFrames[obs.position]
			if observed < minObservedPositionCount {
				continue
			}
			if counts[obs.name] < minPositionEvidence {
				flags = append(flags, Flag{
					Check:    CheckSparseEvidence,
					Severity: SeverityWarning,
					Detail: fmt.Sprintf("%s appears in %d observed frame(s) but only %d citation(s) reference it",
						obs.name, observed, counts[obs.name]),
				})
			}
			if len(obs.text) < minReasoningChars {
				flags = append(flags, Flag{
					Check:    CheckShallowReasoning,
					Severity: SeverityWarning,
					Detail: fmt.Sprintf("%s was wrestled in %d observed frame(s) yet its reasoning runs %d chars",
						obs.name, observed, len(obs.text)),
				})
			}
		}
	}

	flags = append(flags, flagUnobservedEvidence(a.FrameEvidence, ctx)...)

	return flags
}

// flagUnobservedEvidence reports citations whose frame index was never
// observed by perception. The hallucination pass already clamped indices into
// range; this catches in-range indices the first pass never produced.
func flagUnobservedEvidence(evidence []reasoning.FrameEvidence, ctx Context) []Flag {
	if len(ctx.ObservedIndices) == 0 {
		return nil
	}

	var missing []int
	for _, ev := range evidence {
		if !ctx.ObservedIndices[ev.FrameIndex] {
			missing = append(missing, ev.FrameIndex)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Ints(missing)

	return []Flag{{
		Check:    CheckUnobservedEvidence,
		Severity: SeverityWarning,
		Detail:   fmt.Sprintf("evidence cites %d frame(s) with no observation behind them: %v", len(missing), missing),
	}}
}
