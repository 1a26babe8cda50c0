// Package validation is the quality gate between the second model pass and
// persistence. It runs three passes over a scored assessment: hallucination
// detection, pipeline invariants, and cross-validation against the perception
// stage. Flags never block persistence; corrections mutate the assessment
// exactly once, here.
package validation

import (
	"math"

	"matvision-be/pkg/analysis/perception"
	"matvision-be/pkg/analysis/reasoning"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

type Flag struct {
	Check    string   `json:"check"`
	Severity Severity `json:"severity"`
	Detail   string   `json:"detail"`
}

const (
	CheckIdenticalPositions    = "identical_position_scores"
	CheckRoundSubScores        = "round_subscores"
	CheckUnsupportedConfidence = "unsupported_confidence"
	CheckEvidenceOutOfRange    = "evidence_out_of_range"
	CheckSubScoreOutOfRange    = "subscore_out_of_range"
	CheckPositionSumMismatch   = "position_sum_mismatch"
	CheckVocabularyDrift       = "vocabulary_drift"

	CheckLowCoverage        = "low_coverage"
	CheckSparseEvidence     = "sparse_evidence"
	CheckReasoningDepth     = "reasoning_depth"
	CheckArithmeticMismatch = "arithmetic_mismatch"
	CheckFewKeyMoments      = "few_key_moments"
	CheckMissingEvidence    = "missing_evidence"

	CheckScoringInflation   = "scoring_inflation"
	CheckShallowReasoning   = "shallow_reasoning"
	CheckUnobservedEvidence = "unobserved_evidence_frame"
)

const (
	minEvidenceCitations     = 5
	highConfidenceFloor      = 0.8
	coverageFloor            = 0.70
	evidenceFloorFrameCount  = 10
	minReasoningChars        = 100
	positionSumTolerance     = 5
	arithmeticTolerance      = 1
	minKeyMoments            = 3
	vocabularyDriftRatio     = 0.5
	inflationMultiplier      = 2
	minPositionEvidence      = 2
	minObservedPositionCount = 2
)

// Context is the perception-side evidence the gate checks the assessment
// against.
type Context struct {
	SubmittedFrames int
	CoverageRatio   float64
	CriticalCount   int

	MinFrameIndex   int
	MaxFrameIndex   int
	ObservedIndices map[int]bool
	PositionFrames  map[perception.Position]int
	Actions         []string
}

// NewContext distills a perception result into the signals the gate needs.
func NewContext(res *perception.Result, submittedFrames int) Context {
	ctx := Context{
		SubmittedFrames: submittedFrames,
		CoverageRatio:   res.CoverageRatio,
		CriticalCount:   res.CriticalCount(),
		ObservedIndices: make(map[int]bool, len(res.Observations)),
		PositionFrames:  make(map[perception.Position]int),
	}
	for i, obs := range res.Observations {
		if i == 0 || obs.FrameIndex < ctx.MinFrameIndex {
			ctx.MinFrameIndex = obs.FrameIndex
		}
		if obs.FrameIndex > ctx.MaxFrameIndex {
			ctx.MaxFrameIndex = obs.FrameIndex
		}
		ctx.ObservedIndices[obs.FrameIndex] = true
		ctx.PositionFrames[obs.Position]++
		if obs.Action != "" {
			ctx.Actions = append(ctx.Actions, obs.Action)
		}
	}
	return ctx
}

// Validate runs all three passes over an athlete-mode assessment. This is
// the only place the assessment is mutated after generation.
func Validate(a *reasoning.ScoredAssessment, ctx Context) []Flag {
	flags := []Flag{}

	flags = append(flags, detectHallucinations(a, ctx)...)
	flags = append(flags, checkInvariants(a, ctx)...)
	flags = append(flags, crossValidate(a, ctx)...)

	return flags
}

// ValidateScouting runs the reduced gate for opponent mode. Scouting reports
// carry no scores, so only evidence-grounding checks apply.
func ValidateScouting(r *reasoning.ScoutingReport, ctx Context) []Flag {
	flags := []Flag{}

	if len(r.FrameEvidence) == 0 {
		flags = append(flags, Flag{
			Check:    CheckMissingEvidence,
			Severity: SeverityError,
			Detail:   "scouting report cites no frame evidence",
		})
	}
	flags = append(flags, flagUnobservedEvidence(r.FrameEvidence, ctx)...)

	return flags
}

func recomputeOverall(a *reasoning.ScoredAssessment) int {
	return int(math.Round(
		float64(a.PositionScores.Standing)*0.4 +
			float64(a.PositionScores.Top)*0.3 +
			float64(a.PositionScores.Bottom)*0.3))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
