// Package analysis orchestrates the full match analysis pipeline: frame
// preprocessing, the perception pass, signal augmentation, the reasoning
// pass, and the quality gate, under one wall-clock budget. The same Run
// function backs both synchronous requests and background jobs.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"matvision-be/internal/pkg/logger"
	"matvision-be/pkg/analysis/frames"
	"matvision-be/pkg/analysis/perception"
	"matvision-be/pkg/analysis/pose"
	"matvision-be/pkg/analysis/reasoning"
	"matvision-be/pkg/analysis/summary"
	"matvision-be/pkg/analysis/temporal"
	"matvision-be/pkg/analysis/validation"
	"matvision-be/pkg/vision"
)

type Stage string

const (
	StageReceived      Stage = "received"
	StagePreprocessing Stage = "preprocessing"
	StagePerception    Stage = "perception"
	StageAugmentation  Stage = "augmentation"
	StageReasoning     Stage = "reasoning"
	StageValidating    Stage = "validating"
	StagePersisted     Stage = "persisted"
	StageFailed        Stage = "failed"
)

var (
	ErrNoFrames       = errors.New("no frames submitted")
	ErrTooManyFrames  = errors.New("frame count exceeds the submission limit")
	ErrInvalidMode    = errors.New("analysis mode must be athlete or opponent")
	ErrNoObservations = errors.New("perception produced no observations")
	// ErrBudgetExceeded is the distinct timeout kind: partial work is
	// discarded, never returned.
	ErrBudgetExceeded = errors.New("analysis wall-clock budget exceeded")
)

// Orchestrator-level quality flags. Stage-internal degradation (failed
// batches, rejected triage) surfaces here; score-level findings come from
// the validation package.
const (
	FlagTriageRejected     = "triage_rejected"
	FlagTriageFailOpen     = "triage_fail_open"
	FlagPerceptionBatches  = "perception_batch_failures"
	FlagIdentityConfidence = "identity_confidence_low"
)

const identityConfidenceFloor = 0.5

// Recorder receives stage timings for metrics export. Implementations must
// be safe for concurrent use.
type Recorder interface {
	StageObserved(stage string, elapsed time.Duration)
	RunCompleted(mode, outcome string, elapsed time.Duration)
}

type Request struct {
	Frames      [][]byte
	MimeType    string
	Style       string // folkstyle | freestyle | greco
	Mode        reasoning.Mode
	AthleteName string

	Identification *perception.Identification
	MatchContext   *reasoning.MatchContext
}

type StageTiming struct {
	Stage     string `json:"stage"`
	ElapsedMS int64  `json:"elapsed_ms"`
}

type Telemetry struct {
	SubmittedFrames    int           `json:"submitted_frames"`
	DedupedFrames      int           `json:"deduped_frames"`
	AnalyzedFrames     int           `json:"analyzed_frames"`
	TriageAccepted     bool          `json:"triage_accepted"`
	ObservationCount   int           `json:"observation_count"`
	CoverageRatio      float64       `json:"coverage_ratio"`
	IdentityConfidence float64       `json:"identity_confidence"`
	CriticalMoments    int           `json:"critical_moments"`
	Stages             []StageTiming `json:"stages"`
	TotalElapsedMS     int64         `json:"total_elapsed_ms"`
}

// Result is a tagged union on Mode: exactly one of Assessment or Scouting
// is set.
type Result struct {
	Mode       reasoning.Mode              `json:"mode"`
	Assessment *reasoning.ScoredAssessment `json:"assessment,omitempty"`
	Scouting   *reasoning.ScoutingReport   `json:"scouting,omitempty"`
	Flags      []validation.Flag           `json:"quality_flags"`
	Telemetry  Telemetry                   `json:"telemetry"`
}

type Options struct {
	Budget            time.Duration
	MaxFrames         int
	TriageMinSurvival float64

	Dedupe     frames.DedupeOptions
	Triage     frames.TriageOptions
	Perception perception.Options
	Reasoning  reasoning.Options

	// Keypoints, when set, overrides descriptor lookups with measured
	// skeleton geometry.
	Keypoints pose.KeypointProvider
}

func DefaultOptions() Options {
	return Options{
		Budget:            240 * time.Second,
		MaxFrames:         300,
		TriageMinSurvival: 0.60,
		Dedupe:            frames.DefaultDedupeOptions(),
		Triage:            frames.DefaultTriageOptions(),
		Perception:        perception.DefaultOptions(),
		Reasoning:         reasoning.DefaultOptions(),
	}
}

type Pipeline struct {
	provider vision.Provider
	logger   logger.ILogger
	recorder Recorder
	opts     Options
}

// NewPipeline wires the pipeline. recorder may be nil.
func NewPipeline(provider vision.Provider, log logger.ILogger, recorder Recorder, opts Options) *Pipeline {
	if opts.Budget <= 0 {
		opts.Budget = 240 * time.Second
	}
	if opts.TriageMinSurvival <= 0 {
		opts.TriageMinSurvival = 0.60
	}
	return &Pipeline{provider: provider, logger: log, recorder: recorder, opts: opts}
}

// Run executes every stage and returns a complete, gated result or one of
// the sentinel errors. It never returns partial output.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	if err := validateRequest(p.opts, req); err != nil {
		return nil, err
	}
	mode := req.Mode
	if mode == "" {
		mode = reasoning.ModeAthlete
	}

	runCtx, cancel := context.WithTimeout(ctx, p.opts.Budget)
	defer cancel()

	tel := Telemetry{SubmittedFrames: len(req.Frames)}
	p.transition(StageReceived, start, map[string]interface{}{
		"mode":   string(mode),
		"frames": len(req.Frames),
		"style":  req.Style,
	})

	input := make([]frames.Frame, len(req.Frames))
	for i, data := range req.Frames {
		input[i] = frames.Frame{Index: i, Data: data}
	}

	var pipelineFlags []validation.Flag

	// Preprocessing: dedupe, then triage with the survival floor.
	stageStart := time.Now()
	deduped := frames.Dedupe(input, p.opts.Dedupe)
	working := deduped.Kept
	tel.DedupedFrames = len(working)

	triageOpts := p.opts.Triage
	if req.MimeType != "" {
		triageOpts.MimeType = req.MimeType
	}
	triaged := frames.Triage(runCtx, p.provider, working, triageOpts)
	if triaged.FailedBatches > 0 {
		pipelineFlags = append(pipelineFlags, validation.Flag{
			Check:    FlagTriageFailOpen,
			Severity: validation.SeverityWarning,
			Detail:   fmt.Sprintf("%d triage batch(es) failed open and were analyzed in full", triaged.FailedBatches),
		})
	}
	if ratio := triaged.SurvivalRatio(len(working)); ratio >= p.opts.TriageMinSurvival {
		working = triaged.Included
		tel.TriageAccepted = true
	} else {
		pipelineFlags = append(pipelineFlags, validation.Flag{
			Check:    FlagTriageRejected,
			Severity: validation.SeverityInfo,
			Detail:   fmt.Sprintf("triage kept %.0f%% of frames, below the %.0f%% floor, analyzing all frames", ratio*100, p.opts.TriageMinSurvival*100),
		})
	}
	tel.AnalyzedFrames = len(working)
	p.recordStage(&tel, StagePreprocessing, stageStart)
	p.transition(StagePreprocessing, start, map[string]interface{}{
		"deduped_frames":  tel.DedupedFrames,
		"analyzed_frames": tel.AnalyzedFrames,
		"triage_accepted": tel.TriageAccepted,
	})
	if err := p.checkpoint(runCtx, StagePreprocessing); err != nil {
		return nil, p.fail(start, mode, StagePreprocessing, err)
	}

	// Perception (pass 1).
	stageStart = time.Now()
	percOpts := p.opts.Perception
	percOpts.Identification = req.Identification
	if req.MimeType != "" {
		percOpts.MimeType = req.MimeType
	}
	perc := perception.Run(runCtx, p.provider, working, percOpts)
	tel.ObservationCount = len(perc.Observations)
	tel.CoverageRatio = perc.CoverageRatio
	tel.IdentityConfidence = perc.IdentityConfidence
	tel.CriticalMoments = perc.CriticalCount()
	p.recordStage(&tel, StagePerception, stageStart)
	p.transition(StagePerception, start, map[string]interface{}{
		"observations":   tel.ObservationCount,
		"coverage":       tel.CoverageRatio,
		"failed_batches": perc.FailedBatches,
	})
	if err := p.checkpoint(runCtx, StagePerception); err != nil {
		return nil, p.fail(start, mode, StagePerception, err)
	}
	if len(perc.Observations) == 0 {
		err := ErrNoObservations
		// A systematic upstream failure beats the generic kind: the caller
		// can fix a key or back off, but not an empty observation set.
		if errors.Is(perc.LastError, vision.ErrInvalidAPIKey) || errors.Is(perc.LastError, vision.ErrRateLimited) {
			err = fmt.Errorf("%w: %w", perc.LastError, ErrNoObservations)
		}
		return nil, p.fail(start, mode, StagePerception, err)
	}
	if perc.FailedBatches > 0 {
		pipelineFlags = append(pipelineFlags, validation.Flag{
			Check:    FlagPerceptionBatches,
			Severity: validation.SeverityWarning,
			Detail:   fmt.Sprintf("%d of %d perception batch(es) returned nothing", perc.FailedBatches, perc.Batches),
		})
	}
	if req.Identification != nil && perc.IdentityConfidence < identityConfidenceFloor {
		pipelineFlags = append(pipelineFlags, validation.Flag{
			Check:    FlagIdentityConfidence,
			Severity: validation.SeverityWarning,
			Detail:   fmt.Sprintf("athlete identity held in only %.0f%% of visible frames", perc.IdentityConfidence*100),
		})
	}

	// Augmentation: three independent transforms, no model calls.
	stageStart = time.Now()
	fatigue := pose.Derive(perc.Observations, p.opts.Keypoints)
	profile := temporal.BuildProfile(perc.Observations)
	condensed := summary.Compress(perc.Observations)
	p.recordStage(&tel, StageAugmentation, stageStart)
	p.transition(StageAugmentation, start, map[string]interface{}{
		"windows":    len(profile.Windows),
		"segments":   len(condensed.Segments),
		"indicators": len(fatigue.Indicators),
	})
	if err := p.checkpoint(runCtx, StageAugmentation); err != nil {
		return nil, p.fail(start, mode, StageAugmentation, err)
	}

	// Reasoning (pass 2).
	stageStart = time.Now()
	rin := reasoning.Input{
		Mode:               mode,
		Style:              req.Style,
		AthleteName:        req.AthleteName,
		Summary:            &condensed,
		Temporal:           &profile,
		Fatigue:            &fatigue,
		MatchContext:       req.MatchContext,
		CoverageRatio:      perc.CoverageRatio,
		IdentityConfidence: perc.IdentityConfidence,
	}

	result := &Result{Mode: mode}
	var reasonErr error
	switch mode {
	case reasoning.ModeOpponent:
		result.Scouting, reasonErr = reasoning.Scout(runCtx, p.provider, rin, p.opts.Reasoning)
	default:
		result.Assessment, reasonErr = reasoning.Assess(runCtx, p.provider, rin, p.opts.Reasoning)
	}
	if reasonErr != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			reasonErr = fmt.Errorf("%w: %v", ErrBudgetExceeded, reasonErr)
		}
		return nil, p.fail(start, mode, StageReasoning, reasonErr)
	}
	p.recordStage(&tel, StageReasoning, stageStart)
	p.transition(StageReasoning, start, nil)
	if err := p.checkpoint(runCtx, StageReasoning); err != nil {
		return nil, p.fail(start, mode, StageReasoning, err)
	}

	// Validation: flags never abort, corrections land here.
	stageStart = time.Now()
	vctx := validation.NewContext(&perc, tel.AnalyzedFrames)
	switch mode {
	case reasoning.ModeOpponent:
		pipelineFlags = append(pipelineFlags, validation.ValidateScouting(result.Scouting, vctx)...)
	default:
		pipelineFlags = append(pipelineFlags, validation.Validate(result.Assessment, vctx)...)
	}
	p.recordStage(&tel, StageValidating, stageStart)
	p.transition(StageValidating, start, map[string]interface{}{"flags": len(pipelineFlags)})

	tel.TotalElapsedMS = time.Since(start).Milliseconds()
	result.Flags = pipelineFlags
	result.Telemetry = tel

	if p.recorder != nil {
		p.recorder.RunCompleted(string(mode), "completed", time.Since(start))
	}
	return result, nil
}

func validateRequest(opts Options, req Request) error {
	if len(req.Frames) == 0 {
		return ErrNoFrames
	}
	if opts.MaxFrames > 0 && len(req.Frames) > opts.MaxFrames {
		return fmt.Errorf("%w: %d frames, limit %d", ErrTooManyFrames, len(req.Frames), opts.MaxFrames)
	}
	switch req.Mode {
	case "", reasoning.ModeAthlete, reasoning.ModeOpponent:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMode, req.Mode)
	}
	return nil
}

// checkpoint converts a spent budget into the distinct timeout error. The
// stage functions themselves never error on cancellation, they degrade, so
// the checkpoints are where the budget actually bites.
func (p *Pipeline) checkpoint(ctx context.Context, stage Stage) error {
	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("after %s: %w", stage, ErrBudgetExceeded)
		}
		return fmt.Errorf("after %s: %w", stage, ctx.Err())
	default:
		return nil
	}
}

func (p *Pipeline) fail(start time.Time, mode reasoning.Mode, stage Stage, err error) error {
	p.transition(StageFailed, start, map[string]interface{}{
		"from":  string(stage),
		"error": err.Error(),
	})
	if p.recorder != nil {
		outcome := "failed"
		if errors.Is(err, ErrBudgetExceeded) {
			outcome = "timeout"
		}
		p.recorder.RunCompleted(string(mode), outcome, time.Since(start))
	}
	return err
}

func (p *Pipeline) recordStage(tel *Telemetry, stage Stage, stageStart time.Time) {
	elapsed := time.Since(stageStart)
	tel.Stages = append(tel.Stages, StageTiming{Stage: string(stage), ElapsedMS: elapsed.Milliseconds()})
	if p.recorder != nil {
		p.recorder.StageObserved(string(stage), elapsed)
	}
}

func (p *Pipeline) transition(stage Stage, start time.Time, payload map[string]interface{}) {
	if p.logger == nil {
		return
	}
	if payload == nil {
		payload = map[string]interface{}{}
	}
	payload["stage"] = string(stage)
	payload["elapsed_ms"] = time.Since(start).Milliseconds()
	p.logger.Info("analysis_pipeline", "stage transition", payload)
}
