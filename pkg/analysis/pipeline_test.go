package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"matvision-be/pkg/analysis/frames"
	"matvision-be/pkg/analysis/perception"
	"matvision-be/pkg/analysis/reasoning"
	"matvision-be/pkg/analysis/validation"
	"matvision-be/pkg/vision"
)

// scriptedProvider routes calls by prompt: triage, perception, and reasoning
// each carry a distinct leading instruction.
type scriptedProvider struct {
	mu              sync.Mutex
	calls           []string
	reasoningPrompt string

	triageFn     func(frameIdx []int) (*vision.GenerateResponse, error)
	perceptionFn func(frameIdx []int) (*vision.GenerateResponse, error)
	reasoningFn  func(prompt string) (*vision.GenerateResponse, error)
}

func (s *scriptedProvider) GenerateContent(ctx context.Context, contents []*vision.Content, opts ...vision.Option) (*vision.GenerateResponse, error) {
	prompt := ""
	var frameIdx []int
	for _, c := range contents {
		for _, p := range c.Parts {
			if p.Text == "" {
				continue
			}
			if prompt == "" {
				prompt = p.Text
			}
			var idx int
			if _, err := fmt.Sscanf(p.Text, "Frame %d:", &idx); err == nil {
				frameIdx = append(frameIdx, idx)
			}
		}
	}

	s.mu.Lock()
	switch {
	case strings.Contains(prompt, "screening wrestling match footage"):
		s.calls = append(s.calls, "triage")
		s.mu.Unlock()
		return s.triageFn(frameIdx)
	case strings.Contains(prompt, "analyzing wrestling match footage"):
		s.calls = append(s.calls, "perception")
		s.mu.Unlock()
		return s.perceptionFn(frameIdx)
	default:
		s.calls = append(s.calls, "reasoning")
		s.reasoningPrompt = prompt
		s.mu.Unlock()
		return s.reasoningFn(prompt)
	}
}

func (s *scriptedProvider) callCount(kind string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c == kind {
			n++
		}
	}
	return n
}

func textResponse(text string) *vision.GenerateResponse {
	return &vision.GenerateResponse{
		Candidates: []*vision.Candidate{
			{Content: &vision.Content{Parts: []*vision.Part{{Text: text}}}},
		},
	}
}

func allActionTriage(frameIdx []int) (*vision.GenerateResponse, error) {
	var verdicts []frames.Verdict
	for _, idx := range frameIdx {
		verdicts = append(verdicts, frames.Verdict{
			FrameIndex: idx, Class: frames.ClassWrestlingAction, Position: "standing", Intensity: frames.IntensityMedium,
		})
	}
	b, _ := json.Marshal(verdicts)
	return textResponse(string(b)), nil
}

// takedownObservations answers every frame with quiet standing context except
// frame 5, which is the match's one scoring moment.
func takedownObservations(frameIdx []int) (*vision.GenerateResponse, error) {
	var obs []perception.Observation
	for _, idx := range frameIdx {
		o := perception.Observation{
			FrameIndex:         idx,
			Position:           perception.PositionStanding,
			BodyPosition:       "medium stance, squared up",
			Contact:            "collar tie",
			Action:             "ATHLETE: circling with a collar tie",
			Significance:       perception.SignificanceContext,
			AthleteVisible:     true,
			IdentityConsistent: true,
		}
		if idx == 5 {
			o.Action = "ATHLETE: Takedown (double leg)"
			o.Contact = "chest to chest finish"
			o.Significance = perception.SignificanceCritical
		}
		obs = append(obs, o)
	}
	b, _ := json.Marshal(obs)
	return textResponse(string(b)), nil
}

func cleanAssessment() reasoning.ScoredAssessment {
	long := func(pos string) string {
		return "In the " + pos + " position the athlete kept winning the key exchanges across the cited frames and never conceded control of the tie-ups to the opponent."
	}
	return reasoning.ScoredAssessment{
		OverallScore:   58,
		PositionScores: reasoning.PositionScores{Standing: 55, Top: 60, Bottom: 60},
		SubScores: reasoning.SubScores{
			Standing: map[string]int{"stance_and_motion": 12, "level_change": 11, "shot_entries": 11, "shot_finishes": 10, "hand_fighting": 11},
			Top:      map[string]int{"ride_control": 15, "turn_attempts": 16, "mat_returns": 15, "pinning_pressure": 14},
			Bottom:   map[string]int{"base_recovery": 15, "stand_ups": 15, "escapes": 16, "reversal_threats": 14},
		},
		PositionReasoning: reasoning.PositionReasoning{Standing: long("standing"), Top: long("top"), Bottom: long("bottom")},
		FrameEvidence: []reasoning.FrameEvidence{
			{FrameIndex: 5, Description: "ATHLETE: Takedown (double leg)", RubricImpact: "shot_finishes", IsKeyMoment: true},
			{FrameIndex: 2, Description: "level change on the open shot", RubricImpact: "level_change", IsKeyMoment: false},
			{FrameIndex: 6, Description: "tight waist ride", RubricImpact: "ride_control", IsKeyMoment: true},
			{FrameIndex: 8, Description: "half nelson attempt", RubricImpact: "turn_attempts", IsKeyMoment: true},
			{FrameIndex: 9, Description: "base rebuilt instantly", RubricImpact: "base_recovery", IsKeyMoment: false},
			{FrameIndex: 11, Description: "stand up to escape", RubricImpact: "escapes", IsKeyMoment: false},
		},
		Strengths:         []string{"explosive double leg"},
		Weaknesses:        []string{"static hand fighting"},
		RecommendedDrills: []string{"shot entries against a moving partner"},
		FatigueAnalysis:   reasoning.FatigueAnalysis{FirstHalfScore: 70, SecondHalfScore: 65, Indicators: []string{}, Conditioning: "good"},
		MatchResult:       reasoning.MatchResult{EstimatedWinner: "athlete", Confidence: 0.7, ScoreEstimate: "3-0"},
		MatchStats:        reasoning.MatchStats{TakedownsScored: 1},
		Confidence:        0.75,
	}
}

func assessmentResponse(string) (*vision.GenerateResponse, error) {
	a := cleanAssessment()
	b, _ := json.Marshal(a)
	return textResponse(string(b)), nil
}

func happyProvider() *scriptedProvider {
	return &scriptedProvider{
		triageFn:     allActionTriage,
		perceptionFn: takedownObservations,
		reasoningFn:  assessmentResponse,
	}
}

type memoryLogger struct {
	mu     sync.Mutex
	stages []string
}

func (m *memoryLogger) log(details map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if stage, ok := details["stage"].(string); ok {
		m.stages = append(m.stages, stage)
	}
}

func (m *memoryLogger) Debug(module, message string, details map[string]interface{}) { m.log(details) }
func (m *memoryLogger) Info(module, message string, details map[string]interface{})  { m.log(details) }
func (m *memoryLogger) Warn(module, message string, details map[string]interface{})  { m.log(details) }
func (m *memoryLogger) Error(module, message string, details map[string]interface{}) { m.log(details) }
func (m *memoryLogger) Sync() error                                                  { return nil }

func (m *memoryLogger) sawStage(stage Stage) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.stages {
		if s == string(stage) {
			return true
		}
	}
	return false
}

type memoryRecorder struct {
	mu       sync.Mutex
	stages   map[string]int
	outcomes []string
}

func newMemoryRecorder() *memoryRecorder {
	return &memoryRecorder{stages: map[string]int{}}
}

func (m *memoryRecorder) StageObserved(stage string, elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stages[stage]++
}

func (m *memoryRecorder) RunCompleted(mode, outcome string, elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, mode+"/"+outcome)
}

func distinctFrames(n int) [][]byte {
	out := make([][]byte, n)
	for i := range out {
		out[i] = []byte(fmt.Sprintf("frame-%03d-%s", i, strings.Repeat(string(rune('a'+i%26)), 40+i)))
	}
	return out
}

func hasCheck(flags []validation.Flag, check string) bool {
	for _, f := range flags {
		if f.Check == check {
			return true
		}
	}
	return false
}

func TestPipelineTakedownScenario(t *testing.T) {
	provider := happyProvider()
	log := &memoryLogger{}
	rec := newMemoryRecorder()
	p := NewPipeline(provider, log, rec, DefaultOptions())

	result, err := p.Run(context.Background(), Request{
		Frames:      distinctFrames(12),
		Style:       "folkstyle",
		Mode:        reasoning.ModeAthlete,
		AthleteName: "Jordan Reyes",
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Mode != reasoning.ModeAthlete || result.Assessment == nil || result.Scouting != nil {
		t.Fatalf("result shape wrong: mode=%q assessment=%v scouting=%v", result.Mode, result.Assessment != nil, result.Scouting != nil)
	}
	if got := result.Assessment.MatchStats.TakedownsScored; got != 1 {
		t.Errorf("takedowns_scored = %d, want 1", got)
	}
	foundKeyMoment := false
	for _, ev := range result.Assessment.FrameEvidence {
		if ev.FrameIndex == 5 && ev.IsKeyMoment {
			foundKeyMoment = true
		}
	}
	if !foundKeyMoment {
		t.Error("frame_evidence should mark frame 5 as a key moment")
	}
	if len(result.Flags) != 0 {
		t.Errorf("clean run raised flags: %+v", result.Flags)
	}

	tel := result.Telemetry
	if tel.SubmittedFrames != 12 || tel.AnalyzedFrames != 12 || tel.ObservationCount != 12 {
		t.Errorf("telemetry counts = %+v", tel)
	}
	if !tel.TriageAccepted {
		t.Error("full-survival triage should be accepted")
	}
	if tel.CoverageRatio != 1.0 || tel.CriticalMoments != 1 {
		t.Errorf("coverage=%v critical=%d, want 1.0 and 1", tel.CoverageRatio, tel.CriticalMoments)
	}
	if len(tel.Stages) != 5 {
		t.Errorf("stage timings = %d, want 5", len(tel.Stages))
	}

	for _, stage := range []Stage{StageReceived, StagePreprocessing, StagePerception, StageAugmentation, StageReasoning, StageValidating} {
		if !log.sawStage(stage) {
			t.Errorf("logger missing transition %q", stage)
		}
	}
	if log.sawStage(StageFailed) {
		t.Error("logger saw a failed transition on a clean run")
	}
	if len(rec.outcomes) != 1 || rec.outcomes[0] != "athlete/completed" {
		t.Errorf("recorder outcomes = %v", rec.outcomes)
	}
}

func TestPipelineInputValidation(t *testing.T) {
	provider := happyProvider()
	p := NewPipeline(provider, nil, nil, DefaultOptions())

	cases := []struct {
		name string
		req  Request
		want error
	}{
		{"empty frames", Request{}, ErrNoFrames},
		{"too many frames", Request{Frames: distinctFrames(301)}, ErrTooManyFrames},
		{"bad mode", Request{Frames: distinctFrames(12), Mode: "coach"}, ErrInvalidMode},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := p.Run(context.Background(), tc.req)
			if !errors.Is(err, tc.want) {
				t.Errorf("Run() error = %v, want %v", err, tc.want)
			}
		})
	}
	if len(provider.calls) != 0 {
		t.Errorf("rejected input still reached the provider: %v", provider.calls)
	}
}

func TestPipelineTriageRejected(t *testing.T) {
	provider := happyProvider()
	provider.triageFn = func(frameIdx []int) (*vision.GenerateResponse, error) {
		var verdicts []frames.Verdict
		for _, idx := range frameIdx {
			verdicts = append(verdicts, frames.Verdict{
				FrameIndex: idx, Class: frames.ClassNoAction, Position: "not_visible", Intensity: frames.IntensityNone,
			})
		}
		b, _ := json.Marshal(verdicts)
		return textResponse(string(b)), nil
	}

	var perceived []int
	var mu sync.Mutex
	inner := provider.perceptionFn
	provider.perceptionFn = func(frameIdx []int) (*vision.GenerateResponse, error) {
		mu.Lock()
		perceived = append(perceived, frameIdx...)
		mu.Unlock()
		return inner(frameIdx)
	}

	p := NewPipeline(provider, nil, nil, DefaultOptions())
	result, err := p.Run(context.Background(), Request{Frames: distinctFrames(12), Mode: reasoning.ModeAthlete})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// Only the 4 edge frames survive triage, 33% is under the floor, so the
	// filter is discarded and all 12 frames go to perception.
	if result.Telemetry.TriageAccepted {
		t.Error("starved triage result should be rejected")
	}
	if result.Telemetry.AnalyzedFrames != 12 {
		t.Errorf("AnalyzedFrames = %d, want 12", result.Telemetry.AnalyzedFrames)
	}
	if !hasCheck(result.Flags, FlagTriageRejected) {
		t.Errorf("want %s flag, got %+v", FlagTriageRejected, result.Flags)
	}
	if len(perceived) != 12 {
		t.Errorf("perception saw %d frames, want 12", len(perceived))
	}
}

func TestPipelineBudgetExceeded(t *testing.T) {
	provider := happyProvider()
	provider.triageFn = func(frameIdx []int) (*vision.GenerateResponse, error) {
		time.Sleep(200 * time.Millisecond)
		return allActionTriage(frameIdx)
	}

	log := &memoryLogger{}
	rec := newMemoryRecorder()
	opts := DefaultOptions()
	opts.Budget = 50 * time.Millisecond
	p := NewPipeline(provider, log, rec, opts)

	_, err := p.Run(context.Background(), Request{Frames: distinctFrames(12), Mode: reasoning.ModeAthlete})
	if !errors.Is(err, ErrBudgetExceeded) {
		t.Fatalf("Run() error = %v, want ErrBudgetExceeded", err)
	}
	if !log.sawStage(StageFailed) {
		t.Error("logger missing failed transition")
	}
	if len(rec.outcomes) != 1 || rec.outcomes[0] != "athlete/timeout" {
		t.Errorf("recorder outcomes = %v, want athlete/timeout", rec.outcomes)
	}
}

func TestPipelineAuthErrorSurfaces(t *testing.T) {
	provider := happyProvider()
	provider.perceptionFn = func([]int) (*vision.GenerateResponse, error) {
		return nil, fmt.Errorf("generate content: %w", vision.ErrInvalidAPIKey)
	}

	opts := DefaultOptions()
	opts.Perception.RetryAttempts = 0
	p := NewPipeline(provider, nil, nil, opts)

	_, err := p.Run(context.Background(), Request{Frames: distinctFrames(12), Mode: reasoning.ModeAthlete})
	if !errors.Is(err, vision.ErrInvalidAPIKey) {
		t.Fatalf("Run() error = %v, want to surface ErrInvalidAPIKey", err)
	}
	if !errors.Is(err, ErrNoObservations) {
		t.Errorf("error should also carry ErrNoObservations, got %v", err)
	}
}

func TestPipelinePartialPerceptionDegrades(t *testing.T) {
	provider := happyProvider()
	inner := provider.perceptionFn
	provider.perceptionFn = func(frameIdx []int) (*vision.GenerateResponse, error) {
		for _, idx := range frameIdx {
			if idx == 5 {
				return textResponse("not json at all"), nil
			}
		}
		return inner(frameIdx)
	}

	opts := DefaultOptions()
	opts.Perception.RetryAttempts = 0
	p := NewPipeline(provider, nil, nil, opts)

	result, err := p.Run(context.Background(), Request{Frames: distinctFrames(12), Mode: reasoning.ModeAthlete})
	if err != nil {
		t.Fatalf("degraded run should still complete, got %v", err)
	}

	// Losing the middle batch drops 5 of 12 observations: coverage falls
	// under the floor and the cited takedown frame has no observation left.
	if !hasCheck(result.Flags, FlagPerceptionBatches) {
		t.Errorf("want %s flag, got %+v", FlagPerceptionBatches, result.Flags)
	}
	if !hasCheck(result.Flags, validation.CheckLowCoverage) {
		t.Errorf("want %s flag, got %+v", validation.CheckLowCoverage, result.Flags)
	}
	if !hasCheck(result.Flags, validation.CheckUnobservedEvidence) {
		t.Errorf("want %s flag, got %+v", validation.CheckUnobservedEvidence, result.Flags)
	}
	if result.Telemetry.ObservationCount != 7 {
		t.Errorf("ObservationCount = %d, want 7", result.Telemetry.ObservationCount)
	}
}

func TestPipelineOpponentMode(t *testing.T) {
	provider := happyProvider()
	provider.reasoningFn = func(prompt string) (*vision.GenerateResponse, error) {
		report := reasoning.ScoutingReport{
			Profile:         "pressure wrestler who hunts the right-side single",
			AttackPatterns:  []string{"snap to right single"},
			DefensePatterns: []string{"heavy sprawl"},
			PositionTendencies: reasoning.PositionTendencies{
				Standing: "circles right", Top: "leg rider", Bottom: "stands up early",
			},
			Gameplan: reasoning.Gameplan{
				FirstPeriod: "win the tie", SecondPeriod: "choose neutral",
				ThirdPeriod: "push the pace", OverallStrategy: "attack the left side",
			},
			FrameEvidence: []reasoning.FrameEvidence{{FrameIndex: 4, Description: "right single entry", RubricImpact: "attack pattern", IsKeyMoment: true}},
			Confidence:    0.7,
		}
		b, _ := json.Marshal(report)
		return textResponse(string(b)), nil
	}

	p := NewPipeline(provider, nil, nil, DefaultOptions())
	result, err := p.Run(context.Background(), Request{
		Frames: distinctFrames(12), Mode: reasoning.ModeOpponent, AthleteName: "rival",
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Mode != reasoning.ModeOpponent || result.Scouting == nil || result.Assessment != nil {
		t.Fatalf("result shape wrong: mode=%q", result.Mode)
	}
	if len(result.Flags) != 0 {
		t.Errorf("grounded scouting run raised flags: %+v", result.Flags)
	}
	if strings.Contains(provider.reasoningPrompt, "SCORING RUBRIC") {
		t.Error("opponent mode must not send the scoring rubric")
	}
}

func TestPipelineReasoningFailureFails(t *testing.T) {
	provider := happyProvider()
	provider.reasoningFn = func(string) (*vision.GenerateResponse, error) {
		return textResponse("I cannot produce JSON today"), nil
	}

	log := &memoryLogger{}
	rec := newMemoryRecorder()
	p := NewPipeline(provider, log, rec, DefaultOptions())

	_, err := p.Run(context.Background(), Request{Frames: distinctFrames(12), Mode: reasoning.ModeAthlete})
	if err == nil {
		t.Fatal("Run() error = nil, want reasoning parse failure")
	}
	if errors.Is(err, ErrBudgetExceeded) {
		t.Errorf("parse failure misreported as timeout: %v", err)
	}
	if !log.sawStage(StageFailed) {
		t.Error("logger missing failed transition")
	}
	if len(rec.outcomes) != 1 || rec.outcomes[0] != "athlete/failed" {
		t.Errorf("recorder outcomes = %v, want athlete/failed", rec.outcomes)
	}
}
