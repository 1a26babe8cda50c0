package perception

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"matvision-be/pkg/analysis/frames"
	"matvision-be/pkg/vision"
)

type fakeProvider struct {
	mu    sync.Mutex
	calls int
	fn    func(call int, contents []*vision.Content) (*vision.GenerateResponse, error)
}

func (f *fakeProvider) GenerateContent(_ context.Context, contents []*vision.Content, _ ...vision.Option) (*vision.GenerateResponse, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.mu.Unlock()
	return f.fn(call, contents)
}

func textResponse(text string) *vision.GenerateResponse {
	return &vision.GenerateResponse{
		Candidates: []*vision.Candidate{
			{Content: &vision.Content{Parts: []*vision.Part{{Text: text}}, Role: vision.RoleModel}},
		},
	}
}

func batchFrameIndices(contents []*vision.Content) []int {
	var out []int
	for _, content := range contents {
		for _, part := range content.Parts {
			var idx int
			if _, err := fmt.Sscanf(part.Text, "Frame %d:", &idx); err == nil {
				out = append(out, idx)
			}
		}
	}
	return out
}

func observationJSON(indices []int, build func(idx int) Observation) string {
	var observations []Observation
	for _, idx := range indices {
		observations = append(observations, build(idx))
	}
	raw, _ := json.Marshal(observations)
	return string(raw)
}

func standingObservation(idx int) Observation {
	return Observation{
		FrameIndex:         idx,
		Position:           PositionStanding,
		BodyPosition:       "square stance",
		Contact:            "collar tie",
		Action:             "ATHLETE: hand fighting for inside control",
		Significance:       SignificanceContext,
		AthleteVisible:     true,
		IdentityConsistent: true,
	}
}

func testFrames(n int) []frames.Frame {
	out := make([]frames.Frame, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, frames.Frame{Index: i, Data: []byte{byte(i), 0x01, 0x02}})
	}
	return out
}

func observeAll() *fakeProvider {
	return &fakeProvider{fn: func(_ int, contents []*vision.Content) (*vision.GenerateResponse, error) {
		return textResponse(observationJSON(batchFrameIndices(contents), standingObservation)), nil
	}}
}

func TestRunMergesByFrameIndex(t *testing.T) {
	provider := observeAll()
	input := testFrames(12)
	result := Run(context.Background(), provider, input, DefaultOptions())

	if len(result.Observations) != 12 {
		t.Fatalf("observations = %d, want 12", len(result.Observations))
	}
	for i, obs := range result.Observations {
		if obs.FrameIndex != i {
			t.Errorf("observation %d has frame index %d, merge order broken", i, obs.FrameIndex)
		}
	}
	if result.Batches != 3 {
		t.Errorf("batches = %d, want 3", result.Batches)
	}
	if result.CoverageRatio != 1.0 || result.CoverageWarning {
		t.Errorf("full coverage expected, got ratio %v warning %v", result.CoverageRatio, result.CoverageWarning)
	}
}

func TestRunFailedBatchDegradesCoverage(t *testing.T) {
	provider := &fakeProvider{fn: func(_ int, contents []*vision.Content) (*vision.GenerateResponse, error) {
		indices := batchFrameIndices(contents)
		// The batch holding frame 5 always fails.
		for _, idx := range indices {
			if idx == 5 {
				return nil, errors.New("model unavailable")
			}
		}
		return textResponse(observationJSON(indices, standingObservation)), nil
	}}

	input := testFrames(15)
	opts := DefaultOptions()
	opts.RetryAttempts = 0
	result := Run(context.Background(), provider, input, opts)

	if result.FailedBatches != 1 {
		t.Errorf("FailedBatches = %d, want 1", result.FailedBatches)
	}
	if len(result.Observations) != 10 {
		t.Errorf("observations = %d, want 10 (one batch lost)", len(result.Observations))
	}
	for _, obs := range result.Observations {
		if obs.FrameIndex >= 5 && obs.FrameIndex <= 9 {
			t.Errorf("failed batch leaked observation for frame %d", obs.FrameIndex)
		}
	}
	if result.CoverageWarning {
		t.Errorf("10/15 coverage is above the warning floor, ratio %v", result.CoverageRatio)
	}
}

func TestRunCoverageWarning(t *testing.T) {
	provider := &fakeProvider{fn: func(_ int, contents []*vision.Content) (*vision.GenerateResponse, error) {
		indices := batchFrameIndices(contents)
		if indices[0] == 0 {
			return textResponse(observationJSON(indices, standingObservation)), nil
		}
		return nil, errors.New("model unavailable")
	}}

	input := testFrames(15)
	opts := DefaultOptions()
	opts.RetryAttempts = 0
	result := Run(context.Background(), provider, input, opts)

	if !result.CoverageWarning {
		t.Errorf("5/15 coverage must warn, ratio %v", result.CoverageRatio)
	}
}

func TestRunRetryRecoversBatch(t *testing.T) {
	var mu sync.Mutex
	failedOnce := map[int]bool{}
	provider := &fakeProvider{}
	provider.fn = func(_ int, contents []*vision.Content) (*vision.GenerateResponse, error) {
		indices := batchFrameIndices(contents)
		mu.Lock()
		first := !failedOnce[indices[0]]
		failedOnce[indices[0]] = true
		mu.Unlock()
		if first {
			return nil, errors.New("transient")
		}
		return textResponse(observationJSON(indices, standingObservation)), nil
	}

	input := testFrames(10)
	result := Run(context.Background(), provider, input, DefaultOptions())

	if result.FailedBatches != 0 {
		t.Errorf("retry should have recovered all batches, failed %d", result.FailedBatches)
	}
	if len(result.Observations) != 10 {
		t.Errorf("observations = %d, want 10", len(result.Observations))
	}
}

func TestRunBatchCap(t *testing.T) {
	provider := observeAll()
	input := testFrames(80) // 16 natural batches
	result := Run(context.Background(), provider, input, DefaultOptions())

	if result.Batches != 15 {
		t.Fatalf("batches = %d, want cap 15", result.Batches)
	}
	if len(result.Observations) != 75 {
		t.Errorf("observations = %d, want 75 submitted frames", len(result.Observations))
	}

	got := map[int]bool{}
	for _, obs := range result.Observations {
		got[obs.FrameIndex] = true
	}
	for _, idx := range []int{0, 4, 75, 79} {
		if !got[idx] {
			t.Errorf("first/last batch frame %d missing after cap", idx)
		}
	}
	if result.CoverageRatio != 1.0 {
		t.Errorf("cap-dropped batches must not dent coverage, ratio %v", result.CoverageRatio)
	}
}

func TestRunDropsForeignIndicesAndNormalizes(t *testing.T) {
	provider := &fakeProvider{fn: func(_ int, contents []*vision.Content) (*vision.GenerateResponse, error) {
		indices := batchFrameIndices(contents)
		observations := []Observation{
			{FrameIndex: 999, Position: PositionStanding, Significance: SignificanceCritical, Action: "ATHLETE: invented", AthleteVisible: true, IdentityConsistent: true},
		}
		for _, idx := range indices {
			obs := standingObservation(idx)
			obs.Position = "cartwheel" // not a position
			obs.Significance = "MAXIMAL"
			observations = append(observations, obs)
		}
		raw, _ := json.Marshal(observations)
		return textResponse(string(raw)), nil
	}}

	input := testFrames(5)
	result := Run(context.Background(), provider, input, DefaultOptions())

	if len(result.Observations) != 5 {
		t.Fatalf("observations = %d, want 5 (foreign index dropped)", len(result.Observations))
	}
	for _, obs := range result.Observations {
		if obs.FrameIndex == 999 {
			t.Error("hallucinated frame index survived the merge")
		}
		if obs.Position != PositionTransition {
			t.Errorf("unknown position not normalized, got %q", obs.Position)
		}
		if obs.Significance != SignificanceContext {
			t.Errorf("unknown significance not normalized, got %q", obs.Significance)
		}
	}
}

func TestIdentityAndPositionConfidence(t *testing.T) {
	provider := &fakeProvider{fn: func(_ int, contents []*vision.Content) (*vision.GenerateResponse, error) {
		return textResponse(observationJSON(batchFrameIndices(contents), func(idx int) Observation {
			obs := standingObservation(idx)
			switch {
			case idx < 2:
				obs.AthleteVisible = false
				obs.Position = PositionNotVisible
			case idx < 4:
				obs.IdentityConsistent = false
			case idx >= 8:
				obs.Position = PositionTop
			}
			return obs
		})), nil
	}}

	input := testFrames(10)
	result := Run(context.Background(), provider, input, DefaultOptions())

	// 8 visible, 6 of them consistent.
	if result.IdentityConfidence != 0.75 {
		t.Errorf("IdentityConfidence = %v, want 0.75", result.IdentityConfidence)
	}
	if result.PositionConfidence[PositionStanding] != 0.6 {
		t.Errorf("standing confidence = %v, want 0.6", result.PositionConfidence[PositionStanding])
	}
	if result.PositionConfidence[PositionTop] != 0.2 {
		t.Errorf("top confidence = %v, want 0.2", result.PositionConfidence[PositionTop])
	}
}

func TestCriticalCount(t *testing.T) {
	result := Result{Observations: []Observation{
		{Significance: SignificanceCritical},
		{Significance: SignificanceContext},
		{Significance: SignificanceCritical},
	}}
	if result.CriticalCount() != 2 {
		t.Errorf("CriticalCount = %d, want 2", result.CriticalCount())
	}
}
