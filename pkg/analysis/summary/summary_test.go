package summary

import (
	"strings"
	"testing"

	"matvision-be/pkg/analysis/perception"
)

func quiet(idx int, pos perception.Position, action string) perception.Observation {
	return perception.Observation{
		FrameIndex:     idx,
		Position:       pos,
		Action:         action,
		Significance:   perception.SignificanceContext,
		AthleteVisible: true,
	}
}

func critical(idx int, action string) perception.Observation {
	return perception.Observation{
		FrameIndex:     idx,
		Position:       perception.PositionStanding,
		Action:         action,
		Contact:        "chest to chest",
		Significance:   perception.SignificanceCritical,
		AthleteVisible: true,
	}
}

func TestCompressPreservesHighlights(t *testing.T) {
	observations := []perception.Observation{
		quiet(0, perception.PositionStanding, "ATHLETE: circling"),
		quiet(1, perception.PositionStanding, "ATHLETE: hand fighting"),
		critical(2, "ATHLETE: Takedown (double leg)"),
		quiet(3, perception.PositionTop, "ATHLETE: riding"),
		quiet(4, perception.PositionTop, "ATHLETE: riding"),
	}

	s := Compress(observations)

	if len(s.Segments) != 3 {
		t.Fatalf("segments = %d, want 3 (quiet run, highlight, quiet run)", len(s.Segments))
	}
	h := s.Segments[1]
	if h.Kind != KindHighlight || h.StartFrame != 2 {
		t.Errorf("highlight segment wrong: %+v", h)
	}
	if !strings.Contains(h.Text, "ATHLETE: Takedown (double leg)") {
		t.Errorf("highlight text lost the verbatim action: %q", h.Text)
	}
	if !strings.Contains(s.Rendered(), "CRITICAL") {
		t.Errorf("rendered summary lost significance tags")
	}
}

func TestCompressMergesQuietRunsByPosition(t *testing.T) {
	observations := []perception.Observation{
		quiet(0, perception.PositionStanding, "ATHLETE: circling"),
		quiet(1, perception.PositionStanding, "ATHLETE: circling"),
		quiet(2, perception.PositionStanding, "ATHLETE: hand fighting"),
		quiet(3, perception.PositionTop, "ATHLETE: riding"),
		quiet(4, perception.PositionTop, "ATHLETE: riding"),
	}

	s := Compress(observations)

	if len(s.Segments) != 2 {
		t.Fatalf("segments = %d, want 2 (one per position run)", len(s.Segments))
	}
	first := s.Segments[0]
	if first.StartFrame != 0 || first.EndFrame != 2 || first.FrameCount != 3 {
		t.Errorf("first run segment wrong: %+v", first)
	}
	if len(first.Actions) != 2 {
		t.Errorf("unique actions = %v, want 2 entries", first.Actions)
	}
	if s.CondensedFrom != 5 {
		t.Errorf("CondensedFrom = %d, want 5", s.CondensedFrom)
	}
}

func TestCompressVisibilityAndStance(t *testing.T) {
	observations := []perception.Observation{
		quiet(0, perception.PositionStanding, "a"),
		quiet(1, perception.PositionStanding, "b"),
		quiet(2, perception.PositionStanding, "c"),
		quiet(3, perception.PositionStanding, "d"),
	}
	observations[0].Pose = &perception.PoseDescriptors{StanceHeight: "low"}
	observations[3].Pose = &perception.PoseDescriptors{StanceHeight: "high"}
	observations[1].AthleteVisible = false

	s := Compress(observations)
	if len(s.Segments) != 1 {
		t.Fatalf("segments = %d, want 1", len(s.Segments))
	}
	seg := s.Segments[0]
	if seg.VisibilityRatio != 0.75 {
		t.Errorf("visibility ratio = %v, want 0.75", seg.VisibilityRatio)
	}
	if seg.StanceTransition != "low to high" {
		t.Errorf("stance transition = %q, want %q", seg.StanceTransition, "low to high")
	}
	if !strings.Contains(seg.Text, "stance low to high") {
		t.Errorf("segment text missing stance transition: %q", seg.Text)
	}
}

func TestCompressBoundsGrowth(t *testing.T) {
	// A long quiet match must collapse to a handful of segments.
	var observations []perception.Observation
	for i := 0; i < 200; i++ {
		pos := perception.PositionStanding
		if i >= 100 {
			pos = perception.PositionTop
		}
		observations = append(observations, quiet(i, pos, "ATHLETE: steady"))
	}
	observations = append(observations, critical(200, "ATHLETE: Takedown (single leg)"))

	s := Compress(observations)
	if len(s.Segments) != 3 {
		t.Errorf("segments = %d, want 3 regardless of input length", len(s.Segments))
	}
	if s.OriginalCount != 201 {
		t.Errorf("OriginalCount = %d, want 201", s.OriginalCount)
	}
}
