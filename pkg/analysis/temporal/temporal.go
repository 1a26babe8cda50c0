// Package temporal segments the observation stream into contiguous action
// windows and groups them into three match phases. Windows partition the
// input: every observation lands in exactly one window.
package temporal

import (
	"strings"

	"matvision-be/internal/constant"
	"matvision-be/pkg/analysis/perception"
)

type ActionType string

const (
	ActionTakedown      ActionType = "takedown"
	ActionPinAttempt    ActionType = "pin_attempt"
	ActionReversal      ActionType = "reversal"
	ActionEscape        ActionType = "escape"
	ActionMatReturn     ActionType = "mat_return"
	ActionShotEntry     ActionType = "shot_entry"
	ActionSprawlDefense ActionType = "sprawl_defense"
	ActionRideControl   ActionType = "ride_control"
	ActionHandFighting  ActionType = "hand_fighting"
	ActionNeutralMotion ActionType = "neutral_motion"
)

// Keyword tables checked in order; the first hit classifies the window.
// Higher-value actions come first so a window containing both a ride and a
// near fall reads as the pin attempt.
var actionTypeKeywords = []struct {
	actionType ActionType
	keywords   []string
}{
	{ActionTakedown, []string{"takedown", "double leg", "single leg", "high crotch", "ankle pick", "fireman", "throw", "body lock finish"}},
	{ActionPinAttempt, []string{"pin", "fall", "near fall", "back points", "back exposure", "half nelson", "cradle", "tilt", "arm bar", "turk"}},
	{ActionReversal, []string{"reversal", "switch", "granby", "roll through"}},
	{ActionEscape, []string{"escape", "stand up", "stand-up", "sit out", "hip heist"}},
	{ActionMatReturn, []string{"mat return", "lift", "return to the mat"}},
	{ActionShotEntry, []string{"shot", "penetration", "level change", "duck under"}},
	{ActionSprawlDefense, []string{"sprawl", "whizzer", "stuff", "defend"}},
	{ActionRideControl, []string{"ride", "leg ride", "claw", "spiral", "cross wrist", "breakdown"}},
	{ActionHandFighting, []string{"hand fight", "collar tie", "underhook", "overhook", "russian tie", "two on one", "front headlock", "inside control", "snap down"}},
}

var fallbackByPosition = map[perception.Position]ActionType{
	perception.PositionStanding:   ActionNeutralMotion,
	perception.PositionTop:        ActionRideControl,
	perception.PositionBottom:     ActionEscape,
	perception.PositionTransition: ActionNeutralMotion,
	perception.PositionNotVisible: ActionNeutralMotion,
}

type ActionWindow struct {
	StartFrame   int                     `json:"start_frame"`
	PeakFrame    int                     `json:"peak_frame"`
	EndFrame     int                     `json:"end_frame"`
	Position     perception.Position     `json:"position"`
	ActionType   ActionType              `json:"action_type"`
	Significance perception.Significance `json:"significance"`
	ScoringEvent bool                    `json:"scoring_event"`
	FrameIndices []int                   `json:"frame_indices"`
}

type Phase struct {
	Index            int                 `json:"index"` // 0, 1, 2
	StartFrame       int                 `json:"start_frame"`
	EndFrame         int                 `json:"end_frame"`
	DominantPosition perception.Position `json:"dominant_position"`
	Intensity        string              `json:"intensity"` // low | medium | high
	ScoringEvents    int                 `json:"scoring_events"`
	WindowCount      int                 `json:"window_count"`
}

type Tempo struct {
	ScoringRatio float64 `json:"scoring_ratio"`
	Tier         string  `json:"tier"` // low | medium | high
}

type Profile struct {
	Windows []ActionWindow `json:"windows"`
	Phases  [3]Phase       `json:"phases"`
	Tempo   Tempo          `json:"tempo"`
}

// BuildProfile windows the observations and derives phases and tempo.
// Observations must already be in frame order (perception guarantees this).
func BuildProfile(observations []perception.Observation) Profile {
	windows := detectWindows(observations)
	profile := Profile{
		Windows: windows,
		Phases:  groupPhases(windows),
		Tempo:   deriveTempo(windows),
	}
	return profile
}

func detectWindows(observations []perception.Observation) []ActionWindow {
	if len(observations) == 0 {
		return nil
	}

	var windows []ActionWindow
	current := []perception.Observation{observations[0]}

	for i := 1; i < len(observations); i++ {
		obs := observations[i]
		prev := current[len(current)-1]

		breakWindow := obs.Position != prev.Position ||
			obs.FrameIndex-prev.FrameIndex > 2 ||
			(obs.Significance == perception.SignificanceCritical && prev.Significance != perception.SignificanceCritical)

		if breakWindow {
			windows = append(windows, finishWindow(current))
			current = current[:0:0]
		}
		current = append(current, obs)
	}
	windows = append(windows, finishWindow(current))
	return windows
}

func finishWindow(observations []perception.Observation) ActionWindow {
	window := ActionWindow{
		StartFrame: observations[0].FrameIndex,
		EndFrame:   observations[len(observations)-1].FrameIndex,
		Position:   observations[0].Position,
	}

	var text strings.Builder
	peakWeight := -1
	for _, obs := range observations {
		window.FrameIndices = append(window.FrameIndices, obs.FrameIndex)
		text.WriteString(strings.ToLower(obs.Action))
		text.WriteString(" ")
		text.WriteString(strings.ToLower(obs.Contact))
		text.WriteString(" ")

		if w := perception.SignificanceWeight(obs.Significance); w > peakWeight {
			peakWeight = w
			window.PeakFrame = obs.FrameIndex
			window.Significance = obs.Significance
		}
	}

	corpus := text.String()
	window.ActionType = classify(corpus, window.Position)
	window.ScoringEvent = containsScoringKeyword(corpus)
	return window
}

func classify(corpus string, position perception.Position) ActionType {
	for _, entry := range actionTypeKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(corpus, kw) {
				return entry.actionType
			}
		}
	}
	if fallback, ok := fallbackByPosition[position]; ok {
		return fallback
	}
	return ActionNeutralMotion
}

func containsScoringKeyword(corpus string) bool {
	for _, kw := range constant.ScoringActionKeywords {
		if strings.Contains(corpus, kw) {
			return true
		}
	}
	return false
}

// groupPhases splits the window list into thirds. Phases can be empty for
// very short matches; consumers check WindowCount.
func groupPhases(windows []ActionWindow) [3]Phase {
	var phases [3]Phase
	n := len(windows)

	for p := 0; p < 3; p++ {
		phase := Phase{Index: p}
		start, end := p*n/3, (p+1)*n/3
		slice := windows[start:end]
		phase.WindowCount = len(slice)

		if len(slice) > 0 {
			phase.StartFrame = slice[0].StartFrame
			phase.EndFrame = slice[len(slice)-1].EndFrame
			phase.DominantPosition = dominantPosition(slice)
			phase.Intensity = phaseIntensity(slice)
			for _, w := range slice {
				if w.ScoringEvent {
					phase.ScoringEvents++
				}
			}
		}
		phases[p] = phase
	}
	return phases
}

func dominantPosition(windows []ActionWindow) perception.Position {
	counts := map[perception.Position]int{}
	for _, w := range windows {
		counts[w.Position] += len(w.FrameIndices)
	}

	best := windows[0].Position
	for _, w := range windows {
		if counts[w.Position] > counts[best] {
			best = w.Position
		}
	}
	return best
}

func phaseIntensity(windows []ActionWindow) string {
	scoring := 0
	hasCritical, hasImportant := false, false
	for _, w := range windows {
		if w.ScoringEvent {
			scoring++
		}
		switch w.Significance {
		case perception.SignificanceCritical:
			hasCritical = true
		case perception.SignificanceImportant:
			hasImportant = true
		}
	}

	if hasCritical || float64(scoring)/float64(len(windows)) >= 0.3 {
		return "high"
	}
	if hasImportant {
		return "medium"
	}
	return "low"
}

func deriveTempo(windows []ActionWindow) Tempo {
	if len(windows) == 0 {
		return Tempo{Tier: "low"}
	}

	scoring := 0
	for _, w := range windows {
		if w.ScoringEvent {
			scoring++
		}
	}
	ratio := float64(scoring) / float64(len(windows))

	tier := "low"
	if ratio >= 0.25 {
		tier = "high"
	} else if ratio >= 0.10 {
		tier = "medium"
	}
	return Tempo{ScoringRatio: ratio, Tier: tier}
}
