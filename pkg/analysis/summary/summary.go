// Package summary compresses the observation corpus for the reasoning
// prompt. High-significance observations survive verbatim; quiet stretches
// collapse into condensed segments so prompt size stays bounded as frame
// count grows.
package summary

import (
	"fmt"
	"strings"

	"matvision-be/pkg/analysis/perception"
)

const (
	KindHighlight = "highlight"
	KindCondensed = "condensed"
)

type Segment struct {
	Kind             string                  `json:"kind"`
	StartFrame       int                     `json:"start_frame"`
	EndFrame         int                     `json:"end_frame"`
	FrameCount       int                     `json:"frame_count"`
	Position         perception.Position     `json:"position"`
	Significance     perception.Significance `json:"significance,omitempty"`
	Text             string                  `json:"text"`
	Actions          []string                `json:"actions,omitempty"`
	VisibilityRatio  float64                 `json:"visibility_ratio,omitempty"`
	StanceTransition string                  `json:"stance_transition,omitempty"`
}

type Summary struct {
	Segments      []Segment `json:"segments"`
	OriginalCount int       `json:"original_count"`
	CondensedFrom int       `json:"condensed_from"`
}

// Rendered is the prompt-ready text form.
func (s *Summary) Rendered() string {
	lines := make([]string, 0, len(s.Segments))
	for _, seg := range s.Segments {
		lines = append(lines, seg.Text)
	}
	return strings.Join(lines, "\n")
}

// Compress folds runs of same-position CONTEXT/SKIP observations into one
// segment each. CRITICAL and IMPORTANT observations always become standalone
// segments; nothing scoring-relevant is ever dropped.
func Compress(observations []perception.Observation) Summary {
	out := Summary{OriginalCount: len(observations)}

	var run []perception.Observation
	flushRun := func() {
		if len(run) == 0 {
			return
		}
		out.Segments = append(out.Segments, condense(run))
		out.CondensedFrom += len(run)
		run = run[:0:0]
	}

	for _, obs := range observations {
		switch obs.Significance {
		case perception.SignificanceCritical, perception.SignificanceImportant:
			flushRun()
			out.Segments = append(out.Segments, highlight(obs))
		default:
			if len(run) > 0 && run[len(run)-1].Position != obs.Position {
				flushRun()
			}
			run = append(run, obs)
		}
	}
	flushRun()
	return out
}

func highlight(obs perception.Observation) Segment {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[frame %d] %s %s | %s", obs.FrameIndex, obs.Significance, obs.Position, obs.Action)
	if obs.Contact != "" {
		fmt.Fprintf(&sb, " | contact: %s", obs.Contact)
	}
	if obs.BodyPosition != "" {
		fmt.Fprintf(&sb, " | %s", obs.BodyPosition)
	}
	if !obs.AthleteVisible {
		sb.WriteString(" | athlete not visible")
	}

	return Segment{
		Kind:         KindHighlight,
		StartFrame:   obs.FrameIndex,
		EndFrame:     obs.FrameIndex,
		FrameCount:   1,
		Position:     obs.Position,
		Significance: obs.Significance,
		Text:         sb.String(),
	}
}

func condense(run []perception.Observation) Segment {
	seg := Segment{
		Kind:       KindCondensed,
		StartFrame: run[0].FrameIndex,
		EndFrame:   run[len(run)-1].FrameIndex,
		FrameCount: len(run),
		Position:   run[0].Position,
	}

	visible := 0
	seen := map[string]bool{}
	var firstStance, lastStance string
	for _, obs := range run {
		if obs.AthleteVisible {
			visible++
		}
		action := strings.TrimSpace(obs.Action)
		if action != "" && !seen[action] {
			seen[action] = true
			seg.Actions = append(seg.Actions, action)
		}
		if obs.Pose != nil && obs.Pose.StanceHeight != "" {
			if firstStance == "" {
				firstStance = obs.Pose.StanceHeight
			}
			lastStance = obs.Pose.StanceHeight
		}
	}
	seg.VisibilityRatio = float64(visible) / float64(len(run))
	if firstStance != "" && firstStance != lastStance {
		seg.StanceTransition = fmt.Sprintf("%s to %s", firstStance, lastStance)
	}

	var sb strings.Builder
	if seg.StartFrame == seg.EndFrame {
		fmt.Fprintf(&sb, "[frame %d]", seg.StartFrame)
	} else {
		fmt.Fprintf(&sb, "[frames %d-%d]", seg.StartFrame, seg.EndFrame)
	}
	fmt.Fprintf(&sb, " %s, %d quiet frames", seg.Position, seg.FrameCount)
	if len(seg.Actions) > 0 {
		fmt.Fprintf(&sb, " | actions: %s", strings.Join(seg.Actions, "; "))
	}
	fmt.Fprintf(&sb, " | visible %.0f%%", seg.VisibilityRatio*100)
	if seg.StanceTransition != "" {
		fmt.Fprintf(&sb, " | stance %s", seg.StanceTransition)
	}
	seg.Text = sb.String()
	return seg
}
