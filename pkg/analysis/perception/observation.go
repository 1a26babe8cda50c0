// Package perception runs the first model pass: raw frames in, structured
// per-frame observations out. No scoring happens here; that is the reasoning
// stage's job.
package perception

type Position string

const (
	PositionStanding   Position = "standing"
	PositionTop        Position = "top"
	PositionBottom     Position = "bottom"
	PositionTransition Position = "transition"
	PositionNotVisible Position = "not_visible"
)

type Significance string

const (
	SignificanceCritical  Significance = "CRITICAL"
	SignificanceImportant Significance = "IMPORTANT"
	SignificanceContext   Significance = "CONTEXT"
	SignificanceSkip      Significance = "SKIP"
)

// SignificanceWeight orders tiers for peak-frame selection.
func SignificanceWeight(s Significance) int {
	switch s {
	case SignificanceCritical:
		return 4
	case SignificanceImportant:
		return 2
	case SignificanceContext:
		return 1
	default:
		return 0
	}
}

// PoseDescriptors are the qualitative stance fields the pose augmentation
// layer converts into numeric proxies.
type PoseDescriptors struct {
	StanceHeight       string `json:"stance_height"`       // low | medium | high
	KneeBend           string `json:"knee_bend"`           // deep | slight | straight
	WeightDistribution string `json:"weight_distribution"` // forward | balanced | backward
	Entanglement       string `json:"entanglement"`        // none | light | heavy
}

// Observation is one frame's structured description. Immutable once produced;
// downstream corrections happen in the validation stage's own records, never
// here.
type Observation struct {
	FrameIndex         int              `json:"frame_index"`
	Position           Position         `json:"position"`
	BodyPosition       string           `json:"body_position"`
	Contact            string           `json:"contact"`
	Action             string           `json:"action"`
	Significance       Significance     `json:"significance"`
	AthleteVisible     bool             `json:"athlete_visible"`
	IdentityConsistent bool             `json:"identity_consistent"`
	Pose               *PoseDescriptors `json:"pose,omitempty"`
}
