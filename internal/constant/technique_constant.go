package constant

// TechniqueVocabulary is the recognized wrestling term list. The validation
// stage flags vocabulary drift when most cited actions use none of these.
var TechniqueVocabulary = []string{
	// neutral offense
	"takedown", "double leg", "single leg", "high crotch", "ankle pick",
	"snap down", "duck under", "fireman", "throw", "headlock", "body lock",
	"shot", "penetration step", "level change", "sprawl", "re-shot",
	// ties and control
	"underhook", "overhook", "whizzer", "collar tie", "russian tie",
	"two on one", "front headlock", "hand fight", "inside control",
	// top wrestling
	"ride", "leg ride", "cross wrist", "claw", "spiral", "breakdown",
	"mat return", "lift", "tilt", "turn", "half nelson", "cradle",
	"arm bar", "bar arm", "turk", "pinning combination",
	// bottom wrestling
	"escape", "stand up", "switch", "granby", "sit out", "hip heist",
	"reversal", "base", "tripod",
	// scoring outcomes
	"near fall", "back points", "pin", "fall", "stalling",
}

// ScoringActionKeywords mark an action description as a points-scoring event.
var ScoringActionKeywords = []string{
	"takedown", "escape", "reversal", "near fall", "back points",
	"pin", "fall", "penalty point",
}

// Observation action descriptions prefix the actor so both wrestlers can be
// told apart downstream.
const (
	ActorAthletePrefix  = "ATHLETE:"
	ActorOpponentPrefix = "OPPONENT:"
)
