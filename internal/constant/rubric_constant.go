package constant

// Position weights for the overall score. overall = round(standing*0.4 + top*0.3 + bottom*0.3).
const (
	StandingWeight = 0.4
	TopWeight      = 0.3
	BottomWeight   = 0.3
)

// Per-item sub-score bounds. Each position's items sum to a 0-100 position score.
const (
	StandingItemMax = 20
	TopItemMax      = 25
	BottomItemMax   = 25
)

var StandingRubricItems = []string{
	"stance_and_motion",
	"level_change",
	"shot_entries",
	"shot_finishes",
	"hand_fighting",
}

var TopRubricItems = []string{
	"ride_control",
	"turn_attempts",
	"mat_returns",
	"pinning_pressure",
}

var BottomRubricItems = []string{
	"base_recovery",
	"stand_ups",
	"escapes",
	"reversal_threats",
}

const RubricPromptBlock = `SCORING RUBRIC (follow exactly):

STANDING (0-100 total, five items scored 0-20 each):
- stance_and_motion: stance height discipline, constant motion, angle creation
- level_change: depth and timing of level changes before attacks
- shot_entries: penetration step quality, distance closing, setups before shots
- shot_finishes: converting entries to completed takedowns, chain wrestling off stuffed shots
- hand_fighting: inside control, collar/wrist ties won, posture breaking

TOP (0-100 total, four items scored 0-25 each):
- ride_control: hip pressure, leg rides, breaking the opponent flat
- turn_attempts: tilts, half nelsons, cradles and other back-exposure attempts
- mat_returns: lifting and returning a standing opponent to the mat
- pinning_pressure: chest-to-chest control, finishing position toward a fall

BOTTOM (0-100 total, four items scored 0-25 each):
- base_recovery: rebuilding base after breakdowns, hand control
- stand_ups: explosive stand-up attempts and finishing to neutral
- escapes: completed escapes to neutral
- reversal_threats: switches, rolls, and other reversal attempts

ARITHMETIC RULES:
1. Each position score MUST equal the sum of its item scores.
2. overall_score MUST equal round(standing*0.4 + top*0.3 + bottom*0.3).
3. Score only what the frames show. A position never wrestled scores 0 with no invented items.`
