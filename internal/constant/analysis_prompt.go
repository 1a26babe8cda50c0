package constant

// Static prompt blocks shared by the pipeline stages. Dynamic parts (frame
// indices, identification context, observation corpus) are assembled by each
// stage's own prompt builder.

const SignificancePromptBlock = `SIGNIFICANCE TIERS (tag every frame):
- CRITICAL: a scoring action or its immediate finish (takedown completion, escape, reversal, back exposure, pin attempt)
- IMPORTANT: a meaningful attempt or defense (shot entry, sprawl, turn attempt, stand-up attempt)
- CONTEXT: live wrestling with no attempt in progress (hand fighting, riding, positioning)
- SKIP: no wrestling content (break, referee, out of bounds, camera away)`

const ObservationRulesPromptBlock = `OBSERVATION RULES:
1. Describe, never judge. No scores, no coaching language, no praise or criticism.
2. One observation per frame, tied to the frame index you are given.
3. position is where the ATHLETE is: standing | top | bottom | transition | not_visible
4. Prefix every action with the actor: "ATHLETE:" or "OPPONENT:".
5. Name techniques precisely when visible (double leg, half nelson, switch...).
6. athlete_visible is false when the tracked athlete cannot be found in frame.
7. identity_consistent is false when you may have swapped the two wrestlers.`

const ReasoningRolePromptBlock = `You are an experienced wrestling coach preparing a technical breakdown from match observations. You never invent events that the observations do not support. Every claim cites frames.`

const ScoutingRolePromptBlock = `You are an experienced wrestling coach preparing a scouting report on an OPPONENT from match observations. Focus on patterns a wrestler can exploit, not on grading the opponent. Every pattern cites frames.`
