package intake

import (
	"sort"
	"strings"

	"github.com/aztecedu/pathway-advisor/internal/domain"
)

// OutcomeKind says what the machine decided for this transcript.
type OutcomeKind int

const (
	// OutcomePrompt carries the next message to send: a welcome, a stage
	// prompt or re-prompt, a coming-soon notice, or a re-emitted follow-up.
	OutcomePrompt OutcomeKind = iota
	// OutcomeFollowup means a new follow-up question must be generated for
	// Ordinal; Answers carries the grounding material.
	OutcomeFollowup
	// OutcomePlan means every stage resolved and the plan should be built
	// from Answers.
	OutcomePlan
	// OutcomeDelivered means the transcript already contains a delivered
	// plan; Reply is the fixed already-delivered message.
	OutcomeDelivered
)

// Outcome is the machine's single decision for one request.
type Outcome struct {
	Kind    OutcomeKind
	Reply   string
	Ordinal int
	Answers *Answers
}

// Machine walks the ordered stage list against a transcript. It holds no
// per-conversation state: every Run re-derives progress from scratch, so the
// same transcript always yields the same outcome.
type Machine struct {
	mode FollowupMode
}

// NewMachine creates a stage machine. Unknown modes fall back to static.
func NewMachine(mode FollowupMode) *Machine {
	if mode != FollowupDynamic {
		mode = FollowupStatic
	}
	return &Machine{mode: mode}
}

// Mode returns the configured follow-up mode.
func (m *Machine) Mode() FollowupMode {
	return m.mode
}

// Run evaluates the transition rule once. Starting just after the
// pathway-choice message, each stage in order scans for an answer: no
// candidate at all emits the stage prompt, a candidate that fails to
// classify emits the re-prompt, and a success advances the scan position
// past the consumed message. Only when every stage is satisfied does the
// machine hand off to plan generation.
func (m *Machine) Run(t domain.Transcript) Outcome {
	if HasPlanMarker(t) {
		return Outcome{Kind: OutcomeDelivered, Reply: AlreadyDeliveredMessage}
	}

	if !hasLearnerText(t) {
		return Outcome{Kind: OutcomePrompt, Reply: WelcomeMessage}
	}

	pathway, ok := firstPathwayChoice(t)
	if !ok {
		return Outcome{Kind: OutcomePrompt, Reply: UnknownPathwayMessage}
	}
	if pathway.Value != PathwayCBCS {
		return Outcome{Kind: OutcomePrompt, Reply: ComingSoonMessage(pathway.Value)}
	}

	resolved := Resolved{}
	var trail []ClassifiedAnswer
	pos := pathway.Position

	// Goal capture is optional and never consumes a later utterance: only a
	// goal volunteered in the pathway-choice message itself is recorded, so a
	// bare pathway pick moves straight to the diploma question.
	if goal, ok := VolunteeredGoal(pathway.RawText); ok {
		resolved[StageGoal] = Candidate{Position: pathway.Position, RawText: pathway.RawText, Value: goal, OK: true}
		trail = append(trail, ClassifiedAnswer{
			StageID:        StageGoal,
			RawText:        pathway.RawText,
			Value:          goal,
			SourcePosition: pathway.Position,
		})
	}

	// The stage list is recomputed every step because conditional branches
	// (readiness, subject reviews) only join it once the answers that gate
	// them resolve. The recomputation is pure, so replays walk the same list.
	for i := 0; ; i++ {
		stages := StagesFor(resolved, m.mode)
		if i >= len(stages) {
			break
		}
		st := stages[i]
		cand, found := FindAnswer(t, pos, st.Classify)
		if !found {
			return Outcome{Kind: OutcomePrompt, Reply: st.Prompt(resolved)}
		}
		if !cand.OK {
			return Outcome{Kind: OutcomePrompt, Reply: st.Reprompt(resolved)}
		}
		resolved[st.ID] = cand
		trail = append(trail, ClassifiedAnswer{
			StageID:        st.ID,
			RawText:        cand.RawText,
			Value:          cand.Value,
			SourcePosition: cand.Position,
		})
		pos = cand.Position
	}

	var followups []FollowupExchange
	if m.mode == FollowupDynamic {
		byOrdinal := collectFollowups(t)
		for n := 1; n <= MaxFollowups; n++ {
			ex, present := byOrdinal[n]
			if !present {
				return Outcome{
					Kind:    OutcomeFollowup,
					Ordinal: n,
					Answers: buildAnswers(resolved, trail, followups),
				}
			}
			if !ex.Answered {
				// The learner hasn't replied yet. Re-emitting the recorded
				// question keeps the reply identical across replays.
				return Outcome{Kind: OutcomePrompt, Reply: FormatFollowup(n, ex.Question)}
			}
			followups = append(followups, ex)
		}
		sort.Slice(followups, func(i, j int) bool { return followups[i].Ordinal < followups[j].Ordinal })
	}

	return Outcome{Kind: OutcomePlan, Answers: buildAnswers(resolved, trail, followups)}
}

// HasPlanMarker reports whether an assistant message in the transcript
// already opens with the plan marker sentence.
func HasPlanMarker(t domain.Transcript) bool {
	for i := range t {
		if t[i].Role == domain.RoleAssistant && strings.HasPrefix(strings.TrimSpace(t[i].Text), PlanMarker) {
			return true
		}
	}
	return false
}
