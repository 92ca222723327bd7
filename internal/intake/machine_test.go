package intake

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aztecedu/pathway-advisor/internal/domain"
)

// reply runs the machine expecting a prompt outcome and extends the
// transcript with the prompt and the learner's scripted answer.
func reply(t *testing.T, m *Machine, tr domain.Transcript, answer string) domain.Transcript {
	t.Helper()
	out := m.Run(tr)
	require.Equal(t, OutcomePrompt, out.Kind, "expected a prompt, got reply %q", out.Reply)
	return append(tr, assistant(out.Reply), learner(answer))
}

func TestMachineWelcomesEmptyTranscript(t *testing.T) {
	m := NewMachine(FollowupStatic)

	out := m.Run(nil)
	assert.Equal(t, OutcomePrompt, out.Kind)
	assert.Equal(t, WelcomeMessage, out.Reply)

	// Assistant-only and blank-learner transcripts welcome too.
	out = m.Run(domain.Transcript{assistant("hi"), learner("   ")})
	assert.Equal(t, WelcomeMessage, out.Reply)
}

func TestMachineUnknownPathway(t *testing.T) {
	m := NewMachine(FollowupStatic)

	out := m.Run(domain.Transcript{learner("I want a better job")})
	assert.Equal(t, OutcomePrompt, out.Kind)
	assert.Equal(t, UnknownPathwayMessage, out.Reply)
}

func TestMachineComingSoonPathway(t *testing.T) {
	m := NewMachine(FollowupStatic)

	out := m.Run(domain.Transcript{learner("pharmacy tech please")})
	assert.Equal(t, OutcomePrompt, out.Kind)
	assert.Equal(t, ComingSoonMessage("pharmacy-technician"), out.Reply)
}

func TestMachinePathwayPickYieldsDiplomaPrompt(t *testing.T) {
	m := NewMachine(FollowupStatic)

	out := m.Run(domain.Transcript{learner("CBCS")})
	require.Equal(t, OutcomePrompt, out.Kind)
	assert.Equal(t, "Do you have a high-school diploma or high-school equivalency?\n• Yes\n• No", out.Reply)
}

func TestMachineYesAfterPathwayYieldsComfortPrompt(t *testing.T) {
	m := NewMachine(FollowupStatic)

	// "yes" answers the diploma question; nothing in between may swallow it.
	out := m.Run(domain.Transcript{learner("CBCS"), learner("yes")})
	require.Equal(t, OutcomePrompt, out.Kind)
	assert.Contains(t, out.Reply, "How comfortable are you working with spreadsheets?")
}

func TestMachineHappyPathWithDiploma(t *testing.T) {
	m := NewMachine(FollowupStatic)
	tr := domain.Transcript{learner("CBCS — I want to work in hospital billing")}

	tr = reply(t, m, tr, "Yes")
	tr = reply(t, m, tr, "Very comfortable—I use spreadsheets frequently")
	tr = reply(t, m, tr, "I have good time management skills.")
	tr = reply(t, m, tr, "I have good communication skills.")
	tr = reply(t, m, tr, "I work well with others and feel confident in my skills in this area.")
	tr = reply(t, m, tr, "a") // ICD-10 check
	tr = reply(t, m, tr, "toward the middle of the body")
	tr = reply(t, m, tr, "d) All of the above")

	out := m.Run(tr)
	require.Equal(t, OutcomePlan, out.Kind)
	require.NotNil(t, out.Answers)

	a := out.Answers
	assert.Equal(t, PathwayCBCS, a.PathwayID)
	assert.Equal(t, "I want to work in hospital billing", a.Goal)
	assert.True(t, a.HasDiploma)
	assert.Empty(t, a.Subjects)
	assert.Equal(t, ComfortExpert, a.Spreadsheet)
	assert.True(t, a.AllSkillsConfident())
	require.Len(t, a.KnowledgeChecks, 3)
	for _, kc := range a.KnowledgeChecks {
		assert.True(t, kc.Correct, kc.ItemID)
	}
}

func TestMachineNoDiplomaBranch(t *testing.T) {
	m := NewMachine(FollowupStatic)
	tr := domain.Transcript{learner("billing and coding")}

	tr = reply(t, m, tr, "No, I don't have a diploma")

	// The next prompt must be the readiness question, not spreadsheet comfort.
	out := m.Run(tr)
	require.Equal(t, OutcomePrompt, out.Kind)
	assert.Contains(t, out.Reply, "GED/HiSET prep")

	tr = reply(t, m, tr, "I'm ready to start prep right away.")
	tr = reply(t, m, tr, "math and science")

	// One review question per selected subject, in fixed subject order.
	out = m.Run(tr)
	require.Equal(t, OutcomePrompt, out.Kind)
	assert.Contains(t, out.Reply, "Quick math review")

	tr = reply(t, m, tr, "a) $375")

	out = m.Run(tr)
	require.Equal(t, OutcomePrompt, out.Kind)
	assert.Contains(t, out.Reply, "Quick science review")

	tr = reply(t, m, tr, "the digestive system")
	tr = reply(t, m, tr, "Somewhat comfortable—I know the basics")
	tr = reply(t, m, tr, "I could use some suggestions for improving time-management skills.")
	tr = reply(t, m, tr, "I have good communication skills.")
	tr = reply(t, m, tr, "I'm not sure what skills are related to working well with others.")
	tr = reply(t, m, tr, "a")
	tr = reply(t, m, tr, "a")
	tr = reply(t, m, tr, "a")

	out = m.Run(tr)
	require.Equal(t, OutcomePlan, out.Kind)

	a := out.Answers
	assert.False(t, a.HasDiploma)
	assert.Equal(t, ReadinessReady, a.Readiness)
	assert.Equal(t, []string{"math", "science"}, a.Subjects)
	require.Len(t, a.SubjectReviews, 2)
	assert.True(t, a.SubjectReviews[0].Correct)  // math: $375
	assert.False(t, a.SubjectReviews[1].Correct) // science: digestive
	assert.Equal(t, ConfidenceNeedsSupport, a.TimeManagement)
	assert.Equal(t, ConfidenceUnsure, a.Teamwork)
}

func TestMachineRepromptOnUnclassifiableReply(t *testing.T) {
	m := NewMachine(FollowupStatic)
	tr := domain.Transcript{learner("CBCS")}
	tr = append(tr, assistant("diploma prompt"), learner("what counts as one?"))

	out := m.Run(tr)
	require.Equal(t, OutcomePrompt, out.Kind)
	assert.Contains(t, out.Reply, "Just a quick check")

	// Re-running the identical transcript re-emits the identical re-prompt.
	again := m.Run(tr)
	assert.Equal(t, out.Reply, again.Reply)
}

func TestMachineDoesNotConsumeOneUtteranceTwice(t *testing.T) {
	m := NewMachine(FollowupStatic)
	tr := domain.Transcript{learner("CBCS")}
	// "Yes" resolves the diploma stage; the comfort stage must not reuse it
	// even though it would need an answer next.
	tr = reply(t, m, tr, "Yes")

	out := m.Run(tr)
	require.Equal(t, OutcomePrompt, out.Kind)
	assert.Contains(t, out.Reply, "spreadsheets")
}

func TestMachineDeterministicReplay(t *testing.T) {
	m := NewMachine(FollowupStatic)
	tr := domain.Transcript{learner("CBCS")}
	tr = reply(t, m, tr, "yes")

	first := m.Run(tr)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, m.Run(tr))
	}
}

func TestMachineTerminalStability(t *testing.T) {
	m := NewMachine(FollowupStatic)
	tr := domain.Transcript{
		learner("CBCS"),
		assistant(PlanMarker + "\n\nEligibility: ..."),
		learner("thanks! can you tell me more?"),
	}

	out := m.Run(tr)
	assert.Equal(t, OutcomeDelivered, out.Kind)
	assert.Equal(t, AlreadyDeliveredMessage, out.Reply)

	// Still terminal no matter how much chatter follows.
	tr = append(tr, assistant(AlreadyDeliveredMessage), learner("ok but really"))
	out = m.Run(tr)
	assert.Equal(t, OutcomeDelivered, out.Kind)
}

func TestMachineDynamicFollowups(t *testing.T) {
	m := NewMachine(FollowupDynamic)
	tr := domain.Transcript{learner("CBCS — hospital billing")}
	tr = reply(t, m, tr, "yes")
	tr = reply(t, m, tr, "somewhat comfortable")
	tr = reply(t, m, tr, "I have good time management skills.")
	tr = reply(t, m, tr, "I have good communication skills.")
	tr = reply(t, m, tr, "I work well with others and feel confident in my skills in this area.")

	// All stages resolved: the machine asks for follow-up generation.
	out := m.Run(tr)
	require.Equal(t, OutcomeFollowup, out.Kind)
	assert.Equal(t, 1, out.Ordinal)
	require.NotNil(t, out.Answers)

	// An unanswered tagged question is re-emitted verbatim.
	tr = append(tr, assistant(FormatFollowup(1, "What excites you about billing?")))
	out = m.Run(tr)
	require.Equal(t, OutcomePrompt, out.Kind)
	assert.Equal(t, FormatFollowup(1, "What excites you about billing?"), out.Reply)

	tr = append(tr, learner("the puzzle of getting claims right"))
	out = m.Run(tr)
	require.Equal(t, OutcomeFollowup, out.Kind)
	assert.Equal(t, 2, out.Ordinal)

	tr = append(tr,
		assistant(FormatFollowup(2, "How many hours can you study?")),
		learner("about ten a week"),
		assistant(FormatFollowup(3, "Anything else to factor in?")),
		learner("I work night shifts"),
	)

	out = m.Run(tr)
	require.Equal(t, OutcomePlan, out.Kind)
	require.Len(t, out.Answers.Followups, 3)
	assert.Equal(t, "the puzzle of getting claims right", out.Answers.Followups[0].Answer)
	assert.Equal(t, "I work night shifts", out.Answers.Followups[2].Answer)
	// Dynamic mode asks no knowledge checks.
	assert.Empty(t, out.Answers.KnowledgeChecks)
}

func TestMachinePromptsEchoVolunteeredGoal(t *testing.T) {
	m := NewMachine(FollowupStatic)
	tr := domain.Transcript{learner("CBCS — medical billing from home")}

	out := m.Run(tr)
	require.Equal(t, OutcomePrompt, out.Kind)
	assert.Contains(t, out.Reply, `"medical billing from home"`)
	assert.True(t, strings.Contains(out.Reply, "high-school diploma"))
}

func TestMachineUnknownModeFallsBackToStatic(t *testing.T) {
	m := NewMachine(FollowupMode("surprise"))
	assert.Equal(t, FollowupStatic, m.Mode())
}
