package intake

import "fmt"

// Fixed edge-policy messages. PlanMarker opens every delivered plan and is
// the terminal sentinel the machine looks for on replay: once it appears in
// an assistant message, the intake is over.
const (
	WelcomeMessage = "Hi there! Choose one of the pathway buttons to get started, or tell me which certification you want to explore."

	UnknownPathwayMessage = "I didn't catch which pathway you want to explore. Tap one of the pathway buttons above—CBCS, Pharmacy Technician, CCMA, or CMAA—to continue."

	PlanMarker = "Thanks for sharing those details! Here's the Aztec IET guidance for the Certified Billing and Coding Specialist (CBCS) pathway:"

	AlreadyDeliveredMessage = "You've already received your personalized plan above. Let me know whenever you want more resources or practice questions!"
)

// ComingSoonMessage is returned for pathways without a scripted intake yet.
func ComingSoonMessage(pathwayID string) string {
	return fmt.Sprintf("%s guidance is coming soon in this demo. For now, pick %q to walk through the scripted experience.",
		PathwayLabel(pathwayID), PathwayLabel(PathwayCBCS))
}

// Stage IDs, in walk order. Conditional stages appear only when the
// inclusion rule derived from earlier answers says so. StageGoal is not a
// walked stage: the machine seeds it when the learner volunteers a goal
// alongside the pathway choice, so later prompts can echo it.
const (
	StageGoal           = "goal"
	StageDiploma        = "diploma"
	StageReadiness      = "readiness"
	StageSubjects       = "subjects"
	StageComfort        = "spreadsheet-comfort"
	StageTimeManagement = "time-management"
	StageCommunication  = "communication"
	StageTeamwork       = "teamwork"
)

// Stage is one fixed step of the intake: a prompt template, a friendlier
// re-prompt for when a reply exists but fails to classify, and the
// classifier that resolves it. Prompt templates may consult earlier answers
// (echoing the captured goal, acknowledging the diploma answer).
type Stage struct {
	ID       string
	Prompt   func(r Resolved) string
	Reprompt func(r Resolved) string
	Classify Classifier
}

// Resolved holds the answers classified so far, keyed by stage ID.
type Resolved map[string]Candidate

// Value returns the classified value for a stage, or "".
func (r Resolved) Value(stageID string) string {
	return r[stageID].Value
}

// HasDiploma reports the diploma answer. Only meaningful once the diploma
// stage resolved.
func (r Resolved) HasDiploma() bool {
	return r.Value(StageDiploma) == AnswerYes
}

// Subjects returns the multi-selected equivalency subjects in fixed order.
func (r Resolved) Subjects() []string {
	return SplitSubjects(r.Value(StageSubjects))
}

const comfortOptions = "• Very comfortable—I use spreadsheets frequently and consider myself an expert.\n" +
	"• Somewhat comfortable—I occasionally use spreadsheets and know the basics.\n" +
	"• Not comfortable—I rarely use or have never used spreadsheets.\n" +
	"• What is a spreadsheet?"

const timeManagementOptions = "• I have good time management skills.\n" +
	"• I could use some suggestions for improving time-management skills.\n" +
	"• I'm not sure what time management skills are."

const communicationOptions = "• I have good communication skills.\n" +
	"• I could use some suggestions for improving communication skills.\n" +
	"• I'm not sure what communication skills are."

const teamworkOptions = "• I work well with others and feel confident in my skills in this area.\n" +
	"• I could use some suggestions for improving how I work with others.\n" +
	"• I'm not sure what skills are related to working well with others."

const readinessOptions = "• I'm ready to start prep right away.\n" +
	"• Almost there—I want to start in the next few months.\n" +
	"• I'm just starting to think about it."

const subjectOptions = "• Math\n• Reading\n• Writing\n• Science\n• Social Studies"

func diplomaStage() Stage {
	return Stage{
		ID: StageDiploma,
		Prompt: func(r Resolved) string {
			if goal := r.Value(StageGoal); goal != "" {
				return fmt.Sprintf("Thanks—we'll keep %q in focus. Do you have a high-school diploma or high-school equivalency?\n• Yes\n• No", goal)
			}
			return "Do you have a high-school diploma or high-school equivalency?\n• Yes\n• No"
		},
		Reprompt: func(Resolved) string {
			return "Just a quick check—do you currently have a high-school diploma or high-school equivalency (GED/HiSET)?\n• Yes\n• No"
		},
		Classify: ClassifyYesNo,
	}
}

func readinessStage() Stage {
	return Stage{
		ID: StageReadiness,
		Prompt: func(Resolved) string {
			return "Thanks for letting me know. We can plan for your high-school equivalency while you build coding skills. How soon do you want to start GED/HiSET prep?\n" + readinessOptions
		},
		Reprompt: func(Resolved) string {
			return "Could you pick the option closest to your timeline for starting GED/HiSET prep?\n" + readinessOptions
		},
		Classify: ClassifyReadiness,
	}
}

func subjectsStage() Stage {
	return Stage{
		ID: StageSubjects,
		Prompt: func(Resolved) string {
			return "Which subjects would you like to brush up on for your equivalency? Pick as many as apply.\n" + subjectOptions
		},
		Reprompt: func(Resolved) string {
			return "Could you name at least one subject to focus on—math, reading, writing, science, or social studies?\n" + subjectOptions
		},
		Classify: ClassifySubjects,
	}
}

func reviewStage(item QuizItem) Stage {
	return Stage{
		ID: "review:" + item.Subject,
		Prompt: func(Resolved) string {
			return item.PromptText()
		},
		Reprompt: func(Resolved) string {
			return "No worries—just pick one of the lettered options.\n" + item.PromptText()
		},
		Classify: item.Classifier(),
	}
}

func comfortStage() Stage {
	return Stage{
		ID: StageComfort,
		Prompt: func(r Resolved) string {
			if r.HasDiploma() {
				return "Great! Having a high-school diploma or high-school equivalency meets one of the CBCS requirements. How comfortable are you working with spreadsheets?\n" + comfortOptions
			}
			return "Good to know where you're starting from. How comfortable are you working with spreadsheets?\n" + comfortOptions
		},
		Reprompt: func(Resolved) string {
			return "How comfortable are you working with spreadsheets?\n" + comfortOptions
		},
		Classify: ClassifyComfort,
	}
}

func timeManagementStage() Stage {
	return Stage{
		ID: StageTimeManagement,
		Prompt: func(Resolved) string {
			return "How do you feel about your time-management skills?\n" + timeManagementOptions
		},
		Reprompt: func(Resolved) string {
			return "Could you pick the option that best describes your time-management skills?\n" + timeManagementOptions
		},
		Classify: ClassifyConfidence,
	}
}

func communicationStage() Stage {
	return Stage{
		ID: StageCommunication,
		Prompt: func(Resolved) string {
			return "Here's the next one: How do you feel about your communication skills?\n" + communicationOptions
		},
		Reprompt: func(Resolved) string {
			return "Please let me know which option fits your communication skills.\n" + communicationOptions
		},
		Classify: ClassifyConfidence,
	}
}

func teamworkStage() Stage {
	return Stage{
		ID: StageTeamwork,
		Prompt: func(Resolved) string {
			return "Here's the last question about soft skills: How do you feel about your ability to work with others?\n" + teamworkOptions
		},
		Reprompt: func(Resolved) string {
			return "Please choose the option that best describes how you work with others.\n" + teamworkOptions
		},
		Classify: ClassifyConfidence,
	}
}

func knowledgeCheckStage(item QuizItem) Stage {
	return Stage{
		ID: item.ID,
		Prompt: func(Resolved) string {
			return item.PromptText()
		},
		Reprompt: func(Resolved) string {
			return "Just pick one of the lettered options—no pressure, this only helps me tune your plan.\n" + item.PromptText()
		},
		Classify: item.Classifier(),
	}
}

// StagesFor builds the ordered stage list for a transcript whose answers so
// far are r. The inclusion rule is a pure function of resolved answers, so
// replays rebuild the identical list: the no-diploma branch adds readiness,
// subject selection, and one review item per selected subject; static
// follow-up mode appends the fixed knowledge-check items.
func StagesFor(r Resolved, mode FollowupMode) []Stage {
	stages := []Stage{diplomaStage()}

	if _, ok := r[StageDiploma]; ok && !r.HasDiploma() {
		stages = append(stages, readinessStage(), subjectsStage())
		for _, subject := range r.Subjects() {
			if item, ok := SubjectReviewItems[subject]; ok {
				stages = append(stages, reviewStage(item))
			}
		}
	}

	stages = append(stages, comfortStage(), timeManagementStage(), communicationStage(), teamworkStage())

	if mode == FollowupStatic {
		for _, item := range KnowledgeCheckItems {
			stages = append(stages, knowledgeCheckStage(item))
		}
	}
	return stages
}
