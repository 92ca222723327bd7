package intake

import (
	"fmt"
	"strings"
)

// ClassifiedAnswer anchors a stage's resolved value to the transcript
// position it came from. SourcePosition is what keeps later stages from
// re-consuming an utterance already bound to an earlier stage.
type ClassifiedAnswer struct {
	StageID        string
	RawText        string
	Value          string
	SourcePosition int
}

// SubjectReview is the outcome of one per-subject review question in the
// no-diploma branch.
type SubjectReview struct {
	Subject   string
	ChosenKey string
	Correct   bool
}

// KnowledgeCheck is the outcome of one fixed CBCS knowledge-check item.
type KnowledgeCheck struct {
	ItemID    string
	ChosenKey string
	Correct   bool
}

// Answers is the complete, typed view of a finished intake. The blueprint
// builder consumes it; nothing in it can fail to derive once the machine has
// resolved every stage.
type Answers struct {
	PathwayID       string
	Goal            string
	HasDiploma      bool
	Readiness       Readiness
	Subjects        []string
	SubjectReviews  []SubjectReview
	Spreadsheet     Comfort
	TimeManagement  Confidence
	Communication   Confidence
	Teamwork        Confidence
	KnowledgeChecks []KnowledgeCheck
	Followups       []FollowupExchange

	// Classified preserves the document-order resolution trail.
	Classified []ClassifiedAnswer
}

func buildAnswers(resolved Resolved, trail []ClassifiedAnswer, followups []FollowupExchange) *Answers {
	a := &Answers{
		PathwayID:      PathwayCBCS,
		Goal:           resolved.Value(StageGoal),
		HasDiploma:     resolved.HasDiploma(),
		Subjects:       resolved.Subjects(),
		Spreadsheet:    Comfort(resolved.Value(StageComfort)),
		TimeManagement: Confidence(resolved.Value(StageTimeManagement)),
		Communication:  Confidence(resolved.Value(StageCommunication)),
		Teamwork:       Confidence(resolved.Value(StageTeamwork)),
		Followups:      followups,
		Classified:     trail,
	}
	if !a.HasDiploma {
		a.Readiness = Readiness(resolved.Value(StageReadiness))
		for _, subject := range a.Subjects {
			item, ok := SubjectReviewItems[subject]
			if !ok {
				continue
			}
			chosen := resolved.Value("review:" + subject)
			a.SubjectReviews = append(a.SubjectReviews, SubjectReview{
				Subject:   subject,
				ChosenKey: chosen,
				Correct:   chosen == item.CorrectKey(),
			})
		}
	}
	for _, item := range KnowledgeCheckItems {
		if chosen := resolved.Value(item.ID); chosen != "" {
			a.KnowledgeChecks = append(a.KnowledgeChecks, KnowledgeCheck{
				ItemID:    item.ID,
				ChosenKey: chosen,
				Correct:   chosen == item.CorrectKey(),
			})
		}
	}
	return a
}

// Summary renders a compact factual digest of the intake, used as grounding
// context for the generative backend.
func (a *Answers) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Pathway: %s\n", PathwayLabel(a.PathwayID))
	if a.Goal != "" {
		fmt.Fprintf(&b, "Career goal: %s\n", a.Goal)
	}
	if a.HasDiploma {
		b.WriteString("High-school diploma or equivalency: yes\n")
	} else {
		fmt.Fprintf(&b, "High-school diploma or equivalency: no (prep readiness: %s)\n", a.Readiness)
		if len(a.Subjects) > 0 {
			labels := make([]string, len(a.Subjects))
			for i, s := range a.Subjects {
				labels[i] = SubjectLabel(s)
			}
			fmt.Fprintf(&b, "Equivalency focus subjects: %s\n", strings.Join(labels, ", "))
		}
		for _, rv := range a.SubjectReviews {
			fmt.Fprintf(&b, "Review question (%s): %s\n", SubjectLabel(rv.Subject), correctness(rv.Correct))
		}
	}
	fmt.Fprintf(&b, "Spreadsheet comfort: %s\n", a.Spreadsheet)
	fmt.Fprintf(&b, "Time management: %s\n", a.TimeManagement)
	fmt.Fprintf(&b, "Communication: %s\n", a.Communication)
	fmt.Fprintf(&b, "Teamwork: %s\n", a.Teamwork)
	for _, kc := range a.KnowledgeChecks {
		fmt.Fprintf(&b, "Knowledge check (%s): %s\n", kc.ItemID, correctness(kc.Correct))
	}
	for _, fu := range a.Followups {
		fmt.Fprintf(&b, "Follow-up %d: Q: %s A: %s\n", fu.Ordinal, fu.Question, fu.Answer)
	}
	return b.String()
}

func correctness(correct bool) string {
	if correct {
		return "answered correctly"
	}
	return "needs review"
}

// AllSkillsConfident reports whether every soft-skill rating came back
// confident, which collapses the soft-skill section into a single
// positive-reinforcement bullet.
func (a *Answers) AllSkillsConfident() bool {
	return a.TimeManagement == ConfidenceConfident &&
		a.Communication == ConfidenceConfident &&
		a.Teamwork == ConfidenceConfident
}
