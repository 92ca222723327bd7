package intake

import (
	"fmt"
	"strings"
)

// Pillar filter values understood by the lesson catalog.
const (
	PillarAcademic = "academic"
	PillarSoft     = "soft"
	PillarCTE      = "cte"
)

// LessonRef is the slice of a catalog record the blueprint needs.
type LessonRef struct {
	Code   string
	Course string
	Lesson string
}

// LessonFinder is the catalog collaborator. The blueprint only ever reads;
// an empty result is always acceptable and falls back to fixed lesson names.
type LessonFinder interface {
	FindLessons(query, pillar string, limit int) []LessonRef
}

// NoCatalog is a LessonFinder that never matches, for callers running
// without a catalog file.
type NoCatalog struct{}

// FindLessons always returns nil.
func (NoCatalog) FindLessons(string, string, int) []LessonRef { return nil }

// ExamTopics are the four CBCS exam domains listed in the certification-prep
// section.
var ExamTopics = []string{
	"The Revenue Cycle and Regulatory Compliance",
	"Insurance Eligibility and Other Payer Requirements",
	"Coding and Coding Guidelines",
	"Billing and Reimbursement",
}

// Fallback lesson names used when the catalog has no match, so the blueprint
// stays total.
const excelLessonName = "Using Technology to Present Information: Microsoft Excel"

var certLessonNames = []string{
	"Regulatory Compliance",
	"Anatomy and Physiology: Part 1",
	"Anatomy and Physiology: Part 2",
	"Anatomy and Physiology: Part 3",
	"Medical Coding Sets",
}

// maxRecommendedLessons caps the deduplicated recommendation list.
const maxRecommendedLessons = 12

// LessonGroup is one themed cluster of recommended lessons.
type LessonGroup struct {
	Theme   string
	Lessons []string
}

// Blueprint is the deterministic set of plan fragments derived purely from
// classified answers plus catalog lookups. It is both the literal fallback
// reply when the generative backend is unavailable and the grounding
// material that keeps the backend's prose anchored to catalog-verified
// lesson names.
type Blueprint struct {
	PathwayLabel    string
	Eligibility     string
	DigitalLiteracy string
	SoftSkills      []string
	CertPrep        []string
	Knowledge       string
	Recommended     []LessonGroup
}

// BuildBlueprint assembles the plan fragments. It is pure and total: it
// never fails, whatever the catalog returns.
func BuildBlueprint(a *Answers, cat LessonFinder) Blueprint {
	if cat == nil {
		cat = NoCatalog{}
	}
	b := Blueprint{
		PathwayLabel:    PathwayLabel(a.PathwayID),
		Eligibility:     eligibilityNote(a),
		DigitalLiteracy: digitalLiteracyNote(a, cat),
		SoftSkills:      softSkillSuggestions(a, cat),
		CertPrep:        append([]string(nil), ExamTopics...),
		Knowledge:       knowledgeNote(a),
	}
	b.Recommended = recommendedLessons(a, cat)
	return b
}

func eligibilityNote(a *Answers) string {
	if a.HasDiploma {
		return "You already meet the high school requirement—great work checking that box."
	}
	note := "Plan time to finish your high-school equivalency (GED/HiSET) so you can sit for the CBCS exam."
	if len(a.Subjects) > 0 {
		labels := make([]string, len(a.Subjects))
		for i, s := range a.Subjects {
			labels[i] = SubjectLabel(s)
		}
		note += fmt.Sprintf(" Recommended remediation focus: %s.", strings.Join(labels, ", "))
	}
	switch a.Readiness {
	case ReadinessReady:
		note += " Since you're ready to start prep now, block study time this week."
	case ReadinessAlmost:
		note += " Aim to enroll in prep within the next few months so the timeline stays on track."
	case ReadinessStarting:
		note += " Start with a short placement check to see which prep level fits you best."
	}
	return note
}

func digitalLiteracyNote(a *Answers, cat LessonFinder) string {
	lesson := excelLessonName
	if hits := cat.FindLessons("Excel", "", 1); len(hits) > 0 {
		lesson = hits[0].Lesson
	}
	switch a.Spreadsheet {
	case ComfortNovice:
		return fmt.Sprintf("Start with the Digital Literacy lesson %q to learn spreadsheets from the ground up.", lesson)
	case ComfortFamiliar:
		return "Build confidence with Excel formatting, formulas, and filtering so you can track denials and appeals efficiently."
	default:
		return "Keep practicing spreadsheet workflows to manage claims, denials, and study notes."
	}
}

func softSkillSuggestions(a *Answers, cat LessonFinder) []string {
	var out []string

	add := func(text, query string) {
		if hits := cat.FindLessons(query, PillarSoft, 2); len(hits) > 0 {
			names := make([]string, len(hits))
			for i, h := range hits {
				names[i] = h.Lesson
			}
			text += fmt.Sprintf(" Lessons to try: %s.", strings.Join(names, "; "))
		}
		out = append(out, text)
	}

	switch a.TimeManagement {
	case ConfidenceNeedsSupport:
		add("Explore productivity strategies like time blocking and use Aztec's planning templates to track certification tasks.", "time management")
	case ConfidenceUnsure:
		add("Review the time-management overview to learn how prioritizing tasks keeps claim submissions on schedule.", "time management")
	}

	switch a.Communication {
	case ConfidenceNeedsSupport:
		add("Practice patient-friendly explanations of billing terms and role-play calls with payers to build confidence.", "communication")
	case ConfidenceUnsure:
		add("Take the communication fundamentals mini-lesson to learn the vocabulary that keeps documentation clear.", "communication")
	}

	switch a.Teamwork {
	case ConfidenceNeedsSupport:
		add("Use collaboration checklists to stay aligned with providers, coders, and revenue-cycle teammates.", "teamwork")
	case ConfidenceUnsure:
		add("Review examples of interdepartmental workflows so you know who to loop in during claim follow-up.", "teamwork")
	}

	if len(out) == 0 {
		out = append(out, "Keep applying your professional strengths—log weekly wins so you can show how you collaborate, communicate, and stay on track.")
	}
	return out
}

func knowledgeNote(a *Answers) string {
	note := "CBCS Knowledge Assessment – Use the practice quiz to pinpoint topics for review."
	if len(a.KnowledgeChecks) > 0 {
		correct := 0
		for _, kc := range a.KnowledgeChecks {
			if kc.Correct {
				correct++
			}
		}
		note += fmt.Sprintf(" You answered %d of %d warm-up questions correctly.", correct, len(a.KnowledgeChecks))
		if correct < len(a.KnowledgeChecks) {
			note += " Revisit the missed topics before scheduling the full assessment."
		}
	}
	if len(a.SubjectReviews) > 0 {
		var weak []string
		for _, rv := range a.SubjectReviews {
			if !rv.Correct {
				weak = append(weak, SubjectLabel(rv.Subject))
			}
		}
		if len(weak) > 0 {
			note += fmt.Sprintf(" The quick subject reviews suggest extra practice in %s.", strings.Join(weak, ", "))
		}
	}
	return note
}

func recommendedLessons(a *Answers, cat LessonFinder) []LessonGroup {
	var groups []LessonGroup
	seen := map[string]bool{}
	total := 0

	appendGroup := func(theme string, lessons []string) {
		var kept []string
		for _, l := range lessons {
			if l == "" || seen[l] || total >= maxRecommendedLessons {
				continue
			}
			seen[l] = true
			total++
			kept = append(kept, l)
		}
		if len(kept) > 0 {
			groups = append(groups, LessonGroup{Theme: theme, Lessons: kept})
		}
	}

	certLessons := lessonNames(cat.FindLessons("CBCS", PillarCTE, 5))
	if len(certLessons) == 0 {
		certLessons = certLessonNames
	}
	appendGroup("Certification Prep", certLessons)

	if a.Spreadsheet != ComfortExpert {
		excel := lessonNames(cat.FindLessons("Excel", "", 2))
		if len(excel) == 0 {
			excel = []string{excelLessonName}
		}
		appendGroup("Digital Literacy", excel)
	}

	var soft []string
	if a.TimeManagement != ConfidenceConfident {
		soft = append(soft, lessonNames(cat.FindLessons("time management", PillarSoft, 1))...)
	}
	if a.Communication != ConfidenceConfident {
		soft = append(soft, lessonNames(cat.FindLessons("communication", PillarSoft, 1))...)
	}
	if a.Teamwork != ConfidenceConfident {
		soft = append(soft, lessonNames(cat.FindLessons("teamwork", PillarSoft, 1))...)
	}
	appendGroup("Soft Skills", soft)

	if !a.HasDiploma {
		var academic []string
		for _, subject := range a.Subjects {
			academic = append(academic, lessonNames(cat.FindLessons(SubjectLabel(subject), PillarAcademic, 2))...)
		}
		appendGroup("Academic Remediation", academic)
	}

	return groups
}

func lessonNames(refs []LessonRef) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.Lesson)
	}
	return out
}

// Render produces the deterministic plan text. Its first line is PlanMarker,
// which doubles as the terminal sentinel on replay.
func (b Blueprint) Render() string {
	sections := []string{PlanMarker}

	sections = append(sections, "Eligibility:\n• "+b.Eligibility)
	sections = append(sections, "Digital Literacy:\n• "+b.DigitalLiteracy)

	sections = append(sections, "Soft Skill Focus:\n"+bulleted(b.SoftSkills))

	cert := "Certification Prep Focus:\n• Start a study notebook that covers the four major CBCS domains.\n" + bulleted(b.CertPrep)
	sections = append(sections, cert)

	sections = append(sections, "CBCS Knowledge Assessment:\n• "+b.Knowledge)

	var rec []string
	for _, g := range b.Recommended {
		lines := make([]string, 0, len(g.Lessons)+1)
		lines = append(lines, "• "+g.Theme)
		for _, l := range g.Lessons {
			lines = append(lines, "  Lesson: "+l)
		}
		rec = append(rec, strings.Join(lines, "\n"))
	}
	if len(rec) > 0 {
		sections = append(sections, "Recommended Lessons:\n"+strings.Join(rec, "\n"))
	}

	return strings.Join(sections, "\n\n")
}

func bulleted(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "• " + item
	}
	return strings.Join(lines, "\n")
}

// GroundingContext renders the blueprint plus the answer summary for the
// generative backend. The backend is instructed to keep every bullet's
// meaning intact, so the fragments double as its fact source.
func (b Blueprint) GroundingContext(a *Answers) string {
	var sb strings.Builder
	sb.WriteString("Intake summary:\n")
	sb.WriteString(a.Summary())
	sb.WriteString("\nDeterministic plan content (reproduce every bullet's meaning, organized under the same headings):\n\n")
	sb.WriteString(b.Render())
	return sb.String()
}
