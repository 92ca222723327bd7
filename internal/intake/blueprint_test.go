package intake

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aztecedu/pathway-advisor/internal/domain"
)

func transcriptWithAssistant(text string) domain.Transcript {
	return domain.Transcript{assistant(text)}
}

// stubFinder returns canned lessons keyed by query substring.
type stubFinder struct {
	byQuery map[string][]LessonRef
}

func (f stubFinder) FindLessons(query, pillar string, limit int) []LessonRef {
	for key, refs := range f.byQuery {
		if strings.Contains(strings.ToLower(query), key) {
			if limit > 0 && len(refs) > limit {
				return refs[:limit]
			}
			return refs
		}
	}
	return nil
}

func confidentAnswers() *Answers {
	return &Answers{
		PathwayID:      PathwayCBCS,
		Goal:           "hospital billing",
		HasDiploma:     true,
		Spreadsheet:    ComfortExpert,
		TimeManagement: ConfidenceConfident,
		Communication:  ConfidenceConfident,
		Teamwork:       ConfidenceConfident,
	}
}

func TestRenderOpensWithPlanMarker(t *testing.T) {
	bp := BuildBlueprint(confidentAnswers(), nil)
	text := bp.Render()

	require.True(t, strings.HasPrefix(text, PlanMarker))
	assert.Contains(t, text, "Eligibility:")
	assert.Contains(t, text, "Digital Literacy:")
	assert.Contains(t, text, "Soft Skill Focus:")
	assert.Contains(t, text, "Certification Prep Focus:")
	assert.Contains(t, text, "CBCS Knowledge Assessment:")

	// The rendered plan must be detectable as terminal on replay.
	assert.True(t, HasPlanMarker(transcriptWithAssistant(text)))
}

func TestAllConfidentCollapsesSoftSkills(t *testing.T) {
	bp := BuildBlueprint(confidentAnswers(), nil)

	require.Len(t, bp.SoftSkills, 1)
	assert.Contains(t, bp.SoftSkills[0], "professional strengths")
}

func TestNoviceGetsExcelLesson(t *testing.T) {
	a := confidentAnswers()
	a.Spreadsheet = ComfortNovice

	bp := BuildBlueprint(a, nil)
	assert.Contains(t, bp.DigitalLiteracy, excelLessonName)

	// A catalog hit replaces the fallback lesson name.
	finder := stubFinder{byQuery: map[string][]LessonRef{
		"excel": {{Code: "DL-01", Course: "Digital Literacy", Lesson: "Spreadsheet Basics with Excel"}},
	}}
	bp = BuildBlueprint(a, finder)
	assert.Contains(t, bp.DigitalLiteracy, "Spreadsheet Basics with Excel")
}

func TestExpertSkipsDigitalLiteracyRecommendations(t *testing.T) {
	bp := BuildBlueprint(confidentAnswers(), nil)
	for _, g := range bp.Recommended {
		assert.NotEqual(t, "Digital Literacy", g.Theme)
	}
}

func TestNoDiplomaEligibilityAndRemediation(t *testing.T) {
	a := confidentAnswers()
	a.HasDiploma = false
	a.Readiness = ReadinessAlmost
	a.Subjects = []string{SubjectMath, SubjectScience}

	finder := stubFinder{byQuery: map[string][]LessonRef{
		"math":    {{Code: "AC-10", Course: "Pre-HSE", Lesson: "Fractions and Decimals"}},
		"science": {{Code: "AC-20", Course: "Pre-HSE", Lesson: "Life Science Basics"}},
	}}
	bp := BuildBlueprint(a, finder)

	assert.Contains(t, bp.Eligibility, "GED/HiSET")
	assert.Contains(t, bp.Eligibility, "Math, Science")
	assert.Contains(t, bp.Eligibility, "next few months")

	var remediation *LessonGroup
	for i := range bp.Recommended {
		if bp.Recommended[i].Theme == "Academic Remediation" {
			remediation = &bp.Recommended[i]
		}
	}
	require.NotNil(t, remediation)
	assert.Contains(t, remediation.Lessons, "Fractions and Decimals")
	assert.Contains(t, remediation.Lessons, "Life Science Basics")
}

func TestKnowledgeNoteCountsResults(t *testing.T) {
	a := confidentAnswers()
	a.KnowledgeChecks = []KnowledgeCheck{
		{ItemID: "kc-icd10", ChosenKey: "a", Correct: true},
		{ItemID: "kc-medial", ChosenKey: "b", Correct: false},
		{ItemID: "kc-hipaa", ChosenKey: "d", Correct: true},
	}

	bp := BuildBlueprint(a, nil)
	assert.Contains(t, bp.Knowledge, "2 of 3")
	assert.Contains(t, bp.Knowledge, "missed topics")
}

func TestCertPrepFallsBackToFixedLessons(t *testing.T) {
	bp := BuildBlueprint(confidentAnswers(), nil)

	require.NotEmpty(t, bp.Recommended)
	assert.Equal(t, "Certification Prep", bp.Recommended[0].Theme)
	assert.Equal(t, certLessonNames, bp.Recommended[0].Lessons)
}

func TestRecommendedLessonsDeduplicated(t *testing.T) {
	a := confidentAnswers()
	a.Spreadsheet = ComfortNovice

	// Same lesson surfacing from two queries appears once.
	dup := LessonRef{Code: "X", Course: "C", Lesson: "Shared Lesson"}
	finder := stubFinder{byQuery: map[string][]LessonRef{
		"cbcs":  {dup},
		"excel": {dup},
	}}
	bp := BuildBlueprint(a, finder)

	count := 0
	for _, g := range bp.Recommended {
		for _, l := range g.Lessons {
			if l == "Shared Lesson" {
				count++
			}
		}
	}
	assert.Equal(t, 1, count)
}

func TestGroundingContextIncludesSummaryAndPlan(t *testing.T) {
	a := confidentAnswers()
	bp := BuildBlueprint(a, nil)

	ctx := bp.GroundingContext(a)
	assert.Contains(t, ctx, "Intake summary:")
	assert.Contains(t, ctx, "Career goal: hospital billing")
	assert.Contains(t, ctx, PlanMarker)
}
