package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// LocatorScores are a learner's placement assessment results on the 0-12
// grade-level scale.
type LocatorScores struct {
	Reading  float64  `json:"reading"`
	Math     float64  `json:"math"`
	Language *float64 `json:"language,omitempty"`
}

// Validate checks all scores are on the 0-12 scale.
func (s LocatorScores) Validate() error {
	check := func(name string, v float64) error {
		if v < 0 || v > 12 {
			return fmt.Errorf("%s must be between 0 and 12, got %v", name, v)
		}
		return nil
	}
	if err := check("reading", s.Reading); err != nil {
		return err
	}
	if err := check("math", s.Math); err != nil {
		return err
	}
	if s.Language != nil {
		return check("language", *s.Language)
	}
	return nil
}

// Placement is a locator-driven course entry recommendation.
type Placement struct {
	RecommendedCourse string   `json:"recommended_course"`
	EntryUnit         string   `json:"entry_unit"`
	ExcusedLessons    []string `json:"excused_lessons"`
}

// ApplyLocator recommends a starting course and entry unit from locator
// scores. Learners at or above grade 6 in both reading and math skip the
// foundations unit.
func ApplyLocator(scores LocatorScores) (Placement, error) {
	if err := scores.Validate(); err != nil {
		return Placement{}, err
	}
	p := Placement{
		RecommendedCourse: "Aztec's Pre-HSE Series",
		EntryUnit:         "Foundations",
	}
	if scores.Reading >= 6 && scores.Math >= 6 {
		p.EntryUnit = "Intermediate"
		p.ExcusedLessons = append(p.ExcusedLessons, "All Foundations lessons")
	}
	return p, nil
}

// RemediationPlan maps weak certification exam domains onto catalog lessons.
type RemediationPlan struct {
	Exam               string   `json:"exam"`
	WeakDomains        []string `json:"weak_domains"`
	RecommendedLessons []string `json:"recommended_lessons"`
	Notes              string   `json:"notes"`
}

// remediationPassScore is the domain score below which remediation is
// recommended.
const remediationPassScore = 70

// RemediationFromGaps builds a remediation plan from per-domain exam scores
// (0-100). Domains scoring under 70 are weak; lessons whose descriptions
// mention a weak domain are recommended, capped at ten.
func (c *Catalog) RemediationFromGaps(exam string, domainScores map[string]float64, minReadingLevel string) RemediationPlan {
	var weak []string
	for domain, score := range domainScores {
		if score < remediationPassScore {
			weak = append(weak, domain)
		}
	}
	sort.Strings(weak)

	examLower := strings.ToLower(exam)
	var codes []string
	for _, l := range c.lessons {
		if l.Pillar != PillarCTE {
			continue
		}
		if !strings.Contains(strings.ToLower(l.Course), examLower) &&
			!strings.Contains(strings.ToLower(l.Description), examLower) {
			continue
		}
		for _, domain := range weak {
			if strings.Contains(strings.ToLower(l.Description), strings.ToLower(domain)) {
				codes = append(codes, l.Code)
				break
			}
		}
		if len(codes) >= 10 {
			break
		}
	}

	notes := fmt.Sprintf("Focus on weak domains: %s.", strings.Join(weak, ", "))
	if minReadingLevel != "" {
		notes += fmt.Sprintf(" Ensure the learner meets the %s reading level before starting.", minReadingLevel)
	}

	return RemediationPlan{
		Exam:               exam,
		WeakDomains:        weak,
		RecommendedLessons: codes,
		Notes:              notes,
	}
}

// ProgramRequirements summarizes a certification program's scope.
type ProgramRequirements struct {
	Exam          string   `json:"exam"`
	HoursRequired int      `json:"hours_required"`
	Competencies  []string `json:"competencies"`
	LessonCount   int      `json:"lesson_count"`
	Links         []string `json:"links"`
}

// Requirements reports hours, competencies, and lesson coverage for an exam
// program based on the catalog's CTE courses.
func (c *Catalog) Requirements(exam string) ProgramRequirements {
	examLower := strings.ToLower(exam)

	seen := map[string]bool{}
	var competencies []string
	count := 0
	for _, l := range c.lessons {
		if l.Pillar != PillarCTE || !strings.Contains(strings.ToLower(l.Course), examLower) {
			continue
		}
		count++
		if l.Subject != "" && !seen[l.Subject] {
			seen[l.Subject] = true
			competencies = append(competencies, l.Subject)
		}
	}

	hours := 240
	if strings.Contains(examLower, "cbcs") {
		hours = 160
	}

	return ProgramRequirements{
		Exam:          exam,
		HoursRequired: hours,
		Competencies:  competencies,
		LessonCount:   count,
		Links:         []string{"https://www.nhanow.com/" + strings.ToLower(strings.ReplaceAll(exam, " ", "-"))},
	}
}
