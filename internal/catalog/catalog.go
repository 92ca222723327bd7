// Package catalog loads and queries the curriculum lesson catalog. The
// catalog ships as an xlsx workbook with one sheet per content pillar; rows
// without a course or code are skipped.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Pillar is a coarse content category used to filter lookups.
type Pillar string

const (
	PillarAcademic Pillar = "academic"
	PillarSoft     Pillar = "soft"
	PillarCTE      Pillar = "cte"
)

// Lesson is one catalog record.
type Lesson struct {
	Course      string `json:"course"`
	Subject     string `json:"subject"`
	Unit        string `json:"unit"`
	Lesson      string `json:"lesson"`
	Code        string `json:"code"`
	Description string `json:"description"`
	Pillar      Pillar `json:"pillar"`
	Sheet       string `json:"-"`
}

// Catalog is the loaded, immutable lesson set. Safe for concurrent reads.
type Catalog struct {
	lessons []Lesson
}

// New builds a catalog from pre-parsed lessons, used by tests and callers
// that don't read from disk.
func New(lessons []Lesson) *Catalog {
	return &Catalog{lessons: lessons}
}

// Load reads the workbook at path and builds the catalog.
func Load(path string) (*Catalog, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog workbook: %w", err)
	}
	defer f.Close()

	var lessons []Lesson
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		if len(rows) < 2 {
			continue
		}
		cols := headerIndex(rows[0])
		pillar := NormalizePillar(sheet)
		for _, row := range rows[1:] {
			lesson := Lesson{
				Course:      cell(row, cols["course"]),
				Subject:     cell(row, cols["subject"]),
				Unit:        cell(row, cols["unit"]),
				Lesson:      cell(row, cols["lesson"]),
				Code:        cell(row, cols["code"]),
				Description: cell(row, cols["description"]),
				Pillar:      pillar,
				Sheet:       sheet,
			}
			if lesson.Course == "" || lesson.Code == "" {
				continue
			}
			lessons = append(lessons, lesson)
		}
	}
	return &Catalog{lessons: lessons}, nil
}

func headerIndex(header []string) map[string]int {
	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return cols
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// NormalizePillar maps a sheet name onto a pillar. Unknown sheets default to
// academic, matching how the workbook has historically been organized.
func NormalizePillar(sheetName string) Pillar {
	lower := strings.ToLower(sheetName)
	switch {
	case strings.Contains(lower, "bridge"), strings.Contains(lower, "pre-hse"), strings.Contains(lower, "academic"):
		return PillarAcademic
	case strings.Contains(lower, "ready for work"), strings.Contains(lower, "soft"):
		return PillarSoft
	case strings.Contains(lower, "cbcs"), strings.Contains(lower, "cte"):
		return PillarCTE
	default:
		return PillarAcademic
	}
}

// Len returns the number of lessons loaded.
func (c *Catalog) Len() int {
	return len(c.lessons)
}

// SearchOptions narrow a Search call.
type SearchOptions struct {
	Pillar Pillar
	Code   string
	Limit  int
}

// Search matches the query as a case-insensitive substring across the
// lesson, description, code, subject, unit, and course fields.
func (c *Catalog) Search(query string, opts SearchOptions) []Lesson {
	q := strings.ToLower(strings.TrimSpace(query))
	code := strings.ToLower(strings.TrimSpace(opts.Code))

	var out []Lesson
	for _, l := range c.lessons {
		if q != "" && !matchesQuery(l, q) {
			continue
		}
		if opts.Pillar != "" && l.Pillar != opts.Pillar {
			continue
		}
		if code != "" && !strings.Contains(strings.ToLower(l.Code), code) {
			continue
		}
		out = append(out, l)
		if opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
	}
	return out
}

func matchesQuery(l Lesson, q string) bool {
	for _, field := range []string{l.Lesson, l.Description, l.Code, l.Subject, l.Unit, l.Course} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// LessonsByCourse returns all lessons for an exact (case-insensitive) course
// name, in workbook order.
func (c *Catalog) LessonsByCourse(course string) []Lesson {
	var out []Lesson
	for _, l := range c.lessons {
		if strings.EqualFold(l.Course, course) {
			out = append(out, l)
		}
	}
	return out
}

// UnitSequence is one subject/unit group in a course's ordered sequence.
type UnitSequence struct {
	Subject string   `json:"subject"`
	Unit    string   `json:"unit"`
	Lessons []Lesson `json:"lessons"`
}

// Sequence groups a course's lessons by subject and unit, preserving the
// workbook's order, which for academic courses is the prerequisite order.
func (c *Catalog) Sequence(course string) []UnitSequence {
	lessons := c.LessonsByCourse(course)
	var order []string
	grouped := map[string][]Lesson{}
	for _, l := range lessons {
		key := l.Subject + "::" + l.Unit
		if _, ok := grouped[key]; !ok {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], l)
	}

	out := make([]UnitSequence, 0, len(order))
	for _, key := range order {
		parts := strings.SplitN(key, "::", 2)
		out = append(out, UnitSequence{
			Subject: parts[0],
			Unit:    parts[1],
			Lessons: grouped[key],
		})
	}
	return out
}

// Subjects returns the distinct subject names for a course, sorted.
func (c *Catalog) Subjects(course string) []string {
	seen := map[string]bool{}
	for _, l := range c.LessonsByCourse(course) {
		if l.Subject != "" {
			seen[l.Subject] = true
		}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
