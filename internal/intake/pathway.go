package intake

import "strings"

// Pathway is one supported certification track.
type Pathway struct {
	ID       string
	Label    string
	Synonyms []string
}

// PathwayCBCS is the only pathway with a scripted intake today; the others
// short-circuit with a coming-soon message.
const PathwayCBCS = "cbcs"

// Pathways lists the certification tracks offered to learners, in the order
// the client renders their quick-reply buttons.
var Pathways = []Pathway{
	{
		ID:    PathwayCBCS,
		Label: "Certified Billing and Coding Specialist (CBCS)",
		Synonyms: []string{
			"cbcs",
			"certified billing and coding specialist",
			"certified coding and billing specialist",
			"billing and coding",
			"coding and billing",
		},
	},
	{
		ID:    "pharmacy-technician",
		Label: "Pharmacy Technician",
		Synonyms: []string{
			"pharmacy technician",
			"pharmacy tech",
			"pharm tech",
			"pharmacy pathway",
		},
	},
	{
		ID:    "ccma",
		Label: "Certified Clinical Medical Assistant (CCMA)",
		Synonyms: []string{
			"ccma",
			"certified clinical medical assistant",
			"clinical medical assistant",
		},
	},
	{
		ID:    "cmaa",
		Label: "Certified Medical Administrative Assistant (CMAA)",
		Synonyms: []string{
			"cmaa",
			"certified medical administrative assistant",
			"medical administrative assistant",
		},
	},
}

// ClassifyPathway matches an utterance against pathway synonyms and returns
// the pathway ID. Substring containment is deliberate: learners often reply
// in sentences ("I want to do billing and coding").
func ClassifyPathway(utterance string) (string, bool) {
	normalized := normalize(utterance)
	for _, p := range Pathways {
		for _, term := range p.Synonyms {
			if strings.Contains(normalized, term) {
				return p.ID, true
			}
		}
	}
	return "", false
}

// VolunteeredGoal extracts a career goal the learner offered alongside the
// pathway choice. Goal capture never blocks the intake: there is no dedicated
// prompt, but extra text in the choosing message (trailing the pathway name,
// or on its own line) is kept so later prompts and the plan summary can echo
// it.
func VolunteeredGoal(utterance string) (string, bool) {
	var parts []string
	for _, seg := range segments(utterance) {
		if _, ok := ClassifyPathway(seg); !ok {
			parts = append(parts, seg)
			continue
		}
		if rest := afterPathwayMention(seg); rest != "" {
			parts = append(parts, rest)
		}
	}
	goal := strings.TrimSpace(strings.Join(parts, " "))
	if goal == "" {
		return "", false
	}
	return goal, true
}

// afterPathwayMention returns the text following the last pathway synonym in
// the segment, trimmed of separator punctuation. Text before the mention is
// filler ("I want to do billing and coding") and carries no goal.
func afterPathwayMention(segment string) string {
	lower := strings.ToLower(segment)
	end := -1
	for _, p := range Pathways {
		for _, term := range p.Synonyms {
			if idx := strings.LastIndex(lower, term); idx >= 0 && idx+len(term) > end {
				end = idx + len(term)
			}
		}
	}
	if end < 0 || end >= len(segment) {
		return ""
	}
	return strings.Trim(segment[end:], " \t—–-:;,.!()")
}

// PathwayLabel returns the display label for a pathway ID.
func PathwayLabel(id string) string {
	for _, p := range Pathways {
		if p.ID == id {
			return p.Label
		}
	}
	return id
}
