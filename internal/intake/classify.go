// Package intake implements the stateless intake engine: answer
// classification, transcript scanning, the ordered stage machine, and the
// deterministic plan blueprint. Given only the transcript the client posts,
// the engine reconstructs how far the learner has progressed and decides the
// next prompt, so replaying the same transcript always produces the same
// reply.
package intake

import (
	"regexp"
	"sort"
	"strings"
)

// Classifier maps a free-text utterance to one enumerated value. A failed
// classification returns ok=false; it is an expected outcome, never an error.
type Classifier func(utterance string) (value string, ok bool)

// Yes/no values.
const (
	AnswerYes = "yes"
	AnswerNo  = "no"
)

// Comfort describes spreadsheet comfort tiers.
type Comfort string

const (
	ComfortExpert   Comfort = "expert"
	ComfortFamiliar Comfort = "familiar"
	ComfortNovice   Comfort = "novice"
)

// Confidence describes soft-skill self-assessment tiers.
type Confidence string

const (
	ConfidenceConfident    Confidence = "confident"
	ConfidenceNeedsSupport Confidence = "needs-support"
	ConfidenceUnsure       Confidence = "unsure"
)

// Readiness describes how soon a learner expects to start equivalency prep.
type Readiness string

const (
	ReadinessReady    Readiness = "ready"
	ReadinessAlmost   Readiness = "almost"
	ReadinessStarting Readiness = "starting"
)

// Subject tags for equivalency remediation. Multi-select.
const (
	SubjectMath          = "math"
	SubjectReading       = "reading"
	SubjectWriting       = "writing"
	SubjectScience       = "science"
	SubjectSocialStudies = "social-studies"
)

// AllSubjects lists subject tags in their fixed presentation order.
var AllSubjects = []string{
	SubjectMath,
	SubjectReading,
	SubjectWriting,
	SubjectScience,
	SubjectSocialStudies,
}

var whitespaceRE = regexp.MustCompile(`\s+`)

// normalize collapses whitespace and lowercases an utterance before any
// pattern rule runs against it.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(whitespaceRE.ReplaceAllString(s, " ")))
}

var listMarkerRE = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s*`)

// segments splits an utterance into bullet-like lines. Blank lines are
// dropped and list markers stripped. A single-line utterance yields itself
// as its only segment.
func segments(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = listMarkerRE.ReplaceAllString(line, "")
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// rule is one predicate/value pair in an ordered pattern cascade.
type rule struct {
	re    *regexp.Regexp
	value string
}

// matchRules applies an ordered cascade to a normalized segment and returns
// the first matching value.
func matchRules(rules []rule, normalized string) (string, bool) {
	for _, r := range rules {
		if r.re.MatchString(normalized) {
			return r.value, true
		}
	}
	return "", false
}

// classifySegments runs a cascade over a single-valued utterance. Segments
// are tested most-recent-first so a learner's corrected final answer inside
// one message wins over an earlier line of the same message.
func classifySegments(rules []rule, utterance string) (string, bool) {
	segs := segments(utterance)
	for i := len(segs) - 1; i >= 0; i-- {
		if v, ok := matchRules(rules, normalize(segs[i])); ok {
			return v, true
		}
	}
	return "", false
}

var yesNoRules = []rule{
	{regexp.MustCompile(`^y(es)?\b`), AnswerYes},
	{regexp.MustCompile(`\bdefinitely\b`), AnswerYes},
	{regexp.MustCompile(`\babsolutely\b`), AnswerYes},
	{regexp.MustCompile(`\bi (do|have)\b`), AnswerYes},
	{regexp.MustCompile(`\bcompleted\b`), AnswerYes},
	{regexp.MustCompile(`^no?\b`), AnswerNo},
	{regexp.MustCompile(`\bnot yet\b`), AnswerNo},
	{regexp.MustCompile(`\bdon'?t have\b`), AnswerNo},
	{regexp.MustCompile(`\bstill working\b`), AnswerNo},
	{regexp.MustCompile(`\bneed to earn\b`), AnswerNo},
}

// ClassifyYesNo maps an utterance to "yes" or "no".
func ClassifyYesNo(utterance string) (string, bool) {
	return classifySegments(yesNoRules, utterance)
}

var comfortRules = []rule{
	{regexp.MustCompile(`very comfortable`), string(ComfortExpert)},
	{regexp.MustCompile(`\bexpert\b`), string(ComfortExpert)},
	{regexp.MustCompile(`\bfrequently\b`), string(ComfortExpert)},
	{regexp.MustCompile(`somewhat comfortable`), string(ComfortFamiliar)},
	{regexp.MustCompile(`\bbasics?\b`), string(ComfortFamiliar)},
	{regexp.MustCompile(`\boccasionally\b`), string(ComfortFamiliar)},
	{regexp.MustCompile(`not comfortable`), string(ComfortNovice)},
	{regexp.MustCompile(`\brarely\b`), string(ComfortNovice)},
	{regexp.MustCompile(`\bnever\b`), string(ComfortNovice)},
	{regexp.MustCompile(`what is a spreadsheet`), string(ComfortNovice)},
}

// ClassifyComfort maps an utterance to a spreadsheet-comfort tier.
func ClassifyComfort(utterance string) (string, bool) {
	return classifySegments(comfortRules, utterance)
}

var confidenceRules = []rule{
	{regexp.MustCompile(`\bhave good\b`), string(ConfidenceConfident)},
	{regexp.MustCompile(`\bconfident\b`), string(ConfidenceConfident)},
	{regexp.MustCompile(`\bwork well\b`), string(ConfidenceConfident)},
	{regexp.MustCompile(`\bsuggestions\b`), string(ConfidenceNeedsSupport)},
	{regexp.MustCompile(`\bimprov(e|ing)\b`), string(ConfidenceNeedsSupport)},
	{regexp.MustCompile(`\bnot sure\b`), string(ConfidenceUnsure)},
	{regexp.MustCompile(`\bunsure\b`), string(ConfidenceUnsure)},
}

// ClassifyConfidence maps an utterance to a soft-skill confidence tier.
func ClassifyConfidence(utterance string) (string, bool) {
	return classifySegments(confidenceRules, utterance)
}

var readinessRules = []rule{
	{regexp.MustCompile(`\bready now\b`), string(ReadinessReady)},
	{regexp.MustCompile(`\bright away\b`), string(ReadinessReady)},
	{regexp.MustCompile(`\bready\b`), string(ReadinessReady)},
	{regexp.MustCompile(`\balmost\b`), string(ReadinessAlmost)},
	{regexp.MustCompile(`\bfew months\b`), string(ReadinessAlmost)},
	{regexp.MustCompile(`\bsoon\b`), string(ReadinessAlmost)},
	{regexp.MustCompile(`\bjust starting\b`), string(ReadinessStarting)},
	{regexp.MustCompile(`\bstarting out\b`), string(ReadinessStarting)},
	{regexp.MustCompile(`\bnot sure\b`), string(ReadinessStarting)},
	{regexp.MustCompile(`\bbeginning\b`), string(ReadinessStarting)},
	{regexp.MustCompile(`\blong way\b`), string(ReadinessStarting)},
}

// ClassifyReadiness maps an utterance to an equivalency-prep readiness tier.
func ClassifyReadiness(utterance string) (string, bool) {
	return classifySegments(readinessRules, utterance)
}

var subjectRules = map[string]*regexp.Regexp{
	SubjectMath:          regexp.MustCompile(`\bmaths?\b|\balgebra\b|\bnumbers\b|\bfractions\b`),
	SubjectReading:       regexp.MustCompile(`\breading\b|\bcomprehension\b`),
	SubjectWriting:       regexp.MustCompile(`\bwriting\b|\bessays?\b|\bgrammar\b|\blanguage\b`),
	SubjectScience:       regexp.MustCompile(`\bscience\b|\bbiology\b|\bchemistry\b`),
	SubjectSocialStudies: regexp.MustCompile(`\bsocial studies\b|\bhistory\b|\bcivics\b`),
}

var allSubjectsRE = regexp.MustCompile(`\ball( of them| subjects)?\b|\beverything\b`)

// ClassifySubjects accumulates subject tags across every segment of a
// multi-line reply and returns them comma-joined in fixed order. Unlike the
// single-valued classifiers it unions all segments rather than preferring
// the most recent one.
func ClassifySubjects(utterance string) (string, bool) {
	found := map[string]bool{}
	for _, seg := range segments(utterance) {
		normalized := normalize(seg)
		if allSubjectsRE.MatchString(normalized) {
			for _, s := range AllSubjects {
				found[s] = true
			}
			continue
		}
		for subject, re := range subjectRules {
			if re.MatchString(normalized) {
				found[subject] = true
			}
		}
	}
	if len(found) == 0 {
		return "", false
	}
	var out []string
	for _, s := range AllSubjects {
		if found[s] {
			out = append(out, s)
		}
	}
	return strings.Join(out, ","), true
}

// SplitSubjects is the inverse of ClassifySubjects' encoding.
func SplitSubjects(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	sort.Slice(parts, func(i, j int) bool {
		return subjectOrder(parts[i]) < subjectOrder(parts[j])
	})
	return parts
}

func subjectOrder(s string) int {
	for i, v := range AllSubjects {
		if v == s {
			return i
		}
	}
	return len(AllSubjects)
}

// SubjectLabel returns the display name for a subject tag.
func SubjectLabel(subject string) string {
	switch subject {
	case SubjectMath:
		return "Math"
	case SubjectReading:
		return "Reading"
	case SubjectWriting:
		return "Writing"
	case SubjectScience:
		return "Science"
	case SubjectSocialStudies:
		return "Social Studies"
	default:
		return subject
	}
}
