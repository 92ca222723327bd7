package intake

import (
	"fmt"
	"regexp"
	"strings"
)

// QuizOption is one answer choice for a fixed-choice item. ContentPatterns
// are a fallback battery matched against the whole utterance when neither
// the letter prefix nor the literal option text matches, so paraphrased
// answers still classify.
type QuizOption struct {
	Key             string
	Text            string
	Correct         bool
	ContentPatterns []*regexp.Regexp
}

// QuizItem is a fixed-choice question with a known correct option.
type QuizItem struct {
	ID      string
	Subject string
	Prompt  string
	Options []QuizOption
}

// PromptText renders the question with lettered options the way the client
// displays quick replies.
func (q QuizItem) PromptText() string {
	var b strings.Builder
	b.WriteString(q.Prompt)
	for _, opt := range q.Options {
		b.WriteString(fmt.Sprintf("\n%s) %s", opt.Key, opt.Text))
	}
	return b.String()
}

// CorrectKey returns the key of the correct option.
func (q QuizItem) CorrectKey() string {
	for _, opt := range q.Options {
		if opt.Correct {
			return opt.Key
		}
	}
	return ""
}

// Classifier returns a Classifier that resolves an utterance to one of the
// item's option keys. Matching order: letter prefix, literal option text,
// then content patterns.
func (q QuizItem) Classifier() Classifier {
	return func(utterance string) (string, bool) {
		segs := segments(utterance)
		for i := len(segs) - 1; i >= 0; i-- {
			normalized := normalize(segs[i])
			if key, ok := q.matchSegment(normalized); ok {
				return key, true
			}
		}
		// Content patterns run against the whole utterance so a multi-line
		// explanation can still resolve.
		whole := normalize(utterance)
		for _, opt := range q.Options {
			for _, re := range opt.ContentPatterns {
				if re.MatchString(whole) {
					return opt.Key, true
				}
			}
		}
		return "", false
	}
}

func (q QuizItem) matchSegment(normalized string) (string, bool) {
	for _, opt := range q.Options {
		key := strings.ToLower(opt.Key)
		// Bare letters only count with punctuation ("a)", "b.") or alone;
		// "a " as a prefix would collide with the English article.
		if normalized == key ||
			strings.HasPrefix(normalized, key+")") ||
			strings.HasPrefix(normalized, key+".") ||
			strings.HasPrefix(normalized, key+":") {
			return opt.Key, true
		}
	}
	for _, opt := range q.Options {
		if strings.Contains(normalized, normalize(opt.Text)) {
			return opt.Key, true
		}
	}
	return "", false
}

// KnowledgeCheckItems are the fixed CBCS knowledge-check questions asked when
// the service runs with static follow-ups. They mirror the sample questions
// printed in the plan's knowledge-assessment section.
var KnowledgeCheckItems = []QuizItem{
	{
		ID:     "kc-icd10",
		Prompt: "Quick knowledge check! What is the purpose of ICD-10-CM codes?",
		Options: []QuizOption{
			{
				Key:     "a",
				Text:    "Reporting diseases, conditions, signs and symptoms, external causes of injuries, and abnormal findings",
				Correct: true,
				ContentPatterns: []*regexp.Regexp{
					regexp.MustCompile(`diseases?`),
					regexp.MustCompile(`conditions?`),
					regexp.MustCompile(`signs and symptoms`),
				},
			},
			{
				Key:  "b",
				Text: "Classifying and coding hospital inpatient procedures",
				ContentPatterns: []*regexp.Regexp{
					regexp.MustCompile(`inpatient`),
				},
			},
			{
				Key:  "c",
				Text: "Reporting outpatient procedures and services healthcare providers perform",
				ContentPatterns: []*regexp.Regexp{
					regexp.MustCompile(`outpatient`),
				},
			},
		},
	},
	{
		ID:     "kc-medial",
		Prompt: "Next one: in medical terminology, what does \"medial\" mean?",
		Options: []QuizOption{
			{
				Key:     "a",
				Text:    "Toward the middle of the body",
				Correct: true,
				ContentPatterns: []*regexp.Regexp{
					regexp.MustCompile(`\bmiddle\b`),
					regexp.MustCompile(`\bmidline\b.*\btoward\b|\btoward\b.*\bmidline\b`),
				},
			},
			{
				Key:  "b",
				Text: "Away from the midline of the body",
				ContentPatterns: []*regexp.Regexp{
					regexp.MustCompile(`\baway from\b`),
				},
			},
			{
				Key:  "c",
				Text: "Below",
				ContentPatterns: []*regexp.Regexp{
					regexp.MustCompile(`^below$`),
				},
			},
		},
	},
	{
		ID:     "kc-hipaa",
		Prompt: "Last one: which of the following are covered entities under HIPAA?",
		Options: []QuizOption{
			{
				Key:  "a",
				Text: "Health plans",
			},
			{
				Key:  "b",
				Text: "Healthcare clearinghouses",
			},
			{
				Key:  "c",
				Text: "Healthcare providers",
			},
			{
				Key:     "d",
				Text:    "All of the above",
				Correct: true,
				ContentPatterns: []*regexp.Regexp{
					regexp.MustCompile(`\ball\b`),
					regexp.MustCompile(`\bevery\b`),
				},
			},
		},
	},
}

// SubjectReviewItems map each equivalency subject to a single review question
// asked in the no-diploma branch for that subject.
var SubjectReviewItems = map[string]QuizItem{
	SubjectMath: {
		ID:      "rv-math",
		Subject: SubjectMath,
		Prompt:  "Quick math review: a clinic files 3 claims at $125 each. What is the total billed?",
		Options: []QuizOption{
			{
				Key:     "a",
				Text:    "$375",
				Correct: true,
				ContentPatterns: []*regexp.Regexp{
					regexp.MustCompile(`375`),
				},
			},
			{
				Key:  "b",
				Text: "$350",
				ContentPatterns: []*regexp.Regexp{
					regexp.MustCompile(`350`),
				},
			},
			{
				Key:  "c",
				Text: "$275",
				ContentPatterns: []*regexp.Regexp{
					regexp.MustCompile(`275`),
				},
			},
		},
	},
	SubjectReading: {
		ID:      "rv-reading",
		Subject: SubjectReading,
		Prompt:  "Quick reading review: the main idea of a passage is best described as...",
		Options: []QuizOption{
			{
				Key:     "a",
				Text:    "The central point the author wants the reader to understand",
				Correct: true,
				ContentPatterns: []*regexp.Regexp{
					regexp.MustCompile(`central (point|idea)`),
					regexp.MustCompile(`author.*(wants|point)`),
				},
			},
			{
				Key:  "b",
				Text: "The first sentence of every paragraph",
				ContentPatterns: []*regexp.Regexp{
					regexp.MustCompile(`first sentence`),
				},
			},
			{
				Key:  "c",
				Text: "A minor detail that supports the conclusion",
				ContentPatterns: []*regexp.Regexp{
					regexp.MustCompile(`minor detail`),
				},
			},
		},
	},
	SubjectWriting: {
		ID:      "rv-writing",
		Subject: SubjectWriting,
		Prompt:  "Quick writing review: which sentence is punctuated correctly?",
		Options: []QuizOption{
			{
				Key:     "a",
				Text:    "The patient arrived early, so the nurse updated the chart.",
				Correct: true,
				ContentPatterns: []*regexp.Regexp{
					regexp.MustCompile(`arrived early, so`),
				},
			},
			{
				Key:  "b",
				Text: "The patient arrived early so, the nurse updated the chart.",
			},
			{
				Key:  "c",
				Text: "The patient arrived early so the nurse, updated the chart.",
			},
		},
	},
	SubjectScience: {
		ID:      "rv-science",
		Subject: SubjectScience,
		Prompt:  "Quick science review: which body system moves oxygen through the bloodstream?",
		Options: []QuizOption{
			{
				Key:     "a",
				Text:    "The circulatory system",
				Correct: true,
				ContentPatterns: []*regexp.Regexp{
					regexp.MustCompile(`circulat`),
					regexp.MustCompile(`cardiovascular`),
				},
			},
			{
				Key:  "b",
				Text: "The digestive system",
				ContentPatterns: []*regexp.Regexp{
					regexp.MustCompile(`digest`),
				},
			},
			{
				Key:  "c",
				Text: "The skeletal system",
				ContentPatterns: []*regexp.Regexp{
					regexp.MustCompile(`skelet`),
				},
			},
		},
	},
	SubjectSocialStudies: {
		ID:      "rv-social-studies",
		Subject: SubjectSocialStudies,
		Prompt:  "Quick social studies review: which branch of government interprets laws?",
		Options: []QuizOption{
			{
				Key:     "a",
				Text:    "The judicial branch",
				Correct: true,
				ContentPatterns: []*regexp.Regexp{
					regexp.MustCompile(`judicial`),
					regexp.MustCompile(`courts?`),
				},
			},
			{
				Key:  "b",
				Text: "The legislative branch",
				ContentPatterns: []*regexp.Regexp{
					regexp.MustCompile(`legislat`),
				},
			},
			{
				Key:  "c",
				Text: "The executive branch",
				ContentPatterns: []*regexp.Regexp{
					regexp.MustCompile(`executive`),
				},
			},
		},
	},
}
