package intake

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/aztecedu/pathway-advisor/internal/domain"
)

// FollowupMode selects what happens after the soft-skill stages: the fixed
// knowledge-check items, or up to MaxFollowups generated follow-up questions.
type FollowupMode string

const (
	FollowupStatic  FollowupMode = "static"
	FollowupDynamic FollowupMode = "dynamic"
)

// MaxFollowups caps the number of generated follow-up questions.
const MaxFollowups = 3

// Because no server-side session exists, a generated follow-up question is
// tagged inside the assistant message itself with a versioned marker,
// [[fq v1 N/3]], so a replayed transcript can recover which numbered
// follow-up each question was. The marker is a tiny parseable protocol, not
// an ad hoc prefix: the version field lets the format evolve without
// breaking old transcripts.
const followupMarkerVersion = 1

var followupMarkerRE = regexp.MustCompile(`^\[\[fq v(\d+) (\d+)/(\d+)\]\]\s*`)

// FormatFollowup prefixes a generated question with its ordinal marker.
func FormatFollowup(ordinal int, question string) string {
	return fmt.Sprintf("[[fq v%d %d/%d]] %s", followupMarkerVersion, ordinal, MaxFollowups, question)
}

// ParseFollowupMarker recovers the ordinal and question text from a tagged
// assistant message. Unversioned or future-versioned markers are ignored.
func ParseFollowupMarker(text string) (ordinal int, question string, ok bool) {
	m := followupMarkerRE.FindStringSubmatch(text)
	if m == nil {
		return 0, "", false
	}
	version, err := strconv.Atoi(m[1])
	if err != nil || version != followupMarkerVersion {
		return 0, "", false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil || n < 1 || n > MaxFollowups {
		return 0, "", false
	}
	return n, text[len(m[0]):], true
}

// FollowupExchange pairs a generated follow-up question with the learner's
// reply. Answered is false while the learner hasn't responded yet.
type FollowupExchange struct {
	Ordinal  int
	Question string
	Answer   string
	Position int
	Answered bool
}

// collectFollowups recovers all follow-up exchanges from the transcript. A
// follow-up's answer is the next non-blank learner message after the tagged
// assistant message. If the same ordinal was somehow emitted twice, the
// earliest occurrence wins, matching the replay order of the machine.
func collectFollowups(msgs domain.Transcript) map[int]FollowupExchange {
	out := make(map[int]FollowupExchange)
	for i := range msgs {
		if msgs[i].Role != domain.RoleAssistant {
			continue
		}
		ordinal, question, ok := ParseFollowupMarker(msgs[i].Text)
		if !ok {
			continue
		}
		if _, exists := out[ordinal]; exists {
			continue
		}
		ex := FollowupExchange{Ordinal: ordinal, Question: question, Position: i}
		for j := i + 1; j < len(msgs); j++ {
			if msgs[j].Role == domain.RoleLearner && !msgs[j].IsBlank() {
				ex.Answer = msgs[j].Text
				ex.Answered = true
				break
			}
		}
		out[ordinal] = ex
	}
	return out
}

// FallbackFollowupQuestion supplies a deterministic personalized question
// when the generative backend is unavailable, so dynamic mode degrades
// without stalling the intake.
func FallbackFollowupQuestion(ordinal int, a *Answers) string {
	switch ordinal {
	case 1:
		if a != nil && a.Goal != "" {
			return fmt.Sprintf("You mentioned your goal is %q. What part of that work are you most excited about?", a.Goal)
		}
		return "What part of billing and coding work are you most excited about?"
	case 2:
		return "How many hours a week can you realistically set aside for studying?"
	default:
		return "Is there anything else about your schedule or background I should factor into your plan?"
	}
}
