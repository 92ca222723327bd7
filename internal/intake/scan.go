package intake

import "github.com/aztecedu/pathway-advisor/internal/domain"

// Candidate is a learner utterance the scanner considered for a stage.
// Position is the message's index in the transcript; OK reports whether the
// stage's classifier accepted it.
type Candidate struct {
	Position int
	RawText  string
	Value    string
	OK       bool
}

// FindAnswer scans learner messages strictly after the given position,
// skipping blank ones, and applies classify to each in order. The first
// successful classification wins. If the transcript is exhausted without a
// success, the last non-blank candidate is returned with OK=false so the
// caller can distinguish "no reply yet" (found=false) from "a reply exists
// but didn't classify" — the two cases drive fresh-prompt vs re-prompt
// wording.
//
// Scanning never reconsiders a position at or before after, which is what
// keeps stage resolution monotonic and prevents one utterance from being
// bound to two stages.
func FindAnswer(msgs domain.Transcript, after int, classify Classifier) (Candidate, bool) {
	var last Candidate
	found := false
	for i := after + 1; i < len(msgs); i++ {
		if msgs[i].Role != domain.RoleLearner || msgs[i].IsBlank() {
			continue
		}
		if value, ok := classify(msgs[i].Text); ok {
			return Candidate{Position: i, RawText: msgs[i].Text, Value: value, OK: true}, true
		}
		last = Candidate{Position: i, RawText: msgs[i].Text}
		found = true
	}
	return last, found
}

// firstPathwayChoice locates the earliest learner message that names a
// pathway, scanning the whole transcript from the top. Unlike stage answers
// the pathway can appear anywhere in the opening exchange.
func firstPathwayChoice(msgs domain.Transcript) (Candidate, bool) {
	for i := range msgs {
		if msgs[i].Role != domain.RoleLearner || msgs[i].IsBlank() {
			continue
		}
		if id, ok := ClassifyPathway(msgs[i].Text); ok {
			return Candidate{Position: i, RawText: msgs[i].Text, Value: id, OK: true}, true
		}
	}
	return Candidate{}, false
}

// FirstPathway reports the pathway ID of the earliest pathway-naming learner
// message, for callers that tag conversations once a pathway resolves.
func FirstPathway(msgs domain.Transcript) (string, bool) {
	cand, ok := firstPathwayChoice(msgs)
	if !ok {
		return "", false
	}
	return cand.Value, true
}

// hasLearnerText reports whether the transcript contains any non-blank
// learner message.
func hasLearnerText(msgs domain.Transcript) bool {
	for i := range msgs {
		if msgs[i].Role == domain.RoleLearner && !msgs[i].IsBlank() {
			return true
		}
	}
	return false
}
