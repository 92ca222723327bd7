// Package advisor orchestrates one intake turn: run the stage machine over
// the transcript, generate any text the machine asks for, and persist the
// exchange as a side effect. The transcript is the only state that matters;
// persistence and logging are best-effort and never change the reply.
package advisor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/aztecedu/pathway-advisor/internal/catalog"
	"github.com/aztecedu/pathway-advisor/internal/domain"
	"github.com/aztecedu/pathway-advisor/internal/intake"
	"github.com/aztecedu/pathway-advisor/internal/llm"
	"github.com/aztecedu/pathway-advisor/internal/store"
)

const defaultConversationTitle = "New conversation"

// maxTitleLen bounds conversation titles derived from learner text.
const maxTitleLen = 60

// Service answers one chat request at a time. Safe for concurrent use: it
// holds no per-conversation state.
type Service struct {
	machine *intake.Machine
	client  llm.Client
	llmCfg  llm.Config
	finder  intake.LessonFinder
	repo    store.Repository // nil disables persistence
	tlog    *TranscriptLogger
	logger  *slog.Logger
}

// NewService wires the intake machine to its collaborators. repo and tlog
// may be nil; finder may be nil when no catalog is loaded.
func NewService(mode intake.FollowupMode, client llm.Client, llmCfg llm.Config, finder intake.LessonFinder, repo store.Repository, tlog *TranscriptLogger, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if finder == nil {
		finder = intake.NoCatalog{}
	}
	return &Service{
		machine: intake.NewMachine(mode),
		client:  client,
		llmCfg:  llmCfg,
		finder:  finder,
		repo:    repo,
		tlog:    tlog,
		logger:  logger,
	}
}

// ReplyResult is the outcome of one intake turn.
type ReplyResult struct {
	Reply          string
	ConversationID string
	Kind           string // "prompt", "followup", "plan", or "delivered"
}

// Reply runs the stage machine over the transcript and produces the single
// assistant message for this turn. conversationID may be empty; a new
// conversation is created on first save. Reply itself never fails on
// persistence or backend errors — the machine's deterministic output (or its
// fallback rendering) always produces a reply.
func (s *Service) Reply(ctx context.Context, learnerID, conversationID string, t domain.Transcript) (*ReplyResult, error) {
	outcome := s.machine.Run(t)

	result := &ReplyResult{ConversationID: conversationID}
	switch outcome.Kind {
	case intake.OutcomeFollowup:
		question := s.followupQuestion(ctx, outcome.Ordinal, outcome.Answers)
		result.Reply = intake.FormatFollowup(outcome.Ordinal, question)
		result.Kind = "followup"
	case intake.OutcomePlan:
		result.Reply = s.planReply(ctx, outcome.Answers)
		result.Kind = "plan"
	case intake.OutcomeDelivered:
		result.Reply = outcome.Reply
		result.Kind = "delivered"
	default:
		result.Reply = outcome.Reply
		result.Kind = "prompt"
	}

	result.ConversationID = s.persist(ctx, learnerID, conversationID, t, result)
	s.logExchange(learnerID, result, t)
	return result, nil
}

// followupQuestion asks the generative backend for the next follow-up
// question, falling back to a deterministic one when the backend is down or
// returns nothing usable.
func (s *Service) followupQuestion(ctx context.Context, ordinal int, a *intake.Answers) string {
	if s.client == nil || !s.llmCfg.Enabled {
		return intake.FallbackFollowupQuestion(ordinal, a)
	}

	userPrompt := fmt.Sprintf("Intake summary:\n%s\nThis is follow-up question %d of %d.", a.Summary(), ordinal, intake.MaxFollowups)
	resp, err := llm.GenerateWithFallback(ctx, s.client, s.llmCfg, llm.GenerateRequest{
		SystemPrompt: followupSystemPrompt,
		UserPrompt:   userPrompt,
	})
	if err != nil {
		s.logger.Warn("follow-up generation failed, using fallback question",
			"ordinal", ordinal, "error", err)
		return intake.FallbackFollowupQuestion(ordinal, a)
	}

	question := strings.TrimSpace(resp.Text)
	if question == "" {
		return intake.FallbackFollowupQuestion(ordinal, a)
	}
	return question
}

// planReply builds the blueprint and lets the generative backend smooth it
// into prose. Any failure degrades to the deterministic rendering, and every
// delivered plan opens with the marker sentence so replays detect it.
func (s *Service) planReply(ctx context.Context, a *intake.Answers) string {
	bp := intake.BuildBlueprint(a, s.finder)
	if s.client == nil || !s.llmCfg.Enabled {
		return bp.Render()
	}

	resp, err := llm.GenerateWithFallback(ctx, s.client, s.llmCfg, llm.GenerateRequest{
		SystemPrompt: planSystemPrompt,
		UserPrompt:   bp.GroundingContext(a),
	})
	if err != nil {
		s.logger.Warn("plan generation failed, using deterministic rendering", "error", err)
		return bp.Render()
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return bp.Render()
	}
	if !strings.HasPrefix(text, intake.PlanMarker) {
		text = intake.PlanMarker + "\n\n" + text
	}
	return text
}

// persist saves this exchange. Failures are logged and swallowed: the client
// resends the full transcript each turn, so the store is only a convenience
// for history views.
func (s *Service) persist(ctx context.Context, learnerID, conversationID string, t domain.Transcript, result *ReplyResult) string {
	if s.repo == nil || learnerID == "" {
		return conversationID
	}

	created := false
	if conversationID == "" {
		conv, err := s.repo.CreateConversation(ctx, learnerID, titleFor(t))
		if err != nil {
			s.logger.Warn("failed to create conversation", "learner_id", learnerID, "error", err)
			return ""
		}
		conversationID = conv.ID
		created = true
	}

	if created {
		// A fresh conversation stores the whole transcript so the history
		// view is complete even when the client started locally.
		for i := range t {
			if t[i].IsBlank() {
				continue
			}
			if _, err := s.repo.AppendMessage(ctx, conversationID, t[i].Role, t[i].Text); err != nil {
				s.logger.Warn("failed to store transcript message", "conversation_id", conversationID, "error", err)
			}
		}
	} else if last, ok := lastLearnerMessage(t); ok {
		if _, err := s.repo.AppendMessage(ctx, conversationID, domain.RoleLearner, last); err != nil {
			s.logger.Warn("failed to store learner message", "conversation_id", conversationID, "error", err)
		}
	}

	if _, err := s.repo.AppendMessage(ctx, conversationID, domain.RoleAssistant, result.Reply); err != nil {
		s.logger.Warn("failed to store assistant reply", "conversation_id", conversationID, "error", err)
	}

	if pathway, ok := intake.FirstPathway(t); ok {
		if err := s.repo.SetPathway(ctx, conversationID, pathway); err != nil {
			s.logger.Warn("failed to set conversation pathway", "conversation_id", conversationID, "error", err)
		}
		if created {
			if err := s.repo.SetTitle(ctx, conversationID, intake.PathwayLabel(pathway)+" intake"); err != nil {
				s.logger.Warn("failed to set conversation title", "conversation_id", conversationID, "error", err)
			}
		}
	}

	return conversationID
}

func (s *Service) logExchange(learnerID string, result *ReplyResult, t domain.Transcript) {
	if s.tlog == nil {
		return
	}
	if last, ok := lastLearnerMessage(t); ok {
		s.tlog.Log(TranscriptLogEvent{
			LearnerID:      learnerID,
			ConversationID: result.ConversationID,
			Direction:      "inbound",
			EventType:      "learner_message",
			Content:        last,
		})
	}
	s.tlog.Log(TranscriptLogEvent{
		LearnerID:      learnerID,
		ConversationID: result.ConversationID,
		Direction:      "outbound",
		EventType:      result.Kind,
		Content:        result.Reply,
	})
}

func lastLearnerMessage(t domain.Transcript) (string, bool) {
	for i := len(t) - 1; i >= 0; i-- {
		if t[i].Role == domain.RoleLearner && !t[i].IsBlank() {
			return t[i].Text, true
		}
	}
	return "", false
}

func titleFor(t domain.Transcript) string {
	for i := range t {
		if t[i].Role != domain.RoleLearner || t[i].IsBlank() {
			continue
		}
		title := strings.TrimSpace(t[i].Text)
		if len(title) > maxTitleLen {
			// Back up to a rune boundary so the cut never splits a
			// multi-byte character.
			cut := maxTitleLen
			for cut > 0 && !utf8.RuneStart(title[cut]) {
				cut--
			}
			title = title[:cut] + "…"
		}
		return title
	}
	return defaultConversationTitle
}

// CatalogFinder adapts a loaded catalog to the blueprint's lesson lookup.
type CatalogFinder struct {
	Catalog *catalog.Catalog
}

// FindLessons searches the catalog, mapping the blueprint's pillar strings
// onto catalog pillars. A nil catalog matches nothing.
func (f CatalogFinder) FindLessons(query, pillar string, limit int) []intake.LessonRef {
	if f.Catalog == nil {
		return nil
	}
	hits := f.Catalog.Search(query, catalog.SearchOptions{
		Pillar: catalog.Pillar(pillar),
		Limit:  limit,
	})
	refs := make([]intake.LessonRef, 0, len(hits))
	for _, h := range hits {
		refs = append(refs, intake.LessonRef{Code: h.Code, Course: h.Course, Lesson: h.Lesson})
	}
	return refs
}
