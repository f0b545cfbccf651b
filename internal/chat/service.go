// Package chat runs one conversational cycle: topic gate, prompt composition,
// generation, and the paired append to the conversation log.
package chat

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/krishimitra/agrichat/internal/cache"
	"github.com/krishimitra/agrichat/internal/generation"
	"github.com/krishimitra/agrichat/internal/models"
	"github.com/krishimitra/agrichat/internal/prompt"
	"github.com/krishimitra/agrichat/internal/topic"
	"github.com/krishimitra/agrichat/internal/utils"
)

const (
	SourceText  = "text"
	SourceAudio = "audio"

	conversationCacheKey = "conversation:all"
	conversationCacheTTL = 30 * time.Second
)

type SubmitResult struct {
	DisplayText string
	WasAccepted bool
}

type Service struct {
	gate      *topic.Gate
	gen       *generation.Client
	rec       *Recorder
	rejection string

	cache cache.Cache // optional
	log   *logrus.Logger
}

func NewService(gate *topic.Gate, gen *generation.Client, rec *Recorder, rejection string, c cache.Cache, log *logrus.Logger) *Service {
	if rejection == "" {
		rejection = topic.RejectionMessage
	}
	if log == nil {
		log = logrus.New()
	}
	return &Service{gate: gate, gen: gen, rec: rec, rejection: rejection, cache: c, log: log}
}

// RejectionMessage is the fixed reply recorded for out-of-domain input.
func (s *Service) RejectionMessage() string { return s.rejection }

// SubmitUtterance runs the full pipeline for one typed cycle. Empty input is
// an INVALID_ARGUMENT and writes nothing; every other outcome — answer, gate
// rejection, backend failure — completes the cycle with exactly two records.
func (s *Service) SubmitUtterance(ctx context.Context, text, language string) (SubmitResult, error) {
	return s.submit(ctx, text, language, SourceText)
}

// SubmitTranscript is SubmitUtterance for text that came out of
// speech-to-text; it only differs in the recorded source.
func (s *Service) SubmitTranscript(ctx context.Context, text, language string) (SubmitResult, error) {
	return s.submit(ctx, text, language, SourceAudio)
}

func (s *Service) submit(ctx context.Context, text, language, source string) (SubmitResult, error) {
	const op = "ChatService.Submit"

	text = strings.TrimSpace(text)
	if text == "" {
		return SubmitResult{}, utils.E(utils.CodeInvalidArgument, op, "message is required", nil)
	}

	decision := s.gate.Evaluate(text)

	var display string
	var failKind generation.FailureKind
	if decision.Accepted {
		res := s.gen.Generate(ctx, prompt.Compose(text, language))
		if res.OK() {
			display = res.Text
		} else {
			display = "Error: " + res.Failure.Description
			failKind = res.Failure.Kind
		}
	} else {
		display = s.rejection
	}

	meta := cycleMetadata(decision, language, source, failKind)
	if err := s.rec.RecordCycle(ctx, text, display, meta); err != nil {
		return SubmitResult{}, utils.E(utils.CodeInternal, op, "failed to record turn", err)
	}
	s.invalidate(ctx)

	s.log.WithFields(logrus.Fields{
		"accepted": decision.Accepted,
		"keyword":  decision.MatchedKeyword,
		"language": language,
		"source":   source,
	}).Info("cycle recorded")

	return SubmitResult{DisplayText: display, WasAccepted: decision.Accepted}, nil
}

// GetConversation returns the full log in append order.
func (s *Service) GetConversation(ctx context.Context) ([]models.Turn, error) {
	const op = "ChatService.GetConversation"

	if s.cache != nil {
		var cached []models.Turn
		if hit, err := s.cache.GetJSON(ctx, conversationCacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	rows, err := s.rec.ListAll(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list conversation", err)
	}

	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, conversationCacheKey, rows, conversationCacheTTL)
	}
	return rows, nil
}

// ClearConversation removes every record. Idempotent.
func (s *Service) ClearConversation(ctx context.Context) error {
	const op = "ChatService.ClearConversation"

	if err := s.rec.ClearAll(ctx); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to clear conversation", err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Del(ctx, conversationCacheKey)
	}
}

func cycleMetadata(d topic.Decision, language, source string, failKind generation.FailureKind) datatypes.JSON {
	m := map[string]any{
		"accepted": d.Accepted,
		"language": language,
		"source":   source,
	}
	if d.MatchedKeyword != "" {
		m["matched_keyword"] = d.MatchedKeyword
	}
	if failKind != "" {
		m["failure_kind"] = string(failKind)
	}
	b, _ := json.Marshal(m)
	return datatypes.JSON(b)
}
