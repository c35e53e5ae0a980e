// Package services – ChatService
//
// ChatService answers a participant's question. It records the user turn,
// forwards the question to the inference server together with the current
// "default" system prompt, and records the bot's reply under the same session
// token. When the inference server is unreachable the caller still gets a
// reply: a fixed fallback text flagged as degraded, with no bot turn stored.
package services

import (
	"context"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/hackathon-backend/internal/domain"
	"github.com/tbourn/hackathon-backend/internal/inference"
)

// Inference outcomes reported through ChatService.OnInference.
const (
	OutcomeOK    = "ok"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

// Inference status strings.
const (
	StatusConnected    = "connected"
	StatusDisconnected = "disconnected"
)

// Completer is the inference capability ChatService depends on.
type Completer interface {
	Complete(ctx context.Context, messages []inference.Message) (string, error)
	Ping(ctx context.Context) error
}

// AskInput is one question from a caller.
type AskInput struct {
	CallerID     string
	Message      string
	SessionToken *string
	ClientAgent  *string
}

// AskResult is the answer plus the turns that were stored.
type AskResult struct {
	Reply        string
	SessionToken string
	Degraded     bool
	UserMessage  *domain.ChatMessage
	BotMessage   *domain.ChatMessage
}

// ChatService orchestrates a question/answer round trip.
type ChatService struct {
	Messages *MessageService
	Prompts  *PromptService
	LLM      Completer
	// NewToken mints a session token when the caller sent none.
	NewToken func() string
	// OnInference is called once per inference attempt with its outcome.
	OnInference func(outcome string)
}

// Ask records the question, asks the model and records the answer.
func (s *ChatService) Ask(ctx context.Context, in AskInput) (*AskResult, error) {
	tr := otel.Tracer("services/ChatService")
	ctx, span := tr.Start(ctx, "Ask", trace.WithAttributes(attribute.String("caller.id", in.CallerID)))
	defer span.End()

	if strings.TrimSpace(in.Message) == "" {
		return nil, ErrEmptyBody
	}
	token := ""
	if t := trimOptional(in.SessionToken); t != nil {
		token = *t
	} else {
		token = s.newToken()
	}
	span.SetAttributes(attribute.String("session.token", token))

	lg := zerolog.Ctx(ctx)

	system, err := s.Prompts.SystemPrompt(ctx, domain.DefaultSystemPromptName)
	if err != nil {
		lg.Warn().Err(err).Msg("system prompt unavailable, using built-in")
		system = DefaultSystemPrompt
	}

	userMsg, err := s.Messages.Record(ctx, RecordInput{
		CallerID:     in.CallerID,
		Body:         in.Message,
		Role:         domain.RoleUser,
		SessionToken: &token,
		ClientAgent:  in.ClientAgent,
	})
	if err != nil {
		return nil, err
	}
	res := &AskResult{SessionToken: token, UserMessage: userMsg}

	reply, err := s.LLM.Complete(ctx, []inference.Message{
		{Role: inference.RoleSystem, Content: system},
		{Role: inference.RoleUser, Content: in.Message},
	})
	if err != nil {
		span.RecordError(err)
		lg.Warn().Err(err).Msg("inference failed, replying with fallback")
		s.report(OutcomeError)
		res.Reply = FallbackReply
		res.Degraded = true
		return res, nil
	}
	if strings.TrimSpace(reply) == "" {
		s.report(OutcomeEmpty)
		reply = EmptyReply
	} else {
		s.report(OutcomeOK)
	}
	res.Reply = reply

	botMsg, err := s.Messages.Record(ctx, RecordInput{
		CallerID:     in.CallerID,
		Body:         reply,
		Role:         domain.RoleBot,
		SessionToken: &token,
		ClientAgent:  in.ClientAgent,
	})
	if err != nil {
		// reply already produced; keep serving it
		lg.Error().Err(err).Msg("bot turn not recorded")
		return res, nil
	}
	res.BotMessage = botMsg
	return res, nil
}

// InferenceStatus probes the inference server.
func (s *ChatService) InferenceStatus(ctx context.Context) string {
	if s.LLM == nil {
		return StatusDisconnected
	}
	if err := s.LLM.Ping(ctx); err != nil {
		return StatusDisconnected
	}
	return StatusConnected
}

func (s *ChatService) newToken() string {
	if s.NewToken != nil {
		return s.NewToken()
	}
	return ulid.Make().String()
}

func (s *ChatService) report(outcome string) {
	if s.OnInference != nil {
		s.OnInference(outcome)
	}
}
