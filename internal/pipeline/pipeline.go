// Package pipeline implements the per-turn routing core: intent
// classification, clarification resolution, data synthesis, general
// answers, and response assembly. One call to RunTurn processes exactly
// one chat turn to completion.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/finsight-ai/finsight/internal/llm"
	"github.com/finsight-ai/finsight/internal/models"
)

// TurnInput is one inbound turn. Exactly one of Utterance, Format, or
// Subject is expected to carry content: a typed message, a clicked format
// option, or a typed data subject.
type TurnInput struct {
	Utterance string
	Format    models.FormatType
	Subject   string
}

// hasSelection reports whether this is a bare clarification answer.
func (in TurnInput) hasSelection() bool {
	return in.Format != "" || in.Subject != ""
}

type Pipeline struct {
	classifier *Classifier
	synth      *Synthesizer
	general    *GeneralResponder
	log        *zap.Logger
}

func New(gen llm.Generator, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		classifier: NewClassifier(gen, log.Named("classifier")),
		synth:      NewSynthesizer(gen, log.Named("synthesizer")),
		general:    NewGeneralResponder(gen, log.Named("general")),
		log:        log,
	}
}

// WithSynthesizer swaps the synthesizer, for tests that pin randomness.
func (p *Pipeline) WithSynthesizer(s *Synthesizer) *Pipeline {
	p.synth = s
	return p
}

// Absorb records the turn's raw input on the session before any model call
// runs: the user message joins history and bare selections land in the
// pending slots. Callers persist the session between Absorb and RunTurn so
// a crashed turn still remembers what the user supplied.
func (p *Pipeline) Absorb(sess *models.Session, in TurnInput) {
	if in.Utterance != "" {
		sess.History = append(sess.History, models.NewUserMessage(in.Utterance))
	}
	if in.Format != "" {
		sess.Pending.Format = in.Format
	}
	if in.Subject != "" {
		sess.Pending.Subject = in.Subject
	}
}

// RunTurn drives one absorbed turn through classify -> resolve ->
// (fetch | answer | clarify) -> assemble. Panics inside the turn are
// recovered at this boundary: the session gets a bot-visible error entry
// and the caller gets an error, with state up to the failure intact.
func (p *Pipeline) RunTurn(ctx context.Context, sess *models.Session, in TurnInput) (resp models.AgentResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("turn processing: %v", r)
			sess.History = append(sess.History, models.NewBotMessage(fmt.Sprintf("Error: %v", r)))
			p.log.Error("turn panicked", zap.String("session", sess.ID), zap.Any("panic", r))
		}
	}()

	intent := p.classifier.Classify(ctx, sess.LastUserMessage())

	// A bare clarification answer is always part of the data flow, even
	// when re-classifying the stale utterance says otherwise.
	if in.Utterance == "" && in.hasSelection() {
		intent.IsDataRequest = true
	}

	decision := Resolve(intent, TurnSelection{Format: in.Format, Subject: in.Subject}, sess.Pending)
	p.log.Info("turn routed",
		zap.String("session", sess.ID),
		zap.Stringer("route", decision.Route),
		zap.String("format", string(decision.Format)),
		zap.String("subject", decision.Subject))

	switch decision.Route {
	case models.RouteAskFormat:
		resp = models.AgentResponse{
			Type:    models.ResponseClarify,
			Content: formatClarifyContent,
			Options: models.FormatOptions(),
		}
	case models.RouteAskSubject:
		resp = models.AgentResponse{
			Type:    models.ResponseClarify,
			Content: subjectClarifyContent,
		}
	case models.RouteFetch:
		format := decision.Format
		if format == "" {
			format = models.FormatTable
		}
		records := p.synth.Synthesize(ctx, decision.Subject)
		resp = models.AgentResponse{
			Type:    models.ResponseData,
			Content: dataCaption(sess.LastUserMessage(), format),
			Format:  format,
			Records: records,
		}
	case models.RouteAnswerGeneral:
		resp = models.AgentResponse{
			Type:    models.ResponseGeneral,
			Content: p.general.Answer(ctx, sess.LastUserMessage()),
		}
	}

	return assemble(sess, decision, resp), nil
}
