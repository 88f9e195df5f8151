package pipeline

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/finsight-ai/finsight/internal/llm"
	"github.com/finsight-ai/finsight/internal/prompts"
)

// Fixed texts for the general-question branch.
const (
	// RefusalMessage is returned verbatim for out-of-domain questions.
	RefusalMessage = "I apologize, but my current capabilities are focused on financial data visualization and related queries. Please ask me about financial data, companies, or how to display data."

	// answerFallback covers a failed answer call.
	answerFallback = "Sorry, I could not answer that. It might be outside my core financial data visualization scope or an error occurred."
)

const outOfDomainMarker = "OUT_OF_DOMAIN"

// GeneralResponder answers questions outside the visualization intent,
// behind a domain gate. The gate fails open: any ambiguous or failed check
// counts as in-domain.
type GeneralResponder struct {
	gen llm.Generator
	log *zap.Logger
}

func NewGeneralResponder(gen llm.Generator, log *zap.Logger) *GeneralResponder {
	if log == nil {
		log = zap.NewNop()
	}
	return &GeneralResponder{gen: gen, log: log}
}

// Answer always returns user-visible text.
func (g *GeneralResponder) Answer(ctx context.Context, utterance string) string {
	if !g.inDomain(ctx, utterance) {
		return RefusalMessage
	}

	prompt := prompts.MustLoadWithContext("general_answer", map[string]string{
		"Utterance": utterance,
	})
	answer, err := g.gen.Generate(ctx, prompt)
	if err != nil {
		g.log.Warn("general answer call failed", zap.Error(err))
		return answerFallback
	}
	return answer
}

func (g *GeneralResponder) inDomain(ctx context.Context, utterance string) bool {
	prompt := prompts.MustLoadWithContext("domain_gate", map[string]string{
		"Utterance": utterance,
	})
	reply, err := g.gen.Generate(ctx, prompt)
	if err != nil {
		g.log.Warn("domain gate call failed, assuming in domain", zap.Error(err))
		return true
	}

	// Only the exact marker refuses; anything else is in-domain.
	return strings.ToUpper(strings.TrimSpace(reply)) != outOfDomainMarker
}
