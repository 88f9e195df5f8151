package pipeline

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/finsight-ai/finsight/internal/llm"
	"github.com/finsight-ai/finsight/internal/models"
	"github.com/finsight-ai/finsight/internal/prompts"
)

// subjectNone is the literal the model uses for "no data query found".
const subjectNone = "none"

// Classifier turns the latest user utterance into a structured intent. The
// model does the heavy lifting; a deterministic keyword heuristic covers
// model failures and unparseable replies, so Classify is total.
type Classifier struct {
	gen llm.Generator
	log *zap.Logger
}

func NewClassifier(gen llm.Generator, log *zap.Logger) *Classifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Classifier{gen: gen, log: log}
}

type intentReply struct {
	IntentType string `json:"intent_type"`
	DataFormat string `json:"data_format"`
	DataQuery  string `json:"data_query"`
}

// Classify never fails: any model or parse problem falls through to the
// heuristic.
func (c *Classifier) Classify(ctx context.Context, utterance string) models.Intent {
	prompt := prompts.MustLoadWithContext("intent_classifier", map[string]string{
		"Utterance": utterance,
	})

	reply, err := c.gen.Generate(ctx, prompt)
	if err != nil {
		c.log.Warn("intent model call failed, using heuristic", zap.Error(err))
		return heuristicIntent(utterance)
	}

	body, ok := llm.ExtractFencedJSON(reply)
	if !ok {
		c.log.Warn("intent reply had no json block, using heuristic")
		return heuristicIntent(utterance)
	}

	var parsed intentReply
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		c.log.Warn("intent json unparseable, using heuristic", zap.Error(err))
		return heuristicIntent(utterance)
	}

	intent := models.Intent{
		IsDataRequest: parsed.IntentType == "financial_data",
	}
	// Closed-set validation: anything the model invents is treated as
	// absent, never coerced to a default.
	if format, ok := models.ParseFormat(parsed.DataFormat); ok {
		intent.Format = format
	}
	if parsed.DataQuery != "" && parsed.DataQuery != subjectNone {
		intent.Subject = parsed.DataQuery
	}

	c.log.Debug("intent classified",
		zap.Bool("data_request", intent.IsDataRequest),
		zap.String("format", string(intent.Format)),
		zap.String("subject", intent.Subject))
	return intent
}

var (
	createComponentRe = regexp.MustCompile(`(?i)create a component`)
	questionPrefixRe  = regexp.MustCompile(`(?i)(what is|explain|tell me about|define|how to )`)
	dataRequestRe     = regexp.MustCompile(`(?i)(show (me )?data|display|visualize|chart|table|list|financials)`)
	knownSymbolRe     = regexp.MustCompile(`(?i)\b(AAPL|GOOGL|MSFT|AMZN|TSLA|NVDA|JPM|V|MA|PG|KO)\b`)
	subjectPhraseRe   = regexp.MustCompile(`(?:for|of)\s+([A-Z]{1,5}(?:\s+stock)?|[a-zA-Z]+\s+sector|[a-zA-Z]+\s+metric)`)
)

// heuristicIntent is the deterministic fallback classifier. Question-style
// prefixes win over data keywords, matching the model prompt's priority
// rule.
func heuristicIntent(utterance string) models.Intent {
	switch {
	case createComponentRe.MatchString(utterance):
		return models.Intent{IsDataRequest: true}
	case questionPrefixRe.MatchString(utterance):
		return models.Intent{IsDataRequest: false}
	case dataRequestRe.MatchString(utterance):
		intent := models.Intent{IsDataRequest: true}
		lower := strings.ToLower(utterance)
		switch {
		case strings.Contains(lower, "table"):
			intent.Format = models.FormatTable
		case strings.Contains(lower, "chart"):
			intent.Format = models.FormatChart
		case strings.Contains(lower, "list"):
			intent.Format = models.FormatList
		}
		if m := subjectPhraseRe.FindStringSubmatch(utterance); m != nil {
			intent.Subject = m[1]
		} else if m := knownSymbolRe.FindStringSubmatch(utterance); m != nil {
			intent.Subject = strings.ToUpper(m[1])
		}
		return intent
	default:
		return models.Intent{IsDataRequest: false}
	}
}
