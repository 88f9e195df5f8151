package pipeline

import "github.com/finsight-ai/finsight/internal/models"

// Clarification texts shown to the user when a slot is missing.
const (
	formatClarifyContent  = "Please specify the format you would like: table, chart, or list."
	subjectClarifyContent = "For which companies, sectors, or financial metrics are you interested in seeing data? Please type your query."
)

// TurnSelection carries the values the user supplied explicitly this turn
// (a clicked format option or a typed data subject), outside any utterance.
type TurnSelection struct {
	Format  models.FormatType
	Subject string
}

// Resolve merges this turn's signals onto the pending clarification state
// and picks the route. Per-slot precedence, strongest first: an explicit
// selection made this turn, then a value the classifier extracted this
// turn, then the pending carry-over from earlier turns.
//
// Routes:
//
//	general intent                -> RouteAnswerGeneral
//	format and subject both known -> RouteFetch
//	format missing (or both)      -> RouteAskFormat (format is asked first)
//	subject missing only          -> RouteAskSubject
//
// The decision carries the merged values so clarify routes can persist the
// already-known slot and Fetch runs with both.
func Resolve(intent models.Intent, sel TurnSelection, pending models.Pending) models.TurnDecision {
	format := sel.Format
	if format == "" {
		format = intent.Format
	}
	if format == "" {
		format = pending.Format
	}

	subject := sel.Subject
	if subject == "" {
		subject = intent.Subject
	}
	if subject == "" {
		subject = pending.Subject
	}

	if !intent.IsDataRequest {
		return models.TurnDecision{Route: models.RouteAnswerGeneral}
	}

	switch {
	case format != "" && subject != "":
		return models.TurnDecision{Route: models.RouteFetch, Format: format, Subject: subject}
	case format == "":
		return models.TurnDecision{Route: models.RouteAskFormat, Subject: subject}
	default:
		return models.TurnDecision{Route: models.RouteAskSubject, Format: format}
	}
}
