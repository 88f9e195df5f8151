package models

// Intent is the classifier's structured reading of one utterance.
// Format and Subject are empty when the utterance carried no explicit
// signal for that slot.
type Intent struct {
	IsDataRequest bool
	Format        FormatType
	Subject       string
}

// Route names the branch a turn takes after clarification resolution.
type Route int

const (
	// RouteAskFormat emits the three-option format clarification.
	RouteAskFormat Route = iota
	// RouteAskSubject emits the free-text data-subject clarification.
	RouteAskSubject
	// RouteFetch proceeds to data synthesis.
	RouteFetch
	// RouteAnswerGeneral hands the turn to the general-question responder.
	RouteAnswerGeneral
)

func (r Route) String() string {
	switch r {
	case RouteAskFormat:
		return "ask_format"
	case RouteAskSubject:
		return "ask_subject"
	case RouteFetch:
		return "fetch"
	case RouteAnswerGeneral:
		return "answer_general"
	}
	return "unknown"
}

// TurnDecision is the resolver's output for one turn. Ephemeral, never
// persisted; Format/Subject are the merged values the chosen route runs
// with.
type TurnDecision struct {
	Route   Route
	Format  FormatType
	Subject string
}
