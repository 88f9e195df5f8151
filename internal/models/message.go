package models

import "time"

// Message roles. The UI historically called the assistant "bot" and the
// wire format keeps that name.
const (
	RoleUser = "user"
	RoleBot  = "bot"
)

// ResponseType tags the three outcomes a turn can produce.
type ResponseType string

const (
	ResponseClarify ResponseType = "clarify"
	ResponseData    ResponseType = "data"
	ResponseGeneral ResponseType = "general"
)

// FormatType is the closed set of visualization formats.
type FormatType string

const (
	FormatTable FormatType = "table"
	FormatChart FormatType = "chart"
	FormatList  FormatType = "list"
)

// FormatOptions lists the selectable formats, in the order they are
// presented to the user when clarifying.
func FormatOptions() []string {
	return []string{string(FormatTable), string(FormatChart), string(FormatList)}
}

// ParseFormat validates s against the closed format set. Anything outside
// the set is treated as absent, never coerced to a default.
func ParseFormat(s string) (FormatType, bool) {
	switch FormatType(s) {
	case FormatTable, FormatChart, FormatList:
		return FormatType(s), true
	}
	return "", false
}

// Message is one chat history entry. Immutable once appended.
type Message struct {
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// NewUserMessage builds a user history entry stamped with now.
func NewUserMessage(content string) Message {
	now := time.Now().UTC()
	return Message{Role: RoleUser, Content: content, Timestamp: &now}
}

// NewBotMessage builds a bot history entry stamped with now.
func NewBotMessage(content string) Message {
	now := time.Now().UTC()
	return Message{Role: RoleBot, Content: content, Timestamp: &now}
}
