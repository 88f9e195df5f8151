package models

import "time"

// VisualizationRecord is one rendered data response kept in session history.
// Immutable once appended.
type VisualizationRecord struct {
	Format    FormatType    `json:"format"`
	Records   []StockRecord `json:"records"`
	Caption   string        `json:"caption"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Pending holds the clarification slots carried across turns. A zero value
// means nothing is pending.
type Pending struct {
	Format  FormatType `json:"format,omitempty"`
	Subject string     `json:"subject,omitempty"`
}

// Clear drops both slots.
func (p *Pending) Clear() {
	p.Format = ""
	p.Subject = ""
}

// IsEmpty reports whether no clarification is in flight.
func (p Pending) IsEmpty() bool {
	return p.Format == "" && p.Subject == ""
}

// Session is the full per-conversation state. The store owns it; the
// pipeline works on a copy fetched for the turn and the caller persists
// the mutated result.
type Session struct {
	ID                   string                `json:"id"`
	History              []Message             `json:"history"`
	VisualizationHistory []VisualizationRecord `json:"visualizationHistory"`
	Pending              Pending               `json:"pending"`
	CreatedAt            time.Time             `json:"createdAt"`
	UpdatedAt            time.Time             `json:"updatedAt"`
}

// NewSession creates an empty session for id.
func NewSession(id string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:                   id,
		History:              []Message{},
		VisualizationHistory: []VisualizationRecord{},
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// LastUserMessage returns the content of the most recent user entry, or ""
// when the user has not spoken yet.
func (s *Session) LastUserMessage() string {
	for i := len(s.History) - 1; i >= 0; i-- {
		if s.History[i].Role == RoleUser {
			return s.History[i].Content
		}
	}
	return ""
}

// Clone deep-copies the session so a turn can fail without corrupting the
// stored state.
func (s *Session) Clone() *Session {
	cp := *s
	cp.History = append([]Message(nil), s.History...)
	cp.VisualizationHistory = make([]VisualizationRecord, len(s.VisualizationHistory))
	for i, v := range s.VisualizationHistory {
		v.Records = append([]StockRecord(nil), v.Records...)
		cp.VisualizationHistory[i] = v
	}
	return &cp
}
