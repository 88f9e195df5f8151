package models

// AgentResponse is the single normalized turn outcome returned to callers.
// Format and Records are set only for data responses; Options only for a
// format clarification.
type AgentResponse struct {
	Type    ResponseType  `json:"type"`
	Content string        `json:"content"`
	Format  FormatType    `json:"format,omitempty"`
	Records []StockRecord `json:"records,omitempty"`
	Options []string      `json:"options,omitempty"`
}
