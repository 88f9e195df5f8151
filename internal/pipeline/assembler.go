package pipeline

import (
	"fmt"
	"time"

	"github.com/finsight-ai/finsight/internal/models"
)

// assemble normalizes a route outcome into the single tagged response,
// appends the bot message, and applies the pending-state lifecycle:
// data and general turns clear pending; clarify turns persist exactly the
// slots the resolver already knew.
func assemble(sess *models.Session, decision models.TurnDecision, resp models.AgentResponse) models.AgentResponse {
	sess.History = append(sess.History, models.NewBotMessage(resp.Content))

	switch resp.Type {
	case models.ResponseData:
		sess.VisualizationHistory = append(sess.VisualizationHistory, models.VisualizationRecord{
			Format:    resp.Format,
			Records:   resp.Records,
			Caption:   resp.Content,
			CreatedAt: time.Now().UTC(),
		})
		sess.Pending.Clear()
	case models.ResponseGeneral:
		sess.Pending.Clear()
	case models.ResponseClarify:
		sess.Pending = models.Pending{Format: decision.Format, Subject: decision.Subject}
	}

	sess.UpdatedAt = time.Now().UTC()
	return resp
}

// dataCaption echoes the user's request and the rendered format, matching
// the chat bubble shown next to a visualization.
func dataCaption(lastUserMsg string, format models.FormatType) string {
	if lastUserMsg == "" {
		lastUserMsg = "the requested data"
	}
	return fmt.Sprintf("Responding to your query: %q. Here is the financial data in %s format.", lastUserMsg, format)
}
