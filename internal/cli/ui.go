package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/finsight-ai/finsight/internal/models"
)

// UI styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	hintStyle = lipgloss.NewStyle().
			Faint(true)

	botStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6"))

	recordsStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#10B981")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444"))
)

// renderResponse formats one turn outcome for the terminal. Data responses
// get a bordered record block; everything else is the bot text.
func renderResponse(resp models.AgentResponse) string {
	var b strings.Builder
	b.WriteString(botStyle.Render(resp.Content))

	if resp.Type == models.ResponseData && len(resp.Records) > 0 {
		b.WriteString("\n")
		b.WriteString(recordsStyle.Render(renderRecords(resp.Records)))
	}
	return b.String()
}

func renderRecords(records []models.StockRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-8s %12s %14s", "SYMBOL", "PRICE", "VOLUME")
	for _, r := range records {
		fmt.Fprintf(&b, "\n%-8s %12s %14d", r.Symbol, r.Price.StringFixed(2), r.Volume)
	}
	return b.String()
}
