package diagnosis

import (
	"fmt"
	"strings"

	"github.com/Kamar-Folarin/commit-health/internal/classifier"
	"github.com/Kamar-Folarin/commit-health/internal/models"
)

const systemPrompt = `You are an experienced CTO who evaluates open source projects.
Given the data below, write a short, direct diagnosis of the repository's health in Markdown with these sections:
1. **Overall**: one sentence verdict.
2. **Risks**: the concrete risks the data points to.
3. **Recommendations**: what a maintainer or a user of the project should do.
Be professional and objective. No filler.`

// Facts are the inputs of a diagnosis
type Facts struct {
	Repository    string
	Score         int
	BusFactorRisk bool
	Distribution  map[models.Category]int
	Trend         models.Trend
}

// FactsFromReport extracts the diagnosis inputs from a sync report
func FactsFromReport(report *models.SyncReport) Facts {
	return Facts{
		Repository:    report.Repository,
		Score:         report.Assessment.Score,
		BusFactorRisk: report.Assessment.BusFactorRisk,
		Distribution:  report.Distribution,
		Trend:         report.Trend,
	}
}

// UserPrompt renders facts as the user message. Categories are listed in
// classifier order so the prompt is deterministic.
func UserPrompt(f Facts) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Evaluate the project: %s\n\n", f.Repository)
	b.WriteString("Key data:\n")
	fmt.Fprintf(&b, "- Health score: %d/100\n", f.Score)
	fmt.Fprintf(&b, "- Activity trend: %s\n", f.Trend)
	if f.BusFactorRisk {
		b.WriteString("- Bus factor risk: High Risk\n")
	} else {
		b.WriteString("- Bus factor risk: Safe\n")
	}

	b.WriteString("- Work distribution:")
	total := 0
	for _, category := range classifier.Categories() {
		total += f.Distribution[category]
	}
	if total == 0 {
		b.WriteString(" no commits\n")
		return b.String()
	}
	b.WriteString("\n")
	for _, category := range classifier.Categories() {
		if n := f.Distribution[category]; n > 0 {
			fmt.Fprintf(&b, "  - %s: %d (%.1f%%)\n", category, n, float64(n)*100/float64(total))
		}
	}
	return b.String()
}
