package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Kamar-Folarin/commit-health/internal/classifier"
	"github.com/Kamar-Folarin/commit-health/internal/models"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

func validateOutput(format string) error {
	switch format {
	case outputText, outputJSON, outputYAML:
		return nil
	default:
		return fmt.Errorf("invalid output format %q: expected text, json or yaml", format)
	}
}

// render writes v as JSON or YAML, or calls text for the human format
func render(w io.Writer, format string, v interface{}, text func(io.Writer)) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		text(w)
		return nil
	}
}

func writeAssessment(w io.Writer, repo string, a models.HealthAssessment, trend models.Trend) {
	fmt.Fprintf(w, "Repository:  %s\n", repo)
	fmt.Fprintf(w, "Health:      %d/100", a.Score)
	if a.Degraded {
		fmt.Fprint(w, " (degraded)")
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Activity:  %d/40\n", a.Activity)
	fmt.Fprintf(w, "  Community: %d/30\n", a.Community)
	fmt.Fprintf(w, "  Stability: %d/30\n", a.Stability)
	fmt.Fprintf(w, "Authors:     %d (top contributor %.1f%%)\n", a.Authors, a.TopContributorRatio*100)
	if a.BusFactorRisk {
		fmt.Fprintln(w, "Bus factor:  HIGH RISK")
	} else {
		fmt.Fprintln(w, "Bus factor:  ok")
	}
	fmt.Fprintf(w, "Trend:       %s\n", trend)
	if len(a.Reasons) > 0 {
		fmt.Fprintln(w, "Reasons:")
		for _, reason := range a.Reasons {
			fmt.Fprintf(w, "  - %s\n", reason)
		}
	}
}

func writeDistribution(w io.Writer, dist map[models.Category]int) {
	total := 0
	for _, n := range dist {
		total += n
	}
	fmt.Fprintln(w, "Intent distribution:")
	for _, category := range classifier.Categories() {
		n := dist[category]
		pct := 0.0
		if total > 0 {
			pct = float64(n) * 100 / float64(total)
		}
		fmt.Fprintf(w, "  %-9s %5d  %5.1f%%  %s\n", category, n, pct, strings.Repeat("#", int(pct/5)))
	}
}

func writeSyncRun(w io.Writer, run models.SyncRun) {
	fmt.Fprintf(w, "Sync %s: %s\n", run.RunID, run.State)
	if run.Since != nil {
		fmt.Fprintf(w, "  since:    %s\n", run.Since.Format("2006-01-02T15:04:05Z07:00"))
	}
	fmt.Fprintf(w, "  fetched:  %d\n", run.Fetched)
	fmt.Fprintf(w, "  inserted: %d\n", run.Inserted)
	fmt.Fprintf(w, "  stored:   %d\n", run.Total)
	fmt.Fprintf(w, "  duration: %s\n", run.Duration())
	if run.Error != "" {
		fmt.Fprintf(w, "  error:    %s\n", run.Error)
	}
}

func writeAuthors(w io.Writer, authors []*models.AuthorStats) {
	if len(authors) == 0 {
		return
	}
	fmt.Fprintln(w, "Top contributors:")
	for _, a := range authors {
		fmt.Fprintf(w, "  %-24s %d\n", a.Name, a.CommitCount)
	}
}
