// Package classifier maps commit messages onto a fixed intent taxonomy.
package classifier

import (
	"strings"

	"github.com/Kamar-Folarin/commit-health/internal/models"
)

// Rule pairs a category with the keywords that select it
type Rule struct {
	Category models.Category
	Keywords []string
}

// Rules is walked in declared order and keywords within a rule in declared
// order; the first hit wins. Keywords overlap across rules ("dep" is in both
// Build and Chore), so reordering changes results.
var Rules = []Rule{
	{models.CategoryFeature, []string{"feat", "feature", "add", "new", "create", "implement"}},
	{models.CategoryBugfix, []string{"fix", "bug", "issue", "resolve", "correct", "patch", "hotfix"}},
	{models.CategoryRefactor, []string{"refactor", "clean", "style", "format", "optimize", "improve"}},
	{models.CategoryDocs, []string{"doc", "docs", "readme", "comment", "typo"}},
	{models.CategoryTest, []string{"test", "tests", "coverage", "benchmark"}},
	{models.CategoryBuild, []string{"build", "ci", "cd", "workflow", "dep", "dependency"}},
	{models.CategoryChore, []string{"chore", "misc", "update", "upgrade", "bump", "dep", "dependency"}},
}

// Classify returns exactly one category for a commit message
func Classify(message string) models.Category {
	msg := strings.ToLower(message)

	// conventional-commit fast path: "feat: ...", "docs: ..."
	if i := strings.Index(msg, ":"); i >= 0 {
		prefix := strings.TrimSpace(msg[:i])
		for _, rule := range Rules {
			if prefix == strings.ToLower(string(rule.Category)) {
				return rule.Category
			}
			for _, kw := range rule.Keywords {
				if prefix == kw {
					return rule.Category
				}
			}
		}
	}

	for _, rule := range Rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(msg, kw) {
				return rule.Category
			}
		}
	}

	return models.CategoryOther
}

// Categories returns every category in declared order, Other last
func Categories() []models.Category {
	out := make([]models.Category, 0, len(Rules)+1)
	for _, rule := range Rules {
		out = append(out, rule.Category)
	}
	return append(out, models.CategoryOther)
}

// Distribution counts commits per stored category. Every category is present
// in the result, with zero when no commit carries it.
func Distribution(commits []*models.Commit) map[models.Category]int {
	dist := make(map[models.Category]int, len(Rules)+1)
	for _, c := range Categories() {
		dist[c] = 0
	}
	for _, c := range commits {
		dist[c.Category]++
	}
	return dist
}
