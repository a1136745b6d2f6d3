package catalog

import (
	"labscrub/internal/models"
	"labscrub/internal/sanitizer"
)

// PortalKeywords are the vendor phrases the analysis pass tallies.
var PortalKeywords = []string{
	"Azure Portal",
	"portal.azure.com",
	"Cloud Shell",
	"Create resource",
	"Resource Group",
	"App Service",
	"Virtual Network",
	"Storage Account",
}

// KeywordCount is the number of occurrences of one keyword.
type KeywordCount struct {
	Keyword string
	Count   int
}

// CountKeywords returns the non-zero counts of PortalKeywords in content, in
// keyword order.
func CountKeywords(content string) []KeywordCount {
	var counts []KeywordCount
	for _, k := range PortalKeywords {
		if n := sanitizer.CountPhrase(content, k); n > 0 {
			counts = append(counts, KeywordCount{Keyword: k, Count: n})
		}
	}
	return counts
}

// Summarize builds one row per registry course, counting Azure Portal
// mentions inside the course's instruction block when it has one.
func Summarize(c Classification, report models.Report, instructions string) []models.CourseSummary {
	with := map[string]bool{}
	for _, id := range report.WithInstructions {
		with[id] = true
	}

	ids := append(append([]string{}, c.Flagged...), c.Unflagged...)
	for _, id := range report.WithInstructions {
		if !contains(ids, id) {
			ids = append(ids, id)
		}
	}

	rows := make([]models.CourseSummary, 0, len(ids))
	for _, id := range ids {
		row := models.CourseSummary{
			CourseID:        id,
			RequiresPortal:  c.IsFlagged(id),
			HasInstructions: with[id],
		}
		if block, ok := sanitizer.ExtractBlock(instructions, id); ok {
			row.PortalMentions = sanitizer.CountPhrase(block.Text, "Azure Portal")
		}
		rows = append(rows, row)
	}
	return rows
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
