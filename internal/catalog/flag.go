package catalog

import (
	"regexp"
	"strings"
)

// DefaultTitleMarker is the title suffix of courses sold with a cloud slice.
const DefaultTitleMarker = "[Cloud Slice Provided]"

// FlagResult reports what FlagPortalCourses changed.
type FlagResult struct {
	Content string
	Flagged int
	Already int
}

func portalCourseRegex(marker string) *regexp.Regexp {
	return regexp.MustCompile(
		`(\{[^}]*title:\s*['"][^'"\n]*` + regexp.QuoteMeta(marker) + `[^'"\n]*['"][^}]*)` +
			`(level:\s*['"](?:Beginner|Intermediate|Advanced)['"],?\s*)` +
			`(\})`)
}

// FlagPortalCourses inserts `<flagField>: true,` into every registry course
// whose title carries marker and whose last field is its level. Courses that
// already mention the flag are counted but left alone.
func FlagPortalCourses(registry, marker, flagField string) FlagResult {
	if marker == "" {
		marker = DefaultTitleMarker
	}
	if flagField == "" {
		flagField = "requiresAzurePortal"
	}

	re := portalCourseRegex(marker)
	res := FlagResult{}

	var b strings.Builder
	last := 0
	for _, m := range re.FindAllStringSubmatchIndex(registry, -1) {
		before := registry[m[2]:m[3]]
		level := registry[m[4]:m[5]]

		b.WriteString(registry[last:m[0]])
		last = m[1]

		if strings.Contains(before, flagField) {
			res.Already++
			b.WriteString(registry[m[0]:m[1]])
			continue
		}

		level = strings.TrimRight(level, " \t\r\n")
		if !strings.HasSuffix(level, ",") {
			level += ","
		}
		b.WriteString(before)
		b.WriteString(level)
		b.WriteString("\n        ")
		b.WriteString(flagField)
		b.WriteString(": true,\n    }")
		res.Flagged++
	}
	b.WriteString(registry[last:])

	res.Content = b.String()
	return res
}
