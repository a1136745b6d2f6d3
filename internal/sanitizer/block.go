package sanitizer

import (
	"regexp"
	"strings"
)

var (
	// siblingKeyRegex finds the next course entry of the instruction registry.
	siblingKeyRegex = regexp.MustCompile(`\n[ \t]*['"][A-Za-z0-9_.-]+['"]:\s*\{`)

	// registryEndRegex finds the closing line of the registry literal.
	registryEndRegex = regexp.MustCompile(`\n\};`)

	markerSiteRegex = regexp.MustCompile(`^(['"][^'"]+['"]:\s*\{)(\s*)id:`)
)

// Block is the text region of one course entry inside the instruction
// registry. Start and End are byte offsets into the content it was taken from.
type Block struct {
	CourseID string
	Start    int
	End      int
	Text     string
}

// ExtractBlock locates the entry keyed by courseID. The region starts at
// `'<id>': {` and stops before the next sibling key line or the closing `};`
// of the registry, whichever comes first. Braces are not balanced: a nested
// quoted key at the start of a line ends the block early.
func ExtractBlock(content, courseID string) (Block, bool) {
	start := regexp.MustCompile(`['"]` + regexp.QuoteMeta(courseID) + `['"]:\s*\{`)
	loc := start.FindStringIndex(content)
	if loc == nil {
		return Block{}, false
	}

	end := len(content)
	rest := content[loc[1]:]
	if m := siblingKeyRegex.FindStringIndex(rest); m != nil {
		end = loc[1] + m[0]
	}
	if m := registryEndRegex.FindStringIndex(rest); m != nil && loc[1]+m[0] < end {
		end = loc[1] + m[0]
	}

	return Block{
		CourseID: courseID,
		Start:    loc[0],
		End:      end,
		Text:     content[loc[0]:end],
	}, true
}

// Splice returns content with the block region replaced by text.
func (b Block) Splice(content, text string) string {
	return content[:b.Start] + text + content[b.End:]
}

// InsertMarker adds a `// marker` line right after the opening brace of a
// block whose first field is `id:`. Blocks that already carry a comment there
// are returned unchanged.
func InsertMarker(block, marker string) string {
	m := markerSiteRegex.FindStringSubmatchIndex(block)
	if m == nil {
		return block
	}

	head := block[m[2]:m[3]]
	gap := block[m[4]:m[5]]
	indent := "        "
	if i := strings.LastIndex(gap, "\n"); i >= 0 {
		indent = gap[i+1:]
	}

	var b strings.Builder
	b.WriteString(head)
	b.WriteString("\n")
	b.WriteString(indent)
	b.WriteString("// ")
	b.WriteString(marker)
	b.WriteString("\n")
	b.WriteString(indent)
	b.WriteString("id:")
	b.WriteString(block[m[1]:])
	return b.String()
}
