package catalog

import (
	"regexp"
	"sort"
	"strings"

	"labscrub/internal/models"
)

var (
	courseIDRegex    = regexp.MustCompile(`\bid:\s*['"]([^'"]+)['"]`)
	instructionRegex = regexp.MustCompile(`courseId:\s*['"]([^'"]+)['"]`)
)

// Options tunes the registry scan.
type Options struct {
	// FlagField is the registry field marking portal courses.
	FlagField string
	// Window bounds how far past an identifier the flag is looked for.
	Window int
	// Overrides force courses into one set after scanning.
	Overrides []models.Override
}

func (o Options) withDefaults() Options {
	if o.FlagField == "" {
		o.FlagField = "requiresAzurePortal"
	}
	if o.Window <= 0 {
		o.Window = 4000
	}
	return o
}

// Classification splits registry courses by the portal flag. Both slices are
// sorted and never nil.
type Classification struct {
	Flagged   []string
	Unflagged []string
}

// IsFlagged reports whether id is in the flagged set.
func (c Classification) IsFlagged(id string) bool {
	i := sort.SearchStrings(c.Flagged, id)
	return i < len(c.Flagged) && c.Flagged[i] == id
}

// Classify scans the registry for `id: '<x>'` entries and looks for
// `<flag>: true` after each one. The lookahead stops at the next closing
// brace, the next identifier, or Window bytes, whichever comes first, so a
// flag written far from its identifier is missed and the course counts as
// unflagged.
func Classify(registry string, opts Options) Classification {
	opts = opts.withDefaults()
	flagRegex := regexp.MustCompile(regexp.QuoteMeta(opts.FlagField) + `:\s*true\b`)

	flagged := map[string]bool{}
	matches := courseIDRegex.FindAllStringSubmatchIndex(registry, -1)
	for i, m := range matches {
		id := registry[m[2]:m[3]]
		if _, seen := flagged[id]; !seen {
			flagged[id] = false
		}

		end := len(registry)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		if limit := m[1] + opts.Window; limit < end {
			end = limit
		}
		window := registry[m[1]:end]
		if j := strings.IndexByte(window, '}'); j >= 0 {
			window = window[:j]
		}
		if flagRegex.MatchString(window) {
			flagged[id] = true
		}
	}

	for _, o := range opts.Overrides {
		id := strings.TrimSpace(o.CourseID)
		if id == "" {
			continue
		}
		flagged[id] = o.RequiresPortal
	}

	c := Classification{Flagged: []string{}, Unflagged: []string{}}
	for id, f := range flagged {
		if f {
			c.Flagged = append(c.Flagged, id)
		} else {
			c.Unflagged = append(c.Unflagged, id)
		}
	}
	sort.Strings(c.Flagged)
	sort.Strings(c.Unflagged)
	return c
}

// CoursesWithInstructions lists every `courseId: '<x>'` of the instruction
// registry, sorted and de-duplicated.
func CoursesWithInstructions(instructions string) []string {
	set := map[string]struct{}{}
	for _, m := range instructionRegex.FindAllStringSubmatch(instructions, -1) {
		set[m[1]] = struct{}{}
	}
	return sortedKeys(set)
}

// BuildReport combines the classification with the instruction registry into
// the cleanup worklist.
func BuildReport(c Classification, withInstructions []string) models.Report {
	unflagged := map[string]struct{}{}
	for _, id := range c.Unflagged {
		unflagged[id] = struct{}{}
	}
	worklist := map[string]struct{}{}
	for _, id := range withInstructions {
		if _, ok := unflagged[id]; ok {
			worklist[id] = struct{}{}
		}
	}

	with := append([]string{}, withInstructions...)
	sort.Strings(with)
	return models.Report{
		Flagged:                   append([]string{}, c.Flagged...),
		Unflagged:                 append([]string{}, c.Unflagged...),
		WithInstructions:          with,
		UnflaggedWithInstructions: sortedKeys(worklist),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
