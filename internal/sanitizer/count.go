package sanitizer

import "regexp"

// CountPhrase returns the number of case-insensitive occurrences of a literal
// phrase.
func CountPhrase(content, phrase string) int {
	if phrase == "" {
		return 0
	}
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(phrase))
	return len(re.FindAllStringIndex(content, -1))
}

// CountPattern is CountPhrase for a regular expression.
func CountPattern(content, pattern string) (int, error) {
	re, err := regexp.Compile(`(?i)` + pattern)
	if err != nil {
		return 0, err
	}
	return len(re.FindAllStringIndex(content, -1)), nil
}
