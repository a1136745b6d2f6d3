package sanitizer

import (
	"fmt"
	"regexp"

	log "github.com/sirupsen/logrus"
)

type RuleKind string

const (
	// StepRule removes whole `{ step: N, action: '...' }` entries whose action
	// text matches the pattern.
	StepRule RuleKind = "step"
	// TextRule rewrites every match of the pattern with Replace.
	TextRule RuleKind = "text"
	// CleanupRule repairs separators left behind by earlier removals.
	CleanupRule RuleKind = "cleanup"
)

// Rule is one entry of a profile. Patterns use RE2 syntax and match
// case-insensitively unless CaseSensitive is set.
type Rule struct {
	Name          string   `yaml:"name"`
	Kind          RuleKind `yaml:"kind"`
	Pattern       string   `yaml:"pattern,omitempty"`
	Replace       string   `yaml:"replace,omitempty"`
	CaseSensitive bool     `yaml:"caseSensitive,omitempty"`
	DotAll        bool     `yaml:"dotAll,omitempty"`

	re *regexp.Regexp
}

var (
	doubleCommaRegex  = regexp.MustCompile(`,\s*,`)
	commaBracketRegex = regexp.MustCompile(`,\s*\]`)
	commaBraceRegex   = regexp.MustCompile(`,\s*\}`)
)

// CleanupSyntax collapses doubled separators and drops separators directly
// before a closing bracket or brace. It does not validate the result.
func CleanupSyntax(text string) string {
	text = doubleCommaRegex.ReplaceAllLiteralString(text, ",")
	text = commaBracketRegex.ReplaceAllLiteralString(text, "]")
	text = commaBraceRegex.ReplaceAllLiteralString(text, "}")
	return text
}

// stepExpr wraps an action phrase into an expression matching the entire
// step object, its trailing comma and the rest of its line.
func stepExpr(phrase string) string {
	return `[ \t]*\{\s*step:\s*\d+,\s*action:\s*` +
		`(?:'[^']*?(?:` + phrase + `)[^']*'|"[^"]*?(?:` + phrase + `)[^"]*")` +
		`[^{}]*\},?[ \t]*\n?`
}

func (r *Rule) label() string {
	if r.Name != "" {
		return r.Name
	}
	return string(r.Kind) + ":" + r.Pattern
}

// Compile validates the rule and prepares its expression.
func (r *Rule) Compile() error {
	switch r.Kind {
	case CleanupRule:
		return nil
	case StepRule, TextRule:
	case "":
		r.Kind = TextRule
	default:
		return fmt.Errorf("rule %q: unknown kind %q", r.Name, r.Kind)
	}
	if r.Pattern == "" {
		return fmt.Errorf("rule %q: empty pattern", r.Name)
	}

	expr := r.Pattern
	if r.Kind == StepRule {
		expr = stepExpr(r.Pattern)
	}
	flags := ""
	if !r.CaseSensitive {
		flags += "i"
	}
	if r.DotAll {
		flags += "s"
	}
	if flags != "" {
		expr = "(?" + flags + ")" + expr
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return fmt.Errorf("rule %q: %w", r.Name, err)
	}
	r.re = re
	return nil
}

// Apply runs the rule over text and reports how many matches it rewrote. A
// rule that was never compiled is compiled here; if that fails the error is
// logged and text is returned unchanged.
func (r *Rule) Apply(text string) (string, int) {
	if r.Kind == CleanupRule {
		out := CleanupSyntax(text)
		if out == text {
			return text, 0
		}
		return out, 1
	}
	if r.re == nil {
		if err := r.Compile(); err != nil {
			log.Errorf("Skipping invalid rule: %v", err)
			return text, 0
		}
	}

	n := len(r.re.FindAllStringIndex(text, -1))
	if n == 0 {
		return text, 0
	}
	return r.re.ReplaceAllString(text, r.Replace), n
}
