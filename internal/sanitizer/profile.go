package sanitizer

import (
	"fmt"
	"sort"
)

// Source selects the file a pass reads before transforming.
type Source string

const (
	SourceWorking      Source = "working"
	SourceBackup       Source = "backup"
	SourcePreferBackup Source = "prefer-backup"
)

// Probe is a case-insensitive pattern counted after a pass for reporting.
type Probe struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
}

// Profile is an ordered set of rules applied to each exempt course block.
type Profile struct {
	Name         string  `yaml:"name"`
	Description  string  `yaml:"description,omitempty"`
	Source       Source  `yaml:"source"`
	CreateBackup bool    `yaml:"createBackup,omitempty"`
	Marker       string  `yaml:"marker,omitempty"`
	Rules        []Rule  `yaml:"rules"`
	Probes       []Probe `yaml:"verify,omitempty"`
}

// Result describes the outcome of applying a profile to a whole file.
type Result struct {
	Content string
	Updated []string
	Missing []string
	Hits    map[string]int
}

// Compile validates every rule of the profile.
func (p *Profile) Compile() error {
	switch p.Source {
	case "":
		p.Source = SourceWorking
	case SourceWorking, SourceBackup, SourcePreferBackup:
	default:
		return fmt.Errorf("profile %q: unknown source %q", p.Name, p.Source)
	}
	for i := range p.Rules {
		if err := p.Rules[i].Compile(); err != nil {
			return fmt.Errorf("profile %q: %w", p.Name, err)
		}
	}
	for _, probe := range p.Probes {
		if probe.Pattern == "" {
			return fmt.Errorf("profile %q: probe %q: empty pattern", p.Name, probe.Name)
		}
		if _, err := CountPattern("", probe.Pattern); err != nil {
			return fmt.Errorf("profile %q: probe %q: %w", p.Name, probe.Name, err)
		}
	}
	return nil
}

// Transform runs the marker insertion and then every rule, in order, over a
// single block. hits accumulates per-rule match counts when non-nil.
func (p *Profile) Transform(block string, hits map[string]int) string {
	if p.Marker != "" {
		block = InsertMarker(block, p.Marker)
	}
	for i := range p.Rules {
		var n int
		block, n = p.Rules[i].Apply(block)
		if hits != nil && n > 0 {
			hits[p.Rules[i].label()] += n
		}
	}
	return block
}

// Apply transforms the block of every exempt course in content. Courses with
// no block are listed in Missing; nothing else in content is touched.
func (p *Profile) Apply(content string, exempt []string) Result {
	ids := append([]string(nil), exempt...)
	sort.Strings(ids)

	res := Result{Hits: map[string]int{}}
	for _, id := range ids {
		block, ok := ExtractBlock(content, id)
		if !ok {
			res.Missing = append(res.Missing, id)
			continue
		}
		cleaned := p.Transform(block.Text, res.Hits)
		if cleaned == block.Text {
			continue
		}
		content = block.Splice(content, cleaned)
		res.Updated = append(res.Updated, id)
	}
	res.Content = content
	return res
}

// ProbeCount is the number of matches of one probe.
type ProbeCount struct {
	Name  string
	Count int
}

// Verify counts every probe of the profile in content.
func (p *Profile) Verify(content string) []ProbeCount {
	counts := make([]ProbeCount, 0, len(p.Probes))
	for _, probe := range p.Probes {
		n, _ := CountPattern(content, probe.Pattern)
		counts = append(counts, ProbeCount{Name: probe.Name, Count: n})
	}
	return counts
}
