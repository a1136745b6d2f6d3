package sanitizer

import (
	"fmt"
	"os"
	"sort"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// RuleFile is the YAML document accepted by --rules. Profiles with the name
// of a built-in replace it; other names are added.
type RuleFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// Profiles holds compiled profiles by name.
type Profiles map[string]*Profile

// Builtin returns freshly compiled copies of the built-in profiles.
func Builtin() Profiles {
	set := Profiles{}
	for _, p := range builtinProfiles() {
		p := p
		if err := p.Compile(); err != nil {
			panic(fmt.Sprintf("built-in profile: %v", err))
		}
		set[p.Name] = &p
	}
	return set
}

// LoadProfiles returns the built-in profiles merged with the profiles of the
// YAML file at path. An empty path yields the built-ins.
func LoadProfiles(path string) (Profiles, error) {
	set := Builtin()
	if path == "" {
		return set, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	extra, err := ParseRuleFile(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}
	for _, p := range extra {
		if _, ok := set[p.Name]; ok {
			log.Infof("Rules file %s overrides built-in profile %q", path, p.Name)
		}
		set[p.Name] = p
	}
	return set, nil
}

// ParseRuleFile decodes and compiles the profiles of a rules document.
func ParseRuleFile(data []byte) ([]*Profile, error) {
	var file RuleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	profiles := make([]*Profile, 0, len(file.Profiles))
	for i := range file.Profiles {
		p := &file.Profiles[i]
		if p.Name == "" {
			return nil, fmt.Errorf("profile %d has no name", i+1)
		}
		if err := p.Compile(); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// Get returns the named profile.
func (s Profiles) Get(name string) (*Profile, error) {
	p, ok := s[name]
	if !ok {
		return nil, fmt.Errorf("unknown profile %q (available: %v)", name, s.Names())
	}
	return p, nil
}

// Names lists the profile names in sorted order.
func (s Profiles) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Marshal renders profiles as a rules document, suitable as a starting point
// for a custom rules file.
func (s Profiles) Marshal(names ...string) ([]byte, error) {
	if len(names) == 0 {
		names = s.Names()
	}
	var file RuleFile
	for _, name := range names {
		p, err := s.Get(name)
		if err != nil {
			return nil, err
		}
		file.Profiles = append(file.Profiles, *p)
	}
	return yaml.Marshal(file)
}
