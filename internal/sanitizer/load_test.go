package sanitizer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const customRules = `profiles:
  - name: shell
    description: Swap Cloud Shell for a local PowerShell
    rules:
      - name: cloud-shell
        kind: text
        pattern: Cloud Shell
        replace: PowerShell on the lab VM
    verify:
      - name: Cloud Shell
        pattern: Cloud Shell
  - name: safe
    source: backup
    rules:
      - name: portal
        pattern: Azure Portal
        replace: lab VM
`

func TestParseRuleFile(t *testing.T) {
	profiles, err := ParseRuleFile([]byte(customRules))
	require.NoError(t, err)
	require.Len(t, profiles, 2)

	shell := profiles[0]
	assert.Equal(t, "shell", shell.Name)
	assert.Equal(t, SourceWorking, shell.Source)
	assert.Equal(t, "{ step: 1, action: 'Open PowerShell on the lab VM' }",
		shell.Transform("{ step: 1, action: 'Open cloud shell' }", nil))
	assert.Equal(t, TextRule, profiles[1].Rules[0].Kind)
}

func TestParseRuleFileErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid yaml", "profiles: ["},
		{"missing name", "profiles:\n  - rules: []\n"},
		{"unknown source", "profiles:\n  - name: x\n    source: cache\n"},
		{"bad pattern", "profiles:\n  - name: x\n    rules:\n      - name: r\n        pattern: '('\n"},
		{"empty probe", "profiles:\n  - name: x\n    verify:\n      - name: p\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRuleFile([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoadProfiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(customRules), 0644))

	profiles, err := LoadProfiles(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"aggressive", "final", "mark", "safe", "shell"}, profiles.Names())

	safe, err := profiles.Get("safe")
	require.NoError(t, err)
	assert.Len(t, safe.Rules, 1, "rules file replaces the built-in")

	_, err = profiles.Get("nope")
	assert.Error(t, err)
}

func TestLoadProfilesWithoutFile(t *testing.T) {
	profiles, err := LoadProfiles("")
	require.NoError(t, err)
	assert.Equal(t, []string{"aggressive", "final", "mark", "safe"}, profiles.Names())

	_, err = LoadProfiles(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestMarshalProfiles(t *testing.T) {
	data, err := Builtin().Marshal("final")
	require.NoError(t, err)

	parsed, err := ParseRuleFile(data)
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	assert.Equal(t, "final", parsed[0].Name)
	assert.Equal(t, SourceBackup, parsed[0].Source)

	final, _ := Builtin().Get("final")
	assert.Equal(t, final.Transform(labFixture, nil), parsed[0].Transform(labFixture, nil))

	_, err = Builtin().Marshal("nope")
	assert.Error(t, err)
}
