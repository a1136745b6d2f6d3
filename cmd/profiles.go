package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var dumpRules bool

var profilesCmd = &cobra.Command{
	Use:   "profiles [name...]",
	Short: "List the cleanup profiles",
	Long: `List the built-in cleanup profiles and those loaded from --rules. With --dump
the profiles are printed as YAML, a starting point for a custom rules file.`,
	RunE: runProfiles,
}

func init() {
	profilesCmd.Flags().BoolVar(&dumpRules, "dump", false, "Print the profiles as YAML")
}

func runProfiles(cmd *cobra.Command, args []string) error {
	profiles, err := loadProfiles()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if dumpRules {
		data, err := profiles.Marshal(args...)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	}

	names := args
	if len(names) == 0 {
		names = profiles.Names()
	}
	for _, name := range names {
		p, err := profiles.Get(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%-12s %-14s %2d rules  %s\n", p.Name, p.Source, len(p.Rules), p.Description)
	}
	return nil
}
