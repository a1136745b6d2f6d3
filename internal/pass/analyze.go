package pass

import (
	"fmt"
	"os"

	"labscrub/internal/catalog"
	"labscrub/internal/csv"
	"labscrub/internal/models"
	"labscrub/internal/sanitizer"

	log "github.com/sirupsen/logrus"
)

// AnalyzeOptions names the inputs and outputs of the analysis pass.
type AnalyzeOptions struct {
	RegistryPath     string
	InstructionsPath string
	ReportPath       string
	OverridesPath    string
	SummaryPath      string
	FlagField        string
	Window           int
}

type AnalyzeResult struct {
	Report         models.Report
	Keywords       []catalog.KeywordCount
	OverridesUsed  int
	SummaryWritten bool
}

// Analyze classifies the registry, finds the courses with instructions and
// saves the resulting worklist to ReportPath.
func Analyze(opts AnalyzeOptions) (*AnalyzeResult, error) {
	registry, err := os.ReadFile(opts.RegistryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}
	instructions, err := os.ReadFile(opts.InstructionsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read instructions: %w", err)
	}

	res := &AnalyzeResult{}
	classifyOpts := catalog.Options{FlagField: opts.FlagField, Window: opts.Window}
	if opts.OverridesPath != "" {
		overrides, err := csv.NewParser(opts.OverridesPath).ParseOverrides()
		if err != nil {
			return nil, fmt.Errorf("failed to parse overrides: %w", err)
		}
		classifyOpts.Overrides = overrides
		res.OverridesUsed = len(overrides)
		log.Infof("Applying %d classification overrides from %s", len(overrides), opts.OverridesPath)
	}

	c := catalog.Classify(string(registry), classifyOpts)
	log.Infof("Found %d courses with portal access (keep portal tasks)", len(c.Flagged))
	log.Infof("Found %d courses without portal access (remove portal tasks)", len(c.Unflagged))

	with := catalog.CoursesWithInstructions(string(instructions))
	log.Infof("Found %d courses with lab instructions", len(with))

	res.Report = catalog.BuildReport(c, with)
	res.Keywords = catalog.CountKeywords(string(instructions))

	if err := catalog.SaveReport(opts.ReportPath, res.Report); err != nil {
		return nil, err
	}
	log.Infof("Report saved to %s", opts.ReportPath)

	if opts.SummaryPath != "" {
		rows := catalog.Summarize(c, res.Report, string(instructions))
		if err := csv.WriteSummaries(opts.SummaryPath, rows); err != nil {
			return nil, err
		}
		res.SummaryWritten = true
		log.Infof("Course summary saved to %s", opts.SummaryPath)
	}

	return res, nil
}

// FlagResult is the outcome of the flag insertion pass.
type FlagResult struct {
	catalog.FlagResult
	Diff    string
	Written bool
}

// Flag inserts the portal flag into registry courses sold with a cloud slice.
func Flag(registryPath, marker, flagField string, dryRun bool) (*FlagResult, error) {
	data, err := os.ReadFile(registryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}

	res := &FlagResult{FlagResult: catalog.FlagPortalCourses(string(data), marker, flagField)}
	if dryRun {
		res.Diff, err = UnifiedDiff(registryPath, registryPath, string(data), res.Content)
		return res, err
	}
	if res.Flagged == 0 {
		return res, nil
	}
	if err := writeFile(registryPath, res.Content); err != nil {
		return nil, err
	}
	res.Written = true
	return res, nil
}

// VerifyResult reports remaining vendor phrases without changing anything.
type VerifyResult struct {
	Probes  []sanitizer.ProbeCount
	Exempt  []CourseCount
	Flagged []CourseCount
	Dirty   []string
}

// Verify counts the probes of profile over the instruction file, and the
// vendor phrase inside each exempt and flagged course block.
func Verify(instructionsPath string, report models.Report, profile *sanitizer.Profile) (*VerifyResult, error) {
	data, err := os.ReadFile(instructionsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read instructions: %w", err)
	}
	content := string(data)

	res := &VerifyResult{
		Exempt:  CountPerCourse(content, report.UnflaggedWithInstructions, VendorPhrase),
		Flagged: CountPerCourse(content, report.Flagged, VendorPhrase),
	}
	if profile != nil {
		res.Probes = profile.Verify(content)
	}
	for _, c := range res.Exempt {
		if c.Count > 0 {
			res.Dirty = append(res.Dirty, c.CourseID)
		}
	}
	return res, nil
}
