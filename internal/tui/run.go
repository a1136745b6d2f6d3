package tui

import (
	"fmt"
	"strings"

	"labscrub/internal/backup"
	"labscrub/internal/catalog"
	"labscrub/internal/config"
	"labscrub/internal/pass"
	"labscrub/internal/sanitizer"
)

// TaskResult is what the result screen shows.
type TaskResult struct {
	Lines    []string
	Warnings []string
	Err      error
}

func runTask(kind TaskKind, cfg config.Config, profile *sanitizer.Profile, dryRun bool) TaskResult {
	switch kind {
	case AnalyzeTask:
		return runAnalyze(cfg)
	case FlagTask:
		return runFlag(cfg, dryRun)
	case CleanTask:
		return runClean(cfg, profile, dryRun)
	case VerifyTask:
		return runVerify(cfg, profile)
	case RestoreTask:
		return runRestore(cfg)
	}
	return TaskResult{Err: fmt.Errorf("unknown task %d", kind)}
}

func runAnalyze(cfg config.Config) TaskResult {
	res, err := pass.Analyze(pass.AnalyzeOptions{
		RegistryPath:     cfg.RegistryPath,
		InstructionsPath: cfg.InstructionsPath,
		ReportPath:       cfg.ReportPath,
		FlagField:        cfg.FlagField,
		Window:           cfg.Window,
	})
	if err != nil {
		return TaskResult{Err: err}
	}

	r := res.Report
	out := TaskResult{Lines: []string{
		"📊 Analysis:",
		fmt.Sprintf("   Portal courses: %d", len(r.Flagged)),
		fmt.Sprintf("   Courses without portal: %d", len(r.Unflagged)),
		fmt.Sprintf("   Courses with instructions: %d", len(r.WithInstructions)),
		fmt.Sprintf("   Courses needing cleanup: %d", len(r.UnflaggedWithInstructions)),
		fmt.Sprintf("   Report: %s", cfg.ReportPath),
	}}
	if len(res.Keywords) > 0 {
		out.Lines = append(out.Lines, "", "🔎 Portal references:")
		for _, k := range res.Keywords {
			out.Lines = append(out.Lines, fmt.Sprintf("   %s: %d", k.Keyword, k.Count))
		}
	}
	return out
}

func runFlag(cfg config.Config, dryRun bool) TaskResult {
	res, err := pass.Flag(cfg.RegistryPath, catalog.DefaultTitleMarker, cfg.FlagField, dryRun)
	if err != nil {
		return TaskResult{Err: err}
	}
	out := TaskResult{Lines: []string{
		fmt.Sprintf("🏷️  Flagged %d cloud slice courses (%d already flagged)", res.Flagged, res.Already),
	}}
	if dryRun {
		added, removed := diffStat(res.Diff)
		out.Lines = append(out.Lines, fmt.Sprintf("   Dry run: %d lines added, %d removed", added, removed))
	}
	return out
}

func runClean(cfg config.Config, profile *sanitizer.Profile, dryRun bool) TaskResult {
	report, err := catalog.LoadReport(cfg.ReportPath)
	if err != nil {
		return TaskResult{Err: fmt.Errorf("%w (run Analyze first)", err)}
	}

	svc := pass.NewService(backup.NewService(cfg.BackupSuffix))
	res, err := svc.Clean(pass.CleanOptions{
		InstructionsPath: cfg.InstructionsPath,
		Profile:          profile,
		Report:           report,
		DryRun:           dryRun,
	})
	if err != nil {
		return TaskResult{Err: err}
	}

	out := TaskResult{Lines: []string{
		fmt.Sprintf("🧹 %s pass", strings.ToUpper(res.Profile)),
		fmt.Sprintf("   Source: %s", res.SourcePath),
		fmt.Sprintf("   Courses cleaned: %d", len(res.Sanitize.Updated)),
	}}
	if res.BackupCreated {
		out.Lines = append(out.Lines, fmt.Sprintf("   Backup: %s", res.BackupPath))
	}
	if dryRun {
		added, removed := diffStat(res.Diff)
		out.Lines = append(out.Lines, fmt.Sprintf("   Dry run: %d lines added, %d removed", added, removed))
	}
	out.Lines = append(out.Lines, probeLines(res.Probes)...)
	out.Lines = append(out.Lines, countLines("Remaining portal references", res.Remaining)...)
	for _, id := range res.FlaggedTouched {
		out.Warnings = append(out.Warnings, fmt.Sprintf("Portal course %s changed", id))
	}
	return out
}

func runVerify(cfg config.Config, profile *sanitizer.Profile) TaskResult {
	report, err := catalog.LoadReport(cfg.ReportPath)
	if err != nil {
		return TaskResult{Err: fmt.Errorf("%w (run Analyze first)", err)}
	}
	res, err := pass.Verify(cfg.InstructionsPath, report, profile)
	if err != nil {
		return TaskResult{Err: err}
	}

	out := TaskResult{Lines: probeLines(res.Probes)}
	out.Lines = append(out.Lines, countLines("Courses without portal access", res.Exempt)...)
	out.Lines = append(out.Lines, countLines("Portal courses (kept)", res.Flagged)...)
	for _, id := range res.Dirty {
		out.Warnings = append(out.Warnings, fmt.Sprintf("%s still mentions the portal", id))
	}
	return out
}

func runRestore(cfg config.Config) TaskResult {
	backups := backup.NewService(cfg.BackupSuffix)
	source := backups.Path(cfg.InstructionsPath)
	if err := backups.ValidateBackupFile(source); err != nil {
		return TaskResult{Err: fmt.Errorf("backup file validation failed: %w", err)}
	}
	if err := backups.Restore(cfg.InstructionsPath); err != nil {
		return TaskResult{Err: err}
	}
	return TaskResult{Lines: []string{fmt.Sprintf("🔄 Restored %s from %s", cfg.InstructionsPath, source)}}
}

func probeLines(probes []sanitizer.ProbeCount) []string {
	if len(probes) == 0 {
		return nil
	}
	lines := []string{"", "🔎 Verification:"}
	for _, p := range probes {
		lines = append(lines, fmt.Sprintf("   %s: %d", p.Name, p.Count))
	}
	return lines
}

func countLines(title string, counts []pass.CourseCount) []string {
	if len(counts) == 0 {
		return nil
	}
	lines := []string{"", title + ":"}
	for _, c := range counts {
		lines = append(lines, fmt.Sprintf("   %s: %d", c.CourseID, c.Count))
	}
	return lines
}

// diffStat counts added and removed lines of a unified diff.
func diffStat(diff string) (added, removed int) {
	for _, line := range strings.Split(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			added++
		case strings.HasPrefix(line, "-"):
			removed++
		}
	}
	return added, removed
}
