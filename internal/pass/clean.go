package pass

import (
	"fmt"
	"os"

	"labscrub/internal/backup"
	"labscrub/internal/models"
	"labscrub/internal/sanitizer"

	"github.com/pmezard/go-difflib/difflib"
	log "github.com/sirupsen/logrus"
)

// VendorPhrase is the phrase counted per course after a cleanup pass.
const VendorPhrase = "Azure Portal"

type Service struct {
	backups *backup.Service
}

func NewService(backups *backup.Service) *Service {
	return &Service{backups: backups}
}

func (s *Service) Backups() *backup.Service {
	return s.backups
}

// CleanOptions configures one cleanup pass over the instruction registry.
type CleanOptions struct {
	InstructionsPath string
	Profile          *sanitizer.Profile
	Report           models.Report
	DryRun           bool
	OverwriteBackup  bool
}

// CourseCount is the number of vendor phrases left in one course block.
type CourseCount struct {
	CourseID string
	Count    int
}

// CleanResult is what a cleanup pass did and what it left behind.
type CleanResult struct {
	Profile        string
	SourcePath     string
	BackupPath     string
	BackupCreated  bool
	Sanitize       sanitizer.Result
	Probes         []sanitizer.ProbeCount
	Remaining      []CourseCount
	FlaggedTouched []string
	Diff           string
	Written        bool
}

// Clean runs a profile over the worklist of the report. The result is written
// back to the instruction file unless DryRun is set, in which case Diff holds
// a unified diff of the change.
func (s *Service) Clean(opts CleanOptions) (*CleanResult, error) {
	p := opts.Profile
	if p == nil {
		return nil, fmt.Errorf("no profile given")
	}
	res := &CleanResult{Profile: p.Name}

	if p.CreateBackup && !opts.DryRun {
		path, created, err := s.backups.Create(opts.InstructionsPath, opts.OverwriteBackup)
		if err != nil {
			return nil, err
		}
		res.BackupPath, res.BackupCreated = path, created
		if created {
			log.Infof("Backup created: %s", path)
		}
	}

	content, source, err := s.loadSource(opts.InstructionsPath, p.Source)
	if err != nil {
		return nil, err
	}
	res.SourcePath = source

	exempt := opts.Report.UnflaggedWithInstructions
	log.Infof("Processing %d courses without portal access, keeping %d portal courses",
		len(exempt), len(opts.Report.Flagged))

	out := p.Apply(content, exempt)
	res.Sanitize = out
	res.Probes = p.Verify(out.Content)
	res.Remaining = CountPerCourse(out.Content, exempt, VendorPhrase)
	res.FlaggedTouched = ChangedBlocks(content, out.Content, opts.Report.Flagged)

	for _, id := range out.Updated {
		log.Infof("Cleaned %s", id)
	}
	for _, id := range out.Missing {
		log.Debugf("No instruction block found for %s", id)
	}
	for _, id := range res.FlaggedTouched {
		log.Warnf("Portal course %s changed during cleanup", id)
	}

	if opts.DryRun {
		res.Diff, err = UnifiedDiff(source, opts.InstructionsPath, content, out.Content)
		if err != nil {
			return nil, err
		}
		return res, nil
	}

	if err := writeFile(opts.InstructionsPath, out.Content); err != nil {
		return nil, err
	}
	res.Written = true
	return res, nil
}

func (s *Service) loadSource(target string, source sanitizer.Source) (string, string, error) {
	switch source {
	case sanitizer.SourceBackup:
		content, err := s.backups.Load(target)
		if err != nil {
			return "", "", fmt.Errorf("this pass reads from the backup: %w", err)
		}
		log.Infof("Loaded backup %s", s.backups.Path(target))
		return content, s.backups.Path(target), nil

	case sanitizer.SourcePreferBackup:
		if s.backups.Exists(target) {
			content, err := s.backups.Load(target)
			if err != nil {
				return "", "", err
			}
			log.Infof("Restored from backup %s for a fresh start", s.backups.Path(target))
			return content, s.backups.Path(target), nil
		}
		log.Warnf("No backup found, working with current file %s", target)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		return "", "", fmt.Errorf("failed to read instructions: %w", err)
	}
	return string(data), target, nil
}

// CountPerCourse counts phrase inside the block of every course that has one.
func CountPerCourse(content string, ids []string, phrase string) []CourseCount {
	counts := make([]CourseCount, 0, len(ids))
	for _, id := range ids {
		block, ok := sanitizer.ExtractBlock(content, id)
		if !ok {
			continue
		}
		counts = append(counts, CourseCount{CourseID: id, Count: sanitizer.CountPhrase(block.Text, phrase)})
	}
	return counts
}

// ChangedBlocks lists the ids whose block text differs between before and
// after, including blocks that appeared or disappeared.
func ChangedBlocks(before, after string, ids []string) []string {
	var changed []string
	for _, id := range ids {
		a, okA := sanitizer.ExtractBlock(before, id)
		b, okB := sanitizer.ExtractBlock(after, id)
		if okA != okB || a.Text != b.Text {
			changed = append(changed, id)
		}
	}
	return changed
}

// UnifiedDiff renders the change between two versions of a file.
func UnifiedDiff(fromFile, toFile, before, after string) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: fromFile,
		ToFile:   toFile,
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("failed to render diff: %w", err)
	}
	return text, nil
}

func writeFile(path, content string) error {
	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
