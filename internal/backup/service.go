package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

type Service struct {
	suffix string
	now    func() time.Time
}

func NewService(suffix string) *Service {
	if suffix == "" {
		suffix = ".backup"
	}
	return &Service{suffix: suffix, now: time.Now}
}

// Path returns the co-located backup path of target.
func (s *Service) Path(target string) string {
	return target + s.suffix
}

func (s *Service) Exists(target string) bool {
	info, err := os.Stat(s.Path(target))
	return err == nil && !info.IsDir()
}

// Create copies target to its backup path. An existing backup is kept unless
// overwrite is set; created reports whether a file was written.
func (s *Service) Create(target string, overwrite bool) (path string, created bool, err error) {
	path = s.Path(target)
	if !overwrite && s.Exists(target) {
		log.Infof("Keeping existing backup %s", path)
		return path, false, nil
	}

	data, err := os.ReadFile(target)
	if err != nil {
		return path, false, fmt.Errorf("failed to read %s: %w", target, err)
	}
	if err := writeFileLike(path, target, data); err != nil {
		return path, false, fmt.Errorf("failed to create backup file: %w", err)
	}
	return path, true, nil
}

// Load returns the content of target's backup.
func (s *Service) Load(target string) (string, error) {
	data, err := os.ReadFile(s.Path(target))
	if err != nil {
		return "", fmt.Errorf("failed to open backup file: %w", err)
	}
	return string(data), nil
}

// Restore overwrites target with its backup.
func (s *Service) Restore(target string) error {
	path := s.Path(target)
	if err := s.ValidateBackupFile(path); err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to open backup file: %w", err)
	}
	if err := writeFileLike(target, path, data); err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}
	return nil
}

// Snapshot writes a timestamped copy of target into dir, leaving the
// co-located backup alone.
func (s *Service) Snapshot(target, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", target, err)
	}

	base := filepath.Base(target)
	timestamp := s.now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s%s", strings.TrimSuffix(base, filepath.Ext(base)), timestamp, s.suffix)
	path := filepath.Join(outputDir, filename)

	if err := writeFileLike(path, target, data); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to create backup file: %w", err)
	}
	return path, nil
}

func (s *Service) ValidateBackupFile(filename string) error {
	info, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("cannot open backup file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("backup path %s is a directory", filename)
	}
	if info.Size() == 0 {
		return fmt.Errorf("backup file is empty")
	}
	return nil
}

// writeFileLike writes data to path with the permissions of ref, falling back
// to 0644.
func writeFileLike(path, ref string, data []byte) error {
	mode := os.FileMode(0644)
	if info, err := os.Stat(ref); err == nil {
		mode = info.Mode().Perm()
	}
	return os.WriteFile(path, data, mode)
}
