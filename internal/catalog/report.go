package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"labscrub/internal/models"
)

// SaveReport writes the report as indented JSON.
func SaveReport(path string, report models.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// LoadReport reads a report written by SaveReport.
func LoadReport(path string) (models.Report, error) {
	var report models.Report
	data, err := os.ReadFile(path)
	if err != nil {
		return report, fmt.Errorf("failed to read report: %w", err)
	}
	if err := json.Unmarshal(data, &report); err != nil {
		return report, fmt.Errorf("failed to decode report %s: %w", path, err)
	}
	return report, nil
}
