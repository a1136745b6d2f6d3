package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"labscrub/internal/models"

	"github.com/jszwec/csvutil"
	log "github.com/sirupsen/logrus"
)

type Parser struct {
	filename string
}

func NewParser(filename string) *Parser {
	return &Parser{filename: filename}
}

// ParseOverrides decodes classification overrides. Header names are matched
// case-insensitively; rows without a course id are skipped.
func (p *Parser) ParseOverrides() ([]models.Override, error) {
	file, err := os.Open(p.filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}
	for i, h := range header {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	decoder, err := csvutil.NewDecoder(reader, header...)
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV decoder: %w", err)
	}
	decoder.Map = func(field, column string, v any) string {
		if _, ok := v.(bool); ok {
			return normalizeBool(field)
		}
		return field
	}

	var records []models.Override
	if err := decoder.Decode(&records); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode CSV: %w", err)
	}

	overrides := records[:0]
	for i, r := range records {
		r.CourseID = strings.TrimSpace(r.CourseID)
		if r.CourseID == "" {
			log.Warnf("Skipping override row %d: empty course id", i+1)
			continue
		}
		overrides = append(overrides, r)
	}
	return overrides, nil
}

// normalizeBool accepts the yes/no spellings people type into spreadsheets.
func normalizeBool(field string) string {
	switch strings.ToLower(strings.TrimSpace(field)) {
	case "yes", "y", "x":
		return "true"
	case "no", "n", "":
		return "false"
	}
	return strings.TrimSpace(field)
}

// WriteSummaries encodes the analysis rows with a header line.
func WriteSummaries(filename string, rows []models.CourseSummary) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	encoder := csvutil.NewEncoder(w)
	if len(rows) == 0 {
		err = encoder.EncodeHeader(models.CourseSummary{})
	} else {
		err = encoder.Encode(rows)
	}
	if err != nil {
		return fmt.Errorf("failed to encode CSV: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}
