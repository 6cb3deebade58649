package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pfrederiksen/smartplay-booking/internal/booking"
)

// Storage handles writing run reports
type Storage struct {
	dataDir string
}

// New creates a new Storage instance
func New(dataDir string) (*Storage, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{
		dataDir: dataDir,
	}, nil
}

// reportPath names a file after the run's start time so runs never collide.
func (s *Storage) reportPath(result *booking.Result, ext string) string {
	name := fmt.Sprintf("booking_%s.%s", result.StartTime.UTC().Format("20060102T150405Z"), ext)
	return filepath.Join(s.dataDir, name)
}

// SaveReport writes the result and returns the file path.
func (s *Storage) SaveReport(result *booking.Result) (string, error) {
	path := s.reportPath(result, "json")

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}

	return path, nil
}

// SaveCalendar writes an iCalendar entry next to the run's report.
func (s *Storage) SaveCalendar(result *booking.Result, ics string) (string, error) {
	path := s.reportPath(result, "ics")
	if err := os.WriteFile(path, []byte(ics), 0644); err != nil {
		return "", fmt.Errorf("writing calendar: %w", err)
	}
	return path, nil
}
