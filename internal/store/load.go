package store

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"incident-pipeline/internal/incident"
)

const maxLineSize = 1 << 20

// LoadReport summarizes what Open read from its sources.
type LoadReport struct {
	Files   int // sources that existed
	Loaded  int // records read, including ones later replaced
	Skipped int // lines that did not parse or had no id
	MaxID   int
}

func (s *Store) load(paths []string) (LoadReport, error) {
	var report LoadReport
	for _, p := range paths {
		found, err := s.loadFile(p, &report)
		if err != nil {
			return report, err
		}
		if found {
			report.Files++
		}
	}
	return report, nil
}

func (s *Store) loadFile(path string, report *LoadReport) (bool, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug("incident source missing, skipping", "path", path)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		rec, err := incident.Parse(line)
		if err != nil || rec.ID == nil {
			report.Skipped++
			s.logger.Warn("skipping unreadable incident line", "path", path, "line", lineNo, "error", err)
			continue
		}
		s.put(rec)
		report.Loaded++
		if id := *rec.ID; id > report.MaxID {
			report.MaxID = id
		}
	}
	if err := scanner.Err(); err != nil {
		return true, fmt.Errorf("failed to read %s: %w", path, err)
	}

	s.logger.Info("loaded incident source", "path", path, "lines", lineNo)
	return true, nil
}
