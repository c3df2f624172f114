// Package importer fetches incident reports from the upstream service and
// writes them as a fresh batch file, one serialized record per line.
package importer

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"incident-pipeline/internal/contextutil"
	"incident-pipeline/internal/incident"
	"incident-pipeline/internal/service"
)

const (
	DefaultLimit = 100

	maxResponseSize = 50 << 20
)

// Report summarizes one import.
type Report struct {
	Imported int `json:"imported"`
	Errors   int `json:"errors"`
}

// Importer pulls posts from {BaseURL}/posts and turns them into records.
type Importer struct {
	BaseURL string
	client  *http.Client
	now     func() time.Time
}

// New creates a new Importer. timeout bounds the upstream request; zero
// means no timeout.
func New(baseURL string, timeout time.Duration) *Importer {
	return &Importer{
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		now:     time.Now,
	}
}

// Import fetches up to limit posts and writes them to outputPath, replacing
// any previous content. Elements that cannot be decoded are counted in
// Report.Errors and skipped. A non-200 answer or an unwritable output is
// returned as an error.
func (im *Importer) Import(ctx context.Context, limit int, outputPath string) (*Report, error) {
	if limit < 1 {
		limit = DefaultLimit
	}
	logger := contextutil.LoggerFromContext(ctx)

	elems, err := im.fetch(ctx, limit)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(outputPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open output: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	w := bufio.NewWriter(f)

	importedAt := incident.Timestamp(im.now())
	report := &Report{}
	for i, elem := range elems {
		rec, err := toRecord(elem)
		if err != nil {
			report.Errors++
			logger.WarnContext(ctx, "skipping post", "index", i, "error", err)
			continue
		}
		rec.ImportedAt = incident.Ptr(importedAt)
		if _, err := w.Write(append(rec.Serialize(), '\n')); err != nil {
			return nil, fmt.Errorf("failed to write record: %w", err)
		}
		report.Imported++
	}
	if err := w.Flush(); err != nil {
		return nil, fmt.Errorf("failed to flush output: %w", err)
	}

	logger.InfoContext(ctx, "import finished",
		"imported", report.Imported, "errors", report.Errors, "output", outputPath)
	return report, nil
}

func (im *Importer) fetch(ctx context.Context, limit int) ([]string, error) {
	url := fmt.Sprintf("%s/posts?_limit=%d", im.BaseURL, limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := im.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, &service.UpstreamError{URL: url, StatusCode: resp.StatusCode}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	elems, err := incident.SplitArray(string(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}
	return elems, nil
}

// toRecord keeps only the id, userId, title and body of a post.
func toRecord(elem string) (incident.Record, error) {
	f, err := incident.ParseFlat(elem)
	if err != nil {
		return incident.Record{}, err
	}

	var rec incident.Record
	if rec.ID, err = f.Int(incident.FieldID); err != nil {
		return incident.Record{}, err
	}
	if rec.ID == nil {
		return incident.Record{}, fmt.Errorf("post has no id")
	}
	if rec.UserID, err = f.Int(incident.FieldUserID); err != nil {
		return incident.Record{}, err
	}
	if rec.Title, err = f.String(incident.FieldTitle); err != nil {
		return incident.Record{}, err
	}
	if rec.Body, err = f.String(incident.FieldBody); err != nil {
		return incident.Record{}, err
	}
	return rec, nil
}
