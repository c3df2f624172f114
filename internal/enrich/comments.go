package enrich

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"incident-pipeline/internal/incident"
	"incident-pipeline/internal/service"
)

const maxResponseSize = 10 << 20

// Comment is one entry returned by the comments lookup.
type Comment struct {
	Email *string
}

// CommentsClient fetches the comments attached to an incident from
// {BaseURL}/comments?postId={id}.
type CommentsClient struct {
	BaseURL string
	client  *http.Client
}

// NewCommentsClient creates a new comments client. timeout bounds each
// request; zero means no timeout.
func NewCommentsClient(baseURL string, timeout time.Duration) *CommentsClient {
	return &CommentsClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Comments returns the comments for the incident with the given id.
// A non-200 answer is reported as a *service.UpstreamError.
func (c *CommentsClient) Comments(ctx context.Context, postID int) ([]Comment, error) {
	url := fmt.Sprintf("%s/comments?postId=%d", c.BaseURL, postID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
		return nil, &service.UpstreamError{URL: url, StatusCode: resp.StatusCode}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	elems, err := incident.SplitArray(string(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode comments: %w", err)
	}

	comments := make([]Comment, 0, len(elems))
	for i, e := range elems {
		f, err := incident.ParseFlat(e)
		if err != nil {
			return nil, fmt.Errorf("failed to decode comment %d: %w", i, err)
		}
		email, err := f.String("email")
		if err != nil {
			return nil, fmt.Errorf("failed to decode comment %d: %w", i, err)
		}
		comments = append(comments, Comment{Email: email})
	}
	return comments, nil
}

// EmailStats returns the number of comments and the number of distinct
// email addresses among them, compared case-insensitively. Missing or
// empty addresses are not counted as distinct addresses.
func EmailStats(comments []Comment) (count, unique int) {
	seen := make(map[string]struct{}, len(comments))
	for _, c := range comments {
		if c.Email == nil || *c.Email == "" {
			continue
		}
		seen[strings.ToLower(*c.Email)] = struct{}{}
	}
	return len(comments), len(seen)
}
