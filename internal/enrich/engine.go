package enrich

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"incident-pipeline/internal/contextutil"
	"incident-pipeline/internal/incident"
	"incident-pipeline/internal/service"
	"incident-pipeline/internal/storage"
)

const (
	DefaultWorkers       = 6
	DefaultQueueCapacity = 10000
	DefaultDrainTimeout  = 10 * time.Minute

	maxLineSize = 1 << 20
)

// CommentLookup fetches the comments attached to one incident.
type CommentLookup interface {
	Comments(ctx context.Context, postID int) ([]Comment, error)
}

// RunLedger records finished runs.
type RunLedger interface {
	Insert(ctx context.Context, run *storage.RunRecord) error
}

// Config holds the settings of an enrichment run.
// Zero values for Workers, QueueCapacity and DrainTimeout select the defaults.
type Config struct {
	InputPath     string
	OutputPath    string
	Workers       int
	QueueCapacity int
	DrainTimeout  time.Duration
}

func (c *Config) applyDefaults() error {
	if c.InputPath == "" || c.OutputPath == "" {
		return fmt.Errorf("input and output paths are required")
	}
	if c.Workers == 0 {
		c.Workers = DefaultWorkers
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.QueueCapacity == 0 {
		c.QueueCapacity = DefaultQueueCapacity
	}
	if c.QueueCapacity < 1 {
		return fmt.Errorf("queue capacity must be at least 1, got %d", c.QueueCapacity)
	}
	if c.DrainTimeout == 0 {
		c.DrainTimeout = DefaultDrainTimeout
	}
	if c.DrainTimeout < 0 {
		return fmt.Errorf("drain timeout must be positive, got %s", c.DrainTimeout)
	}
	return nil
}

// Engine enriches a batch of incidents with comment statistics.
type Engine struct {
	cfg    Config
	lookup CommentLookup
	ledger RunLedger
	now    func() time.Time
}

// NewEngine creates a new enrichment engine. ledger may be nil.
func NewEngine(cfg Config, lookup CommentLookup, ledger RunLedger) (*Engine, error) {
	if err := cfg.applyDefaults(); err != nil {
		return nil, fmt.Errorf("invalid enrichment config: %w", err)
	}
	return &Engine{
		cfg:    cfg,
		lookup: lookup,
		ledger: ledger,
		now:    time.Now,
	}, nil
}

type counters struct {
	ok   atomic.Int64
	fail atomic.Int64
}

// Run reads every line of the input, enriches it on the worker pool and
// writes the results to the output, which is truncated first. Output order
// is not preserved. Run returns only after the writer has closed the output.
// Failing units are counted, never returned as errors; an error is returned
// only when the input or output cannot be opened.
func (e *Engine) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{
		RunID:     uuid.New().String(),
		Workers:   e.cfg.Workers,
		StartedAt: e.now(),
	}

	ctx = contextutil.WithLogger(ctx, contextutil.LoggerFromContext(ctx).With("run_id", summary.RunID))
	mainCtx := contextutil.WithWorker(ctx, "main")
	logger := contextutil.LoggerFromContext(mainCtx)

	in, err := os.Open(e.cfg.InputPath)
	if err != nil {
		logger.ErrorContext(mainCtx, "input missing", "path", e.cfg.InputPath, "error", err)
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer func() {
		_ = in.Close()
	}()

	out, err := os.OpenFile(e.cfg.OutputPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		logger.ErrorContext(mainCtx, "cannot open output", "path", e.cfg.OutputPath, "error", err)
		return nil, fmt.Errorf("failed to open output: %w", err)
	}

	logger.InfoContext(mainCtx, "enrichment started",
		"workers", e.cfg.Workers, "input", e.cfg.InputPath, "output", e.cfg.OutputPath)

	writer := newLineWriter(out, e.cfg.QueueCapacity)
	go writer.run(contextutil.WithWorker(ctx, "writer"))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The whole batch is queued before the drain timer starts.
	lines, readErr := readLines(in)
	if readErr != nil {
		summary.ReadError = readErr.Error()
		logger.ErrorContext(mainCtx, "input read aborted", "error", readErr, "read", len(lines))
	}
	dispatched := len(lines)
	summary.Dispatched = dispatched

	units := make(chan string, len(lines))
	for _, line := range lines {
		units <- line
	}
	close(units)

	var c counters
	var pool errgroup.Group
	for i := 1; i <= e.cfg.Workers; i++ {
		workerCtx := contextutil.WithWorker(runCtx, fmt.Sprintf("worker-%d", i))
		pool.Go(func() error {
			e.work(workerCtx, units, writer, &c)
			return nil
		})
	}

	poolDone := make(chan struct{})
	go func() {
		_ = pool.Wait()
		close(poolDone)
	}()

	timer := time.NewTimer(e.cfg.DrainTimeout)
	defer timer.Stop()
	select {
	case <-poolDone:
	case <-timer.C:
		summary.TimedOut = true
		cancel()
		<-poolDone
		completed := int(c.ok.Load() + c.fail.Load())
		logger.WarnContext(mainCtx, "pool not drained in time; cancelled outstanding units",
			"timeout", e.cfg.DrainTimeout, "dispatched", dispatched, "completed", completed,
			"lost", dispatched-completed)
	}

	writer.stop()

	summary.OK = int(c.ok.Load())
	summary.Fail = int(c.fail.Load())
	summary.Lost = summary.Dispatched - summary.OK - summary.Fail
	summary.Written = writer.written
	summary.WriteErrors = writer.failures
	summary.FinishedAt = e.now()

	logger.InfoContext(mainCtx, "enrichment finished",
		"ok", summary.OK, "fail", summary.Fail, "lost", summary.Lost,
		"written", summary.Written, "write_errors", summary.WriteErrors,
		"started", summary.StartedAt.UTC().Format(time.RFC3339Nano),
		"finished", summary.FinishedAt.UTC().Format(time.RFC3339Nano))

	if e.ledger != nil {
		// The caller's context may already be cancelled; the ledger row is still wanted.
		ledgerCtx, ledgerCancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		if err := e.ledger.Insert(ledgerCtx, summary.Record()); err != nil {
			logger.WarnContext(mainCtx, "failed to record run", "error", err)
		}
		ledgerCancel()
	}

	return summary, nil
}

// readLines returns every non-blank input line. A read error ends the scan;
// the lines read before it are still returned.
func readLines(in io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var lines []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}

func (e *Engine) work(ctx context.Context, units <-chan string, w *lineWriter, c *counters) {
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-units:
			// A unit received after cancellation is left unprocessed.
			if !ok || ctx.Err() != nil {
				return
			}
			e.enrichOne(ctx, line, w, c)
		}
	}
}

// enrichOne processes one unit. A unit abandoned because ctx was cancelled
// is neither a success nor a failure.
func (e *Engine) enrichOne(ctx context.Context, line string, w *lineWriter, c *counters) {
	logger := contextutil.LoggerFromContext(ctx)

	rec, err := incident.Parse(line)
	if err != nil {
		c.fail.Add(1)
		logger.ErrorContext(ctx, "skipping input line", "error", fmt.Errorf("%w: %v", service.ErrIngestion, err))
		return
	}
	if rec.ID == nil {
		c.fail.Add(1)
		logger.ErrorContext(ctx, "skipping input line", "error", fmt.Errorf("%w: incident id missing", service.ErrIngestion))
		return
	}
	id := *rec.ID

	comments, err := e.lookup.Comments(ctx, id)
	if err != nil {
		if ctx.Err() != nil {
			logger.WarnContext(ctx, "unit cancelled", "id", id)
			return
		}
		c.fail.Add(1)
		logger.ErrorContext(ctx, "lookup failed", "id", id, "error", err)
		return
	}

	count, unique := EmailStats(comments)
	rec.CommentsCount = incident.Ptr(count)
	rec.UniqueEmailsCount = incident.Ptr(unique)
	rec.EnrichedAt = incident.Ptr(incident.Timestamp(e.now()))

	if !w.submit(ctx, rec.Serialize()) {
		logger.WarnContext(ctx, "unit cancelled before hand-off", "id", id)
		return
	}
	c.ok.Add(1)
	logger.InfoContext(ctx, "incident enriched", "id", id, "comments_count", count, "unique_emails_count", unique)
}
