package enrich

import (
	"context"
	"io"

	"incident-pipeline/internal/contextutil"
)

// handoff is one message on the queue between workers and the writer.
type handoff struct {
	line []byte
	stop bool
}

// sentinel tells the writer to finish.
var sentinel = handoff{stop: true}

// lineWriter is the single consumer of the hand-off queue. It owns out and
// closes it when it observes the sentinel. Each line is written with one
// Write call before the next message is taken.
type lineWriter struct {
	out   io.WriteCloser
	queue chan handoff
	done  chan struct{}

	// Read only after done is closed.
	written  int
	failures int
}

func newLineWriter(out io.WriteCloser, capacity int) *lineWriter {
	return &lineWriter{
		out:   out,
		queue: make(chan handoff, capacity),
		done:  make(chan struct{}),
	}
}

func (w *lineWriter) run(ctx context.Context) {
	defer close(w.done)
	logger := contextutil.LoggerFromContext(ctx)

	for {
		msg := <-w.queue
		if msg.stop {
			break
		}
		buf := make([]byte, 0, len(msg.line)+1)
		buf = append(append(buf, msg.line...), '\n')
		if _, err := w.out.Write(buf); err != nil {
			// Keep draining so producers never block on a full queue.
			w.failures++
			logger.ErrorContext(ctx, "failed to write enriched line", "error", err)
			continue
		}
		w.written++
	}

	if err := w.out.Close(); err != nil {
		w.failures++
		logger.ErrorContext(ctx, "failed to close output", "error", err)
	}
	logger.DebugContext(ctx, "writer finished", "written", w.written, "failures", w.failures)
}

// submit queues line for writing. It gives up when ctx is cancelled.
func (w *lineWriter) submit(ctx context.Context, line []byte) bool {
	select {
	case w.queue <- handoff{line: line}:
		return true
	case <-ctx.Done():
		return false
	}
}

// stop sends the sentinel and waits for the writer to exit. No submit may
// be in flight or follow.
func (w *lineWriter) stop() {
	w.queue <- sentinel
	<-w.done
}
