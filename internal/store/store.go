package store

import (
	"cmp"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"incident-pipeline/internal/incident"
)

// Options configures a Store.
type Options struct {
	// Sources are loaded in order at startup. A record in a later source
	// replaces a record with the same id from an earlier one.
	Sources []string
	// AppendPath is the local append-only file that receives created records.
	// When empty, created records are kept in memory only.
	AppendPath string
	// Now stamps createdAt. Defaults to time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

// Store holds every known incident in memory, indexed by id and by title
// token. All methods are safe for concurrent use.
type Store struct {
	records sync.Map // int -> incident.Record
	count   atomic.Int64
	index   titleIndex
	nextID  atomic.Int64

	appendMu   sync.Mutex
	appendFile *os.File

	now    func() time.Time
	logger *slog.Logger
}

// Open loads opts.Sources, rebuilds the title index and opens the append file.
func Open(opts Options) (*Store, LoadReport, error) {
	s := &Store{
		now:    opts.Now,
		logger: opts.Logger,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	report, err := s.load(opts.Sources)
	if err != nil {
		return nil, report, err
	}
	s.nextID.Store(int64(report.MaxID) + 1)
	s.rebuildIndex()

	if opts.AppendPath != "" {
		f, err := os.OpenFile(opts.AppendPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, report, fmt.Errorf("failed to open append file %s: %w", opts.AppendPath, err)
		}
		s.appendFile = f
	}

	return s, report, nil
}

// Close closes the append file.
func (s *Store) Close() error {
	s.appendMu.Lock()
	defer s.appendMu.Unlock()
	if s.appendFile == nil {
		return nil
	}
	err := s.appendFile.Close()
	s.appendFile = nil
	return err
}

// Get returns the incident with the given id.
func (s *Store) Get(id int) (incident.Record, bool) {
	v, ok := s.records.Load(id)
	if !ok {
		return incident.Record{}, false
	}
	return v.(incident.Record), true
}

// Len returns the number of stored incidents.
func (s *Store) Len() int {
	return int(s.count.Load())
}

// NextID returns the id the next created incident will receive.
func (s *Store) NextID() int {
	return int(s.nextID.Load())
}

// Create stores a new incident, indexes its title and appends it to the
// local file. The returned record is stored even when the append fails.
func (s *Store) Create(title, body string) (incident.Record, error) {
	id := int(s.nextID.Add(1) - 1)
	rec := incident.Record{
		ID:                incident.Ptr(id),
		Title:             incident.Ptr(title),
		Body:              incident.Ptr(body),
		CommentsCount:     incident.Ptr(0),
		UniqueEmailsCount: incident.Ptr(0),
		CreatedAt:         incident.Ptr(incident.Timestamp(s.now())),
	}

	s.put(rec)
	s.index.add(id, title)

	if err := s.appendLine(rec.Serialize()); err != nil {
		return rec, fmt.Errorf("failed to append incident %d: %w", id, err)
	}
	return rec, nil
}

// Search finds incidents matching query. A query holding exactly one token
// is answered from the title index; any other query is matched as a
// case-insensitive substring of title or body. Results are ordered by id.
func (s *Store) Search(query string) []incident.Record {
	q := strings.TrimSpace(strings.ToLower(query))
	tokens := Tokenize(q)
	if len(tokens) == 1 {
		return s.lookupToken(tokens[0])
	}
	return s.scan(q)
}

func (s *Store) lookupToken(token string) []incident.Record {
	ids := s.index.lookup(token)
	out := make([]incident.Record, 0, len(ids))
	for _, id := range ids {
		if rec, ok := s.Get(id); ok {
			out = append(out, rec)
		}
	}
	sortByID(out)
	return out
}

// scan matches the lower-cased query against every title and body.
func (s *Store) scan(q string) []incident.Record {
	out := make([]incident.Record, 0)
	s.records.Range(func(_, v any) bool {
		rec := v.(incident.Record)
		if strings.Contains(strings.ToLower(rec.TitleValue()), q) ||
			strings.Contains(strings.ToLower(rec.BodyValue()), q) {
			out = append(out, rec)
		}
		return true
	})
	sortByID(out)
	return out
}

func (s *Store) put(rec incident.Record) {
	if _, loaded := s.records.Swap(rec.IDValue(), rec); !loaded {
		s.count.Add(1)
	}
}

func (s *Store) rebuildIndex() {
	s.index.reset()
	s.records.Range(func(k, v any) bool {
		s.index.add(k.(int), v.(incident.Record).TitleValue())
		return true
	})
}

func (s *Store) appendLine(line []byte) error {
	s.appendMu.Lock()
	defer s.appendMu.Unlock()
	if s.appendFile == nil {
		return nil
	}
	_, err := s.appendFile.Write(append(line, '\n'))
	return err
}

func sortByID(recs []incident.Record) {
	slices.SortFunc(recs, func(a, b incident.Record) int {
		return cmp.Compare(a.IDValue(), b.IDValue())
	})
}
