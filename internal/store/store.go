// Package store manages the three flat CSV tables that back the registration
// system. Each table is a comma-delimited text file with a header row; all
// fields are stored and returned as text, and callers parse numerics and
// dates themselves.
//
// Writes follow a single-writer discipline: one mutex per Store serialises
// all table access, and every full-table write goes to a temp file that is
// renamed into place so a crash mid-write never truncates a table.
package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// Table names a CSV file and its fixed header schema.
type Table struct {
	File   string
	Header []string
}

var (
	// Sessions holds the seeded, immutable session catalogue.
	Sessions = Table{File: "sessions.csv", Header: []string{"id", "name", "date", "capacity", "price"}}
	// Participants holds one row per registration.
	Participants = Table{File: "participants.csv", Header: []string{"id", "name", "email", "session", "registration_date"}}
	// Payments holds one row per recorded payment.
	Payments = Table{File: "payments.csv", Header: []string{"id", "participant_id", "amount", "payment_date", "status"}}

	// counters persists the last issued id per table, so ids stay monotonic
	// across deletions instead of being re-derived from row counts.
	counters = Table{File: "counters.csv", Header: []string{"table", "last_id"}}
)

// Row is a single record keyed by header field name.
type Row map[string]string

// Store owns the on-disk representation of all tables exclusively.
type Store struct {
	mu   sync.Mutex
	dir  string
	seed []Row
}

// New constructs a Store rooted at dir. seedSessions are the rows written to
// the sessions table the first time it is created.
func New(dir string, seedSessions []Row) *Store {
	return &Store{dir: dir, seed: seedSessions}
}

// Dir returns the data directory the store writes into.
func (s *Store) Dir() string { return s.dir }

// Init creates the data directory and any missing table files. Sessions get
// the seed rows; the other tables start with a bare header.
func (s *Store) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	for _, t := range []Table{Sessions, Participants, Payments} {
		if _, err := os.Stat(s.path(t)); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("stat %s: %w", t.File, err)
		}
		var rows []Row
		if t.File == Sessions.File {
			rows = s.seed
		}
		if err := s.writeAllLocked(t, rows); err != nil {
			return err
		}
	}
	return nil
}

// Load returns every row of the table in file order. A missing file yields an
// empty sequence, not an error.
func (s *Store) Load(t Table) ([]Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(t)
}

// Append adds one row to the end of the table, creating the file with its
// header first if needed.
func (s *Store) Append(ctx context.Context, t Table, row Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	path := s.path(t)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", t.File, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", t.File, err)
	}
	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(t.Header); err != nil {
			return fmt.Errorf("write %s header: %w", t.File, err)
		}
	}
	if err := w.Write(t.record(row)); err != nil {
		return fmt.Errorf("append to %s: %w", t.File, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", t.File, err)
	}
	return f.Sync()
}

// RewriteAll atomically replaces the table contents with rows.
func (s *Store) RewriteAll(ctx context.Context, t Table, rows []Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.writeAllLocked(t, rows)
}

// NextID issues the next sequential id for the table from the persisted
// counter, bumping and saving the counter before returning. A missing counter
// entry is initialised from the highest id already in the table, so a fresh
// table starts at 1.
func (s *Store) NextID(ctx context.Context, t Table) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	rows, err := s.loadLocked(counters)
	if err != nil {
		return 0, err
	}

	last := -1
	idx := -1
	for i, row := range rows {
		if row["table"] == t.File {
			last, err = strconv.Atoi(row["last_id"])
			if err != nil {
				return 0, fmt.Errorf("corrupt counter for %s: %w", t.File, err)
			}
			idx = i
			break
		}
	}
	if last < 0 {
		if last, err = s.maxIDLocked(t); err != nil {
			return 0, err
		}
	}

	id := last + 1
	entry := Row{"table": t.File, "last_id": strconv.Itoa(id)}
	if idx >= 0 {
		rows[idx] = entry
	} else {
		rows = append(rows, entry)
	}
	if err := s.writeAllLocked(counters, rows); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) path(t Table) string {
	return filepath.Join(s.dir, t.File)
}

func (s *Store) loadLocked(t Table) ([]Row, error) {
	f, err := os.Open(s.path(t))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", t.File, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", t.File, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(Row, len(header))
		for i, field := range record {
			if i < len(header) {
				row[header[i]] = field
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// writeAllLocked writes header+rows to a uniquely named temp file in the data
// directory and renames it over the table file.
func (s *Store) writeAllLocked(t Table, rows []Row) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	tmp := filepath.Join(s.dir, fmt.Sprintf(".%s.%s.tmp", t.File, uuid.NewString()))
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", t.File, err)
	}

	w := csv.NewWriter(f)
	writeErr := w.Write(t.Header)
	for _, row := range rows {
		if writeErr != nil {
			break
		}
		writeErr = w.Write(t.record(row))
	}
	if writeErr == nil {
		w.Flush()
		writeErr = w.Error()
	}
	if writeErr == nil {
		writeErr = f.Sync()
	}
	if closeErr := f.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write %s: %w", t.File, writeErr)
	}

	if err := os.Rename(tmp, s.path(t)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", t.File, err)
	}
	return nil
}

func (s *Store) maxIDLocked(t Table) (int, error) {
	rows, err := s.loadLocked(t)
	if err != nil {
		return 0, err
	}
	max := 0
	for _, row := range rows {
		if id, err := strconv.Atoi(row["id"]); err == nil && id > max {
			max = id
		}
	}
	return max, nil
}

// record projects a row onto the table's header order.
func (t Table) record(row Row) []string {
	record := make([]string, len(t.Header))
	for i, field := range t.Header {
		record[i] = row[field]
	}
	return record
}
