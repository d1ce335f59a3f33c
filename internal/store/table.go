package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Codec maps between the raw string cells of one CSV row and a typed record.
// Decode is lenient: it must accept blank or malformed cells and fall back to
// zero values or empty structures instead of failing.
type Codec[T any] interface {
	// Columns returns the canonical column set, in file order.
	Columns() []string
	// Key returns the record's unique key.
	Key(rec T) string
	// WithKey returns the record with its key set.
	WithKey(rec T, key string) T
	// Decode converts raw cells keyed by column name into a record.
	Decode(row map[string]string) T
	// Encode converts a record back into raw cells keyed by column name.
	Encode(rec T) map[string]string
}

// Table is a flat-file record store: one CSV file, one row per record.
//
// Every mutating call performs a full-table read-modify-write. There is no
// locking and no transaction boundary; concurrent writers race and the last
// write wins. Callers that need stronger guarantees do not get them here.
type Table[T any] struct {
	path  string
	codec Codec[T]
}

// NewTable creates a store over the CSV file at path.
func NewTable[T any](path string, codec Codec[T]) *Table[T] {
	return &Table[T]{path: path, codec: codec}
}

// Path returns the backing file path.
func (t *Table[T]) Path() string {
	return t.path
}

// EnsureFile creates the backing file with its header row if it does not
// exist yet.
func (t *Table[T]) EnsureFile() error {
	if _, err := os.Stat(t.path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", t.path, err)
	}
	return t.save(nil)
}

// Load reads all records from the backing file. A missing file yields zero
// records and no error. Content is read best-effort: short rows are padded
// with empty cells and columns absent from the header decode as empty
// strings.
func (t *Table[T]) Load() ([]T, error) {
	f, err := os.Open(t.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", t.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	lines, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", t.path, err)
	}
	if len(lines) == 0 {
		return nil, nil
	}

	header := lines[0]
	recs := make([]T, 0, len(lines)-1)
	for _, line := range lines[1:] {
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(line) {
				row[col] = line[i]
			}
		}
		recs = append(recs, t.codec.Decode(row))
	}
	return recs, nil
}

// FindByKey returns the first record whose key matches exactly.
func (t *Table[T]) FindByKey(key string) (T, bool, error) {
	var zero T
	recs, err := t.Load()
	if err != nil {
		return zero, false, err
	}
	for _, rec := range recs {
		if t.codec.Key(rec) == key {
			return rec, true, nil
		}
	}
	return zero, false, nil
}

// Insert appends a record and rewrites the table. A fresh UUID key is
// assigned when the record has none.
func (t *Table[T]) Insert(rec T) (T, error) {
	var zero T
	if t.codec.Key(rec) == "" {
		rec = t.codec.WithKey(rec, uuid.NewString())
	}
	recs, err := t.Load()
	if err != nil {
		return zero, err
	}
	recs = append(recs, rec)
	if err := t.save(recs); err != nil {
		return zero, err
	}
	return rec, nil
}

// Update applies mutate to the record with the given key and rewrites the
// table. The key is immutable: whatever mutate does to it is discarded.
// Returns found=false when no record matches.
func (t *Table[T]) Update(key string, mutate func(*T)) (T, bool, error) {
	var zero T
	recs, err := t.Load()
	if err != nil {
		return zero, false, err
	}
	for i := range recs {
		if t.codec.Key(recs[i]) != key {
			continue
		}
		mutate(&recs[i])
		recs[i] = t.codec.WithKey(recs[i], key)
		if err := t.save(recs); err != nil {
			return zero, false, err
		}
		return recs[i], true, nil
	}
	return zero, false, nil
}

// Delete removes all records matching key (expected 0 or 1) and reports
// whether anything was removed. Deleting an absent key is not an error.
func (t *Table[T]) Delete(key string) (bool, error) {
	recs, err := t.Load()
	if err != nil {
		return false, err
	}
	kept := recs[:0]
	for _, rec := range recs {
		if t.codec.Key(rec) != key {
			kept = append(kept, rec)
		}
	}
	if len(kept) == len(recs) {
		return false, nil
	}
	if err := t.save(kept); err != nil {
		return false, err
	}
	return true, nil
}

// save rewrites the whole table with the canonical header.
func (t *Table[T]) save(recs []T) error {
	if dir := filepath.Dir(t.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
	}
	f, err := os.Create(t.path)
	if err != nil {
		return fmt.Errorf("create %s: %w", t.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	cols := t.codec.Columns()
	if err := w.Write(cols); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range recs {
		row := t.codec.Encode(rec)
		line := make([]string, len(cols))
		for i, col := range cols {
			line[i] = row[col]
		}
		if err := w.Write(line); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", t.path, err)
	}
	return nil
}
