package store

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"
)

const chatIDColumn = 2

// CSV stores records as rows of a comma-separated file with a header row.
type CSV struct {
	mu   sync.Mutex
	path string
}

// NewCSV returns a CSV backend for path.
func NewCSV(path string) *CSV {
	return &CSV{path: path}
}

// Init writes the header row when the file does not exist yet.
func (c *CSV) Init(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := os.Stat(c.path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to stat %s: %w", c.path, err)
	}

	data, err := encodeRows(Header)
	if err != nil {
		return err
	}
	if err := writeNew(c.path, data); err != nil && !errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("failed to create %s: %w", c.path, err)
	}
	return nil
}

// Contains scans the rows after the header for chatID.
func (c *CSV) Contains(ctx context.Context, chatID string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	found := false
	err := c.scan(func(rec GroupRecord) bool {
		if rec.ChatID == chatID {
			found = true
			return false
		}
		return true
	})
	return found, err
}

// Append writes one row with a single write call. A missing file is
// recreated with its header in the same write. A file whose last line lacks
// its terminator gets one before the row.
func (c *CSV) Append(ctx context.Context, rec GroupRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	row := []string{rec.Timestamp, rec.GroupName, rec.ChatID}

	f, err := os.OpenFile(c.path, os.O_APPEND|os.O_RDWR, 0)
	if errors.Is(err, fs.ErrNotExist) {
		data, encErr := encodeRows(Header, row)
		if encErr != nil {
			return encErr
		}
		if err := writeNew(c.path, data); err != nil {
			return fmt.Errorf("failed to recreate %s: %w", c.path, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", c.path, err)
	}

	data, err := encodeRows(row)
	if err != nil {
		_ = f.Close()
		return err
	}
	terminated, err := endsWithNewline(f)
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to read %s: %w", c.path, err)
	}
	if !terminated {
		data = append([]byte{'\n'}, data...)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to append to %s: %w", c.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", c.path, err)
	}
	return nil
}

// List returns every row after the header.
func (c *CSV) List(ctx context.Context) ([]GroupRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var records []GroupRecord
	err := c.scan(func(rec GroupRecord) bool {
		records = append(records, rec)
		return true
	})
	return records, err
}

// Close is a no-op; files are opened per operation.
func (c *CSV) Close() error {
	return nil
}

// scan calls fn for each data row until fn returns false. A missing file has no rows.
func (c *CSV) scan(fn func(GroupRecord) bool) error {
	f, err := os.Open(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", c.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	for line := 0; ; line++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", c.path, err)
		}
		if line == 0 || len(row) <= chatIDColumn {
			continue
		}
		if !fn(GroupRecord{Timestamp: row[0], GroupName: row[1], ChatID: row[chatIDColumn]}) {
			return nil
		}
	}
}

// endsWithNewline reports whether f is empty or its last byte is '\n'.
func endsWithNewline(f *os.File) (bool, error) {
	info, err := f.Stat()
	if err != nil {
		return false, err
	}
	if info.Size() == 0 {
		return true, nil
	}
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		return false, err
	}
	return last[0] == '\n', nil
}

func encodeRows(rows ...[]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("failed to encode csv rows: %w", err)
	}
	return buf.Bytes(), nil
}

func writeNew(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
