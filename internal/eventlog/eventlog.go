// Package eventlog implements the raw update journal: an append-only text file
// with one timestamped entry per line.
//
// Line format:
//
//	[2006-01-02 15:04:05] - <action>
//	[2006-01-02 15:04:05] - <action> - <compact JSON payload>
package eventlog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/edgard/groupwatch/internal/console"
)

// Action tags written by the listener.
const (
	ActionUpdateReceived    = "update_received"
	ActionHandleUpdateError = "handle_update_error"
	ActionStoreContainsErr  = "store_contains_error"
	ActionStoreAppendErr    = "store_append_error"
)

const separator = " - "

// ErrMalformedEntry is returned by ParseLine for lines not written by FormatEntry.
var ErrMalformedEntry = errors.New("malformed raw log entry")

// Entry is one parsed journal line.
type Entry struct {
	Timestamp string
	Action    string
	Payload   json.RawMessage
}

// FileLog appends entries to a file that is created on the first write.
type FileLog struct {
	mu      sync.Mutex
	path    string
	file    *os.File
	console *console.Console
	now     func() time.Time
}

// New returns a journal writing to path. Failures to write are reported on con.
func New(path string, con *console.Console) *FileLog {
	return &FileLog{path: path, console: con, now: time.Now}
}

// WithClock replaces the time source used for entry timestamps.
func (l *FileLog) WithClock(now func() time.Time) *FileLog {
	l.now = now
	return l
}

// Record appends one entry. A nil payload produces an entry without the JSON
// suffix. Record never fails: problems are printed on the console instead.
func (l *FileLog) Record(action string, payload any) {
	line, err := FormatEntry(l.now().Format(console.TimeLayout), action, payload)
	if err != nil {
		l.fallback(action, err)
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			l.fallback(action, err)
			return
		}
		l.file = f
	}

	if _, err := l.file.WriteString(line); err != nil {
		// Reopen on the next call in case the file was rotated away.
		_ = l.file.Close()
		l.file = nil
		l.fallback(action, err)
	}
}

// Close releases the underlying file.
func (l *FileLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func (l *FileLog) fallback(action string, err error) {
	if l.console == nil {
		return
	}
	l.console.Error(fmt.Sprintf("Failed to write raw log entry %q to %s: %v", action, l.path, err), "")
}

// FormatEntry renders a complete journal line including the trailing newline.
func FormatEntry(timestamp, action string, payload any) (string, error) {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(timestamp)
	b.WriteString("]")
	b.WriteString(separator)
	b.WriteString(action)

	if payload != nil {
		data, err := Marshal(payload)
		if err != nil {
			return "", fmt.Errorf("failed to serialize payload for %s: %w", action, err)
		}
		b.WriteString(separator)
		b.Write(data)
	}

	b.WriteByte('\n')
	return b.String(), nil
}

// Marshal serializes v as compact JSON, leaving non-ASCII and HTML characters unescaped.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// ParseLine splits a journal line back into its parts.
func ParseLine(line string) (Entry, error) {
	line = strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(line, "[") {
		return Entry{}, ErrMalformedEntry
	}

	end := strings.Index(line, "]"+separator)
	if end < 0 {
		return Entry{}, ErrMalformedEntry
	}

	entry := Entry{Timestamp: line[1:end]}
	rest := line[end+1+len(separator):]

	action, payload, hasPayload := strings.Cut(rest, separator)
	entry.Action = action
	if hasPayload {
		if !json.Valid([]byte(payload)) {
			return Entry{}, fmt.Errorf("%w: invalid payload", ErrMalformedEntry)
		}
		entry.Payload = json.RawMessage(payload)
	}

	return entry, nil
}
