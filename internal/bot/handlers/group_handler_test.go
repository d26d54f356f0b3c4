package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-telegram/bot/models"

	"github.com/edgard/groupwatch/internal/bot/handlers"
	"github.com/edgard/groupwatch/internal/console"
	"github.com/edgard/groupwatch/internal/eventlog"
	"github.com/edgard/groupwatch/internal/store"
)

type memStore struct {
	records  []store.GroupRecord
	appended int
	panicOn  string
}

func (m *memStore) Contains(_ context.Context, chatID string) bool {
	if chatID == m.panicOn {
		panic("lookup exploded")
	}
	for _, rec := range m.records {
		if rec.ChatID == chatID {
			return true
		}
	}
	return false
}

func (m *memStore) Append(_ context.Context, rec store.GroupRecord) {
	m.appended++
	m.records = append(m.records, rec)
}

type entry struct {
	action  string
	payload any
}

type memLog struct {
	entries []entry
}

func (m *memLog) Record(action string, payload any) {
	m.entries = append(m.entries, entry{action: action, payload: payload})
}

func (m *memLog) actions(action string) []entry {
	var out []entry
	for _, e := range m.entries {
		if e.action == action {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	store  *memStore
	events *memLog
	out    *bytes.Buffer
	deps   handlers.HandlerDeps
}

func newFixture() *fixture {
	f := &fixture{store: &memStore{}, events: &memLog{}, out: &bytes.Buffer{}}
	f.deps = handlers.HandlerDeps{
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Store:   f.store,
		Events:  f.events,
		Console: console.New(f.out, false),
		Now: func() time.Time {
			return time.Date(2024, 3, 4, 5, 6, 7, 0, time.Local)
		},
	}
	return f
}

func groupUpdate(updateID, chatID int64, chatType models.ChatType, title string) *models.Update {
	return &models.Update{
		ID: updateID,
		Message: &models.Message{
			ID:   int(updateID),
			Chat: models.Chat{ID: chatID, Type: chatType, Title: title},
			Text: "hello",
		},
	}
}

func decodeEnvelope(t *testing.T, payload any) handlers.Envelope {
	t.Helper()
	raw, ok := payload.(json.RawMessage)
	if !ok {
		t.Fatalf("payload type = %T, want json.RawMessage", payload)
	}
	var env handlers.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("payload is not an envelope: %v", err)
	}
	return env
}

func TestNewGroupIsStoredSilently(t *testing.T) {
	t.Parallel()

	f := newFixture()
	handle := handlers.NewGroupHandler(f.deps)

	handle(context.Background(), nil, groupUpdate(1, -100, models.ChatTypeGroup, "Team"))

	want := store.GroupRecord{Timestamp: "2024-03-04 05:06:07", GroupName: "Team", ChatID: "-100"}
	if len(f.store.records) != 1 || f.store.records[0] != want {
		t.Fatalf("records = %+v, want [%+v]", f.store.records, want)
	}
	if f.out.Len() != 0 {
		t.Errorf("console output for new group = %q, want none", f.out.String())
	}

	received := f.events.actions(eventlog.ActionUpdateReceived)
	if len(received) != 1 {
		t.Fatalf("got %d update_received entries, want 1", len(received))
	}
	env := decodeEnvelope(t, received[0].payload)
	if !env.OK || len(env.Result) != 1 || env.Result[0].ID != 1 {
		t.Errorf("unexpected envelope: %+v", env)
	}
}

func TestRepeatedGroupsStoredOnce(t *testing.T) {
	t.Parallel()

	f := newFixture()
	handle := handlers.NewGroupHandler(f.deps)

	chatIDs := []int64{-100, -200, -100, -100, -300, -200}
	for i, id := range chatIDs {
		handle(context.Background(), nil, groupUpdate(int64(i+1), id, models.ChatTypeSupergroup, "g"))
	}

	if f.store.appended != 3 {
		t.Errorf("Append called %d times, want 3", f.store.appended)
	}
	if got := strings.Count(f.out.String(), "Already logged"); got != 3 {
		t.Errorf("got %d already-logged notices, want 3", got)
	}

	received := f.events.actions(eventlog.ActionUpdateReceived)
	if len(received) != len(chatIDs) {
		t.Fatalf("got %d update_received entries, want %d", len(received), len(chatIDs))
	}
	for i, e := range received {
		env := decodeEnvelope(t, e.payload)
		if env.Result[0].ID != int64(i+1) {
			t.Errorf("entry %d carries update %d, arrival order lost", i, env.Result[0].ID)
		}
	}
}

func TestAlreadyLoggedWithDifferentTitle(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.store.records = []store.GroupRecord{{Timestamp: "t", GroupName: "Old", ChatID: "100"}}
	handle := handlers.NewGroupHandler(f.deps)

	handle(context.Background(), nil, groupUpdate(9, 100, models.ChatTypeGroup, "Renamed"))

	if f.store.appended != 0 {
		t.Errorf("Append called %d times for a stored chat", f.store.appended)
	}
	if got, want := f.out.String(), "Already logged: Renamed (100)\n"; got != want {
		t.Errorf("console = %q, want %q", got, want)
	}
}

func TestNonGroupChatsOnlyJournaled(t *testing.T) {
	t.Parallel()

	f := newFixture()
	handle := handlers.NewGroupHandler(f.deps)

	handle(context.Background(), nil, groupUpdate(1, 55, models.ChatTypePrivate, ""))
	handle(context.Background(), nil, groupUpdate(2, -55, models.ChatTypeChannel, "News"))
	handle(context.Background(), nil, &models.Update{ID: 3, InlineQuery: &models.InlineQuery{ID: "q"}})

	if f.store.appended != 0 {
		t.Errorf("Append called %d times for non-group chats", f.store.appended)
	}
	if got := len(f.events.actions(eventlog.ActionUpdateReceived)); got != 3 {
		t.Errorf("got %d update_received entries, want 3", got)
	}
}

func TestMyChatMemberAddsGroup(t *testing.T) {
	t.Parallel()

	f := newFixture()
	handle := handlers.NewGroupHandler(f.deps)

	handle(context.Background(), nil, &models.Update{
		ID: 4,
		MyChatMember: &models.ChatMemberUpdated{
			Chat: models.Chat{ID: -4242, Type: models.ChatTypeGroup, Title: "Added"},
		},
	})

	if len(f.store.records) != 1 || f.store.records[0].ChatID != "-4242" {
		t.Errorf("records = %+v, want chat -4242", f.store.records)
	}
}

func TestPanicIsContained(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.store.panicOn = "-666"
	handle := handlers.NewGroupHandler(f.deps)

	handle(context.Background(), nil, groupUpdate(1, -666, models.ChatTypeGroup, "Cursed"))
	handle(context.Background(), nil, groupUpdate(2, -777, models.ChatTypeGroup, "Fine"))

	failures := f.events.actions(eventlog.ActionHandleUpdateError)
	if len(failures) != 1 {
		t.Fatalf("got %d handle_update_error entries, want 1", len(failures))
	}
	failure, ok := failures[0].payload.(handlers.Failure)
	if !ok {
		t.Fatalf("payload type = %T, want handlers.Failure", failures[0].payload)
	}
	if failure.Type != "panic" || failure.Message != "lookup exploded" {
		t.Errorf("failure = %+v", failure)
	}
	if !strings.Contains(f.out.String(), "Error handling update 1:") {
		t.Errorf("console trace missing: %q", f.out.String())
	}

	if len(f.store.records) != 1 || f.store.records[0].ChatID != "-777" {
		t.Errorf("next update not handled: %+v", f.store.records)
	}
}

func TestNonASCIITitleJournaledVerbatim(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "raw.log")
	journal := eventlog.New(path, nil)
	t.Cleanup(func() { _ = journal.Close() })

	f := newFixture()
	f.deps.Events = journal
	handle := handlers.NewGroupHandler(f.deps)

	title := "Группа друзей 🎉 <&>"
	handle(context.Background(), nil, groupUpdate(1, -1, models.ChatTypeGroup, title))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read journal: %v", err)
	}
	if !bytes.Contains(data, []byte(title)) {
		t.Fatalf("journal does not contain verbatim title: %q", data)
	}

	parsed, err := eventlog.ParseLine(string(data))
	if err != nil {
		t.Fatalf("ParseLine() error = %v", err)
	}
	if parsed.Action != eventlog.ActionUpdateReceived {
		t.Errorf("action = %q", parsed.Action)
	}
	env := decodeEnvelope(t, parsed.Payload)
	if got := env.Result[0].Message.Chat.Title; got != title {
		t.Errorf("title = %q, want %q", got, title)
	}
}

func TestStoreWriteFailureIsJournaled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	journalPath := filepath.Join(dir, "raw.log")
	journal := eventlog.New(journalPath, nil)
	t.Cleanup(func() { _ = journal.Close() })

	backend := store.NewCSV(filepath.Join(dir, "missing", "groups.csv"))

	f := newFixture()
	f.deps.Events = journal
	f.deps.Store = store.New(backend, journal, nil)
	handle := handlers.NewGroupHandler(f.deps)

	handle(context.Background(), nil, groupUpdate(1, -1, models.ChatTypeGroup, "Team"))

	data, err := os.ReadFile(journalPath)
	if err != nil {
		t.Fatalf("failed to read journal: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d journal lines, want 2: %q", len(lines), lines)
	}

	failure, err := eventlog.ParseLine(lines[0])
	if err != nil {
		t.Fatalf("ParseLine() error = %v", err)
	}
	if failure.Action != eventlog.ActionStoreAppendErr {
		t.Errorf("first action = %q, want %q", failure.Action, eventlog.ActionStoreAppendErr)
	}
	var payload map[string]string
	if err := json.Unmarshal(failure.Payload, &payload); err != nil {
		t.Fatalf("failure payload: %v", err)
	}
	if payload["error"] == "" {
		t.Error("failure payload has empty error description")
	}

	received, err := eventlog.ParseLine(lines[1])
	if err != nil {
		t.Fatalf("ParseLine() error = %v", err)
	}
	if received.Action != eventlog.ActionUpdateReceived {
		t.Errorf("second action = %q, want %q", received.Action, eventlog.ActionUpdateReceived)
	}
}
