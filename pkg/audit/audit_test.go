package audit

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/newtron-network/swreconcile/pkg/state"
)

func newTestLogger(t *testing.T, rotation RotationConfig) (*FileLogger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audit.log")
	logger, err := NewFileLogger(path, rotation)
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	t.Cleanup(func() { logger.Close() })
	return logger, path
}

func TestNewEvent(t *testing.T) {
	event := NewEvent("alice", "rsw1", OpApply)

	if event.User != "alice" {
		t.Errorf("User = %q, want %q", event.User, "alice")
	}
	if event.Switch != "rsw1" {
		t.Errorf("Switch = %q, want %q", event.Switch, "rsw1")
	}
	if event.Operation != OpApply {
		t.Errorf("Operation = %q, want %q", event.Operation, OpApply)
	}
	if _, err := uuid.Parse(event.ID); err != nil {
		t.Errorf("ID = %q, want a UUID: %v", event.ID, err)
	}
	if event.Timestamp.IsZero() {
		t.Error("Timestamp is zero")
	}
}

func TestEventChaining(t *testing.T) {
	entries := []state.Entry{
		{Domain: "vlans", Key: "5", Kind: state.Added, New: state.VlanFields{ID: 5}},
		{Domain: "ports", Key: "1", Kind: state.Changed},
	}
	event := NewEvent("alice", "rsw1", OpApply).
		WithConfigPath("/etc/switch.yaml").
		WithGeneration(7).
		WithDomains([]string{"vlans", "ports"}).
		WithEntries(entries).
		WithSuccess().
		WithDuration(time.Second)

	if event.ConfigPath != "/etc/switch.yaml" {
		t.Errorf("ConfigPath = %q", event.ConfigPath)
	}
	if event.Generation != 7 {
		t.Errorf("Generation = %d, want 7", event.Generation)
	}
	want := []Change{{Domain: "vlans", Key: "5", Kind: state.Added}, {Domain: "ports", Key: "1", Kind: state.Changed}}
	if len(event.Changes) != len(want) {
		t.Fatalf("Changes = %v, want %v", event.Changes, want)
	}
	for i := range want {
		if event.Changes[i] != want[i] {
			t.Errorf("Changes[%d] = %v, want %v", i, event.Changes[i], want[i])
		}
	}
	if !event.Success || event.Duration != time.Second {
		t.Errorf("Success = %v, Duration = %v", event.Success, event.Duration)
	}
}

func TestEventWithError(t *testing.T) {
	event := NewEvent("alice", "rsw1", OpApply).WithSuccess().WithError(errors.New("vlan 5 missing"))
	if event.Success {
		t.Error("Success = true after WithError")
	}
	if event.Error != "vlan 5 missing" {
		t.Errorf("Error = %q", event.Error)
	}

	event = NewEvent("alice", "rsw1", OpApply).WithError(nil)
	if event.Success || event.Error != "" {
		t.Errorf("WithError(nil) = %v %q, want failed with no message", event.Success, event.Error)
	}
}

func TestFileLoggerRoundTrip(t *testing.T) {
	logger, _ := newTestLogger(t, RotationConfig{})

	event := NewEvent("alice", "rsw1", OpApply).
		WithGeneration(3).
		WithEntries([]state.Entry{{Domain: "acls", Key: "deny-telnet", Kind: state.Added}}).
		WithSuccess()
	if err := logger.Log(event); err != nil {
		t.Fatalf("Log() error = %v", err)
	}

	events, err := logger.Query(Filter{})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Query() returned %d events, want 1", len(events))
	}
	got := events[0]
	if got.ID != event.ID || got.Generation != 3 || got.Switch != "rsw1" {
		t.Errorf("Query()[0] = %+v, want the logged event", got)
	}
	if len(got.Changes) != 1 || got.Changes[0].Key != "deny-telnet" {
		t.Errorf("Changes = %v, want the acl change", got.Changes)
	}
}

func TestFileLoggerQueryFilters(t *testing.T) {
	logger, _ := newTestLogger(t, RotationConfig{})

	events := []*Event{
		NewEvent("alice", "rsw1", OpApply).WithDomains([]string{"vlans"}).WithSuccess(),
		NewEvent("bob", "rsw1", OpValidate).WithSuccess(),
		NewEvent("alice", "rsw2", OpApply).WithError(errors.New("failed")),
		NewEvent("carol", "rsw3", OpStaticRoute).WithDomains([]string{"routes"}).WithSuccess(),
	}
	for _, e := range events {
		if err := logger.Log(e); err != nil {
			t.Fatalf("Log() error = %v", err)
		}
	}

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"all", Filter{}, 4},
		{"user", Filter{User: "alice"}, 2},
		{"switch", Filter{Switch: "rsw1"}, 2},
		{"operation", Filter{Operation: OpApply}, 2},
		{"domain", Filter{Domain: "routes"}, 1},
		{"success only", Filter{SuccessOnly: true}, 3},
		{"failure only", Filter{FailureOnly: true}, 1},
		{"limit", Filter{Limit: 2}, 2},
		{"offset", Filter{Offset: 3}, 1},
		{"offset past end", Filter{Offset: 9}, 0},
		{"in time range", Filter{StartTime: time.Now().Add(-time.Hour), EndTime: time.Now().Add(time.Hour)}, 4},
		{"after time range", Filter{StartTime: time.Now().Add(time.Hour)}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := logger.Query(tt.filter)
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("Query() returned %d events, want %d", len(got), tt.want)
			}
		})
	}
}

func TestFileLoggerCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "audit.log")
	logger, err := NewFileLogger(path, RotationConfig{})
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	defer logger.Close()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("audit file not created: %v", err)
	}
}

func TestFileLoggerSkipsMalformedLines(t *testing.T) {
	logger, path := newTestLogger(t, RotationConfig{})
	if err := logger.Log(NewEvent("alice", "rsw1", OpApply).WithSuccess()); err != nil {
		t.Fatalf("Log() error = %v", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatalf("opening audit file: %v", err)
	}
	f.WriteString("not json\n")
	f.Close()

	events, err := logger.Query(Filter{})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(events) != 1 {
		t.Errorf("Query() returned %d events, want 1", len(events))
	}
}

func TestFileLoggerRotation(t *testing.T) {
	logger, path := newTestLogger(t, RotationConfig{MaxSize: 100, MaxBackups: 2})

	for i := 0; i < 5; i++ {
		if err := logger.Log(NewEvent("alice", "rsw1", OpApply).WithSuccess()); err != nil {
			t.Fatalf("Log() #%d error = %v", i, err)
		}
	}

	backups, err := filepath.Glob(path + ".*")
	if err != nil {
		t.Fatalf("Glob() error = %v", err)
	}
	if len(backups) > 2 {
		t.Errorf("%d rotated files kept, want at most 2", len(backups))
	}
	events, err := logger.Query(Filter{})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(events) != 1 {
		t.Errorf("current file holds %d events, want 1 after rotation", len(events))
	}
}

func TestDefaultLogger(t *testing.T) {
	SetDefaultLogger(nil)
	if err := Log(NewEvent("alice", "rsw1", OpApply)); err != nil {
		t.Errorf("Log() without a default logger error = %v", err)
	}
	if got, err := Query(Filter{}); err != nil || len(got) != 0 {
		t.Errorf("Query() without a default logger = %v, %v, want empty", got, err)
	}

	logger, _ := newTestLogger(t, RotationConfig{})
	SetDefaultLogger(logger)
	defer SetDefaultLogger(nil)

	if err := Log(NewEvent("alice", "rsw1", OpApply).WithSuccess()); err != nil {
		t.Errorf("Log() error = %v", err)
	}
	got, err := Query(Filter{})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("Query() returned %d events, want 1", len(got))
	}
}
