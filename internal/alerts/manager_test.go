package alerts

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"asa-manager/internal/arklog"
	"asa-manager/internal/logging"
)

func testLogger() *logging.Logger {
	logger := logging.New(false)
	logger.SetTerminalOutputEnabled(false)
	return logger
}

type sentCommand struct {
	server  string
	command string
}

type fakeSender struct {
	mu   sync.Mutex
	err  error
	sent chan sentCommand
}

func newFakeSender() *fakeSender {
	return &fakeSender{sent: make(chan sentCommand, 16)}
}

func (f *fakeSender) Execute(_ context.Context, server string, command string) (string, error) {
	f.mu.Lock()
	err := f.err
	f.mu.Unlock()
	f.sent <- sentCommand{server: server, command: command}
	return "", err
}

type fakeDirectory struct {
	mu    sync.Mutex
	names map[string]string
	joins int
}

func (d *fakeDirectory) RecordJoin(_ context.Context, _ string, uniqueID string, character string, _ string, _ time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.names == nil {
		d.names = map[string]string{}
	}
	d.names[uniqueID] = character
	d.joins++
	return nil
}

func (d *fakeDirectory) joinCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.joins
}

func (d *fakeDirectory) CharacterName(uniqueID string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	name, ok := d.names[uniqueID]
	return name, ok
}

func runManager(t *testing.T, m *Manager) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = m.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func waitJoins(t *testing.T, directory *fakeDirectory, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for directory.joinCount() < want {
		if time.Now().After(deadline) {
			t.Fatalf("directory joins = %d, want %d", directory.joinCount(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func waitSent(t *testing.T, sender *fakeSender) sentCommand {
	t.Helper()
	select {
	case cmd := <-sender.sent:
		return cmd
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for alert")
		return sentCommand{}
	}
}

func TestManager_SendsColoredJoinAlert(t *testing.T) {
	sender := newFakeSender()
	directory := &fakeDirectory{}
	manager := NewManager(Options{}, DefaultRules(), sender, directory, testLogger())
	runManager(t, manager)

	manager.ProcessLine("Island", "2024.01.15_12.00.00: Survivor [UniqueNetId:abc Platform:Steam] joined this ARK!")

	got := waitSent(t, sender)
	want := `ServerChat <RichColor Color="0, 1, 0, 1">Survivor joined the server</>`
	if got.server != "Island" || got.command != want {
		t.Fatalf("sent = %+v, want server Island command %q", got, want)
	}
	waitJoins(t, directory, 1)
	if name, ok := directory.CharacterName("abc"); !ok || name != "Survivor" {
		t.Fatalf("CharacterName(abc) = %q, %v; want Survivor, true", name, ok)
	}
}

func TestManager_DisabledRuleStillRecordsJoin(t *testing.T) {
	sender := newFakeSender()
	directory := &fakeDirectory{}
	rules := DefaultRules()
	rules[arklog.KindJoin] = Rule{Enabled: false, Template: "x", Color: "#000000"}
	manager := NewManager(Options{}, rules, sender, directory, testLogger())

	manager.ProcessLine("Island", "Survivor [UniqueNetId:abc Platform:Steam] joined this ARK!")
	if len(manager.queue) != 0 {
		t.Fatalf("queued %d alerts for a disabled rule", len(manager.queue))
	}
	if len(manager.joins) != 1 {
		t.Fatalf("queued %d joins, want 1", len(manager.joins))
	}
	runManager(t, manager)
	waitJoins(t, directory, 1)
}

type stalledDirectory struct {
	release chan struct{}
	entered chan struct{}
}

func (d *stalledDirectory) RecordJoin(ctx context.Context, _ string, _ string, _ string, _ string, _ time.Time) error {
	d.entered <- struct{}{}
	select {
	case <-d.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *stalledDirectory) CharacterName(string) (string, bool) {
	return "", false
}

func TestManager_SlowDirectoryDoesNotBlockLines(t *testing.T) {
	sender := newFakeSender()
	directory := &stalledDirectory{release: make(chan struct{}), entered: make(chan struct{}, 4)}
	defer close(directory.release)
	manager := NewManager(Options{SendTimeout: time.Minute}, DefaultRules(), sender, directory, testLogger())
	runManager(t, manager)

	manager.ProcessLine("Island", "Survivor [UniqueNetId:abc Platform:Steam] joined this ARK!")
	select {
	case <-directory.entered:
	case <-time.After(2 * time.Second):
		t.Fatalf("directory never saw the join")
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		manager.ProcessLine("Island", "Other [UniqueNetId:def Platform:Steam] joined this ARK!")
		manager.ProcessLine("Island", "Bob - Lvl 12 died!")
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("ProcessLine blocked behind a stalled directory write")
	}

	waitSent(t, sender)
	waitSent(t, sender)
	waitSent(t, sender)
}

func TestManager_IgnoresUnmatchedLines(t *testing.T) {
	manager := NewManager(Options{}, DefaultRules(), newFakeSender(), nil, testLogger())
	manager.ProcessLine("Island", "Server has completed startup and is now advertising for join.")
	if len(manager.queue) != 0 {
		t.Fatalf("queued %d alerts for noise", len(manager.queue))
	}
}

func TestManager_FullQueueDrops(t *testing.T) {
	manager := NewManager(Options{QueueSize: 1}, DefaultRules(), newFakeSender(), nil, testLogger())
	line := "Bob of Tribe Raiders Tamed a Raptor - Lvl 150 (Raptor)!"
	manager.ProcessLine("Island", line)
	manager.ProcessLine("Island", line)
	if len(manager.queue) != 1 {
		t.Fatalf("queue length = %d, want 1", len(manager.queue))
	}
}

func TestManager_SendFailureIsSwallowed(t *testing.T) {
	sender := newFakeSender()
	sender.err = errors.New("connection refused")
	manager := NewManager(Options{}, DefaultRules(), sender, nil, testLogger())
	runManager(t, manager)

	manager.ProcessLine("Island", "Bob - Lvl 12 died!")
	first := waitSent(t, sender)
	if first.command == "" {
		t.Fatalf("expected a command to be attempted")
	}
	manager.ProcessLine("Island", "Bob of Tribe Raiders Tamed a Raptor - Lvl 150 (Raptor)!")
	second := waitSent(t, sender)
	want := `ServerChat <RichColor Color="0, 0.75, 1, 1">Bob tamed a level 150 Raptor</>`
	if second.command != want {
		t.Fatalf("second command = %q, want %q", second.command, want)
	}
}

func TestManager_SetRule(t *testing.T) {
	manager := NewManager(Options{}, nil, nil, nil, testLogger())
	if err := manager.SetRule("weather", Rule{Color: "#FFFFFF"}); err == nil {
		t.Fatalf("SetRule(unknown kind) error = nil")
	}
	if err := manager.SetRule(arklog.KindLeave, Rule{Color: "orange"}); err == nil {
		t.Fatalf("SetRule(bad color) error = nil")
	}
	rule := Rule{Enabled: true, Template: "bye {player}", Color: "#123456"}
	if err := manager.SetRule(arklog.KindLeave, rule); err != nil {
		t.Fatalf("SetRule() error = %v", err)
	}
	if got := manager.Rules()[arklog.KindLeave]; got != rule {
		t.Fatalf("Rules()[leave] = %+v, want %+v", got, rule)
	}
	if got := len(manager.Rules()); got != len(arklog.Kinds) {
		t.Fatalf("len(Rules()) = %d, want %d", got, len(arklog.Kinds))
	}
}

func TestFormat(t *testing.T) {
	ev := arklog.Event{
		Kind:      arklog.KindPlayerDeath,
		Server:    "Island",
		Name:      "Bob",
		Level:     "50",
		Killer:    "Alice",
		Tribe:     "Raiders",
		Timestamp: time.Date(2024, 1, 15, 12, 34, 56, 0, time.UTC),
	}
	got := Format("[{time}] {player}/{character} of {tribe} killed by {killer} on {server} {unknown}", ev, "", time.Now())
	want := "[12:34:56] Bob/Bob of Raiders killed by Alice on Island {unknown}"
	if got != want {
		t.Fatalf("Format() = %q, want %q", got, want)
	}
}

func TestWrapColor(t *testing.T) {
	tests := []struct {
		hex     string
		want    string
		wantErr bool
	}{
		{hex: "#FF0000", want: `<RichColor Color="1, 0, 0, 1">hi</>`},
		{hex: "FFA500", want: `<RichColor Color="1, 0.65, 0, 1">hi</>`},
		{hex: "#12", wantErr: true},
		{hex: "#GGGGGG", wantErr: true},
	}
	for _, tt := range tests {
		got, err := WrapColor("hi", tt.hex)
		if (err != nil) != tt.wantErr {
			t.Fatalf("WrapColor(%q) error = %v, wantErr %v", tt.hex, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("WrapColor(%q) = %q, want %q", tt.hex, got, tt.want)
		}
	}
}
