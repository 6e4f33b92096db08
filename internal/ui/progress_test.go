package ui

import (
	"bytes"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"tsrun/internal/transpile"
)

// The run command closes the event channel to shut the UI down before the
// script takes over the terminal; the model has to drain what is buffered
// and then quit.
func TestModelDrainsThenQuits(t *testing.T) {
	events := make(chan transpile.Event, 1)
	events <- transpile.Event{Stage: transpile.StageConvert, Status: transpile.StatusDone, File: "a.ts"}
	close(events)

	m := NewProgressModel("entry.ts", events).(*progressModel)

	msg := m.listenForEvent()()
	ev, ok := msg.(eventMsg)
	if !ok {
		t.Fatalf("first message = %T, want eventMsg", msg)
	}
	if _, cmd := m.Update(ev); cmd == nil {
		t.Fatal("expected a follow-up command after an event")
	}
	if m.items[0].status != "done" {
		t.Errorf("status = %q, want %q", m.items[0].status, "done")
	}

	msg = m.listenForEvent()()
	if _, ok := msg.(doneMsg); !ok {
		t.Fatalf("after close message = %T, want doneMsg", msg)
	}
	_, cmd := m.Update(msg)
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("command yields %T, want tea.QuitMsg", cmd())
	}
	if !m.done {
		t.Error("model not marked done")
	}
}

func TestPlainSinkStageLines(t *testing.T) {
	var b bytes.Buffer
	sink := PlainSink{W: &b}
	sink.OnEvent(transpile.Event{Stage: transpile.StageCheck, Status: transpile.StatusDone})
	sink.OnEvent(transpile.Event{Stage: transpile.StageConvert, Status: transpile.StatusWorking})
	sink.OnEvent(transpile.Event{Stage: transpile.StageConvert, Status: transpile.StatusDone, File: "a.ts"})
	if got, want := b.String(), "type checking: done\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}
