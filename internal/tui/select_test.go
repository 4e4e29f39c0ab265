package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func stubProgram(t *testing.T, drive func(m *selectModel)) {
	t.Helper()
	orig := runProgram
	runProgram = func(m tea.Model) (tea.Model, error) {
		sm := m.(*selectModel)
		drive(sm)
		return sm, nil
	}
	t.Cleanup(func() { runProgram = orig })
}

func press(m *selectModel, key string) {
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEscape}
	}
	m.Update(msg)
}

func choices() []Choice {
	return []Choice{
		{Label: "US and other countries", Value: "us"},
		{Label: "Canada", Value: "ca"},
		{Label: "UK and Ireland", Value: "uk"},
	}
}

func TestSelectChoiceReturnsSelectedValue(t *testing.T) {
	stubProgram(t, func(m *selectModel) {
		press(m, "down")
		press(m, "enter")
	})

	got, err := SelectChoice("Select your locale", choices())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ca" {
		t.Errorf("selected %q, want %q", got, "ca")
	}
}

func TestSelectChoiceCancelled(t *testing.T) {
	stubProgram(t, func(m *selectModel) {
		press(m, "esc")
	})

	if _, err := SelectChoice("Select your locale", choices()); err == nil {
		t.Fatal("expected error on cancel")
	}
}

func TestSelectChoiceEmpty(t *testing.T) {
	if _, err := SelectChoice("anything", nil); err == nil {
		t.Fatal("expected error for empty choice list")
	}
}
