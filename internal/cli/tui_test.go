package cli

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press feeds keys to m, running any command it returns and feeding the
// resulting message back, like the bubbletea runtime would.
func press(t *testing.T, m ExploreModel, keys ...string) (ExploreModel, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(key(k))
		m = next.(ExploreModel)
		if cmd == nil {
			continue
		}
		if msg, ok := cmd().(resultMsg); ok {
			next, _ = m.Update(msg)
			m = next.(ExploreModel)
		}
	}
	return m, cmd
}

func sentence(from, to string) (string, error) {
	return from + " is " + to + "'s relative", nil
}

func TestExploreModelPicksTwoPeople(t *testing.T) {
	m := NewExploreModel([]string{"Alice", "Bob", "Carol"}, sentence)

	m, _ = press(t, m, "down", "enter")
	if m.From != "Bob" || m.stage != pickTo {
		t.Fatalf("after first pick: From=%q stage=%d", m.From, m.stage)
	}
	if !strings.Contains(m.View(), "How is Bob related to") {
		t.Errorf("view = %q", m.View())
	}

	m, _ = press(t, m, "down", "enter")
	if m.To != "Carol" || m.stage != showResult {
		t.Fatalf("after second pick: To=%q stage=%d", m.To, m.stage)
	}
	if m.Result != "Bob is Carol's relative" {
		t.Errorf("Result = %q", m.Result)
	}
	if !strings.Contains(m.View(), "Bob is Carol's relative") {
		t.Errorf("view lacks the result: %q", m.View())
	}
}

func TestExploreModelSwapAndReset(t *testing.T) {
	m := NewExploreModel([]string{"Alice", "Bob"}, sentence)
	m, _ = press(t, m, "enter", "down", "enter", "s")
	if m.From != "Bob" || m.To != "Alice" || m.Result != "Bob is Alice's relative" {
		t.Errorf("after swap: %+v", m)
	}

	m, _ = press(t, m, "r")
	if m.stage != pickFrom || m.From != "" || m.To != "" || m.Result != "" {
		t.Errorf("after reset: %+v", m)
	}
}

func TestExploreModelBack(t *testing.T) {
	m := NewExploreModel([]string{"Alice", "Bob"}, sentence)
	m, _ = press(t, m, "enter", "backspace")
	if m.stage != pickFrom || m.From != "" {
		t.Errorf("backspace did not return to the first pick: %+v", m)
	}
}

func TestExploreModelError(t *testing.T) {
	m := NewExploreModel([]string{"Alice", "Bob"}, func(string, string) (string, error) {
		return "", errors.New("boom")
	})
	m, _ = press(t, m, "enter", "enter")
	if m.Err == nil || !strings.Contains(m.View(), "boom") {
		t.Errorf("error not shown: %q", m.View())
	}
}

func TestExploreModelCursorBounds(t *testing.T) {
	m := NewExploreModel([]string{"Alice", "Bob"}, sentence)
	m, _ = press(t, m, "up", "down", "down", "down")
	if m.Cursor != 1 {
		t.Errorf("Cursor = %d, want 1", m.Cursor)
	}
}

func TestExploreModelScroll(t *testing.T) {
	m := NewExploreModel([]string{"A", "B", "C", "D", "E", "F", "G"}, sentence)
	next, _ := m.Update(tea.WindowSizeMsg{Height: 10})
	m = next.(ExploreModel)
	if m.Height != 5 {
		t.Fatalf("Height = %d, want 5", m.Height)
	}
	m, _ = press(t, m, "down", "down", "down", "down", "down", "down")
	if m.Offset != 2 {
		t.Errorf("Offset = %d, want 2", m.Offset)
	}
}

func TestExploreModelQuit(t *testing.T) {
	m := NewExploreModel([]string{"Alice"}, sentence)
	for _, k := range []string{"q", "esc"} {
		_, cmd := m.Update(key(k))
		if cmd == nil {
			t.Fatalf("%s: no command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s did not quit", k)
		}
	}
}

func TestExploreModelEmpty(t *testing.T) {
	m := NewExploreModel(nil, sentence)
	m, cmd := press(t, m, "enter")
	if cmd != nil || m.stage != pickFrom {
		t.Error("enter on an empty list should do nothing")
	}
}
