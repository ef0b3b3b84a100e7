package ui

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"formdeck/internal/search"
)

func focusedInput(candidates ...string) *SearchInput {
	s := NewSearchInput("test", candidates)
	s.Focus()
	return s
}

func typeInto(s *SearchInput, text string) []tea.Msg {
	var cmd tea.Cmd
	s, cmd = s.Update(runes(text))
	return runCmd(cmd)
}

func TestSearchInputResults(t *testing.T) {
	t.Run("CappedAtMaxResults", func(t *testing.T) {
		var candidates []string
		for i := 1; i <= 20; i++ {
			candidates = append(candidates, fmt.Sprintf("item %02d", i))
		}
		s := focusedInput(candidates...)
		typeInto(s, "item")

		if got := len(s.Results()); got != search.MaxResults {
			t.Fatalf("expected %d results, got %d", search.MaxResults, got)
		}
		rows := len(strings.Split(plain(s.View()), "\n")) - searchInputChrome
		if rows != search.MaxResults {
			t.Fatalf("expected %d rendered rows, got %d", search.MaxResults, rows)
		}
	})

	t.Run("EmptyQueryStaysClosed", func(t *testing.T) {
		s := focusedInput("apple", "banana")
		if s.IsOpen() {
			t.Fatal("expected closed dropdown for empty query on focus")
		}
		s.Update(keyOf(tea.KeyDown))
		if s.IsOpen() {
			t.Fatal("Down must not open an empty query")
		}
	})

	t.Run("NoMatchesStaysOpen", func(t *testing.T) {
		s := focusedInput("apple", "banana")
		typeInto(s, "zzz")
		if !s.IsOpen() {
			t.Fatal("expected dropdown to stay open with no matches")
		}
		if !strings.Contains(plain(s.View()), "No matches") {
			t.Fatalf("expected no matches hint, got:\n%s", plain(s.View()))
		}
	})

	t.Run("ChangedMessage", func(t *testing.T) {
		s := focusedInput("apple")
		msgs := typeInto(s, "ap")
		changed, ok := findMsg[SearchChangedMsg](msgs)
		if !ok || changed.Value != "ap" || changed.ID != "test" {
			t.Fatalf("expected SearchChangedMsg{test ap}, got %+v", msgs)
		}
	})
}

func TestSearchInputNavigation(t *testing.T) {
	t.Run("DownThenUpReturnsToFirst", func(t *testing.T) {
		s := focusedInput("apple", "apricot", "grape")
		typeInto(s, "ap")
		if s.Active() != 0 {
			t.Fatalf("expected first row active, got %d", s.Active())
		}
		s.Update(keyOf(tea.KeyDown))
		if s.Active() != 1 {
			t.Fatalf("expected second row after Down, got %d", s.Active())
		}
		s.Update(keyOf(tea.KeyUp))
		s.Update(keyOf(tea.KeyUp))
		if s.Active() != 0 {
			t.Fatalf("expected Up to clamp at 0, got %d", s.Active())
		}
	})

	t.Run("EscapeClosesAndKeepsQuery", func(t *testing.T) {
		s := focusedInput("apple")
		typeInto(s, "ap")
		s.Update(keyOf(tea.KeyEsc))
		if s.IsOpen() {
			t.Fatal("expected Esc to close the dropdown")
		}
		if s.Value() != "ap" {
			t.Fatalf("expected query to survive Esc, got %q", s.Value())
		}
	})

	t.Run("EnterWhileClosedConfirms", func(t *testing.T) {
		s := focusedInput("apple")
		_, cmd := s.Update(keyOf(tea.KeyEnter))
		if _, ok := findMsg[SearchConfirmMsg](runCmd(cmd)); !ok {
			t.Fatal("expected SearchConfirmMsg")
		}
	})
}

func TestSearchInputEnterMatchesClick(t *testing.T) {
	candidates := []string{"apple", "apricot", "grape"}

	byKey := focusedInput(candidates...)
	typeInto(byKey, "ap")
	byKey.Update(keyOf(tea.KeyDown))
	_, cmd := byKey.Update(keyOf(tea.KeyEnter))
	keyMsg, ok := findMsg[SearchCommittedMsg](runCmd(cmd))
	if !ok {
		t.Fatal("expected commit from Enter")
	}

	byClick := focusedInput(candidates...)
	typeInto(byClick, "ap")
	clickMsg, ok := findMsg[SearchCommittedMsg](runCmd(byClick.Click(1)))
	if !ok {
		t.Fatal("expected commit from click")
	}

	byMouse := focusedInput(candidates...)
	typeInto(byMouse, "ap")
	_, cmd = byMouse.Update(leftClick(searchInputChrome + 1))
	mouseMsg, ok := findMsg[SearchCommittedMsg](runCmd(cmd))
	if !ok {
		t.Fatal("expected commit from mouse release")
	}

	if keyMsg.Value != clickMsg.Value || clickMsg.Value != mouseMsg.Value {
		t.Fatalf("expected identical commits, got %q %q %q", keyMsg.Value, clickMsg.Value, mouseMsg.Value)
	}
	for _, s := range []*SearchInput{byKey, byClick, byMouse} {
		if s.IsOpen() {
			t.Fatal("expected dropdown closed after commit")
		}
		if s.Value() != keyMsg.Value {
			t.Fatalf("expected input to show %q, got %q", keyMsg.Value, s.Value())
		}
		if s.Commits() != 1 {
			t.Fatalf("expected one commit, got %d", s.Commits())
		}
		if !s.Focused() {
			t.Fatal("expected focus to stay on the input")
		}
	}
}

func TestSearchInputRowAt(t *testing.T) {
	s := focusedInput("apple", "apricot")
	typeInto(s, "ap")
	if _, ok := s.RowAt(0); ok {
		t.Fatal("input chrome is not a result row")
	}
	if row, ok := s.RowAt(searchInputChrome); !ok || row != 0 {
		t.Fatalf("expected first row, got %d %v", row, ok)
	}
	if _, ok := s.RowAt(searchInputChrome + 5); ok {
		t.Fatal("expected rows past the results to miss")
	}
}
