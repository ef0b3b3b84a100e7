package docstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	appErrors "formdeck/internal/errors"
)

// Tree is a nested entry to write under an existing parent.
type Tree struct {
	Text     string
	Children []Tree
}

// NewID returns a fresh node identifier.
func NewID() string {
	return uuid.NewString()
}

// WriteTree creates t and its descendants under parentID, preserving
// order, and returns the uid of the root entry.
func WriteTree(ctx context.Context, s Store, parentID string, t Tree) (string, error) {
	id := NewID()
	if err := s.CreateEntry(ctx, parentID, id, t.Text); err != nil {
		return "", fmt.Errorf("create entry %q: %w", t.Text, err)
	}
	for _, child := range t.Children {
		if _, err := WriteTree(ctx, s, id, child); err != nil {
			return "", err
		}
	}
	return id, nil
}

// DailyID is the container uid of the daily page for day, e.g. 10-19-2026.
func DailyID(day time.Time) string {
	return day.Format("01-02-2006")
}

// DailyTitle is the title of the daily page for day, e.g.
// "October 19th, 2026".
func DailyTitle(day time.Time) string {
	return fmt.Sprintf("%s %d%s, %d", day.Month(), day.Day(), ordinalSuffix(day.Day()), day.Year())
}

func ordinalSuffix(n int) string {
	if n%100 >= 11 && n%100 <= 13 {
		return "th"
	}
	switch n % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	}
	return "th"
}

// EnsureDaily creates the daily container for day if it does not exist yet
// and returns its uid.
func EnsureDaily(ctx context.Context, s Store, day time.Time) (string, error) {
	id := DailyID(day)
	if s.ResolveExists(ctx, id) {
		return id, nil
	}
	err := s.CreateContainer(ctx, id, DailyTitle(day))
	if err != nil && !appErrors.IsCode(err, appErrors.CodeAlreadyExists) {
		return "", err
	}
	return id, nil
}
