// Package testutil provides shared test helpers for building temporary
// note graph stores and fixture subtrees.
package testutil

import (
	"os"
	"testing"

	"github.com/brodal/ratatosk/internal/graph"
)

// TestStore creates a temporary SQLite graph store that is automatically
// cleaned up.
func TestStore(t *testing.T) *graph.Store {
	t.Helper()
	dbFile, err := os.CreateTemp("", "ratatosk-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	store, err := graph.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// TestCache builds a cache over the store with the initial snapshot loaded.
func TestCache(t *testing.T, store *graph.Store) *graph.Cache {
	t.Helper()
	cache, err := graph.NewCache(store, nil)
	if err != nil {
		t.Fatal(err)
	}
	return cache
}

// MustCreateNote creates a note under parentID and fails the test on error.
// Pass noteID explicitly so fixtures stay readable; position defaults to
// the order of creation when callers pass increasing values.
func MustCreateNote(t *testing.T, store *graph.Store, parentID, noteID, title, content string, position int) string {
	t.Helper()
	id, err := store.CreateNote(graph.Note{NoteID: noteID, Title: title, Content: content}, parentID, position)
	if err != nil {
		t.Fatalf("create note %s: %v", noteID, err)
	}
	return id
}

// MustLabel attaches a label to a note and fails the test on error.
func MustLabel(t *testing.T, store *graph.Store, noteID, name, value string, inheritable bool) {
	t.Helper()
	_, err := store.SetAttribute(graph.Attribute{
		NoteID:      noteID,
		Type:        graph.AttrLabel,
		Name:        name,
		Value:       value,
		Inheritable: inheritable,
	})
	if err != nil {
		t.Fatalf("set label %s on %s: %v", name, noteID, err)
	}
}

// MustRelation attaches a relation to a note and fails the test on error.
func MustRelation(t *testing.T, store *graph.Store, noteID, name, targetNoteID string) {
	t.Helper()
	_, err := store.SetAttribute(graph.Attribute{
		NoteID: noteID,
		Type:   graph.AttrRelation,
		Name:   name,
		Value:  targetNoteID,
	})
	if err != nil {
		t.Fatalf("set relation %s on %s: %v", name, noteID, err)
	}
}
