package graph

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"
)

func TestWatch_MarksStaleOnDBWrite(t *testing.T) {
	dbFile, err := os.CreateTemp("", "ratatosk-watch-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	store, err := Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	cache, err := NewCache(store, nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notified := make(chan struct{}, 8)
	go func() {
		_ = Watch(ctx, cache, dbFile.Name(), slog.Default(), func() {
			select {
			case notified <- struct{}{}:
			default:
			}
		})
	}()

	// Let the watcher install itself before writing.
	time.Sleep(100 * time.Millisecond)

	mustNote(t, store, RootNoteID, "watched", "Watched", 10)

	deadline := time.After(3 * time.Second)
	for !cache.Stale() {
		select {
		case <-deadline:
			t.Fatal("cache never marked stale after db write")
		case <-time.After(50 * time.Millisecond):
		}
	}

	select {
	case <-notified:
	case <-time.After(time.Second):
		t.Fatal("stale callback never invoked")
	}

	// The stale snapshot resolves on the next freshness check.
	snap, err := cache.EnsureFresh(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if snap.GetNote("watched") == nil {
		t.Error("reloaded snapshot missing new note")
	}
}
