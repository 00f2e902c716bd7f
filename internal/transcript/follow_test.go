package transcript

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFollow(t *testing.T) {
	t.Run("fires on append", func(t *testing.T) {
		dir := t.TempDir()
		path, _, err := Create(dir)
		if err != nil {
			t.Fatal(err)
		}
		store := NewStore(path)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changed := make(chan struct{}, 16)
		done := make(chan error, 1)
		go func() {
			done <- Follow(ctx, path, func() {
				select {
				case changed <- struct{}{}:
				default:
				}
			})
		}()

		// Give the watcher a moment to attach before mutating.
		time.Sleep(50 * time.Millisecond)
		if err := store.Append("hello"); err != nil {
			t.Fatal(err)
		}

		select {
		case <-changed:
		case <-time.After(2 * time.Second):
			t.Fatal("no change notification after append")
		}

		cancel()
		select {
		case err := <-done:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("follow returned %v, want context.Canceled", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("follow did not return after cancel")
		}
	})

	t.Run("ignores sibling files", func(t *testing.T) {
		dir := t.TempDir()
		path, _, err := Create(dir)
		if err != nil {
			t.Fatal(err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changed := make(chan struct{}, 16)
		go Follow(ctx, path, func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})

		time.Sleep(50 * time.Millisecond)
		if _, _, err := Create(dir); err != nil {
			t.Fatal(err)
		}

		select {
		case <-changed:
			t.Fatal("notification fired for an unrelated file")
		case <-time.After(300 * time.Millisecond):
		}
	})

	t.Run("missing directory errors", func(t *testing.T) {
		ctx := context.Background()
		err := Follow(ctx, "/nonexistent-dir-for-sure/file.md", func() {})
		if err == nil {
			t.Fatal("expected error for missing watch directory")
		}
	})
}
