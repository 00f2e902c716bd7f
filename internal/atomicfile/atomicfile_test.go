package atomicfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFile(t *testing.T) {
	t.Run("creates new file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "note.md")

		if err := WriteFile(path, []byte("hello"), 0o644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}

		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read back failed: %v", err)
		}
		if string(got) != "hello" {
			t.Errorf("content mismatch: got %q", got)
		}
	})

	t.Run("replaces existing content entirely", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "note.md")

		if err := WriteFile(path, []byte("first version"), 0o644); err != nil {
			t.Fatalf("first write failed: %v", err)
		}
		if err := WriteFile(path, []byte("v2"), 0o644); err != nil {
			t.Fatalf("second write failed: %v", err)
		}

		got, _ := os.ReadFile(path)
		if string(got) != "v2" {
			t.Errorf("expected full replacement, got %q", got)
		}
	})

	t.Run("creates missing parent directory", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "nested", "deeper", "note.md")

		if err := WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("file not created: %v", err)
		}
	})

	t.Run("leaves no temp files behind", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "note.md")

		for i := 0; i < 5; i++ {
			if err := WriteFile(path, []byte("content"), 0o644); err != nil {
				t.Fatalf("WriteFile failed: %v", err)
			}
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("read dir failed: %v", err)
		}
		for _, e := range entries {
			if strings.Contains(e.Name(), ".tmp-") {
				t.Errorf("temp file left behind: %s", e.Name())
			}
		}
		if len(entries) != 1 {
			t.Errorf("expected exactly one file, got %d", len(entries))
		}
	})

	t.Run("failed write leaves target untouched", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "note.md")

		if err := WriteFile(path, []byte("original"), 0o644); err != nil {
			t.Fatalf("setup write failed: %v", err)
		}

		// Make the directory unwritable so the temp file cannot be created.
		if err := os.Chmod(dir, 0o500); err != nil {
			t.Fatalf("chmod failed: %v", err)
		}
		defer os.Chmod(dir, 0o755)

		if err := WriteFile(path, []byte("replacement"), 0o644); err == nil {
			t.Skip("running as privileged user, cannot simulate write failure")
		}

		os.Chmod(dir, 0o755)
		got, _ := os.ReadFile(path)
		if string(got) != "original" {
			t.Errorf("target modified by failed write: got %q", got)
		}
	})

	t.Run("crash before rename leaves target at previous content", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "note.md")

		if err := WriteFile(path, []byte("original"), 0o644); err != nil {
			t.Fatalf("setup write failed: %v", err)
		}

		// Simulate a process that died after fully writing its temp
		// file but before the rename: the stray temp sits beside the
		// target with the would-be replacement content.
		stray := filepath.Join(dir, "note.md.tmp-123456")
		if err := os.WriteFile(stray, []byte("replacement"), 0o644); err != nil {
			t.Fatalf("write stray temp: %v", err)
		}

		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read back failed: %v", err)
		}
		if string(got) != "original" {
			t.Errorf("target should hold pre-crash content, got %q", got)
		}

		// Later writes replace the target normally and never pick the
		// stray temp up.
		if err := WriteFile(path, []byte("next"), 0o644); err != nil {
			t.Fatalf("write after crash failed: %v", err)
		}
		got, _ = os.ReadFile(path)
		if string(got) != "next" {
			t.Errorf("post-crash write lost: got %q", got)
		}
	})

	t.Run("applies requested permissions", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "note.md")

		if err := WriteFile(path, []byte("x"), 0o600); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat failed: %v", err)
		}
		if info.Mode().Perm() != 0o600 {
			t.Errorf("perm mismatch: got %v, expected 0600", info.Mode().Perm())
		}
	})
}
