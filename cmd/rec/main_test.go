package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rejoice-cli/rejoice/internal/transcript"
)

// setupEnv sandboxes config and storage into per-test temp dirs via
// the environment overrides the config loader honors.
func setupEnv(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	saveDir := t.TempDir()
	t.Setenv("REJOICE_OUTPUT_SAVE_PATH", saveDir)
	return saveDir
}

func seedTranscript(t *testing.T, dir, text string) (string, transcript.ID) {
	t.Helper()
	path, id, err := transcript.Create(dir)
	if err != nil {
		t.Fatalf("create transcript: %v", err)
	}
	if text != "" {
		if err := transcript.NewStore(path).Append(text); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	return path, id
}

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	out, _ := io.ReadAll(r)
	return string(out)
}

func TestCountWords(t *testing.T) {
	dir := setupEnv(t)
	path, _ := seedTranscript(t, dir, "one two three")

	if got := countWords(path); got != 3 {
		t.Errorf("countWords = %d, want 3", got)
	}

	t.Run("missing file counts zero", func(t *testing.T) {
		if got := countWords(filepath.Join(dir, "nope.md")); got != 0 {
			t.Errorf("countWords = %d, want 0", got)
		}
	})
}

func TestRunView(t *testing.T) {
	dir := setupEnv(t)
	_, id := seedTranscript(t, dir, "the spoken words")

	t.Run("by id", func(t *testing.T) {
		out := captureOutput(t, func() {
			if err := runView(id.String(), false, false); err != nil {
				t.Errorf("runView failed: %v", err)
			}
		})
		if !strings.Contains(out, "the spoken words") {
			t.Errorf("output should contain the body, got: %q", out)
		}
		if strings.Contains(out, "type: voice-note") {
			t.Error("metadata should be hidden by default")
		}
	})

	t.Run("latest", func(t *testing.T) {
		out := captureOutput(t, func() {
			if err := runView("latest", false, false); err != nil {
				t.Errorf("runView failed: %v", err)
			}
		})
		if !strings.Contains(out, "the spoken words") {
			t.Errorf("output should contain the body, got: %q", out)
		}
	})

	t.Run("with frontmatter", func(t *testing.T) {
		out := captureOutput(t, func() {
			if err := runView(id.String(), true, false); err != nil {
				t.Errorf("runView failed: %v", err)
			}
		})
		if !strings.Contains(out, "type: voice-note") {
			t.Errorf("metadata block should be shown, got: %q", out)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		if err := runView("999999", false, false); err == nil {
			t.Error("unknown id should error")
		}
	})
}

func TestRunViewEmptyDirectory(t *testing.T) {
	setupEnv(t)

	out := captureOutput(t, func() {
		if err := runView("latest", false, false); err != nil {
			t.Errorf("viewing latest in empty dir should not error: %v", err)
		}
	})
	if !strings.Contains(out, "No transcripts") {
		t.Errorf("expected empty notice, got %q", out)
	}
}

func TestListCommand(t *testing.T) {
	dir := setupEnv(t)
	seedTranscript(t, dir, "first")
	seedTranscript(t, dir, "second")

	out := captureOutput(t, func() {
		cmd := listCmd()
		if err := cmd.Execute(); err != nil {
			t.Errorf("list failed: %v", err)
		}
	})

	if !strings.Contains(out, "000000") || !strings.Contains(out, "000001") {
		t.Errorf("list should show both IDs, got:\n%s", out)
	}
	if !strings.Contains(out, time.Now().Format("2006-01-02")) {
		t.Errorf("list should show formatted dates, got:\n%s", out)
	}
}

func TestListCommandEmpty(t *testing.T) {
	setupEnv(t)

	out := captureOutput(t, func() {
		cmd := listCmd()
		if err := cmd.Execute(); err != nil {
			t.Errorf("list failed: %v", err)
		}
	})
	if !strings.Contains(out, "No recordings") {
		t.Errorf("expected empty notice, got %q", out)
	}
}

func TestRunMigrate(t *testing.T) {
	t.Run("requires exactly one mode flag", func(t *testing.T) {
		setupEnv(t)
		if err := runMigrate(false, false); err == nil {
			t.Error("no flags should be rejected")
		}
		if err := runMigrate(true, true); err == nil {
			t.Error("both flags should be rejected")
		}
	})

	t.Run("dry run leaves files untouched", func(t *testing.T) {
		dir := setupEnv(t)
		legacy := "transcript_20240115_000004.md"
		content := "---\nid: '000004'\ntype: voice-note\nstatus: completed\ncreated: 2024-01-15 10:00\nlanguage: en\ntags: []\nsummary: \"\"\n---\n\nbody\n"
		if err := os.WriteFile(filepath.Join(dir, legacy), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}

		out := captureOutput(t, func() {
			if err := runMigrate(true, false); err != nil {
				t.Errorf("dry run failed: %v", err)
			}
		})

		if !strings.Contains(out, "Would rename 1") {
			t.Errorf("dry run should report the pending rename, got:\n%s", out)
		}
		if _, err := os.Stat(filepath.Join(dir, legacy)); err != nil {
			t.Errorf("dry run must not rename files: %v", err)
		}
	})
}

func TestRootCommandWiring(t *testing.T) {
	cmd := rootCmd()

	want := map[string]bool{"list": false, "view": false, "migrate": false, "config": false, "doctor": false, "version": false}
	for _, sub := range cmd.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("root command missing subcommand %q", name)
		}
	}

	if cmd.PersistentFlags().Lookup("language") == nil {
		t.Error("root command should expose --language")
	}
}
