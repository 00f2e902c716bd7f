package transcript

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rejoice-cli/rejoice/internal/atomicfile"
)

const filePerm = 0o644

// maxCreateAttempts bounds the collision retry loop in Create.
const maxCreateAttempts = 1000

// NextID scans dir for transcript files in either filename shape and
// returns one greater than the maximum ID found. An absent or empty
// directory yields the zero ID. Non-matching files are ignored.
func NextID(dir string) ID {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}

	maxID := ID(-1)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name, ok := ParseName(entry.Name())
		if !ok {
			continue
		}
		if name.ID > maxID {
			maxID = name.ID
		}
	}
	return maxID + 1
}

// Create allocates a fresh ID and writes an initial transcript with
// status recording to dir. The file is durable before any audio is
// touched. On filename collision the candidate ID is bumped and the
// attempt repeated, up to maxCreateAttempts.
func Create(dir string) (string, ID, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, &DurabilityError{Path: dir, Err: fmt.Errorf("create save directory: %w", err)}
	}

	now := time.Now()
	id := NextID(dir)
	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		name := NewName(id, now)
		path := filepath.Join(dir, name.Filename())

		if _, err := os.Stat(path); err == nil {
			// Raced with another process, or a gap-filling ID already
			// taken under a different date. Try the next one.
			id++
			continue
		}

		meta := NewMetadata(id, now)
		if err := atomicfile.WriteFile(path, []byte(meta.Serialize()), filePerm); err != nil {
			return "", 0, &DurabilityError{Path: path, Err: err}
		}
		return path, id, nil
	}

	return "", 0, &DurabilityError{
		Path: dir,
		Err:  fmt.Errorf("no unique transcript filename after %d attempts", maxCreateAttempts),
	}
}

// Store serializes all mutations of a single transcript file. The
// realtime worker and the final transcription pass share one Store so
// the file never has two concurrent writers; separate transcripts use
// separate Stores and proceed fully in parallel.
type Store struct {
	path string
	mu   sync.Mutex
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Append adds text as a new line at the end of the body, ensuring
// exactly one newline before the insertion point, and rewrites the
// file atomically.
func (s *Store) Append(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	content, err := os.ReadFile(s.path)
	if err != nil {
		return &DurabilityError{Path: s.path, Err: fmt.Errorf("read for append: %w", err)}
	}

	updated := strings.TrimRight(string(content), "\n") + "\n" + text + "\n"
	if err := atomicfile.WriteFile(s.path, []byte(updated), filePerm); err != nil {
		return &DurabilityError{Path: s.path, Err: err}
	}
	return nil
}

// SetStatus performs the transcript's single forward status
// transition. Transitions out of a terminal status are rejected.
func (s *Store) SetStatus(status Status) error {
	if !status.Valid() {
		return fmt.Errorf("invalid status %q", status)
	}
	return s.mutate(func(m *Metadata) error {
		if m.Status.Terminal() && m.Status != status {
			return fmt.Errorf("transcript already finalized as %s", m.Status)
		}
		m.Status = status
		return nil
	})
}

// SetLanguage records the effective transcription language.
func (s *Store) SetLanguage(language string) error {
	if language == "" {
		return fmt.Errorf("empty language")
	}
	return s.mutate(func(m *Metadata) error {
		m.Language = language
		return nil
	})
}

// SetAudioFile records the relative path of the archived audio file.
func (s *Store) SetAudioFile(relPath string) error {
	return s.mutate(func(m *Metadata) error {
		m.Audio = relPath
		return nil
	})
}

// Read returns the current metadata and body.
func (s *Store) Read() (Metadata, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	content, err := os.ReadFile(s.path)
	if err != nil {
		return Metadata{}, "", &DurabilityError{Path: s.path, Err: err}
	}
	return Parse(s.path, content)
}

// mutate applies fn to the parsed metadata and rewrites the file with
// the body copied through unchanged.
func (s *Store) mutate(fn func(*Metadata) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	content, err := os.ReadFile(s.path)
	if err != nil {
		return &DurabilityError{Path: s.path, Err: fmt.Errorf("read for metadata update: %w", err)}
	}

	meta, body, err := Parse(s.path, content)
	if err != nil {
		return err
	}
	if err := fn(&meta); err != nil {
		return err
	}

	updated := meta.Serialize() + body
	if err := atomicfile.WriteFile(s.path, []byte(updated), filePerm); err != nil {
		return &DurabilityError{Path: s.path, Err: err}
	}
	return nil
}

// Entry describes one transcript file found by List.
type Entry struct {
	Path string
	Name Name
}

// List returns the transcripts in dir, newest first (by embedded
// date, then ID). Non-transcript files are skipped.
func List(dir string) ([]Entry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	var out []Entry
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name, ok := ParseName(entry.Name())
		if !ok {
			continue
		}
		out = append(out, Entry{Path: filepath.Join(dir, entry.Name()), Name: name})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name.Date != out[j].Name.Date {
			return out[i].Name.Date > out[j].Name.Date
		}
		return out[i].Name.ID > out[j].Name.ID
	})
	return out, nil
}

// FindByID resolves a transcript by ID in either filename shape.
func FindByID(dir string, id ID) (Entry, bool, error) {
	entries, err := List(dir)
	if err != nil {
		return Entry{}, false, err
	}
	for _, e := range entries {
		if e.Name.ID == id {
			return e, true, nil
		}
	}
	return Entry{}, false, nil
}

// Latest returns the most recent transcript in dir.
func Latest(dir string) (Entry, bool, error) {
	entries, err := List(dir)
	if err != nil {
		return Entry{}, false, err
	}
	if len(entries) == 0 {
		return Entry{}, false, nil
	}
	return entries[0], true, nil
}
