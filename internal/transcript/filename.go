package transcript

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"
)

// IDWidth is the zero-padded width of transcript IDs in filenames and
// metadata.
const IDWidth = 6

// ID is a sequential transcript identifier, unique within a storage
// directory and never reused.
type ID int

func (id ID) String() string {
	return fmt.Sprintf("%0*d", IDWidth, int(id))
}

// ParseID parses a user-supplied or embedded ID. Flexible input like
// "1" is accepted and normalized to the padded form by String.
func ParseID(s string) (ID, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid transcript id %q", s)
	}
	return ID(n), nil
}

// Shape identifies which of the two historical filename layouts a
// transcript file uses. Only ShapeCurrent is produced for new files;
// ShapeLegacy is still recognized when scanning directories.
type Shape int

const (
	ShapeCurrent Shape = iota // 000001_transcript_20240115.md
	ShapeLegacy               // transcript_20240115_000001.md
)

var (
	currentPattern = regexp.MustCompile(`^(\d{6})_transcript_(\d{8})\.md$`)
	legacyPattern  = regexp.MustCompile(`^transcript_(\d{8})_(\d{6})\.md$`)
)

// Name holds the components parsed out of a transcript filename.
type Name struct {
	ID    ID
	Date  string // YYYYMMDD as embedded in the filename
	Shape Shape
}

// ParseName parses a transcript filename in either historical shape.
// The boolean is false for files that are not transcripts; that is
// never an error, directories hold other files too.
func ParseName(name string) (Name, bool) {
	if m := currentPattern.FindStringSubmatch(name); m != nil {
		id, err := ParseID(m[1])
		if err != nil {
			return Name{}, false
		}
		return Name{ID: id, Date: m[2], Shape: ShapeCurrent}, true
	}
	if m := legacyPattern.FindStringSubmatch(name); m != nil {
		id, err := ParseID(m[2])
		if err != nil {
			return Name{}, false
		}
		return Name{ID: id, Date: m[1], Shape: ShapeLegacy}, true
	}
	return Name{}, false
}

// Filename renders the canonical (current-shape) filename for this
// name's ID and date.
func (n Name) Filename() string {
	return fmt.Sprintf("%s_transcript_%s.md", n.ID, n.Date)
}

// NewName returns a current-shape name for the given ID and creation
// date.
func NewName(id ID, created time.Time) Name {
	return Name{ID: id, Date: created.Format("20060102"), Shape: ShapeCurrent}
}

// AudioFilename is the archive filename for the session's audio,
// placed next to the transcript.
func (n Name) AudioFilename() string {
	return fmt.Sprintf("%s_audio_%s.wav", n.ID, n.Date)
}

// MigrationResult summarizes a filename migration pass.
type MigrationResult struct {
	Operations [][2]string // old name, new name
	Renamed    int
	Errors     []string
}

// Migrate renames legacy-shape transcript files in dir to the current
// shape. With dryRun set it only reports what would change. Files
// whose target name already exists are reported as errors and left in
// place.
func Migrate(dir string, dryRun bool) (MigrationResult, error) {
	var result MigrationResult

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return result, nil
		}
		return result, fmt.Errorf("read directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name, ok := ParseName(entry.Name())
		if !ok || name.Shape != ShapeLegacy {
			continue
		}

		newName := name.Filename()
		result.Operations = append(result.Operations, [2]string{entry.Name(), newName})

		newPath := filepath.Join(dir, newName)
		if _, err := os.Stat(newPath); err == nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: target %s already exists", entry.Name(), newName))
			continue
		}

		if dryRun {
			result.Renamed++
			continue
		}

		if err := os.Rename(filepath.Join(dir, entry.Name()), newPath); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", entry.Name(), err))
			continue
		}
		log.Printf("transcript: migrated %s -> %s", entry.Name(), newName)
		result.Renamed++
	}

	return result, nil
}
