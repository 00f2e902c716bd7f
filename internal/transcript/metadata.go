package transcript

import (
	"fmt"
	"log"
	"strings"
	"time"
)

// Status is the lifecycle state recorded in a transcript's metadata
// block. A transcript starts as recording and makes exactly one
// forward transition to completed or cancelled.
type Status string

const (
	StatusRecording Status = "recording"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusRecording, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further status transition is allowed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

const (
	delimiter   = "---"
	createdTime = "2006-01-02 15:04"

	// LanguageAuto is the sentinel meaning "detect during transcription".
	LanguageAuto = "auto"
)

// Metadata is the fixed metadata block at the head of every
// transcript file. Tags and Summary are kept as raw serialized values
// because nothing in the recording flow mutates them. Extra holds
// unknown metadata lines verbatim so manual edits survive a rewrite.
type Metadata struct {
	ID       ID
	Type     string
	Status   Status
	Created  time.Time
	Language string
	Tags     string
	Summary  string
	Audio    string // relative path to the archived audio file, empty if none

	Extra []string
}

// NewMetadata returns the metadata block for a freshly created
// transcript.
func NewMetadata(id ID, created time.Time) Metadata {
	return Metadata{
		ID:       id,
		Type:     "voice-note",
		Status:   StatusRecording,
		Created:  created,
		Language: LanguageAuto,
		Tags:     "[]",
		Summary:  `""`,
	}
}

// Serialize renders the metadata block including both delimiter lines
// and the blank line separating it from the body.
func (m Metadata) Serialize() string {
	var b strings.Builder
	b.WriteString(delimiter + "\n")
	fmt.Fprintf(&b, "id: '%s'\n", m.ID)
	fmt.Fprintf(&b, "type: %s\n", m.Type)
	fmt.Fprintf(&b, "status: %s\n", m.Status)
	fmt.Fprintf(&b, "created: %s\n", m.Created.Format(createdTime))
	fmt.Fprintf(&b, "language: %s\n", m.Language)
	fmt.Fprintf(&b, "tags: %s\n", m.Tags)
	fmt.Fprintf(&b, "summary: %s\n", m.Summary)
	if m.Audio != "" {
		fmt.Fprintf(&b, "audio: %s\n", m.Audio)
	}
	for _, line := range m.Extra {
		b.WriteString(line + "\n")
	}
	b.WriteString(delimiter + "\n\n")
	return b.String()
}

// Parse splits raw transcript content into its metadata block and the
// body that follows. The body is returned exactly as stored so
// metadata rewrites copy it through byte-for-byte. The path is only
// used for error reporting.
func Parse(path string, content []byte) (Metadata, string, error) {
	text := string(content)

	if !strings.HasPrefix(text, delimiter+"\n") {
		return Metadata{}, "", &MalformedTranscriptError{Path: path, Reason: "missing opening metadata delimiter"}
	}

	rest := text[len(delimiter)+1:]
	end := strings.Index(rest, "\n"+delimiter+"\n")
	var fields, body string
	if end >= 0 {
		fields = rest[:end+1]
		body = rest[end+1+len(delimiter)+1:]
	} else if strings.HasSuffix(rest, "\n"+delimiter) {
		fields = rest[:len(rest)-len(delimiter)]
		body = ""
	} else {
		return Metadata{}, "", &MalformedTranscriptError{Path: path, Reason: "missing closing metadata delimiter"}
	}

	// Strip the single blank separator line; everything after it is body.
	body = strings.TrimPrefix(body, "\n")

	var m Metadata
	for _, line := range strings.Split(strings.TrimSuffix(fields, "\n"), "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			m.Extra = append(m.Extra, line)
			continue
		}
		value = strings.TrimSpace(value)

		switch strings.TrimSpace(key) {
		case "id":
			id, err := ParseID(strings.Trim(value, "'\""))
			if err != nil {
				return Metadata{}, "", &MalformedTranscriptError{Path: path, Reason: fmt.Sprintf("bad id %q", value)}
			}
			m.ID = id
		case "type":
			m.Type = value
		case "status":
			m.Status = Status(value)
		case "created":
			created, err := time.ParseInLocation(createdTime, value, time.Local)
			if err != nil {
				return Metadata{}, "", &MalformedTranscriptError{Path: path, Reason: fmt.Sprintf("bad created timestamp %q", value)}
			}
			m.Created = created
		case "language":
			m.Language = value
		case "tags":
			m.Tags = value
		case "summary":
			m.Summary = value
		case "audio":
			m.Audio = value
		default:
			// Unknown fields are preserved verbatim, not dropped.
			log.Printf("transcript: unknown metadata field in %s: %q", path, line)
			m.Extra = append(m.Extra, line)
		}
	}

	return m, body, nil
}
