package recording

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync"
)

const bitsPerSample = 16

// WAVWriter streams 16-bit PCM into a WAV file. The header is written
// with placeholder sizes up front and patched on Close, so the sink
// can accept frames as they arrive from the capture callback.
type WAVWriter struct {
	mu         sync.Mutex
	f          *os.File
	path       string
	sampleRate int
	channels   int
	dataLen    int
	closed     bool
}

func NewWAVWriter(path string, sampleRate, channels int) (*WAVWriter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create audio sink %s: %w", path, err)
	}

	w := &WAVWriter{f: f, path: path, sampleRate: sampleRate, channels: channels}
	if err := w.writeHeader(); err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}
	return w, nil
}

func (w *WAVWriter) Path() string {
	return w.path
}

// Write appends raw PCM samples. Safe to call from the capture
// goroutine; it performs one buffered file write and no other I/O.
func (w *WAVWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return 0, fmt.Errorf("audio sink closed")
	}
	n, err := w.f.Write(p)
	w.dataLen += n
	return n, err
}

// DataBytes is the raw PCM payload size written so far.
func (w *WAVWriter) DataBytes() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dataLen
}

// Duration is the captured audio length based on bytes written.
func (w *WAVWriter) Duration() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	bytesPerSecond := w.sampleRate * w.channels * bitsPerSample / 8
	if bytesPerSecond == 0 {
		return 0
	}
	return float64(w.dataLen) / float64(bytesPerSecond)
}

// Close patches the RIFF and data chunk sizes and flushes the file.
// Idempotent; the file is valid for readers once Close returns.
func (w *WAVWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true

	var sizes [4]byte
	binary.LittleEndian.PutUint32(sizes[:], uint32(36+w.dataLen))
	if _, err := w.f.WriteAt(sizes[:], 4); err != nil {
		w.f.Close()
		return fmt.Errorf("patch RIFF size: %w", err)
	}
	binary.LittleEndian.PutUint32(sizes[:], uint32(w.dataLen))
	if _, err := w.f.WriteAt(sizes[:], 40); err != nil {
		w.f.Close()
		return fmt.Errorf("patch data size: %w", err)
	}

	if err := w.f.Sync(); err != nil {
		w.f.Close()
		return fmt.Errorf("sync audio sink: %w", err)
	}
	return w.f.Close()
}

func (w *WAVWriter) writeHeader() error {
	byteRate := w.sampleRate * w.channels * bitsPerSample / 8
	blockAlign := w.channels * bitsPerSample / 8

	header := make([]byte, 0, 44)
	header = append(header, "RIFF"...)
	header = binary.LittleEndian.AppendUint32(header, 36) // patched on Close
	header = append(header, "WAVE"...)
	header = append(header, "fmt "...)
	header = binary.LittleEndian.AppendUint32(header, 16)
	header = binary.LittleEndian.AppendUint16(header, 1) // PCM
	header = binary.LittleEndian.AppendUint16(header, uint16(w.channels))
	header = binary.LittleEndian.AppendUint32(header, uint32(w.sampleRate))
	header = binary.LittleEndian.AppendUint32(header, uint32(byteRate))
	header = binary.LittleEndian.AppendUint16(header, uint16(blockAlign))
	header = binary.LittleEndian.AppendUint16(header, bitsPerSample)
	header = append(header, "data"...)
	header = binary.LittleEndian.AppendUint32(header, 0) // patched on Close

	if _, err := w.f.Write(header); err != nil {
		return fmt.Errorf("write WAV header: %w", err)
	}
	return nil
}

// EncodeWAV wraps raw 16-bit PCM in a WAV container in memory. The
// realtime worker uses it for per-window temp files.
func EncodeWAV(rawAudio []byte, sampleRate, channels int) []byte {
	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8

	out := make([]byte, 0, 44+len(rawAudio))
	out = append(out, "RIFF"...)
	out = binary.LittleEndian.AppendUint32(out, uint32(36+len(rawAudio)))
	out = append(out, "WAVE"...)
	out = append(out, "fmt "...)
	out = binary.LittleEndian.AppendUint32(out, 16)
	out = binary.LittleEndian.AppendUint16(out, 1)
	out = binary.LittleEndian.AppendUint16(out, uint16(channels))
	out = binary.LittleEndian.AppendUint32(out, uint32(sampleRate))
	out = binary.LittleEndian.AppendUint32(out, uint32(byteRate))
	out = binary.LittleEndian.AppendUint16(out, uint16(blockAlign))
	out = binary.LittleEndian.AppendUint16(out, bitsPerSample)
	out = append(out, "data"...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(rawAudio)))
	out = append(out, rawAudio...)
	return out
}
