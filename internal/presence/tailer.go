package presence

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"
)

func NewTailer(path string) *Tailer {
	return &Tailer{Path: path}
}

// Poll returns the whole lines appended since the previous call. A missing
// file yields nothing. A file left untouched since the last poll is not read.
// reset reports that the file shrank below Offset and was read from the start.
func (t *Tailer) Poll() (lines []string, reset bool, err error) {
	info, err := os.Stat(t.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if info.ModTime().Equal(t.modTime) && info.Size() == t.size {
		return nil, false, nil
	}

	offset := t.Offset
	if info.Size() < offset {
		offset = 0
		reset = true
	}
	// Offset only moves once the read succeeds
	lines, err = t.readFrom(offset)
	if err != nil {
		return nil, false, err
	}
	t.modTime = info.ModTime()
	t.size = info.Size()
	return lines, reset, nil
}

// ReadAll reads the file from the beginning and leaves Offset after the last
// whole line, ready for Poll.
func (t *Tailer) ReadAll() ([]string, error) {
	info, err := os.Stat(t.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			t.Offset = 0
			return nil, nil
		}
		return nil, err
	}
	lines, err := t.readFrom(0)
	if err != nil {
		return nil, err
	}
	t.modTime = info.ModTime()
	t.size = info.Size()
	return lines, nil
}

func (t *Tailer) readFrom(offset int64) ([]string, error) {
	file, err := os.Open(t.Path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}
	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	// a trailing partial line stays unread until its newline arrives
	end := bytes.LastIndexByte(raw, '\n')
	if end < 0 {
		t.Offset = offset
		return nil, nil
	}
	t.Offset = offset + int64(end+1)
	return splitLines(raw[:end]), nil
}

func splitLines(chunk []byte) []string {
	parts := strings.Split(string(chunk), "\n")
	lines := make([]string, 0, len(parts))
	for _, part := range parts {
		line := NormalizeLogLine(part)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func NormalizeLogLine(line string) string {
	line = strings.ToValidUTF8(line, "")
	line = strings.TrimPrefix(line, "\ufeff")
	return strings.TrimRight(line, "\r")
}
