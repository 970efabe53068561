package notes

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// Appender adds lines to the end of one note.
type Appender struct {
	f   *os.File
	key string
}

// OpenForAppend opens an existing note for appending.
func (e *Engine) OpenForAppend(key string) (*Appender, error) {
	f, err := e.root.OpenFile(fileName(key), os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoteNotFound, key)
		}
		return nil, fmt.Errorf("failed to open note: %w", err)
	}
	return &Appender{f: f, key: key}, nil
}

// Key returns the storage key of the open note.
func (a *Appender) Key() string {
	return a.key
}

// Append writes line followed by a newline. Embedded line breaks are
// flattened so every entry stays one line.
func (a *Appender) Append(line string) error {
	line = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(line)
	if _, err := a.f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("failed to append to note: %w", err)
	}
	return nil
}

// Close closes the note file.
func (a *Appender) Close() error {
	return a.f.Close()
}
