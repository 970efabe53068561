package notes

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/illarion/notevault/internal/crypto"
	"github.com/illarion/notevault/internal/index"
	"github.com/illarion/notevault/internal/security"
)

const (
	LandingTitle = "main"
	HeaderPrefix = "title: "
	TimeLayout   = "2006-01-02 15:04:05"
	Extension    = ".txt"
	filePerm     = 0600
)

// Engine resolves titles to files and keeps the index in step.
type Engine struct {
	root  *security.Root
	index *index.ContentIndex
}

// Open returns an engine over the working directory at dir.
func Open(dir string) (*Engine, error) {
	root, err := security.Open(dir)
	if err != nil {
		return nil, err
	}
	return New(root), nil
}

// New returns an engine over an already opened root. Close releases root.
func New(root *security.Root) *Engine {
	return &Engine{
		root:  root,
		index: index.New(root),
	}
}

// Close releases the underlying directory handle.
func (e *Engine) Close() error {
	return e.root.Close()
}

// Resolve maps a title to its storage key.
func (e *Engine) Resolve(title string) string {
	return crypto.DigestString(title)
}

// IsReserved reports whether title is one of the reserved titles.
func IsReserved(title string) bool {
	return title == index.Title || title == LandingTitle
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" || strings.ContainsAny(title, "\r\n") {
		return fmt.Errorf("%w: %q", ErrInvalidTitle, title)
	}
	return nil
}

func fileName(key string) string {
	return key + Extension
}

func (e *Engine) exists(key string) (bool, error) {
	return e.root.Exists(fileName(key))
}

// Create makes a new note with a title header and lists it in the index.
func (e *Engine) Create(title string) (string, error) {
	if err := validateTitle(title); err != nil {
		return "", err
	}
	if IsReserved(title) {
		return "", fmt.Errorf("%w: %s", ErrReservedTitle, title)
	}

	key := e.Resolve(title)
	if err := e.writeNew(key, title); err != nil {
		return "", err
	}
	if err := e.index.Append(title); err != nil {
		// A note file without an index entry is unlisted, so drop it.
		if rmErr := e.root.Remove(fileName(key)); rmErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to remove unindexed note: %w", rmErr))
		}
		return "", err
	}
	return key, nil
}

func (e *Engine) writeNew(key, title string) error {
	f, err := e.root.OpenFile(fileName(key), os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrNoteExists, title)
		}
		return fmt.Errorf("failed to create note: %w", err)
	}
	if _, err := f.WriteString(HeaderPrefix + title + "\n"); err != nil {
		f.Close()
		e.root.Remove(fileName(key))
		return fmt.Errorf("failed to write note header: %w", err)
	}
	return f.Close()
}

// DeleteByTitle removes the note file and its index entry.
func (e *Engine) DeleteByTitle(title string) error {
	if err := validateTitle(title); err != nil {
		return err
	}
	if IsReserved(title) {
		return fmt.Errorf("%w: %s", ErrReservedTitle, title)
	}

	key := e.Resolve(title)
	if err := e.root.Remove(fileName(key)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNoteNotFound, title)
		}
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return e.index.Remove(title)
}

// ListTitles returns the indexed titles in creation order.
func (e *Engine) ListTitles() ([]string, error) {
	return e.index.List()
}

// Select resolves a title to the key of an existing note. The landing
// note can be selected; the index record cannot.
func (e *Engine) Select(title string) (string, error) {
	if err := validateTitle(title); err != nil {
		return "", err
	}
	if title == index.Title {
		return "", fmt.Errorf("%w: %s", ErrReservedTitle, title)
	}

	key := e.Resolve(title)
	ok, err := e.exists(key)
	if err != nil {
		return "", fmt.Errorf("failed to stat note: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoteNotFound, title)
	}
	return key, nil
}

// EnsureLayout creates the index record and landing note when absent.
func (e *Engine) EnsureLayout() error {
	if err := e.index.Ensure(); err != nil {
		return err
	}

	err := e.writeNew(e.Resolve(LandingTitle), LandingTitle)
	if err != nil && !errors.Is(err, ErrNoteExists) {
		return err
	}
	return nil
}

func (e *Engine) readLines(key string) ([]string, error) {
	f, err := e.root.OpenFile(fileName(key), os.O_RDONLY, 0)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoteNotFound, key)
		}
		return nil, fmt.Errorf("failed to open note: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read note: %w", err)
	}
	return lines, nil
}

// TitleHeaderOf returns the title recorded in the note's header line.
func (e *Engine) TitleHeaderOf(key string) (string, error) {
	lines, err := e.readLines(key)
	if err != nil {
		return "", err
	}
	if len(lines) == 0 || !strings.HasPrefix(lines[0], HeaderPrefix) {
		return "", fmt.Errorf("%w: %s", ErrMissingHeader, key)
	}
	return strings.TrimPrefix(lines[0], HeaderPrefix), nil
}

// Body returns the note's lines after the header.
func (e *Engine) Body(key string) ([]string, error) {
	lines, err := e.readLines(key)
	if err != nil {
		return nil, err
	}
	if len(lines) > 0 && strings.HasPrefix(lines[0], HeaderPrefix) {
		lines = lines[1:]
	}
	return lines, nil
}

// Entry formats an appended line stamped with t.
func Entry(t time.Time, text string) string {
	return t.Format(TimeLayout) + " " + text
}
