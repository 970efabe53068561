package notes

import (
	"errors"
	"fmt"
	"strings"

	"github.com/illarion/notevault/internal/index"
)

// ProblemKind classifies an inconsistency between files and index.
type ProblemKind int

const (
	// MissingFile is an index entry with no backing note file.
	MissingFile ProblemKind = iota
	// Unindexed is a note file whose title is not in the index.
	Unindexed
	// BadHeader is a note file without a readable title header.
	BadHeader
)

func (k ProblemKind) String() string {
	switch k {
	case MissingFile:
		return "missing file"
	case Unindexed:
		return "not indexed"
	case BadHeader:
		return "bad header"
	default:
		return "unknown"
	}
}

// Problem describes one inconsistency found by Check.
type Problem struct {
	Kind  ProblemKind
	Title string
	File  string
}

func (p Problem) String() string {
	if p.Title != "" {
		return fmt.Sprintf("%s: %q (%s)", p.Kind, p.Title, p.File)
	}
	return fmt.Sprintf("%s: %s", p.Kind, p.File)
}

// Check compares the index with the note files on disk.
func (e *Engine) Check() ([]Problem, error) {
	titles, err := e.index.List()
	if err != nil {
		return nil, err
	}

	var problems []Problem
	indexed := make(map[string]bool, len(titles))
	for _, title := range titles {
		key := e.Resolve(title)
		indexed[fileName(key)] = true

		ok, err := e.exists(key)
		if err != nil {
			return nil, fmt.Errorf("failed to stat note: %w", err)
		}
		if !ok {
			problems = append(problems, Problem{Kind: MissingFile, Title: title, File: fileName(key)})
		}
	}

	entries, err := e.root.Entries()
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	landing := fileName(e.Resolve(LandingTitle))
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() || !strings.HasSuffix(name, Extension) {
			continue
		}
		if name == index.FileName() || name == landing || indexed[name] {
			continue
		}

		key := strings.TrimSuffix(name, Extension)
		title, err := e.TitleHeaderOf(key)
		if err != nil {
			if !errors.Is(err, ErrMissingHeader) {
				return nil, err
			}
			problems = append(problems, Problem{Kind: BadHeader, File: name})
			continue
		}
		problems = append(problems, Problem{Kind: Unindexed, Title: title, File: name})
	}

	return problems, nil
}
