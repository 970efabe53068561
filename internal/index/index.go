// Package index maintains the ordered list of note titles.
//
// The index is a plain record file inside the working directory holding
// one title per line in insertion order. It is sealed and unsealed along
// with every note.
package index

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/illarion/notevault/internal/crypto"
	"github.com/illarion/notevault/internal/security"
)

// Title is the reserved title under which the index itself is stored.
const Title = "contents"

const filePerm = 0600

// FileName returns the record file name for the index.
func FileName() string {
	return crypto.DigestString(Title) + ".txt"
}

// ContentIndex reads and rewrites the index record.
type ContentIndex struct {
	root *security.Root
	name string
}

// New returns an index stored inside root.
func New(root *security.Root) *ContentIndex {
	return &ContentIndex{
		root: root,
		name: FileName(),
	}
}

// Name returns the index file name.
func (c *ContentIndex) Name() string {
	return c.name
}

// Ensure creates an empty index record if none exists.
func (c *ContentIndex) Ensure() error {
	exists, err := c.root.Exists(c.name)
	if err != nil {
		return fmt.Errorf("failed to stat index: %w", err)
	}
	if exists {
		return nil
	}
	return c.root.WriteFile(c.name, nil, filePerm)
}

// List returns the titles in insertion order. A missing record reads as
// an empty index.
func (c *ContentIndex) List() ([]string, error) {
	data, err := c.root.ReadFile(c.name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read index: %w", err)
	}

	titles := []string{}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		titles = append(titles, line)
	}
	return titles, nil
}

// Contains reports whether title is listed.
func (c *ContentIndex) Contains(title string) (bool, error) {
	titles, err := c.List()
	if err != nil {
		return false, err
	}
	for _, t := range titles {
		if t == title {
			return true, nil
		}
	}
	return false, nil
}

// Append adds title at the end of the index. Appending a listed title is
// a no-op.
func (c *ContentIndex) Append(title string) error {
	titles, err := c.List()
	if err != nil {
		return err
	}
	for _, t := range titles {
		if t == title {
			return nil
		}
	}
	return c.write(append(titles, title))
}

// Remove drops every occurrence of title. Removing an absent title is a
// no-op.
func (c *ContentIndex) Remove(title string) error {
	titles, err := c.List()
	if err != nil {
		return err
	}

	kept := titles[:0]
	for _, t := range titles {
		if t != title {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(titles) {
		return nil
	}
	return c.write(kept)
}

func (c *ContentIndex) write(titles []string) error {
	var b strings.Builder
	for _, t := range titles {
		b.WriteString(t)
		b.WriteByte('\n')
	}
	if err := c.root.WriteFile(c.name, []byte(b.String()), filePerm); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}
	return nil
}
