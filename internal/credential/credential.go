// Package credential stores and verifies the password digests that gate
// access to notevault.
//
// Two slots exist: the primary credential chosen by the user and a master
// credential generated by the system for recovery. Either one verifies a
// session. Each slot is a single hex digest file; writing replaces the
// previous value and keeps no history.
package credential

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/illarion/notevault/internal/crypto"
)

const (
	PrimaryFile    = "SHApassword.txt"
	MasterFile     = "SHAmasterpassword.txt"
	FilePermSecure = 0600
	MasterLength   = 32
)

var ErrNotInitialized = errors.New("credential files not found")

// Slot selects which credential a write replaces.
type Slot int

const (
	Primary Slot = iota
	Master
)

func (s Slot) String() string {
	switch s {
	case Primary:
		return "primary"
	case Master:
		return "master"
	default:
		return fmt.Sprintf("slot(%d)", int(s))
	}
}

// Store reads and writes the credential digests inside one directory.
type Store struct {
	dir string
}

// New returns a Store rooted at dir. The digest files are not touched.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the directory holding the digest files.
func (s *Store) Dir() string {
	return s.dir
}

// Init creates the directory and empty digest files if they are absent.
// Existing files are left as they are.
func (s *Store) Init() error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create credential directory: %w", err)
	}
	for _, slot := range []Slot{Primary, Master} {
		f, err := os.OpenFile(s.path(slot), os.O_CREATE|os.O_WRONLY, FilePermSecure)
		if err != nil {
			return fmt.Errorf("failed to create %s credential file: %w", slot, err)
		}
		f.Close()
	}
	return nil
}

// Write stores the digest of password in slot, replacing any prior value.
func (s *Store) Write(password []byte, slot Slot) error {
	if _, err := os.Stat(s.dir); err != nil {
		return ErrNotInitialized
	}
	digest := crypto.Digest(password)
	if err := os.WriteFile(s.path(slot), []byte(digest), FilePermSecure); err != nil {
		return fmt.Errorf("failed to write %s credential: %w", slot, err)
	}
	return nil
}

// Verify reports whether password matches the primary or master digest.
// A mismatch is a normal outcome and returns false with a nil error.
func (s *Store) Verify(password []byte) (bool, error) {
	primary, err := s.read(Primary)
	if err != nil {
		return false, err
	}
	master, err := s.read(Master)
	if err != nil {
		return false, err
	}

	digest := []byte(crypto.Digest(password))
	primaryOK := primary != "" && crypto.ConstantTimeCompare(digest, []byte(primary))
	masterOK := master != "" && crypto.ConstantTimeCompare(digest, []byte(master))
	return primaryOK || masterOK, nil
}

// IsFirstRun reports whether the primary digest file exists but is empty.
func (s *Store) IsFirstRun() (bool, error) {
	primary, err := s.read(Primary)
	if err != nil {
		return false, err
	}
	return primary == "", nil
}

// PrimaryDigest returns the stored primary digest.
func (s *Store) PrimaryDigest() (string, error) {
	primary, err := s.read(Primary)
	if err != nil {
		return "", err
	}
	if primary == "" {
		return "", fmt.Errorf("primary credential is not set")
	}
	return primary, nil
}

// GenerateMaster creates a new random master password, stores its digest
// and returns the password. The caller must show it to the user; it is
// not recoverable afterwards.
func (s *Store) GenerateMaster() (string, error) {
	password, err := crypto.GeneratePassword(MasterLength)
	if err != nil {
		return "", err
	}
	if err := s.Write([]byte(password), Master); err != nil {
		return "", err
	}
	return password, nil
}

func (s *Store) path(slot Slot) string {
	if slot == Master {
		return filepath.Join(s.dir, MasterFile)
	}
	return filepath.Join(s.dir, PrimaryFile)
}

func (s *Store) read(slot Slot) (string, error) {
	data, err := os.ReadFile(s.path(slot))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotInitialized, s.path(slot))
		}
		return "", fmt.Errorf("failed to read %s credential: %w", slot, err)
	}
	return strings.TrimSpace(string(data)), nil
}
