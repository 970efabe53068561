package vault

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/illarion/notevault/internal/crypto"
	"github.com/illarion/notevault/internal/security"
)

// Extension marks files that take part in sealing.
const Extension = ".txt"

// Direction selects the transform applied to each file.
type Direction int

const (
	Seal Direction = iota
	Unseal
)

func (d Direction) String() string {
	if d == Unseal {
		return "unseal"
	}
	return "seal"
}

// Result lists the files processed by a batch.
type Result struct {
	Files []string
}

// EncryptDirectory encrypts every eligible file in dir with key.
func EncryptDirectory(ctx context.Context, dir string, key []byte) (*Result, error) {
	return transformDirectory(ctx, dir, key, Seal)
}

// DecryptDirectory decrypts every eligible file in dir with key.
func DecryptDirectory(ctx context.Context, dir string, key []byte) (*Result, error) {
	return transformDirectory(ctx, dir, key, Unseal)
}

// EncryptFiles encrypts only the named files in dir. It undoes a batch
// that stopped during its write phase.
func EncryptFiles(ctx context.Context, dir string, key []byte, names []string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root, err := security.Open(dir)
	if err != nil {
		return nil, err
	}
	defer root.Close()

	return transform(ctx, root, names, key, Seal)
}

// Eligible returns the names of the files a batch in dir would process.
func Eligible(dir string) ([]string, error) {
	root, err := security.Open(dir)
	if err != nil {
		return nil, err
	}
	defer root.Close()
	return eligible(root)
}

func eligible(root *security.Root) ([]string, error) {
	entries, err := root.Entries()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", root.Path(), err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() || filepath.Ext(entry.Name()) != Extension {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

func transformDirectory(ctx context.Context, dir string, key []byte, direction Direction) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root, err := security.Open(dir)
	if err != nil {
		return nil, err
	}
	defer root.Close()

	names, err := eligible(root)
	if err != nil {
		return nil, err
	}
	return transform(ctx, root, names, key, direction)
}

func transform(ctx context.Context, root *security.Root, names []string, key []byte, direction Direction) (*Result, error) {
	// The encryptor owns a copy so Destroy never wipes the caller's key.
	keyCopy := append([]byte(nil), key...)
	enc := crypto.NewEncryptor(keyCopy)
	defer enc.Destroy()

	type pendingFile struct {
		name string
		data []byte
		perm os.FileMode
	}

	clearPending := func(pending []pendingFile) {
		for _, p := range pending {
			crypto.ClearBytes(p.data)
		}
	}

	// Phase 1: read and transform every file
	var pending []pendingFile
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			clearPending(pending)
			return nil, err
		}

		info, err := root.Stat(name)
		if err != nil {
			clearPending(pending)
			return nil, fmt.Errorf("failed to stat %s: %w", name, err)
		}

		data, err := root.ReadFile(name)
		if err != nil {
			clearPending(pending)
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}

		var out []byte
		if direction == Seal {
			out, err = enc.Encrypt(data)
		} else {
			out, err = enc.Decrypt(data)
		}
		crypto.ClearBytes(data)
		if err != nil {
			clearPending(pending)
			return nil, fmt.Errorf("failed to %s %s: %w", direction, name, err)
		}

		pending = append(pending, pendingFile{
			name: name,
			data: out,
			perm: info.Mode().Perm(),
		})
	}

	// Phase 2: overwrite files in place
	result := &Result{Files: make([]string, 0, len(pending))}
	for i, p := range pending {
		if err := root.WriteFile(p.name, p.data, p.perm); err != nil {
			clearPending(pending[i:])
			return result, fmt.Errorf("failed to write %s: %w", p.name, err)
		}
		crypto.ClearBytes(p.data)
		result.Files = append(result.Files, p.name)
	}

	return result, nil
}
