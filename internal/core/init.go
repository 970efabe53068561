package core

import (
	"fmt"
	"os"

	"github.com/illarion/notevault/internal/config"
	"github.com/illarion/notevault/internal/credential"
	"github.com/illarion/notevault/internal/storage"
)

const DirPermSecure = 0700 // Directory: owner rwx only

// Init creates the credential files, working directory and state
// database. The primary password is set by the first session.
func Init(cfg *config.Config) error {
	creds := credential.New(cfg.CredentialsDir())

	if _, err := os.Stat(cfg.StatePath()); err == nil {
		first, err := creds.IsFirstRun()
		if err == nil && !first {
			return ErrAlreadyExists
		}
	}

	if err := creds.Init(); err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.WorkDir(), DirPermSecure); err != nil {
		return fmt.Errorf("failed to create working directory: %w", err)
	}

	db, err := storage.Open(cfg.StatePath())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize state database: %w", err)
	}

	scheme, _, err := db.GetKDF()
	if err != nil {
		return err
	}
	if scheme == "" {
		return db.SetKDF(cfg.KDF.Scheme, recordedIterations(cfg.KDF.Scheme, cfg.KDF.Iterations))
	}
	return nil
}
