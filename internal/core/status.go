package core

import (
	"errors"
	"os"
	"time"

	"github.com/illarion/notevault/internal/config"
	"github.com/illarion/notevault/internal/credential"
	"github.com/illarion/notevault/internal/git"
	"github.com/illarion/notevault/internal/storage"
	"github.com/illarion/notevault/internal/vault"
)

// StatusInfo contains seal state information shown without a password
type StatusInfo struct {
	VaultID       string
	Sealed        bool
	LastSealed    time.Time
	LastUnsealed  time.Time
	Sessions      uint64
	Algorithm     string
	KDFScheme     string
	KDFIterations uint32
	NoteFiles     int
	LastBatch     *storage.BatchRecord
	FirstRun      bool
	GitStatus     *git.GitStatus
}

// Status reads the state database and counts note files.
func Status(cfg *config.Config) (*StatusInfo, error) {
	if _, err := os.Stat(cfg.StatePath()); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotInitialized
		}
		return nil, err
	}

	db, err := storage.Open(cfg.StatePath())
	if err != nil {
		return nil, err
	}
	defer db.Close()

	status := &StatusInfo{
		Algorithm: "AES-128-ECB",
	}

	if status.Sealed, err = db.IsSealed(); err != nil {
		return nil, err
	}
	if status.VaultID, err = db.GetOrCreateVaultID(); err != nil {
		return nil, err
	}

	// Timestamps and counters are informational
	status.LastSealed, _ = db.LastSealed()
	status.LastUnsealed, _ = db.LastUnsealed()
	status.Sessions, _ = db.Sessions()
	status.KDFScheme, status.KDFIterations, _ = db.GetKDF()
	status.LastBatch, _ = db.LastBatch()

	if names, err := vault.Eligible(cfg.WorkDir()); err == nil {
		status.NoteFiles = len(names)
	}

	creds := credential.New(cfg.CredentialsDir())
	if first, err := creds.IsFirstRun(); err == nil {
		status.FirstRun = first
	}

	gitStatus, err := git.CheckGitIntegration(cfg.Root(), cfg.Storage.Credentials, cfg.Storage.WorkDir, status.Sealed)
	if err == nil && gitStatus.IsRepo {
		status.GitStatus = gitStatus
	}

	return status, nil
}
