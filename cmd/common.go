package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/illarion/notevault/internal/config"
	"github.com/illarion/notevault/internal/core"
	"github.com/illarion/notevault/internal/credential"
	"github.com/illarion/notevault/internal/keyring"
	"github.com/illarion/notevault/internal/notes"
	"github.com/illarion/notevault/internal/storage"
)

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

// GetPassword retrieves the password from the environment, the OS keyring
// or a prompt, in that order. Before the first session the prompt asks
// for confirmation.
// The caller is responsible for calling crypto.ClearBytes on the returned password
func GetPassword(cfg *config.Config, prompt string) ([]byte, error) {
	if password := core.GetPasswordFromEnv(); password != nil {
		Logger.Debugf("Using password from %s", core.PasswordEnv)
		return password, nil
	}

	if vaultID, err := lookupVaultID(cfg); err == nil {
		if password, err := keyring.GetPassword(vaultID); err == nil {
			Logger.Debugf("Using password from keyring")
			return []byte(password), nil
		}
	}

	first, err := credential.New(cfg.CredentialsDir()).IsFirstRun()
	if err != nil {
		return nil, err
	}
	if first && core.IsTerminal() {
		fmt.Println("No password set yet. The password you choose now protects every note.")
		return core.ReadPasswordConfirm("Choose password: ")
	}

	password, err := core.ReadPassword(prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	return password, nil
}

// lookupVaultID reads the vault ID without creating the state database.
func lookupVaultID(cfg *config.Config) (string, error) {
	if _, err := os.Stat(cfg.StatePath()); err != nil {
		return "", err
	}
	db, err := storage.Open(cfg.StatePath())
	if err != nil {
		return "", err
	}
	defer db.Close()
	return db.GetVaultID()
}

// HandleError prints err for the user and returns the exit code.
func HandleError(err error) int {
	switch {
	case errors.Is(err, core.ErrNotInitialized):
		Logger.Errorf("notevault not initialized")
		fmt.Fprintf(os.Stderr, "Run 'notevault init' first\n")
	case errors.Is(err, core.ErrAlreadyExists):
		Logger.Errorf("notevault is already initialized here")
		fmt.Fprintf(os.Stderr, "Use 'notevault status' to see current state\n")
	case errors.Is(err, core.ErrWrongPassword):
		Logger.Errorf("wrong password")
		return core.ExitRejected
	case errors.Is(err, core.ErrUnsealedState):
		Logger.Errorf("%v", err)
		fmt.Fprintf(os.Stderr, "Run 'notevault seal' to encrypt it\n")
	case errors.Is(err, core.ErrAlreadySealed):
		Logger.Errorf("%v", err)
	case errors.Is(err, notes.ErrNoteNotFound), errors.Is(err, notes.ErrInvalidTitle):
		Logger.Errorf("%v", err)
	default:
		Logger.Errorf("%s", err)
	}
	return core.ExitFailure
}
