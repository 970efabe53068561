package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/illarion/notevault/internal/core"
	"github.com/illarion/notevault/internal/credential"
	"github.com/illarion/notevault/internal/crypto"
	"github.com/illarion/notevault/internal/keyring"
	"github.com/illarion/notevault/internal/storage"
)

var keyringCmd = &cobra.Command{
	Use:   "keyring",
	Short: "Manage the password stored in the OS keyring",
}

var keyringSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Verify the password and store it in the OS keyring",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		vaultID, err := keyringVaultID()
		if err != nil {
			return err
		}

		password := core.GetPasswordFromEnv()
		if password == nil {
			password, err = core.ReadPassword("Enter password: ")
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
		}
		defer crypto.ClearBytes(password)

		ok, err := credential.New(cfg.CredentialsDir()).Verify(password)
		if err != nil {
			return err
		}
		if !ok {
			return core.ErrWrongPassword
		}

		if err := keyring.SavePassword(vaultID, string(password)); err != nil {
			return fmt.Errorf("failed to save to keyring: %w", err)
		}

		fmt.Println("Password saved to keyring")
		return nil
	},
}

var keyringDeleteCmd = &cobra.Command{
	Use:     "delete",
	Aliases: []string{"forget"},
	Short:   "Remove the password from the OS keyring",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		vaultID, err := keyringVaultID()
		if err != nil {
			return err
		}

		if !keyring.HasPassword(vaultID) {
			fmt.Println("No password stored in keyring")
			return nil
		}
		if err := keyring.DeletePassword(vaultID); err != nil {
			return fmt.Errorf("failed to remove from keyring: %w", err)
		}

		fmt.Println("Password removed from keyring")
		return nil
	},
}

var keyringStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether a password is stored in the OS keyring",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		vaultID, err := keyringVaultID()
		if err != nil {
			return err
		}

		if keyring.HasPassword(vaultID) {
			fmt.Println("Password: stored in keyring")
		} else {
			fmt.Println("Password: not stored")
		}
		return nil
	},
}

func init() {
	keyringCmd.AddCommand(keyringSaveCmd)
	keyringCmd.AddCommand(keyringDeleteCmd)
	keyringCmd.AddCommand(keyringStatusCmd)
}

// keyringVaultID returns the vault ID that keys the keyring entry.
func keyringVaultID() (string, error) {
	if _, err := os.Stat(cfg.StatePath()); err != nil {
		return "", core.ErrNotInitialized
	}

	db, err := storage.Open(cfg.StatePath())
	if err != nil {
		return "", err
	}
	defer db.Close()

	initialized, err := db.IsInitialized()
	if err != nil {
		return "", err
	}
	if !initialized {
		return "", core.ErrNotInitialized
	}
	id, err := db.GetOrCreateVaultID()
	if err != nil {
		return "", fmt.Errorf("failed to get vault ID: %w", err)
	}
	if id == "" {
		return "", errors.New("vault has no ID")
	}
	return id, nil
}
