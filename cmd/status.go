package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/illarion/notevault/internal/core"
	"github.com/illarion/notevault/internal/crypto"
	"github.com/illarion/notevault/internal/git"
)

var statusCmd = &cobra.Command{
	Use:     "status",
	Aliases: []string{"ls"},
	Short:   "Show seal state and vault details",
	Long:    "Shows seal state, key derivation and the last batch without asking for a password.",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := core.Status(cfg)
		if err != nil {
			return err
		}

		state := "sealed"
		if !status.Sealed {
			state = "UNSEALED"
		}

		fmt.Printf("Vault:      %s\n", status.VaultID)
		fmt.Printf("State:      %s\n", state)
		fmt.Printf("Notes:      %d file(s) in %s\n", status.NoteFiles, cfg.WorkDir())
		fmt.Printf("Encryption: %s, key derivation %s", status.Algorithm, status.KDFScheme)
		if status.KDFScheme == crypto.SchemePBKDF2 {
			fmt.Printf(" (%d iterations)", status.KDFIterations)
		}
		fmt.Println()
		fmt.Printf("Sessions:   %d\n", status.Sessions)
		fmt.Printf("Last sealed:   %s\n", formatTime(status.LastSealed))
		fmt.Printf("Last unsealed: %s\n", formatTime(status.LastUnsealed))

		if status.LastBatch != nil {
			fmt.Printf("Last batch:    %s of %d file(s) at %s\n",
				status.LastBatch.Direction, status.LastBatch.Files, formatTime(status.LastBatch.At))
		}

		if status.FirstRun {
			fmt.Println("\nNo password set yet. Run 'notevault' to choose one.")
		}
		if !status.Sealed {
			fmt.Println("\nThe notes are stored in plain text. Run 'notevault seal' to encrypt them.")
		}

		if status.GitStatus != nil {
			fmt.Print(git.FormatGitStatus(status.GitStatus))
		}
		return nil
	},
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Format(time.RFC3339)
}
