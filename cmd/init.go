package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/illarion/notevault/internal/core"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the credential files, notes directory and state database",
	Long: `Creates the credential files, the notes directory and the state database
under the application root. No password is asked: the first session sets it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := core.Init(cfg); err != nil {
			return err
		}

		Logger.Infof("State database at %s", cfg.StatePath())
		fmt.Println("✓ Initialized notevault")
		fmt.Println("Run 'notevault' to choose a password and start writing")
		return nil
	},
}
