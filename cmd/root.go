package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/illarion/notevault/internal/config"
	"github.com/illarion/notevault/internal/core"
	"github.com/illarion/notevault/internal/crypto"
	"github.com/illarion/notevault/internal/logging"
	"github.com/illarion/notevault/internal/shell"
)

// RootEnv names the environment variable holding the default root.
const RootEnv = "NOTEVAULT_ROOT"

var (
	rootDir string
	verbose bool
	debug   bool
	Logger  logging.Logger
	cfg     *config.Config

	rootCmd = &cobra.Command{
		Use:   "notevault",
		Short: "notevault - a password-gated encrypted note terminal",
		Long: `notevault keeps append-only notes in a directory that is encrypted
whenever no session is running.

Run without a command to unlock the notes and open the note terminal.
The first password you enter becomes the vault password, and a master
recovery password is printed once.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: loadConfig,
		RunE:              runSession,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", envOr(RootEnv, "."), "application root holding the notes and credentials")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(sealCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(keyringCmd)
}

func loadConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(rootDir)
	if err != nil {
		return err
	}
	cfg = loaded

	Logger = logging.Logger{
		Verbose: verbose || cfg.Log.Verbose,
		Debug:   debug || cfg.Log.Debug,
	}
	Logger.Debugf("Loaded config from %s (workdir %s)", rootDir, cfg.WorkDir())
	return nil
}

// exitError carries a process exit code out of a command.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return "exit"
}

func runSession(cmd *cobra.Command, args []string) error {
	password, err := GetPassword(cfg, "Enter password: ")
	if err != nil {
		return err
	}
	defer crypto.ClearBytes(password)

	banner := shell.PlainBanner
	if cfg.UI.Banner {
		banner = shell.FigureBanner(cfg.UI.Font)
	}
	ui := shell.New(shell.Options{Banner: banner})

	session := core.NewSession(cfg, ui, core.WithLogger(Logger))
	if code := session.Run(cmd.Context(), password); code != core.ExitOK {
		return &exitError{code: code}
	}
	return nil
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context) int {
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return core.ExitOK
	}

	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	return HandleError(err)
}

// GetRootCmd returns the root command for testing.
func GetRootCmd() *cobra.Command {
	return rootCmd
}
