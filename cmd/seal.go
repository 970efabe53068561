package cmd

import (
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/illarion/notevault/internal/core"
	"github.com/illarion/notevault/internal/crypto"
)

var sealCmd = &cobra.Command{
	Use:   "seal",
	Short: "Encrypt notes left unsealed by an interrupted session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := GetPassword(cfg, "Enter password: ")
		if err != nil {
			return err
		}
		defer crypto.ClearBytes(password)

		s, cleanup := startSpinner("Sealing notes...")
		defer cleanup()

		session := core.NewSession(cfg, nil, core.WithLogger(Logger))
		result, err := session.Seal(cmd.Context(), password)
		if err != nil {
			s.FinalMSG = "✗ Failed to seal notes\n"
			return err
		}

		s.FinalMSG = fmt.Sprintf("✓ Sealed %d file(s)\n", len(result.Files))
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Unseal, report note and index inconsistencies, and seal again",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := GetPassword(cfg, "Enter password: ")
		if err != nil {
			return err
		}
		defer crypto.ClearBytes(password)

		s, cleanup := startSpinner("Checking notes...")
		session := core.NewSession(cfg, nil, core.WithLogger(Logger))
		problems, err := session.Check(cmd.Context(), password)
		if err != nil {
			s.FinalMSG = "✗ Check failed\n"
			cleanup()
			return err
		}
		s.FinalMSG = fmt.Sprintf("✓ Checked notes, %d problem(s)\n", len(problems))
		cleanup()

		for _, p := range problems {
			fmt.Printf("  %s\n", p)
		}
		return nil
	},
}

// startSpinner starts a spinner unless verbose output would interleave with it.
func startSpinner(message string) (*spinner.Spinner, func()) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message

	if err := s.Color("cyan"); err != nil {
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	quiet := !Logger.Verbose && !Logger.Debug && core.IsTerminal()
	if quiet {
		s.Start()
	} else {
		Logger.Infof("%s", message)
	}

	cleanup := func() {
		if quiet {
			s.Stop()
		} else if s.FinalMSG != "" {
			fmt.Print(s.FinalMSG)
		}
	}
	return s, cleanup
}
