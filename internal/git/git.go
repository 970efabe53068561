package git

import (
	"fmt"
	"os/exec"
	"strings"
)

// GitStatus contains git integration status information
type GitStatus struct {
	IsRepo             bool
	Sealed             bool
	CredentialsDir     string
	WorkDir            string
	TrackedCredentials []string // Credential files tracked by git (bad)
	CredentialsIgnored bool     // Credentials directory in .gitignore (good)
	TrackedNotes       []string // Note files tracked by git
}

// IsGitRepo checks if the working directory is inside a git repository
func IsGitRepo(workDir string) bool {
	cmd := exec.Command("git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = workDir
	err := cmd.Run()
	return err == nil
}

// TrackedFiles lists files under path that are tracked by git
func TrackedFiles(workDir, path string) []string {
	cmd := exec.Command("git", "ls-files", "--", path)
	cmd.Dir = workDir
	output, err := cmd.Output()
	if err != nil {
		return nil
	}

	var files []string
	for _, line := range strings.Split(string(output), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			files = append(files, line)
		}
	}
	return files
}

// IsIgnored checks if a path is ignored by git (handles all .gitignore files)
func IsIgnored(workDir, path string) bool {
	cmd := exec.Command("git", "check-ignore", "-q", "--", path)
	cmd.Dir = workDir
	err := cmd.Run()

	// git check-ignore returns exit code 0 if file is ignored
	return err == nil
}

// CheckGitIntegration checks git integration status for the notevault
// layout under root. credentialsDir and workDir are relative to root.
func CheckGitIntegration(root, credentialsDir, workDir string, sealed bool) (*GitStatus, error) {
	status := &GitStatus{
		Sealed:         sealed,
		CredentialsDir: credentialsDir,
		WorkDir:        workDir,
	}

	if !IsGitRepo(root) {
		status.IsRepo = false
		return status, nil
	}
	status.IsRepo = true

	status.TrackedCredentials = TrackedFiles(root, credentialsDir)
	status.CredentialsIgnored = IsIgnored(root, credentialsDir)
	status.TrackedNotes = TrackedFiles(root, workDir)

	return status, nil
}

// FormatGitStatus formats git status for display
func FormatGitStatus(status *GitStatus) string {
	if !status.IsRepo {
		return ""
	}

	var result strings.Builder
	result.WriteString("\nGit Integration:\n")

	if len(status.TrackedCredentials) > 0 {
		result.WriteString(fmt.Sprintf("   error: %d credential file(s) tracked by git, anyone with the repo can unseal notes:\n", len(status.TrackedCredentials)))
		for _, file := range status.TrackedCredentials {
			result.WriteString(fmt.Sprintf("      - %s (run: git rm --cached %s)\n", file, file))
		}
	} else {
		result.WriteString("   ok: no credential files tracked by git\n")
	}

	if status.CredentialsIgnored {
		result.WriteString(fmt.Sprintf("   ok: %s is in .gitignore\n", status.CredentialsDir))
	} else {
		result.WriteString(fmt.Sprintf("   warning: %s not in .gitignore (add to .gitignore)\n", status.CredentialsDir))
	}

	if len(status.TrackedNotes) > 0 {
		if status.Sealed {
			result.WriteString(fmt.Sprintf("   ok: %d sealed note file(s) tracked by git\n", len(status.TrackedNotes)))
		} else {
			result.WriteString(fmt.Sprintf("   warning: %d note file(s) tracked by git while unsealed, do not commit now\n", len(status.TrackedNotes)))
		}
	}

	return result.String()
}
