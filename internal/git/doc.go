// Package git provides git integration status checks for notevault.
//
// Checks performed:
//   - Whether the credentials directory is tracked by git (should not be)
//   - Whether the credentials directory is in .gitignore (should be)
//   - Whether note files are tracked while the directory is unsealed
//
// The stored primary digest is enough to derive the note key, so a
// committed credentials directory exposes every sealed note.
package git
