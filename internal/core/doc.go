// Package core runs notevault sessions.
//
// A session walks a fixed state machine:
//
//	Locked -> Authenticating -> Rejected
//	                         -> Bootstrapped  -> Unlocked -> Sealed
//	                         -> Authenticated -> Unlocked -> Sealed
//
// The first password ever supplied becomes the primary credential and a
// master recovery password is generated and shown once. Any later password
// must match the primary or the master digest.
//
// Once authenticated, the working directory is decrypted, handed to the
// UI, and encrypted again when the UI returns for any reason: quit, end of
// input, interrupt, error or panic. The state database records the
// transition so an interrupted seal is noticed on the next start.
//
// Other operations:
//   - Init: create the credentials directory, working directory and state database
//   - Seal: encrypt a directory that was left in plaintext
//   - Check: report inconsistencies between notes and the index
//   - Status: show seal state without a password
package core
