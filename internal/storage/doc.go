// Package storage provides the BBolt database that tracks seal state.
//
// The database lives next to the credential digests and holds a single
// bucket, state, with these keys:
//   - sealed: "1" while the working directory is ciphertext, "0" otherwise
//   - last_sealed, last_unsealed: binary-marshaled timestamps
//   - sessions: big-endian uint64 count of unlocked sessions
//   - vault_id: UUID naming this vault in the OS keyring
//   - kdf_scheme, kdf_iterations: key derivation recorded at init
//   - last_batch: JSON record of the most recent bulk transform
//
// None of it is secret, so status can be shown without a password.
//
// BBolt provides ACID transactions, file locking, and corruption detection.
package storage
