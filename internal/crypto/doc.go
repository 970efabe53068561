// Package crypto provides the cryptographic primitives for notevault.
//
// Digests use SHA-256 rendered as lowercase hex. They serve both password
// verification and title-to-filename derivation.
//
// Note encryption uses AES-128 in ECB mode with PKCS#7 padding:
//   - 16-byte key derived from the verified credential (see KDF)
//   - no IV, no nonce, no chaining between blocks
//   - no authentication tag; a wrong key is only caught when the padding
//     happens to be malformed
//
// Key derivation concatenates the secret with a constant salt, hashes it
// and keeps the first half of the hex digest. The constant salt, the
// truncation and ECB mode are known weaknesses kept for archive
// compatibility. The pbkdf2 scheme stretches the derivation but is not
// compatible with archives sealed under the legacy scheme.
//
// Memory safety:
//   - Use ClearBytes() to zero sensitive data after use
package crypto
