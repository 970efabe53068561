// Package vault seals and unseals a working directory in place.
//
// Every regular .txt file directly inside the directory is read whole,
// transformed with the AES-128-ECB cipher from package crypto and written
// back over itself. Subdirectories and other files are ignored.
//
// A batch runs in two phases: all files are transformed in memory first,
// and files are written only when every transform succeeded. A wrong key
// or corrupted ciphertext therefore leaves the directory untouched. A
// crash during the write phase can still leave a mix of plaintext and
// ciphertext behind; nothing here detects or repairs that state.
package vault
