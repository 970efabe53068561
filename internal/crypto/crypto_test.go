package crypto

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func TestDigestKnownValues(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{"abc", "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
	}

	for _, tt := range tests {
		got := DigestString(tt.in)
		if got != tt.want {
			t.Errorf("DigestString(%q) = %s, want %s", tt.in, got, tt.want)
		}
		if len(got) != DigestSize {
			t.Errorf("digest length = %d, want %d", len(got), DigestSize)
		}
	}
}

func TestEncryptKnownAnswer(t *testing.T) {
	// NIST SP 800-38A, F.1.1 ECB-AES128.Encrypt, first block.
	key, _ := hex.DecodeString("2b7e151628aed2a6abf7158809cf4f3c")
	plaintext, _ := hex.DecodeString("6bc1bee22e409f96e93d7e117393172a")
	want, _ := hex.DecodeString("3ad77bb40d7a3660a89ecaf32466ef97")

	enc := NewEncryptor(key)
	got, err := enc.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	// A full block of input gains a full block of padding.
	if len(got) != 2*BlockSize {
		t.Fatalf("ciphertext length = %d, want %d", len(got), 2*BlockSize)
	}
	if !bytes.Equal(got[:BlockSize], want) {
		t.Errorf("first block = %x, want %x", got[:BlockSize], want)
	}
}

func TestEncryptIndependentBlocks(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, KeySize)
	enc := NewEncryptor(key)

	// Two identical plaintext blocks encrypt to identical ciphertext blocks.
	block := []byte("0123456789abcdef")
	ct, err := enc.Encrypt(append(append([]byte{}, block...), block...))
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if !bytes.Equal(ct[:BlockSize], ct[BlockSize:2*BlockSize]) {
		t.Error("expected identical ciphertext blocks for identical plaintext blocks")
	}
}

func TestDecryptRejectsMalformedInput(t *testing.T) {
	key := bytes.Repeat([]byte{0x01}, KeySize)
	enc := NewEncryptor(key)

	for _, n := range []int{0, 1, 15, 17} {
		if _, err := enc.Decrypt(make([]byte, n)); !errors.Is(err, ErrInvalidCiphertext) {
			t.Errorf("Decrypt(%d bytes) error = %v, want ErrInvalidCiphertext", n, err)
		}
	}
}

func TestDecryptBadPadding(t *testing.T) {
	key := bytes.Repeat([]byte{0x07}, KeySize)
	enc := NewEncryptor(key)

	ct, err := enc.Encrypt([]byte("hello"))
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	// Flipping a bit in the only block scrambles the padding byte.
	ct[0] ^= 0xff
	pt, err := enc.Decrypt(ct)
	if err == nil && bytes.Equal(pt, []byte("hello")) {
		t.Fatal("tampered ciphertext decrypted to the original plaintext")
	}
}

func TestRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		key := rapid.SliceOfN(rapid.Byte(), KeySize, KeySize).Draw(t, "key")
		plaintext := rapid.SliceOf(rapid.Byte()).Draw(t, "plaintext")

		enc := NewEncryptor(key)
		ct, err := enc.Encrypt(plaintext)
		if err != nil {
			t.Fatalf("Encrypt failed: %v", err)
		}
		if len(ct)%BlockSize != 0 || len(ct) <= len(plaintext) {
			t.Fatalf("unexpected ciphertext length %d for %d bytes", len(ct), len(plaintext))
		}

		pt, err := enc.Decrypt(ct)
		if err != nil {
			t.Fatalf("Decrypt failed: %v", err)
		}
		if !bytes.Equal(pt, plaintext) {
			t.Fatalf("round trip mismatch: got %x, want %x", pt, plaintext)
		}
	})
}

func TestWrongKeyProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		key := rapid.SliceOfN(rapid.Byte(), KeySize, KeySize).Draw(t, "key")
		other := rapid.SliceOfN(rapid.Byte(), KeySize, KeySize).
			Filter(func(b []byte) bool { return !bytes.Equal(b, key) }).
			Draw(t, "other")
		plaintext := rapid.SliceOfN(rapid.Byte(), 1, 256).Draw(t, "plaintext")

		ct, err := NewEncryptor(key).Encrypt(plaintext)
		if err != nil {
			t.Fatalf("Encrypt failed: %v", err)
		}

		pt, err := NewEncryptor(other).Decrypt(ct)
		if err == nil && bytes.Equal(pt, plaintext) {
			t.Fatal("wrong key reproduced the original plaintext")
		}
	})
}

func TestLegacyKDF(t *testing.T) {
	kdf, err := NewKDF(SchemeLegacy, 0)
	if err != nil {
		t.Fatalf("NewKDF failed: %v", err)
	}

	a := kdf.DeriveKey([]byte("hunter2"))
	b := kdf.DeriveKey([]byte("hunter2"))
	c := kdf.DeriveKey([]byte("hunter3"))

	if len(a) != KeySize {
		t.Fatalf("key length = %d, want %d", len(a), KeySize)
	}
	if !bytes.Equal(a, b) {
		t.Error("same secret produced different keys")
	}
	if bytes.Equal(a, c) {
		t.Error("different secrets produced the same key")
	}

	want := DigestString("hunter2" + StaticSalt)[:KeySize*2]
	if hex.EncodeToString(a) != want {
		t.Errorf("legacy key = %x, want %s", a, want)
	}
}

func TestPBKDF2KDF(t *testing.T) {
	kdf, err := NewKDF(SchemePBKDF2, 1000)
	if err != nil {
		t.Fatalf("NewKDF failed: %v", err)
	}
	legacy, _ := NewKDF("", 0)

	key := kdf.DeriveKey([]byte("hunter2"))
	if len(key) != KeySize {
		t.Fatalf("key length = %d, want %d", len(key), KeySize)
	}
	if !bytes.Equal(key, kdf.DeriveKey([]byte("hunter2"))) {
		t.Error("pbkdf2 derivation is not deterministic")
	}
	if bytes.Equal(key, legacy.DeriveKey([]byte("hunter2"))) {
		t.Error("pbkdf2 and legacy schemes produced the same key")
	}
}

func TestNewKDFUnknownScheme(t *testing.T) {
	if _, err := NewKDF("scrypt", 0); err == nil {
		t.Error("expected error for unknown scheme")
	}
}

func TestGeneratePassword(t *testing.T) {
	a, err := GeneratePassword(32)
	if err != nil {
		t.Fatalf("GeneratePassword failed: %v", err)
	}
	b, _ := GeneratePassword(32)

	if len(a) != 32 {
		t.Errorf("password length = %d, want 32", len(a))
	}
	if a == b {
		t.Error("two generated passwords are identical")
	}
	for _, r := range a {
		if !strings.ContainsRune(PasswordCharset, r) {
			t.Errorf("password contains %q outside the charset", r)
		}
	}
}
