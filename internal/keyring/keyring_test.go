package keyring

import (
	"errors"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestPasswordRoundTrip(t *testing.T) {
	keyring.MockInit()

	const vaultID = "0b6f4c1e-7a44-4c2b-9d2e-1f0c7e3a5b11"
	if HasPassword(vaultID) {
		t.Fatal("empty keyring reports a password")
	}

	if err := SavePassword(vaultID, "hunter2"); err != nil {
		t.Fatalf("SavePassword failed: %v", err)
	}
	if !HasPassword(vaultID) {
		t.Error("HasPassword = false after save")
	}

	got, err := GetPassword(vaultID)
	if err != nil {
		t.Fatalf("GetPassword failed: %v", err)
	}
	if got != "hunter2" {
		t.Errorf("GetPassword = %q, want hunter2", got)
	}

	if err := DeletePassword(vaultID); err != nil {
		t.Fatalf("DeletePassword failed: %v", err)
	}
	if _, err := GetPassword(vaultID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPassword after delete error = %v, want ErrNotFound", err)
	}
	if err := DeletePassword(vaultID); err != nil {
		t.Errorf("deleting an absent entry failed: %v", err)
	}
}
