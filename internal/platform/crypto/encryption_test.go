package crypto

import (
	"bytes"
	"strings"
	"testing"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestUnconfiguredPassThrough(t *testing.T) {
	service, err := New("")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if service.Configured() {
		t.Fatal("empty key must not be configured")
	}

	out, err := service.Encrypt([]byte("123456789012"))
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if !bytes.Equal(out, []byte("123456789012")) {
		t.Fatal("pass-through changed the value")
	}
}

func TestRoundTrip(t *testing.T) {
	service, err := New(testKeyHex)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !service.Configured() {
		t.Fatal("hex key not recognized")
	}

	encrypted, err := service.EncryptString("ABCDE1234F")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if strings.Contains(string(encrypted), "ABCDE1234F") {
		t.Fatal("ciphertext leaks plaintext")
	}

	decrypted, err := service.DecryptString(encrypted)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if decrypted != "ABCDE1234F" {
		t.Fatalf("round trip = %q", decrypted)
	}
}

func TestEmptyValues(t *testing.T) {
	service, err := New(testKeyHex)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	encrypted, err := service.EncryptString("")
	if err != nil || encrypted != nil {
		t.Fatalf("empty encrypt = (%v, %v)", encrypted, err)
	}
	decrypted, err := service.DecryptString(nil)
	if err != nil || decrypted != "" {
		t.Fatalf("empty decrypt = (%q, %v)", decrypted, err)
	}
}

func TestRejectsShortKey(t *testing.T) {
	if _, err := New("tooshort"); err == nil {
		t.Fatal("short key accepted")
	}
}

func TestRejectsTamperedCiphertext(t *testing.T) {
	service, err := New(testKeyHex)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	encrypted, err := service.EncryptString("001122334455")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	encrypted[len(encrypted)-1] ^= 0xff
	if _, err := service.DecryptString(encrypted); err == nil {
		t.Fatal("tampered ciphertext decrypted")
	}
}
