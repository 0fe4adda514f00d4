package vault

import (
	"errors"
	"strings"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	v, err := New("test-master-secret")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	creds := map[string]interface{}{
		"client_id":     "qb-client-123",
		"client_secret": "s3cr3t",
		"realm_id":      "9341452",
	}

	envelope, err := v.EncryptCredentials(creds)
	if err != nil {
		t.Fatalf("EncryptCredentials() failed: %v", err)
	}

	if parts := strings.Split(envelope, ":"); len(parts) != 3 {
		t.Fatalf("Expected iv:ciphertext:tag envelope, got %d parts", len(parts))
	}
	if strings.Contains(envelope, "s3cr3t") {
		t.Error("Envelope contains plaintext secret")
	}

	got, err := v.DecryptCredentials(envelope)
	if err != nil {
		t.Fatalf("DecryptCredentials() failed: %v", err)
	}
	for k, want := range creds {
		if got[k] != want {
			t.Errorf("Field %s = %v, want %v", k, got[k], want)
		}
	}
}

func TestDecryptWrongKey(t *testing.T) {
	v1, _ := New("master-a")
	v2, _ := New("master-b")

	envelope, err := v1.EncryptCredentials(map[string]interface{}{"token": "abc"})
	if err != nil {
		t.Fatalf("EncryptCredentials() failed: %v", err)
	}

	_, err = v2.DecryptCredentials(envelope)
	if !errors.Is(err, ErrDecryptFailed) {
		t.Errorf("Expected ErrDecryptFailed with wrong key, got %v", err)
	}
}

func TestDecryptTamperedCiphertext(t *testing.T) {
	v, _ := New("master")

	envelope, err := v.EncryptCredentials(map[string]interface{}{"token": "abc"})
	if err != nil {
		t.Fatalf("EncryptCredentials() failed: %v", err)
	}

	parts := strings.Split(envelope, ":")
	ct := []byte(parts[1])
	// Flip one hex digit of the ciphertext
	if ct[0] == '0' {
		ct[0] = '1'
	} else {
		ct[0] = '0'
	}
	tampered := parts[0] + ":" + string(ct) + ":" + parts[2]

	_, err = v.DecryptCredentials(tampered)
	if !errors.Is(err, ErrDecryptFailed) {
		t.Errorf("Expected ErrDecryptFailed on tampered ciphertext, got %v", err)
	}
}

func TestDecryptMalformedEnvelope(t *testing.T) {
	v, _ := New("master")

	for _, envelope := range []string{"", "abc", "xx:yy", "zz:zz:zz:zz", "nothex:00:00"} {
		if _, err := v.DecryptCredentials(envelope); !errors.Is(err, ErrInvalidEnvelope) {
			t.Errorf("DecryptCredentials(%q) = %v, want ErrInvalidEnvelope", envelope, err)
		}
	}
}

func TestIVIsUniquePerEncryption(t *testing.T) {
	v, _ := New("master")
	creds := map[string]interface{}{"token": "abc"}

	e1, _ := v.EncryptCredentials(creds)
	e2, _ := v.EncryptCredentials(creds)

	iv1 := strings.Split(e1, ":")[0]
	iv2 := strings.Split(e2, ":")[0]
	if iv1 == iv2 {
		t.Error("Expected a fresh IV per encryption")
	}
}

func TestNewRequiresSecret(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Error("Expected error for empty master secret")
	}
}
