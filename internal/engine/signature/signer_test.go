package signature

import (
	"strings"
	"testing"
)

func TestSign(t *testing.T) {
	secret := "secret"
	payload := []byte("payload")

	// Calculated using: echo -n "payload" | openssl dgst -sha256 -hmac "secret"
	expected := "b82fcb791acec57859b989b430a826488ce2e479fdf92326bd0a2e8375a42ba4"

	got := Sign(secret, payload)

	if got != expected {
		t.Errorf("Sign() = %v, want %v", got, expected)
	}
}

func TestVerifyRoundTrip(t *testing.T) {
	secret := "whsec_3f9c2b"
	payload := []byte(`{"id":"evt_1","event":"client.created"}`)

	sig := Sign(secret, payload)
	if !Verify(secret, payload, sig) {
		t.Error("Verify() rejected a valid signature")
	}
}

func TestVerifyTamperedPayload(t *testing.T) {
	secret := "whsec_3f9c2b"
	payload := []byte(`{"id":"evt_1","event":"client.created"}`)
	sig := Sign(secret, payload)

	tampered := []byte(`{"id":"evt_2","event":"client.created"}`)
	if Verify(secret, tampered, sig) {
		t.Error("Verify() accepted a tampered payload")
	}
}

func TestVerifyTamperedSignature(t *testing.T) {
	secret := "whsec_3f9c2b"
	payload := []byte("payload")
	sig := Sign(secret, payload)

	// Flip one hex digit
	var flipped string
	if sig[0] == 'a' {
		flipped = "b" + sig[1:]
	} else {
		flipped = "a" + sig[1:]
	}
	if Verify(secret, payload, flipped) {
		t.Error("Verify() accepted a tampered signature")
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	payload := []byte("payload")
	sig := Sign("secret-a", payload)
	if Verify("secret-b", payload, sig) {
		t.Error("Verify() accepted a signature from a different secret")
	}
}

func TestVerifyTruncatedSignature(t *testing.T) {
	secret := "s"
	payload := []byte("p")
	sig := Sign(secret, payload)
	if Verify(secret, payload, sig[:10]) {
		t.Error("Verify() accepted a truncated signature")
	}
	if Verify(secret, payload, strings.ToUpper(sig)) {
		t.Error("Verify() accepted an uppercased signature")
	}
}
