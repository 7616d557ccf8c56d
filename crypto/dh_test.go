package crypto

import (
	"bytes"
	"errors"
	"math/big"
	"testing"
)

func TestGenerateKeyPair(t *testing.T) {
	keyPair, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair() error: %v", err)
	}

	if keyPair == nil {
		t.Fatal("GenerateKeyPair() returned nil key pair")
	}

	pub := keyPair.PublicBytes()
	if len(pub) != PublicValueSize {
		t.Errorf("PublicBytes() length = %d, want %d", len(pub), PublicValueSize)
	}

	// Public value must be a legal group element.
	if _, err := ParsePublicValue(pub); err != nil {
		t.Errorf("generated public value failed validation: %v", err)
	}

	// Test that multiple key generations produce different keys
	keyPair2, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair() error: %v", err)
	}
	if bytes.Equal(pub, keyPair2.PublicBytes()) {
		t.Error("Multiple GenerateKeyPair() calls produced identical public values")
	}
}

func TestDeriveSessionKeyAgreement(t *testing.T) {
	alice, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair() error: %v", err)
	}
	bob, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair() error: %v", err)
	}

	bobPub, err := ParsePublicValue(bob.PublicBytes())
	if err != nil {
		t.Fatalf("ParsePublicValue() error: %v", err)
	}
	alicePub, err := ParsePublicValue(alice.PublicBytes())
	if err != nil {
		t.Fatalf("ParsePublicValue() error: %v", err)
	}

	aliceKey, err := DeriveSessionKey(alice, bobPub)
	if err != nil {
		t.Fatalf("DeriveSessionKey() error: %v", err)
	}
	bobKey, err := DeriveSessionKey(bob, alicePub)
	if err != nil {
		t.Fatalf("DeriveSessionKey() error: %v", err)
	}

	if aliceKey != bobKey {
		t.Error("both sides must derive the same session key")
	}
	if aliceKey == [SessionKeySize]byte{} {
		t.Error("derived session key is all zeros")
	}
}

func TestParsePublicValueRejectsDegenerateValues(t *testing.T) {
	pMinusOne := new(big.Int).Sub(groupPrime, big.NewInt(1))

	cases := []struct {
		name  string
		value *big.Int
	}{
		{name: "zero", value: big.NewInt(0)},
		{name: "one", value: big.NewInt(1)},
		{name: "p-1", value: pMinusOne},
		{name: "prime itself", value: groupPrime},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			encoded := make([]byte, PublicValueSize)
			tc.value.FillBytes(encoded)

			_, err := ParsePublicValue(encoded)
			if err == nil {
				t.Fatal("ParsePublicValue() accepted a degenerate value")
			}
			if !errors.Is(err, ErrKeyAgreement) {
				t.Errorf("error = %v, want ErrKeyAgreement", err)
			}
		})
	}
}

func TestParsePublicValueRejectsWrongLength(t *testing.T) {
	_, err := ParsePublicValue(make([]byte, PublicValueSize-1))
	if !errors.Is(err, ErrKeyAgreement) {
		t.Errorf("short value: error = %v, want ErrKeyAgreement", err)
	}

	_, err = ParsePublicValue(make([]byte, PublicValueSize+1))
	if !errors.Is(err, ErrKeyAgreement) {
		t.Errorf("long value: error = %v, want ErrKeyAgreement", err)
	}
}

func TestDeriveSessionKeyNilKeyPair(t *testing.T) {
	peer, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair() error: %v", err)
	}
	peerPub, _ := ParsePublicValue(peer.PublicBytes())

	if _, err := DeriveSessionKey(nil, peerPub); !errors.Is(err, ErrKeyAgreement) {
		t.Errorf("nil keypair: error = %v, want ErrKeyAgreement", err)
	}
}

func TestKeyPairWipe(t *testing.T) {
	keyPair, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair() error: %v", err)
	}

	keyPair.Wipe()

	if keyPair.private.Sign() != 0 {
		t.Error("Wipe() did not zero the private exponent")
	}

	// Wiping twice must be safe.
	keyPair.Wipe()
}
