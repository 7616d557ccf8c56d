// Package crypto implements the cryptographic primitives for the securecomm
// protocol: finite-field Diffie-Hellman key agreement, session key
// derivation, and secure erasure of key material.
//
// Key agreement runs over the 2048-bit MODP group 14 from RFC 3526. The raw
// shared secret is never used as a cipher key directly; it is reduced to a
// 256-bit session key with SHA-256.
//
// Example:
//
//	keys, err := crypto.GenerateKeyPair()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	key, err := crypto.DeriveSessionKey(keys, peerPublic)
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"math/big"
)

// ErrKeyAgreement indicates a failure in key generation, public value
// validation, or shared secret derivation. It is fatal to session
// establishment; no retry is attempted internally.
var ErrKeyAgreement = errors.New("key agreement failed")

const (
	// PublicValueSize is the wire size of an encoded DH public value
	// (2048-bit group element, big-endian, left-padded).
	PublicValueSize = 256

	// SessionKeySize is the size of a derived session key (256-bit).
	SessionKeySize = 32
)

// group14Prime is the 2048-bit MODP prime from RFC 3526 section 3.
const group14Prime = "FFFFFFFFFFFFFFFFC90FDAA22168C234C4C6628B80DC1CD1" +
	"29024E088A67CC74020BBEA63B139B22514A08798E3404DD" +
	"EF9519B3CD3A431B302B0A6DF25F14374FE1356D6D51C245" +
	"E485B576625E7EC6F44C42E9A637ED6B0BFF5CB6F406B7ED" +
	"EE386BFB5A899FA5AE9F24117C4B1FE649286651ECE45B3D" +
	"C2007CB8A163BF0598DA48361C55D39A69163FA8FD24CF5F" +
	"83655D23DCA3AD961C62F356208552BB9ED529077096966D" +
	"670C354E4ABC9804F1746C08CA18217C32905E462E36CE3B" +
	"E39E772C180E86039B2783A2EC07A28FB5C55DF06F4C52C9" +
	"DE2BCBF6955817183995497CEA956AE515D2261898FA0510" +
	"15728E5A8AACAA68FFFFFFFFFFFFFFFF"

var (
	groupPrime     *big.Int
	groupGenerator = big.NewInt(2)

	// publicMax is p-2, the largest legal public value.
	publicMax *big.Int
)

func init() {
	p, ok := new(big.Int).SetString(group14Prime, 16)
	if !ok {
		panic("crypto: invalid group 14 prime constant")
	}
	groupPrime = p
	publicMax = new(big.Int).Sub(p, big.NewInt(2))
}

// KeyPair holds a Diffie-Hellman keypair over group 14. The private
// exponent is never exposed; call Wipe when the pair is no longer needed.
type KeyPair struct {
	private *big.Int
	public  *big.Int
}

// GenerateKeyPair creates a fresh DH keypair with a random private
// exponent in [2, p-2].
func GenerateKeyPair() (*KeyPair, error) {
	// rand.Int yields [0, p-4); shifting by 2 gives [2, p-2).
	limit := new(big.Int).Sub(groupPrime, big.NewInt(4))
	x, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: private exponent generation: %w", ErrKeyAgreement, err)
	}
	x.Add(x, big.NewInt(2))

	y := new(big.Int).Exp(groupGenerator, x, groupPrime)
	if err := validatePublicValue(y); err != nil {
		wipeBig(x)
		return nil, err
	}

	return &KeyPair{private: x, public: y}, nil
}

// PublicBytes returns the public value encoded as a fixed-size big-endian
// byte sequence suitable for exchange over the transport.
func (kp *KeyPair) PublicBytes() []byte {
	out := make([]byte, PublicValueSize)
	kp.public.FillBytes(out)
	return out
}

// Wipe destroys the private exponent. The keypair is unusable afterwards.
func (kp *KeyPair) Wipe() {
	if kp == nil {
		return
	}
	wipeBig(kp.private)
}

// ParsePublicValue decodes and validates a peer public value received from
// the transport. Degenerate values (0, 1, p-1 and anything outside the
// group) are rejected before any secret-dependent computation.
func ParsePublicValue(data []byte) (*big.Int, error) {
	if len(data) != PublicValueSize {
		return nil, fmt.Errorf("%w: public value is %d bytes, want %d",
			ErrKeyAgreement, len(data), PublicValueSize)
	}
	y := new(big.Int).SetBytes(data)
	if err := validatePublicValue(y); err != nil {
		return nil, err
	}
	return y, nil
}

// validatePublicValue enforces 2 <= y <= p-2.
func validatePublicValue(y *big.Int) error {
	if y.Cmp(big.NewInt(2)) < 0 || y.Cmp(publicMax) > 0 {
		return fmt.Errorf("%w: public value outside group range", ErrKeyAgreement)
	}
	return nil
}

// DeriveSessionKey combines the local private exponent with the peer's
// public value and reduces the raw shared secret to a 256-bit session key
// via SHA-256. All intermediate secret material is wiped before returning,
// on both the success and failure paths.
func DeriveSessionKey(kp *KeyPair, peerPublic *big.Int) ([SessionKeySize]byte, error) {
	var key [SessionKeySize]byte
	if kp == nil || kp.private == nil {
		return key, fmt.Errorf("%w: nil keypair", ErrKeyAgreement)
	}
	if err := validatePublicValue(peerPublic); err != nil {
		return key, err
	}

	secret := new(big.Int).Exp(peerPublic, kp.private, groupPrime)
	secretBytes := make([]byte, PublicValueSize)
	secret.FillBytes(secretBytes)
	wipeBig(secret)

	// SHA-256 output matches the 256-bit AEAD key used by the frame codec.
	key = sha256.Sum256(secretBytes)
	ZeroBytes(secretBytes)

	return key, nil
}
