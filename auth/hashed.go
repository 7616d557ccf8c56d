package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/BurntSushi/toml"
	"golang.org/x/crypto/argon2"
)

// Argon2id parameters for password hashing. These follow the low-memory
// recommendation from RFC 9106.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
	saltLen      = 16
)

// HashedProvider is a trust store keyed by username, holding argon2id
// password hashes. Safe for concurrent use.
type HashedProvider struct {
	mu    sync.RWMutex
	users map[string]hashedRecord
}

type hashedRecord struct {
	salt []byte
	hash []byte
}

// NewHashedProvider creates an empty hashed trust store.
func NewHashedProvider() *HashedProvider {
	return &HashedProvider{users: make(map[string]hashedRecord)}
}

// Add registers a user, hashing the password under a fresh random salt.
func (p *HashedProvider) Add(username, password string) error {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("salt generation: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	p.mu.Lock()
	p.users[username] = hashedRecord{salt: salt, hash: hash}
	p.mu.Unlock()

	return nil
}

// Verify checks the supplied credentials against the stored hash. Unknown
// users still run a hash computation so the timing does not reveal whether
// the username exists.
func (p *HashedProvider) Verify(creds Credentials) (string, error) {
	p.mu.RLock()
	rec, ok := p.users[creds.Username]
	p.mu.RUnlock()

	if !ok {
		rec = hashedRecord{salt: make([]byte, saltLen), hash: make([]byte, argonKeyLen)}
	}

	candidate := argon2.IDKey([]byte(creds.Password), rec.salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	if !ok || subtle.ConstantTimeCompare(candidate, rec.hash) != 1 {
		return "", ErrInvalidCredentials
	}

	return creds.Username, nil
}

// trustStoreFile mirrors the on-disk TOML layout of a hashed trust store:
//
//	[[user]]
//	name = "alice"
//	salt = "hex"
//	hash = "hex"
type trustStoreFile struct {
	Users []trustStoreUser `toml:"user"`
}

type trustStoreUser struct {
	Name string `toml:"name"`
	Salt string `toml:"salt"`
	Hash string `toml:"hash"`
}

// LoadHashedProvider reads a TOML trust store file into a HashedProvider.
func LoadHashedProvider(path string) (*HashedProvider, error) {
	var file trustStoreFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("trust store load failed (%s): %w", path, err)
	}

	p := NewHashedProvider()
	for _, u := range file.Users {
		salt, err := hex.DecodeString(u.Salt)
		if err != nil || len(salt) != saltLen {
			return nil, fmt.Errorf("trust store entry %q: bad salt", u.Name)
		}
		hash, err := hex.DecodeString(u.Hash)
		if err != nil || len(hash) != argonKeyLen {
			return nil, fmt.Errorf("trust store entry %q: bad hash", u.Name)
		}
		p.users[u.Name] = hashedRecord{salt: salt, hash: hash}
	}

	return p, nil
}
