package auth

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticProviderVerify(t *testing.T) {
	provider := NewReferenceProvider()

	cases := []struct {
		name    string
		creds   Credentials
		wantErr bool
	}{
		{name: "correct credentials", creds: Credentials{Username: "user", Password: "pass"}},
		{name: "wrong password", creds: Credentials{Username: "user", Password: "wrong"}, wantErr: true},
		{name: "wrong username", creds: Credentials{Username: "admin", Password: "pass"}, wantErr: true},
		{name: "both wrong", creds: Credentials{Username: "admin", Password: "wrong"}, wantErr: true},
		{name: "empty", creds: Credentials{}, wantErr: true},
		{name: "password longer than stored", creds: Credentials{Username: "user", Password: "passpass"}, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			principal, err := provider.Verify(tc.creds)
			if tc.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidCredentials),
					"error = %v, want ErrInvalidCredentials", err)
				assert.Empty(t, principal)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "user", principal)
		})
	}
}

func TestHashedProviderVerify(t *testing.T) {
	provider := NewHashedProvider()
	require.NoError(t, provider.Add("alice", "correct horse"))

	principal, err := provider.Verify(Credentials{Username: "alice", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, "alice", principal)

	_, err = provider.Verify(Credentials{Username: "alice", Password: "battery staple"})
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	_, err = provider.Verify(Credentials{Username: "bob", Password: "correct horse"})
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
}

func TestLoadHashedProvider(t *testing.T) {
	// Build a store in memory, then write its records out and reload them.
	src := NewHashedProvider()
	require.NoError(t, src.Add("carol", "s3cret"))
	rec := src.users["carol"]

	content := "[[user]]\n" +
		"name = \"carol\"\n" +
		"salt = \"" + hex.EncodeToString(rec.salt) + "\"\n" +
		"hash = \"" + hex.EncodeToString(rec.hash) + "\"\n"

	path := filepath.Join(t.TempDir(), "trust.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	loaded, err := LoadHashedProvider(path)
	require.NoError(t, err)

	principal, err := loaded.Verify(Credentials{Username: "carol", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, "carol", principal)

	_, err = loaded.Verify(Credentials{Username: "carol", Password: "wrong"})
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
}

func TestLoadHashedProviderBadFile(t *testing.T) {
	_, err := LoadHashedProvider(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[user]]\nname=\"x\"\nsalt=\"zz\"\nhash=\"zz\"\n"), 0o600))
	_, err = LoadHashedProvider(path)
	assert.Error(t, err)
}
