// Package auth contains the password hasher and the bearer token service.
package auth

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"golang.org/x/crypto/bcrypt"
)

const (
	saltLength = 16
	keyLength  = 32
)

// DefaultParams are the argon2id costs used when configuration sets none.
var DefaultParams = cryptox.Params{MemoryKiB: 64 * 1024, Iterations: 1, Parallelism: 4}

// Argon2idHasher hashes new passwords with argon2id and verifies both its
// own PHC strings and legacy bcrypt records.
type Argon2idHasher struct {
	params cryptox.Params
}

func NewArgon2idHasher(params cryptox.Params) *Argon2idHasher {
	return &Argon2idHasher{params: params}
}

// Hash returns the PHC encoding of password under a fresh random salt.
func (h *Argon2idHasher) Hash(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	pw := []byte(password)
	defer common.WipeByteArray(pw)

	key := cryptox.DeriveKey(pw, salt, h.params, keyLength)
	return cryptox.EncodePHC(h.params, salt, key), nil
}

// Verify reports whether password matches encoded. Unparseable records
// never match.
func (h *Argon2idHasher) Verify(password, encoded string) bool {
	if isBcrypt(encoded) {
		return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password)) == nil
	}

	d, err := cryptox.DecodePHC(encoded)
	if err != nil {
		return false
	}

	pw := []byte(password)
	defer common.WipeByteArray(pw)

	return d.Matches(pw)
}

// NeedsRehash reports whether encoded was produced by another algorithm or
// with parameters different from the hasher's current ones.
func (h *Argon2idHasher) NeedsRehash(encoded string) bool {
	d, err := cryptox.DecodePHC(encoded)
	if err != nil {
		return true
	}
	return d.Params != h.params || len(d.Key) != keyLength || len(d.Salt) != saltLength
}

func isBcrypt(encoded string) bool {
	return strings.HasPrefix(encoded, "$2a$") ||
		strings.HasPrefix(encoded, "$2b$") ||
		strings.HasPrefix(encoded, "$2y$")
}
