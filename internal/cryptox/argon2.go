// Package cryptox contains the argon2id key derivation and the PHC string
// encoding used to store password hashes.
package cryptox

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2idPrefix starts every PHC string produced by EncodePHC.
const Argon2idPrefix = "$argon2id$"

// MaxMemoryKiB bounds the memory cost accepted from stored records, so a
// corrupted record cannot make verification allocate unbounded memory.
const MaxMemoryKiB = 4 * 1024 * 1024

var ErrInvalidEncoding = errors.New("invalid argon2id encoding")

// Params are argon2id cost parameters.
type Params struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
}

// Decoded is a parsed PHC string.
type Decoded struct {
	Params Params
	Salt   []byte
	Key    []byte
}

// DeriveKey runs argon2id over password and salt.
func DeriveKey(password, salt []byte, p Params, keyLen uint32) []byte {
	return argon2.IDKey(password, salt, p.Iterations, p.MemoryKiB, p.Parallelism, keyLen)
}

// EncodePHC formats a derived key as
// $argon2id$v=19$m=<KiB>,t=<iterations>,p=<parallelism>$<salt>$<key>
// with unpadded standard base64 for salt and key.
func EncodePHC(p Params, salt, key []byte) string {
	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		Argon2idPrefix, argon2.Version, p.MemoryKiB, p.Iterations, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key))
}

// DecodePHC parses a string produced by EncodePHC. Any deviation from the
// format, an unsupported version or parameters argon2 would reject yield
// ErrInvalidEncoding.
func DecodePHC(encoded string) (*Decoded, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return nil, ErrInvalidEncoding
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, ErrInvalidEncoding
	}

	var p Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.MemoryKiB, &p.Iterations, &p.Parallelism); err != nil {
		return nil, ErrInvalidEncoding
	}
	if p.Iterations < 1 || p.Parallelism < 1 || p.MemoryKiB < 8*uint32(p.Parallelism) || p.MemoryKiB > MaxMemoryKiB {
		return nil, ErrInvalidEncoding
	}

	salt, err := base64.RawStdEncoding.Strict().DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return nil, ErrInvalidEncoding
	}
	key, err := base64.RawStdEncoding.Strict().DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return nil, ErrInvalidEncoding
	}

	return &Decoded{Params: p, Salt: salt, Key: key}, nil
}

// Matches recomputes the key for password with d's parameters and salt and
// compares it to the stored key in constant time.
func (d *Decoded) Matches(password []byte) bool {
	other := DeriveKey(password, d.Salt, d.Params, uint32(len(d.Key)))
	return subtle.ConstantTimeCompare(d.Key, other) == 1
}
