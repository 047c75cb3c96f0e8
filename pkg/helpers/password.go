package helpers

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// DefaultKDFIterations is the PBKDF2-SHA256 work factor for new hashes.
	DefaultKDFIterations = 310000
	saltSize             = 16
	keySize              = 32
)

var errMalformedHash = errors.New("malformed password hash")

// NewSalt returns a fresh random salt, hex encoded.
func NewSalt() (string, error) {
	b := make([]byte, saltSize)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// DerivePasswordKey runs PBKDF2-SHA256 over password and the raw salt bytes.
func DerivePasswordKey(password string, salt []byte, iterations int) []byte {
	return pbkdf2.Key([]byte(password), salt, iterations, keySize, sha256.New)
}

// HashPassword derives the stored secret for password with a new per-user salt.
// The hash is encoded as "<iterations>$<hex key>" so the work factor can be
// raised without invalidating existing users.
func HashPassword(password string, iterations int) (hash, salt string, err error) {
	if iterations <= 0 {
		iterations = DefaultKDFIterations
	}
	salt, err = NewSalt()
	if err != nil {
		return "", "", err
	}
	raw, _ := hex.DecodeString(salt)
	key := DerivePasswordKey(password, raw, iterations)
	return strconv.Itoa(iterations) + "$" + hex.EncodeToString(key), salt, nil
}

// CompareHashAndPassword recomputes the key with the stored salt and compares
// in constant time.
func CompareHashAndPassword(hash, salt, password string) bool {
	iterations, want, err := parseHash(hash)
	if err != nil {
		return false
	}
	raw, err := hex.DecodeString(salt)
	if err != nil {
		return false
	}
	got := DerivePasswordKey(password, raw, iterations)
	return subtle.ConstantTimeCompare(got, want) == 1
}

func parseHash(hash string) (int, []byte, error) {
	iterStr, keyHex, ok := strings.Cut(hash, "$")
	if !ok {
		return 0, nil, errMalformedHash
	}
	iterations, err := strconv.Atoi(iterStr)
	if err != nil || iterations <= 0 {
		return 0, nil, fmt.Errorf("%w: iterations", errMalformedHash)
	}
	key, err := hex.DecodeString(keyHex)
	if err != nil || len(key) != keySize {
		return 0, nil, fmt.Errorf("%w: key", errMalformedHash)
	}
	return iterations, key, nil
}
