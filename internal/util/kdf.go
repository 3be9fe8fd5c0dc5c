package util

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/text/unicode/norm"
)

// Argon2idParams tunes the passphrase-to-key stretch for sealed storage.
type Argon2idParams struct {
	Time        uint32 `json:"time"`
	MemoryKiB   uint32 `json:"memory"`
	Parallelism uint8  `json:"parallelism"`
}

// DefaultArgon2idParams is sized for an interactive CLI start-up.
func DefaultArgon2idParams() Argon2idParams {
	return Argon2idParams{
		Time:        1,
		MemoryKiB:   64 * 1024,
		Parallelism: 4,
	}
}

// Normalize applies NFKD so visually identical passphrases derive the same
// key.
func Normalize(s string) string {
	return norm.NFKD.String(s)
}

// StretchPassphrase derives a master key from a passphrase and salt.
func StretchPassphrase(passphrase string, salt []byte, params Argon2idParams) []byte {
	return argon2.IDKey([]byte(Normalize(passphrase)), salt, params.Time, params.MemoryKiB, params.Parallelism, KeySize)
}

// SubKey expands a master key into a purpose-bound key, e.g. one per
// storage namespace.
func SubKey(master []byte, info string) ([]byte, error) {
	r := hkdf.New(sha256.New, master, nil, []byte(info))
	k := make([]byte, KeySize)
	if _, err := io.ReadFull(r, k); err != nil {
		return nil, fmt.Errorf("reading from HKDF: %w", err)
	}
	return k, nil
}
