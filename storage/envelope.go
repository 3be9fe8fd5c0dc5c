package storage

import (
	"fmt"

	"github.com/apexdefense/agd/internal/util"
)

const envelopeScheme = "aes256gcm"

// Envelope is a sealed value as persisted by SealedRepository.
type Envelope struct {
	Ver        int    `json:"ver"`
	Scheme     string `json:"scheme"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

// SealValue encrypts plaintext into an Envelope bound to aad.
func SealValue(key, plaintext, aad []byte) (*Envelope, error) {
	sealed, err := util.Seal(key, plaintext, aad)
	if err != nil {
		return nil, err
	}
	return &Envelope{
		Ver:        1,
		Scheme:     envelopeScheme,
		Nonce:      sealed[:util.NonceSize],
		Ciphertext: sealed[util.NonceSize:],
	}, nil
}

// OpenValue decrypts an Envelope produced by SealValue.
func OpenValue(key []byte, env *Envelope, aad []byte) ([]byte, error) {
	if env.Ver != 1 {
		return nil, fmt.Errorf("unsupported envelope version: %d", env.Ver)
	}
	if env.Scheme != envelopeScheme {
		return nil, fmt.Errorf("unsupported envelope scheme: %s", env.Scheme)
	}
	full := make([]byte, 0, len(env.Nonce)+len(env.Ciphertext))
	full = append(full, env.Nonce...)
	full = append(full, env.Ciphertext...)
	return util.Open(key, full, aad)
}
