package storage

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/apexdefense/agd/internal/util"
)

const (
	metaNamespace = "__agd"
	saltKey       = "storage_salt"
	saltLen       = 16
)

// SealedRepository encrypts every value before handing it to the wrapped
// Repository. Each namespace gets its own HKDF sub-key and each value is
// bound to "namespace/key" as AAD, so a value copied to another key fails
// to open.
type SealedRepository struct {
	inner  Repository
	master []byte

	mu   sync.Mutex
	keys map[string][]byte
}

var _ Repository = (*SealedRepository)(nil)

// NewSealedRepository stretches passphrase with the salt stored in inner,
// creating the salt on first use.
func NewSealedRepository(inner Repository, passphrase string, params util.Argon2idParams) (*SealedRepository, error) {
	salt, err := inner.Get(metaNamespace, saltKey)
	if IsNotFound(err) {
		salt, err = util.RandomBytes(saltLen)
		if err != nil {
			return nil, err
		}
		if err := inner.Put(metaNamespace, saltKey, salt); err != nil {
			return nil, fmt.Errorf("persisting storage salt: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("loading storage salt: %w", err)
	}
	return &SealedRepository{
		inner:  inner,
		master: util.StretchPassphrase(passphrase, salt, params),
		keys:   make(map[string][]byte),
	}, nil
}

// Wipe zeroes the derived key material. The repository is unusable afterwards.
func (s *SealedRepository) Wipe() {
	s.mu.Lock()
	defer s.mu.Unlock()
	util.Wipe(s.master)
	for ns, k := range s.keys {
		util.Wipe(k)
		delete(s.keys, ns)
	}
}

func (s *SealedRepository) namespaceKey(namespace string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if k, ok := s.keys[namespace]; ok {
		return k, nil
	}
	k, err := util.SubKey(s.master, "agd:storage:"+namespace)
	if err != nil {
		return nil, err
	}
	s.keys[namespace] = k
	return k, nil
}

func aadFor(namespace, key string) []byte {
	return []byte(namespace + "/" + key)
}

func (s *SealedRepository) Get(namespace, key string) ([]byte, error) {
	raw, err := s.inner.Get(namespace, key)
	if err != nil {
		return nil, err
	}
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%s/%s: decoding envelope: %w", namespace, key, err)
	}
	k, err := s.namespaceKey(namespace)
	if err != nil {
		return nil, err
	}
	value, err := OpenValue(k, &env, aadFor(namespace, key))
	if err != nil {
		return nil, fmt.Errorf("%s/%s: %w", namespace, key, err)
	}
	return value, nil
}

func (s *SealedRepository) Put(namespace, key string, value []byte) error {
	k, err := s.namespaceKey(namespace)
	if err != nil {
		return err
	}
	env, err := SealValue(k, value, aadFor(namespace, key))
	if err != nil {
		return err
	}
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return s.inner.Put(namespace, key, data)
}

func (s *SealedRepository) Delete(namespace, key string) error {
	return s.inner.Delete(namespace, key)
}

func (s *SealedRepository) List(namespace string) ([]string, error) {
	return s.inner.List(namespace)
}
