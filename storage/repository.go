// Package storage provides the durable key/value layer the client uses to
// survive restarts: the persisted session snapshot and the credential token.
package storage

import "errors"

var (
	// ErrNotFound is returned when a key does not exist in its namespace.
	ErrNotFound = errors.New("key not found")
	// ErrNamespaceNotFound is returned when a namespace has never been written.
	ErrNamespaceNotFound = errors.New("namespace not found")
)

// IsNotFound reports whether err means the key or its namespace is absent.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrNamespaceNotFound)
}

// Repository is durable storage partitioned by namespace (one per profile).
// Implementations must make a Put visible to the next Get.
type Repository interface {
	Get(namespace, key string) ([]byte, error)
	Put(namespace, key string, value []byte) error
	Delete(namespace, key string) error
	List(namespace string) ([]string, error)
}
