package storage_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apexdefense/agd/internal/util"
	"github.com/apexdefense/agd/storage"
	"github.com/apexdefense/agd/storage/memory"
)

var fastParams = util.Argon2idParams{Time: 1, MemoryKiB: 8 * 1024, Parallelism: 1}

func TestSealedRepository(t *testing.T) {
	inner := memory.NewRepository()
	sealed, err := storage.NewSealedRepository(inner, "storage passphrase", fastParams)
	require.NoError(t, err)
	defer sealed.Wipe()

	require.NoError(t, sealed.Put("default", "access_token", []byte("tok-secret")))

	t.Run("CiphertextAtRest", func(t *testing.T) {
		raw, err := inner.Get("default", "access_token")
		require.NoError(t, err)
		assert.False(t, bytes.Contains(raw, []byte("tok-secret")))
	})

	t.Run("RoundTrip", func(t *testing.T) {
		got, err := sealed.Get("default", "access_token")
		require.NoError(t, err)
		assert.Equal(t, "tok-secret", string(got))
	})

	t.Run("ReopenWithSamePassphrase", func(t *testing.T) {
		again, err := storage.NewSealedRepository(inner, "storage passphrase", fastParams)
		require.NoError(t, err)
		got, err := again.Get("default", "access_token")
		require.NoError(t, err)
		assert.Equal(t, "tok-secret", string(got))
	})

	t.Run("WrongPassphrase", func(t *testing.T) {
		other, err := storage.NewSealedRepository(inner, "not it", fastParams)
		require.NoError(t, err)
		_, err = other.Get("default", "access_token")
		assert.Error(t, err)
	})

	t.Run("MovedValueFailsToOpen", func(t *testing.T) {
		raw, err := inner.Get("default", "access_token")
		require.NoError(t, err)
		require.NoError(t, inner.Put("default", "auth-storage", raw))
		_, err = sealed.Get("default", "auth-storage")
		assert.Error(t, err)
	})

	t.Run("MissingPassesThrough", func(t *testing.T) {
		_, err := sealed.Get("default", "nope")
		assert.True(t, storage.IsNotFound(err))
	})
}

func TestEnvelopeRejectsUnknownScheme(t *testing.T) {
	key, err := util.RandomBytes(util.KeySize)
	require.NoError(t, err)
	env, err := storage.SealValue(key, []byte("v"), nil)
	require.NoError(t, err)

	env.Scheme = "raw"
	_, err = storage.OpenValue(key, env, nil)
	assert.Error(t, err)

	env.Scheme = "aes256gcm"
	env.Ver = 2
	_, err = storage.OpenValue(key, env, nil)
	assert.Error(t, err)
}
