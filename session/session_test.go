package session_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apexdefense/agd/models"
	"github.com/apexdefense/agd/session"
	"github.com/apexdefense/agd/storage/memory"
)

func testUser() *models.User {
	return &models.User{ID: "usr-1", Email: "a@b.com", FullName: "A B", Role: models.RoleAnalyst, IsActive: true}
}

func TestSetUserFlagTracksUser(t *testing.T) {
	tests := []struct {
		name string
		user *models.User
		want bool
	}{
		{"user", testUser(), true},
		{"nil", nil, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := session.New(memory.NewRepository())
			require.NoError(t, s.SetUser(tc.user))
			assert.Equal(t, tc.want, s.IsAuthenticated())
			assert.Equal(t, tc.want, s.User() != nil)
			snap := s.Snapshot()
			assert.Equal(t, snap.IsAuthenticated, snap.User != nil)
		})
	}
}

func TestSetUserCopies(t *testing.T) {
	s := session.New(memory.NewRepository())
	u := testUser()
	require.NoError(t, s.SetUser(u))
	u.FullName = "changed"
	assert.Equal(t, "A B", s.User().FullName)

	got := s.User()
	got.FullName = "also changed"
	assert.Equal(t, "A B", s.User().FullName)
}

func TestSnapshotPersisted(t *testing.T) {
	repo := memory.NewRepository()
	s := session.New(repo, session.WithNamespace("ops"))
	require.NoError(t, s.SetUser(testUser()))

	data, err := repo.Get("ops", session.StorageKey)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, true, raw["isAuthenticated"])
	assert.Equal(t, "a@b.com", raw["user"].(map[string]any)["email"])

	require.NoError(t, s.Logout())
	data, err = repo.Get("ops", session.StorageKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"user":null,"isAuthenticated":false}`, string(data))
}

func TestRestore(t *testing.T) {
	repo := memory.NewRepository()
	require.NoError(t, session.New(repo).SetUser(testUser()))

	restored := session.New(repo)
	require.NoError(t, restored.Restore())
	assert.True(t, restored.IsAuthenticated())
	assert.Equal(t, "usr-1", restored.User().ID)
}

func TestRestoreMissingSnapshot(t *testing.T) {
	s := session.New(memory.NewRepository())
	require.NoError(t, s.Restore())
	assert.False(t, s.IsAuthenticated())
}

func TestRestoreInconsistentSnapshots(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"corrupt", `{"user":`},
		{"flag without user", `{"user":null,"isAuthenticated":true}`},
		{"user without flag", `{"user":{"id":"usr-1"},"isAuthenticated":false}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := memory.NewRepository()
			require.NoError(t, repo.Put("default", session.StorageKey, []byte(tc.data)))
			var logs bytes.Buffer
			s := session.New(repo, session.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

			require.NoError(t, s.Restore())
			assert.False(t, s.IsAuthenticated())
			assert.Nil(t, s.User())
		})
	}
}

func TestRestoreCorruptLogsWarning(t *testing.T) {
	repo := memory.NewRepository()
	require.NoError(t, repo.Put("default", session.StorageKey, []byte("not json")))
	var logs bytes.Buffer
	s := session.New(repo, session.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	require.NoError(t, s.Restore())
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "unreadable snapshot")
}

func TestLogoutIdempotent(t *testing.T) {
	repo := memory.NewRepository()
	s := session.New(repo)
	require.NoError(t, s.SetUser(testUser()))

	var snaps []session.Snapshot
	s.Subscribe(func(snap session.Snapshot) { snaps = append(snaps, snap) })

	require.NoError(t, s.Logout())
	once, err := repo.Get("default", session.StorageKey)
	require.NoError(t, err)
	require.NoError(t, s.Logout())
	twice, err := repo.Get("default", session.StorageKey)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
	assert.False(t, s.IsAuthenticated())
	assert.Equal(t, []session.Snapshot{{}}, snaps, "second logout does not notify")
}

func TestSubscribe(t *testing.T) {
	s := session.New(memory.NewRepository())
	var got []bool
	unsubscribe := s.Subscribe(func(snap session.Snapshot) { got = append(got, snap.IsAuthenticated) })

	require.NoError(t, s.SetUser(testUser()))
	require.NoError(t, s.Logout())
	unsubscribe()
	unsubscribe()
	require.NoError(t, s.SetUser(testUser()))

	assert.Equal(t, []bool{true, false}, got)
}

func TestSubscriberMayReadStore(t *testing.T) {
	s := session.New(memory.NewRepository())
	var seen bool
	s.Subscribe(func(session.Snapshot) { seen = s.IsAuthenticated() })

	require.NoError(t, s.SetUser(testUser()))
	assert.True(t, seen)
}
