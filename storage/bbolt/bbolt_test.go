package bbolt

import (
	"path/filepath"
	"testing"

	"github.com/apexdefense/agd/storage"
	"go.etcd.io/bbolt"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agd-test.db")
	s, err := NewRepositoryFromFile(path, nil)
	if err != nil {
		t.Fatalf("could not open db: %v", err)
	}
	return s, path
}

func TestBBoltStorage(t *testing.T) {
	s, _ := newTestStore(t)
	defer s.Close()

	ns := "default"

	t.Run("GetMissingNamespace", func(t *testing.T) {
		_, err := s.Get(ns, "access_token")
		if !storage.IsNotFound(err) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("PutGet", func(t *testing.T) {
		if err := s.Put(ns, "access_token", []byte("tok-1")); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		got, err := s.Get(ns, "access_token")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if string(got) != "tok-1" {
			t.Errorf("expected tok-1, got %q", got)
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		if err := s.Put(ns, "access_token", []byte("tok-2")); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		got, _ := s.Get(ns, "access_token")
		if string(got) != "tok-2" {
			t.Errorf("expected tok-2, got %q", got)
		}
	})

	t.Run("List", func(t *testing.T) {
		s.Put(ns, "auth-storage", []byte(`{}`))
		keys, err := s.List(ns)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(keys) != 2 {
			t.Errorf("expected 2 keys, got %v", keys)
		}
		empty, err := s.List("never-written")
		if err != nil || len(empty) != 0 {
			t.Errorf("expected empty list for unknown namespace, got %v, %v", empty, err)
		}
	})

	t.Run("NamespacesIsolated", func(t *testing.T) {
		s.Put("staging", "access_token", []byte("staging-tok"))
		got, _ := s.Get(ns, "access_token")
		if string(got) != "tok-2" {
			t.Errorf("namespace leak: got %q", got)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := s.Delete(ns, "access_token"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := s.Get(ns, "access_token"); !storage.IsNotFound(err) {
			t.Errorf("expected not found after delete, got %v", err)
		}
		if err := s.Delete(ns, "access_token"); !storage.IsNotFound(err) {
			t.Errorf("expected not found on second delete, got %v", err)
		}
	})
}

func TestBBoltSurvivesReopen(t *testing.T) {
	s, path := newTestStore(t)
	if err := s.Put("default", "access_token", []byte("persisted")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	reopened := NewRepository(db)
	defer reopened.Close()

	got, err := reopened.Get("default", "access_token")
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if string(got) != "persisted" {
		t.Errorf("expected persisted, got %q", got)
	}
}
