package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/apexdefense/agd/storage"
)

func TestMemoryRepository(t *testing.T) {
	repo := NewRepository()

	t.Run("PutAndGet", func(t *testing.T) {
		value := []byte(`{"user":null,"isAuthenticated":false}`)
		if err := repo.Put("default", "auth-storage", value); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		got, err := repo.Get("default", "auth-storage")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if string(got) != string(value) {
			t.Errorf("Get returned %q", got)
		}

		// Returned slices are copies.
		got[0] = 'X'
		again, _ := repo.Get("default", "auth-storage")
		if again[0] == 'X' {
			t.Error("memory repository should return copies")
		}
	})

	t.Run("GetNotFound", func(t *testing.T) {
		if _, err := repo.Get("nonexistent", "auth-storage"); !storage.IsNotFound(err) {
			t.Errorf("expected namespace not found, got %v", err)
		}
		if _, err := repo.Get("default", "nonexistent"); !storage.IsNotFound(err) {
			t.Errorf("expected key not found, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		repo.Put("default", "access_token", []byte("tok"))
		keys, err := repo.List("default")
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(keys) != 2 || keys[0] != "access_token" || keys[1] != "auth-storage" {
			t.Errorf("unexpected keys %v", keys)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := repo.Delete("default", "access_token"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if err := repo.Delete("default", "access_token"); !storage.IsNotFound(err) {
			t.Errorf("expected not found on repeated delete, got %v", err)
		}
	})
}

func TestMemoryRepositoryConcurrentAccess(t *testing.T) {
	repo := NewRepository()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i)
			repo.Put("default", key, []byte(key))
			repo.Get("default", key)
		}(i)
	}
	wg.Wait()
	keys, _ := repo.List("default")
	if len(keys) != 50 {
		t.Errorf("expected 50 keys, got %d", len(keys))
	}
}
