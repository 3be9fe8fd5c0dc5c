// Package session holds the current user and the authenticated flag, and
// persists them to durable storage so a restart resumes the session.
package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/apexdefense/agd/models"
	"github.com/apexdefense/agd/storage"
)

const (
	// StorageKey is the durable storage key holding the session snapshot.
	StorageKey = "auth-storage"

	defaultNamespace = "default"
)

// Snapshot is the persisted and observable state of the session.
// IsAuthenticated is true exactly when User is non-nil.
type Snapshot struct {
	User            *models.User `json:"user"`
	IsAuthenticated bool         `json:"isAuthenticated"`
}

// Store is the session store. It is safe for concurrent use.
type Store struct {
	repo      storage.Repository
	namespace string
	logger    *slog.Logger

	mu   sync.Mutex
	user *models.User

	subMu sync.Mutex
	next  uint64
	subs  map[uint64]func(Snapshot)
}

// Option configures a Store.
type Option func(*Store)

// WithNamespace selects the storage namespace the snapshot is written to.
func WithNamespace(ns string) Option {
	return func(s *Store) {
		s.namespace = ns
	}
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New returns a logged-out Store backed by repo. Call Restore to load a
// persisted session.
func New(repo storage.Repository, opts ...Option) *Store {
	s := &Store{
		repo:      repo,
		namespace: defaultNamespace,
		subs:      make(map[uint64]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Restore loads the persisted snapshot. A missing snapshot leaves the store
// logged out. A snapshot that cannot be decoded, or that does not hold a
// user, also restores as logged out.
func (s *Store) Restore() error {
	data, err := s.repo.Get(s.namespace, StorageKey)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("loading session snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.Warn("session: discarding unreadable snapshot", "namespace", s.namespace, "error", err)
		s.apply(nil)
		return nil
	}
	if !snap.IsAuthenticated || snap.User == nil {
		s.apply(nil)
		return nil
	}
	s.apply(snap.User)
	return nil
}

// SetUser replaces the session user. A nil user logs out. The user and the
// flag change together and the new snapshot is persisted before returning.
func (s *Store) SetUser(u *models.User) error {
	if u != nil {
		cp := *u
		u = &cp
	}
	return s.commit(u)
}

// Logout clears the user and the flag. Logging out twice is the same as
// logging out once.
func (s *Store) Logout() error {
	return s.commit(nil)
}

// User returns a copy of the current user, or nil when logged out.
func (s *Store) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	cp := *s.user
	return &cp
}

// IsAuthenticated reports whether a user is set.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn to receive the new snapshot after every change.
// The returned function removes it and is safe to call more than once.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Store) snapshotLocked() Snapshot {
	if s.user == nil {
		return Snapshot{}
	}
	cp := *s.user
	return Snapshot{User: &cp, IsAuthenticated: true}
}

// commit applies u, persists the result and notifies subscribers when the
// state changed. The in-memory state is updated even if persisting fails.
func (s *Store) commit(u *models.User) error {
	s.mu.Lock()
	changed := s.user != nil || u != nil
	s.user = u
	snap := s.snapshotLocked()
	err := s.persistLocked(snap)
	s.mu.Unlock()

	if changed {
		s.notify(snap)
	}
	return err
}

// apply sets state loaded from storage without writing it back.
func (s *Store) apply(u *models.User) {
	s.mu.Lock()
	changed := s.user != nil || u != nil
	s.user = u
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if changed {
		s.notify(snap)
	}
}

func (s *Store) persistLocked(snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding session snapshot: %w", err)
	}
	if err := s.repo.Put(s.namespace, StorageKey, data); err != nil {
		return fmt.Errorf("persisting session snapshot: %w", err)
	}
	return nil
}

func (s *Store) notify(snap Snapshot) {
	s.subMu.Lock()
	ids := make([]uint64, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	fns := make([]func(Snapshot), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
