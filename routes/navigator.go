package routes

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// maxRedirects bounds guard and redirect-route chains.
const maxRedirects = 8

// ErrRedirectLoop is returned when resolving a path does not settle on a
// renderable route.
var ErrRedirectLoop = errors.New("too many redirects")

// Navigator tracks the current location and its history. Every navigation
// runs the destination's guard; a redirecting guard replaces the entry it
// was asked to add, so the rejected path never remains in history.
type Navigator struct {
	table *Table
	auth  AuthState

	mu      sync.Mutex
	history []string
}

// NewNavigator returns a navigator with empty history.
func NewNavigator(table *Table, auth AuthState) *Navigator {
	return &Navigator{table: table, auth: auth}
}

// Table returns the route table the navigator resolves against.
func (n *Navigator) Table() *Table {
	return n.table
}

// Resolve follows redirects from path until a route renders. It does not
// touch history.
func (n *Navigator) Resolve(path string) (Match, error) {
	m := n.table.Match(path)
	for range maxRedirects {
		d := m.Route.Check(n.auth)
		if d.Render {
			return m, nil
		}
		m = n.table.Match(d.Redirect)
	}
	return Match{}, fmt.Errorf("resolving %s: %w", path, ErrRedirectLoop)
}

// Push navigates to path, adding a history entry for the resolved location.
func (n *Navigator) Push(path string) (Match, error) {
	m, err := n.Resolve(path)
	if err != nil {
		return Match{}, err
	}
	n.mu.Lock()
	n.history = append(n.history, m.Path)
	n.mu.Unlock()
	return m, nil
}

// Replace navigates to path, overwriting the current history entry.
func (n *Navigator) Replace(path string) (Match, error) {
	m, err := n.Resolve(path)
	if err != nil {
		return Match{}, err
	}
	n.mu.Lock()
	if len(n.history) == 0 {
		n.history = append(n.history, m.Path)
	} else {
		n.history[len(n.history)-1] = m.Path
	}
	n.mu.Unlock()
	return m, nil
}

// Back drops the current entry and re-resolves the previous one, which may
// redirect again if the session changed since it was visited. It reports
// false when there is nothing to go back to.
func (n *Navigator) Back() (Match, bool, error) {
	n.mu.Lock()
	if len(n.history) < 2 {
		n.mu.Unlock()
		return Match{}, false, nil
	}
	n.history = n.history[:len(n.history)-1]
	prev := n.history[len(n.history)-1]
	n.mu.Unlock()

	m, err := n.Replace(prev)
	return m, true, err
}

// Location returns the current path, or "" before the first navigation.
func (n *Navigator) Location() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.history) == 0 {
		return ""
	}
	return n.history[len(n.history)-1]
}

// History returns a copy of the history, oldest first.
func (n *Navigator) History() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.history)
}
