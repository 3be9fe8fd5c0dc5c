package store

import (
	"slices"
	"sync"
	"time"

	"github.com/apexdefense/agd/internal/uuid"
	"github.com/apexdefense/agd/models"
)

// UIState is a point-in-time copy of the UI store.
type UIState struct {
	SidebarOpen   bool
	Theme         models.Theme
	Notifications []models.Notification
}

// UI holds presentation state shared across views.
type UI struct {
	mu    sync.Mutex
	state UIState
	subs  listeners[UIState]
}

// NewUI returns a UI store with the sidebar open and the dark theme.
func NewUI() *UI {
	return &UI{state: UIState{
		SidebarOpen:   true,
		Theme:         models.ThemeDark,
		Notifications: []models.Notification{},
	}}
}

// ClearNotifications dismisses every queued notification.
func (u *UI) ClearNotifications() {
	u.update(func(s *UIState) { s.Notifications = []models.Notification{} })
}

// ToggleSidebar flips the sidebar.
func (u *UI) ToggleSidebar() {
	u.update(func(s *UIState) { s.SidebarOpen = !s.SidebarOpen })
}

// SetSidebarOpen opens or closes the sidebar.
func (u *UI) SetSidebarOpen(open bool) {
	u.update(func(s *UIState) { s.SidebarOpen = open })
}

// SetTheme selects the colour scheme.
func (u *UI) SetTheme(t models.Theme) {
	u.update(func(s *UIState) { s.Theme = t })
}

// Notify queues a notification and returns its generated ID.
func (u *UI) Notify(severity models.Severity, message string, duration time.Duration) string {
	n := models.Notification{
		ID:       uuid.New(),
		Severity: severity,
		Message:  message,
		Duration: duration,
	}
	u.update(func(s *UIState) { s.Notifications = append(s.Notifications, n) })
	return n.ID
}

// RemoveNotification dismisses the notification with the given ID.
func (u *UI) RemoveNotification(id string) {
	u.update(func(s *UIState) {
		s.Notifications = slices.DeleteFunc(s.Notifications, func(n models.Notification) bool { return n.ID == id })
	})
}

// Notifications returns the queued notifications, oldest first.
func (u *UI) Notifications() []models.Notification {
	u.mu.Lock()
	defer u.mu.Unlock()
	return slices.Clone(u.state.Notifications)
}

// Snapshot returns the full state.
func (u *UI) Snapshot() UIState {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.copyLocked()
}

// Subscribe registers fn to receive the state after every transition.
func (u *UI) Subscribe(fn func(UIState)) (unsubscribe func()) {
	return u.subs.subscribe(fn)
}

func (u *UI) update(fn func(*UIState)) {
	u.mu.Lock()
	fn(&u.state)
	state := u.copyLocked()
	u.mu.Unlock()
	u.subs.notify(state)
}

func (u *UI) copyLocked() UIState {
	s := u.state
	s.Notifications = slices.Clone(u.state.Notifications)
	if s.Notifications == nil {
		s.Notifications = []models.Notification{}
	}
	return s
}
