// Package bridge turns unauthorized events from the gateway into a
// replacing navigation to the login view.
package bridge

import (
	"log/slog"
	"sync"

	"github.com/apexdefense/agd/events"
	"github.com/apexdefense/agd/routes"
)

// Navigator is the part of routes.Navigator the bridge drives.
type Navigator interface {
	Replace(path string) (routes.Match, error)
}

// Bridge is subscribed to a Signal from Open until Close.
type Bridge struct {
	nav    Navigator
	logger *slog.Logger

	once        sync.Once
	unsubscribe func()
}

// Open subscribes a bridge to signal. Exactly one bridge should be open per
// root view; extra bridges redirect redundantly to the same place.
func Open(signal *events.Signal, nav Navigator, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bridge{nav: nav, logger: logger}
	b.unsubscribe = signal.Subscribe(b.handle)
	return b
}

func (b *Bridge) handle(evt events.Unauthorized) {
	target := evt.Redirect
	if target == "" {
		target = routes.Login
	}
	m, err := b.nav.Replace(target)
	if err != nil {
		b.logger.Error("bridge: redirect after unauthorized failed", "target", target, "error", err)
		return
	}
	b.logger.Info("session expired, redirected", "location", m.Path)
}

// Close unsubscribes the bridge. It is safe to call more than once.
func (b *Bridge) Close() error {
	b.once.Do(b.unsubscribe)
	return nil
}
