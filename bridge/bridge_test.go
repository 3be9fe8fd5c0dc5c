package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/apexdefense/agd/events"
	"github.com/apexdefense/agd/routes"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type authFlag struct{ v bool }

func (a *authFlag) IsAuthenticated() bool { return a.v }

func TestBridgeRedirectsOnSignal(t *testing.T) {
	auth := &authFlag{v: true}
	nav := routes.NewNavigator(routes.DefaultTable(), auth)
	_, err := nav.Push(routes.Projects)
	require.NoError(t, err)

	signal := events.NewSignal()
	b := Open(signal, nav, nil)
	defer b.Close()

	auth.v = false
	signal.Emit(events.Unauthorized{Redirect: routes.Login})

	assert.Equal(t, routes.Login, nav.Location())
	assert.Equal(t, []string{routes.Login}, nav.History(), "redirect replaces, no back-navigation loop")
}

func TestBridgeEmptyRedirectFallsBackToLogin(t *testing.T) {
	nav := routes.NewNavigator(routes.DefaultTable(), &authFlag{})
	signal := events.NewSignal()
	b := Open(signal, nav, nil)
	defer b.Close()

	signal.Emit(events.Unauthorized{})
	assert.Equal(t, routes.Login, nav.Location())
}

func TestBridgeCloseUnsubscribes(t *testing.T) {
	signal := events.NewSignal()
	nav := routes.NewNavigator(routes.DefaultTable(), &authFlag{})
	b := Open(signal, nav, nil)
	assert.Equal(t, 1, signal.Subscribers())

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())
	assert.Zero(t, signal.Subscribers())

	signal.Emit(events.Unauthorized{Redirect: routes.Login})
	assert.Empty(t, nav.History())
}

func TestMultipleBridgesConverge(t *testing.T) {
	signal := events.NewSignal()
	nav := routes.NewNavigator(routes.DefaultTable(), &authFlag{})
	first := Open(signal, nav, nil)
	second := Open(signal, nav, nil)
	defer first.Close()
	defer second.Close()

	signal.Emit(events.Unauthorized{Redirect: routes.Login})
	assert.Equal(t, []string{routes.Login}, nav.History())
}
