package routes

// AuthState is the capability the guards decide on. session.Store
// satisfies it.
type AuthState interface {
	IsAuthenticated() bool
}

// Decision is the outcome of a guard. When Render is false the view must
// not render and navigation continues at Redirect, replacing the current
// history entry when Replace is set.
type Decision struct {
	Render   bool
	Redirect string
	Replace  bool
}

// Guard decides whether a view renders for the current session.
type Guard func(AuthState) Decision

// RequireAuth renders for an authenticated session and otherwise replaces
// the location with the login view.
func RequireAuth(auth AuthState) Decision {
	if auth.IsAuthenticated() {
		return Decision{Render: true}
	}
	return Decision{Redirect: Login, Replace: true}
}

// RequireAnonymous renders when no session is held and otherwise replaces
// the location with the dashboard.
func RequireAnonymous(auth AuthState) Decision {
	if !auth.IsAuthenticated() {
		return Decision{Render: true}
	}
	return Decision{Redirect: Dashboard, Replace: true}
}

// GuardFor returns the guard that applies to routes with access a.
func GuardFor(a Access) Guard {
	switch a {
	case Protected:
		return RequireAuth
	case PublicOnly:
		return RequireAnonymous
	}
	return nil
}

// Check applies the route's guard, or the route's redirect.
func (r Route) Check(auth AuthState) Decision {
	if r.Access == Redirect {
		return Decision{Redirect: r.Target, Replace: true}
	}
	return GuardFor(r.Access)(auth)
}
