package session

import "time"

// Route is the navigation root.
type Route int

const (
	RouteAnonymous Route = iota
	RouteAuthenticated
)

func (r Route) String() string {
	if r == RouteAuthenticated {
		return "authenticated"
	}
	return "anonymous"
}

type EventKind int

const (
	EventStartup EventKind = iota
	EventLogin
	EventLogout
	EventExpired
)

type Event struct {
	Kind    EventKind
	Session *Session
	At      time.Time
}

// State is the navigation/auth value passed down to screens.
type State struct {
	Route   Route
	Session *Session
}

func (s State) Authenticated() bool { return s.Route == RouteAuthenticated }

// Transition is the only place the route changes. A valid session always
// yields the authenticated root, whichever event carried it.
func Transition(s State, e Event) State {
	switch e.Kind {
	case EventStartup, EventLogin:
		if e.Session.IsValid(e.At) {
			return State{Route: RouteAuthenticated, Session: e.Session}
		}
		return State{Route: RouteAnonymous}
	case EventLogout, EventExpired:
		return State{Route: RouteAnonymous}
	}
	return s
}
