// Package session holds the in-memory signed-in state shared across the
// client. It mirrors what the credential store persists but is authoritative
// for callers: reads never touch storage or the network.
package session

import (
	"sync"

	"github.com/09ahmad/drop-go/api"
)

// Session is a point-in-time snapshot of the signed-in state.
type Session struct {
	User    *api.User // Signed-in account, nil when signed out
	Loading bool      // True during restore and explicit sign-in/out calls
}

// Manager owns the session. The user is replaced wholesale on sign-in and
// cleared on sign-out; individual fields are never patched in place.
type Manager struct {
	lock    sync.RWMutex
	user    *api.User
	loading bool
}

func NewManager() *Manager {
	return &Manager{}
}

// Current returns a snapshot of the session.
func (m *Manager) Current() Session {
	m.lock.RLock()
	defer m.lock.RUnlock()

	return Session{User: copyUser(m.user), Loading: m.loading}
}

// User returns the signed-in account, or nil when signed out.
func (m *Manager) User() *api.User {
	m.lock.RLock()
	defer m.lock.RUnlock()

	return copyUser(m.user)
}

// IsAuthenticated reports whether an account is signed in.
func (m *Manager) IsAuthenticated() bool {
	m.lock.RLock()
	defer m.lock.RUnlock()

	return m.user != nil
}

// IsLoading reports whether an auth operation is in flight.
func (m *Manager) IsLoading() bool {
	m.lock.RLock()
	defer m.lock.RUnlock()

	return m.loading
}

// SetUser replaces the signed-in account.
func (m *Manager) SetUser(user *api.User) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.user = copyUser(user)
}

// Clear signs the session out.
func (m *Manager) Clear() {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.user = nil
}

// SetLoading flips the loading flag.
func (m *Manager) SetLoading(loading bool) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.loading = loading
}

// copyUser keeps callers from mutating the shared record in place.
func copyUser(u *api.User) *api.User {
	if u == nil {
		return nil
	}
	copied := *u
	return &copied
}
