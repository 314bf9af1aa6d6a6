// Package playback provides the shared playback arbitration used by all buttons.
package playback

import "sync"

// Identity identifies a registered button.
type Identity int

// NoIdentity marks a free lock or an inactive autoplay.
const NoIdentity Identity = -1

// State is a snapshot of the arbiter.
type State struct {
	LockHolder Identity // NoIdentity when the lock is free
	Active     Identity // NoIdentity when no button drives autoplay
}

// Arbiter is the single coordination point shared by every button.
// It holds the activation lock and the identity of the button driving autoplay.
// The two pieces of state are independent of each other.
type Arbiter struct {
	mu         sync.Mutex
	lockHolder Identity
	active     Identity
}

// NewArbiter creates an arbiter with a free lock and no active autoplay.
func NewArbiter() *Arbiter {
	return &Arbiter{
		lockHolder: NoIdentity,
		active:     NoIdentity,
	}
}

// IsLocked returns true if some button holds the lock.
func (a *Arbiter) IsLocked() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lockHolder != NoIdentity
}

// LockHolder returns the identity holding the lock, or NoIdentity.
func (a *Arbiter) LockHolder() Identity {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lockHolder
}

// Acquire sets the lock holder unconditionally.
// Callers are expected to check IsLocked first; prefer TryAcquire.
func (a *Arbiter) Acquire(id Identity) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lockHolder = id
}

// TryAcquire takes the lock for id if it is free.
// Returns false without changing anything if the lock is held.
func (a *Arbiter) TryAcquire(id Identity) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.lockHolder != NoIdentity {
		return false
	}
	a.lockHolder = id
	return true
}

// Release frees the lock.
func (a *Arbiter) Release() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lockHolder = NoIdentity
}

// IsAutoplayActive returns true if a button is driving autoplay.
func (a *Arbiter) IsAutoplayActive() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active != NoIdentity
}

// ActiveIdentity returns the button driving autoplay, or NoIdentity.
func (a *Arbiter) ActiveIdentity() Identity {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}

// SetActive marks id as the button driving autoplay.
func (a *Arbiter) SetActive(id Identity) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.active = id
}

// ClearActive clears the autoplay identity.
func (a *Arbiter) ClearActive() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.active = NoIdentity
}

// Snapshot returns the current state.
func (a *Arbiter) Snapshot() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return State{LockHolder: a.lockHolder, Active: a.active}
}
