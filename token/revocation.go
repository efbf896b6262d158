package token

import (
	"sync"
	"time"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// RevokedAccess remembers access tokens signed out before they expire, keyed by jti.
type RevokedAccess interface {
	Revoke(jti string, exp time.Time)
	IsRevoked(jti string) bool
	Len() int
}

var _ RevokedAccess = (*Denylist)(nil)

// Denylist is an in-memory RevokedAccess. A token past its expiry fails introspection
// anyway, so each Revoke drops the entries that have expired.
type Denylist struct {
	entries map[string]time.Time
	lock    sync.RWMutex
}

func NewDenylist() *Denylist {
	return &Denylist{entries: make(map[string]time.Time)}
}

func (d *Denylist) Revoke(jti string, exp time.Time) {
	now := NowTimeFunc()

	d.lock.Lock()
	defer d.lock.Unlock()
	for id, until := range d.entries {
		if !until.After(now) {
			delete(d.entries, id)
		}
	}
	if exp.After(now) {
		d.entries[jti] = exp
	}
}

func (d *Denylist) IsRevoked(jti string) bool {
	d.lock.RLock()
	defer d.lock.RUnlock()
	until, ok := d.entries[jti]
	return ok && until.After(NowTimeFunc())
}

// Len is the number of entries held, expired or not.
func (d *Denylist) Len() int {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return len(d.entries)
}
