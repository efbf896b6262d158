package gateway

import "sync"

// Navigator is the client-side location the gateway redirects when a session is lost.
type Navigator interface {
	CurrentPath() string
	Navigate(path string)
}

var _ Navigator = (*Location)(nil)

// Location is an in-process Navigator. OnNavigate, when set, is called after every
// navigation with the new path.
type Location struct {
	path       string
	onNavigate func(path string)
	lock       sync.RWMutex
}

func NewLocation(initial string, onNavigate func(path string)) *Location {
	return &Location{path: initial, onNavigate: onNavigate}
}

func (l *Location) CurrentPath() string {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return l.path
}

func (l *Location) Navigate(path string) {
	l.lock.Lock()
	l.path = path
	hook := l.onNavigate
	l.lock.Unlock()

	if hook != nil {
		hook(path)
	}
}

// Set moves to path without calling OnNavigate.
func (l *Location) Set(path string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.path = path
}
