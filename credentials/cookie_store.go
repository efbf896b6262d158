package credentials

import (
	"net/http"
	"sort"
	"sync"
	"time"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

var _ Store = (*CookieStore)(nil)

// storedCookie is the persisted form of a backend cookie.
type storedCookie struct {
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	Expires time.Time `json:"expires,omitempty"`
}

// CookieStore keeps the cookies set by a single backend, the way a browser does for
// credentialed requests. The refresh credential is just another cookie, so the renewal
// call needs no body.
type CookieStore struct {
	path    string
	cookies map[string]storedCookie
	lock    sync.RWMutex
}

// NewCookieStore creates a cookie store, loading previously saved cookies from path if set.
func NewCookieStore(path string) (*CookieStore, error) {
	s := &CookieStore{
		path:    path,
		cookies: make(map[string]storedCookie),
	}
	var saved []storedCookie
	if err := readJSONFile(path, &saved); err != nil {
		return nil, err
	}
	for _, c := range saved {
		s.cookies[c.Name] = c
	}
	return s, nil
}

func (s *CookieStore) Attach(req *http.Request) error {
	s.lock.RLock()
	defer s.lock.RUnlock()

	now := NowTimeFunc()
	for _, c := range s.sorted() {
		if !c.Expires.IsZero() && !c.Expires.After(now) {
			continue
		}
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	return nil
}

func (s *CookieStore) Capture(resp *http.Response, _ []byte) error {
	set := resp.Cookies()
	if len(set) == 0 {
		return nil
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	now := NowTimeFunc()
	for _, c := range set {
		if c.MaxAge < 0 || c.Value == "" || (!c.Expires.IsZero() && !c.Expires.After(now)) {
			delete(s.cookies, c.Name)
			continue
		}
		stored := storedCookie{Name: c.Name, Value: c.Value, Expires: c.Expires}
		if c.MaxAge > 0 {
			stored.Expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		}
		s.cookies[c.Name] = stored
	}
	return writeJSONFile(s.path, s.sorted())
}

func (s *CookieStore) RefreshPayload() any {
	return nil
}

func (s *CookieStore) Clear() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.cookies = make(map[string]storedCookie)
	return removeFile(s.path)
}

// Has reports whether an unexpired cookie with the given name is held.
func (s *CookieStore) Has(name string) bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	c, ok := s.cookies[name]
	return ok && (c.Expires.IsZero() || c.Expires.After(NowTimeFunc()))
}

// sorted must be called with the lock held.
func (s *CookieStore) sorted() []storedCookie {
	list := make([]storedCookie, 0, len(s.cookies))
	for _, c := range s.cookies {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})
	return list
}
