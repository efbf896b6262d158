package credentials

import (
	"net/http"
	"strings"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
)

var _ Store = (*BearerStore)(nil)

// DefaultTokenPaths are the endpoints whose responses issue credentials.
var DefaultTokenPaths = []string{"/auth/verify-otp/", "/auth/refresh/"}

// BearerStore keeps the credential pair in memory and sends the access credential in
// the Authorization header. Tokens are captured from the top-level "access"/"refresh"
// (or "access_token"/"refresh_token") members of responses to the token paths only.
type BearerStore struct {
	path       string
	tokenPaths []string
	token      *oauth2.Token
	lock       sync.RWMutex
}

// NewBearerStore creates a bearer store, loading a previously saved token from path if set.
// tokenPaths defaults to DefaultTokenPaths.
func NewBearerStore(path string, tokenPaths ...string) (*BearerStore, error) {
	if len(tokenPaths) == 0 {
		tokenPaths = DefaultTokenPaths
	}
	s := &BearerStore{path: path, tokenPaths: tokenPaths}
	var saved oauth2.Token
	if err := readJSONFile(path, &saved); err != nil {
		return nil, err
	}
	if saved.AccessToken != "" || saved.RefreshToken != "" {
		s.token = &saved
	}
	return s, nil
}

func (s *BearerStore) Attach(req *http.Request) error {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.token == nil || s.token.AccessToken == "" {
		return nil
	}
	s.token.SetAuthHeader(req)
	return nil
}

func (s *BearerStore) Capture(resp *http.Response, body []byte) error {
	if !s.issuesTokens(resp) || len(body) == 0 || !gjson.ValidBytes(body) {
		return nil
	}
	doc := gjson.ParseBytes(body)
	access := firstString(doc, "access", "access_token")
	refresh := firstString(doc, "refresh", "refresh_token")
	if access == "" && refresh == "" {
		return nil
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	next := &oauth2.Token{TokenType: "Bearer"}
	if s.token != nil {
		*next = *s.token
	}
	if access != "" {
		next.AccessToken = access
		next.Expiry = accessExpiry(access)
	}
	if refresh != "" {
		next.RefreshToken = refresh
	}
	s.token = next
	return writeJSONFile(s.path, s.token)
}

func (s *BearerStore) RefreshPayload() any {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.token == nil || s.token.RefreshToken == "" {
		return nil
	}
	return map[string]string{"refresh": s.token.RefreshToken}
}

func (s *BearerStore) Clear() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.token = nil
	return removeFile(s.path)
}

// Token returns a copy of the held token, or nil.
func (s *BearerStore) Token() *oauth2.Token {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.token == nil {
		return nil
	}
	t := *s.token
	return &t
}

func (s *BearerStore) issuesTokens(resp *http.Response) bool {
	if resp == nil || resp.Request == nil || resp.Request.URL == nil {
		return false
	}
	for _, p := range s.tokenPaths {
		if strings.HasSuffix(resp.Request.URL.Path, p) {
			return true
		}
	}
	return false
}

func firstString(doc gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := doc.Get(p); v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return ""
}

// accessExpiry reads the exp claim without verifying the signature; the client has no
// key and only uses the value for display and proactive logging.
func accessExpiry(raw string) time.Time {
	claims := jwtlib.MapClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
