package auth

import (
	"encoding/base64"
	"strings"
	"sync"
	"time"

	"github.com/pouriya/restcommander-sub000/internal/matcher"
)

// Config holds credentials and policies enforced by a Gate.
type Config struct {
	Username string
	// PasswordHash is a hex SHA-512 digest or a bcrypt hash.
	PasswordHash string
	APIToken     string
	TokenTTL     time.Duration
	IPAllowList  []string
}

// Gate authenticates requests: Basic credentials (plus an optional CAPTCHA
// answer) are exchanged for an expiring token checked on later requests.
type Gate struct {
	mux     sync.RWMutex
	config  Config
	tokens  *TokenStore
	captcha *CaptchaStore
}

// Option configures a Gate.
type Option func(*Gate)

// WithCaptcha requires a CAPTCHA answer on login.
func WithCaptcha(store *CaptchaStore) Option {
	return func(g *Gate) { g.captcha = store }
}

// WithTokenStore replaces the default token store.
func WithTokenStore(store *TokenStore) Option {
	return func(g *Gate) { g.tokens = store }
}

// New creates a gate.
func New(config Config, opts ...Option) *Gate {
	if config.TokenTTL <= 0 {
		config.TokenTTL = DefaultTokenTTL
	}
	g := &Gate{config: config}
	for _, opt := range opts {
		opt(g)
	}
	if g.tokens == nil {
		g.tokens = NewTokenStore(nil)
	}
	return g
}

// TokenTTL returns the lifetime of issued tokens.
func (g *Gate) TokenTTL() time.Duration { return g.config.TokenTTL }

// Captcha returns the challenge store, nil when CAPTCHA is disabled.
func (g *Gate) Captcha() *CaptchaStore { return g.captcha }

// Tokens returns the issued token store.
func (g *Gate) Tokens() *TokenStore { return g.tokens }

// SetPasswordHash replaces the configured password hash.
func (g *Gate) SetPasswordHash(hash string) {
	g.mux.Lock()
	defer g.mux.Unlock()
	g.config.PasswordHash = hash
}

func (g *Gate) credentials() (string, string) {
	g.mux.RLock()
	defer g.mux.RUnlock()
	return g.config.Username, g.config.PasswordHash
}

// Open reports whether neither username nor password is configured.
func (g *Gate) Open() bool {
	username, hash := g.credentials()
	return username == "" && hash == ""
}

func (g *Gate) misconfigured() bool {
	username, hash := g.credentials()
	return (username == "") != (hash == "")
}

// CheckIP enforces the allow-list; an empty list admits every address.
func (g *Gate) CheckIP(ip string) error {
	if len(g.config.IPAllowList) == 0 || matcher.MatchAny(g.config.IPAllowList, ip) {
		return nil
	}
	return ErrIPNotAllowed
}

// Login validates the Authorization header and, when CAPTCHA is enabled, the
// form whose single field maps a challenge id to its answer. It returns a new
// token on success.
func (g *Gate) Login(authorization string, form map[string]string) (string, error) {
	if g.Open() {
		return g.tokens.Issue(g.config.TokenTTL), nil
	}
	if g.misconfigured() {
		return "", ErrNotConfigured
	}
	if authorization == "" {
		return "", ErrAuthenticationRequired
	}
	method, encoded, ok := strings.Cut(authorization, " ")
	if !ok {
		return "", ErrInvalidBasic
	}
	if method != "Basic" {
		return "", ErrUnknownMethod
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return "", ErrBase64Decode
	}
	username, password, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return "", ErrCredentialsNotFound
	}
	expectedUsername, hash := g.credentials()
	if !equal(username, expectedUsername) || !CheckPassword(hash, password) {
		return "", ErrInvalidCredentials
	}
	if g.captcha != nil {
		if len(form) != 1 {
			return "", ErrInvalidCaptchaForm
		}
		for id, answer := range form {
			if !g.captcha.Compare(id, answer) {
				return "", ErrInvalidCaptcha
			}
		}
	}
	return g.tokens.Issue(g.config.TokenTTL), nil
}

// Authorize checks a bearer or cookie token.
func (g *Gate) Authorize(token string) error {
	if g.Open() {
		return nil
	}
	if g.misconfigured() {
		return ErrNotConfigured
	}
	if token == "" {
		return ErrTokenNotFound
	}
	if g.config.APIToken != "" && equal(token, g.config.APIToken) {
		return nil
	}
	return g.tokens.Check(token)
}
