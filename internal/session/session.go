package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/samvad-hq/drawing-uploader/internal/domain"
	"github.com/samvad-hq/drawing-uploader/internal/storage"
)

// FallbackBaseURL is used only when no base URL was ever configured.
const FallbackBaseURL = "http://localhost:5000"

// ErrPartialCredentials is returned when a token is given without a user or vice versa.
var ErrPartialCredentials = errors.New("token and user must be set together")

// Loader is the read side of the persisted session.
type Loader interface {
	LoadSession() (storage.Record, bool, error)
}

// Context holds how to reach the server and who is signed in.
// Token and user always change together: both set, or both cleared.
type Context struct {
	mu      sync.RWMutex
	baseURL string
	token   string
	user    json.RawMessage
}

// New returns an unauthenticated context for baseURL.
func New(baseURL string) *Context {
	return &Context{baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/")}
}

// Restore seeds the context from persisted storage. A missing session is not an error.
func (c *Context) Restore(src Loader) (bool, error) {
	if c == nil || src == nil {
		return false, nil
	}
	rec, found, err := src.LoadSession()
	if err != nil {
		return false, fmt.Errorf("load persisted session: %w", err)
	}
	if !found {
		return false, nil
	}
	if err := c.SetCredentials(rec.Token, rec.User); err != nil {
		return false, fmt.Errorf("restore persisted session: %w", err)
	}
	return true, nil
}

// BaseURL returns the configured server root.
func (c *Context) BaseURL() string {
	if c == nil {
		return FallbackBaseURL
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.baseURL == "" {
		return FallbackBaseURL
	}
	return c.baseURL
}

// SetCredentials replaces token and user in one step. Passing an empty token and
// a null user signs out; any other half pair is rejected and nothing changes.
func (c *Context) SetCredentials(token string, user json.RawMessage) error {
	hasToken := token != ""
	hasUser := domain.HasUser(user)
	if hasToken != hasUser {
		return ErrPartialCredentials
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	if hasUser {
		c.user = append(json.RawMessage(nil), user...)
	} else {
		c.user = nil
	}
	return nil
}

// Clear signs out.
func (c *Context) Clear() {
	c.mu.Lock()
	c.token = ""
	c.user = nil
	c.mu.Unlock()
}

// Token returns the bearer token, empty when signed out.
func (c *Context) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// User returns a copy of the signed-in user record, nil when signed out.
func (c *Context) User() json.RawMessage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return nil
	}
	return append(json.RawMessage(nil), c.user...)
}

// Authenticated reports whether credentials are present.
func (c *Context) Authenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != ""
}

// Snapshot returns the current credentials as one consistent pair.
func (c *Context) Snapshot() domain.Credentials {
	c.mu.RLock()
	defer c.mu.RUnlock()
	creds := domain.Credentials{Token: c.token}
	if c.user != nil {
		creds.User = append(json.RawMessage(nil), c.user...)
	}
	return creds
}
