package storage

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Package storage provides the local persistence behind the session context.

// Record is the persisted login state: the two keyed values token and user.
type Record struct {
	Token     string
	User      json.RawMessage
	ExpiresAt time.Time
}

// Store persists the current session between process runs.
// Token and user are always written and removed together.
type Store interface {
	Close() error
	LoadSession() (Record, bool, error)
	SaveSession(token string, user json.RawMessage) error
	ClearSession() error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	SessionTTL time.Duration
}

const defaultSessionTTL = 7 * 24 * time.Hour

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = defaultSessionTTL
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                              { return nil }
func (noopStore) LoadSession() (Record, bool, error)        { return Record{}, false, nil }
func (noopStore) SaveSession(string, json.RawMessage) error { return nil }
func (noopStore) ClearSession() error                       { return nil }
