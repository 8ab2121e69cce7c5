package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/samvad-hq/drawing-uploader/internal/domain"
	bolt "go.etcd.io/bbolt"
)

const (
	sessionBucket    = "session"
	tokenKey         = "token"
	userKey          = "user"
	expiresKey       = "expires"
	expiryValueBytes = 8
)

// boltStore implements a Store backed by BoltDB.
type boltStore struct {
	db         *bolt.DB
	sessionTTL time.Duration
	now        func() time.Time
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(sessionBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	return &boltStore{
		db:         db,
		sessionTTL: opts.SessionTTL,
		now:        time.Now,
	}, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// LoadSession returns the persisted session. Expired or partial entries are
// removed and reported as absent.
func (b *boltStore) LoadSession() (Record, bool, error) {
	if b == nil || b.db == nil {
		return Record{}, false, nil
	}

	var (
		rec   Record
		found bool
	)
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(sessionBucket))
		if bucket == nil {
			return fmt.Errorf("session bucket missing")
		}

		token := bucket.Get([]byte(tokenKey))
		user := bucket.Get([]byte(userKey))
		expiry, ok := decodeExpiry(bucket.Get([]byte(expiresKey)))
		if token == nil && user == nil {
			return nil
		}
		if len(token) == 0 || !domain.HasUser(user) || !ok || !expiry.After(b.now()) {
			return clearBucket(bucket)
		}

		rec = Record{
			Token:     string(token),
			User:      append(json.RawMessage(nil), user...),
			ExpiresAt: expiry,
		}
		found = true
		return nil
	})
	if err != nil {
		return Record{}, false, err
	}
	return rec, found, nil
}

// SaveSession writes token and user in a single transaction.
func (b *boltStore) SaveSession(token string, user json.RawMessage) error {
	if b == nil || b.db == nil {
		return nil
	}
	if token == "" || !domain.HasUser(user) {
		return fmt.Errorf("session requires both token and user")
	}

	expires := b.now().Add(b.sessionTTL)
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(sessionBucket))
		if bucket == nil {
			return fmt.Errorf("session bucket missing")
		}
		buf := make([]byte, expiryValueBytes)
		binary.BigEndian.PutUint64(buf, uint64(expires.Unix()))
		if err := bucket.Put([]byte(tokenKey), []byte(token)); err != nil {
			return err
		}
		if err := bucket.Put([]byte(userKey), user); err != nil {
			return err
		}
		return bucket.Put([]byte(expiresKey), buf)
	})
}

// ClearSession removes the persisted session, if any.
func (b *boltStore) ClearSession() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(sessionBucket))
		if bucket == nil {
			return fmt.Errorf("session bucket missing")
		}
		return clearBucket(bucket)
	})
}

func clearBucket(bucket *bolt.Bucket) error {
	for _, key := range []string{tokenKey, userKey, expiresKey} {
		if err := bucket.Delete([]byte(key)); err != nil {
			return err
		}
	}
	return nil
}

// decodeExpiry decodes the expiry time from the stored byte slice.
func decodeExpiry(value []byte) (time.Time, bool) {
	if len(value) != expiryValueBytes {
		return time.Time{}, false
	}
	unix := int64(binary.BigEndian.Uint64(value))
	if unix <= 0 {
		return time.Time{}, false
	}
	return time.Unix(unix, 0), true
}
