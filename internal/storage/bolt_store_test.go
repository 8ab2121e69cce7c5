package storage

import (
	"encoding/binary"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	bolt "go.etcd.io/bbolt"
)

func TestBoltStoreSavesAndExpiresSession(t *testing.T) {
	dir := t.TempDir()
	storeRaw, err := openBolt(filepath.Join(dir, "nested", "session.db"), Options{SessionTTL: time.Hour})
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	defer store.Close()

	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	if _, found, err := store.LoadSession(); err != nil || found {
		t.Fatalf("expected empty store, found=%v err=%v", found, err)
	}

	if err := store.SaveSession("abc", json.RawMessage(`{"id":1}`)); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	rec, found, err := store.LoadSession()
	if err != nil || !found {
		t.Fatalf("expected session, found=%v err=%v", found, err)
	}
	if rec.Token != "abc" || string(rec.User) != `{"id":1}` {
		t.Fatalf("unexpected record %#v", rec)
	}
	if !rec.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected expiry %v", rec.ExpiresAt)
	}

	now = now.Add(2 * time.Hour)
	if _, found, err := store.LoadSession(); err != nil || found {
		t.Fatalf("expected expired session to be dropped, found=%v err=%v", found, err)
	}
}

func TestBoltStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	store, err := NewStore("bbolt", path, Options{})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := store.SaveSession("tok", json.RawMessage(`{"username":"a"}`)); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := NewStore("bbolt", path, Options{})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	rec, found, err := reopened.LoadSession()
	if err != nil || !found || rec.Token != "tok" {
		t.Fatalf("expected persisted session, rec=%#v found=%v err=%v", rec, found, err)
	}

	if err := reopened.ClearSession(); err != nil {
		t.Fatalf("ClearSession: %v", err)
	}
	if _, found, _ := reopened.LoadSession(); found {
		t.Fatalf("expected session to be cleared")
	}
}

func TestBoltStoreRejectsHalfSession(t *testing.T) {
	store, err := NewStore("bbolt", filepath.Join(t.TempDir(), "session.db"), Options{})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()

	if err := store.SaveSession("tok", nil); err == nil {
		t.Fatalf("expected error when user is missing")
	}
	if err := store.SaveSession("", json.RawMessage(`{}`)); err == nil {
		t.Fatalf("expected error when token is missing")
	}
	if err := store.SaveSession("tok", json.RawMessage(` null `)); err == nil {
		t.Fatalf("expected error when user is null")
	}
}

func TestBoltStoreDropsRecordWithNullUser(t *testing.T) {
	storeRaw, err := openBolt(filepath.Join(t.TempDir(), "session.db"), Options{SessionTTL: time.Hour})
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	defer store.Close()

	// Write the record directly, bypassing SaveSession's checks.
	expires := make([]byte, expiryValueBytes)
	binary.BigEndian.PutUint64(expires, uint64(time.Now().Add(time.Hour).Unix()))
	if err := store.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(sessionBucket))
		if err := bucket.Put([]byte(tokenKey), []byte("tok")); err != nil {
			return err
		}
		if err := bucket.Put([]byte(userKey), []byte("null")); err != nil {
			return err
		}
		return bucket.Put([]byte(expiresKey), expires)
	}); err != nil {
		t.Fatalf("seed record: %v", err)
	}

	if _, found, err := store.LoadSession(); err != nil || found {
		t.Fatalf("expected null-user record to be ignored, found=%v err=%v", found, err)
	}
	if err := store.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(sessionBucket)).Get([]byte(tokenKey)); v != nil {
			t.Errorf("expected token to be cleared, got %q", v)
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.SaveSession("x", json.RawMessage(`{}`)); err != nil {
		t.Fatalf("noop store SaveSession: %v", err)
	}
	if _, found, _ := store.LoadSession(); found {
		t.Fatalf("noop store must never report a session")
	}
}

func TestNewStoreRejectsUnknownType(t *testing.T) {
	if _, err := NewStore("redis", "", Options{}); err == nil {
		t.Fatalf("expected error for unsupported storage type")
	}
}
