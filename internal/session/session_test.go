package session

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/samvad-hq/drawing-uploader/internal/storage"
)

type fakeLoader struct {
	rec   storage.Record
	found bool
	err   error
}

func (f fakeLoader) LoadSession() (storage.Record, bool, error) { return f.rec, f.found, f.err }

func TestBaseURLFallsBackWhenUnset(t *testing.T) {
	if got := New("").BaseURL(); got != FallbackBaseURL {
		t.Fatalf("expected fallback, got %q", got)
	}
	if got := New("https://example.com/").BaseURL(); got != "https://example.com" {
		t.Fatalf("unexpected base url %q", got)
	}
}

func TestSetCredentialsIsAllOrNothing(t *testing.T) {
	ctx := New("https://example.com")

	if err := ctx.SetCredentials("abc", json.RawMessage(`{"id":1}`)); err != nil {
		t.Fatalf("SetCredentials: %v", err)
	}

	cases := []struct {
		name  string
		token string
		user  json.RawMessage
	}{
		{name: "token without user", token: "t2", user: nil},
		{name: "token with null user", token: "t2", user: json.RawMessage("null")},
		{name: "user without token", token: "", user: json.RawMessage(`{"id":2}`)},
	}
	for _, tc := range cases {
		if err := ctx.SetCredentials(tc.token, tc.user); !errors.Is(err, ErrPartialCredentials) {
			t.Fatalf("%s: expected ErrPartialCredentials, got %v", tc.name, err)
		}
		snap := ctx.Snapshot()
		if snap.Token != "abc" || string(snap.User) != `{"id":1}` {
			t.Fatalf("%s: state changed after rejected update: %#v", tc.name, snap)
		}
	}

	if err := ctx.SetCredentials("", nil); err != nil {
		t.Fatalf("clearing via SetCredentials: %v", err)
	}
	if ctx.Authenticated() || ctx.User() != nil {
		t.Fatalf("expected signed out state")
	}
}

func TestClearRemovesBoth(t *testing.T) {
	ctx := New("https://example.com")
	_ = ctx.SetCredentials("abc", json.RawMessage(`{"id":1}`))
	ctx.Clear()
	if ctx.Token() != "" || ctx.User() != nil {
		t.Fatalf("expected token and user cleared, got %q %s", ctx.Token(), ctx.User())
	}
}

func TestRestoreSeedsFromStorage(t *testing.T) {
	ctx := New("https://example.com")
	restored, err := ctx.Restore(fakeLoader{
		rec:   storage.Record{Token: "tok", User: json.RawMessage(`{"id":7}`)},
		found: true,
	})
	if err != nil || !restored {
		t.Fatalf("Restore: restored=%v err=%v", restored, err)
	}
	if ctx.Token() != "tok" || string(ctx.User()) != `{"id":7}` {
		t.Fatalf("unexpected state %q %s", ctx.Token(), ctx.User())
	}
}

func TestRestoreIgnoresMissingAndReportsErrors(t *testing.T) {
	ctx := New("https://example.com")
	if restored, err := ctx.Restore(fakeLoader{}); err != nil || restored {
		t.Fatalf("expected nothing restored, restored=%v err=%v", restored, err)
	}
	if _, err := ctx.Restore(fakeLoader{err: errors.New("disk")}); err == nil {
		t.Fatalf("expected load error")
	}
	if _, err := ctx.Restore(fakeLoader{rec: storage.Record{Token: "x"}, found: true}); err == nil {
		t.Fatalf("expected partial persisted session to be rejected")
	}
	if ctx.Authenticated() {
		t.Fatalf("failed restore must leave the context signed out")
	}
}
