package publishers

import (
	"context"
	"errors"
	"testing"
)

type stubPublisher struct {
	id     string
	typ    string
	err    error
	calls  int
	closed bool
}

func (s *stubPublisher) ID() string   { return s.id }
func (s *stubPublisher) Type() string { return s.typ }
func (s *stubPublisher) Publish(context.Context, Event) error {
	s.calls++
	return s.err
}
func (s *stubPublisher) Close() error {
	s.closed = true
	return nil
}

func TestFanoutPublishAggregatesErrors(t *testing.T) {
	fanout := NewFanout([]Publisher{
		&stubPublisher{id: "ok", typ: "http"},
		&stubPublisher{id: "bad", typ: "http", err: errors.New("failed")},
		nil,
	})

	count, err := fanout.Publish(context.Background(), Event{Type: EventLogin})
	if count != 1 {
		t.Fatalf("expected 1 success, got %d", count)
	}
	if err == nil {
		t.Fatalf("expected aggregated error")
	}
	if fanout.Size() != 2 {
		t.Fatalf("expected nil publishers to be dropped, size %d", fanout.Size())
	}
}

func TestFanoutRespectsEventFilter(t *testing.T) {
	uploadsOnly := &stubPublisher{id: "uploads", typ: "http"}
	everything := &stubPublisher{id: "all", typ: "http"}
	fanout := NewFanout([]Publisher{
		&filteredPublisher{Publisher: uploadsOnly, cfg: PublisherConfig{Events: []string{EventUploadComplete}}},
		everything,
	})

	count, err := fanout.Publish(context.Background(), Event{Type: EventLogin})
	if err != nil || count != 1 {
		t.Fatalf("expected 1 delivery, got %d err=%v", count, err)
	}
	if uploadsOnly.calls != 0 || everything.calls != 1 {
		t.Fatalf("unexpected calls uploads=%d all=%d", uploadsOnly.calls, everything.calls)
	}

	if err := fanout.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !uploadsOnly.closed || !everything.closed {
		t.Fatalf("expected wrapped and plain publishers to be closed")
	}
}

func TestBuildAllWithDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()
	pubs, err := BuildAll(context.Background(), reg, []PublisherConfig{
		{ID: "http", Type: TypeHTTP, HTTP: &HTTPPublisherConfig{URL: "https://example.com"}},
		{ID: "filtered", Type: TypeHTTP, Events: []string{EventUploadComplete}, HTTP: &HTTPPublisherConfig{URL: "https://example.com"}},
	}, nil)
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	if len(pubs) != 2 {
		t.Fatalf("expected 2 publishers, got %d", len(pubs))
	}
	if _, ok := pubs[1].(subscriber); !ok {
		t.Fatalf("expected publisher with events list to be filtered")
	}
}

func TestBuildAllUnknownType(t *testing.T) {
	_, err := BuildAll(context.Background(), DefaultRegistry(), []PublisherConfig{{ID: "x", Type: "kafka"}}, nil)
	if err == nil {
		t.Fatalf("expected error for unknown publisher type")
	}
}
