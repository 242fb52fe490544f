package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSlack_OK(t *testing.T) {
	var got string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		_ = json.NewDecoder(r.Body).Decode(&payload)
		got = payload["text"]
		w.WriteHeader(200)
	}))
	defer ts.Close()

	s := NewSlack(ts.URL)
	if s == nil {
		t.Fatal("expected slack client")
	}
	if err := s.Send(context.Background(), "Connectivity LOST", "target unreachable"); err != nil {
		t.Fatalf("send err: %v", err)
	}
	if !strings.HasPrefix(got, "*Connectivity LOST*") {
		t.Fatalf("payload not as expected: %q", got)
	}
}

func TestSlack_Non2xx(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
	}))
	defer ts.Close()

	s := NewSlack(ts.URL)
	if err := s.Send(context.Background(), "X", "Y"); err == nil {
		t.Fatalf("expected error on non-2xx")
	}
}

func TestSlack_DisabledWhenEmpty(t *testing.T) {
	if NewSlack("") != nil {
		t.Fatalf("empty webhook should produce nil sender")
	}
}

func TestWebhook_PostsJSON(t *testing.T) {
	var payload webhookPayload
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&payload)
		w.WriteHeader(204)
	}))
	defer ts.Close()

	wh := NewWebhook(ts.URL)
	if err := wh.Send(context.Background(), "Connectivity RESTORED", "back online"); err != nil {
		t.Fatalf("send err: %v", err)
	}
	if payload.Source != "clash-test" || payload.Title != "Connectivity RESTORED" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if payload.SentAt == "" {
		t.Fatalf("sent_at missing")
	}
}

func TestMulti_SkipsNilAndKeepsFirstError(t *testing.T) {
	calls := 0
	okFn := notifierFunc(func(ctx context.Context, title, text string) error {
		calls++
		return nil
	})
	failFn := notifierFunc(func(ctx context.Context, title, text string) error {
		calls++
		return errors.New("boom")
	})

	m := Multi{nil, failFn, okFn}
	err := m.Send(context.Background(), "t", "x")
	if err == nil || err.Error() != "boom" {
		t.Fatalf("want first error, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("all non-nil senders must run, got %d calls", calls)
	}
}

type notifierFunc func(ctx context.Context, title, text string) error

func (f notifierFunc) Send(ctx context.Context, title, text string) error {
	return f(ctx, title, text)
}
