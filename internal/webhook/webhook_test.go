package webhook

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/vaulthook/vaulthook/pkg/payload"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(title, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func TestSendPostsJSON(t *testing.T) {
	var gotBody string
	var gotContentType string
	var gotMethod string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
	}))
	defer srv.Close()

	n := &recordingNotifier{}
	size := int64(10)
	NewDeliverer(n).Send(context.Background(), srv.URL, payload.NewFile("notes", "modify", "a/b.md", &size))

	if gotMethod != http.MethodPost {
		t.Errorf("method = %q, want POST", gotMethod)
	}
	if gotContentType != "application/json" {
		t.Errorf("content type = %q", gotContentType)
	}
	for _, want := range []string{`"event":"modify"`, `"path":"a/b.md"`, `"size":10`} {
		if !strings.Contains(gotBody, want) {
			t.Errorf("body %s missing %s", gotBody, want)
		}
	}
	if len(n.messages) != 0 {
		t.Errorf("unexpected notices on success: %v", n.messages)
	}
}

func TestSendNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := &recordingNotifier{}
	NewDeliverer(n).Send(context.Background(), srv.URL, payload.NewTest("notes"))

	if len(n.messages) != 1 {
		t.Fatalf("notices = %v, want exactly one", n.messages)
	}
	if !strings.Contains(n.messages[0], "500") {
		t.Errorf("notice %q should carry the status code", n.messages[0])
	}
}

func TestSendTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	n := &recordingNotifier{}
	NewDeliverer(n).Send(context.Background(), srv.URL, payload.NewTest("notes"))

	if len(n.messages) != 1 {
		t.Fatalf("notices = %v, want exactly one", n.messages)
	}
	if !strings.Contains(n.messages[0], "failed") {
		t.Errorf("notice %q should report a generic failure", n.messages[0])
	}
}

func TestSendSingleAttempt(t *testing.T) {
	var attempts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	NewDeliverer(&recordingNotifier{}).Send(context.Background(), srv.URL, payload.NewTest("notes"))

	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (no retries)", attempts)
	}
}
