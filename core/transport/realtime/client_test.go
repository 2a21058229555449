package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/parley-ai/parley-core/core/transport"
)

type wsServer struct {
	*httptest.Server

	mu       sync.Mutex
	received []map[string]any
	authz    string
	conn     *websocket.Conn
}

// newWSServer upgrades incoming connections and records every JSON frame
// the client writes.
func newWSServer(t *testing.T) *wsServer {
	t.Helper()

	server := &wsServer{}
	upgrader := websocket.Upgrader{}
	server.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		server.mu.Lock()
		server.authz = r.Header.Get("Authorization")
		server.mu.Unlock()

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("failed to upgrade: %v", err)
			return
		}
		server.mu.Lock()
		server.conn = conn
		server.mu.Unlock()

		for {
			var frame map[string]any
			if err := conn.ReadJSON(&frame); err != nil {
				return
			}
			server.mu.Lock()
			server.received = append(server.received, frame)
			server.mu.Unlock()
		}
	}))
	return server
}

func (s *wsServer) url() string {
	return "ws" + strings.TrimPrefix(s.Server.URL, "http")
}

func (s *wsServer) send(t *testing.T, frame any) {
	t.Helper()
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		t.Fatalf("no client connected")
	}

	data, err := json.Marshal(frame)
	if err != nil {
		t.Fatalf("failed to marshal frame: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatalf("failed to send frame: %v", err)
	}
}

func (s *wsServer) lastFrame(t *testing.T, wantType string) map[string]any {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		s.mu.Lock()
		for _, frame := range s.received {
			if frame["type"] == wantType {
				s.mu.Unlock()
				return frame
			}
		}
		s.mu.Unlock()
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for a %q frame", wantType)
	return nil
}

func TestClientConnectSendsBearerToken(t *testing.T) {
	server := newWSServer(t)
	defer server.Close()

	client := NewClient(server.url())
	defer client.Close()

	err := client.Connect(context.Background(), transport.Credential{Token: "tok-1"})
	if err != nil {
		t.Fatalf("expected connect to succeed, got %v", err)
	}

	server.mu.Lock()
	authz := server.authz
	server.mu.Unlock()
	if authz != "Bearer tok-1" {
		t.Fatalf("unexpected authorization header: %q", authz)
	}
}

func TestClientRejectsExpiredCredential(t *testing.T) {
	client := NewClient("ws://unused")
	credential := transport.Credential{Token: "tok", ExpiresAt: time.Now().Add(-time.Minute)}
	if err := client.Connect(context.Background(), credential); err == nil {
		t.Fatalf("expected connect to refuse an expired credential")
	}
}

func TestClientDeliversDecodedEvents(t *testing.T) {
	server := newWSServer(t)
	defer server.Close()

	client := NewClient(server.url())
	defer client.Close()

	if err := client.Connect(context.Background(), transport.Credential{Token: "tok"}); err != nil {
		t.Fatalf("expected connect to succeed, got %v", err)
	}

	server.send(t, map[string]any{"type": "session.created", "session_id": "sess-1"})

	select {
	case event := <-client.Events():
		started, ok := event.(transport.SessionStarted)
		if !ok || started.SessionID != "sess-1" {
			t.Fatalf("unexpected event: %#v", event)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for event")
	}
}

func TestClientSendsAndApprovals(t *testing.T) {
	server := newWSServer(t)
	defer server.Close()

	client := NewClient(server.url())
	defer client.Close()

	if err := client.Connect(context.Background(), transport.Credential{Token: "tok"}); err != nil {
		t.Fatalf("expected connect to succeed, got %v", err)
	}

	if err := client.SendMessage("hello"); err != nil {
		t.Fatalf("expected send to succeed, got %v", err)
	}
	if frame := server.lastFrame(t, "input_text.create"); frame["text"] != "hello" {
		t.Fatalf("unexpected frame: %v", frame)
	}

	if err := client.SendSilentContext("background"); err != nil {
		t.Fatalf("expected send to succeed, got %v", err)
	}
	server.lastFrame(t, "context.create")

	if err := client.Interrupt(); err != nil {
		t.Fatalf("expected interrupt to succeed, got %v", err)
	}
	server.lastFrame(t, "response.interrupt")

	if err := client.Approve(approvalItem{CallID: "c-1", Name: "send_email"}); err != nil {
		t.Fatalf("expected approve to succeed, got %v", err)
	}
	frame := server.lastFrame(t, "tool.approval")
	if frame["call_id"] != "c-1" || frame["approve"] != true {
		t.Fatalf("unexpected approval frame: %v", frame)
	}

	if err := client.Approve("not-a-handle"); err == nil {
		t.Fatalf("expected a foreign approval item to be refused")
	}
}

func TestClientSendBeforeConnect(t *testing.T) {
	client := NewClient("ws://unused")
	if err := client.SendMessage("hello"); err == nil {
		t.Fatalf("expected send before connect to fail")
	}
}

func TestClientSurfacesAbnormalClose(t *testing.T) {
	server := newWSServer(t)

	client := NewClient(server.url())
	if err := client.Connect(context.Background(), transport.Credential{Token: "tok"}); err != nil {
		t.Fatalf("expected connect to succeed, got %v", err)
	}

	// Kill the server without a close handshake. The upgraded connection is
	// hijacked, so httptest no longer tracks it; close it directly.
	wait := time.Now().Add(time.Second)
	for {
		server.mu.Lock()
		conn := server.conn
		server.mu.Unlock()
		if conn != nil {
			conn.UnderlyingConn().Close()
			break
		}
		if time.Now().After(wait) {
			t.Fatalf("timed out waiting for the server-side connection")
		}
		time.Sleep(10 * time.Millisecond)
	}
	server.Close()

	deadline := time.After(time.Second)
	for {
		select {
		case event, ok := <-client.Events():
			if !ok {
				t.Fatalf("expected an error event before the channel closed")
			}
			if errEvent, isErr := event.(transport.ErrorEvent); isErr {
				if errEvent.Code != transport.ErrorCodeConnection {
					t.Fatalf("unexpected error code: %q", errEvent.Code)
				}
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for the connection error")
		}
	}
}
