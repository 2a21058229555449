package session

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/parley-ai/parley-core/core/agents"
	"github.com/parley-ai/parley-core/core/events"
	"github.com/parley-ai/parley-core/core/transport"
)

func TestApprovalRequestIsSurfaced(t *testing.T) {
	ft := newFakeTransport()
	s := NewSession(agents.NewAgent("concierge"), WithTransport(ft))
	defer s.Close()

	connectSession(t, s, ft)

	requested := awaitKind(t, s, events.KindToolApprovalRequested)
	ft.emit(transport.ApprovalRequested{Name: "send_email", Arguments: `{"to":"x"}`, Item: "handle-1"})

	request := requested().(events.ToolApprovalRequested).Request
	if request.ID == "" {
		t.Fatalf("expected the request to carry a minted ID")
	}
	if request.ToolName != "send_email" {
		t.Fatalf("expected tool name %q, got %q", "send_email", request.ToolName)
	}
	if ft.approveCount() != 0 {
		t.Fatalf("expected nothing approved before a decision")
	}
}

func TestApproveToolIsIdempotent(t *testing.T) {
	ft := newFakeTransport()
	s := NewSession(agents.NewAgent("concierge"), WithTransport(ft))
	defer s.Close()

	connectSession(t, s, ft)

	requested := awaitKind(t, s, events.KindToolApprovalRequested)
	ft.emit(transport.ApprovalRequested{Name: "send_email", Item: "handle-1"})
	request := requested().(events.ToolApprovalRequested).Request

	resolved := awaitKind(t, s, events.KindToolApprovalResolved)
	if err := s.ApproveTool(request); err != nil {
		t.Fatalf("expected approve to succeed, got %v", err)
	}
	event := resolved().(events.ToolApprovalResolved)
	if !event.Approved || event.ToolName != "send_email" {
		t.Fatalf("unexpected resolution: %+v", event)
	}

	// Acting again on the consumed request must not reach the transport.
	if err := s.ApproveTool(request); err != nil {
		t.Fatalf("expected repeated approve to be a no-op, got %v", err)
	}
	if err := s.RejectTool(request); err != nil {
		t.Fatalf("expected reject after approve to be a no-op, got %v", err)
	}
	if got := ft.approveCount(); got != 1 {
		t.Fatalf("expected exactly one transport approval, got %d", got)
	}
	if len(ft.rejected) != 0 {
		t.Fatalf("expected no transport rejection, got %v", ft.rejected)
	}
}

func TestRejectTool(t *testing.T) {
	ft := newFakeTransport()
	s := NewSession(agents.NewAgent("concierge"), WithTransport(ft))
	defer s.Close()

	connectSession(t, s, ft)

	requested := awaitKind(t, s, events.KindToolApprovalRequested)
	ft.emit(transport.ApprovalRequested{Name: "send_email", Item: "handle-1"})
	request := requested().(events.ToolApprovalRequested).Request

	resolved := awaitKind(t, s, events.KindToolApprovalResolved)
	if err := s.RejectTool(request); err != nil {
		t.Fatalf("expected reject to succeed, got %v", err)
	}
	if event := resolved().(events.ToolApprovalResolved); event.Approved {
		t.Fatalf("expected a rejection, got %+v", event)
	}
	if len(ft.rejected) != 1 || ft.rejected[0] != "handle-1" {
		t.Fatalf("expected the opaque handle passed back on reject, got %v", ft.rejected)
	}
}

func TestApproveToolForSessionSuppressesLaterRequests(t *testing.T) {
	ft := newFakeTransport()
	s := NewSession(agents.NewAgent("concierge"), WithTransport(ft))
	defer s.Close()

	connectSession(t, s, ft)

	requested := awaitKind(t, s, events.KindToolApprovalRequested)
	ft.emit(transport.ApprovalRequested{Name: "send_email", Item: "handle-1"})
	request := requested().(events.ToolApprovalRequested).Request

	resolved := awaitKind(t, s, events.KindToolApprovalResolved)
	if err := s.ApproveToolForSession(request); err != nil {
		t.Fatalf("expected approve to succeed, got %v", err)
	}
	resolved()

	// The second request for the same tool is approved without surfacing.
	completed := awaitKind(t, s, events.KindUserTranscriptCompleted)
	ft.emit(transport.ApprovalRequested{Name: "send_email", Item: "handle-2"})
	ft.emit(transport.TranscriptDone{ItemID: "sync", Role: transport.RoleUser, Transcript: "sync"})
	completed()

	if got := ft.approveCount(); got != 2 {
		t.Fatalf("expected auto-approval of the second request, got %d approvals", got)
	}

	// A different tool still needs a decision.
	other := awaitKind(t, s, events.KindToolApprovalRequested)
	ft.emit(transport.ApprovalRequested{Name: "delete_file", Item: "handle-3"})
	if request := other().(events.ToolApprovalRequested).Request; request.ToolName != "delete_file" {
		t.Fatalf("expected a fresh request for %q, got %+v", "delete_file", request)
	}
}

func TestAllowListClearedOnDisconnect(t *testing.T) {
	ft := newFakeTransport()
	s := NewSession(agents.NewAgent("concierge"), WithTransport(ft))

	connectSession(t, s, ft)

	requested := awaitKind(t, s, events.KindToolApprovalRequested)
	ft.emit(transport.ApprovalRequested{Name: "send_email", Item: "handle-1"})
	request := requested().(events.ToolApprovalRequested).Request
	if err := s.ApproveToolForSession(request); err != nil {
		t.Fatalf("expected approve to succeed, got %v", err)
	}

	if err := s.Disconnect(); err != nil {
		t.Fatalf("expected disconnect to succeed, got %v", err)
	}
	if approved := s.Snapshot().ApprovedTools; len(approved) != 0 {
		t.Fatalf("expected the allow-list cleared on disconnect, got %v", approved)
	}
}

func TestGatedLocalToolWaitsForApproval(t *testing.T) {
	var ran atomic.Bool
	sendEmail := agents.NewTool("send_email", "sends an email",
		func(_ context.Context, _ struct{}) (string, error) {
			ran.Store(true)
			return "sent", nil
		}, agents.WithApproval())

	ft := newFakeTransport()
	agent := agents.NewAgent("concierge", agents.WithTools(sendEmail))
	s := NewSession(agent, WithTransport(ft))
	defer s.Close()

	connectSession(t, s, ft)

	requested := awaitKind(t, s, events.KindToolApprovalRequested)
	completed := awaitKind(t, s, events.KindToolCallCompleted)
	ft.emit(transport.ToolCallStarted{CallID: "call-1", Name: "send_email", Arguments: `{}`})

	request := requested().(events.ToolApprovalRequested).Request
	if request.ToolName != "send_email" {
		t.Fatalf("expected a request for %q, got %+v", "send_email", request)
	}
	if ran.Load() {
		t.Fatalf("expected the tool held until a decision is made")
	}

	if err := s.ApproveTool(request); err != nil {
		t.Fatalf("expected approve to succeed, got %v", err)
	}
	event := completed().(events.ToolCallCompleted)
	if event.Response != "sent" {
		t.Fatalf("expected tool response %q, got %q", "sent", event.Response)
	}
	if !ran.Load() {
		t.Fatalf("expected the tool to run after approval")
	}
	if ft.approveCount() != 0 {
		t.Fatalf("expected a local approval to stay off the transport")
	}
}

func TestGatedLocalToolRejectionNeverRuns(t *testing.T) {
	var ran atomic.Bool
	sendEmail := agents.NewTool("send_email", "sends an email",
		func(_ context.Context, _ struct{}) (string, error) {
			ran.Store(true)
			return "sent", nil
		}, agents.WithApproval())

	ft := newFakeTransport()
	agent := agents.NewAgent("concierge", agents.WithTools(sendEmail))
	s := NewSession(agent, WithTransport(ft))
	defer s.Close()

	connectSession(t, s, ft)

	requested := awaitKind(t, s, events.KindToolApprovalRequested)
	failed := awaitKind(t, s, events.KindToolCallFailed)
	ft.emit(transport.ToolCallStarted{CallID: "call-1", Name: "send_email", Arguments: `{}`})

	request := requested().(events.ToolApprovalRequested).Request
	if err := s.RejectTool(request); err != nil {
		t.Fatalf("expected reject to succeed, got %v", err)
	}

	event := failed().(events.ToolCallFailed)
	if !strings.Contains(event.Error, "rejected") {
		t.Fatalf("expected a rejection failure, got %q", event.Error)
	}
	if ran.Load() {
		t.Fatalf("expected a rejected tool to never run")
	}
	if len(ft.rejected) != 0 {
		t.Fatalf("expected a local rejection to stay off the transport, got %v", ft.rejected)
	}
}

func TestGatedLocalToolAllowListSkipsGate(t *testing.T) {
	sendEmail := agents.NewTool("send_email", "sends an email",
		func(_ context.Context, _ struct{}) (string, error) {
			return "sent", nil
		}, agents.WithApproval())

	ft := newFakeTransport()
	agent := agents.NewAgent("concierge", agents.WithTools(sendEmail))
	s := NewSession(agent, WithTransport(ft))
	defer s.Close()

	connectSession(t, s, ft)

	var requests atomic.Int64
	off := s.On(events.KindToolApprovalRequested, func(events.Event) { requests.Add(1) })
	defer off()

	requested := awaitKind(t, s, events.KindToolApprovalRequested)
	completed := awaitKind(t, s, events.KindToolCallCompleted)
	ft.emit(transport.ToolCallStarted{CallID: "call-1", Name: "send_email", Arguments: `{}`})

	request := requested().(events.ToolApprovalRequested).Request
	if err := s.ApproveToolForSession(request); err != nil {
		t.Fatalf("expected approve to succeed, got %v", err)
	}
	completed()

	// The second call for the allow-listed tool executes without a new
	// request surfacing.
	completedAgain := awaitKind(t, s, events.KindToolCallCompleted)
	ft.emit(transport.ToolCallStarted{CallID: "call-2", Name: "send_email", Arguments: `{}`})
	completedAgain()

	if got := requests.Load(); got != 1 {
		t.Fatalf("expected exactly one surfaced request, got %d", got)
	}
}
