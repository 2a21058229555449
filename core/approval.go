package session

import (
	"errors"
	"fmt"

	"github.com/parley-ai/parley-core/core/agents"
	"github.com/parley-ai/parley-core/core/events"
)

var errToolRejected = errors.New("tool call rejected")

// localExecution is the approval item for a gated tool that runs in this
// process. Resolving it executes (or abandons) the call locally instead of
// notifying the peer.
type localExecution struct {
	epoch     int64
	callID    string
	tool      agents.Tool
	arguments string
}

// gateApproval handles one gated tool invocation, local or peer-side.
// Tools on the session allow-list are approved without surfacing anything;
// everything else is minted an ID, parked as pending, and surfaced to
// subscribers.
func (s *Session) gateApproval(toolName, arguments string, item any) {
	s.mu.Lock()
	_, preapproved := s.approvedTools[toolName]
	s.mu.Unlock()

	if preapproved {
		if err := s.approveItem(item); err != nil {
			logger.Warn("Failed to auto-approve tool call",
				"tool", toolName, "error", err.Error())
		}
		return
	}

	id := fmt.Sprintf("approval-%d", s.approvalCounter.Add(1))
	request := events.NewToolApprovalRequest(id, toolName, arguments, item)

	s.mu.Lock()
	s.pendingApprovals[id] = request
	s.mu.Unlock()

	s.emitter.emit(events.NewToolApprovalRequested(request))
}

// consumeApproval removes the pending request with the given ID. A request
// can be consumed at most once, which makes all three resolution paths
// idempotent with respect to the transport.
func (s *Session) consumeApproval(id string) (events.ToolApprovalRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	request, ok := s.pendingApprovals[id]
	if ok {
		delete(s.pendingApprovals, id)
	}
	return request, ok
}

// ApproveTool approves a single pending tool call. Acting on a request
// that was already resolved is a no-op.
func (s *Session) ApproveTool(request events.ToolApprovalRequest) error {
	return s.resolveApproval(request.ID, true)
}

// ApproveToolForSession approves the pending tool call and adds the tool
// to the session allow-list, so later requests for the same tool are
// approved automatically. The allow-list does not survive a disconnect.
func (s *Session) ApproveToolForSession(request events.ToolApprovalRequest) error {
	s.mu.Lock()
	s.approvedTools[request.ToolName] = struct{}{}
	s.mu.Unlock()

	return s.resolveApproval(request.ID, true)
}

// RejectTool rejects a single pending tool call.
func (s *Session) RejectTool(request events.ToolApprovalRequest) error {
	return s.resolveApproval(request.ID, false)
}

func (s *Session) resolveApproval(id string, approved bool) error {
	pending, ok := s.consumeApproval(id)
	if !ok {
		logger.Debug("Ignoring action on already resolved approval request", "id", id)
		return nil
	}

	var err error
	if approved {
		err = s.approveItem(pending.Item())
	} else {
		err = s.rejectItem(pending.Item())
	}
	if err != nil {
		return fmt.Errorf("failed to resolve approval for tool %q: %w", pending.ToolName, err)
	}

	s.emitter.emit(events.NewToolApprovalResolved(pending.ID, pending.ToolName, approved))
	return nil
}

// approveItem releases the gated call: local tools start executing, peer
// items are acknowledged over the transport.
func (s *Session) approveItem(item any) error {
	if run, ok := item.(localExecution); ok {
		go s.executeTool(run.epoch, run.callID, run.tool, run.arguments)
		return nil
	}
	return s.transport.Approve(item)
}

// rejectItem abandons the gated call. A rejected local tool never runs;
// its call is reported as failed so subscribers see a terminal outcome.
func (s *Session) rejectItem(item any) error {
	if run, ok := item.(localExecution); ok {
		s.correlator.toolEnded(run.callID, errToolRejected)
		s.emitter.emit(events.NewToolCallFailed(run.callID, run.tool.Name, errToolRejected.Error()))
		return nil
	}
	return s.transport.Reject(item)
}
