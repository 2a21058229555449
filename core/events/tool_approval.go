package events

const (
	// KindToolApprovalRequested identifies a tool call waiting on a human
	// decision.
	KindToolApprovalRequested Kind = "tool_approval.requested"
	// KindToolApprovalResolved identifies a resolved approval request.
	KindToolApprovalResolved Kind = "tool_approval.resolved"
)

// ToolApprovalRequest is the ephemeral value a subscriber passes back to
// approve or reject a gated tool call. The embedded item is the transport's
// approval handle and must travel back unmodified; it is deliberately not
// exposed for mutation.
type ToolApprovalRequest struct {
	ID        string
	ToolName  string
	Arguments string

	item any
}

// NewToolApprovalRequest creates an approval request around the transport's
// opaque approval handle.
func NewToolApprovalRequest(id, toolName, arguments string, item any) ToolApprovalRequest {
	return ToolApprovalRequest{ID: id, ToolName: toolName, Arguments: arguments, item: item}
}

// Item returns the transport's opaque approval handle.
func (r ToolApprovalRequest) Item() any { return r.item }

// ToolApprovalRequested surfaces a tool call that needs a human decision.
type ToolApprovalRequested struct {
	Base
	Request ToolApprovalRequest
}

// NewToolApprovalRequested creates an approval requested event.
func NewToolApprovalRequested(request ToolApprovalRequest) ToolApprovalRequested {
	return ToolApprovalRequested{Base: NewBase(KindToolApprovalRequested), Request: request}
}

// ToolApprovalResolved marks a consumed approval request.
type ToolApprovalResolved struct {
	Base
	ID       string
	ToolName string
	Approved bool
}

// NewToolApprovalResolved creates an approval resolved event.
func NewToolApprovalResolved(id, toolName string, approved bool) ToolApprovalResolved {
	return ToolApprovalResolved{Base: NewBase(KindToolApprovalResolved), ID: id, ToolName: toolName, Approved: approved}
}
