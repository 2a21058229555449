// Package agents holds the named conversation participants and the directed
// graph of permitted handoffs between them.
package agents

import "sync"

// Agent is a named participant. Everything but its handoff target set is
// immutable after construction; targets are additive and may be registered
// while other goroutines read the graph.
type Agent struct {
	name               string
	instructions       string
	handoffDescription string
	tools              []Tool

	mu       sync.RWMutex
	handoffs map[string]struct{}
}

type AgentOption func(*Agent)

func WithInstructions(instructions string) AgentOption {
	return func(a *Agent) { a.instructions = instructions }
}

// WithHandoffDescription sets the text peers read to decide when to
// delegate to this agent.
func WithHandoffDescription(description string) AgentOption {
	return func(a *Agent) { a.handoffDescription = description }
}

func WithTools(tools ...Tool) AgentOption {
	return func(a *Agent) { a.tools = append(a.tools, tools...) }
}

func NewAgent(name string, opts ...AgentOption) *Agent {
	a := &Agent{
		name:     name,
		handoffs: map[string]struct{}{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Agent) Name() string               { return a.name }
func (a *Agent) Instructions() string       { return a.instructions }
func (a *Agent) HandoffDescription() string { return a.handoffDescription }

// Tools returns a copy of the agent's ordered tool set.
func (a *Agent) Tools() []Tool {
	tools := make([]Tool, len(a.tools))
	copy(tools, a.tools)
	return tools
}

// Tool looks a tool up by name.
func (a *Agent) Tool(name string) (Tool, bool) {
	for _, tool := range a.tools {
		if tool.Name == name {
			return tool, true
		}
	}
	return Tool{}, false
}

// RegisterHandoff adds a directed edge from this agent to target.
func (a *Agent) RegisterHandoff(target *Agent) {
	if target == nil {
		return
	}

	a.mu.Lock()
	a.handoffs[target.Name()] = struct{}{}
	a.mu.Unlock()
}

// CanHandOffTo reports whether a handoff edge to name exists.
func (a *Agent) CanHandOffTo(name string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()

	_, ok := a.handoffs[name]
	return ok
}

// HandoffTargets returns the names this agent may delegate to.
func (a *Agent) HandoffTargets() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	targets := make([]string, 0, len(a.handoffs))
	for name := range a.handoffs {
		targets = append(targets, name)
	}
	return targets
}

// Registry holds every agent reachable in a session, keyed by name. The
// registry itself is effectively immutable after setup and safe for
// concurrent reads.
type Registry struct {
	mu     sync.RWMutex
	main   *Agent
	agents map[string]*Agent
}

// NewRegistry creates a registry around the main agent. The main agent is
// both a regular participant and the fallback target for returned handoffs.
func NewRegistry(main *Agent, others ...*Agent) *Registry {
	r := &Registry{
		main:   main,
		agents: map[string]*Agent{},
	}
	if main != nil {
		r.agents[main.Name()] = main
	}
	for _, agent := range others {
		r.Add(agent)
	}
	return r
}

func (r *Registry) Main() *Agent { return r.main }

// Add registers an agent. Adding is meant to happen during setup, before
// the session connects.
func (r *Registry) Add(agent *Agent) {
	if agent == nil {
		return
	}

	r.mu.Lock()
	r.agents[agent.Name()] = agent
	r.mu.Unlock()
}

// Get looks an agent up by name.
func (r *Registry) Get(name string) (*Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	agent, ok := r.agents[name]
	return agent, ok
}
