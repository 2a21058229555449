// Package recovery reinterprets free-form assistant text that resembles,
// but is not, a proper tool invocation, and applies the equivalent effect
// through the document store.
//
// The engine is strictly best-effort. A handler that cannot locate its
// target reports "not applied" and the next handler gets a chance; if
// nothing applies, the engine does nothing. Doing nothing is always safe
// compared to misapplying an edit, so a failed guess never surfaces an
// error to the user.
package recovery

import (
	"context"
	"regexp"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/parley-ai/parley-core/core/documents"
)

type Engine struct {
	store documents.Store
}

func NewEngine(store documents.Store) *Engine {
	return &Engine{store: store}
}

// modify is the one path recovery effects reach the store through. It
// refuses to write once ctx is done, so nothing lands after the session
// the recovery ran for has moved on.
func (e *Engine) modify(ctx context.Context, path, content string) bool {
	if ctx.Err() != nil {
		logger.Debug("Discarding recovery effect for ended context", "path", path)
		return false
	}
	return e.store.Modify(path, content) == nil
}

var functionCallPattern = regexp.MustCompile(`(?s)^\s*([A-Za-z_][A-Za-z0-9_.]*)\s*\((.*)\)\s*$`)

var imperativeCompletionPattern = regexp.MustCompile(
	`(?is)mark\s+the\s+following\s+tasks?\s+as\s+(?:completed?|done)\s+in\s+(.+?)\s*:?\s*\n(.+)$`)

var imperativeExceptPattern = regexp.MustCompile(
	`(?i)mark\s+everything\s+(?:as\s+)?(?:done|completed?)\s+except\s+(.+?)\.?\s*$`)

// ShouldAttempt is the trigger heuristic: JSON-shaped text, bare call
// syntax, or one of the known natural-language completion imperatives.
// It is syntactic pattern recognition only.
func ShouldAttempt(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return true
	}
	if functionCallPattern.MatchString(trimmed) {
		return true
	}
	return imperativeCompletionPattern.MatchString(trimmed) ||
		imperativeExceptPattern.MatchString(trimmed)
}

// Recover runs the handlers in order; the first one that applies an effect
// wins and short-circuits the rest. It reports whether anything was
// applied.
func (e *Engine) Recover(ctx context.Context, text string) bool {
	if e == nil || e.store == nil {
		return false
	}

	ctx, span := tracer.Start(ctx, "recover malformed output")
	defer span.End()

	handlers := []struct {
		name  string
		apply func(context.Context, string) bool
	}{
		{"function_call", e.recoverFunctionCall},
		{"imperative", e.recoverImperative},
		{"json", e.recoverJSON},
	}

	for _, handler := range handlers {
		if handler.apply(ctx, text) {
			span.SetAttributes(attribute.String("recovery.handler", handler.name))
			return true
		}
	}

	span.SetAttributes(attribute.String("recovery.handler", "none"))
	logger.Debug("No recovery handler applied", "text_length", len(text))
	return false
}

var callArgumentPattern = regexp.MustCompile(
	`([A-Za-z_][A-Za-z0-9_]*)\s*[:=]\s*("(?:[^"\\]|\\.)*"|'[^']*'|\[[^\]]*\]|[^,)]+)`)

// recoverFunctionCall handles text shaped like tool-call syntax, e.g.
//
//	complete_tasks(tasks: ["Buy milk", "Call mom"], target: "todo.md")
//
// and synthesizes the task-completion effect the call was aiming at.
func (e *Engine) recoverFunctionCall(ctx context.Context, text string) bool {
	match := functionCallPattern.FindStringSubmatch(strings.TrimSpace(text))
	if match == nil {
		return false
	}

	var tasks []string
	var target string
	for _, argument := range callArgumentPattern.FindAllStringSubmatch(match[2], -1) {
		key := strings.ToLower(argument[1])
		value := strings.TrimSpace(argument[2])
		switch key {
		case "tasks", "items", "items_to_check":
			tasks = append(tasks, splitListLiteral(value)...)
		case "task", "item":
			tasks = append(tasks, unquote(value))
		case "target", "path", "document", "checklist_name", "checklist":
			target = unquote(value)
		}
	}
	if len(tasks) == 0 {
		return false
	}

	return e.completeTasksIn(ctx, target, tasks)
}

// recoverImperative handles the known natural-language completion
// instructions.
func (e *Engine) recoverImperative(ctx context.Context, text string) bool {
	trimmed := strings.TrimSpace(text)

	if match := imperativeCompletionPattern.FindStringSubmatch(trimmed); match != nil {
		target := unquote(strings.TrimSpace(match[1]))
		tasks := parseEnumeratedList(match[2])
		if len(tasks) == 0 {
			return false
		}
		return e.completeTasksIn(ctx, target, tasks)
	}

	if match := imperativeExceptPattern.FindStringSubmatch(trimmed); match != nil {
		exceptions, target := splitExceptClause(match[1])
		path, content, ok := e.resolveDocument(target)
		if !ok {
			return false
		}

		updated, changed := setCheckedExcept(content, exceptions)
		if changed == 0 {
			return false
		}
		return e.modify(ctx, path, updated)
	}

	return false
}

// completeTasksIn marks tasks as done in the named document, or the active
// one when target is empty.
func (e *Engine) completeTasksIn(ctx context.Context, target string, tasks []string) bool {
	path, content, ok := e.resolveDocument(target)
	if !ok {
		return false
	}

	updated, changed := setChecked(content, tasks, true)
	if changed == 0 {
		return false
	}
	return e.modify(ctx, path, updated)
}

// resolveDocument finds the document a handler should edit: the named one,
// falling back to the active document. A target that cannot be read means
// "not applied", never an error.
func (e *Engine) resolveDocument(target string) (string, string, bool) {
	if target != "" {
		if content, err := e.store.Read(target); err == nil {
			return target, content, true
		}
		// The named target may be a loose checklist name rather than a
		// path; the active document is still a reasonable guess.
	}

	path, ok := e.store.ActiveDocument()
	if !ok {
		return "", "", false
	}
	content, err := e.store.Read(path)
	if err != nil {
		return "", "", false
	}
	return path, content, true
}

var enumeratedItemPattern = regexp.MustCompile(`^\s*(?:[-*]|\d+[.)])\s*(?:\[[ xX]\]\s*)?(.+?)\s*$`)

func parseEnumeratedList(block string) []string {
	var items []string
	for _, line := range strings.Split(block, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		match := enumeratedItemPattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		items = append(items, unquote(match[1]))
	}
	return items
}

// splitExceptClause parses the tail of "mark everything done except ...",
// separating exception items from an optional "in <target>" clause.
func splitExceptClause(clause string) (exceptions []string, target string) {
	clause = strings.TrimSpace(clause)
	if idx := strings.LastIndex(strings.ToLower(clause), " in "); idx >= 0 {
		candidate := strings.TrimSpace(clause[idx+4:])
		// Only treat the clause tail as a target when it looks like one
		// word or a path, not a continued enumeration.
		if candidate != "" && !strings.ContainsAny(candidate, ",") {
			target = unquote(candidate)
			clause = strings.TrimSpace(clause[:idx])
		}
	}

	for _, part := range regexp.MustCompile(`,|\band\b`).Split(clause, -1) {
		part = unquote(strings.TrimSpace(part))
		if part != "" {
			exceptions = append(exceptions, part)
		}
	}
	return exceptions, target
}

func splitListLiteral(value string) []string {
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(value, "[")
	value = strings.TrimSuffix(value, "]")

	var items []string
	for _, part := range strings.Split(value, ",") {
		part = unquote(strings.TrimSpace(part))
		if part != "" {
			items = append(items, part)
		}
	}
	return items
}

func unquote(value string) string {
	value = strings.TrimSpace(value)
	if len(value) >= 2 {
		if (value[0] == '"' && value[len(value)-1] == '"') ||
			(value[0] == '\'' && value[len(value)-1] == '\'') {
			return value[1 : len(value)-1]
		}
	}
	return value
}
