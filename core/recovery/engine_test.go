package recovery

import (
	"context"
	"strings"
	"testing"

	"github.com/parley-ai/parley-core/core/documents"
)

func newTestStore(t *testing.T, path, content string) *documents.MemoryStore {
	t.Helper()
	store := documents.NewMemoryStore()
	if err := store.Modify(path, content); err != nil {
		t.Fatalf("failed to seed store: %v", err)
	}
	store.SetActive(path)
	return store
}

func readDoc(t *testing.T, store *documents.MemoryStore, path string) string {
	t.Helper()
	content, err := store.Read(path)
	if err != nil {
		t.Fatalf("failed to read %q: %v", path, err)
	}
	return content
}

func TestShouldAttempt(t *testing.T) {
	cases := []struct {
		name string
		text string
		want bool
	}{
		{"empty", "", false},
		{"plain prose", "Sure, I have updated your checklist.", false},
		{"json object", `{"path":"todo.md","content":"- [x] Buy milk"}`, true},
		{"json array", `[{"task":"Buy milk","completed":true}]`, true},
		{"call syntax", `complete_tasks(tasks: ["Buy milk"])`, true},
		{"imperative completion", "Mark the following tasks as complete in todo.md:\n- Buy milk", true},
		{"imperative except", "Mark everything done except weekly review.", true},
		{"question with parentheses", "Should I finish the report (the long one) today?", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ShouldAttempt(tc.text); got != tc.want {
				t.Fatalf("ShouldAttempt(%q) = %v, want %v", tc.text, got, tc.want)
			}
		})
	}
}

func TestRecoverFunctionCall(t *testing.T) {
	store := newTestStore(t, "todo.md", "- [ ] Buy milk\n- [ ] Call mom\n- [ ] Walk dog")
	engine := NewEngine(store)

	text := `complete_tasks(tasks: ["Buy milk", "Call mom"], target: "todo.md")`
	if !engine.Recover(context.Background(), text) {
		t.Fatalf("expected recovery to apply")
	}

	content := readDoc(t, store, "todo.md")
	want := "- [x] Buy milk\n- [x] Call mom\n- [ ] Walk dog"
	if content != want {
		t.Fatalf("unexpected content:\n%s", content)
	}
}

func TestRecoverFunctionCallFallsBackToActiveDocument(t *testing.T) {
	store := newTestStore(t, "groceries.md", "- [ ] Buy milk")
	engine := NewEngine(store)

	if !engine.Recover(context.Background(), `mark_done(task: "Buy milk")`) {
		t.Fatalf("expected recovery against the active document")
	}
	if got := readDoc(t, store, "groceries.md"); got != "- [x] Buy milk" {
		t.Fatalf("unexpected content: %q", got)
	}
}

func TestRecoverImperativeCompletion(t *testing.T) {
	store := newTestStore(t, "todo.md", "- [ ] Buy milk\n- [ ] Call mom\n- [ ] Walk dog")
	engine := NewEngine(store)

	text := "Mark the following tasks as complete in todo.md:\n- Buy milk\n- Walk dog"
	if !engine.Recover(context.Background(), text) {
		t.Fatalf("expected recovery to apply")
	}

	content := readDoc(t, store, "todo.md")
	want := "- [x] Buy milk\n- [ ] Call mom\n- [x] Walk dog"
	if content != want {
		t.Fatalf("unexpected content:\n%s", content)
	}
}

func TestRecoverImperativeExcept(t *testing.T) {
	store := newTestStore(t, "todo.md",
		"- [ ] Draft report\n- [ ] Send invoices\n- [ ] Weekly review")
	engine := NewEngine(store)

	if !engine.Recover(context.Background(), "Mark everything done except weekly review.") {
		t.Fatalf("expected recovery to apply")
	}

	content := readDoc(t, store, "todo.md")
	want := "- [x] Draft report\n- [x] Send invoices\n- [ ] Weekly review"
	if content != want {
		t.Fatalf("unexpected content:\n%s", content)
	}
}

func TestRecoverDoesNothingWithoutMatch(t *testing.T) {
	original := "- [ ] Buy milk"
	store := newTestStore(t, "todo.md", original)
	engine := NewEngine(store)

	texts := []string{
		"Sure, happy to help with anything else.",
		`do_something(unknown: "value")`,
		"Mark the following tasks as complete in todo.md:\n(no items)",
		`{"unrelated":"payload"}`,
	}
	for _, text := range texts {
		if engine.Recover(context.Background(), text) {
			t.Fatalf("expected no recovery for %q", text)
		}
	}
	if got := readDoc(t, store, "todo.md"); got != original {
		t.Fatalf("expected document untouched, got %q", got)
	}
}

func TestRecoverWithoutStore(t *testing.T) {
	engine := NewEngine(nil)
	if engine.Recover(context.Background(), `{"path":"todo.md","content":"- [x] A"}`) {
		t.Fatalf("expected recovery disabled without a store")
	}
}

func TestTasksMatchIsFuzzy(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"Buy milk", "buy milk", true},
		{"Buy milk!", "buy milk", true},
		{"review", "Weekly review", true},
		{"Buy milk", "Walk dog", false},
		{"", "Buy milk", false},
	}
	for _, tc := range cases {
		if got := tasksMatch(tc.a, tc.b); got != tc.want {
			t.Fatalf("tasksMatch(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestMergeChecklist(t *testing.T) {
	existing := "# Groceries\n- [ ] Buy milk\n- [ ] Walk dog"
	replacement := "- [x] Buy milk\n- [ ] Feed cat"

	merged, changed := mergeChecklist(existing, replacement)
	if changed != 2 {
		t.Fatalf("expected two changes, got %d", changed)
	}
	if !strings.Contains(merged, "- [x] Buy milk") {
		t.Fatalf("expected existing item toggled:\n%s", merged)
	}
	if !strings.Contains(merged, "- [ ] Walk dog") {
		t.Fatalf("expected unrelated item preserved:\n%s", merged)
	}
	if !strings.Contains(merged, "- [ ] Feed cat") {
		t.Fatalf("expected unmatched item appended:\n%s", merged)
	}
	if !strings.HasPrefix(merged, "# Groceries") {
		t.Fatalf("expected non-checklist content preserved:\n%s", merged)
	}
}
