package recovery

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
)

// recoverJSON handles assistant output that is a JSON payload instead of a
// tool call. The known shapes are tried in order; each one falls through
// when its target cannot be located.
func (e *Engine) recoverJSON(ctx context.Context, text string) bool {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
		return false
	}

	if strings.HasPrefix(trimmed, "[") {
		var entries []checklistEntry
		if err := json.Unmarshal([]byte(trimmed), &entries); err != nil {
			return false
		}
		return e.applyChecklistEntries(ctx, "", entries)
	}

	var payload jsonPayload
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		return false
	}

	if e.applyDocumentReplace(ctx, payload) {
		return true
	}
	if e.applyUpdates(ctx, payload) {
		return true
	}
	if len(payload.Checklist) > 0 && e.applyChecklistEntries(ctx, payload.targetPath(), payload.Checklist) {
		return true
	}
	if len(payload.ItemsToCheck) > 0 && e.completeTasksIn(ctx, payload.targetPath(), payload.ItemsToCheck) {
		return true
	}
	if e.applyTasksStatus(ctx, payload) {
		return true
	}
	return false
}

type jsonPayload struct {
	Path          string           `json:"path"`
	Content       string           `json:"content"`
	Updates       []jsonUpdate     `json:"updates"`
	Checklist     []checklistEntry `json:"checklist"`
	ItemsToCheck  []string         `json:"items_to_check"`
	ChecklistName string           `json:"checklist_name"`
	Tasks         []string         `json:"tasks"`
	Status        string           `json:"status"`
}

type jsonUpdate struct {
	Pattern     string `json:"pattern"`
	Replacement string `json:"replacement"`
	Section     string `json:"section"`
	Content     string `json:"content"`
	Task        string `json:"task"`
	Completed   *bool  `json:"completed"`
}

type checklistEntry struct {
	Task      string `json:"task"`
	Completed bool   `json:"completed"`
}

func (p jsonPayload) targetPath() string {
	if p.Path != "" {
		return p.Path
	}
	return p.ChecklistName
}

// applyDocumentReplace handles {path, content}. When the replacement is
// itself a pure checklist, its lines are merged into the existing document
// instead of overwriting it wholesale; replacing unrelated content with a
// bare checklist would be destructive.
func (e *Engine) applyDocumentReplace(ctx context.Context, payload jsonPayload) bool {
	if payload.Path == "" || payload.Content == "" || len(payload.Updates) > 0 {
		return false
	}

	existing, err := e.store.Read(payload.Path)
	if err != nil {
		return false
	}

	if isPureChecklist(payload.Content) {
		merged, changed := mergeChecklist(existing, payload.Content)
		if changed == 0 {
			return false
		}
		return e.modify(ctx, payload.Path, merged)
	}

	return e.modify(ctx, payload.Path, payload.Content)
}

// applyUpdates handles the generic {path?, updates:[...]} batch: regex
// pattern/replacement edits, section-targeted content, and checklist
// toggles. The batch applies when at least one update does.
func (e *Engine) applyUpdates(ctx context.Context, payload jsonPayload) bool {
	if len(payload.Updates) == 0 {
		return false
	}

	path, content, ok := e.resolveDocument(payload.Path)
	if !ok {
		return false
	}

	applied := 0
	for _, update := range payload.Updates {
		switch {
		case update.Pattern != "":
			pattern, err := regexp.Compile(update.Pattern)
			if err != nil || !pattern.MatchString(content) {
				continue
			}
			content = pattern.ReplaceAllString(content, update.Replacement)
			applied++

		case update.Section != "":
			updated, ok := replaceSection(content, update.Section, update.Content)
			if !ok {
				continue
			}
			content = updated
			applied++

		case update.Task != "":
			completed := true
			if update.Completed != nil {
				completed = *update.Completed
			}
			updated, changed := setChecked(content, []string{update.Task}, completed)
			if changed == 0 {
				continue
			}
			content = updated
			applied++
		}
	}

	if applied == 0 {
		return false
	}
	return e.modify(ctx, path, content)
}

func (e *Engine) applyChecklistEntries(ctx context.Context, target string, entries []checklistEntry) bool {
	path, content, ok := e.resolveDocument(target)
	if !ok {
		return false
	}

	changed := 0
	for _, entry := range entries {
		updated, n := setChecked(content, []string{entry.Task}, entry.Completed)
		content = updated
		changed += n
	}
	if changed == 0 {
		return false
	}
	return e.modify(ctx, path, content)
}

// applyTasksStatus handles {tasks:[...], status}. Only completion statuses
// are recognized; anything else is not this engine's guess to make.
func (e *Engine) applyTasksStatus(ctx context.Context, payload jsonPayload) bool {
	if len(payload.Tasks) == 0 {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(payload.Status)) {
	case "completed", "complete", "done", "checked":
		return e.completeTasksIn(ctx, payload.targetPath(), payload.Tasks)
	default:
		return false
	}
}

var sectionHeadingPattern = regexp.MustCompile(`(?m)^#{1,6}\s+(.+?)\s*$`)

// replaceSection swaps the body under a markdown heading that fuzzy-matches
// name. The heading line itself is preserved.
func replaceSection(content, name, body string) (string, bool) {
	headings := sectionHeadingPattern.FindAllStringSubmatchIndex(content, -1)
	for i, heading := range headings {
		title := content[heading[2]:heading[3]]
		if !tasksMatch(title, name) {
			continue
		}

		bodyStart := heading[1]
		bodyEnd := len(content)
		if i+1 < len(headings) {
			bodyEnd = headings[i+1][0]
		}

		replacement := "\n" + strings.TrimRight(body, "\n") + "\n"
		if i+1 < len(headings) {
			replacement += "\n"
		}
		return content[:bodyStart] + replacement + content[bodyEnd:], true
	}
	return "", false
}
