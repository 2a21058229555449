package recovery

import (
	"regexp"
	"strings"
)

var checklistItemPattern = regexp.MustCompile(`^(\s*[-*]\s*\[)( |x|X)(\]\s*)(.+?)\s*$`)

// checklistItem is one parsed "- [ ]" line.
type checklistItem struct {
	line    int
	task    string
	checked bool
}

func parseChecklist(content string) []checklistItem {
	var items []checklistItem
	for i, line := range strings.Split(content, "\n") {
		match := checklistItemPattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		items = append(items, checklistItem{
			line:    i,
			task:    match[4],
			checked: match[2] == "x" || match[2] == "X",
		})
	}
	return items
}

// isPureChecklist reports whether every non-blank line is a checklist item.
// Empty content does not count as a checklist.
func isPureChecklist(content string) bool {
	sawItem := false
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !checklistItemPattern.MatchString(line) {
			return false
		}
		sawItem = true
	}
	return sawItem
}

var taskNoisePattern = regexp.MustCompile(`[^a-z0-9 ]+`)

// normalizeTask folds a task description for fuzzy comparison.
func normalizeTask(task string) string {
	task = strings.ToLower(strings.TrimSpace(task))
	task = taskNoisePattern.ReplaceAllString(task, "")
	return strings.Join(strings.Fields(task), " ")
}

// tasksMatch is deliberately loose: normalized equality or containment in
// either direction. "review" matches "weekly review"; a failed guess is
// cheaper than a missed toggle the user asked for.
func tasksMatch(a, b string) bool {
	na, nb := normalizeTask(a), normalizeTask(b)
	if na == "" || nb == "" {
		return false
	}
	return na == nb || strings.Contains(na, nb) || strings.Contains(nb, na)
}

func matchesAny(task string, candidates []string) bool {
	for _, candidate := range candidates {
		if tasksMatch(task, candidate) {
			return true
		}
	}
	return false
}

// setChecked rewrites the checklist lines whose task fuzzy-matches any of
// tasks, returning the updated content and how many lines changed.
func setChecked(content string, tasks []string, checked bool) (string, int) {
	lines := strings.Split(content, "\n")
	changed := 0
	for i, line := range lines {
		match := checklistItemPattern.FindStringSubmatch(line)
		if match == nil || !matchesAny(match[4], tasks) {
			continue
		}
		if updated, ok := rewriteItem(line, checked); ok {
			lines[i] = updated
			changed++
		}
	}
	return strings.Join(lines, "\n"), changed
}

// setCheckedExcept checks every item that does not fuzzy-match an
// exception.
func setCheckedExcept(content string, exceptions []string) (string, int) {
	lines := strings.Split(content, "\n")
	changed := 0
	for i, line := range lines {
		match := checklistItemPattern.FindStringSubmatch(line)
		if match == nil || matchesAny(match[4], exceptions) {
			continue
		}
		if updated, ok := rewriteItem(line, true); ok {
			lines[i] = updated
			changed++
		}
	}
	return strings.Join(lines, "\n"), changed
}

// rewriteItem sets one item line's checkbox, reporting whether the line
// actually changed.
func rewriteItem(line string, checked bool) (string, bool) {
	match := checklistItemPattern.FindStringSubmatch(line)
	if match == nil {
		return line, false
	}
	wasChecked := match[2] == "x" || match[2] == "X"
	if wasChecked == checked {
		return line, false
	}

	box := " "
	if checked {
		box = "x"
	}
	return match[1] + box + match[3] + match[4], true
}

// mergeChecklist folds a replacement checklist into existing content:
// lines matching an existing item adopt the replacement's checked state,
// unmatched replacement items are appended. Unrelated existing content is
// left alone.
func mergeChecklist(existing, replacement string) (string, int) {
	changed := 0
	var appended []string

	for _, item := range parseChecklist(replacement) {
		matched := false
		lines := strings.Split(existing, "\n")
		for i, line := range lines {
			match := checklistItemPattern.FindStringSubmatch(line)
			if match == nil || !tasksMatch(match[4], item.task) {
				continue
			}
			matched = true
			if updated, ok := rewriteItem(line, item.checked); ok {
				lines[i] = updated
				changed++
			}
			break
		}
		existing = strings.Join(lines, "\n")
		if !matched {
			box := " "
			if item.checked {
				box = "x"
			}
			appended = append(appended, "- ["+box+"] "+item.task)
		}
	}

	if len(appended) > 0 {
		if !strings.HasSuffix(existing, "\n") && existing != "" {
			existing += "\n"
		}
		existing += strings.Join(appended, "\n")
		changed += len(appended)
	}
	return existing, changed
}
