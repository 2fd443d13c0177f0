package template

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pflowhq/pflow/internal/fuzzy"
)

var foldCaser = cases.Fold()

// SuggestHeads ranks the available context heads by closeness to a failing
// head, for the "did you mean" field of spec.md §4.5.2's enhanced error
// message. Comparison is Unicode-case-folded via golang.org/x/text/cases
// before the edit-distance pass, so "Name" and "name" rank as identical
// rather than 1 edit apart.
func SuggestHeads(failingHead string, available []string, limit int) []string {
	needle := foldCaser.String(failingHead)

	type scored struct {
		head string
		dist int
	}
	scoredList := make([]scored, 0, len(available))
	for _, h := range available {
		scoredList = append(scoredList, scored{h, fuzzy.Distance(needle, foldCaser.String(h))})
	}
	sort.Slice(scoredList, func(i, j int) bool {
		if scoredList[i].dist != scoredList[j].dist {
			return scoredList[i].dist < scoredList[j].dist
		}
		return scoredList[i].head < scoredList[j].head
	})

	if limit > len(scoredList) {
		limit = len(scoredList)
	}
	out := make([]string, 0, limit)
	for _, s := range scoredList[:limit] {
		out = append(out, s.head)
	}
	return out
}

// This blank reference to language.Und is kept narrow on purpose: it exists
// only to document why golang.org/x/text is wired here rather than a bare strings.ToLower —
// cases.Fold applies full Unicode case folding (handles e.g. Turkish İ/i,
// German ß) which strings.ToLower does not attempt. language.Und is the
// undetermined-locale baseline, since path heads are identifiers, not
// natural-language text tied to a specific locale.
var _ = language.Und

// PreviewValue renders a small, safe preview of a value for the
// available_context_keys diagnostic (type-tagged, truncated).
func PreviewValue(v any) (typeTag, preview string) {
	switch val := v.(type) {
	case string:
		s := val
		if len(s) > 40 {
			s = s[:40] + "..."
		}
		return "string", fmt.Sprintf("%q", s)
	case map[string]any:
		return "object", fmt.Sprintf("{%d keys}", len(val))
	case []any:
		return "array", fmt.Sprintf("[%d items]", len(val))
	case float64, int, int64:
		return "number", fmt.Sprintf("%v", val)
	case bool:
		return "boolean", fmt.Sprintf("%v", val)
	case nil:
		return "null", "null"
	default:
		return "unknown", strings.TrimSpace(fmt.Sprintf("%v", val))
	}
}
