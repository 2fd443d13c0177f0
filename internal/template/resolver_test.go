package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeContext struct {
	heads map[string]any
}

func (f fakeContext) Lookup(head string, steps []PathStep) (any, bool) {
	v, ok := f.heads[head]
	if !ok {
		return nil, false
	}
	if len(steps) == 0 {
		return v, true
	}
	return Navigate(v, steps)
}

func (f fakeContext) HeadExists(head string) bool {
	_, ok := f.heads[head]
	return ok
}

func (f fakeContext) AvailableHeads() []string {
	out := make([]string, 0, len(f.heads))
	for k := range f.heads {
		out = append(out, k)
	}
	return out
}

func TestExtractVariablesDeduplicates(t *testing.T) {
	vars := ExtractVariables("${a.b} and ${a.b} and ${c[0]}")
	assert.ElementsMatch(t, []string{"a.b", "c[0]"}, vars)
}

func TestExtractVariablesReturnsNilForPlainString(t *testing.T) {
	assert.Nil(t, ExtractVariables("no templating here"))
}

func TestIsSimpleRequiresExactMatch(t *testing.T) {
	path, ok := IsSimple("${node.output}")
	require.True(t, ok)
	assert.Equal(t, "node.output", path)

	_, ok = IsSimple("prefix ${node.output}")
	assert.False(t, ok)
}

func TestParsePathSplitsDottedAndIndexedSteps(t *testing.T) {
	head, steps, err := ParsePath("node.items[2].name")
	require.NoError(t, err)
	assert.Equal(t, "node", head)
	require.Len(t, steps, 3)
	assert.Equal(t, PathStep{Key: "items"}, steps[0])
	assert.Equal(t, PathStep{Index: 2, IsIndex: true}, steps[1])
	assert.Equal(t, PathStep{Key: "name"}, steps[2])
}

func TestParsePathRejectsUnterminatedIndex(t *testing.T) {
	_, _, err := ParsePath("node[1")
	assert.Error(t, err)
}

func TestParsePathRejectsEmptySegment(t *testing.T) {
	_, _, err := ParsePath("node.")
	assert.Error(t, err)
}

func TestNavigateWalksMapsAndLists(t *testing.T) {
	val := map[string]any{
		"items": []any{
			map[string]any{"name": "first"},
			map[string]any{"name": "second"},
		},
	}
	steps := []PathStep{{Key: "items"}, {Index: 1, IsIndex: true}, {Key: "name"}}
	got, ok := Navigate(val, steps)
	require.True(t, ok)
	assert.Equal(t, "second", got)
}

func TestNavigateFailsOnOutOfBoundsIndex(t *testing.T) {
	val := map[string]any{"items": []any{1, 2}}
	_, ok := Navigate(val, []PathStep{{Key: "items"}, {Index: 5, IsIndex: true}})
	assert.False(t, ok)
}

func TestResolveSimpleTokenPreservesType(t *testing.T) {
	ctx := fakeContext{heads: map[string]any{"greet": map[string]any{"result": 42}}}
	resolved, ok := Resolve("${greet.result}", ctx)
	require.True(t, ok)
	assert.Equal(t, 42, resolved)
}

func TestResolveInterpolatesWithinString(t *testing.T) {
	ctx := fakeContext{heads: map[string]any{"name": "world"}}
	resolved, ok := Resolve("hello ${name}!", ctx)
	require.True(t, ok)
	assert.Equal(t, "hello world!", resolved)
}

func TestResolveFailsWhenHeadMissing(t *testing.T) {
	ctx := fakeContext{heads: map[string]any{}}
	resolved, ok := Resolve("${missing}", ctx)
	assert.False(t, ok)
	assert.Equal(t, "${missing}", resolved)
}

func TestResolveRecursesIntoListsAndMaps(t *testing.T) {
	ctx := fakeContext{heads: map[string]any{"name": "ada"}}
	val := map[string]any{
		"list": []any{"${name}", "literal"},
	}
	resolved, ok := Resolve(val, ctx)
	require.True(t, ok)
	m := resolved.(map[string]any)
	list := m["list"].([]any)
	assert.Equal(t, "ada", list[0])
	assert.Equal(t, "literal", list[1])
}

func TestVariableExistsReflectsLookup(t *testing.T) {
	ctx := fakeContext{heads: map[string]any{"n1": map[string]any{"out": 1}}}
	assert.True(t, VariableExists("n1.out", ctx))
	assert.False(t, VariableExists("n2.out", ctx))
}

func TestIsUnresolvedDetectsFullAndPartialNonResolution(t *testing.T) {
	assert.True(t, IsUnresolved("${missing}", "${missing}"))
	assert.True(t, IsUnresolved("User ${name} has ${count}", "User Alice has ${count}"))
	assert.False(t, IsUnresolved("User ${name}", "User Alice"))
}

func TestIsUnresolvedIgnoresLiteralDollarBraceInResolvedData(t *testing.T) {
	assert.False(t, IsUnresolved("${price}", "${5}"))
}

func TestIsUnresolvedRecursesIntoListsAndMaps(t *testing.T) {
	orig := []any{"${a}", "literal"}
	res := []any{"${a}", "literal"}
	assert.True(t, IsUnresolved(orig, res))

	origMap := map[string]any{"k": "${a}"}
	resMap := map[string]any{"k": "resolved"}
	assert.False(t, IsUnresolved(origMap, resMap))
}

func TestSuggestHeadsRanksByEditDistanceCaseInsensitive(t *testing.T) {
	suggestions := SuggestHeads("Greet", []string{"greet", "farewell", "greeting"}, 2)
	require.Len(t, suggestions, 2)
	assert.Equal(t, "greet", suggestions[0])
}

func TestPreviewValueTruncatesLongStrings(t *testing.T) {
	long := ""
	for i := 0; i < 50; i++ {
		long += "x"
	}
	typeTag, preview := PreviewValue(long)
	assert.Equal(t, "string", typeTag)
	assert.Contains(t, preview, "...")
}

func TestPreviewValueTagsCompositeTypes(t *testing.T) {
	typeTag, preview := PreviewValue(map[string]any{"a": 1, "b": 2})
	assert.Equal(t, "object", typeTag)
	assert.Contains(t, preview, "2 keys")

	typeTag, preview = PreviewValue([]any{1, 2, 3})
	assert.Equal(t, "array", typeTag)
	assert.Contains(t, preview, "3 items")
}
