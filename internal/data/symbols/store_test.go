package symbols

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cstyle/internal/engine/lang"
	"cstyle/internal/engine/parser/parsertest"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "index", "symbols.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open symbol index: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func TestEntriesFromSample(t *testing.T) {
	state := parsertest.BuildWithDefaults(t, parsertest.Sample)
	entries := EntriesFrom(state)

	type nk struct {
		Name string
		Kind Kind
	}
	var got []nk
	for _, e := range entries {
		got = append(got, nk{e.Name, e.Kind})
	}
	assert.Equal(t, []nk{
		{"myRep", KindMacro},
		{"global_var", KindVariable},
		{"MyStruct", KindStruct},
		{"myField", KindField},
		{"arrayField", KindField},
		{"main", KindFunction},
	}, got)

	for _, e := range entries {
		if e.Kind == KindField {
			assert.Equal(t, "MyStruct", e.Container)
		}
	}
	assert.Equal(t, parsertest.LocationOf(t, parsertest.Sample, "MyStruct").Range, entries[2].Range)
	assert.Nil(t, EntriesFrom(nil))
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := Open("  ")
	require.Error(t, err)
}

func TestReplaceAndSearch(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()
	state := parsertest.BuildWithDefaults(t, parsertest.Sample)

	written, err := store.Index(ctx, state)
	require.NoError(t, err)
	assert.True(t, written)

	written, err = store.Index(ctx, state)
	require.NoError(t, err)
	assert.False(t, written, "unchanged entries are not rewritten")

	matches, err := store.Search(ctx, "FIELD", 0)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "arrayField", matches[0].Name)
	assert.Equal(t, "myField", matches[1].Name)
	assert.Equal(t, parsertest.SampleURI, matches[0].URI)
	assert.Equal(t, KindField, matches[0].Kind)

	all, err := store.Search(ctx, "", 3)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSearchEscapesWildcards(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	_, err := store.Replace(ctx, "file:///a.c", []Entry{
		{Name: "my_value", Kind: KindVariable},
		{Name: "myXvalue", Kind: KindVariable},
		{Name: "pct", Kind: KindMacro},
	})
	require.NoError(t, err)

	matches, err := store.Search(ctx, "my_", 0)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "my_value", matches[0].Name)

	matches, err = store.Search(ctx, "%", 0)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestReplaceDropsStaleRows(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	_, err := store.Replace(ctx, "file:///a.c", []Entry{{Name: "old_fn", Kind: KindFunction}})
	require.NoError(t, err)
	_, err = store.Replace(ctx, "file:///b.c", []Entry{{Name: "other_fn", Kind: KindFunction}})
	require.NoError(t, err)
	_, err = store.Replace(ctx, "file:///a.c", []Entry{{Name: "new_fn", Kind: KindFunction}})
	require.NoError(t, err)

	matches, err := store.Search(ctx, "_fn", 0)
	require.NoError(t, err)
	var names []string
	for _, m := range matches {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"new_fn", "other_fn"}, names)

	require.NoError(t, store.Delete(ctx, "file:///b.c"))
	matches, err = store.Search(ctx, "_fn", 0)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "file:///a.c", matches[0].URI)
}

func TestDigestsSurviveReopen(t *testing.T) {
	store, path := openTestStore(t)
	ctx := context.Background()
	entries := []Entry{{
		Name:  "main",
		Kind:  KindFunction,
		Range: lang.Range{Start: lang.Position{Line: 1, Character: 5}, End: lang.Position{Line: 1, Character: 9}},
	}}

	written, err := store.Replace(ctx, "file:///a.c", entries)
	require.NoError(t, err)
	require.True(t, written)
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	written, err = reopened.Replace(ctx, "file:///a.c", entries)
	require.NoError(t, err)
	assert.False(t, written)

	entries[0].Range.Start.Character = 6
	written, err = reopened.Replace(ctx, "file:///a.c", entries)
	require.NoError(t, err)
	assert.True(t, written)
}

func TestDigestIsOrderSensitive(t *testing.T) {
	a := []Entry{{Name: "x"}, {Name: "y"}}
	b := []Entry{{Name: "y"}, {Name: "x"}}
	assert.NotEqual(t, Digest(a), Digest(b))
	assert.Equal(t, Digest(a), Digest([]Entry{{Name: "x"}, {Name: "y"}}))
}
