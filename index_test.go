package nxsearch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	e, err := Open(t.TempDir())
	require.NoError(t, err)
	idx, err := e.IndexCreate("docs", nil)
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close(); e.Close() })
	return idx
}

func TestIndexAddAndSearch(t *testing.T) {
	idx := openTestIndex(t)
	require.NoError(t, idx.Add(1, "the quick brown fox"))
	require.NoError(t, idx.Add(2, "the lazy dog sleeps"))

	resp, err := idx.Search("fox", nil)
	require.NoError(t, err)
	require.Equal(t, 1, resp.ResultCount())
	results := resp.Results()
	require.Equal(t, uint64(1), results[0].DocID)
}

func TestIndexAddDuplicateFails(t *testing.T) {
	idx := openTestIndex(t)
	require.NoError(t, idx.Add(1, "hello world"))
	err := idx.Add(1, "hello again")
	require.Error(t, err)
	var nxErr *Error
	require.ErrorAs(t, err, &nxErr)
	require.Equal(t, CodeExists, nxErr.Code)
}

func TestIndexAddEmptyTextRejected(t *testing.T) {
	idx := openTestIndex(t)
	err := idx.Add(1, "")
	require.Error(t, err)
	var nxErr *Error
	require.ErrorAs(t, err, &nxErr)
	require.Equal(t, CodeInvalid, nxErr.Code)
}

func TestIndexRemoveThenSearchMisses(t *testing.T) {
	idx := openTestIndex(t)
	require.NoError(t, idx.Add(1, "apple banana"))
	require.NoError(t, idx.Add(2, "banana cherry"))

	require.NoError(t, idx.Remove(1))

	resp, err := idx.Search("apple", nil)
	require.NoError(t, err)
	require.Equal(t, 0, resp.ResultCount())

	resp, err = idx.Search("banana", nil)
	require.NoError(t, err)
	require.Equal(t, 1, resp.ResultCount())
	require.Equal(t, uint64(2), resp.Results()[0].DocID)
}

func TestIndexRemoveMissingFails(t *testing.T) {
	idx := openTestIndex(t)
	err := idx.Remove(999)
	require.Error(t, err)
	var nxErr *Error
	require.ErrorAs(t, err, &nxErr)
	require.Equal(t, CodeMissing, nxErr.Code)
}

func TestIndexSearchBooleanQuery(t *testing.T) {
	idx := openTestIndex(t)
	require.NoError(t, idx.Add(1, "red apple sweet"))
	require.NoError(t, idx.Add(2, "red grape sour"))
	require.NoError(t, idx.Add(3, "green apple sour"))

	resp, err := idx.Search("red AND apple", nil)
	require.NoError(t, err)
	require.Equal(t, 1, resp.ResultCount())
	require.Equal(t, uint64(1), resp.Results()[0].DocID)

	resp, err = idx.Search("apple OR grape", nil)
	require.NoError(t, err)
	require.Equal(t, 3, resp.ResultCount())

	resp, err = idx.Search("apple AND NOT green", nil)
	require.NoError(t, err)
	require.Equal(t, 1, resp.ResultCount())
	require.Equal(t, uint64(1), resp.Results()[0].DocID)
}

func TestIndexStats(t *testing.T) {
	e, err := Open(t.TempDir())
	require.NoError(t, err)
	defer e.Close()

	params := NewParams()
	params.SetStr("lang", "en")
	params.SetStrList("filters", []string{"normalizer"}) // skip stemming for a stable term spelling
	idx, err := e.IndexCreate("docs", params)
	require.NoError(t, err)
	defer idx.Close()

	require.NoError(t, idx.Add(1, "alpha beta"))
	require.NoError(t, idx.Add(2, "beta gamma"))

	st := idx.Stats()
	require.Equal(t, uint32(2), st.DocCount)
	require.Equal(t, 3, st.TermCount) // alpha, beta, gamma
	require.Equal(t, 2, st.TermPostings["beta"])
}

func TestIndexCreateDuplicateNameFails(t *testing.T) {
	e, err := Open(t.TempDir())
	require.NoError(t, err)
	defer e.Close()

	idx, err := e.IndexCreate("dup", nil)
	require.NoError(t, err)
	defer idx.Close()

	_, err = e.IndexCreate("dup", nil)
	require.Error(t, err)
	var nxErr *Error
	require.ErrorAs(t, err, &nxErr)
	require.Equal(t, CodeExists, nxErr.Code)
}

func TestIndexOpenMissingFails(t *testing.T) {
	e, err := Open(t.TempDir())
	require.NoError(t, err)
	defer e.Close()

	_, err = e.IndexOpen("ghost")
	require.Error(t, err)
}

func TestIndexAddTermTooLongFailsWithCodeLimit(t *testing.T) {
	idx := openTestIndex(t)
	huge := strings.Repeat("a", 100000)
	err := idx.Add(1, huge)
	require.Error(t, err)
	var nxErr *Error
	require.ErrorAs(t, err, &nxErr)
	require.Equal(t, CodeLimit, nxErr.Code)
}

func TestIndexSearchSyntaxErrorFailsWithCodeInvalid(t *testing.T) {
	idx := openTestIndex(t)
	require.NoError(t, idx.Add(1, "red apple"))

	_, err := idx.Search("(apple AND", nil)
	require.Error(t, err)
	var nxErr *Error
	require.ErrorAs(t, err, &nxErr)
	require.Equal(t, CodeInvalid, nxErr.Code)
}

func TestValidateIndexNameRejectsBadNames(t *testing.T) {
	for _, name := range []string{"", ".", "..", "a/b", "a b", "a*b"} {
		if err := validateIndexName(name); err == nil {
			t.Errorf("validateIndexName(%q) = nil, want error", name)
		}
	}
	if err := validateIndexName("valid-name_123"); err != nil {
		t.Errorf("validateIndexName(valid) = %v, want nil", err)
	}
}
