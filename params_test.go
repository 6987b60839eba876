package nxsearch

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParamsMergeOverlaysOverBase(t *testing.T) {
	base := DefaultIndexParams()
	overlay := NewParams()
	overlay.SetStr("lang", "fr")

	merged := Merge(base, overlay)
	lang, ok := merged.GetStr("lang")
	require.True(t, ok)
	require.Equal(t, "fr", lang)

	algo, ok := merged.GetStr("algo")
	require.True(t, ok)
	require.Equal(t, "BM25", algo)
}

func TestParamsJSONRoundTrip(t *testing.T) {
	p := DefaultSearchParams()
	data, err := p.ToJSON()
	require.NoError(t, err)

	back, err := ParamsFromJSON(data)
	require.NoError(t, err)

	limit, ok := back.GetUint("limit")
	require.True(t, ok)
	require.Equal(t, uint64(1000), limit)
}

func TestParamsSaveLoadRoundTrip(t *testing.T) {
	p := DefaultIndexParams()
	path := filepath.Join(t.TempDir(), "params.db")
	require.NoError(t, SaveParams(p, path))

	back, err := LoadParams(path)
	require.NoError(t, err)
	algo, ok := back.GetStr("algo")
	require.True(t, ok)
	require.Equal(t, "BM25", algo)

	filters, ok := back.GetStrList("filters")
	require.True(t, ok)
	require.ElementsMatch(t, []string{"normalizer", "stopwords", "stemmer"}, filters)
}

func TestParamsFromJSONTolerantOfComments(t *testing.T) {
	data := []byte(`{
		// a comment
		"str": {"lang": "en"},
	}`)
	p, err := ParamsFromJSON(data)
	require.NoError(t, err)
	lang, ok := p.GetStr("lang")
	require.True(t, ok)
	require.Equal(t, "en", lang)
}
