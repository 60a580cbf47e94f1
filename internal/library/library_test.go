package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildStyleContext(t *testing.T) {
	artists := []Artist{
		{ID: 2, Styles: []string{"rock", "rock", "jazz"}},
		{ID: 1, Styles: []string{"rock"}},
		{ID: 3},
	}
	albums := []Album{
		{ID: 10, Styles: []string{"jazz"}},
		{ID: 11, Styles: []string{"rock"}},
	}

	ctx := BuildStyleContext(artists, albums)

	// Duplicate tags on one artist count once.
	assert.Equal(t, map[string]int{"rock": 2, "jazz": 1}, ctx.Coverage)

	// Index ids come back sorted regardless of input order.
	assert.Equal(t, []int64{1, 2}, ctx.ArtistIndex["rock"])
	assert.Equal(t, []int64{10}, ctx.AlbumIndex["jazz"])

	require.Contains(t, ctx.ArtistStyles, int64(3))
	assert.Empty(t, ctx.ArtistStyles[3])
}

func TestStyleContext_IDUnion(t *testing.T) {
	ctx := BuildStyleContext(
		[]Artist{
			{ID: 1, Styles: []string{"rock"}},
			{ID: 2, Styles: []string{"rock", "jazz"}},
			{ID: 3, Styles: []string{"jazz"}},
			{ID: 4, Styles: []string{"metal"}},
		},
		nil,
	)

	ids := ctx.ArtistIDsFor([]string{"rock", "jazz"})
	assert.Len(t, ids, 3)
	_, ok := ids[4]
	assert.False(t, ok)

	assert.Empty(t, ctx.ArtistIDsFor([]string{"unknown"}))
	assert.Empty(t, ctx.ArtistIDsFor(nil))
}
