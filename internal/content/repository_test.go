package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildGalleryPatch(t *testing.T) {
	q, args, err := buildGalleryPatch("abc", map[string]interface{}{
		"title":       "Graduation Day",
		"videoStatus": "processed",
		"youtubeId":   "yt123",
	})
	require.NoError(t, err)

	assert.Contains(t, q, "UPDATE content SET")
	assert.Contains(t, q, "title = $")
	assert.Contains(t, q, "video_status = $")
	assert.Contains(t, q, "youtube_id = $")
	assert.Contains(t, q, "kind = $")
	assert.Contains(t, q, "id = $")

	// 3 set values + id + kind
	assert.Len(t, args, 5)
	assert.Contains(t, args, "Graduation Day")
	assert.Contains(t, args, "abc")
}

func TestBuildGalleryPatchDeterministic(t *testing.T) {
	updates := map[string]interface{}{
		"year":     "1998",
		"category": "family",
		"title":    "Summer",
	}
	q1, _, err := buildGalleryPatch("abc", updates)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		q2, _, err := buildGalleryPatch("abc", updates)
		require.NoError(t, err)
		assert.Equal(t, q1, q2)
	}
}

func TestBuildGalleryPatchIgnoresUnknownFields(t *testing.T) {
	q, args, err := buildGalleryPatch("abc", map[string]interface{}{
		"title":          "ok",
		"dropme; DROP--": "x",
		"is_legacy":      true,
	})
	require.NoError(t, err)
	assert.NotContains(t, q, "dropme")
	assert.NotContains(t, q, "is_legacy")
	assert.Len(t, args, 3) // title + id + kind
}

func TestBuildGalleryPatchNoFields(t *testing.T) {
	_, _, err := buildGalleryPatch("abc", map[string]interface{}{})
	assert.ErrorIs(t, err, ErrNoFields)

	_, _, err = buildGalleryPatch("abc", map[string]interface{}{"unknown": 1})
	assert.ErrorIs(t, err, ErrNoFields)
}

func TestBuildGalleryPatchMapsOrderColumn(t *testing.T) {
	q, _, err := buildGalleryPatch("abc", map[string]interface{}{"order": 3})
	require.NoError(t, err)
	assert.Contains(t, q, "sort_order = $")
	assert.NotContains(t, q, `"order"`)
}
