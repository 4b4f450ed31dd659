package linkedin

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTextPost(t *testing.T) {
	payload := &postPayload{
		ID:          "urn:li:share:1",
		Commentary:  "Shipping season",
		PublishedAt: 1700000000000,
		Visibility:  "PUBLIC",
	}

	post := Normalize(payload, "user-1", "Jane Doe")

	assert.Equal(t, "urn:li:share:1", post.PostID)
	assert.Equal(t, "text", post.PostType)
	assert.Equal(t, "Shipping season", post.Content)
	assert.Equal(t, "Jane Doe", post.AuthorName)
	assert.Equal(t, int64(1700000000000), post.PostedAt.UnixMilli())
	assert.Empty(t, []string(post.MediaURLs))
}

func TestNormalizeArticlePost(t *testing.T) {
	raw := `{
		"id": "urn:li:share:2",
		"commentary": "Worth a read",
		"createdAt": 1700000000000,
		"content": {
			"article": {
				"source": "https://example.com/post",
				"title": "Go at scale",
				"description": "Notes from production"
			}
		}
	}`
	var payload postPayload
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))

	post := Normalize(&payload, "user-1", "")

	assert.Equal(t, "article", post.PostType)
	assert.Equal(t, "https://example.com/post", post.ArticleURL)
	assert.Equal(t, "Go at scale", post.ArticleTitle)
	assert.Equal(t, "Notes from production", post.ArticleDescription)
}

func TestDeterminePostTypeFromMediaURN(t *testing.T) {
	cases := []struct {
		urn      string
		expected string
	}{
		{"urn:li:image:abc", "image"},
		{"urn:li:video:abc", "video"},
		{"urn:li:document:abc", "document"},
		{"urn:li:something:abc", "text"},
	}
	for _, tc := range cases {
		payload := &postPayload{ID: "p"}
		raw := `{"content":{"media":{"id":"` + tc.urn + `"}}}`
		require.NoError(t, json.Unmarshal([]byte(raw), payload))
		assert.Equal(t, tc.expected, determinePostType(payload), tc.urn)
	}
}

func TestNormalizeMultiImageCollectsRefs(t *testing.T) {
	raw := `{
		"id": "urn:li:share:3",
		"content": {
			"multiImage": {
				"images": [{"id": "urn:li:image:1"}, {"id": "urn:li:image:2"}]
			}
		}
	}`
	var payload postPayload
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))

	post := Normalize(&payload, "user-1", "")

	assert.Equal(t, "image", post.PostType)
	assert.Equal(t, []string{"urn:li:image:1", "urn:li:image:2"}, []string(post.MediaURLs))
}

func TestCreatedTimePrefersPublishedAt(t *testing.T) {
	payload := &postPayload{CreatedAt: 1000, PublishedAt: 2000}
	assert.Equal(t, time.UnixMilli(2000), payload.createdTime())

	payload = &postPayload{CreatedAt: 1000}
	assert.Equal(t, time.UnixMilli(1000), payload.createdTime())

	payload = &postPayload{}
	assert.True(t, payload.createdTime().IsZero())
}
