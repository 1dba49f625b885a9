package storage

import (
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostImageKey(t *testing.T) {
	userID := uuid.New()

	key := PostImageKey(userID, "Beach.JPG")
	assert.True(t, strings.HasPrefix(key, "posts/"+userID.String()+"/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.True(t, OwnsKey(userID, key))

	assert.NotEqual(t, key, PostImageKey(userID, "Beach.JPG"))
}

func TestOwnsKey(t *testing.T) {
	userID := uuid.New()

	assert.False(t, OwnsKey(uuid.New(), PostImageKey(userID, "a.png")))
	assert.False(t, OwnsKey(userID, "posts/"+userID.String()+"/../other/a.png"))
	assert.False(t, OwnsKey(userID, "avatars/"+userID.String()+"/a.png"))
}

func TestWithHost(t *testing.T) {
	u, err := url.Parse("http://minio:9000/bucket/posts/a.png?X-Amz-Signature=abc")
	require.NoError(t, err)

	assert.Equal(t, "http://cdn.example.com/bucket/posts/a.png?X-Amz-Signature=abc", withHost(u, "cdn.example.com"))

	u, err = url.Parse("http://minio:9000/bucket/a.png")
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000/bucket/a.png", withHost(u, ""))
}
