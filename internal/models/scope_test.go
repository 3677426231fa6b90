package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeKeyAndParse(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		scope Scope
	}{
		{name: "Лента", key: "posts", scope: PostsScope()},
		{name: "Комментарии поста", key: "posts/abc/comments", scope: CommentsScope("abc")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.key, tt.scope.Key())

			parsed, err := ParseScope(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.scope, parsed)
		})
	}
}

func TestParseScope_Invalid(t *testing.T) {
	for _, key := range []string{"", "users", "posts//comments", "posts/abc", "posts/abc/likes", "comments"} {
		_, err := ParseScope(key)
		assert.ErrorIs(t, err, ErrInvalidScope, key)
	}
}

func TestScopeValidate(t *testing.T) {
	assert.NoError(t, PostsScope().Validate())
	assert.NoError(t, CommentsScope("p1").Validate())
	assert.ErrorIs(t, Scope{Collection: CollectionPosts, ParentID: "p1"}.Validate(), ErrInvalidScope)
	assert.ErrorIs(t, Scope{Collection: CollectionComments}.Validate(), ErrInvalidScope)
}

func TestDocumentMapping(t *testing.T) {
	doc := Document{ID: "c1", ParentID: "p1", Username: "taro", Avatar: "a.png", Text: "nice!"}

	comment := CommentFromDocument(doc)
	assert.Equal(t, "c1", comment.CommentID)
	assert.Equal(t, "p1", comment.PostID)
	assert.Equal(t, "nice!", comment.Text)

	post := PostFromDocument(Document{ID: "p1", Text: "hello world"})
	assert.Equal(t, "p1", post.PostID)
	assert.Empty(t, post.ImageURL)
}

func TestSessionFromUser(t *testing.T) {
	assert.True(t, SessionFromUser(nil).Empty())

	s := SessionFromUser(&User{UserID: "u1", DisplayName: "taro", PhotoURL: "p.png"})
	assert.False(t, s.Empty())
	assert.Equal(t, Session{UID: "u1", DisplayName: "taro", PhotoURL: "p.png"}, s)
}
