package models

import (
	"errors"
	"fmt"
	"strings"
)

const (
	CollectionPosts    = "posts"
	CollectionComments = "comments"
)

var ErrInvalidScope = errors.New("недопустимая область запроса")

// Scope identifies one live query: the global feed, or the comments of a
// single post. Ordering is always by creation time, newest first.
type Scope struct {
	Collection string
	ParentID   string
}

func PostsScope() Scope {
	return Scope{Collection: CollectionPosts}
}

func CommentsScope(postID string) Scope {
	return Scope{Collection: CollectionComments, ParentID: postID}
}

func (s Scope) Validate() error {
	switch s.Collection {
	case CollectionPosts:
		if s.ParentID != "" {
			return fmt.Errorf("%w: у постов нет родителя", ErrInvalidScope)
		}
	case CollectionComments:
		if s.ParentID == "" {
			return fmt.Errorf("%w: не указан пост для комментариев", ErrInvalidScope)
		}
	default:
		return fmt.Errorf("%w: неизвестная коллекция %q", ErrInvalidScope, s.Collection)
	}
	return nil
}

// Key renders the scope as a path: "posts" or "posts/{id}/comments".
func (s Scope) Key() string {
	if s.Collection == CollectionComments {
		return CollectionPosts + "/" + s.ParentID + "/" + CollectionComments
	}
	return s.Collection
}

func ParseScope(key string) (Scope, error) {
	parts := strings.Split(strings.Trim(key, "/"), "/")

	var scope Scope
	switch {
	case len(parts) == 1 && parts[0] == CollectionPosts:
		scope = PostsScope()
	case len(parts) == 3 && parts[0] == CollectionPosts && parts[2] == CollectionComments:
		scope = CommentsScope(parts[1])
	default:
		return Scope{}, fmt.Errorf("%w: %q", ErrInvalidScope, key)
	}

	if err := scope.Validate(); err != nil {
		return Scope{}, err
	}
	return scope, nil
}
