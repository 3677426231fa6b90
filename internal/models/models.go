package models

import (
	"time"
)

type User struct {
	UserID                 string    `json:"userId" db:"user_id"`
	Email                  string    `json:"email" db:"email"`
	PasswordHash           string    `json:"-" db:"password_hash"`
	DisplayName            string    `json:"displayName" db:"display_name"`
	PhotoURL               string    `json:"photoUrl" db:"photo_url"`
	RefreshToken           string    `json:"-" db:"refresh_token"`
	RefreshTokenExpiryTime time.Time `json:"-" db:"refresh_token_expiry_time"`
	ResetToken             string    `json:"-" db:"reset_token"`
	ResetTokenExpiryTime   time.Time `json:"-" db:"reset_token_expiry_time"`
	CreatedAt              time.Time `json:"createdAt" db:"created_at"`
}

// Session is the locally held identity of the signed-in user.
// The zero value means signed out.
type Session struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoUrl"`
}

func (s Session) Empty() bool {
	return s.UID == ""
}

func SessionFromUser(u *User) Session {
	if u == nil {
		return Session{}
	}
	return Session{
		UID:         u.UserID,
		DisplayName: u.DisplayName,
		PhotoURL:    u.PhotoURL,
	}
}

// Document is a record of the live-queried collections. Posts leave
// ParentID empty, comments carry the owning post id and an empty Image.
type Document struct {
	ID        string    `json:"id" db:"id"`
	ParentID  string    `json:"parentId,omitempty" db:"parent_id"`
	AuthorID  string    `json:"authorId" db:"author_id"`
	Username  string    `json:"username" db:"username"`
	Avatar    string    `json:"avatar" db:"avatar"`
	Text      string    `json:"text" db:"text"`
	Image     string    `json:"image" db:"image"`
	Timestamp time.Time `json:"timestamp" db:"created_at"`
}

// Snapshot is the full ordered result of a live query at one point in time.
type Snapshot struct {
	Scope     string     `json:"scope"`
	Documents []Document `json:"documents"`
}

type Post struct {
	PostID    string    `json:"postId"`
	AuthorID  string    `json:"authorId"`
	Username  string    `json:"username"`
	Avatar    string    `json:"avatar"`
	Text      string    `json:"text"`
	ImageURL  string    `json:"imageUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

type Comment struct {
	CommentID string    `json:"commentId"`
	PostID    string    `json:"postId"`
	AuthorID  string    `json:"authorId"`
	Username  string    `json:"username"`
	Avatar    string    `json:"avatar"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

func PostFromDocument(d Document) Post {
	return Post{
		PostID:    d.ID,
		AuthorID:  d.AuthorID,
		Username:  d.Username,
		Avatar:    d.Avatar,
		Text:      d.Text,
		ImageURL:  d.Image,
		CreatedAt: d.Timestamp,
	}
}

func CommentFromDocument(d Document) Comment {
	return Comment{
		CommentID: d.ID,
		PostID:    d.ParentID,
		AuthorID:  d.AuthorID,
		Username:  d.Username,
		Avatar:    d.Avatar,
		Text:      d.Text,
		CreatedAt: d.Timestamp,
	}
}

// Attachment is a file picked by the user, kept in memory until upload.
type Attachment struct {
	Name string
	Data []byte
}
