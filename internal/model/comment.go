package model

import (
	"time"

	"github.com/google/uuid"
)

// PostComment is the row stored in post_comments.
type PostComment struct {
	Id             uuid.UUID
	PostId         uuid.UUID
	AuthorId       uuid.UUID
	ParentId       *uuid.UUID
	Content        string
	CreateDatetime time.Time
	UpdateDatetime time.Time
	CreateUserId   uuid.UUID
	UpdateUserId   uuid.UUID
}

type CommentAuthor struct {
	Id          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	AvatarImage *string   `json:"avatarImage"`
}

// Comment is one flat comment of a post as loaded from storage, before it is
// placed into a reply tree. A nil ParentId marks a top-level comment.
type Comment struct {
	Id             uuid.UUID     `json:"id"`
	PostId         uuid.UUID     `json:"postId"`
	ParentId       *uuid.UUID    `json:"parentId"`
	Content        string        `json:"content"`
	Author         CommentAuthor `json:"author"`
	CreateDatetime time.Time     `json:"createDatetime"`
	UpdateDatetime time.Time     `json:"updateDatetime"`
}

// CommentNode is a Comment placed in a reply tree. Replies is never nil.
type CommentNode struct {
	Comment
	Upvotes       int            `json:"upvotes"`
	ParentDeleted bool           `json:"parentDeleted,omitempty"`
	Replies       []*CommentNode `json:"replies"`
}

type CommentCreateRequest struct {
	Content  string  `json:"content"`
	ParentId *string `json:"parentId"`
}

type CommentThreadResponse struct {
	Data       []*CommentNode `json:"data"`
	Count      int            `json:"count"`
	FocusIndex int            `json:"focusIndex"`
}
