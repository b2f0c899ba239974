package model

import (
	"time"

	"github.com/google/uuid"
)

type Post struct {
	Id             uuid.UUID
	GroupId        uuid.UUID
	AuthorId       uuid.UUID
	Title          string
	Description    *string
	CreateDatetime time.Time
	UpdateDatetime time.Time
	CreateUserId   uuid.UUID
	UpdateUserId   uuid.UUID
}

type PostCreateRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	GroupId     string  `json:"groupId"`
}

type PostCreateResponse struct {
	Id uuid.UUID `json:"id"`
}

type PostGroup struct {
	Id    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Image *string   `json:"image"`
}

type PostAuthor struct {
	Id          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	AvatarImage *string   `json:"avatarImage"`
}

type PostResponse struct {
	Id             uuid.UUID  `json:"id"`
	Title          string     `json:"title"`
	Description    *string    `json:"description"`
	Group          PostGroup  `json:"group"`
	Author         PostAuthor `json:"author"`
	Upvotes        int64      `json:"upvotes"`
	UserVote       int16      `json:"userVote"`
	CommentCount   int64      `json:"commentCount"`
	CreateDatetime time.Time  `json:"createDatetime"`
	UpdateDatetime time.Time  `json:"updateDatetime"`
}

type PostCursor struct {
	Id             uuid.UUID `json:"id"`
	CreateDatetime time.Time `json:"createDatetime"`
}

type PostPage struct {
	NextCursor string `json:"nextCursor,omitempty"`
}

type PostListResponse struct {
	Data []PostResponse `json:"data"`
	Page PostPage       `json:"page"`
}
