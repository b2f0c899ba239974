package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	UpvoteValueUp   int16 = 1
	UpvoteValueDown int16 = -1
)

type PostUpvote struct {
	PostId         uuid.UUID
	UserId         uuid.UUID
	Value          int16
	CreateDatetime time.Time
	UpdateDatetime time.Time
	CreateUserId   uuid.UUID
	UpdateUserId   uuid.UUID
}

type UpvoteRequest struct {
	Value int16 `json:"value"`
}

type UpvoteResponse struct {
	Upvotes  int64 `json:"upvotes"`
	UserVote int16 `json:"userVote"`
}
