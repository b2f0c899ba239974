package model

import (
	"time"

	"github.com/google/uuid"
)

type Group struct {
	Id             uuid.UUID
	Name           string
	ImageId        *uuid.UUID
	CreateDatetime time.Time
	UpdateDatetime time.Time
	CreateUserId   uuid.UUID
	UpdateUserId   uuid.UUID
}

type GroupCreateRequest struct {
	Name string `form:"name" json:"name"`
}

type GroupResponse struct {
	Id             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Image          *string   `json:"image"`
	CreateDatetime time.Time `json:"createDatetime"`
}

type GroupListResponse struct {
	Data []GroupResponse `json:"data"`
}
