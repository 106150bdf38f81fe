package model

import (
	"github.com/google/uuid"
)

type Group struct {
	Base
	Name        string      `json:"name" db:"name"`
	Description string      `json:"description" db:"description"`
	CreatedBy   uuid.UUID   `json:"created_by" db:"created_by"`
	MemberIDs   []uuid.UUID `json:"member_ids" db:"-"`
	Members     []*User     `json:"members,omitempty" db:"-"`
}

type CreateGroupRequest struct {
	Name        string `json:"name" binding:"required,notblank,min=2,max=100"`
	Description string `json:"description" binding:"max=500"`
}

type UpdateGroupRequest struct {
	Name        *string `json:"name" binding:"omitempty,notblank,min=2,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

type AddGroupMemberRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
}
