package models

import (
	"errors"
	"time"
)

var (
	ErrUsernameTaken = errors.New("username already taken")
	ErrUserNotFound  = errors.New("user not found")
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"display_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Note is one immutable row in a note's version chain. OriginID points at
// the row this one revises; nil marks a root note. Edits insert a new row
// rather than mutating in place, so the chain stays walkable backwards.
type Note struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	IsGlobal  bool      `json:"is_global"`
	UserID    *int64    `json:"user_id"`
	OriginID  *int64    `json:"origin_id"`
	IsDeleted bool      `json:"is_deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
