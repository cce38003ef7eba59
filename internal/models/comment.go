package models

import (
	"time"
)

// Comment represents a stored comment attached to a container.
// Content holds the raw Markdown source; HTML rendering happens at
// read time and is never persisted.
type Comment struct {
	ID          int64     `json:"id" db:"id"`
	ContainerID int64     `json:"postid" db:"container_id"`
	Author      string    `json:"author" db:"author"`
	Email       string    `json:"-" db:"email"`
	Website     string    `json:"url" db:"website"`
	Content     string    `json:"content" db:"content"`
	AuthorIP    string    `json:"-" db:"author_ip"`
	CreatedAt   time.Time `json:"date" db:"created_at"`
	Approved    bool      `json:"-" db:"approved"`
	Baked       bool      `json:"-" db:"baked"`
}

// CommentDraft carries an inbound comment between extraction, validation
// and persistence. It is distinct from Comment: no assigned ID, no baked
// flag, and the container may still be addressed by moniker.
type CommentDraft struct {
	ContainerID int64
	Moniker     string
	Author      string
	Email       string
	Website     string
	Content     string
	AuthorIP    string
	CreatedAt   time.Time
}

// Field length limits enforced by validation
const (
	MaxAuthorLength  = 250
	MaxWebsiteLength = 200
	MaxEmailLength   = 100
	MaxContentLength = 50000
)
