package models

import (
	"path/filepath"
	"strings"
)

// RootParentID is the parent id carried by original posts.
const RootParentID = "0"

// Post is a single message on the board. Original posts and replies share
// the type; a reply points at its thread's original post through ParentID.
type Post struct {
	ID           string `json:"id" validate:"required,alphanum"`
	ParentID     string `json:"parent_id" validate:"required,alphanum"`
	Title        string `json:"title"`
	Message      string `json:"message"`
	Attachment   string `json:"attachment,omitempty"`
	LastActivity int64  `json:"last_activity"`
	CreatedAt    int64  `json:"created_at"`
}

// IsRoot reports whether the post starts a thread.
func (p *Post) IsRoot() bool {
	return p.ParentID == RootParentID
}

// BeforeCreate stamps creation and activity times and defaults the parent.
func (p *Post) BeforeCreate(now int64) {
	if p.ParentID == "" {
		p.ParentID = RootParentID
	}
	p.CreatedAt = now
	p.LastActivity = now
}

// Touch moves LastActivity forward to ts. Older timestamps are ignored so
// activity never goes backwards; the return value reports whether it moved.
func (p *Post) Touch(ts int64) bool {
	if ts <= p.LastActivity {
		return false
	}
	p.LastActivity = ts
	return true
}

// Media kinds a stored attachment can be rendered as.
const (
	MediaNone  = ""
	MediaImage = "image"
	MediaVideo = "video"
	MediaAudio = "audio"
)

// MediaKindOf picks how an attachment is rendered from its extension alone.
func MediaKindOf(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return MediaImage
	case ".mp4", ".webm":
		return MediaVideo
	case ".mp3":
		return MediaAudio
	default:
		return MediaNone
	}
}
