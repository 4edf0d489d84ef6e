package model

import (
	"strings"
	"time"
)

// AttachmentType is the coarse classification shown by the client.
type AttachmentType string

const (
	AttachmentImage    AttachmentType = "image"
	AttachmentVideo    AttachmentType = "video"
	AttachmentDocument AttachmentType = "document"
)

// TypeFromMIME classifies a MIME type by its prefix.
func TypeFromMIME(mimetype string) AttachmentType {
	switch {
	case strings.HasPrefix(mimetype, "image/"):
		return AttachmentImage
	case strings.HasPrefix(mimetype, "video/"):
		return AttachmentVideo
	default:
		return AttachmentDocument
	}
}

// Attachment describes an uploaded file stored under the uploads root.
// Filepath is relative to that root: "<YYYY-MM-DD>/<generated name>".
type Attachment struct {
	ID        string         `json:"id"`
	Filename  string         `json:"filename"` // original name sent by the browser
	Filepath  string         `json:"filepath"`
	Mimetype  string         `json:"mimetype"`
	Size      int64          `json:"size"`
	Type      AttachmentType `json:"type"`
	CreatedAt time.Time      `json:"createdAt"`
}
