// Package model defines the records persisted in the JSON collections.
//
// The JSON tags match the wire format the SPA expects (camelCase), and the
// same encoding is used on disk, so a collection file is just the JSON array
// the API returns.
package model

import "time"

// Message is one entry of the main courante.
//
// Attachments, Likes and Comments are owned by the message and embedded in
// the messages.json record. Tags only holds tag ids (membership).
type Message struct {
	ID          string       `json:"id"`
	Content     string       `json:"content"`
	Tags        []string     `json:"tags"`
	Attachments []Attachment `json:"attachments"`
	Author      string       `json:"author"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	Likes       []Like       `json:"likes"`
	Comments    []Comment    `json:"comments"`
}

// Normalize replaces nil slices with empty ones so the record always encodes
// `[]` instead of `null`.
func (m *Message) Normalize() {
	if m.Tags == nil {
		m.Tags = []string{}
	}
	if m.Attachments == nil {
		m.Attachments = []Attachment{}
	}
	if m.Likes == nil {
		m.Likes = []Like{}
	}
	if m.Comments == nil {
		m.Comments = []Comment{}
	}
}

// HasTag reports whether the message references tagID.
func (m *Message) HasTag(tagID string) bool {
	for _, id := range m.Tags {
		if id == tagID {
			return true
		}
	}
	return false
}

// LikedBy reports whether prenomID already liked this message.
func (m *Message) LikedBy(prenomID string) bool {
	for _, l := range m.Likes {
		if l.PrenomID == prenomID {
			return true
		}
	}
	return false
}

// AttachmentPaths returns the relative paths of every attachment.
func (m *Message) AttachmentPaths() []string {
	paths := make([]string, 0, len(m.Attachments))
	for _, a := range m.Attachments {
		paths = append(paths, a.Filepath)
	}
	return paths
}

// Like records that a prénom liked a message.
type Like struct {
	ID        string    `json:"id"`
	PrenomID  string    `json:"prenomId"`
	MessageID string    `json:"messageId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Comment is a short reply left by a prénom under a message.
type Comment struct {
	ID        string    `json:"id"`
	MessageID string    `json:"messageId"`
	PrenomID  string    `json:"prenomId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
