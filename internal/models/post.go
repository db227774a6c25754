package models

import (
	"time"

	"github.com/google/uuid"
)

// PostStatus is the moderation state of a post. A post is created PENDING and
// moves to APPROVED or REJECTED exactly once; the only way out of those states
// is deletion.
type PostStatus string

const (
	StatusPending  PostStatus = "PENDING"
	StatusApproved PostStatus = "APPROVED"
	StatusRejected PostStatus = "REJECTED"
)

// PostType is the content category, fixed at creation.
type PostType string

const (
	TypeSpeech   PostType = "SPEECH"
	TypeManqabat PostType = "MANQABAT"
)

// ValidPostType reports whether s is one of the known categories.
func ValidPostType(s string) bool {
	switch PostType(s) {
	case TypeSpeech, TypeManqabat:
		return true
	}
	return false
}

// MediaType of the uploaded recording, derived from the file's MIME type.
type MediaType string

const (
	MediaAudio MediaType = "audio"
	MediaVideo MediaType = "video"
)

type Post struct {
	ID     uuid.UUID `json:"id" bson:"_id"`
	UserID uuid.UUID `json:"userId" bson:"userId"`
	// UserName is denormalized for display and survives the author's
	// soft-deletion.
	UserName        string     `json:"userName" bson:"userName"`
	Type            PostType   `json:"type" bson:"type"`
	Title           string     `json:"title" bson:"title"`
	Description     string     `json:"description" bson:"description"`
	MediaURL        string     `json:"mediaUrl" bson:"mediaUrl"`
	MediaType       MediaType  `json:"mediaType" bson:"mediaType"`
	PosterURL       string     `json:"posterUrl,omitempty" bson:"posterUrl,omitempty"`
	Status          PostStatus `json:"status" bson:"status"`
	RejectionReason string     `json:"rejectionReason,omitempty" bson:"rejectionReason,omitempty"`
	Location        string     `json:"location,omitempty" bson:"location,omitempty"`
	Date            string     `json:"date,omitempty" bson:"date,omitempty"`
	Views           int        `json:"views" bson:"views"`
	Downloads       int        `json:"downloads" bson:"downloads"`
	CreatedAt       time.Time  `json:"createdAt" bson:"createdAt"`
	Comments        []Comment  `json:"comments" bson:"comments"`
}
