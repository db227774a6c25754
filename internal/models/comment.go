package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment lives inside its post and is immutable once created; there is no
// edit or delete operation.
type Comment struct {
	ID        uuid.UUID `json:"id" bson:"id"`
	PostID    uuid.UUID `json:"postId" bson:"postId"`
	UserID    uuid.UUID `json:"userId" bson:"userId"`
	UserName  string    `json:"userName" bson:"userName"`
	Content   string    `json:"content" bson:"content"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}
