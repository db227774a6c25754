// internal/database/post_store.go
package database

import (
	"context"
	"fmt"
	"time"

	"minbar-hub/internal/models"
	"minbar-hub/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/google/uuid"
)

// CommentDocument is a comment embedded in its post document. A comment's
// lifetime equals its post's lifetime.
type CommentDocument struct {
	ID        string    `bson:"id"`
	PostID    string    `bson:"postId"`
	UserID    string    `bson:"userId"`
	UserName  string    `bson:"userName"`
	Content   string    `bson:"content"`
	CreatedAt time.Time `bson:"createdAt"`
}

// PostDocument represents the MongoDB schema for a post
type PostDocument struct {
	ID              string            `bson:"_id"`
	UserID          string            `bson:"userId"`
	UserName        string            `bson:"userName"`
	Type            string            `bson:"type"`
	Title           string            `bson:"title"`
	Description     string            `bson:"description"`
	MediaURL        string            `bson:"mediaUrl"`
	MediaType       string            `bson:"mediaType"`
	PosterURL       string            `bson:"posterUrl,omitempty"`
	Status          string            `bson:"status"`
	RejectionReason string            `bson:"rejectionReason,omitempty"`
	Location        string            `bson:"location,omitempty"`
	Date            string            `bson:"date,omitempty"`
	Views           int               `bson:"views"`
	Downloads       int               `bson:"downloads"`
	CreatedAt       time.Time         `bson:"createdAt"`
	Comments        []CommentDocument `bson:"comments"`
}

// SavePost upserts the full post document, embedded comments included. Status
// transitions, counter increments and comment appends all come through here
// already serialized by the content actor, so a whole-document write is safe.
func (m *MongoDB) SavePost(ctx context.Context, post *models.Post) error {
	doc := PostDocument{
		ID:              post.ID.String(),
		UserID:          post.UserID.String(),
		UserName:        post.UserName,
		Type:            string(post.Type),
		Title:           post.Title,
		Description:     post.Description,
		MediaURL:        post.MediaURL,
		MediaType:       string(post.MediaType),
		PosterURL:       post.PosterURL,
		Status:          string(post.Status),
		RejectionReason: post.RejectionReason,
		Location:        post.Location,
		Date:            post.Date,
		Views:           post.Views,
		Downloads:       post.Downloads,
		CreatedAt:       post.CreatedAt,
		Comments:        make([]CommentDocument, len(post.Comments)),
	}

	for i, c := range post.Comments {
		doc.Comments[i] = CommentDocument{
			ID:        c.ID.String(),
			PostID:    c.PostID.String(),
			UserID:    c.UserID.String(),
			UserName:  c.UserName,
			Content:   c.Content,
			CreatedAt: c.CreatedAt,
		}
	}

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"_id": post.ID.String()}
	update := bson.M{"$set": doc}

	_, err := m.Posts.UpdateOne(ctx, filter, update, opts)
	return err
}

// DeletePost removes the post document entirely. Hard delete, irreversible.
func (m *MongoDB) DeletePost(ctx context.Context, id uuid.UUID) error {
	result, err := m.Posts.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return utils.NewNotFoundError("post")
	}
	return nil
}

// LoadPosts retrieves every post, newest first.
func (m *MongoDB) LoadPosts(ctx context.Context) ([]*models.Post, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := m.Posts.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var posts []*models.Post
	for cursor.Next(ctx) {
		var doc PostDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}

		post, err := docToPost(&doc)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, cursor.Err()
}

func docToPost(doc *PostDocument) (*models.Post, error) {
	postID, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid post ID in database: %v", err)
	}
	userID, err := uuid.Parse(doc.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID in database: %v", err)
	}

	post := &models.Post{
		ID:              postID,
		UserID:          userID,
		UserName:        doc.UserName,
		Type:            models.PostType(doc.Type),
		Title:           doc.Title,
		Description:     doc.Description,
		MediaURL:        doc.MediaURL,
		MediaType:       models.MediaType(doc.MediaType),
		PosterURL:       doc.PosterURL,
		Status:          models.PostStatus(doc.Status),
		RejectionReason: doc.RejectionReason,
		Location:        doc.Location,
		Date:            doc.Date,
		Views:           doc.Views,
		Downloads:       doc.Downloads,
		CreatedAt:       doc.CreatedAt,
		Comments:        make([]models.Comment, 0, len(doc.Comments)),
	}

	for _, c := range doc.Comments {
		commentID, err := uuid.Parse(c.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid comment ID in database: %v", err)
		}
		commentUserID, err := uuid.Parse(c.UserID)
		if err != nil {
			return nil, fmt.Errorf("invalid comment user ID in database: %v", err)
		}
		post.Comments = append(post.Comments, models.Comment{
			ID:        commentID,
			PostID:    postID,
			UserID:    commentUserID,
			UserName:  c.UserName,
			Content:   c.Content,
			CreatedAt: c.CreatedAt,
		})
	}
	return post, nil
}
