// internal/database/user_store.go
package database

import (
	"context"
	"fmt"
	"time"

	"minbar-hub/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/google/uuid"
)

// UserDocument represents the MongoDB schema for a user
type UserDocument struct {
	ID             string    `bson:"_id"`            // MongoDB primary key
	Email          string    `bson:"email"`          // Login key, unique across active and deleted users
	PasswordSecret string    `bson:"passwordSecret"` // Exact-match credential
	Name           string    `bson:"name"`           // Display name
	Role           string    `bson:"role"`           // USER, ADMIN or SUPER_ADMIN
	IsDeleted      bool      `bson:"isDeleted"`      // Soft-delete flag
	CreatedAt      time.Time `bson:"createdAt"`      // Account creation timestamp
}

// SaveUser creates or updates a user document. Upsert keeps the write-through
// idempotent for role changes, soft-deletes and restores alike.
func (m *MongoDB) SaveUser(ctx context.Context, user *models.User) error {
	doc := UserDocument{
		ID:             user.ID.String(),
		Email:          user.Email,
		PasswordSecret: user.PasswordSecret,
		Name:           user.Name,
		Role:           string(user.Role),
		IsDeleted:      user.IsDeleted,
		CreatedAt:      user.CreatedAt,
	}

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"_id": user.ID.String()}
	update := bson.M{"$set": doc}

	_, err := m.Users.UpdateOne(ctx, filter, update, opts)
	return err
}

// LoadUsers retrieves every user, soft-deleted ones included, in storage order.
func (m *MongoDB) LoadUsers(ctx context.Context) ([]*models.User, error) {
	cursor, err := m.Users.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []*models.User
	for cursor.Next(ctx) {
		var doc UserDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}

		userID, err := uuid.Parse(doc.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid user ID in database: %v", err)
		}

		users = append(users, &models.User{
			ID:             userID,
			Email:          doc.Email,
			PasswordSecret: doc.PasswordSecret,
			Name:           doc.Name,
			Role:           models.UserRole(doc.Role),
			IsDeleted:      doc.IsDeleted,
			CreatedAt:      doc.CreatedAt,
		})
	}
	return users, cursor.Err()
}
