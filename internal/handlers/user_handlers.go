package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"minbar-hub/internal/auth"
	"minbar-hub/internal/engine/actors"
	"minbar-hub/internal/models"
	"minbar-hub/internal/utils"

	"github.com/google/uuid"
)

// RegisterUserRequest represents a request to register a new user
type RegisterUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest represents a request to log in a user
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents a response to a login or registration request
type LoginResponse struct {
	Success bool         `json:"success"`
	Token   string       `json:"token,omitempty"`
	UserID  string       `json:"userId"`
	User    *models.User `json:"user,omitempty"`
}

// UserView is a user record shaped for the admin listing. The credential
// field is only populated for super admins.
type UserView struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	Role           string    `json:"role"`
	IsDeleted      bool      `json:"isDeleted"`
	CreatedAt      time.Time `json:"createdAt"`
	PasswordSecret string    `json:"passwordSecret,omitempty"`
}

// UpdateRoleRequest targets a user with a new role
type UpdateRoleRequest struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

// UserTargetRequest names a user for soft-delete or restore
type UserTargetRequest struct {
	UserID string `json:"userId"`
}

// HandleUserRegistration handles requests to register a new user. A
// successful registration also signs the new user in.
func (s *Server) HandleUserRegistration() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req RegisterUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		result, appErr := s.ask(s.Engine.GetIdentityActor(), &actors.RegisterUserMsg{
			Email:    req.Email,
			Password: req.Password,
			Name:     req.Name,
		})
		if appErr != nil {
			writeAppError(w, appErr)
			return
		}

		user, ok := result.(*models.User)
		if !ok {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		token, err := s.Auth.GenerateToken(user.ID)
		if err != nil {
			log.Printf("HTTP Handler: Failed to generate token: %v", err)
			http.Error(w, "Failed to generate auth token", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, &LoginResponse{
			Success: true,
			Token:   token,
			UserID:  user.ID.String(),
			User:    user,
		})
	}
}

// HandleUserLogin handles requests to log in a user
func (s *Server) HandleUserLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		result, appErr := s.ask(s.Engine.GetIdentityActor(), &actors.LoginMsg{
			Email:    req.Email,
			Password: req.Password,
		})
		if appErr != nil {
			writeAppError(w, appErr)
			return
		}

		user, ok := result.(*models.User)
		if !ok {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		token, err := s.Auth.GenerateToken(user.ID)
		if err != nil {
			log.Printf("HTTP Handler: Failed to generate token: %v", err)
			http.Error(w, "Failed to generate auth token", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, &LoginResponse{
			Success: true,
			Token:   token,
			UserID:  user.ID.String(),
			User:    user,
		})
	}
}

// HandleUserLogout acknowledges a logout. Tokens are stateless, so the only
// state to clear lives with the client; the endpoint exists for surface
// symmetry with login.
func (s *Server) HandleUserLogout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

// HandleUserProfile returns the caller's own record and all their posts,
// whatever the moderation status, rejection reasons included.
func (s *Server) HandleUserProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		actingUser := s.currentUser(r)
		if appErr := auth.Check(actingUser, auth.ActionViewOwnProfile); appErr != nil {
			writeAppError(w, appErr)
			return
		}

		result, appErr := s.ask(s.Engine.GetContentActor(), &actors.ListPostsMsg{
			AuthorID: actingUser.ID,
		})
		if appErr != nil {
			writeAppError(w, appErr)
			return
		}
		posts := result.([]*models.Post)

		canPostResult, appErr := s.ask(s.Engine.GetContentActor(), &actors.CanUserPostMsg{
			UserID: actingUser.ID,
		})
		if appErr != nil {
			writeAppError(w, appErr)
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"user":    actingUser,
			"posts":   posts,
			"canPost": canPostResult.(bool),
		})
	}
}

// HandleListUsers returns every user, soft-deleted ones included. Credential
// fields appear only when the caller is the super admin.
func (s *Server) HandleListUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		actingUser := s.currentUser(r)
		if appErr := auth.Check(actingUser, auth.ActionListUsers); appErr != nil {
			writeAppError(w, appErr)
			return
		}

		result, appErr := s.ask(s.Engine.GetIdentityActor(), &actors.ListUsersMsg{})
		if appErr != nil {
			writeAppError(w, appErr)
			return
		}
		users := result.([]*models.User)

		showCredentials := auth.Check(actingUser, auth.ActionViewCredentials) == nil

		views := make([]UserView, 0, len(users))
		for _, user := range users {
			view := UserView{
				ID:        user.ID.String(),
				Email:     user.Email,
				Name:      user.Name,
				Role:      string(user.Role),
				IsDeleted: user.IsDeleted,
				CreatedAt: user.CreatedAt,
			}
			if showCredentials {
				view.PasswordSecret = user.PasswordSecret
			}
			views = append(views, view)
		}

		writeJSON(w, http.StatusOK, views)
	}
}

// HandleUpdateRole promotes or demotes a user between USER and ADMIN.
// Super-admin only.
func (s *Server) HandleUpdateRole() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		actingUser := s.currentUser(r)
		if appErr := auth.Check(actingUser, auth.ActionUpdateRole); appErr != nil {
			writeAppError(w, appErr)
			return
		}

		var req UpdateRoleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		userID, err := uuid.Parse(req.UserID)
		if err != nil {
			http.Error(w, "Invalid user ID format", http.StatusBadRequest)
			return
		}

		if !models.ValidRole(req.Role) {
			writeAppError(w, utils.NewAppError(utils.ErrInvalidInput, "Unknown role: "+req.Role, nil))
			return
		}

		if appErr := s.checkUserTarget(userID); appErr != nil {
			writeAppError(w, appErr)
			return
		}

		_, appErr := s.ask(s.Engine.GetIdentityActor(), &actors.UpdateRoleMsg{
			UserID:  userID,
			NewRole: models.UserRole(req.Role),
		})
		if appErr != nil {
			writeAppError(w, appErr)
			return
		}

		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

// HandleUserDelete soft-deletes a user. Their historical posts stay visible
// and attributed.
func (s *Server) HandleUserDelete() http.HandlerFunc {
	return s.handleUserFlag(auth.ActionSoftDeleteUser, func(id uuid.UUID) interface{} {
		return &actors.SoftDeleteUserMsg{UserID: id}
	})
}

// HandleUserRestore lifts a user's soft-delete flag.
func (s *Server) HandleUserRestore() http.HandlerFunc {
	return s.handleUserFlag(auth.ActionRestoreUser, func(id uuid.UUID) interface{} {
		return &actors.RestoreUserMsg{UserID: id}
	})
}

func (s *Server) handleUserFlag(action auth.Action, makeMsg func(uuid.UUID) interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		actingUser := s.currentUser(r)
		if appErr := auth.Check(actingUser, action); appErr != nil {
			writeAppError(w, appErr)
			return
		}

		var req UserTargetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		userID, err := uuid.Parse(req.UserID)
		if err != nil {
			http.Error(w, "Invalid user ID format", http.StatusBadRequest)
			return
		}

		if appErr := s.checkUserTarget(userID); appErr != nil {
			writeAppError(w, appErr)
			return
		}

		if _, appErr := s.ask(s.Engine.GetIdentityActor(), makeMsg(userID)); appErr != nil {
			writeAppError(w, appErr)
			return
		}

		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

// checkUserTarget consults the gate's target guard for account mutations. A
// missing target is not an error here; the identity actor treats mutations on
// unknown ids as no-ops.
func (s *Server) checkUserTarget(userID uuid.UUID) *utils.AppError {
	result, appErr := s.ask(s.Engine.GetIdentityActor(), &actors.GetUserMsg{UserID: userID})
	if appErr != nil {
		if appErr.Code == utils.ErrNotFound {
			return nil
		}
		return appErr
	}
	return auth.CheckRoleTarget(result.(*models.User))
}
