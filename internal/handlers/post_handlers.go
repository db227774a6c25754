package handlers

import (
	"encoding/json"
	"net/http"

	"minbar-hub/internal/auth"
	"minbar-hub/internal/engine/actors"
	"minbar-hub/internal/models"
	"minbar-hub/internal/search"
	"minbar-hub/internal/utils"

	"github.com/google/uuid"
)

// CreatePostRequest represents a request to create a new post. Media has
// already been uploaded through the media endpoint; the request carries the
// resulting URLs.
type CreatePostRequest struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	MediaURL    string `json:"mediaUrl"`
	MediaType   string `json:"mediaType"`
	PosterURL   string `json:"posterUrl"`
	Location    string `json:"location"`
	Date        string `json:"date"`
}

// RejectPostRequest carries the moderation verdict for a rejection
type RejectPostRequest struct {
	PostID string `json:"postId"`
	Reason string `json:"reason"`
}

// PostTargetRequest names a post for approve/view/download operations
type PostTargetRequest struct {
	PostID string `json:"postId"`
}

// AddCommentRequest appends a comment to a post
type AddCommentRequest struct {
	PostID  string `json:"postId"`
	Content string `json:"content"`
}

// HandleListPosts serves the public browse pages: approved posts, filtered by
// category, optionally narrowed by a search query.
func (s *Server) HandleListPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		postType := r.URL.Query().Get("type")
		if postType != "" && !models.ValidPostType(postType) {
			writeAppError(w, utils.NewAppError(utils.ErrInvalidInput, "Unknown post type: "+postType, nil))
			return
		}

		result, appErr := s.ask(s.Engine.GetContentActor(), &actors.ListPostsMsg{
			Status: models.StatusApproved,
			Type:   models.PostType(postType),
		})
		if appErr != nil {
			writeAppError(w, appErr)
			return
		}
		posts := result.([]*models.Post)

		if query := r.URL.Query().Get("q"); query != "" {
			posts = search.FilterWithRanker(r.Context(), s.Ranker, posts, query)
		}

		writeJSON(w, http.StatusOK, posts)
	}
}

// HandlePostDetail returns a single post with its comments
func (s *Server) HandlePostDetail() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		postID, err := uuid.Parse(r.URL.Query().Get("postId"))
		if err != nil {
			http.Error(w, "Invalid post ID format", http.StatusBadRequest)
			return
		}

		result, appErr := s.ask(s.Engine.GetContentActor(), &actors.GetPostMsg{PostID: postID})
		if appErr != nil {
			writeAppError(w, appErr)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// HandleCreatePost submits a new post. The post enters the moderation queue
// as PENDING; the monthly quota is enforced inside the content actor.
func (s *Server) HandleCreatePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		actingUser := s.currentUser(r)
		if appErr := auth.Check(actingUser, auth.ActionCreatePost); appErr != nil {
			writeAppError(w, appErr)
			return
		}

		var req CreatePostRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		result, appErr := s.ask(s.Engine.GetContentActor(), &actors.CreatePostMsg{
			UserID:      actingUser.ID,
			UserName:    actingUser.Name,
			Type:        models.PostType(req.Type),
			Title:       req.Title,
			Description: req.Description,
			MediaURL:    req.MediaURL,
			MediaType:   models.MediaType(req.MediaType),
			PosterURL:   req.PosterURL,
			Location:    req.Location,
			Date:        req.Date,
		})
		if appErr != nil {
			writeAppError(w, appErr)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// HandlePendingPosts serves the moderation queue: every PENDING post.
func (s *Server) HandlePendingPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		actingUser := s.currentUser(r)
		if appErr := auth.Check(actingUser, auth.ActionViewModeration); appErr != nil {
			writeAppError(w, appErr)
			return
		}

		result, appErr := s.ask(s.Engine.GetContentActor(), &actors.ListPostsMsg{
			Status: models.StatusPending,
		})
		if appErr != nil {
			writeAppError(w, appErr)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// HandleApprovePost moves a pending post to APPROVED
func (s *Server) HandleApprovePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		actingUser := s.currentUser(r)
		if appErr := auth.Check(actingUser, auth.ActionApprovePost); appErr != nil {
			writeAppError(w, appErr)
			return
		}

		var req PostTargetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		postID, err := uuid.Parse(req.PostID)
		if err != nil {
			http.Error(w, "Invalid post ID format", http.StatusBadRequest)
			return
		}

		result, appErr := s.ask(s.Engine.GetContentActor(), &actors.ApprovePostMsg{PostID: postID})
		if appErr != nil {
			writeAppError(w, appErr)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// HandleRejectPost moves a pending post to REJECTED, recording the reason
// verbatim.
func (s *Server) HandleRejectPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		actingUser := s.currentUser(r)
		if appErr := auth.Check(actingUser, auth.ActionRejectPost); appErr != nil {
			writeAppError(w, appErr)
			return
		}

		var req RejectPostRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		postID, err := uuid.Parse(req.PostID)
		if err != nil {
			http.Error(w, "Invalid post ID format", http.StatusBadRequest)
			return
		}

		result, appErr := s.ask(s.Engine.GetContentActor(), &actors.RejectPostMsg{
			PostID: postID,
			Reason: req.Reason,
		})
		if appErr != nil {
			writeAppError(w, appErr)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// HandleDeletePost hard-deletes a post. Moderators may delete any post;
// authors may delete their own.
func (s *Server) HandleDeletePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		postID, err := uuid.Parse(r.URL.Query().Get("postId"))
		if err != nil {
			http.Error(w, "Invalid post ID format", http.StatusBadRequest)
			return
		}

		// Ownership check needs the post itself.
		result, appErr := s.ask(s.Engine.GetContentActor(), &actors.GetPostMsg{PostID: postID})
		if appErr != nil {
			writeAppError(w, appErr)
			return
		}
		post := result.(*models.Post)

		actingUser := s.currentUser(r)
		if appErr := auth.CheckPostDelete(actingUser, post.UserID); appErr != nil {
			writeAppError(w, appErr)
			return
		}

		if _, appErr := s.ask(s.Engine.GetContentActor(), &actors.DeletePostMsg{PostID: postID}); appErr != nil {
			writeAppError(w, appErr)
			return
		}

		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

// HandleAddComment appends a comment to a post. Any signed-in user may
// comment on any post.
func (s *Server) HandleAddComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		actingUser := s.currentUser(r)
		if appErr := auth.Check(actingUser, auth.ActionComment); appErr != nil {
			writeAppError(w, appErr)
			return
		}

		var req AddCommentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		postID, err := uuid.Parse(req.PostID)
		if err != nil {
			http.Error(w, "Invalid post ID format", http.StatusBadRequest)
			return
		}

		result, appErr := s.ask(s.Engine.GetContentActor(), &actors.AddCommentMsg{
			PostID:   postID,
			UserID:   actingUser.ID,
			UserName: actingUser.Name,
			Content:  req.Content,
		})
		if appErr != nil {
			writeAppError(w, appErr)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// HandleIncrementView bumps a post's view counter
func (s *Server) HandleIncrementView() http.HandlerFunc {
	return s.handleCounter(func(id uuid.UUID) interface{} {
		return &actors.IncrementViewMsg{PostID: id}
	})
}

// HandleIncrementDownload bumps a post's download counter
func (s *Server) HandleIncrementDownload() http.HandlerFunc {
	return s.handleCounter(func(id uuid.UUID) interface{} {
		return &actors.IncrementDownloadMsg{PostID: id}
	})
}

func (s *Server) handleCounter(makeMsg func(uuid.UUID) interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req PostTargetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		postID, err := uuid.Parse(req.PostID)
		if err != nil {
			http.Error(w, "Invalid post ID format", http.StatusBadRequest)
			return
		}

		result, appErr := s.ask(s.Engine.GetContentActor(), makeMsg(postID))
		if appErr != nil {
			writeAppError(w, appErr)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}
