package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"minbar-hub/internal/config"
	"minbar-hub/internal/engine"
	"minbar-hub/internal/handlers"
	"minbar-hub/internal/middleware"
	"minbar-hub/internal/models"
	"minbar-hub/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// In-memory stores so the integration flow runs without MongoDB.

type memUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func (s *memUserStore) LoadUsers(ctx context.Context) ([]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		copied := *u
		out = append(out, &copied)
	}
	return out, nil
}

func (s *memUserStore) SaveUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

type memPostStore struct {
	mu    sync.Mutex
	posts map[uuid.UUID]*models.Post
}

func (s *memPostStore) LoadPosts(ctx context.Context) ([]*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		copied := *p
		out = append(out, &copied)
	}
	return out, nil
}

func (s *memPostStore) SavePost(ctx context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *post
	s.posts[post.ID] = &copied
	return nil
}

func (s *memPostStore) DeletePost(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.posts, id)
	return nil
}

// memUploader records uploads and hands back deterministic URLs.
type memUploader struct {
	uploads int
}

func (u *memUploader) Upload(ctx context.Context, fileName string, contentType string, file io.Reader, size int64) (string, error) {
	if _, err := io.Copy(io.Discard, file); err != nil {
		return "", err
	}
	u.uploads++
	return fmt.Sprintf("https://media.test.local/%d/%s", u.uploads, fileName), nil
}

func newTestStack(t *testing.T) (http.Handler, *memUploader) {
	t.Helper()

	metrics := utils.NewMetricsCollector()
	system := actor.NewActorSystem()
	seed := &config.SeedAdminConfig{
		Email:    "super@test.local",
		Password: "superpass",
		Name:     "Super Admin",
	}

	hubEngine := engine.NewEngine(system, engine.Stores{
		Users: &memUserStore{users: make(map[uuid.UUID]*models.User)},
		Posts: &memPostStore{posts: make(map[uuid.UUID]*models.Post)},
	}, seed, 2, metrics)

	auth := middleware.NewAuth("integration-test-secret")
	uploader := &memUploader{}

	server := handlers.NewServer(system, hubEngine, metrics, auth, uploader, 1024)

	mux := newRouter(server)
	return auth.Middleware(mux), uploader
}

func doJSON(t *testing.T, handler http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
}

type loginResult struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	UserID  string `json:"userId"`
}

func registerMember(t *testing.T, handler http.Handler, email string) loginResult {
	t.Helper()
	w := doJSON(t, handler, "POST", "/user/register", "", map[string]string{
		"email":    email,
		"password": "memberpass",
		"name":     "Member",
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result loginResult
	decode(t, w, &result)
	assert.True(t, result.Success)
	assert.NotEmpty(t, result.Token)
	return result
}

func loginAs(t *testing.T, handler http.Handler, email, password string) loginResult {
	t.Helper()
	w := doJSON(t, handler, "POST", "/user/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result loginResult
	decode(t, w, &result)
	return result
}

func submitPost(t *testing.T, handler http.Handler, token, title string) *httptest.ResponseRecorder {
	t.Helper()
	return doJSON(t, handler, "POST", "/posts", token, map[string]string{
		"type":        "SPEECH",
		"title":       title,
		"description": "Recorded at the weekly gathering",
		"mediaUrl":    "https://media.test.local/a.mp3",
		"mediaType":   "audio",
	})
}

func TestModerationFlow(t *testing.T) {
	handler, _ := newTestStack(t)

	member := registerMember(t, handler, "member@test.local")
	admin := loginAs(t, handler, "super@test.local", "superpass")

	// Member submits; the post is pending and invisible publicly.
	w := submitPost(t, handler, member.Token, "Friday address on patience")
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var post models.Post
	decode(t, w, &post)
	assert.Equal(t, models.StatusPending, post.Status)

	w = doJSON(t, handler, "GET", "/posts?type=SPEECH", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var listing []models.Post
	decode(t, w, &listing)
	assert.Empty(t, listing)

	// The moderation queue requires an admin.
	w = doJSON(t, handler, "GET", "/posts/pending", member.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, handler, "GET", "/posts/pending", admin.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var pending []models.Post
	decode(t, w, &pending)
	assert.Len(t, pending, 1)

	// Member cannot approve their own post; the admin can.
	w = doJSON(t, handler, "POST", "/posts/approve", member.Token, map[string]string{"postId": post.ID.String()})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, handler, "POST", "/posts/approve", admin.Token, map[string]string{"postId": post.ID.String()})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Approving twice is a conflict, not a silent success.
	w = doJSON(t, handler, "POST", "/posts/approve", admin.Token, map[string]string{"postId": post.ID.String()})
	assert.Equal(t, http.StatusConflict, w.Code)

	// The approved post is now publicly listed and viewable anonymously.
	w = doJSON(t, handler, "GET", "/posts?type=SPEECH", "", nil)
	decode(t, w, &listing)
	assert.Len(t, listing, 1)
	assert.Equal(t, models.StatusApproved, listing[0].Status)

	w = doJSON(t, handler, "GET", "/posts/detail?postId="+post.ID.String(), "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRejectionWithReason(t *testing.T) {
	handler, _ := newTestStack(t)

	member := registerMember(t, handler, "member@test.local")
	admin := loginAs(t, handler, "super@test.local", "superpass")

	w := submitPost(t, handler, member.Token, "Low quality recording")
	var post models.Post
	decode(t, w, &post)

	w = doJSON(t, handler, "POST", "/posts/reject", admin.Token, map[string]string{
		"postId": post.ID.String(),
		"reason": "Audio quality too low, please re-record",
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// The author sees the rejection and its reason on their profile.
	w = doJSON(t, handler, "GET", "/user/profile", member.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var profile struct {
		Posts   []models.Post `json:"posts"`
		CanPost bool          `json:"canPost"`
	}
	decode(t, w, &profile)
	assert.Len(t, profile.Posts, 1)
	assert.Equal(t, models.StatusRejected, profile.Posts[0].Status)
	assert.Equal(t, "Audio quality too low, please re-record", profile.Posts[0].RejectionReason)

	// Rejected posts never reach the public listing.
	w = doJSON(t, handler, "GET", "/posts?type=SPEECH", "", nil)
	var listing []models.Post
	decode(t, w, &listing)
	assert.Empty(t, listing)
}

func TestMonthlyQuotaOverHTTP(t *testing.T) {
	handler, _ := newTestStack(t)
	member := registerMember(t, handler, "member@test.local")

	for i := 0; i < 2; i++ {
		w := submitPost(t, handler, member.Token, fmt.Sprintf("Submission %d", i+1))
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w := submitPost(t, handler, member.Token, "One too many")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	var errResp map[string]string
	decode(t, w, &errResp)
	assert.Equal(t, utils.ErrRateLimitExceeded, errResp["code"])

	// The profile reflects the exhausted allowance.
	w = doJSON(t, handler, "GET", "/user/profile", member.Token, nil)
	var profile struct {
		CanPost bool `json:"canPost"`
	}
	decode(t, w, &profile)
	assert.False(t, profile.CanPost)
}

func TestAnonymousAndInvalidTokens(t *testing.T) {
	handler, _ := newTestStack(t)

	// Anonymous submission is denied by the gate, not the middleware.
	w := submitPost(t, handler, "", "No token")
	assert.Equal(t, http.StatusForbidden, w.Code)

	// A garbage bearer token fails at the middleware.
	w = submitPost(t, handler, "not-a-jwt", "Bad token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Anonymous browsing works.
	w = doJSON(t, handler, "GET", "/posts?type=MANQABAT", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCommentsAndCounters(t *testing.T) {
	handler, _ := newTestStack(t)

	author := registerMember(t, handler, "author@test.local")
	listener := registerMember(t, handler, "listener@test.local")
	admin := loginAs(t, handler, "super@test.local", "superpass")

	w := submitPost(t, handler, author.Token, "Friday address")
	var post models.Post
	decode(t, w, &post)
	doJSON(t, handler, "POST", "/posts/approve", admin.Token, map[string]string{"postId": post.ID.String()})

	// Anonymous callers cannot comment; members can.
	w = doJSON(t, handler, "POST", "/posts/comment", "", map[string]string{
		"postId":  post.ID.String(),
		"content": "anonymous comment",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, handler, "POST", "/posts/comment", listener.Token, map[string]string{
		"postId":  post.ID.String(),
		"content": "May it benefit everyone",
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Counters are public and monotonic.
	doJSON(t, handler, "POST", "/posts/view", "", map[string]string{"postId": post.ID.String()})
	doJSON(t, handler, "POST", "/posts/view", "", map[string]string{"postId": post.ID.String()})
	doJSON(t, handler, "POST", "/posts/download", "", map[string]string{"postId": post.ID.String()})

	w = doJSON(t, handler, "GET", "/posts/detail?postId="+post.ID.String(), "", nil)
	var detail models.Post
	decode(t, w, &detail)
	assert.Equal(t, 2, detail.Views)
	assert.Equal(t, 1, detail.Downloads)
	assert.Len(t, detail.Comments, 1)
	assert.Equal(t, "May it benefit everyone", detail.Comments[0].Content)
}

func TestPostDeletionOwnership(t *testing.T) {
	handler, _ := newTestStack(t)

	author := registerMember(t, handler, "author@test.local")
	other := registerMember(t, handler, "other@test.local")
	admin := loginAs(t, handler, "super@test.local", "superpass")

	w := submitPost(t, handler, author.Token, "Author's post")
	var post models.Post
	decode(t, w, &post)

	// Another member cannot delete it.
	w = doJSON(t, handler, "DELETE", "/posts?postId="+post.ID.String(), other.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The author can.
	w = doJSON(t, handler, "DELETE", "/posts?postId="+post.ID.String(), author.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, handler, "GET", "/posts/detail?postId="+post.ID.String(), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// An admin can delete any post; here a fresh one by the other member.
	w = submitPost(t, handler, other.Token, "Other's post")
	decode(t, w, &post)
	w = doJSON(t, handler, "DELETE", "/posts?postId="+post.ID.String(), admin.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUserAdministration(t *testing.T) {
	handler, _ := newTestStack(t)

	member := registerMember(t, handler, "member@test.local")
	admin := loginAs(t, handler, "super@test.local", "superpass")

	// Member cannot list users.
	w := doJSON(t, handler, "GET", "/users", member.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The super admin listing includes credentials.
	w = doJSON(t, handler, "GET", "/users", admin.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var users []struct {
		ID             string `json:"id"`
		Email          string `json:"email"`
		PasswordSecret string `json:"passwordSecret"`
		IsDeleted      bool   `json:"isDeleted"`
	}
	decode(t, w, &users)
	assert.Len(t, users, 2)
	for _, u := range users {
		assert.NotEmpty(t, u.PasswordSecret)
	}

	// Promote, then verify the member can moderate.
	w = doJSON(t, handler, "PUT", "/users/role", admin.Token, map[string]string{
		"userId": member.UserID,
		"role":   "ADMIN",
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, handler, "GET", "/posts/pending", member.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// An admin listing hides credentials.
	w = doJSON(t, handler, "GET", "/users", member.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	users = nil
	decode(t, w, &users)
	for _, u := range users {
		assert.Empty(t, u.PasswordSecret)
	}

	// Role changes are super-admin only.
	w = doJSON(t, handler, "PUT", "/users/role", member.Token, map[string]string{
		"userId": member.UserID,
		"role":   "USER",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSuperAdminAccountUntouchableOverHTTP(t *testing.T) {
	handler, _ := newTestStack(t)
	admin := loginAs(t, handler, "super@test.local", "superpass")

	// Even the super admin cannot demote, delete or restore their own account.
	w := doJSON(t, handler, "PUT", "/users/role", admin.Token, map[string]string{
		"userId": admin.UserID,
		"role":   "USER",
	})
	assert.Equal(t, http.StatusForbidden, w.Code, w.Body.String())

	for _, path := range []string{"/users/delete", "/users/restore"} {
		w = doJSON(t, handler, "POST", path, admin.Token, map[string]string{"userId": admin.UserID})
		assert.Equal(t, http.StatusForbidden, w.Code, w.Body.String())
	}

	// Mutations on unknown ids remain no-op successes.
	w = doJSON(t, handler, "POST", "/users/delete", admin.Token, map[string]string{
		"userId": uuid.New().String(),
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestSoftDeleteEndToEnd(t *testing.T) {
	handler, _ := newTestStack(t)

	member := registerMember(t, handler, "member@test.local")
	admin := loginAs(t, handler, "super@test.local", "superpass")

	w := submitPost(t, handler, member.Token, "Before deletion")
	var post models.Post
	decode(t, w, &post)
	doJSON(t, handler, "POST", "/posts/approve", admin.Token, map[string]string{"postId": post.ID.String()})

	w = doJSON(t, handler, "POST", "/users/delete", admin.Token, map[string]string{"userId": member.UserID})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// The deleted member's token no longer authenticates for gated actions.
	w = submitPost(t, handler, member.Token, "After deletion")
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Login is refused outright.
	w = doJSON(t, handler, "POST", "/user/login", "", map[string]string{
		"email":    "member@test.local",
		"password": "memberpass",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Their approved post stays visible and attributed.
	w = doJSON(t, handler, "GET", "/posts?type=SPEECH", "", nil)
	var listing []models.Post
	decode(t, w, &listing)
	assert.Len(t, listing, 1)
	assert.Equal(t, "Member", listing[0].UserName)

	// Restore brings the account back.
	w = doJSON(t, handler, "POST", "/users/restore", admin.Token, map[string]string{"userId": member.UserID})
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, handler, "POST", "/user/login", "", map[string]string{
		"email":    "member@test.local",
		"password": "memberpass",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSearchQuery(t *testing.T) {
	handler, _ := newTestStack(t)

	member := registerMember(t, handler, "member@test.local")
	admin := loginAs(t, handler, "super@test.local", "superpass")

	w := submitPost(t, handler, member.Token, "Friday address on patience")
	var first models.Post
	decode(t, w, &first)
	w = submitPost(t, handler, member.Token, "Qasida for the festival")
	var second models.Post
	decode(t, w, &second)

	doJSON(t, handler, "POST", "/posts/approve", admin.Token, map[string]string{"postId": first.ID.String()})
	doJSON(t, handler, "POST", "/posts/approve", admin.Token, map[string]string{"postId": second.ID.String()})

	w = doJSON(t, handler, "GET", "/posts?type=SPEECH&q=patience", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var listing []models.Post
	decode(t, w, &listing)
	assert.Len(t, listing, 1)
	assert.Equal(t, first.ID, listing[0].ID)
}

func TestMediaUpload(t *testing.T) {
	handler, uploader := newTestStack(t)
	member := registerMember(t, handler, "member@test.local")

	makeUpload := func(size int) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("file", "recording.mp3")
		if err != nil {
			t.Fatalf("Failed to create form file: %v", err)
		}
		part.Write(bytes.Repeat([]byte("a"), size))
		mw.Close()

		req := httptest.NewRequest("POST", "/media/upload", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+member.Token)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	// Within the limit (the test stack caps uploads at 1024 bytes).
	w := makeUpload(512)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		URL       string `json:"url"`
		MediaType string `json:"mediaType"`
	}
	decode(t, w, &resp)
	assert.Contains(t, resp.URL, "recording.mp3")
	assert.Equal(t, "audio", resp.MediaType)
	assert.Equal(t, 1, uploader.uploads)

	// Oversized files are refused before reaching the uploader.
	w = makeUpload(4096)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 1, uploader.uploads)

	// Anonymous uploads are denied.
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("file", "recording.mp3")
	part.Write([]byte("a"))
	mw.Close()
	req := httptest.NewRequest("POST", "/media/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHealth(t *testing.T) {
	handler, _ := newTestStack(t)
	registerMember(t, handler, "member@test.local")

	w := doJSON(t, handler, "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var health struct {
		Status        string `json:"status"`
		UserCount     int    `json:"user_count"`
		PostCount     int    `json:"post_count"`
		Registrations int    `json:"registrations"`
		Submissions   int    `json:"submissions"`
	}
	decode(t, w, &health)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, 2, health.UserCount)
	assert.Equal(t, 0, health.PostCount)
	assert.Equal(t, 1, health.Registrations)
	assert.Equal(t, 0, health.Submissions)
}
