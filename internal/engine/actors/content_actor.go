package actors

import (
	"log"
	"time"

	stdctx "context"

	"minbar-hub/internal/database"
	"minbar-hub/internal/models"
	"minbar-hub/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Message types for content operations
type (
	CreatePostMsg struct {
		UserID      uuid.UUID
		UserName    string
		Type        models.PostType
		Title       string
		Description string
		MediaURL    string
		MediaType   models.MediaType
		PosterURL   string
		Location    string
		Date        string
	}

	GetPostMsg struct {
		PostID uuid.UUID
	}

	// ListPostsMsg filters posts. Zero values match everything: empty Status
	// or Type means any, uuid.Nil AuthorID means any author.
	ListPostsMsg struct {
		Status   models.PostStatus
		Type     models.PostType
		AuthorID uuid.UUID
	}

	ApprovePostMsg struct {
		PostID uuid.UUID
	}

	RejectPostMsg struct {
		PostID uuid.UUID
		Reason string
	}

	DeletePostMsg struct {
		PostID uuid.UUID
	}

	AddCommentMsg struct {
		PostID   uuid.UUID
		UserID   uuid.UUID
		UserName string
		Content  string
	}

	IncrementViewMsg struct {
		PostID uuid.UUID
	}

	IncrementDownloadMsg struct {
		PostID uuid.UUID
	}

	CanUserPostMsg struct {
		UserID uuid.UUID
	}

	GetCountsMsg struct{}
)

// ContentActor owns every post and its embedded comments. Because all content
// mutations pass through one mailbox, the monthly-quota check and the insert
// it guards execute as a single step: two racing submissions from the same
// user serialize here, and the second one sees the first one's post.
type ContentActor struct {
	postsByID map[uuid.UUID]*models.Post
	order     []uuid.UUID // newest first
	store     database.PostStore
	metrics   *utils.MetricsCollector
	quota     int
	now       func() time.Time
}

// NewContentActor creates a ContentActor backed by the given store. quota is
// the number of posts a user may create per calendar month.
func NewContentActor(store database.PostStore, quota int, metrics *utils.MetricsCollector) *ContentActor {
	return &ContentActor{
		postsByID: make(map[uuid.UUID]*models.Post),
		store:     store,
		metrics:   metrics,
		quota:     quota,
		now:       time.Now,
	}
}

func (a *ContentActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		a.handleStarted()
	case *CreatePostMsg:
		a.handleCreatePost(context, msg)
	case *GetPostMsg:
		a.handleGetPost(context, msg)
	case *ListPostsMsg:
		a.handleListPosts(context, msg)
	case *ApprovePostMsg:
		a.handleApprove(context, msg)
	case *RejectPostMsg:
		a.handleReject(context, msg)
	case *DeletePostMsg:
		a.handleDelete(context, msg)
	case *AddCommentMsg:
		a.handleAddComment(context, msg)
	case *IncrementViewMsg:
		a.handleIncrement(context, msg.PostID, "view")
	case *IncrementDownloadMsg:
		a.handleIncrement(context, msg.PostID, "download")
	case *CanUserPostMsg:
		context.Respond(a.countPostsThisMonth(msg.UserID) < a.quota)
	case *GetCountsMsg:
		context.Respond(len(a.postsByID))
	}
}

func (a *ContentActor) handleStarted() {
	posts, err := a.store.LoadPosts(stdctx.Background())
	if err != nil {
		log.Printf("ContentActor: failed to load posts: %v", err)
		return
	}
	// LoadPosts returns newest first; keep that as the listing order.
	for _, post := range posts {
		a.postsByID[post.ID] = post
		a.order = append(a.order, post.ID)
	}
}

func (a *ContentActor) handleCreatePost(context actor.Context, msg *CreatePostMsg) {
	startTime := time.Now()

	// Validation happens before any mutation.
	switch {
	case msg.Title == "":
		context.Respond(utils.NewValidationError("title"))
		return
	case msg.Description == "":
		context.Respond(utils.NewValidationError("description"))
		return
	case msg.MediaURL == "":
		context.Respond(utils.NewValidationError("mediaUrl"))
		return
	case !models.ValidPostType(string(msg.Type)):
		context.Respond(utils.NewValidationError("type"))
		return
	case msg.MediaType != models.MediaAudio && msg.MediaType != models.MediaVideo:
		context.Respond(utils.NewValidationError("mediaType"))
		return
	}

	// Check-and-reserve: the count and the insert are one step inside this
	// mailbox, so the quota cannot be overrun by concurrent submissions.
	if a.countPostsThisMonth(msg.UserID) >= a.quota {
		context.Respond(utils.NewRateLimitError(a.quota))
		return
	}

	newPost := &models.Post{
		ID:          uuid.New(),
		UserID:      msg.UserID,
		UserName:    msg.UserName,
		Type:        msg.Type,
		Title:       msg.Title,
		Description: msg.Description,
		MediaURL:    msg.MediaURL,
		MediaType:   msg.MediaType,
		PosterURL:   msg.PosterURL,
		Status:      models.StatusPending,
		Location:    msg.Location,
		Date:        msg.Date,
		Views:       0,
		Downloads:   0,
		CreatedAt:   a.now(),
		Comments:    []models.Comment{},
	}

	if err := a.store.SavePost(stdctx.Background(), newPost); err != nil {
		log.Printf("ContentActor: failed to save post: %v", err)
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to save post", err))
		return
	}

	a.postsByID[newPost.ID] = newPost
	a.order = append([]uuid.UUID{newPost.ID}, a.order...)

	log.Printf("ContentActor: created %s post %s by %s", newPost.Type, newPost.ID, newPost.UserID)
	a.metrics.AddOperationLatency("create_post", time.Since(startTime))
	created := *newPost
	context.Respond(&created)
}

func (a *ContentActor) handleGetPost(context actor.Context, msg *GetPostMsg) {
	// Responses carry snapshots, never pointers into the actor's own state:
	// the caller reads its copy outside this mailbox.
	if post, exists := a.postsByID[msg.PostID]; exists {
		copied := *post
		context.Respond(&copied)
	} else {
		context.Respond(utils.NewNotFoundError("post"))
	}
}

func (a *ContentActor) handleListPosts(context actor.Context, msg *ListPostsMsg) {
	posts := make([]*models.Post, 0)
	for _, id := range a.order {
		post := a.postsByID[id]
		if msg.Status != "" && post.Status != msg.Status {
			continue
		}
		if msg.Type != "" && post.Type != msg.Type {
			continue
		}
		if msg.AuthorID != uuid.Nil && post.UserID != msg.AuthorID {
			continue
		}
		copied := *post
		posts = append(posts, &copied)
	}
	context.Respond(posts)
}

func (a *ContentActor) handleApprove(context actor.Context, msg *ApprovePostMsg) {
	startTime := time.Now()

	post, exists := a.postsByID[msg.PostID]
	if !exists {
		context.Respond(utils.NewNotFoundError("post"))
		return
	}

	if post.Status != models.StatusPending {
		context.Respond(utils.NewAppError(utils.ErrInvalidTransition,
			"Only a pending post can be approved", nil))
		return
	}

	updated := *post
	updated.Status = models.StatusApproved
	// Clear any stale reason so an approved post never shows one.
	updated.RejectionReason = ""

	if err := a.store.SavePost(stdctx.Background(), &updated); err != nil {
		log.Printf("ContentActor: failed to persist approval: %v", err)
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to approve post", err))
		return
	}
	*post = updated

	log.Printf("ContentActor: approved post %s", post.ID)
	a.metrics.AddOperationLatency("approve_post", time.Since(startTime))
	context.Respond(&updated)
}

func (a *ContentActor) handleReject(context actor.Context, msg *RejectPostMsg) {
	startTime := time.Now()

	post, exists := a.postsByID[msg.PostID]
	if !exists {
		context.Respond(utils.NewNotFoundError("post"))
		return
	}

	if post.Status != models.StatusPending {
		context.Respond(utils.NewAppError(utils.ErrInvalidTransition,
			"Only a pending post can be rejected", nil))
		return
	}

	updated := *post
	updated.Status = models.StatusRejected
	// The reason is recorded verbatim, empty string included.
	updated.RejectionReason = msg.Reason

	if err := a.store.SavePost(stdctx.Background(), &updated); err != nil {
		log.Printf("ContentActor: failed to persist rejection: %v", err)
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to reject post", err))
		return
	}
	*post = updated

	log.Printf("ContentActor: rejected post %s", post.ID)
	a.metrics.AddOperationLatency("reject_post", time.Since(startTime))
	context.Respond(&updated)
}

func (a *ContentActor) handleDelete(context actor.Context, msg *DeletePostMsg) {
	if _, exists := a.postsByID[msg.PostID]; !exists {
		context.Respond(utils.NewNotFoundError("post"))
		return
	}

	if err := a.store.DeletePost(stdctx.Background(), msg.PostID); err != nil {
		log.Printf("ContentActor: failed to delete post: %v", err)
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to delete post", err))
		return
	}

	delete(a.postsByID, msg.PostID)
	for i, id := range a.order {
		if id == msg.PostID {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}

	log.Printf("ContentActor: deleted post %s", msg.PostID)
	context.Respond(true)
}

func (a *ContentActor) handleAddComment(context actor.Context, msg *AddCommentMsg) {
	startTime := time.Now()

	post, exists := a.postsByID[msg.PostID]
	if !exists {
		context.Respond(utils.NewNotFoundError("post"))
		return
	}

	if msg.Content == "" {
		context.Respond(utils.NewValidationError("content"))
		return
	}

	comment := models.Comment{
		ID:        uuid.New(),
		PostID:    post.ID,
		UserID:    msg.UserID,
		UserName:  msg.UserName,
		Content:   msg.Content,
		CreatedAt: a.now(),
	}

	updated := *post
	updated.Comments = append(append([]models.Comment{}, post.Comments...), comment)

	if err := a.store.SavePost(stdctx.Background(), &updated); err != nil {
		log.Printf("ContentActor: failed to persist comment: %v", err)
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to save comment", err))
		return
	}
	*post = updated

	a.metrics.AddOperationLatency("add_comment", time.Since(startTime))
	context.Respond(&comment)
}

func (a *ContentActor) handleIncrement(context actor.Context, postID uuid.UUID, kind string) {
	post, exists := a.postsByID[postID]
	if !exists {
		context.Respond(utils.NewNotFoundError("post"))
		return
	}

	updated := *post
	if kind == "view" {
		updated.Views++
	} else {
		updated.Downloads++
	}

	if err := a.store.SavePost(stdctx.Background(), &updated); err != nil {
		log.Printf("ContentActor: failed to persist %s count: %v", kind, err)
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to update counters", err))
		return
	}
	*post = updated

	context.Respond(&updated)
}

// countPostsThisMonth counts the user's posts created in the current UTC
// calendar month, whatever their moderation status.
func (a *ContentActor) countPostsThisMonth(userID uuid.UUID) int {
	now := a.now().UTC()
	count := 0
	for _, post := range a.postsByID {
		if post.UserID != userID {
			continue
		}
		created := post.CreatedAt.UTC()
		if created.Year() == now.Year() && created.Month() == now.Month() {
			count++
		}
	}
	return count
}
