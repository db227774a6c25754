package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"minbar-hub/internal/engine"
	"minbar-hub/internal/engine/actors"
	"minbar-hub/internal/middleware"
	"minbar-hub/internal/models"
	"minbar-hub/internal/search"
	"minbar-hub/internal/storage"
	"minbar-hub/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
)

// Server holds all server dependencies, including the actor system and engine
type Server struct {
	System         *actor.ActorSystem
	Context        *actor.RootContext
	Engine         *engine.Engine
	Metrics        *utils.MetricsCollector
	Auth           *middleware.Auth
	Uploader       storage.Uploader
	Ranker         search.Ranker
	MaxUploadBytes int64
	RequestTimeout time.Duration
}

// NewServer creates a new Server instance with the given components
func NewServer(
	system *actor.ActorSystem,
	eng *engine.Engine,
	metrics *utils.MetricsCollector,
	auth *middleware.Auth,
	uploader storage.Uploader,
	maxUploadBytes int64,
) *Server {
	return &Server{
		System:         system,
		Context:        system.Root,
		Engine:         eng,
		Metrics:        metrics,
		Auth:           auth,
		Uploader:       uploader,
		MaxUploadBytes: maxUploadBytes,
		RequestTimeout: 5 * time.Second, // Default timeout for actor requests
	}
}

// ask sends a message to an actor and waits for the reply. Actor-level
// failures come back as *utils.AppError values, which ask converts into the
// error return so handlers deal with one error path.
func (s *Server) ask(pid *actor.PID, msg interface{}) (interface{}, *utils.AppError) {
	future := s.Context.RequestFuture(pid, msg, s.RequestTimeout)
	result, err := future.Result()
	if err != nil {
		return nil, utils.NewActorTimeoutError("engine")
	}
	if appErr, ok := result.(*utils.AppError); ok {
		return nil, appErr
	}
	return result, nil
}

// currentUser resolves the acting identity from the request context. Returns
// nil for anonymous callers and for identities that no longer authenticate,
// such as a user soft-deleted after their token was issued.
func (s *Server) currentUser(r *http.Request) *models.User {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		return nil
	}

	result, appErr := s.ask(s.Engine.GetIdentityActor(), &actors.GetUserMsg{UserID: userID})
	if appErr != nil {
		return nil
	}

	user, ok := result.(*models.User)
	if !ok || user.IsDeleted {
		return nil
	}
	return user
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeAppError maps an application error onto an HTTP response. Every
// failure is a distinguishable code and message; denial is never silent.
func writeAppError(w http.ResponseWriter, appErr *utils.AppError) {
	writeJSON(w, utils.AppErrorToHTTPStatus(appErr.Code), map[string]string{
		"code":  appErr.Code,
		"error": appErr.Message,
	})
}
