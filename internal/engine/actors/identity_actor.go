package actors

import (
	"log"
	"strings"
	"time"

	stdctx "context"

	"minbar-hub/internal/config"
	"minbar-hub/internal/database"
	"minbar-hub/internal/models"
	"minbar-hub/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Message types for identity operations
type (
	RegisterUserMsg struct {
		Email    string
		Password string
		Name     string
	}

	LoginMsg struct {
		Email    string
		Password string
	}

	GetUserMsg struct {
		UserID uuid.UUID
	}

	ListUsersMsg struct{}

	UpdateRoleMsg struct {
		UserID  uuid.UUID
		NewRole models.UserRole
	}

	SoftDeleteUserMsg struct {
		UserID uuid.UUID
	}

	RestoreUserMsg struct {
		UserID uuid.UUID
	}
)

// IdentityActor owns every user record. All identity mutations funnel through
// its mailbox, which makes duplicate-email checks and role changes atomic
// without locks. State is authoritative in memory and written through to the
// store.
type IdentityActor struct {
	usersByID map[uuid.UUID]*models.User
	emailToID map[string]uuid.UUID
	order     []uuid.UUID // storage order, for listing
	store     database.UserStore
	seed      *config.SeedAdminConfig
	metrics   *utils.MetricsCollector
	now       func() time.Time
}

// NewIdentityActor creates an IdentityActor backed by the given store. The
// seed super admin is created on first start if the store is empty.
func NewIdentityActor(store database.UserStore, seed *config.SeedAdminConfig, metrics *utils.MetricsCollector) *IdentityActor {
	return &IdentityActor{
		usersByID: make(map[uuid.UUID]*models.User),
		emailToID: make(map[string]uuid.UUID),
		store:     store,
		seed:      seed,
		metrics:   metrics,
		now:       time.Now,
	}
}

func (a *IdentityActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		a.handleStarted()
	case *RegisterUserMsg:
		a.handleRegister(context, msg)
	case *LoginMsg:
		a.handleLogin(context, msg)
	case *GetUserMsg:
		a.handleGetUser(context, msg)
	case *ListUsersMsg:
		a.handleListUsers(context)
	case *UpdateRoleMsg:
		a.handleUpdateRole(context, msg)
	case *SoftDeleteUserMsg:
		a.handleSetDeleted(context, msg.UserID, true)
	case *RestoreUserMsg:
		a.handleSetDeleted(context, msg.UserID, false)
	case *GetCountsMsg:
		context.Respond(len(a.usersByID))
	}
}

func (a *IdentityActor) handleStarted() {
	ctx := stdctx.Background()
	users, err := a.store.LoadUsers(ctx)
	if err != nil {
		log.Printf("IdentityActor: failed to load users: %v", err)
	}

	for _, user := range users {
		a.usersByID[user.ID] = user
		a.emailToID[user.Email] = user.ID
		a.order = append(a.order, user.ID)
	}

	if len(a.usersByID) == 0 {
		superAdmin := &models.User{
			ID:             uuid.New(),
			Email:          a.seed.Email,
			PasswordSecret: a.seed.Password,
			Name:           a.seed.Name,
			Role:           models.RoleSuperAdmin,
			IsDeleted:      false,
			CreatedAt:      a.now(),
		}
		if err := a.store.SaveUser(ctx, superAdmin); err != nil {
			log.Printf("IdentityActor: failed to seed super admin: %v", err)
			return
		}
		a.usersByID[superAdmin.ID] = superAdmin
		a.emailToID[superAdmin.Email] = superAdmin.ID
		a.order = append(a.order, superAdmin.ID)
		log.Printf("IdentityActor: seeded super admin %s", superAdmin.Email)
	}
}

func (a *IdentityActor) handleRegister(context actor.Context, msg *RegisterUserMsg) {
	startTime := time.Now()

	if msg.Email == "" {
		context.Respond(utils.NewValidationError("email"))
		return
	}
	if msg.Password == "" {
		context.Respond(utils.NewValidationError("password"))
		return
	}

	// Deleted users keep their email claim; registration succeeds only once
	// per unique email for the lifetime of the store.
	if _, exists := a.emailToID[msg.Email]; exists {
		context.Respond(utils.NewAppError(utils.ErrDuplicateEmail, "Email already registered", nil))
		return
	}

	name := msg.Name
	if name == "" {
		name = strings.SplitN(msg.Email, "@", 2)[0]
	}

	newUser := &models.User{
		ID:             uuid.New(),
		Email:          msg.Email,
		PasswordSecret: msg.Password,
		Name:           name,
		Role:           models.RoleUser,
		IsDeleted:      false,
		CreatedAt:      a.now(),
	}

	// Persist before committing to memory so a failed write never leaves a
	// phantom account.
	if err := a.store.SaveUser(stdctx.Background(), newUser); err != nil {
		log.Printf("IdentityActor: failed to save user: %v", err)
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to save user", err))
		return
	}

	a.usersByID[newUser.ID] = newUser
	a.emailToID[newUser.Email] = newUser.ID
	a.order = append(a.order, newUser.ID)

	a.metrics.AddOperationLatency("register_user", time.Since(startTime))
	created := *newUser
	context.Respond(&created)
}

func (a *IdentityActor) handleLogin(context actor.Context, msg *LoginMsg) {
	startTime := time.Now()

	id, exists := a.emailToID[msg.Email]
	if !exists {
		context.Respond(utils.NewAppError(utils.ErrInvalidCredentials, "Wrong email or password", nil))
		return
	}

	user := a.usersByID[id]
	if user.PasswordSecret != msg.Password {
		context.Respond(utils.NewAppError(utils.ErrInvalidCredentials, "Wrong email or password", nil))
		return
	}

	if user.IsDeleted {
		context.Respond(utils.NewAppError(utils.ErrAccountDisabled, "This account has been disabled", nil))
		return
	}

	a.metrics.AddOperationLatency("login", time.Since(startTime))
	loggedIn := *user
	context.Respond(&loggedIn)
}

func (a *IdentityActor) handleGetUser(context actor.Context, msg *GetUserMsg) {
	// Responses carry snapshots, never pointers into the actor's own state:
	// the caller reads its copy outside this mailbox.
	if user, exists := a.usersByID[msg.UserID]; exists {
		copied := *user
		context.Respond(&copied)
	} else {
		context.Respond(utils.NewNotFoundError("user"))
	}
}

func (a *IdentityActor) handleListUsers(context actor.Context) {
	users := make([]*models.User, 0, len(a.order))
	for _, id := range a.order {
		copied := *a.usersByID[id]
		users = append(users, &copied)
	}
	context.Respond(users)
}

func (a *IdentityActor) handleUpdateRole(context actor.Context, msg *UpdateRoleMsg) {
	user, exists := a.usersByID[msg.UserID]
	if !exists {
		// Mutations on a missing id are a no-op, not an error.
		context.Respond(true)
		return
	}

	if user.Role == models.RoleSuperAdmin {
		context.Respond(utils.NewDeniedError("the super admin account cannot be modified"))
		return
	}

	if msg.NewRole != models.RoleUser && msg.NewRole != models.RoleAdmin {
		context.Respond(utils.NewAppError(utils.ErrInvalidInput, "Role must be USER or ADMIN", nil))
		return
	}

	updated := *user
	updated.Role = msg.NewRole
	if err := a.store.SaveUser(stdctx.Background(), &updated); err != nil {
		log.Printf("IdentityActor: failed to persist role change: %v", err)
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to update role", err))
		return
	}
	*user = updated

	log.Printf("IdentityActor: user %s is now %s", user.ID, user.Role)
	context.Respond(true)
}

func (a *IdentityActor) handleSetDeleted(context actor.Context, userID uuid.UUID, deleted bool) {
	user, exists := a.usersByID[userID]
	if !exists {
		context.Respond(true)
		return
	}

	if user.Role == models.RoleSuperAdmin {
		context.Respond(utils.NewDeniedError("the super admin account cannot be modified"))
		return
	}

	updated := *user
	updated.IsDeleted = deleted
	if err := a.store.SaveUser(stdctx.Background(), &updated); err != nil {
		log.Printf("IdentityActor: failed to persist delete flag: %v", err)
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to update user", err))
		return
	}
	*user = updated

	context.Respond(true)
}
