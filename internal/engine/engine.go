package engine

import (
	"minbar-hub/internal/config"
	"minbar-hub/internal/database"
	"minbar-hub/internal/engine/actors"
	"minbar-hub/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
)

// Engine coordinates communication between the identity and content actors.
// Each actor serializes every mutation of its collection, which is the whole
// concurrency discipline of the system.
type Engine struct {
	identityActor *actor.PID
	contentActor  *actor.PID
}

// Stores bundles the persistence backends the actors write through to.
type Stores struct {
	Users database.UserStore
	Posts database.PostStore
}

func NewEngine(system *actor.ActorSystem, stores Stores, seed *config.SeedAdminConfig, quota int, metrics *utils.MetricsCollector) *Engine {
	context := system.Root

	identityProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewIdentityActor(stores.Users, seed, metrics)
	})
	identityPID := context.Spawn(identityProps)

	contentProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewContentActor(stores.Posts, quota, metrics)
	})
	contentPID := context.Spawn(contentProps)

	return &Engine{
		identityActor: identityPID,
		contentActor:  contentPID,
	}
}

// GetIdentityActor returns the PID of the identity actor
func (e *Engine) GetIdentityActor() *actor.PID {
	return e.identityActor
}

// GetContentActor returns the PID of the content actor
func (e *Engine) GetContentActor() *actor.PID {
	return e.contentActor
}
