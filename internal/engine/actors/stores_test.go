package actors

import (
	"context"
	"fmt"
	"sync"

	"minbar-hub/internal/models"

	"github.com/google/uuid"
)

// fakeUserStore is an in-memory UserStore for actor tests.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
	fail  bool
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*models.User)}
}

func (s *fakeUserStore) LoadUsers(ctx context.Context) ([]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		copied := *u
		users = append(users, &copied)
	}
	return users, nil
}

func (s *fakeUserStore) SaveUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return fmt.Errorf("store unavailable")
	}
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

// fakePostStore is an in-memory PostStore for actor tests.
type fakePostStore struct {
	mu    sync.Mutex
	posts map[uuid.UUID]*models.Post
	fail  bool
}

func newFakePostStore() *fakePostStore {
	return &fakePostStore{posts: make(map[uuid.UUID]*models.Post)}
}

func (s *fakePostStore) LoadPosts(ctx context.Context) ([]*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	posts := make([]*models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		copied := *p
		posts = append(posts, &copied)
	}
	return posts, nil
}

func (s *fakePostStore) SavePost(ctx context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return fmt.Errorf("store unavailable")
	}
	copied := *post
	s.posts[post.ID] = &copied
	return nil
}

func (s *fakePostStore) DeletePost(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return fmt.Errorf("store unavailable")
	}
	delete(s.posts, id)
	return nil
}
