// Package search filters post listings. The contract is satisfied by plain
// substring matching; a Ranker collaborator may widen the result set with
// semantically relevant posts, but it can only ever add to the substring
// matches, never remove them.
package search

import (
	"context"
	"log"
	"strings"

	"minbar-hub/internal/models"

	"github.com/google/uuid"
)

// Ranker is an optional semantic-search collaborator. It returns the IDs of
// posts relevant to the query, drawn from the candidates it was given.
type Ranker interface {
	Rank(ctx context.Context, query string, candidates []*models.Post) ([]uuid.UUID, error)
}

// Filter returns the posts whose title or description contains the query.
// An empty query matches everything.
func Filter(posts []*models.Post, query string) []*models.Post {
	query = strings.TrimSpace(query)
	if query == "" {
		return posts
	}

	matched := make([]*models.Post, 0)
	for _, post := range posts {
		if strings.Contains(post.Title, query) || strings.Contains(post.Description, query) {
			matched = append(matched, post)
		}
	}
	return matched
}

// FilterWithRanker unions the substring matches with whatever the ranker adds.
// Substring matches come first and are never suppressed; a failing or absent
// ranker degrades to plain substring filtering.
func FilterWithRanker(ctx context.Context, ranker Ranker, posts []*models.Post, query string) []*models.Post {
	matched := Filter(posts, query)
	if ranker == nil || strings.TrimSpace(query) == "" {
		return matched
	}

	ranked, err := ranker.Rank(ctx, query, posts)
	if err != nil {
		log.Printf("search: ranker failed, falling back to substring results: %v", err)
		return matched
	}

	seen := make(map[uuid.UUID]bool, len(matched))
	for _, post := range matched {
		seen[post.ID] = true
	}

	rankedSet := make(map[uuid.UUID]bool, len(ranked))
	for _, id := range ranked {
		rankedSet[id] = true
	}

	result := matched
	for _, post := range posts {
		if rankedSet[post.ID] && !seen[post.ID] {
			result = append(result, post)
			seen[post.ID] = true
		}
	}
	return result
}
