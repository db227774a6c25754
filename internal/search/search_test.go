package search

import (
	"context"
	"fmt"
	"testing"

	"minbar-hub/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func makePosts(titles ...string) []*models.Post {
	posts := make([]*models.Post, 0, len(titles))
	for _, title := range titles {
		posts = append(posts, &models.Post{
			ID:          uuid.New(),
			Title:       title,
			Description: "Recorded at the weekly gathering",
		})
	}
	return posts
}

func ids(posts []*models.Post) []uuid.UUID {
	out := make([]uuid.UUID, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

// stubRanker returns a fixed ID list, or an error.
type stubRanker struct {
	ids []uuid.UUID
	err error
}

func (r *stubRanker) Rank(ctx context.Context, query string, candidates []*models.Post) ([]uuid.UUID, error) {
	return r.ids, r.err
}

func TestFilterMatchesTitleAndDescription(t *testing.T) {
	posts := makePosts("Friday address on patience", "Manqabat for the festival")
	posts[1].Description = "About patience and gratitude"

	matched := Filter(posts, "patience")
	assert.Len(t, matched, 2)

	matched = Filter(posts, "festival")
	assert.Len(t, matched, 1)
	assert.Equal(t, posts[1].ID, matched[0].ID)

	assert.Empty(t, Filter(posts, "no such phrase"))
}

func TestFilterEmptyQueryMatchesAll(t *testing.T) {
	posts := makePosts("a", "b", "c")
	assert.Len(t, Filter(posts, ""), 3)
	assert.Len(t, Filter(posts, "   "), 3)
}

func TestRankerCanOnlyAddResults(t *testing.T) {
	posts := makePosts(
		"Friday address on patience",
		"Lessons from Ramadan",
		"Qasida for the festival",
	)

	// The ranker finds the Ramadan post semantically relevant to "patience"
	// and, maliciously or not, omits the direct substring match.
	ranker := &stubRanker{ids: []uuid.UUID{posts[1].ID}}

	result := FilterWithRanker(context.Background(), ranker, posts, "patience")
	resultIDs := ids(result)

	// The substring match is present regardless of the ranker's opinion,
	// and it comes first.
	assert.Contains(t, resultIDs, posts[0].ID)
	assert.Equal(t, posts[0].ID, resultIDs[0])
	// The ranker's addition is appended.
	assert.Contains(t, resultIDs, posts[1].ID)
	assert.NotContains(t, resultIDs, posts[2].ID)
}

func TestEmptyRankerNeverSuppressesMatches(t *testing.T) {
	posts := makePosts("Friday address on patience")
	ranker := &stubRanker{ids: nil}

	result := FilterWithRanker(context.Background(), ranker, posts, "patience")
	assert.Len(t, result, 1)
	assert.Equal(t, posts[0].ID, result[0].ID)
}

func TestRankerFailureFallsBackToSubstring(t *testing.T) {
	posts := makePosts("Friday address on patience", "Qasida for the festival")
	ranker := &stubRanker{err: fmt.Errorf("ranking service unavailable")}

	result := FilterWithRanker(context.Background(), ranker, posts, "patience")
	assert.Len(t, result, 1)
	assert.Equal(t, posts[0].ID, result[0].ID)
}

func TestNilRankerIsPlainSubstring(t *testing.T) {
	posts := makePosts("Friday address on patience")
	result := FilterWithRanker(context.Background(), nil, posts, "patience")
	assert.Len(t, result, 1)
}

func TestRankerDoesNotDuplicateMatches(t *testing.T) {
	posts := makePosts("Friday address on patience")
	// Ranker returns the same post the substring filter already found.
	ranker := &stubRanker{ids: ids(posts)}

	result := FilterWithRanker(context.Background(), ranker, posts, "patience")
	assert.Len(t, result, 1)
}
