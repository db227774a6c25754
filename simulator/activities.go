package simulator

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"
)

var speechTitles = []string{
	"Friday address on patience",
	"Lessons from the month of Ramadan",
	"On gratitude and community",
	"The etiquette of seeking knowledge",
	"Reflections on charity",
}

var manqabatTitles = []string{
	"Manqabat in praise of generosity",
	"Recitation for the annual gathering",
	"Qasida for the festival night",
	"Nasheed of the congregation choir",
}

// SimulateActivities runs the submission, moderation, comment and browsing
// loops until the context expires. Moderation starts as soon as the first
// submissions appear, the same way a real admin drains the queue while
// members keep posting.
func (s *Simulator) SimulateActivities(ctx context.Context) {
	log.Printf("Starting activities simulation...")

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.simulateSubmissions(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.simulateModeration(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.simulateComments(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.simulateBrowsing(ctx)
	}()

	wg.Wait()
}

func (s *Simulator) simulateSubmissions(ctx context.Context) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if rand.Float64() >= s.config.PostFrequency/3600.0*float64(len(s.users))/2.0 {
				continue
			}

			user := s.randomUser()
			postType := "SPEECH"
			title := speechTitles[rand.Intn(len(speechTitles))]
			if rand.Float64() < 0.4 {
				postType = "MANQABAT"
				title = manqabatTitles[rand.Intn(len(manqabatTitles))]
			}

			data := map[string]interface{}{
				"type":        postType,
				"title":       fmt.Sprintf("%s (%d)", title, time.Now().Unix()),
				"description": fmt.Sprintf("Recorded at the weekly gathering, submitted by %s", user.Name),
				"mediaUrl":    fmt.Sprintf("https://media.test.local/sim/%d.mp3", time.Now().UnixNano()),
				"mediaType":   "audio",
			}

			resp, err := s.makeRequest("POST", "/posts", data, user.Token)
			if err != nil {
				if isQuotaRefusal(err) {
					s.stats.mu.Lock()
					s.stats.QuotaRefusals++
					s.stats.mu.Unlock()
					log.Printf("Quota refusal for %s, as expected after %d submissions", user.Name, len(user.Posts))
				} else {
					log.Printf("Submission failed for %s: %v", user.Name, err)
				}
				continue
			}

			var post struct {
				ID string `json:"id"`
			}
			if err := json.Unmarshal(resp, &post); err != nil || post.ID == "" {
				log.Printf("Unparseable submission response: %s", resp)
				continue
			}

			s.mu.Lock()
			user.Posts = append(user.Posts, post.ID)
			s.mu.Unlock()

			s.stats.mu.Lock()
			s.stats.TotalPosts++
			total := s.stats.TotalPosts
			s.stats.mu.Unlock()
			log.Printf("Submission by %s accepted (total: %d)", user.Name, total)
		}
	}
}

// simulateModeration polls the pending queue and approves most submissions,
// rejecting the rest with a reason.
func (s *Simulator) simulateModeration(ctx context.Context) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			resp, err := s.makeRequest("GET", "/posts/pending", nil, s.adminToken)
			if err != nil {
				log.Printf("Failed to fetch moderation queue: %v", err)
				continue
			}

			var pending []struct {
				ID    string `json:"id"`
				Title string `json:"title"`
			}
			if err := json.Unmarshal(resp, &pending); err != nil {
				log.Printf("Unparseable moderation queue: %s", resp)
				continue
			}

			for _, post := range pending {
				if rand.Float64() < 0.8 {
					_, err = s.makeRequest("POST", "/posts/approve",
						map[string]interface{}{"postId": post.ID}, s.adminToken)
					if err == nil {
						s.stats.mu.Lock()
						s.stats.TotalApprovals++
						s.stats.mu.Unlock()
					}
				} else {
					_, err = s.makeRequest("POST", "/posts/reject", map[string]interface{}{
						"postId": post.ID,
						"reason": "Audio quality too low, please re-record",
					}, s.adminToken)
					if err == nil {
						s.stats.mu.Lock()
						s.stats.TotalRejections++
						s.stats.mu.Unlock()
					}
				}
				if err != nil {
					log.Printf("Moderation action failed for %s: %v", post.ID, err)
				}
			}
		}
	}
}

func (s *Simulator) simulateComments(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if rand.Float64() >= s.config.CommentFrequency/3600.0*float64(len(s.users)) {
				continue
			}

			postID, err := s.randomApprovedPost()
			if err != nil {
				continue
			}

			user := s.randomUser()
			data := map[string]interface{}{
				"postId":  postID,
				"content": fmt.Sprintf("May it benefit everyone, from %s", user.Name),
			}

			if _, err := s.makeRequest("POST", "/posts/comment", data, user.Token); err != nil {
				log.Printf("Comment failed for %s: %v", user.Name, err)
				continue
			}

			s.stats.mu.Lock()
			s.stats.TotalComments++
			s.stats.mu.Unlock()
		}
	}
}

// simulateBrowsing generates the anonymous traffic: listing pages, detail
// views and the occasional download, none of it carrying a token.
func (s *Simulator) simulateBrowsing(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if rand.Float64() >= s.config.BrowseFrequency/3600.0*float64(len(s.users)) {
				continue
			}

			postID, err := s.randomApprovedPost()
			if err != nil {
				continue
			}

			if _, err := s.makeRequest("GET", "/posts/detail?postId="+postID, nil, ""); err != nil {
				continue
			}
			s.makeRequest("POST", "/posts/view", map[string]interface{}{"postId": postID}, "")

			if rand.Float64() < 0.3 {
				s.makeRequest("POST", "/posts/download", map[string]interface{}{"postId": postID}, "")
			}
		}
	}
}

func (s *Simulator) randomApprovedPost() (string, error) {
	listType := "SPEECH"
	if rand.Float64() < 0.4 {
		listType = "MANQABAT"
	}

	resp, err := s.makeRequest("GET", "/posts?type="+listType, nil, "")
	if err != nil {
		return "", err
	}

	var posts []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp, &posts); err != nil {
		return "", err
	}
	if len(posts) == 0 {
		return "", fmt.Errorf("no approved posts yet")
	}

	return posts[rand.Intn(len(posts))].ID, nil
}
