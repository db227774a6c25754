// Package simulator drives a running engine with synthetic congregation
// traffic: visitors browsing, members submitting recordings and comments,
// and an admin working the moderation queue. It talks to the real HTTP API,
// so a simulation run exercises the full stack end to end.
package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"time"
)

type SimConfig struct {
	NumUsers         int
	SimulationTime   time.Duration
	PostFrequency    float64 // submissions per user per hour
	CommentFrequency float64 // comments per user per hour
	BrowseFrequency  float64 // listing/detail fetches per user per hour
	AdminEmail       string
	AdminPassword    string
	EngineURL        string
}

type SimulationStats struct {
	mu              sync.RWMutex
	StartTime       time.Time
	TotalRequests   int64
	SuccessRequests int64
	FailedRequests  int64
	AverageLatency  time.Duration
	TotalPosts      int
	TotalComments   int
	TotalApprovals  int
	TotalRejections int
	QuotaRefusals   int
}

// SimulatedUser is a registered member with their bearer token and the posts
// they have submitted so far.
type SimulatedUser struct {
	ID    string
	Email string
	Name  string
	Token string
	Posts []string
}

type Simulator struct {
	config     SimConfig
	stats      *SimulationStats
	users      []*SimulatedUser
	adminToken string
	client     *http.Client
	mu         sync.RWMutex
}

func NewSimulator(config SimConfig) *Simulator {
	return &Simulator{
		config: config,
		stats: &SimulationStats{
			StartTime: time.Now(),
		},
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (s *Simulator) Run(ctx context.Context) error {
	log.Printf("Starting simulation...")

	if err := s.initialize(ctx); err != nil {
		return fmt.Errorf("initialization failed: %v", err)
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.SimulateActivities(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.collectMetrics(ctx)
	}()

	wg.Wait()
	return nil
}

func (s *Simulator) initialize(ctx context.Context) error {
	log.Printf("Phase 1: Logging in moderation admin...")
	token, _, err := s.login(s.config.AdminEmail, s.config.AdminPassword)
	if err != nil {
		return fmt.Errorf("admin login failed: %v", err)
	}
	s.adminToken = token

	log.Printf("Phase 2: Registering %d members...", s.config.NumUsers)
	s.users = make([]*SimulatedUser, 0, s.config.NumUsers)

	// Throttle registrations so startup does not hammer the engine.
	rateLimiter := time.NewTicker(100 * time.Millisecond)
	defer rateLimiter.Stop()

	for i := 0; i < s.config.NumUsers; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-rateLimiter.C:
		}

		user := &SimulatedUser{
			Email: fmt.Sprintf("member_%d_%d@test.local", i, time.Now().Unix()),
			Name:  fmt.Sprintf("Member %d", i),
		}
		if err := s.registerUser(user); err != nil {
			log.Printf("Failed to register %s: %v", user.Email, err)
			continue
		}
		s.users = append(s.users, user)
	}

	if len(s.users) == 0 {
		return fmt.Errorf("no members registered")
	}
	log.Printf("Initialization complete: %d members ready", len(s.users))
	return nil
}

func (s *Simulator) registerUser(user *SimulatedUser) error {
	data := map[string]interface{}{
		"email":    user.Email,
		"password": "testpass123",
		"name":     user.Name,
	}

	resp, err := s.makeRequest("POST", "/user/register", data, "")
	if err != nil {
		return err
	}

	var result struct {
		Token  string `json:"token"`
		UserID string `json:"userId"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return fmt.Errorf("failed to parse registration response: %v", err)
	}
	if result.UserID == "" {
		return fmt.Errorf("registration returned no user ID")
	}

	user.ID = result.UserID
	user.Token = result.Token
	return nil
}

func (s *Simulator) login(email, password string) (token string, userID string, err error) {
	data := map[string]interface{}{
		"email":    email,
		"password": password,
	}

	resp, err := s.makeRequest("POST", "/user/login", data, "")
	if err != nil {
		return "", "", err
	}

	var result struct {
		Token  string `json:"token"`
		UserID string `json:"userId"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return "", "", fmt.Errorf("failed to parse login response: %v", err)
	}
	return result.Token, result.UserID, nil
}

// makeRequest issues one API call, recording latency and outcome. The token
// is optional; anonymous traffic passes an empty string.
func (s *Simulator) makeRequest(method, endpoint string, data interface{}, token string) ([]byte, error) {
	var body []byte
	var err error

	if data != nil {
		body, err = json.Marshal(data)
		if err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequest(method, s.config.EngineURL+endpoint, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	s.recordRequestMetrics(start, err)

	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return nil, readErr
	}

	if resp.StatusCode >= 400 {
		return respBody, &apiError{Status: resp.StatusCode, Body: respBody}
	}

	return respBody, nil
}

type apiError struct {
	Status int
	Body   []byte
}

func (e *apiError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Body)
}

// isQuotaRefusal reports whether an error is the engine turning down a
// submission for exceeding the monthly quota. That is expected traffic for
// the simulator, not a failure.
func isQuotaRefusal(err error) bool {
	apiErr, ok := err.(*apiError)
	return ok && apiErr.Status == http.StatusTooManyRequests
}

func (s *Simulator) recordRequestMetrics(start time.Time, err error) {
	s.stats.mu.Lock()
	defer s.stats.mu.Unlock()

	latency := time.Since(start)
	s.stats.TotalRequests++

	if err != nil {
		s.stats.FailedRequests++
	} else {
		s.stats.SuccessRequests++
	}

	totalLatency := s.stats.AverageLatency * time.Duration(s.stats.TotalRequests-1)
	s.stats.AverageLatency = (totalLatency + latency) / time.Duration(s.stats.TotalRequests)
}

func (s *Simulator) randomUser() *SimulatedUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users[rand.Intn(len(s.users))]
}

func (s *Simulator) collectMetrics(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.stats.mu.RLock()
			elapsed := time.Since(s.stats.StartTime)
			requestRate := float64(s.stats.TotalRequests) / elapsed.Seconds()
			successRate := 0.0
			if s.stats.TotalRequests > 0 {
				successRate = float64(s.stats.SuccessRequests) / float64(s.stats.TotalRequests) * 100
			}

			log.Printf("\nSimulation Metrics (%.1f seconds elapsed):", elapsed.Seconds())
			log.Printf("- Request Rate: %.2f req/sec", requestRate)
			log.Printf("- Success Rate: %.1f%%", successRate)
			log.Printf("- Average Latency: %v", s.stats.AverageLatency)
			log.Printf("- Submissions: %d (quota refusals: %d)", s.stats.TotalPosts, s.stats.QuotaRefusals)
			log.Printf("- Comments: %d", s.stats.TotalComments)
			log.Printf("- Moderation: %d approved, %d rejected", s.stats.TotalApprovals, s.stats.TotalRejections)
			log.Printf("- Failed Requests: %d", s.stats.FailedRequests)
			s.stats.mu.RUnlock()
		}
	}
}

// SimulationMetrics holds the final numbers of a completed run
type SimulationMetrics struct {
	TotalUsers        int
	TotalPosts        int
	TotalComments     int
	TotalApprovals    int
	TotalRejections   int
	QuotaRefusals     int
	AverageLatency    time.Duration
	ErrorCount        int
	RequestsPerSecond float64
}

// GetMetrics returns the current simulation metrics
func (s *Simulator) GetMetrics() SimulationMetrics {
	s.stats.mu.RLock()
	defer s.stats.mu.RUnlock()

	elapsed := time.Since(s.stats.StartTime)
	requestRate := float64(s.stats.TotalRequests) / elapsed.Seconds()

	return SimulationMetrics{
		TotalUsers:        len(s.users),
		TotalPosts:        s.stats.TotalPosts,
		TotalComments:     s.stats.TotalComments,
		TotalApprovals:    s.stats.TotalApprovals,
		TotalRejections:   s.stats.TotalRejections,
		QuotaRefusals:     s.stats.QuotaRefusals,
		AverageLatency:    s.stats.AverageLatency,
		ErrorCount:        int(s.stats.FailedRequests),
		RequestsPerSecond: requestRate,
	}
}
