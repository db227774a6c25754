package main

import (
	"context"
	"log"
	"os"
	"time"

	"minbar-hub/simulator"
)

func main() {
	config := simulator.SimConfig{
		NumUsers:         10,
		SimulationTime:   10 * time.Minute,
		PostFrequency:    30.0,
		CommentFrequency: 60.0,
		BrowseFrequency:  200.0,
		AdminEmail:       envOrDefault("SIM_ADMIN_EMAIL", "super@minbar.local"),
		AdminPassword:    envOrDefault("SIM_ADMIN_PASSWORD", "123456"),
		EngineURL:        envOrDefault("SIM_ENGINE_URL", "http://localhost:8080"),
	}

	log.Printf("Starting simulation with configuration:")
	log.Printf("- Engine URL: %s", config.EngineURL)
	log.Printf("- Number of members: %d", config.NumUsers)
	log.Printf("- Simulation time: %v", config.SimulationTime)
	log.Printf("- Submission frequency: %.2f posts/user/hour", config.PostFrequency)
	log.Printf("- Comment frequency: %.2f comments/user/hour", config.CommentFrequency)
	log.Printf("- Browse frequency: %.2f fetches/user/hour", config.BrowseFrequency)

	sim := simulator.NewSimulator(config)
	ctx, cancel := context.WithTimeout(context.Background(), config.SimulationTime)
	defer cancel()

	if err := sim.Run(ctx); err != nil {
		log.Fatalf("Simulation failed: %v", err)
	}

	metrics := sim.GetMetrics()
	log.Printf("\nSimulation completed. Final metrics:")
	log.Printf("- Total members: %d", metrics.TotalUsers)
	log.Printf("- Submissions: %d (quota refusals: %d)", metrics.TotalPosts, metrics.QuotaRefusals)
	log.Printf("- Comments: %d", metrics.TotalComments)
	log.Printf("- Approved: %d, Rejected: %d", metrics.TotalApprovals, metrics.TotalRejections)
	log.Printf("- Average latency: %v", metrics.AverageLatency)
	log.Printf("- Error count: %d", metrics.ErrorCount)
}

func envOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
