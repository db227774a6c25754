package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"minbar-hub/internal/config"
	"minbar-hub/internal/database"
	"minbar-hub/internal/engine"
	"minbar-hub/internal/handlers"
	"minbar-hub/internal/middleware"
	"minbar-hub/internal/storage"
	"minbar-hub/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	metrics := utils.NewMetricsCollector()

	mongodb, err := database.NewMongoDB(cfg.Database.URI, cfg.Database.Name)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := mongodb.Close(context.Background()); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()
	log.Printf("Connected to MongoDB database: %s", cfg.Database.Name)

	objectStorage, err := storage.NewObjectStorage(cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize object storage: %v", err)
	}

	// Initialize actor system and engine
	system := actor.NewActorSystem()
	hubEngine := engine.NewEngine(system, engine.Stores{
		Users: mongodb,
		Posts: mongodb,
	}, cfg.SeedAdmin, cfg.MonthlyQuota, metrics)

	authMiddleware := middleware.NewAuth(cfg.JWTSecret)

	server := handlers.NewServer(system, hubEngine, metrics, authMiddleware, objectStorage, cfg.MaxUploadBytes)

	mux := newRouter(server)

	corsConfig := middleware.DefaultCORSConfig(cfg.AllowedOrigins)
	handler := middleware.CORSMiddleware(corsConfig)(authMiddleware.Middleware(mux))

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Starting server on %s", serverAddr)
	if err := http.ListenAndServe(serverAddr, handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

func newRouter(server *handlers.Server) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", server.HandleHealth())

	mux.HandleFunc("/user/register", server.HandleUserRegistration())
	mux.HandleFunc("/user/login", server.HandleUserLogin())
	mux.HandleFunc("/user/logout", server.HandleUserLogout())
	mux.HandleFunc("/user/profile", server.HandleUserProfile())

	mux.HandleFunc("/users", server.HandleListUsers())
	mux.HandleFunc("/users/role", server.HandleUpdateRole())
	mux.HandleFunc("/users/delete", server.HandleUserDelete())
	mux.HandleFunc("/users/restore", server.HandleUserRestore())

	// GET, POST and DELETE share the /posts path; dispatch on method.
	listPosts := server.HandleListPosts()
	createPost := server.HandleCreatePost()
	deletePost := server.HandleDeletePost()
	mux.HandleFunc("/posts", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			listPosts(w, r)
		case http.MethodPost:
			createPost(w, r)
		case http.MethodDelete:
			deletePost(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/posts/detail", server.HandlePostDetail())
	mux.HandleFunc("/posts/pending", server.HandlePendingPosts())
	mux.HandleFunc("/posts/approve", server.HandleApprovePost())
	mux.HandleFunc("/posts/reject", server.HandleRejectPost())
	mux.HandleFunc("/posts/comment", server.HandleAddComment())
	mux.HandleFunc("/posts/view", server.HandleIncrementView())
	mux.HandleFunc("/posts/download", server.HandleIncrementDownload())

	mux.HandleFunc("/media/upload", server.HandleMediaUpload())

	return mux
}
