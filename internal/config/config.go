// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ServerConfig holds all server-related settings
type ServerConfig struct {
	Port           int
	Host           string
	MetricsEnabled bool
}

// DatabaseConfig holds MongoDB connection settings
type DatabaseConfig struct {
	URI  string
	Name string
}

// StorageConfig holds object-storage settings for media uploads.
// The production endpoint is an S3-compatible Arvan Cloud bucket.
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
}

// SeedAdminConfig is the bootstrap super-admin identity created on first run.
type SeedAdminConfig struct {
	Email    string
	Password string
	Name     string
}

// Config holds the complete application configuration
type Config struct {
	Server         *ServerConfig
	Database       *DatabaseConfig
	Storage        *StorageConfig
	SeedAdmin      *SeedAdminConfig
	JWTSecret      string
	AllowedOrigins []string
	MaxUploadBytes int64
	MonthlyQuota   int
	Debug          bool
}

// DefaultConfig provides default server settings
func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		Port:           8080,
		Host:           "0.0.0.0",
		MetricsEnabled: true,
	}
}

// DefaultDatabaseConfig provides default database settings
func DefaultDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		URI:  "mongodb://localhost:27017",
		Name: "minbar_hub",
	}
}

// DefaultStorageConfig provides default object-storage settings
func DefaultStorageConfig() *StorageConfig {
	return &StorageConfig{
		Endpoint: "s3.ir-thr-at1.arvanstorage.ir",
		Bucket:   "minbar-media",
		UseSSL:   true,
	}
}

// LoadConfig loads configuration from environment variables and applies defaults
func LoadConfig() (*Config, error) {
	// Silent failure if no .env exists, which is fine
	_ = godotenv.Load()

	serverConfig := DefaultConfig()

	if portStr := os.Getenv("PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			serverConfig.Port = port
		}
	}

	if host := os.Getenv("HOST"); host != "" {
		serverConfig.Host = host
	}

	if metricsEnabled := os.Getenv("METRICS_ENABLED"); metricsEnabled != "" {
		serverConfig.MetricsEnabled = metricsEnabled == "true"
	}

	dbConfig := DefaultDatabaseConfig()
	if uri := os.Getenv("MONGODB_URI"); uri != "" {
		dbConfig.URI = uri
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		dbConfig.Name = name
	}

	storageConfig := DefaultStorageConfig()
	if endpoint := os.Getenv("STORAGE_ENDPOINT"); endpoint != "" {
		storageConfig.Endpoint = endpoint
	}
	storageConfig.AccessKey = os.Getenv("STORAGE_ACCESS_KEY")
	storageConfig.SecretKey = os.Getenv("STORAGE_SECRET_KEY")
	if bucket := os.Getenv("STORAGE_BUCKET"); bucket != "" {
		storageConfig.Bucket = bucket
	}
	if useSSL := os.Getenv("STORAGE_USE_SSL"); useSSL != "" {
		storageConfig.UseSSL = useSSL == "true"
	}
	if publicURL := os.Getenv("STORAGE_PUBLIC_URL"); publicURL != "" {
		storageConfig.PublicURL = publicURL
	}

	// The seed super admin is well-known static configuration; the identity
	// actor creates it on first run if the users collection is empty.
	seedAdmin := &SeedAdminConfig{
		Email:    getEnvOrDefault("SEED_ADMIN_EMAIL", "super@minbar.local"),
		Password: getEnvOrDefault("SEED_ADMIN_PASSWORD", "123456"),
		Name:     getEnvOrDefault("SEED_ADMIN_NAME", "Super Admin"),
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	config := &Config{
		Server:         serverConfig,
		Database:       dbConfig,
		Storage:        storageConfig,
		SeedAdmin:      seedAdmin,
		JWTSecret:      jwtSecret,
		AllowedOrigins: []string{"*"},
		MaxUploadBytes: 10 * 1024 * 1024,
		MonthlyQuota:   2,
		Debug:          false,
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		config.AllowedOrigins = strings.Split(origins, ",")
	}

	if maxStr := os.Getenv("MAX_UPLOAD_BYTES"); maxStr != "" {
		if max, err := strconv.ParseInt(maxStr, 10, 64); err == nil {
			config.MaxUploadBytes = max
		}
	}

	if quotaStr := os.Getenv("MONTHLY_POST_QUOTA"); quotaStr != "" {
		if quota, err := strconv.Atoi(quotaStr); err == nil {
			config.MonthlyQuota = quota
		}
	}

	if debug := os.Getenv("DEBUG"); debug == "true" {
		config.Debug = true
	}

	return config, nil
}

// Helper function to get environment variable with default fallback
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
