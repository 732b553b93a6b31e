package main

import (
	"context"
	"database/sql"
	"log"
	"os"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"

	"github.com/rosterly/rosterly/authz"
	"github.com/rosterly/rosterly/internal/config"
	"github.com/rosterly/rosterly/modules"
	"github.com/rosterly/rosterly/router"
)

func main() {
	log.Println("Starting rosterly API...")

	// Load Config
	configPath := os.Getenv("ROSTERLY_CONFIG_PATH")
	if err := config.LoadConfig(configPath); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if config.App.DatabaseURL == "" {
		log.Fatal("DATABASE_URL environment variable (or config) is required")
	}
	if config.App.JWTSecret == "" {
		log.Fatal("JWT_SECRET environment variable (or config) is required")
	}

	// Verify static registries before serving anything. A bad permission
	// table or module catalog is a deployment defect, not a runtime case.
	authz.VerifyRegistry()
	if err := modules.ValidateCatalog(); err != nil {
		log.Fatalf("Invalid module catalog: %v", err)
	}

	// Database connection
	pg, err := sql.Open("postgres", config.App.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pg.Close()

	if err := pg.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	// Consistent time handling
	if _, err := pg.Exec("SET TIME ZONE 'UTC'"); err != nil {
		log.Printf("Failed to set timezone to UTC: %v", err)
	}
	log.Println("  Connected to database successfully")

	// Redis connection (refresh tokens, user cache)
	var rdb *redis.Client
	if config.App.RedisURL != "" {
		opts, err := redis.ParseURL(config.App.RedisURL)
		if err != nil {
			log.Fatalf("Invalid REDIS_URL: %v", err)
		}
		rdb = redis.NewClient(opts)
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("Failed to ping redis: %v", err)
		}
		log.Println("  Connected to redis successfully")
	} else {
		log.Println("  REDIS_URL not set, running without cache")
	}

	r := router.NewGinRouter(pg, rdb)

	addr := ":" + config.App.Port
	log.Printf("Listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("Server exited: %v", err)
	}
}
