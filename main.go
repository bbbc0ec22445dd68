package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/classfeed/classfeed/go-services/handlers"
	"github.com/classfeed/classfeed/go-services/internal/config"
	"github.com/classfeed/classfeed/go-services/internal/database"
	"github.com/classfeed/classfeed/go-services/internal/identity"
	"github.com/classfeed/classfeed/go-services/internal/posts/repository"
	postsvc "github.com/classfeed/classfeed/go-services/internal/posts/service"
	"github.com/classfeed/classfeed/go-services/internal/refresh"
	"github.com/classfeed/classfeed/go-services/internal/storage"
	"github.com/classfeed/classfeed/go-services/internal/tokens"
	"github.com/classfeed/classfeed/go-services/internal/users"
	"github.com/classfeed/classfeed/go-services/pkg/logger"
	"github.com/classfeed/classfeed/go-services/pkg/metrics"
	"github.com/classfeed/classfeed/go-services/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

var startTime = time.Now()

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: keycloak=%v mongo=%v redis=%v", cfg.Keycloak.URL != "", cfg.MongoDB.URI != "", cfg.Redis.Host != "")

	r := gin.New()

	// Lightweight CORS middleware for dev/test: set common headers and respond to OPTIONS.
	// (Keep this intentionally simple — production should use a stricter policy.)
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})

	// Global middlewares: logging + recovery
	r.Use(gin.Logger(), gin.Recovery())

	// Connect to Redis early so the rate-limiter and blacklist can use it when configured
	var importedRedis *redis.Client
	if cfg.Redis.Host != "" {
		importedRedis = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := importedRedis.Ping(context.Background()).Err(); err == nil {
			refresh.SetBlacklistClient(importedRedis)
			logger.Infof("Connected to Redis (early) for optional features: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		} else {
			logger.Warnf("failed to connect to Redis early (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			importedRedis = nil
		}
	}

	// Optional global rate limiter (per-user when authenticated, otherwise per-IP)
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && importedRedis != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(importedRedis, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	ctx := context.Background()

	// Identity provider: Keycloak when configured, in-memory otherwise
	var provider identity.Provider
	if cfg.Keycloak.URL != "" && cfg.Keycloak.Realm != "" && cfg.Keycloak.ClientID != "" {
		provider = identity.NewKeycloakProvider(identity.KeycloakConfig{
			URL:          cfg.Keycloak.URL,
			Realm:        cfg.Keycloak.Realm,
			ClientID:     cfg.Keycloak.ClientID,
			ClientSecret: cfg.Keycloak.ClientSecret,
		})
		logger.Infof("using Keycloak identity provider (realm=%s)", cfg.Keycloak.Realm)
	} else {
		provider = identity.NewMemoryProvider()
		logger.Warnf("no Keycloak configured, using in-memory identity provider")
	}

	// Access-token verifier: locally signed HS256 tokens carry the session claims
	var verifier middleware.Verifier = tokens.NewHSVerifier(cfg.JWT.Secret)
	if strings.EqualFold(strings.TrimSpace(os.Getenv("ALLOW_INSECURE_TOKEN")), "true") {
		logger.Warn("enabling insecure token verifier (integration mode)")
		verifier = identity.NewInsecureVerifier()
	}

	// Storage-backed services, with in-memory fallbacks when Mongo is absent
	var profileRepo users.ProfileRepository
	var postRepo repository.Repository
	var refreshSvc *refresh.Service
	var mongoUp bool

	if importedRedis != nil {
		refreshSvc = refresh.NewService(refresh.NewRedisRepository(importedRedis, "refresh:"))
		logger.Infof("Using Redis for refresh token storage (early connection)")
	}

	if cfg.MongoDB.URI != "" {
		// Retry/backoff when connecting to MongoDB to tolerate startup races
		const maxAttempts = 5
		backoff := time.Second
		var client *mongo.Client
		var errConn error
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			client, errConn = database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
			if errConn == nil {
				break
			}
			logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, errConn)
			if attempt < maxAttempts {
				time.Sleep(backoff)
				backoff *= 2
			}
		}
		if errConn != nil {
			logger.Warnf("could not connect to MongoDB after %d attempts: %v", maxAttempts, errConn)
		} else {
			defer func() { _ = client.Disconnect(ctx) }()
			db := client.Database(cfg.MongoDB.Database)
			profileRepo = users.NewMongoProfileRepository(db.Collection("users"))
			postRepo = repository.NewMongoRepo(db.Collection("posts"))
			if refreshSvc == nil {
				refreshSvc = refresh.NewService(refresh.NewMongoRepository(db.Collection("refresh_tokens")))
			}
			mongoUp = true
		}
	}
	if profileRepo == nil {
		logger.Warnf("MongoDB unavailable, using in-memory stores")
		profileRepo = users.NewMemoryProfileRepository()
		postRepo = repository.NewMemoryRepo()
	}
	if refreshSvc == nil {
		refreshSvc = refresh.NewService(refresh.NewMemoryRepository())
		logger.Warnf("no Redis or MongoDB configured, refresh tokens held in memory")
	}

	userSvc := users.NewService(profileRepo)

	// MinIO blob storage for post images (optional)
	var blobs postsvc.Uploader
	if mcfg := storage.LoadMinIOConfig(); mcfg.Endpoint != "" {
		if s, err := storage.NewMinIOStorage(mcfg); err != nil {
			logger.Warnf("failed to initialize MinIO storage: %v", err)
		} else {
			blobs = s
			logger.Infof("Connected to MinIO at %s (bucket=%s)", mcfg.Endpoint, mcfg.Bucket)
		}
	}
	postSvc := postsvc.NewService(postRepo, blobs)

	// Basic health endpoint
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness endpoint — return 200 only when critical dependencies are available
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{}

		deps["storage"] = profileRepo != nil && postRepo != nil
		deps["mongo"] = mongoUp
		deps["refresh"] = refreshSvc != nil
		if !deps["storage"] || !deps["refresh"] {
			ready = false
		}

		if cfg.Redis.Host != "" && cfg.RateLimit.UseRedis {
			deps["redis"] = importedRedis != nil
			if !deps["redis"] {
				ready = false
			}
		} else {
			deps["redis"] = true
		}

		if !ready {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": deps, "uptime": fmt.Sprintf("%s", time.Since(startTime))})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": deps, "uptime": fmt.Sprintf("%s", time.Since(startTime))})
	})

	// Public auth surface
	handlers.NewAuthHandler(cfg, provider, userSvc, refreshSvc).Register(r.Group("/"))
	handlers.RegisterSwagger(r)

	// rejects tokens that were blacklisted on logout
	blacklistCheck := func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if strings.HasPrefix(auth, "Bearer ") {
			tok := strings.TrimPrefix(auth, "Bearer ")
			if black, err := refresh.IsAccessTokenBlacklisted(c.Request.Context(), tok); err == nil && black {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token revoked"})
				return
			}
		}
		c.Next()
	}

	// Protected API
	api := r.Group("/api", middleware.AuthMiddleware(verifier), blacklistCheck)
	handlers.NewPostHandler(postSvc).Register(api)
	handlers.NewUserHandler(userSvc).Register(api)

	v1 := r.Group("/api/v1", middleware.AuthMiddleware(verifier), blacklistCheck)
	handlers.NewUserHandler(userSvc).RegisterMe(v1)

	// Expose Prometheus metrics
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("Config summary: keycloak=%v mongo=%v redis=%v jwt_secret_set=%v", cfg.Keycloak.URL != "", cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.JWT.Secret != "")
	logger.Infof("Starting classfeed service on %s", addr)
	// run server in goroutine and keep process alive — prevents the container
	// from exiting silently if r.Run ever returns.
	go func() {
		if err := r.Run(addr); err != nil {
			logger.Fatalf("server failed: %v", err)
		}
	}()
	select {}
}
