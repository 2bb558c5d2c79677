package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"newsagg/internal/auth"
	"newsagg/internal/cache"
	"newsagg/internal/config"
	"newsagg/internal/feed"
	"newsagg/internal/poller"
	"newsagg/internal/security"
	"newsagg/internal/storage"
	"newsagg/internal/web"

	"github.com/gin-gonic/gin"
)

const (
	limiterIdleTTL  = 10 * time.Minute
	shutdownTimeout = 10 * time.Second
)

type Server struct {
	router        *gin.Engine
	store         storage.Storage
	feed          *feed.Engine
	cache         cache.Cache
	tokens        *auth.TokenService
	poller        *poller.Poller
	port          int
	swaggerServer *web.SwaggerServer
	limiters      []*security.RateLimiter
	callerBudget  int
}

func NewServer(store storage.Storage, feedEngine *feed.Engine, feedCache cache.Cache, tokens *auth.TokenService, p *poller.Poller, cfg *config.Config) *Server {
	router := gin.New()
	router.Use(gin.Recovery())

	// Setup security middleware
	securityConfig := &security.SecurityConfig{
		EnableRateLimit:       cfg.Security.EnableRateLimit,
		RateLimitPerSecond:    cfg.Security.RateLimitPerSecond,
		RateLimitBurst:        cfg.Security.RateLimitBurst,
		EnableCORS:            cfg.Security.EnableCORS,
		AllowedOrigins:        cfg.Security.AllowedOrigins,
		EnableSecurityHeaders: cfg.Security.EnableSecurityHeaders,
		MaxRequestSize:        cfg.Security.MaxRequestSize,
		EnableRequestID:       cfg.Security.EnableRequestID,
	}
	security.SetupSecurityMiddleware(router, securityConfig)
	registerFieldNames()

	swaggerServer := web.NewSwaggerServer(cfg.EnableSwagger)
	swaggerServer.SetHost(fmt.Sprintf("localhost:%d", cfg.Port))

	server := &Server{
		router:        router,
		store:         store,
		feed:          feedEngine,
		cache:         feedCache,
		tokens:        tokens,
		poller:        p,
		port:          cfg.Port,
		swaggerServer: swaggerServer,
		callerBudget:  cfg.RateLimitPerMinute,
	}

	server.setupRoutes()
	return server
}

// callerLimit gives a route its own per-minute budget per caller
func (s *Server) callerLimit() gin.HandlerFunc {
	limiter := security.NewPerMinuteLimiter(s.callerBudget)
	s.limiters = append(s.limiters, limiter)
	return security.CallerRateLimitMiddleware(limiter, auth.CallerKey)
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", s.healthCheck)

	api := s.router.Group("/api")
	{
		api.POST("/auth/register", s.register)
		api.POST("/auth/login", s.login)

		authed := api.Group("", auth.RequireToken(s.tokens))
		{
			authed.POST("/auth/logout", s.logout)
			authed.GET("/user", s.currentUser)

			authed.GET("/articles", s.listArticles)
			authed.GET("/articles/search", s.searchArticles)
			authed.GET("/articles/:id", s.getArticle)

			prefLimit := s.callerLimit()
			authed.GET("/preferences", prefLimit, s.getPreferences)
			authed.POST("/preferences", prefLimit, s.setPreferences)
			authed.GET("/personalized-feed", s.callerLimit(), s.personalizedFeed)

			authed.GET("/sources", s.listSources)
			authed.POST("/sources", s.createSource)
			authed.GET("/categories", s.listCategories)

			authed.POST("/fetch-articles", s.callerLimit(), s.fetchArticles)
		}
	}

	s.swaggerServer.RegisterRoutes(s.router)
}

func (s *Server) Start() error {
	return s.StartWithContext(context.Background())
}

// StartWithContext serves until ctx is cancelled, then shuts down gracefully
func (s *Server) StartWithContext(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(s.port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	janitor := time.NewTicker(limiterIdleTTL)
	defer janitor.Stop()

	for {
		select {
		case err := <-errCh:
			return err
		case <-janitor.C:
			s.cleanupLimiters()
		case <-ctx.Done():
			log.Println("Shutting down HTTP server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("failed to shut down HTTP server: %w", err)
			}
			log.Println("HTTP server stopped")
			return nil
		}
	}
}

func (s *Server) cleanupLimiters() {
	removed := 0
	for _, l := range s.limiters {
		removed += l.Cleanup(limiterIdleTTL)
	}
	if removed > 0 {
		log.Printf("Removed %d idle rate limiter entries", removed)
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	code := http.StatusOK
	storageStatus := "ok"
	if err := s.store.Ping(ctx); err != nil {
		log.Printf("Health check: storage ping failed: %v", err)
		status = "unhealthy"
		code = http.StatusServiceUnavailable
		storageStatus = "unavailable"
	}

	body := gin.H{
		"status":        status,
		"service":       "newsagg",
		"storage":       storageStatus,
		"cache":         s.cache.Health(ctx),
		"poller_active": s.poller.IsPolling(),
	}
	if storageStatus == "ok" {
		stats, err := s.store.GetDatabaseStats()
		if err != nil {
			log.Printf("Health check: failed to read database stats: %v", err)
		} else {
			body["database"] = stats
		}
	}
	if last := s.poller.GetLastPolledTime(); !last.IsZero() {
		body["last_polled"] = last
	}
	if summary := s.poller.LastSummary(); summary != nil {
		body["last_summary"] = summary
	}

	c.JSON(code, body)
}
