package security

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(rate.Limit(10), 5)

	ip1 := "192.168.1.1"
	limiter1 := limiter.GetLimiter(ip1)
	limiter2 := limiter.GetLimiter(ip1)

	if limiter1 != limiter2 {
		t.Error("Expected same limiter for same IP")
	}

	limiter3 := limiter.GetLimiter("192.168.1.2")
	if limiter1 == limiter3 {
		t.Error("Expected different limiters for different IPs")
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	limiter := NewRateLimiter(rate.Limit(10), 5)
	limiter.GetLimiter("stale")

	time.Sleep(20 * time.Millisecond)
	limiter.GetLimiter("fresh")

	if removed := limiter.Cleanup(10 * time.Millisecond); removed != 1 {
		t.Errorf("Expected 1 limiter removed, got %d", removed)
	}
	if limiter.Len() != 1 {
		t.Errorf("Expected 1 limiter left, got %d", limiter.Len())
	}

	if limiter.GetLimiter("stale") == nil {
		t.Error("Expected limiter to be recreated after cleanup")
	}
}

func TestPerMinuteLimiter(t *testing.T) {
	limiter := NewPerMinuteLimiter(3).GetLimiter("user:1")

	for i := 0; i < 3; i++ {
		if !limiter.Allow() {
			t.Fatalf("Expected request %d to be allowed", i+1)
		}
	}
	if limiter.Allow() {
		t.Error("Expected fourth request within the minute to be rejected")
	}
}

func TestDefaultSecurityConfig(t *testing.T) {
	config := DefaultSecurityConfig()

	if config == nil {
		t.Fatal("Expected non-nil config")
	}
	if !config.EnableRateLimit {
		t.Error("Expected rate limiting to be enabled by default")
	}
	if config.RateLimitPerSecond != 10.0 {
		t.Errorf("Expected rate limit per second to be 10.0, got %f", config.RateLimitPerSecond)
	}
	if config.RateLimitBurst != 20 {
		t.Errorf("Expected rate limit burst to be 20, got %d", config.RateLimitBurst)
	}
	if config.MaxRequestSize != 1<<20 {
		t.Errorf("Expected max request size to be 1MB, got %d", config.MaxRequestSize)
	}
	if !config.EnableRequestID {
		t.Error("Expected request ID to be enabled by default")
	}
}

func TestSetupSecurityMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupSecurityMiddleware(router, nil)

	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("Expected X-Request-ID response header")
	}
	if w.Header().Get("X-Frame-Options") != "DENY" {
		t.Errorf("Expected X-Frame-Options DENY, got %q", w.Header().Get("X-Frame-Options"))
	}

	router2 := gin.New()
	SetupSecurityMiddleware(router2, &SecurityConfig{MaxRequestSize: 1024})
	router2.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/test", nil)
	router2.ServeHTTP(w, req)

	if w.Header().Get("X-Request-ID") != "" {
		t.Error("Expected no request id when disabled")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	router.Use(RateLimitMiddleware(NewRateLimiter(rate.Limit(1), 1)))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("X-Forwarded-For", "192.168.1.1")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/test", nil)
	req.Header.Set("X-Forwarded-For", "192.168.1.1")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("Expected status 429, got %d", w.Code)
	}

	var body map[string]string
	json.Unmarshal(w.Body.Bytes(), &body)
	if body["message"] != "Too Many Attempts." {
		t.Errorf("Unexpected rate limit message %q", body["message"])
	}

	// Another IP has its own budget
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/test", nil)
	req.Header.Set("X-Forwarded-For", "192.168.1.2")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200 for a different IP, got %d", w.Code)
	}
}

func TestCallerRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	identify := func(c *gin.Context) (string, bool) {
		user := c.GetHeader("X-Test-User")
		return user, user != ""
	}
	router.Use(CallerRateLimitMiddleware(NewPerMinuteLimiter(1), identify))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	do := func(user string) int {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/test", nil)
		req.Header.Set("X-Forwarded-For", "10.0.0.1")
		if user != "" {
			req.Header.Set("X-Test-User", user)
		}
		router.ServeHTTP(w, req)
		return w.Code
	}

	if code := do("1"); code != http.StatusOK {
		t.Errorf("Expected first request for user 1 to pass, got %d", code)
	}
	if code := do("1"); code != http.StatusTooManyRequests {
		t.Errorf("Expected second request for user 1 to be limited, got %d", code)
	}
	// Same IP, different user
	if code := do("2"); code != http.StatusOK {
		t.Errorf("Expected user 2 to have its own budget, got %d", code)
	}
	// Anonymous caller falls back to IP
	if code := do(""); code != http.StatusOK {
		t.Errorf("Expected anonymous request to pass, got %d", code)
	}
	if code := do(""); code != http.StatusTooManyRequests {
		t.Errorf("Expected second anonymous request to be limited, got %d", code)
	}
}

func TestRequestSizeMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	router.Use(RequestSizeMiddleware(100))
	router.POST("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/test", bytes.NewReader(make([]byte, 50)))
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/test", bytes.NewReader(make([]byte, 150)))
	router.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected status 413, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/test", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200 for request with no content length, got %d", w.Code)
	}
}

func TestSecurityLoggingMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	previous := gin.DefaultWriter
	gin.DefaultWriter = &buf
	defer func() { gin.DefaultWriter = previous }()

	router := gin.New()
	router.Use(SecurityLoggingMiddleware())
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	req.Header.Set("User-Agent", "TestBot/1.0")
	router.ServeHTTP(w, req)

	line := buf.String()
	for _, want := range []string{"method=GET", "path=/test", "status=404", "user_agent=TestBot/1.0", "request_id=abc-123", "error=true"} {
		if !strings.Contains(line, want) {
			t.Errorf("Expected log line to contain %q, got %q", want, line)
		}
	}
}

func TestGetClientIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, getClientIP(c))
	})

	tests := []struct {
		header, value, remote, want string
	}{
		{"X-Forwarded-For", "192.168.1.1, 10.0.0.1", "", "192.168.1.1"},
		{"X-Real-IP", "192.168.1.2", "", "192.168.1.2"},
		{"X-Client-IP", "192.168.1.3", "", "192.168.1.3"},
		{"", "", "192.168.1.4:12345", "192.168.1.4"},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/test", nil)
		if tt.header != "" {
			req.Header.Set(tt.header, tt.value)
		}
		if tt.remote != "" {
			req.RemoteAddr = tt.remote
		}
		router.ServeHTTP(w, req)

		if w.Body.String() != tt.want {
			t.Errorf("Expected IP %s, got %s", tt.want, w.Body.String())
		}
	}
}
