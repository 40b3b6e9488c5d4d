package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestTokenBucketLimiter_Burst(t *testing.T) {
	l := NewTokenBucketLimiter(0.001, 3)

	for i := range 3 {
		if !l.Allow("10.0.0.1") {
			t.Fatalf("request %d rejected within burst", i+1)
		}
	}
	if l.Allow("10.0.0.1") {
		t.Error("request beyond burst allowed")
	}
	if !l.Allow("10.0.0.2") {
		t.Error("independent key throttled")
	}
}

func TestTokenBucketLimiter_Concurrent(t *testing.T) {
	l := NewTokenBucketLimiter(0.001, 50)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("shared") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 50 {
		t.Errorf("allowed = %d, want exactly the burst of 50", allowed)
	}
}

func TestRateLimit_Middleware(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(NewTokenBucketLimiter(0.001, 1), func(c *gin.Context) string {
		return c.GetHeader("X-Client")
	}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(client string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Client", client)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	if rec := do("a"); rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d", rec.Code)
	}
	rec := do("a")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") != RetryAfterSeconds {
		t.Errorf("Retry-After = %q", rec.Header().Get("Retry-After"))
	}
	if rec := do("b"); rec.Code != http.StatusOK {
		t.Errorf("other client status = %d", rec.Code)
	}
}
