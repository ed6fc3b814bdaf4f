package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"hospital-scheduler/pkg/metrics"
	"hospital-scheduler/pkg/response"

	"golang.org/x/time/rate"
)

const (
	limiterCleanupInterval = time.Minute
	limiterIdleTimeout     = 3 * time.Minute
)

type client struct {
	lim  *rate.Limiter
	seen time.Time
}

// RateLimitMiddleware keeps one token bucket per client address and only
// applies it to requests that change state. rps <= 0 lets everything through.
type RateLimitMiddleware struct {
	mu      sync.Mutex
	clients map[string]*client
	r       rate.Limit
	burst   int

	stopCh chan struct{}
	wg     sync.WaitGroup
}

func NewRateLimitMiddleware(rps float64, burst int) *RateLimitMiddleware {
	m := &RateLimitMiddleware{
		clients: make(map[string]*client),
		r:       rate.Limit(rps),
		burst:   burst,
		stopCh:  make(chan struct{}),
	}
	if rps <= 0 {
		m.r = rate.Inf
	}

	m.wg.Add(1)
	go m.cleanupLoop()

	return m
}

func (m *RateLimitMiddleware) cleanupLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.evictIdle(time.Now().Add(-limiterIdleTimeout))
		case <-m.stopCh:
			return
		}
	}
}

// evictIdle drops clients not seen since cutoff and returns how many went
func (m *RateLimitMiddleware) evictIdle(cutoff time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for addr, c := range m.clients {
		if c.seen.Before(cutoff) {
			delete(m.clients, addr)
			removed++
		}
	}
	return removed
}

// Stop ends the cleanup goroutine
func (m *RateLimitMiddleware) Stop() {
	close(m.stopCh)
	m.wg.Wait()
}

func (m *RateLimitMiddleware) get(addr string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.clients[addr]; ok {
		c.seen = time.Now()
		return c.lim
	}
	l := rate.NewLimiter(m.r, m.burst)
	m.clients[addr] = &client{lim: l, seen: time.Now()}
	return l
}

func (m *RateLimitMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if !isMutating(req.Method) {
			next.ServeHTTP(w, req)
			return
		}

		if !m.get(clientAddr(req)).Allow() {
			metrics.RateLimitedTotal.Inc()
			response.TooManyRequests(w, "")
			return
		}

		next.ServeHTTP(w, req)
	})
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func clientAddr(req *http.Request) string {
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}
	return host
}
