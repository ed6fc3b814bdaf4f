package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"hospital-scheduler/pkg/response"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck reports whether one dependency answers
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	log    *logrus.Logger
	checks map[string]HealthCheck
}

func NewHealthHandler(log *logrus.Logger, checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{
		log:    log,
		checks: checks,
	}
}

// Check runs every dependency check concurrently. Any failure turns the
// response into 503 with the per-dependency status in data.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	var (
		mu     sync.Mutex
		status = make(map[string]string, len(h.checks))
		g      errgroup.Group
	)

	for name, check := range h.checks {
		g.Go(func() error {
			err := check(ctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				h.log.WithField("dependency", name).Warnf("Health check failed: %v", err)
				status[name] = "down"
				return err
			}
			status[name] = "up"
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		response.JSON(w, http.StatusServiceUnavailable, response.Response{
			Success: false,
			Message: "Service unavailable",
			Data:    status,
		})
		return
	}

	response.Success(w, http.StatusOK, "Service healthy", status)
}
