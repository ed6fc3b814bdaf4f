package breaker

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

const (
	NameRedisCache = "Redis-AppointmentCache"
	NameRabbitMQ   = "RabbitMQ-Publisher"
)

// New creates a circuit breaker that opens after three consecutive failures
func New(name string) *gobreaker.CircuitBreaker {
	var timeout time.Duration

	switch name {
	case NameRedisCache:
		timeout = 5 * time.Second
	default:
		timeout = 30 * time.Second
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logrus.Warnf("Circuit breaker %s: %s -> %s", name, from, to)
		},
	})
}
