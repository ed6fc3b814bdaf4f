package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hospital-scheduler/internal/domain/entity"
	"hospital-scheduler/internal/infrastructure/breaker"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

const (
	// RedisAppointmentsKey holds the JSON encoded list returned by GET /appointments
	RedisAppointmentsKey = "appointments:all"

	// RedisAppointmentsGenerationKey is bumped on every invalidation. It has no TTL.
	RedisAppointmentsGenerationKey = "appointments:generation"

	// Timeout for individual Redis operations
	redisCacheTimeout = 2 * time.Second
)

// AppointmentCache caches the full appointment list. It is only a read
// accelerator: the overlap check always reads from the database.
//
// Readers take Generation before loading from the database and hand it back
// to SetAll, so a list loaded before a write is never stored after that
// write's Invalidate.
type AppointmentCache interface {
	// GetAll returns the cached list and whether it was present
	GetAll(ctx context.Context) ([]entity.Appointment, bool, error)
	Generation(ctx context.Context) (int64, error)
	// SetAll stores appointments only while the generation still equals gen
	SetAll(ctx context.Context, gen int64, appointments []entity.Appointment) error
	Invalidate(ctx context.Context) error
}

type redisAppointmentCache struct {
	redisClient *redis.Client
	log         *logrus.Logger
	ttl         time.Duration
	cb          *gobreaker.CircuitBreaker
}

// NewRedisAppointmentCache stores the list under RedisAppointmentsKey with the
// given TTL. Calls go through a circuit breaker so a failing Redis is skipped
// quickly instead of slowing every request.
func NewRedisAppointmentCache(redisClient *redis.Client, log *logrus.Logger, ttl time.Duration) AppointmentCache {
	return &redisAppointmentCache{
		redisClient: redisClient,
		log:         log,
		ttl:         ttl,
		cb:          breaker.New(breaker.NameRedisCache),
	}
}

func (c *redisAppointmentCache) GetAll(ctx context.Context) ([]entity.Appointment, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, redisCacheTimeout)
	defer cancel()

	raw, err := c.cb.Execute(func() (interface{}, error) {
		payload, err := c.redisClient.Get(ctx, RedisAppointmentsKey).Bytes()
		if errors.Is(err, redis.Nil) {
			// A miss is not a failure of Redis
			return []byte(nil), nil
		}
		return payload, err
	})
	if err != nil {
		return nil, false, fmt.Errorf("get cached appointments: %w", err)
	}

	payload := raw.([]byte)
	if payload == nil {
		return nil, false, nil
	}

	var appointments []entity.Appointment
	if err := json.Unmarshal(payload, &appointments); err != nil {
		c.log.Warnf("Discarding unreadable appointment cache entry: %+v", err)
		return nil, false, nil
	}

	return appointments, true, nil
}

func (c *redisAppointmentCache) Generation(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, redisCacheTimeout)
	defer cancel()

	raw, err := c.cb.Execute(func() (interface{}, error) {
		gen, err := c.redisClient.Get(ctx, RedisAppointmentsGenerationKey).Int64()
		if errors.Is(err, redis.Nil) {
			return int64(0), nil
		}
		return gen, err
	})
	if err != nil {
		return 0, fmt.Errorf("get appointment cache generation: %w", err)
	}
	return raw.(int64), nil
}

func (c *redisAppointmentCache) SetAll(ctx context.Context, gen int64, appointments []entity.Appointment) error {
	payload, err := json.Marshal(appointments)
	if err != nil {
		return fmt.Errorf("encode appointments: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, redisCacheTimeout)
	defer cancel()

	raw, err := c.cb.Execute(func() (interface{}, error) {
		stored := false
		err := c.redisClient.Watch(ctx, func(tx *redis.Tx) error {
			current, err := tx.Get(ctx, RedisAppointmentsGenerationKey).Int64()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
			if current != gen {
				return nil
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, RedisAppointmentsKey, payload, c.ttl)
				return nil
			})
			if err == nil {
				stored = true
			}
			return err
		}, RedisAppointmentsGenerationKey)
		if errors.Is(err, redis.TxFailedErr) {
			// Invalidated while we were writing
			return false, nil
		}
		return stored, err
	})
	if err != nil {
		return fmt.Errorf("set cached appointments: %w", err)
	}

	if !raw.(bool) {
		c.log.Debugf("Skipped caching appointments: generation %d is stale", gen)
		return nil
	}

	c.log.Debugf("Cached %d appointments for %v", len(appointments), c.ttl)
	return nil
}

// Invalidate bumps the generation and drops the list in one transaction.
func (c *redisAppointmentCache) Invalidate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, redisCacheTimeout)
	defer cancel()

	_, err := c.cb.Execute(func() (interface{}, error) {
		_, err := c.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Incr(ctx, RedisAppointmentsGenerationKey)
			pipe.Del(ctx, RedisAppointmentsKey)
			return nil
		})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("invalidate cached appointments: %w", err)
	}
	return nil
}
