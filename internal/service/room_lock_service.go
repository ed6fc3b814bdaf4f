package service

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// Interval for cleaning up stale mutexes
	mutexCleanupInterval = 10 * time.Minute

	// How long a mutex must be unused before cleanup
	mutexStaleThreshold = 10 * time.Minute
)

// RoomLocker serializes appointment admission per room
type RoomLocker interface {
	// Lock blocks until the room is free and returns the matching unlock
	Lock(roomID int64) (unlock func())
}

// RoomLockService keeps one mutex per room inside this process. It closes the
// gap between the overlap scan and the insert for requests handled by the same
// instance only.
type RoomLockService struct {
	log *logrus.Logger

	roomMu sync.Map // map[int64]*mutexWithTimestamp

	// Graceful shutdown
	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

// mutexWithTimestamp tracks mutex usage for cleanup
type mutexWithTimestamp struct {
	mu       sync.Mutex
	lastUsed atomic.Int64 // Unix timestamp
}

// NewRoomLockService starts the background mutex cleanup.
// Call Stop() during graceful shutdown.
func NewRoomLockService(log *logrus.Logger) *RoomLockService {
	svc := &RoomLockService{
		log:      log,
		stopChan: make(chan struct{}),
	}

	svc.wg.Add(1)
	go svc.cleanupMutexMapLoop()

	return svc
}

// Stop is safe to call multiple times
func (s *RoomLockService) Stop() {
	if s.stopped.CompareAndSwap(false, true) {
		close(s.stopChan)
		s.wg.Wait()
		s.log.Info("RoomLockService stopped")
	}
}

func (s *RoomLockService) Lock(roomID int64) func() {
	for {
		mt := s.getRoomMutex(roomID)
		if !s.acquire(roomID, mt) {
			continue
		}
		return func() {
			mt.lastUsed.Store(time.Now().Unix())
			mt.mu.Unlock()
		}
	}
}

// acquire locks mt and keeps it only if it is still the room's entry. Cleanup
// may have dropped mt between getRoomMutex and Lock, in which case a newer
// mutex guards the room and the caller must retry.
func (s *RoomLockService) acquire(roomID int64, mt *mutexWithTimestamp) bool {
	mt.mu.Lock()
	if current, ok := s.roomMu.Load(roomID); ok && current == mt {
		return true
	}
	mt.mu.Unlock()
	return false
}

func (s *RoomLockService) getRoomMutex(roomID int64) *mutexWithTimestamp {
	mt, _ := s.roomMu.LoadOrStore(roomID, &mutexWithTimestamp{})
	result := mt.(*mutexWithTimestamp)
	result.lastUsed.Store(time.Now().Unix())
	return result
}

func (s *RoomLockService) cleanupMutexMapLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(mutexCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			s.log.Debug("Room mutex cleanup goroutine stopping")
			return
		case <-ticker.C:
			s.cleanupStaleMutexes(time.Now().Add(-mutexStaleThreshold))
		}
	}
}

// cleanupStaleMutexes drops mutexes unused since cutoff. Held mutexes are
// skipped; a caller that fetched a dropped one retries in acquire.
func (s *RoomLockService) cleanupStaleMutexes(cutoff time.Time) int {
	cutoffUnix := cutoff.Unix()
	var cleaned int

	s.roomMu.Range(func(key, value any) bool {
		mt, ok := value.(*mutexWithTimestamp)
		if !ok {
			return true
		}

		if mt.mu.TryLock() {
			if mt.lastUsed.Load() < cutoffUnix {
				s.roomMu.Delete(key)
				cleaned++
			}
			mt.mu.Unlock()
		}
		return true
	})

	if cleaned > 0 {
		s.log.Debugf("Cleaned up %d stale room mutexes", cleaned)
	}
	return cleaned
}
