package challenges

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/shelfsync/internal/common"
	"github.com/dmitrijs2005/shelfsync/internal/logging"
	"github.com/google/uuid"
)

// expiredRetention is how long Purge remembers the id of an expired
// challenge, so a late code submission still reads as expired.
const expiredRetention = time.Hour

// MemoryStore is a mutex-guarded in-memory Store.
//
// Purge moves expired entries to a tombstone set that keeps only the
// creation time; the credentials are dropped.
type MemoryStore struct {
	mu      sync.Mutex
	items   map[string]Challenge
	expired map[string]time.Time
	ttl     time.Duration
	log     logging.Logger

	now   func() time.Time
	newID func() string
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns a store whose entries live for ttl
// (common.ChallengeValidity when ttl is not positive).
func NewMemoryStore(ttl time.Duration, log logging.Logger) *MemoryStore {
	if ttl <= 0 {
		ttl = common.ChallengeValidity
	}
	if log == nil {
		log = logging.Nop()
	}
	return &MemoryStore{
		items:   make(map[string]Challenge),
		expired: make(map[string]time.Time),
		ttl:     ttl,
		log:     log,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

func (s *MemoryStore) Create(_ context.Context, c Challenge) (*Challenge, error) {
	c.ID = s.newID()
	c.CreatedAt = s.now()

	s.mu.Lock()
	s.items[c.ID] = c
	s.mu.Unlock()

	return &c, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(id, false)
}

func (s *MemoryStore) Take(_ context.Context, id string) (*Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(id, true)
}

// lookup must be called with mu held.
func (s *MemoryStore) lookup(id string, take bool) (*Challenge, error) {
	c, ok := s.items[id]
	if !ok {
		if _, gone := s.expired[id]; gone {
			delete(s.expired, id)
			return nil, common.ErrChallengeExpired
		}
		return nil, common.ErrChallengeNotFound
	}
	if s.isExpired(c.CreatedAt, s.now()) {
		delete(s.items, id)
		return nil, common.ErrChallengeExpired
	}
	if take {
		delete(s.items, id)
	}
	return &c, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.items, id)
	delete(s.expired, id)
	s.mu.Unlock()
	return nil
}

// Len is the number of pending entries, expired ones included until the
// next Purge.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Purge turns expired entries into tombstones and forgets tombstones older
// than expiredRetention. It returns how many pending entries were dropped.
func (s *MemoryStore) Purge() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, c := range s.items {
		if s.isExpired(c.CreatedAt, now) {
			delete(s.items, id)
			s.expired[id] = c.CreatedAt
			n++
		}
	}
	for id, created := range s.expired {
		if now.Sub(created) > s.ttl+expiredRetention {
			delete(s.expired, id)
		}
	}
	return n
}

// StartJanitor purges expired entries every interval until ctx is done.
func (s *MemoryStore) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.Purge(); n > 0 {
					s.log.Debug(ctx, "purged expired challenges", "count", n)
				}
			}
		}
	}()
}

func (s *MemoryStore) isExpired(created, now time.Time) bool {
	return now.Sub(created) > s.ttl
}
