package correlation

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	ierr "github.com/surveyloop/surveyloop/internal/errors"
)

// Entry correlates an anonymous marketplace purchase token with the
// OAuth state parameter while the identity-linking handshake is in
// flight.
type Entry struct {
	MarketplaceToken string
	CreatedAt        time.Time
}

// Store is a short-lived key→entry map. Entries expire on a timer to
// bound memory growth and close the replay window, and are deleted on
// first successful read so a state value is never consumable twice.
type Store struct {
	// mu serializes TakeOnce: the cache's own locks cover Get and
	// Delete individually, not the pair, and two concurrent callbacks
	// replaying one state must not both read the entry.
	mu    sync.Mutex
	cache *gocache.Cache
	ttl   time.Duration
}

// NewStore creates a correlation store whose entries live for ttl.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		cache: gocache.New(ttl, ttl),
		ttl:   ttl,
	}
}

// Put stores an entry under the given state key.
func (s *Store) Put(stateID string, entry Entry) {
	s.cache.Set(stateID, entry, s.ttl)
}

// TakeOnce atomically consumes the entry for the given state key. The
// second take of the same key fails regardless of TTL.
func (s *Store) TakeOnce(stateID string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, found := s.cache.Get(stateID)
	if !found {
		return Entry{}, ierr.NewError("correlation state not found or expired").
			WithHint("Session expired, please restart the purchase flow").
			Mark(ierr.ErrNotFound)
	}
	s.cache.Delete(stateID)

	entry, ok := value.(Entry)
	if !ok {
		return Entry{}, ierr.NewError("unexpected correlation entry type").
			Mark(ierr.ErrInternal)
	}
	return entry, nil
}
