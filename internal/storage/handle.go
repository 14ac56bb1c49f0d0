package storage

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultHandleTTL is how long an opened store handle is reused before it is recycled.
const DefaultHandleTTL = 5 * time.Second

// Handle owns the single live store connection. DB reopens it once it is
// older than the TTL; Close releases it for shutdown.
// All repositories acquire the store through a Handle.
type Handle struct {
	path          string
	ttl           time.Duration
	busyTimeoutMs int
	logger        *slog.Logger
	now           func() time.Time

	mu       sync.Mutex
	db       *DB
	openedAt time.Time
}

// HandleOptions configures a Handle. Zero values select the defaults.
type HandleOptions struct {
	TTL           time.Duration
	BusyTimeoutMs int
}

// NewHandle creates a handle for the store at path. Nothing is opened until DB is called.
func NewHandle(path string, opts HandleOptions, logger *slog.Logger) *Handle {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultHandleTTL
	}
	return &Handle{
		path:          path,
		ttl:           ttl,
		busyTimeoutMs: opts.BusyTimeoutMs,
		logger:        logger,
		now:           time.Now,
	}
}

// DB returns the live store, opening a new one when none exists or the
// current one has outlived the TTL. Errors closing a stale handle are ignored.
func (h *Handle) DB() (*DB, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	if h.db != nil && now.Sub(h.openedAt) <= h.ttl {
		return h.db, nil
	}

	if h.db != nil {
		_ = h.db.Close()
		h.db = nil
	}

	db, err := Open(h.path, h.busyTimeoutMs, h.logger)
	if err != nil {
		return nil, err
	}

	h.db = db
	h.openedAt = now
	return db, nil
}

// Close closes and forgets the cached store, ignoring close errors.
func (h *Handle) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.db != nil {
		_ = h.db.Close()
		h.db = nil
	}
}

// Path returns the store file path.
func (h *Handle) Path() string {
	return h.path
}
