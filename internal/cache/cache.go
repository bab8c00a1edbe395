package cache

import (
	"context"
	"regexp"
	"sync"
	"time"

	"github.com/AliceDavies2025/clincerta/internal/models"
	"github.com/AliceDavies2025/clincerta/pkg/logger"
)

const (
	// DefaultMaxEntries bounds the cache size; the oldest entries past
	// the bound are evicted on write.
	DefaultMaxEntries = 50
	// DefaultMaxAge is how long an entry stays readable.
	DefaultMaxAge = 24 * time.Hour
	// DefaultSweepInterval is how often the background sweep expires
	// stale entries.
	DefaultSweepInterval = time.Hour
	// CompressThreshold is the text size above which stored text gets
	// whitespace-collapse normalization.
	CompressThreshold = 100 * 1024
)

// Config tunes the document cache.
type Config struct {
	MaxEntries    int
	MaxAge        time.Duration
	SweepInterval time.Duration
}

func DefaultCacheConfig() Config {
	return Config{
		MaxEntries:    DefaultMaxEntries,
		MaxAge:        DefaultMaxAge,
		SweepInterval: DefaultSweepInterval,
	}
}

// DocumentCache maps a file fingerprint to previously extracted text so
// re-uploads skip extraction. Entries are ordered most-recently-used
// first; all mutation is serialized behind one mutex. Store failures
// never reach callers: reads degrade to misses, a failed write clears
// the cache as a recovery heuristic.
type DocumentCache struct {
	mu      sync.Mutex
	entries []Entry
	loaded  bool

	store  Store
	cfg    Config
	logger logger.Logger

	stopSweep chan struct{}
	sweepOnce sync.Once
}

func NewDocumentCache(store Store, cfg Config, log logger.Logger) *DocumentCache {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultMaxEntries
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = DefaultMaxAge
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	return &DocumentCache{
		store:     store,
		cfg:       cfg,
		logger:    log,
		stopSweep: make(chan struct{}),
	}
}

// Start launches the periodic expiry sweep. The sweep stops when the
// context is cancelled or Stop is called, so shutdown is deterministic.
func (c *DocumentCache) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(c.cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.Cleanup(ctx)
			case <-ctx.Done():
				return
			case <-c.stopSweep:
				return
			}
		}
	}()
}

// Stop cancels the background sweep. Safe to call more than once.
func (c *DocumentCache) Stop() {
	c.sweepOnce.Do(func() { close(c.stopSweep) })
}

// IsCached reports whether a live entry exists for the document.
func (c *DocumentCache) IsCached(ctx context.Context, doc *models.SourceDocument) bool {
	return c.CachedText(ctx, doc) != nil
}

// CachedText returns the stored text for the document, or nil on a
// miss. A hit refreshes the entry's timestamp and moves it to the
// front of the recency order.
func (c *DocumentCache) CachedText(ctx context.Context, doc *models.SourceDocument) *Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoaded(ctx)

	fp := Fingerprint(doc.FileName, doc.Size, doc.LastModified)
	now := time.Now()

	for i, entry := range c.entries {
		if entry.ID != fp {
			continue
		}
		if now.Sub(entry.Timestamp) > c.cfg.MaxAge {
			// Expired entries are invisible; the sweep removes them.
			return nil
		}

		entry.Timestamp = now
		c.entries = append(c.entries[:i], c.entries[i+1:]...)
		c.entries = append([]Entry{entry}, c.entries...)
		c.persist(ctx)
		return &entry
	}
	return nil
}

// Put stores extracted text for the document, replacing any entry with
// the same fingerprint, inserting at the front and evicting the oldest
// entries past the size cap.
func (c *DocumentCache) Put(ctx context.Context, doc *models.SourceDocument, text string, isScanned, ocrApplied bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoaded(ctx)

	fp := Fingerprint(doc.FileName, doc.Size, doc.LastModified)

	for i, entry := range c.entries {
		if entry.ID == fp {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			break
		}
	}

	entry := Entry{
		ID:         fp,
		FileName:   doc.FileName,
		Text:       CompressText(text),
		FileType:   doc.MediaType,
		FileSize:   doc.Size,
		IsScanned:  isScanned,
		OCRApplied: ocrApplied,
		Timestamp:  time.Now(),
		Hash:       fp,
	}

	c.entries = append([]Entry{entry}, c.entries...)
	if len(c.entries) > c.cfg.MaxEntries {
		c.entries = c.entries[:c.cfg.MaxEntries]
	}
	c.persist(ctx)
}

// Remove drops the entry for the document, if present.
func (c *DocumentCache) Remove(ctx context.Context, doc *models.SourceDocument) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoaded(ctx)

	fp := Fingerprint(doc.FileName, doc.Size, doc.LastModified)
	for i, entry := range c.entries {
		if entry.ID == fp {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			c.persist(ctx)
			return
		}
	}
}

// Clear drops every entry.
func (c *DocumentCache) Clear(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = true
	c.entries = nil
	if err := c.store.Save(ctx, nil); err != nil {
		c.logger.Warn("cache store clear failed", logger.Error(err))
	}
}

// Cleanup removes entries older than the max age.
func (c *DocumentCache) Cleanup(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoaded(ctx)

	now := time.Now()
	kept := c.entries[:0]
	removed := 0
	for _, entry := range c.entries {
		if now.Sub(entry.Timestamp) > c.cfg.MaxAge {
			removed++
			continue
		}
		kept = append(kept, entry)
	}
	if removed > 0 {
		c.entries = kept
		c.persist(ctx)
		c.logger.Info("cache sweep removed expired entries", logger.Int("removed", removed))
	}
}

// Stats describes the cache contents.
type Stats struct {
	TotalDocuments int       `json:"totalDocuments"`
	TotalBytes     int64     `json:"totalBytes"`
	Oldest         time.Time `json:"oldest,omitempty"`
	Newest         time.Time `json:"newest,omitempty"`
}

func (c *DocumentCache) Stats(ctx context.Context) Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoaded(ctx)

	stats := Stats{TotalDocuments: len(c.entries)}
	for _, entry := range c.entries {
		stats.TotalBytes += int64(len(entry.Text))
		if stats.Oldest.IsZero() || entry.Timestamp.Before(stats.Oldest) {
			stats.Oldest = entry.Timestamp
		}
		if entry.Timestamp.After(stats.Newest) {
			stats.Newest = entry.Timestamp
		}
	}
	return stats
}

// ensureLoaded pulls the collection from the backing store once. A
// load failure is a cold cache, not an error. Caller holds the mutex.
func (c *DocumentCache) ensureLoaded(ctx context.Context) {
	if c.loaded {
		return
	}
	c.loaded = true

	entries, err := c.store.Load(ctx)
	if err != nil {
		c.logger.Warn("cache store load failed, starting cold", logger.Error(err))
		return
	}
	c.entries = entries
}

// persist writes the whole collection back. On failure the cache
// clears itself rather than surfacing the error. Caller holds the mutex.
func (c *DocumentCache) persist(ctx context.Context) {
	if err := c.store.Save(ctx, c.entries); err != nil {
		c.logger.Warn("cache store write failed, clearing cache", logger.Error(err))
		c.entries = nil
	}
}

var (
	spaceRuns     = regexp.MustCompile(`[ \t]+`)
	blankLineRuns = regexp.MustCompile(`\n{3,}`)
)

// CompressText normalizes whitespace in texts above the threshold as a
// crude size reduction. The collapse is not reversible; cached reads
// return the normalized form, which is accepted and documented.
func CompressText(text string) string {
	if len(text) <= CompressThreshold {
		return text
	}
	text = spaceRuns.ReplaceAllString(text, " ")
	return blankLineRuns.ReplaceAllString(text, "\n\n")
}
