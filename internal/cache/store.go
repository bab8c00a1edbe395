package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Entry is one cached extraction keyed by fingerprint. Entries are
// kept most-recently-used first.
type Entry struct {
	ID         string    `json:"id"`
	FileName   string    `json:"fileName"`
	Text       string    `json:"text"`
	FileType   string    `json:"fileType"`
	FileSize   int64     `json:"fileSize"`
	IsScanned  bool      `json:"isScanned"`
	OCRApplied bool      `json:"ocrApplied"`
	Timestamp  time.Time `json:"timestamp"`
	Hash       string    `json:"hash"`
}

// Store persists the whole entry collection as a single blob under a
// fixed key. Saves are O(n) in entry count, accepted for bounded n.
type Store interface {
	Load(ctx context.Context) ([]Entry, error)
	Save(ctx context.Context, entries []Entry) error
}

const redisCacheKey = "clincerta:doccache"

// RedisStore keeps the serialized collection in one redis string key.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Load(ctx context.Context) ([]Entry, error) {
	data, err := s.client.Get(ctx, redisCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cache blob: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode cache blob: %w", err)
	}
	return entries, nil
}

func (s *RedisStore) Save(ctx context.Context, entries []Entry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode cache blob: %w", err)
	}
	if err := s.client.Set(ctx, redisCacheKey, data, 0).Err(); err != nil {
		return fmt.Errorf("save cache blob: %w", err)
	}
	return nil
}

// MemoryStore is the in-process backend used by tests and by callers
// that run without redis.
type MemoryStore struct {
	mu      sync.Mutex
	entries []Entry

	// FailSaves makes every Save return an error, for exercising the
	// cache's write-failure recovery path.
	FailSaves bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(ctx context.Context) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

func (s *MemoryStore) Save(ctx context.Context, entries []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSaves {
		return errors.New("store quota exceeded")
	}
	s.entries = make([]Entry, len(entries))
	copy(s.entries, entries)
	return nil
}
