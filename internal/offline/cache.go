package offline

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/five82/technician/internal/espm"
)

// ErrNoCache is returned when no cached document has been written yet.
var ErrNoCache = errors.New("no offline data cached")

const cacheFileName = "espm-cache.json"

// document is the on-disk layout of the offline store.
type document struct {
	Products    []espm.Product          `json:"products"`
	SalesOrders []espm.SalesOrderHeader `json:"salesOrders"`
	Pending     []espm.Product          `json:"pending"`
	SavedAt     time.Time               `json:"savedAt"`
}

// Cache persists the last good entity sets and unsent edits. Access is
// serialized across processes with a lock file next to the document; the
// flock handle does not exclude goroutines of the same process, mu does.
type Cache struct {
	mu   sync.Mutex
	path string
	lock *flock.Flock
}

// OpenCache prepares a cache rooted at dir, creating it when needed.
func OpenCache(dir string) (*Cache, error) {
	if dir == "" {
		return nil, fmt.Errorf("cache dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	path := filepath.Join(dir, cacheFileName)
	return &Cache{
		path: path,
		lock: flock.New(path + ".lock"),
	}, nil
}

// Path returns the document location.
func (c *Cache) Path() string {
	return c.path
}

func (c *Cache) read() (document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.lock.RLock(); err != nil {
		return document{}, fmt.Errorf("lock cache: %w", err)
	}
	defer func() { _ = c.lock.Unlock() }()
	return c.load()
}

// update applies fn to the current document under an exclusive lock and
// writes the result atomically. A missing document starts empty.
func (c *Cache) update(fn func(*document)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.lock.Lock(); err != nil {
		return fmt.Errorf("lock cache: %w", err)
	}
	defer func() { _ = c.lock.Unlock() }()

	doc, err := c.load()
	if err != nil && !errors.Is(err, ErrNoCache) {
		return err
	}
	fn(&doc)
	doc.SavedAt = time.Now()
	return c.write(doc)
}

func (c *Cache) load() (document, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return document{}, ErrNoCache
		}
		return document{}, fmt.Errorf("read cache: %w", err)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return document{}, fmt.Errorf("parse cache: %w", err)
	}
	return doc, nil
}

func (c *Cache) write(doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("replace cache: %w", err)
	}
	return nil
}
