// Package assets handles viewer asset loading and caching.
package assets

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Faultbox/meshview/pkg/formats"
)

// Manager loads assets from a set of search directories.
type Manager struct {
	paths []string
	cache *Cache
	mu    sync.RWMutex
}

// NewManager creates a new asset manager.
func NewManager() *Manager {
	return &Manager{
		cache: NewCache(),
	}
}

// AddSearchPath adds a directory to the manager.
// Directories are searched in reverse order (last added = highest priority).
func (m *Manager) AddSearchPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("adding search path %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("adding search path %s: not a directory", path)
	}

	m.mu.Lock()
	m.paths = append(m.paths, path)
	m.mu.Unlock()

	return nil
}

// Load loads a file by asset path, trying the path as given before the
// search directories.
func (m *Manager) Load(path string) ([]byte, error) {
	// Check cache first
	if data, ok := m.cache.Get(path); ok {
		return data, nil
	}

	// Paths that resolve as given (absolute, or relative to the working
	// directory) bypass the search directories.
	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading asset %s: %w", path, err)
		}
		m.cache.Set(path, data)
		return data, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	// Search directories in reverse order
	for i := len(m.paths) - 1; i >= 0; i-- {
		data, err := os.ReadFile(filepath.Join(m.paths[i], path))
		if err == nil {
			m.cache.Set(path, data)
			return data, nil
		}
	}

	return nil, fmt.Errorf("asset not found: %s", path)
}

// LoadModel loads and parses an OBJ model file.
func (m *Manager) LoadModel(path string) ([]formats.Model, error) {
	data, err := m.Load(path)
	if err != nil {
		return nil, err
	}
	models, err := formats.ParseOBJ(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing model %s: %w", path, err)
	}
	return models, nil
}

// LoadTexture loads and parses a TGA texture file.
func (m *Manager) LoadTexture(path string) (*formats.TGA, error) {
	data, err := m.Load(path)
	if err != nil {
		return nil, err
	}
	tga, err := formats.ParseTGA(data)
	if err != nil {
		return nil, fmt.Errorf("parsing texture %s: %w", path, err)
	}
	return tga, nil
}

// Close releases the search paths and cached data.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.paths = nil
	m.cache.Clear()
}

// Cache is a simple in-memory cache for loaded assets.
type Cache struct {
	data map[string][]byte
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
