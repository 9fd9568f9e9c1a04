// Package assets loads fonts and sounds from disk with an in-memory cache.
package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"

	"github.com/Faultbox/textensions/pkg/textmesh"
)

// ErrNotFound is returned when no search directory holds the asset.
var ErrNotFound = errors.New("asset not found")

// Manager resolves asset paths against a list of directories.
// Directories are searched in reverse order (last added = highest priority),
// after the path itself.
type Manager struct {
	dirs  []string
	cache *Cache
	fonts map[string]*opentype.Font
	mu    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		cache: NewCache(),
		fonts: make(map[string]*opentype.Font),
	}
}

// AddDir adds a search directory.
func (m *Manager) AddDir(dir string) {
	m.mu.Lock()
	m.dirs = append(m.dirs, dir)
	m.mu.Unlock()
}

// Load returns the content of path, reading it at most once.
func (m *Manager) Load(path string) ([]byte, error) {
	if data, ok := m.cache.Get(path); ok {
		return data, nil
	}

	for _, candidate := range m.candidates(path) {
		data, err := os.ReadFile(candidate)
		if err == nil {
			m.cache.Set(path, data)
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", candidate, err)
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
}

func (m *Manager) candidates(path string) []string {
	out := []string{path}
	if filepath.IsAbs(path) {
		return out
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := len(m.dirs) - 1; i >= 0; i-- {
		out = append(out, filepath.Join(m.dirs[i], path))
	}
	return out
}

// Face returns a face of the TrueType or OpenType font at path. An empty path
// selects the bundled Go Regular font.
func (m *Manager) Face(path string, size float64) (font.Face, error) {
	if path == "" {
		return textmesh.DefaultFace(size)
	}

	m.mu.RLock()
	f, ok := m.fonts[path]
	m.mu.RUnlock()

	if !ok {
		data, err := m.Load(path)
		if err != nil {
			return nil, err
		}
		f, err = opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parsing font %s: %w", path, err)
		}
		m.mu.Lock()
		m.fonts[path] = f
		m.mu.Unlock()
	}

	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// Close drops every cached asset.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	clear(m.fonts)
	m.cache.Clear()
}

// Cache is a simple in-memory cache for loaded assets.
type Cache struct {
	data map[string][]byte
	mu   sync.Mutex

	// Stats
	hits   int
	misses int
}

func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

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
	clear(c.data)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
