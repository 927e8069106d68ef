package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// FileStore keeps preferences in a single JSON file, rewritten on every Set
type FileStore struct {
	filePath string
	values   map[string]storedValue
	mu       sync.RWMutex
}

type storedValue struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewFileStore opens (or creates) the preference file at filePath
func NewFileStore(filePath string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	fs := &FileStore{
		filePath: filePath,
		values:   make(map[string]storedValue),
	}

	if err := fs.load(); err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	return fs, nil
}

func (fs *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	v, ok := fs.values[key]
	return v.Value, ok, nil
}

func (fs *FileStore) Set(_ context.Context, key, value string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.values[key] = storedValue{Key: key, Value: value, UpdatedAt: time.Now()}
	return fs.save()
}

func (fs *FileStore) Close() error { return nil }

func (fs *FileStore) load() error {
	file, err := os.Open(fs.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			// First run
			return nil
		}
		return fmt.Errorf("failed to open preference file: %w", err)
	}
	defer file.Close()

	var stored []storedValue
	if err := json.NewDecoder(file).Decode(&stored); err != nil {
		return fmt.Errorf("failed to decode preference data: %w", err)
	}

	for _, v := range stored {
		fs.values[v.Key] = v
	}
	return nil
}

// save writes a temp file and renames it over the old one
func (fs *FileStore) save() error {
	stored := make([]storedValue, 0, len(fs.values))
	for _, v := range fs.values {
		stored = append(stored, v)
	}

	tmp := fs.filePath + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(stored); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	return os.Rename(tmp, fs.filePath)
}
