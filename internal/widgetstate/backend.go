package widgetstate

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"
)

// Backend is the durable side of the widget state store. Load is called once
// at startup; Save receives the full state map after every mutation.
type Backend interface {
	Load() (map[string]map[string]any, error)
	Save(states map[string]map[string]any) error
}

// FileBackend persists the state map as one JSON file, the local-storage
// analog for a single-user install.
type FileBackend struct {
	path string
}

func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

func (f *FileBackend) Load() (map[string]map[string]any, error) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]map[string]any{}, nil
		}
		return nil, err
	}
	states := map[string]map[string]any{}
	if err := json.Unmarshal(b, &states); err != nil {
		return nil, err
	}
	return states, nil
}

func (f *FileBackend) Save(states map[string]map[string]any) error {
	b, err := json.Marshal(states)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	// Write-then-rename so a crash mid-write cannot corrupt the file.
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

// RedisBackend keeps the serialized state map under a single key. Used when
// a Redis address is configured.
type RedisBackend struct {
	rdb *redis.Client
	key string
}

func NewRedisBackend(rdb *redis.Client, key string) *RedisBackend {
	if key == "" {
		key = "cubedeck:widget-state"
	}
	return &RedisBackend{rdb: rdb, key: key}
}

func (r *RedisBackend) Load() (map[string]map[string]any, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	b, err := r.rdb.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return map[string]map[string]any{}, nil
		}
		return nil, err
	}
	states := map[string]map[string]any{}
	if err := json.Unmarshal(b, &states); err != nil {
		return nil, err
	}
	return states, nil
}

func (r *RedisBackend) Save(states map[string]map[string]any) error {
	b, err := json.Marshal(states)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return r.rdb.Set(ctx, r.key, b, 0).Err()
}
