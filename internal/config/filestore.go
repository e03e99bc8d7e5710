package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/regionspawn/internal/model"
)

// regionFile is the on-disk layout of a FileStore.
type regionFile struct {
	Regions    []model.Region `yaml:"regions"`
	SpawnTicks []spawnTick    `yaml:"spawn_ticks,omitempty"`
}

type spawnTick struct {
	Key    model.Coord `yaml:"key"`
	Offset int64       `yaml:"offset"`
}

// FileStore keeps regions and spawn timers in one YAML file.
// Writes go to a temp file that is renamed over the original.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store backed by path. The file is created on the
// first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// LoadAll returns every stored region. A missing file yields no regions.
func (s *FileStore) LoadAll(ctx context.Context) ([]model.Region, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.read()
	if err != nil {
		return nil, err
	}
	return f.Regions, nil
}

// SaveAll replaces the stored regions.
func (s *FileStore) SaveAll(ctx context.Context, regions []model.Region) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.read()
	if err != nil {
		return err
	}
	f.Regions = regions
	return s.write(f)
}

// LoadSpawnTicks returns the stored spawn timer offsets.
func (s *FileStore) LoadSpawnTicks(ctx context.Context) (map[model.Coord]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.read()
	if err != nil {
		return nil, err
	}
	out := make(map[model.Coord]int64, len(f.SpawnTicks))
	for _, t := range f.SpawnTicks {
		out[t.Key] = t.Offset
	}
	return out, nil
}

// SaveSpawnTicks replaces the stored spawn timer offsets.
func (s *FileStore) SaveSpawnTicks(ctx context.Context, ticks map[model.Coord]int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.read()
	if err != nil {
		return err
	}
	f.SpawnTicks = f.SpawnTicks[:0]
	for key, offset := range ticks {
		f.SpawnTicks = append(f.SpawnTicks, spawnTick{Key: key, Offset: offset})
	}
	slices.SortFunc(f.SpawnTicks, func(a, b spawnTick) int {
		return a.Key.Compare(b.Key)
	})
	return s.write(f)
}

func (s *FileStore) read() (regionFile, error) {
	var f regionFile
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return f, nil
		}
		return f, fmt.Errorf("reading regions %s: %w", s.path, err)
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("parsing regions %s: %w", s.path, err)
	}
	return f, nil
}

func (s *FileStore) write(f regionFile) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encoding regions: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing %s: %w", s.path, err)
	}
	return nil
}
