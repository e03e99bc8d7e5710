package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/regionspawn/internal/spawn"
)

// Storage backends.
const (
	StoragePostgres = "postgres"
	StorageFile     = "file"
)

// SpawnServer holds all configuration for the spawn server.
type SpawnServer struct {
	LogLevel string `yaml:"log_level"`

	// Loops
	TickInterval     time.Duration `yaml:"tick_interval"`     // one game tick (default: 50ms)
	AutosaveInterval time.Duration `yaml:"autosave_interval"` // 0 disables autosave

	// Scheduler
	MaxAttemptsPerSpawn   int   `yaml:"max_attempts_per_spawn"`
	StartJitterTicks      int64 `yaml:"start_jitter_ticks"`
	CullOnStop            bool  `yaml:"cull_on_stop"`
	VisualizationInterval int64 `yaml:"visualization_interval"` // ticks

	// Persistence
	Storage     string         `yaml:"storage"` // postgres | file
	RegionsFile string         `yaml:"regions_file"`
	Database    DatabaseConfig `yaml:"database"`

	World WorldConfig `yaml:"world"`

	// Species lists the known species and their forms. Empty accepts
	// every species with only the default form.
	Species map[string][]string `yaml:"species"`
}

// WorldConfig shapes the bundled flat worlds.
type WorldConfig struct {
	Dimensions []string `yaml:"dimensions"`
	FlatRadius int32    `yaml:"flat_radius"`
	GroundY    int32    `yaml:"ground_y"`
	TopY       int32    `yaml:"top_y"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultSpawnServer returns SpawnServer config with sensible defaults.
func DefaultSpawnServer() SpawnServer {
	return SpawnServer{
		LogLevel:              "info",
		TickInterval:          50 * time.Millisecond,
		AutosaveInterval:      5 * time.Minute,
		MaxAttemptsPerSpawn:   5,
		StartJitterTicks:      5,
		CullOnStop:            true,
		VisualizationInterval: 20,
		Storage:               StorageFile,
		RegionsFile:           "data/regions.yaml",
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "regionspawn",
			Password: "regionspawn",
			DBName:   "regionspawn",
			SSLMode:  "disable",
		},
		World: WorldConfig{
			Dimensions: []string{"minimal:overworld"},
			FlatRadius: 64,
			GroundY:    63,
			TopY:       319,
		},
	}
}

// Validate checks values that have no usable fallback.
func (c SpawnServer) Validate() error {
	var errs []error
	if c.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("tick_interval must be positive, got %s", c.TickInterval))
	}
	if c.AutosaveInterval < 0 {
		errs = append(errs, fmt.Errorf("autosave_interval must not be negative, got %s", c.AutosaveInterval))
	}
	if c.MaxAttemptsPerSpawn < 1 {
		errs = append(errs, fmt.Errorf("max_attempts_per_spawn must be at least 1, got %d", c.MaxAttemptsPerSpawn))
	}
	if c.StartJitterTicks < 0 {
		errs = append(errs, fmt.Errorf("start_jitter_ticks must not be negative, got %d", c.StartJitterTicks))
	}
	switch c.Storage {
	case StoragePostgres:
	case StorageFile:
		if c.RegionsFile == "" {
			errs = append(errs, errors.New("regions_file is required for file storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage %q", c.Storage))
	}
	if len(c.World.Dimensions) == 0 {
		errs = append(errs, errors.New("world.dimensions must list at least one dimension"))
	}
	return errors.Join(errs...)
}

// ManagerConfig returns the spawn manager settings.
func (c SpawnServer) ManagerConfig() spawn.ManagerConfig {
	return spawn.ManagerConfig{
		Scheduler: spawn.SchedulerConfig{
			MaxAttemptsPerSpawn: c.MaxAttemptsPerSpawn,
			StartJitterTicks:    c.StartJitterTicks,
		},
		CullOnStop:            c.CullOnStop,
		VisualizationInterval: c.VisualizationInterval,
	}
}

// LoadSpawnServer loads spawn server config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadSpawnServer(path string) (SpawnServer, error) {
	cfg := DefaultSpawnServer()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
