package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"raiap/internal/domain"
)

// Store kinds accepted by the "store" key.
const (
	StoreFile     = "file"
	StoreBadger   = "badger"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

const (
	envPrefix      = "RAIAP"
	configFileName = "config.yaml"
)

// Config holds runtime wiring options for building the app.
type Config struct {
	Home        string // keystore and file/badger data, e.g. $HOME/.raiap
	Store       string // stream store kind
	RedisURL    string // e.g. redis://127.0.0.1:6379/0
	PostgresDSN string // e.g. postgres://raiap@127.0.0.1/raiap
	LogLevel    string
	LogFormat   string // text or json
	Algorithm   domain.Algorithm

	RecoveryThreshold int
	RecoveryTotal     int
}

// DefaultHome returns ~/.raiap, or .raiap when no home directory is known.
func DefaultHome() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		return ".raiap"
	}
	return filepath.Join(dir, ".raiap")
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("home", DefaultHome())
	v.SetDefault("store", StoreFile)
	v.SetDefault("redis.url", "redis://127.0.0.1:6379/0")
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("key.algorithm", domain.AlgorithmEd25519.String())
	v.SetDefault("recovery.threshold", 3)
	v.SetDefault("recovery.total", 5)
}

// LoadConfig resolves Config from v. Flags must already be bound. A missing
// config file is not an error.
func LoadConfig(v *viper.Viper) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(filepath.Join(v.GetString("home"), configFileName))
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	alg, err := domain.ParseAlgorithm(v.GetString("key.algorithm"))
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		Home:              v.GetString("home"),
		Store:             strings.ToLower(v.GetString("store")),
		RedisURL:          v.GetString("redis.url"),
		PostgresDSN:       v.GetString("postgres.dsn"),
		LogLevel:          v.GetString("log.level"),
		LogFormat:         v.GetString("log.format"),
		Algorithm:         alg,
		RecoveryThreshold: v.GetInt("recovery.threshold"),
		RecoveryTotal:     v.GetInt("recovery.total"),
	}
	return cfg, cfg.Validate()
}

// Validate reports the first inconsistent setting.
func (c Config) Validate() error {
	if c.Home == "" {
		return errors.New("config: home is empty")
	}
	switch c.Store {
	case StoreFile, StoreBadger, StoreMemory:
	case StoreRedis:
		if c.RedisURL == "" {
			return errors.New("config: store=redis needs redis.url")
		}
	case StorePostgres:
		if c.PostgresDSN == "" {
			return errors.New("config: store=postgres needs postgres.dsn")
		}
	default:
		return fmt.Errorf("config: unknown store %q", c.Store)
	}
	if c.RecoveryThreshold < 2 || c.RecoveryTotal < c.RecoveryThreshold || c.RecoveryTotal > 255 {
		return fmt.Errorf("config: recovery needs 2 <= threshold (%d) <= total (%d) <= 255",
			c.RecoveryThreshold, c.RecoveryTotal)
	}
	return nil
}
