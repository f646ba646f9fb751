package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rpattn/engtrack/internal/db"
	"github.com/spf13/viper"
)

// Storage drivers.
const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StoragePostgres = "postgres"
)

// Config is the full runtime configuration of the server and CLI.
type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Storage  StorageConfig
	Database db.Config
	Import   ImportConfig
	Export   ExportConfig
}

type ServerConfig struct {
	Addr           string
	MaxUploadBytes int64
	CORSOrigins    []string
}

type LogConfig struct {
	Level  string
	Format string
}

type StorageConfig struct {
	Driver string
	Dir    string
}

type ImportConfig struct {
	DuplicatePolicy string
}

type ExportConfig struct {
	SampleStyle string
}

// Load reads config.yaml from configPath (when present) and applies
// ENGTRACK_* environment overrides, e.g. ENGTRACK_STORAGE_DRIVER.
func Load(configPath string) (Config, bool, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.SetEnvPrefix("ENGTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	loaded := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, false, fmt.Errorf("failed to read config: %w", err)
		}
		loaded = false
	}

	cfg := Config{
		Server: ServerConfig{
			Addr:           v.GetString("server.addr"),
			MaxUploadBytes: v.GetInt64("server.max_upload_bytes"),
			CORSOrigins:    splitList(v.GetStringSlice("server.cors_origins")),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(strings.TrimSpace(v.GetString("storage.driver"))),
			Dir:    v.GetString("storage.dir"),
		},
		Database: db.Config{
			Host:     v.GetString("database.host"),
			Port:     v.GetInt("database.port"),
			User:     v.GetString("database.user"),
			Password: v.GetString("database.password"),
			DBName:   v.GetString("database.dbname"),
			SSLMode:  v.GetString("database.sslmode"),
		},
		Import: ImportConfig{DuplicatePolicy: v.GetString("import.duplicate_policy")},
		Export: ExportConfig{SampleStyle: v.GetString("export.sample_style")},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, loaded, err
	}
	return cfg, loaded, nil
}

// Validate rejects settings the services cannot run with.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case StorageMemory:
	case StorageFile:
		if strings.TrimSpace(c.Storage.Dir) == "" {
			return fmt.Errorf("storage.dir is required for the file driver")
		}
	case StoragePostgres:
		if c.Database.Host == "" || c.Database.DBName == "" {
			return fmt.Errorf("database.host and database.dbname are required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown storage driver: %s", c.Storage.Driver)
	}
	if c.Server.MaxUploadBytes < 0 {
		return fmt.Errorf("server.max_upload_bytes must not be negative")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	dbDefaults := db.DefaultConfig()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.max_upload_bytes", 32<<20)
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("storage.driver", StorageFile)
	v.SetDefault("storage.dir", "./data")
	v.SetDefault("database.host", dbDefaults.Host)
	v.SetDefault("database.port", dbDefaults.Port)
	v.SetDefault("database.user", dbDefaults.User)
	v.SetDefault("database.password", dbDefaults.Password)
	v.SetDefault("database.dbname", dbDefaults.DBName)
	v.SetDefault("database.sslmode", dbDefaults.SSLMode)
	v.SetDefault("import.duplicate_policy", "merge")
	v.SetDefault("export.sample_style", "template")
}

// splitList accepts both YAML lists and comma separated env values.
func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
	}
	return out
}
