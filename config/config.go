package config

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	ServerPort           string `json:"server_port"`
	DatabaseDriver       string `json:"database_driver"`
	DatabasePath         string `json:"database_path"`
	DatabaseDSN          string `json:"database_dsn,omitempty"`
	JWTSecret            string `json:"jwt_secret"`
	Production           bool   `json:"production"`
	SessionDurationHours int    `json:"session_duration_hours"`
	LogLevel             string `json:"log_level"`
	AllowOrigins         string `json:"allow_origins"`
	DefaultMinVotes      int    `json:"default_min_votes"`
	DefaultDeadlineHours int    `json:"default_deadline_hours"`
}

var (
	instance *Config
	once     sync.Once
)

func generateSecret(length int) string {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		panic(err)
	}
	return hex.EncodeToString(bytes)
}

func getConfigPath() string {
	configDir := os.Getenv("MOVES_CONFIG_DIR")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			configDir = "."
		} else {
			configDir = filepath.Join(homeDir, ".moves")
		}
	}
	return filepath.Join(configDir, "config.json")
}

// Default returns a config with every field at its built-in default and no
// secret. Tests start from here.
func Default() *Config {
	return &Config{
		ServerPort:           "5000",
		DatabaseDriver:       DriverSQLite,
		SessionDurationHours: 24,
		LogLevel:             "info",
		AllowOrigins:         "http://localhost:3000",
		DefaultMinVotes:      3,
		DefaultDeadlineHours: 24,
	}
}

// GetConfig loads the config file once, fills in defaults and generated
// secrets, then applies environment overrides.
func GetConfig() *Config {
	once.Do(func() {
		instance = Default()

		configPath := getConfigPath()

		if data, err := os.ReadFile(configPath); err == nil {
			if err := json.Unmarshal(data, instance); err != nil {
				slog.Warn("Config file is corrupted, using defaults", "path", configPath, "error", err)
			}
		}

		instance.applyDefaults()

		needsSave := false
		if instance.JWTSecret == "" {
			instance.JWTSecret = generateSecret(32)
			needsSave = true
		}
		if instance.DatabasePath == "" {
			instance.DatabasePath = filepath.Join(filepath.Dir(configPath), "moves.db")
			needsSave = true
		}

		instance.applyEnv()

		if needsSave {
			if err := instance.Save(); err != nil {
				slog.Warn("Failed to save config", "path", configPath, "error", err)
			}
		}
	})

	return instance
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.ServerPort == "" {
		c.ServerPort = def.ServerPort
	}
	if c.DatabaseDriver == "" {
		c.DatabaseDriver = def.DatabaseDriver
	}
	if c.SessionDurationHours == 0 {
		c.SessionDurationHours = def.SessionDurationHours
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.AllowOrigins == "" {
		c.AllowOrigins = def.AllowOrigins
	}
	if c.DefaultMinVotes < 0 {
		c.DefaultMinVotes = def.DefaultMinVotes
	}
	if c.DefaultDeadlineHours <= 0 {
		c.DefaultDeadlineHours = def.DefaultDeadlineHours
	}
}

func (c *Config) applyEnv() {
	if port := os.Getenv("MOVES_PORT"); port != "" {
		c.ServerPort = port
	}
	if driver := os.Getenv("MOVES_DB_DRIVER"); driver != "" {
		c.DatabaseDriver = driver
	}
	if dbPath := os.Getenv("MOVES_DB_PATH"); dbPath != "" {
		c.DatabasePath = dbPath
	}
	if dsn := os.Getenv("MOVES_DB_DSN"); dsn != "" {
		c.DatabaseDSN = dsn
	}
	if secret := os.Getenv("MOVES_JWT_SECRET"); secret != "" {
		c.JWTSecret = secret
	}
	if level := os.Getenv("MOVES_LOG_LEVEL"); level != "" {
		c.LogLevel = level
	}
	if origins := os.Getenv("MOVES_ALLOW_ORIGINS"); origins != "" {
		c.AllowOrigins = origins
	}
	if os.Getenv("MOVES_PRODUCTION") == "true" {
		c.Production = true
	}
}

func (c *Config) Save() error {
	configPath := getConfigPath()

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0600)
}
