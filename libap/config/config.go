// Package config resolves apocryphad's runtime configuration from
// AP_-prefixed environment variables via spf13/viper, with flags
// (bound by the cmd/apocryphad cobra command) taking precedence over
// environment, which takes precedence over these defaults.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/Gandalf-/apocrypha/libap/logging"
)

// Config holds every apocryphad runtime setting.
type Config struct {
	// Host is the address advertised for a future clustering/node mode.
	// It is not used by the core query engine.
	Host string

	// Port is the TCP port the query server listens on.
	Port int

	// DBPath is the path to the JSON file the root document is loaded
	// from and flushed to.
	DBPath string

	// FlushInterval is how often the persistence loop checks the dirty
	// flag and, if set, writes a snapshot to disk.
	FlushInterval time.Duration

	// CacheSize bounds the number of entries the query cache holds.
	CacheSize int

	// HealthPort serves /healthz, /readyz, and /metrics.
	HealthPort int

	Logging logging.Config
}

// Defaults returns the configuration apocryphad runs with when no
// environment variables or flags override it.
func Defaults() Config {
	home, err := os.UserHomeDir()
	dbPath := ".db.json"
	if err == nil {
		dbPath = filepath.Join(home, ".db.json")
	}
	return Config{
		Host:          "",
		Port:          9999,
		DBPath:        dbPath,
		FlushInterval: time.Second,
		CacheSize:     1024,
		HealthPort:    8080,
		Logging: logging.Config{
			Style: logging.StyleTerminal,
			Level: logging.LevelInfo,
		},
	}
}

// Load resolves Config from the AP_-prefixed environment variables
// from the environment, layered over Defaults().
func Load() Config {
	c := Defaults()

	v := viper.New()
	v.SetEnvPrefix("AP")
	v.AutomaticEnv()

	if host := v.GetString("HOST"); host != "" {
		c.Host = host
	}
	if v.IsSet("PORT") {
		c.Port = v.GetInt("PORT")
	}
	if cnfg := v.GetString("CNFG"); cnfg != "" {
		c.DBPath = cnfg
	}
	if v.IsSet("FLUSH_INTERVAL_MS") {
		c.FlushInterval = time.Duration(v.GetInt64("FLUSH_INTERVAL_MS")) * time.Millisecond
	}
	if v.IsSet("CACHE_SIZE") {
		c.CacheSize = v.GetInt("CACHE_SIZE")
	}
	if v.IsSet("HEALTH_PORT") {
		c.HealthPort = v.GetInt("HEALTH_PORT")
	}
	if style := v.GetString("LOG_STYLE"); style != "" {
		c.Logging.Style = logging.Style(style)
	}
	if level := v.GetString("LOG_LEVEL"); level != "" {
		c.Logging.Level = logging.Level(level)
	}

	return c
}
