package commands

import (
	"errors"
	"fbwatch/pkg/configutil"
	"fmt"
	"os"
	"time"

	"github.com/mazen160/go-random"
)

type Config struct {
	UserId   string `json:"user_id"`
	CookieXs string `json:"cookie_xs"`
	// ClientId identifies this client to the presence feed, a random one is
	// generated when empty.
	ClientId string `json:"client_id"`
	// Database is a sqlite file path or a libsql:// url.
	Database          string  `json:"database"`
	Timezone          string  `json:"timezone"`
	WatchSchedule     string  `json:"watch_schedule"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	TimeoutSecs       int     `json:"timeout_secs"`
}

// ConfigurationError is returned when the config file misses a required key.
type ConfigurationError struct {
	Key string
}

func (e ConfigurationError) Error() string {
	return fmt.Sprintf("configuration file does not contain '%s'", e.Key)
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

func (c *Config) applyDefaults() error {
	if c.Database == "" {
		c.Database = "fbwatch.db"
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if c.WatchSchedule == "" {
		c.WatchSchedule = "@every 5m"
	}
	if c.RequestsPerSecond == 0 {
		c.RequestsPerSecond = 2
	}
	if c.TimeoutSecs <= 0 {
		c.TimeoutSecs = 15
	}
	if c.ClientId == "" {
		clientId, err := random.String(8)
		if err != nil {
			return fmt.Errorf("generate client id: %w", err)
		}
		c.ClientId = clientId
	}
	return nil
}

func (c Config) validate() error {
	if c.UserId == "" {
		return ConfigurationError{Key: "user_id"}
	}
	if c.CookieXs == "" {
		return ConfigurationError{Key: "cookie_xs"}
	}
	return nil
}

// readConfig reads the config file (and its .local override), fills in the
// defaults and validates it.
func readConfig(path string) (Config, error) {
	cfg, err := configutil.ReadConfig[Config](path)
	if errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("configuration file '%s' does not exist", path)
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	err = cfg.validate()
	if err != nil {
		return Config{}, err
	}
	err = cfg.applyDefaults()
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}
