package pgq

import (
	"fmt"
	"math/rand"
	"time"
)

type Config struct {
	Host     string `mapstructure:"host" default:"localhost"`
	Port     int    `mapstructure:"port" default:"5432"`
	Name     string `mapstructure:"name" default:"postgres"`
	Username string `mapstructure:"username" default:"root"`
	Password string `mapstructure:"password" default:""`
	SSLMode  string `mapstructure:"sslmode" default:"disable"`

	MaxOpenConns          int           `mapstructure:"max_open_conns" default:"10"`
	MaxIdleConns          int           `mapstructure:"max_idle_conns" default:"4"`
	ConnMaxIdleTime       time.Duration `mapstructure:"conn_max_idle_time" default:"5m"`
	ConnMaxLifetime       time.Duration `mapstructure:"conn_max_lifetime" default:"5m"`
	ConnMaxLifetimeJitter time.Duration `mapstructure:"conn_max_lifetime_jitter" default:"2m"`
}

func (c Config) sslMode() string {
	if c.SSLMode == "" {
		return "disable"
	}
	return c.SSLMode
}

func (c Config) ConnectionString() string {
	return fmt.Sprintf(
		"dbname=%s user=%s password='%s' host=%s port=%d sslmode=%s",
		c.Name, c.Username, c.Password, c.Host, c.Port, c.sslMode(),
	)
}

// ConnMaxLifetimeWithJitter spreads connection recycling so that pooled
// connections do not all expire at once.
func (c Config) ConnMaxLifetimeWithJitter() time.Duration {
	if c.ConnMaxLifetimeJitter <= 0 {
		return c.ConnMaxLifetime
	}

	//nolint:gosec
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	return c.ConnMaxLifetime + time.Duration(r.Int63n(int64(c.ConnMaxLifetimeJitter)))
}
