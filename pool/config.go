package pool

import (
	"fmt"
	"time"
)

// Config represents pool manager configuration. The zero value of a field selects no limit
// (MaxWorkers) or disables eviction (IdleTimeout).
type Config struct {
	// MaxWorkers caps the number of live workers; Start fails with ErrPoolExhausted beyond it.
	MaxWorkers int `json:"maxWorkers" yaml:"maxWorkers"`

	// IdleTimeout is how long a worker may stay idle before Evict retires it.
	IdleTimeout time.Duration `json:"idleTimeout" yaml:"idleTimeout"`

	// EvictionInterval is how often Run calls Evict.
	EvictionInterval time.Duration `json:"evictionInterval" yaml:"evictionInterval"`

	// NamePrefix is used to name spawned workers ("<prefix>-<n>").
	NamePrefix string `json:"namePrefix" yaml:"namePrefix"`
}

// DefaultConfig returns the default pool configuration.
func DefaultConfig() Config {
	return Config{
		MaxWorkers:       100,
		IdleTimeout:      time.Minute,
		EvictionInterval: 10 * time.Second,
		NamePrefix:       "handoff",
	}
}

// Validate returns an error describing the first invalid setting.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.MaxWorkers < 0 {
		return fmt.Errorf("pool.maxWorkers must be >= 0")
	}
	if c.IdleTimeout < 0 {
		return fmt.Errorf("pool.idleTimeout must be >= 0")
	}
	if c.IdleTimeout > 0 && c.EvictionInterval <= 0 {
		return fmt.Errorf("pool.evictionInterval must be > 0 when idleTimeout is set")
	}
	return nil
}
