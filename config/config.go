// Package config loads the hierarchical configuration tree (spec section
// 6): per-shard thread names, display timezone, and subscriber tuning
// plus its channel CSV, via viper the way the teacher's market-making
// cousins in the retrieval pack load theirs.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/nimblemarkets/mdbook/subscriber"
)

// ShardConfig names one shard's worker thread (spec section 6:
// "shards[id].thread — worker thread name per shard").
type ShardConfig struct {
	ID     string `mapstructure:"id"`
	Thread string `mapstructure:"thread"`
}

// SubscriberConfig is the `subscriber.*` knob tree.
type SubscriberConfig struct {
	Mx            string        `mapstructure:"mx"`
	Interface     string        `mapstructure:"interface"`
	Filter        string        `mapstructure:"filter"`
	MaxQueueSize  int           `mapstructure:"maxQueueSize"`
	LoginTimeout  time.Duration `mapstructure:"loginTimeout"`
	Timeout       time.Duration `mapstructure:"timeout"`
	ReconnectFreq time.Duration `mapstructure:"reconnectFreq"`
	ReReqInterval time.Duration `mapstructure:"reReqInterval"`
	ReReqMaxGap   uint64        `mapstructure:"reReqMaxGap"`
	Channels      string        `mapstructure:"channels"`
}

// Config is the top-level configuration tree (spec section 6).
type Config struct {
	Shards     []ShardConfig    `mapstructure:"shards"`
	Timezone   string           `mapstructure:"timezone"`
	Subscriber SubscriberConfig `mapstructure:"subscriber"`
}

// Load reads cfg from path (any format viper supports: YAML, JSON, TOML)
// and unmarshals it into a Config.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("subscriber.maxQueueSize", subscriber.DefaultTuning().MaxQueueSize)
	v.SetDefault("subscriber.loginTimeout", subscriber.DefaultTuning().LoginTimeout)
	v.SetDefault("subscriber.timeout", subscriber.DefaultTuning().Timeout)
	v.SetDefault("subscriber.reconnectFreq", subscriber.DefaultTuning().ReconnectFreq)
	v.SetDefault("subscriber.reReqInterval", subscriber.DefaultTuning().ReReqInterval)
	v.SetDefault("subscriber.reReqMaxGap", subscriber.DefaultTuning().ReReqMaxGap)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks required fields (spec section 6 has no optional
// knobs among these: every subscriber tuning value drives a timeout or
// reconnect decision with no sane zero-value default except via
// Load's viper defaults above).
func (c *Config) Validate() error {
	if len(c.Shards) == 0 {
		return fmt.Errorf("config: at least one shard is required")
	}
	seen := make(map[string]bool, len(c.Shards))
	for _, s := range c.Shards {
		if s.ID == "" {
			return fmt.Errorf("config: shard entry missing id")
		}
		if seen[s.ID] {
			return fmt.Errorf("config: duplicate shard id %q", s.ID)
		}
		seen[s.ID] = true
	}
	if c.Timezone == "" {
		return fmt.Errorf("config: timezone is required")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	if c.Subscriber.Channels == "" {
		return fmt.Errorf("config: subscriber.channels is required")
	}
	return nil
}

// Tuning converts the subscriber config section into subscriber.Tuning.
func (c *Config) Tuning() subscriber.Tuning {
	s := c.Subscriber
	return subscriber.Tuning{
		Mx:            s.Mx,
		Interface:     s.Interface,
		Filter:        s.Filter,
		MaxQueueSize:  s.MaxQueueSize,
		LoginTimeout:  s.LoginTimeout,
		Timeout:       s.Timeout,
		ReconnectFreq: s.ReconnectFreq,
		ReReqInterval: s.ReReqInterval,
		ReReqMaxGap:   s.ReReqMaxGap,
	}
}
