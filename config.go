// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package labelmap

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/poiesic/labelmap/ai"
	"github.com/poiesic/labelmap/dailymed"
	"github.com/poiesic/labelmap/storage/badger"
	"github.com/poiesic/labelmap/synonym"
)

// Config holds configuration for a Service.
type Config struct {
	// DBPath is the badger directory. Ignored when InMemory is set.
	DBPath string

	// InMemory keeps all state in memory.
	InMemory bool

	// DailyMedURL is the DailyMed REST services root.
	DailyMedURL string

	// LabelURL serves rendered label pages for the HTML fallback.
	LabelURL string

	// Timeout bounds each DailyMed request.
	Timeout time.Duration

	// MaxRetries bounds attempts per DailyMed request.
	MaxRetries int

	// LabelTTL is how long mapped labels stay cached. Zero keeps them forever.
	LabelTTL time.Duration

	// SynonymFile is an optional YAML synonym table replacing the built-in one.
	SynonymFile string

	// SynonymThreshold is the minimum similarity for a synonym key to apply.
	SynonymThreshold float32

	// PoolSize is the number of workers for bulk label mapping.
	PoolSize int

	// AI configures the similarity backend.
	AI *ai.Config
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithDBPath sets the badger directory.
func WithDBPath(path string) ConfigOption {
	return func(c *Config) {
		c.DBPath = path
	}
}

// WithInMemory keeps all state in memory.
func WithInMemory(inMemory bool) ConfigOption {
	return func(c *Config) {
		c.InMemory = inMemory
	}
}

// WithDailyMedURL sets the DailyMed REST services root.
func WithDailyMedURL(url string) ConfigOption {
	return func(c *Config) {
		c.DailyMedURL = url
	}
}

// WithLabelURL sets the rendered label page root.
func WithLabelURL(url string) ConfigOption {
	return func(c *Config) {
		c.LabelURL = url
	}
}

// WithTimeout sets the DailyMed request timeout.
func WithTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = d
	}
}

// WithLabelTTL sets how long mapped labels stay cached.
func WithLabelTTL(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.LabelTTL = d
	}
}

// WithSynonymFile replaces the built-in synonym table.
func WithSynonymFile(path string) ConfigOption {
	return func(c *Config) {
		c.SynonymFile = path
	}
}

// WithSynonymThreshold sets the synonym similarity threshold.
func WithSynonymThreshold(t float32) ConfigOption {
	return func(c *Config) {
		c.SynonymThreshold = t
	}
}

// WithPoolSize sets the bulk mapping worker count.
func WithPoolSize(n int) ConfigOption {
	return func(c *Config) {
		c.PoolSize = n
	}
}

// WithAIConfig sets the similarity backend configuration.
func WithAIConfig(cfg *ai.Config) ConfigOption {
	return func(c *Config) {
		c.AI = cfg
	}
}

// DefaultConfig returns a Config with sensible defaults: a local ./data
// directory, the public DailyMed service and the lexical similarity backend.
func DefaultConfig() *Config {
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	return &Config{
		DBPath:           "./data",
		DailyMedURL:      dailymed.DefaultBaseURL,
		LabelURL:         dailymed.DefaultLabelURL,
		Timeout:          30 * time.Second,
		MaxRetries:       3,
		LabelTTL:         badger.DefaultLabelTTL,
		SynonymThreshold: synonym.DefaultThreshold,
		PoolSize:         poolSize,
		AI:               ai.DefaultConfig(),
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize trims string settings and fills in missing nested config.
func (c *Config) Normalize() {
	c.DBPath = strings.TrimSpace(c.DBPath)
	c.DailyMedURL = strings.TrimRight(strings.TrimSpace(c.DailyMedURL), "/")
	c.LabelURL = strings.TrimRight(strings.TrimSpace(c.LabelURL), "/")
	c.SynonymFile = strings.TrimSpace(c.SynonymFile)
	if c.AI == nil {
		c.AI = ai.DefaultConfig()
	}
	if c.PoolSize < 1 {
		c.PoolSize = 1
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if !c.InMemory && c.DBPath == "" {
		return fmt.Errorf("%w: DBPath is required unless InMemory is set", ErrInvalidConfig)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: Timeout must be positive", ErrInvalidConfig)
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("%w: MaxRetries must be at least 1", ErrInvalidConfig)
	}
	if c.LabelTTL < 0 {
		return fmt.Errorf("%w: LabelTTL cannot be negative", ErrInvalidConfig)
	}
	if c.SynonymThreshold < 0 || c.SynonymThreshold > 1 {
		return fmt.Errorf("%w: SynonymThreshold must be in [0,1]", ErrInvalidConfig)
	}

	dm := c.dailyMedConfig()
	if err := dm.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.AI.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func (c *Config) dailyMedConfig() *dailymed.Config {
	dm := dailymed.DefaultConfig()
	dm.BaseURL = c.DailyMedURL
	dm.LabelURL = c.LabelURL
	dm.Timeout = c.Timeout
	dm.MaxRetries = c.MaxRetries
	return dm
}
