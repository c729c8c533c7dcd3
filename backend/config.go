package main

import "sync"

// Config holds server-wide toggles adjustable at runtime through
// /api/config. Per-game knobs (depth, delays, seat types) live in
// GameSettings instead.
type Config struct {
	Addr               string `json:"addr"`
	TickIntervalMs     int    `json:"tick_interval_ms"`
	ThinkingEnabled    bool   `json:"thinking_enabled"`
	ThinkingThrottleMs int    `json:"thinking_throttle_ms"`
	AnalysisEnabled    bool   `json:"analysis_enabled"`
	AnalysisQueueLimit int    `json:"analysis_queue_limit"`
	LogSearchStats     bool   `json:"log_search_stats"`
}

func DefaultConfig() Config {
	return Config{
		Addr:               ":8080",
		TickIntervalMs:     50,
		ThinkingEnabled:    true,
		ThinkingThrottleMs: 150,
		AnalysisEnabled:    true,
		AnalysisQueueLimit: 16,
		LogSearchStats:     false,
	}
}

type ConfigStore struct {
	mu     sync.RWMutex
	config Config
}

var configStore = &ConfigStore{config: DefaultConfig()}

func GetConfig() Config {
	return configStore.Get()
}

func (c *ConfigStore) Get() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

func (c *ConfigStore) Update(newConfig Config) {
	c.mu.Lock()
	c.config = newConfig
	c.mu.Unlock()
}
