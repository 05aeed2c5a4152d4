package config

import "time"

type Config struct {
	ServerURL      string
	RequestTimeout time.Duration
	MaxFileSize    int64
	SessionDir     string
}

func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.RequestTimeout = 30 * time.Second
	c.MaxFileSize = 104857600
	c.SessionDir = ".bea"
}

// LoadConfig applies defaults, then the JSON file, then flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
