// Package config loads service configuration from the process environment,
// optionally merged with a YAML configuration file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// SeedSession describes one row written to the sessions table on first run.
// Price stays a string so the seeded text lands on disk unchanged.
type SeedSession struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Date     string `yaml:"date"`
	Capacity int    `yaml:"capacity"`
	Price    string `yaml:"price"`
}

// Config holds everything the service needs to start.
type Config struct {
	HTTPPort     int           `yaml:"listen_port"`
	DataDir      string        `yaml:"data_dir"`
	FontPaths    []string      `yaml:"font_paths"`
	SeedSessions []SeedSession `yaml:"seed_sessions"`
}

// Load builds the configuration from defaults, an optional YAML file named by
// REGISTRATION_CONFIG, and finally environment overrides (PORT,
// REGISTRATION_DATA_DIR), in that order of precedence.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:     8080,
		DataDir:      "data",
		FontPaths:    defaultFontPaths(),
		SeedSessions: DefaultSeedSessions(),
	}

	if path := strings.TrimSpace(os.Getenv("REGISTRATION_CONFIG")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if portValue := strings.TrimSpace(os.Getenv("PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			return Config{}, fmt.Errorf("invalid PORT value %q", portValue)
		}
		cfg.HTTPPort = port
	}

	if dir := strings.TrimSpace(os.Getenv("REGISTRATION_DATA_DIR")); dir != "" {
		cfg.DataDir = dir
	}

	if cfg.DataDir == "" {
		return Config{}, fmt.Errorf("data_dir must not be empty")
	}
	if len(cfg.SeedSessions) == 0 {
		cfg.SeedSessions = DefaultSeedSessions()
	}
	if len(cfg.FontPaths) == 0 {
		cfg.FontPaths = defaultFontPaths()
	}

	return cfg, nil
}

// DefaultSeedSessions returns the three sessions written on first run when no
// seed list is configured.
func DefaultSeedSessions() []SeedSession {
	return []SeedSession{
		{ID: "1", Name: "Web Development Basics", Date: "2024-04-01", Capacity: 30, Price: "99.99"},
		{ID: "2", Name: "Python for Beginners", Date: "2024-04-02", Capacity: 25, Price: "79.99"},
		{ID: "3", Name: "Data Science Introduction", Date: "2024-04-03", Capacity: 20, Price: "149.99"},
	}
}

func defaultFontPaths() []string {
	return []string{
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
		"/usr/share/fonts/TTF/DejaVuSans.ttf",
		"/Library/Fonts/Arial.ttf",
	}
}
