package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the top-level configuration structure mapping to plotline.toml.
type Config struct {
	Project  ProjectConfig  `toml:"project"`
	Store    StoreConfig    `toml:"store"`
	Schedule ScheduleConfig `toml:"schedule"`
	Display  DisplayConfig  `toml:"display"`
}

// ProjectConfig maps to the [project] section in plotline.toml.
type ProjectConfig struct {
	Name string `toml:"name"`
}

// StoreConfig maps to the [store] section in plotline.toml.
type StoreConfig struct {
	Backend string   `toml:"backend"`
	Path    string   `toml:"path"`
	Import  []string `toml:"import"`
}

// ScheduleConfig maps to the [schedule] section in plotline.toml.
type ScheduleConfig struct {
	Timezone               string `toml:"timezone"`
	DefaultDurationMinutes int    `toml:"default_duration_minutes"`
}

// DisplayConfig maps to the [display] section in plotline.toml.
type DisplayConfig struct {
	LaneWidth  int    `toml:"lane_width"`
	DateFormat string `toml:"date_format"`
}

// Location loads the configured timezone. An empty value or "Local" yields
// time.Local.
func (s ScheduleConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(s.Timezone)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", name, err)
	}
	return loc, nil
}

// DefaultDuration returns the fallback task duration.
func (s ScheduleConfig) DefaultDuration() time.Duration {
	return time.Duration(s.DefaultDurationMinutes) * time.Minute
}
