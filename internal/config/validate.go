package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
)

// ValidationSeverity indicates whether a validation issue is an error or warning.
type ValidationSeverity string

const (
	// SeverityError indicates a fatal validation issue; the configuration is unusable.
	SeverityError ValidationSeverity = "error"
	// SeverityWarning indicates an informational validation issue; the configuration works
	// but may have problems.
	SeverityWarning ValidationSeverity = "warning"
)

// ValidationIssue represents a single validation finding.
type ValidationIssue struct {
	Severity ValidationSeverity
	Field    string // dotted path, e.g., "project.name"
	Message  string
}

// ValidationResult holds all validation findings.
type ValidationResult struct {
	Issues []ValidationIssue
}

// HasErrors returns true if any issue has error severity.
func (vr *ValidationResult) HasErrors() bool {
	for _, issue := range vr.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// HasWarnings returns true if any issue has warning severity.
func (vr *ValidationResult) HasWarnings() bool {
	for _, issue := range vr.Issues {
		if issue.Severity == SeverityWarning {
			return true
		}
	}
	return false
}

// Errors returns only error-severity issues.
func (vr *ValidationResult) Errors() []ValidationIssue {
	var errs []ValidationIssue
	for _, issue := range vr.Issues {
		if issue.Severity == SeverityError {
			errs = append(errs, issue)
		}
	}
	return errs
}

// Warnings returns only warning-severity issues.
func (vr *ValidationResult) Warnings() []ValidationIssue {
	var warns []ValidationIssue
	for _, issue := range vr.Issues {
		if issue.Severity == SeverityWarning {
			warns = append(warns, issue)
		}
	}
	return warns
}

// validBackends is the set of valid values for store.backend.
var validBackends = map[string]bool{
	BackendFile:   true,
	BackendSQLite: true,
}

// Validate checks the configuration for correctness and completeness.
// It performs semantic validation and unknown key detection.
//
// Parameters:
//   - cfg: the configuration to validate
//   - meta: TOML metadata from BurntSushi/toml (may be nil if no file was loaded)
//
// Returns validation results. Check HasErrors() to determine if the config is usable.
func Validate(cfg *Config, meta *toml.MetaData) *ValidationResult {
	vr := &ValidationResult{}

	if cfg == nil {
		addError(vr, "", "configuration is nil")
		return vr
	}

	validateProject(vr, &cfg.Project)
	validateStore(vr, &cfg.Store)
	validateSchedule(vr, &cfg.Schedule)
	validateDisplay(vr, &cfg.Display)
	validateUnknownKeys(vr, meta)

	return vr
}

// validateProject checks the [project] section.
func validateProject(vr *ValidationResult, p *ProjectConfig) {
	if strings.TrimSpace(p.Name) == "" {
		addWarning(vr, "project.name", "not set; output headers will be untitled")
	}
}

// validateStore checks the [store] section.
func validateStore(vr *ValidationResult, s *StoreConfig) {
	if !validBackends[s.Backend] {
		addError(vr, "store.backend",
			fmt.Sprintf("unrecognized backend %q; must be one of: file, sqlite", s.Backend))
	}

	if s.Path == "" {
		addError(vr, "store.path", "must not be empty")
	} else if info, err := os.Stat(s.Path); err == nil && info.IsDir() {
		addError(vr, "store.path", fmt.Sprintf("%q is a directory", s.Path))
	}

	for i, pattern := range s.Import {
		field := fmt.Sprintf("store.import[%d]", i)
		if pattern == "" {
			addError(vr, field, "must not be an empty string")
			continue
		}
		if !doublestar.ValidatePattern(pattern) {
			addError(vr, field, fmt.Sprintf("invalid glob pattern %q", pattern))
		}
	}
}

// validateSchedule checks the [schedule] section.
func validateSchedule(vr *ValidationResult, s *ScheduleConfig) {
	if _, err := s.Location(); err != nil {
		addError(vr, "schedule.timezone", fmt.Sprintf("unknown timezone %q", s.Timezone))
	}
	if s.DefaultDurationMinutes <= 0 {
		addError(vr, "schedule.default_duration_minutes",
			fmt.Sprintf("must be positive, got %d", s.DefaultDurationMinutes))
	}
}

// validateDisplay checks the [display] section.
func validateDisplay(vr *ValidationResult, d *DisplayConfig) {
	if d.LaneWidth <= 0 {
		addError(vr, "display.lane_width", fmt.Sprintf("must be positive, got %d", d.LaneWidth))
	} else if d.LaneWidth < 10 {
		addWarning(vr, "display.lane_width", "values below 10 make the timeline hard to read")
	}
	if d.DateFormat == "" {
		addError(vr, "display.date_format", "must not be empty")
	} else if ref := time.Date(2001, 2, 3, 4, 5, 6, 0, time.UTC); ref.Format(d.DateFormat) == d.DateFormat {
		addWarning(vr, "display.date_format",
			fmt.Sprintf("%q contains no date fields", d.DateFormat))
	}
}

// validateUnknownKeys checks for TOML keys that did not map to any config struct field.
func validateUnknownKeys(vr *ValidationResult, meta *toml.MetaData) {
	if meta == nil {
		return
	}

	for _, key := range meta.Undecoded() {
		path := strings.Join(key, ".")
		addWarning(vr, path, "unknown configuration key")
	}
}

// addError appends an error-severity issue to the validation result.
func addError(vr *ValidationResult, field, message string) {
	vr.Issues = append(vr.Issues, ValidationIssue{
		Severity: SeverityError,
		Field:    field,
		Message:  message,
	})
}

// addWarning appends a warning-severity issue to the validation result.
func addWarning(vr *ValidationResult, field, message string) {
	vr.Issues = append(vr.Issues, ValidationIssue{
		Severity: SeverityWarning,
		Field:    field,
		Message:  message,
	})
}
