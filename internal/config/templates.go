package config

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

//go:embed templates/plotline.toml.tmpl
var templateFS embed.FS

const configTemplate = "templates/plotline.toml.tmpl"

// ErrConfigExists is returned by WriteConfig when the file already exists and
// force is false.
var ErrConfigExists = errors.New("config file already exists")

// TemplateVars holds variables substituted into the default plotline.toml.
type TemplateVars struct {
	ProjectName string
	Backend     string
	StorePath   string
	Timezone    string
}

// DefaultTemplateVars returns vars for a project named name with default
// store settings.
func DefaultTemplateVars(name string) TemplateVars {
	return TemplateVars{
		ProjectName: name,
		Backend:     BackendFile,
		StorePath:   DefaultFileStorePath,
		Timezone:    "Local",
	}
}

// RenderConfig renders the default plotline.toml. The output is checked to
// decode cleanly so a bad project name cannot produce an unreadable file.
func RenderConfig(vars TemplateVars) ([]byte, error) {
	content, err := templateFS.ReadFile(configTemplate)
	if err != nil {
		return nil, fmt.Errorf("reading embedded template: %w", err)
	}
	tmpl, err := template.New("plotline.toml").Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("parsing config template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return nil, fmt.Errorf("executing config template: %w", err)
	}

	var probe Config
	if _, err := toml.Decode(buf.String(), &probe); err != nil {
		return nil, fmt.Errorf("rendered config is not valid TOML: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteConfig renders the default config into dir/plotline.toml and returns
// the written path. Existing files are kept unless force is set.
func WriteConfig(dir string, vars TemplateVars, force bool) (string, error) {
	dest := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(dest); err == nil {
		if !force {
			return dest, fmt.Errorf("%s: %w", dest, ErrConfigExists)
		}
		log.Debug("overwriting existing file", "path", dest)
	}

	data, err := RenderConfig(vars)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", dir, err)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", dest, err)
	}
	log.Debug("created config file", "path", dest)
	return dest, nil
}
