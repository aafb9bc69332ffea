package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const manifestName = "tessel.toml"

type projectManifest struct {
	Path   string
	Root   string
	Config projectConfig
}

type projectConfig struct {
	Build buildConfig `toml:"build"`
	Trace traceConfig `toml:"trace"`
}

type buildConfig struct {
	Target string `toml:"target"`
	Emit   string `toml:"emit"`
	Out    string `toml:"out"`
	Jobs   int    `toml:"jobs"`
}

type traceConfig struct {
	Level  string `toml:"level"`
	Output string `toml:"output"`
}

func findTesselToml(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, manifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// loadProjectManifest finds tessel.toml at or above startDir. A missing
// manifest is not an error.
func loadProjectManifest(startDir string) (*projectManifest, error) {
	manifestPath, ok, err := findTesselToml(startDir)
	if err != nil || !ok {
		return nil, err
	}
	cfg, err := loadProjectConfig(manifestPath)
	if err != nil {
		return nil, err
	}
	return &projectManifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, nil
}

func loadProjectConfig(path string) (projectConfig, error) {
	var cfg projectConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return projectConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return projectConfig{}, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	if cfg.Build.Jobs < 0 {
		return projectConfig{}, fmt.Errorf("%s: [build].jobs must not be negative", path)
	}
	return cfg, nil
}

// resolveOut makes a manifest-relative output directory absolute.
func (m *projectManifest) resolveOut() string {
	if m == nil {
		return ""
	}
	out := m.Config.Build.Out
	if out == "" || out == "-" || filepath.IsAbs(out) {
		return out
	}
	return filepath.Join(m.Root, filepath.FromSlash(out))
}
