package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/caskpack/caskpack/internal/paths"
)

// Loader resolves and reads the caskpack.toml configuration file.
type Loader struct {
	projectRoot string
	explicit    string
}

// NewLoader creates a config loader. explicit is the --config flag value
// and wins over discovery when set.
func NewLoader(projectRoot, explicit string) *Loader {
	return &Loader{projectRoot: projectRoot, explicit: explicit}
}

// Load returns the file configuration and the path it was read from.
// When no file is found, defaults are returned with an empty path.
// An explicitly requested file that is missing or malformed is an error;
// a missing discovered file is not.
func (l *Loader) Load() (*FileConfig, string, error) {
	path, required := l.resolvePath()
	if path == "" {
		return DefaultFileConfig(), "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return DefaultFileConfig(), "", nil
		}
		return nil, "", fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := DefaultFileConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, "", fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, path, nil
}

// resolvePath picks the config file location. Search order: --config flag,
// ./caskpack.toml, <project_root>/caskpack.toml.
func (l *Loader) resolvePath() (string, bool) {
	if l.explicit != "" {
		return l.explicit, true
	}
	if cwd, err := os.Getwd(); err == nil {
		candidate := filepath.Join(cwd, paths.DefaultConfigName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, false
		}
	}
	if l.projectRoot != "" {
		candidate := filepath.Join(l.projectRoot, paths.DefaultConfigName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, false
		}
	}
	return "", false
}

// Validate reports structural problems in a loaded config.
func Validate(cfg *FileConfig) error {
	if cfg.Project.SourceDir == "" {
		return fmt.Errorf("project.source_dir must not be empty")
	}
	if cfg.Build.Python == "" {
		return fmt.Errorf("build.python must not be empty")
	}
	for _, tag := range cfg.Build.PlatformTags {
		if tag == "" {
			return fmt.Errorf("build.platform_tags must not contain empty entries")
		}
	}
	return nil
}
