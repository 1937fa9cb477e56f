package formats

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var log = logrus.New()

// SetLogger allows setting a configured logger.
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

type formatsFile struct {
	Formats []Spec `yaml:"formats"`
}

// FindConfigFile looks for a formats file in the standard locations:
// the path itself, ./config/, and ~/.config/ledger-import/.
func FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(homeDir, ".config", "ledger-import", filename))
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}
	return "", os.ErrNotExist
}

// LoadFile merges user-defined specs from a YAML file into the registry.
// A missing file is not an error: the built-in specs still apply.
func (r *Registry) LoadFile(filename string) error {
	if filename == "" {
		filename = "formats.yaml"
	}

	path, err := FindConfigFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debugf("No formats file found: %s", filename)
			return nil
		}
		return fmt.Errorf("error resolving formats file: %w", err)
	}

	data, err := os.ReadFile(path) // #nosec G304 -- CLI tool reads user-provided config paths
	if err != nil {
		return fmt.Errorf("error reading formats file %s: %w", path, err)
	}

	var file formatsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("error parsing formats file %s: %w", path, err)
	}

	for _, spec := range file.Formats {
		if err := r.Register(spec); err != nil {
			return fmt.Errorf("invalid format in %s: %w", path, err)
		}
	}

	log.WithFields(logrus.Fields{
		"file":  path,
		"count": len(file.Formats),
	}).Debug("Loaded format specs")
	return nil
}
