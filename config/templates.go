package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"resalelens/server/internal/models"
)

//go:embed templates.yaml
var defaultTemplates []byte

type templateFile struct {
	Templates map[string]string `yaml:"templates"`
}

var (
	templates    map[models.Category]string
	templateLock sync.RWMutex
)

// LoadTemplates installs the template replies. An empty path selects the embedded defaults.
func LoadTemplates(path string) error {
	data := defaultTemplates
	if path != "" {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("failed to get absolute path: %w", err)
		}
		data, err = os.ReadFile(absPath)
		if err != nil {
			return fmt.Errorf("failed to read template file: %w", err)
		}
	}

	parsed, err := parseTemplates(data)
	if err != nil {
		return err
	}

	templateLock.Lock()
	templates = parsed
	templateLock.Unlock()
	return nil
}

func parseTemplates(data []byte) (map[models.Category]string, error) {
	var file templateFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	parsed := make(map[models.Category]string, len(file.Templates))
	for key, reply := range file.Templates {
		category, ok := models.ParseCategory(key)
		if !ok {
			return nil, fmt.Errorf("unknown template category %q", key)
		}
		parsed[category] = reply
	}
	if _, ok := parsed[models.CategoryOther]; !ok {
		return nil, fmt.Errorf("templates must define %s", models.CategoryOther)
	}
	return parsed, nil
}

// GetTemplate returns the reply for a category, or the Other reply when none is defined
func GetTemplate(category models.Category) (string, error) {
	templateLock.RLock()
	defer templateLock.RUnlock()

	if templates == nil {
		return "", fmt.Errorf("templates not loaded")
	}
	if reply, ok := templates[category]; ok {
		return reply, nil
	}
	return templates[models.CategoryOther], nil
}
