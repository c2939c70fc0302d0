package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed assistant.yaml
var defaultAssistantProfile []byte

// AssistantProfile fixes the model and persona for every exchange.
type AssistantProfile struct {
	Model             string  `yaml:"model"`
	SystemInstruction string  `yaml:"system_instruction"`
	Temperature       float32 `yaml:"temperature"`
	MaxOutputTokens   int32   `yaml:"max_output_tokens"`
	ThinkingBudget    int32   `yaml:"thinking_budget"`
	IncludeThoughts   bool    `yaml:"include_thoughts"`
}

// LoadAssistantProfile reads the profile at path, or the embedded default when
// path is empty. Fields missing from the file keep their default values.
func LoadAssistantProfile(path string) (*AssistantProfile, error) {
	profile := &AssistantProfile{}
	if err := yaml.Unmarshal(defaultAssistantProfile, profile); err != nil {
		return nil, fmt.Errorf("parse embedded assistant profile: %w", err)
	}

	if path = strings.TrimSpace(path); path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("read assistant profile %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, profile); err != nil {
			return nil, fmt.Errorf("parse assistant profile %q: %w", path, err)
		}
	}

	if err := profile.validate(); err != nil {
		return nil, err
	}
	return profile, nil
}

func (p *AssistantProfile) validate() error {
	if strings.TrimSpace(p.Model) == "" {
		return errors.New("assistant profile: model is required")
	}
	if strings.TrimSpace(p.SystemInstruction) == "" {
		return errors.New("assistant profile: system_instruction is required")
	}
	if p.Temperature < 0 || p.Temperature > 2 {
		return fmt.Errorf("assistant profile: temperature %.2f out of range [0, 2]", p.Temperature)
	}
	return nil
}
