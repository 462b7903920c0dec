package ai

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var promptsYAML []byte

// Prompts holds the prompt templates and fixed replies
type Prompts struct {
	Unavailable string       `yaml:"unavailable"`
	Summarize   PromptConfig `yaml:"summarize"`
	Ask         PromptConfig `yaml:"ask"`
}

// PromptConfig is one task's prompt and its fallback replies
type PromptConfig struct {
	System   string `yaml:"system"`
	Template string `yaml:"template"`
	Empty    string `yaml:"empty"`
	Failed   string `yaml:"failed"`

	tmpl *template.Template
}

// LoadPrompts parses the embedded prompt file
func LoadPrompts() (*Prompts, error) {
	return ParsePrompts(promptsYAML)
}

// ParsePrompts parses prompt YAML and compiles the templates
func ParsePrompts(data []byte) (*Prompts, error) {
	var p Prompts
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshal prompts: %w", err)
	}

	for name, cfg := range map[string]*PromptConfig{"summarize": &p.Summarize, "ask": &p.Ask} {
		if cfg.Template == "" || cfg.Empty == "" || cfg.Failed == "" {
			return nil, fmt.Errorf("prompt %q is incomplete", name)
		}
		tmpl, err := template.New(name).Option("missingkey=error").Parse(cfg.Template)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		cfg.tmpl = tmpl
	}
	if p.Unavailable == "" {
		return nil, fmt.Errorf("prompt file has no unavailable message")
	}

	return &p, nil
}

// Render executes the task template with data
func (c *PromptConfig) Render(data interface{}) (string, error) {
	var sb strings.Builder
	if err := c.tmpl.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}
