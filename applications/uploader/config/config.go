// Package config loads the workflow catalogue of the uploader.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v2"
)

const envPrefix = "SHEETDROP_"

type Uploader struct {
	Issuer    Issuer     `yaml:"issuer"`
	Fillers   Fillers    `yaml:"fillers"`
	Workflows []Workflow `yaml:"workflows"`
}

type Issuer struct {
	URL          string        `yaml:"url" env:"ISSUER_URL"`
	Timeout      time.Duration `yaml:"timeout" env:"ISSUER_TIMEOUT"`
	SendFileType *bool         `yaml:"send_file_type"`
}

type Fillers struct {
	Interval time.Duration `yaml:"interval" env:"FILLER_INTERVAL"`
	Messages []string      `yaml:"messages"`
}

type Workflow struct {
	Name          string   `yaml:"name"`
	Title         string   `yaml:"title"`
	Description   string   `yaml:"description"`
	IssuerURL     string   `yaml:"issuer_url"`
	SendFileType  *bool    `yaml:"send_file_type"`
	Accept        Accept   `yaml:"accept"`
	RequiredTabs  []string `yaml:"required_tabs"`
	AppendSuccess bool     `yaml:"append_success"`
	Slots         []Slot   `yaml:"slots"`
	Sync          *Sync    `yaml:"sync"`
}

type Accept struct {
	Extensions    []string `yaml:"extensions"`
	MimeTypes     []string `yaml:"mime_types"`
	RejectMessage string   `yaml:"reject_message"`
}

type Slot struct {
	ID         string `yaml:"id"`
	Label      string `yaml:"label"`
	TargetName string `yaml:"target_name"`
}

type Sync struct {
	URL            string `yaml:"url"`
	Label          string `yaml:"label"`
	SuccessMessage string `yaml:"success_message"`
}

// Parse reads the YAML file and applies SHEETDROP_* environment overrides.
func Parse(path string) (Uploader, error) {
	var cfg Uploader

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("can't read config file: %w", err)
	}

	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("can't parse config file: %w", err)
	}

	if err = env.Parse(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return cfg, fmt.Errorf("can't parse environment: %w", err)
	}

	return cfg, nil
}

func (c Uploader) Validate() error {
	if len(c.Workflows) == 0 {
		return errors.New("no workflows configured")
	}

	names := make(map[string]struct{}, len(c.Workflows))
	for _, w := range c.Workflows {
		if _, ok := names[w.Name]; ok {
			return fmt.Errorf("duplicate workflow %q", w.Name)
		}
		names[w.Name] = struct{}{}

		if err := w.Validate(); err != nil {
			return fmt.Errorf("workflow %q: %w", w.Name, err)
		}
		if c.IssuerURLFor(w) == "" {
			return fmt.Errorf("workflow %q: no issuer url", w.Name)
		}
	}

	return nil
}

func (w Workflow) Validate() error {
	if w.Name == "" {
		return errors.New("name is empty")
	}
	if len(w.Slots) == 0 {
		return errors.New("no slots")
	}
	if len(w.Accept.Extensions) == 0 && len(w.Accept.MimeTypes) == 0 {
		return errors.New("accept list is empty")
	}

	ids := make(map[string]struct{}, len(w.Slots))
	for _, s := range w.Slots {
		if s.ID == "" {
			return errors.New("slot without id")
		}
		if _, ok := ids[s.ID]; ok {
			return fmt.Errorf("duplicate slot %q", s.ID)
		}
		ids[s.ID] = struct{}{}
	}

	if w.Sync != nil && w.Sync.URL == "" {
		return errors.New("sync without url")
	}

	return nil
}

// Workflow looks a workflow up by name.
func (c Uploader) Workflow(name string) (Workflow, bool) {
	for _, w := range c.Workflows {
		if w.Name == name {
			return w, true
		}
	}

	return Workflow{}, false
}

// IssuerURLFor prefers the workflow's own endpoint.
func (c Uploader) IssuerURLFor(w Workflow) string {
	if w.IssuerURL != "" {
		return w.IssuerURL
	}

	return c.Issuer.URL
}

// SendFileTypeFor defaults to true.
func (c Uploader) SendFileTypeFor(w Workflow) bool {
	switch {
	case w.SendFileType != nil:
		return *w.SendFileType
	case c.Issuer.SendFileType != nil:
		return *c.Issuer.SendFileType
	default:
		return true
	}
}
