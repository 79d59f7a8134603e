package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Rules is the filtering and reference-data policy, loaded from a YAML file
// so keyword sets and column mappings can change without a rebuild.
type Rules struct {
	Country    string   `yaml:"country"`
	CutoffDate string   `yaml:"cutoff_date"` // YYYY-MM-DD
	Keywords   Keywords `yaml:"keywords"`

	Boundary  FileRef  `yaml:"boundary"`
	Colonies  TableRef `yaml:"colonies"`
	Outbreaks TableRef `yaml:"outbreaks"`

	Map MapStyle `yaml:"map"`

	cutoff time.Time
}

// Keywords is the lexical rule table. Matching is case-insensitive.
type Keywords struct {
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

// FileRef points at a single input file.
type FileRef struct {
	Path string `yaml:"path"`
}

// TableRef points at a reference CSV and names its coordinate columns.
type TableRef struct {
	Path            string `yaml:"path"`
	LongitudeColumn string `yaml:"longitude_column"`
	LatitudeColumn  string `yaml:"latitude_column"`
}

// MapStyle holds presentation settings for the rendered maps.
type MapStyle struct {
	Title string `yaml:"title"`
}

// LoadRules reads and validates the YAML rules file.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}

	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse rules file %s: %w", path, err)
	}

	if r.Country == "" {
		return nil, errors.New("rules: country is required")
	}
	if len(r.Keywords.Include) == 0 {
		return nil, errors.New("rules: keywords.include must not be empty")
	}
	if r.Boundary.Path == "" {
		return nil, errors.New("rules: boundary.path is required")
	}
	if r.Colonies.Path == "" || r.Outbreaks.Path == "" {
		return nil, errors.New("rules: colonies.path and outbreaks.path are required")
	}

	if r.CutoffDate != "" {
		cutoff, err := time.Parse("2006-01-02", r.CutoffDate)
		if err != nil {
			return nil, fmt.Errorf("rules: invalid cutoff_date: %w", err)
		}
		r.cutoff = cutoff
	}

	if r.Colonies.LongitudeColumn == "" {
		r.Colonies.LongitudeColumn = "longitude"
	}
	if r.Colonies.LatitudeColumn == "" {
		r.Colonies.LatitudeColumn = "latitude"
	}
	if r.Outbreaks.LongitudeColumn == "" {
		r.Outbreaks.LongitudeColumn = "longitude"
	}
	if r.Outbreaks.LatitudeColumn == "" {
		r.Outbreaks.LatitudeColumn = "latitude"
	}
	if r.Map.Title == "" {
		r.Map.Title = "Carcass observations"
	}

	return &r, nil
}

// Cutoff returns the parsed observation-date floor. Zero when unset, which
// keeps every record regardless of date.
func (r *Rules) Cutoff() time.Time { return r.cutoff }
