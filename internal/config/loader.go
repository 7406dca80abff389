package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// file mirrors Config with pointer scalars so an omitted key keeps its default.
type file struct {
	Experiment             *string        `json:"experiment" yaml:"experiment"`
	CheckEvents            []int          `json:"check_events" yaml:"check_events"`
	ExcludedUsers          []string       `json:"excluded_users" yaml:"excluded_users"`
	Groups                 map[int]string `json:"groups" yaml:"groups"`
	CompareGroups          []int          `json:"compare_groups" yaml:"compare_groups"`
	TimeQuantile           *float64       `json:"time_quantile" yaml:"time_quantile"`
	RequireCompleteSession *bool          `json:"require_complete_session" yaml:"require_complete_session"`
	GroundTruthOverrides   map[int]int    `json:"ground_truth_overrides" yaml:"ground_truth_overrides"`
	AnswerKey              *AnswerKey     `json:"answer_key" yaml:"answer_key"`
	KnowledgeThreshold     *int           `json:"knowledge_threshold" yaml:"knowledge_threshold"`
	ExperiencedBuckets     []string       `json:"experienced_buckets" yaml:"experienced_buckets"`
}

// LoadFromPath reads a config file (YAML or JSON) and overlays it on Default.
// Format is detected by extension (.yaml/.yml, .json) or by content.
func LoadFromPath(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Load(data, filepath.Ext(path))
}

// Load parses config bytes. ext is a format hint ("" = detect from content).
// Keys absent from the document keep their Default values; present
// lists and maps replace the defaults wholesale.
func Load(data []byte, ext string) (Config, error) {
	var f file
	if err := decode(data, ext, &f); err != nil {
		return Config{}, err
	}
	cfg := f.overlay(Default())
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(data []byte, ext string, f *file) error {
	ext = strings.ToLower(ext)
	if ext == ".yml" {
		ext = ".yaml"
	}
	if ext == "" {
		if strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
			ext = ".json"
		} else {
			ext = ".yaml"
		}
	}
	switch ext {
	case ".json":
		if err := json.Unmarshal(data, f); err != nil {
			return fmt.Errorf("parse config json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, f); err != nil {
			return fmt.Errorf("parse config yaml: %w", err)
		}
	}
	return nil
}

func (f file) overlay(c Config) Config {
	if f.Experiment != nil {
		c.Experiment = *f.Experiment
	}
	if f.CheckEvents != nil {
		c.CheckEvents = f.CheckEvents
	}
	if f.ExcludedUsers != nil {
		c.ExcludedUsers = f.ExcludedUsers
	}
	if f.Groups != nil {
		c.Groups = f.Groups
	}
	if f.CompareGroups != nil {
		c.CompareGroups = f.CompareGroups
	}
	if f.TimeQuantile != nil {
		c.TimeQuantile = *f.TimeQuantile
	}
	if f.RequireCompleteSession != nil {
		c.RequireCompleteSession = *f.RequireCompleteSession
	}
	if f.GroundTruthOverrides != nil {
		c.GroundTruthOverrides = f.GroundTruthOverrides
	}
	if f.AnswerKey != nil {
		c.AnswerKey = *f.AnswerKey
	}
	if f.KnowledgeThreshold != nil {
		c.KnowledgeThreshold = *f.KnowledgeThreshold
	}
	if f.ExperiencedBuckets != nil {
		c.ExperiencedBuckets = f.ExperiencedBuckets
	}
	return c
}

// Marshal renders cfg as YAML, as `crywolf config` prints it.
func Marshal(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}
