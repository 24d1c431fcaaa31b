package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/mingyueshfjksnkm/RAO-Calculator/risk"
)

type Config struct {
	Http struct {
		Port           int      `yaml:"port"`
		TimeoutSeconds int      `yaml:"timeout_seconds"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"http"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Model struct {
		Type      string `yaml:"type"`
		Path      string `yaml:"path"`
		MeansPath string `yaml:"means_path"`
		StdsPath  string `yaml:"stds_path"`
	} `yaml:"model"`
	Scoring struct {
		Policy    string `yaml:"policy"`
		CacheSize int    `yaml:"cache_size"`
		Audit     bool   `yaml:"audit"`
	} `yaml:"scoring"`
	Limits risk.Limits `yaml:"limits"`
	Log    struct {
		Level      string `yaml:"level"`
		Path       string `yaml:"path"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
	} `yaml:"log"`
}

// Load reads the YAML config and fills in defaults for unset sections.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	config.applyDefaults()
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Http.Port == 0 {
		c.Http.Port = 8080
	}
	if c.Http.TimeoutSeconds == 0 {
		c.Http.TimeoutSeconds = 30
	}
	if len(c.Http.AllowedOrigins) == 0 {
		c.Http.AllowedOrigins = []string{"*"}
	}
	if c.Model.Type == "" {
		c.Model.Type = "boosted_trees"
	}
	if c.Model.Path == "" {
		c.Model.Path = "./models/rao_model.json"
	}
	if c.Model.MeansPath == "" {
		c.Model.MeansPath = "./models/feature_means.csv"
	}
	if c.Model.StdsPath == "" {
		c.Model.StdsPath = "./models/feature_stds.csv"
	}
	if c.Scoring.Policy == "" {
		c.Scoring.Policy = "A"
	}
	if c.Scoring.CacheSize == 0 {
		c.Scoring.CacheSize = 256
	}
	if c.Limits == (risk.Limits{}) {
		c.Limits = risk.DefaultLimits()
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 50
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 5
	}
}

func (c *Config) validate() error {
	if _, err := risk.PolicyByName(c.Scoring.Policy); err != nil {
		return err
	}
	limits := []risk.Bounds{
		c.Limits.CompressionTime,
		c.Limits.NitroglycerinDose,
		c.Limits.RadialDiameterMM,
		c.Limits.SheathRatio,
	}
	for _, bounds := range limits {
		if bounds.Min >= bounds.Max {
			return fmt.Errorf("invalid input bounds [%g, %g]", bounds.Min, bounds.Max)
		}
	}
	return nil
}
