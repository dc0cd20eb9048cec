package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/exemplar"
)

const configFileName = ".exemplar.yaml"

// fileConfig mirrors .exemplar.yaml. Flags override file values.
type fileConfig struct {
	Root        string   `yaml:"root"`
	Lang        string   `yaml:"lang"`
	Include     []string `yaml:"include"`
	Exclude     []string `yaml:"exclude"`
	DefaultTag  string   `yaml:"default_tag"`
	RequireTags bool     `yaml:"require_tags"`
	Decoder     string   `yaml:"decoder"`
	Cache       bool     `yaml:"cache"`
	Addr        string   `yaml:"addr"`
}

// loadConfig reads a config file. Unknown keys are rejected. A relative root
// is resolved against the file's directory.
func loadConfig(path string) (fileConfig, error) {
	var cfg fileConfig

	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}

	if cfg.Root != "" && !filepath.IsAbs(cfg.Root) {
		cfg.Root = filepath.Join(filepath.Dir(path), cfg.Root)
	}
	return cfg, nil
}

// resolveConfig merges the config file with the command line.
//
// Root resolution order: --root, the config file's root, the nearest
// directory holding a corpus marker, the working directory.
func resolveConfig(cmd *cobra.Command) (fileConfig, error) {
	var cfg fileConfig

	path := configFlag
	explicit := path != ""
	if !explicit {
		base := rootFlag
		if base == "" {
			var err error
			if base, err = defaultRoot(); err != nil {
				return cfg, err
			}
		}
		path = filepath.Join(base, configFileName)
	}

	loaded, err := loadConfig(path)
	switch {
	case err == nil:
		cfg = loaded
		slog.Debug("config loaded", "path", path)
	case explicit || !errors.Is(err, os.ErrNotExist):
		return cfg, err
	}

	if cmd.Flags().Changed("root") {
		cfg.Root = rootFlag
	}
	if cfg.Root == "" {
		if cfg.Root, err = defaultRoot(); err != nil {
			return cfg, err
		}
	}
	if cmd.Flags().Changed("lang") {
		cfg.Lang = langFlag
	}
	return cfg, nil
}

// defaultRoot is the nearest directory holding a corpus marker, else the
// working directory.
func defaultRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if found, err := exemplar.FindRoot(wd); err == nil {
		return found, nil
	}
	return wd, nil
}

func (c fileConfig) options(logger *slog.Logger) []exemplar.Option {
	opts := []exemplar.Option{
		exemplar.WithLogger(logger),
		exemplar.WithLang(c.Lang),
		exemplar.WithCache(c.Cache),
		exemplar.WithRequireTags(c.RequireTags),
	}
	if len(c.Include) > 0 {
		opts = append(opts, exemplar.WithInclude(c.Include...))
	}
	if len(c.Exclude) > 0 {
		opts = append(opts, exemplar.WithExclude(c.Exclude...))
	}
	if c.DefaultTag != "" {
		opts = append(opts, exemplar.WithDefaultTag(c.DefaultTag))
	}
	if c.Decoder != "" {
		opts = append(opts, exemplar.WithDecoder(c.Decoder))
	}
	return opts
}
