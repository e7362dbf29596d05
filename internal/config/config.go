// Package config loads the taskmaster settings.
//
// Sources, highest priority first:
//  1. explicit path (--config flag);
//  2. CONFIG_PATH;
//  3. ./local.yaml;
//  4. environment only.
//
// Environment variables always overlay values read from a file.
package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config interface {
	EnvConfig
	APIConfig
	StorageConfig
	WebConfig
}

// Settings is the raw configuration tree filled by cleanenv.
type Settings struct {
	Env      string          `yaml:"env" env:"ENV" env-default:"DEV"`
	AppName  string          `yaml:"app_name" env:"APP_NAME" env-default:"TaskMaster"`
	Port     string          `yaml:"port" env:"PORT" env-default:"3000"`
	LogLevel string          `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	API      APISettings     `yaml:"api"`
	Storage  StorageSettings `yaml:"storage"`
	Web      WebSettings     `yaml:"web"`
}

type mainConfig struct {
	settings Settings
}

// New wraps already populated settings.
func New(settings Settings) Config {
	return mainConfig{settings: settings}
}

// MustLoad panics when the configuration cannot be read.
func MustLoad(path string) Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

func Load(path string) (Config, error) {
	var settings Settings

	readFile := func(p string) (Config, error) {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}
		if err := cleanenv.ReadConfig(p, &settings); err != nil {
			return nil, fmt.Errorf("failed to read config %q: %w", p, err)
		}
		if err := cleanenv.ReadEnv(&settings); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}
		return New(settings), nil
	}

	if path != "" {
		return readFile(path)
	}

	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return readFile(envPath)
	}

	if _, err := os.Stat("local.yaml"); err == nil {
		return readFile("local.yaml")
	}

	if err := cleanenv.ReadEnv(&settings); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}
	return New(settings), nil
}
