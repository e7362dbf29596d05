package config

import (
	"os"
	"path/filepath"
)

const (
	StorageDriverMemory = "memory"
	StorageDriverRedis  = "redis"
	StorageDriverFile   = "file"
)

type StorageConfig interface {
	GetStorageDriver() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetStorageFile() string
}

type StorageSettings struct {
	Driver        string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"memory"`
	RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" env:"REDIS_DB" env-default:"0"`
	File          string `yaml:"file" env:"STORAGE_FILE"`
}

var _ StorageConfig = mainConfig{}

func (c mainConfig) GetStorageDriver() string {
	if c.settings.Storage.Driver == "" {
		return StorageDriverMemory
	}
	return c.settings.Storage.Driver
}

func (c mainConfig) GetRedisAddr() string {
	return c.settings.Storage.RedisAddr
}

func (c mainConfig) GetRedisPassword() string {
	return c.settings.Storage.RedisPassword
}

func (c mainConfig) GetRedisDB() int {
	return c.settings.Storage.RedisDB
}

// GetStorageFile falls back to <user config dir>/taskmaster/credentials.json.
func (c mainConfig) GetStorageFile() string {
	if c.settings.Storage.File != "" {
		return c.settings.Storage.File
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "taskmaster", "credentials.json")
}
