// Package config holds the issuer settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v2"
)

const envPrefix = "ISSUER_"

const (
	ModeInMemory = "inmemory"
	ModeS3       = "s3"
)

type Server struct {
	API     Api     `yaml:"api"`
	Storage Storage `yaml:"storage"`
	S3      S3      `yaml:"s3"`
}

type Api struct {
	HTTPAddr string `yaml:"http_addr" env:"HTTP_ADDR"`
	// PublicURL is the address clients use to reach the object endpoint.
	PublicURL string `yaml:"public_url" env:"PUBLIC_URL"`
	// UploadRate caps PUT bodies in bytes per second, 0 means unlimited.
	UploadRate int64 `yaml:"upload_rate" env:"UPLOAD_RATE"`
}

type Storage struct {
	Mode       string        `yaml:"mode" env:"STORAGE_MODE"`
	KeyPrefix  string        `yaml:"key_prefix" env:"KEY_PREFIX"`
	Volumes    int           `yaml:"volumes" env:"VOLUMES"`
	VolumeSize int64         `yaml:"volume_size" env:"VOLUME_SIZE"`
	GrantTTL   time.Duration `yaml:"grant_ttl" env:"GRANT_TTL"`
}

type S3 struct {
	Region       string        `yaml:"region" env:"S3_REGION"`
	Bucket       string        `yaml:"bucket" env:"S3_BUCKET"`
	BaseEndpoint string        `yaml:"base_endpoint" env:"S3_BASE_ENDPOINT"`
	AccessKey    string        `yaml:"access_key" env:"S3_ACCESS_KEY"`
	SecretKey    string        `yaml:"secret_key" env:"S3_SECRET_KEY"`
	UsePathStyle bool          `yaml:"use_path_style" env:"S3_USE_PATH_STYLE"`
	Expires      time.Duration `yaml:"expires" env:"S3_EXPIRES"`
}

// Parse reads the YAML file and applies ISSUER_* environment overrides.
func Parse(path string) (Server, error) {
	var cfg Server

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

func (s Server) Validate() error {
	if s.API.HTTPAddr == "" {
		return errors.New("api.http_addr is empty")
	}
	if s.API.UploadRate < 0 {
		return errors.New("api.upload_rate is negative")
	}

	switch s.Storage.Mode {
	case "", ModeInMemory:
		if s.API.PublicURL == "" {
			return errors.New("api.public_url is empty")
		}
		if s.Storage.Volumes <= 0 {
			return errors.New("storage.volumes must be positive")
		}
	case ModeS3:
		if s.S3.Bucket == "" {
			return errors.New("s3.bucket is empty")
		}
		if s.S3.Region == "" {
			return errors.New("s3.region is empty")
		}
	default:
		return fmt.Errorf("unknown storage mode %q", s.Storage.Mode)
	}

	return nil
}
