package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	App       AppConfig       `toml:"app"`
	Auth      AuthConfig      `toml:"auth"`
	Storage   StorageConfig   `toml:"storage"`
	Upload    UploadConfig    `toml:"upload"`
	Anonymize AnonymizeConfig `toml:"anonymize"`
	CORS      CORSConfig      `toml:"cors"`
	Log       LogConfig       `toml:"log"`
}

type AppConfig struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	Env     string `toml:"env"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	GinMode string `toml:"gin_mode"`
}

type AuthConfig struct {
	JWTSecret       string `toml:"jwt_secret"`
	JWTExpireMinute int    `toml:"jwt_expire_minute"`
}

type StorageConfig struct {
	StaticDir string `toml:"static_dir"`
	UploadDir string `toml:"upload_dir"`
	URLPrefix string `toml:"url_prefix"`
}

type UploadConfig struct {
	MaxSizeMB int `toml:"max_size_mb"`
}

type AnonymizeConfig struct {
	FaceBlurRadius  float64 `toml:"face_blur_radius"`
	PlateBlurRadius float64 `toml:"plate_blur_radius"`
	PlateBandRatio  float64 `toml:"plate_band_ratio"`
	JPEGQuality     int     `toml:"jpeg_quality"`
}

type CORSConfig struct {
	AllowOrigins []string `toml:"allow_origins"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

func Load() (*Config, error) {
	cfg := Default()

	configPath := getEnv("CONFIG_FILE", "configs/config.toml")
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("decode config file failed: %w", err)
		}
	}

	overrideByEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.JWTExpireMinute) * time.Minute
}

func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Upload.MaxSizeMB) << 20
}

// Validate reports the first setting that would make the service misbehave at runtime.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Auth.JWTSecret) == "":
		return errors.New("auth.jwt_secret must not be empty")
	case c.Auth.JWTExpireMinute <= 0:
		return errors.New("auth.jwt_expire_minute must be positive")
	case c.Storage.StaticDir == "":
		return errors.New("storage.static_dir must not be empty")
	case c.Upload.MaxSizeMB <= 0:
		return errors.New("upload.max_size_mb must be positive")
	case c.Anonymize.PlateBandRatio < 0 || c.Anonymize.PlateBandRatio > 1:
		return fmt.Errorf("anonymize.plate_band_ratio out of range: %v", c.Anonymize.PlateBandRatio)
	case c.Anonymize.JPEGQuality < 1 || c.Anonymize.JPEGQuality > 100:
		return fmt.Errorf("anonymize.jpeg_quality out of range: %d", c.Anonymize.JPEGQuality)
	}
	return nil
}

func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:    "Data Anonymization API",
			Version: "1.0",
			Env:     "dev",
			Host:    "0.0.0.0",
			Port:    8000,
			GinMode: "debug",
		},
		Auth: AuthConfig{
			JWTSecret:       "change-me-in-production",
			JWTExpireMinute: 30,
		},
		Storage: StorageConfig{
			StaticDir: "static",
			UploadDir: "uploads",
			URLPrefix: "/static",
		},
		Upload: UploadConfig{
			MaxSizeMB: 10,
		},
		Anonymize: AnonymizeConfig{
			FaceBlurRadius:  20,
			PlateBlurRadius: 15,
			PlateBandRatio:  0.15,
			JPEGQuality:     95,
		},
		CORS: CORSConfig{
			AllowOrigins: []string{"http://localhost:3000"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func overrideByEnv(cfg *Config) {
	cfg.App.Name = getEnv("APP_NAME", cfg.App.Name)
	cfg.App.Env = getEnv("APP_ENV", cfg.App.Env)
	cfg.App.Host = getEnv("APP_HOST", cfg.App.Host)
	cfg.App.Port = getEnvAsInt("APP_PORT", cfg.App.Port)
	cfg.App.GinMode = getEnv("GIN_MODE", cfg.App.GinMode)
	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.JWTExpireMinute = getEnvAsInt("JWT_EXPIRE_MINUTE", cfg.Auth.JWTExpireMinute)

	cfg.Storage.StaticDir = getEnv("STATIC_DIR", cfg.Storage.StaticDir)
	cfg.Storage.UploadDir = getEnv("UPLOAD_DIR", cfg.Storage.UploadDir)
	cfg.Storage.URLPrefix = getEnv("STATIC_URL_PREFIX", cfg.Storage.URLPrefix)
	cfg.Upload.MaxSizeMB = getEnvAsInt("UPLOAD_MAX_SIZE_MB", cfg.Upload.MaxSizeMB)

	cfg.Anonymize.FaceBlurRadius = getEnvAsFloat("FACE_BLUR_RADIUS", cfg.Anonymize.FaceBlurRadius)
	cfg.Anonymize.PlateBlurRadius = getEnvAsFloat("PLATE_BLUR_RADIUS", cfg.Anonymize.PlateBlurRadius)
	cfg.Anonymize.PlateBandRatio = getEnvAsFloat("PLATE_BAND_RATIO", cfg.Anonymize.PlateBandRatio)
	cfg.Anonymize.JPEGQuality = getEnvAsInt("JPEG_QUALITY", cfg.Anonymize.JPEGQuality)

	if raw := getEnv("CORS_ALLOW_ORIGINS", ""); raw != "" {
		cfg.CORS.AllowOrigins = splitList(raw)
	}

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsFloat(key string, fallback float64) float64 {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
