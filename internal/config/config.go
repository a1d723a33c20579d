package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the process-wide configuration, loaded once before serving
// begins and never mutated afterwards.
type Config struct {
	SupabaseURL string
	SupabaseKey string

	Addr        string
	CORSOrigins []string

	FetchTimeout time.Duration

	FrameLen int
	HopLen   int

	QuietLoudness float64
	ClipPeak      float64
	NarrowSpread  float64

	LogLevel  string
	LogFormat string
}

// Load reads the optional config file plus the environment. Missing Supabase
// settings abort startup.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.cors_origins", []string{"*"})
	v.SetDefault("fetch.timeout", "60s")
	v.SetDefault("analysis.frame_len", 2048)
	v.SetDefault("analysis.hop_len", 512)
	v.SetDefault("feedback.quiet_loudness", 0.01)
	v.SetDefault("feedback.clip_peak", 0.9)
	v.SetDefault("feedback.narrow_spread", 10.0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.BindEnv("supabase.url", "SUPABASE_URL")
	v.BindEnv("supabase.key", "SUPABASE_SERVICE_KEY")
	v.BindEnv("http.addr", "ANALYZER_ADDR")
	v.BindEnv("log.level", "ANALYZER_LOG_LEVEL")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("analyzer")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/analyzer")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		SupabaseURL:   strings.TrimRight(v.GetString("supabase.url"), "/"),
		SupabaseKey:   v.GetString("supabase.key"),
		Addr:          v.GetString("http.addr"),
		CORSOrigins:   v.GetStringSlice("http.cors_origins"),
		FetchTimeout:  v.GetDuration("fetch.timeout"),
		FrameLen:      v.GetInt("analysis.frame_len"),
		HopLen:        v.GetInt("analysis.hop_len"),
		QuietLoudness: v.GetFloat64("feedback.quiet_loudness"),
		ClipPeak:      v.GetFloat64("feedback.clip_peak"),
		NarrowSpread:  v.GetFloat64("feedback.narrow_spread"),
		LogLevel:      v.GetString("log.level"),
		LogFormat:     v.GetString("log.format"),
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabaseKey == "" {
		return fmt.Errorf("SUPABASE_SERVICE_KEY is required")
	}
	return nil
}
