package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	SourceBaseURL      string        `env:"SOURCE_BASE_URL,required,notEmpty"`
	SourceTimeout      time.Duration `env:"SOURCE_TIMEOUT"              envDefault:"20s"`
	SourceMinInterval  time.Duration `env:"SOURCE_MIN_INTERVAL"         envDefault:"0s"`
	ListenAddr         string        `env:"LISTEN_ADDR"                 envDefault:":8080"`
	Timezone           string        `env:"TIMEZONE"                    envDefault:"Europe/Berlin"`
	DefaultSort        string        `env:"DEFAULT_SORT"                envDefault:"boosts"`
	OfflineRefreshSpec string        `env:"OFFLINE_REFRESH_SPEC"        envDefault:"*/15 * * * *"`
	OpenAIAPIKey       string        `env:"OPENAI_API_KEY"`
	OtelEndpoint       string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS"        envDefault:"*"`
	Env                string        `env:"APP_ENV"                     envDefault:"local"`
}

func Load() (Config, error) {
	return env.ParseAs[Config]()
}

// Location resolves Timezone, falling back to UTC for unknown zone names.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC, err
	}

	return loc, nil
}
