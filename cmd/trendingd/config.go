package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/trim21/bangumi-server-private/trending"
)

type config struct {
	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"postgres"`
	DatabaseDSN    string `env:"DATABASE_DSN"`
	// RedisURL empty keeps the cache in process, which is only useful locally.
	RedisURL  string `env:"REDIS_URL"`
	KeyPrefix string `env:"CACHE_KEY_PREFIX" envDefault:"chii:"`

	Interval     time.Duration `env:"TRENDING_INTERVAL" envDefault:"1h"`
	Periods      []string      `env:"TRENDING_PERIODS" envDefault:"day,week,month,year" envSeparator:","`
	FlushOnStart bool          `env:"TRENDING_FLUSH_ON_START"`

	MetricsAddr string `env:"METRICS_ADDR" envDefault:":9090"`
	Debug       bool   `env:"DEBUG"`
}

func loadConfig() (config, error) {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	for i, p := range cfg.Periods {
		cfg.Periods[i] = strings.TrimSpace(p)
	}
	return cfg, cfg.Validate()
}

func (c config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.DatabaseDriver, validation.Required, validation.In("postgres", "sqlite")),
		validation.Field(&c.DatabaseDSN, validation.Required),
		validation.Field(&c.Interval, validation.Required, validation.Min(time.Minute)),
		validation.Field(&c.Periods, validation.Required, validation.Each(validation.By(knownPeriod))),
	)
}

func knownPeriod(value interface{}) error {
	p, _ := value.(string)
	if _, err := trending.Period(p).Duration(); err != nil {
		return validation.NewError("validation_trending_period", "must be one of day, week, month, year")
	}
	return nil
}

func (c config) periods() []trending.Period {
	out := make([]trending.Period, len(c.Periods))
	for i, p := range c.Periods {
		out[i] = trending.Period(p)
	}
	return out
}
