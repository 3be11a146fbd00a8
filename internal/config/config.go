package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Server      ServerConfig      `mapstructure:"server"`
	Log         LogConfig         `mapstructure:"log"`
	DB          DBConfig          `mapstructure:"db"`
	Cron        CronConfig        `mapstructure:"cron"`
	News        NewsConfig        `mapstructure:"news"`
	Output      OutputConfig      `mapstructure:"output"`
	Prices      PricesConfig      `mapstructure:"prices"`
	Correlation CorrelationConfig `mapstructure:"correlation"`
	Indicators  IndicatorsConfig  `mapstructure:"indicators"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

// DBConfig points at the sqlite run-history database. An empty DSN disables
// persistence entirely; pipelines then only write file artifacts.
type DBConfig struct {
	DSN string `mapstructure:"dsn"`
}

type CronConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Correlate string `mapstructure:"correlate"`
}

type NewsConfig struct {
	CSV string `mapstructure:"csv"`
}

type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

type PricesConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Window       string        `mapstructure:"window"`
	RetryMax     int           `mapstructure:"retry_max"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
}

type CorrelationConfig struct {
	Tickers string `mapstructure:"tickers"`
	LagDays int    `mapstructure:"lag_days"`
}

type IndicatorsConfig struct {
	Tickers string `mapstructure:"tickers"`
	Window  string `mapstructure:"window"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("NL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.dsn", "newslens.db")
	v.SetDefault("cron.enabled", false)
	v.SetDefault("cron.correlate", "@daily")
	v.SetDefault("news.csv", "data/raw_analyst_ratings.csv")
	v.SetDefault("output.dir", "outputs")
	v.SetDefault("prices.base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("prices.timeout", "15s")
	v.SetDefault("prices.window", "1y")
	v.SetDefault("prices.retry_max", 3)
	v.SetDefault("prices.retry_backoff", "500ms")
	v.SetDefault("correlation.tickers", "")
	v.SetDefault("correlation.lag_days", 0)
	v.SetDefault("indicators.tickers", "")
	v.SetDefault("indicators.window", "1y")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// SplitTickers turns a comma-separated ticker list into normalized symbols,
// dropping empties and preserving input order.
func SplitTickers(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.ToUpper(strings.TrimSpace(p))
		if t == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}
