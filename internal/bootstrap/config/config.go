package config

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"koubei/internal/bootstrap/logging"
	"koubei/internal/errs"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	Gateway  GatewayConfig  `mapstructure:"gateway"`
	Server   ServerConfig   `mapstructure:"server"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// GatewayConfig points the client side at the testimonial data gateway.
type GatewayConfig struct {
	URL       string `mapstructure:"url"`
	AccessKey string `mapstructure:"access_key"`
	Table     string `mapstructure:"table"`
}

// ServerConfig configures the bundled reference gateway.
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	AccessKey    string        `mapstructure:"access_key"`
	FeedInterval time.Duration `mapstructure:"feed_interval"`
}

func Load(ctx context.Context, configFile string) (Config, error) {
	if ctx == nil {
		return Config{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Config{}, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.config"))

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("KB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			// Keep default and env-backed config when no file is provided.
			logging.Warn(logCtx, "config file not found, fallback to defaults and env")
		} else {
			return Config{}, errs.Wrap(err, "read config")
		}
	} else {
		logging.Info(logCtx, "using config file", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.Wrap(err, "unmarshal config")
	}

	if cfg.Database.DSN == "" {
		return Config{}, errors.New("database.dsn is required")
	}
	if cfg.Gateway.Table == "" {
		cfg.Gateway.Table = "testimonials"
	}

	// Missing gateway credentials are deliberately non-fatal: commands that
	// never touch the gateway keep working, the rest fail at call time.
	if strings.TrimSpace(cfg.Gateway.URL) == "" {
		logging.Warn(logCtx, "gateway url is not configured, gateway calls will fail")
	}
	if strings.TrimSpace(cfg.Gateway.AccessKey) == "" {
		logging.Warn(logCtx, "gateway access key is not configured")
	}

	logging.Info(
		logCtx,
		"config loaded",
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
		slog.String("database_driver", cfg.Database.Driver),
		slog.String("gateway_table", cfg.Gateway.Table),
	)

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "koubei")
	v.SetDefault("app.env", "local")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", ".koubei/state/wall.sqlite")
	v.SetDefault("gateway.url", "http://127.0.0.1:8787")
	v.SetDefault("gateway.access_key", "")
	v.SetDefault("gateway.table", "testimonials")
	v.SetDefault("server.addr", ":8787")
	v.SetDefault("server.access_key", "")
	v.SetDefault("server.feed_interval", "500ms")
}
