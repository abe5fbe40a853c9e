package config

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Eastmoney EastmoneyConfig `mapstructure:"eastmoney"`
	Monitor   MonitorConfig   `mapstructure:"monitor"`
	Rollover  RolloverConfig  `mapstructure:"rollover"`
	Alert     AlertConfig     `mapstructure:"alert"`
	State     StateConfig     `mapstructure:"state"`
	Log       LogConfig       `mapstructure:"log"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
}

type EastmoneyConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	FallbackURL string        `mapstructure:"fallback_url"`
	CalendarURL string        `mapstructure:"calendar_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type MonitorConfig struct {
	LimitCodesFile     string  `mapstructure:"limit_codes_file"`
	SpeedCodesFile     string  `mapstructure:"speed_codes_file"`
	LimitPct           float64 `mapstructure:"limit_pct"`
	SpeedWindowMinutes float64 `mapstructure:"speed_window_minutes"`
	SpeedThresholdPct  float64 `mapstructure:"speed_threshold_pct"`
	PollCron           string  `mapstructure:"poll_cron"`
}

type RolloverConfig struct {
	ContractTypes []string `mapstructure:"contract_types"`
	CheckCron     string   `mapstructure:"check_cron"`
}

type AlertConfig struct {
	Webhook string        `mapstructure:"webhook"`
	Secret  string        `mapstructure:"secret"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// StateConfig selects where per-instrument status maps are persisted.
type StateConfig struct {
	Backend string `mapstructure:"backend"` // "file" or "postgres"
	File    string `mapstructure:"file"`    // path when backend is "file"
}

// LogConfig defines the logger configuration options.
type LogConfig struct {
	Level       string `mapstructure:"level"`       // log level: "debug", "info", "warn", "error"
	Format      string `mapstructure:"format"`      // log format: "json" or "console"
	OutputFile  string `mapstructure:"output_file"` // file path to store logs (optional)
	Environment string `mapstructure:"environment"` // environment: "dev" or "prod"
}

// Load loads application configuration using Viper.
// It reads from config.yaml and overrides with environment variables.
func Load() *Config {
	v := viper.New()

	v.SetConfigName("config") // config.yaml
	v.SetConfigType("yaml")

	ex, _ := os.Executable()
	if strings.Contains(ex, "go-build") {
		pwd, _ := os.Getwd()
		v.AddConfigPath(filepath.Join(pwd, "../../config"))
	} else {
		v.AddConfigPath(filepath.Join(filepath.Dir(ex), "../config"))
	}
	v.AddConfigPath("./config")

	setDefaults(v)

	// Support environment variables with dot notation (e.g., ALERT_WEBHOOK)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("failed to read config: %v", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("failed to unmarshal config: %v", err)
	}

	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("eastmoney.base_url", "https://push2.eastmoney.com")
	v.SetDefault("eastmoney.fallback_url", "https://hq.sinajs.cn")
	v.SetDefault("eastmoney.timeout", "10s")

	v.SetDefault("monitor.limit_codes_file", "lof_limit_codes.txt")
	v.SetDefault("monitor.speed_codes_file", "lof_speed_codes.txt")
	v.SetDefault("monitor.limit_pct", 9.9)
	v.SetDefault("monitor.speed_window_minutes", 10.0)
	v.SetDefault("monitor.speed_threshold_pct", 2.0)
	v.SetDefault("monitor.poll_cron", "@every 1m")

	v.SetDefault("rollover.contract_types", []string{"IC", "IM"})
	v.SetDefault("rollover.check_cron", "35 15 * * 1-5")

	v.SetDefault("alert.timeout", "8s")

	v.SetDefault("state.backend", "file")
	v.SetDefault("state.file", "watchdog_state.json")
}
