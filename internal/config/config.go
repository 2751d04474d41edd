package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Stream   StreamConfig   `mapstructure:"stream"`
	Storage  StorageConfig  `mapstructure:"storage"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	Charset  string `mapstructure:"charset"`
}

func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=UTC",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.Charset)
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type LedgerConfig struct {
	// AutofillActualHours defaults a task's actual_hours from its time
	// entries on the first transition to done.
	AutofillActualHours bool `mapstructure:"autofill_actual_hours"`
}

type StreamConfig struct {
	ReplayTTLMinutes int `mapstructure:"replay_ttl_minutes"`
}

type StorageConfig struct {
	UploadDir string `mapstructure:"upload_dir"`
}

var Global *Config

func Load(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("database.charset", "utf8mb4")
	viper.SetDefault("jwt.expire_hours", 72)
	viper.SetDefault("ledger.autofill_actual_hours", true)
	viper.SetDefault("stream.replay_ttl_minutes", 60)
	viper.SetDefault("storage.upload_dir", "./uploads")
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	Global = &cfg
	return &cfg, nil
}
