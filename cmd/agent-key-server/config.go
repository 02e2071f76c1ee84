package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/EternisAI/agent-key/internal/api/http"
	"github.com/EternisAI/agent-key/internal/db"
	grpctls "github.com/EternisAI/agent-key/internal/grpc/tls"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log       LogConfig
	Http      http.Config
	Grpc      GrpcConfig
	DB        db.Config      `mapstructure:"db"`
	Vault     VaultConfig    `mapstructure:"vault"`
	Checkout  CheckoutConfig `mapstructure:"checkout"`
	Bootstrap BootstrapConfig
	Auth      AuthConfig
}

type GrpcConfig struct {
	Port int            `mapstructure:"port"`
	TLS  grpctls.Config `mapstructure:"tls"`
}

type VaultConfig struct {
	MasterKeyPath string `mapstructure:"master_key_path"`
}

type CheckoutConfig struct {
	DefaultTTLSeconds int           `mapstructure:"default_ttl_seconds"`
	MinTTLSeconds     int           `mapstructure:"min_ttl_seconds"`
	StoreTimeout      time.Duration `mapstructure:"store_timeout"`
}

type BootstrapConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type AuthConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

var config Config

func setDefaults() {
	viper.SetDefault("log.level", LOG_LEVEL_INFO)
	viper.SetDefault("http.port", 8080)
	viper.SetDefault("grpc.port", 9090)
	viper.SetDefault("grpc.tls.client_auth", "none")
	viper.SetDefault("db.schema", "agent_key")
	viper.SetDefault("vault.master_key_path", "./data/master.key")
	viper.SetDefault("checkout.default_ttl_seconds", 3600)
	viper.SetDefault("checkout.min_ttl_seconds", 60)
	viper.SetDefault("checkout.store_timeout", 5*time.Second)
	viper.SetDefault("bootstrap.enabled", true)
	viper.SetDefault("auth.cache_ttl", 30*time.Second)
}

// redacted returns a copy of c that is safe to print.
func (c Config) redacted() Config {
	if c.DB.Url != "" {
		c.DB.Url = "***"
	}
	if c.Http.AdminAPIKey != "" {
		c.Http.AdminAPIKey = "***"
	}
	return c
}

func InitConfig() {
	var err error

	_ = godotenv.Load()

	viper.SetConfigName("application")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./cmd/agent-key-server")
	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults()

	_ = viper.BindEnv("db.url", "DATABASE_URL")

	if err := viper.ReadInConfig(); err != nil {
		panic(err)
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		panic(err)
	}

	initLogger(config.Log.Level)

	if strings.ToUpper(config.Log.Level) == LOG_LEVEL_DEBUG {
		configJSON, err := json.MarshalIndent(config.redacted(), "", "  ")
		if err == nil {
			fmt.Println("Config loaded:")
			fmt.Println(string(configJSON))
		}
	}
}
