package config

import (
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	MongoDB  MongoDBConfig
	JWT      JWTConfig
	Gateway  GatewayConfig
	Dispatch DispatchConfig
	LogLevel string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	AllowedHosts []string
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	Secret    string
	ExpiresIn int
}

// GatewayConfig holds SMS gateway configuration
type GatewayConfig struct {
	BaseURL string
	APIKey  string
	Mock    bool
}

// DispatchConfig holds dispatch pipeline tuning
type DispatchConfig struct {
	BatchSize      int
	RatePerSecond  float64
	MaxAttempts    int
	RetryBackoffMS int
	UnitPrice      float64
	CountryCode    string
	RecentLimit    int
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults sets default values for configuration
func setDefaults() {
	viper.SetDefault("Server.Port", "4000")
	viper.SetDefault("Server.AllowedHosts", []string{"localhost:3000"})
	viper.SetDefault("MongoDB.URI", "mongodb://localhost:27017")
	viper.SetDefault("MongoDB.Database", "kudosity")
	viper.SetDefault("JWT.ExpiresIn", 24*60*60) // 24 hours
	viper.SetDefault("LogLevel", "info")
	viper.SetDefault("Gateway.BaseURL", "https://api.transmitsms.com")
	viper.SetDefault("Gateway.Mock", true)
	viper.SetDefault("Dispatch.BatchSize", 100)
	viper.SetDefault("Dispatch.RatePerSecond", 25.0)
	viper.SetDefault("Dispatch.MaxAttempts", 3)
	viper.SetDefault("Dispatch.RetryBackoffMS", 500)
	viper.SetDefault("Dispatch.UnitPrice", 0.05)
	viper.SetDefault("Dispatch.CountryCode", "61")
	viper.SetDefault("Dispatch.RecentLimit", 20)
}
