package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	Data           DataConfig           `mapstructure:"data"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Redis          RedisConfig          `mapstructure:"redis"`
	Kafka          KafkaConfig          `mapstructure:"kafka"`
	Auth           AuthConfig           `mapstructure:"auth"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	Recommendation RecommendationConfig `mapstructure:"recommendation"`
	Evaluation     EvaluationConfig     `mapstructure:"evaluation"`
	Security       SecurityConfig       `mapstructure:"security"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// DataConfig selects where the reference tables come from: a directory of
// CSV files or the relational store configured under database.
type DataConfig struct {
	Source string `mapstructure:"source"`
	Dir    string `mapstructure:"dir"`
}

type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConnections int           `mapstructure:"max_connections"`
	MaxIdleTime    time.Duration `mapstructure:"max_idle_time"`
	MaxLifetime    time.Duration `mapstructure:"max_lifetime"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type RedisConfig struct {
	URL        string        `mapstructure:"url"`
	MaxRetries int           `mapstructure:"max_retries"`
	PoolSize   int           `mapstructure:"pool_size"`
	CacheTTL   time.Duration `mapstructure:"cache_ttl"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topics  struct {
		ReviewIngestion string `mapstructure:"review_ingestion"`
	} `mapstructure:"topics"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RecommendationConfig carries the tunable parameters of the hybrid
// pipeline. The adaptive cold-start weight pairs are intentionally not
// here; they are fixed constants in the recommender package so offline
// evaluation stays reproducible across deployments.
type RecommendationConfig struct {
	WeightContent   float64 `mapstructure:"weight_content"`
	WeightCollab    float64 `mapstructure:"weight_collab"`
	ContentPoolSize int     `mapstructure:"content_pool_size"`
	NeighborCount   int     `mapstructure:"neighbor_count"`
	TopK            int     `mapstructure:"top_k"`
	NumericFeatures bool    `mapstructure:"numeric_features"`
}

type EvaluationConfig struct {
	Folds int   `mapstructure:"folds"`
	TopK  int   `mapstructure:"top_k"`
	Seed  int64 `mapstructure:"seed"`
}

type SecurityConfig struct {
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

func Load() (*Config, error) {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		// Config file is optional, continue with env vars and defaults
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

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "development")

	// Data defaults
	viper.SetDefault("data.source", "csv")
	viper.SetDefault("data.dir", "./data/final")

	// Database defaults
	viper.SetDefault("database.max_connections", 25)
	viper.SetDefault("database.max_idle_time", "15m")
	viper.SetDefault("database.max_lifetime", "1h")
	viper.SetDefault("database.connect_timeout", "10s")

	// Redis defaults
	viper.SetDefault("redis.max_retries", 3)
	viper.SetDefault("redis.pool_size", 10)
	viper.SetDefault("redis.cache_ttl", "15m")

	// Kafka defaults
	viper.SetDefault("kafka.topics.review_ingestion", "review-ingestion")

	// Auth defaults
	viper.SetDefault("auth.token_ttl", "24h")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")

	// Recommendation defaults
	viper.SetDefault("recommendation.weight_content", 0.6)
	viper.SetDefault("recommendation.weight_collab", 0.4)
	viper.SetDefault("recommendation.content_pool_size", 50)
	viper.SetDefault("recommendation.neighbor_count", 5)
	viper.SetDefault("recommendation.top_k", 10)
	viper.SetDefault("recommendation.numeric_features", true)

	// Evaluation defaults
	viper.SetDefault("evaluation.folds", 3)
	viper.SetDefault("evaluation.top_k", 5)
	viper.SetDefault("evaluation.seed", 42)

	// Security defaults
	viper.SetDefault("security.cors.allowed_origins", []string{"*"})
	viper.SetDefault("security.cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	viper.SetDefault("security.cors.allowed_headers", []string{"*"})
}
