package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPath           = ".env"
	defaultSecretKey  = "SecRetKey"
	defaultRunAddress = "localhost:8001"
	defaultAccessTTL  = 30 * time.Minute
	defaultRefreshTTL = 30 * 24 * time.Hour
)

type Config struct {
	Env    string
	DB     db
	Server server
	Auth   auth
	Logger logger
}

type db struct {
	DatabaseURI string `env:"DATABASE_URI"`
	Migrations  string `env:"MIGRATIONS_PATH"`
}

type server struct {
	RunAddress string `env:"RUN_ADDRESS"`
}

type auth struct {
	Secret     string        `env:"SECRET"`
	AccessTTL  time.Duration `env:"ACCESS_TTL"`
	RefreshTTL time.Duration `env:"REFRESH_TTL"`
}

type logger struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

func MustLoad() *Config {
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			log.Println("failed to load .env file, relying on environment variables")
		}
	}

	viper.AutomaticEnv()

	viper.SetDefault("RUN_ADDRESS", defaultRunAddress)
	viper.SetDefault("APP_ENV", "local")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MIGRATIONS_PATH", "migrations")
	viper.SetDefault("ACCESS_TTL", defaultAccessTTL)
	viper.SetDefault("REFRESH_TTL", defaultRefreshTTL)

	secret := viper.GetString("secret")
	if secret == "" {
		secret = defaultSecretKey
	}

	config := Config{
		Env: viper.GetString("app_env"),
		DB: db{
			DatabaseURI: viper.GetString("database_uri"),
			Migrations:  viper.GetString("migrations_path"),
		},
		Server: server{RunAddress: viper.GetString("run_address")},
		Auth: auth{
			Secret:     secret,
			AccessTTL:  viper.GetDuration("access_ttl"),
			RefreshTTL: viper.GetDuration("refresh_ttl"),
		},
		Logger: logger{LogLevel: viper.GetString("log_level")},
	}

	return &config
}
