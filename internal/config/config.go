package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Log struct {
		Level     string
		Format    string
		Component string
		Source    bool
	}

	DB struct {
		DSN      string
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		SSLMode  string
	}

	Mongo struct {
		URL        string
		Database   string
		Collection string
	}

	Files struct {
		Excel string
		XML   string
	}
}

func New() *Config {
	// optional .env for local runs
	_ = godotenv.Load()

	cfg := &Config{}

	// Logger
	cfg.Log.Level = getEnvDefault("LOG_LEVEL", "info")
	cfg.Log.Format = getEnvDefault("LOG_FORMAT", "text")
	cfg.Log.Component = getEnvDefault("LOG_COMPONENT", "migrate")
	cfg.Log.Source = isTruthy(os.Getenv("LOG_SOURCE"))

	// Postgres (target database)
	cfg.DB.DSN = os.Getenv("PG_DSN")
	if cfg.DB.DSN == "" {
		cfg.DB.Host = getEnvDefault("PG_HOST", "localhost")
		cfg.DB.Port = getEnvDefault("PG_PORT", "5433")
		cfg.DB.User = getEnvDefault("PG_USER", "user")
		cfg.DB.Password = getEnvDefault("PG_PASS", "secret")
		cfg.DB.Name = getEnvDefault("PG_DB", "lf8_lets_meet_db")
		cfg.DB.SSLMode = getEnvDefault("PG_SSLMODE", "disable")

		cfg.DB.DSN = fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, cfg.DB.SSLMode,
		)
	}

	// MongoDB (legacy source)
	cfg.Mongo.URL = getEnvDefault("MONGO_URL", "mongodb://localhost:27017")
	cfg.Mongo.Database = getEnvDefault("MONGO_DB", "LetsMeet")
	cfg.Mongo.Collection = getEnvDefault("MONGO_COLLECTION", "users")

	// Legacy dump files
	cfg.Files.Excel = getEnvDefault("EXCEL_PATH", "Lets Meet DB Dump.xlsx")
	cfg.Files.XML = getEnvDefault("XML_PATH", "Lets_Meet_Hobbies.xml")

	return cfg
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
