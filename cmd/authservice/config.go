package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/eliyaaki/auth-service/internal/logger"
)

const (
	defaultListenAddr   = "localhost:8000"
	defaultLoggingLevel = logger.LevelInfo
	defaultEnvironment  = logger.EnvProduction
	defaultBaseURL      = "http://localhost:8000"
	defaultSMTPPort     = "587"
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the service will be run
	ListenAddr string

	// Database to connect to
	DatabaseDSN string

	// Environment
	Environment string

	// Public base URL used in verification and reset links
	BaseURL string

	// Token signing keys, base64 encoded PEM blocks.
	// Generate a pair of keypairs with cmd/genkeys
	AccessTokenPrivateKey  string
	AccessTokenPublicKey   string
	RefreshTokenPrivateKey string
	RefreshTokenPublicKey  string

	// SMTP relay for verification and reset mail
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

func NewConfig() *Config {
	return &Config{
		LogLevel:    defaultLoggingLevel,
		ListenAddr:  defaultListenAddr,
		Environment: defaultEnvironment,
		BaseURL:     defaultBaseURL,
		SMTPPort:    defaultSMTPPort,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		c.LoadEnv(func(key string) string {
			return envMap[key]
		})
		return nil
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) {
		return func(value string) {
			if value != "" {
				*o = value
			}
		}
	}

	envMap := map[string]func(string){
		"RUN_ADDRESS":  setString(&c.ListenAddr),
		"DATABASE_URI": setString(&c.DatabaseDSN),
		"LOG_LEVEL":    setString(&c.LogLevel),
		"ENVIRONMENT":  setString(&c.Environment),
		"BASE_URL":     setString(&c.BaseURL),

		"ACCESS_TOKEN_PRIVATE_KEY":  setString(&c.AccessTokenPrivateKey),
		"ACCESS_TOKEN_PUBLIC_KEY":   setString(&c.AccessTokenPublicKey),
		"REFRESH_TOKEN_PRIVATE_KEY": setString(&c.RefreshTokenPrivateKey),
		"REFRESH_TOKEN_PUBLIC_KEY":  setString(&c.RefreshTokenPublicKey),

		"SMTP_HOST":     setString(&c.SMTPHost),
		"SMTP_PORT":     setString(&c.SMTPPort),
		"SMTP_USERNAME": setString(&c.SMTPUsername),
		"SMTP_PASSWORD": setString(&c.SMTPPassword),
		"SMTP_FROM":     setString(&c.SMTPFrom),
	}

	for key, parseFn := range envMap {
		parseFn(getenv(key))
	}
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("authservice", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")
	fs.StringVarP(&c.BaseURL, "base-url", "b", c.BaseURL, "Public base URL for links in emails")

	return fs.Parse(args)
}
