package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/joho/godotenv"
)

// parseEnv overlays values from the process environment. Variables from a
// dotenv file (-env, or ./.env when present) are loaded first without
// overriding variables already set in the environment.
//
// Recognised variables:
//
//	PORT, HTTP_ADDR, GRPC_HEALTH_ADDR, DATABASE_URL, JWT_SECRET,
//	ACCESS_TOKEN_TTL, RESET_CODE_TTL, APP_ENV (dev|development enables dev mode),
//	BCRYPT_COST, MAIL_TRANSPORT, MAIL_HOST, MAIL_PORT, MAIL_USER, MAIL_PASS,
//	MAIL_FROM, MAIL_TIMEOUT, S3_ROOT_USER, S3_ROOT_PASSWORD, S3_BUCKET, S3_REGION, S3_ENDPOINT
func parseEnv(config *Config) {
	loadDotenv(flagx.EnvFilePath(args()))

	if port, ok := lookup("PORT"); ok {
		config.HTTPAddr = ":" + strings.TrimPrefix(port, ":")
	}
	envString(&config.HTTPAddr, "HTTP_ADDR")
	envString(&config.GRPCHealthAddr, "GRPC_HEALTH_ADDR")
	envString(&config.DatabaseDSN, "DATABASE_URL")
	envString(&config.SecretKey, "JWT_SECRET")
	envDuration(&config.AccessTokenValidityDuration, "ACCESS_TOKEN_TTL")
	envDuration(&config.ResetCodeValidityDuration, "RESET_CODE_TTL")
	if env, ok := lookup("APP_ENV"); ok {
		switch strings.ToLower(env) {
		case "dev", "development", "local":
			config.DevMode = true
		default:
			config.DevMode = false
		}
	}
	envInt(&config.BcryptCost, "BCRYPT_COST")
	envString(&config.MailTransport, "MAIL_TRANSPORT")
	envString(&config.MailHost, "MAIL_HOST")
	envInt(&config.MailPort, "MAIL_PORT")
	envString(&config.MailUser, "MAIL_USER")
	envString(&config.MailPassword, "MAIL_PASS")
	envString(&config.MailFrom, "MAIL_FROM")
	envDuration(&config.MailTimeout, "MAIL_TIMEOUT")
	envString(&config.S3RootUser, "S3_ROOT_USER")
	envString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	envString(&config.S3Bucket, "S3_BUCKET")
	envString(&config.S3Region, "S3_REGION")
	envString(&config.S3BaseEndpoint, "S3_ENDPOINT")

	// SMTP settings imply the smtp transport unless one was chosen explicitly.
	if _, explicit := lookup("MAIL_TRANSPORT"); !explicit && config.MailHost != "" && config.MailTransport == MailTransportLog {
		config.MailTransport = MailTransportSMTP
	}
}

// loadDotenv panics when an explicitly requested file cannot be loaded; a
// missing default .env is fine.
func loadDotenv(path string) {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
		return
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func envString(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func envInt(dst *int, key string) {
	if v, ok := lookup(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(key + ": " + err.Error())
		}
		*dst = n
	}
}

func envDuration(dst *time.Duration, key string) {
	if v, ok := lookup(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(key + ": " + err.Error())
		}
		*dst = d
	}
}
