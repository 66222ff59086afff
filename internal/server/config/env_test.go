package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	withArgs(t)
	t.Setenv("HTTP_ADDR", "127.0.0.1:4000")
	t.Setenv("GRPC_HEALTH_ADDR", ":50051")
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("ACCESS_TOKEN_TTL", "1h")
	t.Setenv("RESET_CODE_TTL", "5m")
	t.Setenv("APP_ENV", "production")
	t.Setenv("BCRYPT_COST", "11")
	t.Setenv("MAIL_HOST", "smtp.example.com")
	t.Setenv("MAIL_PORT", "465")
	t.Setenv("MAIL_USER", "user")
	t.Setenv("MAIL_PASS", "pass")
	t.Setenv("MAIL_FROM", "noreply@example.com")
	t.Setenv("MAIL_TIMEOUT", "5s")
	t.Setenv("S3_BUCKET", "outbox")

	cfg := &Config{}
	cfg.LoadDefaults()
	cfg.DevMode = true
	parseEnv(cfg)

	assert.Equal(t, "127.0.0.1:4000", cfg.HTTPAddr)
	assert.Equal(t, ":50051", cfg.GRPCHealthAddr)
	assert.Equal(t, "postgres://env", cfg.DatabaseDSN)
	assert.Equal(t, "env-secret", cfg.SecretKey)
	assert.Equal(t, time.Hour, cfg.AccessTokenValidityDuration)
	assert.Equal(t, 5*time.Minute, cfg.ResetCodeValidityDuration)
	assert.False(t, cfg.DevMode)
	assert.Equal(t, 11, cfg.BcryptCost)
	assert.Equal(t, MailTransportSMTP, cfg.MailTransport, "SMTP host implies the smtp transport")
	assert.Equal(t, 465, cfg.MailPort)
	assert.Equal(t, "pass", cfg.MailPassword)
	assert.Equal(t, 5*time.Second, cfg.MailTimeout)
	assert.Equal(t, "outbox", cfg.S3Bucket)
}

func TestParseEnv_PortOnly(t *testing.T) {
	withArgs(t)
	t.Setenv("PORT", "3001")

	cfg := &Config{}
	parseEnv(cfg)

	assert.Equal(t, ":3001", cfg.HTTPAddr)
}

func TestParseEnv_ExplicitTransportWins(t *testing.T) {
	withArgs(t)
	t.Setenv("MAIL_HOST", "smtp.example.com")
	t.Setenv("MAIL_TRANSPORT", "s3")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, MailTransportS3, cfg.MailTransport)
}

func TestParseEnv_BadNumberPanics(t *testing.T) {
	withArgs(t)
	t.Setenv("MAIL_PORT", "many")
	require.Panics(t, func() { parseEnv(&Config{}) })
}

func TestParseEnv_DotenvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("JWT_SECRET=dotenv-secret\nMAIL_FROM=dotenv@example.com\n"), 0o600))
	withArgs(t, "-env", path)

	// variables already in the environment are not overridden by the file
	t.Setenv("MAIL_FROM", "real@example.com")
	// t.Setenv registers cleanup; clear the one godotenv is about to set
	t.Setenv("JWT_SECRET", "")
	require.NoError(t, os.Unsetenv("JWT_SECRET"))

	cfg := &Config{}
	parseEnv(cfg)

	assert.Equal(t, "dotenv-secret", cfg.SecretKey)
	assert.Equal(t, "real@example.com", cfg.MailFrom)
}

func TestParseEnv_MissingDotenvFilePanics(t *testing.T) {
	withArgs(t, "-env", filepath.Join(t.TempDir(), "absent.env"))
	require.Panics(t, func() { parseEnv(&Config{}) })
}
