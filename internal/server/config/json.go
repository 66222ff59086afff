package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/dmitrijs2005/gophauth/internal/timex"
)

// JsonConfig is the on-disk shape of the optional configuration file.
// Durations accept "15m"-style strings or integer nanoseconds. Pointer
// fields distinguish "absent" from the zero value so a file can switch
// DevMode off explicitly.
type JsonConfig struct {
	HTTPAddr                    string         `json:"http_addr"`
	GRPCHealthAddr              string         `json:"grpc_health_addr"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	ResetCodeValidityDuration   timex.Duration `json:"reset_code_validity_duration"`
	DevMode                     *bool          `json:"dev_mode"`
	BcryptCost                  int            `json:"bcrypt_cost"`
	MailTransport               string         `json:"mail_transport"`
	MailHost                    string         `json:"mail_host"`
	MailPort                    int            `json:"mail_port"`
	MailUser                    string         `json:"mail_user"`
	MailPassword                string         `json:"mail_password"`
	MailFrom                    string         `json:"mail_from"`
	MailTimeout                 timex.Duration `json:"mail_timeout"`
	S3RootUser                  string         `json:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket"`
	S3Region                    string         `json:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint"`
}

// parseJson overlays values from the file named by -c / -config. Keys
// missing from the file keep their current value. An unreadable file or
// invalid JSON panics, as configuration errors are fatal at startup.
func parseJson(config *Config) {
	path := flagx.ConfigFilePath(args())
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.GRPCHealthAddr, c.GRPCHealthAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.AccessTokenValidityDuration.Duration > 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.ResetCodeValidityDuration.Duration > 0 {
		config.ResetCodeValidityDuration = c.ResetCodeValidityDuration.Duration
	}
	if c.DevMode != nil {
		config.DevMode = *c.DevMode
	}
	if c.BcryptCost > 0 {
		config.BcryptCost = c.BcryptCost
	}
	setString(&config.MailTransport, c.MailTransport)
	setString(&config.MailHost, c.MailHost)
	if c.MailPort > 0 {
		config.MailPort = c.MailPort
	}
	setString(&config.MailUser, c.MailUser)
	setString(&config.MailPassword, c.MailPassword)
	setString(&config.MailFrom, c.MailFrom)
	if c.MailTimeout.Duration > 0 {
		config.MailTimeout = c.MailTimeout.Duration
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
