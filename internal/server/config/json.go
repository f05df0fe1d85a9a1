package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/verixa/internal/flagx"
	"github.com/dmitrijs2005/verixa/internal/timex"
)

// JsonConfig is the on-disk shape of the optional JSON config file. Pointer
// fields distinguish "absent" from "zero" so a partial file only overrides
// what it names. Durations accept "15m" style strings or nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP                  *string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC                  *string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                       *string         `json:"database_dsn"`
	SecretKey                         *string         `json:"secret_key"`
	AccessTokenValidityDuration       *timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration      *timex.Duration `json:"refresh_token_validity_duration"`
	VerificationTokenValidityDuration *timex.Duration `json:"verification_token_validity_duration"`
	BcryptCost                        *int            `json:"bcrypt_cost"`
	AppURL                            *string         `json:"app_url"`
	GoogleClientID                    *string         `json:"google_client_id"`
	GoogleClientSecret                *string         `json:"google_client_secret"`
	OAuthHTTPTimeout                  *timex.Duration `json:"oauth_http_timeout"`
	CookieSecure                      *bool           `json:"cookie_secure"`
	LogLevel                          *string         `json:"log_level"`
	MailOutbox                        *string         `json:"mail_outbox"`
	MailOutboxDir                     *string         `json:"mail_outbox_dir"`
	S3RootUser                        *string         `json:"s3_root_user"`
	S3RootPassword                    *string         `json:"s3_root_password"`
	S3Bucket                          *string         `json:"s3_bucket"`
	S3Region                          *string         `json:"s3_region"`
	S3BaseEndpoint                    *string         `json:"s3_base_endpoint"`
}

// parseJson overlays values from the file named by -c/-config. Without the
// flag nothing is loaded.
func parseJson(config *Config) error {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return err
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setDuration(&config.RefreshTokenValidityDuration, c.RefreshTokenValidityDuration)
	setDuration(&config.VerificationTokenValidityDuration, c.VerificationTokenValidityDuration)
	if c.BcryptCost != nil {
		config.BcryptCost = *c.BcryptCost
	}
	setString(&config.AppURL, c.AppURL)
	setString(&config.GoogleClientID, c.GoogleClientID)
	setString(&config.GoogleClientSecret, c.GoogleClientSecret)
	setDuration(&config.OAuthHTTPTimeout, c.OAuthHTTPTimeout)
	if c.CookieSecure != nil {
		config.CookieSecure = *c.CookieSecure
	}
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.MailOutbox, c.MailOutbox)
	setString(&config.MailOutboxDir, c.MailOutboxDir)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
