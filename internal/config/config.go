package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix           = "MEMEHUB"
	defaultHTTPAddress  = "0.0.0.0:8080"
	defaultDatabasePath = "memehub.db"
	defaultLogLevel     = "info"

	defaultSessionCookieName = "memehub_session"
	defaultSessionTTLHours   = 24 * 7

	defaultUploadDir     = "uploads/memes"
	defaultUploadBaseURL = "/uploads/memes"

	defaultFrontendBaseURL = "http://localhost:3000"
)

// AppConfig captures runtime configuration for the API server.
type AppConfig struct {
	HTTPAddress  string
	DatabasePath string
	LogLevel     string

	OAuthClientID     string
	OAuthClientSecret string
	OAuthAuthorizeURL string
	OAuthTokenURL     string
	OAuthUserInfoURL  string
	OAuthRedirectURI  string

	SessionSigningSecret string
	SessionCookieName    string
	SessionTTL           time.Duration

	UploadDir     string
	UploadBaseURL string

	AutoApproveSubmissions bool
	FrontendBaseURL        string
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("database.path", defaultDatabasePath)
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("session.cookie_name", defaultSessionCookieName)
	configViper.SetDefault("session.ttl_hours", defaultSessionTTLHours)
	configViper.SetDefault("upload.dir", defaultUploadDir)
	configViper.SetDefault("upload.base_url", defaultUploadBaseURL)
	configViper.SetDefault("moderation.auto_approve", true)
	configViper.SetDefault("frontend.base_url", defaultFrontendBaseURL)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:  configViper.GetString("http.address"),
		DatabasePath: configViper.GetString("database.path"),
		LogLevel:     configViper.GetString("log.level"),

		OAuthClientID:     configViper.GetString("oauth.client_id"),
		OAuthClientSecret: configViper.GetString("oauth.client_secret"),
		OAuthAuthorizeURL: configViper.GetString("oauth.authorize_url"),
		OAuthTokenURL:     configViper.GetString("oauth.token_url"),
		OAuthUserInfoURL:  configViper.GetString("oauth.userinfo_url"),
		OAuthRedirectURI:  configViper.GetString("oauth.redirect_uri"),

		SessionSigningSecret: configViper.GetString("session.signing_secret"),
		SessionCookieName:    configViper.GetString("session.cookie_name"),
		SessionTTL:           time.Duration(configViper.GetInt("session.ttl_hours")) * time.Hour,

		UploadDir:     configViper.GetString("upload.dir"),
		UploadBaseURL: configViper.GetString("upload.base_url"),

		AutoApproveSubmissions: configViper.GetBool("moderation.auto_approve"),
		FrontendBaseURL:        configViper.GetString("frontend.base_url"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database.path is required")
	}
	if strings.TrimSpace(c.SessionSigningSecret) == "" {
		return fmt.Errorf("session.signing_secret is required")
	}
	if strings.TrimSpace(c.SessionCookieName) == "" {
		return fmt.Errorf("session.cookie_name is required")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session.ttl_hours must be positive")
	}
	if strings.TrimSpace(c.UploadDir) == "" {
		return fmt.Errorf("upload.dir is required")
	}
	return nil
}
