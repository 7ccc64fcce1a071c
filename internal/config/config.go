// Package config loads client and server settings from flags, environment
// variables, an optional config file and a .env file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Client configures the weighttrack client.
type Client struct {
	APIURL  string
	Timeout time.Duration
	Unit    string

	// Token is a static bearer token sent with every request.
	Token string

	// OIDC client credentials; used when Token is empty and OIDCIssuer is set.
	OIDCIssuer       string
	OIDCClientID     string
	OIDCClientSecret string
	OIDCScopes       []string

	LogFile  string
	LogLevel string
}

// Server configures weightsd.
type Server struct {
	Addr        string
	Backend     string
	DatabaseURL string

	// APIKeyHash is a bcrypt hash of the accepted API key.
	APIKeyHash string
	// OIDCIssuer and OIDCAudience enable access-token verification.
	OIDCIssuer   string
	OIDCAudience string

	LogLevel string
}

// LoadDotEnv loads a .env file from the working directory when present.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// NewClientViper returns a viper instance with the client defaults, the
// WEIGHTTRACK_ environment prefix and the config file search path set up.
func NewClientViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("WEIGHTTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault("api_url", "http://localhost:8080/api/weights")
	v.SetDefault("timeout", 10*time.Second)
	v.SetDefault("unit", "kg")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", defaultLogFile())

	v.SetConfigName("weighttrack")
	v.SetConfigType("yaml")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "weighttrack"))
	}
	v.AddConfigPath(".")
	return v
}

// NewServerViper returns a viper instance with the server defaults and the
// WEIGHTSD_ environment prefix.
func NewServerViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("WEIGHTSD")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault("addr", ":8080")
	v.SetDefault("backend", "memory")
	v.SetDefault("log_level", "info")
	return v
}

// LoadClient reads the optional config file and returns the client settings.
func LoadClient(v *viper.Viper) (*Client, error) {
	if err := readConfigFile(v); err != nil {
		return nil, err
	}
	return &Client{
		APIURL:           v.GetString("api_url"),
		Timeout:          v.GetDuration("timeout"),
		Unit:             v.GetString("unit"),
		Token:            v.GetString("token"),
		OIDCIssuer:       v.GetString("oidc_issuer"),
		OIDCClientID:     v.GetString("oidc_client_id"),
		OIDCClientSecret: v.GetString("oidc_client_secret"),
		OIDCScopes:       splitList(v.GetString("oidc_scopes")),
		LogFile:          v.GetString("log_file"),
		LogLevel:         v.GetString("log_level"),
	}, nil
}

// LoadServer returns the server settings.
func LoadServer(v *viper.Viper) *Server {
	return &Server{
		Addr:         v.GetString("addr"),
		Backend:      v.GetString("backend"),
		DatabaseURL:  v.GetString("database_url"),
		APIKeyHash:   v.GetString("api_key_hash"),
		OIDCIssuer:   v.GetString("oidc_issuer"),
		OIDCAudience: v.GetString("oidc_audience"),
		LogLevel:     v.GetString("log_level"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Client) Validate() error {
	var problems []string

	if u, err := url.Parse(c.APIURL); err != nil {
		problems = append(problems, fmt.Sprintf("invalid api url '%s': %v", c.APIURL, err))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		problems = append(problems, fmt.Sprintf("invalid api url '%s': scheme must be http or https", c.APIURL))
	} else if u.Host == "" {
		problems = append(problems, fmt.Sprintf("invalid api url '%s': missing host", c.APIURL))
	}

	if c.Timeout <= 0 {
		problems = append(problems, fmt.Sprintf("invalid timeout %v: must be positive", c.Timeout))
	} else if c.Timeout > 5*time.Minute {
		problems = append(problems, fmt.Sprintf("invalid timeout %v: must be at most 5 minutes", c.Timeout))
	}

	if c.Unit != "kg" && c.Unit != "lb" {
		problems = append(problems, fmt.Sprintf("invalid unit '%s': must be kg or lb", c.Unit))
	}

	if c.Token == "" && c.OIDCIssuer != "" {
		if c.OIDCClientID == "" {
			problems = append(problems, "oidc client id is required when an oidc issuer is set")
		}
		if c.OIDCClientSecret == "" {
			problems = append(problems, "oidc client secret is required when an oidc issuer is set")
		}
	}

	return joinProblems(problems)
}

// Validate validates the configuration and returns an error if invalid
func (s *Server) Validate() error {
	var problems []string

	if s.Addr == "" {
		problems = append(problems, "listen address cannot be empty")
	}

	switch s.Backend {
	case "memory":
	case "postgres":
		if s.DatabaseURL == "" {
			problems = append(problems, "database url is required when using postgres backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid backend '%s': must be one of [memory postgres]", s.Backend))
	}

	if s.APIKeyHash != "" && !strings.HasPrefix(s.APIKeyHash, "$2") {
		problems = append(problems, "api key hash must be a bcrypt hash (see 'weightsd hash-key')")
	}
	if s.OIDCIssuer != "" && s.OIDCAudience == "" {
		problems = append(problems, "oidc audience is required when an oidc issuer is set")
	}

	return joinProblems(problems)
}

func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func joinProblems(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func defaultLogFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "weighttrack.log")
	}
	return filepath.Join(dir, "weighttrack", "weighttrack.log")
}
