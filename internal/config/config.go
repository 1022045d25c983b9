package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	defaultConfigPath = "config/config.yaml"
)

type Config struct {
	Server struct {
		Host         string   `yaml:"host"`
		Port         int      `yaml:"port"`
		Env          string   `yaml:"env"`
		CORSOrigins  []string `yaml:"cors_origins"`
		MaxBodyBytes int64    `yaml:"max_body_bytes"`
		// TrustedProxies may set the client IP through X-Forwarded-For. Empty trusts none.
		TrustedProxies []string `yaml:"trusted_proxies"`
	} `yaml:"server"`

	Database struct {
		DSN          string `yaml:"url"`
		MaxOpenConns int    `yaml:"max_open_conns"`
		MaxIdleConns int    `yaml:"max_idle_conns"`
	} `yaml:"database"`

	JWT struct {
		AccessSecret  string        `yaml:"access_secret"`
		RefreshSecret string        `yaml:"refresh_secret"`
		AccessTTL     time.Duration `yaml:"access_ttl"`
		RefreshTTL    time.Duration `yaml:"refresh_ttl"`
		Issuer        string        `yaml:"issuer"`
	} `yaml:"jwt"`

	Auth struct {
		ResetTokenTTL      time.Duration `yaml:"reset_token_ttl"`
		ResetURL           string        `yaml:"reset_url"`
		BcryptCost         int           `yaml:"bcrypt_cost"`
		HashConcurrency    int           `yaml:"hash_concurrency"`
		RateLimitPerMinute int           `yaml:"rate_limit_per_minute"`
		RateLimitBurst     int           `yaml:"rate_limit_burst"`
		FirstAdminEmail    string        `yaml:"first_admin_email"`
		FirstAdminPassword string        `yaml:"first_admin_password"`
	} `yaml:"auth"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
		TemplatesDir string `yaml:"templates_dir"`
	} `yaml:"email"`

	Workers struct {
		ResetSweepInterval time.Duration `yaml:"reset_sweep_interval"`
	} `yaml:"workers"`
}

// Default returns a configuration usable for local development once secrets are set.
func Default() *Config {
	var cfg Config
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 8080
	cfg.Server.Env = EnvDevelopment
	cfg.Server.CORSOrigins = []string{"http://localhost:3000"}
	cfg.Server.MaxBodyBytes = 1 << 20

	cfg.Database.MaxOpenConns = 20
	cfg.Database.MaxIdleConns = 5

	cfg.JWT.AccessTTL = 15 * time.Minute
	cfg.JWT.RefreshTTL = 7 * 24 * time.Hour
	cfg.JWT.Issuer = "studyzone"

	cfg.Auth.ResetTokenTTL = time.Hour
	cfg.Auth.ResetURL = "http://localhost:3000/reset-password"
	cfg.Auth.RateLimitPerMinute = 10
	cfg.Auth.RateLimitBurst = 5

	cfg.Email.SMTPPort = 587
	cfg.Email.FromEmail = "no-reply@studyzone.app"
	cfg.Email.FromName = "StudyZone"

	cfg.Workers.ResetSweepInterval = 15 * time.Minute
	return &cfg
}

// Load reads path (or CONFIG_PATH, or config/config.yaml) over the defaults, then
// applies environment overrides and validates the result. A missing file is only
// an error when the path was given explicitly.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv("CONFIG_PATH")
		explicit = path != ""
	}
	if path == "" {
		path = defaultConfigPath
	}

	if err := cfg.loadFile(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) || explicit {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) error {
		v, ok := os.LookupEnv(key)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}
	setDuration := func(key string, dst *time.Duration) error {
		v, ok := os.LookupEnv(key)
		if !ok {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
		return nil
	}

	setString("DATABASE_URL", &c.Database.DSN)
	setString("SERVER_ENV", &c.Server.Env)
	setString("JWT_ACCESS_SECRET", &c.JWT.AccessSecret)
	setString("JWT_REFRESH_SECRET", &c.JWT.RefreshSecret)
	setString("FIRST_ADMIN_EMAIL", &c.Auth.FirstAdminEmail)
	setString("FIRST_ADMIN_PASSWORD", &c.Auth.FirstAdminPassword)
	setString("RESET_URL", &c.Auth.ResetURL)
	setString("SMTP_HOST", &c.Email.SMTPHost)
	setString("SMTP_USER", &c.Email.SMTPUsername)
	setString("SMTP_PASSWORD", &c.Email.SMTPPassword)
	setString("SMTP_FROM", &c.Email.FromEmail)
	if v, ok := os.LookupEnv("CORS_ORIGINS"); ok {
		c.Server.CORSOrigins = splitList(v)
	}
	if v, ok := os.LookupEnv("TRUSTED_PROXIES"); ok {
		c.Server.TrustedProxies = splitList(v)
	}

	for _, err := range []error{
		setInt("SERVER_PORT", &c.Server.Port),
		setInt("SMTP_PORT", &c.Email.SMTPPort),
		setDuration("JWT_ACCESS_TTL", &c.JWT.AccessTTL),
		setDuration("JWT_REFRESH_TTL", &c.JWT.RefreshTTL),
		setDuration("RESET_TOKEN_TTL", &c.Auth.ResetTokenTTL),
	} {
		if err != nil {
			return fmt.Errorf("config env override: %w", err)
		}
	}
	return nil
}

// Validate rejects configurations the server cannot run safely with.
func (c *Config) Validate() error {
	var problems []string
	if c.JWT.AccessSecret == "" {
		problems = append(problems, "jwt.access_secret is required")
	}
	if c.JWT.RefreshSecret == "" {
		problems = append(problems, "jwt.refresh_secret is required")
	}
	if c.JWT.AccessSecret != "" && c.JWT.AccessSecret == c.JWT.RefreshSecret {
		problems = append(problems, "jwt access and refresh secrets must differ")
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		problems = append(problems, "jwt token lifetimes must be positive")
	}
	if c.Auth.ResetTokenTTL <= 0 {
		problems = append(problems, "auth.reset_token_ttl must be positive")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	if c.IsProduction() && c.Database.DSN == "" {
		problems = append(problems, "database.url is required in production")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == EnvProduction
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
